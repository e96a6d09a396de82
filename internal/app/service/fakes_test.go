package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"blogcore/internal/common"
	"blogcore/internal/domain/model"
)

// newTxDB returns a mocked *sql.DB that satisfies the services' transaction
// handling. Repositories are faked in memory, so the mock only ever sees
// Begin/Commit pairs.
func newTxDB(t *testing.T, transactions int) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	for i := 0; i < transactions; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int64]*model.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *sql.Tx, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
	}
	user.ID = f.nextID
	f.nextID++
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return common.ErrNotFound
	}
	user.LastLoginAt = &at
	return nil
}

type fakeRoleRepo struct {
	mu     sync.Mutex
	nextID int64
	roles  map[string]*model.Role
	grants map[int64]map[int64]bool // userID -> roleID set
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{
		nextID: 1,
		roles:  make(map[string]*model.Role),
		grants: make(map[int64]map[int64]bool),
	}
}

func (f *fakeRoleRepo) EnsureRole(ctx context.Context, name, description string) (*model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if role, ok := f.roles[name]; ok {
		copied := *role
		return &copied, nil
	}
	role := &model.Role{ID: f.nextID, Name: name, Description: description}
	f.nextID++
	f.roles[name] = role
	copied := *role
	return &copied, nil
}

func (f *fakeRoleRepo) FindByName(ctx context.Context, name string) (*model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[name]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *role
	return &copied, nil
}

func (f *fakeRoleRepo) GrantRole(ctx context.Context, tx *sql.Tx, userID, roleID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grants[userID] == nil {
		f.grants[userID] = make(map[int64]bool)
	}
	f.grants[userID][roleID] = true
	return nil
}

func (f *fakeRoleRepo) RolesForUser(ctx context.Context, userID int64) ([]model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var roles []model.Role
	for _, role := range f.roles {
		if f.grants[userID][role.ID] {
			roles = append(roles, *role)
		}
	}
	return roles, nil
}

func (f *fakeRoleRepo) AnyUserWithRole(ctx context.Context, roleName string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[roleName]
	if !ok {
		return false, nil
	}
	for _, held := range f.grants {
		if held[role.ID] {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRoleRepo) roleNames(userID int64) []string {
	roles, _ := f.RolesForUser(context.Background(), userID)
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	return names
}

type fakeAuthorRepo struct {
	mu      sync.Mutex
	nextID  int64
	byUser  map[int64]*model.Author
	created int
}

func newFakeAuthorRepo() *fakeAuthorRepo {
	return &fakeAuthorRepo{nextID: 1, byUser: make(map[int64]*model.Author)}
}

func (f *fakeAuthorRepo) Create(ctx context.Context, author *model.Author) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byUser[author.UserID]; ok {
		return fmt.Errorf("author profile already exists for this user: %w", common.ErrConflict)
	}
	author.ID = f.nextID
	f.nextID++
	copied := *author
	f.byUser[author.UserID] = &copied
	f.created++
	return nil
}

func (f *fakeAuthorRepo) FindByUserID(ctx context.Context, userID int64) (*model.Author, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	author, ok := f.byUser[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *author
	return &copied, nil
}

func (f *fakeAuthorRepo) Update(ctx context.Context, author *model.Author) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.byUser[author.UserID]
	if !ok || existing.ID != author.ID {
		return common.ErrNotFound
	}
	copied := *author
	f.byUser[author.UserID] = &copied
	return nil
}

func (f *fakeAuthorRepo) ExistsForUser(ctx context.Context, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byUser[userID]
	return ok, nil
}
