package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/mail"
	"time"

	"blogcore/internal/common"
	"blogcore/internal/common/security"
	"blogcore/internal/domain/model"
	"blogcore/internal/domain/repository"
)

// BootstrapService provisions baseline reference data in a fresh
// deployment: the well-known roles and, optionally, the first
// administrator account.
type BootstrapService struct {
	userRepo   repository.UserRepository
	roleRepo   repository.RoleRepository
	authorRepo repository.AuthorRepository
	hasher     *security.Hasher
	db         *sql.DB
}

func NewBootstrapService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	authorRepo repository.AuthorRepository,
	hasher *security.Hasher,
	db *sql.DB,
) *BootstrapService {
	return &BootstrapService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		authorRepo: authorRepo,
		hasher:     hasher,
		db:         db,
	}
}

// BootstrapAdmin holds the startup admin credentials from configuration.
type BootstrapAdmin struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type CreateFirstAdminRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// EnsureBaselineRoles inserts the well-known roles that are absent. It is
// idempotent and safe to run from several processes at once; the unique
// constraint on role names resolves insert races.
func (s *BootstrapService) EnsureBaselineRoles(ctx context.Context) error {
	for _, role := range model.BaselineRoles {
		if _, err := s.roleRepo.EnsureRole(ctx, role.Name, role.Description); err != nil {
			return fmt.Errorf("failed to ensure role %q: %w", role.Name, err)
		}
	}
	return nil
}

// EnsureAdmin provisions the first administrator at process start. It is a
// no-op when an administrator already exists or when no bootstrap
// credentials are configured.
func (s *BootstrapService) EnsureAdmin(ctx context.Context, creds BootstrapAdmin) error {
	if creds.Password == "" || creds.Email == "" {
		log.Println("No bootstrap admin credentials configured, skipping admin provisioning")
		return nil
	}

	hasAdmin, err := s.roleRepo.AnyUserWithRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to check for existing admin: %w", err)
	}
	if hasAdmin {
		return nil
	}

	// The configured username/email may collide with a regular account
	// created before any admin existed; refuse rather than hijack it.
	taken, err := s.userRepo.ExistsByUsernameOrEmail(ctx, creds.Username, creds.Email)
	if err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}
	if taken {
		return fmt.Errorf("bootstrap admin username or email already in use: %w", common.ErrConflict)
	}

	if err := s.createAdmin(ctx, creds); err != nil {
		return err
	}
	log.Printf("Provisioned bootstrap admin account %q", creds.Username)
	return nil
}

// CreateFirstAdmin is the endpoint-facing setup operation. Unlike
// EnsureAdmin it rejects explicitly once an administrator exists, so a
// stray call after setup cannot mint a second privileged account.
func (s *BootstrapService) CreateFirstAdmin(ctx context.Context, req CreateFirstAdminRequest) error {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return fmt.Errorf("username, email and password are required: %w", common.ErrValidation)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("invalid email address: %w", common.ErrValidation)
	}

	hasAdmin, err := s.roleRepo.AnyUserWithRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to check for existing admin: %w", err)
	}
	if hasAdmin {
		return fmt.Errorf("an administrator account already exists: %w", common.ErrConflict)
	}

	taken, err := s.userRepo.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}
	if taken {
		return fmt.Errorf("username or email already exists: %w", common.ErrConflict)
	}

	return s.createAdmin(ctx, BootstrapAdmin{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
}

// createAdmin creates the account, grants Admin and Author, and attaches
// an author profile. Concurrent callers race on the users unique
// constraints; the loser surfaces a conflict.
func (s *BootstrapService) createAdmin(ctx context.Context, creds BootstrapAdmin) error {
	salt, err := security.GenerateSalt()
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(creds.Password, salt)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminRole, err := s.roleRepo.EnsureRole(ctx, model.RoleAdmin, "Administrator with full access")
	if err != nil {
		return fmt.Errorf("failed to ensure admin role: %w", err)
	}
	authorRole, err := s.roleRepo.EnsureRole(ctx, model.RoleAuthor, "Can create and manage blog posts")
	if err != nil {
		return fmt.Errorf("failed to ensure author role: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		Username:     creds.Username,
		Email:        creds.Email,
		PasswordHash: hash,
		Salt:         salt,
		FirstName:    creds.FirstName,
		LastName:     creds.LastName,
		RegisteredAt: now,
		IsActive:     true,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.userRepo.Create(ctx, tx, user); err != nil {
		return err
	}
	if err := s.roleRepo.GrantRole(ctx, tx, user.ID, adminRole.ID); err != nil {
		return err
	}
	if err := s.roleRepo.GrantRole(ctx, tx, user.ID, authorRole.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit admin creation: %w", err)
	}

	author := &model.Author{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Bio:       "Blog Administrator",
		JoinedAt:  now,
		UserID:    user.ID,
	}
	if err := s.authorRepo.Create(ctx, author); err != nil {
		return fmt.Errorf("failed to create admin author profile: %w", err)
	}
	return nil
}
