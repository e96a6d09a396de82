package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogcore/internal/common"
	"blogcore/internal/domain/model"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testUser() *model.User {
	return &model.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Salt:         "salt",
		FirstName:    "Alice",
		LastName:     "Smith",
		RegisteredAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		IsActive:     true,
	}
}

func TestPgUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgUserRepository(db)

	user := testUser()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(user.Username, user.Email, user.PasswordHash, user.Salt, user.FirstName, user.LastName, user.ProfilePictureURL, user.RegisteredAt, user.LastLoginAt, user.IsActive).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(17)))

	err := repo.Create(context.Background(), nil, user)
	require.NoError(t, err)
	assert.Equal(t, int64(17), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_Create_DuplicateIsConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgUserRepository(db)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), nil, testUser())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_FindByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgUserRepository(db)

	registered := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "salt",
		"first_name", "last_name", "profile_picture_url",
		"registered_at", "last_login_at", "is_active",
	}).AddRow(int64(3), "alice", "alice@example.com", "hash", "salt", "Alice", "Smith", nil, registered, nil, true)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email`).
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Nil(t, user.LastLoginAt)
	assert.True(t, user.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_FindByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgUserRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email`).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_ExistsByUsernameOrEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgUserRepository(db)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("alice", "alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByUsernameOrEmail(context.Background(), "alice", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_UpdateLastLogin(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgUserRepository(db)

	at := time.Now().UTC()
	mock.ExpectExec(`UPDATE users SET last_login_at`).
		WithArgs(at, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLastLogin(context.Background(), 5, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_UpdateLastLogin_MissingUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgUserRepository(db)

	at := time.Now().UTC()
	mock.ExpectExec(`UPDATE users SET last_login_at`).
		WithArgs(at, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateLastLogin(context.Background(), 99, at)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
