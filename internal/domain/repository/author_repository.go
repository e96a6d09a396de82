package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blogcore/internal/common"
	"blogcore/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type AuthorRepository interface {
	Create(ctx context.Context, author *model.Author) error
	FindByUserID(ctx context.Context, userID int64) (*model.Author, error)
	Update(ctx context.Context, author *model.Author) error
	ExistsForUser(ctx context.Context, userID int64) (bool, error)
}

type pgAuthorRepository struct {
	db *sql.DB
}

func NewPgAuthorRepository(db *sql.DB) AuthorRepository {
	return &pgAuthorRepository{db: db}
}

func (r *pgAuthorRepository) Create(ctx context.Context, author *model.Author) error {
	query := `INSERT INTO authors (first_name, last_name, email, bio, profile_picture_url, joined_at, user_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		author.FirstName, author.LastName, author.Email, author.Bio,
		author.ProfilePictureURL, author.JoinedAt, author.UserID,
	).Scan(&author.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // One profile per user
			return fmt.Errorf("author profile already exists for this user: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgAuthorRepository.Create: %w", err)
	}
	return nil
}

func (r *pgAuthorRepository) FindByUserID(ctx context.Context, userID int64) (*model.Author, error) {
	query := `SELECT id, first_name, last_name, email, bio, profile_picture_url, joined_at, user_id
	          FROM authors WHERE user_id = $1`
	author := &model.Author{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&author.ID, &author.FirstName, &author.LastName, &author.Email,
		&author.Bio, &author.ProfilePictureURL, &author.JoinedAt, &author.UserID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgAuthorRepository.FindByUserID: %w", err)
	}
	return author, nil
}

func (r *pgAuthorRepository) Update(ctx context.Context, author *model.Author) error {
	query := `UPDATE authors SET
	            first_name = $1, last_name = $2, bio = $3, profile_picture_url = $4
	          WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query,
		author.FirstName, author.LastName, author.Bio, author.ProfilePictureURL, author.ID,
	)
	if err != nil {
		return fmt.Errorf("pgAuthorRepository.Update: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		// Row vanished between read and write; surface as not-found.
		return common.ErrNotFound
	}
	return nil
}

func (r *pgAuthorRepository) ExistsForUser(ctx context.Context, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM authors WHERE user_id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgAuthorRepository.ExistsForUser: %w", err)
	}
	return exists, nil
}
