package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blogcore/internal/common"
	"blogcore/internal/domain/model"
)

type RoleRepository interface {
	// EnsureRole upserts a role by name and returns the surviving row.
	// Safe to call concurrently: the loser of an insert race re-reads the
	// winner's row instead of failing.
	EnsureRole(ctx context.Context, name, description string) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
	// GrantRole is idempotent; granting an already-held role is a no-op.
	GrantRole(ctx context.Context, tx *sql.Tx, userID, roleID int64) error
	RolesForUser(ctx context.Context, userID int64) ([]model.Role, error)
	AnyUserWithRole(ctx context.Context, roleName string) (bool, error)
}

type pgRoleRepository struct {
	db *sql.DB
}

func NewPgRoleRepository(db *sql.DB) RoleRepository {
	return &pgRoleRepository{db: db}
}

func (r *pgRoleRepository) EnsureRole(ctx context.Context, name, description string) (*model.Role, error) {
	// ON CONFLICT DO NOTHING returns no row when another writer got there
	// first; the follow-up read resolves the race via the unique name.
	insert := `INSERT INTO roles (name, description) VALUES ($1, $2)
	           ON CONFLICT (name) DO NOTHING
	           RETURNING id`
	role := &model.Role{Name: name, Description: description}
	err := r.db.QueryRowContext(ctx, insert, name, description).Scan(&role.ID)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pgRoleRepository.EnsureRole: %w", err)
	}
	return r.FindByName(ctx, name)
}

func (r *pgRoleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	query := `SELECT id, name, description FROM roles WHERE name = $1`
	role := &model.Role{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(&role.ID, &role.Name, &role.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgRoleRepository.FindByName: %w", err)
	}
	return role, nil
}

func (r *pgRoleRepository) GrantRole(ctx context.Context, tx *sql.Tx, userID, roleID int64) error {
	query := `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
	          ON CONFLICT (user_id, role_id) DO NOTHING`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, userID, roleID)
	} else {
		_, err = r.db.ExecContext(ctx, query, userID, roleID)
	}
	if err != nil {
		return fmt.Errorf("pgRoleRepository.GrantRole: %w", err)
	}
	return nil
}

func (r *pgRoleRepository) RolesForUser(ctx context.Context, userID int64) ([]model.Role, error) {
	query := `SELECT r.id, r.name, r.description
	          FROM roles r
	          JOIN user_roles ur ON ur.role_id = r.id
	          WHERE ur.user_id = $1
	          ORDER BY r.name`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgRoleRepository.RolesForUser: %w", err)
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, fmt.Errorf("pgRoleRepository.RolesForUser: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgRoleRepository.RolesForUser: %w", err)
	}
	return roles, nil
}

func (r *pgRoleRepository) AnyUserWithRole(ctx context.Context, roleName string) (bool, error) {
	query := `SELECT EXISTS(
	            SELECT 1 FROM user_roles ur
	            JOIN roles r ON r.id = ur.role_id
	            WHERE r.name = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, roleName).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgRoleRepository.AnyUserWithRole: %w", err)
	}
	return exists, nil
}
