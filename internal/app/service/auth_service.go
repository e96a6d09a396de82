package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"blogcore/internal/common"
	"blogcore/internal/common/security"
	"blogcore/internal/domain/model"
	"blogcore/internal/domain/repository"
)

type AuthService struct {
	userRepo   repository.UserRepository
	roleRepo   repository.RoleRepository
	authorRepo repository.AuthorRepository
	hasher     *security.Hasher
	tokens     *security.TokenService

	// adminSetupKey gates RegisterAdmin. Empty means the operation is
	// disabled entirely (fail closed), not open to everyone.
	adminSetupKey string

	db *sql.DB // For transactions
}

func NewAuthService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	authorRepo repository.AuthorRepository,
	hasher *security.Hasher,
	tokens *security.TokenService,
	adminSetupKey string,
	db *sql.DB,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		roleRepo:      roleRepo,
		authorRepo:    authorRepo,
		hasher:        hasher,
		tokens:        tokens,
		adminSetupKey: adminSetupKey,
		db:            db,
	}
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type RegisterAdminRequest struct {
	RegisterRequest
	AdminSecretKey      string  `json:"admin_secret_key"`
	IsAuthor            bool    `json:"is_author"`
	CreateAuthorProfile bool    `json:"create_author_profile"`
	Bio                 string  `json:"bio"`
	ProfilePictureURL   *string `json:"profile_picture_url,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

type CurrentUserResponse struct {
	ID                int64      `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Roles             []string   `json:"roles"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	RegisteredAt      time.Time  `json:"registered_at"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
}

func validEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// Register creates a regular account and grants the Subscriber role.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("username, email and password are required: %w", common.ErrValidation)
	}
	if !validEmail(req.Email) {
		return nil, fmt.Errorf("invalid email address: %w", common.ErrValidation)
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("username or email already exists: %w", common.ErrConflict)
	}

	user, err := s.newUserWithCredentials(req)
	if err != nil {
		return nil, err
	}

	// The subscriber role is created lazily on first use; the upsert is
	// race-safe against concurrent registrations.
	subscriberRole, err := s.roleRepo.EnsureRole(ctx, model.RoleSubscriber, "Regular user with basic privileges")
	if err != nil {
		return nil, fmt.Errorf("failed to ensure subscriber role: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	if err := s.userRepo.Create(ctx, tx, user); err != nil {
		return nil, err
	}
	if err := s.roleRepo.GrantRole(ctx, tx, user.ID, subscriberRole.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	token, err := s.tokens.Issue(user, []string{model.RoleSubscriber})
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{User: user, Token: token}, nil
}

// RegisterAdmin creates an administrator account. It is only usable with
// the configured admin setup key; without one it refuses every request.
func (s *AuthService) RegisterAdmin(ctx context.Context, req RegisterAdminRequest) (*AuthResponse, error) {
	if s.adminSetupKey == "" {
		return nil, fmt.Errorf("admin registration is disabled: %w", common.ErrForbidden)
	}
	if subtle.ConstantTimeCompare([]byte(req.AdminSecretKey), []byte(s.adminSetupKey)) != 1 {
		return nil, fmt.Errorf("invalid admin secret key: %w", common.ErrUnauthorized)
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("username, email and password are required: %w", common.ErrValidation)
	}
	if !validEmail(req.Email) {
		return nil, fmt.Errorf("invalid email address: %w", common.ErrValidation)
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("username or email already exists: %w", common.ErrConflict)
	}

	user, err := s.newUserWithCredentials(req.RegisterRequest)
	if err != nil {
		return nil, err
	}

	adminRole, err := s.roleRepo.EnsureRole(ctx, model.RoleAdmin, "Administrator with full access")
	if err != nil {
		return nil, fmt.Errorf("failed to ensure admin role: %w", err)
	}

	roleNames := []string{model.RoleAdmin}
	var authorRole *model.Role
	if req.IsAuthor {
		authorRole, err = s.roleRepo.EnsureRole(ctx, model.RoleAuthor, "Can create and manage blog posts")
		if err != nil {
			return nil, fmt.Errorf("failed to ensure author role: %w", err)
		}
		roleNames = append(roleNames, model.RoleAuthor)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.userRepo.Create(ctx, tx, user); err != nil {
		return nil, err
	}
	if err := s.roleRepo.GrantRole(ctx, tx, user.ID, adminRole.ID); err != nil {
		return nil, err
	}
	if authorRole != nil {
		if err := s.roleRepo.GrantRole(ctx, tx, user.ID, authorRole.ID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit admin registration: %w", err)
	}

	if req.IsAuthor && req.CreateAuthorProfile {
		author := &model.Author{
			FirstName:         user.FirstName,
			LastName:          user.LastName,
			Email:             user.Email,
			Bio:               req.Bio,
			ProfilePictureURL: req.ProfilePictureURL,
			JoinedAt:          time.Now().UTC(),
			UserID:            user.ID,
		}
		if err := s.authorRepo.Create(ctx, author); err != nil {
			return nil, fmt.Errorf("failed to create author profile: %w", err)
		}
	}

	token, err := s.tokens.Issue(user, roleNames)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{User: user, Token: token}, nil
}

// Login verifies credentials and issues a session token. Wrong email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password are required: %w", common.ErrBadRequest)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.IsActive {
		return nil, common.ErrUnauthorized
	}
	if !s.hasher.Verify(req.Password, user.Salt, user.PasswordHash) {
		return nil, common.ErrUnauthorized
	}

	now := time.Now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLoginAt = &now

	roles, err := s.roleRepo.RolesForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	roleNames := make([]string, 0, len(roles))
	for _, role := range roles {
		roleNames = append(roleNames, role.Name)
	}

	token, err := s.tokens.Issue(user, roleNames)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{User: user, Token: token}, nil
}

// CurrentUser returns the authenticated user's profile with role names
// read fresh from the store.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*CurrentUserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	roles, err := s.roleRepo.RolesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	roleNames := make([]string, 0, len(roles))
	for _, role := range roles {
		roleNames = append(roleNames, role.Name)
	}

	return &CurrentUserResponse{
		ID:                user.ID,
		Username:          user.Username,
		Email:             user.Email,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		Roles:             roleNames,
		ProfilePictureURL: user.ProfilePictureURL,
		RegisteredAt:      user.RegisteredAt,
		LastLoginAt:       user.LastLoginAt,
	}, nil
}

// newUserWithCredentials builds a user record with freshly salted and
// hashed credentials. The plaintext password is never stored.
func (s *AuthService) newUserWithCredentials(req RegisterRequest) (*model.User, error) {
	salt, err := security.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(req.Password, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Salt:         salt,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		RegisteredAt: time.Now().UTC(),
		IsActive:     true,
	}, nil
}
