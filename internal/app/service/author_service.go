package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blogcore/internal/common"
	"blogcore/internal/domain/model"
	"blogcore/internal/domain/repository"
)

// AuthorService manages the author-profile projection of a user. All
// operations act on the calling identity's own profile; cross-user access
// goes through ownership checks at the call sites that need it.
type AuthorService struct {
	authorRepo repository.AuthorRepository
	userRepo   repository.UserRepository
	roleRepo   repository.RoleRepository
}

func NewAuthorService(
	authorRepo repository.AuthorRepository,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
) *AuthorService {
	return &AuthorService{
		authorRepo: authorRepo,
		userRepo:   userRepo,
		roleRepo:   roleRepo,
	}
}

type CreateAuthorProfileRequest struct {
	FirstName         string  `json:"first_name"`
	LastName          string  `json:"last_name"`
	Bio               string  `json:"bio"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
}

type UpdateAuthorProfileRequest struct {
	FirstName         *string `json:"first_name,omitempty"`
	LastName          *string `json:"last_name,omitempty"`
	Bio               *string `json:"bio,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
}

type AuthorProfileResponse struct {
	ID                int64     `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	FullName          string    `json:"full_name"`
	Email             string    `json:"email"`
	Bio               string    `json:"bio"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty"`
	JoinedAt          time.Time `json:"joined_at"`
}

func (s *AuthorService) GetMyProfile(ctx context.Context, userID int64) (*AuthorProfileResponse, error) {
	author, err := s.authorRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("you don't have an author profile yet: %w", common.ErrNotFound)
		}
		return nil, err
	}
	return authorProfileResponse(author), nil
}

// CreateProfile creates the caller's author profile and grants the Author
// role if they do not hold it yet.
func (s *AuthorService) CreateProfile(ctx context.Context, userID int64, req CreateAuthorProfileRequest) (*AuthorProfileResponse, error) {
	exists, err := s.authorRepo.ExistsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("you already have an author profile: %w", common.ErrConflict)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	authorRole, err := s.roleRepo.EnsureRole(ctx, model.RoleAuthor, "Can create and manage blog posts")
	if err != nil {
		return nil, fmt.Errorf("failed to ensure author role: %w", err)
	}
	if err := s.roleRepo.GrantRole(ctx, nil, userID, authorRole.ID); err != nil {
		return nil, err
	}

	author := &model.Author{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             user.Email,
		Bio:               req.Bio,
		ProfilePictureURL: req.ProfilePictureURL,
		JoinedAt:          time.Now().UTC(),
		UserID:            userID,
	}
	if author.FirstName == "" {
		author.FirstName = user.FirstName
	}
	if author.LastName == "" {
		author.LastName = user.LastName
	}

	if err := s.authorRepo.Create(ctx, author); err != nil {
		return nil, err
	}
	return authorProfileResponse(author), nil
}

// UpdateProfile applies a partial in-place update to the caller's profile.
func (s *AuthorService) UpdateProfile(ctx context.Context, userID int64, req UpdateAuthorProfileRequest) (*AuthorProfileResponse, error) {
	author, err := s.authorRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("you don't have an author profile yet: %w", common.ErrNotFound)
		}
		return nil, err
	}

	if req.FirstName != nil {
		author.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		author.LastName = *req.LastName
	}
	if req.Bio != nil {
		author.Bio = *req.Bio
	}
	if req.ProfilePictureURL != nil {
		author.ProfilePictureURL = req.ProfilePictureURL
	}

	if err := s.authorRepo.Update(ctx, author); err != nil {
		return nil, err
	}
	return authorProfileResponse(author), nil
}

func authorProfileResponse(author *model.Author) *AuthorProfileResponse {
	return &AuthorProfileResponse{
		ID:                author.ID,
		FirstName:         author.FirstName,
		LastName:          author.LastName,
		FullName:          author.FullName(),
		Email:             author.Email,
		Bio:               author.Bio,
		ProfilePictureURL: author.ProfilePictureURL,
		JoinedAt:          author.JoinedAt,
	}
}
