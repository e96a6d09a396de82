package model

import (
	"time"
)

type User struct {
	ID                int64      `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"` // Not exposed
	Salt              string     `json:"-"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	RegisteredAt      time.Time  `json:"registered_at"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	IsActive          bool       `json:"is_active"`
}
