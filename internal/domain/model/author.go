package model

import (
	"time"
)

// Author is the optional one-to-one content-creator projection of a User.
type Author struct {
	ID                int64     `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Email             string    `json:"email"`
	Bio               string    `json:"bio"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty"`
	JoinedAt          time.Time `json:"joined_at"`
	UserID            int64     `json:"user_id"`
}

func (a *Author) FullName() string {
	return a.FirstName + " " + a.LastName
}
