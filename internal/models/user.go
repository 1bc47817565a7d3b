package models

import (
	"time"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Confirmed    bool
	IsActive     bool
	Avatar       *string // public URL set by avatar upload
	RefreshToken *string // overwritten on each login
	AccessToken  *string // held only for the email-confirmation flow
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
