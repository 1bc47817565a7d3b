package models

import (
	"time"
)

// PasswordResetToken is a single-use capability to reset one user's
// password. Consumption is deletion: once used the row is removed so the
// token cannot be replayed.
type PasswordResetToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the token has passed its expiry timestamp.
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
