package models

import (
	"time"
)

// Contact is an address-book entry owned by exactly one user. Every exposed
// operation filters by OwnerID so callers never observe contacts they do
// not own.
type Contact struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	PhoneNumber    *string
	Birthday       *time.Time // calendar date, time component unused
	AdditionalInfo *string
	OwnerID        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ContactUpdate carries partial-update fields; nil means "leave unchanged".
type ContactUpdate struct {
	FirstName      *string
	LastName       *string
	Email          *string
	PhoneNumber    *string
	Birthday       *time.Time
	AdditionalInfo *string
}

// ContactFilter holds optional case-insensitive substring filters for
// contact search. Absent fields are not applied.
type ContactFilter struct {
	FirstName string
	LastName  string
	Email     string
}
