// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package identity

import (
	"context"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// usernameRegex matches usernames that:
// - Start with a letter (a-z, A-Z)
// - Contain only letters, numbers, and underscores
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// CredentialRecord is a registered principal. Records are created once by
// registration and never mutated or deleted. PasswordHash and Salt must not
// leave this package; external representations use User.
type CredentialRecord struct {
	ID           ulid.ULID
	Username     string
	PasswordHash []byte
	Salt         []byte
	Iterations   int
	CreatedAt    time.Time
}

// User is the public view of a credential record. It carries no secret
// material.
type User struct {
	ID        ulid.ULID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// User returns the redacted public view of the record.
func (r *CredentialRecord) User() *User {
	return &User{
		ID:        r.ID,
		Username:  r.Username,
		CreatedAt: r.CreatedAt,
	}
}

// ValidateUsername validates a username against rules.
// Username requirements:
// - Length: MinUsernameLength to MaxUsernameLength characters
// - Must start with a letter
// - Can contain only letters (a-z, A-Z), numbers (0-9), and underscores (_)
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("AUTH_INVALID_USERNAME").
			Errorf("username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// UserRepository manages credential record persistence. Usernames are unique
// and case-sensitive; Create must reject a duplicate with ErrUsernameTaken
// without mutating the existing record.
type UserRepository interface {
	// Create stores a new credential record.
	Create(ctx context.Context, record *CredentialRecord) error

	// GetByID retrieves a record by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*CredentialRecord, error)

	// GetByUsername retrieves a record by exact username.
	GetByUsername(ctx context.Context, username string) (*CredentialRecord, error)
}
