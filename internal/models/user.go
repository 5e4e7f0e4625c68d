package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
//
// Accounts arrive through two paths: the identity-provider webhook (which
// sets ExternalID to the provider's subject) and the local register flow
// (which sets PasswordHash). Both kinds of accounts behave identically once
// resolved.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user.
	Name string

	// Email is the user's email address (unique).
	Email string

	// ImageURL is an optional avatar reference.
	ImageURL string

	// ExternalID is the identity provider's subject for this user.
	// Empty for locally registered accounts.
	ExternalID string

	// PasswordHash is the bcrypt hash for locally registered accounts.
	// Empty for provider-synced accounts. Never serialized to clients.
	PasswordHash string

	// CreatedAt is the Unix millisecond timestamp when the account was created.
	CreatedAt int64
}

// NewUser creates a locally registered user with a fresh ID.
func NewUser(email, name, passwordHash string) *User {
	return &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UnixMilli(),
	}
}
