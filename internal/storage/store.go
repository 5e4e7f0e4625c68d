// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"splitfair/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for Splitfair's storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
//
// The balance engine never mutates: all List* methods return snapshots the
// engine aggregates over. "Personal" means records with no group scope.
type Store interface {
	// CreateUser persists a new user. The user.ID must already be set.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail retrieves a user by email. Returns ErrNotFound if absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByExternalID retrieves a user by the identity provider's
	// subject. Returns ErrNotFound if absent.
	GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error)

	// UpdateUser updates name, email and avatar of an existing user.
	UpdateUser(ctx context.Context, user *models.User) error

	// DeleteUserByExternalID removes a provider-synced user.
	DeleteUserByExternalID(ctx context.Context, externalID string) error

	// SearchUsersByName returns up to limit users whose display name
	// starts with the given prefix.
	SearchUsersByName(ctx context.Context, prefix string, limit int) ([]*models.User, error)

	// CreateExpense persists a new expense with its splits.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListPersonalExpensesByPayer returns groupless expenses paid by the user.
	ListPersonalExpensesByPayer(ctx context.Context, userID string) ([]models.Expense, error)

	// ListPersonalExpensesByParticipant returns groupless expenses the
	// user holds a split in but did not pay.
	ListPersonalExpensesByParticipant(ctx context.Context, userID string) ([]models.Expense, error)

	// ListExpensesByGroup returns all expenses scoped to the group.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)

	// ListExpensesInRange returns all expenses with from <= date < to.
	ListExpensesInRange(ctx context.Context, from, to int64) ([]models.Expense, error)

	// CreateSettlement persists a new settlement.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListPersonalSettlementsByUser returns groupless settlements with the
	// user as either party.
	ListPersonalSettlementsByUser(ctx context.Context, userID string) ([]models.Settlement, error)

	// ListGroupSettlementsByUser returns the group's settlements with the
	// user as either party.
	ListGroupSettlementsByUser(ctx context.Context, groupID, userID string) ([]models.Settlement, error)

	// CreateGroup persists a new group with its members.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID, including members.
	// Returns ErrNotFound if absent.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByMember returns all groups the user belongs to.
	ListGroupsByMember(ctx context.Context, userID string) ([]models.Group, error)

	// Close releases any resources held by the store.
	Close() error
}
