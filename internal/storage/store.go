// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"iter"

	"github.com/mmynk/splitledger/internal/models"
)

// BuildFunc turns the group's current roster into the expense to record.
// It runs while the group's append lock is held; returning an error aborts
// the append without writing anything.
type BuildFunc func(members []models.User) (*models.Expense, error)

// ExpenseStore is the append-only expense history the ledger engine reads.
type ExpenseStore interface {
	// ListMembers returns the group's roster in display order.
	// Fails with common.ErrGroupNotFound for unknown groups.
	ListMembers(ctx context.Context, groupID string) ([]models.User, error)

	// ListExpenses streams the group's expenses with their splits. The
	// sequence is finite and can be ranged over more than once; each pass
	// observes every append committed before it started.
	ListExpenses(ctx context.Context, groupID string) iter.Seq2[*models.Expense, error]

	// AppendExpense records the expense produced by build. Appends to the
	// same group are serialized, and the expense is durable before
	// AppendExpense returns. ID and CreatedAt are filled in when empty.
	AppendExpense(ctx context.Context, groupID string, build BuildFunc) (*models.Expense, error)
}

// Directory owns users and groups.
type Directory interface {
	// CreateUser persists a new user. user.ID and user.CreatedAt are
	// populated by the store when empty.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser fails with common.ErrUserNotFound for unknown ids.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	ListUsers(ctx context.Context) ([]*models.User, error)

	// CreateGroup persists a group and its roster. Only Members[i].ID is
	// read; every member must exist (common.ErrUserNotFound otherwise).
	// Members is rewritten with the stored users, duplicates removed.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup returns the group with its roster.
	// Fails with common.ErrGroupNotFound for unknown ids.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns all groups in creation order.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// ListGroupsForUser returns the groups userID belongs to, in creation order.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)
}

// Store is the full storage backend.
// This abstraction allows swapping storage backends (SQLite, in-memory)
// without changing the engine or service layer.
type Store interface {
	Directory
	ExpenseStore

	// Close releases any resources held by the store.
	Close() error
}
