// Package lock serializes work per key. Stores use it to make expense
// appends to the same group mutually exclusive, so every expense is built
// against one consistent snapshot of the group's roster.
package lock

import (
	"context"
	"errors"
)

// ErrEmptyKey is returned when a lock is requested for an empty key.
var ErrEmptyKey = errors.New("lock key cannot be empty")

// Locker runs fn while holding the lock for key. The lock is released when
// fn returns, even if it panics.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

// GroupKey is the lock key guarding appends to a group's expense log.
func GroupKey(groupID string) string {
	return "group:" + groupID + ":expenses"
}
