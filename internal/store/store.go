// Package store persists the locally cached user collection. Every
// backend keys records by user id and supports the queries the sync
// engine needs: wholesale replacement, single-record upserts, the max-id
// scan used for local id assignment and the email-uniqueness count.
//
// Store calls may block on I/O and must be kept off latency-sensitive
// goroutines. A backend serializes its own writes; callers do not need
// an external lock.
package store

import (
	"context"

	"userdir/internal/domain/user"
)

// Store is the contract for the persistent user cache.
type Store interface {
	// GetAll returns every cached user. The order is backend-defined and
	// treated as opaque by callers.
	GetAll(ctx context.Context) ([]user.User, error)

	// Insert upserts a single user by id.
	Insert(ctx context.Context, u user.User) error

	// InsertAll upserts a batch of users by id.
	InsertAll(ctx context.Context, users []user.User) error

	// Update rewrites an existing user's record.
	Update(ctx context.Context, u user.User) error

	// Delete removes the user with u's id.
	Delete(ctx context.Context, u user.User) error

	// DeleteAll clears the cache.
	DeleteAll(ctx context.Context) error

	// MaxID returns the highest user id in the cache, 0 when empty.
	MaxID(ctx context.Context) (int64, error)

	// CountWithEmail counts users holding email, excluding the record
	// with excludingID. Used for the email-uniqueness precondition.
	CountWithEmail(ctx context.Context, email string, excludingID int64) (int64, error)

	// Close releases the backend's resources.
	Close() error
}
