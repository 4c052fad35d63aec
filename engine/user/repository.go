package user

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/rosterhq/roster/engine/core"
)

// Repository defines the storage port for users. Every failure is one of
// the domain errors from errors.go, possibly wrapped.
type Repository interface {
	// CreateUser persists a new user and returns the stored row.
	// Fails with ErrEmailExists when the email is already taken.
	CreateUser(ctx context.Context, user *User) (*User, error)
	// GetUser retrieves a user by ID. Fails with ErrUserNotFound when no
	// row matches.
	GetUser(ctx context.Context, id core.ID) (*User, error)
	// UpdateUser applies a partial update and returns the stored row.
	// Fails with ErrUserNotFound when the ID does not exist and with
	// ErrEmailExists on a uniqueness violation. Never creates a row.
	UpdateUser(ctx context.Context, input *UpdateUser) (*User, error)
	// DeleteUser removes a user by ID. Fails with ErrUserNotFound when the
	// ID does not exist; a second delete of the same ID fails the same way.
	DeleteUser(ctx context.Context, id core.ID) error
	// ListUsers retrieves all users, newest first.
	ListUsers(ctx context.Context) ([]*User, error)
	// WithTx returns a repository instance that uses the given transaction
	WithTx(tx pgx.Tx) Repository
}
