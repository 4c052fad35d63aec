package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rosterhq/roster/engine/core"
	"github.com/rosterhq/roster/engine/user"
)

const userColumns = "id, name, email, age, created_at, updated_at"

// Repository implements the user storage port using PostgreSQL. Every
// operation executes exactly one statement; there is no retry logic and
// no multi-statement coordination.
type Repository struct {
	db DBInterface
}

// DBInterface defines the minimal interface needed by the repository
type DBInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var (
	_ user.Repository = (*Repository)(nil)
	_ DBInterface     = (pgx.Tx)(nil)
)

// NewRepository creates a new user repository
func NewRepository(db DBInterface) user.Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *Repository) WithTx(tx pgx.Tx) user.Repository {
	return &Repository{db: tx}
}

// CreateUser inserts a new user and returns the stored row. Timestamps
// come from the column defaults.
func (r *Repository) CreateUser(ctx context.Context, u *user.User) (*user.User, error) {
	query, args, err := squirrel.Insert("users").
		Columns("id", "name", "email", "age").
		Values(u.ID, u.Name, u.Email, u.Age).
		Suffix("RETURNING " + userColumns).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building insert query: %w", err)
	}
	var created user.User
	if err := pgxscan.Get(ctx, r.db, &created, query, args...); err != nil {
		return nil, translateError("inserting user", err)
	}
	return &created, nil
}

// GetUser retrieves a user by ID
func (r *Repository) GetUser(ctx context.Context, id core.ID) (*user.User, error) {
	query, args, err := squirrel.Select("id", "name", "email", "age", "created_at", "updated_at").
		From("users").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var found user.User
	if err := pgxscan.Get(ctx, r.db, &found, query, args...); err != nil {
		return nil, translateError("selecting user", err)
	}
	return &found, nil
}

// UpdateUser applies a partial update in a single statement. COALESCE
// keeps columns whose input field is nil, so the merge happens inside
// the store and a missing ID yields no row instead of creating one.
func (r *Repository) UpdateUser(ctx context.Context, input *user.UpdateUser) (*user.User, error) {
	query, args, err := squirrel.Update("users").
		Set("name", squirrel.Expr("COALESCE(?, name)", input.Name)).
		Set("email", squirrel.Expr("COALESCE(?, email)", input.Email)).
		Set("age", squirrel.Expr("COALESCE(?, age)", input.Age)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": input.ID}).
		Suffix("RETURNING " + userColumns).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building update query: %w", err)
	}
	var updated user.User
	if err := pgxscan.Get(ctx, r.db, &updated, query, args...); err != nil {
		return nil, translateError("updating user", err)
	}
	return &updated, nil
}

// DeleteUser removes a user by ID
func (r *Repository) DeleteUser(ctx context.Context, id core.ID) error {
	query, args, err := squirrel.Delete("users").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building delete query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return translateError("deleting user", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// ListUsers retrieves all users, newest first
func (r *Repository) ListUsers(ctx context.Context) ([]*user.User, error) {
	query, args, err := squirrel.Select("id", "name", "email", "age", "created_at", "updated_at").
		From("users").
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var users []*user.User
	if err := pgxscan.Select(ctx, r.db, &users, query, args...); err != nil {
		return nil, translateError("selecting users", err)
	}
	return users, nil
}

// translateError maps store-level failures onto the domain taxonomy.
// Everything unclassified counts as a store failure.
func translateError(op string, err error) error {
	if pgxscan.NotFound(err) || errors.Is(err, pgx.ErrNoRows) {
		return user.ErrUserNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%s: %w", op, user.ErrEmailExists)
	}
	return fmt.Errorf("%s: %w: %w", op, user.ErrStoreFailure, err)
}
