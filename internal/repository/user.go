// Package repository provides PostgreSQL persistence for users and tasks.
// Driver errors are translated into ErrNotFound and ErrDuplicate; any other
// fault is returned wrapped with the failing operation.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/TaskKeeper/internal/models"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when no row matches the query.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint failures.
const uniqueViolation = pq.ErrorCode("23505")

// PostgresUserRepository implements user persistence using a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// CreateUser inserts u. A username that is already taken yields ErrDuplicate;
// uniqueness is left to the database so concurrent signups cannot both succeed.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, u *models.User) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO users (id, username, password_hash, salt, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Username, u.PasswordHash, u.Salt, u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}

// FindUserByUsername returns the user with the given username or ErrNotFound.
func (r *PostgresUserRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "FindUserByUsername",
		`SELECT id, username, password_hash, salt, created_at FROM users WHERE username = $1`,
		username,
	)
}

// FindUserByID returns the user with the given id or ErrNotFound.
func (r *PostgresUserRepository) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "FindUserByID",
		`SELECT id, username, password_hash, salt, created_at FROM users WHERE id = $1`,
		id,
	)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, op, query string, arg string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Salt, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
