package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/pocketlist/pocketlist/internal/apperror"
)

// mysqlDuplicateEntry is the MariaDB error number for a UNIQUE violation.
const mysqlDuplicateEntry = 1062

// UserRepository defines the data access contract for accounts and their
// session tokens. All SQL lives in the concrete implementation -- no SQL
// leaks out.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	// Session tokens. AddToken appends to the user's collection, RemoveToken
	// deletes one entry (no-op if absent), HasToken checks liveness of the
	// exact token string, and ListTokens returns the collection in insertion
	// order.
	AddToken(ctx context.Context, userID, access, tok string) error
	RemoveToken(ctx context.Context, userID, tok string) error
	HasToken(ctx context.Context, userID, tok string) (bool, error)
	ListTokens(ctx context.Context, userID string) ([]SessionToken, error)
}

// userRepository implements UserRepository with hand-written MariaDB queries.
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository backed by the given DB pool.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user row. A UNIQUE violation on email surfaces as a
// conflict so a concurrent duplicate registration loses cleanly instead of
// reporting a server fault.
func (r *userRepository) Create(ctx context.Context, user *User) error {
	query := `INSERT INTO users (id, email, password_hash, created_at)
	          VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return apperror.NewConflict("an account with this email already exists")
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// FindByID retrieves a user by id.
// Returns apperror.NotFound if no user exists with this id.
func (r *userRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT id, email, password_hash, created_at FROM users WHERE id = ?`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}

	return user, nil
}

// FindByEmail retrieves a user by email address. The lookup is exact --
// emails are stored case-sensitively as submitted.
// Returns apperror.NotFound if no user exists with this email.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by email: %w", err)
	}

	return user, nil
}

// EmailExists returns true if a user with the given email already exists.
// Used during registration to check for duplicates before hashing the password.
func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking email existence: %w", err)
	}

	return exists, nil
}

// --- Session Tokens ---

// AddToken appends a session token to the user's collection.
func (r *userRepository) AddToken(ctx context.Context, userID, access, tok string) error {
	query := `INSERT INTO user_tokens (user_id, access, token) VALUES (?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, userID, access, tok)
	if err != nil {
		return fmt.Errorf("inserting session token: %w", err)
	}

	return nil
}

// RemoveToken deletes a session token from the user's collection. Deleting a
// token that is already gone is not an error -- revocation is idempotent.
func (r *userRepository) RemoveToken(ctx context.Context, userID, tok string) error {
	query := `DELETE FROM user_tokens WHERE user_id = ? AND token = ?`

	_, err := r.db.ExecContext(ctx, query, userID, tok)
	if err != nil {
		return fmt.Errorf("deleting session token: %w", err)
	}

	return nil
}

// HasToken reports whether the exact token string is live for the user.
func (r *userRepository) HasToken(ctx context.Context, userID, tok string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM user_tokens WHERE user_id = ? AND token = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, tok).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking session token: %w", err)
	}

	return exists, nil
}

// ListTokens returns the user's live session tokens in insertion order.
func (r *userRepository) ListTokens(ctx context.Context, userID string) ([]SessionToken, error) {
	query := `SELECT access, token FROM user_tokens WHERE user_id = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing session tokens: %w", err)
	}
	defer rows.Close()

	var tokens []SessionToken
	for rows.Next() {
		var t SessionToken
		if err := rows.Scan(&t.Access, &t.Token); err != nil {
			return nil, fmt.Errorf("scanning session token row: %w", err)
		}
		tokens = append(tokens, t)
	}

	return tokens, rows.Err()
}
