package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketlist/pocketlist/internal/apperror"
)

// TodoRepository defines the data access contract for todos. Every method
// takes the owner's identity and bakes `owner_id = ?` into its predicate;
// there is deliberately no way to address a row by id alone.
type TodoRepository interface {
	Create(ctx context.Context, todo *Todo) error
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*Todo, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Todo, error)
	Update(ctx context.Context, todo *Todo) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error
}

// todoRepository is the MariaDB implementation of TodoRepository.
type todoRepository struct {
	db *sql.DB
}

// NewTodoRepository creates a new MariaDB-backed todo repository.
func NewTodoRepository(db *sql.DB) TodoRepository {
	return &todoRepository{db: db}
}

// todoColumns is the SELECT column list for todo queries.
const todoColumns = `id, owner_id, text, completed, completed_at, created_at, updated_at`

// Create inserts a new todo.
func (r *todoRepository) Create(ctx context.Context, todo *Todo) error {
	query := `INSERT INTO todos (id, owner_id, text, completed, completed_at)
	          VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		todo.ID, todo.OwnerID, todo.Text, todo.Completed, todo.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting todo: %w", err)
	}
	return nil
}

// FindByIDAndOwner retrieves a todo scoped to its owner. A row owned by
// someone else scans as no rows at all.
func (r *todoRepository) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = ? AND owner_id = ?`

	t := &Todo{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&t.ID, &t.OwnerID, &t.Text, &t.Completed, &t.CompletedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("todo not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scanning todo: %w", err)
	}
	return t, nil
}

// ListByOwner returns all todos owned by the given user, oldest first.
func (r *todoRepository) ListByOwner(ctx context.Context, ownerID string) ([]Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE owner_id = ? ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}
	defer rows.Close()

	var todos []Todo
	for rows.Next() {
		var t Todo
		if err := rows.Scan(
			&t.ID, &t.OwnerID, &t.Text, &t.Completed, &t.CompletedAt,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning todo row: %w", err)
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// Update saves changes to an existing todo, scoped to its owner.
func (r *todoRepository) Update(ctx context.Context, todo *Todo) error {
	query := `UPDATE todos
		SET text = ?, completed = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND owner_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		todo.Text, todo.Completed, todo.CompletedAt,
		todo.ID, todo.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("updating todo: %w", err)
	}

	// With clientFoundRows set on the DSN this counts matched rows, so a
	// value-identical update is not mistaken for a missing row. Zero here
	// means the row is gone or no longer ours.
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("todo not found")
	}
	return nil
}

// DeleteByIDAndOwner removes a todo scoped to its owner.
func (r *todoRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	query := `DELETE FROM todos WHERE id = ? AND owner_id = ?`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("todo not found")
	}
	return nil
}
