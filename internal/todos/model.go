// Package todos implements the per-user todo collection. Every todo is
// permanently tagged with its creator, and every read, update, and delete
// is filtered by that owner at the query level -- a caller can never reach
// another user's record, and an ownership mismatch is indistinguishable
// from a record that does not exist.
package todos

import "time"

// Todo is a single task owned by exactly one user. The owner is an internal
// scoping fact, not part of the response body: callers only ever see their
// own records, so echoing it back adds nothing.
type Todo struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	// CompletedAt is epoch milliseconds, present only while Completed is true.
	CompletedAt *int64    `json:"completedAt,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// --- Request DTOs ---

// CreateTodoRequest holds the payload for creating a todo.
type CreateTodoRequest struct {
	Text string `json:"text"`
}

// UpdateTodoRequest holds a partial update. Nil fields are left untouched.
// CompletedAt is only honored alongside Completed=true; flipping Completed
// to false always clears the timestamp, whatever the caller sent.
type UpdateTodoRequest struct {
	Text        *string `json:"text,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	CompletedAt *int64  `json:"completedAt,omitempty"`
}
