package todos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pocketlist/pocketlist/internal/apperror"
	"github.com/pocketlist/pocketlist/internal/ident"
)

// TodoService defines the business logic contract for todos. The ownerID on
// every method is the authenticated caller's identity, supplied by the auth
// middleware -- never by the client payload.
type TodoService interface {
	List(ctx context.Context, ownerID string) ([]Todo, error)
	Create(ctx context.Context, ownerID string, req CreateTodoRequest) (*Todo, error)
	GetByID(ctx context.Context, ownerID, id string) (*Todo, error)
	UpdateByID(ctx context.Context, ownerID, id string, req UpdateTodoRequest) (*Todo, error)
	DeleteByID(ctx context.Context, ownerID, id string) (*Todo, error)
}

// todoService implements TodoService.
type todoService struct {
	repo TodoRepository
}

// NewTodoService creates a new todo service.
func NewTodoService(repo TodoRepository) TodoService {
	return &todoService{repo: repo}
}

// List returns all todos owned by the caller.
func (s *todoService) List(ctx context.Context, ownerID string) ([]Todo, error) {
	todos, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeFault(err)
	}
	if todos == nil {
		todos = []Todo{}
	}
	return todos, nil
}

// Create validates and persists a new todo owned by the caller. New todos
// start incomplete with no completion timestamp.
func (s *todoService) Create(ctx context.Context, ownerID string, req CreateTodoRequest) (*Todo, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperror.NewValidation("text is required")
	}

	todo := &Todo{
		ID:      ident.New(),
		OwnerID: ownerID,
		Text:    text,
	}

	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, storeFault(err)
	}

	refreshed, err := s.repo.FindByIDAndOwner(ctx, todo.ID, ownerID)
	if err != nil {
		return nil, storeFault(err)
	}
	return refreshed, nil
}

// GetByID retrieves one of the caller's todos. A malformed id fails before
// any lookup; a well-formed id that is missing or owned by someone else is
// a plain not-found either way.
func (s *todoService) GetByID(ctx context.Context, ownerID, id string) (*Todo, error) {
	if !ident.Valid(id) {
		return nil, apperror.NewBadRequest("invalid todo id")
	}

	todo, err := s.repo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, storeFault(err)
	}
	return todo, nil
}

// UpdateByID applies a partial update to one of the caller's todos.
//
// Completion policy: setting completed=true stamps completedAt (caller value
// if supplied, otherwise now); setting completed=false clears completedAt no
// matter what the caller sent alongside; a patch that leaves completed unset
// never touches either field.
func (s *todoService) UpdateByID(ctx context.Context, ownerID, id string, req UpdateTodoRequest) (*Todo, error) {
	if !ident.Valid(id) {
		return nil, apperror.NewBadRequest("invalid todo id")
	}

	todo, err := s.repo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, storeFault(err)
	}

	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		if text == "" {
			return nil, apperror.NewValidation("text must not be empty")
		}
		todo.Text = text
	}

	if req.Completed != nil {
		todo.Completed = *req.Completed
		if todo.Completed {
			if req.CompletedAt != nil {
				todo.CompletedAt = req.CompletedAt
			} else {
				now := time.Now().UnixMilli()
				todo.CompletedAt = &now
			}
		} else {
			todo.CompletedAt = nil
		}
	}

	if err := s.repo.Update(ctx, todo); err != nil {
		return nil, storeFault(err)
	}

	refreshed, err := s.repo.FindByIDAndOwner(ctx, todo.ID, ownerID)
	if err != nil {
		return nil, storeFault(err)
	}
	return refreshed, nil
}

// DeleteByID permanently removes one of the caller's todos and returns the
// removed record.
func (s *todoService) DeleteByID(ctx context.Context, ownerID, id string) (*Todo, error) {
	if !ident.Valid(id) {
		return nil, apperror.NewBadRequest("invalid todo id")
	}

	todo, err := s.repo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, storeFault(err)
	}

	if err := s.repo.DeleteByIDAndOwner(ctx, id, ownerID); err != nil {
		return nil, storeFault(err)
	}
	return todo, nil
}

// storeFault passes domain errors through and wraps everything else as an
// internal persistence fault.
func storeFault(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.NewInternal(fmt.Errorf("todo store: %w", err))
}
