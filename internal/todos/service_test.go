package todos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pocketlist/pocketlist/internal/apperror"
	"github.com/pocketlist/pocketlist/internal/ident"
)

// --- Mock Repository ---

// mockTodoRepo implements TodoRepository for testing.
type mockTodoRepo struct {
	createFn           func(ctx context.Context, todo *Todo) error
	findByIDAndOwnerFn func(ctx context.Context, id, ownerID string) (*Todo, error)
	listByOwnerFn      func(ctx context.Context, ownerID string) ([]Todo, error)
	updateFn           func(ctx context.Context, todo *Todo) error
	deleteFn           func(ctx context.Context, id, ownerID string) error
}

func (m *mockTodoRepo) Create(ctx context.Context, todo *Todo) error {
	if m.createFn != nil {
		return m.createFn(ctx, todo)
	}
	return nil
}

func (m *mockTodoRepo) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*Todo, error) {
	if m.findByIDAndOwnerFn != nil {
		return m.findByIDAndOwnerFn(ctx, id, ownerID)
	}
	return nil, apperror.NewNotFound("todo not found")
}

func (m *mockTodoRepo) ListByOwner(ctx context.Context, ownerID string) ([]Todo, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockTodoRepo) Update(ctx context.Context, todo *Todo) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, todo)
	}
	return nil
}

func (m *mockTodoRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, ownerID)
	}
	return nil
}

// --- Test Helpers ---

// assertAppError checks that err is an *apperror.AppError with the expected code.
func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// echoRepo stores todos passed to Update and echoes them back from
// FindByIDAndOwner, so tests can observe what the service persisted.
type echoRepo struct {
	mockTodoRepo
	stored *Todo
}

func newEchoRepo(initial *Todo) *echoRepo {
	r := &echoRepo{stored: initial}
	r.findByIDAndOwnerFn = func(ctx context.Context, id, ownerID string) (*Todo, error) {
		if r.stored == nil || r.stored.ID != id || r.stored.OwnerID != ownerID {
			return nil, apperror.NewNotFound("todo not found")
		}
		copied := *r.stored
		return &copied, nil
	}
	r.updateFn = func(ctx context.Context, todo *Todo) error {
		copied := *todo
		r.stored = &copied
		return nil
	}
	return r
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func int64Ptr(n int64) *int64 { return &n }

// --- List Tests ---

func TestList_EmptyIsNotNil(t *testing.T) {
	svc := NewTodoService(&mockTodoRepo{})
	todos, err := svc.List(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if todos == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(todos) != 0 {
		t.Errorf("expected no todos, got %d", len(todos))
	}
}

func TestList_ScopedToOwner(t *testing.T) {
	var queriedOwner string
	repo := &mockTodoRepo{
		listByOwnerFn: func(ctx context.Context, ownerID string) ([]Todo, error) {
			queriedOwner = ownerID
			return []Todo{{ID: ident.New(), OwnerID: ownerID, Text: "buy milk"}}, nil
		},
	}

	svc := NewTodoService(repo)
	todos, err := svc.List(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queriedOwner != "owner-1" {
		t.Errorf("expected query scoped to owner-1, got %q", queriedOwner)
	}
	if len(todos) != 1 {
		t.Errorf("expected 1 todo, got %d", len(todos))
	}
}

func TestList_StoreError(t *testing.T) {
	repo := &mockTodoRepo{
		listByOwnerFn: func(ctx context.Context, ownerID string) ([]Todo, error) {
			return nil, errors.New("db connection lost")
		},
	}

	svc := NewTodoService(repo)
	_, err := svc.List(context.Background(), "owner-1")
	assertAppError(t, err, 500)
}

// --- Create Tests ---

func TestCreate_Success(t *testing.T) {
	var created *Todo
	repo := &mockTodoRepo{
		createFn: func(ctx context.Context, todo *Todo) error {
			created = todo
			return nil
		},
		findByIDAndOwnerFn: func(ctx context.Context, id, ownerID string) (*Todo, error) {
			copied := *created
			return &copied, nil
		},
	}

	svc := NewTodoService(repo)
	todo, err := svc.Create(context.Background(), "owner-1", CreateTodoRequest{Text: "  buy milk  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if todo.Text != "buy milk" {
		t.Errorf("expected trimmed text, got %q", todo.Text)
	}
	if todo.OwnerID != "owner-1" {
		t.Errorf("expected owner-1, got %q", todo.OwnerID)
	}
	if !ident.Valid(todo.ID) {
		t.Errorf("expected a generated id, got %q", todo.ID)
	}
	if todo.Completed {
		t.Error("new todos must start incomplete")
	}
	if todo.CompletedAt != nil {
		t.Error("new todos must have no completion timestamp")
	}
}

func TestCreate_EmptyText(t *testing.T) {
	svc := NewTodoService(&mockTodoRepo{})

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := svc.Create(context.Background(), "owner-1", CreateTodoRequest{Text: text})
		assertAppError(t, err, 422)
	}
}

func TestCreate_StoreError(t *testing.T) {
	repo := &mockTodoRepo{
		createFn: func(ctx context.Context, todo *Todo) error {
			return errors.New("db write error")
		},
	}

	svc := NewTodoService(repo)
	_, err := svc.Create(context.Background(), "owner-1", CreateTodoRequest{Text: "buy milk"})
	assertAppError(t, err, 500)
}

// --- GetByID Tests ---

func TestGetByID_MalformedIDBeforeLookup(t *testing.T) {
	lookups := 0
	repo := &mockTodoRepo{
		findByIDAndOwnerFn: func(ctx context.Context, id, ownerID string) (*Todo, error) {
			lookups++
			return nil, apperror.NewNotFound("todo not found")
		},
	}

	svc := NewTodoService(repo)
	for _, id := range []string{"", "123", "not-a-uuid", "zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz"} {
		_, err := svc.GetByID(context.Background(), "owner-1", id)
		assertAppError(t, err, 400)
	}
	if lookups != 0 {
		t.Errorf("malformed ids must fail before any store access, got %d lookups", lookups)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := NewTodoService(&mockTodoRepo{})
	_, err := svc.GetByID(context.Background(), "owner-1", ident.New())
	assertAppError(t, err, 404)
}

func TestGetByID_OtherOwnersTodoLooksMissing(t *testing.T) {
	theirs := &Todo{ID: ident.New(), OwnerID: "owner-2", Text: "their secret"}
	repo := newEchoRepo(theirs)

	svc := NewTodoService(repo)
	_, err := svc.GetByID(context.Background(), "owner-1", theirs.ID)

	// Someone else's todo must be indistinguishable from a missing one.
	assertAppError(t, err, 404)

	missing, errMissing := svc.GetByID(context.Background(), "owner-1", ident.New())
	if missing != nil {
		t.Fatal("expected no todo for a missing id")
	}
	if apperror.SafeMessage(err) != apperror.SafeMessage(errMissing) {
		t.Errorf("cross-owner and missing lookups must report identically: %q vs %q",
			apperror.SafeMessage(err), apperror.SafeMessage(errMissing))
	}
}

func TestGetByID_Success(t *testing.T) {
	mine := &Todo{ID: ident.New(), OwnerID: "owner-1", Text: "buy milk"}
	repo := newEchoRepo(mine)

	svc := NewTodoService(repo)
	todo, err := svc.GetByID(context.Background(), "owner-1", mine.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if todo.Text != "buy milk" {
		t.Errorf("expected buy milk, got %q", todo.Text)
	}
}

// --- UpdateByID Tests ---

func TestUpdateByID_TextOnly(t *testing.T) {
	ts := time.Now().UnixMilli()
	mine := &Todo{ID: ident.New(), OwnerID: "owner-1", Text: "old text", Completed: true, CompletedAt: &ts}
	repo := newEchoRepo(mine)

	svc := NewTodoService(repo)
	todo, err := svc.UpdateByID(context.Background(), "owner-1", mine.ID, UpdateTodoRequest{
		Text: strPtr("  new text  "),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if todo.Text != "new text" {
		t.Errorf("expected trimmed new text, got %q", todo.Text)
	}
	// Completion state untouched when the patch leaves completed unset.
	if !todo.Completed {
		t.Error("completed must be untouched")
	}
	if todo.CompletedAt == nil || *todo.CompletedAt != ts {
		t.Error("completedAt must be untouched")
	}
}

func TestUpdateByID_EmptyTextRejected(t *testing.T) {
	mine := &Todo{ID: ident.New(), OwnerID: "owner-1", Text: "old text"}
	repo := newEchoRepo(mine)

	svc := NewTodoService(repo)
	_, err := svc.UpdateByID(context.Background(), "owner-1", mine.ID, UpdateTodoRequest{
		Text: strPtr("   "),
	})
	assertAppError(t, err, 422)
}

func TestUpdateByID_CompleteStampsNow(t *testing.T) {
	mine := &Todo{ID: ident.New(), OwnerID: "owner-1", Text: "buy milk"}
	repo := newEchoRepo(mine)

	before := time.Now().UnixMilli()
	svc := NewTodoService(repo)
	todo, err := svc.UpdateByID(context.Background(), "owner-1", mine.ID, UpdateTodoRequest{
		Completed: boolPtr(true),
	})
	after := time.Now().UnixMilli()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !todo.Completed {
		t.Fatal("expected completed=true")
	}
	if todo.CompletedAt == nil {
		t.Fatal("expected completedAt stamped")
	}
	if *todo.CompletedAt < before || *todo.CompletedAt > after {
		t.Errorf("completedAt %d outside [%d, %d]", *todo.CompletedAt, before, after)
	}
}

func TestUpdateByID_CompleteKeepsSuppliedTimestamp(t *testing.T) {
	mine := &Todo{ID: ident.New(), OwnerID: "owner-1", Text: "buy milk"}
	repo := newEchoRepo(mine)

	svc := NewTodoService(repo)
	todo, err := svc.UpdateByID(context.Background(), "owner-1", mine.ID, UpdateTodoRequest{
		Completed:   boolPtr(true),
		CompletedAt: int64Ptr(1700000000000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if todo.CompletedAt == nil || *todo.CompletedAt != 1700000000000 {
		t.Errorf("expected caller-supplied timestamp kept, got %v", todo.CompletedAt)
	}
}

func TestUpdateByID_UncompleteClearsTimestamp(t *testing.T) {
	ts := time.Now().UnixMilli()
	mine := &Todo{ID: ident.New(), OwnerID: "owner-1", Text: "buy milk", Completed: true, CompletedAt: &ts}
	repo := newEchoRepo(mine)

	svc := NewTodoService(repo)
	todo, err := svc.UpdateByID(context.Background(), "owner-1", mine.ID, UpdateTodoRequest{
		Completed:   boolPtr(false),
		CompletedAt: int64Ptr(1700000000000), // Ignored: uncompleting always clears.
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if todo.Completed {
		t.Error("expected completed=false")
	}
	if todo.CompletedAt != nil {
		t.Errorf("expected completedAt cleared, got %v", *todo.CompletedAt)
	}
}

func TestUpdateByID_MalformedID(t *testing.T) {
	svc := NewTodoService(&mockTodoRepo{})
	_, err := svc.UpdateByID(context.Background(), "owner-1", "nope", UpdateTodoRequest{
		Text: strPtr("new text"),
	})
	assertAppError(t, err, 400)
}

func TestUpdateByID_CrossOwner(t *testing.T) {
	theirs := &Todo{ID: ident.New(), OwnerID: "owner-2", Text: "their todo"}
	repo := newEchoRepo(theirs)

	svc := NewTodoService(repo)
	_, err := svc.UpdateByID(context.Background(), "owner-1", theirs.ID, UpdateTodoRequest{
		Text: strPtr("hijacked"),
	})
	assertAppError(t, err, 404)
	if repo.stored.Text != "their todo" {
		t.Error("cross-owner update must not touch the record")
	}
}

// --- DeleteByID Tests ---

func TestDeleteByID_ReturnsRemovedTodo(t *testing.T) {
	mine := &Todo{ID: ident.New(), OwnerID: "owner-1", Text: "buy milk"}
	var deletedID, deletedOwner string
	repo := newEchoRepo(mine)
	repo.deleteFn = func(ctx context.Context, id, ownerID string) error {
		deletedID, deletedOwner = id, ownerID
		return nil
	}

	svc := NewTodoService(repo)
	todo, err := svc.DeleteByID(context.Background(), "owner-1", mine.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if todo.ID != mine.ID || todo.Text != "buy milk" {
		t.Errorf("expected the removed record back, got %+v", todo)
	}
	if deletedID != mine.ID || deletedOwner != "owner-1" {
		t.Errorf("expected owner-scoped delete, got %s / %s", deletedID, deletedOwner)
	}
}

func TestDeleteByID_MalformedID(t *testing.T) {
	deletes := 0
	repo := &mockTodoRepo{
		deleteFn: func(ctx context.Context, id, ownerID string) error {
			deletes++
			return nil
		},
	}

	svc := NewTodoService(repo)
	_, err := svc.DeleteByID(context.Background(), "owner-1", "short-id")
	assertAppError(t, err, 400)
	if deletes != 0 {
		t.Error("malformed ids must fail before any store access")
	}
}

func TestDeleteByID_CrossOwner(t *testing.T) {
	theirs := &Todo{ID: ident.New(), OwnerID: "owner-2", Text: "their todo"}
	repo := newEchoRepo(theirs)

	svc := NewTodoService(repo)
	_, err := svc.DeleteByID(context.Background(), "owner-1", theirs.ID)
	assertAppError(t, err, 404)
	if repo.stored == nil {
		t.Error("cross-owner delete must not remove the record")
	}
}
