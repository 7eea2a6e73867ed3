package todos

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pocketlist/pocketlist/internal/apperror"
	"github.com/pocketlist/pocketlist/internal/users"
)

// Handler handles HTTP requests for todos. All routes run behind the auth
// middleware; the acting identity comes from the verified token in the
// request context, never from the payload or URL.
type Handler struct {
	service TodoService
}

// NewHandler creates a new todos handler with the given service.
func NewHandler(service TodoService) *Handler {
	return &Handler{service: service}
}

// List returns all of the caller's todos (GET /todos).
func (h *Handler) List(c echo.Context) error {
	ownerID := users.CurrentUserID(c)
	if ownerID == "" {
		return apperror.NewUnauthorized("authentication required")
	}

	todos, err := h.service.List(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data":  todos,
		"total": len(todos),
	})
}

// Create adds a todo owned by the caller (POST /todos).
func (h *Handler) Create(c echo.Context) error {
	ownerID := users.CurrentUserID(c)
	if ownerID == "" {
		return apperror.NewUnauthorized("authentication required")
	}

	var req CreateTodoRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	todo, err := h.service.Create(c.Request().Context(), ownerID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"todo": todo,
	})
}

// Get returns one of the caller's todos by id (GET /todos/:id).
func (h *Handler) Get(c echo.Context) error {
	ownerID := users.CurrentUserID(c)
	if ownerID == "" {
		return apperror.NewUnauthorized("authentication required")
	}

	todo, err := h.service.GetByID(c.Request().Context(), ownerID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"todo": todo,
	})
}

// Update applies a partial update to one of the caller's todos
// (PATCH /todos/:id).
func (h *Handler) Update(c echo.Context) error {
	ownerID := users.CurrentUserID(c)
	if ownerID == "" {
		return apperror.NewUnauthorized("authentication required")
	}

	var req UpdateTodoRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	todo, err := h.service.UpdateByID(c.Request().Context(), ownerID, c.Param("id"), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"todo": todo,
	})
}

// Delete removes one of the caller's todos and returns the removed record
// (DELETE /todos/:id).
func (h *Handler) Delete(c echo.Context) error {
	ownerID := users.CurrentUserID(c)
	if ownerID == "" {
		return apperror.NewUnauthorized("authentication required")
	}

	todo, err := h.service.DeleteByID(c.Request().Context(), ownerID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"todo": todo,
	})
}
