package users

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pocketlist/pocketlist/internal/apperror"
)

// Handler handles HTTP requests for accounts and sessions. Handlers are
// thin: they bind the request, call the service, and write the response.
// No business logic lives here.
type Handler struct {
	service Service
}

// NewHandler creates a new users handler with the given service.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register creates a new account (POST /users). The fresh session token is
// returned in the x-auth response header, never in the body.
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	user, tok, err := h.service.Register(c.Request().Context(), RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	c.Response().Header().Set(AuthHeader, tok)
	return c.JSON(http.StatusCreated, map[string]any{
		"user": user,
	})
}

// Login authenticates an account (POST /users/login) and returns a fresh
// session token in the x-auth response header.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	user, tok, err := h.service.Login(c.Request().Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	c.Response().Header().Set(AuthHeader, tok)
	return c.JSON(http.StatusOK, map[string]any{
		"user": user,
	})
}

// Me returns the authenticated user's own record (GET /users/me).
func (h *Handler) Me(c echo.Context) error {
	user := CurrentUser(c)
	if user == nil {
		return apperror.NewUnauthorized("authentication required")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user": user,
	})
}

// Logout revokes the session that made this request (DELETE /users/logout).
// Revocation is idempotent, so logout always succeeds once authenticated.
func (h *Handler) Logout(c echo.Context) error {
	userID := CurrentUserID(c)
	tok := currentToken(c)
	if userID == "" || tok == "" {
		return apperror.NewUnauthorized("authentication required")
	}

	if err := h.service.RevokeToken(c.Request().Context(), userID, tok); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
