package todos

import (
	"github.com/labstack/echo/v4"

	"github.com/pocketlist/pocketlist/internal/users"
)

// RegisterRoutes sets up all todo routes behind the auth middleware.
func RegisterRoutes(e *echo.Echo, h *Handler, userService users.Service) {
	g := e.Group("/todos", users.RequireAuth(userService))

	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
