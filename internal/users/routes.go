package users

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/pocketlist/pocketlist/internal/middleware"
)

// RegisterRoutes sets up account and session routes. Register and login are
// public; me and logout run behind RequireAuth.
//
// The public POST endpoints are rate-limited to slow brute-force and
// credential stuffing: 10 attempts per IP per minute for login, 5 for
// registration.
func RegisterRoutes(e *echo.Echo, h *Handler, service Service, rdb *redis.Client) {
	e.POST("/users", h.Register, middleware.RateLimit(rdb, 5, time.Minute))
	e.POST("/users/login", h.Login, middleware.RateLimit(rdb, 10, time.Minute))

	authed := e.Group("/users", RequireAuth(service))
	authed.GET("/me", h.Me)
	authed.DELETE("/logout", h.Logout)
}
