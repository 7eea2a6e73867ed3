package app

import (
	"github.com/pocketlist/pocketlist/internal/todos"
	"github.com/pocketlist/pocketlist/internal/token"
	"github.com/pocketlist/pocketlist/internal/users"
)

// RegisterRoutes builds each component's repository, service and handler
// and registers its routes on the Echo instance. Components are wired in
// dependency order: the todo routes need the user service for auth.
func (a *App) RegisterRoutes() {
	tokenService := token.NewService(a.Config.Auth.SecretKey)

	// Users: registration, login, session management.
	userRepo := users.NewUserRepository(a.DB)
	userService := users.NewService(userRepo, tokenService)
	userHandler := users.NewHandler(userService)
	users.RegisterRoutes(a.Echo, userHandler, userService, a.Redis)

	// Todos: owner-scoped CRUD, gated by the user session middleware.
	todoRepo := todos.NewTodoRepository(a.DB)
	todoService := todos.NewTodoService(todoRepo)
	todoHandler := todos.NewHandler(todoService)
	todos.RegisterRoutes(a.Echo, todoHandler, userService)
}
