package bootstrap

import (
	"log/slog"

	"github.com/target/todo-sync/internal/ports"
	"github.com/target/todo-sync/internal/service"
)

// App bundles the wired application services.
type App struct {
	Sessions *service.SessionService
	Todos    *service.TodoService
}

// BuildConfig contains dependencies for the application services.
type BuildConfig struct {
	Provider ports.IdentityProvider
	Store    ports.DurableStore
	Logger   *slog.Logger
}

// BuildApp wires the session and todo services together: the todo
// service follows every session state transition.
func BuildApp(cfg BuildConfig) *App {
	sessions := service.NewSessionService(service.SessionServiceOptions{
		Provider: cfg.Provider,
		Logger:   cfg.Logger,
	})
	todos := service.NewTodoService(service.TodoServiceOptions{
		Store:  cfg.Store,
		Logger: cfg.Logger,
	})
	sessions.Subscribe(todos.OnSessionChange)

	return &App{Sessions: sessions, Todos: todos}
}
