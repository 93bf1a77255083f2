package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/todoflow-labs/todo-service/internal/events"
	"github.com/todoflow-labs/todo-service/internal/logging"
	"github.com/todoflow-labs/todo-service/internal/store"
)

// Routes returns the todo endpoints, to be mounted at /api/todos.
func Routes(st *store.Store, pub events.Publisher, logger *logging.Logger) chi.Router {
	r := chi.NewRouter()
	r.Get("/", ListTodos(st, logger))
	r.Post("/", CreateTodo(st, pub, logger))
	r.Get("/{id}", GetTodo(st, logger))
	r.Put("/{id}", UpdateTodo(st, pub, logger))
	r.Delete("/{id}", DeleteTodo(st, pub, logger))
	return r
}
