package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// TaskRoutes returns the task API, to be mounted at /tasks.
func (h *Handlers) TaskRoutes() http.Handler {
	r := chi.NewRouter()

	r.Post("/", h.CreateTask)
	r.Get("/", h.ListTasks)
	r.Get("/statistics", h.Statistics)
	r.Get("/tags", h.ListTags)
	r.Get("/{id}", h.GetTask)
	r.Patch("/{id}", h.UpdateTask)
	r.Delete("/{id}", h.DeleteTask)

	return r
}
