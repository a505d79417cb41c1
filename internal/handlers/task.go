package handlers

import (
	"fmt"
	"net/http"

	"tasker/internal/models"
	"tasker/internal/notify"
)

// CreateTask creates a task, reconciling its tag names.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in models.CreateTaskInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := in.Validate(); err != nil {
		respondStoreError(w, err, "")
		return
	}

	task := in.Task()
	if err := h.store.CreateTask(ctx, task, in.Tags); err != nil {
		respondServerError(w, err)
		return
	}

	h.publisher.Publish(notify.NewTaskCreated(task))
	respondJSON(w, http.StatusCreated, task)
}

// ListTasks returns one page of tasks matching the query string.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	q, err := models.ParseTaskQuery(r.URL.Query())
	if err != nil {
		respondStoreError(w, err, "")
		return
	}

	page, err := h.store.ListTasks(r.Context(), q)
	if err != nil {
		respondServerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

// GetTask returns a single task.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	id := parseID(r, "id")

	task, err := h.store.GetTask(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, taskNotFound(id))
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// UpdateTask applies a partial update to an existing task.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := parseID(r, "id")

	var in models.UpdateTaskInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := in.Validate(); err != nil {
		respondStoreError(w, err, "")
		return
	}

	task, err := h.store.UpdateTask(ctx, id, in)
	if err != nil {
		respondStoreError(w, err, taskNotFound(id))
		return
	}

	h.publisher.Publish(notify.NewTaskUpdated(task))
	respondJSON(w, http.StatusOK, task)
}

// DeleteTask deletes a task. Its tags are kept.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := parseID(r, "id")

	if err := h.store.DeleteTask(r.Context(), id); err != nil {
		respondStoreError(w, err, taskNotFound(id))
		return
	}

	h.publisher.Publish(notify.NewTaskDeleted(id))
	w.WriteHeader(http.StatusOK)
}

// Statistics returns task counts by status and priority.
func (h *Handlers) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Statistics(r.Context())
	if err != nil {
		respondServerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// ListTags returns every tag ordered by name.
func (h *Handlers) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.store.ListTags(r.Context())
	if err != nil {
		respondServerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, tags)
}

// Health reports that the server is up.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func taskNotFound(id string) string {
	return fmt.Sprintf("Task with ID %s not found", id)
}
