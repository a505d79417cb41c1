package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tasker/internal/models"
	"tasker/internal/notify"
	"tasker/internal/store"
)

// maxBodyBytes bounds request bodies; a task at its limits fits many times over.
const maxBodyBytes = 1 << 20

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	store     store.Store
	publisher notify.Publisher
}

// New creates a new Handlers instance. A nil publisher discards events.
func New(s store.Store, p notify.Publisher) *Handlers {
	if p == nil {
		p = notify.Discard
	}
	return &Handlers{
		store:     s,
		publisher: p,
	}
}

// parseID extracts a task ID from URL parameters. Malformed ids are left to
// the store, which reports them as not found.
func parseID(r *http.Request, param string) string {
	return chi.URLParam(r, param)
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	StatusCode int                 `json:"statusCode"`
	Error      string              `json:"error"`
	Message    string              `json:"message"`
	Details    []models.FieldError `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, errorResponse{
		StatusCode: code,
		Error:      http.StatusText(code),
		Message:    message,
	})
}

func respondValidationError(w http.ResponseWriter, errs models.ValidationErrors) {
	respondJSON(w, http.StatusBadRequest, errorResponse{
		StatusCode: http.StatusBadRequest,
		Error:      http.StatusText(http.StatusBadRequest),
		Message:    errs.Error(),
		Details:    errs,
	})
}

func respondServerError(w http.ResponseWriter, err error) {
	log.Printf("internal server error: %v", err)
	respondError(w, http.StatusInternalServerError, "internal server error")
}

// respondStoreError maps store and validation errors onto status codes.
func respondStoreError(w http.ResponseWriter, err error, notFound string) {
	var verrs models.ValidationErrors
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, notFound)
	case errors.As(err, &verrs):
		respondValidationError(w, verrs)
	default:
		respondServerError(w, err)
	}
}

// decodeJSON reads a single JSON object into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
