package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tasker/internal/config"
	"tasker/internal/handlers"
	authmw "tasker/internal/middleware"
	"tasker/internal/notify"
	"tasker/internal/store"
)

func setupTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	hub := notify.NewHub(cfg.WSSendBuffer)
	t.Cleanup(hub.Close)

	return newRouter(cfg, handlers.New(s, hub), hub)
}

func TestRouter_OpenWithoutKey(t *testing.T) {
	router := setupTestRouter(t, config.Default())

	for _, path := range []string{"/health", "/tasks", "/tasks/statistics", "/tasks/tags"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))

		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: expected status %d, got %d", path, http.StatusOK, rec.Code)
		}
	}
}

func TestRouter_RequiresTokenWithKey(t *testing.T) {
	cfg := config.Default()
	cfg.JWTKey = "secret"
	router := setupTestRouter(t, cfg)

	token, err := authmw.NewToken([]byte(cfg.JWTKey), "test", time.Hour)
	if err != nil {
		t.Fatalf("NewToken failed: %v", err)
	}

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "health stays open", path: "/health", want: http.StatusOK},
		{name: "tasks without token", path: "/tasks", want: http.StatusUnauthorized},
		{name: "ws without token", path: "/ws", want: http.StatusUnauthorized},
		{name: "tasks with token", path: "/tasks", header: "Bearer " + token, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	cfg := config.Default()
	cfg.CORSOrigin = "http://localhost:5173"
	router := setupTestRouter(t, cfg)

	req := httptest.NewRequest("OPTIONS", "/tasks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("expected allowed origin header, got %q", got)
	}
}
