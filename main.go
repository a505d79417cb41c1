package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"tasker/internal/config"
	"tasker/internal/handlers"
	authmw "tasker/internal/middleware"
	"tasker/internal/notify"
	"tasker/internal/store"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := runToken(os.Args[2:]); err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		return
	}

	// Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize store
	s, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer s.Close()

	if cfg.SeedDemo {
		n, err := s.SeedDemo(context.Background())
		if err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
		if n > 0 {
			log.Printf("Seeded %d demo tasks", n)
		}
	}

	hub := notify.NewHub(cfg.WSSendBuffer)
	h := handlers.New(s, hub)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(cfg, h, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Starting server on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}

func openStore(cfg *config.Config) (*store.SQLStore, error) {
	if cfg.DBDriver == config.DriverPostgres {
		return store.NewPostgresStore(cfg.DatabaseURL)
	}

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return store.NewSQLiteStore(cfg.DBPath)
}

// newRouter wires the HTTP surface. The WebSocket endpoint sits outside the
// compressed group since upgraded connections cannot be wrapped.
func newRouter(cfg *config.Config, h *handlers.Handlers, ws http.Handler) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigin, ","),
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		if cfg.AuthEnabled() {
			r.Use(authmw.Auth([]byte(cfg.JWTKey)))
		}

		r.Handle("/ws", ws)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Compress(5))
			r.Mount("/tasks", h.TaskRoutes())
		})
	})

	return r
}

// runToken prints a signed bearer token for clients of a server started with
// JWT_KEY.
func runToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	subject := fs.String("sub", "tasker-client", "token subject")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.AuthEnabled() {
		return errors.New("JWT_KEY is not set")
	}

	token, err := authmw.NewToken([]byte(cfg.JWTKey), *subject, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
