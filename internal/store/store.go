package store

import (
	"context"
	"errors"

	"tasker/internal/models"
)

// ErrNotFound is returned when a task or tag does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for data persistence operations.
type Store interface {
	// Task operations
	CreateTask(ctx context.Context, task *models.Task, tagNames []string) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, q models.TaskQuery) (*models.TaskPage, error)
	UpdateTask(ctx context.Context, id string, in models.UpdateTaskInput) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	Statistics(ctx context.Context) (*models.Statistics, error)

	// Tag operations
	FindOrCreateTags(ctx context.Context, names []string) ([]models.Tag, error)
	ListTags(ctx context.Context) ([]models.Tag, error)

	// Lifecycle
	Close() error
}
