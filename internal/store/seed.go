package store

import (
	"context"
	"fmt"
	"time"

	"tasker/internal/models"
)

type demoTask struct {
	title       string
	description string
	status      models.Status
	priority    models.Priority
	due         string
	tags        []string
}

var demoTasks = []demoTask{
	{"Set up project structure", "Create the initial folder structure and configure the development environment", models.StatusCompleted, models.PriorityHigh, "2025-10-05", []string{"setup"}},
	{"Implement user authentication", "Add login, registration, and JWT token management", models.StatusInProgress, models.PriorityHigh, "2025-10-10", []string{"backend"}},
	{"Design database schema", "Create entity relationships and database migrations", models.StatusCompleted, models.PriorityMedium, "2025-09-28", []string{"backend"}},
	{"Create API endpoints", "Implement RESTful API endpoints for task management", models.StatusCompleted, models.PriorityHigh, "2025-10-02", []string{"backend"}},
	{"Build responsive UI", "Create a modern, responsive user interface", models.StatusInProgress, models.PriorityMedium, "2025-10-15", []string{"frontend"}},
	{"Add unit tests", "Write comprehensive unit tests for all components", models.StatusPending, models.PriorityMedium, "2025-10-20", []string{"testing"}},
	{"Configure CI/CD pipeline", "Set up automated testing and deployment pipeline", models.StatusPending, models.PriorityLow, "2025-10-25", []string{"setup"}},
	{"Write documentation", "Create comprehensive API and user documentation", models.StatusPending, models.PriorityLow, "2025-10-30", []string{"docs"}},
}

// SeedDemo inserts a small set of sample tasks when the store has no tasks.
// It returns the number of tasks created.
func (s *SQLStore) SeedDemo(ctx context.Context) (int, error) {
	var count int
	if err := s.queryRow(ctx, s.db, `SELECT COUNT(*) FROM tasks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for i, d := range demoTasks {
		due, err := time.Parse("2006-01-02", d.due)
		if err != nil {
			return i, fmt.Errorf("invalid demo due date %q: %w", d.due, err)
		}

		task := &models.Task{
			Title:       d.title,
			Description: d.description,
			Status:      d.status,
			Priority:    d.priority,
			DueDate:     &due,
		}
		if err := s.CreateTask(ctx, task, d.tags); err != nil {
			return i, fmt.Errorf("failed to seed %q: %w", d.title, err)
		}
	}

	return len(demoTasks), nil
}
