package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// Status is the workflow state of a task. Any status may be set from any other.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every valid status in workflow order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	return s.Rank() > 0
}

// Rank returns the position of s in workflow order, starting at 1.
// Unknown values return 0.
func (s Status) Rank() int {
	for i, v := range Statuses {
		if v == s {
			return i + 1
		}
	}
	return 0
}

// Priority is the importance of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every valid priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of the enumerated priorities.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank returns 1 for low up to 3 for high. Unknown values return 0.
func (p Priority) Rank() int {
	for i, v := range Priorities {
		if v == p {
			return i + 1
		}
	}
	return 0
}

// Task represents a single tracked unit of work.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        []Tag      `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Validate checks that the task has valid field values.
func (t *Task) Validate() error {
	var errs ValidationErrors
	validateTitle(&errs, t.Title)
	validateDescription(&errs, t.Description)

	if !t.Status.Valid() {
		errs.Add("status", statusMessage())
	}
	if !t.Priority.Valid() {
		errs.Add("priority", priorityMessage())
	}

	return errs.OrNil()
}

// IsOverdue returns true if the task has a due date that has passed and is not completed.
func (t *Task) IsOverdue() bool {
	if t.Status == StatusCompleted || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(time.Now())
}

// TagNames returns the names of the task's tags in their current order.
func (t *Task) TagNames() []string {
	names := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		names = append(names, tag.Name)
	}
	return names
}

// CreateTaskInput is the body of a create request.
type CreateTaskInput struct {
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	DueDate     *string   `json:"dueDate,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

// Validate checks the create request before any defaults are applied.
func (in CreateTaskInput) Validate() error {
	var errs ValidationErrors
	validateTitle(&errs, in.Title)
	if in.Description != nil {
		validateDescription(&errs, *in.Description)
	}
	if in.Status != nil && !in.Status.Valid() {
		errs.Add("status", statusMessage())
	}
	if in.Priority != nil && !in.Priority.Valid() {
		errs.Add("priority", priorityMessage())
	}
	if in.DueDate != nil {
		if _, err := ParseDueDate(*in.DueDate); err != nil {
			errs.Add("dueDate", err.Error())
		}
	}
	validateTagNames(&errs, in.Tags)
	return errs.OrNil()
}

// Task builds a new task from the input, defaulting status to pending and
// priority to medium. Tags are left for the store to reconcile.
func (in CreateTaskInput) Task() *Task {
	task := &Task{
		Title:    strings.TrimSpace(in.Title),
		Status:   StatusPending,
		Priority: PriorityMedium,
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.DueDate != nil {
		task.DueDate, _ = ParseDueDate(*in.DueDate)
	}
	return task
}

// UpdateTaskInput is the body of a partial update. Nil fields are left unchanged.
// A nil Tags pointer leaves tags untouched; a pointer to an empty slice clears them.
type UpdateTaskInput struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	DueDate     *string   `json:"dueDate,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// Validate checks only the fields that were supplied.
func (in UpdateTaskInput) Validate() error {
	var errs ValidationErrors
	if in.Title != nil {
		validateTitle(&errs, *in.Title)
	}
	if in.Description != nil {
		validateDescription(&errs, *in.Description)
	}
	if in.Status != nil && !in.Status.Valid() {
		errs.Add("status", statusMessage())
	}
	if in.Priority != nil && !in.Priority.Valid() {
		errs.Add("priority", priorityMessage())
	}
	if in.DueDate != nil {
		if _, err := ParseDueDate(*in.DueDate); err != nil {
			errs.Add("dueDate", err.Error())
		}
	}
	if in.Tags != nil {
		validateTagNames(&errs, *in.Tags)
	}
	return errs.OrNil()
}

// Apply copies the supplied scalar fields onto t. An empty description or due
// date counts as absent, so neither can be cleared through an update.
func (in UpdateTaskInput) Apply(t *Task) {
	if in.Title != nil {
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil && *in.Description != "" {
		t.Description = *in.Description
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.DueDate != nil {
		if due, _ := ParseDueDate(*in.DueDate); due != nil {
			t.DueDate = due
		}
	}
}

// ParseDueDate accepts an RFC 3339 timestamp or a plain YYYY-MM-DD date.
// An empty string yields a nil time and no error.
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("dueDate must be a valid ISO 8601 date string")
}

func validateTitle(errs *ValidationErrors, title string) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		errs.Add("title", "title is required")
		return
	}
	if utf8.RuneCountInString(trimmed) > MaxTitleLength {
		errs.Add("title", fmt.Sprintf("title must be %d characters or fewer", MaxTitleLength))
	}
}

func validateDescription(errs *ValidationErrors, description string) {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		errs.Add("description", fmt.Sprintf("description must be %d characters or fewer", MaxDescriptionLength))
	}
}

func statusMessage() string {
	return "status must be 'pending', 'in_progress', or 'completed'"
}

func priorityMessage() string {
	return "priority must be 'low', 'medium', or 'high'"
}
