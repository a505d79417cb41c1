package models

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestTaskValidation_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
		errMsg  string
	}{
		{
			name:    "empty title should fail",
			task:    Task{Title: "", Status: StatusPending, Priority: PriorityMedium},
			wantErr: true,
			errMsg:  "title is required",
		},
		{
			name:    "whitespace title should fail",
			task:    Task{Title: "   ", Status: StatusPending, Priority: PriorityMedium},
			wantErr: true,
			errMsg:  "title is required",
		},
		{
			name:    "overlong title should fail",
			task:    Task{Title: strings.Repeat("a", MaxTitleLength+1), Status: StatusPending, Priority: PriorityMedium},
			wantErr: true,
			errMsg:  "title must be 100 characters or fewer",
		},
		{
			name:    "valid task should pass",
			task:    Task{Title: "Test task", Status: StatusPending, Priority: PriorityMedium},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				} else if err.Error() != tt.errMsg {
					t.Errorf("expected error %q, got %q", tt.errMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestTaskValidation_EnumValues(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
		errMsg  string
	}{
		{
			name:    "in_progress status is valid",
			task:    Task{Title: "Test", Status: StatusInProgress, Priority: PriorityLow},
			wantErr: false,
		},
		{
			name:    "high priority is valid",
			task:    Task{Title: "Test", Status: StatusCompleted, Priority: PriorityHigh},
			wantErr: false,
		},
		{
			name:    "empty priority should fail",
			task:    Task{Title: "Test", Status: StatusPending, Priority: ""},
			wantErr: true,
			errMsg:  "priority must be 'low', 'medium', or 'high'",
		},
		{
			name:    "invalid status should fail",
			task:    Task{Title: "Test", Status: "INVALID_STATUS", Priority: PriorityMedium},
			wantErr: true,
			errMsg:  "status must be 'pending', 'in_progress', or 'completed'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				} else if err.Error() != tt.errMsg {
					t.Errorf("expected error %q, got %q", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreateTaskInput_ValidateReportsFields(t *testing.T) {
	bad := Status("INVALID_STATUS")
	in := CreateTaskInput{
		Title:   "",
		Status:  &bad,
		DueDate: strPtr("not a date"),
		Tags:    []string{"ok", strings.Repeat("x", MaxTagNameLength+1)},
	}

	err := in.Validate()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T (%v)", err, err)
	}

	fields := make(map[string]bool)
	for _, fe := range verrs {
		fields[fe.Field] = true
	}
	for _, want := range []string{"title", "status", "dueDate", "tags[1]"} {
		if !fields[want] {
			t.Errorf("expected field error for %q, got %+v", want, verrs)
		}
	}
}

func TestCreateTaskInput_TaskAppliesDefaults(t *testing.T) {
	task := CreateTaskInput{Title: "  Write docs  "}.Task()

	if task.Title != "Write docs" {
		t.Errorf("expected trimmed title, got %q", task.Title)
	}
	if task.Status != StatusPending {
		t.Errorf("expected default status pending, got %q", task.Status)
	}
	if task.Priority != PriorityMedium {
		t.Errorf("expected default priority medium, got %q", task.Priority)
	}
	if task.DueDate != nil {
		t.Errorf("expected no due date, got %v", task.DueDate)
	}
}

func TestUpdateTaskInput_ApplyLeavesUnsuppliedFields(t *testing.T) {
	due := time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC)
	task := &Task{
		Title:       "Original",
		Description: "Keep me",
		Status:      StatusPending,
		Priority:    PriorityLow,
		DueDate:     &due,
	}

	completed := StatusCompleted
	UpdateTaskInput{Status: &completed}.Apply(task)

	if task.Status != StatusCompleted {
		t.Errorf("expected status completed, got %q", task.Status)
	}
	if task.Title != "Original" || task.Description != "Keep me" || task.Priority != PriorityLow {
		t.Errorf("expected other fields unchanged, got %+v", task)
	}
	if task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Errorf("expected due date unchanged, got %v", task.DueDate)
	}
}

func TestUpdateTaskInput_EmptyValuesDoNotClear(t *testing.T) {
	due := time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC)
	task := &Task{Title: "T", Description: "Keep me", DueDate: &due}

	UpdateTaskInput{Description: strPtr(""), DueDate: strPtr("")}.Apply(task)

	if task.Description != "Keep me" {
		t.Errorf("expected description to be kept, got %q", task.Description)
	}
	if task.DueDate == nil {
		t.Error("expected due date to be kept")
	}
}

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantNil bool
		wantErr bool
	}{
		{name: "plain date", input: "2025-10-20", want: "2025-10-20T00:00:00Z"},
		{name: "rfc3339", input: "2025-10-20T15:04:05+02:00", want: "2025-10-20T13:04:05Z"},
		{name: "empty", input: "", wantNil: true},
		{name: "garbage", input: "tomorrow", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDueDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if got.Format(time.RFC3339) != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.Format(time.RFC3339))
			}
		})
	}
}

func TestTask_IsOverdue(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1)
	tomorrow := time.Now().AddDate(0, 0, 1)

	tests := []struct {
		name     string
		task     Task
		expected bool
	}{
		{
			name:     "past due date and not completed is overdue",
			task:     Task{DueDate: &yesterday, Status: StatusInProgress},
			expected: true,
		},
		{
			name:     "past due date but completed is not overdue",
			task:     Task{DueDate: &yesterday, Status: StatusCompleted},
			expected: false,
		},
		{
			name:     "future due date is not overdue",
			task:     Task{DueDate: &tomorrow, Status: StatusPending},
			expected: false,
		},
		{
			name:     "no due date is not overdue",
			task:     Task{DueDate: nil, Status: StatusPending},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.task.IsOverdue()
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestPriority_Rank(t *testing.T) {
	tests := []struct {
		priority Priority
		expected int
	}{
		{PriorityLow, 1},
		{PriorityMedium, 2},
		{PriorityHigh, 3},
		{"urgent", 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			if got := tt.priority.Rank(); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestNormalizeTagNames(t *testing.T) {
	got := NormalizeTagNames([]string{" a", "b", "", "  ", "a", "B"})
	want := []string{"a", "b", "B"}

	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
