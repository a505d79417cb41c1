package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"tasker/internal/client"
	"tasker/internal/models"
)

type fakeClient struct {
	tasks   []models.Task
	queries []models.TaskQuery
	updates []models.UpdateTaskInput
	created []models.CreateTaskInput
	deleted []string
	listErr error
}

func (f *fakeClient) ListTasks(ctx context.Context, q models.TaskQuery) (*models.TaskPage, error) {
	f.queries = append(f.queries, q)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return models.NewTaskPage(f.tasks, len(f.tasks), q.Normalize()), nil
}

func (f *fakeClient) Statistics(ctx context.Context) (*models.Statistics, error) {
	stats := &models.Statistics{}
	for _, task := range f.tasks {
		stats.Count(task.Status, task.Priority, 1)
	}
	return stats, nil
}

func (f *fakeClient) Tags(ctx context.Context) ([]models.Tag, error) {
	return []models.Tag{}, nil
}

func (f *fakeClient) CreateTask(ctx context.Context, in models.CreateTaskInput) (*models.Task, error) {
	f.created = append(f.created, in)
	return in.Task(), nil
}

func (f *fakeClient) UpdateTask(ctx context.Context, id string, in models.UpdateTaskInput) (*models.Task, error) {
	f.updates = append(f.updates, in)
	return &models.Task{ID: id}, nil
}

func (f *fakeClient) DeleteTask(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func setupTestApp(t *testing.T, tasks ...models.Task) (*App, *fakeClient) {
	t.Helper()
	fc := &fakeClient{tasks: tasks}
	app := NewApp(fc)
	app.Update(app.loadTasksCmd()())
	app.Update(app.loadStats())
	app.Update(app.loadTags())
	return app, fc
}

// run executes cmd and feeds its message back into the app.
func run(app *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	app.Update(cmd())
}

func TestApp_RendersLoadedTasks(t *testing.T) {
	app, _ := setupTestApp(t,
		models.Task{ID: "1", Title: "Write docs", Status: models.StatusPending, Priority: models.PriorityHigh,
			Tags: []models.Tag{{Name: "docs", Color: models.DefaultTagColor}}},
		models.Task{ID: "2", Title: "Ship release", Status: models.StatusCompleted, Priority: models.PriorityLow},
	)

	view := app.View()
	for _, want := range []string{"Write docs", "Ship release", "docs", "2 tasks", "page 1/1"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q:\n%s", want, view)
		}
	}
}

func TestApp_StatusFilterCyclesAndResetsPage(t *testing.T) {
	app, fc := setupTestApp(t)
	app.query.Page = 3

	expected := []models.Status{models.StatusPending, models.StatusInProgress, models.StatusCompleted, ""}
	for _, want := range expected {
		_, cmd := app.Update(keyMsg("s"))
		run(app, cmd)

		last := fc.queries[len(fc.queries)-1]
		if last.Status != want {
			t.Errorf("expected status filter %q, got %q", want, last.Status)
		}
		if last.Page != 1 {
			t.Errorf("expected page reset to 1, got %d", last.Page)
		}
	}
}

func TestApp_AdvanceStatusUpdatesSelectedTask(t *testing.T) {
	app, fc := setupTestApp(t,
		models.Task{ID: "1", Title: "First", Status: models.StatusPending, Priority: models.PriorityMedium},
		models.Task{ID: "2", Title: "Second", Status: models.StatusInProgress, Priority: models.PriorityMedium},
	)

	app.Update(keyMsg("j"))
	_, cmd := app.Update(keyMsg(" "))
	if cmd == nil {
		t.Fatal("expected an update command")
	}
	if _, ok := cmd().(mutatedMsg); !ok {
		t.Fatal("expected mutation to succeed")
	}

	if len(fc.updates) != 1 || *fc.updates[0].Status != models.StatusCompleted {
		t.Errorf("expected status advanced to completed, got %+v", fc.updates)
	}
}

func TestApp_CreateTaskWithTags(t *testing.T) {
	app, fc := setupTestApp(t)

	_, _ = app.Update(keyMsg("a"))
	if app.mode != ModeCreate {
		t.Fatalf("expected create mode, got %v", app.mode)
	}
	app.titleInput.SetValue("Buy milk #home #errands")

	_, cmd := app.Update(keyMsg("enter"))
	run(app, cmd)

	if len(fc.created) != 1 {
		t.Fatalf("expected one created task, got %d", len(fc.created))
	}
	in := fc.created[0]
	if in.Title != "Buy milk" || len(in.Tags) != 2 || in.Tags[0] != "home" {
		t.Errorf("unexpected create input: %+v", in)
	}
	if app.mode != ModeList {
		t.Errorf("expected list mode after create, got %v", app.mode)
	}
}

func TestApp_DeleteRequiresConfirmation(t *testing.T) {
	app, fc := setupTestApp(t, models.Task{ID: "1", Title: "Doomed", Status: models.StatusPending, Priority: models.PriorityLow})

	app.Update(keyMsg("d"))
	if app.mode != ModeConfirmDelete {
		t.Fatalf("expected confirm mode, got %v", app.mode)
	}
	if !strings.Contains(app.View(), `Delete "Doomed"?`) {
		t.Error("expected confirmation prompt")
	}

	app.Update(keyMsg("n"))
	if len(fc.deleted) != 0 {
		t.Fatal("expected no delete after declining")
	}

	app.Update(keyMsg("d"))
	_, cmd := app.Update(keyMsg("y"))
	run(app, cmd)

	if len(fc.deleted) != 1 || fc.deleted[0] != "1" {
		t.Errorf("expected task 1 to be deleted, got %v", fc.deleted)
	}
}

func TestApp_SearchSetsQuery(t *testing.T) {
	app, fc := setupTestApp(t)

	app.Update(keyMsg("/"))
	app.searchInput.SetValue("  report ")
	_, cmd := app.Update(keyMsg("enter"))
	run(app, cmd)

	if last := fc.queries[len(fc.queries)-1]; last.Search != "report" {
		t.Errorf("expected search %q, got %q", "report", last.Search)
	}
}

func TestApp_RemoteEventReloads(t *testing.T) {
	app, fc := setupTestApp(t)
	before := len(fc.queries)

	_, cmd := app.Update(RemoteEventMsg{Event: client.Event{Name: "task:created"}})
	if cmd == nil {
		t.Fatal("expected reload command")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatalf("expected batch message, got %T", cmd())
	}
	for _, c := range batch {
		run(app, c)
	}

	if len(fc.queries) != before+1 {
		t.Errorf("expected tasks to be reloaded, got %d queries", len(fc.queries)-before)
	}
}

func TestApp_DropsSupersededPageLoads(t *testing.T) {
	tasks := make([]models.Task, 2*models.DefaultLimit+5)
	for i := range tasks {
		tasks[i] = models.Task{ID: fmt.Sprint(i), Title: fmt.Sprintf("Task %d", i),
			Status: models.StatusPending, Priority: models.PriorityMedium}
	}
	app, _ := setupTestApp(t, tasks...)

	_, toPage2 := app.Update(keyMsg("l"))
	_, toPage3 := app.Update(keyMsg("l"))
	if toPage2 == nil || toPage3 == nil {
		t.Fatal("expected both page changes to load tasks")
	}

	run(app, toPage3)
	run(app, toPage2)

	if app.page.Page != 3 {
		t.Errorf("expected page 3 to stay on screen, got page %d", app.page.Page)
	}
	if !strings.Contains(app.View(), "page 3/3") {
		t.Errorf("expected view to show page 3/3:\n%s", app.View())
	}
}

func TestApp_ShowsErrorsAndLiveState(t *testing.T) {
	app, fc := setupTestApp(t)
	fc.listErr = errors.New("connection refused")

	run(app, app.loadTasksCmd())
	if !strings.Contains(app.View(), "connection refused") {
		t.Error("expected error in view")
	}

	app.Update(ConnectedMsg{})
	if !app.live || !strings.Contains(app.View(), "live") {
		t.Error("expected live indicator after connect")
	}

	app.Update(DisconnectedMsg{Err: errors.New("gone")})
	if app.live {
		t.Error("expected offline after disconnect")
	}
}

func TestParseNewTask(t *testing.T) {
	tests := []struct {
		line      string
		wantTitle string
		wantTags  int
	}{
		{line: "Plain title", wantTitle: "Plain title", wantTags: 0},
		{line: "#only #tags", wantTitle: "", wantTags: 2},
		{line: "Fix # bug #work", wantTitle: "Fix # bug", wantTags: 1},
	}

	for _, tt := range tests {
		in := parseNewTask(tt.line)
		if in.Title != tt.wantTitle || len(in.Tags) != tt.wantTags {
			t.Errorf("parseNewTask(%q) = %+v", tt.line, in)
		}
	}
}
