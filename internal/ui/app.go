package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tasker/internal/client"
	"tasker/internal/models"
	"tasker/internal/ui/keys"
	"tasker/internal/ui/styles"
)

const requestTimeout = 10 * time.Second

// TaskClient is the subset of the API client the UI needs.
type TaskClient interface {
	ListTasks(ctx context.Context, q models.TaskQuery) (*models.TaskPage, error)
	Statistics(ctx context.Context) (*models.Statistics, error)
	Tags(ctx context.Context) ([]models.Tag, error)
	CreateTask(ctx context.Context, in models.CreateTaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, in models.UpdateTaskInput) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Mode is the current input mode.
type Mode int

const (
	ModeList Mode = iota
	ModeSearch
	ModeCreate
	ModeConfirmDelete
)

// RemoteEventMsg is sent when the server announces a change.
type RemoteEventMsg struct {
	Event client.Event
}

// ConnectedMsg is sent when the live connection is (re)established.
type ConnectedMsg struct{}

// DisconnectedMsg is sent when the live connection is lost for good.
type DisconnectedMsg struct {
	Err error
}

type tasksLoadedMsg struct {
	page  *models.TaskPage
	query models.TaskQuery
}
type statsLoadedMsg struct{ stats *models.Statistics }
type tagsLoadedMsg struct{ tags []models.Tag }
type mutatedMsg struct{}
type errMsg struct{ err error }

// App is the root bubbletea model.
type App struct {
	client TaskClient
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	mode   Mode
	query  models.TaskQuery
	page   *models.TaskPage
	stats  *models.Statistics
	tags   []models.Tag
	cursor int
	live   bool
	err    error

	searchInput textinput.Model
	titleInput  textinput.Model
}

// NewApp creates the application model.
func NewApp(c TaskClient) *App {
	search := textinput.New()
	search.Placeholder = "Search title or description..."
	search.CharLimit = 100

	title := textinput.New()
	title.Placeholder = "Task title  #tag #another"
	title.CharLimit = models.MaxTitleLength + 200

	return &App{
		client:      c,
		styles:      styles.NewStyles(),
		keys:        keys.DefaultKeyMap(),
		query:       models.TaskQuery{}.Normalize(),
		searchInput: search,
		titleInput:  title,
	}
}

func (a *App) Init() tea.Cmd {
	return a.loadAll()
}

func (a *App) loadAll() tea.Cmd {
	return tea.Batch(a.loadTasksCmd(), a.loadStats, a.loadTags)
}

// loadTasksCmd fetches the page for the current query. The query is copied
// here because the command runs off the update loop.
func (a *App) loadTasksCmd() tea.Cmd {
	q := a.query
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		page, err := a.client.ListTasks(ctx, q)
		if err != nil {
			return errMsg{err}
		}
		return tasksLoadedMsg{page: page, query: q}
	}
}

func (a *App) loadStats() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	stats, err := a.client.Statistics(ctx)
	if err != nil {
		return errMsg{err}
	}
	return statsLoadedMsg{stats}
}

func (a *App) loadTags() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	tags, err := a.client.Tags(ctx)
	if err != nil {
		return errMsg{err}
	}
	return tagsLoadedMsg{tags}
}

// mutate runs fn against the API and reloads once it succeeds.
func (a *App) mutate(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			return errMsg{err}
		}
		return mutatedMsg{}
	}
}

func (a *App) selected() *models.Task {
	if a.page == nil || a.cursor < 0 || a.cursor >= len(a.page.Data) {
		return nil
	}
	return &a.page.Data[a.cursor]
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tasksLoadedMsg:
		if msg.query != a.query {
			// superseded by a later page or filter change
			return a, nil
		}
		a.page = msg.page
		a.err = nil
		if a.cursor >= len(a.page.Data) {
			a.cursor = max(len(a.page.Data)-1, 0)
		}
		return a, nil

	case statsLoadedMsg:
		a.stats = msg.stats
		return a, nil

	case tagsLoadedMsg:
		a.tags = msg.tags
		return a, nil

	case errMsg:
		a.err = msg.err
		return a, nil

	case mutatedMsg:
		return a, a.loadAll()

	case RemoteEventMsg:
		return a, a.loadAll()

	case ConnectedMsg:
		a.live = true
		return a, a.loadAll()

	case DisconnectedMsg:
		a.live = false
		a.err = msg.Err
		return a, nil

	case tea.KeyMsg:
		switch a.mode {
		case ModeSearch:
			return a.updateSearch(msg)
		case ModeCreate:
			return a.updateCreate(msg)
		case ModeConfirmDelete:
			return a.updateConfirmDelete(msg)
		}
		return a.updateList(msg)
	}

	return a, nil
}

func (a *App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Down):
		if a.page != nil && a.cursor < len(a.page.Data)-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.NextPage):
		if a.page != nil && a.query.Page < a.page.TotalPages {
			a.query.Page++
			a.cursor = 0
			return a, a.loadTasksCmd()
		}

	case key.Matches(msg, a.keys.PrevPage):
		if a.query.Page > 1 {
			a.query.Page--
			a.cursor = 0
			return a, a.loadTasksCmd()
		}

	case key.Matches(msg, a.keys.Status):
		a.query.Status = nextStatusFilter(a.query.Status)
		return a, a.reloadFromFirstPage()

	case key.Matches(msg, a.keys.Filter):
		a.query.Priority = nextPriorityFilter(a.query.Priority)
		return a, a.reloadFromFirstPage()

	case key.Matches(msg, a.keys.Sort):
		a.query.SortBy = nextSortField(a.query.SortBy)
		return a, a.reloadFromFirstPage()

	case key.Matches(msg, a.keys.Order):
		if a.query.SortOrder == models.SortAsc {
			a.query.SortOrder = models.SortDesc
		} else {
			a.query.SortOrder = models.SortAsc
		}
		return a, a.reloadFromFirstPage()

	case key.Matches(msg, a.keys.Refresh):
		return a, a.loadAll()

	case key.Matches(msg, a.keys.Search):
		a.mode = ModeSearch
		a.searchInput.SetValue(a.query.Search)
		a.searchInput.Focus()
		return a, textinput.Blink

	case key.Matches(msg, a.keys.New):
		a.mode = ModeCreate
		a.titleInput.Reset()
		a.titleInput.Focus()
		return a, textinput.Blink

	case key.Matches(msg, a.keys.Advance):
		if task := a.selected(); task != nil {
			id, status := task.ID, nextStatus(task.Status)
			return a, a.mutate(func(ctx context.Context) error {
				_, err := a.client.UpdateTask(ctx, id, models.UpdateTaskInput{Status: &status})
				return err
			})
		}

	case key.Matches(msg, a.keys.Priority):
		if task := a.selected(); task != nil {
			id, priority := task.ID, nextPriority(task.Priority)
			return a, a.mutate(func(ctx context.Context) error {
				_, err := a.client.UpdateTask(ctx, id, models.UpdateTaskInput{Priority: &priority})
				return err
			})
		}

	case key.Matches(msg, a.keys.Delete):
		if a.selected() != nil {
			a.mode = ModeConfirmDelete
		}
	}

	return a, nil
}

func (a *App) reloadFromFirstPage() tea.Cmd {
	a.query.Page = 1
	a.cursor = 0
	return a.loadTasksCmd()
}

func (a *App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back):
		a.mode = ModeList
		a.searchInput.Blur()
		return a, nil

	case key.Matches(msg, a.keys.Enter):
		a.mode = ModeList
		a.searchInput.Blur()
		a.query.Search = strings.TrimSpace(a.searchInput.Value())
		return a, a.reloadFromFirstPage()
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a *App) updateCreate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back):
		a.mode = ModeList
		a.titleInput.Blur()
		return a, nil

	case key.Matches(msg, a.keys.Enter):
		in := parseNewTask(a.titleInput.Value())
		if strings.TrimSpace(in.Title) == "" {
			return a, nil
		}
		a.mode = ModeList
		a.titleInput.Blur()
		return a, a.mutate(func(ctx context.Context) error {
			_, err := a.client.CreateTask(ctx, in)
			return err
		})
	}

	var cmd tea.Cmd
	a.titleInput, cmd = a.titleInput.Update(msg)
	return a, cmd
}

func (a *App) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		a.mode = ModeList
		if task := a.selected(); task != nil {
			id := task.ID
			return a, a.mutate(func(ctx context.Context) error {
				return a.client.DeleteTask(ctx, id)
			})
		}
	case "n", "N", "esc":
		a.mode = ModeList
	}
	return a, nil
}

// parseNewTask splits "Buy milk #home #errands" into a title and tag names.
func parseNewTask(line string) models.CreateTaskInput {
	var title []string
	var tags []string
	for _, word := range strings.Fields(line) {
		if strings.HasPrefix(word, "#") && len(word) > 1 {
			tags = append(tags, word[1:])
			continue
		}
		title = append(title, word)
	}
	return models.CreateTaskInput{Title: strings.Join(title, " "), Tags: tags}
}

func nextStatus(s models.Status) models.Status {
	for i, st := range models.Statuses {
		if st == s {
			return models.Statuses[(i+1)%len(models.Statuses)]
		}
	}
	return models.StatusPending
}

func nextPriority(p models.Priority) models.Priority {
	for i, pr := range models.Priorities {
		if pr == p {
			return models.Priorities[(i+1)%len(models.Priorities)]
		}
	}
	return models.PriorityMedium
}

// nextStatusFilter cycles all -> pending -> in_progress -> completed -> all.
func nextStatusFilter(s models.Status) models.Status {
	if s == "" {
		return models.Statuses[0]
	}
	next := nextStatus(s)
	if next == models.Statuses[0] {
		return ""
	}
	return next
}

func nextPriorityFilter(p models.Priority) models.Priority {
	if p == "" {
		return models.Priorities[0]
	}
	next := nextPriority(p)
	if next == models.Priorities[0] {
		return ""
	}
	return next
}

func nextSortField(field string) string {
	for i, f := range models.SortFields {
		if f == field {
			return models.SortFields[(i+1)%len(models.SortFields)]
		}
	}
	return models.DefaultSortField
}

func (a *App) View() string {
	width := styles.ContentWidth(a.width)
	var b strings.Builder

	live := a.styles.TitleMuted.Render("offline")
	if a.live {
		live = lipgloss.NewStyle().Foreground(styles.Current.Success).Render("live")
	}
	b.WriteString(a.styles.Title.Render("Tasker") + "  " + live + "\n")
	b.WriteString(a.viewStats() + "\n")
	b.WriteString(a.styles.FilterBar.Width(width - 2).Render(a.viewFilters()) + "\n")

	switch a.mode {
	case ModeSearch:
		b.WriteString(a.styles.Input.Width(width-4).Render(a.searchInput.View()) + "\n")
	case ModeCreate:
		b.WriteString(a.styles.Input.Width(width-4).Render(a.titleInput.View()) + "\n")
	}

	b.WriteString(a.viewTasks(width))

	if a.mode == ModeConfirmDelete {
		if task := a.selected(); task != nil {
			b.WriteString(a.styles.Error.Render(fmt.Sprintf("Delete %q? (y/n)", task.Title)) + "\n")
		}
	}
	if a.err != nil {
		b.WriteString(a.styles.Error.Render("Error: "+a.err.Error()) + "\n")
	}

	b.WriteString(a.viewHelp())
	return b.String()
}

func (a *App) viewStats() string {
	if a.stats == nil {
		return a.styles.StatusBar.Render("loading...")
	}
	s := a.stats
	return a.styles.StatusBar.Render(fmt.Sprintf(
		"%d tasks  pending %d  in progress %d  completed %d  |  high %d  medium %d  low %d  |  %d tags",
		s.TotalTasks, s.ByStatus.Pending, s.ByStatus.InProgress, s.ByStatus.Completed,
		s.ByPriority.High, s.ByPriority.Medium, s.ByPriority.Low, len(a.tags),
	))
}

func (a *App) viewFilters() string {
	orAll := func(v string) string {
		if v == "" {
			return "all"
		}
		return v
	}
	return fmt.Sprintf("status: %s  priority: %s  search: %s  sort: %s %s",
		orAll(string(a.query.Status)), orAll(string(a.query.Priority)), orAll(a.query.Search),
		a.query.SortBy, a.query.SortOrder)
}

func (a *App) viewTasks(width int) string {
	if a.page == nil {
		return a.styles.TitleMuted.Render("  loading tasks...") + "\n"
	}
	if len(a.page.Data) == 0 {
		return a.styles.TitleMuted.Render("  no tasks") + "\n"
	}

	var b strings.Builder
	for i, task := range a.page.Data {
		row := a.viewTask(task)
		style := a.styles.ListItem
		if i == a.cursor {
			style = a.styles.ListSelected
		}
		b.WriteString(style.MaxWidth(width).Render(row) + "\n")
	}
	b.WriteString(a.styles.StatusBar.Render(fmt.Sprintf("page %d/%d  (%d matching)",
		a.page.Page, max(a.page.TotalPages, 1), a.page.Total)) + "\n")
	return b.String()
}

func (a *App) viewTask(task models.Task) string {
	status := lipgloss.NewStyle().Foreground(styles.StatusColor(task.Status)).Render(fmt.Sprintf("%-11s", task.Status))
	priority := lipgloss.NewStyle().Foreground(styles.PriorityColor(task.Priority)).Render(fmt.Sprintf("%-6s", task.Priority))

	parts := []string{status, priority, task.Title}
	if task.DueDate != nil {
		due := "due " + task.DueDate.Format("2006-01-02")
		if task.IsOverdue() {
			due = a.styles.Overdue.Render(due)
		}
		parts = append(parts, due)
	}
	for _, tag := range task.Tags {
		parts = append(parts, a.styles.TagStyle(tag.Color).Render(tag.Name))
	}
	return strings.Join(parts, " ")
}

func (a *App) viewHelp() string {
	bindings := a.keys.ShortHelp()
	items := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		items = append(items, h.Key+" "+h.Desc)
	}
	return a.styles.Help.Render(strings.Join(items, " • "))
}
