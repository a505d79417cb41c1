package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tasker/internal/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// SQLStore implements the Store interface on top of database/sql. It speaks
// both SQLite and PostgreSQL.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// NewSQLStore opens a store for the given driver ("sqlite3" or "postgres") and
// data source, and applies any pending migrations.
func NewSQLStore(driver, dsn string) (*SQLStore, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if d.driver == DriverSQLite {
		// One connection keeps :memory: databases shared and serialises writers.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &SQLStore{db: db, dialect: d}
	if err := migrate(db, d); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// NewSQLiteStore creates a new SQLite store with the given database path.
func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	return NewSQLStore(DriverSQLite, dbPath+"?_foreign_keys=on&_busy_timeout=5000")
}

// NewPostgresStore creates a new PostgreSQL store from a connection URL.
func NewPostgresStore(databaseURL string) (*SQLStore, error) {
	return NewSQLStore(DriverPostgres, databaseURL)
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) exec(ctx context.Context, q querier, query string, args ...interface{}) (sql.Result, error) {
	return q.ExecContext(ctx, s.dialect.rebind(query), args...)
}

func (s *SQLStore) query(ctx context.Context, q querier, query string, args ...interface{}) (*sql.Rows, error) {
	return q.QueryContext(ctx, s.dialect.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, q querier, query string, args ...interface{}) *sql.Row {
	return q.QueryRowContext(ctx, s.dialect.rebind(query), args...)
}

const taskColumns = `t.id, t.title, t.description, t.status, t.priority, t.due_date, t.created_at, t.updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var task models.Task
	var dueDate sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&dueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return task, err
	}

	if dueDate.Valid {
		t := dueDate.Time.UTC()
		task.DueDate = &t
	}
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	task.Tags = []models.Tag{}

	return task, nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// validID filters out ids that cannot exist, so PostgreSQL never sees a
// malformed UUID literal.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// CreateTask reconciles the tag names, then inserts the task and its tag
// links in one transaction. ID and timestamps are assigned here.
func (s *SQLStore) CreateTask(ctx context.Context, task *models.Task, tagNames []string) error {
	tags, err := s.FindOrCreateTags(ctx, tagNames)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	task.ID = uuid.NewString()
	task.CreatedAt = now
	task.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = s.exec(ctx, tx, `
		INSERT INTO tasks (id, title, description, status, priority, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.Title, task.Description, task.Status, task.Priority, nullableTime(task.DueDate), now, now)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := s.linkTags(ctx, tx, task.ID, tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit task: %w", err)
	}

	task.Tags = tags
	return nil
}

// GetTask retrieves a task by ID with its tags.
func (s *SQLStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	if !validID(id) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	task, err := scanTask(s.queryRow(ctx, s.db, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	tasks := []models.Task{task}
	if err := s.loadTags(ctx, tasks); err != nil {
		return nil, err
	}

	return &tasks[0], nil
}

// UpdateTask reads the task, applies the supplied fields and writes it back.
// There is no version check: concurrent updates are last-writer-wins.
func (s *SQLStore) UpdateTask(ctx context.Context, id string, in models.UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	in.Apply(task)

	var tags []models.Tag
	if in.Tags != nil {
		tags, err = s.FindOrCreateTags(ctx, *in.Tags)
		if err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := s.exec(ctx, tx, `
		UPDATE tasks
		SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, updated_at = ?
		WHERE id = ?
	`, task.Title, task.Description, task.Status, task.Priority, nullableTime(task.DueDate), time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	if in.Tags != nil {
		if _, err := s.exec(ctx, tx, `DELETE FROM task_tags WHERE task_id = ?`, id); err != nil {
			return nil, fmt.Errorf("failed to clear task tags: %w", err)
		}
		if err := s.linkTags(ctx, tx, id, tags); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit task update: %w", err)
	}

	return s.GetTask(ctx, id)
}

// DeleteTask deletes a task by ID. Its tag links cascade; the tags stay.
func (s *SQLStore) DeleteTask(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	result, err := s.exec(ctx, s.db, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	return nil
}

// ListTasks runs the filter/sort/paginate query described by q. The total
// always reflects the unpaginated match count, even past the last page.
func (s *SQLStore) ListTasks(ctx context.Context, q models.TaskQuery) (*models.TaskPage, error) {
	q = q.Normalize()
	where, args := buildTaskFilter(q)

	var total int
	if err := s.queryRow(ctx, s.db, `SELECT COUNT(*) FROM tasks t`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks t` + where +
		` ORDER BY ` + orderBy(q.SortBy, q.SortOrder) +
		` LIMIT ? OFFSET ?`
	pageArgs := append(append([]interface{}{}, args...), q.Limit, q.Offset())

	rows, err := s.query(ctx, s.db, query, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	rows.Close()

	if err := s.loadTags(ctx, tasks); err != nil {
		return nil, err
	}

	return models.NewTaskPage(tasks, total, q), nil
}

// Statistics counts every task by status and by priority.
func (s *SQLStore) Statistics(ctx context.Context) (*models.Statistics, error) {
	rows, err := s.query(ctx, s.db, `SELECT status, priority, COUNT(*) FROM tasks GROUP BY status, priority`)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	defer rows.Close()

	stats := &models.Statistics{}
	for rows.Next() {
		var (
			status   models.Status
			priority models.Priority
			n        int
		)
		if err := rows.Scan(&status, &priority, &n); err != nil {
			return nil, fmt.Errorf("failed to scan task counts: %w", err)
		}
		stats.Count(status, priority, n)
	}

	return stats, rows.Err()
}
