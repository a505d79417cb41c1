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

const tagColumns = `g.id, g.name, g.color, g.created_at`

func scanTag(row rowScanner, tag *models.Tag) error {
	if err := row.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
		return err
	}
	tag.CreatedAt = tag.CreatedAt.UTC()
	return nil
}

// FindOrCreateTags returns the persisted tags for names, creating any that do
// not exist yet. Names are trimmed, blanks skipped and duplicates collapsed;
// output follows input order.
func (s *SQLStore) FindOrCreateTags(ctx context.Context, names []string) ([]models.Tag, error) {
	names = models.NormalizeTagNames(names)
	tags := make([]models.Tag, 0, len(names))

	for _, name := range names {
		tag, err := s.findOrCreateTag(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}

	return tags, nil
}

func (s *SQLStore) findOrCreateTag(ctx context.Context, name string) (*models.Tag, error) {
	tag, err := s.GetTagByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	tag, err = s.createTag(ctx, name, models.DefaultTagColor)
	if err == nil {
		return tag, nil
	}

	// Another request created the same name between our lookup and insert.
	if isUniqueViolation(err) {
		return s.GetTagByName(ctx, name)
	}
	return nil, err
}

func (s *SQLStore) createTag(ctx context.Context, name, color string) (*models.Tag, error) {
	tag := &models.Tag{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     color,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.exec(ctx, s.db, `INSERT INTO tags (id, name, color, created_at) VALUES (?, ?, ?, ?)`,
		tag.ID, tag.Name, tag.Color, tag.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create tag %q: %w", name, err)
	}

	return tag, nil
}

// GetTagByName retrieves a tag by its exact name.
func (s *SQLStore) GetTagByName(ctx context.Context, name string) (*models.Tag, error) {
	tag := &models.Tag{}
	err := scanTag(s.queryRow(ctx, s.db, `SELECT `+tagColumns+` FROM tags g WHERE g.name = ?`, name), tag)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tag %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return tag, nil
}

// ListTags returns all tags ordered by name.
func (s *SQLStore) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.query(ctx, s.db, `SELECT `+tagColumns+` FROM tags g ORDER BY g.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := scanTag(rows, &tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

func (s *SQLStore) linkTags(ctx context.Context, tx *sql.Tx, taskID string, tags []models.Tag) error {
	for _, tag := range tags {
		_, err := s.exec(ctx, tx, `INSERT INTO task_tags (task_id, tag_id) VALUES (?, ?)`, taskID, tag.ID)
		if err != nil {
			return fmt.Errorf("failed to link tag %q: %w", tag.Name, err)
		}
	}
	return nil
}

// loadTags fills in the full tag set of every task in one query over the
// junction table. It runs regardless of any tag filter.
func (s *SQLStore) loadTags(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	index := make(map[string]int, len(tasks))
	args := make([]interface{}, 0, len(tasks))
	for i := range tasks {
		index[tasks[i].ID] = i
		args = append(args, tasks[i].ID)
		if tasks[i].Tags == nil {
			tasks[i].Tags = []models.Tag{}
		}
	}

	rows, err := s.query(ctx, s.db, `
		SELECT tt.task_id, `+tagColumns+`
		FROM task_tags tt
		JOIN tags g ON g.id = tt.tag_id
		WHERE tt.task_id IN (`+placeholders(len(args))+`)
		ORDER BY g.name ASC
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to load task tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			taskID string
			tag    models.Tag
		)
		if err := rows.Scan(&taskID, &tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan task tag: %w", err)
		}
		tag.CreatedAt = tag.CreatedAt.UTC()
		if i, ok := index[taskID]; ok {
			tasks[i].Tags = append(tasks[i].Tags, tag)
		}
	}

	return rows.Err()
}
