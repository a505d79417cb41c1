package store

import (
	"fmt"
	"strings"

	"tasker/internal/models"
)

// sortColumns maps the public sort fields onto SQL columns.
var sortColumns = map[string]string{
	"createdAt": "t.created_at",
	"updatedAt": "t.updated_at",
	"dueDate":   "t.due_date",
	"title":     "t.title",
}

// sortExpression returns the ORDER BY expression for a normalized sort field.
// Status and priority sort by logical rank rather than by their text.
func sortExpression(field string) string {
	switch field {
	case "priority":
		ranks := make([]string, len(models.Priorities))
		for i, p := range models.Priorities {
			ranks[i] = fmt.Sprintf("WHEN '%s' THEN %d", p, p.Rank())
		}
		return "CASE t.priority " + strings.Join(ranks, " ") + " END"
	case "status":
		ranks := make([]string, len(models.Statuses))
		for i, s := range models.Statuses {
			ranks[i] = fmt.Sprintf("WHEN '%s' THEN %d", s, s.Rank())
		}
		return "CASE t.status " + strings.Join(ranks, " ") + " END"
	}

	if col, ok := sortColumns[field]; ok {
		return col
	}
	return sortColumns[models.DefaultSortField]
}

// orderBy returns the ORDER BY list for a normalized field and direction.
// Tasks without a due date sort after dated ones ascending and before them
// descending, which is PostgreSQL's NULL placement; SQLite needs it spelled out.
func orderBy(field, order string) string {
	expr := sortExpression(field)
	if field == "dueDate" {
		return "(" + expr + " IS NULL) " + order + ", " + expr + " " + order
	}
	return expr + " " + order
}

// buildTaskFilter turns the filter part of q into a WHERE clause (with a
// leading space, or empty) and its arguments.
func buildTaskFilter(q models.TaskQuery) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)

	if q.Status != "" {
		conds = append(conds, "t.status = ?")
		args = append(args, q.Status)
	}

	if q.Priority != "" {
		conds = append(conds, "t.priority = ?")
		args = append(args, q.Priority)
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		conds = append(conds, `(LOWER(t.title) LIKE ? ESCAPE '\' OR LOWER(t.description) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	// A task matches when it carries any of the listed tags.
	if names := q.TagNames(); len(names) > 0 {
		conds = append(conds, `t.id IN (
			SELECT tt.task_id FROM task_tags tt
			JOIN tags g ON g.id = tt.tag_id
			WHERE g.name IN (`+placeholders(len(names))+`))`)
		for _, name := range names {
			args = append(args, name)
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
