package models

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage      = 1
	DefaultLimit     = 10
	DefaultSortField = "createdAt"

	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// SortFields is the allow-list of fields a task list may be ordered by.
var SortFields = []string{"createdAt", "updatedAt", "dueDate", "title", "priority", "status"}

// TaskQuery describes a filtered, sorted page of tasks. Zero values mean
// "not filtered" or "use the default".
type TaskQuery struct {
	Status    Status
	Priority  Priority
	Search    string
	Tags      string // comma-separated tag names
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// ParseTaskQuery reads a task query from URL query parameters. Malformed
// enums and page numbers are reported as validation errors; an unknown
// sortBy is not an error and falls back to the default on Normalize.
func ParseTaskQuery(values url.Values) (TaskQuery, error) {
	var errs ValidationErrors
	q := TaskQuery{
		Status:    Status(values.Get("status")),
		Priority:  Priority(values.Get("priority")),
		Search:    values.Get("search"),
		Tags:      values.Get("tags"),
		SortBy:    values.Get("sortBy"),
		SortOrder: values.Get("sortOrder"),
	}

	if q.Status != "" && !q.Status.Valid() {
		errs.Add("status", statusMessage())
	}
	if q.Priority != "" && !q.Priority.Valid() {
		errs.Add("priority", priorityMessage())
	}
	q.Page = parsePositive(&errs, values, "page")
	q.Limit = parsePositive(&errs, values, "limit")

	return q, errs.OrNil()
}

func parsePositive(errs *ValidationErrors, values url.Values, key string) int {
	raw := values.Get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs.Add(key, key+" must be an integer")
		return 0
	}
	if n < 1 {
		errs.Add(key, key+" must not be less than 1")
		return 0
	}
	return n
}

// Normalize fills in defaults and folds the sort options onto their allowed values.
func (q TaskQuery) Normalize() TaskQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if !IsSortField(q.SortBy) {
		q.SortBy = DefaultSortField
	}
	if strings.EqualFold(q.SortOrder, SortAsc) {
		q.SortOrder = SortAsc
	} else {
		q.SortOrder = SortDesc
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Offset is the number of matching rows skipped before this page.
func (q TaskQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// TagNames splits the comma-separated tag filter, dropping blanks.
func (q TaskQuery) TagNames() []string {
	if strings.TrimSpace(q.Tags) == "" {
		return nil
	}
	return NormalizeTagNames(strings.Split(q.Tags, ","))
}

// Values encodes the query as URL parameters, omitting unset fields.
func (q TaskQuery) Values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("status", string(q.Status))
	set("priority", string(q.Priority))
	set("search", q.Search)
	set("tags", q.Tags)
	set("sortBy", q.SortBy)
	set("sortOrder", q.SortOrder)
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// IsSortField reports whether field is in SortFields.
func IsSortField(field string) bool {
	for _, f := range SortFields {
		if f == field {
			return true
		}
	}
	return false
}

// TaskPage is one page of a task listing plus counts for the whole result.
type TaskPage struct {
	Data       []Task `json:"data"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
}

// NewTaskPage assembles a page for a normalized query. Data is never nil.
func NewTaskPage(data []Task, total int, q TaskQuery) *TaskPage {
	if data == nil {
		data = []Task{}
	}
	return &TaskPage{
		Data:       data,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: (total + q.Limit - 1) / q.Limit,
	}
}
