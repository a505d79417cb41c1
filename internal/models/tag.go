package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTagNameLength = 50
	DefaultTagColor  = "#3b82f6"
)

// Tag is a named label shared by any number of tasks. Names are unique and
// case-sensitive as stored.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeTagNames trims each name, drops blanks and collapses duplicates
// while keeping first-seen order.
func NormalizeTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func validateTagNames(errs *ValidationErrors, names []string) {
	for i, name := range names {
		if utf8.RuneCountInString(strings.TrimSpace(name)) > MaxTagNameLength {
			errs.Add(fmt.Sprintf("tags[%d]", i), fmt.Sprintf("tag names must be %d characters or fewer", MaxTagNameLength))
		}
	}
}
