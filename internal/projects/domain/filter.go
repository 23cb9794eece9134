package domain

import (
	"slices"
	"strings"
)

// Filter selects projects in a listing. Zero values match everything.
type Filter struct {
	Category  Category
	Status    Status
	Query     string
	DueBefore *Date
}

func (f Filter) Match(p Project) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if q := strings.TrimSpace(f.Query); q != "" &&
		!strings.Contains(strings.ToLower(p.Title), strings.ToLower(q)) {
		return false
	}
	if f.DueBefore != nil && (p.DueDate == nil || !p.DueDate.Before(f.DueBefore.Time)) {
		return false
	}
	return true
}

// Sorted returns projects ordered by due date (earliest first, undated last), then title.
func Sorted(projects []Project) []Project {
	out := slices.Clone(projects)
	slices.SortStableFunc(out, func(a, b Project) int {
		switch {
		case a.DueDate == nil && b.DueDate != nil:
			return 1
		case a.DueDate != nil && b.DueDate == nil:
			return -1
		case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(b.DueDate.Time):
			return a.DueDate.Compare(b.DueDate.Time)
		}
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	})
	return out
}
