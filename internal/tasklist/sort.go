package tasklist

import (
	"fmt"
	"slices"

	"github.com/taskmanager/taskmanager-go/internal/model"
)

// SortBy selects the ordering applied by Sort.
type SortBy string

const (
	SortByDate     SortBy = "date"
	SortByPriority SortBy = "priority"
	SortByStatus   SortBy = "status"
)

// ParseSortBy accepts "", date, priority and status. Empty means date.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(s) {
	case "":
		return SortByDate, nil
	case SortByDate, SortByPriority, SortByStatus:
		return SortBy(s), nil
	}
	return "", fmt.Errorf("unknown sort %q", s)
}

// Sort returns a sorted copy of tasks. Equal elements keep their relative order.
//
//	date:     newest created first
//	priority: high, medium, low
//	status:   todo, in-progress, completed
//
// Any other value returns the copy unchanged.
func Sort(tasks []model.Task, by SortBy) []model.Task {
	sorted := slices.Clone(tasks)
	if sorted == nil {
		sorted = []model.Task{}
	}

	switch by {
	case SortByDate:
		slices.SortStableFunc(sorted, func(a, b model.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case SortByPriority:
		slices.SortStableFunc(sorted, func(a, b model.Task) int {
			return b.Priority.Rank() - a.Priority.Rank()
		})
	case SortByStatus:
		slices.SortStableFunc(sorted, func(a, b model.Task) int {
			return a.Status.Rank() - b.Status.Rank()
		})
	}
	return sorted
}
