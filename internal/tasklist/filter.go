// Package tasklist derives views of a task collection: filtering, ordering,
// due-date bucketing and aggregate counts. Nothing here mutates its input.
package tasklist

import (
	"strings"

	"github.com/taskmanager/taskmanager-go/internal/model"
)

// All disables a status or priority filter, same as an empty value.
const All = "all"

// Criteria selects tasks. Empty fields do not filter.
type Criteria struct {
	Status   string
	Priority string
	Search   string
}

// Filter returns the tasks matching every set criterion. Search is a
// case-insensitive substring match against the title or description.
func Filter(tasks []model.Task, c Criteria) []model.Task {
	search := strings.ToLower(c.Search)

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !matches(c.Status, string(t.Status)) || !matches(c.Priority, string(t.Priority)) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matches(want, got string) bool {
	return want == "" || want == All || want == got
}
