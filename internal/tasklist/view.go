package tasklist

import (
	"errors"
	"fmt"
	"time"

	"github.com/taskmanager/taskmanager-go/internal/model"
)

// ErrInvalidQuery is returned by Apply for unknown range or sort values.
var ErrInvalidQuery = errors.New("invalid task query")

// Apply runs the list pipeline: filter, due-date range, then sort.
func Apply(tasks []model.Task, q model.TaskQuery, now time.Time) ([]model.Task, error) {
	r, err := ParseDateRange(q.Range)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	by, err := ParseSortBy(q.Sort)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	filtered := Filter(tasks, Criteria{Status: q.Status, Priority: q.Priority, Search: q.Search})
	return Sort(InRange(r, filtered, now), by), nil
}

// View is a task with the due-date fields derived at a point in time.
type View struct {
	model.Task
	Overdue      bool   `json:"overdue"`
	DaysUntilDue *int   `json:"daysUntilDue,omitempty"`
	DueLabel     string `json:"dueLabel,omitempty"`
}

// NewView derives the due-date fields of t at now. Tasks without a due date only
// carry Overdue=false.
func NewView(t model.Task, now time.Time) View {
	v := View{Task: t, Overdue: overdue(t, now)}
	if t.DueDate != nil {
		days := DaysUntilDue(*t.DueDate, now)
		v.DaysUntilDue = &days
		v.DueLabel = RelativeTime(*t.DueDate, now)
	}
	return v
}

// Views applies NewView to every task. The result is never nil.
func Views(tasks []model.Task, now time.Time) []View {
	out := make([]View, len(tasks))
	for i, t := range tasks {
		out[i] = NewView(t, now)
	}
	return out
}
