package tasklist

import (
	"time"

	"github.com/taskmanager/taskmanager-go/internal/model"
)

// Stats summarizes a task collection.
type Stats struct {
	Total        int `json:"total"`
	Todo         int `json:"todo"`
	InProgress   int `json:"inProgress"`
	Completed    int `json:"completed"`
	HighPriority int `json:"highPriority"`
	Overdue      int `json:"overdue"`
}

// ComputeStats counts tasks per status, high priority tasks regardless of status,
// and overdue tasks.
func ComputeStats(tasks []model.Task, now time.Time) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		countStatus(t.Status, &s.Todo, &s.InProgress, &s.Completed)
		if t.Priority == model.PriorityHigh {
			s.HighPriority++
		}
		if overdue(t, now) {
			s.Overdue++
		}
	}
	return s
}

// Analytics extends the status counts with completion activity.
// HighPriority only counts open tasks.
type Analytics struct {
	Total             int `json:"total"`
	Completed         int `json:"completed"`
	InProgress        int `json:"inProgress"`
	Todo              int `json:"todo"`
	Overdue           int `json:"overdue"`
	CompletedToday    int `json:"completedToday"`
	CompletedThisWeek int `json:"completedThisWeek"`
	HighPriority      int `json:"highPriority"`
}

// Analyze computes Analytics in a single pass. Completion time is approximated by
// UpdatedAt; today is now's calendar day and this week is the last seven days.
func Analyze(tasks []model.Task, now time.Time) Analytics {
	a := Analytics{Total: len(tasks)}
	weekAgo := now.AddDate(0, 0, -7)

	for _, t := range tasks {
		countStatus(t.Status, &a.Todo, &a.InProgress, &a.Completed)
		if overdue(t, now) {
			a.Overdue++
		}

		if t.Status == model.StatusCompleted {
			if !t.UpdatedAt.IsZero() {
				if sameDay(t.UpdatedAt.In(now.Location()), now) {
					a.CompletedToday++
				}
				if !t.UpdatedAt.Before(weekAgo) {
					a.CompletedThisWeek++
				}
			}
		} else if t.Priority == model.PriorityHigh {
			a.HighPriority++
		}
	}
	return a
}

func countStatus(s model.Status, todo, inProgress, completed *int) {
	switch s {
	case model.StatusTodo:
		*todo++
	case model.StatusInProgress:
		*inProgress++
	case model.StatusCompleted:
		*completed++
	}
}
