package tasklist

import (
	"fmt"
	"math"
	"time"

	"github.com/taskmanager/taskmanager-go/internal/model"
)

const day = 24 * time.Hour

// DateRange names a due-date window relative to today.
type DateRange string

const (
	RangeToday DateRange = "today"
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
	RangeAll   DateRange = "all"
)

// ParseDateRange accepts "", today, week, month and all. Empty means all.
func ParseDateRange(s string) (DateRange, error) {
	switch DateRange(s) {
	case "":
		return RangeAll, nil
	case RangeToday, RangeWeek, RangeMonth, RangeAll:
		return DateRange(s), nil
	}
	return "", fmt.Errorf("unknown date range %q", s)
}

// IsOverdue reports whether a task with the given due date and status is late at now.
// Completed tasks are never overdue.
func IsOverdue(due time.Time, status model.Status, now time.Time) bool {
	if status == model.StatusCompleted {
		return false
	}
	return due.Before(now)
}

// overdue is IsOverdue for tasks that may have no due date.
func overdue(t model.Task, now time.Time) bool {
	return t.DueDate != nil && IsOverdue(*t.DueDate, t.Status, now)
}

// DaysUntilDue returns the number of days until due, rounded up. Past dates give
// zero or negative values.
func DaysUntilDue(due, now time.Time) int {
	return int(math.Ceil(float64(due.Sub(now)) / float64(day)))
}

// RelativeTime describes date relative to now: "3 days ago", "Today", "Tomorrow",
// "In 5 days", or the formatted date when more than a week away.
func RelativeTime(date, now time.Time) string {
	days := DaysUntilDue(date, now)
	switch {
	case days < 0:
		return fmt.Sprintf("%d days ago", -days)
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days <= 7:
		return fmt.Sprintf("In %d days", days)
	}
	return FormatDate(date.In(now.Location()))
}

// FormatDate renders t as "Jan 2, 2006".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// InRange keeps the tasks whose due date falls in r. Calendar days are taken in
// now's location. Tasks without a due date only match RangeAll, and unknown ranges
// behave like RangeAll.
func InRange(r DateRange, tasks []model.Task, now time.Time) []model.Task {
	today := startOfDay(now)

	var until time.Time
	switch r {
	case RangeWeek:
		until = today.AddDate(0, 0, 7)
	case RangeMonth:
		until = today.AddDate(0, 1, 0)
	}

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.DueDate == nil {
			if r == RangeAll {
				out = append(out, t)
			}
			continue
		}
		due := t.DueDate.In(now.Location())

		var keep bool
		switch r {
		case RangeToday:
			keep = sameDay(due, today)
		case RangeWeek, RangeMonth:
			keep = !due.Before(today) && !due.After(until)
		default:
			keep = true
		}
		if keep {
			out = append(out, t)
		}
	}
	return out
}
