package tasklist

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/taskmanager/taskmanager-go/internal/model"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func at(t time.Time) *time.Time { return &t }

func ids(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "1", Title: "Buy milk", Description: "From the corner shop", Status: model.StatusTodo, Priority: model.PriorityLow, CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "2", Title: "Write report", Description: "Quarterly NUMBERS", Status: model.StatusInProgress, Priority: model.PriorityHigh, CreatedAt: now.Add(-1 * time.Hour)},
		{ID: "3", Title: "File taxes", Description: "", Status: model.StatusCompleted, Priority: model.PriorityHigh, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "4", Title: "Call mom", Description: "Sunday", Status: model.StatusTodo, Priority: model.PriorityMedium, CreatedAt: now.Add(-4 * time.Hour)},
	}
}

func TestFilterWithoutCriteriaIsIdentity(t *testing.T) {
	tasks := sampleTasks()
	for _, c := range []Criteria{{}, {Status: All, Priority: All}} {
		got := Filter(tasks, c)
		if !slices.Equal(ids(got), ids(tasks)) {
			t.Errorf("Filter(%+v) = %v, want %v", c, ids(got), ids(tasks))
		}
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{name: "status completed", c: Criteria{Status: "completed"}, want: []string{"3"}},
		{name: "priority high", c: Criteria{Priority: "high"}, want: []string{"2", "3"}},
		{name: "status and priority", c: Criteria{Status: "todo", Priority: "medium"}, want: []string{"4"}},
		{name: "search title case-insensitive", c: Criteria{Search: "MILK"}, want: []string{"1"}},
		{name: "search description", c: Criteria{Search: "numbers"}, want: []string{"2"}},
		{name: "search no match", c: Criteria{Search: "zebra"}, want: []string{}},
		{name: "status with search", c: Criteria{Status: "todo", Search: "sunday"}, want: []string{"4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(sampleTasks(), tt.c))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Filter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortByPriorityIsOrderedAndStable(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", Priority: model.PriorityLow},
		{ID: "b", Priority: model.PriorityHigh},
		{ID: "c", Priority: model.PriorityMedium},
		{ID: "d", Priority: model.PriorityHigh},
		{ID: "e", Priority: model.PriorityLow},
	}

	got := Sort(tasks, SortByPriority)
	want := []string{"b", "d", "c", "a", "e"}
	if !slices.Equal(ids(got), want) {
		t.Fatalf("Sort(priority) = %v, want %v", ids(got), want)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Priority.Rank() < got[i].Priority.Rank() {
			t.Errorf("rank at %d is lower than rank at %d", i-1, i)
		}
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	tasks := sampleTasks()
	before := ids(tasks)

	_ = Sort(tasks, SortByStatus)

	if !slices.Equal(ids(tasks), before) {
		t.Errorf("input reordered to %v", ids(tasks))
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		by   SortBy
		want []string
	}{
		{by: SortByDate, want: []string{"2", "3", "1", "4"}},
		{by: SortByStatus, want: []string{"1", "4", "2", "3"}},
		{by: "unknown", want: []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.by), func(t *testing.T) {
			got := ids(Sort(sampleTasks(), tt.by))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Sort(%s) = %v, want %v", tt.by, got, tt.want)
			}
		})
	}
}

func TestIsOverdue(t *testing.T) {
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	if IsOverdue(past, model.StatusCompleted, now) {
		t.Error("completed task should never be overdue")
	}
	if !IsOverdue(past, model.StatusTodo, now) {
		t.Error("past due todo should be overdue")
	}
	if IsOverdue(future, model.StatusTodo, now) {
		t.Error("future due todo should not be overdue")
	}
}

func TestDaysUntilDue(t *testing.T) {
	tests := []struct {
		due  time.Time
		want int
	}{
		{due: now.Add(36 * time.Hour), want: 2},
		{due: now.Add(24 * time.Hour), want: 1},
		{due: now.Add(time.Minute), want: 1},
		{due: now, want: 0},
		{due: now.Add(-36 * time.Hour), want: -1},
		{due: now.Add(-72 * time.Hour), want: -3},
	}

	for _, tt := range tests {
		if got := DaysUntilDue(tt.due, now); got != tt.want {
			t.Errorf("DaysUntilDue(%v) = %d, want %d", tt.due, got, tt.want)
		}
	}
}

func TestRelativeTime(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{date: now.Add(-72 * time.Hour), want: "3 days ago"},
		{date: now.Add(-time.Hour), want: "Today"},
		{date: now.Add(20 * time.Hour), want: "Tomorrow"},
		{date: now.Add(5 * 24 * time.Hour), want: "In 5 days"},
		{date: now.Add(30 * 24 * time.Hour), want: "Nov 14, 2026"},
	}

	for _, tt := range tests {
		if got := RelativeTime(tt.date, now); got != tt.want {
			t.Errorf("RelativeTime(%v) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestInRange(t *testing.T) {
	tasks := []model.Task{
		{ID: "no-due"},
		{ID: "today-early", DueDate: at(time.Date(2026, 10, 15, 0, 30, 0, 0, time.UTC))},
		{ID: "today-late", DueDate: at(time.Date(2026, 10, 15, 23, 0, 0, 0, time.UTC))},
		{ID: "yesterday", DueDate: at(time.Date(2026, 10, 14, 23, 59, 0, 0, time.UTC))},
		{ID: "in-five-days", DueDate: at(time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC))},
		{ID: "in-three-weeks", DueDate: at(time.Date(2026, 11, 5, 9, 0, 0, 0, time.UTC))},
		{ID: "in-two-months", DueDate: at(time.Date(2026, 12, 20, 9, 0, 0, 0, time.UTC))},
	}

	tests := []struct {
		r    DateRange
		want []string
	}{
		{r: RangeToday, want: []string{"today-early", "today-late"}},
		{r: RangeWeek, want: []string{"today-early", "today-late", "in-five-days"}},
		{r: RangeMonth, want: []string{"today-early", "today-late", "in-five-days", "in-three-weeks"}},
		{r: RangeAll, want: ids(tasks)},
	}

	for _, tt := range tests {
		t.Run(string(tt.r), func(t *testing.T) {
			got := ids(InRange(tt.r, tasks, now))
			if !slices.Equal(got, tt.want) {
				t.Errorf("InRange(%s) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestInRangeTodayUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	localNow := time.Date(2026, 10, 16, 8, 0, 0, 0, loc) // 2026-10-15 22:00 UTC

	tasks := []model.Task{
		{ID: "local-today", DueDate: at(time.Date(2026, 10, 16, 1, 0, 0, 0, time.UTC))},
		{ID: "utc-today", DueDate: at(time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC))},
	}

	got := ids(InRange(RangeToday, tasks, localNow))
	if !slices.Equal(got, []string{"local-today"}) {
		t.Errorf("InRange(today) = %v, want [local-today]", got)
	}
}

func TestComputeStats(t *testing.T) {
	tasks := sampleTasks()
	tasks[0].DueDate = at(now.Add(-time.Hour)) // overdue todo
	tasks[2].DueDate = at(now.Add(-time.Hour)) // completed, not overdue

	got := ComputeStats(tasks, now)
	want := Stats{Total: 4, Todo: 2, InProgress: 1, Completed: 1, HighPriority: 2, Overdue: 1}
	if got != want {
		t.Errorf("ComputeStats() = %+v, want %+v", got, want)
	}
}

func TestAnalyze(t *testing.T) {
	tasks := []model.Task{
		{ID: "done-today", Status: model.StatusCompleted, Priority: model.PriorityHigh, UpdatedAt: now.Add(-time.Hour)},
		{ID: "done-3-days", Status: model.StatusCompleted, UpdatedAt: now.Add(-72 * time.Hour)},
		{ID: "done-old", Status: model.StatusCompleted, UpdatedAt: now.AddDate(0, 0, -10)},
		{ID: "done-no-update", Status: model.StatusCompleted},
		{ID: "open-high", Status: model.StatusTodo, Priority: model.PriorityHigh, DueDate: at(now.Add(-time.Minute))},
		{ID: "wip", Status: model.StatusInProgress, Priority: model.PriorityLow},
	}

	got := Analyze(tasks, now)
	want := Analytics{
		Total:             6,
		Completed:         4,
		InProgress:        1,
		Todo:              1,
		Overdue:           1,
		CompletedToday:    1,
		CompletedThisWeek: 2,
		HighPriority:      1,
	}
	if got != want {
		t.Errorf("Analyze() = %+v, want %+v", got, want)
	}
}

func TestApply(t *testing.T) {
	tasks := sampleTasks()
	tasks[1].DueDate = at(now.Add(2 * time.Hour))
	tasks[3].DueDate = at(now.Add(3 * time.Hour))

	got, err := Apply(tasks, model.TaskQuery{Range: "today", Sort: "priority"}, now)
	if err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}
	if want := []string{"2", "4"}; !slices.Equal(ids(got), want) {
		t.Errorf("Apply() = %v, want %v", ids(got), want)
	}

	if _, err := Apply(tasks, model.TaskQuery{Sort: "alphabetical"}, now); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("Apply() error = %v, want ErrInvalidQuery", err)
	}
	if _, err := Apply(tasks, model.TaskQuery{Range: "year"}, now); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("Apply() error = %v, want ErrInvalidQuery", err)
	}
}

func TestViews(t *testing.T) {
	tasks := []model.Task{
		{ID: "late", Status: model.StatusTodo, DueDate: at(now.Add(-50 * time.Hour))},
		{ID: "soon", Status: model.StatusInProgress, DueDate: at(time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC))},
		{ID: "done-late", Status: model.StatusCompleted, DueDate: at(now.Add(-50 * time.Hour))},
		{ID: "undated", Status: model.StatusTodo},
	}

	views := Views(tasks, now)

	tests := []struct {
		overdue bool
		days    *int
		label   string
	}{
		{overdue: true, days: intPtr(-2), label: "2 days ago"},
		{overdue: false, days: intPtr(5), label: "In 5 days"},
		{overdue: false, days: intPtr(-2), label: "2 days ago"},
		{overdue: false},
	}
	for i, tt := range tests {
		v := views[i]
		if v.ID != tasks[i].ID {
			t.Fatalf("views[%d].ID = %q, want %q", i, v.ID, tasks[i].ID)
		}
		if v.Overdue != tt.overdue {
			t.Errorf("%s: Overdue = %v, want %v", v.ID, v.Overdue, tt.overdue)
		}
		if (v.DaysUntilDue == nil) != (tt.days == nil) || (tt.days != nil && *v.DaysUntilDue != *tt.days) {
			t.Errorf("%s: DaysUntilDue = %v, want %v", v.ID, v.DaysUntilDue, tt.days)
		}
		if v.DueLabel != tt.label {
			t.Errorf("%s: DueLabel = %q, want %q", v.ID, v.DueLabel, tt.label)
		}
	}

	if got := Views(nil, now); got == nil || len(got) != 0 {
		t.Errorf("Views(nil) = %v, want empty slice", got)
	}
}

func intPtr(n int) *int { return &n }
