package model

import "time"

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Rank orders statuses todo < in-progress < completed. Unknown values rank 0.
func (s Status) Rank() int {
	switch s {
	case StatusTodo:
		return 1
	case StatusInProgress:
		return 2
	case StatusCompleted:
		return 3
	}
	return 0
}

// Priority is the importance of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities low < medium < high. Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	}
	return 0
}

// Task represents a task owned by a single user.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	UserID      string     `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateTaskRequest represents a task creation request. Empty status and priority
// default to todo and medium.
type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	DueDate     *Date    `json:"dueDate"`
}

// UpdateTaskRequest represents a partial task update. Nil fields are left unchanged.
// ClearDueDate removes an existing due date.
type UpdateTaskRequest struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Status       *Status   `json:"status"`
	Priority     *Priority `json:"priority"`
	DueDate      *Date     `json:"dueDate"`
	ClearDueDate bool      `json:"clearDueDate"`
}

// BulkAction names an operation applied to several tasks at once.
type BulkAction string

const (
	BulkDelete   BulkAction = "delete"
	BulkStatus   BulkAction = "status"
	BulkPriority BulkAction = "priority"
)

// BulkRequest represents a bulk operation over the caller's tasks.
type BulkRequest struct {
	IDs    []string   `json:"ids"`
	Action BulkAction `json:"action"`
	Value  string     `json:"value"`
}

// BulkResponse reports how many tasks a bulk operation touched.
type BulkResponse struct {
	Action   BulkAction `json:"action"`
	Affected int64      `json:"affected"`
}

// TaskQuery carries the list view parameters: filters, date range and ordering.
type TaskQuery struct {
	Status   string
	Priority string
	Search   string
	Range    string
	Sort     string
}
