package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/taskmanager/taskmanager-go/internal/export"
	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/repository"
	"github.com/taskmanager/taskmanager-go/internal/tasklist"
	"github.com/taskmanager/taskmanager-go/internal/validation"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrNoTaskIDs         = errors.New("ids must not be empty")
	ErrTooManyTaskIDs    = errors.New("too many ids in bulk request (max 500)")
	ErrUnknownBulkAction = errors.New("action must be one of delete, status, priority")
	ErrInvalidBulkValue  = errors.New("invalid value for bulk action")
)

const maxBulkIDs = 500

var _ TaskStore = (*repository.TaskRepository)(nil)

// TaskStore is the persistence the task service depends on.
// *repository.TaskRepository implements it.
type TaskStore interface {
	Create(ctx context.Context, t *model.Task) error
	GetByID(ctx context.Context, userID, id string) (*model.Task, error)
	ListByUser(ctx context.Context, userID string) ([]model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, userID, id string) error
	BulkDelete(ctx context.Context, userID string, ids []string) (int64, error)
	BulkSetField(ctx context.Context, userID string, ids []string, column, value string, at time.Time) (int64, error)
}

// TaskService handles task business logic. Each user's full task list is cached
// for a short time because every list view, stats and export request derives
// from it. Any write by the user drops their entry and bumps their generation, so
// a load that started before the write cannot store its snapshot afterwards.
type TaskService struct {
	repo  TaskStore
	cache *expirable.LRU[string, []model.Task]
	now   func() time.Time

	genMu sync.Mutex
	gens  map[string]uint64
}

// TaskServiceOption customizes a TaskService.
type TaskServiceOption func(*TaskService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TaskServiceOption {
	return func(s *TaskService) { s.now = now }
}

// WithCache sets the list cache size and TTL. A zero size disables caching.
func WithCache(size int, ttl time.Duration) TaskServiceOption {
	return func(s *TaskService) {
		if size <= 0 {
			s.cache = nil
			return
		}
		s.cache = expirable.NewLRU[string, []model.Task](size, nil, ttl)
	}
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo TaskStore, opts ...TaskServiceOption) *TaskService {
	s := &TaskService{
		repo:  repo,
		cache: expirable.NewLRU[string, []model.Task](1024, nil, 30*time.Second),
		now:   time.Now,
		gens:  make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a new task for userID.
func (s *TaskService) Create(ctx context.Context, userID string, req model.CreateTaskRequest) (model.Task, error) {
	now := s.timestamp()
	task := model.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate.TimePtr(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Status == "" {
		task.Status = model.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}

	if err := validation.Check(validation.TaskValues(task), validation.TaskSchema); err != nil {
		return model.Task{}, err
	}

	if err := s.repo.Create(ctx, &task); err != nil {
		return model.Task{}, fmt.Errorf("creating task: %w", err)
	}
	s.invalidate(userID)

	return task, nil
}

// Get returns one task owned by userID.
func (s *TaskService) Get(ctx context.Context, userID, id string) (model.Task, error) {
	task, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return model.Task{}, translateTaskErr(err)
	}
	return *task, nil
}

// Update applies the set fields of req to an existing task. The merged task is
// validated as a whole; nothing is written when any field is invalid.
func (s *TaskService) Update(ctx context.Context, userID, id string, req model.UpdateTaskRequest) (model.Task, error) {
	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return model.Task{}, translateTaskErr(err)
	}

	task := *existing
	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate.TimePtr()
	}
	if req.ClearDueDate {
		task.DueDate = nil
	}

	values := validation.TaskValues(task)
	// An explicit empty status or priority must fail rather than be skipped as absent.
	if req.Status != nil && *req.Status == "" {
		values["status"] = "-"
	}
	if req.Priority != nil && *req.Priority == "" {
		values["priority"] = "-"
	}
	if err := validation.Check(values, validation.TaskSchema); err != nil {
		return model.Task{}, err
	}

	task.UpdatedAt = s.timestamp()
	if err := s.repo.Update(ctx, &task); err != nil {
		return model.Task{}, translateTaskErr(err)
	}
	s.invalidate(userID)

	return task, nil
}

// Delete removes a task owned by userID.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return translateTaskErr(err)
	}
	s.invalidate(userID)
	return nil
}

// Bulk applies one action to several of the user's tasks. IDs that do not exist or
// belong to another user are ignored.
func (s *TaskService) Bulk(ctx context.Context, userID string, req model.BulkRequest) (model.BulkResponse, error) {
	if len(req.IDs) == 0 {
		return model.BulkResponse{}, ErrNoTaskIDs
	}
	if len(req.IDs) > maxBulkIDs {
		return model.BulkResponse{}, ErrTooManyTaskIDs
	}

	var (
		n   int64
		err error
	)
	switch req.Action {
	case model.BulkDelete:
		n, err = s.repo.BulkDelete(ctx, userID, req.IDs)
	case model.BulkStatus:
		if !model.Status(req.Value).Valid() {
			return model.BulkResponse{}, ErrInvalidBulkValue
		}
		n, err = s.repo.BulkSetField(ctx, userID, req.IDs, "status", req.Value, s.timestamp())
	case model.BulkPriority:
		if !model.Priority(req.Value).Valid() {
			return model.BulkResponse{}, ErrInvalidBulkValue
		}
		n, err = s.repo.BulkSetField(ctx, userID, req.IDs, "priority", req.Value, s.timestamp())
	default:
		return model.BulkResponse{}, ErrUnknownBulkAction
	}
	if err != nil {
		return model.BulkResponse{}, fmt.Errorf("bulk %s: %w", req.Action, err)
	}
	s.invalidate(userID)

	return model.BulkResponse{Action: req.Action, Affected: n}, nil
}

// List returns the user's tasks filtered, bucketed by due date and sorted per q.
func (s *TaskService) List(ctx context.Context, userID string, q model.TaskQuery, loc *time.Location) ([]model.Task, error) {
	tasks, err := s.all(ctx, userID)
	if err != nil {
		return nil, err
	}
	return tasklist.Apply(tasks, q, s.now().In(loc))
}

// Stats summarizes all of the user's tasks.
func (s *TaskService) Stats(ctx context.Context, userID string) (tasklist.Stats, error) {
	tasks, err := s.all(ctx, userID)
	if err != nil {
		return tasklist.Stats{}, err
	}
	return tasklist.ComputeStats(tasks, s.now()), nil
}

// Analytics computes completion activity over all of the user's tasks. Calendar
// days are taken in loc.
func (s *TaskService) Analytics(ctx context.Context, userID string, loc *time.Location) (tasklist.Analytics, error) {
	tasks, err := s.all(ctx, userID)
	if err != nil {
		return tasklist.Analytics{}, err
	}
	return tasklist.Analyze(tasks, s.now().In(loc)), nil
}

// Present adds the due-date fields derived at the current time in loc.
func (s *TaskService) Present(tasks []model.Task, loc *time.Location) []tasklist.View {
	return tasklist.Views(tasks, s.now().In(loc))
}

// Export renders the tasks selected by q in format.
func (s *TaskService) Export(ctx context.Context, userID string, q model.TaskQuery, format export.Format, loc *time.Location) (export.Document, error) {
	tasks, err := s.List(ctx, userID, q, loc)
	if err != nil {
		return export.Document{}, err
	}
	return export.Render(format, tasks, describe(q), s.now().In(loc))
}

// all loads every task of the user, through the cache when enabled. The returned
// slice is shared with the cache and must not be modified.
func (s *TaskService) all(ctx context.Context, userID string) ([]model.Task, error) {
	if s.cache == nil {
		tasks, err := s.repo.ListByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("listing tasks: %w", err)
		}
		return tasks, nil
	}

	if tasks, ok := s.cache.Get(userID); ok {
		return tasks, nil
	}

	s.genMu.Lock()
	gen := s.gens[userID]
	s.genMu.Unlock()

	tasks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	s.genMu.Lock()
	if s.gens[userID] == gen {
		s.cache.Add(userID, tasks)
	}
	s.genMu.Unlock()

	return tasks, nil
}

func (s *TaskService) invalidate(userID string) {
	if s.cache == nil {
		return
	}
	s.genMu.Lock()
	s.gens[userID]++
	s.cache.Remove(userID)
	s.genMu.Unlock()
}

// timestamp is the current time at the millisecond precision the tasks table stores.
func (s *TaskService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// describe names the active filters for export filenames, e.g. "completed_high_week".
// Only known values are used, so arbitrary query input never reaches the filename.
func describe(q model.TaskQuery) string {
	var parts []string
	if model.Status(q.Status).Valid() {
		parts = append(parts, q.Status)
	}
	if model.Priority(q.Priority).Valid() {
		parts = append(parts, q.Priority)
	}
	if r, err := tasklist.ParseDateRange(q.Range); err == nil && r != tasklist.RangeAll {
		parts = append(parts, string(r))
	}
	if len(parts) == 0 {
		return tasklist.All
	}
	return strings.Join(parts, "_")
}

func translateTaskErr(err error) error {
	if errors.Is(err, repository.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	return err
}
