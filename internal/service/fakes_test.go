package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/repository"
)

// memTaskStore is an in-memory TaskStore that counts ListByUser calls.
type memTaskStore struct {
	mu        sync.Mutex
	tasks     map[string]model.Task
	listCalls int
}

func newMemTaskStore(tasks ...model.Task) *memTaskStore {
	s := &memTaskStore{tasks: map[string]model.Task{}}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return s
}

func (s *memTaskStore) Create(_ context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = *t
	return nil
}

func (s *memTaskStore) GetByID(_ context.Context, userID, id string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrTaskNotFound
	}
	return &t, nil
}

func (s *memTaskStore) ListByUser(_ context.Context, userID string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	out := []model.Task{}
	for _, t := range s.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b model.Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *memTaskStore) Update(_ context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.tasks[t.ID]
	if !ok || old.UserID != t.UserID {
		return repository.ErrTaskNotFound
	}
	s.tasks[t.ID] = *t
	return nil
}

func (s *memTaskStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return repository.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *memTaskStore) BulkDelete(_ context.Context, userID string, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if t, ok := s.tasks[id]; ok && t.UserID == userID {
			delete(s.tasks, id)
			n++
		}
	}
	return n, nil
}

func (s *memTaskStore) BulkSetField(_ context.Context, userID string, ids []string, column, value string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		t, ok := s.tasks[id]
		if !ok || t.UserID != userID {
			continue
		}
		switch column {
		case "status":
			t.Status = model.Status(value)
		case "priority":
			t.Priority = model.Priority(value)
		}
		t.UpdatedAt = at
		s.tasks[id] = t
		n++
	}
	return n, nil
}

// memUserStore is an in-memory UserStore keyed by ID.
type memUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]model.User{}}
}

func (s *memUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	s.users[u.ID] = *u
	return nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}
