package handler

import (
	"context"
	"sync"
	"time"

	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/repository"
)

type fakeTaskStore struct {
	mu    sync.Mutex
	tasks []model.Task
}

func (s *fakeTaskStore) find(userID, id string) int {
	for i, t := range s.tasks {
		if t.ID == id && t.UserID == userID {
			return i
		}
	}
	return -1
}

func (s *fakeTaskStore) Create(_ context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, *t)
	return nil
}

func (s *fakeTaskStore) GetByID(_ context.Context, userID, id string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(userID, id)
	if i < 0 {
		return nil, repository.ErrTaskNotFound
	}
	t := s.tasks[i]
	return &t, nil
}

func (s *fakeTaskStore) ListByUser(_ context.Context, userID string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Task{}
	for _, t := range s.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeTaskStore) Update(_ context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(t.UserID, t.ID)
	if i < 0 {
		return repository.ErrTaskNotFound
	}
	s.tasks[i] = *t
	return nil
}

func (s *fakeTaskStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(userID, id)
	if i < 0 {
		return repository.ErrTaskNotFound
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return nil
}

func (s *fakeTaskStore) BulkDelete(ctx context.Context, userID string, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if s.Delete(ctx, userID, id) == nil {
			n++
		}
	}
	return n, nil
}

func (s *fakeTaskStore) BulkSetField(_ context.Context, userID string, ids []string, column, value string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		i := s.find(userID, id)
		if i < 0 {
			continue
		}
		if column == "status" {
			s.tasks[i].Status = model.Status(value)
		} else {
			s.tasks[i].Priority = model.Priority(value)
		}
		s.tasks[i].UpdatedAt = at
		n++
	}
	return n, nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users []model.User
}

func (s *fakeUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	s.users = append(s.users, *u)
	return nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}
