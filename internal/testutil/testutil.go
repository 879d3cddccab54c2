// Package testutil provides shared helpers and in-memory store fakes
// for tests.
package testutil

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/taskloom/taskloom/internal/model"
	"github.com/taskloom/taskloom/internal/repository"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// UserMemStore is an in-memory implementation of the auth service's
// user store, mirroring the repository's error contract.
type UserMemStore struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	nextID int64
}

// NewUserMemStore creates an empty in-memory user store.
func NewUserMemStore() *UserMemStore {
	return &UserMemStore{users: make(map[int64]*model.User)}
}

func (s *UserMemStore) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repository.ErrUserExists
		}
	}

	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now()

	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *UserMemStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *UserMemStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *UserMemStore) UpdateUserProfile(_ context.Context, id int64, username, bio string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}

	for otherID, other := range s.users {
		if otherID != id && other.Username == username {
			return repository.ErrUserExists
		}
	}

	user.Username = username
	user.Bio = bio
	return nil
}

func (s *UserMemStore) UpdateUserPassword(_ context.Context, id int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}

	user.PasswordHash = passwordHash
	return nil
}

// TaskMemStore is an in-memory implementation of the task service's
// store. Creation timestamps are strictly increasing so list ordering
// is deterministic.
type TaskMemStore struct {
	mu     sync.Mutex
	tasks  map[int64]*model.Task
	nextID int64
	clock  time.Time
}

// NewTaskMemStore creates an empty in-memory task store.
func NewTaskMemStore() *TaskMemStore {
	return &TaskMemStore{
		tasks: make(map[int64]*model.Task),
		clock: time.Now(),
	}
}

func (s *TaskMemStore) CreateTask(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.clock = s.clock.Add(time.Second)
	task.ID = s.nextID
	task.CreatedAt = s.clock

	stored := *task
	s.tasks[task.ID] = &stored
	return nil
}

func (s *TaskMemStore) GetTask(_ context.Context, ownerID, taskID int64) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.OwnerID != ownerID {
		return nil, repository.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *TaskMemStore) ListTasks(_ context.Context, filter repository.TaskFilter) ([]*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*model.Task, 0)
	for _, task := range s.tasks {
		if task.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(task.Title, filter.Search) &&
			!strings.Contains(task.Description, filter.Search) {
			continue
		}
		copied := *task
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

func (s *TaskMemStore) UpdateTask(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID {
		return repository.ErrTaskNotFound
	}

	existing.Title = task.Title
	existing.Description = task.Description
	existing.Status = task.Status
	return nil
}

func (s *TaskMemStore) DeleteTask(_ context.Context, ownerID, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.OwnerID != ownerID {
		return repository.ErrTaskNotFound
	}

	delete(s.tasks, taskID)
	return nil
}
