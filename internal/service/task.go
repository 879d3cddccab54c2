package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taskloom/taskloom/internal/model"
	"github.com/taskloom/taskloom/internal/repository"
)

// Task service errors.
var (
	ErrTitleRequired = errors.New("title is required")
	ErrInvalidStatus = errors.New("invalid task status")
	// ErrTaskNotFound is returned both when a task does not exist and
	// when it belongs to another user, so the two cases cannot be told
	// apart from the outside.
	ErrTaskNotFound = errors.New("task not found")
)

// TaskStore is the persistence surface the task service needs.
type TaskStore interface {
	CreateTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, ownerID, taskID int64) (*model.Task, error)
	ListTasks(ctx context.Context, filter repository.TaskFilter) ([]*model.Task, error)
	UpdateTask(ctx context.Context, task *model.Task) error
	DeleteTask(ctx context.Context, ownerID, taskID int64) error
}

// TaskService handles task business logic. Every operation is scoped to
// the owner id of the authenticated caller.
type TaskService struct {
	store  TaskStore
	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(store TaskStore, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		store:  store,
		logger: logger,
	}
}

// ListTasksInput defines input for listing tasks.
type ListTasksInput struct {
	OwnerID int64
	// Status filters by exact match when non-empty. An unknown value
	// matches nothing rather than failing.
	Status string
	// Search filters where title or description contains the substring.
	Search string
}

// List returns the owner's tasks, newest first.
func (s *TaskService) List(ctx context.Context, input ListTasksInput) ([]*model.Task, error) {
	filter := repository.TaskFilter{
		OwnerID: input.OwnerID,
		Status:  model.TaskStatus(input.Status),
		Search:  input.Search,
	}

	tasks, err := s.store.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// CreateTaskInput defines input for creating a task.
type CreateTaskInput struct {
	OwnerID     int64
	Title       string
	Description string
	Status      string
}

// Create inserts a new task and returns the materialized row.
// Status defaults to pending when omitted.
func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	status := model.TaskStatusPending
	if input.Status != "" {
		status = model.TaskStatus(input.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
	}

	task := &model.Task{
		OwnerID:     input.OwnerID,
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
	}

	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("task created", "task_id", task.ID, "owner_id", task.OwnerID)

	return task, nil
}

// UpdateTaskInput defines a partial update. Nil fields are left
// unchanged; a non-nil field replaces the stored value, including an
// explicit empty description.
type UpdateTaskInput struct {
	OwnerID     int64
	TaskID      int64
	Title       *string
	Description *string
	Status      *string
}

// Update applies a partial update to a task the owner holds. A missing
// task and a task owned by someone else produce the same ErrTaskNotFound.
func (s *TaskService) Update(ctx context.Context, input UpdateTaskInput) (*model.Task, error) {
	task, err := s.store.GetTask(ctx, input.OwnerID, input.TaskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = *input.Title
	}

	if input.Description != nil {
		task.Description = *input.Description
	}

	if input.Status != nil {
		status := model.TaskStatus(*input.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		task.Status = status
	}

	if err := s.store.UpdateTask(ctx, task); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Info("task updated", "task_id", task.ID, "owner_id", task.OwnerID)

	return task, nil
}

// Delete removes a task the owner holds. Deleting a task that is absent
// or not owned returns ErrTaskNotFound.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID int64) error {
	if err := s.store.DeleteTask(ctx, ownerID, taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Info("task deleted", "task_id", taskID, "owner_id", ownerID)

	return nil
}
