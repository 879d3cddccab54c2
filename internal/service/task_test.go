package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/taskloom/taskloom/internal/model"
	"github.com/taskloom/taskloom/internal/service"
	"github.com/taskloom/taskloom/internal/testutil"
)

func newTaskService() *service.TaskService {
	return service.NewTaskService(testutil.NewTaskMemStore(), nil)
}

func createTask(t *testing.T, svc *service.TaskService, owner int64, title, description, status string) *model.Task {
	t.Helper()
	task, err := svc.Create(context.Background(), service.CreateTaskInput{
		OwnerID:     owner,
		Title:       title,
		Description: description,
		Status:      status,
	})
	if err != nil {
		t.Fatalf("Create(%s): %v", title, err)
	}
	return task
}

func strptr(s string) *string { return &s }

func TestCreate_Defaults(t *testing.T) {
	svc := newTaskService()

	task := createTask(t, svc, 1, "buy milk", "", "")

	if task.ID == 0 {
		t.Error("expected generated id")
	}
	if task.CreatedAt.IsZero() {
		t.Error("expected creation timestamp")
	}
	if task.Status != model.TaskStatusPending {
		t.Errorf("expected default status pending, got %q", task.Status)
	}
	if task.Description != "" {
		t.Errorf("expected empty description, got %q", task.Description)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := newTaskService()

	_, err := svc.Create(context.Background(), service.CreateTaskInput{OwnerID: 1})
	if !errors.Is(err, service.ErrTitleRequired) {
		t.Errorf("expected ErrTitleRequired for empty title, got %v", err)
	}

	_, err = svc.Create(context.Background(), service.CreateTaskInput{OwnerID: 1, Title: "x", Status: "done"})
	if !errors.Is(err, service.ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestList_OwnershipIsolation(t *testing.T) {
	svc := newTaskService()
	taskA := createTask(t, svc, 1, "alice task", "", "")
	createTask(t, svc, 2, "bob task", "", "")

	tasks, err := svc.List(context.Background(), service.ListTasksInput{OwnerID: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(tasks) != 1 {
		t.Fatalf("expected 1 task for owner 2, got %d", len(tasks))
	}
	if tasks[0].Title != "bob task" {
		t.Errorf("unexpected task: %+v", tasks[0])
	}

	// Mutations on another user's task id look like a missing task.
	_, err = svc.Update(context.Background(), service.UpdateTaskInput{
		OwnerID: 2,
		TaskID:  taskA.ID,
		Title:   strptr("stolen"),
	})
	if !errors.Is(err, service.ErrTaskNotFound) {
		t.Errorf("cross-owner update: expected ErrTaskNotFound, got %v", err)
	}

	if err := svc.Delete(context.Background(), 2, taskA.ID); !errors.Is(err, service.ErrTaskNotFound) {
		t.Errorf("cross-owner delete: expected ErrTaskNotFound, got %v", err)
	}
}

func TestList_Filters(t *testing.T) {
	svc := newTaskService()
	createTask(t, svc, 1, "write report", "for Monday", "")
	createTask(t, svc, 1, "buy milk", "foo shop", "completed")
	createTask(t, svc, 1, "call foo", "", "")

	tests := []struct {
		name       string
		input      service.ListTasksInput
		wantTitles []string
	}{
		{
			name:       "newest first",
			input:      service.ListTasksInput{OwnerID: 1},
			wantTitles: []string{"call foo", "buy milk", "write report"},
		},
		{
			name:       "status exact match",
			input:      service.ListTasksInput{OwnerID: 1, Status: "completed"},
			wantTitles: []string{"buy milk"},
		},
		{
			name:       "unknown status matches nothing",
			input:      service.ListTasksInput{OwnerID: 1, Status: "archived"},
			wantTitles: []string{},
		},
		{
			name:       "search hits title or description",
			input:      service.ListTasksInput{OwnerID: 1, Search: "foo"},
			wantTitles: []string{"call foo", "buy milk"},
		},
		{
			name:       "search and status combine",
			input:      service.ListTasksInput{OwnerID: 1, Search: "foo", Status: "pending"},
			wantTitles: []string{"call foo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := svc.List(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(tasks) != len(tt.wantTitles) {
				t.Fatalf("expected %d tasks, got %d", len(tt.wantTitles), len(tasks))
			}
			for i, want := range tt.wantTitles {
				if tasks[i].Title != want {
					t.Errorf("task %d: expected %q, got %q", i, want, tasks[i].Title)
				}
			}
		})
	}
}

func TestUpdate_PatchSemantics(t *testing.T) {
	svc := newTaskService()

	t.Run("omitted fields stay unchanged", func(t *testing.T) {
		task := createTask(t, svc, 1, "original", "keep me", "")

		updated, err := svc.Update(context.Background(), service.UpdateTaskInput{
			OwnerID: 1,
			TaskID:  task.ID,
			Status:  strptr("completed"),
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}

		if updated.Title != "original" || updated.Description != "keep me" {
			t.Errorf("omitted fields changed: %+v", updated)
		}
		if updated.Status != model.TaskStatusCompleted {
			t.Errorf("expected status completed, got %q", updated.Status)
		}
	})

	t.Run("explicit empty description clears it", func(t *testing.T) {
		task := createTask(t, svc, 1, "original", "stale notes", "")

		updated, err := svc.Update(context.Background(), service.UpdateTaskInput{
			OwnerID:     1,
			TaskID:      task.ID,
			Description: strptr(""),
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}

		if updated.Description != "" {
			t.Errorf("expected cleared description, got %q", updated.Description)
		}
	})

	t.Run("explicit empty title is rejected", func(t *testing.T) {
		task := createTask(t, svc, 1, "original", "", "")

		_, err := svc.Update(context.Background(), service.UpdateTaskInput{
			OwnerID: 1,
			TaskID:  task.ID,
			Title:   strptr(""),
		})
		if !errors.Is(err, service.ErrTitleRequired) {
			t.Errorf("expected ErrTitleRequired, got %v", err)
		}
	})

	t.Run("invalid status is rejected", func(t *testing.T) {
		task := createTask(t, svc, 1, "original", "", "")

		_, err := svc.Update(context.Background(), service.UpdateTaskInput{
			OwnerID: 1,
			TaskID:  task.ID,
			Status:  strptr("archived"),
		})
		if !errors.Is(err, service.ErrInvalidStatus) {
			t.Errorf("expected ErrInvalidStatus, got %v", err)
		}
	})

	t.Run("missing task", func(t *testing.T) {
		_, err := svc.Update(context.Background(), service.UpdateTaskInput{
			OwnerID: 1,
			TaskID:  9999,
			Title:   strptr("ghost"),
		})
		if !errors.Is(err, service.ErrTaskNotFound) {
			t.Errorf("expected ErrTaskNotFound, got %v", err)
		}
	})
}

func TestDelete_Twice(t *testing.T) {
	svc := newTaskService()
	task := createTask(t, svc, 1, "ephemeral", "", "")

	if err := svc.Delete(context.Background(), 1, task.ID); err != nil {
		t.Fatalf("first Delete: %v", err)
	}

	if err := svc.Delete(context.Background(), 1, task.ID); !errors.Is(err, service.ErrTaskNotFound) {
		t.Errorf("second Delete: expected ErrTaskNotFound, got %v", err)
	}
}
