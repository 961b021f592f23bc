package service

import (
	"context"
	"strings"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// TaskUpdate holds the editable fields of a task. All of them are replaced.
type TaskUpdate struct {
	Title    string
	Notes    string
	DueAt    *time.Time
	RemindAt *time.Time
}

// TaskService wraps task and subtask business logic.
type TaskService struct {
	taskRepo    *repository.TaskRepository
	subtaskRepo *repository.SubtaskRepository
}

func NewTaskService(taskRepo *repository.TaskRepository, subtaskRepo *repository.SubtaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, subtaskRepo: subtaskRepo}
}

func (s *TaskService) CreateTask(ctx context.Context, userID, groupID uint, title string) (*model.Task, error) {
	title, err := requireTitle("title", title)
	if err != nil {
		return nil, err
	}
	task := model.Task{GroupID: groupID, Title: title}
	if err := s.taskRepo.CreateInGroup(ctx, userID, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask replaces title, notes, due date and reminder. A changed reminder
// is re-armed.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID uint, in TaskUpdate) (*model.Task, error) {
	title, err := requireTitle("title", in.Title)
	if err != nil {
		return nil, err
	}
	var notes *string
	if trimmed := strings.TrimSpace(in.Notes); trimmed != "" {
		notes = &trimmed
	}
	dueAt := utcPtr(in.DueAt)
	remindAt := utcPtr(in.RemindAt)

	return s.taskRepo.Update(ctx, userID, taskID, func(task *model.Task) {
		if !sameTime(task.RemindAt, remindAt) {
			task.RemindedAt = nil
		}
		task.Title = title
		task.Notes = notes
		task.DueAt = dueAt
		task.RemindAt = remindAt
	})
}

// ToggleTask flips completion and stamps or clears CompletedAt.
func (s *TaskService) ToggleTask(ctx context.Context, userID, taskID uint, now time.Time) (*model.Task, error) {
	return s.taskRepo.Toggle(ctx, userID, taskID, now.UTC())
}

// DeleteTask removes a task completely. Deleting a missing task is a no-op.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uint) error {
	return s.taskRepo.Delete(ctx, userID, taskID)
}

func (s *TaskService) CreateSubtask(ctx context.Context, userID, taskID uint, title string) (*model.Subtask, error) {
	title, err := requireTitle("title", title)
	if err != nil {
		return nil, err
	}
	subtask := model.Subtask{TaskID: taskID, Title: title}
	if err := s.subtaskRepo.CreateForTask(ctx, userID, &subtask); err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (s *TaskService) ToggleSubtask(ctx context.Context, userID, subtaskID uint) (*model.Subtask, error) {
	return s.subtaskRepo.Toggle(ctx, userID, subtaskID)
}

// utcPtr stores times in UTC so SQLite's text comparison orders them correctly.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
