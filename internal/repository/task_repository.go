package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

// DueReminder is a task whose reminder has come due, with the chat to notify.
type DueReminder struct {
	model.Task `gorm:"embedded"`
	UserID     uint
	ChatID     int64
}

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// CreateInGroup inserts task after checking that its group belongs to userID.
func (r *TaskRepository) CreateInGroup(ctx context.Context, userID uint, task *model.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Group{}).Where("user_id = ? AND id = ?", userID, task.GroupID).Count(&count).Error; err != nil {
			return fmt.Errorf("find group: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return nil
	})
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	db := r.db.WithContext(ctx)
	var task model.Task
	if err := db.Where("id = ? AND group_id IN (?)", taskID, ownedGroupIDs(db, userID)).First(&task).Error; err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

// ListByGroup returns open tasks before completed ones, newest first within each.
func (r *TaskRepository) ListByGroup(ctx context.Context, groupID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("group_id = ?", groupID).
		Order("is_completed ASC, created_at DESC, id DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListPendingByUser returns every incomplete task of the user, earliest due date first.
func (r *TaskRepository) ListPendingByUser(ctx context.Context, userID uint) ([]model.Task, error) {
	db := r.db.WithContext(ctx)
	var tasks []model.Task
	if err := db.Where("is_completed = ? AND group_id IN (?)", false, ownedGroupIDs(db, userID)).
		Order("due_at NULLS LAST, created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update loads the task inside a transaction, applies fn and saves the result.
func (r *TaskRepository) Update(ctx context.Context, userID, taskID uint, fn func(task *model.Task)) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND group_id IN (?)", taskID, ownedGroupIDs(tx, userID)).First(&task).Error; err != nil {
			return notFound(err)
		}
		fn(&task)
		if err := tx.Save(&task).Error; err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Toggle flips completion. CompletedAt is set to now when the task becomes
// completed and cleared when it is reopened.
func (r *TaskRepository) Toggle(ctx context.Context, userID, taskID uint, now time.Time) (*model.Task, error) {
	return r.Update(ctx, userID, taskID, func(task *model.Task) {
		task.IsCompleted = !task.IsCompleted
		if task.IsCompleted {
			completedAt := now
			task.CompletedAt = &completedAt
		} else {
			task.CompletedAt = nil
		}
	})
}

// Delete removes a task and its subtasks. Deleting a missing task is a no-op.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		err := tx.Where("id = ? AND group_id IN (?)", taskID, ownedGroupIDs(tx, userID)).First(&task).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("find task: %w", err)
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&model.Subtask{}).Error; err != nil {
			return fmt.Errorf("delete subtasks: %w", err)
		}
		if err := tx.Delete(&task).Error; err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
}

// ListDueReminders returns open tasks whose reminder time has passed, that were
// not reminded yet and whose owner linked a Telegram chat.
func (r *TaskRepository) ListDueReminders(ctx context.Context, now time.Time) ([]DueReminder, error) {
	var due []DueReminder
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("tasks.*, users.id AS user_id, users.telegram_chat_id AS chat_id").
		Joins("JOIN task_groups ON task_groups.id = tasks.group_id").
		Joins("JOIN users ON users.id = task_groups.user_id").
		Where("tasks.is_completed = ? AND tasks.remind_at IS NOT NULL AND tasks.remind_at <= ? AND tasks.reminded_at IS NULL", false, now).
		Where("users.telegram_chat_id IS NOT NULL").
		Order("tasks.remind_at ASC, tasks.id ASC").
		Scan(&due).Error
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	return due, nil
}

// MarkReminded records that the reminder for taskID was delivered.
func (r *TaskRepository) MarkReminded(ctx context.Context, taskID uint, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND reminded_at IS NULL", taskID).
		Update("reminded_at", at).Error; err != nil {
		return fmt.Errorf("mark reminded: %w", err)
	}
	return nil
}
