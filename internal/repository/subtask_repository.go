package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

// SubtaskRepository handles CRUD for subtasks.
type SubtaskRepository struct {
	db *gorm.DB
}

func NewSubtaskRepository(db *gorm.DB) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

// CreateForTask inserts subtask after checking that its task belongs to userID.
func (r *SubtaskRepository) CreateForTask(ctx context.Context, userID uint, subtask *model.Subtask) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Task{}).
			Where("id = ? AND group_id IN (?)", subtask.TaskID, ownedGroupIDs(tx, userID)).
			Count(&count).Error; err != nil {
			return fmt.Errorf("find task: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		if err := tx.Create(subtask).Error; err != nil {
			return fmt.Errorf("create subtask: %w", err)
		}
		return nil
	})
}

// ListByTasks returns the subtasks of the given tasks in creation order.
func (r *SubtaskRepository) ListByTasks(ctx context.Context, taskIDs []uint) ([]model.Subtask, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}
	var subtasks []model.Subtask
	if err := r.db.WithContext(ctx).Where("task_id IN ?", taskIDs).
		Order("created_at ASC, id ASC").
		Find(&subtasks).Error; err != nil {
		return nil, err
	}
	return subtasks, nil
}

// Toggle flips the completion flag of a subtask owned by userID.
func (r *SubtaskRepository) Toggle(ctx context.Context, userID, subtaskID uint) (*model.Subtask, error) {
	var subtask model.Subtask
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND task_id IN (?)", subtaskID, ownedTaskIDs(tx, userID)).First(&subtask).Error; err != nil {
			return notFound(err)
		}
		subtask.IsCompleted = !subtask.IsCompleted
		if err := tx.Save(&subtask).Error; err != nil {
			return fmt.Errorf("toggle subtask: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &subtask, nil
}
