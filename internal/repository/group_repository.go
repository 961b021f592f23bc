package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

// GroupRepository manages task groups.
type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, group *model.Group) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// ListByUser returns the user's groups in creation order.
func (r *GroupRepository) ListByUser(ctx context.Context, userID uint) ([]model.Group, error) {
	var groups []model.Group
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *GroupRepository) FindByID(ctx context.Context, userID, groupID uint) (*model.Group, error) {
	var group model.Group
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, groupID).First(&group).Error; err != nil {
		return nil, notFound(err)
	}
	return &group, nil
}

// Delete removes the group with all of its tasks and their subtasks.
func (r *GroupRepository) Delete(ctx context.Context, userID, groupID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group model.Group
		if err := tx.Where("user_id = ? AND id = ?", userID, groupID).First(&group).Error; err != nil {
			return notFound(err)
		}
		taskIDs := tx.Model(&model.Task{}).Select("id").Where("group_id = ?", group.ID)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&model.Subtask{}).Error; err != nil {
			return fmt.Errorf("delete subtasks: %w", err)
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&model.Task{}).Error; err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		if err := tx.Delete(&group).Error; err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		return nil
	})
}
