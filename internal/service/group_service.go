package service

import (
	"context"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// GroupService provides helpers around task groups.
type GroupService struct {
	repo *repository.GroupRepository
}

func NewGroupService(repo *repository.GroupRepository) *GroupService {
	return &GroupService{repo: repo}
}

func (s *GroupService) List(ctx context.Context, userID uint) ([]model.Group, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *GroupService) Create(ctx context.Context, userID uint, name, color string) (*model.Group, error) {
	name, err := requireTitle("name", name)
	if err != nil {
		return nil, err
	}
	color, err = normalizeColor(color)
	if err != nil {
		return nil, err
	}
	group := model.Group{UserID: userID, Name: name, Color: color}
	if err := s.repo.Create(ctx, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// Delete removes the group and everything in it.
func (s *GroupService) Delete(ctx context.Context, userID, groupID uint) error {
	return s.repo.Delete(ctx, userID, groupID)
}
