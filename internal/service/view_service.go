package service

import (
	"context"
	"fmt"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// TaskView is a task with its subtasks.
type TaskView struct {
	model.Task
	Subtasks []model.Subtask
}

// BoardView is everything the main screen shows. Tasks all belong to SelectedGroup.
type BoardView struct {
	Groups         []model.Group
	SelectedGroup  *model.Group
	Tasks          []TaskView
	Accounts       []model.Account
	CurrentAccount *model.Account
}

// ViewService composes the board view from the repositories.
type ViewService struct {
	groupRepo   *repository.GroupRepository
	taskRepo    *repository.TaskRepository
	subtaskRepo *repository.SubtaskRepository
	accountRepo *repository.AccountRepository
}

func NewViewService(groupRepo *repository.GroupRepository, taskRepo *repository.TaskRepository, subtaskRepo *repository.SubtaskRepository, accountRepo *repository.AccountRepository) *ViewService {
	return &ViewService{
		groupRepo:   groupRepo,
		taskRepo:    taskRepo,
		subtaskRepo: subtaskRepo,
		accountRepo: accountRepo,
	}
}

// BuildView selects selectedGroupID when the user owns it and the first group
// otherwise. A user without groups gets an empty task list.
func (s *ViewService) BuildView(ctx context.Context, userID uint, selectedGroupID *uint) (*BoardView, error) {
	groups, err := s.groupRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	view := &BoardView{Groups: groups, Tasks: []TaskView{}}
	view.SelectedGroup = selectGroup(groups, selectedGroupID)

	if view.SelectedGroup != nil {
		tasks, err := s.taskRepo.ListByGroup(ctx, view.SelectedGroup.ID)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		view.Tasks, err = s.attachSubtasks(ctx, tasks)
		if err != nil {
			return nil, err
		}
	}

	view.Accounts, err = s.accountRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	for i := range view.Accounts {
		if view.Accounts[i].IsDefault {
			view.CurrentAccount = &view.Accounts[i]
			break
		}
	}

	return view, nil
}

func selectGroup(groups []model.Group, selectedGroupID *uint) *model.Group {
	if len(groups) == 0 {
		return nil
	}
	if selectedGroupID != nil {
		for i := range groups {
			if groups[i].ID == *selectedGroupID {
				return &groups[i]
			}
		}
	}
	return &groups[0]
}

func (s *ViewService) attachSubtasks(ctx context.Context, tasks []model.Task) ([]TaskView, error) {
	ids := make([]uint, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	subtasks, err := s.subtaskRepo.ListByTasks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	byTask := make(map[uint][]model.Subtask, len(tasks))
	for _, sub := range subtasks {
		byTask[sub.TaskID] = append(byTask[sub.TaskID], sub)
	}

	views := make([]TaskView, len(tasks))
	for i, task := range tasks {
		subs := byTask[task.ID]
		if subs == nil {
			subs = []model.Subtask{}
		}
		views[i] = TaskView{Task: task, Subtasks: subs}
	}
	return views, nil
}
