package service

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

type testEnv struct {
	db       *gorm.DB
	users    *repository.UserRepository
	taskRepo *repository.TaskRepository
	auth     *AuthService
	groups   *GroupService
	tasks    *TaskService
	accounts *AccountService
	views    *ViewService
	reminder *ReminderService
}

func testHasher() PasswordHasher {
	return PasswordHasher{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "taskboard.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	auth, err := NewAuthService(userRepo, testHasher())
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return &testEnv{
		db:       db,
		users:    userRepo,
		taskRepo: taskRepo,
		auth:     auth,
		groups:   NewGroupService(groupRepo),
		tasks:    NewTaskService(taskRepo, subtaskRepo),
		accounts: NewAccountService(accountRepo),
		views:    NewViewService(groupRepo, taskRepo, subtaskRepo, accountRepo),
		reminder: NewReminderService(taskRepo, groupRepo),
	}
}

func (e *testEnv) register(t *testing.T, email string) *model.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), RegisterInput{
		Name:            "Test User",
		Email:           email,
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return user
}

// firstGroup returns the user's "My Day" group.
func (e *testEnv) firstGroup(t *testing.T, userID uint) model.Group {
	t.Helper()
	groups, err := e.groups.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(groups) == 0 {
		t.Fatal("expected seeded groups")
	}
	return groups[0]
}

func (e *testEnv) count(t *testing.T, value any) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(value).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
