package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// ReminderService builds human-readable reminders and daily digests.
type ReminderService struct {
	taskRepo  *repository.TaskRepository
	groupRepo *repository.GroupRepository
}

func NewReminderService(taskRepo *repository.TaskRepository, groupRepo *repository.GroupRepository) *ReminderService {
	return &ReminderService{taskRepo: taskRepo, groupRepo: groupRepo}
}

// DueReminders lists reminders that came due and were not delivered yet.
func (s *ReminderService) DueReminders(ctx context.Context, now time.Time) ([]repository.DueReminder, error) {
	return s.taskRepo.ListDueReminders(ctx, now.UTC())
}

func (s *ReminderService) MarkReminded(ctx context.Context, taskID uint, at time.Time) error {
	return s.taskRepo.MarkReminded(ctx, taskID, at.UTC())
}

// FormatReminder renders a single reminder message (Telegram HTML).
func FormatReminder(task model.Task, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔔 <b>%s</b>", html.EscapeString(strings.TrimSpace(task.Title))))
	if task.DueAt != nil {
		sb.WriteString(fmt.Sprintf("\n   ⏰ due %s", task.DueAt.In(loc).Format("2006-01-02")))
	}
	if task.Notes != nil {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(strings.TrimSpace(*task.Notes))))
	}
	return sb.String()
}

// DailySummary lists the user's open tasks, earliest due date first.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	tasks, err := s.taskRepo.ListPendingByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}

	groups, err := s.groupRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}
	groupNames := make(map[uint]string)
	for _, group := range groups {
		groupNames[group.ID] = group.Name
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		switch {
		case tasks[i].DueAt == nil && tasks[j].DueAt == nil:
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		case tasks[i].DueAt == nil:
			return false
		case tasks[j].DueAt == nil:
			return true
		default:
			return tasks[i].DueAt.Before(*tasks[j].DueAt)
		}
	})

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily digest</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("2006-01-02")))

	if len(tasks) == 0 {
		builder.WriteString("— no open tasks\n")
	} else {
		for _, task := range tasks {
			builder.WriteString(formatTask(task, groupNames, now))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

func formatTask(task model.Task, groupNames map[uint]string, now time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	if task.DueAt != nil {
		d := task.DueAt.In(now.Location())
		switch {
		case now.After(d):
			icon = "⚠️"
		case d.Sub(now) <= 48*time.Hour:
			icon = "⏳"
		}
	}

	title := html.EscapeString(strings.TrimSpace(task.Title))
	sb.WriteString(fmt.Sprintf("%s %s", icon, title))

	if name, ok := groupNames[task.GroupID]; ok {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(trimmed)))
		}
	}

	if task.DueAt != nil {
		d := task.DueAt.In(now.Location())
		if now.After(d) {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s — <b>overdue</b>", d.Format("2006-01-02")))
		} else {
			daysLeft := int(d.Sub(now).Hours()/24) + 1
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · ≈%d days left", d.Format("2006-01-02"), daysLeft))
		}
	}

	if task.Notes != nil && strings.TrimSpace(*task.Notes) != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(strings.TrimSpace(*task.Notes))))
	}

	sb.WriteByte('\n')
	return sb.String()
}
