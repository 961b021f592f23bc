package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/bot"
	"taskboard/internal/config"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	authSvc, err := service.NewAuthService(userRepo, service.DefaultPasswordHasher())
	if err != nil {
		log.Fatalf("auth: %v", err)
	}
	groupSvc := service.NewGroupService(groupRepo)
	taskSvc := service.NewTaskService(taskRepo, subtaskRepo)
	accountSvc := service.NewAccountService(accountRepo)
	viewSvc := service.NewViewService(groupRepo, taskRepo, subtaskRepo, accountRepo)
	reminderSvc := service.NewReminderService(taskRepo, groupRepo)

	server := web.New(web.Options{
		Addr:          cfg.HTTPAddr,
		SessionSecret: cfg.SessionSecret,
		SecureCookies: cfg.SecureCookies,
	}, authSvc, groupSvc, taskSvc, accountSvc, viewSvc)

	if cfg.TelegramEnabled() {
		telegramBot, err := bot.New(cfg.TelegramToken, userRepo, reminderSvc, time.Local)
		if err != nil {
			log.Fatalf("bot: %v", err)
		}

		scheduler := service.NewSchedulerService(time.Local, 30*time.Second)
		if _, err := scheduler.ScheduleInterval("reminders", cfg.ReminderInterval, func(jobCtx context.Context) error {
			return telegramBot.SendDueReminders(jobCtx, time.Now())
		}); err != nil {
			log.Fatalf("schedule reminders: %v", err)
		}
		if cfg.DigestTime != "" {
			if _, err := scheduler.ScheduleDaily("digest", cfg.DigestTime, telegramBot.SendDailyReports); err != nil {
				log.Fatalf("schedule digest: %v", err)
			}
		}
		scheduler.Start()
		defer scheduler.Stop()

		go func() {
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("bot stopped with error: %v", err)
			}
		}()
	} else {
		log.Println("[info] TELEGRAM_TOKEN not set, reminders disabled")
	}

	log.Println("Taskboard started.")
	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("server stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
