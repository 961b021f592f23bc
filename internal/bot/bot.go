package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskboard/internal/repository"
	"taskboard/internal/service"
)

// sender is the part of the Telegram API the bot needs to deliver messages.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot delivers task reminders and daily digests over Telegram.
type Bot struct {
	api         *tgbotapi.BotAPI
	sender      sender
	userRepo    *repository.UserRepository
	reminderSvc *service.ReminderService
	loc         *time.Location
}

func New(token string, userRepo *repository.UserRepository, reminderSvc *service.ReminderService, loc *time.Location) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	b := newBot(api, userRepo, reminderSvc, loc)
	b.api = api
	return b, nil
}

func newBot(s sender, userRepo *repository.UserRepository, reminderSvc *service.ReminderService, loc *time.Location) *Bot {
	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		sender:      s,
		userRepo:    userRepo,
		reminderSvc: reminderSvc,
		loc:         loc,
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		msg := update.Message
		if msg == nil || msg.Chat == nil || !msg.Chat.IsPrivate() {
			continue
		}
		if err := b.handleMessage(ctx, msg); err != nil {
			log.Printf("handle message: %v", err)
		}
	}

	return ctx.Err()
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "I only understand commands. Try /help.")
	}
	log.Printf("[info] command from chat %d: /%s", msg.Chat.ID, msg.Command())

	switch msg.Command() {
	case "start":
		return b.handleStart(msg.Chat.ID)
	case "help":
		return b.handleHelp(msg.Chat.ID)
	case "report":
		return b.handleReport(ctx, msg.Chat.ID)
	case "unlink":
		return b.handleUnlink(ctx, msg.Chat.ID)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(chatID int64) error {
	text := fmt.Sprintf(
		"👋 Hi! I deliver your task reminders.\n\n"+
			"Your chat id is <code>%d</code>. Paste it into the Telegram setting of the web app to link this chat.",
		chatID,
	)
	return b.sendText(chatID, text)
}

func (b *Bot) handleHelp(chatID int64) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"• /start — show the chat id to link\n" +
		"• /report — send the daily digest now\n" +
		"• /unlink — stop receiving reminders here"
	return b.sendText(chatID, text)
}

func (b *Bot) handleReport(ctx context.Context, chatID int64) error {
	user, err := b.userRepo.FindByTelegramChat(ctx, chatID)
	if errors.Is(err, repository.ErrNotFound) {
		return b.sendText(chatID, "This chat is not linked yet. Send /start to get its id.")
	}
	if err != nil {
		return err
	}
	text, err := b.reminderSvc.DailySummary(ctx, *user, time.Now().In(b.loc))
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not build the digest: %s", escape(err.Error())))
	}
	return b.sendText(chatID, text)
}

func (b *Bot) handleUnlink(ctx context.Context, chatID int64) error {
	user, err := b.userRepo.FindByTelegramChat(ctx, chatID)
	if errors.Is(err, repository.ErrNotFound) {
		return b.sendText(chatID, "This chat is not linked.")
	}
	if err != nil {
		return err
	}
	if err := b.userRepo.SetTelegramChat(ctx, user.ID, nil); err != nil {
		return err
	}
	return b.sendText(chatID, "Unlinked. You will not get reminders here anymore.")
}

// SendDueReminders delivers every reminder that came due and marks it sent.
// A reminder that fails to send is retried on the next sweep.
func (b *Bot) SendDueReminders(ctx context.Context, now time.Time) error {
	due, err := b.reminderSvc.DueReminders(ctx, now)
	if err != nil {
		return err
	}
	for _, reminder := range due {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := b.sendText(reminder.ChatID, service.FormatReminder(reminder.Task, b.loc)); err != nil {
			log.Printf("send reminder for task %d to %d: %v", reminder.ID, reminder.ChatID, err)
			continue
		}
		if err := b.reminderSvc.MarkReminded(ctx, reminder.ID, now); err != nil {
			return err
		}
	}
	return nil
}

// SendDailyReports sends the digest to every linked user.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	users, err := b.userRepo.ListWithTelegram(ctx)
	if err != nil {
		return err
	}
	now := time.Now().In(b.loc)
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if user.TelegramChatID == nil {
			continue
		}
		text, err := b.reminderSvc.DailySummary(ctx, user, now)
		if err != nil {
			log.Printf("build summary for user %d: %v", user.ID, err)
			continue
		}
		if err := b.sendText(*user.TelegramChatID, text); err != nil {
			log.Printf("send summary to %d: %v", *user.TelegramChatID, err)
		}
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.sender.Send(msg)
	return err
}

func escape(s string) string {
	return html.EscapeString(s)
}
