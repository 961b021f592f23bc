package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"taskboard/internal/service"
)

const minSessionSecretLen = 32

// Config keeps runtime settings for the web app and the reminder bot.
type Config struct {
	HTTPAddr         string        `env:"TASKBOARD_HTTP_ADDR" envDefault:":8080"`
	DatabaseURL      string        `env:"DATABASE_URL"        envDefault:"taskboard.db"`
	SessionSecret    string        `env:"SESSION_SECRET"`
	SecureCookies    bool          `env:"SECURE_COOKIES"      envDefault:"false"`
	TelegramToken    string        `env:"TELEGRAM_TOKEN"`
	ReminderInterval time.Duration `env:"REMINDER_INTERVAL"   envDefault:"1m"`
	DigestTime       string        `env:"DIGEST_TIME"`
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	cfg.SessionSecret = strings.TrimSpace(cfg.SessionSecret)
	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	cfg.DigestTime = strings.TrimSpace(cfg.DigestTime)

	if len(cfg.SessionSecret) < minSessionSecretLen {
		return cfg, fmt.Errorf("SESSION_SECRET is required and must be at least %d bytes", minSessionSecretLen)
	}
	if cfg.ReminderInterval <= 0 {
		return cfg, fmt.Errorf("REMINDER_INTERVAL must be positive")
	}
	if cfg.DigestTime != "" {
		if err := service.ValidateDailyTime(cfg.DigestTime); err != nil {
			return cfg, fmt.Errorf("DIGEST_TIME: %w", err)
		}
	}

	return cfg, nil
}

// TelegramEnabled reports whether reminders should be delivered over Telegram.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}
