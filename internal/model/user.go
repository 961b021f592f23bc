package model

import "time"

// User is a registered account holder. Email is stored normalized (trimmed, lower-case).
type User struct {
	ID             uint   `gorm:"primaryKey"`
	Email          string `gorm:"uniqueIndex;not null"`
	Name           string `gorm:"not null"`
	PasswordHash   string `gorm:"not null"`
	TelegramChatID *int64 `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
