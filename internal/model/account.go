package model

import "time"

// Account is a label-like container; exactly one per user is the default.
type Account struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Name      string `gorm:"not null"`
	IsDefault bool   `gorm:"default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
