package model

import "time"

// Task represents a single item in a group.
type Task struct {
	ID          uint   `gorm:"primaryKey"`
	GroupID     uint   `gorm:"index;not null"`
	Title       string `gorm:"not null"`
	Notes       *string
	DueAt       *time.Time
	RemindAt    *time.Time `gorm:"index"`
	RemindedAt  *time.Time
	IsCompleted bool `gorm:"default:false"`
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Subtask is a checklist entry of a task.
type Subtask struct {
	ID          uint   `gorm:"primaryKey"`
	TaskID      uint   `gorm:"index;not null"`
	Title       string `gorm:"not null"`
	IsCompleted bool   `gorm:"default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
