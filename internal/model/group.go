package model

import "time"

// Group is a named, coloured list of tasks (e.g. "My Day").
type Group struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Name      string `gorm:"not null"`
	Color     string `gorm:"size:7"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Group) TableName() string {
	return "task_groups"
}
