package models

import "time"

type HealthJournal struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user"`
	Date      time.Time `gorm:"type:date;index;not null" json:"date"`
	Note      string    `gorm:"type:text" json:"note"`
	Mood      string    `gorm:"size:20;not null" json:"mood"` // happy|normal|tired|stressed
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Reminder struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"index;not null" json:"user"`
	ReminderType string     `gorm:"size:20;not null" json:"reminder_type"` // water|workout|rest|meal
	Message      string     `gorm:"size:255;not null" json:"message"`
	SendAt       time.Time  `gorm:"index;not null" json:"send_at"`
	DeliveredAt  *time.Time `gorm:"index" json:"delivered_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
