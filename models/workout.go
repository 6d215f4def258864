package models

import "time"

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Workout is a catalog entry that plans reference.
type Workout struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Description    string    `gorm:"type:text" json:"description"`
	Image          string    `json:"image"`
	Duration       int       `json:"duration"` // minutes
	CaloriesBurned int       `json:"calories_burned"`
	Goal           string    `gorm:"size:20;index" json:"goal"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	CreatedByID    *uint     `gorm:"index" json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type WorkoutPlan struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"index;not null" json:"user"`
	PlanName  string           `gorm:"size:255" json:"plan_name"`
	StartDate time.Time        `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time        `gorm:"type:date;not null" json:"end_date"`
	Status    string           `gorm:"size:20;not null;default:pending" json:"status"`
	Sessions  []WorkoutSession `gorm:"constraint:OnDelete:CASCADE" json:"sessions"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type WorkoutSession struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	WorkoutPlanID uint      `gorm:"index;not null" json:"workout_plan"`
	WorkoutID     uint      `gorm:"index;not null" json:"workout_id"`
	Workout       Workout   `json:"workout"`
	Date          time.Time `gorm:"type:date;index;not null" json:"date"`
	Status        string    `gorm:"size:20;not null;default:pending" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
