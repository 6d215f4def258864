package models

import "time"

const (
	GoalGainMuscle = "gain_muscle"
	GoalLoseWeight = "lose_weight"
	GoalMaintain   = "maintain"
)

// HealthProfile is a time-stamped body snapshot. BMI is derived on read.
type HealthProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user"`
	Height    float64   `gorm:"not null" json:"height"` // cm
	Weight    float64   `gorm:"not null" json:"weight"` // kg
	Age       int       `gorm:"not null" json:"age"`
	Goal      string    `gorm:"size:20;not null;default:maintain" json:"goal"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HealthTracking is one day of metrics. BMI is cached at save time.
type HealthTracking struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user"`
	Date        time.Time `gorm:"type:date;index;not null" json:"date"`
	BMI         *float64  `json:"bmi"`
	Steps       int       `gorm:"not null;default:0" json:"steps"`
	HeartRate   *int      `json:"heart_rate"`
	WaterIntake float64   `gorm:"not null;default:0" json:"water_intake"` // litres
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
