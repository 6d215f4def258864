package models

import "time"

const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// Meal is a catalog dish with its macro snapshot.
type Meal struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `json:"image"`
	Calories    float64   `json:"calories"` // kcal
	Protein     float64   `json:"protein"`  // g
	Carbs       float64   `json:"carbs"`    // g
	Fat         float64   `json:"fat"`      // g
	Goal        string    `gorm:"size:20;index" json:"goal"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedByID *uint     `gorm:"index" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type MealPlan struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index;not null" json:"user"`
	PlanName    string         `gorm:"size:255;not null" json:"plan_name"`
	Description string         `gorm:"type:text" json:"description"`
	StartDate   time.Time      `gorm:"type:date;not null" json:"start_date"`
	EndDate     time.Time      `gorm:"type:date;not null" json:"end_date"`
	Goal        string         `gorm:"size:20" json:"goal"`
	Meals       []MealPlanMeal `gorm:"constraint:OnDelete:CASCADE" json:"meals"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type MealPlanMeal struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MealPlanID uint      `gorm:"index;not null" json:"meal_plan"`
	MealID     uint      `gorm:"index;not null" json:"meal_id"`
	Meal       Meal      `json:"meal"`
	Date       time.Time `gorm:"type:date;index;not null" json:"date"`
	MealTime   string    `gorm:"size:20;not null" json:"meal_time"`
	CreatedAt  time.Time `json:"created_at"`
}
