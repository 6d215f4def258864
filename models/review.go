package models

import "time"

// Review is unique per (expert, reviewer); the composite index enforces it.
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ExpertID   uint      `gorm:"not null;uniqueIndex:idx_review_expert_reviewer" json:"expert"`
	ReviewerID uint      `gorm:"not null;uniqueIndex:idx_review_expert_reviewer" json:"reviewer"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
