package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser         = "user"
	RoleTrainer      = "trainer"
	RoleNutritionist = "nutritionist"
	RoleAdmin        = "admin"
)

const (
	TrackingPersonal  = "personal"
	TrackingConnected = "connected"
)

// ErrTrackingMode is returned by RegularUser hooks when the tracking mode and
// the connected experts disagree.
var ErrTrackingMode = errors.New("tracking mode does not match connected experts")

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	FirstName string    `gorm:"size:150" json:"first_name"`
	LastName  string    `gorm:"size:150" json:"last_name"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Gender    string    `gorm:"size:10" json:"gender"`
	Role      string    `gorm:"size:20;index;not null;default:user" json:"role"`
	Avatar    string    `json:"avatar"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsExpert() bool {
	return u.Role == RoleTrainer || u.Role == RoleNutritionist
}

// RegularUser extends User one-to-one; the primary key is the user id.
type RegularUser struct {
	UserID                  uint    `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User                    User    `gorm:"foreignKey:UserID" json:"user"`
	TrackingMode            string  `gorm:"size:20;not null;default:personal" json:"tracking_mode"`
	ConnectedTrainerID      *uint   `gorm:"index" json:"connected_trainer"`
	ConnectedTrainer        *Expert `gorm:"foreignKey:ConnectedTrainerID;references:UserID" json:"-"`
	ConnectedNutritionistID *uint   `gorm:"index" json:"connected_nutritionist"`
	ConnectedNutritionist   *Expert `gorm:"foreignKey:ConnectedNutritionistID;references:UserID" json:"-"`
}

// ValidTracking reports whether the tracking mode agrees with the connections:
// personal has no experts, connected has at least one.
func (r *RegularUser) ValidTracking() bool {
	switch r.TrackingMode {
	case TrackingPersonal:
		return r.ConnectedTrainerID == nil && r.ConnectedNutritionistID == nil
	case TrackingConnected:
		return r.ConnectedTrainerID != nil || r.ConnectedNutritionistID != nil
	}
	return false
}

func (r *RegularUser) BeforeSave(tx *gorm.DB) error {
	if !r.ValidTracking() {
		return ErrTrackingMode
	}
	return nil
}

// ConnectedTo reports whether expertID is one of the user's connected experts
// for the given expert type.
func (r *RegularUser) ConnectedTo(expertType string, expertID uint) bool {
	switch expertType {
	case RoleTrainer:
		return r.ConnectedTrainerID != nil && *r.ConnectedTrainerID == expertID
	case RoleNutritionist:
		return r.ConnectedNutritionistID != nil && *r.ConnectedNutritionistID == expertID
	}
	return false
}

// Expert extends User one-to-one; ExpertType always mirrors User.Role.
type Expert struct {
	UserID          uint   `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User            User   `gorm:"foreignKey:UserID" json:"user"`
	ExpertType      string `gorm:"size:20;index;not null" json:"expert_type"`
	Specialization  string `gorm:"size:255" json:"specialization"`
	ExperienceYears int    `json:"experience_years"`
	Bio             string `gorm:"type:text" json:"bio"`
}
