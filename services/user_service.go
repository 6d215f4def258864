package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hieuit01/BTL-CCNLTHD/models"
	"github.com/hieuit01/BTL-CCNLTHD/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OptionalID distinguishes an absent JSON field from an explicit null.
type OptionalID struct {
	Set   bool
	Value *uint
}

func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v uint
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type RegisterInput struct {
	Username        string `json:"username" form:"username" binding:"required,min=3,max=150"`
	Email           string `json:"email" form:"email" binding:"required,email"`
	Password        string `json:"password" form:"password" binding:"required,min=6"`
	FirstName       string `json:"first_name" form:"first_name" binding:"max=150"`
	LastName        string `json:"last_name" form:"last_name" binding:"max=150"`
	Phone           string `json:"phone" form:"phone" binding:"max=20"`
	Gender          string `json:"gender" form:"gender" binding:"omitempty,oneof=male female other"`
	Role            string `json:"role" form:"role" binding:"omitempty,oneof=user trainer nutritionist"`
	Specialization  string `json:"specialization" form:"specialization" binding:"max=255"`
	ExperienceYears int    `json:"experience_years" form:"experience_years" binding:"gte=0"`
	Bio             string `json:"bio" form:"bio"`
}

type UpdateUserInput struct {
	Username              *string    `json:"username" binding:"omitempty,min=3,max=150"`
	Email                 *string    `json:"email" binding:"omitempty,email"`
	Password              *string    `json:"password" binding:"omitempty,min=6"`
	FirstName             *string    `json:"first_name" binding:"omitempty,max=150"`
	LastName              *string    `json:"last_name" binding:"omitempty,max=150"`
	Phone                 *string    `json:"phone" binding:"omitempty,max=20"`
	Gender                *string    `json:"gender" binding:"omitempty,oneof=male female other"`
	TrackingMode          *string    `json:"tracking_mode" binding:"omitempty,oneof=personal connected"`
	ConnectedTrainer      OptionalID `json:"connected_trainer"`
	ConnectedNutritionist OptionalID `json:"connected_nutritionist"`
}

// UserProfile is a user flattened together with its role extension.
type UserProfile struct {
	models.User
	TrackingMode          string `json:"tracking_mode,omitempty"`
	ConnectedTrainer      *uint  `json:"connected_trainer,omitempty"`
	ConnectedNutritionist *uint  `json:"connected_nutritionist,omitempty"`
	ExpertType            string `json:"expert_type,omitempty"`
	Specialization        string `json:"specialization,omitempty"`
	ExperienceYears       int    `json:"experience_years,omitempty"`
	Bio                   string `json:"bio,omitempty"`
}

type UserService struct {
	db     *gorm.DB
	images ImageStore
	mailer Mailer
	events EventPublisher
	log    logrus.FieldLogger
}

func NewUserService(db *gorm.DB, images ImageStore, mailer Mailer, events EventPublisher, log logrus.FieldLogger) *UserService {
	return &UserService{db: db, images: images, mailer: mailer, events: events, log: log}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput, avatar *Upload) (*UserProfile, error) {
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && strings.TrimSpace(in.Specialization) == "" {
		return nil, Invalid("specialization", "Chuyên gia cần khai báo chuyên môn.")
	}
	if err := s.checkUnique(ctx, 0, in.Username, in.Email); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	url, err := uploadImage(ctx, s.images, "avatars", avatar)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	user := models.User{
		Username:  strings.TrimSpace(in.Username),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Gender:    in.Gender,
		Role:      role,
		Avatar:    url,
		IsActive:  true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if role == models.RoleUser {
			ru := models.RegularUser{UserID: user.ID, TrackingMode: models.TrackingPersonal}
			return tx.Omit(clause.Associations).Create(&ru).Error
		}
		ex := models.Expert{
			UserID:          user.ID,
			ExpertType:      role,
			Specialization:  in.Specialization,
			ExperienceYears: in.ExperienceYears,
			Bio:             in.Bio,
		}
		return tx.Omit(clause.Associations).Create(&ex).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Invalid("username", "Tên đăng nhập hoặc email đã tồn tại.")
		}
		return nil, err
	}
	return s.Profile(ctx, user.ID)
}

func (s *UserService) checkUnique(ctx context.Context, selfID uint, username, email string) error {
	db := s.db.WithContext(ctx).Model(&models.User{})
	if username != "" {
		var n int64
		if err := db.Where("username = ? AND id <> ?", strings.TrimSpace(username), selfID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return Invalid("username", "Tên đăng nhập đã tồn tại.")
		}
	}
	if email != "" {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("email = ? AND id <> ?", strings.ToLower(strings.TrimSpace(email)), selfID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return Invalid("email", "Email đã được sử dụng.")
		}
	}
	return nil
}

// Authenticate accepts a username or an email as login.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	var user models.User
	login = strings.TrimSpace(login)
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, strings.ToLower(login)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive || !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// Active loads a user and reports ErrNotFound for missing or deactivated accounts.
func (s *UserService) Active(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *UserService) Profile(ctx context.Context, id uint) (*UserProfile, error) {
	var user models.User
	db := s.db.WithContext(ctx)
	if err := db.First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	p := &UserProfile{User: user}
	switch {
	case user.Role == models.RoleUser:
		var ru models.RegularUser
		if err := db.First(&ru, "user_id = ?", id).Error; err != nil {
			return nil, notFound(err)
		}
		p.TrackingMode = ru.TrackingMode
		p.ConnectedTrainer = ru.ConnectedTrainerID
		p.ConnectedNutritionist = ru.ConnectedNutritionistID
	case user.IsExpert():
		var ex models.Expert
		if err := db.First(&ex, "user_id = ?", id).Error; err != nil {
			return nil, notFound(err)
		}
		p.ExpertType = ex.ExpertType
		p.Specialization = ex.Specialization
		p.ExperienceYears = ex.ExperienceYears
		p.Bio = ex.Bio
	}
	return p, nil
}

// UpdateCurrent applies a partial update to the caller's account. For regular
// users it also keeps tracking_mode consistent with the connected experts.
func (s *UserService) UpdateCurrent(ctx context.Context, caller Caller, in UpdateUserInput, avatar *Upload) (*UserProfile, error) {
	if err := s.checkUnique(ctx, caller.ID, deref(in.Username), deref(in.Email)); err != nil {
		return nil, err
	}
	url, err := uploadImage(ctx, s.images, "avatars", avatar)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	var newlyConnected []models.Expert
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, caller.ID).Error; err != nil {
			return notFound(err)
		}
		if in.Username != nil {
			user.Username = strings.TrimSpace(*in.Username)
		}
		if in.Email != nil {
			user.Email = strings.ToLower(strings.TrimSpace(*in.Email))
		}
		if in.FirstName != nil {
			user.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			user.LastName = *in.LastName
		}
		if in.Phone != nil {
			user.Phone = *in.Phone
		}
		if in.Gender != nil {
			user.Gender = *in.Gender
		}
		if in.Password != nil {
			hash, err := utils.HashPassword(*in.Password)
			if err != nil {
				return err
			}
			user.Password = hash
		}
		if url != "" {
			user.Avatar = url
		}
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		if user.Role != models.RoleUser {
			if in.TrackingMode != nil || in.ConnectedTrainer.Set || in.ConnectedNutritionist.Set {
				return Invalid("tracking_mode", "Chỉ người dùng thường mới có thể kết nối chuyên gia.")
			}
			return nil
		}
		var err error
		newlyConnected, err = applyTracking(tx, user.ID, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, ex := range newlyConnected {
		s.notifyConnected(ctx, caller.ID, ex)
	}
	return s.Profile(ctx, caller.ID)
}

func applyTracking(tx *gorm.DB, userID uint, in UpdateUserInput) ([]models.Expert, error) {
	var ru models.RegularUser
	if err := tx.First(&ru, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err)
	}
	var connected []models.Expert

	if in.ConnectedTrainer.Set {
		if v := in.ConnectedTrainer.Value; v != nil {
			ex, err := activeExpert(tx, *v, models.RoleTrainer)
			if err != nil {
				return nil, err
			}
			if !ru.ConnectedTo(models.RoleTrainer, *v) {
				connected = append(connected, *ex)
			}
		}
		ru.ConnectedTrainerID = in.ConnectedTrainer.Value
	}
	if in.ConnectedNutritionist.Set {
		if v := in.ConnectedNutritionist.Value; v != nil {
			ex, err := activeExpert(tx, *v, models.RoleNutritionist)
			if err != nil {
				return nil, err
			}
			if !ru.ConnectedTo(models.RoleNutritionist, *v) {
				connected = append(connected, *ex)
			}
		}
		ru.ConnectedNutritionistID = in.ConnectedNutritionist.Value
	}

	switch {
	case in.TrackingMode != nil:
		ru.TrackingMode = *in.TrackingMode
		if ru.TrackingMode == models.TrackingPersonal {
			ru.ConnectedTrainerID = nil
			ru.ConnectedNutritionistID = nil
			connected = nil
		}
	case in.ConnectedTrainer.Set || in.ConnectedNutritionist.Set:
		if ru.ConnectedTrainerID != nil || ru.ConnectedNutritionistID != nil {
			ru.TrackingMode = models.TrackingConnected
		} else {
			ru.TrackingMode = models.TrackingPersonal
		}
	}
	if !ru.ValidTracking() {
		return nil, Invalid("tracking_mode", "Chế độ 'connected' yêu cầu kết nối ít nhất một chuyên gia.")
	}
	if err := tx.Omit(clause.Associations).Save(&ru).Error; err != nil {
		return nil, err
	}
	return connected, nil
}

func activeExpert(tx *gorm.DB, id uint, expertType string) (*models.Expert, error) {
	var ex models.Expert
	err := tx.Preload("User").
		Joins("JOIN users ON users.id = experts.user_id").
		Where("experts.user_id = ? AND experts.expert_type = ? AND users.is_active = ?", id, expertType, true).
		First(&ex).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &ex, nil
}

func (s *UserService) notifyConnected(ctx context.Context, userID uint, ex models.Expert) {
	if s.mailer != nil && ex.User.Email != "" {
		body := fmt.Sprintf("Xin chào %s,\n\nBạn vừa có một người dùng mới (mã %d) kết nối.", ex.User.Username, userID)
		if err := s.mailer.Send(ctx, ex.User.Email, "Bạn có khách hàng mới", body); err != nil {
			s.log.WithError(err).WithField("expert_id", ex.UserID).Warn("connection email failed")
		}
	}
	if s.events != nil {
		if err := s.events.PublishJSON(ctx, EventExpertConnected, map[string]any{
			"user_id": userID, "expert_id": ex.UserID, "expert_type": ex.ExpertType,
		}); err != nil {
			s.log.WithError(err).Warn("publish expert.connected failed")
		}
	}
}

// Deactivate disables login for the caller; data is kept.
func (s *UserService) Deactivate(ctx context.Context, caller Caller) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", caller.ID).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
