package services

import (
	"context"
	"time"

	"github.com/hieuit01/BTL-CCNLTHD/models"

	"gorm.io/gorm"
)

type ReminderInput struct {
	ReminderType string    `json:"reminder_type" binding:"required,oneof=water workout rest meal"`
	Message      string    `json:"message" binding:"required,max=255"`
	SendAt       time.Time `json:"send_at" binding:"required"`
}

type ReminderPatch struct {
	ReminderType *string    `json:"reminder_type" binding:"omitempty,oneof=water workout rest meal"`
	Message      *string    `json:"message" binding:"omitempty,max=255"`
	SendAt       *time.Time `json:"send_at"`
}

// ReminderService is owner-only: experts never see a client's reminders.
type ReminderService struct {
	db *gorm.DB
}

func NewReminderService(db *gorm.DB) *ReminderService {
	return &ReminderService{db: db}
}

func (s *ReminderService) List(ctx context.Context, caller Caller, pendingOnly bool) ([]models.Reminder, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", caller.ID)
	if pendingOnly {
		q = q.Where("delivered_at IS NULL")
	}
	var rows []models.Reminder
	err := q.Order("send_at ASC, id ASC").Find(&rows).Error
	return rows, err
}

func (s *ReminderService) Create(ctx context.Context, caller Caller, in ReminderInput) (*models.Reminder, error) {
	if err := requireRegular(caller); err != nil {
		return nil, err
	}
	r := models.Reminder{
		UserID:       caller.ID,
		ReminderType: in.ReminderType,
		Message:      in.Message,
		SendAt:       in.SendAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *ReminderService) load(ctx context.Context, caller Caller, id uint) (*models.Reminder, error) {
	var r models.Reminder
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, notFound(err)
	}
	if r.UserID != caller.ID {
		return nil, ErrForbidden
	}
	return &r, nil
}

func (s *ReminderService) Get(ctx context.Context, caller Caller, id uint) (*models.Reminder, error) {
	return s.load(ctx, caller, id)
}

// Update rearms a delivered reminder when send_at moves.
func (s *ReminderService) Update(ctx context.Context, caller Caller, id uint, in ReminderPatch) (*models.Reminder, error) {
	r, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if in.ReminderType != nil {
		r.ReminderType = *in.ReminderType
	}
	if in.Message != nil {
		r.Message = *in.Message
	}
	if in.SendAt != nil {
		r.SendAt = in.SendAt.UTC()
		r.DeliveredAt = nil
	}
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReminderService) Delete(ctx context.Context, caller Caller, id uint) error {
	r, err := s.load(ctx, caller, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(r).Error
}
