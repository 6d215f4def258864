package services

import (
	"context"
	"time"

	"github.com/hieuit01/BTL-CCNLTHD/models"
	"github.com/hieuit01/BTL-CCNLTHD/utils"

	"gorm.io/gorm"
)

type JournalInput struct {
	Date string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Note string `json:"note"`
	Mood string `json:"mood" binding:"required,oneof=happy normal tired stressed"`
}

type JournalPatch struct {
	Date *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Note *string `json:"note"`
	Mood *string `json:"mood" binding:"omitempty,oneof=happy normal tired stressed"`
}

type JournalService struct {
	db     *gorm.DB
	access *Access
	now    func() time.Time
}

func NewJournalService(db *gorm.DB, access *Access) *JournalService {
	return &JournalService{db: db, access: access, now: time.Now}
}

func (s *JournalService) List(ctx context.Context, caller Caller, userID uint) ([]models.HealthJournal, error) {
	q, err := s.access.ScopeFor(ctx, s.db.WithContext(ctx), caller, "user_id", userID)
	if err != nil {
		return nil, err
	}
	var rows []models.HealthJournal
	err = q.Order("date DESC, id DESC").Find(&rows).Error
	return rows, err
}

func (s *JournalService) Create(ctx context.Context, caller Caller, in JournalInput) (*models.HealthJournal, error) {
	if err := requireRegular(caller); err != nil {
		return nil, err
	}
	date := utils.DateOnly(s.now())
	if in.Date != "" {
		d, err := utils.ParseDate(in.Date)
		if err != nil {
			return nil, Invalid("date", "Ngày không hợp lệ, định dạng YYYY-MM-DD.")
		}
		date = d
	}
	j := models.HealthJournal{UserID: caller.ID, Date: date, Note: in.Note, Mood: in.Mood}
	if err := s.db.WithContext(ctx).Create(&j).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *JournalService) load(ctx context.Context, caller Caller, id uint, write bool) (*models.HealthJournal, error) {
	return loadOwned(ctx, s.db, s.access, caller, id, write, func(j *models.HealthJournal) uint { return j.UserID })
}

func (s *JournalService) Get(ctx context.Context, caller Caller, id uint) (*models.HealthJournal, error) {
	return s.load(ctx, caller, id, false)
}

func (s *JournalService) Update(ctx context.Context, caller Caller, id uint, in JournalPatch) (*models.HealthJournal, error) {
	j, err := s.load(ctx, caller, id, true)
	if err != nil {
		return nil, err
	}
	if in.Date != nil {
		d, err := utils.ParseDate(*in.Date)
		if err != nil {
			return nil, Invalid("date", "Ngày không hợp lệ, định dạng YYYY-MM-DD.")
		}
		j.Date = d
	}
	if in.Note != nil {
		j.Note = *in.Note
	}
	if in.Mood != nil {
		j.Mood = *in.Mood
	}
	if err := s.db.WithContext(ctx).Save(j).Error; err != nil {
		return nil, err
	}
	return j, nil
}

func (s *JournalService) Delete(ctx context.Context, caller Caller, id uint) error {
	j, err := s.load(ctx, caller, id, true)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(j).Error
}
