package services

import (
	"context"
	"errors"

	"github.com/hieuit01/BTL-CCNLTHD/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ReviewInput struct {
	ExpertID uint   `json:"expert" binding:"required"`
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Comment  string `json:"comment"`
}

type ReviewPatch struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment"`
}

var errDuplicateReview = Invalid("expert", "Bạn đã đánh giá chuyên gia này rồi.")

type ReviewService struct {
	db     *gorm.DB
	events EventPublisher
	log    logrus.FieldLogger
}

func NewReviewService(db *gorm.DB, events EventPublisher, log logrus.FieldLogger) *ReviewService {
	return &ReviewService{db: db, events: events, log: log}
}

// Create lets a regular user review an expert they are connected to, once.
func (s *ReviewService) Create(ctx context.Context, caller Caller, in ReviewInput) (*models.Review, error) {
	if err := requireRegular(caller); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var ex models.Expert
	if err := db.First(&ex, "user_id = ?", in.ExpertID).Error; err != nil {
		return nil, notFound(err)
	}
	var ru models.RegularUser
	if err := db.First(&ru, "user_id = ?", caller.ID).Error; err != nil {
		return nil, notFound(err)
	}
	if !ru.ConnectedTo(ex.ExpertType, ex.UserID) {
		return nil, ErrForbidden
	}

	var n int64
	if err := db.Model(&models.Review{}).
		Where("expert_id = ? AND reviewer_id = ?", ex.UserID, caller.ID).
		Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, errDuplicateReview
	}

	r := models.Review{ExpertID: ex.UserID, ReviewerID: caller.ID, Rating: in.Rating, Comment: in.Comment}
	if err := db.Create(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errDuplicateReview
		}
		return nil, err
	}
	if s.events != nil {
		if err := s.events.PublishJSON(ctx, EventReviewCreated, r); err != nil {
			s.log.WithError(err).WithField("review_id", r.ID).Warn("publish review.created failed")
		}
	}
	return &r, nil
}

// List returns reviews, newest first, optionally for one expert.
func (s *ReviewService) List(ctx context.Context, expertID uint) ([]models.Review, error) {
	q := s.db.WithContext(ctx)
	if expertID != 0 {
		q = q.Where("expert_id = ?", expertID)
	}
	var rows []models.Review
	err := q.Order("created_at DESC, id DESC").Find(&rows).Error
	return rows, err
}

func (s *ReviewService) Get(ctx context.Context, id uint) (*models.Review, error) {
	var r models.Review
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *ReviewService) MyReview(ctx context.Context, caller Caller, expertID uint) (*models.Review, error) {
	var r models.Review
	if err := s.db.WithContext(ctx).
		Where("expert_id = ? AND reviewer_id = ?", expertID, caller.ID).
		First(&r).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *ReviewService) own(ctx context.Context, caller Caller, id uint) (*models.Review, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.ReviewerID != caller.ID {
		return nil, ErrForbidden
	}
	return r, nil
}

func (s *ReviewService) Update(ctx context.Context, caller Caller, id uint, in ReviewPatch) (*models.Review, error) {
	r, err := s.own(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if in.Rating != nil {
		r.Rating = *in.Rating
	}
	if in.Comment != nil {
		r.Comment = *in.Comment
	}
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReviewService) Delete(ctx context.Context, caller Caller, id uint) error {
	r, err := s.own(ctx, caller, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(r).Error
}
