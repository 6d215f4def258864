package services

import (
	"context"
	"sort"

	"github.com/hieuit01/BTL-CCNLTHD/models"
	"github.com/hieuit01/BTL-CCNLTHD/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExpertView struct {
	models.Expert
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

type UpdateExpertInput struct {
	Specialization  *string `json:"specialization" binding:"omitempty,max=255"`
	ExperienceYears *int    `json:"experience_years" binding:"omitempty,gte=0"`
	Bio             *string `json:"bio"`
}

// ConnectedUserDetail is what an expert sees about one of their clients.
type ConnectedUserDetail struct {
	models.RegularUser
	LatestProfile  *ProfileView           `json:"latest_profile"`
	LatestTracking *models.HealthTracking `json:"latest_tracking"`
}

type ExpertService struct {
	db     *gorm.DB
	access *Access
}

func NewExpertService(db *gorm.DB, access *Access) *ExpertService {
	return &ExpertService{db: db, access: access}
}

type ratingRow struct {
	ExpertID uint
	Avg      float64
	Cnt      int64
}

func (s *ExpertService) ratings(ctx context.Context, ids []uint) (map[uint]ratingRow, error) {
	out := make(map[uint]ratingRow, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []ratingRow
	if err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("expert_id, AVG(rating) AS avg, COUNT(*) AS cnt").
		Where("expert_id IN ?", ids).
		Group("expert_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ExpertID] = r
	}
	return out, nil
}

// List returns active experts ordered by average rating, then review count.
// An empty expertType lists both trainers and nutritionists.
func (s *ExpertService) List(ctx context.Context, expertType string) ([]ExpertView, error) {
	q := s.db.WithContext(ctx).Preload("User").
		Joins("JOIN users ON users.id = experts.user_id").
		Where("users.is_active = ?", true)
	if expertType != "" {
		q = q.Where("experts.expert_type = ?", expertType)
	}
	var experts []models.Expert
	if err := q.Find(&experts).Error; err != nil {
		return nil, err
	}
	views, err := s.withRatings(ctx, experts)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if a.AverageRating != b.AverageRating {
			return a.AverageRating > b.AverageRating
		}
		if a.ReviewCount != b.ReviewCount {
			return a.ReviewCount > b.ReviewCount
		}
		return a.UserID < b.UserID
	})
	return views, nil
}

func (s *ExpertService) withRatings(ctx context.Context, experts []models.Expert) ([]ExpertView, error) {
	ids := make([]uint, len(experts))
	for i, e := range experts {
		ids[i] = e.UserID
	}
	agg, err := s.ratings(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]ExpertView, len(experts))
	for i, e := range experts {
		r := agg[e.UserID]
		views[i] = ExpertView{Expert: e, AverageRating: utils.Round2(r.Avg), ReviewCount: r.Cnt}
	}
	return views, nil
}

func (s *ExpertService) Get(ctx context.Context, id uint) (*ExpertView, error) {
	var ex models.Expert
	if err := s.db.WithContext(ctx).Preload("User").
		Joins("JOIN users ON users.id = experts.user_id").
		Where("experts.user_id = ? AND users.is_active = ?", id, true).
		First(&ex).Error; err != nil {
		return nil, notFound(err)
	}
	views, err := s.withRatings(ctx, []models.Expert{ex})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *ExpertService) Current(ctx context.Context, caller Caller) (*ExpertView, error) {
	if !caller.IsExpert() {
		return nil, ErrForbidden
	}
	return s.Get(ctx, caller.ID)
}

func (s *ExpertService) UpdateCurrent(ctx context.Context, caller Caller, in UpdateExpertInput) (*ExpertView, error) {
	if !caller.IsExpert() {
		return nil, ErrForbidden
	}
	var ex models.Expert
	db := s.db.WithContext(ctx)
	if err := db.First(&ex, "user_id = ?", caller.ID).Error; err != nil {
		return nil, notFound(err)
	}
	if in.Specialization != nil {
		ex.Specialization = *in.Specialization
	}
	if in.ExperienceYears != nil {
		ex.ExperienceYears = *in.ExperienceYears
	}
	if in.Bio != nil {
		ex.Bio = *in.Bio
	}
	if err := db.Omit(clause.Associations).Save(&ex).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, caller.ID)
}

func connectionColumn(role string) string {
	if role == models.RoleTrainer {
		return "connected_trainer_id"
	}
	return "connected_nutritionist_id"
}

func (s *ExpertService) ConnectedUsers(ctx context.Context, caller Caller) ([]models.RegularUser, error) {
	if !caller.IsExpert() {
		return nil, ErrForbidden
	}
	var users []models.RegularUser
	err := s.db.WithContext(ctx).Preload("User").
		Where(connectionColumn(caller.Role)+" = ?", caller.ID).
		Order("user_id").
		Find(&users).Error
	return users, err
}

func (s *ExpertService) ConnectedUserCount(ctx context.Context, caller Caller) (int64, error) {
	if !caller.IsExpert() {
		return 0, ErrForbidden
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&models.RegularUser{}).
		Where(connectionColumn(caller.Role)+" = ?", caller.ID).
		Count(&n).Error
	return n, err
}

func (s *ExpertService) ConnectedUserDetail(ctx context.Context, caller Caller, userID uint) (*ConnectedUserDetail, error) {
	if !caller.IsExpert() {
		return nil, ErrForbidden
	}
	if err := s.access.Authorize(ctx, caller, userID, false); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	var ru models.RegularUser
	if err := db.Preload("User").First(&ru, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err)
	}
	out := &ConnectedUserDetail{RegularUser: ru}

	hp, err := latestProfile(db, userID)
	if err != nil {
		return nil, err
	}
	if hp != nil {
		v := newProfileView(*hp)
		out.LatestProfile = &v
	}
	var ht models.HealthTracking
	if err := db.Where("user_id = ?", userID).Order("date DESC, id DESC").Limit(1).Find(&ht).Error; err != nil {
		return nil, err
	}
	if ht.ID != 0 {
		out.LatestTracking = &ht
	}
	return out, nil
}
