package services

import (
	"context"
	"time"

	"github.com/hieuit01/BTL-CCNLTHD/models"
	"github.com/hieuit01/BTL-CCNLTHD/utils"

	"gorm.io/gorm"
)

type ProfileView struct {
	models.HealthProfile
	BMI         *float64 `json:"bmi"`
	BMICategory string   `json:"bmi_category,omitempty"`
}

func checkMeasures(height, weight float64) error {
	if height < utils.MinHeightCm || height > utils.MaxHeightCm {
		return Invalid("height", "Chiều cao phải từ 50 đến 250 cm.")
	}
	if weight < utils.MinWeightKg || weight > utils.MaxWeightKg {
		return Invalid("weight", "Cân nặng phải từ 10 đến 400 kg.")
	}
	return nil
}

func newProfileView(p models.HealthProfile) ProfileView {
	v := ProfileView{HealthProfile: p}
	if bmi, err := utils.CalculateBMI(p.Height, p.Weight); err == nil {
		v.BMI = &bmi
		v.BMICategory = utils.BMICategory(bmi)
	}
	return v
}

type ProfileInput struct {
	Height float64 `json:"height" binding:"required,gte=50,lte=250"`
	Weight float64 `json:"weight" binding:"required,gte=10,lte=400"`
	Age    int     `json:"age" binding:"required,gt=0,lte=150"`
	Goal   string  `json:"goal" binding:"omitempty,oneof=gain_muscle lose_weight maintain"`
}

type ProfilePatch struct {
	Height *float64 `json:"height" binding:"omitempty,gte=50,lte=250"`
	Weight *float64 `json:"weight" binding:"omitempty,gte=10,lte=400"`
	Age    *int     `json:"age" binding:"omitempty,gt=0,lte=150"`
	Goal   *string  `json:"goal" binding:"omitempty,oneof=gain_muscle lose_weight maintain"`
}

type TrackingInput struct {
	Date        string   `json:"date" binding:"omitempty,datetime=2006-01-02"`
	BMI         *float64 `json:"bmi" binding:"omitempty,gt=0"`
	Steps       int      `json:"steps" binding:"gte=0"`
	HeartRate   *int     `json:"heart_rate" binding:"omitempty,gte=50,lte=250"`
	WaterIntake float64  `json:"water_intake" binding:"gte=0"`
}

type TrackingPatch struct {
	Date        *string  `json:"date" binding:"omitempty,datetime=2006-01-02"`
	BMI         *float64 `json:"bmi" binding:"omitempty,gt=0"`
	Steps       *int     `json:"steps" binding:"omitempty,gte=0"`
	HeartRate   *int     `json:"heart_rate" binding:"omitempty,gte=50,lte=250"`
	WaterIntake *float64 `json:"water_intake" binding:"omitempty,gte=0"`
}

type HealthService struct {
	db     *gorm.DB
	access *Access
	now    func() time.Time
}

func NewHealthService(db *gorm.DB, access *Access) *HealthService {
	return &HealthService{db: db, access: access, now: time.Now}
}

/* -------- Health profiles -------- */

func (s *HealthService) ListProfiles(ctx context.Context, caller Caller, userID uint) ([]ProfileView, error) {
	q, err := s.access.ScopeFor(ctx, s.db.WithContext(ctx), caller, "user_id", userID)
	if err != nil {
		return nil, err
	}
	var rows []models.HealthProfile
	if err := q.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ProfileView, len(rows))
	for i, r := range rows {
		out[i] = newProfileView(r)
	}
	return out, nil
}

func (s *HealthService) CreateProfile(ctx context.Context, caller Caller, in ProfileInput) (*ProfileView, error) {
	if err := requireRegular(caller); err != nil {
		return nil, err
	}
	if err := checkMeasures(in.Height, in.Weight); err != nil {
		return nil, err
	}
	goal := in.Goal
	if goal == "" {
		goal = models.GoalMaintain
	}
	p := models.HealthProfile{UserID: caller.ID, Height: in.Height, Weight: in.Weight, Age: in.Age, Goal: goal}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	v := newProfileView(p)
	return &v, nil
}

func (s *HealthService) profile(ctx context.Context, caller Caller, id uint, write bool) (*models.HealthProfile, error) {
	return loadOwned(ctx, s.db, s.access, caller, id, write, func(p *models.HealthProfile) uint { return p.UserID })
}

func (s *HealthService) GetProfile(ctx context.Context, caller Caller, id uint) (*ProfileView, error) {
	p, err := s.profile(ctx, caller, id, false)
	if err != nil {
		return nil, err
	}
	v := newProfileView(*p)
	return &v, nil
}

func (s *HealthService) UpdateProfile(ctx context.Context, caller Caller, id uint, in ProfilePatch) (*ProfileView, error) {
	p, err := s.profile(ctx, caller, id, true)
	if err != nil {
		return nil, err
	}
	if in.Height != nil {
		p.Height = *in.Height
	}
	if in.Weight != nil {
		p.Weight = *in.Weight
	}
	if in.Age != nil {
		p.Age = *in.Age
	}
	if in.Goal != nil {
		p.Goal = *in.Goal
	}
	if err := checkMeasures(p.Height, p.Weight); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, err
	}
	v := newProfileView(*p)
	return &v, nil
}

func (s *HealthService) DeleteProfile(ctx context.Context, caller Caller, id uint) error {
	p, err := s.profile(ctx, caller, id, true)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(p).Error
}

// CurrentProfile returns the caller's newest profile.
func (s *HealthService) CurrentProfile(ctx context.Context, caller Caller) (*ProfileView, error) {
	if err := requireRegular(caller); err != nil {
		return nil, err
	}
	p, err := latestProfile(s.db.WithContext(ctx), caller.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	v := newProfileView(*p)
	return &v, nil
}

func latestProfile(db *gorm.DB, userID uint) (*models.HealthProfile, error) {
	var p models.HealthProfile
	if err := db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Limit(1).Find(&p).Error; err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

/* -------- Health tracking -------- */

func (s *HealthService) ListTrackings(ctx context.Context, caller Caller, userID uint) ([]models.HealthTracking, error) {
	q, err := s.access.ScopeFor(ctx, s.db.WithContext(ctx), caller, "user_id", userID)
	if err != nil {
		return nil, err
	}
	var rows []models.HealthTracking
	err = q.Order("date DESC, id DESC").Find(&rows).Error
	return rows, err
}

// CreateTracking stores a day of metrics. When bmi is omitted it is derived
// from the caller's newest health profile, if any.
func (s *HealthService) CreateTracking(ctx context.Context, caller Caller, in TrackingInput) (*models.HealthTracking, error) {
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
	db := s.db.WithContext(ctx)
	t := models.HealthTracking{
		UserID:      caller.ID,
		Date:        date,
		BMI:         in.BMI,
		Steps:       in.Steps,
		HeartRate:   in.HeartRate,
		WaterIntake: in.WaterIntake,
	}
	if t.BMI == nil {
		p, err := latestProfile(db, caller.ID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			if bmi, err := utils.CalculateBMI(p.Height, p.Weight); err == nil {
				t.BMI = &bmi
			}
		}
	}
	if err := db.Create(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *HealthService) tracking(ctx context.Context, caller Caller, id uint, write bool) (*models.HealthTracking, error) {
	return loadOwned(ctx, s.db, s.access, caller, id, write, func(t *models.HealthTracking) uint { return t.UserID })
}

func (s *HealthService) GetTracking(ctx context.Context, caller Caller, id uint) (*models.HealthTracking, error) {
	return s.tracking(ctx, caller, id, false)
}

func (s *HealthService) UpdateTracking(ctx context.Context, caller Caller, id uint, in TrackingPatch) (*models.HealthTracking, error) {
	t, err := s.tracking(ctx, caller, id, true)
	if err != nil {
		return nil, err
	}
	if in.Date != nil {
		d, err := utils.ParseDate(*in.Date)
		if err != nil {
			return nil, Invalid("date", "Ngày không hợp lệ, định dạng YYYY-MM-DD.")
		}
		t.Date = d
	}
	if in.BMI != nil {
		t.BMI = in.BMI
	}
	if in.Steps != nil {
		t.Steps = *in.Steps
	}
	if in.HeartRate != nil {
		t.HeartRate = in.HeartRate
	}
	if in.WaterIntake != nil {
		t.WaterIntake = *in.WaterIntake
	}
	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

func (s *HealthService) DeleteTracking(ctx context.Context, caller Caller, id uint) error {
	t, err := s.tracking(ctx, caller, id, true)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(t).Error
}

// CurrentTracking returns the caller's entry for today, if one exists.
func (s *HealthService) CurrentTracking(ctx context.Context, caller Caller) (*models.HealthTracking, error) {
	if err := requireRegular(caller); err != nil {
		return nil, err
	}
	var t models.HealthTracking
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", caller.ID, utils.DateOnly(s.now())).
		Order("id DESC").
		First(&t).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}
