package services

import (
	"context"
	"time"

	"github.com/hieuit01/BTL-CCNLTHD/models"
	"github.com/hieuit01/BTL-CCNLTHD/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WorkoutInput struct {
	Name           string `json:"name" form:"name" binding:"required,max=255"`
	Description    string `json:"description" form:"description"`
	Duration       int    `json:"duration" form:"duration" binding:"gte=0"`
	CaloriesBurned int    `json:"calories_burned" form:"calories_burned" binding:"gte=0"`
	Goal           string `json:"goal" form:"goal" binding:"omitempty,oneof=gain_muscle lose_weight maintain"`
}

type WorkoutPatch struct {
	Name           *string `json:"name" form:"name" binding:"omitempty,max=255"`
	Description    *string `json:"description" form:"description"`
	Duration       *int    `json:"duration" form:"duration" binding:"omitempty,gte=0"`
	CaloriesBurned *int    `json:"calories_burned" form:"calories_burned" binding:"omitempty,gte=0"`
	Goal           *string `json:"goal" form:"goal" binding:"omitempty,oneof=gain_muscle lose_weight maintain"`
	Active         *bool   `json:"active" form:"active"`
}

type SessionInput struct {
	WorkoutID uint   `json:"workout_id" binding:"required"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	Status    string `json:"status" binding:"omitempty,oneof=pending completed"`
}

type SessionPatch struct {
	Date   *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Status *string `json:"status" binding:"omitempty,oneof=pending completed"`
}

type WorkoutPlanInput struct {
	PlanName  string         `json:"plan_name" binding:"max=255"`
	StartDate string         `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string         `json:"end_date" binding:"required,datetime=2006-01-02"`
	Sessions  []SessionInput `json:"sessions" binding:"dive"`
}

type WorkoutPlanPatch struct {
	PlanName  *string         `json:"plan_name" binding:"omitempty,max=255"`
	StartDate *string         `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   *string         `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Sessions  *[]SessionInput `json:"sessions" binding:"omitempty,dive"`
}

type PlanFilter struct {
	UserID uint
	Today  bool
}

type WorkoutService struct {
	db     *gorm.DB
	access *Access
	images ImageStore
	events EventPublisher
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewWorkoutService(db *gorm.DB, access *Access, images ImageStore, events EventPublisher, log logrus.FieldLogger) *WorkoutService {
	return &WorkoutService{db: db, access: access, images: images, events: events, log: log, now: time.Now}
}

/* -------- Catalog -------- */

func (s *WorkoutService) ListWorkouts(ctx context.Context, caller Caller, f CatalogFilter) ([]models.Workout, error) {
	q, err := applyCatalogFilter(ctx, s.db, s.db.WithContext(ctx).Model(&models.Workout{}), caller, f)
	if err != nil {
		return nil, err
	}
	var rows []models.Workout
	err = q.Order("id DESC").Find(&rows).Error
	return rows, err
}

func (s *WorkoutService) CreateWorkout(ctx context.Context, caller Caller, in WorkoutInput, image *Upload) (*models.Workout, error) {
	if !canCurate(caller, models.RoleTrainer) {
		return nil, ErrForbidden
	}
	url, err := uploadImage(ctx, s.images, "workouts", image)
	if err != nil {
		return nil, err
	}
	creator := caller.ID
	w := models.Workout{
		Name:           in.Name,
		Description:    in.Description,
		Image:          url,
		Duration:       in.Duration,
		CaloriesBurned: in.CaloriesBurned,
		Goal:           in.Goal,
		Active:         true,
		CreatedByID:    &creator,
	}
	if err := s.db.WithContext(ctx).Create(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// GetWorkout hides soft-deleted entries from everyone but their creator and admins.
func (s *WorkoutService) GetWorkout(ctx context.Context, caller Caller, id uint) (*models.Workout, error) {
	w, err := s.workout(ctx, id)
	if err != nil {
		return nil, err
	}
	if !w.Active && !canModifyCatalog(caller, w.CreatedByID) {
		return nil, ErrNotFound
	}
	return w, nil
}

func (s *WorkoutService) workout(ctx context.Context, id uint) (*models.Workout, error) {
	var w models.Workout
	if err := s.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

func (s *WorkoutService) UpdateWorkout(ctx context.Context, caller Caller, id uint, in WorkoutPatch, image *Upload) (*models.Workout, error) {
	w, err := s.workout(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModifyCatalog(caller, w.CreatedByID) {
		return nil, ErrForbidden
	}
	if in.Name != nil {
		w.Name = *in.Name
	}
	if in.Description != nil {
		w.Description = *in.Description
	}
	if in.Duration != nil {
		w.Duration = *in.Duration
	}
	if in.CaloriesBurned != nil {
		w.CaloriesBurned = *in.CaloriesBurned
	}
	if in.Goal != nil {
		w.Goal = *in.Goal
	}
	if in.Active != nil {
		w.Active = *in.Active
	}
	url, err := uploadImage(ctx, s.images, "workouts", image)
	if err != nil {
		return nil, err
	}
	if url != "" {
		w.Image = url
	}
	if err := s.db.WithContext(ctx).Save(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

// DeleteWorkout hides a catalog entry; existing sessions keep referencing it.
func (s *WorkoutService) DeleteWorkout(ctx context.Context, caller Caller, id uint) error {
	w, err := s.workout(ctx, id)
	if err != nil {
		return err
	}
	if !canModifyCatalog(caller, w.CreatedByID) {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Model(w).Update("active", false).Error
}

/* -------- Plans -------- */

func (s *WorkoutService) ListPlans(ctx context.Context, caller Caller, f PlanFilter) ([]models.WorkoutPlan, error) {
	q, err := s.access.ScopeFor(ctx, s.db.WithContext(ctx), caller, "user_id", f.UserID)
	if err != nil {
		return nil, err
	}
	if f.Today {
		today := utils.DateOnly(s.now())
		q = q.Where("start_date <= ? AND end_date >= ?", today, today)
	}
	var plans []models.WorkoutPlan
	err = q.Preload("Sessions", orderSessions).Preload("Sessions.Workout").
		Order("start_date DESC, id DESC").
		Find(&plans).Error
	return plans, err
}

func orderSessions(db *gorm.DB) *gorm.DB { return db.Order("date ASC, id ASC") }

func (s *WorkoutService) CreatePlan(ctx context.Context, caller Caller, in WorkoutPlanInput) (*models.WorkoutPlan, error) {
	if err := requireRegular(caller); err != nil {
		return nil, err
	}
	from, to, err := parseRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	plan := models.WorkoutPlan{UserID: caller.ID, PlanName: in.PlanName, StartDate: from, EndDate: to, Status: models.StatusPending}
	var status string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sessions, err := buildSessions(tx, in.Sessions, from, to)
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&plan).Error; err != nil {
			return err
		}
		if err := insertSessions(tx, plan.ID, sessions); err != nil {
			return err
		}
		status, _, err = recomputePlanStatus(tx, plan.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if status == models.StatusCompleted {
		s.publishStatus(ctx, plan.ID, caller.ID, status)
	}
	return s.reload(ctx, plan.ID)
}

func buildSessions(tx *gorm.DB, in []SessionInput, from, to time.Time) ([]models.WorkoutSession, error) {
	if len(in) == 0 {
		return nil, nil
	}
	ids := make([]uint, 0, len(in))
	for _, si := range in {
		ids = append(ids, si.WorkoutID)
	}
	var found []uint
	if err := tx.Model(&models.Workout{}).Where("id IN ? AND active = ?", ids, true).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	known := make(map[uint]bool, len(found))
	for _, id := range found {
		known[id] = true
	}

	out := make([]models.WorkoutSession, 0, len(in))
	for _, si := range in {
		if !known[si.WorkoutID] {
			return nil, Invalid("workout_id", "Bài tập không tồn tại.")
		}
		d, err := dateInPlan("date", si.Date, from, to)
		if err != nil {
			return nil, err
		}
		status := si.Status
		if status == "" {
			status = models.StatusPending
		}
		out = append(out, models.WorkoutSession{WorkoutID: si.WorkoutID, Date: d, Status: status})
	}
	return out, nil
}

func insertSessions(tx *gorm.DB, planID uint, sessions []models.WorkoutSession) error {
	if len(sessions) == 0 {
		return nil
	}
	for i := range sessions {
		sessions[i].WorkoutPlanID = planID
	}
	return tx.Omit(clause.Associations).Create(&sessions).Error
}

// recomputePlanStatus derives the plan status from its sessions: completed
// when every session is completed, pending otherwise (including no sessions).
func recomputePlanStatus(tx *gorm.DB, planID uint) (status string, changed bool, err error) {
	var total, completed int64
	if err = tx.Model(&models.WorkoutSession{}).Where("workout_plan_id = ?", planID).Count(&total).Error; err != nil {
		return "", false, err
	}
	if err = tx.Model(&models.WorkoutSession{}).
		Where("workout_plan_id = ? AND status = ?", planID, models.StatusCompleted).
		Count(&completed).Error; err != nil {
		return "", false, err
	}
	status = models.StatusPending
	if total > 0 && completed == total {
		status = models.StatusCompleted
	}
	res := tx.Model(&models.WorkoutPlan{}).
		Where("id = ? AND status <> ?", planID, status).
		Update("status", status)
	if res.Error != nil {
		return "", false, res.Error
	}
	return status, res.RowsAffected > 0, nil
}

func (s *WorkoutService) plan(ctx context.Context, caller Caller, id uint, write bool) (*models.WorkoutPlan, error) {
	return loadOwned(ctx, s.db, s.access, caller, id, write, func(p *models.WorkoutPlan) uint { return p.UserID })
}

func (s *WorkoutService) reload(ctx context.Context, id uint) (*models.WorkoutPlan, error) {
	var p models.WorkoutPlan
	if err := s.db.WithContext(ctx).Preload("Sessions", orderSessions).Preload("Sessions.Workout").First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *WorkoutService) GetPlan(ctx context.Context, caller Caller, id uint) (*models.WorkoutPlan, error) {
	if _, err := s.plan(ctx, caller, id, false); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// mutatePlan runs fn and the status recompute in one transaction after
// checking the caller owns the plan.
func (s *WorkoutService) mutatePlan(ctx context.Context, caller Caller, id uint, fn func(tx *gorm.DB, p *models.WorkoutPlan) error) (*models.WorkoutPlan, error) {
	p, err := s.plan(ctx, caller, id, true)
	if err != nil {
		return nil, err
	}
	var (
		status  string
		changed bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(tx, p); err != nil {
			return err
		}
		status, changed, err = recomputePlanStatus(tx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.publishStatus(ctx, p.ID, p.UserID, status)
	}
	return s.reload(ctx, id)
}

func (s *WorkoutService) publishStatus(ctx context.Context, planID, userID uint, status string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(ctx, EventPlanStatusChanged, map[string]any{
		"plan_id": planID, "user_id": userID, "status": status,
	}); err != nil {
		s.log.WithError(err).WithField("plan_id", planID).Warn("publish plan status failed")
	}
}

func (s *WorkoutService) UpdatePlan(ctx context.Context, caller Caller, id uint, in WorkoutPlanPatch) (*models.WorkoutPlan, error) {
	return s.mutatePlan(ctx, caller, id, func(tx *gorm.DB, p *models.WorkoutPlan) error {
		if in.PlanName != nil {
			p.PlanName = *in.PlanName
		}
		start, end := p.StartDate.Format(utils.DateLayout), p.EndDate.Format(utils.DateLayout)
		if in.StartDate != nil {
			start = *in.StartDate
		}
		if in.EndDate != nil {
			end = *in.EndDate
		}
		from, to, err := parseRange(start, end)
		if err != nil {
			return err
		}
		p.StartDate, p.EndDate = from, to
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return err
		}
		if in.Sessions == nil {
			return keepChildrenInRange(tx, &models.WorkoutSession{}, "workout_plan_id", p.ID, from, to)
		}
		sessions, err := buildSessions(tx, *in.Sessions, from, to)
		if err != nil {
			return err
		}
		if err := tx.Where("workout_plan_id = ?", p.ID).Delete(&models.WorkoutSession{}).Error; err != nil {
			return err
		}
		return insertSessions(tx, p.ID, sessions)
	})
}

func (s *WorkoutService) DeletePlan(ctx context.Context, caller Caller, id uint) error {
	p, err := s.plan(ctx, caller, id, true)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workout_plan_id = ?", p.ID).Delete(&models.WorkoutSession{}).Error; err != nil {
			return err
		}
		return tx.Delete(p).Error
	})
}

func (s *WorkoutService) AddWorkout(ctx context.Context, caller Caller, planID uint, in SessionInput) (*models.WorkoutPlan, error) {
	return s.mutatePlan(ctx, caller, planID, func(tx *gorm.DB, p *models.WorkoutPlan) error {
		sessions, err := buildSessions(tx, []SessionInput{in}, p.StartDate, p.EndDate)
		if err != nil {
			return err
		}
		return insertSessions(tx, p.ID, sessions)
	})
}

func (s *WorkoutService) RemoveWorkout(ctx context.Context, caller Caller, planID, sessionID uint) (*models.WorkoutPlan, error) {
	return s.mutatePlan(ctx, caller, planID, func(tx *gorm.DB, p *models.WorkoutPlan) error {
		res := tx.Where("id = ? AND workout_plan_id = ?", sessionID, p.ID).Delete(&models.WorkoutSession{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SetPlanStatus sets every session of the plan to status.
func (s *WorkoutService) SetPlanStatus(ctx context.Context, caller Caller, planID uint, status string) (*models.WorkoutPlan, error) {
	return s.mutatePlan(ctx, caller, planID, func(tx *gorm.DB, p *models.WorkoutPlan) error {
		return tx.Model(&models.WorkoutSession{}).
			Where("workout_plan_id = ?", p.ID).
			Update("status", status).Error
	})
}

func (s *WorkoutService) UpdateSession(ctx context.Context, caller Caller, planID, sessionID uint, in SessionPatch) (*models.WorkoutPlan, error) {
	return s.mutatePlan(ctx, caller, planID, func(tx *gorm.DB, p *models.WorkoutPlan) error {
		var ws models.WorkoutSession
		if err := tx.Where("id = ? AND workout_plan_id = ?", sessionID, p.ID).First(&ws).Error; err != nil {
			return notFound(err)
		}
		if in.Date != nil {
			d, err := dateInPlan("date", *in.Date, p.StartDate, p.EndDate)
			if err != nil {
				return err
			}
			ws.Date = d
		}
		if in.Status != nil {
			ws.Status = *in.Status
		}
		return tx.Omit(clause.Associations).Save(&ws).Error
	})
}

func (s *WorkoutService) SetSessionStatus(ctx context.Context, caller Caller, planID, sessionID uint, status string) (*models.WorkoutPlan, error) {
	return s.UpdateSession(ctx, caller, planID, sessionID, SessionPatch{Status: &status})
}
