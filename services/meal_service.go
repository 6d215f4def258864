package services

import (
	"context"
	"time"

	"github.com/hieuit01/BTL-CCNLTHD/models"
	"github.com/hieuit01/BTL-CCNLTHD/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MealInput struct {
	Name        string  `json:"name" form:"name" binding:"required,max=255"`
	Description string  `json:"description" form:"description"`
	Calories    float64 `json:"calories" form:"calories" binding:"gte=0"`
	Protein     float64 `json:"protein" form:"protein" binding:"gte=0"`
	Carbs       float64 `json:"carbs" form:"carbs" binding:"gte=0"`
	Fat         float64 `json:"fat" form:"fat" binding:"gte=0"`
	Goal        string  `json:"goal" form:"goal" binding:"omitempty,oneof=gain_muscle lose_weight maintain"`
}

type MealPatch struct {
	Name        *string  `json:"name" form:"name" binding:"omitempty,max=255"`
	Description *string  `json:"description" form:"description"`
	Calories    *float64 `json:"calories" form:"calories" binding:"omitempty,gte=0"`
	Protein     *float64 `json:"protein" form:"protein" binding:"omitempty,gte=0"`
	Carbs       *float64 `json:"carbs" form:"carbs" binding:"omitempty,gte=0"`
	Fat         *float64 `json:"fat" form:"fat" binding:"omitempty,gte=0"`
	Goal        *string  `json:"goal" form:"goal" binding:"omitempty,oneof=gain_muscle lose_weight maintain"`
	Active      *bool    `json:"active" form:"active"`
}

type PlanMealInput struct {
	MealID   uint   `json:"meal_id" binding:"required"`
	Date     string `json:"date" binding:"required,datetime=2006-01-02"`
	MealTime string `json:"meal_time" binding:"required,oneof=breakfast lunch dinner snack"`
}

type MealPlanInput struct {
	PlanName    string          `json:"plan_name" binding:"required,max=255"`
	Description string          `json:"description"`
	StartDate   string          `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate     string          `json:"end_date" binding:"required,datetime=2006-01-02"`
	Goal        string          `json:"goal" binding:"omitempty,oneof=gain_muscle lose_weight maintain"`
	Meals       []PlanMealInput `json:"meals" binding:"dive"`
}

type MealPlanPatch struct {
	PlanName    *string          `json:"plan_name" binding:"omitempty,max=255"`
	Description *string          `json:"description"`
	StartDate   *string          `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate     *string          `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Goal        *string          `json:"goal" binding:"omitempty,oneof=gain_muscle lose_weight maintain"`
	Meals       *[]PlanMealInput `json:"meals" binding:"omitempty,dive"`
}

type MealService struct {
	db     *gorm.DB
	access *Access
	images ImageStore
	now    func() time.Time
}

func NewMealService(db *gorm.DB, access *Access, images ImageStore) *MealService {
	return &MealService{db: db, access: access, images: images, now: time.Now}
}

/* -------- Catalog -------- */

func (s *MealService) ListMeals(ctx context.Context, caller Caller, f CatalogFilter) ([]models.Meal, error) {
	q, err := applyCatalogFilter(ctx, s.db, s.db.WithContext(ctx).Model(&models.Meal{}), caller, f)
	if err != nil {
		return nil, err
	}
	var rows []models.Meal
	err = q.Order("id DESC").Find(&rows).Error
	return rows, err
}

func (s *MealService) CreateMeal(ctx context.Context, caller Caller, in MealInput, image *Upload) (*models.Meal, error) {
	if !canCurate(caller, models.RoleNutritionist) {
		return nil, ErrForbidden
	}
	url, err := uploadImage(ctx, s.images, "meals", image)
	if err != nil {
		return nil, err
	}
	creator := caller.ID
	m := models.Meal{
		Name:        in.Name,
		Description: in.Description,
		Image:       url,
		Calories:    in.Calories,
		Protein:     in.Protein,
		Carbs:       in.Carbs,
		Fat:         in.Fat,
		Goal:        in.Goal,
		Active:      true,
		CreatedByID: &creator,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMeal hides soft-deleted entries from everyone but their creator and admins.
func (s *MealService) GetMeal(ctx context.Context, caller Caller, id uint) (*models.Meal, error) {
	m, err := s.meal(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.Active && !canModifyCatalog(caller, m.CreatedByID) {
		return nil, ErrNotFound
	}
	return m, nil
}

func (s *MealService) meal(ctx context.Context, id uint) (*models.Meal, error) {
	var m models.Meal
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *MealService) UpdateMeal(ctx context.Context, caller Caller, id uint, in MealPatch, image *Upload) (*models.Meal, error) {
	m, err := s.meal(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModifyCatalog(caller, m.CreatedByID) {
		return nil, ErrForbidden
	}
	if in.Name != nil {
		m.Name = *in.Name
	}
	if in.Description != nil {
		m.Description = *in.Description
	}
	if in.Calories != nil {
		m.Calories = *in.Calories
	}
	if in.Protein != nil {
		m.Protein = *in.Protein
	}
	if in.Carbs != nil {
		m.Carbs = *in.Carbs
	}
	if in.Fat != nil {
		m.Fat = *in.Fat
	}
	if in.Goal != nil {
		m.Goal = *in.Goal
	}
	if in.Active != nil {
		m.Active = *in.Active
	}
	url, err := uploadImage(ctx, s.images, "meals", image)
	if err != nil {
		return nil, err
	}
	if url != "" {
		m.Image = url
	}
	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MealService) DeleteMeal(ctx context.Context, caller Caller, id uint) error {
	m, err := s.meal(ctx, id)
	if err != nil {
		return err
	}
	if !canModifyCatalog(caller, m.CreatedByID) {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Model(m).Update("active", false).Error
}

/* -------- Plans -------- */

func orderPlanMeals(db *gorm.DB) *gorm.DB { return db.Order("date ASC, id ASC") }

func (s *MealService) ListPlans(ctx context.Context, caller Caller, f PlanFilter) ([]models.MealPlan, error) {
	q, err := s.access.ScopeFor(ctx, s.db.WithContext(ctx), caller, "user_id", f.UserID)
	if err != nil {
		return nil, err
	}
	if f.Today {
		today := utils.DateOnly(s.now())
		q = q.Where("start_date <= ? AND end_date >= ?", today, today)
	}
	var plans []models.MealPlan
	err = q.Preload("Meals", orderPlanMeals).Preload("Meals.Meal").
		Order("start_date DESC, id DESC").
		Find(&plans).Error
	return plans, err
}

func buildPlanMeals(tx *gorm.DB, in []PlanMealInput, from, to time.Time) ([]models.MealPlanMeal, error) {
	if len(in) == 0 {
		return nil, nil
	}
	ids := make([]uint, 0, len(in))
	for _, pm := range in {
		ids = append(ids, pm.MealID)
	}
	var found []uint
	if err := tx.Model(&models.Meal{}).Where("id IN ? AND active = ?", ids, true).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	known := make(map[uint]bool, len(found))
	for _, id := range found {
		known[id] = true
	}
	out := make([]models.MealPlanMeal, 0, len(in))
	for _, pm := range in {
		if !known[pm.MealID] {
			return nil, Invalid("meal_id", "Món ăn không tồn tại.")
		}
		d, err := dateInPlan("date", pm.Date, from, to)
		if err != nil {
			return nil, err
		}
		out = append(out, models.MealPlanMeal{MealID: pm.MealID, Date: d, MealTime: pm.MealTime})
	}
	return out, nil
}

func insertPlanMeals(tx *gorm.DB, planID uint, meals []models.MealPlanMeal) error {
	if len(meals) == 0 {
		return nil
	}
	for i := range meals {
		meals[i].MealPlanID = planID
	}
	return tx.Omit(clause.Associations).Create(&meals).Error
}

func (s *MealService) CreatePlan(ctx context.Context, caller Caller, in MealPlanInput) (*models.MealPlan, error) {
	if err := requireRegular(caller); err != nil {
		return nil, err
	}
	from, to, err := parseRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	plan := models.MealPlan{
		UserID: caller.ID, PlanName: in.PlanName, Description: in.Description,
		StartDate: from, EndDate: to, Goal: in.Goal,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		meals, err := buildPlanMeals(tx, in.Meals, from, to)
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&plan).Error; err != nil {
			return err
		}
		return insertPlanMeals(tx, plan.ID, meals)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, plan.ID)
}

func (s *MealService) plan(ctx context.Context, caller Caller, id uint, write bool) (*models.MealPlan, error) {
	return loadOwned(ctx, s.db, s.access, caller, id, write, func(p *models.MealPlan) uint { return p.UserID })
}

func (s *MealService) reload(ctx context.Context, id uint) (*models.MealPlan, error) {
	var p models.MealPlan
	if err := s.db.WithContext(ctx).Preload("Meals", orderPlanMeals).Preload("Meals.Meal").First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *MealService) GetPlan(ctx context.Context, caller Caller, id uint) (*models.MealPlan, error) {
	if _, err := s.plan(ctx, caller, id, false); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *MealService) mutatePlan(ctx context.Context, caller Caller, id uint, fn func(tx *gorm.DB, p *models.MealPlan) error) (*models.MealPlan, error) {
	p, err := s.plan(ctx, caller, id, true)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error { return fn(tx, p) }); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// UpdatePlan patches plan fields; a non-nil Meals replaces every planned meal.
func (s *MealService) UpdatePlan(ctx context.Context, caller Caller, id uint, in MealPlanPatch) (*models.MealPlan, error) {
	return s.mutatePlan(ctx, caller, id, func(tx *gorm.DB, p *models.MealPlan) error {
		if in.PlanName != nil {
			p.PlanName = *in.PlanName
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if in.Goal != nil {
			p.Goal = *in.Goal
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
		if in.Meals == nil {
			return keepChildrenInRange(tx, &models.MealPlanMeal{}, "meal_plan_id", p.ID, from, to)
		}
		meals, err := buildPlanMeals(tx, *in.Meals, from, to)
		if err != nil {
			return err
		}
		if err := tx.Where("meal_plan_id = ?", p.ID).Delete(&models.MealPlanMeal{}).Error; err != nil {
			return err
		}
		return insertPlanMeals(tx, p.ID, meals)
	})
}

func (s *MealService) DeletePlan(ctx context.Context, caller Caller, id uint) error {
	p, err := s.plan(ctx, caller, id, true)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meal_plan_id = ?", p.ID).Delete(&models.MealPlanMeal{}).Error; err != nil {
			return err
		}
		return tx.Delete(p).Error
	})
}

func (s *MealService) AddMeal(ctx context.Context, caller Caller, planID uint, in PlanMealInput) (*models.MealPlan, error) {
	return s.mutatePlan(ctx, caller, planID, func(tx *gorm.DB, p *models.MealPlan) error {
		meals, err := buildPlanMeals(tx, []PlanMealInput{in}, p.StartDate, p.EndDate)
		if err != nil {
			return err
		}
		return insertPlanMeals(tx, p.ID, meals)
	})
}

func (s *MealService) RemoveMeal(ctx context.Context, caller Caller, planID, planMealID uint) (*models.MealPlan, error) {
	return s.mutatePlan(ctx, caller, planID, func(tx *gorm.DB, p *models.MealPlan) error {
		res := tx.Where("id = ? AND meal_plan_id = ?", planMealID, p.ID).Delete(&models.MealPlanMeal{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
