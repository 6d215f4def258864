package services

import (
	"context"
	"errors"
	"time"

	"github.com/hieuit01/BTL-CCNLTHD/models"
	"github.com/hieuit01/BTL-CCNLTHD/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("github.com/hieuit01/BTL-CCNLTHD/services")

type ReportService struct {
	db     *gorm.DB
	access *Access
	now    func() time.Time
}

func NewReportService(db *gorm.DB, access *Access) *ReportService {
	return &ReportService{db: db, access: access, now: time.Now}
}

type ReportRange struct {
	Period string `json:"period,omitempty"`
	From   string `json:"from,omitempty"`
	To     string `json:"to"`
}

type window struct {
	from, to time.Time
}

func (w window) apply(q *gorm.DB, column string) *gorm.DB {
	if !w.from.IsZero() {
		q = q.Where(column+" >= ?", w.from)
	}
	return q.Where(column+" <= ?", w.to)
}

func (w window) rng(period string) ReportRange {
	r := ReportRange{Period: period, To: w.to.Format(utils.DateLayout)}
	if !w.from.IsZero() {
		r.From = w.from.Format(utils.DateLayout)
	}
	return r
}

func (s *ReportService) window(period string) (window, error) {
	today := utils.DateOnly(s.now())
	from, err := utils.PeriodFloor(period, today)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidPeriod) {
			return window{}, Invalid("period", "Khoảng thời gian phải là week, month hoặc year.")
		}
		return window{}, err
	}
	return window{from: from, to: today}, nil
}

// target resolves whose data a report covers. Regular users default to
// themselves; anyone else must name a user they may read.
func (s *ReportService) target(ctx context.Context, caller Caller, userID uint) (uint, error) {
	if userID == 0 {
		if !caller.IsRegular() {
			return 0, Invalid("user_id", "Vui lòng chọn người dùng.")
		}
		return caller.ID, nil
	}
	if err := s.access.Authorize(ctx, caller, userID, false); err != nil {
		return 0, err
	}
	return userID, nil
}

func startSpan(ctx context.Context, name string, userID uint, period string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name)
	span.SetAttributes(attribute.Int64("report.user_id", int64(userID)), attribute.String("report.period", period))
	return ctx, span
}

// ---------- Health progress ----------

type DailyHealth struct {
	Date        string   `json:"date"`
	Steps       int      `json:"steps"`
	WaterIntake float64  `json:"water_intake"`
	HeartRate   *int     `json:"heart_rate"`
	BMI         *float64 `json:"bmi"`
}

type HealthProgress struct {
	UserID       uint          `json:"user_id"`
	Range        ReportRange   `json:"range"`
	Trackings    int64         `json:"trackings"`
	TotalSteps   int64         `json:"total_steps"`
	AvgSteps     float64       `json:"avg_steps"`
	AvgHeartRate *float64      `json:"avg_heart_rate"`
	TotalWater   float64       `json:"total_water_intake"`
	AvgWater     float64       `json:"avg_water_intake"`
	AvgBMI       *float64      `json:"avg_bmi"`
	LatestBMI    *float64      `json:"latest_bmi"`
	WeightChange *float64      `json:"weight_change"`
	Daily        []DailyHealth `json:"daily"`
}

func (s *ReportService) HealthProgress(ctx context.Context, caller Caller, userID uint, period string) (*HealthProgress, error) {
	uid, err := s.target(ctx, caller, userID)
	if err != nil {
		return nil, err
	}
	w, err := s.window(period)
	if err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "ReportService.HealthProgress", uid, period)
	defer span.End()
	return s.healthProgress(ctx, uid, w, period)
}

func (s *ReportService) healthProgress(ctx context.Context, uid uint, w window, period string) (*HealthProgress, error) {
	db := s.db.WithContext(ctx)
	base := func() *gorm.DB {
		return w.apply(db.Model(&models.HealthTracking{}).Where("user_id = ?", uid), "date")
	}

	var agg struct {
		Cnt          int64
		Steps        int64
		AvgSteps     float64
		AvgHeartRate *float64
		Water        float64
		AvgWater     float64
		AvgBMI       *float64
	}
	if err := base().Select(
		"COUNT(*) AS cnt, COALESCE(SUM(steps), 0) AS steps, COALESCE(AVG(steps), 0) AS avg_steps, " +
			"AVG(heart_rate) AS avg_heart_rate, COALESCE(SUM(water_intake), 0) AS water, " +
			"COALESCE(AVG(water_intake), 0) AS avg_water, AVG(bmi) AS avg_bmi",
	).Scan(&agg).Error; err != nil {
		return nil, err
	}

	out := &HealthProgress{
		UserID:     uid,
		Range:      w.rng(period),
		Trackings:  agg.Cnt,
		TotalSteps: agg.Steps,
		AvgSteps:   utils.Round2(agg.AvgSteps),
		TotalWater: utils.Round2(agg.Water),
		AvgWater:   utils.Round2(agg.AvgWater),
		Daily:      []DailyHealth{},
	}
	out.AvgHeartRate = round2p(agg.AvgHeartRate)
	out.AvgBMI = round2p(agg.AvgBMI)

	var rows []models.HealthTracking
	if err := base().Order("date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out.Daily = append(out.Daily, DailyHealth{
			Date:        r.Date.Format(utils.DateLayout),
			Steps:       r.Steps,
			WaterIntake: r.WaterIntake,
			HeartRate:   r.HeartRate,
			BMI:         r.BMI,
		})
		if r.BMI != nil {
			out.LatestBMI = r.BMI
		}
	}

	var profiles []models.HealthProfile
	pq := db.Where("user_id = ? AND created_at < ?", uid, w.to.AddDate(0, 0, 1))
	if !w.from.IsZero() {
		pq = pq.Where("created_at >= ?", w.from)
	}
	if err := pq.Order("created_at ASC, id ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	if len(profiles) >= 2 {
		d := utils.Round2(profiles[len(profiles)-1].Weight - profiles[0].Weight)
		out.WeightChange = &d
	}
	return out, nil
}

// ---------- Workout stats ----------

type WorkoutStats struct {
	UserID         uint        `json:"user_id"`
	Range          ReportRange `json:"range"`
	Plans          int64       `json:"plans"`
	Sessions       int64       `json:"sessions"`
	Completed      int64       `json:"completed_sessions"`
	Pending        int64       `json:"pending_sessions"`
	CompletionRate float64     `json:"completion_rate"`
	CaloriesBurned int64       `json:"calories_burned"`
	MinutesTrained int64       `json:"minutes_trained"`
}

func (s *ReportService) WorkoutStats(ctx context.Context, caller Caller, userID uint, period string) (*WorkoutStats, error) {
	uid, err := s.target(ctx, caller, userID)
	if err != nil {
		return nil, err
	}
	w, err := s.window(period)
	if err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "ReportService.WorkoutStats", uid, period)
	defer span.End()
	return s.workoutStats(ctx, uid, w, period)
}

func (s *ReportService) workoutStats(ctx context.Context, uid uint, w window, period string) (*WorkoutStats, error) {
	db := s.db.WithContext(ctx)
	sessions := func() *gorm.DB {
		q := db.Table("workout_sessions").
			Joins("JOIN workout_plans ON workout_plans.id = workout_sessions.workout_plan_id").
			Where("workout_plans.user_id = ?", uid)
		return w.apply(q, "workout_sessions.date")
	}

	out := &WorkoutStats{UserID: uid, Range: w.rng(period)}

	pq := db.Model(&models.WorkoutPlan{}).Where("user_id = ? AND start_date <= ?", uid, w.to)
	if !w.from.IsZero() {
		pq = pq.Where("end_date >= ?", w.from)
	}
	if err := pq.Count(&out.Plans).Error; err != nil {
		return nil, err
	}

	var counts struct {
		Total     int64
		Completed int64
	}
	if err := sessions().Select(
		"COUNT(*) AS total, COALESCE(SUM(CASE WHEN workout_sessions.status = ? THEN 1 ELSE 0 END), 0) AS completed",
		models.StatusCompleted,
	).Scan(&counts).Error; err != nil {
		return nil, err
	}
	out.Sessions = counts.Total
	out.Completed = counts.Completed
	out.Pending = counts.Total - counts.Completed
	out.CompletionRate = pct(float64(counts.Completed), float64(counts.Total))

	var burned struct {
		Calories int64
		Minutes  int64
	}
	if err := sessions().
		Joins("JOIN workouts ON workouts.id = workout_sessions.workout_id").
		Where("workout_sessions.status = ?", models.StatusCompleted).
		Select("COALESCE(SUM(workouts.calories_burned), 0) AS calories, COALESCE(SUM(workouts.duration), 0) AS minutes").
		Scan(&burned).Error; err != nil {
		return nil, err
	}
	out.CaloriesBurned = burned.Calories
	out.MinutesTrained = burned.Minutes
	return out, nil
}

// ---------- Meal stats ----------

type MealStats struct {
	UserID            uint        `json:"user_id"`
	Range             ReportRange `json:"range"`
	PlannedMeals      int64       `json:"planned_meals"`
	Days              int64       `json:"days"`
	TotalCalories     float64     `json:"total_calories"`
	AvgCaloriesPerDay float64     `json:"avg_calories_per_day"`
	TotalProtein      float64     `json:"total_protein"`
	TotalCarbs        float64     `json:"total_carbs"`
	TotalFat          float64     `json:"total_fat"`
}

func (s *ReportService) MealStats(ctx context.Context, caller Caller, userID uint, period string) (*MealStats, error) {
	uid, err := s.target(ctx, caller, userID)
	if err != nil {
		return nil, err
	}
	w, err := s.window(period)
	if err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "ReportService.MealStats", uid, period)
	defer span.End()

	q := s.db.WithContext(ctx).Table("meal_plan_meals").
		Joins("JOIN meal_plans ON meal_plans.id = meal_plan_meals.meal_plan_id").
		Joins("JOIN meals ON meals.id = meal_plan_meals.meal_id").
		Where("meal_plans.user_id = ?", uid)
	q = w.apply(q, "meal_plan_meals.date")

	var agg struct {
		Cnt      int64
		Days     int64
		Calories float64
		Protein  float64
		Carbs    float64
		Fat      float64
	}
	if err := q.Select(
		"COUNT(*) AS cnt, COUNT(DISTINCT meal_plan_meals.date) AS days, " +
			"COALESCE(SUM(meals.calories), 0) AS calories, COALESCE(SUM(meals.protein), 0) AS protein, " +
			"COALESCE(SUM(meals.carbs), 0) AS carbs, COALESCE(SUM(meals.fat), 0) AS fat",
	).Scan(&agg).Error; err != nil {
		return nil, err
	}
	return &MealStats{
		UserID:            uid,
		Range:             w.rng(period),
		PlannedMeals:      agg.Cnt,
		Days:              agg.Days,
		TotalCalories:     utils.Round2(agg.Calories),
		AvgCaloriesPerDay: avg(agg.Calories, int(agg.Days)),
		TotalProtein:      utils.Round2(agg.Protein),
		TotalCarbs:        utils.Round2(agg.Carbs),
		TotalFat:          utils.Round2(agg.Fat),
	}, nil
}

// ---------- Expert view ----------

type ClientProgress struct {
	UserID                uint            `json:"user_id"`
	Username              string          `json:"username"`
	FullName              string          `json:"full_name"`
	Health                *HealthProgress `json:"health"`
	WorkoutCompletionRate float64         `json:"workout_completion_rate"`
}

// ExpertClientProgress summarizes every connected client, or just userID.
func (s *ReportService) ExpertClientProgress(ctx context.Context, caller Caller, userID uint, period string) ([]ClientProgress, error) {
	if !caller.IsExpert() && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	w, err := s.window(period)
	if err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "ReportService.ExpertClientProgress", caller.ID, period)
	defer span.End()

	q := s.db.WithContext(ctx).Preload("User")
	if userID != 0 {
		if err := s.access.Authorize(ctx, caller, userID, false); err != nil {
			return nil, err
		}
		q = q.Where("user_id = ?", userID)
	} else {
		q = s.access.Scope(ctx, q, caller, "user_id")
	}
	var clients []models.RegularUser
	if err := q.Order("user_id").Find(&clients).Error; err != nil {
		return nil, err
	}

	out := make([]ClientProgress, 0, len(clients))
	for _, c := range clients {
		hp, err := s.healthProgress(ctx, c.UserID, w, period)
		if err != nil {
			return nil, err
		}
		ws, err := s.workoutStats(ctx, c.UserID, w, period)
		if err != nil {
			return nil, err
		}
		out = append(out, ClientProgress{
			UserID:                c.UserID,
			Username:              c.User.Username,
			FullName:              fullName(c.User),
			Health:                hp,
			WorkoutCompletionRate: ws.CompletionRate,
		})
	}
	span.SetAttributes(attribute.Int("report.clients", len(out)))
	return out, nil
}

func fullName(u models.User) string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func pct(actual, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return utils.Round2(actual / total * 100)
}

func avg(sum float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return utils.Round2(sum / float64(n))
}

func round2p(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := utils.Round2(*v)
	return &r
}
