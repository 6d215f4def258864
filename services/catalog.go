package services

import (
	"context"
	"time"

	"github.com/hieuit01/BTL-CCNLTHD/models"
	"github.com/hieuit01/BTL-CCNLTHD/utils"

	"gorm.io/gorm"
)

// CatalogFilter narrows workout and meal catalog listings.
type CatalogFilter struct {
	Goal              string
	Own               bool
	SuggestedByExpert bool
}

func applyCatalogFilter(ctx context.Context, db *gorm.DB, q *gorm.DB, caller Caller, f CatalogFilter) (*gorm.DB, error) {
	q = q.Where("active = ?", true)
	if f.Goal != "" {
		q = q.Where("goal = ?", f.Goal)
	}
	if f.Own {
		q = q.Where("created_by_id = ?", caller.ID)
	}
	if f.SuggestedByExpert {
		if !caller.IsRegular() {
			return q.Where("1 = 0"), nil
		}
		var ru models.RegularUser
		if err := db.WithContext(ctx).First(&ru, "user_id = ?", caller.ID).Error; err != nil {
			return nil, notFound(err)
		}
		var experts []uint
		if ru.ConnectedTrainerID != nil {
			experts = append(experts, *ru.ConnectedTrainerID)
		}
		if ru.ConnectedNutritionistID != nil {
			experts = append(experts, *ru.ConnectedNutritionistID)
		}
		if len(experts) == 0 {
			return q.Where("1 = 0"), nil
		}
		q = q.Where("created_by_id IN ?", experts)
	}
	return q, nil
}

// canCurate reports whether caller may add entries to a catalog kept by the
// given expert role.
func canCurate(caller Caller, role string) bool {
	return caller.IsAdmin() || caller.Role == role
}

func canModifyCatalog(caller Caller, createdBy *uint) bool {
	return caller.IsAdmin() || (createdBy != nil && *createdBy == caller.ID)
}

func parseRange(start, end string) (from, to time.Time, err error) {
	if from, err = utils.ParseDate(start); err != nil {
		return from, to, Invalid("start_date", "Ngày bắt đầu không hợp lệ, định dạng YYYY-MM-DD.")
	}
	if to, err = utils.ParseDate(end); err != nil {
		return from, to, Invalid("end_date", "Ngày kết thúc không hợp lệ, định dạng YYYY-MM-DD.")
	}
	if to.Before(from) {
		return from, to, Invalid("end_date", "Ngày kết thúc phải sau hoặc bằng ngày bắt đầu.")
	}
	return from, to, nil
}

// keepChildrenInRange rejects a new plan range that would leave existing
// child rows of model (keyed by fk) outside it.
func keepChildrenInRange(tx *gorm.DB, model any, fk string, planID uint, from, to time.Time) error {
	var n int64
	if err := tx.Model(model).Where(fk+" = ? AND date < ?", planID, from).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return Invalid("start_date", "Kế hoạch còn mục có ngày trước ngày bắt đầu mới.")
	}
	if err := tx.Model(model).Where(fk+" = ? AND date > ?", planID, to).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return Invalid("end_date", "Kế hoạch còn mục có ngày sau ngày kết thúc mới.")
	}
	return nil
}

// dateInPlan parses a child date and checks it falls inside [from, to].
func dateInPlan(field, raw string, from, to time.Time) (time.Time, error) {
	d, err := utils.ParseDate(raw)
	if err != nil {
		return d, Invalid(field, "Ngày không hợp lệ, định dạng YYYY-MM-DD.")
	}
	if d.Before(from) || d.After(to) {
		return d, Invalid(field, "Ngày phải nằm trong thời gian của kế hoạch.")
	}
	return d, nil
}
