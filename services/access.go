package services

import (
	"context"

	"github.com/hieuit01/BTL-CCNLTHD/models"

	"gorm.io/gorm"
)

// Caller is the authenticated user behind a request.
type Caller struct {
	ID   uint
	Role string
}

func (c Caller) IsRegular() bool { return c.Role == models.RoleUser }
func (c Caller) IsExpert() bool {
	return c.Role == models.RoleTrainer || c.Role == models.RoleNutritionist
}
func (c Caller) IsAdmin() bool { return c.Role == models.RoleAdmin }

// CanAccess decides whether caller may touch a record owned by owner.
// Owners may read and write. Connected experts and admins may only read.
func CanAccess(caller Caller, owner *models.RegularUser, write bool) bool {
	if owner == nil {
		return false
	}
	if caller.IsRegular() && caller.ID == owner.UserID {
		return true
	}
	if write {
		return false
	}
	if caller.IsAdmin() {
		return true
	}
	return caller.IsExpert() && owner.ConnectedTo(caller.Role, caller.ID)
}

// Access evaluates CanAccess against connection fields read fresh from the
// database on every call.
type Access struct{ db *gorm.DB }

func NewAccess(db *gorm.DB) *Access { return &Access{db: db} }

func (a *Access) Owner(ctx context.Context, userID uint) (*models.RegularUser, error) {
	var ru models.RegularUser
	if err := a.db.WithContext(ctx).First(&ru, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &ru, nil
}

func (a *Access) Authorize(ctx context.Context, caller Caller, ownerID uint, write bool) error {
	owner, err := a.Owner(ctx, ownerID)
	if err != nil {
		if err == ErrNotFound {
			return ErrForbidden
		}
		return err
	}
	if !CanAccess(caller, owner, write) {
		return ErrForbidden
	}
	return nil
}

// Scope restricts q to rows (by column) the caller may read.
func (a *Access) Scope(ctx context.Context, q *gorm.DB, caller Caller, column string) *gorm.DB {
	switch {
	case caller.IsRegular():
		return q.Where(column+" = ?", caller.ID)
	case caller.Role == models.RoleTrainer:
		return q.Where(column+" IN (?)", a.connectedIDs(ctx, "connected_trainer_id", caller.ID))
	case caller.Role == models.RoleNutritionist:
		return q.Where(column+" IN (?)", a.connectedIDs(ctx, "connected_nutritionist_id", caller.ID))
	case caller.IsAdmin():
		return q
	}
	return q.Where("1 = 0")
}

// ScopeFor narrows q to a single owner when userID is set, checking the
// caller may read that owner's data first.
func (a *Access) ScopeFor(ctx context.Context, q *gorm.DB, caller Caller, column string, userID uint) (*gorm.DB, error) {
	if userID == 0 {
		return a.Scope(ctx, q, caller, column), nil
	}
	if err := a.Authorize(ctx, caller, userID, false); err != nil {
		return nil, err
	}
	return q.Where(column+" = ?", userID), nil
}

func (a *Access) connectedIDs(ctx context.Context, column string, expertID uint) *gorm.DB {
	return a.db.WithContext(ctx).Model(&models.RegularUser{}).Select("user_id").Where(column+" = ?", expertID)
}

// requireRegular guards create endpoints that only regular users may call.
func requireRegular(caller Caller) error {
	if !caller.IsRegular() {
		return ErrForbidden
	}
	return nil
}
