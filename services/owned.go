package services

import (
	"context"

	"gorm.io/gorm"
)

// loadOwned fetches a row by id and authorizes the caller against the row's
// owner. Missing rows are ErrNotFound, rows the caller may not touch are
// ErrForbidden.
func loadOwned[T any](ctx context.Context, q *gorm.DB, access *Access, caller Caller, id uint, write bool, owner func(*T) uint) (*T, error) {
	var row T
	if err := q.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, notFound(err)
	}
	if err := access.Authorize(ctx, caller, owner(&row), write); err != nil {
		return nil, err
	}
	return &row, nil
}
