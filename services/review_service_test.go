package services

import (
	"context"
	"testing"

	"github.com/hieuit01/BTL-CCNLTHD/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestReviewRules(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	events := &fakePublisher{}
	svc := NewReviewService(db, events, quietLogger())

	alice := seedUser(t, db, "alice", models.RoleUser)
	coach := seedUser(t, db, "coach", models.RoleTrainer)

	_, err := svc.Create(ctx, alice, ReviewInput{ExpertID: coach.ID, Rating: 5})
	assert.ErrorIs(t, err, ErrForbidden, "not connected")

	_, err = svc.Create(ctx, alice, ReviewInput{ExpertID: 9999, Rating: 5})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(ctx, coach, ReviewInput{ExpertID: coach.ID, Rating: 5})
	assert.ErrorIs(t, err, ErrForbidden, "experts cannot review")

	connectTo(t, db, alice, coach)
	r, err := svc.Create(ctx, alice, ReviewInput{ExpertID: coach.ID, Rating: 4, Comment: "tốt"})
	require.NoError(t, err)
	assert.Equal(t, []string{EventReviewCreated}, events.keys())

	_, err = svc.Create(ctx, alice, ReviewInput{ExpertID: coach.ID, Rating: 3})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "expert")

	// the unique index backs the pre-check
	err = db.Create(&models.Review{ExpertID: coach.ID, ReviewerID: alice.ID, Rating: 1}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	mine, err := svc.MyReview(ctx, alice, coach.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, mine.ID)

	rating := 2
	_, err = svc.Update(ctx, coach, r.ID, ReviewPatch{Rating: &rating})
	assert.ErrorIs(t, err, ErrForbidden)
	updated, err := svc.Update(ctx, alice, r.ID, ReviewPatch{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)

	require.NoError(t, svc.Delete(ctx, alice, r.ID))
	_, err = svc.Get(ctx, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpertListOrderedByRating(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	experts := NewExpertService(db, NewAccess(db))

	low := seedUser(t, db, "low", models.RoleTrainer)
	high := seedUser(t, db, "high", models.RoleTrainer)
	none := seedUser(t, db, "none", models.RoleNutritionist)
	u1 := seedUser(t, db, "u1", models.RoleUser)
	u2 := seedUser(t, db, "u2", models.RoleUser)

	for _, r := range []models.Review{
		{ExpertID: low.ID, ReviewerID: u1.ID, Rating: 3},
		{ExpertID: high.ID, ReviewerID: u1.ID, Rating: 5},
		{ExpertID: high.ID, ReviewerID: u2.ID, Rating: 4},
	} {
		require.NoError(t, db.Create(&r).Error)
	}

	all, err := experts.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, high.ID, all[0].UserID)
	assert.Equal(t, 4.5, all[0].AverageRating)
	assert.EqualValues(t, 2, all[0].ReviewCount)
	assert.Equal(t, low.ID, all[1].UserID)
	assert.Equal(t, none.ID, all[2].UserID)
	assert.Zero(t, all[2].ReviewCount)

	trainers, err := experts.List(ctx, models.RoleTrainer)
	require.NoError(t, err)
	assert.Len(t, trainers, 2)
}
