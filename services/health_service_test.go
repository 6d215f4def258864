package services

import (
	"context"
	"testing"
	"time"

	"github.com/hieuit01/BTL-CCNLTHD/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackingInheritsBMIFromLatestProfile(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewHealthService(db, NewAccess(db))
	alice := seedUser(t, db, "alice", models.RoleUser)

	// no profile yet: bmi stays empty
	tr, err := svc.CreateTracking(ctx, alice, TrackingInput{Steps: 1000})
	require.NoError(t, err)
	assert.Nil(t, tr.BMI)

	_, err = svc.CreateProfile(ctx, alice, ProfileInput{Height: 180, Weight: 90, Age: 30})
	require.NoError(t, err)
	latest, err := svc.CreateProfile(ctx, alice, ProfileInput{Height: 180, Weight: 81, Age: 30})
	require.NoError(t, err)
	require.NotNil(t, latest.BMI)
	assert.Equal(t, 25.0, *latest.BMI)

	tr, err = svc.CreateTracking(ctx, alice, TrackingInput{Steps: 5000, WaterIntake: 2})
	require.NoError(t, err)
	require.NotNil(t, tr.BMI)
	assert.Equal(t, 25.0, *tr.BMI)

	// explicit bmi wins
	explicit := 22.5
	tr2, err := svc.CreateTracking(ctx, alice, TrackingInput{BMI: &explicit})
	require.NoError(t, err)
	assert.Equal(t, 22.5, *tr2.BMI)

	// a later profile change does not touch stored tracking bmi
	w := 100.0
	_, err = svc.UpdateProfile(ctx, alice, latest.ID, ProfilePatch{Weight: &w})
	require.NoError(t, err)
	got, err := svc.GetTracking(ctx, alice, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, *got.BMI)
}

func TestTrainerCannotReadAnotherTrainersClient(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewHealthService(db, NewAccess(db))

	alice := seedUser(t, db, "alice", models.RoleUser)
	t1 := seedUser(t, db, "trainer1", models.RoleTrainer)
	t2 := seedUser(t, db, "trainer2", models.RoleTrainer)
	connectTo(t, db, alice, t1)

	p, err := svc.CreateProfile(ctx, alice, ProfileInput{Height: 165, Weight: 60, Age: 25, Goal: models.GoalLoseWeight})
	require.NoError(t, err)

	_, err = svc.GetProfile(ctx, t2, p.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	list, err := svc.ListProfiles(ctx, t2, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.ListProfiles(ctx, t2, alice.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.GetProfile(ctx, t1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Bình thường", got.BMICategory)

	// connected experts read but never write
	w := 59.0
	_, err = svc.UpdateProfile(ctx, t1, p.ID, ProfilePatch{Weight: &w})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.DeleteProfile(ctx, t1, p.ID), ErrForbidden)

	_, err = svc.GetProfile(ctx, alice, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCurrentTracking(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewHealthService(db, NewAccess(db))
	svc.now = func() time.Time { return time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC) }
	alice := seedUser(t, db, "alice", models.RoleUser)

	_, err := svc.CurrentTracking(ctx, alice)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CreateTracking(ctx, alice, TrackingInput{Date: "2026-03-03", Steps: 10})
	require.NoError(t, err)
	today, err := svc.CreateTracking(ctx, alice, TrackingInput{Steps: 20})
	require.NoError(t, err)

	got, err := svc.CurrentTracking(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, today.ID, got.ID)
}

func TestProfileMeasuresMatchBMIRange(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewHealthService(db, NewAccess(db))
	alice := seedUser(t, db, "alice", models.RoleUser)

	cases := []struct {
		name   string
		height float64
		weight float64
		field  string
	}{
		{"too tall", 280, 70, "height"},
		{"too short", 40, 70, "height"},
		{"too heavy", 180, 450, "weight"},
		{"too light", 180, 5, "weight"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProfile(ctx, alice, ProfileInput{Height: tc.height, Weight: tc.weight, Age: 30})
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tc.field)
		})
	}

	p, err := svc.CreateProfile(ctx, alice, ProfileInput{Height: 250, Weight: 400, Age: 30})
	require.NoError(t, err)
	require.NotNil(t, p.BMI)

	h := 251.0
	_, err = svc.UpdateProfile(ctx, alice, p.ID, ProfilePatch{Height: &h})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "height")
}
