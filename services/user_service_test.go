package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hieuit01/BTL-CCNLTHD/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
)

func strp(s string) *string { return &s }

func TestRegisterCreatesRoleExtension(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewUserService(db, nil, nil, nil, quietLogger())

	p, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "Alice@Example.com", Password: "secret1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, p.Role)
	assert.Equal(t, "alice@example.com", p.Email)
	assert.Equal(t, models.TrackingPersonal, p.TrackingMode)

	ex, err := svc.Register(ctx, RegisterInput{
		Username: "coach", Email: "coach@example.com", Password: "secret1",
		Role: models.RoleTrainer, Specialization: "strength", ExperienceYears: 5,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTrainer, ex.ExpertType)
	assert.Equal(t, "strength", ex.Specialization)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret1"}, nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "username")

	_, err = svc.Register(ctx, RegisterInput{Username: "diet", Email: "diet@example.com", Password: "secret1", Role: models.RoleNutritionist}, nil)
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "specialization")

	u, err := svc.Authenticate(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, u.ID)
	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateCurrentTrackingRules(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	mailer := &fakeMailer{}
	events := &fakePublisher{}
	svc := NewUserService(db, nil, mailer, events, quietLogger())

	alice := seedUser(t, db, "alice", models.RoleUser)
	trainer := seedUser(t, db, "coach", models.RoleTrainer)
	nutri := seedUser(t, db, "diet", models.RoleNutritionist)

	// connecting without a mode switches to connected and mails the expert
	tid := trainer.ID
	p, err := svc.UpdateCurrent(ctx, alice, UpdateUserInput{ConnectedTrainer: OptionalID{Set: true, Value: &tid}}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.TrackingConnected, p.TrackingMode)
	require.NotNil(t, p.ConnectedTrainer)
	assert.Equal(t, trainer.ID, *p.ConnectedTrainer)
	assert.Equal(t, []string{"coach@example.com"}, mailer.sent)
	assert.Contains(t, events.keys(), EventExpertConnected)

	// a trainer id is not a nutritionist
	wrong := trainer.ID
	_, err = svc.UpdateCurrent(ctx, alice, UpdateUserInput{ConnectedNutritionist: OptionalID{Set: true, Value: &wrong}}, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	nid := nutri.ID
	_, err = svc.UpdateCurrent(ctx, alice, UpdateUserInput{ConnectedNutritionist: OptionalID{Set: true, Value: &nid}}, nil)
	require.NoError(t, err)

	// personal clears every connection
	p, err = svc.UpdateCurrent(ctx, alice, UpdateUserInput{TrackingMode: strp(models.TrackingPersonal)}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.TrackingPersonal, p.TrackingMode)
	assert.Nil(t, p.ConnectedTrainer)
	assert.Nil(t, p.ConnectedNutritionist)

	// connected with nobody to connect to is rejected
	_, err = svc.UpdateCurrent(ctx, alice, UpdateUserInput{TrackingMode: strp(models.TrackingConnected)}, nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "tracking_mode")

	// experts cannot connect to anyone
	_, err = svc.UpdateCurrent(ctx, trainer, UpdateUserInput{TrackingMode: strp(models.TrackingPersonal)}, nil)
	require.ErrorAs(t, err, &ve)
}

func TestTrackingModeHookRejectsInconsistentRows(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", models.RoleUser)
	trainer := seedUser(t, db, "coach", models.RoleTrainer)

	var ru models.RegularUser
	require.NoError(t, db.First(&ru, "user_id = ?", alice.ID).Error)
	tid := trainer.ID
	ru.ConnectedTrainerID = &tid // still personal
	err := db.Omit(clause.Associations).Save(&ru).Error
	assert.ErrorIs(t, err, models.ErrTrackingMode)
}

func TestOptionalIDUnmarshal(t *testing.T) {
	var in UpdateUserInput
	require.NoError(t, json.Unmarshal([]byte(`{"connected_trainer": null, "connected_nutritionist": 7}`), &in))
	assert.True(t, in.ConnectedTrainer.Set)
	assert.Nil(t, in.ConnectedTrainer.Value)
	assert.True(t, in.ConnectedNutritionist.Set)
	require.NotNil(t, in.ConnectedNutritionist.Value)
	assert.EqualValues(t, 7, *in.ConnectedNutritionist.Value)

	var empty UpdateUserInput
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.False(t, empty.ConnectedTrainer.Set)
}

func TestDeactivate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewUserService(db, nil, nil, nil, quietLogger())
	alice := seedUser(t, db, "alice", models.RoleUser)

	require.NoError(t, svc.Deactivate(ctx, alice))
	_, err := svc.Active(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
