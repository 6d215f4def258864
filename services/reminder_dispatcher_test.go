package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hieuit01/BTL-CCNLTHD/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePusher struct {
	mu    sync.Mutex
	users []uint
	err   error
}

func (p *fakePusher) PushToUser(_ context.Context, userID uint, _, _ string, _ map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users = append(p.users, userID)
	return p.err
}

func TestDispatchDueDeliversOnce(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	hub := &fakeHub{}
	push := &fakePusher{err: errors.New("endpoint disabled")}
	d := NewReminderDispatcher(db, hub, push, quietLogger())
	now := time.Date(2026, 10, 16, 7, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	reminders := NewReminderService(db)
	alice := seedUser(t, db, "alice", models.RoleUser)

	due, err := reminders.Create(ctx, alice, ReminderInput{ReminderType: "water", Message: "Uống nước", SendAt: now.Add(-time.Minute)})
	require.NoError(t, err)
	later, err := reminders.Create(ctx, alice, ReminderInput{ReminderType: "rest", Message: "Nghỉ ngơi", SendAt: now.Add(time.Hour)})
	require.NoError(t, err)

	n, err := d.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, hub.to(alice.ID))
	assert.Equal(t, []uint{alice.ID}, push.users)

	n, err = d.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	pending, err := reminders.List(ctx, alice, true)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, later.ID, pending[0].ID)

	// moving send_at rearms a delivered reminder
	again := now.Add(-time.Second)
	updated, err := reminders.Update(ctx, alice, due.ID, ReminderPatch{SendAt: &again})
	require.NoError(t, err)
	assert.Nil(t, updated.DeliveredAt)
	n, err = d.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRemindersAreOwnerOnly(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	reminders := NewReminderService(db)
	alice := seedUser(t, db, "alice", models.RoleUser)
	coach := seedUser(t, db, "coach", models.RoleTrainer)
	connectTo(t, db, alice, coach)

	r, err := reminders.Create(ctx, alice, ReminderInput{ReminderType: "meal", Message: "Ăn trưa", SendAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	_, err = reminders.Get(ctx, coach, r.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	list, err := reminders.List(ctx, coach, false)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = reminders.Create(ctx, coach, ReminderInput{ReminderType: "meal", Message: "x", SendAt: time.Now()})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestJournalAccess(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	journals := NewJournalService(db, NewAccess(db))
	alice := seedUser(t, db, "alice", models.RoleUser)
	coach := seedUser(t, db, "coach", models.RoleTrainer)

	j, err := journals.Create(ctx, alice, JournalInput{Date: "2026-10-01", Mood: "tired", Note: "ngủ ít"})
	require.NoError(t, err)

	_, err = journals.Get(ctx, coach, j.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	connectTo(t, db, alice, coach)
	got, err := journals.Get(ctx, coach, j.ID)
	require.NoError(t, err)
	assert.Equal(t, "tired", got.Mood)

	mood := "happy"
	_, err = journals.Update(ctx, coach, j.ID, JournalPatch{Mood: &mood})
	assert.ErrorIs(t, err, ErrForbidden)
	updated, err := journals.Update(ctx, alice, j.ID, JournalPatch{Mood: &mood})
	require.NoError(t, err)
	assert.Equal(t, "happy", updated.Mood)

	require.NoError(t, journals.Delete(ctx, alice, j.ID))
	_, err = journals.Get(ctx, alice, j.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
