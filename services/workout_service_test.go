package services

import (
	"context"
	"testing"
	"time"

	"github.com/hieuit01/BTL-CCNLTHD/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workoutFixture struct {
	svc     *WorkoutService
	events  *fakePublisher
	alice   Caller
	trainer Caller
	squat   *models.Workout
	run     *models.Workout
}

func newWorkoutFixture(t *testing.T) workoutFixture {
	t.Helper()
	db := newTestDB(t)
	events := &fakePublisher{}
	svc := NewWorkoutService(db, NewAccess(db), nil, events, quietLogger())
	svc.now = func() time.Time { return time.Date(2026, 5, 3, 9, 0, 0, 0, time.UTC) }

	f := workoutFixture{
		svc:     svc,
		events:  events,
		alice:   seedUser(t, db, "alice", models.RoleUser),
		trainer: seedUser(t, db, "coach", models.RoleTrainer),
	}
	ctx := context.Background()
	var err error
	f.squat, err = svc.CreateWorkout(ctx, f.trainer, WorkoutInput{Name: "Squat", Duration: 20, CaloriesBurned: 150, Goal: models.GoalGainMuscle}, nil)
	require.NoError(t, err)
	f.run, err = svc.CreateWorkout(ctx, f.trainer, WorkoutInput{Name: "Run", Duration: 30, CaloriesBurned: 300, Goal: models.GoalLoseWeight}, nil)
	require.NoError(t, err)
	return f
}

func TestCreateWorkoutRequiresTrainer(t *testing.T) {
	f := newWorkoutFixture(t)
	_, err := f.svc.CreateWorkout(context.Background(), f.alice, WorkoutInput{Name: "Plank"}, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPlanStatusFollowsSessions(t *testing.T) {
	ctx := context.Background()
	f := newWorkoutFixture(t)

	plan, err := f.svc.CreatePlan(ctx, f.alice, WorkoutPlanInput{
		PlanName:  "May",
		StartDate: "2026-05-01",
		EndDate:   "2026-05-07",
		Sessions: []SessionInput{
			{WorkoutID: f.squat.ID, Date: "2026-05-01"},
			{WorkoutID: f.run.ID, Date: "2026-05-02"},
		},
	})
	require.NoError(t, err)
	require.Len(t, plan.Sessions, 2)
	assert.Equal(t, models.StatusPending, plan.Status)
	assert.Equal(t, "Squat", plan.Sessions[0].Workout.Name)

	plan, err = f.svc.SetSessionStatus(ctx, f.alice, plan.ID, plan.Sessions[0].ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, plan.Status)
	assert.Empty(t, f.events.keys())

	plan, err = f.svc.SetSessionStatus(ctx, f.alice, plan.ID, plan.Sessions[1].ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, plan.Status)
	assert.Equal(t, []string{EventPlanStatusChanged}, f.events.keys())

	// adding a pending session reopens the plan
	plan, err = f.svc.AddWorkout(ctx, f.alice, plan.ID, SessionInput{WorkoutID: f.run.ID, Date: "2026-05-03"})
	require.NoError(t, err)
	require.Len(t, plan.Sessions, 3)
	assert.Equal(t, models.StatusPending, plan.Status)

	// removing it completes the plan again
	plan, err = f.svc.RemoveWorkout(ctx, f.alice, plan.ID, plan.Sessions[2].ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, plan.Status)
	assert.Len(t, f.events.keys(), 3)

	plan, err = f.svc.SetPlanStatus(ctx, f.alice, plan.ID, models.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, plan.Status)
	for _, s := range plan.Sessions {
		assert.Equal(t, models.StatusPending, s.Status)
	}
}

func TestPlanWithoutSessionsStaysPending(t *testing.T) {
	ctx := context.Background()
	f := newWorkoutFixture(t)

	plan, err := f.svc.CreatePlan(ctx, f.alice, WorkoutPlanInput{StartDate: "2026-05-01", EndDate: "2026-05-02"})
	require.NoError(t, err)
	plan, err = f.svc.SetPlanStatus(ctx, f.alice, plan.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, plan.Status)
	assert.Empty(t, plan.Sessions)
}

func TestReplacingSessionsRecomputesStatus(t *testing.T) {
	ctx := context.Background()
	f := newWorkoutFixture(t)

	plan, err := f.svc.CreatePlan(ctx, f.alice, WorkoutPlanInput{
		StartDate: "2026-05-01",
		EndDate:   "2026-05-07",
		Sessions: []SessionInput{
			{WorkoutID: f.squat.ID, Date: "2026-05-01", Status: models.StatusCompleted},
			{WorkoutID: f.run.ID, Date: "2026-05-02", Status: models.StatusCompleted},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, plan.Status)
	require.Len(t, f.events.keys(), 1)

	plan, err = f.svc.UpdatePlan(ctx, f.alice, plan.ID, WorkoutPlanPatch{Sessions: &[]SessionInput{
		{WorkoutID: f.run.ID, Date: "2026-05-04"},
	}})
	require.NoError(t, err)
	require.Len(t, plan.Sessions, 1)
	assert.Equal(t, models.StatusPending, plan.Status)
	assert.Equal(t, []string{EventPlanStatusChanged, EventPlanStatusChanged}, f.events.keys())
}

func TestNarrowingPlanKeepsSessionsInside(t *testing.T) {
	ctx := context.Background()
	f := newWorkoutFixture(t)

	plan, err := f.svc.CreatePlan(ctx, f.alice, WorkoutPlanInput{
		StartDate: "2026-05-01",
		EndDate:   "2026-05-10",
		Sessions:  []SessionInput{{WorkoutID: f.squat.ID, Date: "2026-05-09"}},
	})
	require.NoError(t, err)

	var ve *ValidationError
	end := "2026-05-03"
	_, err = f.svc.UpdatePlan(ctx, f.alice, plan.ID, WorkoutPlanPatch{EndDate: &end})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "end_date")

	start := "2026-05-09"
	_, err = f.svc.UpdatePlan(ctx, f.alice, plan.ID, WorkoutPlanPatch{StartDate: &start})
	require.NoError(t, err)
	start = "2026-05-10"
	_, err = f.svc.UpdatePlan(ctx, f.alice, plan.ID, WorkoutPlanPatch{StartDate: &start})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "start_date")

	got, err := f.svc.GetPlan(ctx, f.alice, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-05-09", got.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2026-05-10", got.EndDate.Format("2006-01-02"))

	// moving the range and the sessions together is fine
	end = "2026-05-03"
	start = "2026-05-01"
	plan, err = f.svc.UpdatePlan(ctx, f.alice, plan.ID, WorkoutPlanPatch{
		StartDate: &start,
		EndDate:   &end,
		Sessions:  &[]SessionInput{{WorkoutID: f.run.ID, Date: "2026-05-02"}},
	})
	require.NoError(t, err)
	require.Len(t, plan.Sessions, 1)
}

func TestPlanValidation(t *testing.T) {
	ctx := context.Background()
	f := newWorkoutFixture(t)

	cases := map[string]struct {
		in    WorkoutPlanInput
		field string
	}{
		"end before start": {
			in:    WorkoutPlanInput{StartDate: "2026-05-07", EndDate: "2026-05-01"},
			field: "end_date",
		},
		"session outside range": {
			in: WorkoutPlanInput{StartDate: "2026-05-01", EndDate: "2026-05-07", Sessions: []SessionInput{
				{WorkoutID: f.squat.ID, Date: "2026-05-09"},
			}},
			field: "date",
		},
		"unknown workout": {
			in: WorkoutPlanInput{StartDate: "2026-05-01", EndDate: "2026-05-07", Sessions: []SessionInput{
				{WorkoutID: 999, Date: "2026-05-02"},
			}},
			field: "workout_id",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CreatePlan(ctx, f.alice, tc.in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tc.field)
		})
	}

	_, err := f.svc.CreatePlan(ctx, f.trainer, WorkoutPlanInput{StartDate: "2026-05-01", EndDate: "2026-05-02"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPlanAccessAndTodayFilter(t *testing.T) {
	ctx := context.Background()
	f := newWorkoutFixture(t)

	current, err := f.svc.CreatePlan(ctx, f.alice, WorkoutPlanInput{StartDate: "2026-05-01", EndDate: "2026-05-10"})
	require.NoError(t, err)
	_, err = f.svc.CreatePlan(ctx, f.alice, WorkoutPlanInput{StartDate: "2026-04-01", EndDate: "2026-04-10"})
	require.NoError(t, err)

	today, err := f.svc.ListPlans(ctx, f.alice, PlanFilter{Today: true})
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, current.ID, today[0].ID)

	// an unconnected trainer sees nothing and cannot modify
	list, err := f.svc.ListPlans(ctx, f.trainer, PlanFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = f.svc.GetPlan(ctx, f.trainer, current.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	connectTo(t, f.svc.db, f.alice, f.trainer)
	got, err := f.svc.GetPlan(ctx, f.trainer, current.ID)
	require.NoError(t, err)
	assert.Equal(t, current.ID, got.ID)
	_, err = f.svc.SetPlanStatus(ctx, f.trainer, current.ID, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.svc.DeletePlan(ctx, f.alice, current.ID))
	_, err = f.svc.GetPlan(ctx, f.alice, current.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletedWorkoutHiddenFromCatalog(t *testing.T) {
	ctx := context.Background()
	f := newWorkoutFixture(t)

	other := seedUser(t, f.svc.db, "coach2", models.RoleTrainer)
	assert.ErrorIs(t, f.svc.DeleteWorkout(ctx, other, f.squat.ID), ErrForbidden)
	require.NoError(t, f.svc.DeleteWorkout(ctx, f.trainer, f.squat.ID))

	list, err := f.svc.ListWorkouts(ctx, f.alice, CatalogFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Run", list[0].Name)

	_, err = f.svc.GetWorkout(ctx, f.alice, f.squat.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.GetWorkout(ctx, other, f.squat.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	hidden, err := f.svc.GetWorkout(ctx, f.trainer, f.squat.ID)
	require.NoError(t, err)
	assert.False(t, hidden.Active)
	visible, err := f.svc.GetWorkout(ctx, f.alice, f.run.ID)
	require.NoError(t, err)
	assert.Equal(t, "Run", visible.Name)

	suggested, err := f.svc.ListWorkouts(ctx, f.alice, CatalogFilter{SuggestedByExpert: true})
	require.NoError(t, err)
	assert.Empty(t, suggested)

	connectTo(t, f.svc.db, f.alice, f.trainer)
	suggested, err = f.svc.ListWorkouts(ctx, f.alice, CatalogFilter{SuggestedByExpert: true})
	require.NoError(t, err)
	assert.Len(t, suggested, 1)

	_, err = f.svc.CreatePlan(ctx, f.alice, WorkoutPlanInput{StartDate: "2026-05-01", EndDate: "2026-05-02", Sessions: []SessionInput{
		{WorkoutID: f.squat.ID, Date: "2026-05-01"},
	}})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
