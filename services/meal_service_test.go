package services

import (
	"context"
	"testing"

	"github.com/hieuit01/BTL-CCNLTHD/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMealPlanLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewMealService(db, NewAccess(db), nil)

	alice := seedUser(t, db, "alice", models.RoleUser)
	nutri := seedUser(t, db, "nutri", models.RoleNutritionist)
	trainer := seedUser(t, db, "coach", models.RoleTrainer)

	_, err := svc.CreateMeal(ctx, trainer, MealInput{Name: "Oats"}, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	oats, err := svc.CreateMeal(ctx, nutri, MealInput{Name: "Oats", Calories: 350, Protein: 12, Carbs: 60, Fat: 6}, nil)
	require.NoError(t, err)
	salad, err := svc.CreateMeal(ctx, nutri, MealInput{Name: "Salad", Calories: 200, Goal: models.GoalLoseWeight}, nil)
	require.NoError(t, err)

	soup, err := svc.CreateMeal(ctx, nutri, MealInput{Name: "Soup", Calories: 120}, nil)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteMeal(ctx, nutri, soup.ID))
	_, err = svc.GetMeal(ctx, alice, soup.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetMeal(ctx, nutri, soup.ID)
	require.NoError(t, err)

	byGoal, err := svc.ListMeals(ctx, alice, CatalogFilter{Goal: models.GoalLoseWeight})
	require.NoError(t, err)
	require.Len(t, byGoal, 1)
	assert.Equal(t, salad.ID, byGoal[0].ID)

	plan, err := svc.CreatePlan(ctx, alice, MealPlanInput{
		PlanName:  "Tuần 1",
		StartDate: "2026-06-01",
		EndDate:   "2026-06-07",
		Meals: []PlanMealInput{
			{MealID: oats.ID, Date: "2026-06-01", MealTime: models.MealBreakfast},
		},
	})
	require.NoError(t, err)
	require.Len(t, plan.Meals, 1)
	assert.Equal(t, "Oats", plan.Meals[0].Meal.Name)

	plan, err = svc.AddMeal(ctx, alice, plan.ID, PlanMealInput{MealID: salad.ID, Date: "2026-06-02", MealTime: models.MealLunch})
	require.NoError(t, err)
	require.Len(t, plan.Meals, 2)

	_, err = svc.AddMeal(ctx, alice, plan.ID, PlanMealInput{MealID: salad.ID, Date: "2026-06-20", MealTime: models.MealLunch})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "date")

	// the nutritionist is not connected yet
	_, err = svc.GetPlan(ctx, nutri, plan.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	connectTo(t, db, alice, nutri)
	_, err = svc.GetPlan(ctx, nutri, plan.ID)
	require.NoError(t, err)
	_, err = svc.AddMeal(ctx, nutri, plan.ID, PlanMealInput{MealID: oats.ID, Date: "2026-06-03", MealTime: models.MealDinner})
	assert.ErrorIs(t, err, ErrForbidden)

	plan, err = svc.RemoveMeal(ctx, alice, plan.ID, plan.Meals[0].ID)
	require.NoError(t, err)
	require.Len(t, plan.Meals, 1)
	assert.Equal(t, salad.ID, plan.Meals[0].MealID)

	_, err = svc.RemoveMeal(ctx, alice, plan.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	// the salad stays planned on 06-02
	end := "2026-06-01"
	_, err = svc.UpdatePlan(ctx, alice, plan.ID, MealPlanPatch{EndDate: &end})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "end_date")
	got, err := svc.GetPlan(ctx, alice, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-06-07", got.EndDate.Format("2006-01-02"))

	end = "2026-06-02"
	plan, err = svc.UpdatePlan(ctx, alice, plan.ID, MealPlanPatch{EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, end, plan.EndDate.Format("2006-01-02"))
	require.NoError(t, svc.DeletePlan(ctx, alice, plan.ID))
	var left int64
	require.NoError(t, db.Model(&models.MealPlanMeal{}).Count(&left).Error)
	assert.Zero(t, left)
}
