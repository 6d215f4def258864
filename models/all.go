package models

// All lists every table for AutoMigrate, parents first.
func All() []any {
	return []any{
		&User{},
		&Expert{},
		&RegularUser{},
		&HealthProfile{},
		&HealthTracking{},
		&Workout{},
		&WorkoutPlan{},
		&WorkoutSession{},
		&Meal{},
		&MealPlan{},
		&MealPlanMeal{},
		&HealthJournal{},
		&Reminder{},
		&Review{},
		&ChatMessage{},
		&UserDevice{},
	}
}
