package service

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealmate/backend/internal/apperrors"
	"github.com/pageza/mealmate/backend/internal/store"
	"github.com/pageza/mealmate/backend/internal/types"
)

func setupPlanService(t *testing.T, gen IMealGenerator) (*PlanService, *store.DocumentStore) {
	t.Helper()
	docs := setupDocs(t)
	svc := NewPlanService(docs, gen, stubBudgets{}, NewProfileService(docs), nil)
	return svc, docs
}

func meal(name string, cal, protein, carbs, fat int, ingredients ...string) *types.Meal {
	return &types.Meal{Name: name, Calories: cal, Protein: protein, Carbs: carbs, Fat: fat, Ingredients: ingredients}
}

func TestGeneratePlanValidation(t *testing.T) {
	svc, _ := setupPlanService(t, &scriptedGenerator{})
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.GeneratePlan(ctx, userID, &types.GeneratePlanRequest{StartDate: "2024-03-01", NumberOfDays: 0, Periods: types.Periods}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDayCount)

	_, err = svc.GeneratePlan(ctx, userID, &types.GeneratePlanRequest{StartDate: "2024-03-01", NumberOfDays: -1, Periods: types.Periods}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDayCount)

	_, err = svc.GeneratePlan(ctx, userID, &types.GeneratePlanRequest{StartDate: "2024-03-01", NumberOfDays: 2}, nil)
	assert.ErrorIs(t, err, apperrors.ErrNoMealPeriods)

	_, err = svc.GeneratePlan(ctx, userID, &types.GeneratePlanRequest{StartDate: "03/01/2024", NumberOfDays: 2, Periods: types.Periods}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDate)

	_, err = svc.GeneratePlan(ctx, userID, &types.GeneratePlanRequest{StartDate: "2024-03-01", NumberOfDays: 1, Periods: []types.Period{"brunch"}}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)
}

func TestGeneratePlanDayLimit(t *testing.T) {
	gen := &scriptedGenerator{}
	svc, _ := setupPlanService(t, gen)
	ctx := context.Background()
	userID := uuid.New()

	result, err := svc.GeneratePlan(ctx, userID, &types.GeneratePlanRequest{
		StartDate:    "2024-03-01",
		NumberOfDays: types.MaxPlanDays,
		Periods:      []types.Period{types.Lunch},
	}, nil)
	require.NoError(t, err)
	assert.Len(t, result.Plan, types.MaxPlanDays)
	assert.Equal(t, types.MaxPlanDays, gen.calls)

	for _, days := range []int{types.MaxPlanDays + 1, math.MaxInt} {
		assert.NotPanics(t, func() {
			_, err = svc.GeneratePlan(ctx, userID, &types.GeneratePlanRequest{StartDate: "2024-03-01", NumberOfDays: days, Periods: types.Periods}, nil)
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidDayCount, "days=%d", days)
	}
	assert.Equal(t, types.MaxPlanDays, gen.calls, "oversized requests generate nothing")
}

func TestGeneratePlanFillsEverySlot(t *testing.T) {
	gen := &scriptedGenerator{}
	svc, _ := setupPlanService(t, gen)
	ctx := context.Background()
	userID := uuid.New()

	var progress [][2]int
	result, err := svc.GeneratePlan(ctx, userID, &types.GeneratePlanRequest{
		StartDate:    "2024-02-28",
		NumberOfDays: 3,
		Periods:      []types.Period{types.Breakfast, types.Dinner},
	}, func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-02-28", "2024-02-29", "2024-03-01"}, result.Plan.Dates())
	for _, date := range result.Plan.Dates() {
		day := result.Plan[date]
		assert.Equal(t, "breakfast meal", day.Breakfast.Name)
		assert.Nil(t, day.Lunch)
		assert.Equal(t, "dinner meal", day.Dinner.Name)
		assert.Equal(t, 600, day.Breakfast.Calories)
	}
	assert.Empty(t, result.Failures)
	assert.Equal(t, [][2]int{{1, 6}, {2, 6}, {3, 6}, {4, 6}, {5, 6}, {6, 6}}, progress)

	stored, err := svc.GetPlan(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, result.Plan, stored)
}

func TestGeneratePlanCollectsSlotFailures(t *testing.T) {
	gen := &scriptedGenerator{fail: map[int]error{
		2: fmt.Errorf("lunch: %w", apperrors.ErrNoResultsFound),
		3: &apperrors.ProviderError{StatusCode: 402},
	}}
	svc, _ := setupPlanService(t, gen)

	result, err := svc.GeneratePlan(context.Background(), uuid.New(), &types.GeneratePlanRequest{
		StartDate:    "2024-03-01",
		NumberOfDays: 1,
		Periods:      types.Periods,
	}, nil)
	require.NoError(t, err)

	day := result.Plan["2024-03-01"]
	assert.NotNil(t, day.Breakfast)
	assert.Nil(t, day.Lunch)
	assert.Nil(t, day.Dinner)

	require.Len(t, result.Failures, 2)
	assert.Equal(t, types.SlotError{Date: "2024-03-01", Period: types.Lunch, Error: apperrors.UserMessage(apperrors.ErrNoResultsFound)}, result.Failures[0])
	assert.Equal(t, types.Dinner, result.Failures[1].Period)
	assert.Equal(t, apperrors.UserMessage(&apperrors.ProviderError{StatusCode: 402}), result.Failures[1].Error)
}

func TestGeneratePlanMergesIntoExistingPlan(t *testing.T) {
	svc, docs := setupPlanService(t, &scriptedGenerator{})
	ctx := context.Background()
	userID := uuid.New()

	existing := types.MealPlan{
		"2024-03-01": {Lunch: meal("Kept lunch", 500, 20, 50, 10)},
		"2024-02-01": {Dinner: meal("Old dinner", 700, 30, 60, 20)},
	}
	require.NoError(t, docs.Set(ctx, userID, store.MealPlans, existing))

	result, err := svc.GeneratePlan(ctx, userID, &types.GeneratePlanRequest{
		StartDate:    "2024-03-01",
		NumberOfDays: 1,
		Periods:      []types.Period{types.Breakfast},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Kept lunch", result.Plan["2024-03-01"].Lunch.Name)
	assert.Equal(t, "breakfast meal", result.Plan["2024-03-01"].Breakfast.Name)
	assert.Equal(t, "Old dinner", result.Plan["2024-02-01"].Dinner.Name)
}

func TestGeneratePlanCancelledPersistsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gen := &scriptedGenerator{cancel: cancel, after: 2}
	svc, docs := setupPlanService(t, gen)
	userID := uuid.New()

	_, err := svc.GeneratePlan(ctx, userID, &types.GeneratePlanRequest{
		StartDate:    "2024-03-01",
		NumberOfDays: 2,
		Periods:      types.Periods,
	}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, gen.calls)

	var plan types.MealPlan
	found, err := docs.Get(context.Background(), userID, store.MealPlans, &plan)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGenerateSlot(t *testing.T) {
	svc, _ := setupPlanService(t, &scriptedGenerator{})
	ctx := context.Background()
	userID := uuid.New()

	m, err := svc.GenerateSlot(ctx, userID, "2024-03-05", types.Lunch)
	require.NoError(t, err)
	assert.Equal(t, "lunch meal", m.Name)

	plan, err := svc.GetPlan(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "lunch meal", plan["2024-03-05"].Lunch.Name)

	_, err = svc.GenerateSlot(ctx, userID, "2024-03-05", "supper")
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)
}

func TestGenerateSlotFailureAborts(t *testing.T) {
	svc, _ := setupPlanService(t, &scriptedGenerator{fail: map[int]error{1: apperrors.ErrNoResultsFound}})
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.GenerateSlot(ctx, userID, "2024-03-05", types.Lunch)
	assert.ErrorIs(t, err, apperrors.ErrNoResultsFound)

	plan, err := svc.GetPlan(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestCopyPasteDelete(t *testing.T) {
	svc, docs := setupPlanService(t, &scriptedGenerator{})
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.PasteSlot(ctx, userID, "2024-03-02", types.Dinner)
	assert.ErrorIs(t, err, apperrors.ErrEmptyClipboard)

	_, err = svc.CopySlot(ctx, userID, "2024-03-01", types.Lunch)
	assert.ErrorIs(t, err, apperrors.ErrMealNotFound)

	require.NoError(t, docs.Set(ctx, userID, store.MealPlans, types.MealPlan{
		"2024-03-01": {Lunch: meal("Curry", 650, 25, 70, 20)},
	}))

	copied, err := svc.CopySlot(ctx, userID, "2024-03-01", types.Lunch)
	require.NoError(t, err)
	assert.Equal(t, "Curry", copied.Name)

	pasted, err := svc.PasteSlot(ctx, userID, "2024-03-02", types.Dinner)
	require.NoError(t, err)
	assert.Equal(t, "Curry", pasted.Name)

	plan, err := svc.GetPlan(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Curry", plan["2024-03-02"].Dinner.Name)

	require.NoError(t, svc.DeleteSlot(ctx, userID, "2024-03-01", types.Lunch))
	plan, err = svc.GetPlan(ctx, userID)
	require.NoError(t, err)
	_, exists := plan["2024-03-01"]
	assert.False(t, exists, "empty day should be pruned")

	assert.ErrorIs(t, svc.DeleteSlot(ctx, userID, "2024-03-01", types.Lunch), apperrors.ErrMealNotFound)
}

func TestComputeStats(t *testing.T) {
	plan := types.MealPlan{
		"2024-03-01": {Breakfast: meal("a", 400, 20, 50, 10), Lunch: meal("b", 600, 31, 70, 15)},
		"2024-03-02": {Dinner: meal("c", 800, 40, 90, 30)},
		"2024-03-05": {Dinner: meal("d", 900, 99, 99, 99)},
	}

	stats := ComputeStats(plan, "2024-03-01", "2024-03-02")
	assert.Equal(t, types.PlanStats{
		TotalCalories: 1800,
		AvgProtein:    30,
		AvgCarbs:      70,
		AvgFat:        18,
		MealCount:     3,
	}, stats)

	assert.Equal(t, types.PlanStats{}, ComputeStats(plan, "2024-04-01", "2024-04-30"))
}

func TestStatsValidatesRange(t *testing.T) {
	svc, _ := setupPlanService(t, &scriptedGenerator{})
	ctx := context.Background()

	_, err := svc.Stats(ctx, uuid.New(), "2024-03-05", "2024-03-01")
	assert.ErrorIs(t, err, apperrors.ErrInvalidDate)

	stats, err := svc.Stats(ctx, uuid.New(), "2024-03-01", "2024-03-01")
	require.NoError(t, err)
	assert.Zero(t, stats.MealCount)
}

func TestTemplates(t *testing.T) {
	svc, docs := setupPlanService(t, &scriptedGenerator{})
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	userID := uuid.New()

	list, err := svc.ListTemplates(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, docs.Set(ctx, userID, store.MealPlans, types.MealPlan{
		"2024-03-01": {Breakfast: meal("Oats", 350, 12, 60, 6)},
	}))
	tmpl, err := svc.CreateTemplate(ctx, userID, "  Cutting week ")
	require.NoError(t, err)
	assert.Equal(t, "Cutting week", tmpl.Name)
	assert.NotEqual(t, uuid.Nil, tmpl.ID)
	assert.Equal(t, svc.now(), tmpl.CreatedAt)

	_, err = svc.CreateTemplate(ctx, userID, " ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	// Replace the plan, then bring the template back on top of it
	require.NoError(t, docs.Set(ctx, userID, store.MealPlans, types.MealPlan{
		"2024-03-01": {Dinner: meal("Pasta", 700, 25, 90, 20)},
	}))
	plan, err := svc.ApplyTemplate(ctx, userID, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oats", plan["2024-03-01"].Breakfast.Name)
	assert.Equal(t, "Pasta", plan["2024-03-01"].Dinner.Name)

	_, err = svc.ApplyTemplate(ctx, userID, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrTemplateNotFound)

	list, err = svc.ListTemplates(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, tmpl.ID, list[0].ID)
}

func TestWatchPlan(t *testing.T) {
	svc, _ := setupPlanService(t, &scriptedGenerator{})
	ctx := context.Background()
	userID := uuid.New()

	updates := make(chan types.MealPlan, 2)
	stop, err := svc.Watch(ctx, userID, func(p types.MealPlan) { updates <- p }, nil)
	require.NoError(t, err)
	defer stop()

	_, err = svc.GenerateSlot(ctx, userID, "2024-03-01", types.Dinner)
	require.NoError(t, err)

	select {
	case p := <-updates:
		assert.Equal(t, "dinner meal", p["2024-03-01"].Dinner.Name)
	case <-time.After(time.Second):
		t.Fatal("no plan update")
	}
}
