package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealmate/backend/internal/apperrors"
	"github.com/pageza/mealmate/backend/internal/store"
	"github.com/pageza/mealmate/backend/internal/types"
)

type memoryObjects struct {
	objects map[string]string
	err     error
}

func (m *memoryObjects) PutText(_ context.Context, key, body string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.objects == nil {
		m.objects = make(map[string]string)
	}
	m.objects[key] = body
	return "https://files.example/" + key, nil
}

func TestFormatDailyPlan(t *testing.T) {
	day := types.DayPlan{
		Breakfast: meal("Porridge", 350, 12, 60, 6),
		Dinner:    meal("Salmon", 650, 45, 30, 35),
	}

	got := FormatDailyPlan("2024-03-04", day)
	want := "MY MEAL PLAN FOR MONDAY, MAR 4, 2024\n\n" +
		"BREAKFAST\nPorridge\nCalories: 350 | Protein: 12g | Carbs: 60g | Fat: 6g\n\n" +
		"DINNER\nSalmon\nCalories: 650 | Protein: 45g | Carbs: 30g | Fat: 35g\n\n" +
		"DAILY TOTALS\nCalories: 1000 | Protein: 57g | Carbs: 90g | Fat: 41g\n\n" +
		shareFooter
	assert.Equal(t, want, got)
}

func TestFormatDailyPlanOmitsMissingMacros(t *testing.T) {
	got := FormatDailyPlan("2024-03-04", types.DayPlan{Lunch: &types.Meal{Name: "Mystery"}})
	assert.Contains(t, got, "LUNCH\nMystery\n\n")
	assert.Contains(t, got, "DAILY TOTALS\nCalories: 0 |")
}

func TestShareDay(t *testing.T) {
	plans, docs := setupPlanService(t, &scriptedGenerator{})
	ctx := context.Background()
	userID := uuid.New()
	require.NoError(t, docs.Set(ctx, userID, store.MealPlans, types.MealPlan{
		"2024-03-04": {Lunch: meal("Wrap", 500, 20, 50, 15)},
	}))

	objects := &memoryObjects{}
	svc := NewSharingService(plans, objects, nil)

	resp, err := svc.ShareDay(ctx, userID, "2024-03-04")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.URL, "https://files.example/shared-plans/"+userID.String()+"/2024-03-04-"))
	assert.Contains(t, resp.Content, "Wrap")
	require.Len(t, objects.objects, 1)
	for _, body := range objects.objects {
		assert.Equal(t, resp.Content, body)
	}

	_, err = svc.ShareDay(ctx, userID, "2024-03-05")
	assert.ErrorIs(t, err, apperrors.ErrMealNotFound)

	_, err = svc.ShareDay(ctx, userID, "tomorrow")
	assert.ErrorIs(t, err, apperrors.ErrInvalidDate)
}

func TestShareDayWithoutObjectStore(t *testing.T) {
	plans, docs := setupPlanService(t, &scriptedGenerator{})
	ctx := context.Background()
	userID := uuid.New()
	require.NoError(t, docs.Set(ctx, userID, store.MealPlans, types.MealPlan{
		"2024-03-04": {Lunch: meal("Wrap", 500, 20, 50, 15)},
	}))

	resp, err := NewSharingService(plans, nil, nil).ShareDay(ctx, userID, "2024-03-04")
	require.NoError(t, err)
	assert.Empty(t, resp.URL)
	assert.NotEmpty(t, resp.Content)
}

func TestShareDayUploadFailure(t *testing.T) {
	plans, docs := setupPlanService(t, &scriptedGenerator{})
	ctx := context.Background()
	userID := uuid.New()
	require.NoError(t, docs.Set(ctx, userID, store.MealPlans, types.MealPlan{
		"2024-03-04": {Lunch: meal("Wrap", 500, 20, 50, 15)},
	}))

	_, err := NewSharingService(plans, &memoryObjects{err: errors.New("access denied")}, nil).ShareDay(ctx, userID, "2024-03-04")
	assert.Error(t, err)
}
