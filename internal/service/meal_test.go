package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealmate/backend/internal/apperrors"
	"github.com/pageza/mealmate/backend/internal/types"
)

var mixedPrefs = types.UserPreferences{
	CalorieGoal:        2000,
	Allergies:          []string{"Dairy"},
	DietaryPreferences: []string{"High-Protein", "vegetarian", "Low-Carb"},
	CuisinePreferences: []string{"italian"},
	MealComplexity:     types.Simple,
}

func newTestGenerator(gw *mockGateway, sink RecipeSink) *MealGenerator {
	g := NewMealGenerator(gw, sink, nil)
	g.intn = func(int) int { return 0 }
	return g
}

type recordingSink struct {
	seen []types.Recipe
	err  error
}

func (s *recordingSink) Remember(_ context.Context, recipes []types.Recipe) error {
	s.seen = append(s.seen, recipes...)
	return s.err
}

func TestCalorieTarget(t *testing.T) {
	assert.Equal(t, 600, CalorieTarget(2000, types.Breakfast))
	assert.Equal(t, 700, CalorieTarget(2000, types.Lunch))
	assert.Equal(t, 700, CalorieTarget(2000, types.Dinner))
	assert.Equal(t, 630, CalorieTarget(1800, types.Dinner))
}

func TestQueryTermsPriority(t *testing.T) {
	tests := []struct {
		prefs []string
		first string
	}{
		{nil, "breakfast"},
		{[]string{"High-Protein"}, "protein breakfast"},
		{[]string{"High-Protein", "Low-Carb"}, "keto breakfast"},
		{[]string{"Low-Carb", "Vegetarian"}, "vegetarian breakfast"},
		{[]string{"Vegetarian", "Vegan"}, "vegan breakfast"},
		{[]string{"Paleo"}, "breakfast"},
	}
	for _, tt := range tests {
		terms := QueryTerms(types.Breakfast, types.UserPreferences{DietaryPreferences: tt.prefs})
		require.Len(t, terms, 10)
		assert.Equal(t, tt.first, terms[0], "%v", tt.prefs)
	}
}

func TestSearchTiers(t *testing.T) {
	tiers := searchTiers("vegetarian breakfast", types.Breakfast, mixedPrefs)
	require.Len(t, tiers, 4)

	assert.Equal(t, types.SearchParams{
		MealType:     "breakfast",
		Calories:     600,
		Diet:         types.HighProtein,
		Health:       []types.DietaryPreference{types.Vegetarian},
		Excluded:     []string{"Dairy"},
		Cuisines:     []string{"italian"},
		MaxReadyTime: 30,
	}, tiers[0].params)

	assert.Equal(t, types.SearchParams{
		MealType:     "breakfast",
		Calories:     600,
		Excluded:     []string{"Dairy"},
		Cuisines:     []string{"italian"},
		MaxReadyTime: 30,
	}, tiers[1].params)
	assert.Equal(t, "vegetarian breakfast", tiers[1].query)

	assert.Equal(t, types.SearchParams{MealType: "breakfast", Calories: 600}, tiers[2].params)

	assert.Equal(t, "breakfast", tiers[3].query)
	assert.Equal(t, types.SearchParams{}, tiers[3].params)
}

func TestSearchTiersLowCarbOnly(t *testing.T) {
	tiers := searchTiers("keto dinner", types.Dinner, types.UserPreferences{
		CalorieGoal:        1800,
		DietaryPreferences: []string{"Low-Carb"},
	})
	assert.Equal(t, types.LowCarb, tiers[0].params.Diet)
	assert.Empty(t, tiers[0].params.Health)
	assert.Equal(t, 630, tiers[0].params.Calories)
	assert.Equal(t, 60, tiers[0].params.MaxReadyTime)
}

func TestGenerateMealFallsThroughTiers(t *testing.T) {
	gw := &mockGateway{}
	sink := &recordingSink{}
	g := newTestGenerator(gw, sink)
	tiers := searchTiers("vegetarian breakfast", types.Breakfast, mixedPrefs)

	gw.On("SearchRecipes", mock.Anything, mock.Anything, "vegetarian breakfast", tiers[0].params).Return([]types.Recipe{}, nil).Once()
	gw.On("SearchRecipes", mock.Anything, mock.Anything, "vegetarian breakfast", tiers[1].params).Return([]types.Recipe{}, nil).Once()
	gw.On("SearchRecipes", mock.Anything, mock.Anything, "vegetarian breakfast", tiers[2].params).Return([]types.Recipe{
		{ID: 7, Label: "Frittata", Image: "https://img/7.jpg", Calories: 612.6, Protein: 30.5, Carbs: 10.4, Fat: 40.49, IngredientLines: []string{"4 eggs"}, FoodCategory: "breakfast", TotalTime: 20},
		{ID: 8, Label: "Toast"},
	}, nil).Once()
	gw.On("GetRecipeInstructions", mock.Anything, mock.Anything, 7).Return([]types.Instruction{{Number: 1, Step: "Whisk."}}).Once()

	meal, err := g.GenerateMeal(context.Background(), stubBudget{}, types.Breakfast, mixedPrefs)
	require.NoError(t, err)

	assert.Equal(t, 7, meal.ID)
	assert.Equal(t, "Frittata", meal.Name)
	assert.Equal(t, 613, meal.Calories)
	assert.Equal(t, 31, meal.Protein)
	assert.Equal(t, 10, meal.Carbs)
	assert.Equal(t, 40, meal.Fat)
	require.NotNil(t, meal.Image)
	assert.Equal(t, "https://img/7.jpg", *meal.Image)
	assert.Equal(t, []types.Instruction{{Number: 1, Step: "Whisk."}}, meal.Instructions)
	assert.Len(t, sink.seen, 2)
	gw.AssertExpectations(t)
}

func TestGenerateMealNoResults(t *testing.T) {
	gw := &mockGateway{}
	g := newTestGenerator(gw, nil)
	gw.On("SearchRecipes", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]types.Recipe{}, nil).Times(4)

	_, err := g.GenerateMeal(context.Background(), stubBudget{}, types.Dinner, types.UserPreferences{})
	assert.ErrorIs(t, err, apperrors.ErrNoResultsFound)
	gw.AssertExpectations(t)
}

func TestGenerateMealProviderErrorAborts(t *testing.T) {
	gw := &mockGateway{}
	g := newTestGenerator(gw, nil)
	providerErr := &apperrors.ProviderError{StatusCode: 429}
	gw.On("SearchRecipes", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, providerErr).Once()

	_, err := g.GenerateMeal(context.Background(), stubBudget{}, types.Lunch, types.UserPreferences{})
	assert.ErrorIs(t, err, apperrors.ErrQuotaExceeded)
	gw.AssertNumberOfCalls(t, "SearchRecipes", 1)
}

func TestGenerateMealCacheFailureIsNotFatal(t *testing.T) {
	gw := &mockGateway{}
	g := newTestGenerator(gw, &recordingSink{err: errors.New("db down")})
	gw.On("SearchRecipes", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]types.Recipe{{ID: 1, Label: "Soup"}}, nil).Once()
	gw.On("GetRecipeInstructions", mock.Anything, mock.Anything, 1).Return([]types.Instruction{})

	meal, err := g.GenerateMeal(context.Background(), stubBudget{}, types.Lunch, types.UserPreferences{})
	require.NoError(t, err)
	assert.Equal(t, "Soup", meal.Name)
	assert.Nil(t, meal.Image)
}

func TestGenerateMealDefaultsCalorieGoal(t *testing.T) {
	gw := &mockGateway{}
	g := newTestGenerator(gw, nil)
	gw.On("SearchRecipes", mock.Anything, mock.Anything, "lunch", mock.MatchedBy(func(p types.SearchParams) bool {
		return p.Calories == 700
	})).Return([]types.Recipe{{ID: 3}}, nil).Once()
	gw.On("GetRecipeInstructions", mock.Anything, mock.Anything, 3).Return([]types.Instruction{})

	_, err := g.GenerateMeal(context.Background(), stubBudget{}, types.Lunch, types.UserPreferences{})
	require.NoError(t, err)
	gw.AssertExpectations(t)
}
