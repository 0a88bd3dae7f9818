package service

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/pageza/mealmate/backend/internal/apperrors"
	"github.com/pageza/mealmate/backend/internal/quota"
	"github.com/pageza/mealmate/backend/internal/types"
)

// MealGenerator turns a period and a user's preferences into one meal,
// relaxing the search until the provider returns something.
type MealGenerator struct {
	gateway RecipeGateway
	sink    RecipeSink
	intn    func(n int) int
	logger  *zap.Logger
}

var _ IMealGenerator = (*MealGenerator)(nil)

// NewMealGenerator creates a generator. sink may be nil.
func NewMealGenerator(gateway RecipeGateway, sink RecipeSink, logger *zap.Logger) *MealGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MealGenerator{
		gateway: gateway,
		sink:    sink,
		intn:    rand.IntN,
		logger:  logger,
	}
}

type searchTier struct {
	name   string
	query  string
	params types.SearchParams
}

// CalorieTarget is the share of the daily goal given to period.
func CalorieTarget(goal int, period types.Period) int {
	return int(math.Round(float64(goal) * period.CalorieShare()))
}

func searchTiers(term string, period types.Period, prefs types.UserPreferences) []searchTier {
	calories := CalorieTarget(prefs.CalorieGoal, period)

	full := types.SearchParams{
		MealType:     string(period),
		Calories:     calories,
		Excluded:     prefs.Allergies,
		Cuisines:     prefs.CuisinePreferences,
		MaxReadyTime: prefs.MealComplexity.MaxReadyMinutes(),
	}
	switch {
	case prefs.HasPreference(types.HighProtein):
		full.Diet = types.HighProtein
	case prefs.HasPreference(types.LowCarb):
		full.Diet = types.LowCarb
	}
	for _, p := range []types.DietaryPreference{types.Vegetarian, types.Vegan} {
		if prefs.HasPreference(p) {
			full.Health = append(full.Health, p)
		}
	}

	relaxed := full
	relaxed.Diet = ""
	relaxed.Health = nil

	return []searchTier{
		{name: "full", query: term, params: full},
		{name: "relaxed", query: term, params: relaxed},
		{name: "minimal", query: term, params: types.SearchParams{MealType: string(period), Calories: calories}},
		{name: "generic", query: string(period)},
	}
}

// GenerateMeal finds one meal for period. It fails with ErrNoResultsFound
// only when every search tier comes back empty; provider errors abort.
func (g *MealGenerator) GenerateMeal(ctx context.Context, budget quota.Budget, period types.Period, prefs types.UserPreferences) (*types.Meal, error) {
	if prefs.CalorieGoal <= 0 {
		prefs.CalorieGoal = types.DefaultCalorieGoal
	}

	terms := QueryTerms(period, prefs)
	term := terms[g.intn(len(terms))]

	for _, tier := range searchTiers(term, period, prefs) {
		recipes, err := g.gateway.SearchRecipes(ctx, budget, tier.query, tier.params)
		if err != nil {
			return nil, fmt.Errorf("failed to search %s recipes: %w", period, err)
		}
		if len(recipes) == 0 {
			g.logger.Info("no recipes found, relaxing search",
				zap.String("period", string(period)),
				zap.String("tier", tier.name),
				zap.String("query", tier.query),
			)
			continue
		}

		g.remember(ctx, recipes)

		recipe := recipes[g.intn(len(recipes))]
		steps := g.gateway.GetRecipeInstructions(ctx, budget, recipe.ID)
		meal := MealFromRecipe(recipe, steps)
		return &meal, nil
	}
	return nil, fmt.Errorf("%s: %w", period, apperrors.ErrNoResultsFound)
}

func (g *MealGenerator) remember(ctx context.Context, recipes []types.Recipe) {
	if g.sink == nil {
		return
	}
	if err := g.sink.Remember(ctx, recipes); err != nil {
		g.logger.Warn("failed to cache recipes", zap.Error(err))
	}
}

// MealFromRecipe converts a provider recipe into a plan meal with whole-number macros.
func MealFromRecipe(r types.Recipe, steps []types.Instruction) types.Meal {
	var image *string
	if r.Image != "" {
		img := r.Image
		image = &img
	}
	return types.Meal{
		ID:           r.ID,
		Name:         r.Label,
		Calories:     int(math.Round(r.Calories)),
		Protein:      int(math.Round(r.Protein)),
		Carbs:        int(math.Round(r.Carbs)),
		Fat:          int(math.Round(r.Fat)),
		Image:        image,
		Ingredients:  r.IngredientLines,
		URL:          r.URL,
		Source:       r.Source,
		TotalTime:    r.TotalTime,
		FoodCategory: r.FoodCategory,
		Instructions: steps,
	}
}
