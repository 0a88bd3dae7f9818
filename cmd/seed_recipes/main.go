package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/pageza/mealmate/backend/config"
	"github.com/pageza/mealmate/backend/internal/database"
	"github.com/pageza/mealmate/backend/internal/logging"
	"github.com/pageza/mealmate/backend/internal/quota"
	"github.com/pageza/mealmate/backend/internal/service"
	"github.com/pageza/mealmate/backend/internal/spoonacular"
	"github.com/pageza/mealmate/backend/internal/types"
	"github.com/pageza/mealmate/backend/migrations"
)

// seedProfiles are the preference sets whose query banks get searched.
var seedProfiles = []types.UserPreferences{
	{CalorieGoal: 2000},
	{CalorieGoal: 2000, DietaryPreferences: []string{string(types.Vegetarian)}},
	{CalorieGoal: 2000, DietaryPreferences: []string{string(types.Vegan)}},
	{CalorieGoal: 2000, DietaryPreferences: []string{string(types.LowCarb)}},
	{CalorieGoal: 2500, DietaryPreferences: []string{string(types.HighProtein)}},
}

func main() {
	termsPerBank := flag.Int("terms", 2, "query terms to search per period and diet")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, false)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(ctx, db, migrations.Files, logger); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	// A standalone tracker keeps the seeder inside the shared key's budget
	budget := quota.NewTracker(nil, nil, quota.TrackerConfig{
		Scope:         "seed",
		DefaultAPIKey: cfg.SpoonacularAPIKey,
	}, logger)
	client := spoonacular.NewClient(cfg.SpoonacularBaseURL, nil, nil, logger)
	cache := service.NewRecipeCache(db, logger)

	total := 0
	for _, prefs := range seedProfiles {
		for _, period := range types.Periods {
			terms := service.QueryTerms(period, prefs)
			if len(terms) > *termsPerBank {
				terms = terms[:*termsPerBank]
			}
			for _, term := range terms {
				recipes, err := client.SearchRecipes(ctx, budget, term, types.SearchParams{
					MealType: string(period),
					Calories: service.CalorieTarget(prefs.CalorieGoal, period),
				})
				if err != nil {
					logger.Warn("search failed", zap.String("query", term), zap.Error(err))
					continue
				}
				if err := cache.Remember(ctx, recipes); err != nil {
					logger.Fatal("failed to cache recipes", zap.Error(err))
				}
				total += len(recipes)
				logger.Info("cached recipes", zap.String("query", term), zap.Int("count", len(recipes)))
			}
		}
	}

	logger.Info("recipe cache seeded", zap.Int("recipes", total))
}
