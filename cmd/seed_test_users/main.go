package main

import (
	"context"
	"errors"
	"log"

	"go.uber.org/zap"

	"github.com/pageza/mealmate/backend/config"
	"github.com/pageza/mealmate/backend/internal/apperrors"
	"github.com/pageza/mealmate/backend/internal/database"
	"github.com/pageza/mealmate/backend/internal/logging"
	"github.com/pageza/mealmate/backend/internal/service"
	"github.com/pageza/mealmate/backend/internal/store"
	"github.com/pageza/mealmate/backend/internal/types"
	"github.com/pageza/mealmate/backend/migrations"
)

const testPassword = "testpassword123"

var testUsers = []struct {
	name        string
	email       string
	preferences types.UpdatePreferencesRequest
}{
	{
		name:  "John Doe",
		email: "john.doe@example.com",
		preferences: types.UpdatePreferencesRequest{
			CalorieGoal: 2000,
		},
	},
	{
		name:  "Jane Smith",
		email: "jane.smith@example.com",
		preferences: types.UpdatePreferencesRequest{
			CalorieGoal:        1800,
			DietaryPreferences: []string{"Vegetarian"},
			Allergies:          []string{"Nuts"},
		},
	},
	{
		name:  "Sam Lifter",
		email: "sam.lifter@example.com",
		preferences: types.UpdatePreferencesRequest{
			CalorieGoal:        2800,
			DietaryPreferences: []string{"High-Protein"},
			MealComplexity:     types.Simple,
		},
	},
	{
		name:  "Vera Green",
		email: "vera.green@example.com",
		preferences: types.UpdatePreferencesRequest{
			CalorieGoal:        1900,
			DietaryPreferences: []string{"Vegan", "Low-Carb"},
			CuisinePreferences: []string{"thai", "indian"},
		},
	},
}

func main() {
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

	docs := store.NewDocumentStore(db, nil, logger)
	auth := service.NewAuthService(db, docs, cfg.JWTSecret, logger)
	profiles := service.NewProfileService(docs)

	for _, u := range testUsers {
		user, _, err := auth.Register(ctx, &types.RegisterRequest{Name: u.name, Email: u.email, Password: testPassword})
		if errors.Is(err, apperrors.ErrEmailTaken) {
			logger.Info("test user already exists", zap.String("email", u.email))
			continue
		}
		if err != nil {
			logger.Fatal("failed to create test user", zap.String("email", u.email), zap.Error(err))
		}

		prefs := u.preferences
		if _, err := profiles.UpdatePreferences(ctx, user.ID, &prefs); err != nil {
			logger.Fatal("failed to set preferences", zap.String("email", u.email), zap.Error(err))
		}
		logger.Info("created test user", zap.String("email", u.email), zap.String("id", user.ID.String()))
	}

	logger.Info("test users ready", zap.String("password", testPassword))
}
