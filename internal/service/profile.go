package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/pageza/mealmate/backend/internal/store"
	"github.com/pageza/mealmate/backend/internal/types"
)

// ProfileService handles user profile operations
type ProfileService struct {
	docs Documents
}

// Ensure ProfileService implements IProfileService
var _ IProfileService = (*ProfileService)(nil)

// NewProfileService creates a new ProfileService instance
func NewProfileService(docs Documents) *ProfileService {
	return &ProfileService{
		docs: docs,
	}
}

// DefaultProfile is the profile every new account starts with.
func DefaultProfile(name, email string) types.Profile {
	return types.Profile{
		Name:  name,
		Email: email,
		Preferences: types.UserPreferences{
			CalorieGoal:        types.DefaultCalorieGoal,
			Allergies:          []string{},
			DietaryPreferences: []string{},
		},
	}
}

// GetProfile retrieves a user's profile, falling back to defaults
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	profile := DefaultProfile("", "")
	if _, err := s.docs.Get(ctx, userID, store.Profiles, &profile); err != nil {
		return nil, err
	}
	if profile.Preferences.CalorieGoal <= 0 {
		profile.Preferences.CalorieGoal = types.DefaultCalorieGoal
	}
	return &profile, nil
}

// UpdatePreferences replaces the user's meal preferences
func (s *ProfileService) UpdatePreferences(ctx context.Context, userID uuid.UUID, req *types.UpdatePreferencesRequest) (*types.Profile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Preferences = types.UserPreferences{
		CalorieGoal:        req.CalorieGoal,
		Allergies:          cleanTags(req.Allergies),
		DietaryPreferences: dietaryTags(req.DietaryPreferences),
		CuisinePreferences: cleanTags(req.CuisinePreferences),
		MealComplexity:     req.MealComplexity,
	}
	if profile.Preferences.CalorieGoal <= 0 {
		profile.Preferences.CalorieGoal = types.DefaultCalorieGoal
	}

	if err := s.docs.Set(ctx, userID, store.Profiles, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// dietaryTags keeps the recognised tags in their canonical spelling.
func dietaryTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[types.DietaryPreference]bool)
	for _, t := range tags {
		p, ok := types.ParseDietaryPreference(t)
		if !ok || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, string(p))
	}
	return out
}
