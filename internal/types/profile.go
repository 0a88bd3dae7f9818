package types

import (
	"strings"
)

// DietaryPreference is one of the fixed dietary tags a user can pick.
type DietaryPreference string

const (
	Balanced    DietaryPreference = "Balanced"
	HighProtein DietaryPreference = "High-Protein"
	LowCarb     DietaryPreference = "Low-Carb"
	Vegetarian  DietaryPreference = "Vegetarian"
	Vegan       DietaryPreference = "Vegan"
)

var dietaryPreferences = []DietaryPreference{Balanced, HighProtein, LowCarb, Vegetarian, Vegan}

// ParseDietaryPreference matches a tag case-insensitively against the fixed vocabulary.
func ParseDietaryPreference(tag string) (DietaryPreference, bool) {
	tag = strings.TrimSpace(tag)
	for _, p := range dietaryPreferences {
		if strings.EqualFold(string(p), tag) {
			return p, true
		}
	}
	return "", false
}

// MealComplexity bounds how long a recipe may take to prepare.
type MealComplexity string

const (
	Simple   MealComplexity = "simple"
	Moderate MealComplexity = "moderate"
	Complex  MealComplexity = "complex"
)

// MaxReadyMinutes maps a complexity tier to a preparation-time ceiling.
// Unknown or empty tiers are treated as moderate.
func (c MealComplexity) MaxReadyMinutes() int {
	switch c {
	case Simple:
		return 30
	case Complex:
		return 120
	default:
		return 60
	}
}

// UserPreferences drives every meal generation call.
type UserPreferences struct {
	CalorieGoal        int            `json:"calorieGoal"`
	Allergies          []string       `json:"allergies"`
	DietaryPreferences []string       `json:"dietaryPreferences"`
	CuisinePreferences []string       `json:"cuisinePreferences,omitempty"`
	MealComplexity     MealComplexity `json:"mealComplexity,omitempty"`
}

// HasPreference reports whether p is among the user's dietary tags.
func (p UserPreferences) HasPreference(want DietaryPreference) bool {
	for _, tag := range p.DietaryPreferences {
		if got, ok := ParseDietaryPreference(tag); ok && got == want {
			return true
		}
	}
	return false
}

// DefaultCalorieGoal is assigned to new accounts.
const DefaultCalorieGoal = 2000

// Profile is the per-user profile document.
type Profile struct {
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Preferences UserPreferences `json:"preferences"`
}

// UpdatePreferencesRequest replaces the user's preferences wholesale.
type UpdatePreferencesRequest struct {
	CalorieGoal        int            `json:"calorieGoal" binding:"required,gt=0"`
	Allergies          []string       `json:"allergies"`
	DietaryPreferences []string       `json:"dietaryPreferences"`
	CuisinePreferences []string       `json:"cuisinePreferences"`
	MealComplexity     MealComplexity `json:"mealComplexity" binding:"omitempty,oneof=simple moderate complex"`
}
