package spoonacular

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pageza/mealmate/backend/internal/types"
)

func TestDietParam(t *testing.T) {
	tests := []struct {
		in   types.DietaryPreference
		want string
		ok   bool
	}{
		{types.Balanced, "balanced", true},
		{types.HighProtein, "high-protein", true},
		{types.LowCarb, "low-carb", true},
		{types.Vegetarian, "vegetarian", true},
		{types.Vegan, "vegan", true},
		{types.DietaryPreference("Paleo"), "", false},
	}
	for _, tt := range tests {
		got, ok := DietParam(tt.in)
		assert.Equal(t, tt.want, got, string(tt.in))
		assert.Equal(t, tt.ok, ok, string(tt.in))
	}
}

func TestIntoleranceParam(t *testing.T) {
	assert.Equal(t, "dairy", IntoleranceParam("Dairy"))
	assert.Equal(t, "egg", IntoleranceParam("Eggs"))
	assert.Equal(t, "egg", IntoleranceParam("eggs"))
	assert.Equal(t, "tree-nut", IntoleranceParam("Nuts"))
	assert.Equal(t, "shellfish", IntoleranceParam("SHELLFISH"))
	assert.Equal(t, "gluten", IntoleranceParam("Wheat"))
	assert.Equal(t, "pork", IntoleranceParam(" Pork "))
}

func TestSearchParamsToQuery(t *testing.T) {
	t.Run("unknown diet tags are dropped", func(t *testing.T) {
		q := SearchParamsToQuery("k", "dinner", types.SearchParams{Diet: "Paleo", Health: []types.DietaryPreference{types.Vegan}})
		assert.Equal(t, "vegan", q.Get("diet"))
	})

	t.Run("diet and health combine", func(t *testing.T) {
		q := SearchParamsToQuery("k", "dinner", types.SearchParams{Diet: types.LowCarb, Health: []types.DietaryPreference{types.Vegetarian, types.LowCarb}})
		assert.Equal(t, "low-carb,vegetarian", q.Get("diet"))
	})

	t.Run("calorie floor is clamped at zero", func(t *testing.T) {
		q := SearchParamsToQuery("k", "snack", types.SearchParams{Calories: 100})
		assert.Equal(t, "0", q.Get("minCalories"))
		assert.Equal(t, "250", q.Get("maxCalories"))
	})

	t.Run("empty params send only the basics", func(t *testing.T) {
		q := SearchParamsToQuery("k", "lunch", types.SearchParams{})
		assert.ElementsMatch(t, []string{"apiKey", "query", "number", "addNutrition"}, keys(q))
	})

	t.Run("cuisine and ready time", func(t *testing.T) {
		q := SearchParamsToQuery("k", "lunch", types.SearchParams{Cuisines: []string{"italian", "greek"}, MaxReadyTime: 30})
		assert.Equal(t, "italian,greek", q.Get("cuisine"))
		assert.Equal(t, "30", q.Get("maxReadyTime"))
	})
}

func keys(v map[string][]string) []string {
	out := make([]string, 0, len(v))
	for k := range v {
		out = append(out, k)
	}
	return out
}
