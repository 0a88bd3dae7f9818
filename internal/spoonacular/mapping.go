package spoonacular

import (
	"strings"

	"github.com/pageza/mealmate/backend/internal/types"
)

// DietParam maps a dietary preference to the provider's diet vocabulary.
// The second result is false for tags the provider has no diet for.
func DietParam(p types.DietaryPreference) (string, bool) {
	switch p {
	case types.Balanced:
		return "balanced", true
	case types.HighProtein:
		return "high-protein", true
	case types.LowCarb:
		return "low-carb", true
	case types.Vegetarian:
		return "vegetarian", true
	case types.Vegan:
		return "vegan", true
	default:
		return "", false
	}
}

// IntoleranceParam maps an allergy tag to the provider's intolerance
// vocabulary. Tags outside the known set pass through lower-cased.
func IntoleranceParam(allergy string) string {
	a := strings.ToLower(strings.TrimSpace(allergy))
	switch a {
	case "dairy":
		return "dairy"
	case "eggs", "egg":
		return "egg"
	case "nuts", "tree nuts", "tree-nut":
		return "tree-nut"
	case "shellfish":
		return "shellfish"
	case "wheat", "gluten":
		return "gluten"
	default:
		return a
	}
}

func dietValues(params types.SearchParams) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(p types.DietaryPreference) {
		if v, ok := DietParam(p); ok && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	if params.Diet != "" {
		add(params.Diet)
	}
	for _, h := range params.Health {
		add(h)
	}
	return out
}

func intoleranceValues(excluded []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range excluded {
		v := IntoleranceParam(e)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func excludedIngredients(excluded []string) []string {
	out := make([]string, 0, len(excluded))
	for _, e := range excluded {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			out = append(out, e)
		}
	}
	return out
}
