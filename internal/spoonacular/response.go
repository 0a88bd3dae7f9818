package spoonacular

import (
	"strings"

	"github.com/pageza/mealmate/backend/internal/types"
)

type nutrient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

type recipeSummary struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	ImageType string `json:"imageType"`
}

// searchResponse keeps Results as a pointer so a missing field can be told
// apart from an empty result list.
type searchResponse struct {
	Results *[]recipeSummary `json:"results"`
}

type nutrition struct {
	Nutrients []nutrient `json:"nutrients"`
}

type ingredient struct {
	Original string `json:"original"`
}

type recipeDetail struct {
	ID                  int          `json:"id"`
	Title               string       `json:"title"`
	Image               string       `json:"image"`
	Servings            int          `json:"servings"`
	ReadyInMinutes      int          `json:"readyInMinutes"`
	SourceName          string       `json:"sourceName"`
	SourceURL           string       `json:"sourceUrl"`
	Nutrition           *nutrition   `json:"nutrition"`
	ExtendedIngredients []ingredient `json:"extendedIngredients"`
	DishTypes           []string     `json:"dishTypes"`
	Diets               []string     `json:"diets"`
}

type step struct {
	Number int    `json:"number"`
	Step   string `json:"step"`
}

type analyzedInstruction struct {
	Name  string `json:"name"`
	Steps []step `json:"steps"`
}

func (d recipeDetail) nutrientAmount(name string) float64 {
	if d.Nutrition == nil {
		return 0
	}
	for _, n := range d.Nutrition.Nutrients {
		if strings.EqualFold(n.Name, name) {
			return n.Amount
		}
	}
	return 0
}

func (d recipeDetail) normalize() types.Recipe {
	lines := make([]string, 0, len(d.ExtendedIngredients))
	for _, ing := range d.ExtendedIngredients {
		lines = append(lines, ing.Original)
	}
	category := ""
	if len(d.DishTypes) > 0 {
		category = d.DishTypes[0]
	}
	return types.Recipe{
		ID:              d.ID,
		Label:           d.Title,
		Image:           d.Image,
		Source:          d.SourceName,
		URL:             d.SourceURL,
		Calories:        d.nutrientAmount("Calories"),
		TotalTime:       d.ReadyInMinutes,
		IngredientLines: lines,
		Protein:         d.nutrientAmount("Protein"),
		Carbs:           d.nutrientAmount("Carbohydrates"),
		Fat:             d.nutrientAmount("Fat"),
		FoodCategory:    category,
	}
}
