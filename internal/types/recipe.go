package types

// Recipe is a provider search hit normalised into the shape the rest of
// the system works with.
type Recipe struct {
	ID              int      `json:"id"`
	Label           string   `json:"label"`
	Image           string   `json:"image"`
	Source          string   `json:"source"`
	URL             string   `json:"url"`
	Calories        float64  `json:"calories"`
	TotalTime       int      `json:"totalTime"`
	IngredientLines []string `json:"ingredientLines"`
	Protein         float64  `json:"protein"`
	Carbs           float64  `json:"carbs"`
	Fat             float64  `json:"fat"`
	FoodCategory    string   `json:"foodCategory"`
}

// Instruction is a single numbered preparation step.
type Instruction struct {
	Number int    `json:"number"`
	Step   string `json:"step"`
}

// SearchParams are the internal search constraints handed to a recipe gateway.
// Zero values mean "no constraint".
type SearchParams struct {
	MealType     string
	Calories     int
	Diet         DietaryPreference
	Health       []DietaryPreference
	Excluded     []string
	Cuisines     []string
	MaxReadyTime int
}
