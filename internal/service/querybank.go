package service

import "github.com/pageza/mealmate/backend/internal/types"

type queryBank map[string][]string

const defaultBank = "default"

var mealQueries = map[types.Period]queryBank{
	types.Breakfast: {
		defaultBank: {
			"breakfast", "morning meal", "breakfast bowl", "breakfast sandwich", "breakfast recipes",
			"eggs", "pancakes", "waffles", "bacon eggs", "breakfast burrito",
		},
		"vegan": {
			"vegan breakfast", "plant based breakfast", "breakfast smoothie", "oatmeal breakfast", "avocado toast",
			"vegan pancakes", "chia pudding", "granola bowl", "fruit breakfast", "breakfast quinoa",
		},
		"vegetarian": {
			"vegetarian breakfast", "egg breakfast", "yogurt breakfast", "cheese breakfast", "vegetarian omelette",
			"breakfast muffins", "french toast", "breakfast parfait", "cottage cheese breakfast", "vegetable frittata",
		},
		"low-carb": {
			"keto breakfast", "low carb breakfast", "protein breakfast", "egg bowl", "breakfast protein",
			"keto eggs", "low carb omelette", "breakfast salad", "keto pancakes", "breakfast without bread",
		},
		"high-protein": {
			"protein breakfast", "high protein morning", "protein bowl", "protein oatmeal", "protein pancakes",
			"egg white omelette", "protein smoothie bowl", "greek yogurt breakfast", "protein french toast", "cottage cheese protein bowl",
		},
	},
	types.Lunch: {
		defaultBank: {
			"lunch", "sandwich", "salad", "soup", "wrap",
			"bowl", "pasta lunch", "rice bowl", "noodles", "lunch plate",
		},
		"vegan": {
			"vegan lunch", "buddha bowl", "vegan salad", "plant based lunch", "quinoa bowl",
			"vegan wrap", "chickpea lunch", "lentil bowl", "vegan soup", "vegetable stir fry",
		},
		"vegetarian": {
			"vegetarian lunch", "veggie sandwich", "vegetable soup", "mediterranean bowl", "vegetarian wrap",
			"falafel plate", "vegetable curry", "bean bowl", "tofu lunch", "vegetarian pasta",
		},
		"low-carb": {
			"keto lunch", "low carb meal", "protein salad", "lettuce wrap", "zucchini noodles",
			"cauliflower rice bowl", "keto bowl", "protein plate", "low carb soup", "vegetable stir fry no rice",
		},
		"high-protein": {
			"high protein lunch", "chicken salad", "tuna bowl", "protein plate", "quinoa protein bowl",
			"turkey wrap", "protein pasta", "salmon lunch", "lean protein bowl", "egg lunch",
		},
	},
	types.Dinner: {
		defaultBank: {
			"dinner", "chicken dinner", "fish dinner", "beef dinner", "pork dinner",
			"pasta dinner", "rice dinner", "stir fry", "roasted dinner", "grilled dinner",
		},
		"vegan": {
			"vegan dinner", "plant based dinner", "vegan curry", "tofu dinner", "tempeh dinner",
			"vegan pasta", "vegetable dinner", "vegan stir fry", "vegan bowl", "lentil dinner",
		},
		"vegetarian": {
			"vegetarian dinner", "veggie pasta", "vegetable curry", "vegetarian stir fry", "bean dinner",
			"vegetable lasagna", "eggplant dinner", "mushroom dinner", "quinoa dinner", "vegetarian casserole",
		},
		"low-carb": {
			"keto dinner", "low carb dinner", "protein dinner", "zucchini pasta", "cauliflower rice dinner",
			"keto bowl", "low carb stir fry", "protein plate dinner", "vegetable dinner no carb", "grilled protein dinner",
		},
		"high-protein": {
			"high protein dinner", "lean protein dinner", "chicken breast dinner", "fish protein dinner", "protein bowl dinner",
			"lean meat dinner", "protein rich dinner", "turkey dinner", "seafood protein dinner", "protein pasta dinner",
		},
	},
}

// primaryBank picks the vocabulary for a user's strongest dietary tag.
func primaryBank(prefs types.UserPreferences) string {
	switch {
	case prefs.HasPreference(types.Vegan):
		return "vegan"
	case prefs.HasPreference(types.Vegetarian):
		return "vegetarian"
	case prefs.HasPreference(types.LowCarb):
		return "low-carb"
	case prefs.HasPreference(types.HighProtein):
		return "high-protein"
	default:
		return defaultBank
	}
}

// QueryTerms returns the candidate search terms for period.
func QueryTerms(period types.Period, prefs types.UserPreferences) []string {
	bank, ok := mealQueries[period]
	if !ok {
		return []string{string(period)}
	}
	if terms, ok := bank[primaryBank(prefs)]; ok {
		return terms
	}
	return bank[defaultBank]
}
