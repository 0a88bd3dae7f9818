package types

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the key format of a MealPlan.
const DateLayout = "2006-01-02"

// MaxPlanDays caps how many days one generation request may cover.
const MaxPlanDays = 31

// Period is a meal slot within a day.
type Period string

const (
	Breakfast Period = "breakfast"
	Lunch     Period = "lunch"
	Dinner    Period = "dinner"
)

// Periods lists every period in day order.
var Periods = []Period{Breakfast, Lunch, Dinner}

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	for _, p := range Periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown meal period %q", s)
}

// CalorieShare is the fraction of the daily calorie goal given to a period.
func (p Period) CalorieShare() float64 {
	switch p {
	case Breakfast:
		return 0.30
	case Lunch, Dinner:
		return 0.35
	default:
		return 0
	}
}

// Meal is a recipe attached to a plan slot.
type Meal struct {
	ID           int           `json:"id,omitempty"`
	Name         string        `json:"name"`
	Calories     int           `json:"calories"`
	Protein      int           `json:"protein"`
	Carbs        int           `json:"carbs"`
	Fat          int           `json:"fat"`
	Image        *string       `json:"image"`
	Ingredients  []string      `json:"ingredients"`
	URL          string        `json:"url"`
	Source       string        `json:"source"`
	TotalTime    int           `json:"totalTime"`
	FoodCategory string        `json:"foodCategory"`
	Instructions []Instruction `json:"instructions,omitempty"`
}

// DayPlan holds up to one meal per period.
type DayPlan struct {
	Breakfast *Meal `json:"breakfast,omitempty"`
	Lunch     *Meal `json:"lunch,omitempty"`
	Dinner    *Meal `json:"dinner,omitempty"`
}

// Get returns the meal at period, or nil.
func (d DayPlan) Get(p Period) *Meal {
	switch p {
	case Breakfast:
		return d.Breakfast
	case Lunch:
		return d.Lunch
	case Dinner:
		return d.Dinner
	}
	return nil
}

// Set stores m at period. A nil m clears the slot.
func (d *DayPlan) Set(p Period, m *Meal) {
	switch p {
	case Breakfast:
		d.Breakfast = m
	case Lunch:
		d.Lunch = m
	case Dinner:
		d.Dinner = m
	}
}

// Meals returns the populated slots in period order.
func (d DayPlan) Meals() []*Meal {
	var meals []*Meal
	for _, p := range Periods {
		if m := d.Get(p); m != nil {
			meals = append(meals, m)
		}
	}
	return meals
}

// Empty reports whether no slot is populated.
func (d DayPlan) Empty() bool {
	return d.Breakfast == nil && d.Lunch == nil && d.Dinner == nil
}

// MealPlan maps a YYYY-MM-DD date to that day's meals.
type MealPlan map[string]DayPlan

// Dates returns the plan's dates in ascending order.
func (p MealPlan) Dates() []string {
	dates := make([]string, 0, len(p))
	for d := range p {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Slot returns the meal at (date, period).
func (p MealPlan) Slot(date string, period Period) (*Meal, bool) {
	day, ok := p[date]
	if !ok {
		return nil, false
	}
	m := day.Get(period)
	return m, m != nil
}

// SetSlot stores a meal, creating the day entry when needed.
func (p MealPlan) SetSlot(date string, period Period, m *Meal) {
	day := p[date]
	day.Set(period, m)
	p[date] = day
}

// DeleteSlot clears a slot and drops the day once it has no meals left.
// It reports whether a meal was removed.
func (p MealPlan) DeleteSlot(date string, period Period) bool {
	day, ok := p[date]
	if !ok || day.Get(period) == nil {
		return false
	}
	day.Set(period, nil)
	if day.Empty() {
		delete(p, date)
	} else {
		p[date] = day
	}
	return true
}

// Merge copies every populated slot of other into p, overwriting clashes.
func (p MealPlan) Merge(other MealPlan) {
	for date, day := range other {
		for _, period := range Periods {
			if m := day.Get(period); m != nil {
				p.SetSlot(date, period, m)
			}
		}
	}
}

// DateRange returns n consecutive calendar days starting at start.
func DateRange(start time.Time, n int) []string {
	dates := make([]string, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, start.AddDate(0, 0, i).Format(DateLayout))
	}
	return dates
}

// MealPlanTemplate is a named snapshot of a plan.
type MealPlanTemplate struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Meals     MealPlan  `json:"meals"`
	CreatedAt time.Time `json:"createdAt"`
}

// TemplateCollection is the stored form of a user's templates.
type TemplateCollection struct {
	Templates []MealPlanTemplate `json:"templates"`
}

// PlanStats summarises a plan over a date range.
type PlanStats struct {
	TotalCalories int `json:"totalCalories"`
	AvgProtein    int `json:"avgProtein"`
	AvgCarbs      int `json:"avgCarbs"`
	AvgFat        int `json:"avgFat"`
	MealCount     int `json:"mealCount"`
}

// GeneratePlanRequest asks for a date range to be filled.
type GeneratePlanRequest struct {
	StartDate    string   `json:"startDate" binding:"required"`
	NumberOfDays int      `json:"numberOfDays" binding:"omitempty,min=1,max=31"`
	Periods      []Period `json:"periods"`
}

// SlotError records a slot that could not be generated.
type SlotError struct {
	Date   string `json:"date"`
	Period Period `json:"period"`
	Error  string `json:"error"`
}

// GenerationResult is the outcome of a bulk run.
type GenerationResult struct {
	Plan     MealPlan    `json:"plan"`
	Failures []SlotError `json:"failures,omitempty"`
}

// CreateTemplateRequest names a new template.
type CreateTemplateRequest struct {
	Name string `json:"name" binding:"required"`
}
