package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/mealmate/backend/internal/apperrors"
	"github.com/pageza/mealmate/backend/internal/store"
	"github.com/pageza/mealmate/backend/internal/types"
)

// ProgressFunc is told how many of a run's slots are finished.
type ProgressFunc func(done, total int)

// PlanService assembles and edits a user's meal plan.
type PlanService struct {
	docs      Documents
	generator IMealGenerator
	budgets   BudgetSource
	profiles  IProfileService
	logger    *zap.Logger
	now       func() time.Time
}

var _ IPlanService = (*PlanService)(nil)

func NewPlanService(docs Documents, generator IMealGenerator, budgets BudgetSource, profiles IProfileService, logger *zap.Logger) *PlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanService{
		docs:      docs,
		generator: generator,
		budgets:   budgets,
		profiles:  profiles,
		logger:    logger,
		now:       time.Now,
	}
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(types.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidDate, s)
	}
	return d, nil
}

func parseSlot(date string, period types.Period) (string, error) {
	d, err := parseDate(date)
	if err != nil {
		return "", err
	}
	if _, err := types.ParsePeriod(string(period)); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, err)
	}
	return d.Format(types.DateLayout), nil
}

// GetPlan returns the stored plan, or an empty one.
func (s *PlanService) GetPlan(ctx context.Context, userID uuid.UUID) (types.MealPlan, error) {
	plan := types.MealPlan{}
	if _, err := s.docs.Get(ctx, userID, store.MealPlans, &plan); err != nil {
		return nil, err
	}
	if plan == nil {
		plan = types.MealPlan{}
	}
	return plan, nil
}

func (s *PlanService) savePlan(ctx context.Context, userID uuid.UUID, plan types.MealPlan) error {
	return s.docs.Set(ctx, userID, store.MealPlans, plan)
}

func (s *PlanService) preferences(ctx context.Context, userID uuid.UUID) (types.UserPreferences, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return types.UserPreferences{}, err
	}
	return profile.Preferences, nil
}

// GeneratePlan fills every requested slot over a run of consecutive days.
// Slots that fail are reported in the result and the run carries on. The
// outcome is merged into the stored plan and saved once; a cancelled run
// saves nothing.
func (s *PlanService) GeneratePlan(ctx context.Context, userID uuid.UUID, req *types.GeneratePlanRequest, progress ProgressFunc) (*types.GenerationResult, error) {
	if req.NumberOfDays < 1 || req.NumberOfDays > types.MaxPlanDays {
		return nil, apperrors.ErrInvalidDayCount
	}
	if len(req.Periods) == 0 {
		return nil, apperrors.ErrNoMealPeriods
	}
	for _, p := range req.Periods {
		if _, err := types.ParsePeriod(string(p)); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, err)
		}
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}

	prefs, err := s.preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	budget, err := s.budgets.Budget(ctx, userID)
	if err != nil {
		return nil, err
	}

	dates := types.DateRange(start, req.NumberOfDays)
	total := len(dates) * len(req.Periods)
	generated := types.MealPlan{}
	var failures []types.SlotError
	done := 0

	for _, date := range dates {
		for _, period := range req.Periods {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			meal, err := s.generator.GenerateMeal(ctx, budget, period, prefs)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				s.logger.Error("failed to generate meal",
					zap.String("user_id", userID.String()),
					zap.String("date", date),
					zap.String("period", string(period)),
					zap.Error(err),
				)
				failures = append(failures, types.SlotError{
					Date:   date,
					Period: period,
					Error:  apperrors.UserMessage(err),
				})
			} else {
				generated.SetSlot(date, period, meal)
			}

			done++
			if progress != nil {
				progress(done, total)
			}
		}
	}

	plan, err := s.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	plan.Merge(generated)
	if err := s.savePlan(ctx, userID, plan); err != nil {
		return nil, err
	}

	return &types.GenerationResult{Plan: plan, Failures: failures}, nil
}

// GenerateSlot replaces a single slot with a freshly generated meal.
func (s *PlanService) GenerateSlot(ctx context.Context, userID uuid.UUID, date string, period types.Period) (*types.Meal, error) {
	date, err := parseSlot(date, period)
	if err != nil {
		return nil, err
	}
	prefs, err := s.preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	budget, err := s.budgets.Budget(ctx, userID)
	if err != nil {
		return nil, err
	}

	meal, err := s.generator.GenerateMeal(ctx, budget, period, prefs)
	if err != nil {
		return nil, err
	}

	plan, err := s.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	plan.SetSlot(date, period, meal)
	if err := s.savePlan(ctx, userID, plan); err != nil {
		return nil, err
	}
	return meal, nil
}

// CopySlot puts the meal of a slot on the user's clipboard.
func (s *PlanService) CopySlot(ctx context.Context, userID uuid.UUID, date string, period types.Period) (*types.Meal, error) {
	date, err := parseSlot(date, period)
	if err != nil {
		return nil, err
	}
	plan, err := s.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	meal, ok := plan.Slot(date, period)
	if !ok {
		return nil, apperrors.ErrMealNotFound
	}
	if err := s.docs.Set(ctx, userID, store.Clipboard, meal); err != nil {
		return nil, err
	}
	return meal, nil
}

// PasteSlot writes the clipboard meal into a slot.
func (s *PlanService) PasteSlot(ctx context.Context, userID uuid.UUID, date string, period types.Period) (*types.Meal, error) {
	date, err := parseSlot(date, period)
	if err != nil {
		return nil, err
	}
	var meal types.Meal
	found, err := s.docs.Get(ctx, userID, store.Clipboard, &meal)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.ErrEmptyClipboard
	}

	plan, err := s.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	plan.SetSlot(date, period, &meal)
	if err := s.savePlan(ctx, userID, plan); err != nil {
		return nil, err
	}
	return &meal, nil
}

// DeleteSlot clears a slot and drops its day when nothing is left.
func (s *PlanService) DeleteSlot(ctx context.Context, userID uuid.UUID, date string, period types.Period) error {
	date, err := parseSlot(date, period)
	if err != nil {
		return err
	}
	plan, err := s.GetPlan(ctx, userID)
	if err != nil {
		return err
	}
	if !plan.DeleteSlot(date, period) {
		return apperrors.ErrMealNotFound
	}
	return s.savePlan(ctx, userID, plan)
}

// Stats summarises the stored plan between from and to inclusive.
func (s *PlanService) Stats(ctx context.Context, userID uuid.UUID, from, to string) (*types.PlanStats, error) {
	start, err := parseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s is before %s", apperrors.ErrInvalidDate, to, from)
	}
	plan, err := s.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(plan, start.Format(types.DateLayout), end.Format(types.DateLayout))
	return &stats, nil
}

// ComputeStats totals calories and averages macros per meal over the
// inclusive range. A range without meals yields zeros.
func ComputeStats(plan types.MealPlan, from, to string) types.PlanStats {
	var stats types.PlanStats
	var protein, carbs, fat int
	for _, date := range plan.Dates() {
		if date < from || date > to {
			continue
		}
		for _, m := range plan[date].Meals() {
			stats.TotalCalories += m.Calories
			protein += m.Protein
			carbs += m.Carbs
			fat += m.Fat
			stats.MealCount++
		}
	}
	if stats.MealCount == 0 {
		return stats
	}
	n := float64(stats.MealCount)
	stats.AvgProtein = int(math.Round(float64(protein) / n))
	stats.AvgCarbs = int(math.Round(float64(carbs) / n))
	stats.AvgFat = int(math.Round(float64(fat) / n))
	return stats
}

func (s *PlanService) templates(ctx context.Context, userID uuid.UUID) (types.TemplateCollection, error) {
	var coll types.TemplateCollection
	if _, err := s.docs.Get(ctx, userID, store.MealPlanTemplates, &coll); err != nil {
		return types.TemplateCollection{}, err
	}
	return coll, nil
}

// CreateTemplate saves the current plan under name.
func (s *PlanService) CreateTemplate(ctx context.Context, userID uuid.UUID, name string) (*types.MealPlanTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: template name is required", apperrors.ErrInvalidRequest)
	}
	plan, err := s.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	coll, err := s.templates(ctx, userID)
	if err != nil {
		return nil, err
	}

	tmpl := types.MealPlanTemplate{
		ID:        uuid.New(),
		Name:      name,
		Meals:     plan,
		CreatedAt: s.now().UTC(),
	}
	coll.Templates = append(coll.Templates, tmpl)
	if err := s.docs.Set(ctx, userID, store.MealPlanTemplates, coll); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// ListTemplates returns the user's templates, oldest first.
func (s *PlanService) ListTemplates(ctx context.Context, userID uuid.UUID) ([]types.MealPlanTemplate, error) {
	coll, err := s.templates(ctx, userID)
	if err != nil {
		return nil, err
	}
	if coll.Templates == nil {
		return []types.MealPlanTemplate{}, nil
	}
	return coll.Templates, nil
}

// ApplyTemplate merges a template into the current plan.
func (s *PlanService) ApplyTemplate(ctx context.Context, userID uuid.UUID, id uuid.UUID) (types.MealPlan, error) {
	coll, err := s.templates(ctx, userID)
	if err != nil {
		return nil, err
	}
	var tmpl *types.MealPlanTemplate
	for i := range coll.Templates {
		if coll.Templates[i].ID == id {
			tmpl = &coll.Templates[i]
			break
		}
	}
	if tmpl == nil {
		return nil, apperrors.ErrTemplateNotFound
	}

	plan, err := s.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	plan.Merge(tmpl.Meals)
	if err := s.savePlan(ctx, userID, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Watch streams the stored plan, current version first.
func (s *PlanService) Watch(ctx context.Context, userID uuid.UUID, onUpdate func(types.MealPlan), onError func(error)) (func(), error) {
	return s.docs.Subscribe(ctx, userID, store.MealPlans, func(raw json.RawMessage) {
		plan := types.MealPlan{}
		if err := json.Unmarshal(raw, &plan); err != nil {
			if onError != nil {
				onError(apperrors.Persistence("decode meal plan", err))
			}
			return
		}
		onUpdate(plan)
	}, onError)
}
