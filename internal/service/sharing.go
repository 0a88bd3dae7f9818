package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/mealmate/backend/internal/apperrors"
	"github.com/pageza/mealmate/backend/internal/types"
)

const shareFooter = "Shared from MealMate, your meal planning companion."

// SharingService renders a day of the plan as text and publishes it.
type SharingService struct {
	plans   IPlanService
	objects ObjectStore
	logger  *zap.Logger
}

var _ ISharingService = (*SharingService)(nil)

// NewSharingService creates the service. Without an object store the text
// is returned but not uploaded.
func NewSharingService(plans IPlanService, objects ObjectStore, logger *zap.Logger) *SharingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SharingService{
		plans:   plans,
		objects: objects,
		logger:  logger,
	}
}

// ShareDay formats one day and uploads it, returning the text and its link.
func (s *SharingService) ShareDay(ctx context.Context, userID uuid.UUID, date string) (*types.ShareResponse, error) {
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	date = d.Format(types.DateLayout)

	plan, err := s.plans.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	day, ok := plan[date]
	if !ok || day.Empty() {
		return nil, apperrors.ErrMealNotFound
	}

	content := FormatDailyPlan(date, day)
	resp := &types.ShareResponse{Content: content}
	if s.objects == nil {
		return resp, nil
	}

	key := fmt.Sprintf("shared-plans/%s/%s-%s.txt", userID, date, uuid.NewString()[:8])
	url, err := s.objects.PutText(ctx, key, content)
	if err != nil {
		s.logger.Error("failed to upload shared plan", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to upload shared plan: %w", err)
	}
	resp.URL = url
	return resp, nil
}

// FormatDailyPlan renders a day's meals with per-meal macros and day totals.
func FormatDailyPlan(date string, day types.DayPlan) string {
	heading := date
	if d, err := parseDate(date); err == nil {
		heading = d.Format("Monday, Jan 2, 2006")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MY MEAL PLAN FOR %s\n\n", strings.ToUpper(heading))

	var total types.Meal
	for _, period := range types.Periods {
		m := day.Get(period)
		if m == nil {
			continue
		}
		fmt.Fprintf(&b, "%s\n%s\n", strings.ToUpper(string(period)), m.Name)
		if m.Calories > 0 {
			writeMacros(&b, *m)
		}
		b.WriteString("\n")

		total.Calories += m.Calories
		total.Protein += m.Protein
		total.Carbs += m.Carbs
		total.Fat += m.Fat
	}

	b.WriteString("DAILY TOTALS\n")
	writeMacros(&b, total)
	b.WriteString("\n")
	b.WriteString(shareFooter)
	return b.String()
}

func writeMacros(b *strings.Builder, m types.Meal) {
	fmt.Fprintf(b, "Calories: %d | Protein: %dg | Carbs: %dg | Fat: %dg\n", m.Calories, m.Protein, m.Carbs, m.Fat)
}
