package service

import (
	"context"
	"encoding/json"
	"math"
	"sort"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/mealmate/backend/internal/apperrors"
	"github.com/pageza/mealmate/backend/internal/models"
	"github.com/pageza/mealmate/backend/internal/types"
)

// scanLimit bounds how many cached rows are ranked in memory when the
// database cannot order by vector distance itself.
const scanLimit = 500

// RecipeCache keeps every recipe the provider returned, indexed by its
// macro profile, so similar meals can be offered without a provider call.
type RecipeCache struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ IRecipeCache = (*RecipeCache)(nil)

func NewRecipeCache(db *gorm.DB, logger *zap.Logger) *RecipeCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipeCache{
		db:     db,
		logger: logger,
	}
}

func macroVector(calories, protein, carbs, fat float64) []float32 {
	return []float32{float32(calories), float32(protein), float32(carbs), float32(fat)}
}

// Remember upserts recipes by provider id.
func (c *RecipeCache) Remember(ctx context.Context, recipes []types.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	rows := make([]models.CachedRecipe, 0, len(recipes))
	for _, r := range recipes {
		data, err := json.Marshal(r)
		if err != nil {
			return apperrors.Persistence("encode recipe", err)
		}
		rows = append(rows, models.CachedRecipe{
			ID:       r.ID,
			Title:    r.Label,
			Category: r.FoodCategory,
			Recipe:   datatypes.JSON(data),
			Macros:   pgvector.NewVector(macroVector(r.Calories, r.Protein, r.Carbs, r.Fat)),
		})
	}

	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "category", "recipe", "macros", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return apperrors.Persistence("cache recipes", err)
	}
	return nil
}

// Similar returns up to limit cached meals whose macros are closest to meal's.
func (c *RecipeCache) Similar(ctx context.Context, meal types.Meal, limit int) ([]types.Meal, error) {
	if limit <= 0 {
		limit = 5
	}
	target := macroVector(float64(meal.Calories), float64(meal.Protein), float64(meal.Carbs), float64(meal.Fat))

	var rows []models.CachedRecipe
	var err error
	if c.db.Dialector.Name() == "postgres" {
		rows, err = c.nearestPostgres(ctx, meal.ID, target, limit)
	} else {
		rows, err = c.nearestInMemory(ctx, meal.ID, target, limit)
	}
	if err != nil {
		return nil, apperrors.Persistence("find similar recipes", err)
	}

	meals := make([]types.Meal, 0, len(rows))
	for _, row := range rows {
		var r types.Recipe
		if err := json.Unmarshal(row.Recipe, &r); err != nil {
			c.logger.Warn("skipping unreadable cached recipe", zap.Int("recipe_id", row.ID), zap.Error(err))
			continue
		}
		meals = append(meals, MealFromRecipe(r, nil))
	}
	return meals, nil
}

func (c *RecipeCache) nearestPostgres(ctx context.Context, excludeID int, target []float32, limit int) ([]models.CachedRecipe, error) {
	var rows []models.CachedRecipe
	err := c.db.WithContext(ctx).
		Where("id <> ?", excludeID).
		Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "macros <-> ?", Vars: []interface{}{pgvector.NewVector(target)}},
		}).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (c *RecipeCache) nearestInMemory(ctx context.Context, excludeID int, target []float32, limit int) ([]models.CachedRecipe, error) {
	var rows []models.CachedRecipe
	err := c.db.WithContext(ctx).
		Where("id <> ?", excludeID).
		Order("updated_at DESC").
		Limit(scanLimit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return distance(rows[i].Macros.Slice(), target) < distance(rows[j].Macros.Slice(), target)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// distance is the Euclidean (L2) distance, matching pgvector's <-> operator.
func distance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
