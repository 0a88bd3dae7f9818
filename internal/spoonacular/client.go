package spoonacular

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/mealmate/backend/internal/apperrors"
	"github.com/pageza/mealmate/backend/internal/quota"
	"github.com/pageza/mealmate/backend/internal/types"
)

const (
	defaultBaseURL = "https://api.spoonacular.com"
	// resultsPerSearch is how many hits a search asks for
	resultsPerSearch = 10
	// calorieSlack widens a calorie target into a range
	calorieSlack = 150
)

// Client talks to the Spoonacular recipe API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retrier    *quota.Retrier
	logger     *zap.Logger
}

// NewClient creates a client. Empty arguments fall back to defaults.
func NewClient(baseURL string, httpClient *http.Client, retrier *quota.Retrier, logger *zap.Logger) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if retrier == nil {
		retrier = quota.NewRetrier(quota.DefaultMaxAttempts, nil, logger)
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		retrier:    retrier,
		logger:     logger,
	}
}

// SearchParamsToQuery builds the complexSearch query string for a search.
func SearchParamsToQuery(apiKey, query string, params types.SearchParams) url.Values {
	v := url.Values{}
	v.Set("apiKey", apiKey)
	v.Set("query", query)
	v.Set("number", strconv.Itoa(resultsPerSearch))
	v.Set("addNutrition", "true")

	if diets := dietValues(params); len(diets) > 0 {
		v.Set("diet", strings.Join(diets, ","))
	}
	if params.MealType != "" {
		v.Set("type", params.MealType)
	}
	if params.Calories > 0 {
		v.Set("minCalories", strconv.Itoa(max(0, params.Calories-calorieSlack)))
		v.Set("maxCalories", strconv.Itoa(params.Calories+calorieSlack))
	}
	if len(params.Excluded) > 0 {
		if intolerances := intoleranceValues(params.Excluded); len(intolerances) > 0 {
			v.Set("intolerances", strings.Join(intolerances, ","))
		}
		if excluded := excludedIngredients(params.Excluded); len(excluded) > 0 {
			v.Set("excludeIngredients", strings.Join(excluded, ","))
		}
	}
	if len(params.Cuisines) > 0 {
		v.Set("cuisine", strings.Join(params.Cuisines, ","))
	}
	if params.MaxReadyTime > 0 {
		v.Set("maxReadyTime", strconv.Itoa(params.MaxReadyTime))
	}
	return v
}

// SearchRecipes runs a search and resolves every hit to full detail. The
// search and its detail fetches are retried together under budget.
func (c *Client) SearchRecipes(ctx context.Context, budget quota.Budget, query string, params types.SearchParams) ([]types.Recipe, error) {
	return quota.Do(ctx, c.retrier, budget, func(ctx context.Context) ([]types.Recipe, error) {
		return c.search(ctx, budget.APIKey(), query, params)
	})
}

func (c *Client) search(ctx context.Context, apiKey, query string, params types.SearchParams) ([]types.Recipe, error) {
	var parsed searchResponse
	if err := c.getJSON(ctx, "/recipes/complexSearch", SearchParamsToQuery(apiKey, query, params), &parsed); err != nil {
		return nil, err
	}
	if parsed.Results == nil {
		return nil, fmt.Errorf("%w: search response has no results field", apperrors.ErrInvalidResponse)
	}

	summaries := *parsed.Results
	recipes := make([]types.Recipe, len(summaries))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range summaries {
		g.Go(func() error {
			detail, err := c.recipeDetail(gctx, apiKey, s.ID)
			if err != nil {
				return err
			}
			recipes[i] = detail.normalize()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (c *Client) recipeDetail(ctx context.Context, apiKey string, id int) (recipeDetail, error) {
	v := url.Values{}
	v.Set("apiKey", apiKey)
	v.Set("includeNutrition", "true")

	var detail recipeDetail
	if err := c.getJSON(ctx, fmt.Sprintf("/recipes/%d/information", id), v, &detail); err != nil {
		return recipeDetail{}, err
	}
	return detail, nil
}

// GetRecipeInstructions returns the preparation steps of a recipe. Any
// failure yields an empty list.
func (c *Client) GetRecipeInstructions(ctx context.Context, budget quota.Budget, id int) []types.Instruction {
	blocks, err := quota.Do(ctx, c.retrier, budget, func(ctx context.Context) ([]analyzedInstruction, error) {
		v := url.Values{}
		v.Set("apiKey", budget.APIKey())
		var out []analyzedInstruction
		if err := c.getJSON(ctx, fmt.Sprintf("/recipes/%d/analyzedInstructions", id), v, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		c.logger.Warn("failed to fetch recipe instructions", zap.Int("recipe_id", id), zap.Error(err))
		return []types.Instruction{}
	}
	if len(blocks) == 0 {
		return []types.Instruction{}
	}

	steps := make([]types.Instruction, 0, len(blocks[0].Steps))
	for _, s := range blocks[0].Steps {
		steps = append(steps, types.Instruction{Number: s.Number, Step: s.Step})
	}
	return steps
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create Spoonacular request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute Spoonacular request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read Spoonacular response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Spoonacular request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return &apperrors.ProviderError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidResponse, err)
	}
	return nil
}
