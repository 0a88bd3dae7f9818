package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/mealmate/backend/config"
	"github.com/pageza/mealmate/backend/internal/api"
	"github.com/pageza/mealmate/backend/internal/quota"
	"github.com/pageza/mealmate/backend/internal/router"
	"github.com/pageza/mealmate/backend/internal/service"
	"github.com/pageza/mealmate/backend/internal/spoonacular"
	"github.com/pageza/mealmate/backend/internal/store"
)

// Options are the connections an App is built on. Redis, Objects and
// HTTPClient are optional.
type Options struct {
	Config     *config.Config
	DB         *gorm.DB
	Redis      *redis.Client
	Objects    service.ObjectStore
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// App is the fully wired application.
type App struct {
	Router   *gin.Engine
	Services api.Services
	Quotas   *quota.Registry

	unsubscribe func()
}

// NewApp wires stores, services and routes. Without Redis, quota state
// lives in memory and document updates only reach this process.
func NewApp(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config

	var bus store.Bus = store.NewLocalBus()
	var states quota.StateStore
	if opts.Redis != nil {
		bus = store.NewRedisBus(opts.Redis)
		states = quota.NewRedisStateStore(opts.Redis, "")
	}
	docs := store.NewDocumentStore(opts.DB, bus, logger.Named("store"))

	quotas := quota.NewRegistry(states, service.NewKeyRecordStore(docs), quota.TrackerConfig{
		DefaultAPIKey: cfg.SpoonacularAPIKey,
	}, logger.Named("quota"))

	retrier := quota.NewRetrier(quota.DefaultMaxAttempts, nil, logger.Named("retry"))
	gateway := spoonacular.NewClient(cfg.SpoonacularBaseURL, opts.HTTPClient, retrier, logger.Named("spoonacular"))
	recipes := service.NewRecipeCache(opts.DB, logger.Named("recipes"))
	generator := service.NewMealGenerator(gateway, recipes, logger.Named("generator"))

	profiles := service.NewProfileService(docs)
	plans := service.NewPlanService(docs, generator, quotas, profiles, logger.Named("plan"))
	quotaSvc := service.NewQuotaService(quotas)
	auth := service.NewAuthService(opts.DB, docs, cfg.JWTSecret, logger.Named("auth"))

	svc := api.Services{
		Auth:     auth,
		Profile:  profiles,
		Plan:     plans,
		Shopping: service.NewShoppingService(docs, plans),
		Quota:    quotaSvc,
		Sharing:  service.NewSharingService(plans, opts.Objects, logger.Named("sharing")),
		Recipes:  recipes,
	}

	return &App{
		Router:      router.SetupRouter(svc, cfg.CORSOrigins, logger),
		Services:    svc,
		Quotas:      quotas,
		unsubscribe: auth.OnAuthChange(quotaSvc.Forget),
	}
}

// Close detaches the app's listeners.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}
