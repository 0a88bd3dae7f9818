package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealmate/backend/internal/api"
	"github.com/pageza/mealmate/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(svc api.Services, corsOrigins []string, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.ErrorLogger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(corsOrigins))

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(svc.Auth))
	protected.Use(middleware.QuotaHeaders(svc.Quota))

	api.NewHandlers(svc).RegisterRoutes(v1, protected)

	return router
}
