// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/api/handlers"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/api/middleware"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/observability"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/service"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/tools"
)

type Services struct {
	Tools                 *tools.Dispatcher
	ForecastService       *service.ForecastService
	RecommendationService *service.RecommendationService
	CatalogService        *service.CatalogService
	DefaultPeriods        int
	Metrics               *observability.Metrics
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	metrics := observability.DefaultMetrics
	if services != nil && services.Metrics != nil {
		metrics = services.Metrics
	}

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.Metrics(metrics))
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:8501"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(observability.Handler()))

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.Tools != nil {
			toolHandler := handlers.NewToolHandler(services.Tools)
			toolGroup := apiGroup.Group("/tools")
			{
				toolGroup.GET("", toolHandler.ListTools)
				toolGroup.POST("/:name", toolHandler.CallTool)
			}
		}

		if services.ForecastService != nil && services.RecommendationService != nil {
			forecastHandler := handlers.NewForecastHandler(services.ForecastService, services.RecommendationService, services.DefaultPeriods)
			apiGroup.POST("/forecast", forecastHandler.Forecast)
			apiGroup.POST("/recommendation", forecastHandler.Recommend)
		}

		if services.CatalogService != nil {
			catalogHandler := handlers.NewCatalogHandler(services.CatalogService)
			apiGroup.GET("/products", catalogHandler.GetProducts)
			apiGroup.GET("/products/:id/history", catalogHandler.GetHistory)
			apiGroup.GET("/seasons", catalogHandler.GetSeasons)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
