package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/service"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/tools"
)

type ForecastRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	Periods   *int   `json:"periods"`
}

type RecommendationRequest struct {
	ProductID        string   `json:"product_id" binding:"required"`
	Season           string   `json:"season" binding:"required"`
	SafetyStockRatio *float64 `json:"safety_stock_ratio"`
}

// ForecastHandler serves the dashboard's typed forecast and recommendation routes.
type ForecastHandler struct {
	forecasts       *service.ForecastService
	recommendations *service.RecommendationService
	defaultPeriods  int
}

func NewForecastHandler(forecasts *service.ForecastService, recommendations *service.RecommendationService, defaultPeriods int) *ForecastHandler {
	if defaultPeriods <= 0 {
		defaultPeriods = tools.DefaultPeriods
	}
	return &ForecastHandler{
		forecasts:       forecasts,
		recommendations: recommendations,
		defaultPeriods:  defaultPeriods,
	}
}

func (h *ForecastHandler) Forecast(c *gin.Context) {
	var req ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err))
		return
	}

	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		respondError(c, err)
		return
	}

	periods := h.defaultPeriods
	if req.Periods != nil {
		periods = *req.Periods
	}

	result, err := h.forecasts.Predict(c.Request.Context(), req.ProductID, start, periods)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ForecastHandler) Recommend(c *gin.Context) {
	var req RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err))
		return
	}

	ratio := h.recommendations.DefaultSafetyRatio()
	if req.SafetyStockRatio != nil {
		ratio = *req.SafetyStockRatio
	}

	result, err := h.recommendations.Recommend(c.Request.Context(), req.ProductID, req.Season, ratio)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
