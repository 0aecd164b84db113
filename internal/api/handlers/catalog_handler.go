package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/service"
)

type CatalogHandler struct {
	service *service.CatalogService
}

func NewCatalogHandler(service *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// GetProducts returns the products known to the loaded model
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"products":      h.service.Products(),
		"model_version": h.service.Version(),
	})
}

func (h *CatalogHandler) GetSeasons(c *gin.Context) {
	seasons := h.service.Seasons()
	out := make([]gin.H, 0, len(seasons))
	for _, s := range seasons {
		months := make([]int, 0, 12)
		for _, m := range s.Months() {
			months = append(months, int(m))
		}
		out = append(out, gin.H{"name": s, "months": months})
	}
	c.JSON(http.StatusOK, gin.H{"seasons": out})
}

// GetHistory returns the trailing sales of one product for charting
func (h *CatalogHandler) GetHistory(c *gin.Context) {
	days := 0
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(c, fmt.Errorf("%w: days must be a positive integer", domain.ErrInvalidArgument))
			return
		}
		days = parsed
	}

	history, err := h.service.History(c.Param("id"), days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}
