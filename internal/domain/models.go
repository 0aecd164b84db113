// backend-go/internal/domain/models.go
package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used on every external surface.
const DateLayout = "2006-01-02"

// SalesRecord is one day of sales for one product.
type SalesRecord struct {
	Date        time.Time `json:"date" db:"sale_date"`
	ProductID   string    `json:"product_id" db:"product_id"`
	ProductName string    `json:"product_name" db:"product_name"`
	UnitsSold   int       `json:"sales" db:"units_sold"`
	Promotion   float64   `json:"promo" db:"promotion"`
}

// Product represents a product known to the trained model
type Product struct {
	ID   string `json:"product_id"`
	Name string `json:"product_name,omitempty"`
	Code int    `json:"product_code"`
}

// ForecastResult is returned by predict_demand. Dates and Pred have equal length.
type ForecastResult struct {
	ProductID string   `json:"product_id"`
	Dates     []string `json:"dates"`
	Pred      []int    `json:"pred"`
}

// RecommendationResult is returned by recommend_purchase.
type RecommendationResult struct {
	ProductID      string  `json:"product_id"`
	Season         string  `json:"season"`
	AvgDaily       float64 `json:"avg_daily"`
	RecommendedQty int     `json:"recommended_purchase_qty"`
}

// HistoryPoint represents a single day in a product's sales chart
type HistoryPoint struct {
	Date      string  `json:"date"`
	UnitsSold int     `json:"sales"`
	Promotion float64 `json:"promo"`
}

// ProductHistory is the trailing sales history of one product
type ProductHistory struct {
	ProductID   string         `json:"product_id"`
	ProductName string         `json:"product_name"`
	Points      []HistoryPoint `json:"points"`
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidArgument, s)
	}
	return t, nil
}
