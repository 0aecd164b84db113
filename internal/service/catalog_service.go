package service

import (
	"fmt"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/artifacts"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
)

const (
	defaultHistoryDays = 90
	maxHistoryDays     = 3650
)

// CatalogService answers the dashboard's read-only lookups over the loaded bundle.
type CatalogService struct {
	bundle *artifacts.Bundle
}

func NewCatalogService(bundle *artifacts.Bundle) *CatalogService {
	return &CatalogService{bundle: bundle}
}

func (s *CatalogService) Version() string { return s.bundle.ModelVersion }

func (s *CatalogService) Products() []domain.Product {
	return s.bundle.ProductList()
}

func (s *CatalogService) Seasons() []domain.Season {
	return domain.Seasons()
}

// History returns the trailing days of sales for productID, oldest first.
func (s *CatalogService) History(productID string, days int) (*domain.ProductHistory, error) {
	if days <= 0 {
		days = defaultHistoryDays
	}
	if days > maxHistoryDays {
		return nil, fmt.Errorf("%w: days must be at most %d, got %d", domain.ErrInvalidArgument, maxHistoryDays, days)
	}
	if _, err := s.bundle.Products.Code(productID); err != nil {
		return nil, err
	}

	records := s.bundle.History.Records(productID)
	if len(records) > days {
		records = records[len(records)-days:]
	}

	name, _ := s.bundle.History.ProductName(productID)
	out := &domain.ProductHistory{
		ProductID:   productID,
		ProductName: name,
		Points:      make([]domain.HistoryPoint, 0, len(records)),
	}
	for _, r := range records {
		out.Points = append(out.Points, domain.HistoryPoint{
			Date:      r.Date.Format(domain.DateLayout),
			UnitsSold: r.UnitsSold,
			Promotion: r.Promotion,
		})
	}
	return out, nil
}
