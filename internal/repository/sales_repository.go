// backend-go/internal/repository/sales_repository.go
package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
)

// SalesFilter narrows a sales history query. Zero values mean "no restriction".
type SalesFilter struct {
	ProductIDs []string
	From       time.Time
	To         time.Time
}

// SalesRepository is a read-only source of sales history records.
type SalesRepository interface {
	ListSales(ctx context.Context, filter SalesFilter) ([]domain.SalesRecord, error)
	CountSales(ctx context.Context) (int, error)
}
