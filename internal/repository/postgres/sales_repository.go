package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/repository"
)

type salesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) repository.SalesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) ListSales(ctx context.Context, filter repository.SalesFilter) ([]domain.SalesRecord, error) {
	where, args := buildSalesFilterClause(filter, 1)
	query := fmt.Sprintf(`
		SELECT sale_date, product_id, product_name, units_sold, promotion
		FROM sales_history
		%s
		ORDER BY product_id, sale_date
	`, where)

	var records []domain.SalesRecord
	err := r.db.withLimit(ctx, func() error {
		return sqlx.SelectContext(ctx, r.db, &records, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sales history: %w", err)
	}

	return records, nil
}

func (r *salesRepository) CountSales(ctx context.Context) (int, error) {
	var count int
	err := r.db.withLimit(ctx, func() error {
		return sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM sales_history`)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count sales history: %w", err)
	}
	return count, nil
}
