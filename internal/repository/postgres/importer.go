package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/repository/postgres/migrations"
)

const pgErrUniqueViolation = "23505"

// ErrDuplicateSales is returned when an import overlaps rows already in the table.
var ErrDuplicateSales = errors.New("sales history already contains some of these rows")

var salesColumns = []string{"sale_date", "product_id", "product_name", "units_sold", "promotion"}

// Importer bulk loads sales history with COPY.
type Importer struct {
	pool *pgxpool.Pool
}

func NewImporter(ctx context.Context, dsn string) (*Importer, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Importer{pool: pool}, nil
}

func (i *Importer) Close() {
	i.pool.Close()
}

// Migrate applies the embedded migrations.
func (i *Importer) Migrate(ctx context.Context) error {
	files, err := migrations.Files()
	if err != nil {
		return err
	}
	for _, m := range files {
		if _, err := i.pool.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Name, err)
		}
	}
	return nil
}

// Import copies records into sales_history in one transaction. With replace the
// table is truncated first.
func (i *Importer) Import(ctx context.Context, records []domain.SalesRecord, replace bool) (int64, error) {
	tx, err := i.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if replace {
		if _, err := tx.Exec(ctx, `TRUNCATE sales_history`); err != nil {
			return 0, fmt.Errorf("truncate sales_history: %w", err)
		}
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"sales_history"}, salesColumns,
		pgx.CopyFromSlice(len(records), func(idx int) ([]any, error) {
			r := records[idx]
			return []any{r.Date, r.ProductID, r.ProductName, r.UnitsSold, r.Promotion}, nil
		}),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateSales, pgErr.Detail)
		}
		return 0, fmt.Errorf("copy sales_history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return n, nil
}
