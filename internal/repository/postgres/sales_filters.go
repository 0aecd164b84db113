package postgres

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/repository"
)

// buildSalesFilterClause constructs the WHERE clause for sales history queries
func buildSalesFilterClause(filter repository.SalesFilter, startIndex int) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	idx := startIndex

	if len(filter.ProductIDs) > 0 {
		placeholders := make([]string, len(filter.ProductIDs))
		for i, id := range filter.ProductIDs {
			placeholders[i] = fmt.Sprintf("$%d", idx)
			args = append(args, id)
			idx++
		}
		clauses = append(clauses, fmt.Sprintf("product_id IN (%s)", strings.Join(placeholders, ",")))
	}

	if !filter.From.IsZero() {
		clauses = append(clauses, fmt.Sprintf("sale_date >= $%d", idx))
		args = append(args, filter.From)
		idx++
	}

	if !filter.To.IsZero() {
		clauses = append(clauses, fmt.Sprintf("sale_date <= $%d", idx))
		args = append(args, filter.To)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}
