// Package history holds the sales history table shared by training and both engines.
package history

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
)

const day = 24 * time.Hour

// Store is an immutable, per-product view of the sales history. All methods return
// copies, so a Store can be shared by concurrent readers without locking.
type Store struct {
	series map[string][]domain.SalesRecord
	ids    []string
	total  int
}

// NewStore validates records and indexes them by product.
//
// Records must have a product id, non-negative units and a finite positive promotion
// multiplier, and (product, date) must be unique. Missing days inside a product's
// range are logged but accepted.
func NewStore(records []domain.SalesRecord) (*Store, error) {
	s := &Store{series: make(map[string][]domain.SalesRecord)}

	type key struct {
		product string
		date    time.Time
	}
	seen := make(map[key]struct{}, len(records))

	for i, r := range records {
		if r.ProductID == "" {
			return nil, fmt.Errorf("record %d: empty product_id", i)
		}
		if r.UnitsSold < 0 {
			return nil, fmt.Errorf("record %d (%s %s): negative units %d", i, r.ProductID, r.Date.Format(domain.DateLayout), r.UnitsSold)
		}
		if !(r.Promotion > 0) || math.IsInf(r.Promotion, 1) {
			return nil, fmt.Errorf("record %d (%s %s): promotion multiplier must be positive", i, r.ProductID, r.Date.Format(domain.DateLayout))
		}

		r.Date = truncateDay(r.Date)
		k := key{r.ProductID, r.Date}
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("duplicate record for %s on %s", r.ProductID, r.Date.Format(domain.DateLayout))
		}
		seen[k] = struct{}{}

		s.series[r.ProductID] = append(s.series[r.ProductID], r)
	}

	for id, rows := range s.series {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
		if gaps := countGaps(rows); gaps > 0 {
			log.Warn().Str("product_id", id).Int("missing_days", gaps).Msg("history: non-contiguous daily series")
		}
		s.ids = append(s.ids, id)
		s.total += len(rows)
	}
	sort.Strings(s.ids)

	return s, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func countGaps(rows []domain.SalesRecord) int {
	if len(rows) < 2 {
		return 0
	}
	span := int(rows[len(rows)-1].Date.Sub(rows[0].Date)/day) + 1
	return span - len(rows)
}

// Len is the total number of records.
func (s *Store) Len() int { return s.total }

// ProductIDs returns the products that have history, sorted.
func (s *Store) ProductIDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// ProductName returns the name recorded on the product's most recent row.
func (s *Store) ProductName(productID string) (string, bool) {
	rows := s.series[productID]
	if len(rows) == 0 {
		return "", false
	}
	return rows[len(rows)-1].ProductName, true
}

// Records returns the product's history ordered by date.
func (s *Store) Records(productID string) []domain.SalesRecord {
	rows := s.series[productID]
	out := make([]domain.SalesRecord, len(rows))
	copy(out, rows)
	return out
}

// Trailing returns the units sold on the last n recorded days, oldest first.
func (s *Store) Trailing(productID string, n int) []float64 {
	rows := s.series[productID]
	if n < len(rows) {
		rows = rows[len(rows)-n:]
	}
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = float64(r.UnitsSold)
	}
	return out
}

// UnitsInMonths returns the units sold on every recorded day whose month is in months.
func (s *Store) UnitsInMonths(productID string, months []time.Month) []float64 {
	want := make(map[time.Month]bool, len(months))
	for _, m := range months {
		want[m] = true
	}

	var out []float64
	for _, r := range s.series[productID] {
		if want[r.Date.Month()] {
			out = append(out, float64(r.UnitsSold))
		}
	}
	return out
}

// All returns every record ordered by product id, then date.
func (s *Store) All() []domain.SalesRecord {
	out := make([]domain.SalesRecord, 0, s.total)
	for _, id := range s.ids {
		out = append(out, s.series[id]...)
	}
	return out
}

// Range returns the first and last recorded dates across all products.
func (s *Store) Range() (first, last time.Time, ok bool) {
	for _, rows := range s.series {
		if len(rows) == 0 {
			continue
		}
		if !ok || rows[0].Date.Before(first) {
			first = rows[0].Date
		}
		if !ok || rows[len(rows)-1].Date.After(last) {
			last = rows[len(rows)-1].Date
		}
		ok = true
	}
	return first, last, ok
}

// Digest is a sha1 over every record in All() order. Two stores holding the same
// rows have the same digest regardless of how the rows were ordered on input.
func (s *Store) Digest() string {
	h := sha1.New()
	for _, id := range s.ids {
		for _, r := range s.series[id] {
			fmt.Fprintf(h, "%s|%s|%s|%d|%s\n",
				r.ProductID,
				r.Date.Format(domain.DateLayout),
				r.ProductName,
				r.UnitsSold,
				strconv.FormatFloat(r.Promotion, 'g', -1, 64),
			)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
