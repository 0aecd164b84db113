package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
)

// CSVHeader is the column order written by WriteCSV.
var CSVHeader = []string{"date", "product_id", "product_name", "sales", "promo"}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

var dateLayouts = []string{domain.DateLayout, "2006-01-02 15:04:05", time.RFC3339}

func parseDate(v string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return truncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", v)
}

// ReadCSV parses a sales history table. Columns are located by name; product_name
// and promo are optional (promo defaults to 1.0).
func ReadCSV(r io.Reader) ([]domain.SalesRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex := func(names ...string) int {
		for i, h := range header {
			for _, name := range names {
				if normalizeColumnName(h) == normalizeColumnName(name) {
					return i
				}
			}
		}
		return -1
	}

	idxDate := colIndex("date")
	idxProduct := colIndex("product_id", "sku")
	idxName := colIndex("product_name", "name")
	idxSales := colIndex("sales", "units_sold")
	idxPromo := colIndex("promo", "promotion")
	if idxDate < 0 || idxProduct < 0 || idxSales < 0 {
		return nil, fmt.Errorf("CSV header %v must contain date, product_id and sales", header)
	}

	var records []domain.SalesRecord
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		get := func(idx int) string {
			if idx < 0 || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		date, err := parseDate(get(idxDate))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		units, err := strconv.ParseFloat(get(idxSales), 64)
		if err != nil || units != math.Trunc(units) {
			return nil, fmt.Errorf("line %d: sales %q is not a whole number", line, get(idxSales))
		}
		if units > math.MaxInt32 || units < math.MinInt32 {
			return nil, fmt.Errorf("line %d: sales %q is out of range", line, get(idxSales))
		}

		promo := 1.0
		if v := get(idxPromo); v != "" {
			promo, err = strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: promo %q: %w", line, v, err)
			}
			if !(promo > 0) || math.IsInf(promo, 1) {
				return nil, fmt.Errorf("line %d: promo %q must be a finite positive number", line, v)
			}
		}

		records = append(records, domain.SalesRecord{
			Date:        date,
			ProductID:   get(idxProduct),
			ProductName: get(idxName),
			UnitsSold:   int(units),
			Promotion:   promo,
		})
	}

	return records, nil
}

// WriteCSV writes records with CSVHeader.
func WriteCSV(w io.Writer, records []domain.SalesRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		err := cw.Write([]string{
			r.Date.Format(domain.DateLayout),
			r.ProductID,
			r.ProductName,
			strconv.Itoa(r.UnitsSold),
			strconv.FormatFloat(r.Promotion, 'f', -1, 64),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// LoadCSV reads path into a Store.
func LoadCSV(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewStore(records)
}

// SaveCSV writes records to path, replacing any existing file.
func SaveCSV(path string, records []domain.SalesRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteCSV(f, records); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
