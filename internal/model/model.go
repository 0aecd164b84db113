// Package model implements the demand model: a ridge regression over an expanded
// design of the feature vector. Each product gets its own month profile, so the
// single global model can still learn per-product seasonality.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/features"
)

const (
	formatVersion = 1
	monthsPerYear = 12
	// DefaultLambda is the ridge penalty applied to every coefficient except the intercept.
	DefaultLambda = 1.0
)

var ErrSingular = errors.New("model: normal equations are not positive definite")

// Model is a fitted demand model. It is immutable and safe for concurrent use.
type Model struct {
	Version      int       `json:"version"`
	Products     int       `json:"products"`
	Lambda       float64   `json:"lambda"`
	Columns      []string  `json:"columns"`
	Coefficients []float64 `json:"coefficients"`
	TrainedRows  int       `json:"trained_rows"`
	TrainedAt    time.Time `json:"trained_at"`
}

// Columns: intercept, product x month indicators, then the numeric features.
func columnNames(products int) []string {
	cols := []string{"intercept"}
	for p := 0; p < products; p++ {
		for m := 1; m <= monthsPerYear; m++ {
			cols = append(cols, fmt.Sprintf("product_%d_month_%d", p, m))
		}
	}
	return append(cols, "day", "lag_1", "lag_7", "rolling_30", "promo")
}

func designWidth(products int) int {
	return 1 + products*monthsPerYear + 5
}

func designRow(dst []float64, v features.Vector, products int) error {
	if v.ProductCode < 0 || v.ProductCode >= products {
		return fmt.Errorf("%w: product code %d", domain.ErrUnknownProduct, v.ProductCode)
	}
	if v.Month < 1 || v.Month > monthsPerYear {
		return fmt.Errorf("%w: month %d", domain.ErrInvalidArgument, v.Month)
	}

	for i := range dst {
		dst[i] = 0
	}
	dst[0] = 1
	dst[1+v.ProductCode*monthsPerYear+v.Month-1] = 1

	tail := 1 + products*monthsPerYear
	dst[tail] = float64(v.Day)
	dst[tail+1] = v.Lag1
	dst[tail+2] = v.Lag7
	dst[tail+3] = v.Rolling30
	dst[tail+4] = v.Promotion
	return nil
}

// Fit solves (XᵀX + λI')β = Xᵀy where I' leaves the intercept unpenalized.
func Fit(rows []features.Vector, target []float64, products int, lambda float64) (*Model, error) {
	if len(rows) == 0 {
		return nil, errors.New("model: no training rows")
	}
	if len(rows) != len(target) {
		return nil, fmt.Errorf("model: %d rows but %d targets", len(rows), len(target))
	}
	if products <= 0 {
		return nil, errors.New("model: at least one product is required")
	}
	if lambda <= 0 {
		lambda = DefaultLambda
	}

	p := designWidth(products)
	x := mat.NewDense(len(rows), p, nil)
	buf := make([]float64, p)
	for i, v := range rows {
		if err := designRow(buf, v, products); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		x.SetRow(i, buf)
	}
	y := mat.NewVecDense(len(target), target)

	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())
	for j := 1; j < p; j++ {
		xtx.SetSym(j, j, xtx.At(j, j)+lambda)
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, ErrSingular
	}

	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		return nil, fmt.Errorf("model: solve: %w", err)
	}

	coef := make([]float64, p)
	for j := range coef {
		coef[j] = beta.AtVec(j)
	}

	return &Model{
		Version:      formatVersion,
		Products:     products,
		Lambda:       lambda,
		Columns:      columnNames(products),
		Coefficients: coef,
		TrainedRows:  len(rows),
		TrainedAt:    time.Now().UTC(),
	}, nil
}

// Predict returns the raw regression output for v. It may be negative.
func (m *Model) Predict(v features.Vector) (float64, error) {
	row := make([]float64, len(m.Coefficients))
	if err := designRow(row, v, m.Products); err != nil {
		return 0, err
	}

	var out float64
	for j, c := range m.Coefficients {
		out += c * row[j]
	}
	return out, nil
}

func (m *Model) validate() error {
	if m.Version != formatVersion {
		return fmt.Errorf("model: unsupported format version %d", m.Version)
	}
	if m.Products <= 0 {
		return errors.New("model: no products")
	}
	if want := designWidth(m.Products); len(m.Coefficients) != want {
		return fmt.Errorf("model: %d coefficients, want %d", len(m.Coefficients), want)
	}
	return nil
}

// Read decodes and validates a model written by WriteTo.
func Read(r io.Reader) (*Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Model) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return 0, err
	}
	n, err := w.Write(append(data, '\n'))
	return int64(n), err
}
