package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func series(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func TestStateFrom_Empty(t *testing.T) {
	assert.Equal(t, State{}, StateFrom(nil))
}

func TestStateFrom_ShortHistoryFallsBackToLag1(t *testing.T) {
	s := StateFrom([]float64{4, 6, 8})

	assert.Equal(t, 8.0, s.Lag1)
	assert.Equal(t, 8.0, s.Lag7)
	assert.InDelta(t, 6.0, s.Rolling30, 1e-9)

	// exactly seven points is still too short for a weekly lag
	s = StateFrom(series(7, func(i int) float64 { return float64(i) }))
	assert.Equal(t, 6.0, s.Lag7)
}

func TestStateFrom_WeeklyLag(t *testing.T) {
	s := StateFrom(series(8, func(i int) float64 { return float64(i + 1) }))

	assert.Equal(t, 8.0, s.Lag1)
	assert.Equal(t, 2.0, s.Lag7)
}

func TestStateFrom_RollingWindowIsBounded(t *testing.T) {
	// 10 leading zeros followed by 30 fives: only the fives count
	data := append(make([]float64, 10), series(30, func(int) float64 { return 5 })...)

	s := StateFrom(data)
	assert.InDelta(t, 5.0, s.Rolling30, 1e-9)
}

func TestBuild(t *testing.T) {
	date := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)

	v := Build(2, date, []float64{10, 20}, 1.6)

	assert.Equal(t, Vector{
		ProductCode: 2,
		Month:       6,
		Day:         14,
		Lag1:        20,
		Lag7:        20,
		Rolling30:   15,
		Promotion:   1.6,
	}, v)
}
