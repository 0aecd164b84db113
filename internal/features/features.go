// Package features derives the demand model inputs from a product's sales series.
// Training rows and the forecast seed both go through this package so the two
// always agree on the feature schema.
package features

import "time"

const (
	// RollingWindow is the number of trailing days averaged into Rolling30.
	RollingWindow = 30
	// WeeklyLag is the distance in days of the Lag7 feature.
	WeeklyLag = 7
	// NoPromotion is the promotion multiplier of an ordinary day.
	NoPromotion = 1.0
)

// Vector is one row of model input.
type Vector struct {
	ProductCode int     `json:"product_code"`
	Month       int     `json:"month"`
	Day         int     `json:"day"`
	Lag1        float64 `json:"lag_1"`
	Lag7        float64 `json:"lag_7"`
	Rolling30   float64 `json:"rolling_30"`
	Promotion   float64 `json:"promo"`
}

// State is the lag and rolling part of a Vector, independent of the calendar.
type State struct {
	Lag1      float64
	Lag7      float64
	Rolling30 float64
}

// StateFrom computes the running state from the units sold on the days before the
// target date, oldest first.
//
// Lag1 is the last value (0 without history). Lag7 is the value seven days back when
// at least eight points exist, otherwise Lag1. Rolling30 is the mean of up to the last
// 30 values (0 without history).
func StateFrom(preceding []float64) State {
	n := len(preceding)
	if n == 0 {
		return State{}
	}

	s := State{Lag1: preceding[n-1]}
	if n > WeeklyLag {
		s.Lag7 = preceding[n-WeeklyLag]
	} else {
		s.Lag7 = s.Lag1
	}

	window := preceding
	if n > RollingWindow {
		window = preceding[n-RollingWindow:]
	}
	var sum float64
	for _, v := range window {
		sum += v
	}
	s.Rolling30 = sum / float64(len(window))

	return s
}

// Vector combines the state with the calendar parts of date.
func (s State) Vector(code int, date time.Time, promo float64) Vector {
	return Vector{
		ProductCode: code,
		Month:       int(date.Month()),
		Day:         date.Day(),
		Lag1:        s.Lag1,
		Lag7:        s.Lag7,
		Rolling30:   s.Rolling30,
		Promotion:   promo,
	}
}

// Build returns the feature vector for product code on date.
func Build(code int, date time.Time, preceding []float64, promo float64) Vector {
	return StateFrom(preceding).Vector(code, date, promo)
}
