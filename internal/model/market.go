package model

import (
	"math"
	"time"
)

// PricePoint is a single daily close. A missing or non-numeric close is
// carried as NaN so downstream calculations can refuse the series.
type PricePoint struct {
	Time  time.Time
	Close float64
}

// Valid reports whether the close is a usable finite number.
func (p PricePoint) Valid() bool {
	return !math.IsNaN(p.Close) && !math.IsInf(p.Close, 0)
}

// PriceSeries holds the closes of one ticker, oldest first.
type PriceSeries struct {
	Symbol    string
	Interval  string
	Points    []PricePoint
	FetchedAt time.Time
}

// Len returns the number of points in the series.
func (s PriceSeries) Len() int { return len(s.Points) }

// Closes extracts the close values in series order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Last returns the most recent point, or false for an empty series.
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}
