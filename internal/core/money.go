// Package core holds the domain model and the pure aggregation functions
// that derive per-member views (settlements, comparisons, breakdowns) from
// backend-computed financial records.
package core

import "math"

// CentsFromFloat converts a wire decimal amount to cents with half-up
// rounding. The backend serialises money as JSON numbers; all local
// arithmetic happens on cents to avoid floating-point drift.
func CentsFromFloat(v float64) Money {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Money{}
	}
	cents := math.Round(v * 100)
	return Money{Cents: int64(cents)}
}

// Float returns the decimal value for serialisation back to the wire.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m minus o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// Abs returns the absolute amount.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}
