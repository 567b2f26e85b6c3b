// Package core holds the domain types shared by the budget pipeline:
// money, transactions, metrics, snapshots, trends and alerts.
package core

import "fmt"

// Money is a currency amount in cents. Calculations stay in cents; floats
// appear only at display and statistics boundaries.
type Money struct {
	Cents int64
}

// FromMilliunits converts a provider milliunit amount (1/1000 of a currency
// unit) to Money. The conversion happens exactly once, at ingestion.
func FromMilliunits(milli int64) Money {
	return Money{Cents: milli / 10}
}

// FromFloat converts a major-unit float to Money with half-up rounding.
func FromFloat(units float64) Money {
	if units < 0 {
		return Money{Cents: -int64(-units*100 + 0.5)}
	}
	return Money{Cents: int64(units*100 + 0.5)}
}

// Float returns the major-unit value for display and statistics.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m minus other.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// String formats the amount as a dollar string, e.g. "$950.00".
func (m Money) String() string {
	sign := ""
	cents := m.Cents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
