// Package mathutil provides the shared numeric rules for hitas calculations.
package mathutil

import (
	"github.com/shopspring/decimal"
)

// RoundEuros rounds a monetary total to whole euros using round-half-up.
// Banker's rounding is deliberately not used.
func RoundEuros(val decimal.Decimal) decimal.Decimal {
	return val.Round(0)
}

// RoundCents rounds a monetary value to cents using round-half-up.
func RoundCents(val decimal.Decimal) decimal.Decimal {
	return val.Round(2)
}

// RoundPerSquareMeter rounds a per-square-meter figure to two decimals using
// round-half-up.
func RoundPerSquareMeter(val decimal.Decimal) decimal.Decimal {
	return val.Round(2)
}

// ClampNonNegative floors a value at zero.
func ClampNonNegative(val decimal.Decimal) decimal.Decimal {
	if val.IsNegative() {
		return decimal.Zero
	}
	return val
}

// NullableSum accumulates decimal values while distinguishing "never
// contributed" from "contributed zero". A sum that nothing was added to stays
// nil in the output, which report consumers read as "this category was not
// used"; a sum that received a zero is reported as zero.
type NullableSum struct {
	value decimal.Decimal
	set   bool
}

// Add contributes a value to the sum.
func (s *NullableSum) Add(val decimal.Decimal) {
	s.value = s.value.Add(val)
	s.set = true
}

// AddOptional contributes a value only when it is present.
func (s *NullableSum) AddOptional(val *decimal.Decimal) {
	if val == nil {
		return
	}
	s.Add(*val)
}

// Value returns the accumulated sum, or nil when nothing ever contributed.
func (s *NullableSum) Value() *decimal.Decimal {
	if !s.set {
		return nil
	}
	v := s.value
	return &v
}

// ValueOrZero returns the accumulated sum treating "never contributed" as zero.
func (s *NullableSum) ValueOrZero() decimal.Decimal {
	return s.value
}

// Ptr returns a pointer to a copy of the given decimal.
func Ptr(val decimal.Decimal) *decimal.Decimal {
	return &val
}
