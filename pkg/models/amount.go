package models

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places of the reporting currency.
const Precision int32 = 2

// AmountFromFloat converts a float to a decimal amount.
//
// NaN and infinite values are rejected instead of being clamped.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrAmountNotFinite, f)
	}

	return decimal.NewFromFloat(f), nil
}

// AmountFromString parses a decimal amount and validates that it is a
// non-negative value with at most two decimal places.
func AmountFromString(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrAmountNotFinite, s)
	}

	return d, ValidateAmount(d)
}

// ValidateAmount verifies that an amount is not negative and does not use
// more than two decimal places.
func ValidateAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w, got %s", ErrAmountNegative, d)
	}

	if !d.Equal(d.Truncate(Precision)) {
		return fmt.Errorf("%w, got %s", ErrAmountPrecision, d)
	}

	return nil
}

// ValidatePositiveAmount is ValidateAmount, but also rejects zero.
func ValidatePositiveAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return fmt.Errorf("%w, got %s", ErrAmountNotPositive, d)
	}

	return ValidateAmount(d)
}
