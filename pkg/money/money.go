// Package money holds monetary values as scaled integers so that sums are
// exact. All amounts carry two fractional digits (cents).
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value in minor units (cents).
type Amount int64

// FromMinorUnits wraps a raw cent value.
func FromMinorUnits(v int64) Amount {
	return Amount(v)
}

// Parse converts a decimal string such as "15.99" into an Amount.
// Values with more than two fractional digits or negative values are rejected.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %q must not be negative", s)
	}
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	return Amount(shifted.IntPart()), nil
}

// Mul returns the amount multiplied by a quantity.
func (a Amount) Mul(qty int) Amount {
	return a * Amount(qty)
}

// Add returns the exact sum of two amounts.
func (a Amount) Add(b Amount) Amount {
	return a + b
}

// MinorUnits returns the raw cent value.
func (a Amount) MinorUnits() int64 {
	return int64(a)
}

// String renders the amount with exactly two decimal places, e.g. "31.98".
func (a Amount) String() string {
	return decimal.New(int64(a), -2).StringFixed(2)
}

// MarshalJSON encodes the amount as a quoted decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts either a quoted decimal string or a bare number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
