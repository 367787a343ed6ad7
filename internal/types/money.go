// README: Common money value object used across modules.
package types

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fraction digits kept for every amount (grosz).
const MoneyScale = 2

// Money is a decimal amount rounded to MoneyScale fraction digits.
// The zero value is 0.00.
type Money struct {
	d decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{d: d.Round(MoneyScale)}
}

func MoneyFromInt(v int64) Money {
	return Money{d: decimal.NewFromInt(v)}
}

func MoneyFromFloat(v float64) Money {
	return NewMoney(decimal.NewFromFloat(v))
}

// ParseMoney parses a decimal string such as "41" or "12.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	return NewMoney(d), nil
}

// MustMoney is ParseMoney for constants and fixtures.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }

// Mul multiplies by an arbitrary decimal factor and rounds the product.
func (m Money) Mul(f decimal.Decimal) Money { return NewMoney(m.d.Mul(f)) }

func (m Money) MulInt(n int64) Money { return Money{d: m.d.Mul(decimal.NewFromInt(n))} }

func (m Money) IsZero() bool     { return m.d.IsZero() }
func (m Money) IsPositive() bool { return m.d.IsPositive() }
func (m Money) IsNegative() bool { return m.d.IsNegative() }
func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

// String renders the amount with exactly two fraction digits.
func (m Money) String() string { return m.d.StringFixed(MoneyScale) }

// MarshalJSON writes the amount as a JSON number with two fraction digits.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts both 12.5 and "12.50".
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(bytes.TrimSpace(b), `"`)
	if len(b) == 0 || string(b) == "null" {
		*m = Money{}
		return nil
	}
	parsed, err := ParseMoney(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Sum adds up amounts; an empty list sums to zero.
func Sum(items ...Money) Money {
	var total Money
	for _, it := range items {
		total = total.Add(it)
	}
	return total
}
