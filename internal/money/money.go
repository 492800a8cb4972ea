// Package money provides the fixed-precision amount type used by the ledger.
//
// A Money value is an integer number of cents. Parsing, formatting and any
// arithmetic that can produce fractions of a cent go through
// github.com/shopspring/decimal so no float ever touches an amount.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places of the minimal currency unit.
const Places = 2

// MaxCents bounds the magnitude of any amount accepted from a caller. It
// leaves enough headroom that folding a large history of such amounts stays
// far from int64 overflow.
const MaxCents = 10_000_000_000_000

// Zero is the zero amount.
var Zero = Money{}

// Max is the largest accepted amount, 100000000000.00.
var Max = Money{cents: MaxCents}

// ErrOverflow is returned by CheckedAdd when a sum leaves the int64 range.
var ErrOverflow = errors.New("money: amount overflow")

// Money is an amount in minor units (cents). The zero value is 0.00.
type Money struct {
	cents int64
}

// FromCents returns the amount with the given number of minor units.
func FromCents(cents int64) Money {
	return Money{cents: cents}
}

// FromDecimal converts d to Money. It fails if d has more precision than
// the minimal unit; callers that want rounding must round first.
func FromDecimal(d decimal.Decimal) (Money, error) {
	if !d.Equal(d.Truncate(Places)) {
		return Money{}, fmt.Errorf("amount %s has more than %d decimal places", d.String(), Places)
	}
	if d.Abs().GreaterThan(Max.Decimal()) {
		return Money{}, fmt.Errorf("amount %s exceeds maximum %s", d.String(), Max)
	}
	return Money{cents: d.Shift(Places).IntPart()}, nil
}

// Parse reads a decimal string such as "10", "10.5" or "-3.33".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// MustParse is Parse for constants and tests; it panics on error.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Cents returns the amount in minor units.
func (m Money) Cents() int64 { return m.cents }

// Decimal returns the amount as a decimal with two places.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.cents, -Places)
}

func (m Money) Add(other Money) Money { return Money{cents: m.cents + other.cents} }

func (m Money) Sub(other Money) Money { return Money{cents: m.cents - other.cents} }

// CheckedAdd is Add that reports ErrOverflow instead of wrapping.
func (m Money) CheckedAdd(other Money) (Money, error) {
	if (other.cents > 0 && m.cents > math.MaxInt64-other.cents) ||
		(other.cents < 0 && m.cents < math.MinInt64-other.cents) {
		return Money{}, fmt.Errorf("%w: %s + %s", ErrOverflow, m, other)
	}
	return Money{cents: m.cents + other.cents}, nil
}

// Abs returns |m|.
func (m Money) Abs() Money {
	if m.cents < 0 {
		return Money{cents: -m.cents}
	}
	return m
}

// Cmp returns -1, 0 or +1.
func (m Money) Cmp(other Money) int {
	switch {
	case m.cents < other.cents:
		return -1
	case m.cents > other.cents:
		return 1
	default:
		return 0
	}
}

func (m Money) IsZero() bool     { return m.cents == 0 }
func (m Money) IsPositive() bool { return m.cents > 0 }
func (m Money) IsNegative() bool { return m.cents < 0 }

// String formats with exactly two decimals, e.g. "3.30".
func (m Money) String() string {
	return m.Decimal().StringFixed(Places)
}

// Sum adds all amounts.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Value stores the amount as integer cents.
func (m Money) Value() (driver.Value, error) {
	return m.cents, nil
}

// Scan reads integer cents.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		m.cents = v
	case nil:
		m.cents = 0
	default:
		return fmt.Errorf("money: cannot scan %T", src)
	}
	return nil
}
