// Package money provides the fixed-point Amount type used for transaction
// and budget values. Amounts are stored as DECIMAL(12,2) and always
// serialised with exactly two fraction digits.
package money

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxDigits is the total number of significant digits an amount may carry.
	MaxDigits = 12
	// Places is the number of fraction digits kept.
	Places = 2
)

// FormatError describes why a string could not be parsed into an Amount.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid amount %q: %s", e.Input, e.Reason)
}

// Amount is a signed decimal value with at most MaxDigits digits, Places of
// which are after the decimal point.
// The zero value is 0.00.
type Amount struct {
	d decimal.Decimal
}

// Zero returns 0.00.
func Zero() Amount { return Amount{} }

// FromDecimal rounds d to Places fraction digits.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount{d: d.Round(Places)}
}

// Parse parses a decimal string such as "1234.50" or "-3". It rejects
// values with more than Places fraction digits or more than
// MaxDigits-Places whole digits.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, &FormatError{Input: s, Reason: "a valid number is required"}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, &FormatError{Input: s, Reason: "a valid number is required"}
	}

	digits := len(d.Coefficient().Abs(d.Coefficient()).String())
	exp := int(d.Exponent())

	var whole, frac int
	if exp >= 0 {
		whole = digits + exp
		if d.IsZero() {
			whole = 0
		}
	} else {
		frac = -exp
		whole = max(digits-frac, 0)
	}

	if frac > Places {
		return Amount{}, &FormatError{Input: s, Reason: fmt.Sprintf("ensure that there are no more than %d decimal places", Places)}
	}
	if whole > MaxDigits-Places {
		return Amount{}, &FormatError{Input: s, Reason: fmt.Sprintf("ensure that there are no more than %d digits before the decimal point", MaxDigits-Places)}
	}

	return Amount{d: d}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal { return a.d }

// String formats the amount with exactly Places fraction digits.
func (a Amount) String() string { return a.d.StringFixed(Places) }

// Add returns a + b.
func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int { return a.d.Cmp(b.d) }

// IsZero reports whether a == 0.
func (a Amount) IsZero() bool { return a.d.IsZero() }

// IsNegative reports whether a < 0.
func (a Amount) IsNegative() bool { return a.d.IsNegative() }

// Percent returns a as a percentage of total, rounded to two places.
// It returns 0 when total is zero.
func (a Amount) Percent(total Amount) float64 {
	if total.d.IsZero() {
		return 0
	}
	return a.d.Div(total.d).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

// MarshalJSON encodes the amount as a quoted string, e.g. "45.00".
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts both JSON strings ("45.00") and numbers (45.00).
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)

	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner. Drivers return DECIMAL columns as strings,
// byte slices, integers or floats depending on the backend.
func (a *Amount) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("scan amount: %w", err)
	}
	a.d = d.Round(Places)
	return nil
}
