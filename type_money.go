package cryptotax

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// usd is the proceeds currency of every tax computation.
const usd = "USD"

// Money represents a monetary value.
type Money struct {
	value      decimal.Decimal // as major unit value
	cur        string
	fractional bool // true to persist in full digits
}

func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// USD returns value dollars.
func USD[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Money {
	return M(value, usd)
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	code := m.cur
	if code == "" {
		code = usd
	}
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, code).Currency()
}

// String returns the string representation of the money value, rounded to
// the currency fraction (e.g. "$1,234.57").
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Currency() string                { return m.cur }
func (m Money) Decimal() decimal.Decimal        { return m.value }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(amount Money) bool      { return m.value.LessThan(amount.value) }
func (m Money) LessThanOrEqual(n Money) bool    { return m.value.LessThanOrEqual(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money                      { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Mul(n Quantity) Money            { return Money{value: m.value.Mul(n.value), cur: m.cur} }
func (m Money) Div(n Quantity) Money {
	return Money{value: m.value.DivRound(n.value, divPrecision), cur: m.cur}
}

// Equal compares values; an empty currency matches any currency.
func (m Money) Equal(n Money) bool {
	return m.value.Equal(n.value) && (m.cur == n.cur || m.cur == "" || n.cur == "")
}

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic("currency mismatch" + A.cur + "!=" + B.cur)
	}
	return A.cur
}

// Round quantizes the value to the currency fraction, half away from zero.
// It is the only rounding step of a computation and happens at export.
func (m Money) Round() Money {
	m.value = m.value.Round(int32(m.currency().Fraction))
	m.fractional = false
	return m
}

// MinMoney returns the smallest of a and b.
func MinMoney(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return b
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

// exact return a copy of money that will be persisted with all the digits.
func (m Money) exact() Money {
	m.fractional = true
	return m
}

// MarshalJSON writes the amount as a bare number, rounded to the currency
// fraction unless the money was marked exact.
func (m Money) MarshalJSON() ([]byte, error) {
	rounded := m.value
	if !m.fractional {
		rounded = m.value.Round(int32(m.currency().Fraction))
	}
	return rounded.MarshalJSON()
}

// UnmarshalJSON reads a bare USD amount.
func (m *Money) UnmarshalJSON(data []byte) error {
	m.cur = usd
	m.fractional = true
	return m.value.UnmarshalJSON(data)
}
