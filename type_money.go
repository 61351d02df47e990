package pennywise

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency of the cash book when none is configured.
const DefaultCurrency = "INR"

// Money is an amount as reported by the server, tagged with a currency for display.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns the Money for value in currency. An empty currency means DefaultCurrency.
func M(value decimal.Decimal, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{value: value, cur: currency}
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the amount formatted with the currency's grapheme and separators.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString prefixes the amount with the ledger direction sign.
func (m Money) SignedString(d Direction) string {
	if d == Out {
		return "- " + m.Abs().String()
	}
	return "+ " + m.Abs().String()
}

func (m Money) Currency() string         { return m.cur }
func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsNegative() bool         { return m.value.IsNegative() }
func (m Money) Abs() Money               { return Money{value: m.value.Abs(), cur: m.cur} }

// Standing is "Surplus" for a non-negative balance, "Deficit" otherwise.
func (m Money) Standing() string {
	if m.value.IsNegative() {
		return "Deficit"
	}
	return "Surplus"
}
