package pennywise

import (
	"testing"

	"github.com/shopspring/decimal"
)

// mustDecimal is a helper for test to create a decimal from a const.
func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}
