// Package skills reads the solvency snapshot behind the skills view.
package skills

import (
	"context"
	"fmt"

	"github.com/etnz/pennywise"
	"github.com/shopspring/decimal"
)

// Source is the backend endpoint serving the summary.
type Source interface {
	FinanceSummary(ctx context.Context) (pennywise.FinanceSummary, error)
}

// Load returns the finance summary. Slices without a name or with a negative
// value are a *pennywise.DataShapeError. The safe-to-spend figure is the
// server's, as is.
func Load(ctx context.Context, src Source) (pennywise.FinanceSummary, error) {
	s, err := src.FinanceSummary(ctx)
	if err != nil {
		return pennywise.FinanceSummary{}, err
	}
	for i, sl := range s.Breakdown {
		if sl.Name == "" {
			return pennywise.FinanceSummary{}, &pennywise.DataShapeError{Source: "finance summary", Reason: fmt.Sprintf("breakdown[%d] has no name", i)}
		}
		if sl.Value.IsNegative() {
			return pennywise.FinanceSummary{}, &pennywise.DataShapeError{Source: "finance summary", Reason: fmt.Sprintf("breakdown[%d] %s is negative", i, sl.Name)}
		}
	}
	return s, nil
}

// Total returns the sum of the breakdown.
func Total(s pennywise.FinanceSummary) decimal.Decimal {
	total := decimal.Zero
	for _, sl := range s.Breakdown {
		total = total.Add(sl.Value)
	}
	return total
}

// Share returns the part of the breakdown total held by sl, in percent.
func Share(s pennywise.FinanceSummary, sl pennywise.Slice) decimal.Decimal {
	total := Total(s)
	if total.IsZero() {
		return decimal.Zero
	}
	return sl.Value.Div(total).Mul(decimal.NewFromInt(100)).Round(1)
}
