package skills

import (
	"context"
	"errors"
	"testing"

	"github.com/etnz/pennywise"
	"github.com/shopspring/decimal"
)

type source struct {
	s   pennywise.FinanceSummary
	err error
}

func (s source) FinanceSummary(ctx context.Context) (pennywise.FinanceSummary, error) {
	return s.s, s.err
}

func slice(name, value string) pennywise.Slice {
	return pennywise.Slice{Name: name, Value: decimal.RequireFromString(value)}
}

func TestLoad(t *testing.T) {
	want := pennywise.FinanceSummary{
		CurrentBalance: decimal.RequireFromString("5000"),
		Breakdown:      []pennywise.Slice{slice("Food", "200"), slice("Gym", "50"), slice("Netflix", "15")},
		SafeToSpend:    decimal.RequireFromString("-120.5"),
	}
	got, err := Load(context.Background(), source{s: want})
	if err != nil {
		t.Fatal(err)
	}
	if !got.SafeToSpend.Equal(want.SafeToSpend) {
		t.Errorf("SafeToSpend = %s, want %s", got.SafeToSpend, want.SafeToSpend)
	}
	if total := Total(got); !total.Equal(decimal.NewFromInt(265)) {
		t.Errorf("Total() = %s, want 265", total)
	}
	if share := Share(got, got.Breakdown[0]); share.String() != "75.5" {
		t.Errorf("Share(Food) = %s, want 75.5", share)
	}
}

func TestLoadShapeErrors(t *testing.T) {
	for _, b := range [][]pennywise.Slice{
		{slice("", "10")},
		{slice("Food", "-1")},
	} {
		_, err := Load(context.Background(), source{s: pennywise.FinanceSummary{Breakdown: b}})
		if !errors.Is(err, pennywise.ErrDataShape) {
			t.Errorf("Load(%v) = %v, want a data shape error", b, err)
		}
	}
}

func TestLoadNetworkError(t *testing.T) {
	cause := errors.New("timeout")
	if _, err := Load(context.Background(), source{err: cause}); !errors.Is(err, cause) {
		t.Errorf("Load() = %v, want %v", err, cause)
	}
}

func TestShareOfEmptyBreakdown(t *testing.T) {
	if got := Share(pennywise.FinanceSummary{}, slice("Food", "0")); !got.IsZero() {
		t.Errorf("Share() = %s, want 0", got)
	}
}
