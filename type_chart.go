package pennywise

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// ChartKind tags the variant held by a Chart.
type ChartKind int

const (
	// NoChart means the message carries no structured payload.
	NoChart ChartKind = iota
	// BreakdownChart is a spending breakdown with the safe-to-spend figure.
	BreakdownChart
)

func (k ChartKind) String() string {
	switch k {
	case NoChart:
		return "none"
	case BreakdownChart:
		return "breakdown"
	default:
		return "unknown"
	}
}

// Chart is the structured payload attached to an assistant message.
//
// Only the fields of the variant named by Kind are meaningful.
type Chart struct {
	Kind           ChartKind
	Breakdown      []Slice
	SafeToSpend    decimal.Decimal
	TotalExpenses  decimal.Decimal
	CurrentBalance decimal.Decimal
}

// None is the empty chart.
var None = Chart{Kind: NoChart}

// ParseChart converts the loosely typed chart_data of a backend reply into a
// Chart. A missing or null payload is NoChart. A payload with a breakdown
// that cannot be read is a DataShapeError.
func ParseChart(raw json.RawMessage) (Chart, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return None, nil
	}
	var jobj any
	if err := json.Unmarshal(raw, &jobj); err != nil {
		return None, &DataShapeError{Source: "chart_data", Reason: err.Error()}
	}
	if _, ok := jobj.(map[string]any); !ok {
		return None, &DataShapeError{Source: "chart_data", Reason: fmt.Sprintf("expected an object, got %T", jobj)}
	}

	jval, err := jsonpath.Get("$.breakdown", jobj)
	if err != nil || jval == nil {
		// objects without a breakdown are charts we do not know how to draw.
		return None, nil
	}
	items, ok := jval.([]any)
	if !ok {
		return None, &DataShapeError{Source: "chart_data", Reason: fmt.Sprintf("breakdown is %T, not a list", jval)}
	}

	c := Chart{Kind: BreakdownChart, Breakdown: make([]Slice, 0, len(items))}
	for i, item := range items {
		name, err := jsonpath.Get("$.name", item)
		if err != nil {
			return None, &DataShapeError{Source: "chart_data", Reason: fmt.Sprintf("breakdown[%d] has no name", i)}
		}
		value, err := jsonpath.Get("$.value", item)
		if err != nil {
			return None, &DataShapeError{Source: "chart_data", Reason: fmt.Sprintf("breakdown[%d] has no value", i)}
		}
		v, err := toDecimal(value)
		if err != nil {
			return None, &DataShapeError{Source: "chart_data", Reason: fmt.Sprintf("breakdown[%d].value: %v", i, err)}
		}
		c.Breakdown = append(c.Breakdown, Slice{Name: fmt.Sprint(name), Value: v})
	}

	for path, dst := range map[string]*decimal.Decimal{
		"$.safe_to_spend":   &c.SafeToSpend,
		"$.total_expenses":  &c.TotalExpenses,
		"$.current_balance": &c.CurrentBalance,
	} {
		jval, err := jsonpath.Get(path, jobj)
		if err != nil || jval == nil {
			continue // optional figures
		}
		v, err := toDecimal(jval)
		if err != nil {
			return None, &DataShapeError{Source: "chart_data", Reason: fmt.Sprintf("%s: %v", path, err)}
		}
		*dst = v
	}
	return c, nil
}

// toDecimal reads a JSON number, or a numeric string.
func toDecimal(v any) (decimal.Decimal, error) {
	switch v := v.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		return decimal.NewFromString(v)
	default:
		return decimal.Zero, fmt.Errorf("not a number: %v", v)
	}
}
