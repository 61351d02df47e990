package pennywise

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChart(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		kind     ChartKind
		slices   int
		safe     string
		shapeErr bool
	}{
		{name: "absent", raw: "", kind: NoChart},
		{name: "null", raw: "null", kind: NoChart},
		{name: "no breakdown", raw: `{"foo": 1}`, kind: NoChart},
		{
			name:   "breakdown",
			raw:    `{"breakdown":[{"name":"Food","value":100},{"name":"Rent","value":"2500.5"}],"safe_to_spend":5000,"total_expenses":2600.5,"current_balance":50000}`,
			kind:   BreakdownChart,
			slices: 2,
			safe:   "5000",
		},
		{name: "breakdown without figures", raw: `{"breakdown":[]}`, kind: BreakdownChart, safe: "0"},
		{name: "not an object", raw: `[1,2]`, shapeErr: true},
		{name: "breakdown not a list", raw: `{"breakdown":"food"}`, shapeErr: true},
		{name: "slice without value", raw: `{"breakdown":[{"name":"Food"}]}`, shapeErr: true},
		{name: "slice with bad value", raw: `{"breakdown":[{"name":"Food","value":true}]}`, shapeErr: true},
		{name: "bad figure", raw: `{"breakdown":[],"safe_to_spend":"lots"}`, shapeErr: true},
		{name: "malformed", raw: `{"breakdown":`, shapeErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseChart(json.RawMessage(tt.raw))
			if tt.shapeErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrDataShape), "got %v", err)
				assert.Equal(t, NoChart, c.Kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, c.Kind)
			assert.Len(t, c.Breakdown, tt.slices)
			if tt.safe != "" {
				assert.True(t, decimal.RequireFromString(tt.safe).Equal(c.SafeToSpend), "safe to spend = %v", c.SafeToSpend)
			}
		})
	}
}

func TestParseChartValues(t *testing.T) {
	c, err := ParseChart(json.RawMessage(`{"breakdown":[{"name":"Food","value":100.25}],"current_balance":"42"}`))
	require.NoError(t, err)
	require.Len(t, c.Breakdown, 1)
	assert.Equal(t, "Food", c.Breakdown[0].Name)
	assert.Equal(t, "100.25", c.Breakdown[0].Value.String())
	assert.Equal(t, "42", c.CurrentBalance.String())
	assert.Equal(t, "breakdown", c.Kind.String())
}
