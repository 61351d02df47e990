package pennywise

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickerDetailDecode(t *testing.T) {
	body := `{
		"symbol": "M&M",
		"info": {"symbol":"M&M","name":"Mahindra","price":1720.4,"change":22,"pct":1.3,"color":"#10b981"},
		"chart": [{"time":"9:00","price":1700.1},{"time":"9:10","price":1702}],
		"about": "mock",
		"key_stats": {"Open": 1703.2, "Vol": "1.2M", "P/E": "24.5"}
	}`
	var d TickerDetail
	require.NoError(t, json.Unmarshal([]byte(body), &d))

	assert.Equal(t, "M&M", d.Symbol)
	require.NotNil(t, d.Info)
	assert.Equal(t, "Mahindra", d.Info.Name)
	assert.Len(t, d.Chart, 2)
	assert.Equal(t, Stats{"Open": "1703.2", "Vol": "1.2M", "P/E": "24.5"}, d.KeyStats)
	assert.Equal(t, []string{"Open", "P/E", "Vol"}, d.KeyStats.Keys())
}

func TestUnknownTickerDetail(t *testing.T) {
	var d TickerDetail
	require.NoError(t, json.Unmarshal([]byte(`{"symbol":"XYZ","info":null,"chart":[],"about":"","key_stats":{}}`), &d))
	assert.Nil(t, d.Info)
}

func TestLedgerSnapshotDecode(t *testing.T) {
	body := `{"balance": -250.75, "history": [
		{"date":"2024-01-05 13:04","description":"Rent","amount":1000,"type":"OUT"},
		{"date":"2024-01-04 09:00","description":"Sales","amount":749.25,"type":"IN"}
	]}`
	var s LedgerSnapshot
	require.NoError(t, json.Unmarshal([]byte(body), &s))
	assert.Equal(t, "-250.75", s.Balance.String())
	require.Len(t, s.History, 2)
	assert.Equal(t, Out, s.History[0].Type)
	assert.Equal(t, "Sales", s.History[1].Description, "server order is preserved")
}

func TestVaultItemTime(t *testing.T) {
	v := VaultItem{Timestamp: "2024-01-05T13:04:05.123456"}
	ts, err := v.Time()
	require.NoError(t, err)
	assert.Equal(t, 13, ts.Hour())

	_, err = VaultItem{Timestamp: "yesterday"}.Time()
	assert.Error(t, err)
}
