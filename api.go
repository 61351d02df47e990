package pennywise

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// This file contains the backend REST contract, field for field.

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
	Mode    Mode   `json:"mode"`
}

// ChatResponse is the reply of POST /chat.
type ChatResponse struct {
	Response     string          `json:"response"`
	Logs         []string        `json:"logs"`
	MaskedPrompt string          `json:"masked_prompt"`
	Mode         string          `json:"mode"`
	ChartData    json.RawMessage `json:"chart_data,omitempty"`
}

// UploadResponse is the reply of POST /upload.
type UploadResponse struct {
	Logs      []string        `json:"logs"`
	Message   string          `json:"message"`
	Filename  string          `json:"filename"`
	ChartData json.RawMessage `json:"chart_data,omitempty"`
}

// LedgerEntry is one recorded cash movement. Amount is the magnitude, the
// sign is carried by Type.
type LedgerEntry struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        Direction       `json:"type"`
}

// LedgerSnapshot is the reply of GET /ledger. History is kept in server order.
type LedgerSnapshot struct {
	Balance decimal.Decimal `json:"balance"`
	History []LedgerEntry   `json:"history"`
}

// TransactionRequest is the body of POST /ledger/add.
type TransactionRequest struct {
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Type        Direction   `json:"type"`
}

// NewTransactionRequest builds the body of POST /ledger/add. The amount is
// sent as a JSON number.
func NewTransactionRequest(description string, amount decimal.Decimal, dir Direction) TransactionRequest {
	return TransactionRequest{
		Description: description,
		Amount:      json.Number(amount.String()),
		Type:        dir,
	}
}

// Slice is one named share of a breakdown.
type Slice struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// FinanceSummary is the reply of GET /finance/summary.
type FinanceSummary struct {
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Breakdown      []Slice         `json:"breakdown"`
	SafeToSpend    decimal.Decimal `json:"safe_to_spend"`
}

// VaultItem is one decrypted event of the encrypted history.
type VaultItem struct {
	Timestamp string `json:"timestamp"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

// vaultTimeFormat is the backend's naive ISO-8601 timestamp.
const vaultTimeFormat = "2006-01-02T15:04:05.999999"

// Time parses the item's timestamp, in local time.
func (v VaultItem) Time() (time.Time, error) {
	return time.ParseInLocation(vaultTimeFormat, v.Timestamp, time.Local)
}

// Ticker is the current quote of one market symbol.
type Ticker struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
	Pct    float64 `json:"pct"`
	Color  string  `json:"color"`
}

// NewsItem is one market headline.
type NewsItem struct {
	Source   string `json:"source"`
	Headline string `json:"headline"`
	Time     string `json:"time"`
}

// MarketOverview is the reply of GET /market.
type MarketOverview struct {
	Tickers []Ticker   `json:"tickers"`
	News    []NewsItem `json:"news"`
}

// PricePoint is one point of an intraday series.
type PricePoint struct {
	Time  string  `json:"time"`
	Price float64 `json:"price"`
}

// TickerDetail is the reply of GET /market/{symbol}. Info is nil when the
// backend does not know the symbol.
type TickerDetail struct {
	Symbol   string       `json:"symbol"`
	Info     *Ticker      `json:"info"`
	Chart    []PricePoint `json:"chart"`
	About    string       `json:"about"`
	KeyStats Stats        `json:"key_stats"`
}

// Stats maps a statistic name to its display value. The backend mixes
// numbers and strings, both are kept as text.
type Stats map[string]string

func (s *Stats) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = nil
		return nil
	}
	out := make(Stats, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case string:
			out[k] = v
		case float64:
			out[k] = decimal.NewFromFloat(v).String()
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	*s = out
	return nil
}

// Keys returns the statistic names in a stable order.
func (s Stats) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
