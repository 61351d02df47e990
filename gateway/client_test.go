package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/pennywise"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a client for srv with a quick breaker.
func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	cfg := pennywise.DefaultConfig()
	cfg.Backend = srv.URL
	cfg.Timeout = 2 * time.Second
	cfg.RateLimit = 1000
	cfg.Burst = 100
	cfg.Breaker.ConsecutiveFailures = 3
	cfg.Breaker.Timeout = time.Minute
	c, err := New(cfg, opts...)
	require.NoError(t, err)
	return c
}

func asError(t *testing.T, err error) *Error {
	t.Helper()
	var gerr *Error
	require.True(t, errors.As(err, &gerr), "want a *gateway.Error, got %T: %v", err, err)
	return gerr
}

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, map[string]any{"message": "can I buy a phone?", "mode": "roast"}, req)

		io.WriteString(w, `{"response":"REJECTED","logs":["[MASK] 0 entities"],"masked_prompt":"can I buy a phone?","mode":"roast"}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	resp, err := c.Chat(context.Background(), pennywise.ChatRequest{Message: "can I buy a phone?", Mode: pennywise.Roast})
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", resp.Response)
	assert.Equal(t, []string{"[MASK] 0 entities"}, resp.Logs)
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"detail":"Only PDF files are supported for now."}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Ledger(context.Background())
	gerr := asError(t, err)
	assert.Equal(t, Status, gerr.Kind)
	assert.Equal(t, http.StatusBadRequest, gerr.StatusCode)
	assert.Equal(t, "Only PDF files are supported for now.", gerr.Detail)
	assert.Equal(t, "/ledger", gerr.Endpoint)
	assert.NotEmpty(t, gerr.RequestID)
}

func TestStatusErrorWithoutDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := newTestClient(t, srv).ResetLedger(context.Background())
	gerr := asError(t, err)
	assert.Equal(t, "Not Found", gerr.Detail)
}

func TestMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"tickers": [`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Market(context.Background())
	assert.Equal(t, Decode, asError(t, err).Kind)

	_, err = c.VaultHistory(context.Background())
	assert.Equal(t, Decode, asError(t, err).Kind)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newTestClient(t, srv)
	srv.Close()

	_, err := c.Ledger(context.Background())
	assert.Equal(t, Transport, asError(t, err).Kind)
}

func TestCanceled(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(t, srv).Ledger(ctx)
	assert.Equal(t, Canceled, asError(t, err).Kind)
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	for range 3 {
		_, err := c.Market(context.Background())
		assert.Equal(t, Status, asError(t, err).Kind)
	}
	_, err := c.Market(context.Background())
	assert.Equal(t, Unavailable, asError(t, err).Kind)
	assert.Equal(t, int32(3), hits.Load(), "an open circuit must not reach the backend")
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	for range 5 {
		err := c.AddTransaction(context.Background(), pennywise.TransactionRequest{})
		assert.Equal(t, Status, asError(t, err).Kind)
	}
}

func TestTickerDetailEscapesSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/market/M&M", r.URL.Path)
		io.WriteString(w, `{"symbol":"M&M","info":null,"chart":[],"about":"","key_stats":{}}`)
	}))
	defer srv.Close()

	d, err := newTestClient(t, srv).TickerDetail(context.Background(), "M&M")
	require.NoError(t, err)
	assert.Equal(t, "M&M", d.Symbol)
}

func TestUploadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)
		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "statement.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))
		content, _ := io.ReadAll(f)
		assert.Equal(t, "%PDF-1.4", string(content))
		io.WriteString(w, `{"logs":["[MASK] 2 entities"],"message":"ok [[JSON: {}]]","filename":"statement.pdf","chart_data":null}`)
	}))
	defer srv.Close()

	resp, err := newTestClient(t, srv).UploadFile(context.Background(), "/tmp/statement.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "statement.pdf", resp.Filename)
	assert.Equal(t, []string{"[MASK] 2 entities"}, resp.Logs)
}

func TestMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "BAD") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		io.WriteString(w, `{"symbol":"AAPL","info":null,"chart":[],"about":"","key_stats":{}}`)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	c := newTestClient(t, srv, WithRegisterer(reg))
	// a second client on the same registry shares the collectors.
	c2 := newTestClient(t, srv, WithRegisterer(reg))

	ctx := context.Background()
	_, _ = c.TickerDetail(ctx, "AAPL")
	_, _ = c2.TickerDetail(ctx, "MSFT")
	_, _ = c.TickerDetail(ctx, "BAD")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.metrics.requests.WithLabelValues("/market/{symbol}", http.MethodGet, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.requests.WithLabelValues("/market/{symbol}", http.MethodGet, "status")))
}

func TestNewRejectsBadBackend(t *testing.T) {
	cfg := pennywise.DefaultConfig()
	cfg.Backend = "127.0.0.1:8000"
	_, err := New(cfg)
	assert.Error(t, err)
}
