// Package gateway wraps every call to the PennyWise backend.
//
// A call either succeeds or returns a *Error: transport failures, non-2xx
// statuses and malformed bodies are all normalized, nothing panics across
// the boundary. Audit logging is left to callers, which alone know what a
// call means.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/etnz/pennywise"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// maxBody caps the size of a response body read in memory.
const maxBody = 16 << 20

// Client calls the backend.
type Client struct {
	base    string // origin without trailing slash
	http    *http.Client
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	metrics *metrics
	reg     prometheus.Registerer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithRegisterer registers the client metrics in reg.
func WithRegisterer(reg prometheus.Registerer) Option { return func(c *Client) { c.reg = reg } }

// New returns a Client for the backend configured in cfg.
func New(cfg pennywise.Config, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("invalid backend %q: %w", cfg.Backend, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend %q: scheme and host are required", cfg.Backend)
	}
	c := &Client{
		base:    strings.TrimRight(u.String(), "/"),
		http:    new(http.Client),
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.metrics = newMetrics(c.reg)
	c.breaker = newBreaker(cfg.Breaker)
	return c, nil
}

func newBreaker(cfg pennywise.BreakerConfig) *gobreaker.CircuitBreaker {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "backend",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("backend circuit changed state")
		},
		IsSuccessful: func(err error) bool {
			// Only an unreachable or failing backend counts against it.
			var gerr *Error
			if errors.As(err, &gerr) {
				switch gerr.Kind {
				case Status:
					return gerr.StatusCode < 500
				case Canceled:
					return true
				}
			}
			return err == nil
		},
	})
}

// Call sends body as JSON to path and decodes the response into out. A nil
// body sends no content, a nil out discards the response.
func (c *Client) Call(ctx context.Context, method, path string, body, out any) error {
	return c.call(ctx, path, method, path, body, out)
}

// call is Call with a route label for metrics, so that /market/{symbol} is
// counted once whatever the symbol.
func (c *Client) call(ctx context.Context, route, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &Error{Kind: Transport, Method: method, Endpoint: path, Detail: "cannot encode request", Err: err}
		}
	}
	build := func(ctx context.Context) (*http.Request, error) {
		var r io.Reader
		if payload != nil {
			r = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, r)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	}
	return c.do(ctx, route, method, path, build, out)
}

func (c *Client) do(ctx context.Context, route, method, path string, build func(context.Context) (*http.Request, error), out any) error {
	start := time.Now()
	id := uuid.NewString()
	outcome := "ok"
	defer func() {
		c.metrics.observe(route, method, outcome, time.Since(start).Seconds())
	}()
	fail := func(kind Kind, status int, detail string, cause error) error {
		outcome = kind.String()
		return &Error{Kind: kind, Method: method, Endpoint: path, StatusCode: status, Detail: detail, RequestID: id, Err: cause}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fail(Canceled, 0, "rate limiter", err)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	res, err := c.breaker.Execute(func() (any, error) {
		req, err := build(ctx)
		if err != nil {
			return nil, fail(Transport, 0, "cannot build request", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-Id", id)

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fail(Canceled, 0, ctx.Err().Error(), err)
			}
			return nil, fail(Transport, 0, err.Error(), err)
		}
		defer resp.Body.Close()
		log.Debug().Str("request_id", id).Str("method", method).Str("host", resp.Request.URL.Host).
			Str("path", resp.Request.URL.Path).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).
			Msg("backend exchange")

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return nil, fail(Transport, 0, "cannot read body: "+err.Error(), err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fail(Status, resp.StatusCode, statusDetail(resp.Status, data), nil)
		}
		return data, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fail(Unavailable, 0, "backend unavailable: "+err.Error(), err)
	}
	if err != nil {
		return err // already an *Error
	}

	data := res.([]byte)
	if out == nil {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		if !json.Valid(data) {
			return fail(Decode, 0, "malformed JSON body", nil)
		}
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fail(Decode, 0, "malformed body: "+err.Error(), err)
	}
	return nil
}

// statusDetail returns the backend's error detail if there is one, the HTTP status text otherwise.
func statusDetail(status string, body []byte) string {
	var e struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(body, &e) == nil {
		if s, ok := e.Detail.(string); ok && s != "" {
			return s
		}
	}
	if _, text, ok := strings.Cut(status, " "); ok {
		return text
	}
	return status
}
