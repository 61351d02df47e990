// Package market keeps a live ticker board and the detail of one selected
// ticker in sync with the backend feed.
//
// The engine polls the ticker list at a fixed period. Every successful poll
// re-fetches the detail of the selected ticker, so that the detail follows
// the board. A detail response is applied only if it answers the current
// selection and is newer than the displayed one, late responses for a
// previous selection are dropped.
package market

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/etnz/pennywise"
	"github.com/etnz/pennywise/glassbox"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Feed is the market part of the backend.
type Feed interface {
	Market(ctx context.Context) (pennywise.MarketOverview, error)
	TickerDetail(ctx context.Context, symbol string) (pennywise.TickerDetail, error)
}

// State is the engine's lifecycle state.
type State int

const (
	Uninitialized State = iota
	Polling
	DetailLoading
	DetailReady
	Error
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Polling:
		return "polling"
	case DetailLoading:
		return "detail-loading"
	case DetailReady:
		return "detail-ready"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Engine owns the ticker set, the selection and the selected detail. It is
// safe for concurrent use.
type Engine struct {
	feed     Feed
	sink     glassbox.Sink
	interval time.Duration
	polls    *prometheus.CounterVec

	ctx    context.Context // canceled by Stop
	cancel context.CancelFunc
	wg     sync.WaitGroup

	changes chan struct{}

	mu       sync.Mutex
	started  bool
	stopped  bool
	tickers  []pennywise.Ticker
	news     []pennywise.NewsItem
	selected string
	detail   *pennywise.TickerDetail
	state    State
	err      error
	seq      uint64 // last detail fetch issued
	applied  uint64 // last detail fetch applied
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegisterer counts polls in reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		polls := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pennywise",
			Subsystem: "market",
			Name:      "polls_total",
			Help:      "Market polls by outcome.",
		}, []string{"outcome"})
		if err := reg.Register(polls); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
					polls = existing
				}
			}
		}
		e.polls = polls
	}
}

// New returns an engine polling feed every interval once started.
func New(feed Feed, sink glassbox.Sink, interval time.Duration, opts ...Option) *Engine {
	e := &Engine{
		feed:     feed,
		sink:     sink,
		interval: interval,
		changes:  make(chan struct{}, 1),
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start polls at once, then every interval until ctx is done or Stop is
// called. Starting twice, or after Stop, does nothing.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	e.wg.Add(1)
	go e.loop(ctx)
}

func (e *Engine) loop(ctx context.Context) {
	defer e.wg.Done()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer context.AfterFunc(e.ctx, cancel)()

	t := time.NewTicker(e.interval)
	defer t.Stop()
	for {
		_ = e.Poll(ctx) // failures are reported by Poll
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// Stop ends polling and waits for in-flight fetches. Fetches completing
// after Stop are discarded.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()
	e.cancel()
	e.wg.Wait()
}

// Wait blocks until the fetches in flight complete.
func (e *Engine) Wait() { e.wg.Wait() }

// Changes signals state changes. Signals are coalesced.
func (e *Engine) Changes() <-chan struct{} { return e.changes }

func (e *Engine) notify() {
	select {
	case e.changes <- struct{}{}:
	default:
	}
}

func (e *Engine) count(outcome string) {
	if e.polls != nil {
		e.polls.WithLabelValues(outcome).Inc()
	}
}

// Poll fetches the ticker list once. On the first success without a
// selection, the first ticker is selected. The selected detail is then
// fetched in the background. On failure the displayed data is kept.
func (e *Engine) Poll(ctx context.Context) error {
	if e.isStopped() {
		return nil
	}
	ov, err := e.feed.Market(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return nil
	}
	if err != nil && ctx.Err() != nil {
		return err // torn down, not a feed failure
	}
	if err != nil {
		e.count("error")
		log.Warn().Err(err).Msg("market poll failed")
		e.sink.Appendf("[ERROR] Market poll failed: %v", err)
		e.err = err
		if len(e.tickers) == 0 {
			e.state = Error
		}
		e.notify()
		return err
	}
	e.count("ok")
	e.tickers, e.news, e.err = ov.Tickers, ov.News, nil
	if e.selected == "" && len(e.tickers) > 0 {
		e.selected = e.tickers[0].Symbol
	}
	switch {
	case e.selected == "":
		e.state = Polling
	case e.detail == nil:
		e.state = DetailLoading
	}
	if e.selected != "" {
		e.fetchLocked(e.selected)
	}
	e.notify()
	return nil
}

// Select focuses symbol and fetches its detail in the background. The
// previous detail is no longer displayed.
func (e *Engine) Select(symbol string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	if symbol != e.selected {
		e.selected, e.detail, e.state = symbol, nil, DetailLoading
		e.sink.Appendf("[MARKET] Selected %s.", symbol)
	}
	e.fetchLocked(symbol)
	e.notify()
}

// fetchLocked starts a detail fetch for symbol. e.mu must be held.
func (e *Engine) fetchLocked(symbol string) {
	e.seq++
	seq := e.seq
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		d, err := e.feed.TickerDetail(e.ctx, symbol)
		e.apply(symbol, seq, d, err)
	}()
}

func (e *Engine) apply(symbol string, seq uint64, d pennywise.TickerDetail, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || symbol != e.selected || seq <= e.applied {
		log.Debug().Str("symbol", symbol).Uint64("seq", seq).Msg("stale ticker detail dropped")
		return
	}
	if err != nil {
		e.err = err
		e.sink.Appendf("[ERROR] Could not load %s: %v", symbol, err)
		if e.detail == nil {
			e.state = Error
		}
		e.notify()
		return
	}
	e.applied = seq
	e.detail, e.state, e.err = &d, DetailReady, nil
	e.notify()
}

func (e *Engine) isStopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopped
}

// Tickers returns the ticker list of the last successful poll, in feed order.
func (e *Engine) Tickers() []pennywise.Ticker {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]pennywise.Ticker(nil), e.tickers...)
}

// News returns the headlines of the last successful poll.
func (e *Engine) News() []pennywise.NewsItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]pennywise.NewsItem(nil), e.news...)
}

// Selected returns the focused symbol, empty if none.
func (e *Engine) Selected() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

// Detail returns the detail of the selected symbol, if loaded.
func (e *Engine) Detail() (pennywise.TickerDetail, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.detail == nil || e.selected == "" {
		return pennywise.TickerDetail{}, false
	}
	return *e.detail, true
}

// State returns the engine state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Err returns the last failure, nil after a success.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}
