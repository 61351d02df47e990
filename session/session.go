// Package session wires the PennyWise components around one audit trail.
//
// A Session is the single user session of the client: it owns the trail,
// the timeline and the ledger for its whole life, and the market engine
// while the stocks view is open.
package session

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/etnz/pennywise"
	"github.com/etnz/pennywise/glassbox"
	"github.com/etnz/pennywise/ledger"
	"github.com/etnz/pennywise/market"
	"github.com/etnz/pennywise/skills"
	"github.com/etnz/pennywise/timeline"
	"github.com/etnz/pennywise/vault"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Ready is the first line of every audit trail.
const Ready = "[LOCAL] System Ready."

// View is the screen in front of the user.
type View int

const (
	ChatView View = iota
	VaultView
	SkillsView
	LedgerView
	StocksView
)

func (v View) String() string {
	switch v {
	case ChatView:
		return "chat"
	case VaultView:
		return "vault"
	case SkillsView:
		return "skills"
	case LedgerView:
		return "ledger"
	case StocksView:
		return "stocks"
	default:
		return "unknown"
	}
}

// Backend is every endpoint the session needs. *gateway.Client implements it.
type Backend interface {
	timeline.Chatter
	ledger.Backend
	market.Feed
	vault.Source
	skills.Source
	UploadFile(ctx context.Context, filename string, r io.Reader) (pennywise.UploadResponse, error)
}

// Session is safe for concurrent use.
type Session struct {
	cfg     pennywise.Config
	backend Backend
	reg     prometheus.Registerer

	Trail    *glassbox.Trail
	Timeline *timeline.Timeline
	Ledger   *ledger.Ledger

	mu     sync.Mutex
	view   View
	market *market.Engine
	closed bool
}

// Option configures a Session.
type Option func(*options)

type options struct {
	mode  pennywise.Mode
	trail []glassbox.Option
	reg   prometheus.Registerer
}

// WithMode sets the initial persona.
func WithMode(m pennywise.Mode) Option { return func(o *options) { o.mode = m } }

// WithTrailOptions configures the audit trail.
func WithTrailOptions(opts ...glassbox.Option) Option {
	return func(o *options) { o.trail = append(o.trail, opts...) }
}

// WithRegisterer registers the market metrics in reg.
func WithRegisterer(reg prometheus.Registerer) Option { return func(o *options) { o.reg = reg } }

// New returns a session on the chat view.
func New(backend Backend, cfg pennywise.Config, opts ...Option) *Session {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	trail := glassbox.New(append([]glassbox.Option{glassbox.WithSeed(Ready)}, o.trail...)...)
	return &Session{
		cfg:      cfg,
		backend:  backend,
		reg:      o.reg,
		Trail:    trail,
		Timeline: timeline.New(backend, trail, o.mode),
		Ledger:   ledger.New(backend, trail),
	}
}

// Config returns the settings the session was created with.
func (s *Session) Config() pennywise.Config { return s.cfg }

// View returns the active view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetView changes the active view. Leaving the stocks view stops the market
// engine.
func (s *Session) SetView(v View) {
	s.mu.Lock()
	prev := s.view
	s.view = v
	s.mu.Unlock()
	if prev == StocksView && v != StocksView {
		s.CloseStocks()
	}
}

// SetMode switches the persona, the timeline greets the new one.
func (s *Session) SetMode(m pennywise.Mode) bool {
	if !s.Timeline.AnnounceModeChange(m) {
		return false
	}
	s.Trail.Appendf("[LOCAL] Mode set to %s.", m)
	return true
}

// DropFile uploads a document for analysis and shows the result in the chat.
// On failure an error entry is added to the timeline.
func (s *Session) DropFile(ctx context.Context, name string, r io.Reader) error {
	s.Trail.Appendf("Processing file: %s", name)
	resp, err := s.backend.UploadFile(ctx, name, r)
	if err != nil {
		log.Warn().Err(err).Str("file", name).Msg("upload failed")
		s.Trail.Appendf("Error uploading file: %v", err)
		s.Timeline.ReportError(fmt.Sprintf("Could not analyze %s.", name))
		return err
	}
	for _, l := range resp.Logs {
		s.Trail.Append(l)
	}
	chart, cerr := pennywise.ParseChart(resp.ChartData)
	if cerr != nil {
		s.Trail.Appendf("[ERROR] Ignored chart: %v", cerr)
	}
	filename := resp.Filename
	if filename == "" {
		filename = name
	}
	s.Timeline.AbsorbFileResult(filename, resp.Message, chart)
	s.SetView(ChatView)
	return nil
}

// OpenStocks switches to the stocks view and starts the market engine. The
// engine runs until the view is left, CloseStocks or Close.
func (s *Session) OpenStocks(ctx context.Context) *market.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.view = StocksView
	if s.market == nil {
		var opts []market.Option
		if s.reg != nil {
			opts = append(opts, market.WithRegisterer(s.reg))
		}
		s.market = market.New(s.backend, s.Trail, s.cfg.PollInterval, opts...)
		s.market.Start(ctx)
		s.Trail.Append("[MARKET] Live feed started.")
	}
	return s.market
}

// Market returns the running market engine, nil if the stocks view is closed.
func (s *Session) Market() *market.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.market
}

// CloseStocks stops the market engine. The engine is not reused.
func (s *Session) CloseStocks() {
	s.mu.Lock()
	m := s.market
	s.market = nil
	s.mu.Unlock()
	if m != nil {
		m.Stop()
		s.Trail.Append("[MARKET] Live feed stopped.")
	}
}

// Vault loads the decrypted history.
func (s *Session) Vault(ctx context.Context) ([]pennywise.VaultItem, error) {
	s.Trail.Append("[VAULT] Decrypting history...")
	items, err := vault.Load(ctx, s.backend)
	if err != nil {
		s.Trail.Appendf("[ERROR] %s %v", vault.Message(err), err)
		return nil, err
	}
	s.Trail.Appendf("[VAULT] %d events decrypted.", len(items))
	return items, nil
}

// Summary loads the finance summary.
func (s *Session) Summary(ctx context.Context) (pennywise.FinanceSummary, error) {
	sum, err := skills.Load(ctx, s.backend)
	if err != nil {
		s.Trail.Appendf("[ERROR] Finance summary failed: %v", err)
		return sum, err
	}
	s.Trail.Appendf("[SKILLS] Safe to spend: %s", pennywise.M(sum.SafeToSpend, s.cfg.Currency))
	if err := s.Trail.SetLastPayloadJSON(sum); err != nil {
		log.Warn().Err(err).Msg("cannot snapshot finance summary")
	}
	return sum, nil
}

// Close tears the session down. It is safe to call twice.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.CloseStocks()
}
