// Package glassbox keeps the session's audit trail: a human readable log of
// every local and network action, plus the last payload exchanged with the
// backend.
package glassbox

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Delimiter separates the event log from the last payload in an export.
const Delimiter = "\n\n--- LAST PAYLOAD ---\n"

// Placeholder is exported in place of a payload when none was set yet.
const Placeholder = "Waiting for request..."

// DefaultLayout is the time layout of the prefix of each event.
const DefaultLayout = "15:04:05"

// Sink is the write side of a Trail, the only part other components see.
type Sink interface {
	Append(msg string)
	Appendf(format string, args ...any)
	SetLastPayload(snapshot string)
}

// Event is one line of the trail.
type Event struct {
	Time    time.Time
	Message string
}

// Trail is the append-only audit log. It is safe for concurrent use.
type Trail struct {
	now    func() time.Time
	layout string

	mu      sync.Mutex
	events  []Event
	payload string
	hasLast bool
}

// Option configures a Trail.
type Option func(*Trail)

// WithClock sets the clock used to timestamp events.
func WithClock(now func() time.Time) Option { return func(t *Trail) { t.now = now } }

// WithLayout sets the time layout of the event prefix. An empty layout
// renders bare messages.
func WithLayout(layout string) Option { return func(t *Trail) { t.layout = layout } }

// WithSeed starts the trail with msgs. Seed events have no timestamp.
func WithSeed(msgs ...string) Option {
	return func(t *Trail) {
		for _, m := range msgs {
			t.events = append(t.events, Event{Message: m})
		}
	}
}

// New returns an empty Trail.
func New(opts ...Option) *Trail {
	t := &Trail{now: time.Now, layout: DefaultLayout}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Append adds one event, timestamped now.
func (t *Trail) Append(msg string) {
	at := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, Event{Time: at, Message: msg})
}

// Appendf is Append with a format.
func (t *Trail) Appendf(format string, args ...any) { t.Append(fmt.Sprintf(format, args...)) }

// SetLastPayload replaces the last payload.
func (t *Trail) SetLastPayload(snapshot string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.payload, t.hasLast = snapshot, true
}

// SetLastPayloadJSON replaces the last payload with v as indented JSON.
func (t *Trail) SetLastPayloadJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode payload: %w", err)
	}
	t.SetLastPayload(string(data))
	return nil
}

// Events returns a copy of the events in insertion order.
func (t *Trail) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Event(nil), t.events...)
}

// Lines returns the events as rendered in an export.
func (t *Trail) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lines()
}

func (t *Trail) lines() []string {
	lines := make([]string, len(t.events))
	for i, e := range t.events {
		if t.layout == "" || e.Time.IsZero() {
			lines[i] = e.Message
			continue
		}
		lines[i] = "[" + e.Time.Format(t.layout) + "] " + e.Message
	}
	return lines
}

// LastPayload returns the last payload, and false if none was set.
func (t *Trail) LastPayload() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.payload, t.hasLast
}

// Export renders the trail: lines joined by newlines, the Delimiter, then
// the last payload or the Placeholder.
func (t *Trail) Export() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	payload := Placeholder
	if t.hasLast {
		payload = t.payload
	}
	return strings.Join(t.lines(), "\n") + Delimiter + payload
}

// WriteTo writes the export to w.
func (t *Trail) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, t.Export())
	return int64(n), err
}

// Save writes the export in dir as pennywise_audit_<unix ms>.txt and returns
// the file path.
func (t *Trail) Save(dir string) (string, error) {
	name := filepath.Join(dir, fmt.Sprintf("pennywise_audit_%d.txt", t.now().UnixMilli()))
	if err := os.WriteFile(name, []byte(t.Export()), 0o644); err != nil {
		return "", fmt.Errorf("cannot save audit trail: %w", err)
	}
	return name, nil
}
