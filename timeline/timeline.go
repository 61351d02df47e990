// Package timeline merges chat replies, file results and mode changes into
// the single ordered list of messages shown to the user.
package timeline

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/etnz/pennywise"
	"github.com/etnz/pennywise/glassbox"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// Welcome is the first entry of every timeline.
	Welcome = "Hello! I am PennyWise. Your privacy is my priority."
	// ChatFailure is shown when the assistant cannot be reached.
	ChatFailure = "Error: Could not connect to PennyWise Brain."
	// EmptyAnalysis is shown for a file result without text.
	EmptyAnalysis = "Analysis complete."
)

// Origin tells who produced an entry.
type Origin int

const (
	User Origin = iota
	Assistant
)

func (o Origin) String() string {
	if o == User {
		return "user"
	}
	return "assistant"
}

// Entry is one message of the timeline. Entries are never modified once
// appended.
type Entry struct {
	ID     uint64
	Origin Origin
	Text   string
	Chart  pennywise.Chart
}

// Chatter is the conversational endpoint.
type Chatter interface {
	Chat(ctx context.Context, req pennywise.ChatRequest) (pennywise.ChatResponse, error)
}

// Timeline is safe for concurrent use. Entries are appended in the order
// their operation completes.
type Timeline struct {
	chat  Chatter
	sink  glassbox.Sink
	token string // stands for the user in payload snapshots

	mu      sync.Mutex
	entries []Entry
	lastID  uint64
	mode    pennywise.Mode
	pending int
}

// New returns a timeline in mode, holding the welcome entry.
func New(chat Chatter, sink glassbox.Sink, mode pennywise.Mode) *Timeline {
	t := &Timeline{
		chat:  chat,
		sink:  sink,
		token: "USER_" + strings.ToUpper(uuid.NewString()[:8]),
		mode:  mode,
	}
	t.append(Assistant, Welcome, pennywise.None)
	return t
}

// append adds an entry, and returns its id.
func (t *Timeline) append(o Origin, text string, c pennywise.Chart) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastID++
	t.entries = append(t.entries, Entry{ID: t.lastID, Origin: o, Text: text, Chart: c})
	return t.lastID
}

// Entries returns a copy of the entries, in order.
func (t *Timeline) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.entries...)
}

// Pending reports whether a message is waiting for its reply.
func (t *Timeline) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending > 0
}

// Mode returns the current persona.
func (t *Timeline) Mode() pennywise.Mode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

// AnnounceModeChange switches to mode and appends its greeting. It does
// nothing and returns false if mode is the current one.
func (t *Timeline) AnnounceModeChange(mode pennywise.Mode) bool {
	t.mu.Lock()
	if t.mode == mode {
		t.mu.Unlock()
		return false
	}
	t.mode = mode
	t.mu.Unlock()
	t.append(Assistant, mode.Greeting(), pennywise.None)
	return true
}

// Send posts text to the assistant in the current mode.
//
// Blank text is ignored. Otherwise the user entry is appended at once, then
// either the reply or an error entry once the call completes. The returned
// error is the call's, it is already displayed in the timeline.
func (t *Timeline) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	t.mu.Lock()
	t.pending++
	mode := t.mode
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.pending--
		t.mu.Unlock()
	}()
	t.append(User, text, pennywise.None)

	resp, err := t.chat.Chat(ctx, pennywise.ChatRequest{Message: text, Mode: mode})
	if err != nil {
		log.Warn().Err(err).Msg("chat failed")
		t.sink.Appendf("[ERROR] Chat failed: %v", err)
		t.append(Assistant, ChatFailure, pennywise.None)
		return err
	}

	chart, cerr := pennywise.ParseChart(resp.ChartData)
	if cerr != nil {
		t.sink.Appendf("[ERROR] Ignored chart: %v", cerr)
	}
	t.append(Assistant, resp.Response, chart)

	for _, l := range resp.Logs {
		t.sink.Append(l)
	}
	data, err := json.MarshalIndent(payload{UserToken: t.token, MaskedPrompt: resp.MaskedPrompt, Mode: resp.Mode}, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode payload: %w", err)
	}
	t.sink.SetLastPayload(string(data))
	return nil
}

// payload is what the trail shows of a chat exchange: never the raw message.
type payload struct {
	UserToken    string `json:"user_token"`
	MaskedPrompt string `json:"masked_prompt"`
	Mode         string `json:"mode"`
}

// jsonBlock matches the structured data markers embedded in file analyses.
var jsonBlock = regexp.MustCompile(`(?s)\[\[JSON:.*?\]\]`)

// CleanAnalysis removes the structured data blocks from a file analysis.
func CleanAnalysis(message string) string {
	return strings.TrimSpace(jsonBlock.ReplaceAllString(message, ""))
}

// AbsorbFileResult appends the analysis of filename. It does not depend on
// pending messages.
func (t *Timeline) AbsorbFileResult(filename, message string, chart pennywise.Chart) {
	clean := CleanAnalysis(message)
	if clean == "" {
		clean = EmptyAnalysis
	}
	t.append(Assistant, "📄 Analyzed "+filename+".\n\n"+clean, chart)
}

// ReportError appends an assistant entry with text.
func (t *Timeline) ReportError(text string) {
	t.append(Assistant, text, pennywise.None)
}
