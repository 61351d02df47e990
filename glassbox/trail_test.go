package glassbox

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestExport(t *testing.T) {
	tr := New(WithLayout(""))
	tr.Append("a")
	tr.Append("b")
	tr.SetLastPayload("{}")

	if got, want := tr.Export(), "a\nb\n\n--- LAST PAYLOAD ---\n{}"; got != want {
		t.Errorf("Export() = %q, want %q", got, want)
	}
}

func TestExportPlaceholder(t *testing.T) {
	tr := New(WithLayout(""))
	if got, want := tr.Export(), "\n\n--- LAST PAYLOAD ---\nWaiting for request..."; got != want {
		t.Errorf("Export() = %q, want %q", got, want)
	}
	// an empty payload is still a payload.
	tr.SetLastPayload("")
	if got, want := tr.Export(), "\n\n--- LAST PAYLOAD ---\n"; got != want {
		t.Errorf("Export() = %q, want %q", got, want)
	}
}

func TestTimestampPrefix(t *testing.T) {
	at := time.Date(2024, 1, 5, 13, 4, 9, 0, time.UTC)
	tr := New(WithClock(func() time.Time { return at }))
	tr.Appendf("[NET] %s %d", "GET /ledger", 200)

	lines := tr.Lines()
	if len(lines) != 1 || lines[0] != "[13:04:09] [NET] GET /ledger 200" {
		t.Errorf("Lines() = %q", lines)
	}
	if ev := tr.Events(); ev[0].Time != at {
		t.Errorf("event time = %v, want %v", ev[0].Time, at)
	}
}

func TestSeed(t *testing.T) {
	at := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	tr := New(WithSeed("[LOCAL] System Ready."), WithClock(func() time.Time { return at }))
	tr.Append("Processing file: bank.pdf")

	want := "[LOCAL] System Ready.\n[09:00:00] Processing file: bank.pdf\n\n--- LAST PAYLOAD ---\nWaiting for request..."
	if got := tr.Export(); got != want {
		t.Errorf("Export() = %q, want %q", got, want)
	}
}

func TestLastPayloadOverwrites(t *testing.T) {
	tr := New()
	if _, ok := tr.LastPayload(); ok {
		t.Fatal("new trail has a payload")
	}
	tr.SetLastPayload("first")
	if err := tr.SetLastPayloadJSON(map[string]string{"mode": "coach"}); err != nil {
		t.Fatal(err)
	}
	got, _ := tr.LastPayload()
	if want := "{\n  \"mode\": \"coach\"\n}"; got != want {
		t.Errorf("LastPayload() = %q, want %q", got, want)
	}
}

func TestConcurrentAppend(t *testing.T) {
	tr := New(WithLayout(""))
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Append("x")
		}()
	}
	wg.Wait()
	if n := len(tr.Events()); n != 50 {
		t.Errorf("got %d events, want 50", n)
	}
}

func TestSave(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	tr := New(WithLayout(""), WithClock(func() time.Time { return at }))
	tr.Append("[LOCAL] System Ready.")

	dir := t.TempDir()
	name, err := tr.Save(dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "pennywise_audit_1700000000123.txt"); name != want {
		t.Errorf("Save() = %q, want %q", name, want)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "[LOCAL] System Ready.\n\n--- LAST PAYLOAD ---\n") {
		t.Errorf("saved content = %q", data)
	}
}

func TestWriteTo(t *testing.T) {
	tr := New(WithLayout(""))
	tr.Append("a")
	var b strings.Builder
	n, err := tr.WriteTo(&b)
	if err != nil {
		t.Fatal(err)
	}
	if int(n) != b.Len() || b.String() != tr.Export() {
		t.Errorf("WriteTo wrote %d bytes %q", n, b.String())
	}
}
