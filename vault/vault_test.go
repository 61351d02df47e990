package vault

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/etnz/pennywise"
)

type source struct {
	raw string
	err error
}

func (s source) VaultHistory(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(s.raw), s.err
}

func TestLoad(t *testing.T) {
	items, err := Load(context.Background(), source{raw: `[
		{"timestamp": "2024-01-05T13:04:09.123456", "role": "user", "content": "Can USER_A afford a phone?"},
		{"timestamp": "2024-01-05T13:04:11.5", "role": "assistant", "content": "No."}
	]`})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].Role != "user" || items[1].Content != "No." {
		t.Errorf("Load() = %+v", items)
	}
}

func TestLoadEmpty(t *testing.T) {
	items, err := Load(context.Background(), source{raw: `[]`})
	if err != nil || len(items) != 0 {
		t.Errorf("Load() = %v, %v, want no items", items, err)
	}
}

func TestLoadShapeErrors(t *testing.T) {
	for _, raw := range []string{
		`{"history": []}`,
		`null`,
		`"oops"`,
		`[{"timestamp": 12}]`,
		`[{"timestamp": "yesterday"}]`,
	} {
		_, err := Load(context.Background(), source{raw: raw})
		if !errors.Is(err, pennywise.ErrDataShape) {
			t.Errorf("Load(%s) = %v, want a data shape error", raw, err)
			continue
		}
		if got := Message(err); got != InvalidFormat {
			t.Errorf("Message(%v) = %q, want %q", err, got, InvalidFormat)
		}
	}
}

func TestLoadNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	_, err := Load(context.Background(), source{err: cause})
	if !errors.Is(err, cause) {
		t.Fatalf("Load() = %v, want %v", err, cause)
	}
	if got := Message(err); got != FetchFailed {
		t.Errorf("Message() = %q, want %q", got, FetchFailed)
	}
}
