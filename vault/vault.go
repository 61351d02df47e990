// Package vault reads the decrypted view of the encrypted chat history.
package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/etnz/pennywise"
)

// Messages displayed in place of the history.
const (
	InvalidFormat = "Invalid data format received."
	FetchFailed   = "Could not fetch vault history."
)

// Source is the backend endpoint serving the raw history.
type Source interface {
	VaultHistory(ctx context.Context) (json.RawMessage, error)
}

// Load returns the history in backend order. A response that is not a JSON
// array of items is a *pennywise.DataShapeError, network errors are returned
// as is.
func Load(ctx context.Context, src Source) ([]pennywise.VaultItem, error) {
	raw, err := src.VaultHistory(ctx)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, &pennywise.DataShapeError{Source: "vault history", Reason: "not an array"}
	}
	var items []pennywise.VaultItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &pennywise.DataShapeError{Source: "vault history", Reason: err.Error()}
	}
	for i, it := range items {
		if it.Timestamp == "" {
			continue
		}
		if _, err := it.Time(); err != nil {
			return nil, &pennywise.DataShapeError{Source: "vault history", Reason: fmt.Sprintf("item %d: bad timestamp %q", i, it.Timestamp)}
		}
	}
	return items, nil
}

// Message returns the text shown to the user for a Load error.
func Message(err error) string {
	if errors.Is(err, pennywise.ErrDataShape) {
		return InvalidFormat
	}
	return FetchFailed
}
