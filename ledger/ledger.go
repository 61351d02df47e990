// Package ledger mirrors the server's cash book.
//
// The balance is always the figure reported by the server after the last
// successful refresh, it is never computed from the history.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/etnz/pennywise"
	"github.com/etnz/pennywise/glassbox"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Backend is the part of the backend the ledger uses.
type Backend interface {
	Ledger(ctx context.Context) (pennywise.LedgerSnapshot, error)
	AddTransaction(ctx context.Context, req pennywise.TransactionRequest) error
	ResetLedger(ctx context.Context) error
}

// Ledger is a read-through cache of the server's cash book. It is safe for
// concurrent use.
type Ledger struct {
	backend Backend
	sink    glassbox.Sink

	mu     sync.Mutex
	snap   pennywise.LedgerSnapshot
	loaded bool
}

// New returns an empty, not yet loaded, Ledger.
func New(backend Backend, sink glassbox.Sink) *Ledger {
	return &Ledger{backend: backend, sink: sink}
}

// Snapshot returns a copy of the last known state.
func (l *Ledger) Snapshot() pennywise.LedgerSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.snap
	s.History = append([]pennywise.LedgerEntry(nil), l.snap.History...)
	return s
}

// Loaded reports whether a refresh ever succeeded.
func (l *Ledger) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Refresh replaces the local state with the server's. On error the previous
// state is kept.
func (l *Ledger) Refresh(ctx context.Context) error {
	snap, err := l.backend.Ledger(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("cannot refresh ledger")
		l.sink.Appendf("[ERROR] Ledger refresh failed: %v", err)
		return err
	}
	l.mu.Lock()
	l.snap, l.loaded = snap, true
	l.mu.Unlock()
	l.sink.Appendf("[LEDGER] Loaded %d transactions.", len(snap.History))
	return nil
}

// ParseAmount parses a user input amount. It must be a positive number.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, &pennywise.ValidationError{Field: "amount", Reason: "missing"}
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &pennywise.ValidationError{Field: "amount", Reason: fmt.Sprintf("%q is not a number", s)}
	}
	if !v.IsPositive() {
		return decimal.Zero, &pennywise.ValidationError{Field: "amount", Reason: fmt.Sprintf("%s is not positive", v)}
	}
	return v, nil
}

// AddTransaction records a cash movement, then refreshes the ledger.
//
// Bad input is a *pennywise.ValidationError and makes no call. If the
// transaction is refused, the local state is left as is.
func (l *Ledger) AddTransaction(ctx context.Context, description, amount string, dir pennywise.Direction) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return &pennywise.ValidationError{Field: "description", Reason: "missing"}
	}
	v, err := ParseAmount(amount)
	if err != nil {
		return err
	}
	if dir != pennywise.In && dir != pennywise.Out {
		return &pennywise.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown direction %d", int(dir))}
	}

	if err := l.backend.AddTransaction(ctx, pennywise.NewTransactionRequest(description, v, dir)); err != nil {
		l.sink.Appendf("[ERROR] Transaction %q not recorded: %v", description, err)
		return fmt.Errorf("cannot add transaction: %w", err)
	}
	l.sink.Appendf("[LEDGER] Recorded %s %s: %s", dir, v, description)
	return l.Refresh(ctx)
}

// Reset clears the ledger.
//
// The local state is zeroed at once, then the ledger is refreshed whatever
// the outcome of the reset call. If both fail the zero stays visible until
// the next successful refresh.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	l.snap = pennywise.LedgerSnapshot{}
	l.mu.Unlock()

	rerr := l.backend.ResetLedger(ctx)
	if rerr != nil {
		l.sink.Appendf("[ERROR] Ledger reset failed: %v", rerr)
		rerr = fmt.Errorf("cannot reset ledger: %w", rerr)
	} else {
		l.sink.Append("[LEDGER] Ledger reset to 0.")
	}
	return errors.Join(rerr, l.Refresh(ctx))
}
