package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/pennywise/market"
	"github.com/etnz/pennywise/renderer"
	"github.com/etnz/pennywise/session"
	"github.com/etnz/pennywise/vault"
	"github.com/google/subcommands"
)

// --- Market Command ---

type marketCmd struct {
	symbol string
	polls  int
}

func (*marketCmd) Name() string     { return "market" }
func (*marketCmd) Synopsis() string { return "watch the live market board" }
func (*marketCmd) Usage() string {
	return `market [-s <symbol>] [-n <polls>]

  Shows the ticker board and the detail of the selected ticker, refreshed
  at every poll. Without -s the first ticker is selected. With -n 0 it runs
  until interrupted.
`
}

func (c *marketCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Symbol to select, e.g. M&M")
	f.IntVar(&c.polls, "n", 1, "Number of polls to display, 0 for no limit")
}

func (c *marketCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.polls < 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	s, err := OpenSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeSession(s)

	e := s.OpenStocks(ctx)
	if c.symbol != "" {
		e.Select(c.symbol)
	}
	// the first screen waits for the first board and detail.
	if err := waitReady(ctx, e, s.Config().Timeout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printBoard(e)

	t := time.NewTicker(s.Config().PollInterval)
	defer t.Stop()
	for i := 1; c.polls == 0 || i < c.polls; i++ {
		select {
		case <-ctx.Done():
			return subcommands.ExitSuccess
		case <-t.C:
		}
		printBoard(e)
	}
	s.CloseStocks()
	return subcommands.ExitSuccess
}

// waitReady waits until the engine shows a detail, or fails.
func waitReady(ctx context.Context, e *market.Engine, timeout time.Duration) error {
	deadline := time.After(timeout)
	for {
		switch e.State() {
		case market.DetailReady:
			return nil
		case market.Error:
			return e.Err()
		case market.Polling:
			if len(e.Tickers()) == 0 {
				return fmt.Errorf("the market is empty")
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("no market data after %v", timeout)
		case <-e.Changes():
		}
	}
}

func printBoard(e *market.Engine) {
	fmt.Println(renderer.TickerBoard(e.Tickers(), e.Selected()))
	fmt.Println()
	if d, ok := e.Detail(); ok {
		printMarkdown(renderer.TickerDetail(d))
	}
	fmt.Println(renderer.Headlines(e.News()))
	if err := e.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: showing last known data: %v\n", err)
	}
}

// --- Vault Command ---

type vaultCmd struct{}

func (*vaultCmd) Name() string     { return "vault" }
func (*vaultCmd) Synopsis() string { return "show the decrypted chat history" }
func (*vaultCmd) Usage() string {
	return `vault

  Shows the decrypted view of the encrypted history kept by the backend.
`
}

func (*vaultCmd) SetFlags(f *flag.FlagSet) {}

func (*vaultCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(func(s *session.Session) subcommands.ExitStatus {
		s.SetView(session.VaultView)
		items, err := s.Vault(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, vault.Message(err))
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.Vault(items))
		return subcommands.ExitSuccess
	})
}

// --- Summary Command ---

type summaryCmd struct{}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show the spending breakdown and safe-to-spend" }
func (*summaryCmd) Usage() string {
	return `summary

  Shows the current balance, the spending breakdown and the amount that is
  safe to spend.
`
}

func (*summaryCmd) SetFlags(f *flag.FlagSet) {}

func (*summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(func(s *session.Session) subcommands.ExitStatus {
		s.SetView(session.SkillsView)
		sum, err := s.Summary(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching finance summary: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.Summary(sum, s.Config().Currency))
		return subcommands.ExitSuccess
	})
}

// withSession runs run in a new session.
func withSession(run func(*session.Session) subcommands.ExitStatus) subcommands.ExitStatus {
	s, err := OpenSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeSession(s)
	return run(s)
}
