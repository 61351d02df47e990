package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/pennywise"
	"github.com/etnz/pennywise/renderer"
	"github.com/etnz/pennywise/session"
	"github.com/google/subcommands"
)

// printLedger prints the cash book as last refreshed.
func printLedger(s *session.Session) {
	printMarkdown(renderer.Ledger(s.Ledger.Snapshot(), s.Config().Currency))
}

// --- Ledger Command ---

type ledgerCmd struct{}

func (*ledgerCmd) Name() string     { return "ledger" }
func (*ledgerCmd) Synopsis() string { return "show the cash book" }
func (*ledgerCmd) Usage() string {
	return `ledger

  Shows the balance and the history of the cash book, most recent first.
`
}

func (*ledgerCmd) SetFlags(f *flag.FlagSet) {}

func (*ledgerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := OpenSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeSession(s)

	if err := s.Ledger.Refresh(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	printLedger(s)
	return subcommands.ExitSuccess
}

// --- Cash In/Out Commands ---

type cashCmd struct {
	dir         pennywise.Direction
	description string
	amount      string
}

func (c *cashCmd) Name() string {
	if c.dir == pennywise.Out {
		return "cash-out"
	}
	return "cash-in"
}

func (c *cashCmd) Synopsis() string {
	if c.dir == pennywise.Out {
		return "record money going out"
	}
	return "record money coming in"
}

func (c *cashCmd) Usage() string {
	return c.Name() + ` -d <description> -a <amount>

  Records a cash movement in the ledger, then shows the ledger as reported
  by the backend.
`
}

func (c *cashCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.description, "d", "", "Description, e.g. 'Sales' or 'Rent'")
	f.StringVar(&c.amount, "a", "", "Positive amount")
}

func (c *cashCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := OpenSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeSession(s)

	err = s.Ledger.AddTransaction(ctx, c.description, c.amount, c.dir)
	if errors.Is(err, pennywise.ErrValidation) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		f.Usage()
		return subcommands.ExitUsageError
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printLedger(s)
	return subcommands.ExitSuccess
}

// --- Reset Ledger Command ---

type resetLedgerCmd struct {
	yes bool
}

func (*resetLedgerCmd) Name() string     { return "reset-ledger" }
func (*resetLedgerCmd) Synopsis() string { return "clear the cash book" }
func (*resetLedgerCmd) Usage() string {
	return `reset-ledger [-y]

  Clears the ledger history and sets the balance to 0.
`
}

func (c *resetLedgerCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Do not ask for confirmation")
}

func (c *resetLedgerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		fmt.Print("Are you sure you want to clear the ledger history? [y/N] ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Println("Aborted.")
			return subcommands.ExitSuccess
		}
	}
	s, err := OpenSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeSession(s)

	if err := s.Ledger.Reset(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to reset ledger: %v\n", err)
		printLedger(s)
		return subcommands.ExitFailure
	}
	fmt.Println("Ledger has been completely reset to 0.")
	printLedger(s)
	return subcommands.ExitSuccess
}
