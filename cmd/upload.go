package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/pennywise/renderer"
	"github.com/etnz/pennywise/timeline"
	"github.com/google/subcommands"
)

type uploadCmd struct{}

func (*uploadCmd) Name() string     { return "upload" }
func (*uploadCmd) Synopsis() string { return "analyze a bank statement" }
func (*uploadCmd) Usage() string {
	return `upload <file.pdf>

  Sends a statement to the backend. Personal data is masked before the
  analysis, the masking steps are listed in the audit trail.
`
}

func (*uploadCmd) SetFlags(f *flag.FlagSet) {}

func (c *uploadCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	name := f.Arg(0)
	file, err := os.Open(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer file.Close()

	s, err := OpenSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeSession(s)

	if err := s.DropFile(ctx, name, file); err != nil {
		fmt.Fprintf(os.Stderr, "Error uploading %s: %v\n", name, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.Transcript([]timeline.Entry{lastEntry(s)}, s.Config().Currency))
	return subcommands.ExitSuccess
}
