// Command pw is the PennyWise command line client.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/etnz/pennywise/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command line for shell completion.
var completion = &complete.Command{
	Flags: map[string]complete.Predictor{
		"config":     predict.Files("*.yaml"),
		"backend":    predict.Something,
		"audit-file": predict.Files("*"),
		"v":          predict.Nothing,
	},
	Sub: map[string]*complete.Command{
		"chat": {
			Flags: map[string]complete.Predictor{
				"mode":       predict.Set{"coach", "roast"},
				"transcript": predict.Files("*"),
			},
		},
		"upload": {Args: predict.Files("*.pdf")},
		"ledger": {},
		"cash-in": {
			Flags: map[string]complete.Predictor{"d": predict.Something, "a": predict.Something},
		},
		"cash-out": {
			Flags: map[string]complete.Predictor{"d": predict.Something, "a": predict.Something},
		},
		"reset-ledger": {Flags: map[string]complete.Predictor{"y": predict.Nothing}},
		"market": {
			Flags: map[string]complete.Predictor{"s": predict.Something, "n": predict.Something},
		},
		"vault":   {},
		"summary": {},
		"topic": {
			Flags: map[string]complete.Predictor{"l": predict.Nothing},
			Args:  predict.Set{"glassbox", "ledger", "market", "config"},
		},
		"help": {},
	},
}

func main() {
	// exits when invoked by the shell for completion.
	completion.Complete("pw")

	commander := subcommands.NewCommander(flag.CommandLine, "pw")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
