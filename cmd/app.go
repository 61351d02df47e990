// Package cmd implements the pw command line client of the PennyWise backend.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/pennywise"
	"github.com/etnz/pennywise/gateway"
	"github.com/etnz/pennywise/renderer"
	"github.com/etnz/pennywise/session"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&chatCmd{}, "assistant")
	c.Register(&uploadCmd{}, "assistant")

	c.Register(&ledgerCmd{}, "ledger")
	c.Register(&cashCmd{dir: pennywise.In}, "ledger")
	c.Register(&cashCmd{dir: pennywise.Out}, "ledger")
	c.Register(&resetLedgerCmd{}, "ledger")

	c.Register(&marketCmd{}, "views")
	c.Register(&vaultCmd{}, "views")
	c.Register(&summaryCmd{}, "views")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", "pennywise.yaml", "Path to the YAML configuration file")
	backendURL = flag.String("backend", "", "Backend origin, overrides the configuration and $"+pennywise.BackendEnv)
	auditFile  = flag.String("audit-file", "", "Write the audit trail to this file (or directory) on exit")
	verbose    = flag.Bool("v", false, "Log every backend exchange")
)

// setupLogging configures the global logger for a terminal.
func setupLogging() {
	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
}

// loadConfig reads the configuration then applies the command line.
func loadConfig() (pennywise.Config, error) {
	cfg, err := pennywise.LoadConfig(*configFile)
	if err != nil {
		return cfg, err
	}
	if *backendURL != "" {
		cfg.Backend = *backendURL
		return cfg, cfg.Validate()
	}
	return cfg, nil
}

// OpenSession is the central function to start a session on the configured backend.
func OpenSession(opts ...session.Option) (*session.Session, error) {
	setupLogging()
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	client, err := gateway.New(cfg)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("backend", cfg.Backend).Msg("session opened")
	return session.New(client, cfg, opts...), nil
}

// CloseSession tears the session down and writes the audit trail if asked to.
func CloseSession(s *session.Session) error {
	s.Close()
	if *auditFile == "" {
		return nil
	}
	if fi, err := os.Stat(*auditFile); err == nil && fi.IsDir() {
		name, err := s.Trail.Save(*auditFile)
		if err != nil {
			return err
		}
		log.Info().Str("file", name).Msg("audit trail saved")
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(*auditFile), 0o755); err != nil {
		return fmt.Errorf("cannot create audit directory: %w", err)
	}
	if err := os.WriteFile(*auditFile, []byte(s.Trail.Export()), 0o644); err != nil {
		return fmt.Errorf("cannot write audit trail: %w", err)
	}
	return nil
}

// closeSession is CloseSession for deferred calls.
func closeSession(s *session.Session) {
	if err := CloseSession(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

// printMarkdown prints md to the terminal, raw if it cannot be styled.
func printMarkdown(md string) {
	out, err := renderer.Terminal(md, 100, "")
	if err != nil {
		log.Debug().Err(err).Msg("cannot style markdown")
		out = md
	}
	fmt.Print(out)
}
