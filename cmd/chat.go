package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/pennywise"
	"github.com/etnz/pennywise/renderer"
	"github.com/etnz/pennywise/session"
	"github.com/etnz/pennywise/timeline"
	"github.com/google/subcommands"
)

type chatCmd struct {
	mode       string
	transcript string
}

func (*chatCmd) Name() string     { return "chat" }
func (*chatCmd) Synopsis() string { return "talk to the PennyWise assistant" }
func (*chatCmd) Usage() string {
	return `chat [-mode coach|roast] [-transcript <file.md|file.html>] [<message>...]

  Start an interactive session with the assistant. Messages given as
  arguments are sent first.

  Commands:
    /coach, /roast     switch persona
    /upload <file>     analyze a bank statement
    /audit             show the Glass Box
    /save              save the Glass Box in the audit directory
    bye                exit
`
}

func (c *chatCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.mode, "mode", "coach", "Assistant persona (coach, roast)")
	f.StringVar(&c.transcript, "transcript", "", "Write the conversation to this file on exit, as HTML if it ends with .html")
}

func (c *chatCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	mode, err := pennywise.ParseMode(c.mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	s, err := OpenSession(session.WithMode(mode))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeSession(s)

	r := newREPL(s, os.Stdout, os.Stdin)
	r.print = printMarkdown
	var prompts []string
	if f.NArg() > 0 {
		prompts = []string{strings.Join(f.Args(), " ")}
	}
	runErr := r.Run(ctx, prompts...)

	if c.transcript != "" {
		if err := writeTranscript(c.transcript, s); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func writeTranscript(name string, s *session.Session) error {
	cur := s.Config().Currency
	content := renderer.Transcript(s.Timeline.Entries(), cur)
	if strings.EqualFold(filepath.Ext(name), ".html") {
		var err error
		if content, err = renderer.TranscriptHTML(s.Timeline.Entries(), cur); err != nil {
			return err
		}
	}
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		return fmt.Errorf("cannot write transcript: %w", err)
	}
	return nil
}

const prompt = "pw> "

// repl reads user lines and feeds them to the session.
type repl struct {
	s     *session.Session
	w     io.Writer
	r     *bufio.Reader
	print func(markdown string) // displays new entries
	shown int                   // entries already displayed
}

func newREPL(s *session.Session, w io.Writer, r io.Reader) *repl {
	p := &repl{s: s, w: w, r: bufio.NewReader(r)}
	p.print = func(md string) { fmt.Fprint(w, md) }
	return p
}

// flush displays the entries appended since the last call.
func (p *repl) flush() {
	entries := p.s.Timeline.Entries()
	if p.shown >= len(entries) {
		return
	}
	p.print(renderer.Transcript(entries[p.shown:], p.s.Config().Currency))
	p.shown = len(entries)
}

// Run starts the interactive loop. prompts are processed before reading
// from the input.
func (p *repl) Run(ctx context.Context, prompts ...string) error {
	p.flush()
	fmt.Fprintln(p.w, "Type 'bye' to exit.")

	for {
		fmt.Fprint(p.w, prompt)
		var input string

		// Flush prompts from the list and then ask for the user.
		if len(prompts) > 0 {
			input, prompts = prompts[0], prompts[1:]
			fmt.Fprintln(p.w, input)
		} else {
			var err error
			input, err = p.r.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil // Clean exit on Ctrl+D
				}
				return err
			}
		}
		input = strings.TrimSpace(input)
		if input == "bye" {
			return nil
		}
		if err := p.handle(ctx, input); err != nil {
			fmt.Fprintf(p.w, "error: %v\n", err)
		}
		p.flush()
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// handle runs one line. Errors of the chat and upload flows are already in
// the timeline and are not returned.
func (p *repl) handle(ctx context.Context, input string) error {
	cmd, arg, _ := strings.Cut(input, " ")
	switch cmd {
	case "/coach":
		p.s.SetMode(pennywise.Coach)
	case "/roast":
		p.s.SetMode(pennywise.Roast)
	case "/upload":
		arg = strings.TrimSpace(arg)
		if arg == "" {
			return fmt.Errorf("usage: /upload <file>")
		}
		f, err := os.Open(arg)
		if err != nil {
			return err
		}
		defer f.Close()
		_ = p.s.DropFile(ctx, arg, f)
	case "/audit":
		p.print(renderer.Audit(p.s.Trail.Export()))
	case "/save":
		name, err := p.s.Trail.Save(p.s.Config().AuditDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(p.w, "Audit trail saved to %s\n", name)
	default:
		_ = p.s.Timeline.Send(ctx, input)
	}
	return nil
}

// lastEntry returns the most recent timeline entry.
func lastEntry(s *session.Session) timeline.Entry {
	entries := s.Timeline.Entries()
	return entries[len(entries)-1]
}
