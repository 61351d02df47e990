package renderer

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/etnz/pennywise/timeline"
)

// Terminal renders markdown for a terminal width columns wide. A style
// other than "" replaces the automatic one, e.g. "notty".
func Terminal(markdown string, width int, style string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("cannot create terminal renderer: %w", err)
	}
	return r.Render(markdown)
}

// TranscriptHTML renders the transcript as an HTML fragment.
func TranscriptHTML(entries []timeline.Entry, currency string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(Transcript(entries, currency)), &buf); err != nil {
		return "", fmt.Errorf("cannot convert transcript: %w", err)
	}
	return buf.String(), nil
}
