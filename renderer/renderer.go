// Package renderer turns the session state into markdown, and markdown into
// terminal or HTML output.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/pennywise"
	"github.com/etnz/pennywise/skills"
	"github.com/etnz/pennywise/timeline"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.md
var templates embed.FS

// funcs returns the template functions formatting amounts in currency.
func funcs(currency string) template.FuncMap {
	return template.FuncMap{
		"money": func(d decimal.Decimal) string { return pennywise.M(d, currency).String() },
		"signed": func(d decimal.Decimal, dir pennywise.Direction) string {
			return pennywise.M(d, currency).SignedString(dir)
		},
		"standing": func(d decimal.Decimal) string { return pennywise.M(d, currency).Standing() },
	}
}

// Transcript renders the timeline as a chat transcript.
func Transcript(entries []timeline.Entry, currency string) string {
	partials := map[string]string{
		"breakdown": "breakdown.md",
	}
	return renderTemplate("transcript", "transcript.md", partials, funcs(currency), entries)
}

// Ledger renders the cash book.
func Ledger(s pennywise.LedgerSnapshot, currency string) string {
	return renderTemplate("ledger", "ledger.md", nil, funcs(currency), s)
}

// TickerDetail renders the expanded view of one ticker.
func TickerDetail(d pennywise.TickerDetail) string {
	return renderTemplate("ticker", "ticker.md", nil, nil, d)
}

// Vault renders the decrypted history.
func Vault(items []pennywise.VaultItem) string {
	return renderTemplate("vault", "vault.md", nil, nil, items)
}

// Summary renders the finance summary with each slice's share of the total.
func Summary(s pennywise.FinanceSummary, currency string) string {
	f := funcs(currency)
	f["share"] = func(sl pennywise.Slice) string { return skills.Share(s, sl).StringFixed(1) }
	return renderTemplate("summary", "summary.md", nil, f, s)
}

// Audit renders an audit trail export.
func Audit(export string) string {
	return renderTemplate("audit", "audit.md", nil, nil, export)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, f template.FuncMap, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(f).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
