package renderer

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/etnz/pennywise"
)

var (
	symbolStyle   = lipgloss.NewStyle().Width(12)
	selectedStyle = symbolStyle.Bold(true)
	nameStyle     = lipgloss.NewStyle().Width(16).Faint(true)
	priceStyle    = lipgloss.NewStyle().Width(12).Align(lipgloss.Right)
	headlineStyle = lipgloss.NewStyle().Italic(true)
)

// TickerBoard renders the ticker list, one line per ticker, the change in
// the ticker's display color. The selected ticker is marked.
func TickerBoard(tickers []pennywise.Ticker, selected string) string {
	rows := make([]string, 0, len(tickers))
	for _, t := range tickers {
		marker, sym := "  ", symbolStyle
		if t.Symbol == selected {
			marker, sym = "▸ ", selectedStyle
		}
		change := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).
			Render(fmt.Sprintf("%+.2f (%+.2f%%)", t.Change, t.Pct))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			marker,
			sym.Render(t.Symbol),
			nameStyle.Render(t.Name),
			priceStyle.Render(fmt.Sprintf("%.2f", t.Price)),
			" ",
			change,
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Headlines renders the market news.
func Headlines(news []pennywise.NewsItem) string {
	rows := make([]string, 0, len(news))
	for _, n := range news {
		rows = append(rows, fmt.Sprintf("%s  %s  %s", n.Time, headlineStyle.Render(n.Headline), n.Source))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
