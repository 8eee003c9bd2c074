package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

type theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	OK       lipgloss.Style
	Fail     lipgloss.Style
	Card     lipgloss.Style
	Header   lipgloss.Style
}

func defaultTheme() theme {
	return theme{
		Title:    lipgloss.NewStyle().Bold(true),
		Subtitle: lipgloss.NewStyle().Faint(true),
		Label:    lipgloss.NewStyle().Faint(true).Width(14),
		OK:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Fail:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Card: lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")),
		Header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
	}
}

// printer renders command results. Styles degrade to plain text when w is
// not a terminal.
type printer struct {
	w     io.Writer
	theme theme
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, theme: defaultTheme()}
}

// card prints a bordered block of label/value lines under a title.
func (p *printer) card(title string, fields [][2]string) {
	lines := make([]string, 0, len(fields)+1)
	lines = append(lines, p.theme.Title.Render(title))
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		lines = append(lines, p.theme.Label.Render(f[0])+f[1])
	}

	fmt.Fprintln(p.w, p.theme.Card.Render(strings.Join(lines, "\n")))
}

func (p *printer) table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("63"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.theme.Header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...)

	fmt.Fprintln(p.w, t.Render())
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) status(ok bool) string {
	if ok {
		return p.theme.OK.Render("ok")
	}
	return p.theme.Fail.Render("fail")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
