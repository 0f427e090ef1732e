package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/xyproto/env/v2"
	"golang.org/x/term"
)

// useColor reports whether f is a terminal and NO_COLOR is unset.
func useColor(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) && env.Str("NO_COLOR") == ""
}

func runDump(w io.Writer, path string, color bool) error {
	rep, err := loadReport(path)
	if err != nil {
		return err
	}
	return printReport(w, rep, color)
}

func printReport(w io.Writer, rep *report, color bool) error {
	p := newPrinter(w, color)

	fmt.Fprintln(w, p.title.Render(rep.path))
	fmt.Fprintln(w)
	for _, kv := range rep.header {
		fmt.Fprintf(w, "%s %s\n", p.key.Render(fmt.Sprintf("%-16s", kv[0]+":")), kv[1])
	}
	for _, t := range rep.tables() {
		if len(t.rows) == 0 {
			continue
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, p.heading.Render(t.title))
		if _, err := fmt.Fprintln(w, p.render(t)); err != nil {
			return err
		}
	}
	return nil
}

type printer struct {
	title   lipgloss.Style
	heading lipgloss.Style
	key     lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	border  lipgloss.Border
	edge    lipgloss.Style
}

func newPrinter(w io.Writer, color bool) *printer {
	r := lipgloss.NewRenderer(w)
	p := &printer{
		title:   r.NewStyle().Bold(true),
		heading: r.NewStyle().Bold(true),
		key:     r.NewStyle(),
		header:  r.NewStyle().Bold(true).Padding(0, 1),
		cell:    r.NewStyle().Padding(0, 1),
		border:  lipgloss.HiddenBorder(),
		edge:    r.NewStyle(),
	}
	if color {
		p.title = p.title.
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
		p.heading = p.heading.Foreground(lipgloss.Color("#7D56F4"))
		p.key = p.key.Foreground(lipgloss.Color("#87CEEB"))
		p.header = p.header.Foreground(lipgloss.Color("#98FB98"))
		p.border = lipgloss.RoundedBorder()
		p.edge = p.edge.Foreground(lipgloss.Color("#666666"))
	}
	return p
}

func (p *printer) render(t grid) string {
	return ltable.New().
		Border(p.border).
		BorderStyle(p.edge).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return p.header
			}
			return p.cell
		}).
		Headers(t.columns...).
		Rows(t.rows...).
		String()
}
