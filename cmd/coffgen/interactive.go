package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("#87CEEB"))

	activeTabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const defaultTableHeight = 15

func runInteractive(path string) error {
	p := tea.NewProgram(newInteractiveModel(path), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type interactiveModel struct {
	err    error
	report *report
	path   string
	tabs   []table.Model
	active int
	height int
}

type loadedMsg struct {
	err    error
	report *report
}

func newInteractiveModel(path string) *interactiveModel {
	return &interactiveModel{path: path, height: defaultTableHeight}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	rep, err := loadReport(m.path)
	return loadedMsg{report: rep, err: err}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab", "right", "l":
			m.focus(m.active + 1)
			return m, nil
		case "shift+tab", "left", "h":
			m.focus(m.active - 1)
			return m, nil
		}

	case tea.WindowSizeMsg:
		// title, tab bar, blank lines, help
		m.height = max(msg.Height-7, 3)
		for i := range m.tabs {
			m.tabs[i].SetHeight(m.height)
		}
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.report = msg.report
		m.tabs = m.tabs[:0]
		for _, t := range msg.report.tables() {
			m.tabs = append(m.tabs, newTableModel(t, m.height))
		}
		m.focus(0)
		return m, nil
	}

	if len(m.tabs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.tabs[m.active], cmd = m.tabs[m.active].Update(msg)
	return m, cmd
}

// focus selects tab i, wrapping around at either end.
func (m *interactiveModel) focus(i int) {
	if len(m.tabs) == 0 {
		return
	}
	m.tabs[m.active].Blur()
	m.active = (i%len(m.tabs) + len(m.tabs)) % len(m.tabs)
	m.tabs[m.active].Focus()
}

func newTableModel(t grid, height int) table.Model {
	cols := make([]table.Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = table.Column{Title: c, Width: len(c)}
	}
	rows := make([]table.Row, len(t.rows))
	for i, r := range t.rows {
		rows[i] = table.Row(r)
		for j, cell := range r {
			cols[j].Width = max(cols[j].Width, lipgloss.Width(cell))
		}
	}

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#666666")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4")).
		Bold(false)

	return table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(height),
		table.WithStyles(s),
	)
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.report == nil {
		return "Loading object file..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("COFF Inspector"))
	b.WriteString(" ")
	b.WriteString(m.path)
	for _, kv := range m.report.header[:2] {
		b.WriteString("  ")
		b.WriteString(helpStyle.Render(kv[0] + ":"))
		b.WriteString(" ")
		b.WriteString(kv[1])
	}
	b.WriteString("\n\n")

	var tabs []string
	for i, t := range m.report.tables() {
		label := fmt.Sprintf("%s (%d)", t.title, len(t.rows))
		if i == m.active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	b.WriteString(m.tabs[m.active].View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("tab/←/→ switch table • ↑/↓ scroll • q quit"))
	return b.String()
}
