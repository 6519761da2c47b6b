package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type interactiveModel struct {
	title   string
	entries []entry
	visible []entry
	types   table.Model
	filter  textinput.Model
	state   modelState
}

type modelState int

const (
	stateBrowse modelState = iota
	stateFilter
)

var columns = []table.Column{
	{Title: "TYPE", Width: 32},
	{Title: "SIZE", Width: 10},
	{Title: "NO PADDING", Width: 10},
	{Title: "WASTED", Width: 8},
}

func newInteractiveModel(title string, entries []entry) *interactiveModel {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(min(len(entries)+1, 12)),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4"))
	t.SetStyles(styles)

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter types"
	ti.Width = 30

	m := &interactiveModel{
		title:   title,
		entries: entries,
		types:   t,
		filter:  ti,
		state:   stateBrowse,
	}
	m.applyFilter()
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateBrowse:
			switch key.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "/":
				m.state = stateFilter
				m.types.Blur()
				return m, m.filter.Focus()
			}
		case stateFilter:
			switch key.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "enter", "esc":
				if key.String() == "esc" {
					m.filter.SetValue("")
					m.applyFilter()
				}
				m.state = stateBrowse
				m.filter.Blur()
				m.types.Focus()
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.types, cmd = m.types.Update(msg)
	return m, cmd
}

// applyFilter keeps the entries whose name contains the filter text.
func (m *interactiveModel) applyFilter() {
	query := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	rows := make([]table.Row, 0, len(m.entries))
	for _, e := range m.entries {
		if query != "" && !strings.Contains(strings.ToLower(e.name), query) {
			continue
		}
		m.visible = append(m.visible, e)
		rows = append(rows, table.Row{
			e.name,
			strconv.FormatInt(e.size, 10),
			strconv.FormatInt(e.noPadding, 10),
			strconv.FormatInt(e.wasted(), 10),
		})
	}
	m.types.SetRows(rows)
	if m.types.Cursor() >= len(rows) {
		m.types.SetCursor(max(len(rows)-1, 0))
	}
}

// selected returns the entry under the cursor.
func (m *interactiveModel) selected() (entry, bool) {
	i := m.types.Cursor()
	if i < 0 || i >= len(m.visible) {
		return entry{}, false
	}
	return m.visible[i], true
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("nopad"))
	b.WriteString(" ")
	b.WriteString(m.title)
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(errorStyle.Render("No struct types found."))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("q quit"))
		return b.String()
	}

	b.WriteString(m.types.View())
	b.WriteString("\n")
	if m.state == stateFilter || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if e, ok := m.selected(); ok {
		b.WriteString(summary(e))
		b.WriteString("\n")
		b.WriteString(fieldTable(e))
		b.WriteString("\n\n")
	}

	if m.state == stateFilter {
		b.WriteString(helpStyle.Render("type to filter • enter keep • esc clear"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓ select • / filter • q quit"))
	}
	return b.String()
}

func runInteractive(title string, entries []entry) error {
	p := tea.NewProgram(newInteractiveModel(title, entries), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
