package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"texflow/internal/schedule"
)

type progressModel struct {
	title     string
	events    <-chan schedule.Event
	spinner   spinner.Model
	prog      progress.Model
	rows      []passRow
	maxPasses int
	width     int
	done      bool
}

type passRow struct {
	pass   int
	tool   schedule.Tool
	unit   string
	status string
}

type eventMsg schedule.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders the pass loop.
// Rows appear as passes start: the schedule is not known up front.
func NewProgressModel(title string, maxPasses int, events <-chan schedule.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	if maxPasses <= 0 {
		maxPasses = schedule.DefaultMaxPasses
	}
	return &progressModel{
		title:     title,
		events:    events,
		spinner:   sp,
		prog:      prog,
		maxPasses: maxPasses,
		width:     80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(schedule.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := m.width - statusWidth - 4
	if nameWidth < 20 {
		nameWidth = 20
	}

	for _, row := range m.rows {
		name := truncate(fmt.Sprintf("pass %d  %s %s", row.pass, row.tool, row.unit), nameWidth)
		statusStyled := styleStatus(row.status).Render(fmt.Sprintf("%12s", row.status))
		b.WriteString(fmt.Sprintf("  %s %s\n", statusStyled, name))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev schedule.Event) tea.Cmd {
	idx := m.findRow(ev)
	if idx < 0 {
		m.rows = append(m.rows, passRow{pass: ev.Pass, tool: ev.Tool, unit: ev.Unit})
		idx = len(m.rows) - 1
	}
	m.rows[idx].status = statusLabel(ev)

	processorPasses := 0
	for _, row := range m.rows {
		if row.tool == schedule.ToolProcessor && row.status != "" && row.status != "queued" {
			processorPasses++
		}
	}
	pct := float64(processorPasses) / float64(m.maxPasses)
	if pct > 1 {
		pct = 1
	}
	return m.prog.SetPercent(pct)
}

func (m *progressModel) findRow(ev schedule.Event) int {
	for i, row := range m.rows {
		if row.pass == ev.Pass && row.tool == ev.Tool && row.unit == ev.Unit {
			return i
		}
	}
	return -1
}

func statusLabel(ev schedule.Event) string {
	switch ev.Status {
	case schedule.StatusDone:
		return "done"
	case schedule.StatusError:
		return "error"
	case schedule.StatusWorking:
		switch ev.Tool {
		case schedule.ToolProcessor:
			return "typesetting"
		case schedule.ToolBib:
			return "citing"
		case schedule.ToolIndex:
			return "indexing"
		}
	}
	return ""
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "typesetting", "citing", "indexing":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "") + "..."
}
