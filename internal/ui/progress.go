package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"gqlmerge/internal/attrib"
)

type rowState uint8

const (
	rowQueued rowState = iota
	rowRunning
	rowDone
	rowFailed
)

// row is one fragment line of the view.
type row struct {
	id    string
	state rowState
	kind  attrib.ProbeKind // of the latest probe
	diags int
}

func (r row) label() string {
	switch r.state {
	case rowRunning:
		if r.kind == attrib.ProbeIsolate {
			return "isolating"
		}
		return "excluding"
	case rowFailed:
		return "error"
	case rowDone:
		if r.diags == 0 {
			return "clean"
		}
		return fmt.Sprintf("%d diag", r.diags)
	}
	return "queued"
}

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	styleQueued  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	styleRunning = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleClean   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleDiags   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleFailed  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func (r row) style() lipgloss.Style {
	switch {
	case r.state == rowRunning:
		return styleRunning
	case r.state == rowFailed:
		return styleFailed
	case r.state == rowDone && r.diags > 0:
		return styleDiags
	case r.state == rowDone:
		return styleClean
	}
	return styleQueued
}

type progressModel struct {
	title   string
	events  <-chan attrib.ProbeEvent
	spinner spinner.Model
	bar     progress.Model
	rows    []row
	byID    map[string]int
	phase   string
	settled int // probes that reported Done
	width   int
	done    bool
}

type eventMsg attrib.ProbeEvent
type doneMsg struct{}

// NewProgressModel shows one row per fragment id and follows probe events
// until events is closed.
func NewProgressModel(title string, ids []string, events <-chan attrib.ProbeEvent) tea.Model {
	m := &progressModel{
		title:   title,
		events:  events,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styleRunning)),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(76)),
		rows:    make([]row, len(ids)),
		byID:    make(map[string]int, len(ids)),
		width:   80,
	}
	for i, id := range ids {
		m.rows[i] = row{id: id}
		m.byID[id] = i
	}
	return m
}

// ChannelObserver forwards probe events into ch.
func ChannelObserver(ch chan<- attrib.ProbeEvent) attrib.Observer {
	return func(ev attrib.ProbeEvent) { ch <- ev }
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next)
}

// next blocks for the following probe event.
func (m *progressModel) next() tea.Msg {
	if ev, ok := <-m.events; ok {
		return eventMsg(ev)
	}
	return doneMsg{}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case eventMsg:
		cmd = tea.Batch(m.apply(attrib.ProbeEvent(msg)), m.next)
	case doneMsg:
		m.done = true
		cmd = tea.Quit
	case spinner.TickMsg:
		if !m.done {
			m.spinner, cmd = m.spinner.Update(msg)
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		var bar tea.Model
		bar, cmd = m.bar.Update(msg)
		m.bar = bar.(progress.Model)
	}
	return m, cmd
}

func (m *progressModel) apply(ev attrib.ProbeEvent) tea.Cmd {
	m.phase = "exclusion"
	if ev.Kind == attrib.ProbeIsolate {
		m.phase = "isolation"
	}
	i, ok := m.byID[ev.FragmentID]
	if !ok {
		return nil
	}
	r := &m.rows[i]
	r.kind = ev.Kind
	switch {
	case ev.Err != nil:
		r.state = rowFailed
	case ev.Done:
		r.state, r.diags = rowDone, ev.Diagnostics
	default:
		r.state = rowRunning
		return nil
	}
	m.settled++
	// каждый фрагмент проходит не больше двух проб
	return m.bar.SetPercent(min(float64(m.settled)/float64(2*len(m.rows)), 1))
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	header := m.title
	if m.phase != "" {
		header += " (" + m.phase + ")"
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render(header) + "\n\n")
	nameWidth := max(m.width-16, 20)
	for _, r := range m.rows {
		status := r.style().Render(fmt.Sprintf("%12s", r.label()))
		b.WriteString("  " + status + " " + truncate(r.id, nameWidth) + "\n")
	}
	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

func truncate(value string, width int) string {
	switch {
	case width <= 0 || runewidth.StringWidth(value) <= width:
		return value
	case width <= 3:
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
