package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
)

// Loader fetches entries newest first.
type Loader func() ([]entities.Entry, error)

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

type entriesLoadedMsg struct {
	entries []entities.Entry
	err     error
}

// Model is the Bubble Tea model for the entry browser.
type Model struct {
	load    Loader
	state   viewState
	entries []entities.Entry
	cursor  int
	offset  int
	err     error
	loaded  bool
	width   int
	height  int

	viewport viewport.Model
	ready    bool
}

// New creates a browser that reads entries through load.
func New(load Loader) Model {
	return Model{load: load, width: 80, height: 24}
}

func (m Model) Init() tea.Cmd {
	return m.fetch()
}

func (m Model) fetch() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		entries, err := load()
		return entriesLoadedMsg{entries: entries, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.state == viewDetail {
			m.openDetail()
		}
		return m, nil

	case entriesLoadedMsg:
		m.loaded = true
		m.err = msg.err
		if msg.err == nil {
			m.entries = msg.entries
		}
		if m.cursor >= len(m.entries) {
			m.cursor = max(len(m.entries)-1, 0)
		}
		m.clampOffset()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.state == viewDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(len(m.entries)-1, 0)
	case "r":
		return m, m.fetch()
	case "enter":
		if len(m.entries) > 0 {
			m.state = viewDetail
			m.openDetail()
		}
	}
	m.clampOffset()
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace", "left", "h":
		m.state = viewList
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) openDetail() {
	// One line for the status bar.
	m.viewport = viewport.New(m.width, max(m.height-1, 1))
	m.viewport.SetContent(Render(m.entries[m.cursor], m.width))
	m.ready = true
}

// listHeight is the number of entry rows that fit under the header and help lines.
func (m Model) listHeight() int {
	return max(m.height-4, 1)
}

func (m *Model) clampOffset() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

func (m Model) View() string {
	if m.state == viewDetail && m.ready {
		e := m.entries[m.cursor]
		status := statusBarStyle.
			Width(m.width).
			Render(fmt.Sprintf(" %s • %d%% • esc back • q quit", e.Screenshot, int(m.viewport.ScrollPercent()*100)))
		return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), status)
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("snapsolve"))
	sb.WriteString(" ")
	sb.WriteString(subtitleStyle.Render(fmt.Sprintf("%d entries", len(m.entries))))
	sb.WriteString("\n\n")

	switch {
	case m.err != nil:
		sb.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		sb.WriteString("\n")
	case !m.loaded:
		sb.WriteString(dimStyle.Render("Loading..."))
		sb.WriteString("\n")
	case len(m.entries) == 0:
		sb.WriteString(dimStyle.Render("No entries yet."))
		sb.WriteString("\n")
	}

	end := min(m.offset+m.listHeight(), len(m.entries))
	for i := m.offset; i < end; i++ {
		line := Line(m.entries[i], m.width-2)
		if i == m.cursor {
			sb.WriteString(selectedStyle.Render("> ") + line)
		} else {
			sb.WriteString("  " + listItemStyle.Render(line))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(helpStyle.Render("↑/↓ move • enter open • r reload • q quit"))
	return sb.String()
}

// Run starts the browser in the alternate screen.
func Run(load Loader) error {
	p := tea.NewProgram(New(load), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
