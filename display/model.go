package display

import (
	"image"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"go.jacobcolvin.com/rotoplay/render"
)

// Title is the terminal window title while the display runs.
const Title = "Video"

const keyInterrupt = "ctrl+c"

type (
	// frameMsg carries a frame to show.
	frameMsg struct{ frame *image.RGBA }
	// logMsg carries a line for the status bar.
	logMsg string
	// stopMsg ends the program with err.
	stopMsg struct{ err error }
)

// model is the Bubble Tea model behind [Terminal].
type model struct {
	keys   chan string
	frame  *image.RGBA // Last frame as presented.
	fitted *image.RGBA // frame scaled to the current grid.
	err    error
	status lipgloss.Style
	buf    strings.Builder
	line   string
	width  int // Fixed column count; 0 follows the window.
	cols   int
	rows   int
}

func newModel(keys chan string, width, cols, rows int) *model {
	m := &model{
		keys:   keys,
		width:  width,
		status: lipgloss.NewStyle().Faint(true),
	}
	m.resize(cols, rows)

	return m
}

// Init implements [tea.Model].
func (m *model) Init() tea.Cmd {
	return nil
}

// Update implements [tea.Model].
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		key := msg.String()
		if key == keyInterrupt {
			return m, tea.Quit
		}

		m.push(key)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case frameMsg:
		m.frame = msg.frame
		m.fit()

	case logMsg:
		m.line = string(msg)

	case stopMsg:
		m.err = msg.err

		return m, tea.Quit
	}

	return m, nil
}

// View implements [tea.Model]. The frame fills all rows but the last, which
// holds the status bar.
func (m *model) View() tea.View {
	render.Frame(m.fitted, m.cols, m.frameRows(), &m.buf)

	var sb strings.Builder

	sb.Grow(m.buf.Len() + m.cols + 1)
	sb.WriteString(m.buf.String())

	if m.rows > 1 {
		sb.WriteByte('\n')
		sb.WriteString(m.status.Width(m.cols).MaxWidth(m.cols).MaxHeight(1).Render(m.line))
	}

	v := tea.NewView(sb.String())
	v.AltScreen = true
	v.WindowTitle = Title

	return v
}

func (m *model) resize(cols, rows int) {
	if m.width > 0 {
		cols = min(cols, m.width)
		if cols <= 0 {
			cols = m.width
		}
	}

	if cols == m.cols && rows == m.rows {
		return
	}

	m.cols = cols
	m.rows = rows
	m.fit()
}

func (m *model) frameRows() int {
	if m.rows > 1 {
		return m.rows - 1
	}

	return m.rows
}

func (m *model) fit() {
	if m.frame == nil {
		m.fitted = nil

		return
	}

	m.fitted = render.Fit(m.frame, m.cols, m.frameRows())
}

// push buffers key, dropping the oldest key when the buffer is full.
func (m *model) push(key string) {
	select {
	case m.keys <- key:
		return
	default:
	}

	select {
	case <-m.keys:
	default:
	}

	select {
	case m.keys <- key:
	default:
	}
}
