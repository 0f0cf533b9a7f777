// Package tui implements the terminal user interface for sparqlq.
//
// The TUI follows Bubble Tea's Model-Update-View pattern. It owns no query
// state of its own: the editor writes through to a controller.Controller and
// controller changes arrive as stateChangedMsg via a subscription channel.
//
//   - model.go: state, initialization, and the update loop
//   - keys.go: key bindings and their actions
//   - render.go: view rendering
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kg-project/sparqlq/internal/controller"
)

// stateChangedMsg reports that the controller state changed.
type stateChangedMsg struct{}

// Model is the root Bubble Tea model.
type Model struct {
	ctl     *controller.Controller
	updates chan struct{}

	editor  textarea.Model
	spinner spinner.Model
	results table.Model
	keys    keyMap

	labels     []string
	exampleIdx int

	state  controller.State
	width  int
	height int
}

// New creates a model bound to ctl. Call Close when the program exits.
func New(ctl *controller.Controller) *Model {
	editor := textarea.New()
	editor.Placeholder = "SELECT ?s ?p ?o WHERE { ?s ?p ?o } LIMIT 10"
	editor.ShowLineNumbers = true
	editor.CharLimit = 0
	editor.SetHeight(8)
	editor.Focus()

	st := ctl.State()
	editor.SetValue(st.Query)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return &Model{
		ctl:        ctl,
		updates:    ctl.Subscribe(),
		editor:     editor,
		spinner:    sp,
		results:    table.New(table.WithFocused(false)),
		keys:       defaultKeyMap(),
		labels:     ctl.Library().List(),
		exampleIdx: -1,
		state:      st,
	}
}

// Close releases the controller subscription.
func (m *Model) Close() {
	m.ctl.Unsubscribe(m.updates)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, m.waitForUpdate())
}

// waitForUpdate blocks on the subscription and turns the next ping into a message.
func (m *Model) waitForUpdate() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.editor.SetWidth(msg.Width)
		m.resizeResults()
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		m.ctl.SetQuery(m.editor.Value())
		return m, cmd

	case stateChangedMsg:
		m.syncState()
		return m, m.waitForUpdate()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// syncState copies the controller snapshot and rebuilds the result table.
func (m *Model) syncState() {
	m.state = m.ctl.State()
	if m.state.Query != m.editor.Value() {
		m.editor.SetValue(m.state.Query)
	}
	if m.state.Phase != controller.PhaseSuccess || m.state.Result == nil {
		return
	}

	rs := m.state.Result
	cells := rs.Cells()
	widths := columnWidths(rs.Variables, cells)
	cols := make([]table.Column, len(rs.Variables))
	for i, v := range rs.Variables {
		cols[i] = table.Column{Title: v, Width: widths[i]}
	}
	rows := make([]table.Row, len(cells))
	for i, c := range cells {
		rows[i] = table.Row(c)
	}

	// Columns must be replaced before rows so row widths match.
	m.results.SetRows(nil)
	m.results.SetColumns(cols)
	m.results.SetRows(rows)
	m.resizeResults()
}

func (m *Model) resizeResults() {
	h := m.height - m.editor.Height() - chromeHeight
	if h < minResultHeight {
		h = minResultHeight
	}
	m.results.SetHeight(h)
	if m.width > 0 {
		m.results.SetWidth(m.width)
	}
}

// columnWidths measures display cells, not bytes, capped at maxColumnWidth.
func columnWidths(vars []string, cells [][]string) []int {
	widths := make([]int, len(vars))
	for i, v := range vars {
		w := lipgloss.Width(v)
		for _, row := range cells {
			w = max(w, lipgloss.Width(row[i]))
		}
		widths[i] = min(w, maxColumnWidth)
	}
	return widths
}
