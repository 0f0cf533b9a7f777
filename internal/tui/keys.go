package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Run         key.Binding
	NextExample key.Binding
	PrevExample key.Binding
	ScrollDown  key.Binding
	ScrollUp    key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Run:         key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "run")),
		NextExample: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n/ctrl+p", "examples")),
		PrevExample: key.NewBinding(key.WithKeys("ctrl+p")),
		ScrollDown:  key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgup/pgdn", "scroll results")),
		ScrollUp:    key.NewBinding(key.WithKeys("pgup")),
		Quit:        key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Run, k.NextExample, k.ScrollDown, k.Quit}
}

// handleKey runs global bindings. Keys it does not handle go to the editor.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit, true

	case key.Matches(msg, m.keys.Run):
		m.ctl.SetQuery(m.editor.Value())
		// The submission outlives this key press; its outcome arrives as stateChangedMsg.
		m.ctl.Submit(context.Background())
		return nil, true

	case key.Matches(msg, m.keys.NextExample):
		m.cycleExample(1)
		return nil, true

	case key.Matches(msg, m.keys.PrevExample):
		m.cycleExample(-1)
		return nil, true

	case key.Matches(msg, m.keys.ScrollDown):
		m.results.MoveDown(m.results.Height())
		return nil, true

	case key.Matches(msg, m.keys.ScrollUp):
		m.results.MoveUp(m.results.Height())
		return nil, true
	}
	return nil, false
}

// cycleExample loads the next (step 1) or previous (step -1) example.
func (m *Model) cycleExample(step int) {
	n := len(m.labels)
	if n == 0 {
		return
	}
	if m.exampleIdx < 0 && step < 0 {
		m.exampleIdx = 0
	}
	m.exampleIdx = ((m.exampleIdx+step)%n + n) % n

	if m.ctl.SelectExample(m.labels[m.exampleIdx]) {
		m.editor.SetValue(m.ctl.State().Query)
	}
}
