package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kg-project/sparqlq/internal/controller"
)

const (
	maxColumnWidth  = 40
	minResultHeight = 3
	// title, status, and help lines plus spacing
	chromeHeight = 6
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	phaseStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("0"))
)

var phaseColors = map[controller.Phase]lipgloss.Color{
	controller.PhaseIdle:    "7",
	controller.PhaseLoading: "11",
	controller.PhaseSuccess: "10",
	controller.PhaseFailure: "9",
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.editor.View())
	b.WriteString("\n\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m *Model) renderHeader() string {
	phase := phaseStyle.Background(phaseColors[m.state.Phase]).Render(m.state.Phase.String())
	return fmt.Sprintf("%s %s  %s",
		titleStyle.Render("sparqlq"),
		phase,
		mutedStyle.Render(m.ctl.Endpoint().String()),
	)
}

func (m *Model) renderBody() string {
	switch m.state.Phase {
	case controller.PhaseLoading:
		return m.spinner.View() + " Running query..."

	case controller.PhaseFailure:
		return errorStyle.Render("Error: " + m.state.Error)

	case controller.PhaseSuccess:
		n := m.state.Result.Len()
		if len(m.state.Result.Variables) == 0 {
			return mutedStyle.Render("(0 rows)")
		}
		return m.results.View() + "\n" + mutedStyle.Render(fmt.Sprintf("(%d rows)", n))

	default:
		return mutedStyle.Render("Edit the query and press ctrl+r to run it.")
	}
}

func (m *Model) renderHelp() string {
	parts := make([]string, 0, len(m.keys.help()))
	for _, k := range m.keys.help() {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return mutedStyle.Render(strings.Join(parts, " • "))
}
