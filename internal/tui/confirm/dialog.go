// Package confirm is the yes/no dialog shown before a rebuild session
// starts.
package confirm

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bkodra/rebuild-tui/internal/model"
	"github.com/bkodra/rebuild-tui/internal/ui"
)

// ResultMsg reports the operator's choice. Specs carries the jobs to
// queue when confirmed.
type ResultMsg struct {
	Confirmed bool
	Specs     []model.JobSpec
}

type Model struct {
	specs    []model.JobSpec
	selected bool // true = Yes focused
}

func New(specs []model.JobSpec) *Model {
	return &Model{specs: specs}
}

func (m *Model) Update(msg tea.Msg) (tea.Cmd, bool) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}

	result := func(ok bool) (tea.Cmd, bool) {
		specs := m.specs
		return func() tea.Msg { return ResultMsg{Confirmed: ok, Specs: specs} }, true
	}

	switch key.String() {
	case "y", "Y":
		return result(true)
	case "n", "esc":
		return result(false)
	case "enter":
		return result(m.selected)
	case "tab", "left", "right", "h", "l":
		m.selected = !m.selected
	}
	return nil, false
}

func (m *Model) View(width, height int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorWarning).Render("Start Rebuild")

	yesStyle := lipgloss.NewStyle().Padding(0, 1)
	noStyle := lipgloss.NewStyle().Padding(0, 1)
	if m.selected {
		yesStyle = yesStyle.Bold(true).Background(ui.ColorSuccess).Foreground(lipgloss.Color("#F9FAFB"))
		noStyle = noStyle.Foreground(ui.ColorMuted)
	} else {
		yesStyle = yesStyle.Foreground(ui.ColorMuted)
		noStyle = noStyle.Bold(true).Background(ui.ColorFailure).Foreground(lipgloss.Color("#F9FAFB"))
	}

	preview := ""
	for i, spec := range m.specs {
		if i == 4 {
			preview += ui.StyleMuted.Render(fmt.Sprintf("  ... and %d more\n", len(m.specs)-i))
			break
		}
		preview += "  " + spec.Image + "\n"
	}

	content := fmt.Sprintf("%s\n\nRebuild %d image(s)?\n%s\n%s  %s\n\ny/n to confirm, esc to cancel",
		title, len(m.specs), preview,
		yesStyle.Render("Yes"), noStyle.Render("No"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorWarning).
		Padding(1, 2).
		Width(50).
		Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
