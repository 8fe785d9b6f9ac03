// Package workqueue is the modal listing every job in the current
// rebuild session for quick navigation.
package workqueue

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bkodra/rebuild-tui/internal/ui"
)

// SelectedMsg is emitted when the operator picks a job to display.
type SelectedMsg struct {
	Index int
}

// Item is one row: a snapshot of a job's identity and status.
type Item struct {
	Image  string
	Status string
}

type Model struct {
	items    []Item
	selected int
}

func New(items []Item, selected int) *Model {
	if selected < 0 || selected >= len(items) {
		selected = 0
	}
	return &Model{items: items, selected: selected}
}

// Update handles modal input. The bool result reports whether the modal
// should close.
func (m *Model) Update(msg tea.Msg) (tea.Cmd, bool) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}

	switch key.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.items)-1 {
			m.selected++
		}
	case "enter":
		idx := m.selected
		return func() tea.Msg { return SelectedMsg{Index: idx} }, true
	case "esc", "w", "q":
		return nil, true
	}
	return nil, false
}

func (m *Model) View(width, height int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorPrimary).Render("Work Queue")

	rows := title + "\n"
	for i, item := range m.items {
		cursor := "  "
		if i == m.selected {
			cursor = lipgloss.NewStyle().Foreground(ui.ColorPrimary).Render("> ")
		}
		line := fmt.Sprintf("%s%s %s  %s", cursor, ui.StatusIcon(item.Status), item.Image,
			ui.StatusStyle(item.Status).Render(item.Status))
		if i == m.selected {
			line = lipgloss.NewStyle().Background(ui.ColorHighlight).Render(line)
		}
		rows += line + "\n"
	}
	rows += ui.StyleMuted.Render("\nenter:view  j/k:move  esc:close")

	box := ui.StylePaneFocused.Padding(1, 2).Width(min(width-4, 64)).Render(rows)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
