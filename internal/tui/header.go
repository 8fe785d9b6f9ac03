package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/bkodra/rebuild-tui/internal/ui"
)

func RenderHeader(scanRoot, session string, width int) string {
	left := lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color("#F9FAFB")).
		Render(fmt.Sprintf(" rebuild-tui | %s", scanRoot))

	right := ""
	if session != "" {
		right = lipgloss.NewStyle().Foreground(ui.ColorInfo).Render(session + " ")
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Background(lipgloss.Color("#1F2937")).
		Width(width).
		Render(left + padding + right)
}
