// Package nameedit is the modal used when rebuilding by dockerfile:
// every checked row gets an editable image name before its job is queued.
package nameedit

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bkodra/rebuild-tui/internal/model"
	"github.com/bkodra/rebuild-tui/internal/ui"
)

// Placeholder is the derived name used when discovery could not produce
// a usable default. It never passes validation on its own.
const Placeholder = "unknown"

// AcceptedMsg carries the job specs produced from the validated entries.
type AcceptedMsg struct {
	Specs []model.JobSpec
}

// Entry is one editable row: a dockerfile with its image name.
type Entry struct {
	EntryPath string
	SourceDir string
	Name      string
	Cursor    int
}

type Model struct {
	entries  []Entry
	selected int
	input    textinput.Model
	err      string
}

func New(entries []Entry) *Model {
	ti := textinput.New()
	ti.CharLimit = 128
	ti.Focus()

	m := &Model{entries: entries, input: ti}
	m.loadEntry(0)
	return m
}

func (m *Model) loadEntry(idx int) {
	if idx < 0 || idx >= len(m.entries) {
		return
	}
	m.selected = idx
	entry := m.entries[idx]
	m.input.SetValue(entry.Name)
	cursor := entry.Cursor
	if cursor > len(entry.Name) {
		cursor = len(entry.Name)
	}
	m.input.SetCursor(cursor)
}

func (m *Model) saveEntry() {
	m.entries[m.selected].Name = m.input.Value()
	m.entries[m.selected].Cursor = m.input.Position()
}

// Validate returns the index of the first entry whose trimmed name is
// empty or the placeholder, or -1 when all entries pass.
func Validate(entries []Entry) int {
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" || strings.EqualFold(name, Placeholder) {
			return i
		}
	}
	return -1
}

// Specs converts validated entries into job specs.
func Specs(entries []Entry) []model.JobSpec {
	specs := make([]model.JobSpec, len(entries))
	for i, e := range entries {
		specs[i] = model.JobSpec{
			Kind:      model.KindDockerfile,
			Image:     strings.TrimSpace(e.Name),
			EntryPath: e.EntryPath,
			SourceDir: e.SourceDir,
		}
	}
	return specs
}

func (m *Model) Update(msg tea.Msg) (tea.Cmd, bool) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}

	switch key.String() {
	case "up":
		m.saveEntry()
		if m.selected > 0 {
			m.loadEntry(m.selected - 1)
		}
		return nil, false
	case "down":
		m.saveEntry()
		if m.selected < len(m.entries)-1 {
			m.loadEntry(m.selected + 1)
		}
		return nil, false
	case "enter":
		m.saveEntry()
		if bad := Validate(m.entries); bad >= 0 {
			m.err = fmt.Sprintf("entry %d: image name must not be empty or %q", bad+1, Placeholder)
			m.loadEntry(bad)
			return nil, false
		}
		specs := Specs(m.entries)
		return func() tea.Msg { return AcceptedMsg{Specs: specs} }, true
	case "esc":
		return nil, true
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.err = ""
	return cmd, false
}

func (m *Model) View(width, height int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorPrimary).Render("Image Names")

	body := title + "\n\n"
	for i, entry := range m.entries {
		marker := "  "
		nameCol := entry.Name
		if i == m.selected {
			marker = lipgloss.NewStyle().Foreground(ui.ColorPrimary).Render("> ")
			nameCol = m.input.View()
		}
		body += fmt.Sprintf("%s%-24s %s\n", marker, truncate(entry.EntryPath, 24), nameCol)
	}
	if m.err != "" {
		body += "\n" + ui.StyleFailure.Render(m.err) + "\n"
	}
	body += "\n" + ui.StyleMuted.Render("enter:rebuild  up/down:entry  esc:cancel")

	box := ui.StylePaneFocused.Padding(1, 2).Width(min(width-4, 80)).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n+3:]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
