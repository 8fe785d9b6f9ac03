// Package dashboard lists discovered build targets with a checkbox per
// row; checked rows are what a rebuild session gets built from.
package dashboard

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bkodra/rebuild-tui/internal/model"
	"github.com/bkodra/rebuild-tui/internal/ui"
)

// --- Custom delegate (avoids DefaultDelegate ANSI corruption during filtering) ---

type targetDelegate struct {
	checked *map[string]bool // pointer to the model's checked-row set
}

func (d targetDelegate) Height() int                             { return 1 }
func (d targetDelegate) Spacing() int                            { return 0 }
func (d targetDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d targetDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(targetItem)
	if !ok {
		return
	}

	checked := *d.checked
	mark := "[ ]"
	if checked[ti.key()] {
		mark = ui.StyleWarning.Render("[x]")
	}

	kind := ui.StyleMuted.Render(fmt.Sprintf("%-10s", ti.target.Kind))
	name := ti.target.DisplayName()
	container := ""
	if ti.target.Container != "" {
		container = ui.StyleInfo.Render("  " + ti.target.Container)
	}
	path := ui.StyleMuted.Render("  " + ti.target.EntryPath)

	line := fmt.Sprintf(" %s %s %s%s%s", mark, kind, name, container, path)
	if index == m.Index() {
		line = lipgloss.NewStyle().Background(ui.ColorHighlight).Width(m.Width()).Render(line)
	}
	fmt.Fprint(w, line)
}

// --- Item ---

type targetItem struct {
	target model.Target
}

func (t targetItem) FilterValue() string {
	return t.target.Image + " " + t.target.Service + " " + t.target.EntryPath
}

func (t targetItem) key() string {
	return t.target.EntryPath + "#" + t.target.Service
}

// --- Model ---

type Model struct {
	list    list.Model
	targets []model.Target
	checked map[string]bool
	loading bool
	err     error
}

func New() Model {
	checked := make(map[string]bool)
	delegate := targetDelegate{checked: &checked}

	l := list.New(nil, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowFilter(true)
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.KeyMap.Filter = key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter"))
	l.DisableQuitKeybindings()

	return Model{
		list:    l,
		checked: checked,
		loading: true,
	}
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

func (m *Model) SetLoading() {
	m.loading = true
	m.err = nil
}

// IsFiltering reports whether the embedded list owns the keyboard.
func (m Model) IsFiltering() bool {
	return m.list.FilterState() == list.Filtering
}

// Toggle flips the checkbox on the focused row.
func (m *Model) Toggle() {
	if item, ok := m.list.SelectedItem().(targetItem); ok {
		k := item.key()
		if m.checked[k] {
			delete(m.checked, k)
		} else {
			m.checked[k] = true
		}
	}
}

// CheckAll checks every discovered target, CheckNone clears all.
func (m *Model) CheckAll() {
	for _, t := range m.targets {
		m.checked[targetItem{t}.key()] = true
	}
}

func (m *Model) CheckNone() {
	for k := range m.checked {
		delete(m.checked, k)
	}
}

// Checked returns checked targets in discovery order.
func (m Model) Checked() []model.Target {
	var out []model.Target
	for _, t := range m.targets {
		if m.checked[targetItem{t}.key()] {
			out = append(out, t)
		}
	}
	return out
}

// CheckedDockerfiles returns the checked rows backed by a Dockerfile.
func (m Model) CheckedDockerfiles() []model.Target {
	var out []model.Target
	for _, t := range m.Checked() {
		if t.Kind == model.KindDockerfile {
			out = append(out, t)
		}
	}
	return out
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.TargetsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.targets = msg.Targets
		m.CheckNone()
		items := make([]list.Item, len(msg.Targets))
		for i, t := range msg.Targets {
			items[i] = targetItem{target: t}
		}
		cmd := m.list.SetItems(items)
		m.list.Select(0)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.loading {
		return "\n  Scanning for build targets..."
	}
	if m.err != nil {
		return "\n  " + ui.StyleFailure.Render("Scan failed: "+m.err.Error())
	}
	if len(m.targets) == 0 {
		return "\n  " + ui.StyleMuted.Render("No build targets found")
	}
	return m.list.View()
}
