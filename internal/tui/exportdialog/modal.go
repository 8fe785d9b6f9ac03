// Package exportdialog is the modal that writes the active job's
// captured output to a file under the configured export directory.
package exportdialog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bkodra/rebuild-tui/internal/model"
	"github.com/bkodra/rebuild-tui/internal/ui"
)

// ExportedMsg is emitted after a successful write.
type ExportedMsg struct {
	Path string
}

// WriteFunc performs the actual export once the filename validates.
// It returns the path written.
type WriteFunc func(name string) (string, error)

type Model struct {
	input textinput.Model
	write WriteFunc
	err   string
}

// New builds the dialog with a default filename derived from the image
// name and the current time.
func New(image string, now time.Time, write WriteFunc) *Model {
	ti := textinput.New()
	ti.CharLimit = 128
	ti.SetValue(DefaultFilename(image, now))
	ti.Focus()
	ti.CursorEnd()
	return &Model{input: ti, write: write}
}

// DefaultFilename sanitizes the image reference (slashes and colons are
// path-hostile) and appends a timestamp.
func DefaultFilename(image string, now time.Time) string {
	name := image
	if name == "" {
		name = "build"
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', ':', '\\', ' ':
			return '_'
		default:
			return r
		}
	}, name)
	return fmt.Sprintf("%s-%s.log", name, now.Format("20060102-150405"))
}

// ValidateName rejects empty names, absolute paths, and any path that
// could escape the export directory.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("filename must not be empty")
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("absolute paths are not allowed")
	}
	for _, part := range strings.Split(filepath.ToSlash(name), "/") {
		if part == ".." {
			return fmt.Errorf("path must not contain \"..\"")
		}
	}
	return nil
}

// Export writes lines as UTF-8 text to name resolved under dir.
func Export(dir, name string, lines []model.OutputLine) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line.Text)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write log: %w", err)
	}
	return path, nil
}

func (m *Model) Update(msg tea.Msg) (tea.Cmd, bool) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}

	switch key.String() {
	case "enter":
		name := m.input.Value()
		if err := ValidateName(name); err != nil {
			// Input is preserved so the operator can correct it.
			m.err = err.Error()
			return nil, false
		}
		path, err := m.write(name)
		if err != nil {
			m.err = err.Error()
			return nil, false
		}
		return func() tea.Msg { return ExportedMsg{Path: path} }, true
	case "esc":
		return nil, true
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.err = ""
	return cmd, false
}

func (m *Model) View(width, height int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorPrimary).Render("Export Log")

	body := title + "\n\n" + m.input.View() + "\n"
	if m.err != "" {
		body += "\n" + ui.StyleFailure.Render(m.err) + "\n"
	}
	body += "\n" + ui.StyleMuted.Render("enter:save  esc:cancel")

	box := ui.StylePaneFocused.Padding(1, 2).Width(min(width-4, 60)).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
