// Package rebuildview renders the rebuild session screen: job header,
// the scrollable output window with search highlighting, and scrollbars.
package rebuildview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/bkodra/rebuild-tui/internal/model"
	"github.com/bkodra/rebuild-tui/internal/rebuild"
	"github.com/bkodra/rebuild-tui/internal/ui"
)

// ContentSize returns the output window dimensions for a terminal area.
// One column is reserved for the vertical scrollbar gutter; header,
// footer, and the search prompt line (when a search is open) take rows.
func ContentSize(width, height int, searchOpen bool) (int, int) {
	w := width - 1
	h := height - 2
	if searchOpen {
		h--
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// MaxVisibleLineWidth returns the display width of the widest line in
// the current vertical window. Horizontal scrolling clamps against it.
func MaxVisibleLineWidth(st *rebuild.State) int {
	job := st.ActiveJob()
	if job == nil {
		return 0
	}
	max := 0
	end := st.ScrollY + st.ViewportHeight
	if end > job.Output.Len() {
		end = job.Output.Len()
	}
	for i := st.ScrollY; i < end; i++ {
		if w := runewidth.StringWidth(job.Output.Line(i).Text); w > max {
			max = w
		}
	}
	return max
}

// View renders the whole rebuild screen. spin is the current spinner
// frame; searchPrompt is the live textinput view while editing.
func View(st *rebuild.State, spin, searchPrompt string, width, height int) string {
	job := st.ActiveJob()
	if job == nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			ui.StyleMuted.Render("No jobs queued"))
	}

	var b strings.Builder
	b.WriteString(header(st, job, spin, width))
	b.WriteByte('\n')
	if st.Search != nil {
		b.WriteString(searchLine(st, searchPrompt, width))
		b.WriteByte('\n')
	}
	b.WriteString(window(st, job))
	b.WriteByte('\n')
	b.WriteString(footer(st, job, width))
	return b.String()
}

func header(st *rebuild.State, job *rebuild.Job, spin string, width int) string {
	status := job.Status.String()
	icon := ui.StatusIcon(status)
	if job.Status == model.StatusRunning {
		icon = ui.StyleInfo.Render(spin)
	}

	left := fmt.Sprintf(" %s %s  %s  [%d/%d]",
		icon, job.Spec.Image,
		ui.StatusStyle(status).Render(status),
		st.ActiveIdx+1, len(st.Jobs))
	if job.Err != nil {
		left += "  " + ui.StyleFailure.Render(job.Err.Error())
	}
	return runewidth.Truncate(left, width, "…")
}

func searchLine(st *rebuild.State, searchPrompt string, width int) string {
	s := st.Search
	prefix := "/"
	if s.Direction == rebuild.Backward {
		prefix = "?"
	}

	var line string
	if s.Editing {
		line = " " + prefix + searchPrompt
	} else {
		line = " " + prefix + s.Query
	}
	if s.Err != nil {
		line += "  " + ui.StyleFailure.Render(s.Err.Error())
	} else if n := len(s.Matches()); n > 0 {
		line += ui.StyleMuted.Render(fmt.Sprintf("  [%d/%d]", s.ActiveIndex()+1, n))
	} else if s.Query != "" && !s.Editing {
		line += ui.StyleMuted.Render("  [no matches]")
	}
	return runewidth.Truncate(line, width, "…")
}

// window renders the visible output slice plus the vertical scrollbar
// gutter.
func window(st *rebuild.State, job *rebuild.Job) string {
	total := job.Output.Len()
	vbar := rebuild.ScrollbarFor(total, st.ViewportHeight, st.ScrollY, st.ViewportHeight)

	rows := make([]string, st.ViewportHeight)
	for row := 0; row < st.ViewportHeight; row++ {
		idx := st.ScrollY + row
		line := ""
		if idx < total {
			line = renderLine(st, job, idx)
		}

		gutter := " "
		if vbar.Visible {
			if row >= vbar.ThumbPos && row < vbar.ThumbPos+vbar.ThumbLen {
				gutter = ui.StyleMuted.Render("█")
			} else {
				gutter = ui.StyleMuted.Render("│")
			}
		}
		pad := st.ViewportWidth - runewidth.StringWidth(stripForWidth(line))
		if pad < 0 {
			pad = 0
		}
		rows[row] = line + strings.Repeat(" ", pad) + gutter
	}
	return strings.Join(rows, "\n")
}

// renderLine cuts one buffer line to the horizontal window and applies
// search highlighting to the match spans that survived the cut.
func renderLine(st *rebuild.State, job *rebuild.Job, idx int) string {
	raw := job.Output.Line(idx)
	visible, startByte := cutLine(raw.Text, st.ScrollX, st.ViewportWidth)

	base := lipgloss.NewStyle()
	if raw.Stream == model.Stderr {
		base = ui.StyleStderr
	}
	if st.Search == nil {
		return base.Render(visible)
	}

	type span struct {
		start, end int
		active     bool
	}
	var spans []span
	for i, m := range st.Search.Matches() {
		if m.Line != idx {
			continue
		}
		s := m.Start - startByte
		e := m.End - startByte
		if e <= 0 || s >= len(visible) {
			continue
		}
		if s < 0 {
			s = 0
		}
		if e > len(visible) {
			e = len(visible)
		}
		spans = append(spans, span{start: s, end: e, active: i == st.Search.ActiveIndex()})
	}
	if len(spans) == 0 {
		return base.Render(visible)
	}

	var b strings.Builder
	pos := 0
	for _, sp := range spans {
		if sp.start > pos {
			b.WriteString(base.Render(visible[pos:sp.start]))
		}
		style := ui.StyleMatch
		if sp.active {
			style = ui.StyleActiveMatch
		}
		b.WriteString(style.Render(visible[sp.start:sp.end]))
		pos = sp.end
	}
	if pos < len(visible) {
		b.WriteString(base.Render(visible[pos:]))
	}
	return b.String()
}

// cutLine returns the substring of s covering display columns
// [x, x+width) and the byte offset where that substring starts.
func cutLine(s string, x, width int) (string, int) {
	if x <= 0 && runewidth.StringWidth(s) <= width {
		return s, 0
	}

	col := 0
	start := -1
	end := len(s)
	for i, r := range s {
		w := runewidth.RuneWidth(r)
		if start < 0 && col >= x {
			start = i
		}
		if start >= 0 && col+w > x+width {
			end = i
			break
		}
		col += w
	}
	if start < 0 {
		return "", len(s)
	}
	return s[start:end], start
}

// stripForWidth removes ANSI sequences so padding math sees cell widths.
func stripForWidth(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case inEsc:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEsc = false
			}
		case r == '\x1b':
			inEsc = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func footer(st *rebuild.State, job *rebuild.Job, width int) string {
	total := job.Output.Len()

	hbar := ""
	if maxW := MaxVisibleLineWidth(st); maxW > st.ViewportWidth {
		sb := rebuild.ScrollbarFor(maxW, st.ViewportWidth, st.ScrollX, 10)
		track := []rune("──────────")
		for i := sb.ThumbPos; i < sb.ThumbPos+sb.ThumbLen && i < len(track); i++ {
			track[i] = '━'
		}
		hbar = ui.StyleMuted.Render(" [" + string(track) + "]")
	}

	pct := 100
	if max := rebuild.MaxScrollY(total, st.ViewportHeight); max > 0 {
		pct = st.ScrollY * 100 / max
	}
	ok, failed := st.Counts()

	left := fmt.Sprintf(" %s %s", ui.StyleSuccess.Render(fmt.Sprintf("%d ok", ok)),
		ui.StyleFailure.Render(fmt.Sprintf("%d failed", failed)))
	if st.Finished {
		left += ui.StyleMuted.Render("  all done")
	}
	follow := ""
	if st.AutoScroll {
		follow = ui.StyleInfo.Render("  [follow]")
	}
	hints := ui.StyleMuted.Render("  /:search n/N:match w:queue e:export esc:back")

	return runewidth.Truncate(fmt.Sprintf("%s%s%s  %3d%%%s", left, follow, hints, pct, hbar), width, "…")
}
