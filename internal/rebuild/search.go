package rebuild

import "regexp"

// Direction is the initial search direction: "/" opens a forward search,
// "?" a backward one.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Match is one regex hit: a line index into the active job's buffer and
// the byte span of the hit within that line.
type Match struct {
	Line  int
	Start int
	End   int
}

// Search holds the in-log search state for the active job. Matches are
// only valid for the buffer contents they were computed from, so every
// output mutation and every job switch requires a Recompute.
type Search struct {
	Direction Direction
	Query     string
	Editing   bool
	Err       error

	re      *regexp.Regexp
	matches []Match
	active  int // index into matches, -1 when there are none
}

func NewSearch(dir Direction) *Search {
	return &Search{Direction: dir, Editing: true, active: -1}
}

func (s *Search) Matches() []Match { return s.matches }

// Active returns the currently selected match, or nil.
func (s *Search) Active() *Match {
	if s.active < 0 || s.active >= len(s.matches) {
		return nil
	}
	return &s.matches[s.active]
}

// ActiveIndex returns the selected match index, -1 when none.
func (s *Search) ActiveIndex() int {
	if s.active >= len(s.matches) {
		return -1
	}
	return s.active
}

// SetQuery updates the query and recompiles the pattern. An invalid
// pattern is recorded in Err while the last valid matcher stays in
// place, so a half-typed pattern neither wipes the view nor leaves
// stale spans behind as output keeps arriving.
func (s *Search) SetQuery(query string) {
	s.Query = query
	if query == "" {
		s.re = nil
		s.Err = nil
		s.matches = nil
		s.active = -1
		return
	}
	re, err := regexp.Compile(query)
	if err != nil {
		s.Err = err
		return
	}
	s.re = re
	s.Err = nil
}

// Recompute rescans the buffer. baseline is the line the viewer is
// looking at; the nearest match at or after it becomes active so the
// selection does not jump away as output grows. When no match lies at
// or after the anchor, match 0 is selected.
func (s *Search) Recompute(buf *OutputBuffer, baseline int) {
	prevActiveLine := -1
	if m := s.Active(); m != nil {
		prevActiveLine = m.Line
	}

	s.matches = nil
	s.active = -1
	if s.re == nil || buf == nil {
		return
	}

	for i := 0; i < buf.Len(); i++ {
		for _, span := range s.re.FindAllStringIndex(buf.Line(i).Text, -1) {
			s.matches = append(s.matches, Match{Line: i, Start: span[0], End: span[1]})
		}
	}
	if len(s.matches) == 0 {
		return
	}

	anchor := baseline
	if prevActiveLine >= 0 {
		anchor = prevActiveLine
	}
	s.active = 0
	for i, m := range s.matches {
		if m.Line >= anchor {
			s.active = i
			return
		}
	}
}

// Next advances the active match in the search direction, wrapping.
func (s *Search) Next() {
	s.step(1)
}

// Prev steps the active match against the search direction, wrapping.
func (s *Search) Prev() {
	s.step(-1)
}

func (s *Search) step(delta int) {
	n := len(s.matches)
	if n == 0 {
		return
	}
	if s.Direction == Backward {
		delta = -delta
	}
	s.active = ((s.active+delta)%n + n) % n
}

// CenterTarget returns the scroll offset that centers the active match,
// clamped to the valid scroll range.
func (s *Search) CenterTarget(total, viewportHeight int) int {
	m := s.Active()
	if m == nil {
		return 0
	}
	target := m.Line - viewportHeight/2
	return ClampY(target, total, viewportHeight)
}
