// Package rebuild implements the rebuild session core: the bounded
// per-job output store, scroll and search state, and the background
// worker that runs queued builds one at a time.
package rebuild

import "github.com/bkodra/rebuild-tui/internal/model"

// OutputBuffer is a bounded FIFO of output lines. Once the limit is
// reached the oldest line is evicted on every append, giving tail -N
// semantics per job.
type OutputBuffer struct {
	lines []model.OutputLine
	start int
	count int
}

// NewOutputBuffer creates a buffer retaining at most limit lines.
// A non-positive limit falls back to 1.
func NewOutputBuffer(limit int) *OutputBuffer {
	if limit < 1 {
		limit = 1
	}
	return &OutputBuffer{lines: make([]model.OutputLine, limit)}
}

func (b *OutputBuffer) Append(line model.OutputLine) {
	limit := len(b.lines)
	if b.count < limit {
		b.lines[(b.start+b.count)%limit] = line
		b.count++
		return
	}
	b.lines[b.start] = line
	b.start = (b.start + 1) % limit
}

func (b *OutputBuffer) Len() int {
	return b.count
}

// Line returns the i-th retained line, oldest first.
func (b *OutputBuffer) Line(i int) model.OutputLine {
	return b.lines[(b.start+i)%len(b.lines)]
}

// Lines returns the retained lines oldest-first as a fresh slice.
func (b *OutputBuffer) Lines() []model.OutputLine {
	out := make([]model.OutputLine, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.Line(i)
	}
	return out
}
