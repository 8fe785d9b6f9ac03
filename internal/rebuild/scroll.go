package rebuild

// Scroll geometry helpers. All of these are pure functions of the current
// buffer length, line widths, and terminal area sampled at render time.

// MaxScrollY is the largest valid vertical offset for a buffer of total
// lines shown in a viewport of the given height.
func MaxScrollY(total, viewportHeight int) int {
	if viewportHeight <= 0 || total <= viewportHeight {
		return 0
	}
	return total - viewportHeight
}

// ClampY clamps a vertical offset into [0, MaxScrollY].
func ClampY(y, total, viewportHeight int) int {
	if y < 0 {
		return 0
	}
	if max := MaxScrollY(total, viewportHeight); y > max {
		return max
	}
	return y
}

// MaxScrollX is the largest valid horizontal offset given the widest
// visible line. Horizontal scrolling only activates when that line is
// wider than the viewport.
func MaxScrollX(maxLineWidth, viewportWidth int) int {
	if viewportWidth <= 0 || maxLineWidth <= viewportWidth {
		return 0
	}
	return maxLineWidth - viewportWidth
}

// ClampX clamps a horizontal offset into [0, MaxScrollX].
func ClampX(x, maxLineWidth, viewportWidth int) int {
	if x < 0 {
		return 0
	}
	if max := MaxScrollX(maxLineWidth, viewportWidth); x > max {
		return max
	}
	return x
}

// HStep is the horizontal scroll step, scaled to the viewport width.
func HStep(viewportWidth int) int {
	step := viewportWidth / 4
	if step < 1 {
		step = 1
	}
	return step
}

// Scrollbar describes a rendered scrollbar: thumb offset and length in
// track cells. Visible is false when the content fits the viewport.
type Scrollbar struct {
	Visible  bool
	ThumbPos int
	ThumbLen int
}

// ScrollbarFor computes scrollbar geometry for one axis: total content
// size, visible viewport size, current offset, and the track length in
// cells.
func ScrollbarFor(total, viewport, offset, trackLen int) Scrollbar {
	if trackLen <= 0 || total <= viewport || total == 0 {
		return Scrollbar{}
	}

	thumbLen := viewport * trackLen / total
	if thumbLen < 1 {
		thumbLen = 1
	}
	if thumbLen > trackLen {
		thumbLen = trackLen
	}

	maxOffset := total - viewport
	thumbPos := 0
	if maxOffset > 0 {
		thumbPos = offset * (trackLen - thumbLen) / maxOffset
	}
	return Scrollbar{Visible: true, ThumbPos: thumbPos, ThumbLen: thumbLen}
}
