package viewport

import "math"

const (
	minWindowPoints   = 10
	minWindowFraction = 0.1
)

// WindowBounds returns the first index and length of the visible window for a
// series of total points. Zoom and pan are clamped to 0..100.
func WindowBounds(total int, xZoom, xPan float64) (start, size int) {
	if total <= 0 {
		return 0, 0
	}
	xZoom = clamp(xZoom, 0, 100)
	xPan = clamp(xPan, 0, 100)

	minWindow := max(minWindowPoints, int(math.Floor(float64(total)*minWindowFraction)))
	size = max(minWindow, int(math.Floor(float64(total)*(1-xZoom/100))))
	if size > total {
		size = total
	}
	panMax := max(0, total-size)
	start = min(panMax, int(math.Floor(xPan/100*float64(panMax))))
	return start, size
}

// Window returns a copy of the contiguous visible sub-range of s.
func Window(s Series, xZoom, xPan float64) Series {
	start, size := WindowBounds(len(s), xZoom, xPan)
	out := make(Series, size)
	copy(out, s[start:start+size])
	return out
}
