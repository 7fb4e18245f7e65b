package viewport

import (
	"strings"
	"sync"
)

// Result is what a renderer needs for one frame.
type Result struct {
	Visible   Series
	Domain    Domain
	Formatter Formatter
}

// Compute runs the whole pipeline without caching: optional normalisation over
// the descriptor keys, windowing, then the shared Y domain.
func Compute(s Series, series []SeriesDescriptor, st State, normalize bool) Result {
	return ComputeMode(s, series, st, ModeFor(normalize, false))
}

// ComputeMode is Compute with an explicit pre-window transform.
func ComputeMode(s Series, series []SeriesDescriptor, st State, mode Mode) Result {
	st = st.Clamp()
	visible := Window(transform(s, Keys(series), mode), st.XZoom, st.XPan)
	return Result{
		Visible:   visible,
		Domain:    ComputeDomain(visible, series, st.YZoom, st.YPan),
		Formatter: formatterFor(mode),
	}
}

func formatterFor(mode Mode) Formatter {
	return Formatter{Percentage: mode == ModePercent, Log: mode == ModeLog}
}

// seriesID is reference identity of a series: same backing array, same length.
type seriesID struct {
	head *Point
	n    int
}

func idOf(s Series) seriesID {
	if len(s) == 0 {
		return seriesID{}
	}
	return seriesID{head: &s[0], n: len(s)}
}

type normKey struct {
	data seriesID
	keys string
	mode Mode
}

type windowKey struct {
	data       seriesID
	xZoom, xPn float64
}

type domainKey struct {
	slice      seriesID
	keys       string
	yZoom, yPn float64
}

// Stats counts memo hits and misses per stage. The Normalize counters cover
// every pre-window transform.
type Stats struct {
	NormalizeHits, NormalizeMisses int
	WindowHits, WindowMisses       int
	DomainHits, DomainMisses       int
}

// Viewport memoises each pipeline stage against its own inputs, one entry per
// stage, so repeated renders with unchanged inputs skip the O(n) rescans.
type Viewport struct {
	mu sync.Mutex

	normOK  bool
	normK   normKey
	normVal Series

	winOK  bool
	winK   windowKey
	winVal Series

	domOK  bool
	domK   domainKey
	domVal Domain

	stats Stats
}

func NewViewport() *Viewport { return &Viewport{} }

// Compute is the memoised equivalent of the package-level Compute.
func (v *Viewport) Compute(s Series, series []SeriesDescriptor, st State, normalize bool) Result {
	return v.ComputeMode(s, series, st, ModeFor(normalize, false))
}

// ComputeMode is the memoised equivalent of the package-level ComputeMode.
func (v *Viewport) ComputeMode(s Series, series []SeriesDescriptor, st State, mode Mode) Result {
	st = st.Clamp()
	keys := strings.Join(Keys(series), "\x00")

	v.mu.Lock()
	defer v.mu.Unlock()

	data := s
	if mode != ModeRaw {
		nk := normKey{data: idOf(s), keys: keys, mode: mode}
		if v.normOK && v.normK == nk {
			v.stats.NormalizeHits++
		} else {
			v.stats.NormalizeMisses++
			v.normVal = transform(s, Keys(series), mode)
			v.normK, v.normOK = nk, true
		}
		data = v.normVal
	}

	wk := windowKey{data: idOf(data), xZoom: st.XZoom, xPn: st.XPan}
	if v.winOK && v.winK == wk {
		v.stats.WindowHits++
	} else {
		v.stats.WindowMisses++
		v.winVal = Window(data, st.XZoom, st.XPan)
		v.winK, v.winOK = wk, true
	}

	dk := domainKey{slice: idOf(v.winVal), keys: keys, yZoom: st.YZoom, yPn: st.YPan}
	if v.domOK && v.domK == dk {
		v.stats.DomainHits++
	} else {
		v.stats.DomainMisses++
		v.domVal = ComputeDomain(v.winVal, series, st.YZoom, st.YPan)
		v.domK, v.domOK = dk, true
	}

	return Result{Visible: v.winVal, Domain: v.domVal, Formatter: formatterFor(mode)}
}

// Stats returns a snapshot of the hit/miss counters.
func (v *Viewport) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stats
}

// Reset drops every cached stage.
func (v *Viewport) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.normOK, v.winOK, v.domOK = false, false, false
	v.normVal, v.winVal = nil, nil
}
