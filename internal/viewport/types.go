package viewport

import "math"

// Point is one row of a time series: an ordering key plus named numeric fields.
// A field absent from Values, or holding NaN/Inf, counts as missing.
type Point struct {
	Key    string
	Values map[string]float64
}

// Value returns the field value when it is present and finite.
func (p Point) Value(field string) (float64, bool) {
	v, ok := p.Values[field]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Series is an ordered sequence of points, oldest first.
type Series []Point

// SeriesDescriptor identifies which field of a point a chart line draws.
type SeriesDescriptor struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Keys returns the field names of the descriptors, in order.
func Keys(ds []SeriesDescriptor) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Key)
	}
	return out
}

// State holds the four slider positions of one chart.
type State struct {
	XZoom float64 // 0..100, 0 = full series
	XPan  float64 // 0..100, 0 = earliest data
	YZoom float64 // 0..100, 0 = tightest fit
	YPan  float64 // -100..100
}

func DefaultState() State { return State{} }

// Clamp returns a copy with every control inside its documented range.
func (s State) Clamp() State {
	return State{
		XZoom: clamp(s.XZoom, 0, 100),
		XPan:  clamp(s.XPan, 0, 100),
		YZoom: clamp(s.YZoom, 0, 100),
		YPan:  clamp(s.YPan, -100, 100),
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Domain is the Y-axis range handed to the renderer. Auto means the renderer
// picks its own range.
type Domain struct {
	Auto bool
	Min  float64
	Max  float64
}

func AutoDomain() Domain { return Domain{Auto: true} }

func (d Domain) Width() float64 {
	if d.Auto {
		return 0
	}
	return d.Max - d.Min
}

func (d Domain) Center() float64 {
	if d.Auto {
		return 0
	}
	return (d.Min + d.Max) / 2
}
