package viewport

import "math"

// Epsilon floors the base half-range so a flat slice still yields a non-zero
// domain.
const Epsilon = 1e-9

const maxZoomOut = 4 // yZoom=100 widens the base range 5x

// ComputeDomain returns one Y range covering every descriptor's values in the
// slice. It returns AutoDomain when no finite value is found.
func ComputeDomain(slice Series, series []SeriesDescriptor, yZoom, yPan float64) Domain {
	if len(slice) == 0 || len(series) == 0 {
		return AutoDomain()
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, d := range series {
		for _, p := range slice {
			v, ok := p.Value(d.Key)
			if !ok {
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return AutoDomain()
	}

	yZoom = clamp(yZoom, 0, 100)
	yPan = clamp(yPan, -100, 100)

	baseMid := (lo + hi) / 2
	baseHalf := math.Max(Epsilon, (hi-lo)/2)
	half := baseHalf * (1 + yZoom/100*maxZoomOut)
	// pan is a fraction of the base half-range so its step does not depend on zoom
	mid := baseMid + yPan/100*baseHalf

	d := Domain{Min: mid - half, Max: mid + half}
	if math.IsNaN(d.Min) || math.IsInf(d.Min, 0) || math.IsNaN(d.Max) || math.IsInf(d.Max, 0) {
		return AutoDomain()
	}
	return d
}
