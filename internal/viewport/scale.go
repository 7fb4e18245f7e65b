package viewport

import "math"

// logFloor stands in for non-positive values on a log axis.
const logFloor = -6 // log10(1e-6)

// Mode selects the transform applied before windowing.
type Mode int

const (
	ModeRaw     Mode = iota
	ModePercent      // percent deviation from the midrange
	ModeLog          // log10 of the value
)

// ModeFor maps the two chart toggles to a mode. Percent wins when both are set.
func ModeFor(normalize, logScale bool) Mode {
	switch {
	case normalize:
		return ModePercent
	case logScale:
		return ModeLog
	}
	return ModeRaw
}

// LogScale replaces each finite value of the requested fields with its
// base-10 logarithm. Zero and negative values map to log10(1e-6). Missing
// values stay missing and other fields pass through.
func LogScale(s Series, keys []string) Series {
	if len(s) == 0 || len(keys) == 0 {
		return s
	}
	out := make(Series, len(s))
	for i, p := range s {
		vals := make(map[string]float64, len(p.Values))
		for k, v := range p.Values {
			vals[k] = v
		}
		for _, k := range keys {
			v, ok := p.Value(k)
			if !ok {
				continue
			}
			if v > 0 {
				vals[k] = math.Log10(v)
			} else {
				vals[k] = logFloor
			}
		}
		out[i] = Point{Key: p.Key, Values: vals}
	}
	return out
}

// transform applies the pre-window stage of mode.
func transform(s Series, keys []string, mode Mode) Series {
	switch mode {
	case ModePercent:
		return Normalize(s, keys)
	case ModeLog:
		return LogScale(s, keys)
	}
	return s
}
