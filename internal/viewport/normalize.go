package viewport

import "math"

// Midranges returns (min+max)/2 per key over the whole series. Keys without a
// single finite value are left out.
func Midranges(s Series, keys []string) map[string]float64 {
	out := make(map[string]float64, len(keys))
	for _, k := range keys {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, p := range s {
			v, ok := p.Value(k)
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
		if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
			continue
		}
		out[k] = (lo + hi) / 2
	}
	return out
}

// Normalize rescales each requested field to its percent deviation from the
// field's own midrange over the entire series. A field whose midrange is zero,
// or which has no finite values, passes through unchanged.
func Normalize(s Series, keys []string) Series {
	if len(s) == 0 || len(keys) == 0 {
		return s
	}
	mids := Midranges(s, keys)
	for k, mid := range mids {
		if mid == 0 {
			delete(mids, k)
		}
	}

	out := make(Series, len(s))
	for i, p := range s {
		vals := make(map[string]float64, len(p.Values))
		for k, v := range p.Values {
			vals[k] = v
		}
		for k, mid := range mids {
			if v, ok := p.Value(k); ok {
				vals[k] = ((v - mid) / mid) * 100
			}
		}
		out[i] = Point{Key: p.Key, Values: vals}
	}
	return out
}
