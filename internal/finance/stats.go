package finance

import (
	"math"

	"marketViewport/internal/viewport"
)

const tradingDaysPerYear = 252.0

// WindowStats summarises one series over a slice of points.
type WindowStats struct {
	First, Last float64
	Return      float64 // percent, first to last
	Volatility  float64 // annualised percent; 0 with fewer than two returns
	MaxDrawdown float64 // percent, largest peak-to-trough decline
	Points      int     // finite values seen
}

// Stats computes WindowStats for key over s, skipping missing values.
// ok is false when fewer than two finite values exist or the first is zero.
func Stats(s viewport.Series, key string) (WindowStats, bool) {
	vals := make([]float64, 0, len(s))
	for _, p := range s {
		if v, ok := p.Value(key); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) < 2 || vals[0] == 0 {
		return WindowStats{}, false
	}

	first, last := vals[0], vals[len(vals)-1]
	st := WindowStats{
		First:       first,
		Last:        last,
		Return:      (last - first) / first * 100,
		MaxDrawdown: maxDrawdown(vals) * 100,
		Points:      len(vals),
	}

	rets := make([]float64, 0, len(vals)-1)
	for i := 1; i < len(vals); i++ {
		if vals[i-1] != 0 {
			rets = append(rets, (vals[i]-vals[i-1])/vals[i-1])
		}
	}
	if len(rets) >= 2 {
		mean := 0.0
		for _, r := range rets {
			mean += r
		}
		mean /= float64(len(rets))
		variance := 0.0
		for _, r := range rets {
			d := r - mean
			variance += d * d
		}
		// sample variance, N-1
		variance /= float64(len(rets) - 1)
		st.Volatility = math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear) * 100
	}
	return st, true
}

// maxDrawdown returns the largest peak-to-trough decline as a fraction.
// Leading non-positive values are skipped when choosing the first peak.
func maxDrawdown(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	peak := 0.0
	for _, v := range values {
		if v > 0 {
			peak = v
			break
		}
	}
	if peak <= 0 {
		return 0
	}
	dd := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if v >= 0 {
			if d := (peak - v) / peak; d > dd {
				dd = d
			}
		}
	}
	return dd
}
