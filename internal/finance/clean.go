package finance

import (
	"math"
	"slices"
)

const (
	outlierK         = 1.5
	outlierMinPoints = 20
)

type bar struct {
	ts    int64
	close float64
}

// cleanBars pairs timestamps with Yahoo's nullable closes. Null, non-finite
// and negative closes are dropped; extra entries on either side are ignored.
func cleanBars(ts []int64, closes []*float64) []bar {
	n := min(len(ts), len(closes))
	out := make([]bar, 0, n)
	for i := 0; i < n; i++ {
		c := closes[i]
		if c == nil || math.IsNaN(*c) || math.IsInf(*c, 0) || *c < 0 {
			continue
		}
		out = append(out, bar{ts: ts[i], close: *c})
	}
	return out
}

// dropOutliers applies the interquartile range fence [Q1-k*IQR, Q3+k*IQR].
// Series shorter than minPoints, flat series, and fences that would discard
// more than half of minPoints come back untouched.
func dropOutliers(bars []bar, k float64, minPoints int) []bar {
	if len(bars) < minPoints {
		return bars
	}
	sorted := make([]float64, len(bars))
	for i, b := range bars {
		sorted[i] = b.close
	}
	slices.Sort(sorted)
	q1, q3 := quantile(sorted, 0.25), quantile(sorted, 0.75)
	iqr := q3 - q1
	if iqr <= 0 {
		return bars
	}
	lo, hi := q1-k*iqr, q3+k*iqr
	kept := slices.DeleteFunc(slices.Clone(bars), func(b bar) bool {
		return b.close < lo || b.close > hi
	})
	if len(kept) < minPoints/2 {
		return bars
	}
	return kept
}

func unzipBars(bars []bar) ([]int64, []float64) {
	ts := make([]int64, len(bars))
	cl := make([]float64, len(bars))
	for i, b := range bars {
		ts[i], cl[i] = b.ts, b.close
	}
	return ts, cl
}

// closes runs the full cleaning pipeline used by every Yahoo endpoint.
func closes(ts []int64, raw []*float64) ([]int64, []float64) {
	return unzipBars(dropOutliers(cleanBars(ts, raw), outlierK, outlierMinPoints))
}

// quantile interpolates linearly between the two nearest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case q <= 0:
		return sorted[0]
	case q >= 1:
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	i := int(pos)
	if i+1 >= len(sorted) {
		return sorted[i]
	}
	w := pos - float64(i)
	return sorted[i]*(1-w) + sorted[i+1]*w
}
