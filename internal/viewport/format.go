package viewport

import (
	"math"
	"strconv"
)

// Precision selects how many decimals a percentage renders with.
type Precision int

const (
	AxisTick Precision = iota // 0 decimals
	Tooltip                   // 2 decimals
)

// FormatValue renders v for axis ticks and tooltips. In percentage mode the
// value gets a % suffix; otherwise it is printed with 2 decimals.
func FormatValue(v float64, percentage bool, p Precision) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	if !percentage {
		return trimNegZero(strconv.FormatFloat(v, 'f', 2, 64))
	}
	digits := 0
	if p == Tooltip {
		digits = 2
	}
	return trimNegZero(strconv.FormatFloat(v, 'f', digits, 64)) + "%"
}

// trimNegZero turns "-0", "-0.00" into their unsigned form.
func trimNegZero(s string) string {
	if len(s) < 2 || s[0] != '-' {
		return s
	}
	for _, c := range s[1:] {
		if c != '0' && c != '.' {
			return s
		}
	}
	return s[1:]
}

// Formatter binds the display mode for a renderer. With Log set, values are
// log10 of the price and render as 10^v.
type Formatter struct {
	Percentage bool
	Log        bool
}

func (f Formatter) Tick(v float64) string    { return f.format(v, AxisTick) }
func (f Formatter) Tooltip(v float64) string { return f.format(v, Tooltip) }

func (f Formatter) format(v float64, p Precision) string {
	if f.Log && !f.Percentage {
		return FormatValue(math.Pow(10, v), false, p)
	}
	return FormatValue(v, f.Percentage, p)
}
