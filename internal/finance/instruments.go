package finance

import (
	"fmt"
	"strings"

	"marketViewport/internal/viewport"
)

// Instrument is one selectable market series.
type Instrument struct {
	Key    string
	Label  string
	Symbol string // Yahoo ticker

	// sample generator: base + rand*spread + day*drift
	base, spread, drift float64
}

// Instruments is the dashboard catalogue, in display order.
var Instruments = []Instrument{
	{Key: "sp500", Label: "S&P 500", Symbol: "^GSPC", base: 4500, spread: 200, drift: 2},
	{Key: "nasdaq", Label: "NASDAQ", Symbol: "^IXIC", base: 14000, spread: 500, drift: 5},
	{Key: "dow", Label: "DOW", Symbol: "^DJI", base: 34000, spread: 1000, drift: 10},
	{Key: "gold", Label: "Gold", Symbol: "GC=F", base: 1900, spread: 100, drift: 1},
	{Key: "oil", Label: "Oil (WTI)", Symbol: "CL=F", base: 70, spread: 10, drift: 0.1},
	{Key: "bitcoin", Label: "Bitcoin", Symbol: "BTC-USD", base: 30000, spread: 10000, drift: 100},
	{Key: "vix", Label: "VIX", Symbol: "^VIX", base: 15, spread: 10, drift: 0.05},
	{Key: "aapl", Label: "Apple", Symbol: "AAPL", base: 150, spread: 20, drift: 0.2},
	{Key: "msft", Label: "Microsoft", Symbol: "MSFT", base: 300, spread: 30, drift: 0.3},
	{Key: "googl", Label: "Google", Symbol: "GOOGL", base: 120, spread: 15, drift: 0.15},
	{Key: "tsla", Label: "Tesla", Symbol: "TSLA", base: 200, spread: 50, drift: 0.5},
}

// Palette colours are assigned by selection order, cycling.
var Palette = []string{"#3498db", "#e74c3c", "#27ae60", "#f39c12", "#9b59b6", "#e67e22", "#1abc9c", "#34495e", "#2c3e50", "#16a085", "#8e44ad"}

// LookupInstrument finds an instrument by key or Yahoo symbol, case-insensitive.
func LookupInstrument(name string) (Instrument, bool) {
	n := strings.TrimSpace(name)
	for _, in := range Instruments {
		if strings.EqualFold(in.Key, n) || strings.EqualFold(in.Symbol, n) {
			return in, true
		}
	}
	return Instrument{}, false
}

// ResolveInstrument returns the catalogue entry for name, or an ad-hoc entry
// keyed by the lower-cased ticker when it is not in the catalogue.
func ResolveInstrument(name string) Instrument {
	if in, ok := LookupInstrument(name); ok {
		return in
	}
	sym := strings.ToUpper(strings.TrimSpace(name))
	return Instrument{Key: strings.ToLower(sym), Label: sym, Symbol: sym}
}

// UniqueKeys resolves names to instrument keys and drops repeats, so "sp500"
// and "^GSPC" collapse into one entry. Order of first appearance is kept.
func UniqueKeys(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		k := ResolveInstrument(n).Key
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Descriptors builds chart series descriptors for the selected instruments.
func Descriptors(selected []Instrument) []viewport.SeriesDescriptor {
	out := make([]viewport.SeriesDescriptor, 0, len(selected))
	for i, in := range selected {
		out = append(out, viewport.SeriesDescriptor{
			Key:   in.Key,
			Label: in.Label,
			Color: Palette[i%len(Palette)],
		})
	}
	return out
}

// Timeframe is one of the dashboard lookback choices.
type Timeframe string

const (
	Timeframe1M Timeframe = "1M"
	Timeframe3M Timeframe = "3M"
	Timeframe6M Timeframe = "6M"
	Timeframe1Y Timeframe = "1Y"
)

func ParseTimeframe(s string) (Timeframe, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "1M", "1MO", "30D":
		return Timeframe1M, nil
	case "3M", "3MO", "90D":
		return Timeframe3M, nil
	case "6M", "6MO", "180D":
		return Timeframe6M, nil
	case "1Y", "12M", "365D":
		return Timeframe1Y, nil
	}
	return "", fmt.Errorf("unknown timeframe %q (use 1M, 3M, 6M or 1Y)", s)
}

// Days is the number of daily points the timeframe covers.
func (t Timeframe) Days() int {
	switch t {
	case Timeframe3M:
		return 90
	case Timeframe6M:
		return 180
	case Timeframe1Y:
		return 365
	default:
		return 30
	}
}

// YahooRange maps the timeframe to a Yahoo range parameter.
func (t Timeframe) YahooRange() string {
	return map[Timeframe]string{Timeframe1M: "1mo", Timeframe3M: "3mo", Timeframe6M: "6mo", Timeframe1Y: "1y"}[t]
}

// Change is the percent change of the last point over the one before it.
func Change(s viewport.Series, key string) (float64, bool) {
	if len(s) < 2 {
		return 0, false
	}
	cur, ok1 := s[len(s)-1].Value(key)
	prev, ok2 := s[len(s)-2].Value(key)
	if !ok1 || !ok2 || prev == 0 {
		return 0, false
	}
	return (cur - prev) / prev * 100, true
}
