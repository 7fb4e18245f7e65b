package finance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"marketViewport/internal/viewport"
)

// Source supplies a multi-instrument series for a timeframe.
type Source interface {
	Fetch(ctx context.Context, selected []Instrument, tf Timeframe) (viewport.Series, error)
}

// SourceFor picks a data source by name: "yahoo" or "sample".
func SourceFor(name string, seed uint64, log *slog.Logger) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "yahoo":
		return NewYahooSource(NewYahooClient(log)), nil
	case "sample":
		return NewSampleSource(seed), nil
	}
	return nil, fmt.Errorf("unknown data source %q (use yahoo or sample)", name)
}

// YahooSource merges daily Yahoo closes of several instruments into one series.
type YahooSource struct {
	Client *YahooClient
	Pause  time.Duration
}

func NewYahooSource(c *YahooClient) *YahooSource {
	return &YahooSource{Client: c, Pause: 120 * time.Millisecond}
}

func (y *YahooSource) Fetch(ctx context.Context, selected []Instrument, tf Timeframe) (viewport.Series, error) {
	cols := make([]column, 0, len(selected))
	for i, in := range selected {
		if i > 0 && y.Pause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(y.Pause):
			}
		}
		ts, cl, err := y.Client.FetchSeries(ctx, in.Symbol, "1d", tf.YahooRange())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.Symbol, err)
		}
		cols = append(cols, column{key: in.Key, ts: ts, cl: cl})
	}
	s := mergeColumns(cols, "1d")
	if len(s) < 2 {
		return nil, ErrNotEnoughPoints
	}
	return s, nil
}

type column struct {
	key string
	ts  []int64
	cl  []float64
}

// mergeColumns lays several (timestamp, close) columns onto one timeline of
// bar labels. Bars from different sessions of the same day (index bars open
// at 09:30 ET, futures and crypto at midnight) share a label and so share a
// point. A point lacks a field where that column has no bar for the bucket;
// within one column the later bar of a bucket wins.
func mergeColumns(cols []column, interval string) viewport.Series {
	type bucket struct {
		first int64
		vals  map[string]float64
	}
	byLabel := map[string]*bucket{}
	for _, c := range cols {
		for j, t := range c.ts {
			if j >= len(c.cl) {
				break
			}
			label := pointLabel(t, interval)
			b, ok := byLabel[label]
			if !ok {
				b = &bucket{first: t, vals: map[string]float64{}}
				byLabel[label] = b
			}
			b.first = min(b.first, t)
			b.vals[c.key] = c.cl[j]
		}
	}
	labels := make([]string, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		bi, bj := byLabel[labels[i]], byLabel[labels[j]]
		if bi.first != bj.first {
			return bi.first < bj.first
		}
		return labels[i] < labels[j]
	})

	out := make(viewport.Series, 0, len(labels))
	for _, l := range labels {
		out = append(out, viewport.Point{Key: l, Values: byLabel[l].vals})
	}
	return out
}
