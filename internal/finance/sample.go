package finance

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"marketViewport/internal/viewport"
)

// SampleSource generates offline daily data for catalogue instruments.
type SampleSource struct {
	Rand *rand.Rand
	Now  func() time.Time

	mu sync.Mutex
}

func NewSampleSource(seed uint64) *SampleSource {
	return &SampleSource{
		Rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Now:  time.Now,
	}
}

func (s *SampleSource) Fetch(_ context.Context, selected []Instrument, tf Timeframe) (viewport.Series, error) {
	for _, in := range selected {
		if in.spread == 0 && in.base == 0 {
			return nil, fmt.Errorf("%s: %w", in.Label, ErrUnknownInstrument)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	days := tf.Days()
	start := s.Now().UTC().AddDate(0, 0, -days)
	out := make(viewport.Series, days)
	for i := 0; i < days; i++ {
		vals := make(map[string]float64, len(selected))
		for _, in := range selected {
			vals[in.Key] = in.base + s.Rand.Float64()*in.spread + float64(i)*in.drift
		}
		out[i] = viewport.Point{Key: start.AddDate(0, 0, i).Format("2006-01-02"), Values: vals}
	}
	return out, nil
}
