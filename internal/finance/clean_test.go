package finance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestCleanBars(t *testing.T) {
	raw := []*float64{ptr(10), nil, ptr(-1), ptr(12), ptr(math.Inf(1)), ptr(math.NaN())}
	got := cleanBars([]int64{1, 2, 3, 4, 5, 6}, raw)
	assert.Equal(t, []bar{{1, 10}, {4, 12}}, got)
}

func TestCleanBars_MismatchedLengths(t *testing.T) {
	got := cleanBars([]int64{1, 2, 3}, []*float64{ptr(5), ptr(6)})
	assert.Equal(t, []bar{{1, 5}, {2, 6}}, got)
	got = cleanBars([]int64{1}, []*float64{ptr(5), ptr(6)})
	assert.Equal(t, []bar{{1, 5}}, got)
}

func TestDropOutliers(t *testing.T) {
	bars := make([]bar, 25)
	for i := range bars {
		bars[i] = bar{ts: int64(i), close: 100 + float64(i%5)}
	}
	bars[12].close = 5000
	got := dropOutliers(bars, 1.5, 20)
	assert.Len(t, got, 24)
	for _, b := range got {
		assert.NotEqual(t, int64(12), b.ts)
	}
	assert.Equal(t, 5000.0, bars[12].close, "input must not be modified")
}

func TestDropOutliers_ShortOrFlatUntouched(t *testing.T) {
	short := []bar{{1, 1}, {2, 1000}, {3, 1}}
	assert.Equal(t, short, dropOutliers(short, 1.5, 20))

	flat := make([]bar, 30)
	for i := range flat {
		flat[i] = bar{ts: int64(i), close: 7}
	}
	assert.Equal(t, flat, dropOutliers(flat, 1.5, 20))
}

func TestCloses(t *testing.T) {
	ts, cl := closes([]int64{10, 20, 30}, []*float64{ptr(1.5), nil, ptr(2.5)})
	assert.Equal(t, []int64{10, 30}, ts)
	assert.Equal(t, []float64{1.5, 2.5}, cl)
}

func TestQuantile(t *testing.T) {
	s := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 1.0, quantile(s, 0))
	assert.Equal(t, 3.0, quantile(s, 0.5))
	assert.Equal(t, 5.0, quantile(s, 1))
	assert.Equal(t, 2.0, quantile(s, 0.25))
	assert.InDelta(t, 1.4, quantile(s, 0.1), 1e-12)
	assert.Zero(t, quantile(nil, 0.5))
}
