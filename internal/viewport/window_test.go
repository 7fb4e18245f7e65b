package viewport

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) Series {
	out := make(Series, n)
	for i := range out {
		out[i] = Point{Key: fmt.Sprintf("%03d", i), Values: map[string]float64{"v": float64(i)}}
	}
	return out
}

func TestWindow_FullZoomLatest(t *testing.T) {
	s := seq(100)
	start, size := WindowBounds(100, 100, 100)
	assert.Equal(t, 90, start)
	assert.Equal(t, 10, size)

	w := Window(s, 100, 100)
	require.Len(t, w, 10)
	assert.Equal(t, "090", w[0].Key)
	assert.Equal(t, "099", w[9].Key)
}

func TestWindow_NoZoomIsFullSeries(t *testing.T) {
	for _, pan := range []float64{0, 50, 100} {
		start, size := WindowBounds(250, 0, pan)
		assert.Equal(t, 0, start)
		assert.Equal(t, 250, size)
	}
}

func TestWindow_TenPercentFloor(t *testing.T) {
	_, size := WindowBounds(1000, 100, 0)
	assert.Equal(t, 100, size)
	_, size = WindowBounds(1000, 50, 0)
	assert.Equal(t, 500, size)
}

func TestWindow_ShortSeriesNeverExceedsTotal(t *testing.T) {
	start, size := WindowBounds(5, 80, 100)
	assert.Equal(t, 0, start)
	assert.Equal(t, 5, size)
	assert.Len(t, Window(seq(5), 80, 100), 5)
}

func TestWindow_Empty(t *testing.T) {
	start, size := WindowBounds(0, 40, 40)
	assert.Zero(t, start)
	assert.Zero(t, size)
	assert.Empty(t, Window(nil, 40, 40))
}

func TestWindow_OutOfRangeControlsClamped(t *testing.T) {
	start, size := WindowBounds(100, 250, -30)
	assert.Equal(t, 0, start)
	assert.Equal(t, 10, size)
}

func TestWindow_BoundsHoldForAllControls(t *testing.T) {
	for _, total := range []int{1, 9, 10, 11, 37, 100, 999} {
		for z := 0; z <= 100; z += 5 {
			for p := 0; p <= 100; p += 5 {
				start, size := WindowBounds(total, float64(z), float64(p))
				minWindow := max(10, total/10)
				assert.LessOrEqual(t, size, total)
				assert.GreaterOrEqual(t, size, min(minWindow, total))
				assert.GreaterOrEqual(t, start, 0)
				assert.LessOrEqual(t, start, total-size, "total=%d zoom=%d pan=%d", total, z, p)
			}
		}
	}
}

func TestWindow_ReturnsCopy(t *testing.T) {
	s := seq(20)
	w := Window(s, 0, 0)
	w[0] = Point{Key: "changed"}
	assert.Equal(t, "000", s[0].Key)
}
