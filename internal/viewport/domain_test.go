package viewport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var one = []SeriesDescriptor{{Key: "v", Label: "V", Color: "#3498db"}}

func TestComputeDomain_BaseFit(t *testing.T) {
	d := ComputeDomain(pts("v", 10, 30, 20), one, 0, 0)
	require.False(t, d.Auto)
	assert.InDelta(t, 10, d.Min, 1e-9)
	assert.InDelta(t, 30, d.Max, 1e-9)
}

func TestComputeDomain_UnionAcrossSeries(t *testing.T) {
	s := Series{
		{Key: "1", Values: map[string]float64{"a": 1, "b": 50}},
		{Key: "2", Values: map[string]float64{"a": 5, "b": 60}},
	}
	d := ComputeDomain(s, []SeriesDescriptor{{Key: "a"}, {Key: "b"}}, 0, 0)
	assert.InDelta(t, 1, d.Min, 1e-9)
	assert.InDelta(t, 60, d.Max, 1e-9)
}

func TestComputeDomain_ZoomOutFiveTimes(t *testing.T) {
	d := ComputeDomain(pts("v", 10, 30), one, 100, 0)
	assert.InDelta(t, 20-50, d.Min, 1e-9)
	assert.InDelta(t, 20+50, d.Max, 1e-9)
}

func TestComputeDomain_PanUsesBaseHalf(t *testing.T) {
	up := ComputeDomain(pts("v", 10, 30), one, 100, 100)
	assert.InDelta(t, 30, up.Center(), 1e-9)
	down := ComputeDomain(pts("v", 10, 30), one, 0, -100)
	assert.InDelta(t, 10, down.Center(), 1e-9)
	assert.InDelta(t, 20, down.Width(), 1e-9)
}

func TestComputeDomain_WidthMonotonicInZoom(t *testing.T) {
	s := pts("v", 3, 8, -2, 11)
	prev := 0.0
	for z := 0; z <= 100; z++ {
		d := ComputeDomain(s, one, float64(z), 40)
		assert.GreaterOrEqual(t, d.Width(), prev)
		prev = d.Width()
	}
}

func TestComputeDomain_PanBounded(t *testing.T) {
	s := pts("v", 4, 12)
	base := ComputeDomain(s, one, 0, 0)
	baseHalf := base.Width() / 2
	for p := -100; p <= 100; p += 10 {
		for _, z := range []float64{0, 50, 100} {
			d := ComputeDomain(s, one, z, float64(p))
			assert.LessOrEqual(t, math.Abs(d.Center()-base.Center()), baseHalf+1e-9)
		}
	}
}

func TestComputeDomain_AutoWhenNothingFinite(t *testing.T) {
	assert.True(t, ComputeDomain(nil, one, 0, 0).Auto)
	assert.True(t, ComputeDomain(pts("v", 1, 2), nil, 0, 0).Auto)
	s := Series{
		{Key: "1", Values: map[string]float64{"v": math.NaN()}},
		{Key: "2", Values: map[string]float64{"other": 4}},
	}
	assert.True(t, ComputeDomain(s, one, 0, 0).Auto)
}

func TestComputeDomain_SinglePointUsesEpsilonFloor(t *testing.T) {
	d := ComputeDomain(pts("v", 42), one, 0, 0)
	require.False(t, d.Auto)
	assert.InDelta(t, 42-Epsilon, d.Min, 1e-12)
	assert.InDelta(t, 42+Epsilon, d.Max, 1e-12)
	assert.Greater(t, d.Width(), 0.0)
}

func TestComputeDomain_IgnoresMissing(t *testing.T) {
	s := Series{
		{Key: "1", Values: map[string]float64{"v": 10}},
		{Key: "2", Values: map[string]float64{}},
		{Key: "3", Values: map[string]float64{"v": math.Inf(-1)}},
		{Key: "4", Values: map[string]float64{"v": 20}},
	}
	d := ComputeDomain(s, one, 0, 0)
	assert.InDelta(t, 10, d.Min, 1e-9)
	assert.InDelta(t, 20, d.Max, 1e-9)
}
