package finance

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeColumns_UnionKeepsGaps(t *testing.T) {
	day := int64(86400)
	base := int64(1700000000)
	s := mergeColumns([]column{
		{key: "a", ts: []int64{base, base + day, base + 2*day}, cl: []float64{1, 2, 3}},
		{key: "b", ts: []int64{base + day, base + 2*day, base + 3*day}, cl: []float64{10, 20, 30}},
	}, "1d")
	require.Len(t, s, 4)

	_, ok := s[0].Value("b")
	assert.False(t, ok)
	v, ok := s[1].Value("b")
	assert.True(t, ok)
	assert.Equal(t, 10.0, v)
	_, ok = s[3].Value("a")
	assert.False(t, ok)
	assert.Less(t, s[0].Key, s[3].Key)
}

func TestMergeColumns_MixedSessionsShareADay(t *testing.T) {
	day := int64(86400)
	// 2023-11-21 09:30 ET (index open) and 00:00 ET (futures)
	indexOpen := int64(1700577000)
	futures := int64(1700542800)
	s := mergeColumns([]column{
		{key: "sp500", ts: []int64{indexOpen, indexOpen + day}, cl: []float64{4500, 4510}},
		{key: "gold", ts: []int64{futures, futures + day}, cl: []float64{1990, 1995}},
	}, "1d")
	require.Len(t, s, 2)
	assert.Equal(t, "2023-11-21", s[0].Key)
	assert.Equal(t, "2023-11-22", s[1].Key)
	for _, p := range s {
		_, ok := p.Value("sp500")
		assert.True(t, ok, p.Key)
		_, ok = p.Value("gold")
		assert.True(t, ok, p.Key)
	}
	v, _ := s[1].Value("gold")
	assert.Equal(t, 1995.0, v)
}

func TestYahooSource_Fetch(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, chartBody)
	})
	src := &YahooSource{Client: c, Pause: time.Millisecond}
	aapl, _ := LookupInstrument("aapl")
	msft, _ := LookupInstrument("MSFT")

	s, err := src.Fetch(context.Background(), []Instrument{aapl, msft}, Timeframe1M)
	require.NoError(t, err)
	require.Len(t, s, 2)
	v, ok := s[0].Value("msft")
	assert.True(t, ok)
	assert.Equal(t, 101.5, v)
}

func TestSampleSource(t *testing.T) {
	src := NewSampleSource(7)
	src.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	sp, _ := LookupInstrument("sp500")
	oil, _ := LookupInstrument("oil")

	s, err := src.Fetch(context.Background(), []Instrument{sp, oil}, Timeframe3M)
	require.NoError(t, err)
	require.Len(t, s, 90)
	assert.Equal(t, "2025-12-01", s[0].Key)
	for i, p := range s {
		v, ok := p.Value("oil")
		require.True(t, ok)
		assert.GreaterOrEqual(t, v, 70+float64(i)*0.1)
		assert.Less(t, v, 80+float64(i)*0.1)
	}
}

func TestSampleSource_UnknownInstrument(t *testing.T) {
	_, err := NewSampleSource(1).Fetch(context.Background(), []Instrument{ResolveInstrument("ZZZZ")}, Timeframe1M)
	assert.ErrorIs(t, err, ErrUnknownInstrument)
}

func TestSourceFor(t *testing.T) {
	src, err := SourceFor("sample", 1, nil)
	require.NoError(t, err)
	assert.IsType(t, &SampleSource{}, src)

	src, err = SourceFor("", 1, nil)
	require.NoError(t, err)
	assert.IsType(t, &YahooSource{}, src)

	_, err = SourceFor("bloomberg", 1, nil)
	assert.Error(t, err)
}
