package chart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketViewport/internal/finance"
	"marketViewport/internal/render"
	"marketViewport/internal/viewport"
)

type countingSource struct {
	inner finance.Source
	calls int
	err   error
}

func (c *countingSource) Fetch(ctx context.Context, sel []finance.Instrument, tf finance.Timeframe) (viewport.Series, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.Fetch(ctx, sel, tf)
}

func newTestService() (*Service, *countingSource) {
	src := &countingSource{inner: finance.NewSampleSource(3)}
	return NewService(src, render.Options{Width: 600, Height: 300}, nil), src
}

func TestService_FrameReusesDataAndMemo(t *testing.T) {
	svc, src := newTestService()
	req := Request{Owner: "chat-1", Symbols: []string{"sp500", "gold"}, Timeframe: finance.Timeframe3M,
		State: viewport.State{XZoom: 50, XPan: 100}}

	f1, err := svc.Frame(context.Background(), req)
	require.NoError(t, err)
	f2, err := svc.Frame(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Len(t, f1.Full, 90)
	assert.Len(t, f1.Result.Visible, 45)
	assert.Equal(t, f1.Result, f2.Result)
	assert.Equal(t, 1, svc.Stats("chat-1").WindowHits)
	assert.Equal(t, "S&P 500", f1.Descriptors[0].Label)
}

func TestService_DataExpires(t *testing.T) {
	svc, src := newTestService()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	req := Request{Owner: "x", Symbols: []string{"oil"}, Timeframe: finance.Timeframe1M}

	_, err := svc.Frame(context.Background(), req)
	require.NoError(t, err)
	now = now.Add(dataTTL + time.Second)
	_, err = svc.Frame(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestService_Render(t *testing.T) {
	svc, _ := newTestService()
	req := Request{Owner: "chat-2", Symbols: []string{"nasdaq", "vix"}, Timeframe: finance.Timeframe1M, Normalized: true}
	img, f, err := svc.Render(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))
	assert.True(t, f.Result.Formatter.Percentage)

	again, _, err := svc.Render(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, img, again)
}

func TestService_Errors(t *testing.T) {
	svc, src := newTestService()
	_, err := svc.Frame(context.Background(), Request{Owner: "a"})
	assert.Error(t, err)

	src.err = errors.New("upstream down")
	_, err = svc.Frame(context.Background(), Request{Owner: "a", Symbols: []string{"dow"}, Timeframe: finance.Timeframe1M})
	assert.EqualError(t, err, "upstream down")
}

func TestTitleAndSubtitle(t *testing.T) {
	req := Request{Symbols: []string{"sp500", "gold"}, Timeframe: finance.Timeframe6M, Normalized: true}
	assert.Equal(t, "SP500, GOLD • 6M • normalized %", Title(req))

	f := Frame{
		Result: viewport.Result{Visible: viewport.Series{{Key: "2026-01-02"}, {Key: "2026-01-03"}}},
		Full:   make(viewport.Series, 10),
	}
	assert.Equal(t, "2026-01-02 → 2026-01-03 • 2 of 10 points", Subtitle(f))
	assert.Equal(t, "no data", Subtitle(Frame{}))
}

func TestService_EvictsStaleDataAndViews(t *testing.T) {
	svc, src := newTestService()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	for i, sym := range []string{"oil", "gold", "dow"} {
		req := Request{Owner: fmt.Sprintf("chat-%d", i), Symbols: []string{sym}, Timeframe: finance.Timeframe1M}
		_, err := svc.Frame(context.Background(), req)
		require.NoError(t, err)
	}
	data, views := svc.cacheSizes()
	assert.Equal(t, 3, data)
	assert.Equal(t, 3, views)

	now = now.Add(viewTTL + time.Minute)
	_, err := svc.Frame(context.Background(), Request{Owner: "late", Symbols: []string{"vix"}, Timeframe: finance.Timeframe1M})
	require.NoError(t, err)
	data, views = svc.cacheSizes()
	assert.Equal(t, 1, data)
	assert.Equal(t, 1, views)
	assert.Equal(t, 4, src.calls)
	assert.Equal(t, viewport.Stats{}, svc.Stats("chat-0"))
}

func TestService_ForgetAndWarm(t *testing.T) {
	svc, src := newTestService()
	req := Request{Owner: "chat-9", Symbols: []string{"gold"}, Timeframe: finance.Timeframe1M}

	n := svc.Warm(context.Background(), []Request{req, {Owner: "bad", Symbols: []string{"nvda"}, Timeframe: finance.Timeframe1M}})
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, svc.Stats("chat-9").WindowMisses)

	_, err := svc.Frame(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls, "warmed series is reused")
	assert.Equal(t, 1, svc.Stats("chat-9").WindowHits)

	svc.Forget("chat-9")
	assert.Equal(t, viewport.Stats{}, svc.Stats("chat-9"))
}

func TestService_LogScale(t *testing.T) {
	svc, _ := newTestService()
	req := Request{Owner: "chat-3", Symbols: []string{"bitcoin"}, Timeframe: finance.Timeframe1M, LogScale: true}
	f, err := svc.Frame(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, f.Result.Formatter.Log)
	v, ok := f.Result.Visible[0].Value("bitcoin")
	require.True(t, ok)
	assert.Less(t, v, 6.0)
	assert.Equal(t, "BITCOIN • 1M • log scale", Title(req))

	req.Normalized = true
	assert.Equal(t, viewport.ModePercent, req.Mode())
}
