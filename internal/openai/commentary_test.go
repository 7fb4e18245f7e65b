package openai

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketViewport/internal/viewport"
)

func TestWindowFacts(t *testing.T) {
	res := viewport.Result{
		Visible: viewport.Series{
			{Key: "2026-01-01", Values: map[string]float64{"a": 10, "b": math.NaN()}},
			{Key: "2026-01-02", Values: map[string]float64{"a": 7}},
			{Key: "2026-01-03", Values: map[string]float64{"a": 12.5}},
		},
	}
	got := WindowFacts(res, []viewport.SeriesDescriptor{{Key: "a", Label: "Alpha"}, {Key: "b", Label: "Beta"}})
	want := "Window 2026-01-01 .. 2026-01-03 (3 points)\n" +
		"- Alpha: first 10.00, last 12.50, min 7.00, max 12.50\n" +
		"- Beta: no data"
	assert.Equal(t, want, got)
}

func TestWindowFacts_Percentage(t *testing.T) {
	res := viewport.Result{
		Visible:   viewport.Series{{Key: "d", Values: map[string]float64{"a": -4}}},
		Formatter: viewport.Formatter{Percentage: true},
	}
	got := WindowFacts(res, []viewport.SeriesDescriptor{{Key: "a", Label: "A"}})
	assert.Contains(t, got, "% deviation")
	assert.Contains(t, got, "last -4.00%")
}

func TestWindowFacts_Empty(t *testing.T) {
	assert.Empty(t, WindowFacts(viewport.Result{}, nil))
}

func TestCommentator_Explain(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  - Alpha rose  "}}]}`)
	}))
	defer srv.Close()

	c := NewCommentator("test-key", option.WithBaseURL(srv.URL+"/v1/"), option.WithMaxRetries(0))
	res := viewport.Result{Visible: viewport.Series{{Key: "d1", Values: map[string]float64{"a": 1}}, {Key: "d2", Values: map[string]float64{"a": 2}}}}
	out, err := c.Explain(context.Background(), res, []viewport.SeriesDescriptor{{Key: "a", Label: "Alpha"}})
	require.NoError(t, err)
	assert.Equal(t, "- Alpha rose", out)
	assert.Contains(t, got, "Alpha: first 1.00, last 2.00")
}
