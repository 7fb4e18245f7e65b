package openai

import (
	"context"
	"fmt"
	"strings"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"marketViewport/internal/viewport"
)

const commentaryModel = "gpt-4o-mini"

// Commentator writes a short market note about the visible chart window.
type Commentator struct {
	cli oa.Client
}

// NewCommentator builds a client for apiKey; opts can redirect it, e.g. to a
// test server.
func NewCommentator(apiKey string, opts ...option.RequestOption) *Commentator {
	client := oa.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &Commentator{cli: client}
}

func (c *Commentator) Explain(ctx context.Context, res viewport.Result, series []viewport.SeriesDescriptor) (string, error) {
	facts := WindowFacts(res, series)
	if facts == "" {
		return "Nothing is visible in the current window.", nil
	}
	resp, err := c.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: commentaryModel,
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage("You are a concise market analyst. You receive per-series statistics for the visible window of a chart. Compare the series in at most 5 bullets: direction, relative strength, range. No advice, no predictions."),
			oa.UserMessage(facts),
		},
		MaxTokens: oa.Int(400),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// WindowFacts lists first, last, min and max per series of the visible
// window, formatted the way the chart tooltips show them.
func WindowFacts(res viewport.Result, series []viewport.SeriesDescriptor) string {
	if len(res.Visible) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Window %s .. %s (%d points)", res.Visible[0].Key, res.Visible[len(res.Visible)-1].Key, len(res.Visible))
	if res.Formatter.Percentage {
		b.WriteString(", values are % deviation from each series midrange")
	}
	b.WriteString("\n")
	for _, d := range series {
		var first, last, lo, hi float64
		n := 0
		for _, p := range res.Visible {
			v, ok := p.Value(d.Key)
			if !ok {
				continue
			}
			if n == 0 {
				first, lo, hi = v, v, v
			}
			last = v
			lo = min(lo, v)
			hi = max(hi, v)
			n++
		}
		if n == 0 {
			fmt.Fprintf(&b, "- %s: no data\n", d.Label)
			continue
		}
		f := res.Formatter.Tooltip
		fmt.Fprintf(&b, "- %s: first %s, last %s, min %s, max %s\n", d.Label, f(first), f(last), f(lo), f(hi))
	}
	return strings.TrimRight(b.String(), "\n")
}
