package finance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

var defaultHosts = []string{"https://query1.finance.yahoo.com", "https://query2.finance.yahoo.com"}

var defaultBackoffs = []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second}

// YahooClient fetches close prices from the Yahoo chart API, falling back to
// the spark endpoint when every chart attempt fails.
type YahooClient struct {
	HTTP     *http.Client
	Hosts    []string
	Backoffs []time.Duration
	Log      *slog.Logger
}

func NewYahooClient(log *slog.Logger) *YahooClient {
	if log == nil {
		log = slog.Default()
	}
	return &YahooClient{
		HTTP:     &http.Client{Timeout: 20 * time.Second},
		Hosts:    defaultHosts,
		Backoffs: defaultBackoffs,
		Log:      log,
	}
}

// FetchSeries fetches timestamps and close prices for a single symbol using the given interval and range.
func (c *YahooClient) FetchSeries(ctx context.Context, symbol, interval, rangeParam string) ([]int64, []float64, error) {
	var yc yahooChartResp
	lastErr := c.retry(ctx, func(host string) error {
		url := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s&includePrePost=true&events=div,splits", host, symbol, rangeParam, interval)
		body, err := c.get(ctx, url, symbol)
		if err != nil {
			return err
		}
		if err := sonic.Unmarshal(body, &yc); err != nil {
			return fmt.Errorf("failed to parse yahoo json: %v; body: %s", err, preview(body))
		}
		return nil
	})
	if lastErr == nil {
		if len(yc.Chart.Result) == 0 || len(yc.Chart.Result[0].Indicators.Quote) == 0 {
			return nil, nil, ErrNoData
		}
		r := yc.Chart.Result[0]
		ts, cl := closes(r.Timestamp, r.Indicators.Quote[0].Close)
		return ts, cl, nil
	}
	if ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}
	c.Log.Warn("yahoo: chart endpoint failed, trying spark", "symbol", symbol, "err", lastErr)

	var ts []int64
	var cl []float64
	sparkErr := c.retry(ctx, func(host string) error {
		url := fmt.Sprintf("%s/v7/finance/spark?symbols=%s&range=%s&interval=%s", host, strings.ToUpper(symbol), rangeParam, interval)
		body, err := c.get(ctx, url, symbol)
		if err != nil {
			return err
		}
		var sp yahooSparkResp
		if err := sonic.Unmarshal(body, &sp); err != nil {
			return fmt.Errorf("failed to parse yahoo spark json: %v", err)
		}
		if len(sp.Spark.Result) == 0 || len(sp.Spark.Result[0].Response) == 0 {
			return fmt.Errorf("yahoo spark: %w", ErrNoData)
		}
		r := sp.Spark.Result[0].Response[0]
		ts, cl = closes(r.Timestamp, r.Close)
		return nil
	})
	if sparkErr != nil {
		return nil, nil, fmt.Errorf("%s: %w", symbol, sparkErr)
	}
	return ts, cl, nil
}

// retry runs fn against every host, sleeping between rounds, until one call succeeds.
func (c *YahooClient) retry(ctx context.Context, fn func(host string) error) error {
	var lastErr error
	for attempt := 0; attempt < len(c.Backoffs)+1; attempt++ {
		for _, host := range c.Hosts {
			if lastErr = fn(host); lastErr == nil {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		if attempt < len(c.Backoffs) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.Backoffs[attempt]):
			}
		}
	}
	if lastErr == nil {
		lastErr = errors.New("yahoo: no hosts configured")
	}
	return lastErr
}

func (c *YahooClient) get(ctx context.Context, url, symbol string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", fmt.Sprintf("https://finance.yahoo.com/quote/%s/chart", strings.ToUpper(symbol)))
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("failed to read yahoo response: %w", readErr)
	}
	if resp.StatusCode == http.StatusTooManyRequests || strings.HasPrefix(string(body), "Edge: Too Many Requests") {
		return nil, fmt.Errorf("yahoo %s returned 429: Edge: Too Many Requests", req.URL.Host)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo %s returned %d: %s", req.URL.Host, resp.StatusCode, preview(body))
	}
	if strings.HasPrefix(string(body), "<") || strings.HasPrefix(string(body), "Edge:") {
		return nil, fmt.Errorf("yahoo returned non-json body: %s", preview(body))
	}
	return body, nil
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
