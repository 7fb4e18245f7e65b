package finance

import "errors"

var (
	ErrNoData            = errors.New("no data")
	ErrNotEnoughPoints   = errors.New("not enough data points")
	ErrUnknownInstrument = errors.New("unknown instrument")
)

// yahooChartResp mirrors Yahoo v8 chart response (trimmed to needed fields).
// Close entries are null for bars without a trade.
type yahooChartResp struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GmtOffset int    `json:"gmtoffset"`
				Timezone  string `json:"timezone"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// yahooSparkResp mirrors Yahoo v7 spark fallback (trimmed)
type yahooSparkResp struct {
	Spark struct {
		Result []struct {
			Symbol   string `json:"symbol"`
			Response []struct {
				Timestamp []int64    `json:"timestamp"`
				Close     []*float64 `json:"close"`
			} `json:"response"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"spark"`
}
