package render

import (
	"errors"
	"strings"
	"sync"

	"github.com/vicanso/go-charts/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"marketViewport/internal/viewport"
)

var ErrNothingVisible = errors.New("nothing to draw in the visible window")

// Options controls the PNG surface.
type Options struct {
	Width    int
	Height   int
	Title    string
	Subtitle string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 900
	}
	if o.Height <= 0 {
		o.Height = 450
	}
	return o
}

// Chart draws the visible slice of res as one overlaid line chart. Every
// series shares the left Y axis; an auto domain lets go-charts fit the axis.
func Chart(res viewport.Result, series []viewport.SeriesDescriptor, opt Options) ([]byte, error) {
	if len(res.Visible) == 0 || len(series) == 0 {
		return nil, ErrNothingVisible
	}
	opt = opt.withDefaults()

	xLabels := make([]string, len(res.Visible))
	for i, p := range res.Visible {
		xLabels[i] = p.Key
	}
	values := make([][]float64, len(series))
	for i, d := range series {
		col := make([]float64, len(res.Visible))
		for j, p := range res.Visible {
			if v, ok := p.Value(d.Key); ok {
				col[j] = v
			} else {
				col[j] = charts.GetNullValue()
			}
		}
		values[i] = col
	}

	names := LegendLabels(res, series)
	seriesList := charts.NewSeriesListDataFromValues(values, charts.ChartTypeLine)
	for i := range seriesList {
		seriesList[i].Name = names[i]
		seriesList[i].AxisIndex = 0
	}

	yAxis := charts.YAxisOption{DivideCount: 5}
	if !res.Domain.Auto {
		yMin, yMax := res.Domain.Min, res.Domain.Max
		yAxis.Min = &yMin
		yAxis.Max = &yMax
	}
	switch {
	case res.Formatter.Percentage:
		yAxis.Formatter = "{value}%"
	case res.Formatter.Log:
		yAxis.Formatter = "10^{value}"
	}

	split := len(xLabels)
	if split > 10 {
		split = 10
	}
	painter, err := charts.Render(charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc(opt.Title, opt.Subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: xLabels, BoundaryGap: charts.FalseFlag(), SplitNumber: split}),
		charts.YAxisOptionFunc(yAxis),
		charts.LegendOptionFunc(charts.LegendOption{Data: names}),
		charts.ThemeOptionFunc(themeFor(series)),
		charts.WidthOptionFunc(opt.Width),
		charts.HeightOptionFunc(opt.Height),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}

// LegendLabels pairs each series label with its last visible value.
func LegendLabels(res viewport.Result, series []viewport.SeriesDescriptor) []string {
	out := make([]string, len(series))
	for i, d := range series {
		label := d.Label
		if label == "" {
			label = d.Key
		}
		if v, ok := lastValue(res.Visible, d.Key); ok {
			label += " " + res.Formatter.Tooltip(v)
		}
		out[i] = label
	}
	return out
}

func lastValue(s viewport.Series, key string) (float64, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if v, ok := s[i].Value(key); ok {
			return v, true
		}
	}
	return 0, false
}

var (
	themesMu sync.Mutex
	themes   = map[string]bool{}
)

// themeFor registers (once) a light theme whose series colours follow the
// descriptors, and returns its name.
func themeFor(series []viewport.SeriesDescriptor) string {
	colors := make([]string, len(series))
	for i, d := range series {
		colors[i] = strings.ToLower(strings.TrimPrefix(d.Color, "#"))
	}
	name := "viewport-" + strings.Join(colors, "-")

	themesMu.Lock()
	defer themesMu.Unlock()
	if themes[name] {
		return name
	}
	seriesColors := make([]charts.Color, 0, len(colors))
	for _, c := range colors {
		if len(c) != 6 && len(c) != 3 {
			c = "34495e"
		}
		seriesColors = append(seriesColors, drawing.ColorFromHex(c))
	}
	charts.AddTheme(name, charts.ThemeOption{
		IsDarkMode:         false,
		AxisStrokeColor:    drawing.Color{R: 110, G: 112, B: 121, A: 255},
		AxisSplitLineColor: drawing.Color{R: 224, G: 230, B: 242, A: 255},
		BackgroundColor:    drawing.ColorWhite,
		TextColor:          drawing.Color{R: 70, G: 70, B: 70, A: 255},
		SeriesColors:       seriesColors,
	})
	themes[name] = true
	return name
}
