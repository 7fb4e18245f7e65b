package commands

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"marketViewport/internal/chart"
	"marketViewport/internal/config"
	"marketViewport/internal/viewport"
)

type windowDomain struct {
	Auto    bool     `json:"auto"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	MinTick string   `json:"min_tick,omitempty"`
	MaxTick string   `json:"max_tick,omitempty"`
}

type windowPoint struct {
	Key    string             `json:"key"`
	Values map[string]float64 `json:"values"`
}

type windowReport struct {
	Title      string                      `json:"title"`
	Subtitle   string                      `json:"subtitle"`
	Total      int                         `json:"total"`
	Start      int                         `json:"start"`
	Size       int                         `json:"size"`
	Percentage bool                        `json:"percentage"`
	Log        bool                        `json:"log"`
	Series     []viewport.SeriesDescriptor `json:"series"`
	Domain     windowDomain                `json:"domain"`
	Points     []windowPoint               `json:"points"`
}

func newWindowCmd(vf *viewFlags, cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "window",
		Short: "Print the visible window and Y domain as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := vf.request()
			if err != nil {
				return err
			}
			svc, err := vf.service(cfg)
			if err != nil {
				return err
			}
			f, err := svc.Frame(cmd.Context(), req)
			if err != nil {
				return err
			}
			out, err := sonic.ConfigStd.MarshalIndent(buildReport(req, f), "", "  ")
			if err != nil {
				return fmt.Errorf("encode window: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func buildReport(req chart.Request, f chart.Frame) windowReport {
	st := req.State.Clamp()
	start, size := viewport.WindowBounds(len(f.Full), st.XZoom, st.XPan)
	r := windowReport{
		Title:      chart.Title(req),
		Subtitle:   chart.Subtitle(f),
		Total:      len(f.Full),
		Start:      start,
		Size:       size,
		Percentage: f.Result.Formatter.Percentage,
		Log:        f.Result.Formatter.Log,
		Series:     f.Descriptors,
		Points:     make([]windowPoint, 0, len(f.Result.Visible)),
	}
	d := f.Result.Domain
	r.Domain.Auto = d.Auto
	if !d.Auto {
		lo, hi := d.Min, d.Max
		r.Domain.Min, r.Domain.Max = &lo, &hi
		r.Domain.MinTick = f.Result.Formatter.Tick(lo)
		r.Domain.MaxTick = f.Result.Formatter.Tick(hi)
	}
	for _, p := range f.Result.Visible {
		vals := make(map[string]float64, len(p.Values))
		for k := range p.Values {
			if v, ok := p.Value(k); ok {
				vals[k] = v
			}
		}
		r.Points = append(r.Points, windowPoint{Key: p.Key, Values: vals})
	}
	return r
}
