package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"marketViewport/internal/chart"
	"marketViewport/internal/config"
	"marketViewport/internal/finance"
	"marketViewport/internal/render"
	"marketViewport/internal/viewport"
)

// viewFlags are shared by every subcommand that computes a frame.
type viewFlags struct {
	symbols   []string
	timeframe string
	xZoom     float64
	xPan      float64
	yZoom     float64
	yPan      float64
	norm      bool
	logScale  bool
	source    string
	seed      uint64
}

// NewRootCmd builds the chartctl command tree.
func NewRootCmd() *cobra.Command {
	cfg := config.LoadCLI()
	vf := &viewFlags{}

	root := &cobra.Command{
		Use:   "chartctl",
		Short: "Render and inspect market viewports from the command line",
		Long: `chartctl runs the same viewport engine as the bot: it loads daily closes,
applies zoom, pan and optional normalisation, and either renders a PNG or
prints the visible window as JSON.

Examples:
  chartctl render -s sp500,gold -t 3M --xzoom 50 --xpan 100 -o chart.png
  chartctl window -s bitcoin,vix --norm --yzoom 25
  chartctl render -s bitcoin,gold -t 1Y --log
  chartctl window -s aapl --source sample --seed 7`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringSliceVarP(&vf.symbols, "symbols", "s", []string{"sp500"}, "Catalogue keys or tickers, comma separated")
	pf.StringVarP(&vf.timeframe, "timeframe", "t", "1M", "Timeframe (1M, 3M, 6M, 1Y)")
	pf.Float64Var(&vf.xZoom, "xzoom", 0, "X zoom 0..100")
	pf.Float64Var(&vf.xPan, "xpan", 0, "X pan 0..100")
	pf.Float64Var(&vf.yZoom, "yzoom", 0, "Y zoom-out 0..100")
	pf.Float64Var(&vf.yPan, "ypan", 0, "Y pan -100..100")
	pf.BoolVar(&vf.norm, "norm", false, "Percent deviation from each series midrange")
	pf.BoolVar(&vf.logScale, "log", false, "Log10 Y axis (cannot be combined with --norm)")
	pf.StringVar(&vf.source, "source", cfg.DataSource, "Data source (yahoo, sample)")
	pf.Uint64Var(&vf.seed, "seed", 0, "Sample source seed (0 = time based)")

	root.AddCommand(newRenderCmd(vf, cfg), newWindowCmd(vf, cfg))
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func (vf *viewFlags) request() (chart.Request, error) {
	tf, err := finance.ParseTimeframe(vf.timeframe)
	if err != nil {
		return chart.Request{}, err
	}
	if vf.norm && vf.logScale {
		return chart.Request{}, fmt.Errorf("--norm and --log are mutually exclusive")
	}
	syms := finance.UniqueKeys(vf.symbols)
	if len(syms) == 0 {
		return chart.Request{}, fmt.Errorf("at least one symbol is required")
	}
	return chart.Request{
		Owner:      "cli",
		Symbols:    syms,
		Timeframe:  tf,
		State:      viewport.State{XZoom: vf.xZoom, XPan: vf.xPan, YZoom: vf.yZoom, YPan: vf.yPan},
		Normalized: vf.norm,
		LogScale:   vf.logScale,
	}, nil
}

func (vf *viewFlags) service(cfg config.Config) (*chart.Service, error) {
	log := config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	seed := vf.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	src, err := finance.SourceFor(vf.source, seed, log)
	if err != nil {
		return nil, err
	}
	return chart.NewService(src, render.Options{Width: cfg.ChartWidth, Height: cfg.ChartHeight}, log), nil
}
