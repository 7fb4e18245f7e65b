package telegram

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"marketViewport/internal/finance"
	"marketViewport/internal/storage"
	"marketViewport/internal/viewport"
)

type CommandKind int

const (
	CmdNone CommandKind = iota
	CmdHelp
	CmdChart
	CmdZoomX
	CmdPanX
	CmdZoomY
	CmdPanY
	CmdNorm
	CmdReset
	CmdView
	CmdExplain
	CmdScale
	CmdClear
)

// Command is a parsed chat command.
type Command struct {
	Kind      CommandKind
	Symbols   []string
	Timeframe finance.Timeframe
	Value     float64
	On        bool
}

var (
	// /help, /start
	reHelp = regexp.MustCompile(`^/(help|start)(?:@[\w_]+)?$`)
	// /chart S1 S2 ... [1M|3M|6M|1Y]
	reChart = regexp.MustCompile(`(?i)^/chart(?:@[\w_]+)?\s+([A-Za-z0-9\.^_=+\-\s]+?)(?:\s+(1M|3M|6M|1Y))?$`)
	// /zoomx N, /panx N, /zoomy N, /pany N
	reAxis = regexp.MustCompile(`^/(zoomx|panx|zoomy|pany)(?:@[\w_]+)?\s+(-?\d+(?:\.\d+)?)$`)
	// /norm on|off
	reNorm = regexp.MustCompile(`(?i)^/norm(?:@[\w_]+)?\s+(on|off)$`)
	// /scale log|linear
	reScale  = regexp.MustCompile(`(?i)^/scale(?:@[\w_]+)?\s+(log|linear)$`)
	reSimple = regexp.MustCompile(`^/(reset|view|explain|clear)(?:@[\w_]+)?$`)
)

var errNoCommand = errors.New("not a command")

// ParseCommand recognises the bot commands. Plain text yields errNoCommand.
func ParseCommand(text string) (Command, error) {
	txt := strings.TrimSpace(text)
	switch {
	case reHelp.MatchString(txt):
		return Command{Kind: CmdHelp}, nil

	case reChart.MatchString(txt):
		g := reChart.FindStringSubmatch(txt)
		tf, err := finance.ParseTimeframe(g[2])
		if err != nil {
			return Command{}, err
		}
		syms := dedupeSymbols(g[1])
		if len(syms) == 0 {
			return Command{}, fmt.Errorf("please provide at least one symbol, e.g. /chart sp500 gold 3M")
		}
		return Command{Kind: CmdChart, Symbols: syms, Timeframe: tf}, nil

	case reAxis.MatchString(txt):
		g := reAxis.FindStringSubmatch(txt)
		v, err := strconv.ParseFloat(g[2], 64)
		if err != nil {
			return Command{}, err
		}
		kind := map[string]CommandKind{"zoomx": CmdZoomX, "panx": CmdPanX, "zoomy": CmdZoomY, "pany": CmdPanY}[g[1]]
		return Command{Kind: kind, Value: v}, nil

	case reNorm.MatchString(txt):
		g := reNorm.FindStringSubmatch(txt)
		return Command{Kind: CmdNorm, On: strings.EqualFold(g[1], "on")}, nil

	case reScale.MatchString(txt):
		g := reScale.FindStringSubmatch(txt)
		return Command{Kind: CmdScale, On: strings.EqualFold(g[1], "log")}, nil

	case reSimple.MatchString(txt):
		g := reSimple.FindStringSubmatch(txt)
		return Command{Kind: map[string]CommandKind{
			"reset": CmdReset, "view": CmdView, "explain": CmdExplain, "clear": CmdClear,
		}[g[1]]}, nil
	}
	return Command{}, errNoCommand
}

// dedupeSymbols splits on whitespace and keeps one entry per instrument.
func dedupeSymbols(field string) []string {
	return finance.UniqueKeys(strings.Fields(field))
}

// Apply returns the view after cmd. Commands that do not change the view
// return it unchanged.
func Apply(v storage.ChartView, cmd Command) storage.ChartView {
	switch cmd.Kind {
	case CmdChart:
		v.Symbols = cmd.Symbols
		v.Timeframe = string(cmd.Timeframe)
		v.State = viewport.DefaultState()
	case CmdZoomX:
		v.State.XZoom = cmd.Value
	case CmdPanX:
		v.State.XPan = cmd.Value
	case CmdZoomY:
		v.State.YZoom = cmd.Value
	case CmdPanY:
		v.State.YPan = cmd.Value
	case CmdNorm:
		v.Normalized = cmd.On
		if cmd.On {
			v.LogScale = false
		}
	case CmdScale:
		v.LogScale = cmd.On
		if cmd.On {
			v.Normalized = false
		}
	case CmdReset:
		v.State = viewport.DefaultState()
	}
	v.State = v.State.Clamp()
	return v
}

// redraws reports whether the command changes what the chart shows.
func (c Command) redraws() bool {
	switch c.Kind {
	case CmdChart, CmdZoomX, CmdPanX, CmdZoomY, CmdPanY, CmdNorm, CmdScale, CmdReset:
		return true
	}
	return false
}
