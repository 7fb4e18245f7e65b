package chart

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"marketViewport/internal/finance"
	"marketViewport/internal/render"
	"marketViewport/internal/viewport"
)

const (
	dataTTL = 5 * time.Minute
	viewTTL = 30 * time.Minute
)

// Request describes one chart frame.
type Request struct {
	Owner      string // memo slot, e.g. the chat id
	Symbols    []string
	Timeframe  finance.Timeframe
	State      viewport.State
	Normalized bool
	LogScale   bool
}

// Mode is the pre-window transform the request asks for.
func (r Request) Mode() viewport.Mode { return viewport.ModeFor(r.Normalized, r.LogScale) }

// Frame is a computed chart plus the inputs a caller needs to caption it.
type Frame struct {
	Result      viewport.Result
	Descriptors []viewport.SeriesDescriptor
	Full        viewport.Series
}

type dataEntry struct {
	fetchedAt time.Time
	series    viewport.Series
}

type viewEntry struct {
	vp       *viewport.Viewport
	lastUsed time.Time
}

// Service fetches series, runs them through a per-owner memoised viewport and
// renders PNGs.
type Service struct {
	Source  finance.Source
	Images  *render.Cache
	Size    render.Options
	Log     *slog.Logger
	DataTTL time.Duration

	mu    sync.Mutex
	data  map[string]dataEntry
	views map[string]*viewEntry
	now   func() time.Time
}

func NewService(src finance.Source, size render.Options, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		Source:  src,
		Images:  render.NewCache(0),
		Size:    size,
		Log:     log,
		DataTTL: dataTTL,
		data:    map[string]dataEntry{},
		views:   map[string]*viewEntry{},
		now:     time.Now,
	}
}

// Frame resolves instruments, loads (or reuses) the series and computes the
// visible window and Y domain.
func (s *Service) Frame(ctx context.Context, req Request) (Frame, error) {
	if len(req.Symbols) == 0 {
		return Frame{}, fmt.Errorf("no symbols selected")
	}
	selected := make([]finance.Instrument, 0, len(req.Symbols))
	for _, sym := range req.Symbols {
		selected = append(selected, finance.ResolveInstrument(sym))
	}
	descs := finance.Descriptors(selected)

	series, err := s.series(ctx, selected, req.Timeframe)
	if err != nil {
		return Frame{}, err
	}
	res := s.viewportFor(req.Owner).ComputeMode(series, descs, req.State, req.Mode())
	return Frame{Result: res, Descriptors: descs, Full: series}, nil
}

// Render draws the frame for req, serving repeated identical requests from
// the image cache.
func (s *Service) Render(ctx context.Context, req Request) ([]byte, Frame, error) {
	f, err := s.Frame(ctx, req)
	if err != nil {
		return nil, Frame{}, err
	}
	opt := s.Size
	opt.Title = Title(req)
	opt.Subtitle = Subtitle(f)
	img, err := s.Images.GetOrRender(imageKey(req, f), func() ([]byte, error) {
		return render.Chart(f.Result, f.Descriptors, opt)
	})
	if err != nil {
		return nil, Frame{}, err
	}
	return img, f, nil
}

// Stats exposes the memo counters of one owner's viewport.
// An owner without a viewport reports zeros.
func (s *Service) Stats(owner string) viewport.Stats {
	s.mu.Lock()
	e, ok := s.views[owner]
	s.mu.Unlock()
	if !ok {
		return viewport.Stats{}
	}
	return e.vp.Stats()
}

func (s *Service) viewportFor(owner string) *viewport.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for o, e := range s.views {
		if o != owner && now.Sub(e.lastUsed) > viewTTL {
			e.vp.Reset()
			delete(s.views, o)
		}
	}
	e, ok := s.views[owner]
	if !ok {
		e = &viewEntry{vp: viewport.NewViewport()}
		s.views[owner] = e
	}
	e.lastUsed = now
	return e.vp
}

// Forget drops the owner's memoised viewport.
func (s *Service) Forget(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.views[owner]; ok {
		e.vp.Reset()
		delete(s.views, owner)
	}
}

// Warm loads the series behind reqs so the first redraw after a restart
// skips the fetch. It returns how many requests loaded.
func (s *Service) Warm(ctx context.Context, reqs []Request) int {
	n := 0
	for _, req := range reqs {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.Frame(ctx, req); err != nil {
			s.Log.Warn("chart: warm failed", "owner", req.Owner, "symbols", req.Symbols, "err", err)
			continue
		}
		n++
	}
	return n
}

// cacheSizes reports the number of cached series and viewports.
func (s *Service) cacheSizes() (data, views int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data), len(s.views)
}

func (s *Service) series(ctx context.Context, selected []finance.Instrument, tf finance.Timeframe) (viewport.Series, error) {
	keys := make([]string, len(selected))
	for i, in := range selected {
		keys[i] = in.Key
	}
	dk := strings.Join(keys, ",") + "|" + string(tf)

	s.mu.Lock()
	e, ok := s.data[dk]
	s.mu.Unlock()
	if ok && s.now().Sub(e.fetchedAt) < s.DataTTL {
		return e.series, nil
	}

	start := s.now()
	series, err := s.Source.Fetch(ctx, selected, tf)
	if err != nil {
		return nil, err
	}
	s.Log.Debug("chart: series loaded", "key", dk, "points", len(series), "took", s.now().Sub(start))

	s.mu.Lock()
	now := s.now()
	for k, e := range s.data {
		if now.Sub(e.fetchedAt) >= s.DataTTL {
			delete(s.data, k)
		}
	}
	s.data[dk] = dataEntry{fetchedAt: now, series: series}
	s.mu.Unlock()
	return series, nil
}

func imageKey(req Request, f Frame) string {
	st := req.State.Clamp()
	last := ""
	if n := len(f.Full); n > 0 {
		last = f.Full[n-1].Key
	}
	return fmt.Sprintf("%s|%s|%s|%d|%s|%g|%g|%g|%g|%d",
		req.Owner, strings.Join(req.Symbols, ","), req.Timeframe, len(f.Full), last,
		st.XZoom, st.XPan, st.YZoom, st.YPan, req.Mode())
}

func Title(req Request) string {
	syms := make([]string, len(req.Symbols))
	for i, s := range req.Symbols {
		syms[i] = strings.ToUpper(s)
	}
	t := strings.Join(syms, ", ") + " • " + string(req.Timeframe)
	switch req.Mode() {
	case viewport.ModePercent:
		t += " • normalized %"
	case viewport.ModeLog:
		t += " • log scale"
	}
	return t
}

func Subtitle(f Frame) string {
	v := f.Result.Visible
	if len(v) == 0 {
		return "no data"
	}
	return fmt.Sprintf("%s → %s • %d of %d points", v[0].Key, v[len(v)-1].Key, len(v), len(f.Full))
}
