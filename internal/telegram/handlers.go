package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"marketViewport/internal/chart"
	"marketViewport/internal/finance"
	"marketViewport/internal/openai"
	"marketViewport/internal/storage"
	"marketViewport/internal/viewport"
)

// Sender is the part of the bot API the handlers use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ViewStore persists one chart view per chat.
type ViewStore interface {
	SaveViewport(v storage.ChartView) error
	LoadViewport(chatID int64) (storage.ChartView, error)
	DeleteViewport(chatID int64) error
	RecentViewports(since time.Time) ([]storage.ChartView, error)
}

type Handlers struct {
	api     Sender
	store   ViewStore
	charts  *chart.Service
	explain *openai.Commentator
	log     *slog.Logger

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// NewHandlers wires the command handlers. explain may be nil to disable /explain.
func NewHandlers(api Sender, store ViewStore, charts *chart.Service, explain *openai.Commentator, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{api: api, store: store, charts: charts, explain: explain, log: log, locks: map[int64]*sync.Mutex{}}
}

// chatLock serialises the load, apply and save of one chat's view.
func (h *Handlers) chatLock(chatID int64) *sync.Mutex {
	h.locksMu.Lock()
	defer h.locksMu.Unlock()
	mu, ok := h.locks[chatID]
	if !ok {
		mu = &sync.Mutex{}
		h.locks[chatID] = mu
	}
	return mu
}

func (h *Handlers) HandleMessage(m *tgbotapi.Message) {
	cmd, err := ParseCommand(m.Text)
	if errors.Is(err, errNoCommand) {
		return
	}
	chatID := m.Chat.ID
	if err != nil {
		h.reply(chatID, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	switch cmd.Kind {
	case CmdHelp:
		h.handleHelp(chatID)
		return
	case CmdClear:
		h.handleClear(chatID)
		return
	}

	view, ok := h.update(chatID, cmd)
	if !ok {
		return
	}
	switch {
	case cmd.redraws():
		h.sendChart(ctx, view)
	case cmd.Kind == CmdView:
		h.handleView(ctx, view)
	case cmd.Kind == CmdExplain:
		h.handleExplain(ctx, view)
	}
}

// update loads the chat's view and, for commands that change it, applies and
// saves the result under the chat's lock.
func (h *Handlers) update(chatID int64, cmd Command) (storage.ChartView, bool) {
	mu := h.chatLock(chatID)
	mu.Lock()
	defer mu.Unlock()

	view, err := h.store.LoadViewport(chatID)
	if errors.Is(err, storage.ErrNotFound) && cmd.Kind != CmdChart {
		h.reply(chatID, "No chart yet. Start with /chart sp500 gold 3M")
		return view, false
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.log.Error("telegram: load view failed", "chat_id", chatID, "err", err)
		h.reply(chatID, "Could not load your chart settings.")
		return view, false
	}
	view.ChatID = chatID
	if !cmd.redraws() {
		return view, true
	}
	view = Apply(view, cmd)
	view.UpdatedAt = time.Now()
	if err := h.store.SaveViewport(view); err != nil {
		h.log.Error("telegram: save view failed", "chat_id", chatID, "err", err)
	}
	return view, true
}

func (h *Handlers) handleClear(chatID int64) {
	mu := h.chatLock(chatID)
	mu.Lock()
	err := h.store.DeleteViewport(chatID)
	mu.Unlock()
	if err != nil {
		h.log.Error("telegram: delete view failed", "chat_id", chatID, "err", err)
		h.reply(chatID, "Could not clear your chart settings.")
		return
	}
	h.charts.Forget(owner(chatID))
	h.reply(chatID, "Chart settings cleared.")
}

// Warm preloads the data behind every view touched since the given time.
func (h *Handlers) Warm(ctx context.Context, since time.Time) {
	views, err := h.store.RecentViewports(since)
	if err != nil {
		h.log.Warn("telegram: recent views failed", "err", err)
		return
	}
	reqs := make([]chart.Request, 0, len(views))
	for _, v := range views {
		reqs = append(reqs, request(v))
	}
	n := h.charts.Warm(ctx, reqs)
	h.log.Info("telegram: warmed recent charts", "views", len(views), "loaded", n)
}

func owner(chatID int64) string { return strconv.FormatInt(chatID, 10) }

func request(v storage.ChartView) chart.Request {
	tf, err := finance.ParseTimeframe(v.Timeframe)
	if err != nil {
		tf = finance.Timeframe1M
	}
	return chart.Request{
		Owner:      owner(v.ChatID),
		Symbols:    v.Symbols,
		Timeframe:  tf,
		State:      v.State,
		Normalized: v.Normalized,
		LogScale:   v.LogScale,
	}
}

func (h *Handlers) sendChart(ctx context.Context, v storage.ChartView) {
	req := request(v)
	img, _, err := h.charts.Render(ctx, req)
	if err != nil {
		h.log.Warn("telegram: chart failed", "chat_id", v.ChatID, "symbols", v.Symbols, "err", err)
		h.reply(v.ChatID, "Chart failed: "+err.Error())
		return
	}
	photo := tgbotapi.NewPhoto(v.ChatID, tgbotapi.FileBytes{Name: strings.Join(v.Symbols, "_") + ".png", Bytes: img})
	photo.Caption = chart.Title(req) + "\n" + StateLine(v.State)
	if _, err := h.api.Send(photo); err != nil {
		h.log.Error("telegram: send photo failed", "chat_id", v.ChatID, "err", err)
	}
}

func (h *Handlers) handleView(ctx context.Context, v storage.ChartView) {
	f, err := h.charts.Frame(ctx, request(v))
	if err != nil {
		h.reply(v.ChatID, "View failed: "+err.Error())
		return
	}
	h.reply(v.ChatID, ViewText(v, f, h.charts.Stats(owner(v.ChatID))))
}

func (h *Handlers) handleExplain(ctx context.Context, v storage.ChartView) {
	if h.explain == nil {
		h.reply(v.ChatID, "Commentary is not configured.")
		return
	}
	f, err := h.charts.Frame(ctx, request(v))
	if err != nil {
		h.reply(v.ChatID, "Explain failed: "+err.Error())
		return
	}
	out, err := h.explain.Explain(ctx, f.Result, f.Descriptors)
	if err != nil {
		h.log.Error("telegram: commentary failed", "chat_id", v.ChatID, "err", err)
		h.reply(v.ChatID, "Explain failed: "+err.Error())
		return
	}
	msg := tgbotapi.NewMessage(v.ChatID, out)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := h.api.Send(msg); err != nil {
		// unbalanced * or _ in model output makes Telegram reject Markdown
		h.log.Warn("telegram: markdown send failed, retrying as plain text", "chat_id", v.ChatID, "err", err)
		h.reply(v.ChatID, out)
	}
}

// StateLine summarises the four slider positions.
func StateLine(st viewport.State) string {
	return fmt.Sprintf("x zoom %g • x pan %g • y zoom %g • y pan %g", st.XZoom, st.XPan, st.YZoom, st.YPan)
}

// ViewText describes the current view: window, domain, the latest change of
// every series and the memo counters of the chat's viewport.
func ViewText(v storage.ChartView, f chart.Frame, memo viewport.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n%s\n", chart.Title(request(v)), chart.Subtitle(f), StateLine(v.State))
	d := f.Result.Domain
	if d.Auto {
		b.WriteString("Y axis: auto\n")
	} else {
		fmt.Fprintf(&b, "Y axis: %s .. %s\n", f.Result.Formatter.Tick(d.Min), f.Result.Formatter.Tick(d.Max))
	}
	st := v.State.Clamp()
	raw := viewport.Window(f.Full, st.XZoom, st.XPan)
	var mids map[string]float64
	if v.Normalized {
		mids = viewport.Midranges(f.Full, viewport.Keys(f.Descriptors))
	}
	for _, desc := range f.Descriptors {
		line := desc.Label + ": "
		if c, ok := finance.Change(f.Full, desc.Key); ok {
			line += signed(c) + " last"
		} else {
			line += "n/a"
		}
		if ws, ok := finance.Stats(raw, desc.Key); ok {
			line += fmt.Sprintf(" • window %s • vol %.1f%% • max dd %.1f%%", signed(ws.Return), ws.Volatility, ws.MaxDrawdown)
		}
		if mid, ok := mids[desc.Key]; ok {
			line += " • 0% = " + viewport.FormatValue(mid, false, viewport.Tooltip)
		}
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "Memo hits: transform %d/%d • window %d/%d • domain %d/%d\n",
		memo.NormalizeHits, memo.NormalizeHits+memo.NormalizeMisses,
		memo.WindowHits, memo.WindowHits+memo.WindowMisses,
		memo.DomainHits, memo.DomainHits+memo.DomainMisses)
	return strings.TrimRight(b.String(), "\n")
}

func signed(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

func (h *Handlers) handleHelp(chatID int64) {
	help := "Commands\n\n" +
		"- /chart S1 S2 ... [1M|3M|6M|1Y] - Overlay chart of catalogue keys (sp500, nasdaq, dow, gold, oil, bitcoin, vix, aapl, msft, googl, tsla) or tickers\n" +
		"- /zoomx N - X zoom 0..100 (0 = full series, 100 = last 10% / 10 points)\n" +
		"- /panx N - X pan 0..100 (0 = earliest, 100 = latest)\n" +
		"- /zoomy N - Y zoom-out 0..100 (up to 5x the fitted range)\n" +
		"- /pany N - Y pan -100..100 (fraction of the fitted half-range)\n" +
		"- /norm on|off - Percent deviation from each series midrange\n" +
		"- /scale log|linear - Log10 Y axis (turns /norm off)\n" +
		"- /reset - Reset zoom and pan\n" +
		"- /clear - Forget this chat's chart\n" +
		"- /view - Window, Y axis and last change per series\n" +
		"- /explain - Short commentary on the visible window"
	h.reply(chatID, help)
}

func (h *Handlers) reply(chatID int64, text string) {
	if _, err := h.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.log.Error("telegram: reply failed", "chat_id", chatID, "err", err)
	}
}
