package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"marketViewport/internal/chart"
	"marketViewport/internal/config"
	"marketViewport/internal/finance"
	"marketViewport/internal/openai"
	"marketViewport/internal/render"
	"marketViewport/internal/server"
	"marketViewport/internal/storage"
	"marketViewport/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	log := config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Error("config: invalid", "err", err)
		os.Exit(1)
	}

	// Ensure parent directory for the DB exists
	_ = os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755)
	db, err := storage.OpenSQLite("file:" + cfg.DBPath + "?_fk=1")
	if err != nil {
		log.Error("db: open failed", "path", cfg.DBPath, "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := storage.InitSchema(db); err != nil {
		log.Error("db: schema failed", "err", err)
		os.Exit(1)
	}
	log.Info("db: schema ensured (viewports table)", "path", cfg.DBPath)

	src, err := finance.SourceFor(cfg.DataSource, uint64(time.Now().UnixNano()), log)
	if err != nil {
		log.Error("finance: bad data source", "err", err)
		os.Exit(1)
	}
	charts := chart.NewService(src, render.Options{Width: cfg.ChartWidth, Height: cfg.ChartHeight}, log)

	var explain *openai.Commentator
	if cfg.OpenAIKey != "" {
		explain = openai.NewCommentator(cfg.OpenAIKey)
	} else {
		log.Info("openai: OPENAI_API_KEY not set, /explain disabled")
	}

	tg, err := telegram.NewBot(cfg.TelegramToken, cfg.WebhookPublicURL, storage.NewStore(db), charts, explain, log)
	if err != nil {
		log.Error("telegram: init failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go tg.Warm(ctx, time.Now().Add(-24*time.Hour))

	addr := ":" + cfg.Port
	log.Info("http: listening", "addr", addr, "source", cfg.DataSource)
	if err := server.ListenAndServe(ctx, addr, server.NewHTTPMux(tg.WebhookHandler, log)); err != nil {
		log.Error("http: server error", "err", err)
		os.Exit(1)
	}
	log.Info("http: stopped")
}
