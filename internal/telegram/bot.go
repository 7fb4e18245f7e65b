package telegram

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"marketViewport/internal/chart"
	"marketViewport/internal/openai"
	"marketViewport/internal/storage"
)

type Bot struct {
	api *tgbotapi.BotAPI
	h   *Handlers
	log *slog.Logger
}

func NewBot(token, webhookURL string, store *storage.Store, charts *chart.Service, explain *openai.Commentator, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	// set webhook
	webhook, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, err
	}
	if _, err := api.Request(webhook); err != nil {
		return nil, err
	}
	log.Info("telegram: webhook set", "url", webhookURL)

	h := NewHandlers(api, store, charts, explain, log)
	return &Bot{api: api, h: h, log: log}, nil
}

// Warm preloads chart data for chats active since the given time.
func (b *Bot) Warm(ctx context.Context, since time.Time) { b.h.Warm(ctx, since) }

// Webhook HTTP handler (registered at /telegram/webhook)
func (b *Bot) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	serveWebhook(w, r, b.h, b.log)
}

func serveWebhook(w http.ResponseWriter, r *http.Request, h *Handlers, log *slog.Logger) {
	var update tgbotapi.Update
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}
	if update.Message == nil {
		log.Debug("webhook: non-message update received")
		w.WriteHeader(http.StatusOK)
		return
	}
	log.Info("webhook: message", "chat_id", update.Message.Chat.ID, "text", update.Message.Text)
	go h.HandleMessage(update.Message)
	w.WriteHeader(http.StatusOK)
}
