package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken    string
	WebhookPublicURL string
	OpenAIKey        string
	Port             string
	DBPath           string
	DataSource       string
	ChartWidth       int
	ChartHeight      int
	LogLevel         string
	LogFormat        string
}

// Load reads the bot configuration from the environment, after an optional
// .env file.
func Load() (Config, error) {
	cfg := LoadCLI()
	var missing []string
	for k, v := range map[string]*string{
		"TELEGRAM_BOT_TOKEN": &cfg.TelegramToken,
		"WEBHOOK_PUBLIC_URL": &cfg.WebhookPublicURL,
	} {
		*v = os.Getenv(k)
		if *v == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return cfg, fmt.Errorf("missing env %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

// LoadCLI reads the settings shared by every binary; nothing is required.
func LoadCLI() Config {
	_ = godotenv.Load()
	return Config{
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		Port:        envOr("PORT", "9095"),
		DBPath:      envOr("DB_PATH", "/app/data/viewport.db"),
		DataSource:  strings.ToLower(envOr("DATA_SOURCE", "yahoo")),
		ChartWidth:  envInt("CHART_WIDTH", 900),
		ChartHeight: envInt("CHART_HEIGHT", 450),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		LogFormat:   envOr("LOG_FORMAT", "text"),
	}
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
