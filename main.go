// Command bunt is the chat bot. It:
//   - Loads configuration and initializes structured logging.
//   - Optionally connects to Postgres for the command log.
//   - Joins Twitch chat and answers ~ev, ~st, ~sav and ~help, mirroring replies
//     to a Discord webhook when one is configured.
//   - Exposes a minimal HTTP server with /healthz, /readyz, /status and /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/onnwee/bunt/bot"
	"github.com/onnwee/bunt/chat"
	"github.com/onnwee/bunt/config"
	"github.com/onnwee/bunt/db"
	"github.com/onnwee/bunt/discord"
	"github.com/onnwee/bunt/fetch"
	"github.com/onnwee/bunt/server"
	"github.com/onnwee/bunt/telemetry"
)

const version = "1.0.0"

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	slog.SetDefault(telemetry.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat))
	slog.Info("logger initialized", slog.String("level", cfg.LogLevel), slog.String("format", cfg.LogFormat))

	if err := cfg.ValidateChatReady(); err != nil {
		slog.Error("chat credentials missing", slog.Any("err", err))
		os.Exit(1)
	}

	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("bunt", version)
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := bot.Options{
		Prefix:          cfg.CommandPrefix,
		TeamID:          cfg.TeamID,
		Fetcher:         fetch.New(cfg.RetryPolicy()),
		StatsAPIBaseURL: cfg.StatsAPIBaseURL,
		SavantBaseURL:   cfg.SavantBaseURL,
	}

	deps := server.Deps{}
	if cfg.DBDsn != "" {
		database, err := db.Connect(ctx, cfg.DBDsn)
		if err != nil {
			slog.Error("failed to open db", slog.Any("err", err))
			os.Exit(1)
		}
		defer func() {
			if err := database.Close(); err != nil {
				slog.Error("failed to close database", slog.Any("err", err))
			}
		}()
		slog.Info("running database migrations", slog.String("component", "db_migrate"))
		if err := db.Migrate(ctx, database); err != nil {
			slog.Error("failed to migrate db", slog.Any("err", err))
			os.Exit(1)
		}
		opts.Log = &db.CommandLog{DB: database}
		deps.DB = database
	} else {
		slog.Info("command log disabled (DB_DSN not set)")
	}

	handler := bot.New(opts)
	if games, ok := handler.Games.(server.GameCache); ok {
		deps.Games = games
	}

	var mirror bot.Replier
	if cfg.DiscordWebhookURL != "" {
		mirror = discord.NewWebhookClient(cfg.DiscordWebhookURL, cfg.DiscordUsername)
		slog.Info("discord mirror enabled")
	}

	twitch := chat.New(chat.Config{
		Channel:    cfg.TwitchChannel,
		Username:   cfg.TwitchBotUsername,
		OAuthToken: cfg.TwitchOAuthToken,
		RateLimit:  cfg.ChatRateLimit,
		RateWindow: cfg.ChatRateWindow,
	}, handler, mirror)
	deps.Chat = twitch

	go func() {
		if err := server.Start(ctx, deps, cfg.HTTPAddr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	slog.Info("starting chat bot", slog.String("channel", cfg.TwitchChannel), slog.String("prefix", cfg.CommandPrefix), slog.Int64("team_id", cfg.TeamID))
	if err := twitch.Run(ctx); err != nil {
		slog.Error("twitch chat exited with error", slog.Any("err", err))
		stop()
		os.Exit(1)
	}
	slog.Info("shutting down")
}
