// Command bot runs the Telegram movie-catalog bot: an HTTP server exposing
// the webhook endpoint, a liveness probe and Prometheus metrics, backed by a
// SQLite store and the remote movie-catalog search API.
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/ndorokhov/go-movie-bot/internal/bot"
	"github.com/ndorokhov/go-movie-bot/internal/config"
	httpapi "github.com/ndorokhov/go-movie-bot/internal/http"
	"github.com/ndorokhov/go-movie-bot/internal/kinopoisk"
	"github.com/ndorokhov/go-movie-bot/internal/observability"
	"github.com/ndorokhov/go-movie-bot/internal/repo"
	"github.com/ndorokhov/go-movie-bot/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Optional .env for local development; real deployments use the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		errLogger := zerolog.New(os.Stderr)
		errLogger.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	sysutil.SetLogLevel(cfg.LogLevel)
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ver := sysutil.FirstNonEmpty(os.Getenv("SERVICE_VERSION"), version)
	otelShutdown, err := observability.SetupOTel(ctx, cfg.OTEL, ver)
	if err != nil {
		logger.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(sctx); err != nil {
			logger.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	if err := repo.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			logger.Fatal().Err(err).Msg("gorm tracing plugin failed")
		}
	}

	kp := kinopoisk.New(kinopoisk.Config{
		BaseURL: cfg.Kinopoisk.BaseURL,
		APIKey:  cfg.Kinopoisk.APIKey,
		Timeout: cfg.Kinopoisk.Timeout,
		RPS:     cfg.Kinopoisk.RPS,
	})
	tg := bot.NewClient(cfg.Telegram.BotToken, cfg.Telegram.APIBaseURL)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	dispatcher := httpapi.RegisterRoutes(r, db, tg, kp, cfg, logger)

	// Publish the command menu on startup; a failure here is not fatal,
	// Telegram keeps the previously registered menu.
	if err := dispatcher.RegisterCommands(ctx); err != nil {
		logger.Warn().Err(err).Msg("set bot commands failed")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("version", ver).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}

// newLogger builds the root logger. Pretty console output is for local
// development only; production emits JSON lines.
func newLogger(cfg config.Config) zerolog.Logger {
	var out io.Writer = os.Stdout
	if cfg.LogPretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Str("service", cfg.OTEL.ServiceName).Logger()
}
