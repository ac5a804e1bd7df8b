// Package httpapi wires the HTTP transport (Gin) to the bot dispatcher and
// middleware. The service exposes exactly three surfaces: the Telegram
// webhook, a liveness endpoint, and Prometheus metrics.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/ndorokhov/go-movie-bot/internal/bot"
	"github.com/ndorokhov/go-movie-bot/internal/config"
	"github.com/ndorokhov/go-movie-bot/internal/domain"
	"github.com/ndorokhov/go-movie-bot/internal/http/middleware"
	"github.com/ndorokhov/go-movie-bot/internal/repo"
	"github.com/ndorokhov/go-movie-bot/internal/services"
	"github.com/ndorokhov/go-movie-bot/internal/session"
)

// storeShim adapts the repository free functions to the store interfaces the
// services expect. This keeps services decoupled from the concrete repo
// package while reusing existing functions.
type storeShim struct{}

func (storeShim) ListResults(ctx context.Context, db *gorm.DB, userID, identity string) ([]domain.MovieResult, error) {
	return repo.ListResults(ctx, db, userID, identity)
}

func (storeShim) InsertResults(ctx context.Context, db *gorm.DB, rows []domain.MovieResult) error {
	return repo.InsertResults(ctx, db, rows)
}

func (storeShim) DeleteResults(ctx context.Context, db *gorm.DB, userID, identity string) (int64, error) {
	return repo.DeleteResults(ctx, db, userID, identity)
}

func (storeShim) UpdateResultFlags(ctx context.Context, db *gorm.DB, userID, movieID string, viewed, favorite bool) error {
	return repo.UpdateResultFlags(ctx, db, userID, movieID, viewed, favorite)
}

func (storeShim) PurgeResults(ctx context.Context, db *gorm.DB, userID string, f repo.Filter) (int64, error) {
	return repo.PurgeResults(ctx, db, userID, f)
}

func (storeShim) ReplaceQuery(ctx context.Context, db *gorm.DB, userID string, kind domain.SearchKind, identity string, at time.Time) (*domain.SearchQuery, error) {
	return repo.ReplaceQuery(ctx, db, userID, kind, identity, at)
}

func (storeShim) ListQueries(ctx context.Context, db *gorm.DB, userID string, f repo.Filter) ([]domain.SearchQuery, error) {
	return repo.ListQueries(ctx, db, userID, f)
}

func (storeShim) GetQuery(ctx context.Context, db *gorm.DB, userID string, id uint) (*domain.SearchQuery, error) {
	return repo.GetQuery(ctx, db, userID, id)
}

func (storeShim) DistinctDates(ctx context.Context, db *gorm.DB, userID string, since time.Time) ([]string, error) {
	return repo.DistinctDates(ctx, db, userID, since)
}

func (storeShim) PurgeQueries(ctx context.Context, db *gorm.DB, userID string, f repo.Filter) (int64, error) {
	return repo.PurgeQueries(ctx, db, userID, f)
}

func (storeShim) GetPostponed(ctx context.Context, db *gorm.DB, userID, movieID string) (*domain.PostponedMovie, error) {
	return repo.GetPostponed(ctx, db, userID, movieID)
}

func (storeShim) CreatePostponed(ctx context.Context, db *gorm.DB, userID string, m domain.Movie) (*domain.PostponedMovie, error) {
	return repo.CreatePostponed(ctx, db, userID, m)
}

func (storeShim) UpdatePostponedFlags(ctx context.Context, db *gorm.DB, userID, movieID string, viewed, favorite bool) error {
	return repo.UpdatePostponedFlags(ctx, db, userID, movieID, viewed, favorite)
}

func (storeShim) DeletePostponed(ctx context.Context, db *gorm.DB, userID, movieID string) error {
	return repo.DeletePostponed(ctx, db, userID, movieID)
}

func (storeShim) ListPostponed(ctx context.Context, db *gorm.DB, userID, flagColumn string) ([]domain.PostponedMovie, error) {
	return repo.ListPostponed(ctx, db, userID, flagColumn)
}

func (storeShim) CountPostponed(ctx context.Context, db *gorm.DB, userID, flagColumn string) (int64, error) {
	return repo.CountPostponed(ctx, db, userID, flagColumn)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine, builds the application services on top of db and the remote search
// client, and returns the wired dispatcher (the caller registers the command
// menu and the webhook with Telegram).
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per IP)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, tg bot.Transport, api services.Searcher, cfg config.Config, log zerolog.Logger) *bot.Dispatcher {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB; Telegram updates are tiny)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
	r.Use(rl.Handler())

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "message": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"code": "method_not_allowed", "message": "method not allowed"})
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: dispatcher ← services ← repo/db
	search := services.NewSearchService(db, api, storeShim{}, storeShim{}, storeShim{})
	status := services.NewStatusService(db, storeShim{}, storeShim{})
	history := services.NewHistoryService(db, storeShim{}, storeShim{})
	d := bot.NewDispatcher(tg, session.NewStore(), search, status, history, log)

	// The webhook path carries an opaque secret; a wrong secret is
	// indistinguishable from an unknown route.
	r.POST("/webhook/:secret", func(c *gin.Context) {
		if c.Param("secret") != cfg.Telegram.WebhookSecret {
			c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "message": "route not found"})
			return
		}
		var upd bot.Update
		if err := c.ShouldBindJSON(&upd); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("malformed webhook payload")
			c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "message": "malformed update"})
			return
		}
		d.HandleUpdate(c.Request.Context(), upd)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return d
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
