package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andres10976/webspider/backend/internal/auth"
	"github.com/andres10976/webspider/backend/internal/cache"
	"github.com/andres10976/webspider/backend/internal/config"
	"github.com/andres10976/webspider/backend/internal/database"
	"github.com/andres10976/webspider/backend/internal/handler"
	"github.com/andres10976/webspider/backend/internal/model"
	"github.com/andres10976/webspider/backend/internal/repository"
	"github.com/andres10976/webspider/backend/internal/service/access"
	"github.com/andres10976/webspider/backend/internal/service/events"
	"github.com/andres10976/webspider/backend/internal/service/telegram"
	"github.com/andres10976/webspider/backend/internal/service/webhook"
)

type alertStore interface {
	Upsert(ctx context.Context, targetEmail, message string, isActive bool) error
	ListActiveFor(ctx context.Context, userEmail string) ([]model.Alert, error)
}

type changePublisher interface {
	Publish(ctx context.Context, c events.Change) error
	Close() error
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(pool); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Repositories
	monitorRepo := repository.NewMonitorRepository(pool)
	alertRepo := repository.NewAlertRepository(pool)

	var alerts alertStore = alertRepo
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			slog.Warn("redis unreachable, alert cache will fall back to postgres", "addr", cfg.RedisAddr, "error", err)
		}
		alerts = cache.NewAlertStore(alertRepo, rdb, cfg.AlertCacheTTL)
		slog.Info("alert cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.AlertCacheTTL)
	}

	// Services
	gate := access.NewGate(cfg.AdminEmail, cfg.FallbackAdminEmail)
	if !gate.Configured() {
		slog.Warn("ADMIN_GMAIL is not set, admin endpoints will deny every caller")
	}

	var publisher changePublisher = events.Discard{}
	if cfg.KafkaBrokers != "" {
		p, err := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			slog.Error("kafka publisher setup failed", "error", err)
			os.Exit(1)
		}
		publisher = p
		slog.Info("publishing change events", "topic", cfg.KafkaTopic)
	}
	defer publisher.Close()

	tgClient := telegram.NewClient(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.TelegramTimeout)
	reconciler := webhook.New(tgClient, cfg.TelegramBotToken != "", cfg.PublicBaseURL, cfg.TelegramWebhookPath)

	var verifier *auth.Verifier
	if cfg.AuthTokenSecret != "" {
		verifier, err = auth.NewVerifier(cfg.AuthTokenSecret)
		if err != nil {
			slog.Error("invalid AUTH_TOKEN_SECRET", "error", err)
			os.Exit(1)
		}
		slog.Info("bearer token identity enabled")
	}

	// Router
	r := handler.NewRouter(
		handler.RouterConfig{
			CORSAllowOrigin: cfg.CORSAllowOrigin,
			RequestTimeout:  cfg.RequestTimeout,
			Verifier:        verifier,
		},
		pool,
		[]handler.RouteRegistrar{
			handler.NewTelegramHandler(reconciler),
		},
		[]handler.RouteRegistrar{
			handler.NewMonitorHandler(monitorRepo, publisher, cfg.MaxMonitorsPerUser),
			handler.NewAdminHandler(gate, monitorRepo, publisher),
			handler.NewAlertHandler(gate, alerts, publisher),
		},
	)

	// Server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	// Give in-flight requests time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}
