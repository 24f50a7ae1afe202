package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/palisade-ops/palisade/internal/app"
	"github.com/palisade-ops/palisade/internal/bom"
	"github.com/palisade-ops/palisade/internal/catalog"
	cataloghttp "github.com/palisade-ops/palisade/internal/catalog/http"
	"github.com/palisade-ops/palisade/internal/observability"
	"github.com/palisade-ops/palisade/internal/platform/cache"
	"github.com/palisade-ops/palisade/internal/platform/db"
	"github.com/palisade-ops/palisade/internal/pricing"
	"github.com/palisade-ops/palisade/internal/quotes"
	"github.com/palisade-ops/palisade/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// A missing Redis degrades to direct catalog loads, not a dead server.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis connect", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	catalogRepo := catalog.NewRepository(pool)
	catalogCache := catalog.NewCache(redisClient, cfg.CatalogCacheTTL)
	catalogProvider := catalog.NewProvider(catalogRepo, catalogCache, logger)

	bomService := bom.NewService(logger, catalogProvider)
	pricingService := pricing.NewService(logger, catalogProvider)
	quotesRepo := quotes.NewRepository(pool)
	quotesService := quotes.NewService(logger, catalogProvider, quotesRepo, jobClient)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		BOMHandler:     bom.NewHandler(logger, bomService),
		PricingHandler: pricing.NewHandler(logger, pricingService),
		QuotesHandler:  quotes.NewHandler(logger, quotesService),
		CatalogHandler: cataloghttp.NewHandler(logger, catalogProvider),
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
