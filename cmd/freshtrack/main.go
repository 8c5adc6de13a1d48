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
	"golang.org/x/sync/errgroup"

	"github.com/freshtrack/freshtrack/internal/alerts"
	"github.com/freshtrack/freshtrack/internal/app"
	"github.com/freshtrack/freshtrack/internal/catalog"
	"github.com/freshtrack/freshtrack/internal/ledger"
	"github.com/freshtrack/freshtrack/internal/platform/storage"
	"github.com/freshtrack/freshtrack/jobs"
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

	store, cleanup, err := newStore(ctx, cfg)
	if err != nil {
		logger.Error("open snapshot store", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	ledgerService := ledger.NewService(logger, store)
	catalogService := catalog.NewService(logger, store, ledgerService)
	deriver := alerts.NewDeriver(catalogService)
	deriver.WithTTL(cfg.AlertTTL)

	// Snapshots are best effort both ways: a failed load starts the
	// session empty rather than refusing to serve.
	if err := ledgerService.Load(ctx); err != nil {
		logger.Warn("load movements snapshot", slog.Any("error", err))
	}
	if err := catalogService.Load(ctx); err != nil {
		logger.Warn("load products snapshot", slog.Any("error", err))
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("build jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		CatalogHandler: catalog.NewHandler(logger, catalogService),
		LedgerHandler:  ledger.NewHandler(logger, ledgerService),
		AlertsHandler:  alerts.NewHandler(logger, deriver),
		JobsHandler:    jobs.NewHandler(inspector, jobsClient, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func newStore(ctx context.Context, cfg *app.Config) (storage.Store, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		return storage.NewMemory(), func() {}, nil
	case "redis":
		store, err := storage.NewRedis(ctx, cfg.RedisAddr, cfg.StorePrefix)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "postgres":
		store, err := storage.NewPostgres(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		store, err := storage.NewFile(cfg.StoreDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}
