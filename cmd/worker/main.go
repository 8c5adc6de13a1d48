package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/freshtrack/freshtrack/internal/alerts"
	"github.com/freshtrack/freshtrack/internal/app"
	"github.com/freshtrack/freshtrack/internal/catalog"
	"github.com/freshtrack/freshtrack/internal/ledger"
	"github.com/freshtrack/freshtrack/internal/platform/storage"
	"github.com/freshtrack/freshtrack/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	// The worker reads the same snapshots the server writes. Each scan
	// reloads so derived alerts reflect the latest persisted state.
	ledgerService := ledger.NewService(logger, store)
	catalogService := catalog.NewService(logger, store, ledgerService)
	deriver := alerts.NewDeriver(reloadingCatalog{ctx: ctx, logger: logger, catalog: catalogService})

	scanJob := jobs.NewAlertScanJob(deriver, logger)

	scanTask, err := jobs.NewAlertScanTask(jobs.ScanAll)
	if err != nil {
		logger.Error("build scan task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAlertScan, Handler: scanJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.AlertScanCron, Task: scanTask},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started", slog.String("cron", cfg.AlertScanCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker exited", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

// reloadingCatalog refreshes the catalog snapshot before each read so a
// long-lived worker never derives alerts from stale state.
type reloadingCatalog struct {
	ctx     context.Context
	logger  *slog.Logger
	catalog *catalog.Service
}

func (r reloadingCatalog) ExpiringSoon() []catalog.Product {
	if err := r.catalog.Load(r.ctx); err != nil {
		r.logger.Warn("reload products snapshot", slog.Any("error", err))
	}
	return r.catalog.ExpiringSoon()
}

func (r reloadingCatalog) LowStock() []catalog.Product {
	if err := r.catalog.Load(r.ctx); err != nil {
		r.logger.Warn("reload products snapshot", slog.Any("error", err))
	}
	return r.catalog.LowStock()
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
