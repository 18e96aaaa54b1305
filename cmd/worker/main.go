package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/openbooks/ledger/internal/config"
	"github.com/openbooks/ledger/internal/docstore"
	"github.com/openbooks/ledger/internal/notify"
	"github.com/openbooks/ledger/internal/repo"
	"github.com/openbooks/ledger/internal/service/posting"
	"github.com/openbooks/ledger/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	logger := buildLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open document store", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	accounts := repo.NewAccounts(store)
	txns := repo.NewTransactions(store)
	svc := posting.New(store, accounts, txns, notify.NewLogPublisher(logger), logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	cron := make([]jobs.CronRegistration, 0, len(cfg.ReconcileNamespaces))
	spec := "@every " + cfg.ReconcileInterval.String()
	for _, ns := range cfg.ReconcileNamespaces {
		task, err := jobs.NewReconcileTask(jobs.ReconcilePayload{
			Namespace: ns,
			OlderThan: cfg.ReconcileAge,
		})
		if err != nil {
			logger.Error("build reconcile task", "namespace", ns, "err", err)
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{Spec: spec, Task: task})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: map[string]asynq.HandlerFunc{
			jobs.TaskReconcile: jobs.NewReconcileHandler(svc, logger),
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("worker setup", "err", err)
		os.Exit(1)
	}

	logger.Info("worker running",
		"redis", cfg.RedisAddr,
		"namespaces", len(cfg.ReconcileNamespaces),
		"interval", cfg.ReconcileInterval.String(),
	)
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", "err", err)
		os.Exit(1)
	}
}

// openStore selects the document store backend from configuration.
func openStore(ctx context.Context, cfg *config.Config) (docstore.Store, func(), error) {
	switch cfg.StoreDriver {
	case "postgres":
		pg, err := docstore.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	case "redis":
		rd, err := docstore.OpenRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return rd, func() { _ = rd.Close() }, nil
	default:
		return docstore.NewMemory(), func() {}, nil
	}
}

func parseLogLevel(s string) slog.Leveler {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}
	if strings.ToLower(strings.TrimSpace(format)) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
