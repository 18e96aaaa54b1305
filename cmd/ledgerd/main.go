package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/openbooks/ledger/internal/config"
	"github.com/openbooks/ledger/internal/docstore"
	"github.com/openbooks/ledger/internal/httpapi"
	"github.com/openbooks/ledger/internal/notify"
	"github.com/openbooks/ledger/internal/repo"
	"github.com/openbooks/ledger/internal/report/fx"
	"github.com/openbooks/ledger/internal/service/posting"
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
	logger.Info("storage backend ready", "driver", cfg.StoreDriver)

	deps := httpapi.Deps{
		Store:        store,
		Accounts:     repo.NewAccounts(store),
		Transactions: repo.NewTransactions(store),
		Invoices:     repo.NewInvoices(store),
		Bills:        repo.NewBills(store),
		Expenses:     repo.NewExpenses(store),
		BankAccounts: repo.NewBankAccounts(store),
		Budgets:      repo.NewBudgets(store),
		Contacts:     repo.NewContacts(store),
		Currencies:   repo.NewCurrencies(store),
		BaseCurrency: cfg.BaseCurrency,
		Log:          logger,
	}
	if cfg.FXStrict {
		deps.FXPolicy = fx.PolicyReject
	}
	deps.Posting = posting.New(store, deps.Accounts, deps.Transactions,
		notify.NewLogPublisher(logger), logger)
	deps.Views = httpapi.NewViews(deps)

	srv := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           httpapi.New(deps).Handler(),
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
		IdleTimeout:       cfg.AppIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ledger service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	closeStore()
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
