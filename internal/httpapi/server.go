// Package httpapi wires the HTTP surface of the ledger service.
// It keeps handlers thin, delegating business rules to the posting engine
// and the repositories. Every route is scoped under /v1/{org}/{book}; the
// two slugs joined form the namespace passed down to the store.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/openbooks/ledger/internal/docstore"
	"github.com/openbooks/ledger/internal/ledger"
	"github.com/openbooks/ledger/internal/repo"
	"github.com/openbooks/ledger/internal/report/fx"
	"github.com/openbooks/ledger/internal/service/posting"
	"github.com/openbooks/ledger/internal/state"
)

// Views groups the read-through caches backing report endpoints. Handlers
// invalidate the touched cache after every successful write.
type Views struct {
	Accounts     *state.Cache[ledger.Account]
	Transactions *state.Cache[ledger.Transaction]
	Invoices     *state.Cache[ledger.Invoice]
	Bills        *state.Cache[ledger.Bill]
	Expenses     *state.Cache[ledger.Expense]
	BankAccounts *state.Cache[ledger.BankAccount]
	Budgets      *state.Cache[ledger.Budget]
}

// NewViews builds the caches over the repositories.
func NewViews(d Deps) *Views {
	return &Views{
		Accounts:     state.NewCache(d.Accounts.List),
		Transactions: state.NewCache(d.Transactions.List),
		Invoices:     state.NewCache(d.Invoices.List),
		Bills:        state.NewCache(d.Bills.List),
		Expenses:     state.NewCache(d.Expenses.List),
		BankAccounts: state.NewCache(d.BankAccounts.List),
		Budgets:      state.NewCache(d.Budgets.List),
	}
}

// Deps carries everything the server needs.
type Deps struct {
	Store        docstore.Store
	Posting      posting.Service
	Accounts     *repo.Accounts
	Transactions *repo.Transactions
	Invoices     *repo.Collection[ledger.Invoice, *ledger.Invoice]
	Bills        *repo.Collection[ledger.Bill, *ledger.Bill]
	Expenses     *repo.Collection[ledger.Expense, *ledger.Expense]
	BankAccounts *repo.Collection[ledger.BankAccount, *ledger.BankAccount]
	Budgets      *repo.Collection[ledger.Budget, *ledger.Budget]
	Contacts     *repo.Collection[ledger.Contact, *ledger.Contact]
	Currencies   *repo.Collection[ledger.Currency, *ledger.Currency]
	// BaseCurrency and FXPolicy parameterize the per-namespace converter
	// built from the namespace's declared currencies.
	BaseCurrency string
	FXPolicy     fx.Policy
	Views        *Views
	Log          *slog.Logger
}

// Server wires handlers and middleware using Chi.
type Server struct {
	deps     Deps
	validate *validator.Validate
	log      *slog.Logger
	rt       *chi.Mux
	now      func() time.Time
}

// New constructs the HTTP server with routes and middleware.
func New(deps Deps) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(deps.Log))
	r.Use(recoverer(deps.Log))
	r.Use(metricsMiddleware)
	r.Use(httprate.Limit(300, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))

	s := &Server{
		deps:     deps,
		validate: validator.New(),
		log:      deps.Log,
		rt:       r,
		now:      time.Now,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints.
func (s *Server) routes() {
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())

	s.rt.Route("/v1/{org}/{book}", func(r chi.Router) {
		r.Use(s.resolveNamespace)

		r.Post("/accounts", s.createAccount)
		r.Get("/accounts", s.listAccounts)
		r.Post("/accounts/seed", s.seedAccounts)
		r.Get("/accounts/{id}", s.getAccount)
		r.Patch("/accounts/{id}", s.updateAccount)
		r.Delete("/accounts/{id}", s.deleteAccount)

		r.Post("/transactions", s.postTransaction)
		r.Get("/transactions", s.listTransactions)
		r.Get("/transactions/{id}", s.getTransaction)
		r.Post("/transactions/reconcile", s.reconcile)

		mountCollection(r, "/invoices", s, s.deps.Invoices, s.deps.Views.Invoices)
		mountCollection(r, "/bills", s, s.deps.Bills, s.deps.Views.Bills)
		mountCollection(r, "/expenses", s, s.deps.Expenses, s.deps.Views.Expenses)
		mountCollection(r, "/bank-accounts", s, s.deps.BankAccounts, s.deps.Views.BankAccounts)
		mountCollection(r, "/budgets", s, s.deps.Budgets, s.deps.Views.Budgets)
		mountCollection(r, "/contacts", s, s.deps.Contacts, nil)
		mountCollection(r, "/currencies", s, s.deps.Currencies, nil)

		r.Get("/reports/summary", s.reportSummary)
		r.Get("/reports/pnl", s.reportProfitAndLoss)
		r.Get("/reports/budgets", s.reportBudgets)
		r.Get("/reports/cashflow", s.reportCashFlow)
		r.Get("/reports/overdue", s.reportOverdue)
		r.Get("/fx/convert", s.convertCurrency)
	})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
	defer cancel()
	if err := s.deps.Store.Ready(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
