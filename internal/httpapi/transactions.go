package httpapi

import (
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/openbooks/ledger/internal/ledger"
	"github.com/openbooks/ledger/internal/service/posting"
)

func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	var req postTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		badRequest(w, err.Error())
		return
	}
	entries := make([]posting.DraftEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, posting.DraftEntry{
			AccountID:   e.AccountID,
			DebitMinor:  e.DebitMinor,
			CreditMinor: e.CreditMinor,
			Description: e.Description,
		})
	}
	ns := namespace(r)
	tx, err := s.deps.Posting.PostTransaction(r.Context(), ns, posting.Draft{
		Number:   req.Number,
		Date:     req.Date,
		Type:     ledger.TransactionType(req.Type),
		Currency: req.Currency,
		Metadata: req.Metadata,
		Entries:  entries,
	})
	// A failure after the header write leaves a durable pending transaction,
	// so the list view is stale either way.
	s.deps.Views.Transactions.Invalidate(ns)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	s.deps.Views.Accounts.Invalidate(ns)
	toJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	ns := namespace(r)
	var (
		txns []ledger.Transaction
		err  error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		txns, err = s.deps.Transactions.ListByStatus(r.Context(), ns, ledger.TransactionStatus(status))
	} else {
		txns, err = s.deps.Views.Transactions.Get(r.Context(), ns)
	}
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionResponse(t))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid transaction id")
		return
	}
	tx, err := s.deps.Transactions.Get(r.Context(), namespace(r), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponse(tx))
}

// reconcile sweeps pending transactions older than the requested age,
// finishing or voiding them.
func (s *Server) reconcile(w http.ResponseWriter, r *http.Request) {
	olderThan := 10 * time.Minute
	if raw := r.URL.Query().Get("older_than"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			badRequest(w, "older_than must be a non-negative duration")
			return
		}
		olderThan = d
	}
	ns := namespace(r)
	report, err := s.deps.Posting.Reconcile(r.Context(), ns, olderThan)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	s.deps.Views.Transactions.Invalidate(ns)
	s.deps.Views.Accounts.Invalidate(ns)
	toJSON(w, http.StatusOK, reconcileResponse{
		Completed: report.Completed,
		Voided:    report.Voided,
	})
}
