package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks/ledger/internal/docstore"
	"github.com/openbooks/ledger/internal/ledger"
)

// Transactions is the transaction repository. A transaction document carries
// its journal entries; entries never exist on their own.
type Transactions struct {
	col *Collection[ledger.Transaction, *ledger.Transaction]
}

// NewTransactions constructs the transaction repository.
func NewTransactions(store docstore.Store) *Transactions {
	return &Transactions{col: NewCollection[ledger.Transaction, *ledger.Transaction](store, "transactions")}
}

// WithNow overrides the repository clock, for tests.
func (r *Transactions) WithNow(now func() time.Time) { r.col.WithNow(now) }

// Path exposes the document path of a transaction for batch writes.
func (r *Transactions) Path(ns string, id uuid.UUID) string { return r.col.Path(ns, id) }

// Create persists the transaction header and its entries as a single write.
func (r *Transactions) Create(ctx context.Context, ns string, t *ledger.Transaction) (ledger.Transaction, error) {
	return r.col.Create(ctx, ns, t)
}

// Get returns one transaction with all its entries.
func (r *Transactions) Get(ctx context.Context, ns string, id uuid.UUID) (ledger.Transaction, error) {
	return r.col.Get(ctx, ns, id)
}

// List returns every transaction in the namespace ordered by creation time.
func (r *Transactions) List(ctx context.Context, ns string) ([]ledger.Transaction, error) {
	return r.col.List(ctx, ns)
}

// ListByStatus filters transactions by lifecycle status.
func (r *Transactions) ListByStatus(ctx context.Context, ns string, status ledger.TransactionStatus) ([]ledger.Transaction, error) {
	return r.col.Query(ctx, ns, "status", string(status))
}

// ListPendingBefore returns pending transactions created before cutoff; the
// reconciliation sweep finishes or voids these.
func (r *Transactions) ListPendingBefore(ctx context.Context, ns string, cutoff time.Time) ([]ledger.Transaction, error) {
	pending, err := r.ListByStatus(ctx, ns, ledger.TxStatusPending)
	if err != nil {
		return nil, err
	}
	out := pending[:0]
	for _, t := range pending {
		if t.CreatedAt.Before(cutoff) {
			out = append(out, t)
		}
	}
	return out, nil
}

// UpdateStatus transitions the transaction lifecycle; entries stay immutable.
func (r *Transactions) UpdateStatus(ctx context.Context, ns string, id uuid.UUID, status ledger.TransactionStatus) error {
	return r.col.Patch(ctx, ns, id, map[string]any{"status": string(status)})
}

// ReferencesAccount reports whether any journal entry in the namespace
// touches accountID. Drives the archive-instead-of-delete rule.
func (r *Transactions) ReferencesAccount(ctx context.Context, ns string, accountID uuid.UUID) (bool, error) {
	all, err := r.col.List(ctx, ns)
	if err != nil {
		return false, err
	}
	for _, t := range all {
		if t.References(accountID) {
			return true, nil
		}
	}
	return false, nil
}
