package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks/ledger/internal/docstore"
	"github.com/openbooks/ledger/internal/errs"
	"github.com/openbooks/ledger/internal/ledger"
)

// Accounts is the account repository. Balance and version are written only
// through the posting engine's guarded batch or SetBalance; the ordinary
// update path preserves whatever the store holds.
type Accounts struct {
	col *Collection[ledger.Account, *ledger.Account]
}

// NewAccounts constructs the account repository.
func NewAccounts(store docstore.Store) *Accounts {
	return &Accounts{col: NewCollection[ledger.Account, *ledger.Account](store, "accounts")}
}

// WithNow overrides the repository clock, for tests.
func (r *Accounts) WithNow(now func() time.Time) { r.col.WithNow(now) }

// Path exposes the document path of an account, used by the posting engine
// to address its guarded batch writes.
func (r *Accounts) Path(ns string, id uuid.UUID) string { return r.col.Path(ns, id) }

// Create persists a new account. Balance seeds to zero unless the caller
// provided one; the version counter starts at 1.
func (r *Accounts) Create(ctx context.Context, ns string, a *ledger.Account) (ledger.Account, error) {
	if a.Version == 0 {
		a.Version = 1
	}
	return r.col.Create(ctx, ns, a)
}

// Get returns one account.
func (r *Accounts) Get(ctx context.Context, ns string, id uuid.UUID) (ledger.Account, error) {
	return r.col.Get(ctx, ns, id)
}

// List returns every account in the namespace.
func (r *Accounts) List(ctx context.Context, ns string) ([]ledger.Account, error) {
	return r.col.List(ctx, ns)
}

// ListActive returns non-archived accounts.
func (r *Accounts) ListActive(ctx context.Context, ns string) ([]ledger.Account, error) {
	all, err := r.col.List(ctx, ns)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, a := range all {
		if !a.Archived {
			out = append(out, a)
		}
	}
	return out, nil
}

// Update applies descriptive field changes. Type and currency are immutable,
// the system flag cannot be toggled, and balance/version always carry over
// from the stored document.
func (r *Accounts) Update(ctx context.Context, ns string, a *ledger.Account) (ledger.Account, error) {
	current, err := r.col.Get(ctx, ns, a.ID)
	if err != nil {
		return ledger.Account{}, err
	}
	if current.Type != a.Type || current.Currency != a.Currency {
		return ledger.Account{}, errs.ErrImmutable
	}
	if current.System != a.System {
		return ledger.Account{}, errs.ErrImmutable
	}
	a.BalanceMinor = current.BalanceMinor
	a.Version = current.Version
	a.CreatedAt = current.CreatedAt
	return r.col.Save(ctx, ns, a)
}

// SetBalance overwrites the balance directly. The posting engine only allows
// this while no journal entry references the account.
func (r *Accounts) SetBalance(ctx context.Context, ns string, id uuid.UUID, minor int64) error {
	current, err := r.col.Get(ctx, ns, id)
	if err != nil {
		return err
	}
	return r.col.Patch(ctx, ns, id, map[string]any{
		"balance_minor": minor,
		"version":       current.Version + 1,
	})
}

// Archive soft-deletes the account, keeping it fetchable and referenced.
func (r *Accounts) Archive(ctx context.Context, ns string, id uuid.UUID) error {
	return r.col.Patch(ctx, ns, id, map[string]any{"archived": true})
}

// Delete physically removes the account document. Referential checks run in
// the posting engine before this is reached.
func (r *Accounts) Delete(ctx context.Context, ns string, id uuid.UUID) error {
	return r.col.Delete(ctx, ns, id)
}
