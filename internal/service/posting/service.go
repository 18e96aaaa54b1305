// Package posting implements the ledger engine: it turns balanced drafts
// into persisted transactions and applies their balance effects to the
// referenced accounts, atomically from the caller's perspective. Concurrent
// posts against the same account are serialized in-process and guarded by a
// version check in the store, so the read-then-write window cannot lose an
// update.
package posting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks/ledger/internal/dictionary"
	"github.com/openbooks/ledger/internal/docstore"
	"github.com/openbooks/ledger/internal/errs"
	"github.com/openbooks/ledger/internal/ledger"
	"github.com/openbooks/ledger/internal/meta"
	"github.com/openbooks/ledger/internal/notify"
	"github.com/openbooks/ledger/internal/repo"
	"github.com/openbooks/ledger/internal/slug"
)

// applyRetries bounds re-read-and-recompute cycles when the version guard
// trips (cross-process writers; in-process posts are already serialized).
const applyRetries = 3

// DraftEntry is one requested journal line. Debit and credit are
// non-negative minor units; zero-amount lines are permitted and still count
// toward the balance check.
type DraftEntry struct {
	AccountID   uuid.UUID
	DebitMinor  int64
	CreditMinor int64
	Description string
}

// Draft is the transaction a caller asks to post.
type Draft struct {
	Number   string
	Date     time.Time
	Type     ledger.TransactionType
	Currency string
	Metadata meta.Metadata
	Entries  []DraftEntry
}

// Service is the ledger engine surface.
type Service interface {
	PostTransaction(ctx context.Context, ns string, draft Draft) (ledger.Transaction, error)
	SeedChartOfAccounts(ctx context.Context, ns, currency string) ([]ledger.Account, error)
	CreateAccount(ctx context.Context, ns string, a *ledger.Account) (ledger.Account, error)
	UpdateAccount(ctx context.Context, ns string, a *ledger.Account, balanceMinor *int64) (ledger.Account, error)
	DeleteOrArchiveAccount(ctx context.Context, ns string, id uuid.UUID) (archived bool, err error)
	Reconcile(ctx context.Context, ns string, olderThan time.Duration) (ReconcileReport, error)
}

type service struct {
	store    docstore.Store
	accounts *repo.Accounts
	txns     *repo.Transactions
	notifier notify.Publisher
	log      *slog.Logger
	locks    *accountLocks
	now      func() time.Time
}

// New constructs the engine over a document store.
func New(store docstore.Store, accounts *repo.Accounts, txns *repo.Transactions, notifier notify.Publisher, log *slog.Logger) Service {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &service{
		store:    store,
		accounts: accounts,
		txns:     txns,
		notifier: notifier,
		log:      log,
		locks:    newAccountLocks(),
		now:      time.Now,
	}
}

// validateDraft enforces every precondition that can be checked before any
// write: shape, non-negative amounts and the double-entry invariant.
func validateDraft(draft Draft) error {
	if len(draft.Entries) == 0 {
		return errs.ErrNoEntries
	}
	if draft.Currency == "" {
		return errs.ErrInvalid
	}
	switch draft.Type {
	case ledger.TxTypeSale, ledger.TxTypePurchase, ledger.TxTypePayment, ledger.TxTypeReceipt,
		ledger.TxTypeTransfer, ledger.TxTypeAdjustment, ledger.TxTypeOpeningBalance:
	default:
		return errs.ErrInvalid
	}
	var sumDebit, sumCredit int64
	for _, e := range draft.Entries {
		if e.AccountID == uuid.Nil {
			return errs.ErrInvalid
		}
		if e.DebitMinor < 0 || e.CreditMinor < 0 {
			return errs.ErrInvalid
		}
		if e.DebitMinor > 0 && e.CreditMinor > 0 {
			return errs.ErrInvalid
		}
		sumDebit += e.DebitMinor
		sumCredit += e.CreditMinor
	}
	if sumDebit != sumCredit {
		return errs.ErrUnbalanced
	}
	return draft.Metadata.Validate()
}

// PostTransaction persists the draft and applies its balance effects, or
// fails with no account changed. A failure after the header write leaves the
// transaction pending for the reconciler; it never half-applies balances.
func (s *service) PostTransaction(ctx context.Context, ns string, draft Draft) (ledger.Transaction, error) {
	if err := validateDraft(draft); err != nil {
		return ledger.Transaction{}, err
	}

	txID := uuid.New()
	entries := make([]ledger.JournalEntry, len(draft.Entries))
	var total int64
	for i, e := range draft.Entries {
		entries[i] = ledger.JournalEntry{
			ID:            uuid.New(),
			TransactionID: txID,
			AccountID:     e.AccountID,
			DebitMinor:    e.DebitMinor,
			CreditMinor:   e.CreditMinor,
			Description:   e.Description,
		}
		total += e.DebitMinor
	}
	number := draft.Number
	if number == "" {
		number = "TXN-" + strings.ToUpper(txID.String()[:8])
	}
	date := draft.Date
	if date.IsZero() {
		date = s.now().UTC()
	}

	tx := ledger.Transaction{
		Number:     number,
		Date:       date,
		Type:       draft.Type,
		Status:     ledger.TxStatusPending,
		Currency:   draft.Currency,
		TotalMinor: total,
		Entries:    entries,
		Metadata:   draft.Metadata,
	}
	tx.ID = txID

	release := s.locks.acquire(lockKeys(ns, entries))
	defer release()

	created, err := s.txns.Create(ctx, ns, &tx)
	if err != nil {
		return ledger.Transaction{}, err
	}

	if err := s.applyBalances(ctx, ns, &created); err != nil {
		// header is persisted; the transaction stays pending for reconciliation
		s.log.Warn("transaction left pending",
			"namespace", ns, "transaction_id", created.ID.String(), "err", err)
		return ledger.Transaction{}, err
	}

	transactionsPosted.WithLabelValues(string(created.Type)).Inc()
	s.notifier.Publish(ctx, notify.Event{
		Domain:   "ledger",
		Action:   "transaction.posted",
		Title:    "Transaction posted",
		Message:  fmt.Sprintf("%s for %d %s", created.Number, created.TotalMinor, created.Currency),
		EntityID: created.ID.String(),
		Priority: notify.PriorityNormal,
		Category: string(created.Type),
	})
	return created, nil
}

// applyBalances fetches every referenced account, aggregates the entry
// effects per account and commits one guarded batch: all balance writes plus
// the status flip to completed. Callers must hold the account locks.
func (s *service) applyBalances(ctx context.Context, ns string, tx *ledger.Transaction) error {
	deltas := aggregate(tx.Entries)

	for attempt := 0; attempt <= applyRetries; attempt++ {
		writes := make([]docstore.Write, 0, len(deltas)+1)
		now := s.now().UTC()
		for id, delta := range deltas {
			acc, err := s.accounts.Get(ctx, ns, id)
			if errors.Is(err, errs.ErrNotFound) {
				return errs.ErrAccountNotFound
			}
			if err != nil {
				return err
			}
			if acc.Archived {
				return errs.ErrAccountArchived
			}
			if acc.Currency != tx.Currency {
				return errs.ErrCurrencyMismatch
			}
			change := delta.debit - delta.credit
			if !acc.DebitIncreases() {
				change = delta.credit - delta.debit
			}
			writes = append(writes, docstore.Write{
				Path: s.accounts.Path(ns, id),
				Fields: map[string]any{
					"balance_minor": acc.BalanceMinor + change,
					"version":       acc.Version + 1,
					"updated_at":    now,
				},
				Guard: &docstore.Guard{Field: "version", Equals: acc.Version},
			})
		}
		// Deterministic path order so drivers that lock rows per write
		// (Postgres FOR UPDATE) cannot deadlock across processes.
		sort.Slice(writes, func(i, j int) bool { return writes[i].Path < writes[j].Path })
		writes = append(writes, docstore.Write{
			Path:   s.txns.Path(ns, tx.ID),
			Fields: map[string]any{"status": string(ledger.TxStatusCompleted), "updated_at": now},
		})

		err := s.store.Apply(ctx, writes)
		if err == nil {
			tx.Status = ledger.TxStatusCompleted
			tx.UpdatedAt = now
			return nil
		}
		if errors.Is(err, errs.ErrConflict) {
			postingConflicts.Inc()
			continue
		}
		return err
	}
	return errs.ErrConflict
}

// aggregate folds the entry list into one (debit, credit) pair per account
// so each affected account gets exactly one balance write.
type delta struct{ debit, credit int64 }

func aggregate(entries []ledger.JournalEntry) map[uuid.UUID]delta {
	out := make(map[uuid.UUID]delta)
	for _, e := range entries {
		d := out[e.AccountID]
		d.debit += e.DebitMinor
		d.credit += e.CreditMinor
		out[e.AccountID] = d
	}
	return out
}

func lockKeys(ns string, entries []ledger.JournalEntry) []string {
	seen := make(map[uuid.UUID]struct{}, len(entries))
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.AccountID]; ok {
			continue
		}
		seen[e.AccountID] = struct{}{}
		keys = append(keys, ns+"/"+e.AccountID.String())
	}
	return keys
}

// CreateAccount validates and persists a new account. A missing code is
// derived from the name; codes belonging to the seeded chart are reserved.
func (s *service) CreateAccount(ctx context.Context, ns string, a *ledger.Account) (ledger.Account, error) {
	if err := a.Validate(); err != nil {
		return ledger.Account{}, err
	}
	if a.Code == "" {
		a.Code = slug.Slugify(a.Name)
	}
	if dictionary.IsChartCode(a.Code) {
		return ledger.Account{}, errs.ErrConflict
	}
	a.Currency = strings.ToUpper(a.Currency)
	created, err := s.accounts.Create(ctx, ns, a)
	if err != nil {
		return ledger.Account{}, err
	}
	s.notifier.Publish(ctx, notify.Event{
		Domain: "ledger", Action: "account.created", Title: "Account created",
		Message: created.Name, EntityID: created.ID.String(),
		Priority: notify.PriorityLow, Category: string(created.Type),
	})
	return created, nil
}

// UpdateAccount applies descriptive edits. An explicit balance override is
// honored only while no journal entry references the account; after that the
// posting path owns the balance exclusively.
func (s *service) UpdateAccount(ctx context.Context, ns string, a *ledger.Account, balanceMinor *int64) (ledger.Account, error) {
	if balanceMinor != nil {
		referenced, err := s.txns.ReferencesAccount(ctx, ns, a.ID)
		if err != nil {
			return ledger.Account{}, err
		}
		if referenced {
			return ledger.Account{}, errs.ErrBalanceReadOnly
		}
		if err := s.accounts.SetBalance(ctx, ns, a.ID, *balanceMinor); err != nil {
			return ledger.Account{}, err
		}
	}
	return s.accounts.Update(ctx, ns, a)
}

// DeleteOrArchiveAccount removes an account with no journal references and
// archives one that has any. System accounts are never deleted.
func (s *service) DeleteOrArchiveAccount(ctx context.Context, ns string, id uuid.UUID) (bool, error) {
	acc, err := s.accounts.Get(ctx, ns, id)
	if err != nil {
		return false, err
	}
	if acc.System {
		return false, errs.ErrSystemAccount
	}
	referenced, err := s.txns.ReferencesAccount(ctx, ns, id)
	if err != nil {
		return false, err
	}
	if referenced {
		if err := s.accounts.Archive(ctx, ns, id); err != nil {
			return false, err
		}
		s.log.Info("delete substituted by archive",
			"namespace", ns, "account_id", id.String())
		s.notifier.Publish(ctx, notify.Event{
			Domain: "ledger", Action: "account.archived", Title: "Account archived",
			Message: acc.Name, EntityID: id.String(),
			Priority: notify.PriorityLow, Category: string(acc.Type),
		})
		return true, nil
	}
	if err := s.accounts.Delete(ctx, ns, id); err != nil {
		return false, err
	}
	return false, nil
}
