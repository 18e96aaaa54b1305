package posting

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbooks/ledger/internal/docstore"
	"github.com/openbooks/ledger/internal/errs"
	"github.com/openbooks/ledger/internal/ledger"
	"github.com/openbooks/ledger/internal/notify"
	"github.com/openbooks/ledger/internal/repo"
)

const testNS = "acme/main"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type fixture struct {
	store    *docstore.Memory
	accounts *repo.Accounts
	txns     *repo.Transactions
	svc      Service
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := docstore.NewMemory()
	accounts := repo.NewAccounts(store)
	txns := repo.NewTransactions(store)
	svc := New(store, accounts, txns, notify.Discard{}, testLogger())
	return &fixture{store: store, accounts: accounts, txns: txns, svc: svc}
}

func (f *fixture) seedAccount(t *testing.T, name string, typ ledger.AccountType, sub ledger.AccountSubType) ledger.Account {
	t.Helper()
	a, err := f.accounts.Create(context.Background(), testNS, &ledger.Account{
		Code: "9" + name[:1], Name: name, Type: typ, SubType: sub, Currency: "GBP",
	})
	require.NoError(t, err)
	return a
}

func TestPostTransactionSignRule(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cash := f.seedAccount(t, "Cash", ledger.AccountTypeAsset, ledger.SubTypeCash)
	revenue := f.seedAccount(t, "Sales", ledger.AccountTypeRevenue, ledger.SubTypeOperatingRevenue)

	tx, err := f.svc.PostTransaction(ctx, testNS, Draft{
		Type: ledger.TxTypeSale, Currency: "GBP",
		Entries: []DraftEntry{
			{AccountID: cash.ID, DebitMinor: 10000},
			{AccountID: revenue.ID, CreditMinor: 10000},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.TxStatusCompleted, tx.Status)
	assert.Equal(t, int64(10000), tx.TotalMinor)
	require.Len(t, tx.Entries, 2)
	for _, e := range tx.Entries {
		assert.NotEqual(t, uuid.Nil, e.ID)
		assert.Equal(t, tx.ID, e.TransactionID)
	}

	// debit increases the asset, credit increases the revenue
	got, err := f.accounts.Get(ctx, testNS, cash.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), got.BalanceMinor)
	got, err = f.accounts.Get(ctx, testNS, revenue.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), got.BalanceMinor)
}

func TestPostTransactionCreditNormalAccounts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cash := f.seedAccount(t, "Cash", ledger.AccountTypeAsset, ledger.SubTypeCash)
	loan := f.seedAccount(t, "Loan", ledger.AccountTypeLiability, ledger.SubTypeCurrentLiability)

	// borrow: debit cash, credit liability; both increase
	_, err := f.svc.PostTransaction(ctx, testNS, Draft{
		Type: ledger.TxTypeReceipt, Currency: "GBP",
		Entries: []DraftEntry{
			{AccountID: cash.ID, DebitMinor: 50000},
			{AccountID: loan.ID, CreditMinor: 50000},
		},
	})
	require.NoError(t, err)

	got, err := f.accounts.Get(ctx, testNS, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), got.BalanceMinor)
}

func TestPostTransactionRejectsUnbalanced(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cash := f.seedAccount(t, "Cash", ledger.AccountTypeAsset, ledger.SubTypeCash)
	revenue := f.seedAccount(t, "Sales", ledger.AccountTypeRevenue, ledger.SubTypeOperatingRevenue)

	_, err := f.svc.PostTransaction(ctx, testNS, Draft{
		Type: ledger.TxTypeSale, Currency: "GBP",
		Entries: []DraftEntry{
			{AccountID: cash.ID, DebitMinor: 10000},
			{AccountID: revenue.ID, CreditMinor: 9000},
		},
	})
	assert.ErrorIs(t, err, errs.ErrUnbalanced)

	// rejection is total: balances and updatedAt untouched, nothing persisted
	got, err := f.accounts.Get(ctx, testNS, cash.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.BalanceMinor)
	assert.Equal(t, cash.UpdatedAt, got.UpdatedAt)

	txns, err := f.txns.List(ctx, testNS)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestPostTransactionRejectsEmptyAndNegative(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cash := f.seedAccount(t, "Cash", ledger.AccountTypeAsset, ledger.SubTypeCash)

	_, err := f.svc.PostTransaction(ctx, testNS, Draft{Type: ledger.TxTypeSale, Currency: "GBP"})
	assert.ErrorIs(t, err, errs.ErrNoEntries)

	_, err = f.svc.PostTransaction(ctx, testNS, Draft{
		Type: ledger.TxTypeSale, Currency: "GBP",
		Entries: []DraftEntry{
			{AccountID: cash.ID, DebitMinor: -100},
			{AccountID: cash.ID, CreditMinor: -100},
		},
	})
	assert.ErrorIs(t, err, errs.ErrInvalid)
}

func TestPostTransactionMissingAccountLeavesPending(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cash := f.seedAccount(t, "Cash", ledger.AccountTypeAsset, ledger.SubTypeCash)

	_, err := f.svc.PostTransaction(ctx, testNS, Draft{
		Type: ledger.TxTypeSale, Currency: "GBP",
		Entries: []DraftEntry{
			{AccountID: cash.ID, DebitMinor: 100},
			{AccountID: uuid.New(), CreditMinor: 100},
		},
	})
	assert.ErrorIs(t, err, errs.ErrAccountNotFound)

	// header persisted as pending, no balance applied
	txns, err := f.txns.List(ctx, testNS)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, ledger.TxStatusPending, txns[0].Status)

	got, err := f.accounts.Get(ctx, testNS, cash.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.BalanceMinor)
}

func TestPostTransactionCurrencyMismatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cash := f.seedAccount(t, "Cash", ledger.AccountTypeAsset, ledger.SubTypeCash)
	revenue := f.seedAccount(t, "Sales", ledger.AccountTypeRevenue, ledger.SubTypeOperatingRevenue)

	_, err := f.svc.PostTransaction(ctx, testNS, Draft{
		Type: ledger.TxTypeSale, Currency: "USD",
		Entries: []DraftEntry{
			{AccountID: cash.ID, DebitMinor: 100},
			{AccountID: revenue.ID, CreditMinor: 100},
		},
	})
	assert.ErrorIs(t, err, errs.ErrCurrencyMismatch)

	got, err := f.accounts.Get(ctx, testNS, cash.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.BalanceMinor)
}

func TestPostTransactionAggregatesSameAccount(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cash := f.seedAccount(t, "Cash", ledger.AccountTypeAsset, ledger.SubTypeCash)
	revenue := f.seedAccount(t, "Sales", ledger.AccountTypeRevenue, ledger.SubTypeOperatingRevenue)

	// two debit lines against the same account fold into one balance write
	tx, err := f.svc.PostTransaction(ctx, testNS, Draft{
		Type: ledger.TxTypeSale, Currency: "GBP",
		Entries: []DraftEntry{
			{AccountID: cash.ID, DebitMinor: 3000},
			{AccountID: cash.ID, DebitMinor: 2000},
			{AccountID: revenue.ID, CreditMinor: 5000},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), tx.TotalMinor)

	got, err := f.accounts.Get(ctx, testNS, cash.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got.BalanceMinor)
	// a single aggregated write bumps the version once
	assert.Equal(t, int64(2), got.Version)
}

func TestConcurrentPostsSameAccount(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cash := f.seedAccount(t, "Cash", ledger.AccountTypeAsset, ledger.SubTypeCash)
	loan := f.seedAccount(t, "Loan", ledger.AccountTypeLiability, ledger.SubTypeCurrentLiability)

	const posts = 20
	var wg sync.WaitGroup
	errCh := make(chan error, posts)
	for i := 0; i < posts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.PostTransaction(ctx, testNS, Draft{
				Type: ledger.TxTypeReceipt, Currency: "GBP",
				Entries: []DraftEntry{
					{AccountID: cash.ID, DebitMinor: 50},
					{AccountID: loan.ID, CreditMinor: 50},
				},
			})
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	// no lost update: every credit of 50 landed
	got, err := f.accounts.Get(ctx, testNS, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(posts*50), got.BalanceMinor)
}

func TestBalanceInvariantAcrossPosts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cash := f.seedAccount(t, "Cash", ledger.AccountTypeAsset, ledger.SubTypeCash)
	receivable := f.seedAccount(t, "Receivable", ledger.AccountTypeAsset, ledger.SubTypeAccountsReceivable)
	revenue := f.seedAccount(t, "Sales", ledger.AccountTypeRevenue, ledger.SubTypeOperatingRevenue)
	rent := f.seedAccount(t, "Rent", ledger.AccountTypeExpense, ledger.SubTypeOperatingExpense)

	drafts := []Draft{
		{Type: ledger.TxTypeSale, Currency: "GBP", Entries: []DraftEntry{
			{AccountID: receivable.ID, DebitMinor: 120000}, {AccountID: revenue.ID, CreditMinor: 120000}}},
		{Type: ledger.TxTypeReceipt, Currency: "GBP", Entries: []DraftEntry{
			{AccountID: cash.ID, DebitMinor: 70000}, {AccountID: receivable.ID, CreditMinor: 70000}}},
		{Type: ledger.TxTypePurchase, Currency: "GBP", Entries: []DraftEntry{
			{AccountID: rent.ID, DebitMinor: 30000}, {AccountID: cash.ID, CreditMinor: 30000}}},
	}
	for _, d := range drafts {
		_, err := f.svc.PostTransaction(ctx, testNS, d)
		require.NoError(t, err)
	}

	// debit-normal balances must equal credit-normal balances in aggregate
	all, err := f.accounts.List(ctx, testNS)
	require.NoError(t, err)
	var debitNormal, creditNormal int64
	for _, a := range all {
		if a.DebitIncreases() {
			debitNormal += a.BalanceMinor
		} else {
			creditNormal += a.BalanceMinor
		}
	}
	assert.Equal(t, debitNormal, creditNormal)
}

func TestSeedChartOfAccountsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.SeedChartOfAccounts(ctx, testNS, "gbp")
	require.NoError(t, err)
	require.Len(t, created, 12)
	for _, a := range created {
		assert.True(t, a.System)
		assert.Equal(t, int64(0), a.BalanceMinor)
		assert.Equal(t, "GBP", a.Currency)
	}

	again, err := f.svc.SeedChartOfAccounts(ctx, testNS, "GBP")
	require.NoError(t, err)
	assert.Len(t, again, 12)

	all, err := f.accounts.List(ctx, testNS)
	require.NoError(t, err)
	assert.Len(t, all, 12)
}

func TestDeleteOrArchiveAccount(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cash := f.seedAccount(t, "Cash", ledger.AccountTypeAsset, ledger.SubTypeCash)
	revenue := f.seedAccount(t, "Sales", ledger.AccountTypeRevenue, ledger.SubTypeOperatingRevenue)
	unused := f.seedAccount(t, "Unused", ledger.AccountTypeExpense, ledger.SubTypeOperatingExpense)

	_, err := f.svc.PostTransaction(ctx, testNS, Draft{
		Type: ledger.TxTypeSale, Currency: "GBP",
		Entries: []DraftEntry{
			{AccountID: cash.ID, DebitMinor: 100},
			{AccountID: revenue.ID, CreditMinor: 100},
		},
	})
	require.NoError(t, err)

	// referenced: archived, still fetchable
	archived, err := f.svc.DeleteOrArchiveAccount(ctx, testNS, cash.ID)
	require.NoError(t, err)
	assert.True(t, archived)
	got, err := f.accounts.Get(ctx, testNS, cash.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)

	// unreferenced: physically removed
	archived, err = f.svc.DeleteOrArchiveAccount(ctx, testNS, unused.ID)
	require.NoError(t, err)
	assert.False(t, archived)
	_, err = f.accounts.Get(ctx, testNS, unused.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDeleteSystemAccountRefused(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	seeded, err := f.svc.SeedChartOfAccounts(ctx, testNS, "GBP")
	require.NoError(t, err)

	_, err = f.svc.DeleteOrArchiveAccount(ctx, testNS, seeded[0].ID)
	assert.ErrorIs(t, err, errs.ErrSystemAccount)
}

func TestUpdateAccountBalanceRules(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cash := f.seedAccount(t, "Cash", ledger.AccountTypeAsset, ledger.SubTypeCash)
	revenue := f.seedAccount(t, "Sales", ledger.AccountTypeRevenue, ledger.SubTypeOperatingRevenue)

	// before any posting an explicit balance edit is allowed
	opening := int64(25000)
	edit := cash
	updated, err := f.svc.UpdateAccount(ctx, testNS, &edit, &opening)
	require.NoError(t, err)
	assert.Equal(t, opening, updated.BalanceMinor)

	_, err = f.svc.PostTransaction(ctx, testNS, Draft{
		Type: ledger.TxTypeSale, Currency: "GBP",
		Entries: []DraftEntry{
			{AccountID: cash.ID, DebitMinor: 100},
			{AccountID: revenue.ID, CreditMinor: 100},
		},
	})
	require.NoError(t, err)

	// once referenced, the balance belongs to the posting path
	stale := int64(1)
	edit2, err := f.accounts.Get(ctx, testNS, cash.ID)
	require.NoError(t, err)
	_, err = f.svc.UpdateAccount(ctx, testNS, &edit2, &stale)
	assert.ErrorIs(t, err, errs.ErrBalanceReadOnly)
}

func TestReconcileFinishesPending(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cash := f.seedAccount(t, "Cash", ledger.AccountTypeAsset, ledger.SubTypeCash)
	revenue := f.seedAccount(t, "Sales", ledger.AccountTypeRevenue, ledger.SubTypeOperatingRevenue)

	// a pending header whose balances never applied (simulated crash)
	tx := ledger.Transaction{
		Number: "TXN-STUCK", Date: time.Now().UTC().Add(-time.Hour),
		Type: ledger.TxTypeSale, Status: ledger.TxStatusPending,
		Currency: "GBP", TotalMinor: 700,
		Entries: []ledger.JournalEntry{
			{ID: uuid.New(), AccountID: cash.ID, DebitMinor: 700},
			{ID: uuid.New(), AccountID: revenue.ID, CreditMinor: 700},
		},
	}
	f.txns.WithNow(func() time.Time { return time.Now().UTC().Add(-time.Hour) })
	created, err := f.txns.Create(ctx, testNS, &tx)
	require.NoError(t, err)
	f.txns.WithNow(time.Now)

	report, err := f.svc.Reconcile(ctx, testNS, 10*time.Minute)
	require.NoError(t, err)
	require.Len(t, report.Completed, 1)
	assert.Equal(t, created.ID, report.Completed[0])

	got, err := f.txns.Get(ctx, testNS, created.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.TxStatusCompleted, got.Status)

	acc, err := f.accounts.Get(ctx, testNS, cash.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(700), acc.BalanceMinor)
}

func TestReconcileVoidsWhenAccountMissing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cash := f.seedAccount(t, "Cash", ledger.AccountTypeAsset, ledger.SubTypeCash)

	tx := ledger.Transaction{
		Number: "TXN-GONE", Date: time.Now().UTC().Add(-time.Hour),
		Type: ledger.TxTypeSale, Status: ledger.TxStatusPending,
		Currency: "GBP", TotalMinor: 500,
		Entries: []ledger.JournalEntry{
			{ID: uuid.New(), AccountID: cash.ID, DebitMinor: 500},
			{ID: uuid.New(), AccountID: uuid.New(), CreditMinor: 500},
		},
	}
	f.txns.WithNow(func() time.Time { return time.Now().UTC().Add(-time.Hour) })
	created, err := f.txns.Create(ctx, testNS, &tx)
	require.NoError(t, err)
	f.txns.WithNow(time.Now)

	report, err := f.svc.Reconcile(ctx, testNS, 10*time.Minute)
	require.NoError(t, err)
	require.Len(t, report.Voided, 1)

	got, err := f.txns.Get(ctx, testNS, created.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.TxStatusCancelled, got.Status)

	acc, err := f.accounts.Get(ctx, testNS, cash.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), acc.BalanceMinor)
}

func TestEndToEndSeedAndPost(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	seeded, err := f.svc.SeedChartOfAccounts(ctx, testNS, "GBP")
	require.NoError(t, err)
	require.Len(t, seeded, 12)
	for _, a := range seeded {
		require.Equal(t, int64(0), a.BalanceMinor)
	}

	var cash, sales ledger.Account
	for _, a := range seeded {
		switch a.Name {
		case "Cash":
			cash = a
		case "Sales Revenue":
			sales = a
		}
	}
	require.NotEqual(t, uuid.Nil, cash.ID)
	require.NotEqual(t, uuid.Nil, sales.ID)

	tx, err := f.svc.PostTransaction(ctx, testNS, Draft{
		Date: time.Now().UTC(), Type: ledger.TxTypeSale, Currency: "GBP",
		Entries: []DraftEntry{
			{AccountID: cash.ID, DebitMinor: 50000},
			{AccountID: sales.ID, CreditMinor: 50000},
		},
	})
	require.NoError(t, err)

	gotCash, err := f.accounts.Get(ctx, testNS, cash.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), gotCash.BalanceMinor)
	gotSales, err := f.accounts.Get(ctx, testNS, sales.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), gotSales.BalanceMinor)

	fetched, err := f.txns.Get(ctx, testNS, tx.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Entries, 2)
	for _, e := range fetched.Entries {
		assert.NotEqual(t, uuid.Nil, e.ID)
		assert.Equal(t, tx.ID, e.TransactionID)
	}
}

func TestReconcileVoidsCurrencyMismatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cash := f.seedAccount(t, "Cash", ledger.AccountTypeAsset, ledger.SubTypeCash)
	revenue := f.seedAccount(t, "Sales", ledger.AccountTypeRevenue, ledger.SubTypeOperatingRevenue)

	// a stuck header in a currency the accounts will never accept must be
	// voided, not allowed to wedge the sweep for the rest of the backlog
	f.txns.WithNow(func() time.Time { return time.Now().UTC().Add(-time.Hour) })
	poison := ledger.Transaction{
		Number: "TXN-USD", Date: time.Now().UTC().Add(-time.Hour),
		Type: ledger.TxTypeSale, Status: ledger.TxStatusPending,
		Currency: "USD", TotalMinor: 300,
		Entries: []ledger.JournalEntry{
			{ID: uuid.New(), AccountID: cash.ID, DebitMinor: 300},
			{ID: uuid.New(), AccountID: revenue.ID, CreditMinor: 300},
		},
	}
	createdPoison, err := f.txns.Create(ctx, testNS, &poison)
	require.NoError(t, err)

	fine := ledger.Transaction{
		Number: "TXN-GBP", Date: time.Now().UTC().Add(-time.Hour),
		Type: ledger.TxTypeSale, Status: ledger.TxStatusPending,
		Currency: "GBP", TotalMinor: 900,
		Entries: []ledger.JournalEntry{
			{ID: uuid.New(), AccountID: cash.ID, DebitMinor: 900},
			{ID: uuid.New(), AccountID: revenue.ID, CreditMinor: 900},
		},
	}
	createdFine, err := f.txns.Create(ctx, testNS, &fine)
	require.NoError(t, err)
	f.txns.WithNow(time.Now)

	report, err := f.svc.Reconcile(ctx, testNS, 10*time.Minute)
	require.NoError(t, err)
	require.Len(t, report.Voided, 1)
	assert.Equal(t, createdPoison.ID, report.Voided[0])
	require.Len(t, report.Completed, 1)
	assert.Equal(t, createdFine.ID, report.Completed[0])

	gotPoison, err := f.txns.Get(ctx, testNS, createdPoison.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.TxStatusCancelled, gotPoison.Status)

	acc, err := f.accounts.Get(ctx, testNS, cash.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(900), acc.BalanceMinor)
}

func TestCreateAccountCodes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.CreateAccount(ctx, testNS, &ledger.Account{
		Name: "Petty Cash", Type: ledger.AccountTypeAsset, Currency: "GBP",
	})
	require.NoError(t, err)
	assert.Equal(t, "petty_cash", created.Code)

	_, err = f.svc.CreateAccount(ctx, testNS, &ledger.Account{
		Code: "1000", Name: "My Cash", Type: ledger.AccountTypeAsset, Currency: "GBP",
	})
	require.ErrorIs(t, err, errs.ErrConflict)
}

// captureStore records every batch handed to Apply.
type captureStore struct {
	*docstore.Memory
	mu      sync.Mutex
	applied [][]docstore.Write
}

func (c *captureStore) Apply(ctx context.Context, writes []docstore.Write) error {
	cp := make([]docstore.Write, len(writes))
	copy(cp, writes)
	c.mu.Lock()
	c.applied = append(c.applied, cp)
	c.mu.Unlock()
	return c.Memory.Apply(ctx, writes)
}

func TestApplyBatchOrderedByPath(t *testing.T) {
	store := &captureStore{Memory: docstore.NewMemory()}
	accounts := repo.NewAccounts(store)
	txns := repo.NewTransactions(store)
	svc := New(store, accounts, txns, notify.Discard{}, testLogger())
	f := &fixture{accounts: accounts, txns: txns, svc: svc}
	ctx := context.Background()

	cash := f.seedAccount(t, "Cash", ledger.AccountTypeAsset, ledger.SubTypeCash)
	rent := f.seedAccount(t, "Rent", ledger.AccountTypeExpense, ledger.SubTypeOperatingExpense)
	sales := f.seedAccount(t, "Wages", ledger.AccountTypeRevenue, ledger.SubTypeOperatingRevenue)
	tax := f.seedAccount(t, "Tax", ledger.AccountTypeLiability, ledger.SubTypeTaxPayable)

	tx, err := svc.PostTransaction(ctx, testNS, Draft{
		Type: ledger.TxTypeAdjustment, Currency: "GBP",
		Entries: []DraftEntry{
			{AccountID: cash.ID, DebitMinor: 600},
			{AccountID: rent.ID, DebitMinor: 400},
			{AccountID: sales.ID, CreditMinor: 700},
			{AccountID: tax.ID, CreditMinor: 300},
		},
	})
	require.NoError(t, err)

	// rows must be locked in one global order across processes: account
	// writes sorted by path, the status flip last
	store.mu.Lock()
	defer store.mu.Unlock()
	require.NotEmpty(t, store.applied)
	batch := store.applied[len(store.applied)-1]
	require.Len(t, batch, 5)
	paths := make([]string, 0, len(batch)-1)
	for _, w := range batch[:len(batch)-1] {
		paths = append(paths, w.Path)
	}
	assert.True(t, sort.StringsAreSorted(paths), "account writes not in path order: %v", paths)
	assert.Equal(t, txns.Path(testNS, tx.ID), batch[len(batch)-1].Path)
}
