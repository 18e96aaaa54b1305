// Package ledger defines the domain entities of the ledger engine: accounts,
// transactions and their journal entries, plus the plain document collections
// that surround them. Amounts are carried as integer minor units and surfaced
// as money.Amount where arithmetic is needed.
package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/openbooks/ledger/internal/meta"
)

// AccountType enumerates the broad classification of an account in the ledger.
type AccountType string

const (
	// AccountTypeAsset increases on the debit side and holds resources owned by the entity.
	AccountTypeAsset AccountType = "asset"
	// AccountTypeLiability increases on the credit side and tracks obligations.
	AccountTypeLiability AccountType = "liability"
	// AccountTypeEquity captures the owners' residual interest in the entity.
	AccountTypeEquity AccountType = "equity"
	// AccountTypeRevenue represents inflows that increase equity.
	AccountTypeRevenue AccountType = "revenue"
	// AccountTypeExpense represents outflows that decrease equity.
	AccountTypeExpense AccountType = "expense"
)

// AccountSubType refines the account type for reporting and the sign rule.
type AccountSubType string

const (
	SubTypeCurrentAsset       AccountSubType = "current_asset"
	SubTypeCash               AccountSubType = "cash"
	SubTypeAccountsReceivable AccountSubType = "accounts_receivable"
	SubTypeInventory          AccountSubType = "inventory"
	SubTypeFixedAsset         AccountSubType = "fixed_asset"
	SubTypeCurrentLiability   AccountSubType = "current_liability"
	SubTypeAccountsPayable    AccountSubType = "accounts_payable"
	SubTypeTaxPayable         AccountSubType = "tax_payable"
	SubTypeOwnerEquity        AccountSubType = "owner_equity"
	SubTypeRetainedEarnings   AccountSubType = "retained_earnings"
	SubTypeOperatingRevenue   AccountSubType = "operating_revenue"
	SubTypeCostOfGoodsSold    AccountSubType = "cost_of_goods_sold"
	SubTypeOperatingExpense   AccountSubType = "operating_expense"
)

// TransactionType enumerates the business meaning of a posted transaction.
type TransactionType string

const (
	TxTypeSale           TransactionType = "sale"
	TxTypePurchase       TransactionType = "purchase"
	TxTypePayment        TransactionType = "payment"
	TxTypeReceipt        TransactionType = "receipt"
	TxTypeTransfer       TransactionType = "transfer"
	TxTypeAdjustment     TransactionType = "adjustment"
	TxTypeOpeningBalance TransactionType = "opening_balance"
)

// TransactionStatus tracks the lifecycle of a transaction.
type TransactionStatus string

const (
	TxStatusDraft TransactionStatus = "draft"
	// TxStatusPending marks a persisted transaction whose balance effects
	// have not been applied yet; the reconciler finishes or voids these.
	TxStatusPending    TransactionStatus = "pending"
	TxStatusCompleted  TransactionStatus = "completed"
	TxStatusCancelled  TransactionStatus = "cancelled"
	TxStatusReconciled TransactionStatus = "reconciled"
)

// DocMeta carries identity and timestamps common to every stored document.
type DocMeta struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *DocMeta) DocID() uuid.UUID      { return m.ID }
func (m *DocMeta) SetDocID(id uuid.UUID) { m.ID = id }
func (m *DocMeta) StampCreated(t time.Time) {
	m.CreatedAt = t
	m.UpdatedAt = t
}
func (m *DocMeta) StampUpdated(t time.Time) { m.UpdatedAt = t }
func (m *DocMeta) CreatedTime() time.Time   { return m.CreatedAt }

// Account represents one ledger account with a running balance. Balance is
// mutated exclusively by transaction posting; the ordinary update path must
// never touch it once an entry references the account.
type Account struct {
	DocMeta
	Code     string         `json:"code"`
	Name     string         `json:"name"`
	Type     AccountType    `json:"type"`
	SubType  AccountSubType `json:"sub_type,omitempty"`
	Currency string         `json:"currency"`
	// BalanceMinor is the running balance in minor units of Currency.
	// Invariant: equals the sum of all posted entry effects since creation.
	BalanceMinor int64 `json:"balance_minor"`
	// Version guards the read-modify-write window during posting.
	Version int64 `json:"version"`
	// System marks seeded chart-of-accounts entries exempt from deletion.
	System bool `json:"system"`
	// Archived is the soft-delete flag; set instead of removal once referenced.
	Archived bool          `json:"archived"`
	Metadata meta.Metadata `json:"metadata,omitempty"`
}

// Balance returns the running balance as a money.Amount.
func (a Account) Balance() (money.Amount, error) {
	return money.NewAmountFromMinorUnits(a.Currency, a.BalanceMinor)
}

// DebitIncreases reports whether a debit raises this account's balance.
// Asset and expense accounts (and the receivable/cash/inventory/COGS
// sub-types) grow on the debit side; everything else grows on credit.
func (a Account) DebitIncreases() bool {
	switch a.Type {
	case AccountTypeAsset, AccountTypeExpense:
		return true
	}
	switch a.SubType {
	case SubTypeCash, SubTypeAccountsReceivable, SubTypeInventory, SubTypeCostOfGoodsSold:
		return true
	}
	return false
}

// Validate rejects malformed account documents on read.
func (a *Account) Validate() error {
	if a.Name == "" {
		return errors.New("account: name is required")
	}
	if a.Currency == "" {
		return errors.New("account: currency is required")
	}
	switch a.Type {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
	default:
		return errors.New("account: invalid type")
	}
	return a.Metadata.Validate()
}

// JournalEntry is one debit or credit line of a transaction. It never exists
// outside its parent transaction and is immutable once posted.
type JournalEntry struct {
	ID            uuid.UUID `json:"id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	AccountID     uuid.UUID `json:"account_id"`
	DebitMinor    int64     `json:"debit_minor"`
	CreditMinor   int64     `json:"credit_minor"`
	Description   string    `json:"description,omitempty"`
}

// Transaction groups a balanced set of journal entries under one header.
// Entries are write-once; only the status transitions after posting.
type Transaction struct {
	DocMeta
	Number     string            `json:"number"`
	Date       time.Time         `json:"date"`
	Type       TransactionType   `json:"type"`
	Status     TransactionStatus `json:"status"`
	Currency   string            `json:"currency"`
	TotalMinor int64             `json:"total_minor"`
	Entries    []JournalEntry    `json:"entries"`
	Metadata   meta.Metadata     `json:"metadata,omitempty"`
}

// Total returns the denormalized transaction total as a money.Amount.
func (t Transaction) Total() (money.Amount, error) {
	return money.NewAmountFromMinorUnits(t.Currency, t.TotalMinor)
}

// Validate rejects malformed transaction documents on read.
func (t *Transaction) Validate() error {
	if t.Currency == "" {
		return errors.New("transaction: currency is required")
	}
	switch t.Type {
	case TxTypeSale, TxTypePurchase, TxTypePayment, TxTypeReceipt, TxTypeTransfer, TxTypeAdjustment, TxTypeOpeningBalance:
	default:
		return errors.New("transaction: invalid type")
	}
	switch t.Status {
	case TxStatusDraft, TxStatusPending, TxStatusCompleted, TxStatusCancelled, TxStatusReconciled:
	default:
		return errors.New("transaction: invalid status")
	}
	for _, e := range t.Entries {
		if e.AccountID == uuid.Nil {
			return errors.New("transaction: entry account_id is required")
		}
		if e.DebitMinor < 0 || e.CreditMinor < 0 {
			return errors.New("transaction: entry amounts must be non-negative")
		}
	}
	return t.Metadata.Validate()
}

// References reports whether any entry of the transaction touches accountID.
func (t Transaction) References(accountID uuid.UUID) bool {
	for _, e := range t.Entries {
		if e.AccountID == accountID {
			return true
		}
	}
	return false
}
