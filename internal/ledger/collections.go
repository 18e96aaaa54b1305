package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks/ledger/internal/meta"
)

// The remaining collections are plain CRUD documents. They carry their own
// status lifecycles but no cross-entity numeric invariants; validation is
// shape-only so malformed store documents are rejected on read.

// InvoiceStatus tracks the lifecycle of an outgoing invoice.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoiceViewed    InvoiceStatus = "viewed"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Invoice is money owed to the business by a contact.
type Invoice struct {
	DocMeta
	Number     string        `json:"number"`
	ContactID  uuid.UUID     `json:"contact_id"`
	IssueDate  time.Time     `json:"issue_date"`
	DueDate    time.Time     `json:"due_date"`
	Currency   string        `json:"currency"`
	TotalMinor int64         `json:"total_minor"`
	Status     InvoiceStatus `json:"status"`
}

func (i *Invoice) Validate() error {
	if i.Currency == "" {
		return errors.New("invoice: currency is required")
	}
	switch i.Status {
	case InvoiceDraft, InvoiceSent, InvoiceViewed, InvoicePaid, InvoiceOverdue, InvoiceCancelled:
		return nil
	}
	return errors.New("invoice: invalid status")
}

// BillStatus tracks the lifecycle of an incoming supplier bill.
type BillStatus string

const (
	BillDraft     BillStatus = "draft"
	BillOpen      BillStatus = "open"
	BillPaid      BillStatus = "paid"
	BillOverdue   BillStatus = "overdue"
	BillCancelled BillStatus = "cancelled"
)

// Bill is money the business owes a supplier.
type Bill struct {
	DocMeta
	Number     string     `json:"number"`
	ContactID  uuid.UUID  `json:"contact_id"`
	IssueDate  time.Time  `json:"issue_date"`
	DueDate    time.Time  `json:"due_date"`
	Currency   string     `json:"currency"`
	TotalMinor int64      `json:"total_minor"`
	Status     BillStatus `json:"status"`
}

func (b *Bill) Validate() error {
	if b.Currency == "" {
		return errors.New("bill: currency is required")
	}
	switch b.Status {
	case BillDraft, BillOpen, BillPaid, BillOverdue, BillCancelled:
		return nil
	}
	return errors.New("bill: invalid status")
}

// ExpenseStatus tracks the approval lifecycle of a submitted expense.
type ExpenseStatus string

const (
	ExpenseSubmitted  ExpenseStatus = "submitted"
	ExpenseApproved   ExpenseStatus = "approved"
	ExpenseRejected   ExpenseStatus = "rejected"
	ExpenseReimbursed ExpenseStatus = "reimbursed"
)

// Expense is an employee-submitted cost claim.
type Expense struct {
	DocMeta
	Description string        `json:"description"`
	SubmitDate  time.Time     `json:"submit_date"`
	Currency    string        `json:"currency"`
	AmountMinor int64         `json:"amount_minor"`
	Status      ExpenseStatus `json:"status"`
}

func (e *Expense) Validate() error {
	if e.Currency == "" {
		return errors.New("expense: currency is required")
	}
	switch e.Status {
	case ExpenseSubmitted, ExpenseApproved, ExpenseRejected, ExpenseReimbursed:
		return nil
	}
	return errors.New("expense: invalid status")
}

// BankAccount mirrors an external bank account; soft-deleted once referenced.
type BankAccount struct {
	DocMeta
	Name         string        `json:"name"`
	BankName     string        `json:"bank_name"`
	Number       string        `json:"number"`
	Currency     string        `json:"currency"`
	BalanceMinor int64         `json:"balance_minor"`
	Active       bool          `json:"active"`
	Metadata     meta.Metadata `json:"metadata,omitempty"`
}

func (b *BankAccount) Validate() error {
	if b.Name == "" {
		return errors.New("bank_account: name is required")
	}
	if b.Currency == "" {
		return errors.New("bank_account: currency is required")
	}
	return b.Metadata.Validate()
}

// Budget assigns a spending target to an account over a period.
type Budget struct {
	DocMeta
	Name          string    `json:"name"`
	AccountID     uuid.UUID `json:"account_id"`
	Currency      string    `json:"currency"`
	BudgetedMinor int64     `json:"budgeted_minor"`
	ActualMinor   int64     `json:"actual_minor"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
}

func (b *Budget) Validate() error {
	if b.Currency == "" {
		return errors.New("budget: currency is required")
	}
	if b.AccountID == uuid.Nil {
		return errors.New("budget: account_id is required")
	}
	return nil
}

// OverBudget reports whether actual spend exceeds the budgeted amount.
func (b Budget) OverBudget() bool { return b.ActualMinor > b.BudgetedMinor }

// Contact is a customer or supplier party.
type Contact struct {
	DocMeta
	Name     string        `json:"name"`
	Email    string        `json:"email,omitempty"`
	Phone    string        `json:"phone,omitempty"`
	Supplier bool          `json:"supplier"`
	Customer bool          `json:"customer"`
	Metadata meta.Metadata `json:"metadata,omitempty"`
}

func (c *Contact) Validate() error {
	if c.Name == "" {
		return errors.New("contact: name is required")
	}
	return c.Metadata.Validate()
}

// Currency declares an FX rate relative to the namespace base currency.
// The base currency itself carries rate numerator/denominator 1/1.
type Currency struct {
	DocMeta
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol,omitempty"`
	// Rate is expressed as a decimal string (e.g. "1.0839") relative to base.
	Rate string `json:"rate"`
	Base bool   `json:"base"`
}

func (c *Currency) Validate() error {
	if c.Code == "" {
		return errors.New("currency: code is required")
	}
	if c.Rate == "" {
		return errors.New("currency: rate is required")
	}
	return nil
}
