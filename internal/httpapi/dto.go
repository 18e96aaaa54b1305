package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/openbooks/ledger/internal/ledger"
)

type createAccountRequest struct {
	Code     string            `json:"code"`
	Name     string            `json:"name" validate:"required"`
	Type     string            `json:"type" validate:"required,oneof=asset liability equity revenue expense"`
	SubType  string            `json:"sub_type,omitempty"`
	Currency string            `json:"currency" validate:"required,len=3"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type updateAccountRequest struct {
	Code         *string           `json:"code,omitempty"`
	Name         *string           `json:"name,omitempty"`
	SubType      *string           `json:"sub_type,omitempty"`
	Archived     *bool             `json:"archived,omitempty"`
	BalanceMinor *int64            `json:"balance_minor,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type seedAccountsRequest struct {
	Currency string `json:"currency" validate:"required,len=3"`
}

type accountResponse struct {
	ID           uuid.UUID         `json:"id"`
	Code         string            `json:"code"`
	Name         string            `json:"name"`
	Type         string            `json:"type"`
	SubType      string            `json:"sub_type,omitempty"`
	Currency     string            `json:"currency"`
	BalanceMinor int64             `json:"balance_minor"`
	Balance      string            `json:"balance"`
	System       bool              `json:"system"`
	Archived     bool              `json:"archived"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func toAccountResponse(a ledger.Account) accountResponse {
	balance := ""
	if amt, err := a.Balance(); err == nil {
		balance = amt.String()
	}
	return accountResponse{
		ID:           a.ID,
		Code:         a.Code,
		Name:         a.Name,
		Type:         string(a.Type),
		SubType:      string(a.SubType),
		Currency:     a.Currency,
		BalanceMinor: a.BalanceMinor,
		Balance:      balance,
		System:       a.System,
		Archived:     a.Archived,
		Metadata:     a.Metadata,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

type postTransactionRequest struct {
	Number   string                 `json:"number,omitempty"`
	Date     time.Time              `json:"date,omitempty"`
	Type     string                 `json:"type" validate:"required,oneof=sale purchase payment receipt transfer adjustment opening_balance"`
	Currency string                 `json:"currency" validate:"required,len=3"`
	Metadata map[string]string      `json:"metadata,omitempty"`
	Entries  []postTransactionEntry `json:"entries" validate:"required,min=1,dive"`
}

type postTransactionEntry struct {
	AccountID   uuid.UUID `json:"account_id" validate:"required"`
	DebitMinor  int64     `json:"debit_minor" validate:"gte=0"`
	CreditMinor int64     `json:"credit_minor" validate:"gte=0"`
	Description string    `json:"description,omitempty"`
}

type entryResponse struct {
	ID          uuid.UUID `json:"id"`
	AccountID   uuid.UUID `json:"account_id"`
	DebitMinor  int64     `json:"debit_minor"`
	CreditMinor int64     `json:"credit_minor"`
	Description string    `json:"description,omitempty"`
}

type transactionResponse struct {
	ID         uuid.UUID         `json:"id"`
	Number     string            `json:"number"`
	Date       time.Time         `json:"date"`
	Type       string            `json:"type"`
	Status     string            `json:"status"`
	Currency   string            `json:"currency"`
	TotalMinor int64             `json:"total_minor"`
	Total      string            `json:"total"`
	Entries    []entryResponse   `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func toTransactionResponse(t ledger.Transaction) transactionResponse {
	total := ""
	if amt, err := t.Total(); err == nil {
		total = amt.String()
	}
	entries := make([]entryResponse, 0, len(t.Entries))
	for _, e := range t.Entries {
		entries = append(entries, entryResponse{
			ID:          e.ID,
			AccountID:   e.AccountID,
			DebitMinor:  e.DebitMinor,
			CreditMinor: e.CreditMinor,
			Description: e.Description,
		})
	}
	return transactionResponse{
		ID:         t.ID,
		Number:     t.Number,
		Date:       t.Date,
		Type:       string(t.Type),
		Status:     string(t.Status),
		Currency:   t.Currency,
		TotalMinor: t.TotalMinor,
		Total:      total,
		Entries:    entries,
		Metadata:   t.Metadata,
		CreatedAt:  t.CreatedAt,
	}
}

type deleteAccountResponse struct {
	Archived bool `json:"archived"`
	Deleted  bool `json:"deleted"`
}

type reconcileResponse struct {
	Completed []uuid.UUID `json:"completed"`
	Voided    []uuid.UUID `json:"voided"`
}

type summaryResponse struct {
	CashMinor                int64 `json:"cash_minor"`
	OutstandingInvoicesMinor int64 `json:"outstanding_invoices_minor"`
	UpcomingBillsMinor       int64 `json:"upcoming_bills_minor"`
	MonthlyExpensesMinor     int64 `json:"monthly_expenses_minor"`
}

type pnlResponse struct {
	RevenueMinor int64 `json:"revenue_minor"`
	ExpenseMinor int64 `json:"expense_minor"`
	NetMinor     int64 `json:"net_minor"`
}

type budgetsResponse struct {
	BudgetedMinor int64  `json:"budgeted_minor"`
	ActualMinor   int64  `json:"actual_minor"`
	Ratio         string `json:"ratio"`
	OverBudget    int    `json:"over_budget"`
}

type cashFlowMonth struct {
	Year         int    `json:"year"`
	Month        string `json:"month"`
	InflowMinor  int64  `json:"inflow_minor"`
	OutflowMinor int64  `json:"outflow_minor"`
	NetMinor     int64  `json:"net_minor"`
}

type overdueResponse struct {
	Invoices []ledger.Invoice `json:"invoices"`
	Bills    []ledger.Bill    `json:"bills"`
}

type convertResponse struct {
	AmountMinor    int64  `json:"amount_minor"`
	From           string `json:"from"`
	To             string `json:"to"`
	ConvertedMinor int64  `json:"converted_minor"`
}
