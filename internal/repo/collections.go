package repo

import (
	"github.com/openbooks/ledger/internal/docstore"
	"github.com/openbooks/ledger/internal/ledger"
)

// Constructors for the plain CRUD collections. None of these enforce
// cross-entity invariants; lifecycle rules live in their status enums.

func NewBills(store docstore.Store) *Collection[ledger.Bill, *ledger.Bill] {
	return NewCollection[ledger.Bill, *ledger.Bill](store, "bills")
}

func NewInvoices(store docstore.Store) *Collection[ledger.Invoice, *ledger.Invoice] {
	return NewCollection[ledger.Invoice, *ledger.Invoice](store, "invoices")
}

func NewExpenses(store docstore.Store) *Collection[ledger.Expense, *ledger.Expense] {
	return NewCollection[ledger.Expense, *ledger.Expense](store, "expenses")
}

func NewBankAccounts(store docstore.Store) *Collection[ledger.BankAccount, *ledger.BankAccount] {
	return NewCollection[ledger.BankAccount, *ledger.BankAccount](store, "bank_accounts")
}

func NewBudgets(store docstore.Store) *Collection[ledger.Budget, *ledger.Budget] {
	return NewCollection[ledger.Budget, *ledger.Budget](store, "budgets")
}

func NewContacts(store docstore.Store) *Collection[ledger.Contact, *ledger.Contact] {
	return NewCollection[ledger.Contact, *ledger.Contact](store, "contacts")
}

func NewCurrencies(store docstore.Store) *Collection[ledger.Currency, *ledger.Currency] {
	return NewCollection[ledger.Currency, *ledger.Currency](store, "currencies")
}
