// Package dictionary holds the curated chart of accounts seeded into a fresh
// namespace. Every entry is a system account and therefore exempt from
// ordinary deletion.
package dictionary

import "github.com/openbooks/ledger/internal/ledger"

// AccountDef describes one seeded chart-of-accounts entry.
type AccountDef struct {
	Code    string                `json:"code"`
	Name    string                `json:"name"`
	Type    ledger.AccountType    `json:"type"`
	SubType ledger.AccountSubType `json:"sub_type"`
}

var chart = []AccountDef{
	{Code: "1000", Name: "Cash", Type: ledger.AccountTypeAsset, SubType: ledger.SubTypeCash},
	{Code: "1100", Name: "Accounts Receivable", Type: ledger.AccountTypeAsset, SubType: ledger.SubTypeAccountsReceivable},
	{Code: "1200", Name: "Inventory", Type: ledger.AccountTypeAsset, SubType: ledger.SubTypeInventory},
	{Code: "2000", Name: "Accounts Payable", Type: ledger.AccountTypeLiability, SubType: ledger.SubTypeAccountsPayable},
	{Code: "2100", Name: "Tax Payable", Type: ledger.AccountTypeLiability, SubType: ledger.SubTypeTaxPayable},
	{Code: "3000", Name: "Owner Equity", Type: ledger.AccountTypeEquity, SubType: ledger.SubTypeOwnerEquity},
	{Code: "3100", Name: "Retained Earnings", Type: ledger.AccountTypeEquity, SubType: ledger.SubTypeRetainedEarnings},
	{Code: "4000", Name: "Sales Revenue", Type: ledger.AccountTypeRevenue, SubType: ledger.SubTypeOperatingRevenue},
	{Code: "5000", Name: "Cost of Goods Sold", Type: ledger.AccountTypeExpense, SubType: ledger.SubTypeCostOfGoodsSold},
	{Code: "6000", Name: "Rent Expense", Type: ledger.AccountTypeExpense, SubType: ledger.SubTypeOperatingExpense},
	{Code: "6100", Name: "Utilities Expense", Type: ledger.AccountTypeExpense, SubType: ledger.SubTypeOperatingExpense},
	{Code: "6200", Name: "Salaries Expense", Type: ledger.AccountTypeExpense, SubType: ledger.SubTypeOperatingExpense},
}

// Chart returns the seed definitions in stable order.
func Chart() []AccountDef {
	out := make([]AccountDef, len(chart))
	copy(out, chart)
	return out
}

// IsChartCode reports whether code belongs to the seeded chart.
func IsChartCode(code string) bool {
	for _, d := range chart {
		if d.Code == code {
			return true
		}
	}
	return false
}
