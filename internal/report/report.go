// Package report computes derived financial views as pure functions over
// already-fetched collections. Nothing here performs I/O; callers pass the
// documents and, where a calendar window applies, the reference time.
package report

import (
	"time"

	"github.com/govalues/decimal"

	"github.com/openbooks/ledger/internal/ledger"
)

// upcomingWindow is the look-ahead applied to bill due dates.
const upcomingWindow = 30 * 24 * time.Hour

// CashTotal sums the balances of active bank accounts, in minor units.
func CashTotal(accounts []ledger.BankAccount) int64 {
	var total int64
	for _, a := range accounts {
		if a.Active {
			total += a.BalanceMinor
		}
	}
	return total
}

// OutstandingInvoices sums invoice totals not yet collected. Cancelled
// invoices are not receivable and are excluded alongside paid ones.
func OutstandingInvoices(invoices []ledger.Invoice) int64 {
	var total int64
	for _, inv := range invoices {
		if inv.Status == ledger.InvoicePaid || inv.Status == ledger.InvoiceCancelled {
			continue
		}
		total += inv.TotalMinor
	}
	return total
}

// UpcomingBills sums unpaid bills due within the next thirty days of now.
func UpcomingBills(bills []ledger.Bill, now time.Time) int64 {
	horizon := now.Add(upcomingWindow)
	var total int64
	for _, b := range bills {
		if b.Status == ledger.BillPaid || b.Status == ledger.BillCancelled {
			continue
		}
		if b.DueDate.Before(now) || b.DueDate.After(horizon) {
			continue
		}
		total += b.TotalMinor
	}
	return total
}

// MonthlyExpenses sums approved expenses submitted in the calendar month
// containing now.
func MonthlyExpenses(expenses []ledger.Expense, now time.Time) int64 {
	y, m, _ := now.Date()
	var total int64
	for _, e := range expenses {
		if e.Status != ledger.ExpenseApproved {
			continue
		}
		ey, em, _ := e.SubmitDate.Date()
		if ey == y && em == m {
			total += e.AmountMinor
		}
	}
	return total
}

// OverdueInvoices returns unpaid invoices whose due date has passed.
func OverdueInvoices(invoices []ledger.Invoice, now time.Time) []ledger.Invoice {
	var out []ledger.Invoice
	for _, inv := range invoices {
		if inv.Status == ledger.InvoicePaid || inv.Status == ledger.InvoiceCancelled {
			continue
		}
		if inv.DueDate.Before(now) {
			out = append(out, inv)
		}
	}
	return out
}

// OverdueBills returns unpaid bills whose due date has passed.
func OverdueBills(bills []ledger.Bill, now time.Time) []ledger.Bill {
	var out []ledger.Bill
	for _, b := range bills {
		if b.Status == ledger.BillPaid || b.Status == ledger.BillCancelled {
			continue
		}
		if b.DueDate.Before(now) {
			out = append(out, b)
		}
	}
	return out
}

// ProfitAndLoss nets completed sale transactions against completed purchase
// transactions, in minor units. Other transaction types shift money between
// accounts without creating or consuming it and are ignored.
type ProfitAndLoss struct {
	RevenueMinor int64
	ExpenseMinor int64
	NetMinor     int64
}

// ComputeProfitAndLoss derives a P&L summary from transactions.
func ComputeProfitAndLoss(txns []ledger.Transaction) ProfitAndLoss {
	var pl ProfitAndLoss
	for _, t := range txns {
		if t.Status != ledger.TxStatusCompleted && t.Status != ledger.TxStatusReconciled {
			continue
		}
		switch t.Type {
		case ledger.TxTypeSale:
			pl.RevenueMinor += t.TotalMinor
		case ledger.TxTypePurchase:
			pl.ExpenseMinor += t.TotalMinor
		}
	}
	pl.NetMinor = pl.RevenueMinor - pl.ExpenseMinor
	return pl
}

// BudgetPerformance summarizes budget consumption across budget documents.
type BudgetPerformance struct {
	BudgetedMinor int64
	ActualMinor   int64
	// Ratio is actual/budgeted; zero when nothing is budgeted.
	Ratio      decimal.Decimal
	OverBudget int
}

// ComputeBudgetPerformance sums actual against budgeted spend and counts
// budgets already exceeded.
func ComputeBudgetPerformance(budgets []ledger.Budget) (BudgetPerformance, error) {
	var bp BudgetPerformance
	for _, b := range budgets {
		bp.BudgetedMinor += b.BudgetedMinor
		bp.ActualMinor += b.ActualMinor
		if b.OverBudget() {
			bp.OverBudget++
		}
	}
	if bp.BudgetedMinor == 0 {
		return bp, nil
	}
	actual, err := decimal.New(bp.ActualMinor, 0)
	if err != nil {
		return bp, err
	}
	budgeted, err := decimal.New(bp.BudgetedMinor, 0)
	if err != nil {
		return bp, err
	}
	ratio, err := actual.Quo(budgeted)
	if err != nil {
		return bp, err
	}
	bp.Ratio = ratio
	return bp, nil
}

// MonthFlow is one bucket of the trailing cash-flow series.
type MonthFlow struct {
	Year         int
	Month        time.Month
	InflowMinor  int64
	OutflowMinor int64
	NetMinor     int64
}

// CashFlowSeries buckets completed sale and purchase transactions into the
// n trailing calendar months ending with the month of now, oldest first.
func CashFlowSeries(txns []ledger.Transaction, n int, now time.Time) []MonthFlow {
	if n <= 0 {
		return nil
	}
	series := make([]MonthFlow, n)
	index := make(map[[2]int]*MonthFlow, n)
	y, m, _ := now.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(n - 1), 0)
	for i := 0; i < n; i++ {
		bucket := first.AddDate(0, i, 0)
		series[i] = MonthFlow{Year: bucket.Year(), Month: bucket.Month()}
		index[[2]int{bucket.Year(), int(bucket.Month())}] = &series[i]
	}
	for _, t := range txns {
		if t.Status != ledger.TxStatusCompleted && t.Status != ledger.TxStatusReconciled {
			continue
		}
		ty, tm, _ := t.Date.Date()
		flow, ok := index[[2]int{ty, int(tm)}]
		if !ok {
			continue
		}
		switch t.Type {
		case ledger.TxTypeSale:
			flow.InflowMinor += t.TotalMinor
		case ledger.TxTypePurchase:
			flow.OutflowMinor += t.TotalMinor
		}
	}
	for i := range series {
		series[i].NetMinor = series[i].InflowMinor - series[i].OutflowMinor
	}
	return series
}
