package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/openbooks/ledger/internal/report"
	"github.com/openbooks/ledger/internal/report/fx"
)

func (s *Server) reportSummary(w http.ResponseWriter, r *http.Request) {
	ns := namespace(r)
	ctx := r.Context()
	now := s.now().UTC()

	banks, err := s.deps.Views.BankAccounts.Get(ctx, ns)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	invoices, err := s.deps.Views.Invoices.Get(ctx, ns)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	bills, err := s.deps.Views.Bills.Get(ctx, ns)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	expenses, err := s.deps.Views.Expenses.Get(ctx, ns)
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	toJSON(w, http.StatusOK, summaryResponse{
		CashMinor:                report.CashTotal(banks),
		OutstandingInvoicesMinor: report.OutstandingInvoices(invoices),
		UpcomingBillsMinor:       report.UpcomingBills(bills, now),
		MonthlyExpensesMinor:     report.MonthlyExpenses(expenses, now),
	})
}

func (s *Server) reportProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	txns, err := s.deps.Views.Transactions.Get(r.Context(), namespace(r))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	pl := report.ComputeProfitAndLoss(txns)
	toJSON(w, http.StatusOK, pnlResponse{
		RevenueMinor: pl.RevenueMinor,
		ExpenseMinor: pl.ExpenseMinor,
		NetMinor:     pl.NetMinor,
	})
}

func (s *Server) reportBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.deps.Views.Budgets.Get(r.Context(), namespace(r))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	bp, err := report.ComputeBudgetPerformance(budgets)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, budgetsResponse{
		BudgetedMinor: bp.BudgetedMinor,
		ActualMinor:   bp.ActualMinor,
		Ratio:         bp.Ratio.String(),
		OverBudget:    bp.OverBudget,
	})
}

func (s *Server) reportCashFlow(w http.ResponseWriter, r *http.Request) {
	months := 6
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 36 {
			badRequest(w, "months must be between 1 and 36")
			return
		}
		months = n
	}
	txns, err := s.deps.Views.Transactions.Get(r.Context(), namespace(r))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	series := report.CashFlowSeries(txns, months, s.now().UTC())
	out := make([]cashFlowMonth, 0, len(series))
	for _, m := range series {
		out = append(out, cashFlowMonth{
			Year:         m.Year,
			Month:        m.Month.String(),
			InflowMinor:  m.InflowMinor,
			OutflowMinor: m.OutflowMinor,
			NetMinor:     m.NetMinor,
		})
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) reportOverdue(w http.ResponseWriter, r *http.Request) {
	ns := namespace(r)
	ctx := r.Context()
	now := s.now().UTC()

	invoices, err := s.deps.Views.Invoices.Get(ctx, ns)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	bills, err := s.deps.Views.Bills.Get(ctx, ns)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, overdueResponse{
		Invoices: report.OverdueInvoices(invoices, now),
		Bills:    report.OverdueBills(bills, now),
	})
}

func (s *Server) convertCurrency(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := strconv.ParseInt(q.Get("amount_minor"), 10, 64)
	if err != nil {
		badRequest(w, "amount_minor must be an integer")
		return
	}
	from := strings.ToUpper(q.Get("from"))
	to := strings.ToUpper(q.Get("to"))
	if len(from) != 3 || len(to) != 3 {
		badRequest(w, "from and to must be three-letter currency codes")
		return
	}
	ns := namespace(r)
	currencies, err := s.deps.Currencies.List(r.Context(), ns)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	converter, err := fx.New(s.deps.BaseCurrency, currencies, s.deps.FXPolicy, s.log)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	converted, err := converter.ConvertMinor(amount, from, to)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, convertResponse{
		AmountMinor:    amount,
		From:           from,
		To:             to,
		ConvertedMinor: converted,
	})
}
