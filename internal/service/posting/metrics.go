package posting

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transactionsPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "transactions_posted_total",
			Help:      "Transactions successfully posted with balances applied",
		},
		[]string{"type"},
	)
	postingConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "posting_conflicts_total",
			Help:      "Optimistic-concurrency conflicts hit while applying balances",
		},
	)
	pendingReconciled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "pending_reconciled_total",
			Help:      "Pending transactions finished or voided by the reconciler",
		},
		[]string{"outcome"},
	)
)
