package posting

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks/ledger/internal/errs"
	"github.com/openbooks/ledger/internal/ledger"
)

// ReconcileReport summarizes one reconciliation sweep.
type ReconcileReport struct {
	Completed []uuid.UUID
	Voided    []uuid.UUID
}

// Reconcile finds transactions that were persisted but whose balance effects
// never applied (crashed, cancelled or timed-out posts) and finishes them
// when every referenced account still exists, or voids them when the failure
// is permanent (account missing, archived or in another currency). Transient
// errors abort the sweep and leave the rest of the backlog for the next run.
// Pending status implies balances were not applied: the completing
// batch flips the status in the same atomic write as the balances.
func (s *service) Reconcile(ctx context.Context, ns string, olderThan time.Duration) (ReconcileReport, error) {
	var report ReconcileReport
	cutoff := s.now().UTC().Add(-olderThan)
	stale, err := s.txns.ListPendingBefore(ctx, ns, cutoff)
	if err != nil {
		return report, err
	}
	for i := range stale {
		tx := stale[i]
		release := s.locks.acquire(lockKeys(ns, tx.Entries))
		err := s.applyBalances(ctx, ns, &tx)
		release()
		switch {
		case err == nil:
			report.Completed = append(report.Completed, tx.ID)
			pendingReconciled.WithLabelValues("completed").Inc()
		case errors.Is(err, errs.ErrAccountNotFound), errors.Is(err, errs.ErrAccountArchived),
			errors.Is(err, errs.ErrCurrencyMismatch):
			// Permanent validation failures: re-running the sweep can never
			// finish these, so void rather than wedge the namespace.
			if err := s.txns.UpdateStatus(ctx, ns, tx.ID, ledger.TxStatusCancelled); err != nil {
				return report, err
			}
			report.Voided = append(report.Voided, tx.ID)
			pendingReconciled.WithLabelValues("voided").Inc()
			s.log.Warn("pending transaction voided",
				"namespace", ns, "transaction_id", tx.ID.String(), "reason", err.Error())
		default:
			return report, err
		}
	}
	if len(report.Completed)+len(report.Voided) > 0 {
		s.log.Info("reconciliation sweep finished",
			"namespace", ns,
			"completed", len(report.Completed),
			"voided", len(report.Voided),
		)
	}
	return report, nil
}
