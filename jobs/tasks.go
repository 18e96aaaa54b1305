// Package jobs runs background work over Asynq: the periodic reconciliation
// sweep that finishes or voids pending transactions.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/openbooks/ledger/internal/service/posting"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReconcile sweeps pending transactions in one namespace.
	TaskReconcile = "ledger:reconcile"
)

// ReconcilePayload selects the namespace and staleness threshold to sweep.
type ReconcilePayload struct {
	Namespace string        `json:"namespace"`
	OlderThan time.Duration `json:"older_than"`
}

// NewReconcileTask constructs an Asynq task.
func NewReconcileTask(payload ReconcilePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconcile, data), nil
}

// NewReconcileHandler processes TaskReconcile tasks against the posting
// engine.
func NewReconcileHandler(svc posting.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ReconcilePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.Namespace == "" {
			return asynq.SkipRetry
		}
		if payload.OlderThan <= 0 {
			payload.OlderThan = 10 * time.Minute
		}
		report, err := svc.Reconcile(ctx, payload.Namespace, payload.OlderThan)
		if err != nil {
			return err
		}
		logger.Info("reconcile task finished",
			"namespace", payload.Namespace,
			"completed", len(report.Completed),
			"voided", len(report.Voided),
		)
		return nil
	}
}
