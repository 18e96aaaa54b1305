// Package notify is the best-effort event side-channel. Events describe what
// happened to an entity; delivery failure never rolls back or fails the
// ledger operation that produced the event.
package notify

import (
	"context"
	"log/slog"
)

// Priority orders events for downstream consumers.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Event is the structured payload published after a successful mutation.
type Event struct {
	Domain   string   `json:"domain"`
	Action   string   `json:"action"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	EntityID string   `json:"entity_id"`
	Priority Priority `json:"priority"`
	Category string   `json:"category"`
}

// Publisher delivers events. Implementations must be fire-and-forget safe:
// callers ignore the outcome.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// LogPublisher emits events as structured log lines. It stands in for a real
// message bus without changing the producer contract.
type LogPublisher struct {
	log *slog.Logger
}

// NewLogPublisher constructs a publisher over the given logger.
func NewLogPublisher(log *slog.Logger) *LogPublisher { return &LogPublisher{log: log} }

func (p *LogPublisher) Publish(_ context.Context, e Event) {
	p.log.Info("event published",
		"domain", e.Domain,
		"action", e.Action,
		"title", e.Title,
		"entity_id", e.EntityID,
		"priority", string(e.Priority),
		"category", e.Category,
	)
}

// Discard drops every event. Useful in tests.
type Discard struct{}

func (Discard) Publish(context.Context, Event) {}
