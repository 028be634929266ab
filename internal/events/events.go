// Package events defines the outbound event contract for balance
// reconciliations. Publishing is best-effort: a failed publish is logged by
// the caller and never fails the originating request.
package events

import (
	"context"
	"time"
)

// Reconciled describes one applied balance adjustment.
type Reconciled struct {
	EntryID    string    `json:"entry_id"`
	Kind       string    `json:"kind"`
	Op         string    `json:"op"` // create | update | delete
	Account    string    `json:"account"`
	Delta      string    `json:"delta"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits reconciliation events to an external broker.
type Publisher interface {
	Publish(ctx context.Context, ev Reconciled) error
	Close() error
}

// Nop is a Publisher that discards everything; used when no broker is
// configured and in tests.
type Nop struct{}

func (Nop) Publish(context.Context, Reconciled) error { return nil }
func (Nop) Close() error                              { return nil }
