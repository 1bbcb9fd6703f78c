package notify

import (
	"context"
	"time"
)

// Change types carried in event envelopes.
const (
	ChangeUpsert = "upsert"
	ChangeDelete = "delete"
	ChangeBulk   = "bulk"
)

// Event tells sibling contexts that the canonical record set changed.
// Receivers must treat it as "something changed, re-read the store",
// never as a diff to replay; no ordering is guaranteed across contexts.
type Event struct {
	ChangeType  string    `json:"changeType"`
	AffectedIDs []string  `json:"affectedIds,omitempty"`
	Origin      string    `json:"originContextId"`
	Timestamp   time.Time `json:"timestamp"`
}

// Notifier propagates change events between contexts sharing the same
// storage. Implementations are best effort: a lost event only delays
// convergence until the next explicit read.
type Notifier interface {
	// Available reports whether the broadcast transport is usable.
	Available() bool
	// Publish broadcasts the event to all other contexts.
	Publish(ctx context.Context, event Event) error
	// Subscribe invokes handler for every incoming event until ctx is
	// done. Handlers receive their own events too; filtering by origin
	// is the receiver's job.
	Subscribe(ctx context.Context, handler func(Event))
}

// Nop is the degraded notifier for single-context or headless runs:
// publishes vanish and no events arrive. Documented, acceptable
// degradation rather than an error.
type Nop struct{}

func (Nop) Available() bool                        { return false }
func (Nop) Publish(context.Context, Event) error   { return nil }
func (Nop) Subscribe(context.Context, func(Event)) {}
