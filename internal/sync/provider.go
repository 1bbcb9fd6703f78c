package sync

import (
	"context"

	"estatecrm/internal/domain"
)

// Failure reports why one record could not be mirrored remotely.
type Failure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Result is the per-record outcome of a push. Partial failure is the
// expected case and never aborts the batch.
type Result struct {
	Succeeded []string  `json:"succeeded"`
	Failed    []Failure `json:"failed"`
}

// Provider mirrors the canonical record set to a remote store, best
// effort and only when the user is signed in against the remote side.
// Resolved once at startup; a failing provider must never block local
// reads or writes.
type Provider interface {
	// Available reports whether remote sync can be attempted at all.
	Available() bool
	// PushAll attempts to write every record, reporting success and
	// failure per record.
	PushAll(ctx context.Context, records []domain.CustomerRecord) Result
	// PullAll fetches the remote record set. Reconciling it against
	// local records is the caller's job.
	PullAll(ctx context.Context) ([]domain.CustomerRecord, error)
}

// Unavailable is the provider used when no remote store is configured
// or the user is signed out.
type Unavailable struct{}

func (Unavailable) Available() bool { return false }

func (Unavailable) PushAll(_ context.Context, records []domain.CustomerRecord) Result {
	result := Result{}
	for _, r := range records {
		result.Failed = append(result.Failed, Failure{ID: r.ID, Reason: "remote sync unavailable"})
	}
	return result
}

func (Unavailable) PullAll(context.Context) ([]domain.CustomerRecord, error) {
	return nil, nil
}
