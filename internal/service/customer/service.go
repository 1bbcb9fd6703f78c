package customer

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"estatecrm/internal/domain"
	"estatecrm/internal/export"
	"estatecrm/internal/metrics"
	"estatecrm/internal/notify"
	"estatecrm/internal/pipeline"
	"estatecrm/internal/store"
	remote "estatecrm/internal/sync"

	"github.com/google/uuid"
)

var (
	// ErrSyncUnavailable is returned when no remote provider is
	// configured or the user is not signed in against it.
	ErrSyncUnavailable = errors.New("remote sync unavailable")
	// ErrExportUnavailable is returned when no blob store is configured.
	ErrExportUnavailable = errors.New("snapshot export unavailable")
)

// Service orchestrates the record store, pipeline machine, change
// notifier and sync adapter. All dependencies are injected; the store
// stays authoritative and available even when every optional
// collaborator is absent.
type Service struct {
	store     store.Store
	notifier  notify.Notifier
	remote    remote.Provider
	exporter  *export.Exporter
	metrics   *metrics.Metrics
	logger    *log.Logger
	contextID string
	onRefresh func([]domain.CustomerRecord)
}

// New wires a Service. notifier, provider and exporter may be the
// degraded implementations (notify.Nop, sync.Unavailable, nil).
func New(st store.Store, notifier notify.Notifier, provider remote.Provider, exporter *export.Exporter, m *metrics.Metrics, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if provider == nil {
		provider = remote.Unavailable{}
	}
	if m == nil {
		m = metrics.New(nil)
	}
	return &Service{
		store:     st,
		notifier:  notifier,
		remote:    provider,
		exporter:  exporter,
		metrics:   m,
		logger:    logger,
		contextID: uuid.NewString(),
	}
}

// ContextID identifies this process on the change channel.
func (s *Service) ContextID() string { return s.contextID }

// OnRefresh registers a hook invoked with the re-read record set after
// an accepted cross-context change event. Register it before calling
// Subscribe; the field is written without synchronization and must not
// change once events can be delivered.
func (s *Service) OnRefresh(fn func([]domain.CustomerRecord)) { s.onRefresh = fn }

// List returns all records in insertion order.
func (s *Service) List() ([]domain.CustomerRecord, error) {
	return s.store.GetAll()
}

// Active returns the records still in play.
func (s *Service) Active() ([]domain.CustomerRecord, error) {
	return s.store.GetActive()
}

// Get returns one record or domain.ErrNotFound.
func (s *Service) Get(id string) (domain.CustomerRecord, error) {
	return s.store.GetByID(id)
}

// Upsert validates and persists the record, then tells other contexts.
func (s *Service) Upsert(ctx context.Context, record domain.CustomerRecord) (domain.CustomerRecord, error) {
	stored, err := s.store.Upsert(record)
	if err != nil {
		return domain.CustomerRecord{}, err
	}
	s.metrics.Upserts.Inc()
	s.publish(ctx, notify.ChangeUpsert, stored.ID)
	return stored, nil
}

// Transition moves a record to the target pipeline stage. Unknown
// stages are rejected with *domain.InvalidStateError and the record is
// left untouched.
func (s *Service) Transition(ctx context.Context, id string, target domain.Stage) (domain.CustomerRecord, error) {
	record, err := s.store.GetByID(id)
	if err != nil {
		return domain.CustomerRecord{}, err
	}
	next, err := pipeline.Transition(record, target)
	if err != nil {
		return domain.CustomerRecord{}, err
	}
	stored, err := s.store.Upsert(next)
	if err != nil {
		return domain.CustomerRecord{}, err
	}
	s.metrics.Transitions.Inc()
	s.publish(ctx, notify.ChangeUpsert, stored.ID)
	return stored, nil
}

// Archive soft-deletes a record, the preferred alternative to Delete.
func (s *Service) Archive(ctx context.Context, id string) (domain.CustomerRecord, error) {
	return s.setArchived(ctx, id, pipeline.Archive)
}

// Unarchive brings an archived record back into the active set.
func (s *Service) Unarchive(ctx context.Context, id string) (domain.CustomerRecord, error) {
	return s.setArchived(ctx, id, pipeline.Unarchive)
}

func (s *Service) setArchived(ctx context.Context, id string, apply func(domain.CustomerRecord) domain.CustomerRecord) (domain.CustomerRecord, error) {
	record, err := s.store.GetByID(id)
	if err != nil {
		return domain.CustomerRecord{}, err
	}
	next := apply(record)
	next.UpdatedAt = time.Time{} // stamp fresh
	stored, err := s.store.Restore(next)
	if err != nil {
		return domain.CustomerRecord{}, err
	}
	s.metrics.Upserts.Inc()
	s.publish(ctx, notify.ChangeUpsert, stored.ID)
	return stored, nil
}

// Delete removes a record for good. Idempotent.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := s.store.Delete(id)
	if err != nil {
		return false, err
	}
	if removed {
		s.metrics.Deletes.Inc()
		s.publish(ctx, notify.ChangeDelete, id)
	}
	return removed, nil
}

// ReconcileResult summarizes one reconciliation pass.
type ReconcileResult struct {
	Added   int           `json:"added"`
	Updated int           `json:"updated"`
	Push    remote.Result `json:"push"`
}

// Reconcile pulls the remote record set, merges it into the local
// store (last write wins on updatedAt, local wins ties), then pushes
// the merged set back. Remote failures never touch local data.
func (s *Service) Reconcile(ctx context.Context) (ReconcileResult, error) {
	if !s.remote.Available() {
		return ReconcileResult{}, ErrSyncUnavailable
	}

	remoteRecords, err := s.remote.PullAll(ctx)
	if err != nil {
		return ReconcileResult{}, err
	}

	local, err := s.store.GetAll()
	if err != nil {
		return ReconcileResult{}, err
	}
	localByID := make(map[string]domain.CustomerRecord, len(local))
	for _, r := range local {
		localByID[r.ID] = r
	}

	result := ReconcileResult{}
	for _, rr := range remoteRecords {
		lr, exists := localByID[rr.ID]
		if !exists {
			// Remote-only records are added locally, never the other
			// way around: local-only records are push candidates.
			if _, err := s.store.Restore(rr); err != nil {
				s.logger.Printf("reconcile: adding remote id=%s failed: %v", rr.ID, err)
				continue
			}
			result.Added++
			continue
		}
		if rr.UpdatedAt.After(lr.UpdatedAt) {
			if _, err := s.store.Restore(rr); err != nil {
				s.logger.Printf("reconcile: updating from remote id=%s failed: %v", rr.ID, err)
				continue
			}
			result.Updated++
		}
		// Local wins ties and newer local copies; the push below
		// brings the remote side up to date.
	}

	merged, err := s.store.GetAll()
	if err != nil {
		return result, err
	}
	result.Push = s.remote.PushAll(ctx, merged)
	if n := len(result.Push.Failed); n > 0 {
		s.metrics.SyncPushFailures.Add(float64(n))
		s.logger.Printf("reconcile: %d record(s) failed to push", n)
	}

	if result.Added > 0 || result.Updated > 0 {
		s.publish(ctx, notify.ChangeBulk)
	}
	return result, nil
}

// Export writes a CSV snapshot of the record set and returns its key.
func (s *Service) Export(ctx context.Context) (string, error) {
	if s.exporter == nil {
		return "", ErrExportUnavailable
	}
	records, err := s.store.GetAll()
	if err != nil {
		return "", err
	}
	return s.exporter.Snapshot(ctx, records)
}

// Subscribe starts consuming cross-context change events until ctx is
// done. Safe to call with a Nop notifier.
func (s *Service) Subscribe(ctx context.Context) {
	s.notifier.Subscribe(ctx, s.HandleEvent)
}

// HandleEvent processes one incoming change event: self-originated
// events are dropped, anything else triggers a full re-read of the
// record store (eventual convergence by re-read, not event replay).
func (s *Service) HandleEvent(event notify.Event) {
	if event.Origin == s.contextID {
		return
	}
	s.metrics.EventsReceived.Inc()
	records, err := s.store.GetAll()
	if err != nil {
		s.logger.Printf("refresh after %s event failed: %v", event.ChangeType, err)
		return
	}
	s.logger.Printf("change event %s from context %s, %d record(s) after re-read", event.ChangeType, event.Origin, len(records))
	if s.onRefresh != nil {
		s.onRefresh(records)
	}
}

func (s *Service) publish(ctx context.Context, changeType string, ids ...string) {
	if !s.notifier.Available() {
		return
	}
	event := notify.Event{
		ChangeType:  changeType,
		AffectedIDs: ids,
		Origin:      s.contextID,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.Printf("publish %s event failed: %v", changeType, err)
	}
}
