package store

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"estatecrm/internal/domain"
	"estatecrm/internal/pipeline"

	"github.com/google/uuid"
)

type localStore struct {
	kv     KV
	logger *log.Logger
	now    func() time.Time
}

// NewLocal returns a Store persisting through the given key-value
// backend under CanonicalKey.
func NewLocal(kv KV, logger *log.Logger) Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &localStore{kv: kv, logger: logger, now: time.Now}
}

func (s *localStore) GetAll() ([]domain.CustomerRecord, error) {
	return s.read()
}

func (s *localStore) GetByID(id string) (domain.CustomerRecord, error) {
	records, err := s.read()
	if err != nil {
		return domain.CustomerRecord{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r.Clone(), nil
		}
	}
	return domain.CustomerRecord{}, domain.ErrNotFound
}

func (s *localStore) GetActive() ([]domain.CustomerRecord, error) {
	records, err := s.read()
	if err != nil {
		return nil, err
	}
	active := make([]domain.CustomerRecord, 0, len(records))
	for _, r := range records {
		if r.IsActive {
			active = append(active, r)
		}
	}
	return active, nil
}

func (s *localStore) Upsert(record domain.CustomerRecord) (domain.CustomerRecord, error) {
	return s.apply(record, false)
}

// Restore behaves like Upsert but keeps caller-supplied timestamps,
// so bulk seed/restore and sync reconciliation do not rewrite history.
func (s *localStore) Restore(record domain.CustomerRecord) (domain.CustomerRecord, error) {
	return s.apply(record, true)
}

func (s *localStore) apply(record domain.CustomerRecord, keepTimestamps bool) (domain.CustomerRecord, error) {
	next := normalize(record)
	if err := validate(next); err != nil {
		return domain.CustomerRecord{}, err
	}
	if next.ID == "" {
		next.ID = uuid.NewString()
	}

	records, err := s.read()
	if err != nil {
		return domain.CustomerRecord{}, err
	}

	idx := -1
	for i, r := range records {
		if r.ID == next.ID {
			idx = i
			break
		}
	}

	now := s.now().UTC()
	if idx >= 0 {
		prev := records[idx]
		next.CreatedAt = prev.CreatedAt
		if keepTimestamps && !next.UpdatedAt.IsZero() {
			next.UpdatedAt = monotonic(prev.UpdatedAt, next.UpdatedAt.UTC())
		} else {
			next.UpdatedAt = monotonic(prev.UpdatedAt, now)
		}
		prevActive := prev.IsActive
		if keepTimestamps {
			// Restored records carry their own activation flag.
			prevActive = record.IsActive
		}
		next.IsActive = pipeline.Activation(prev.PipelineStatus, next.PipelineStatus, prevActive)
		records[idx] = next
	} else {
		if keepTimestamps && !next.CreatedAt.IsZero() {
			next.CreatedAt = next.CreatedAt.UTC()
		} else {
			next.CreatedAt = now
		}
		if keepTimestamps && !next.UpdatedAt.IsZero() {
			next.UpdatedAt = next.UpdatedAt.UTC()
		} else {
			next.UpdatedAt = now
		}
		next.IsActive = !next.PipelineStatus.Terminal()
		if keepTimestamps && !record.IsActive && !next.PipelineStatus.Terminal() {
			next.IsActive = false
		}
		records = append(records, next)
	}

	if err := s.persist(records); err != nil {
		return domain.CustomerRecord{}, err
	}
	return next.Clone(), nil
}

func (s *localStore) Delete(id string) (bool, error) {
	records, err := s.read()
	if err != nil {
		return false, err
	}
	kept := records[:0]
	removed := false
	for _, r := range records {
		if r.ID == id {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	if !removed {
		return false, nil
	}
	if err := s.persist(kept); err != nil {
		return false, err
	}
	return true, nil
}

// read loads the canonical key. Corrupt payloads degrade to "no data"
// with a logged diagnostic; only backend unavailability is an error.
func (s *localStore) read() ([]domain.CustomerRecord, error) {
	raw, err := s.kv.Get(CanonicalKey)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeRecords(raw, CanonicalKey, s.logger), nil
}

func (s *localStore) persist(records []domain.CustomerRecord) error {
	if records == nil {
		records = []domain.CustomerRecord{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return &domain.StorageError{Op: "encode " + CanonicalKey, Err: err}
	}
	return s.kv.Set(CanonicalKey, raw)
}

// decodeRecords decodes a stored JSON array, skipping entries that do
// not parse instead of failing the whole read.
func decodeRecords(raw []byte, key string, logger *log.Logger) []domain.CustomerRecord {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		logger.Printf("store: key %s holds malformed data, treating as empty: %v", key, err)
		return nil
	}
	records := make([]domain.CustomerRecord, 0, len(entries))
	for i, entry := range entries {
		var r domain.CustomerRecord
		if err := json.Unmarshal(entry, &r); err != nil {
			logger.Printf("store: key %s entry %d corrupt, skipped: %v", key, i, err)
			continue
		}
		if r.ID == "" {
			logger.Printf("store: key %s entry %d has no id, skipped", key, i)
			continue
		}
		records = append(records, r)
	}
	return records
}

func normalize(record domain.CustomerRecord) domain.CustomerRecord {
	next := record.Clone()
	next.ID = strings.TrimSpace(next.ID)
	next.Name = strings.TrimSpace(next.Name)
	next.Email = strings.TrimSpace(strings.ToLower(next.Email))
	next.Phone = strings.TrimSpace(next.Phone)
	if next.PipelineStatus == "" {
		next.PipelineStatus = domain.Stages[0]
	}
	return next
}

func validate(record domain.CustomerRecord) error {
	if !record.PipelineStatus.Valid() {
		return &domain.ValidationError{Field: "pipelineStatus", Reason: "unknown stage " + string(record.PipelineStatus)}
	}
	if record.Name == "" && record.Email == "" {
		return &domain.ValidationError{Field: "name", Reason: "at least one of name or email is required"}
	}
	min, max := record.Preferences.BudgetMin, record.Preferences.BudgetMax
	if min != nil && max != nil && *min > *max {
		return &domain.ValidationError{Field: "preferences.budgetMin", Reason: "budgetMin exceeds budgetMax"}
	}
	return nil
}

// monotonic keeps updatedAt non-decreasing per record even when the
// wall clock stalls or steps backward.
func monotonic(prev, next time.Time) time.Time {
	if !next.After(prev) {
		return prev.Add(time.Millisecond)
	}
	return next
}
