package store

import (
	"encoding/json"
	"errors"
	"io"
	"log"

	"estatecrm/internal/domain"
)

// MigrateLegacy folds every known legacy storage key into CanonicalKey
// and removes the legacy keys. Records are merged by id with the most
// recently updated copy winning. Safe to run repeatedly; it reports how
// many records were carried over from legacy keys.
func MigrateLegacy(kv KV, logger *log.Logger) (int, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	merged := []domain.CustomerRecord{}
	index := map[string]int{}
	appendOrMerge := func(records []domain.CustomerRecord) int {
		carried := 0
		for _, r := range records {
			if i, ok := index[r.ID]; ok {
				if r.UpdatedAt.After(merged[i].UpdatedAt) {
					merged[i] = r
					carried++
				}
				continue
			}
			index[r.ID] = len(merged)
			merged = append(merged, r)
			carried++
		}
		return carried
	}

	if raw, err := kv.Get(CanonicalKey); err == nil {
		appendOrMerge(decodeRecords(raw, CanonicalKey, logger))
	} else if !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}

	migrated := 0
	dirty := false
	for _, key := range LegacyKeys {
		raw, err := kv.Get(key)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		carried := appendOrMerge(decodeRecords(raw, key, logger))
		migrated += carried
		dirty = true
		logger.Printf("store: merged %d record(s) from legacy key %s", carried, key)
	}
	if !dirty {
		return 0, nil
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return 0, &domain.StorageError{Op: "encode " + CanonicalKey, Err: err}
	}
	if err := kv.Set(CanonicalKey, raw); err != nil {
		return 0, err
	}
	for _, key := range LegacyKeys {
		if err := kv.Delete(key); err != nil {
			logger.Printf("store: failed to drop legacy key %s: %v", key, err)
		}
	}
	return migrated, nil
}
