package store

import (
	"estatecrm/internal/domain"
)

// CanonicalKey is the single storage location treated as authoritative
// for the full record set. Older releases scattered copies across the
// legacy keys below; MigrateLegacy folds them in once.
const CanonicalKey = "estatecrm.customers.v2"

// LegacyKeys are storage keys used by previous releases, oldest first.
var LegacyKeys = []string{
	"customers",
	"customerData",
	"crm_customers",
	"estatecrm.customers.v1",
}

// KV is the key-value surface the record store persists through. Only
// the record store may write CanonicalKey; every other component reads
// records through Store.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys() ([]string, error)
}

// Store is the single source of truth for the canonical record set.
type Store interface {
	// GetAll returns all records in insertion order. It never fails
	// hard: missing or corrupt storage degrades to an empty list with
	// a logged diagnostic.
	GetAll() ([]domain.CustomerRecord, error)
	// GetByID returns the record with the given id or domain.ErrNotFound.
	GetByID(id string) (domain.CustomerRecord, error)
	// GetActive filters GetAll on isActive.
	GetActive() ([]domain.CustomerRecord, error)
	// Upsert validates, normalizes and persists the record, returning
	// the stored form. A colliding id is an update, not an insert.
	Upsert(record domain.CustomerRecord) (domain.CustomerRecord, error)
	// Restore behaves like Upsert but keeps caller-supplied
	// timestamps, for bulk seed/restore and sync reconciliation.
	Restore(record domain.CustomerRecord) (domain.CustomerRecord, error)
	// Delete removes the record and reports whether anything was
	// removed. Idempotent.
	Delete(id string) (bool, error)
}
