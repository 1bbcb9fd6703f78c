package localdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"estatecrm/internal/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// DB is the client-side persistent key-value store. Keys map to whole
// JSON documents, mirroring the storage model the record store expects:
// one value per key, last write wins, no transactional isolation across
// processes.
type DB struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates (if needed) and opens the key-value database at path.
func Open(path string) (*DB, error) {
	if path == "" {
		path = "estatecrm.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS storage (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create storage table: %w", err)
	}
	return &DB{db: db}, nil
}

// Get returns the value stored under key, or domain.ErrNotFound.
func (d *DB) Get(key string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var value []byte
	err := d.db.QueryRow(`SELECT value FROM storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "get " + key, Err: err}
	}
	return value, nil
}

// Set writes value under key, replacing any previous value.
func (d *DB) Set(key string, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.db.Exec(
		`INSERT INTO storage(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return &domain.StorageError{Op: "set " + key, Err: err}
	}
	return nil
}

// Delete removes key. Removing an absent key is not an error.
func (d *DB) Delete(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.db.Exec(`DELETE FROM storage WHERE key = ?`, key); err != nil {
		return &domain.StorageError{Op: "delete " + key, Err: err}
	}
	return nil
}

// Keys lists all stored keys in lexical order.
func (d *DB) Keys() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rows, err := d.db.Query(`SELECT key FROM storage ORDER BY key`)
	if err != nil {
		return nil, &domain.StorageError{Op: "keys", Err: err}
	}
	defer func() { _ = rows.Close() }()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, &domain.StorageError{Op: "keys", Err: err}
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "keys", Err: err}
	}
	return keys, nil
}

// Ping verifies the backing database is reachable.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// Close releases the underlying database handle.
func (d *DB) Close() error {
	return d.db.Close()
}
