package main

import (
	"context"
	"log"
	"os"

	"estatecrm/internal/config"
	"estatecrm/internal/db"
	"estatecrm/internal/localdb"
	"estatecrm/internal/migrate"
	"estatecrm/internal/store"
)

// Runs both halves of the migration story: the remote schema (when a
// remote store is configured) and the one-time merge of legacy local
// storage keys into the canonical key.
func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC)

	local, err := localdb.Open(cfg.LocalDBPath)
	if err != nil {
		logger.Fatalf("open local store: %v", err)
	}
	defer local.Close()

	migrated, err := store.MigrateLegacy(local, logger)
	if err != nil {
		logger.Fatalf("migrate legacy keys: %v", err)
	}
	logger.Printf("local migration done, %d record(s) carried over", migrated)

	if cfg.RemoteDSN == "" {
		logger.Printf("REMOTE_DSN not set, skipping remote schema migration")
		return
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.RemoteDSN)
	if err != nil {
		logger.Fatalf("connect to remote store: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply remote migrations: %v", err)
	}
	logger.Printf("remote schema up to date")
}
