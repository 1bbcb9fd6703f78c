package main

import (
	"log"
	"os"

	"estatecrm/internal/config"
	"estatecrm/internal/localdb"
	"estatecrm/internal/seed"
	"estatecrm/internal/store"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC)

	local, err := localdb.Open(cfg.LocalDBPath)
	if err != nil {
		logger.Fatalf("open local store: %v", err)
	}
	defer local.Close()

	if err := seed.Apply(store.NewLocal(local, logger)); err != nil {
		logger.Fatalf("seed: %v", err)
	}
	logger.Printf("demo customers seeded")
}
