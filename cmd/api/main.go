package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"estatecrm/internal/blob"
	"estatecrm/internal/config"
	"estatecrm/internal/db"
	"estatecrm/internal/export"
	"estatecrm/internal/httpserver"
	"estatecrm/internal/localdb"
	"estatecrm/internal/metrics"
	"estatecrm/internal/notify"
	customersvc "estatecrm/internal/service/customer"
	"estatecrm/internal/store"
	remote "estatecrm/internal/sync"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	local, err := localdb.Open(cfg.LocalDBPath)
	if err != nil {
		logger.Fatalf("open local store: %v", err)
	}
	defer local.Close()
	recordStore := store.NewLocal(local, logger)

	// Optional collaborators degrade instead of blocking startup: the
	// local store stays authoritative and available offline.
	var notifier notify.Notifier = notify.Nop{}
	if cfg.RedisAddr != "" {
		rn, err := notify.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			logger.Printf("redis unreachable, live cross-context updates disabled: %v", err)
		} else {
			defer rn.Close()
			notifier = rn
		}
	}

	var provider remote.Provider = remote.Unavailable{}
	if cfg.RemoteDSN != "" {
		pool, err := db.Connect(ctx, cfg.RemoteDSN)
		if err != nil {
			logger.Printf("remote store unreachable, sync disabled: %v", err)
		} else {
			defer pool.Close()
			provider = remote.NewPostgres(pool, cfg.Tenant, cfg.SyncTimeout, logger)
		}
	}

	var exporter *export.Exporter
	blobStore, err := blob.Open(ctx, blob.Config{
		Driver:   cfg.BlobDriver,
		FSDir:    cfg.BlobDir,
		S3Bucket: cfg.S3Bucket,
		S3Region: cfg.S3Region,
	})
	if err != nil {
		logger.Printf("blob store unavailable, snapshot export disabled: %v", err)
	} else {
		exporter = export.New(blobStore)
	}

	registry := prometheus.NewRegistry()
	svc := customersvc.New(recordStore, notifier, provider, exporter, metrics.New(registry), logger)
	svc.Subscribe(ctx)
	logger.Printf("context id %s, notifier available=%t, sync available=%t", svc.ContextID(), notifier.Available(), provider.Available())

	srv, err := httpserver.New(cfg.HTTPAddr, logger, local, httpserver.Deps{
		Customers: svc,
		APIToken:  cfg.APIToken,
		Registry:  registry,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
