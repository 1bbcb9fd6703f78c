package blob

import (
	"context"
	"fmt"
	"io"
)

// Store is the minimal object-store surface the snapshot exporter
// needs: write an object, enumerate what was written.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// Config selects and parameterizes a blob driver.
type Config struct {
	Driver   string // "fs" (default) or "s3"
	FSDir    string
	S3Bucket string
	S3Region string
}

// Open constructs the configured blob store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "fs":
		return NewFS(cfg.FSDir)
	case "s3":
		return NewS3(ctx, cfg.S3Bucket, cfg.S3Region)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
