package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	LocalDBPath     string
	APIToken        string
	Tenant          string
	RemoteDSN       string
	SyncTimeout     time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	BlobDriver      string
	BlobDir         string
	S3Bucket        string
	S3Region        string
	ShutdownTimeout time.Duration
}

// FromEnv builds Config with defaults, overridden by a .env file (if
// present) and the process environment. Empty REMOTE_DSN disables the
// sync adapter, empty REDIS_ADDR disables the change notifier; the
// local store works regardless.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LocalDBPath:     envOrDefault("LOCAL_DB_PATH", "estatecrm.db"),
		APIToken:        envOrDefault("API_TOKEN", ""),
		Tenant:          envOrDefault("TENANT", "default"),
		RemoteDSN:       envOrDefault("REMOTE_DSN", ""),
		SyncTimeout:     envDuration("SYNC_TIMEOUT_SECONDS", 5*time.Second),
		RedisAddr:       envOrDefault("REDIS_ADDR", ""),
		RedisPassword:   envOrDefault("REDIS_PASSWORD", ""),
		RedisDB:         envInt("REDIS_DB", 0),
		BlobDriver:      envOrDefault("BLOB_DRIVER", "fs"),
		BlobDir:         envOrDefault("BLOB_DIR", "blobdata"),
		S3Bucket:        envOrDefault("BLOB_S3_BUCKET", ""),
		S3Region:        envOrDefault("BLOB_S3_REGION", ""),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}
