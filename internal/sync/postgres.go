package sync

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	"estatecrm/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresProvider struct {
	pool    *pgxpool.Pool
	tenant  string
	timeout time.Duration
	logger  *log.Logger
}

// NewPostgres returns a Provider mirroring records into the per-tenant
// customer_records collection. Every remote call is bounded by timeout
// so a slow network degrades to local-only instead of hanging callers.
func NewPostgres(pool *pgxpool.Pool, tenant string, timeout time.Duration, logger *log.Logger) Provider {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &postgresProvider{pool: pool, tenant: tenant, timeout: timeout, logger: logger}
}

func (p *postgresProvider) Available() bool { return p.pool != nil }

func (p *postgresProvider) PushAll(ctx context.Context, records []domain.CustomerRecord) Result {
	result := Result{}
	for _, record := range records {
		if err := p.push(ctx, record); err != nil {
			p.logger.Printf("sync: push id=%s failed: %v", record.ID, err)
			result.Failed = append(result.Failed, Failure{ID: record.ID, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, record.ID)
	}
	return result
}

func (p *postgresProvider) push(ctx context.Context, record domain.CustomerRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO customer_records (tenant, id, payload, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (tenant, id) DO UPDATE
SET payload = EXCLUDED.payload,
    updated_at = EXCLUDED.updated_at
`
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	_, err = p.pool.Exec(callCtx, q, p.tenant, record.ID, payload, record.UpdatedAt)
	return err
}

func (p *postgresProvider) PullAll(ctx context.Context) ([]domain.CustomerRecord, error) {
	const q = `
SELECT payload
FROM customer_records
WHERE tenant = $1
ORDER BY updated_at, id
`
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	rows, err := p.pool.Query(callCtx, q, p.tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.CustomerRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var record domain.CustomerRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			p.logger.Printf("sync: skipping malformed remote record: %v", err)
			continue
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
