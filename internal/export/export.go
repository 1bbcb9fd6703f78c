package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"estatecrm/internal/blob"
	"estatecrm/internal/domain"
)

// Exporter writes spreadsheet-style CSV snapshots of the record set to
// a blob store. This is the stand-in for the legacy sheet mirror: a
// full snapshot per export, never a partial update.
type Exporter struct {
	store blob.Store
	now   func() time.Time
}

// New returns an Exporter writing through the given blob store.
func New(store blob.Store) *Exporter {
	return &Exporter{store: store, now: time.Now}
}

// Snapshot writes all records as one CSV object and returns its key.
func (e *Exporter) Snapshot(ctx context.Context, records []domain.CustomerRecord) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{
		"id", "name", "email", "phone", "pipeline_status", "is_active",
		"budget_min", "budget_max", "areas", "room_type", "requirements",
		"notes", "source", "created_at", "updated_at",
	}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, r := range records {
		row := []string{
			r.ID,
			r.Name,
			r.Email,
			r.Phone,
			string(r.PipelineStatus),
			strconv.FormatBool(r.IsActive),
			formatBudget(r.Preferences.BudgetMin),
			formatBudget(r.Preferences.BudgetMax),
			strings.Join(r.Preferences.Areas, ";"),
			r.Preferences.RoomType,
			strings.Join(r.Preferences.Requirements, ";"),
			r.Notes,
			r.Source,
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	key := fmt.Sprintf("exports/customers-%s.csv", e.now().UTC().Format("20060102T150405Z"))
	if err := e.store.Put(ctx, key, &buf, "text/csv"); err != nil {
		return "", err
	}
	return key, nil
}

func formatBudget(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
