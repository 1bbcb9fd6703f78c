package seed

import (
	"fmt"

	"estatecrm/internal/domain"
	"estatecrm/internal/store"
)

func ptr(v int64) *int64 { return &v }

// Apply inserts demo customer records for manual testing. Idempotent:
// records are keyed by fixed ids, so re-running updates in place.
func Apply(st store.Store) error {
	records := []domain.CustomerRecord{
		{
			ID:             "demo-tanaka",
			Name:           "Tanaka Hiroshi",
			Email:          "tanaka@example.com",
			Phone:          "090-1111-2222",
			PipelineStatus: domain.StageViewing,
			Preferences: domain.Preferences{
				BudgetMin:    ptr(80000),
				BudgetMax:    ptr(120000),
				Areas:        []string{"Shibuya", "Nakameguro"},
				RoomType:     "1LDK",
				Requirements: []string{"pet friendly", "near station"},
			},
			Notes:  "Prefers weekend viewings.",
			Source: "demo",
		},
		{
			ID:             "demo-sato",
			Name:           "Sato Yuki",
			Email:          "sato@example.com",
			PipelineStatus: domain.StageInitialConsultation,
			Preferences: domain.Preferences{
				BudgetMax: ptr(95000),
				Areas:     []string{"Kichijoji"},
				RoomType:  "1K",
			},
			Source: "demo",
		},
		{
			ID:             "demo-suzuki",
			Name:           "Suzuki Kenta",
			Email:          "suzuki@example.com",
			Phone:          "080-3333-4444",
			PipelineStatus: domain.StageContract,
			Preferences: domain.Preferences{
				BudgetMin: ptr(150000),
				BudgetMax: ptr(200000),
				Areas:     []string{"Meguro", "Gotanda", "Osaki"},
				RoomType:  "2LDK",
			},
			Notes:  "Corporate contract, guarantor confirmed.",
			Source: "demo",
		},
	}

	for _, r := range records {
		if _, err := st.Upsert(r); err != nil {
			return fmt.Errorf("seed customer %s: %w", r.ID, err)
		}
	}
	return nil
}
