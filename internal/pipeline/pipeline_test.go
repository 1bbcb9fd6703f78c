package pipeline

import (
	"errors"
	"testing"

	"estatecrm/internal/domain"
)

func TestTransition_CompleteTogglesActivation(t *testing.T) {
	record := domain.CustomerRecord{
		ID:             "c1",
		Name:           "Taro",
		PipelineStatus: domain.StageInitialConsultation,
		IsActive:       true,
	}

	done, err := Transition(record, domain.StageComplete)
	if err != nil {
		t.Fatalf("transition to complete: %v", err)
	}
	if done.IsActive {
		t.Fatalf("entering complete must deactivate the record")
	}

	back, err := Transition(done, domain.StageViewing)
	if err != nil {
		t.Fatalf("transition back to viewing: %v", err)
	}
	if !back.IsActive {
		t.Fatalf("leaving complete must reactivate the record")
	}
}

func TestTransition_UnknownStageLeavesRecordUntouched(t *testing.T) {
	record := domain.CustomerRecord{
		ID:             "c1",
		Name:           "Taro",
		PipelineStatus: domain.StageScreening,
		IsActive:       true,
	}

	got, err := Transition(record, "closed_won")
	var stateErr *domain.InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if got.PipelineStatus != domain.StageScreening || !got.IsActive {
		t.Fatalf("record modified on rejected transition: %+v", got)
	}
}

func TestTransition_ArbitraryJumpsAllowed(t *testing.T) {
	// Backward moves are intentional: a rep can pull a customer from
	// screening back to viewing.
	for _, from := range domain.Stages {
		for _, to := range domain.Stages {
			record := domain.CustomerRecord{ID: "c", Name: "N", PipelineStatus: from, IsActive: !from.Terminal()}
			got, err := Transition(record, to)
			if err != nil {
				t.Fatalf("%s -> %s: %v", from, to, err)
			}
			if got.PipelineStatus != to {
				t.Fatalf("%s -> %s: stage not applied", from, to)
			}
			wantActive := !to.Terminal()
			if got.IsActive != wantActive {
				t.Fatalf("%s -> %s: isActive=%t, want %t", from, to, got.IsActive, wantActive)
			}
		}
	}
}

func TestActivation_PreservesExplicitArchive(t *testing.T) {
	// An archived record that moves between non-terminal stages stays
	// archived.
	if Activation(domain.StageViewing, domain.StageApplication, false) {
		t.Fatalf("archive flag lost on non-terminal move")
	}
	if !Activation(domain.StageViewing, domain.StageApplication, true) {
		t.Fatalf("active record deactivated on non-terminal move")
	}
}

func TestArchiveUnarchive(t *testing.T) {
	record := domain.CustomerRecord{ID: "c1", Name: "Taro", PipelineStatus: domain.StageViewing, IsActive: true}

	archived := Archive(record)
	if archived.IsActive {
		t.Fatalf("archive should deactivate")
	}
	restored := Unarchive(archived)
	if !restored.IsActive {
		t.Fatalf("unarchive should reactivate")
	}

	completed := domain.CustomerRecord{ID: "c2", Name: "Jiro", PipelineStatus: domain.StageComplete}
	if Unarchive(completed).IsActive {
		t.Fatalf("unarchive must not reactivate a completed record")
	}
}

func TestStageValidity(t *testing.T) {
	for _, s := range domain.Stages {
		if !s.Valid() {
			t.Fatalf("stage %s should be valid", s)
		}
	}
	if domain.Stage("lead").Valid() {
		t.Fatalf("unknown stage accepted")
	}
	if !domain.StageComplete.Terminal() || domain.StageContract.Terminal() {
		t.Fatalf("terminal classification wrong")
	}
}
