package pipeline

import "estatecrm/internal/domain"

// The pipeline deliberately allows arbitrary jumps between stages, not
// just forward movement: a rep must be able to move a customer from
// screening back to viewing. The only side-effecting transition is
// crossing the complete boundary.

// Transition moves record to the target stage and applies the
// activation side effect. An unrecognized target returns
// *domain.InvalidStateError and the input record unchanged.
func Transition(record domain.CustomerRecord, target domain.Stage) (domain.CustomerRecord, error) {
	if !target.Valid() {
		return record, &domain.InvalidStateError{Stage: target}
	}
	next := record.Clone()
	next.IsActive = Activation(record.PipelineStatus, target, record.IsActive)
	next.PipelineStatus = target
	return next, nil
}

// Activation decides the isActive flag for a record moving from prev to
// next. Entering the terminal stage deactivates, leaving it
// reactivates; otherwise an explicit archive (prevActive == false) is
// preserved.
func Activation(prev, next domain.Stage, prevActive bool) bool {
	switch {
	case next.Terminal():
		return false
	case prev.Terminal():
		return true
	default:
		return prevActive
	}
}

// Archive deactivates a record without touching its stage.
func Archive(record domain.CustomerRecord) domain.CustomerRecord {
	next := record.Clone()
	next.IsActive = false
	return next
}

// Unarchive reactivates a record unless it sits in the terminal stage.
func Unarchive(record domain.CustomerRecord) domain.CustomerRecord {
	next := record.Clone()
	next.IsActive = !next.PipelineStatus.Terminal()
	return next
}
