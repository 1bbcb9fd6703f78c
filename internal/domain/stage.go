package domain

// Stage is a customer's position in the sales pipeline.
type Stage string

// Pipeline stages in display order. Reps may move a customer to any
// stage, forward or backward; only StageComplete carries a side effect
// (the record is deactivated on entry and reactivated on exit).
const (
	StageInitialConsultation  Stage = "initial_consultation"
	StagePropertyIntroduction Stage = "property_introduction"
	StageViewing              Stage = "viewing"
	StageApplication          Stage = "application"
	StageScreening            Stage = "screening"
	StageContract             Stage = "contract"
	StageComplete             Stage = "complete"
)

// Stages lists all pipeline stages in order.
var Stages = []Stage{
	StageInitialConsultation,
	StagePropertyIntroduction,
	StageViewing,
	StageApplication,
	StageScreening,
	StageContract,
	StageComplete,
}

var stageSet = func() map[Stage]struct{} {
	set := make(map[Stage]struct{}, len(Stages))
	for _, s := range Stages {
		set[s] = struct{}{}
	}
	return set
}()

// Valid reports whether s is a member of the fixed stage set.
func (s Stage) Valid() bool {
	_, ok := stageSet[s]
	return ok
}

// Terminal reports whether s deactivates a record.
func (s Stage) Terminal() bool { return s == StageComplete }
