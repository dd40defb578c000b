package ingest

// Stage is the furthest point a publish attempt reached. An accepted
// attempt whose access log write failed stops at StagePersisted.
type Stage string

const (
	StageReceived      Stage = "received"
	StageValidated     Stage = "validated"
	StageTopicResolved Stage = "topic_resolved"
	StageAuthenticated Stage = "authenticated"
	StageRateChecked   Stage = "rate_checked"
	StagePersisted     Stage = "persisted"
	StageLogged        Stage = "logged"
	StageAccepted      Stage = "accepted"
)

var stageOrder = map[Stage]int{
	StageReceived:      1,
	StageValidated:     2,
	StageTopicResolved: 3,
	StageAuthenticated: 4,
	StageRateChecked:   5,
	StagePersisted:     6,
	StageLogged:        7,
	StageAccepted:      8,
}

// Reached reports whether s is other or a later stage. Unknown stages
// reach nothing.
func (s Stage) Reached(other Stage) bool {
	got, ok := stageOrder[s]
	return ok && got >= stageOrder[other]
}
