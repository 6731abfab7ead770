package engine

import "github.com/zoobzio/capitan"

// Signal definitions for engine lifecycle and sampling events.
// Signals follow the pattern: coherence.<entity>.<event>.
var (
	EngineStarted = capitan.NewSignal(
		"coherence.engine.started",
		"Sampling loop started for a session",
	)
	EngineStopped = capitan.NewSignal(
		"coherence.engine.stopped",
		"Sampling loop halted; last snapshot retained",
	)

	TickCompleted = capitan.NewSignal(
		"coherence.tick.completed",
		"One coherence sample computed and published",
	)
	StateChanged = capitan.NewSignal(
		"coherence.state.changed",
		"Classifier confirmed a transition between interaction states",
	)

	EvidenceRejected = capitan.NewSignal(
		"coherence.evidence.rejected",
		"Malformed phase evidence dropped for one or more channels",
	)
)

// Field keys for engine event data.
var (
	FieldSessionID = capitan.NewStringKey("session_id")
	FieldState     = capitan.NewStringKey("state")
	FieldPrevState = capitan.NewStringKey("prev_state")

	FieldR        = capitan.NewFloat32Key("r")
	FieldMomentum = capitan.NewFloat32Key("momentum")

	FieldChannelCount = capitan.NewIntKey("channel_count")
	FieldDropped      = capitan.NewIntKey("dropped")
	FieldApplied      = capitan.NewIntKey("applied")
)
