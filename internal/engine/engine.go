package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"

	"github.com/aurawell/coherence/go-engine/internal/classify"
	"github.com/aurawell/coherence/go-engine/internal/coherence"
	"github.com/aurawell/coherence/go-engine/internal/ensemble"
	"github.com/aurawell/coherence/go-engine/internal/persona"
)

// #region config

// Config bundles the engine calibration. Everything here is injectable;
// the one deliberate exception is the momentum gain κ, which is a package
// constant in classify.
type Config struct {
	// SampleInterval is the coherence sampling cadence.
	SampleInterval time.Duration

	// RingCapacity is the fixed size of the sample history ring.
	RingCapacity int

	// MomentumWindow bounds how far back the momentum finite difference
	// reaches.
	MomentumWindow time.Duration

	Ensemble   ensemble.Config
	Classifier classify.Config
}

// DefaultConfig returns the baseline engine calibration.
func DefaultConfig() Config {
	return Config{
		SampleInterval: 1500 * time.Millisecond,
		RingCapacity:   32,
		MomentumWindow: 10 * time.Second,
		Ensemble:       ensemble.DefaultConfig(),
		Classifier:     classify.DefaultConfig(),
	}
}

func normalizeConfig(config Config) Config {
	def := DefaultConfig()
	if config.SampleInterval <= 0 {
		config.SampleInterval = def.SampleInterval
	}
	if config.RingCapacity < 2 {
		config.RingCapacity = def.RingCapacity
	}
	if config.MomentumWindow <= 0 {
		config.MomentumWindow = def.MomentumWindow
	}
	return config
}

// #endregion config

// #region snapshot

// Snapshot is the externally visible, immutable read view of one tick.
// Callers that need the next value call Engine.Snapshot again.
type Snapshot struct {
	R          float32
	Momentum   float32
	State      classify.StateID
	StateName  string
	Thresholds classify.Thresholds
	Signals    map[string]float32
	IsRunning  bool
	At         time.Time
}

// #endregion snapshot

// #region recorder

// TransitionRecord captures one confirmed state transition for diagnostics.
type TransitionRecord struct {
	SessionID  string
	FromState  classify.StateID
	ToState    classify.StateID
	R          float32
	Momentum   float32
	Thresholds classify.Thresholds
	At         time.Time
}

// EvidenceRecord captures one applied Inject batch.
type EvidenceRecord struct {
	SessionID string
	Updates   map[string]ensemble.Evidence
	Dropped   []string
	At        time.Time
}

// Recorder receives transition and evidence provenance. Implementations must
// not block; recording failures are logged and never surface to callers.
type Recorder interface {
	RecordTransition(rec TransitionRecord) error
	RecordEvidence(rec EvidenceRecord) error
}

// #endregion recorder

// #region engine

// Engine is the behavioral-coherence control loop: it fuses injected phase
// evidence into the order parameter R, tracks its momentum, classifies the
// interaction state with momentum-adjusted thresholds, and exposes an O(1)
// snapshot plus persona-facing derived queries.
//
// One Engine instance serves one session. It is an explicit handle, not a
// process-wide singleton: the hosting layer constructs it and passes it to
// whoever needs it.
type Engine struct {
	config    Config
	sessionID string
	logger    *slog.Logger
	clock     Clock
	recorder  Recorder
	ctx       context.Context

	ensemble   *ensemble.Ensemble
	classifier *classify.Classifier
	stateDefs  map[classify.StateID]classify.StateDefinition

	// ring is touched only by Start (before the loop exists) and the tick
	// goroutine, so it needs no lock of its own.
	ring *coherence.Ring

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	snapshot Snapshot
}

// New creates a stopped engine with the real wall clock.
func New(config Config, logger *slog.Logger) *Engine {
	return NewWithClock(config, logger, SystemClock())
}

// NewWithClock creates a stopped engine driven by the given clock. Tests and
// the replay harness pass a manual clock for deterministic ticks.
func NewWithClock(config Config, logger *slog.Logger, clock Clock) *Engine {
	config = normalizeConfig(config)
	if logger == nil {
		logger = slog.Default()
	}

	classifierConfig, report := classify.Normalize(config.Classifier)
	for _, check := range report.Checks {
		if !check.Pass {
			logger.Warn("classifier calibration adjusted", "check", check.Name, "detail", check.Detail)
		}
	}
	config.Classifier = classifierConfig

	defs := make(map[classify.StateID]classify.StateDefinition, len(classifierConfig.States))
	for _, s := range classifierConfig.States {
		defs[s.ID] = s
	}

	e := &Engine{
		config:     config,
		sessionID:  uuid.New().String(),
		logger:     logger,
		clock:      clock,
		ctx:        context.Background(),
		ensemble:   ensemble.New(config.Ensemble),
		classifier: classify.NewClassifier(classifierConfig),
		stateDefs:  defs,
		ring:       coherence.NewRing(config.RingCapacity),
	}
	e.snapshot = e.defaultSnapshot(clock.Now())
	return e
}

// SessionID returns the engine instance's session identity.
func (e *Engine) SessionID() string { return e.sessionID }

// AttachRecorder wires an optional provenance recorder. Call before Start.
func (e *Engine) AttachRecorder(r Recorder) { e.recorder = r }

func (e *Engine) defaultSnapshot(at time.Time) Snapshot {
	def := e.stateDefs[classify.StateCollapse]
	return Snapshot{
		R:          0,
		Momentum:   0,
		State:      def.ID,
		StateName:  def.Name,
		Thresholds: e.config.Classifier.Base,
		Signals:    map[string]float32{},
		IsRunning:  false,
		At:         at,
	}
}

// #endregion engine

// #region lifecycle

// Start transitions the engine from stopped to running: the ring is cleared,
// the classifier returns to the lowest-engagement state, and the sampling
// loop begins. Calling Start while running is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.ring.Reset()
	e.classifier.Reset()
	e.running = true
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})
	e.snapshot = e.defaultSnapshot(e.clock.Now())
	e.snapshot.IsRunning = true
	stopCh, doneCh := e.stopCh, e.doneCh
	e.mu.Unlock()

	ticker := e.clock.NewTicker(e.config.SampleInterval)
	go e.run(ticker, stopCh, doneCh)

	capitan.Emit(e.ctx, EngineStarted, FieldSessionID.Field(e.sessionID))
	e.logger.Info("coherence engine started",
		"session", e.sessionID,
		"interval", e.config.SampleInterval,
	)
}

// Stop halts the sampling loop. No tick fires after Stop returns. The last
// computed snapshot is retained, reported with IsRunning=false. Calling Stop
// while stopped is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	stopCh, doneCh := e.stopCh, e.doneCh
	e.mu.Unlock()

	close(stopCh)
	<-doneCh

	e.mu.Lock()
	e.snapshot.IsRunning = false
	e.mu.Unlock()

	capitan.Emit(e.ctx, EngineStopped, FieldSessionID.Field(e.sessionID))
	e.logger.Info("coherence engine stopped", "session", e.sessionID)
}

func (e *Engine) run(ticker Ticker, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C():
			e.tick(now)
		}
	}
}

// #endregion lifecycle

// #region tick

func (e *Engine) tick(now time.Time) {
	view := e.ensemble.View(now)
	r, psi := coherence.OrderParameter(view)
	e.ring.Push(coherence.Sample{R: r, At: now})
	momentum := e.ring.Momentum(e.config.MomentumWindow)

	out := e.classifier.Classify(r, momentum)
	signals := coherence.AlignmentSignals(view, psi)

	snap := Snapshot{
		R:          r,
		Momentum:   momentum,
		State:      out.State.ID,
		StateName:  out.State.Name,
		Thresholds: out.Thresholds,
		Signals:    signals,
		IsRunning:  true,
		At:         now,
	}

	e.mu.Lock()
	prev := e.snapshot.State
	e.snapshot = snap
	e.mu.Unlock()

	capitan.Emit(e.ctx, TickCompleted,
		FieldSessionID.Field(e.sessionID),
		FieldR.Field(r),
		FieldMomentum.Field(momentum),
		FieldState.Field(string(out.State.ID)),
		FieldChannelCount.Field(len(view)),
	)

	if out.Changed {
		e.logger.Info("interaction state changed",
			"session", e.sessionID,
			"from", prev,
			"to", out.State.ID,
			"r", r,
			"momentum", momentum,
		)
		capitan.Emit(e.ctx, StateChanged,
			FieldSessionID.Field(e.sessionID),
			FieldPrevState.Field(string(prev)),
			FieldState.Field(string(out.State.ID)),
			FieldR.Field(r),
			FieldMomentum.Field(momentum),
		)
		if e.recorder != nil {
			rec := TransitionRecord{
				SessionID:  e.sessionID,
				FromState:  prev,
				ToState:    out.State.ID,
				R:          r,
				Momentum:   momentum,
				Thresholds: out.Thresholds,
				At:         now,
			}
			if err := e.recorder.RecordTransition(rec); err != nil {
				e.logger.Warn("transition record failed", "error", err)
			}
		}
	}
}

// #endregion tick

// #region inject

// Inject merges a batch of phase evidence into the ensemble. Safe to call
// concurrently with ticks and from many producers; cost is O(touched
// channels). Malformed entries drop per channel and never abort the batch.
func (e *Engine) Inject(updates map[string]ensemble.Evidence) {
	now := e.clock.Now()
	report := e.ensemble.Inject(now, updates)

	if len(report.Dropped) > 0 {
		e.logger.Warn("malformed phase evidence dropped",
			"session", e.sessionID,
			"channels", report.Dropped,
		)
		capitan.Emit(e.ctx, EvidenceRejected,
			FieldSessionID.Field(e.sessionID),
			FieldDropped.Field(len(report.Dropped)),
			FieldApplied.Field(report.Applied),
		)
	}

	if e.recorder != nil && report.Applied > 0 {
		applied := make(map[string]ensemble.Evidence, report.Applied)
		for id, ev := range updates {
			if validEvidence(report.Dropped, id) {
				applied[id] = ev
			}
		}
		rec := EvidenceRecord{
			SessionID: e.sessionID,
			Updates:   applied,
			Dropped:   report.Dropped,
			At:        now,
		}
		if err := e.recorder.RecordEvidence(rec); err != nil {
			e.logger.Warn("evidence record failed", "error", err)
		}
	}
}

func validEvidence(dropped []string, id string) bool {
	for _, d := range dropped {
		if d == id {
			return false
		}
	}
	return true
}

// #endregion inject

// #region queries

// Snapshot returns the most recent computed snapshot by value. O(1): it
// copies the cached value and never recomputes. Before the first tick it
// returns a well-defined default (R=0, momentum=0, lowest state).
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	snap := e.snapshot
	e.mu.Unlock()

	signals := make(map[string]float32, len(snap.Signals))
	for k, v := range snap.Signals {
		signals[k] = v
	}
	snap.Signals = signals
	return snap
}

// Profile returns the persona profile for the current state, verbatim.
func (e *Engine) Profile() persona.Profile {
	snap := e.Snapshot()
	return persona.ProfileFor(e.stateDefs[snap.State])
}

// RecommendedAction returns the optional restorative action for the current
// (state, momentum) pair.
func (e *Engine) RecommendedAction() persona.Recommendation {
	snap := e.Snapshot()
	return persona.Recommend(snap.State, snap.Momentum)
}

// ReadingPromptConfig combines the current persona profile with caller
// context into the parameter bundle for a downstream generation call.
// Deterministic given its inputs and the current snapshot.
func (e *Engine) ReadingPromptConfig(item persona.ItemContext, inter persona.InteractionContext) persona.PromptConfig {
	return persona.BuildPromptConfig(e.Profile(), item, inter)
}

// #endregion queries
