// Package engine converts a live stream of pose estimates into a
// body-specific calibration and a running count of exercise reps.
//
// All state-machine fields are owned by a single coordinator goroutine
// (Run). Frame arrival and inference completion are serialized onto it,
// and exactly one pose inference is in flight at a time, so results can
// never be applied out of order.
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/repcam/go-repcam/internal/log"
	"github.com/repcam/go-repcam/pkg/calibstore"
	"github.com/repcam/go-repcam/pkg/debug"
	"github.com/repcam/go-repcam/pkg/estimator"
	"github.com/repcam/go-repcam/pkg/pose"
)

// Frame is one decoded video frame entering the pipeline.
type Frame struct {
	Seq  uint64
	JPEG []byte
	At   time.Time
}

// Session tracks one exercise run. It is never persisted; rep counts
// reset whenever the exercise kind changes or calibration is cleared.
type Session struct {
	ID        string
	Kind      Kind
	StartedAt time.Time

	tracker tracker
}

// Status is a point-in-time snapshot of the engine for dashboards.
type Status struct {
	SessionID     string           `json:"session_id"`
	Exercise      Kind             `json:"exercise"`
	RepCount      int              `json:"rep_count"`
	ExerciseState ExerciseState    `json:"exercise_state"`
	Calibration   CalibrationState `json:"calibration"`
	Calibrated    bool             `json:"calibrated"`
	HoldProgress  float64          `json:"hold_progress"`
}

type inferenceResult struct {
	frame Frame
	snap  *pose.Snapshot
	err   error
}

// Engine is the single-pipeline coordinator.
type Engine struct {
	cfg      Config
	est      estimator.Estimator
	store    calibstore.Store
	dispatch *Dispatcher

	calibrator *Calibrator
	session    *Session
	decimator  *FrameDecimator

	frames   chan Frame
	results  chan inferenceResult
	commands chan func()

	inflight bool
	seq      atomic.Uint64

	statusMu sync.RWMutex
	status   Status
}

// New creates an engine. The stored calibration record is loaded once
// at startup; a missing record starts the engine uncalibrated.
func New(cfg Config, est estimator.Estimator, store calibstore.Store) (*Engine, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("engine: invalid config: %v", errs)
	}

	rec, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("engine: load calibration: %w", err)
	}

	dispatch := &Dispatcher{}
	e := &Engine{
		cfg:       cfg,
		est:       est,
		store:     store,
		dispatch:  dispatch,
		decimator: NewFrameDecimator(cfg.DecimationRatio),
		frames:    make(chan Frame, cfg.FrameBuffer),
		results:   make(chan inferenceResult, 1),
		commands:  make(chan func(), 16),
	}
	e.calibrator = NewCalibrator(cfg, rec, store, dispatch)
	e.session = e.newSession(KindSitToStand)
	e.syncStatus()
	return e, nil
}

// Subscribe registers an event listener. Call before Run.
func (e *Engine) Subscribe(fn Listener) {
	e.dispatch.Subscribe(fn)
}

// Run owns all state mutation. It returns when the context is
// cancelled; any in-flight inference result is discarded with it.
func (e *Engine) Run(ctx context.Context) error {
	log.Info("engine started",
		"decimation", e.cfg.DecimationRatio,
		"calibrated", e.calibrator.Record().IsCalibrated,
		"exercise", e.session.Kind)

	for {
		select {
		case <-ctx.Done():
			log.Info("engine stopped")
			return ctx.Err()

		case fn := <-e.commands:
			fn()
			e.syncStatus()

		case f := <-e.frames:
			if !e.decimator.Admit() {
				continue
			}
			if e.inflight {
				// One inference at a time; this frame skips the
				// inference path but stays available for preview.
				debug.PoseLog("engine: inference busy, skipping frame %d\n", f.Seq)
				continue
			}
			e.inflight = true
			go e.infer(ctx, f)

		case r := <-e.results:
			e.inflight = false
			e.apply(r)
			e.syncStatus()
		}
	}
}

// infer runs one pose estimation off the coordinator goroutine.
func (e *Engine) infer(ctx context.Context, f Frame) {
	snap, err := e.est.Estimate(ctx, f.JPEG)
	select {
	case e.results <- inferenceResult{frame: f, snap: snap, err: err}:
	case <-ctx.Done():
	}
}

// apply delivers one inference result to the state machines.
func (e *Engine) apply(r inferenceResult) {
	if r.err != nil {
		// Oracle fault: same as no detection, recover on the next frame.
		log.Warn("pose inference failed", "frame", r.frame.Seq, "error", r.err)
		return
	}
	if r.snap == nil {
		// No person in frame: stop tracking, no state change.
		debug.PoseLog("engine: no person in frame %d\n", r.frame.Seq)
		return
	}

	snap := *r.snap
	now := r.frame.At

	e.calibrator.Observe(snap, now)
	if e.calibrator.Active() {
		// Exercise tracking is suspended during the calibration dialogue.
		return
	}
	e.session.tracker.observe(snap, r.frame.JPEG, now)
}

// SubmitFrame feeds one decoded frame into the pipeline. Non-blocking:
// when the intake buffer is full the frame is dropped, never queued
// behind stale work.
func (e *Engine) SubmitFrame(jpeg []byte, at time.Time) {
	f := Frame{Seq: e.seq.Add(1), JPEG: jpeg, At: at}
	select {
	case e.frames <- f:
	default:
		debug.PoseLog("engine: intake full, dropping frame %d\n", f.Seq)
	}
}

// do serializes a control operation onto the coordinator goroutine.
func (e *Engine) do(fn func()) {
	select {
	case e.commands <- fn:
	default:
		log.Warn("engine: command queue full, dropping control operation")
	}
}

// StartCalibration begins the calibration dialogue.
func (e *Engine) StartCalibration() {
	e.do(func() { e.calibrator.Start() })
}

// CancelCalibration aborts the dialogue back to the nearest stable state.
func (e *Engine) CancelCalibration() {
	e.do(func() { e.calibrator.Cancel() })
}

// ClearCalibration deletes the stored calibration and resets the
// current session's rep count and state.
func (e *Engine) ClearCalibration() {
	e.do(func() {
		if err := e.calibrator.Clear(); err != nil {
			log.Error("clear calibration failed", "error", err)
			return
		}
		e.session.tracker.reset()
		log.Info("calibration cleared")
	})
}

// SelectExercise switches the exercise kind, starting a fresh session.
func (e *Engine) SelectExercise(kind Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("engine: unknown exercise kind %q", kind)
	}
	e.do(func() {
		e.session = e.newSession(kind)
		log.Info("exercise selected", "kind", kind, "session", e.session.ID)
	})
	return nil
}

// ResetSession zeroes the rep counter and returns the tracker to its
// initial state.
func (e *Engine) ResetSession() {
	e.do(func() { e.session.tracker.reset() })
}

// Status returns a copy of the engine's current state.
func (e *Engine) Status() Status {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.status
}

func (e *Engine) newSession(kind Kind) *Session {
	return &Session{
		ID:        uuid.New().String(),
		Kind:      kind,
		StartedAt: time.Now(),
		tracker:   newTracker(kind, e.cfg, func() calibstore.Record { return e.calibrator.Record() }, e.dispatch),
	}
}

// syncStatus publishes a fresh status copy for concurrent readers.
func (e *Engine) syncStatus() {
	s := Status{
		SessionID:     e.session.ID,
		Exercise:      e.session.Kind,
		RepCount:      e.session.tracker.reps(),
		ExerciseState: e.session.tracker.state(),
		Calibration:   e.calibrator.State(),
		Calibrated:    e.calibrator.Record().IsCalibrated,
		HoldProgress:  e.calibrator.HoldProgress(),
	}
	e.statusMu.Lock()
	e.status = s
	e.statusMu.Unlock()
}
