package engine

import (
	"math"
	"time"

	"github.com/repcam/go-repcam/internal/log"
	"github.com/repcam/go-repcam/pkg/calibstore"
	"github.com/repcam/go-repcam/pkg/debug"
	"github.com/repcam/go-repcam/pkg/pose"
)

// CalibrationState identifies a step of the calibration dialogue.
type CalibrationState string

// Calibration states, in dialogue order.
const (
	CalibrationNotCalibrated   CalibrationState = "not_calibrated"
	CalibrationWaitingForReady CalibrationState = "waiting_for_ready"
	CalibrationWaitingForSit   CalibrationState = "waiting_for_sit"
	CalibrationWaitingForStand CalibrationState = "waiting_for_stand"
	CalibrationCalibrated      CalibrationState = "calibrated"
)

// Spoken prompts for the calibration dialogue.
const (
	promptReady      = "Hold your hands together to begin calibration."
	promptSit        = "Sit down, then hold your hands together."
	promptStand      = "Stand up, then hold your hands together."
	promptDone       = "Calibration complete. You're ready to go."
	promptRetryStand = "That didn't look right. Stand up and hold your hands together again."
	promptNoHips     = "I can't see your hips. Step back a little and try again."
)

// gestureHold tracks the hold-for-N-seconds confirmation primitive.
// All fields are frame-timestamp driven: a stall in frame delivery
// stalls the timers identically.
type gestureHold struct {
	startedAt        time.Time // zero = idle
	releaseStartedAt time.Time // zero = release not yet observed
	resetRequired    bool      // a completed hold must be released before re-arming
}

func (g *gestureHold) reset() {
	*g = gestureHold{}
}

// Calibrator drives the gesture-confirmed calibration dialogue. It is
// not safe for concurrent use; the engine serializes all access onto
// its coordinator goroutine.
type Calibrator struct {
	cfg      Config
	store    calibstore.Store
	dispatch *Dispatcher

	state    CalibrationState
	record   calibstore.Record
	hold     gestureHold
	progress float64

	// Staged during the dialogue; committed only at the terminal step.
	sittingY float64
}

// NewCalibrator creates a calibrator seeded with a previously stored
// record (zero Record if never calibrated).
func NewCalibrator(cfg Config, rec calibstore.Record, store calibstore.Store, dispatch *Dispatcher) *Calibrator {
	state := CalibrationNotCalibrated
	if rec.IsCalibrated {
		state = CalibrationCalibrated
	}
	return &Calibrator{
		cfg:      cfg,
		store:    store,
		dispatch: dispatch,
		state:    state,
		record:   rec,
	}
}

// State returns the current calibration state.
func (c *Calibrator) State() CalibrationState {
	return c.state
}

// Record returns the current calibration record.
func (c *Calibrator) Record() calibstore.Record {
	return c.record
}

// Active reports whether a calibration dialogue is in progress.
// Exercise tracking is suspended while the dialogue is active.
func (c *Calibrator) Active() bool {
	switch c.state {
	case CalibrationWaitingForReady, CalibrationWaitingForSit, CalibrationWaitingForStand:
		return true
	}
	return false
}

// HoldProgress returns how far the current gesture hold has progressed,
// 0.0 to 1.0 of the hold duration. For UI progress display.
func (c *Calibrator) HoldProgress() float64 {
	return c.progress
}

// Start enters the dialogue at WaitingForReady and arms gesture
// tracking. No-op if a dialogue is already active.
func (c *Calibrator) Start() {
	if c.Active() {
		return
	}
	c.setState(CalibrationWaitingForReady)
	c.hold.reset()
	c.progress = 0
	c.dispatch.Emit(Speak{Text: promptReady})
}

// Cancel aborts the dialogue, returning to Calibrated if a prior
// calibration exists, otherwise NotCalibrated.
func (c *Calibrator) Cancel() {
	if !c.Active() {
		return
	}
	c.hold.reset()
	c.progress = 0
	if c.record.IsCalibrated {
		c.setState(CalibrationCalibrated)
	} else {
		c.setState(CalibrationNotCalibrated)
	}
}

// Clear drops the stored calibration and returns to NotCalibrated.
func (c *Calibrator) Clear() error {
	if err := c.store.Clear(); err != nil {
		return err
	}
	c.record = calibstore.Record{}
	c.hold.reset()
	c.progress = 0
	c.setState(CalibrationNotCalibrated)
	return nil
}

// Observe feeds one pose snapshot into the dialogue. The timestamp is
// the frame's arrival time; hold and release timers compare against it
// rather than scheduling their own clocks.
func (c *Calibrator) Observe(snap pose.Snapshot, now time.Time) {
	if !c.Active() {
		return
	}

	held := snap.HandsCloseTogether()
	debug.PoseLog("calib state=%s gesture=%v\n", c.state, held)

	// A completed hold requires a sustained release before re-arming,
	// so one long hold cannot confirm two steps back to back.
	if c.hold.resetRequired {
		c.progress = 0
		if held {
			c.hold.releaseStartedAt = time.Time{}
			return
		}
		if c.hold.releaseStartedAt.IsZero() {
			c.hold.releaseStartedAt = now
			return
		}
		if now.Sub(c.hold.releaseStartedAt) >= c.cfg.ReleaseDebounce {
			c.hold.reset()
		}
		return
	}

	if !held {
		// An incomplete hold resets to idle, not to release-required.
		c.hold.startedAt = time.Time{}
		c.progress = 0
		return
	}

	if c.hold.startedAt.IsZero() {
		c.hold.startedAt = now
		c.progress = 0
		return
	}

	elapsed := now.Sub(c.hold.startedAt)
	c.progress = math.Min(1, elapsed.Seconds()/c.cfg.HoldDuration.Seconds())
	if elapsed < c.cfg.HoldDuration {
		return
	}

	c.completeStep(snap)
	c.hold = gestureHold{resetRequired: true}
	c.progress = 0
}

// completeStep fires the terminal action for the current state.
func (c *Calibrator) completeStep(snap pose.Snapshot) {
	switch c.state {
	case CalibrationWaitingForReady:
		c.setState(CalibrationWaitingForSit)
		c.dispatch.Emit(Speak{Text: promptSit})

	case CalibrationWaitingForSit:
		hipY, ok := snap.HipY()
		if !ok {
			log.Warn("calibration: hips not visible at sit confirmation")
			c.dispatch.Emit(Speak{Text: promptNoHips})
			return
		}
		c.sittingY = hipY
		c.setState(CalibrationWaitingForStand)
		c.dispatch.Emit(Speak{Text: promptStand})

	case CalibrationWaitingForStand:
		hipY, ok := snap.HipY()
		if !ok {
			log.Warn("calibration: hips not visible at stand confirmation")
			c.dispatch.Emit(Speak{Text: promptNoHips})
			return
		}
		if degenerate(c.sittingY, hipY) {
			// Equal or non-finite references would make the zone math
			// meaningless. Reject and re-prompt rather than store them.
			log.Warn("calibration: degenerate references rejected",
				"sitting_y", c.sittingY, "standing_y", hipY)
			c.dispatch.Emit(Speak{Text: promptRetryStand})
			return
		}
		c.record = calibstore.Record{
			SittingReferenceY:  c.sittingY,
			StandingReferenceY: hipY,
			IsCalibrated:       true,
		}
		if err := c.store.Save(c.record); err != nil {
			log.Error("calibration: save failed", "error", err)
		}
		c.setState(CalibrationCalibrated)
		c.dispatch.Emit(Speak{Text: promptDone})
		log.Info("calibration complete",
			"sitting_y", c.record.SittingReferenceY,
			"standing_y", c.record.StandingReferenceY)
	}
}

func (c *Calibrator) setState(state CalibrationState) {
	if c.state == state {
		return
	}
	c.state = state
	c.dispatch.Emit(CalibrationChanged{State: state})
}

// degenerate reports whether a reference pair cannot support zone math.
func degenerate(sittingY, standingY float64) bool {
	if math.IsNaN(sittingY) || math.IsInf(sittingY, 0) {
		return true
	}
	if math.IsNaN(standingY) || math.IsInf(standingY, 0) {
		return true
	}
	return sittingY == standingY
}
