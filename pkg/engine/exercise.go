package engine

import (
	"time"

	"github.com/repcam/go-repcam/pkg/calibstore"
	"github.com/repcam/go-repcam/pkg/debug"
	"github.com/repcam/go-repcam/pkg/pose"
)

// Kind identifies an exercise type.
type Kind string

// Supported exercises.
const (
	KindSitToStand   Kind = "sit_to_stand"
	KindJumpingJacks Kind = "jumping_jacks"
	KindSquats       Kind = "squats"
	KindArmRaises    Kind = "arm_raises"
)

// Kinds lists all supported exercises.
func Kinds() []Kind {
	return []Kind{KindSitToStand, KindJumpingJacks, KindSquats, KindArmRaises}
}

// Valid reports whether k names a supported exercise.
func (k Kind) Valid() bool {
	switch k {
	case KindSitToStand, KindJumpingJacks, KindSquats, KindArmRaises:
		return true
	}
	return false
}

// ExerciseState identifies a phase of the sit-to-stand cycle.
type ExerciseState string

// Sit-to-stand states. Simple exercises report StateStanding only.
const (
	StateStanding   ExerciseState = "standing"
	StateGoingDown  ExerciseState = "going_down"
	StateHoldingSit ExerciseState = "holding_sit"
	StateSitting    ExerciseState = "sitting"
	StateGoingUp    ExerciseState = "going_up"
)

// Spoken lines for exercise tracking.
const (
	promptInPosition = "I can see you. Sit down when you're ready."
)

// tracker converts pose snapshots into rep counts for one exercise
// kind. Implementations are single-goroutine like the rest of the
// engine state.
type tracker interface {
	// observe feeds one snapshot; frame carries the JPEG for photo
	// events (may be nil in tests).
	observe(snap pose.Snapshot, frame []byte, now time.Time)
	reset()
	reps() int
	state() ExerciseState
}

// --- Sit-to-stand ---

// sitStandTracker is the full hysteresis state machine. It requires a
// calibration record; with IsCalibrated false every observation is a
// no-op.
type sitStandTracker struct {
	cfg      Config
	dispatch *Dispatcher
	record   func() calibstore.Record

	current       ExerciseState
	repCount      int
	sitEnteredAt  time.Time // zero = dwell timer not running
	sitPhotoTaken bool      // one sitting photo per rep
	announced     bool      // one-shot "in position" line per session
}

func newSitStandTracker(cfg Config, record func() calibstore.Record, dispatch *Dispatcher) *sitStandTracker {
	return &sitStandTracker{
		cfg:      cfg,
		dispatch: dispatch,
		record:   record,
		current:  StateStanding,
	}
}

func (t *sitStandTracker) reps() int            { return t.repCount }
func (t *sitStandTracker) state() ExerciseState { return t.current }

func (t *sitStandTracker) reset() {
	t.current = StateStanding
	t.repCount = 0
	t.sitEnteredAt = time.Time{}
	t.sitPhotoTaken = false
	t.announced = false
}

// zones implements the hysteresis bands. The two zones overlap; a
// position may satisfy neither.
func (t *sitStandTracker) zones(hipY float64) (sitting, standing bool) {
	rec := t.record()
	rangeY := rec.SittingReferenceY - rec.StandingReferenceY
	if rangeY < 0 {
		rangeY = -rangeY
	}
	slack := rangeY * (1 - t.cfg.HysteresisFraction)
	sitting = hipY >= rec.SittingReferenceY-slack
	standing = hipY <= rec.StandingReferenceY+slack
	return sitting, standing
}

func (t *sitStandTracker) observe(snap pose.Snapshot, frame []byte, now time.Time) {
	if !t.record().IsCalibrated {
		return
	}
	hipY, ok := snap.HipY()
	if !ok {
		// Missing hips means no reading, never a zero position.
		return
	}

	inSitting, inStanding := t.zones(hipY)
	debug.PoseLog("sitstand state=%s hip=%.3f sit=%v stand=%v\n", t.current, hipY, inSitting, inStanding)

	switch t.current {
	case StateStanding:
		if !t.announced && inStanding {
			t.announced = true
			t.dispatch.Emit(Speak{Text: promptInPosition})
		}
		if !inStanding {
			t.sitPhotoTaken = false
			t.sitEnteredAt = time.Time{}
			t.transition(StateGoingDown)
		}

	case StateGoingDown:
		if inSitting {
			t.sitEnteredAt = now
			t.transition(StateHoldingSit)
		} else if inStanding {
			t.transition(StateStanding)
		}

	case StateHoldingSit:
		if !inSitting {
			t.sitEnteredAt = time.Time{}
			t.transition(StateGoingDown)
			return
		}
		if now.Sub(t.sitEnteredAt) >= t.cfg.SitDwell {
			t.transition(StateSitting)
			if !t.sitPhotoTaken {
				t.sitPhotoTaken = true
				t.dispatch.Emit(CapturePhoto{Rep: t.repCount + 1, Position: PositionSitting, Frame: frame})
			}
		}

	case StateSitting:
		if !inSitting {
			t.transition(StateGoingUp)
		}

	case StateGoingUp:
		if inStanding {
			t.repCount++
			t.dispatch.Emit(CapturePhoto{Rep: t.repCount, Position: PositionStanding, Frame: frame})
			t.dispatch.Emit(RepCompleted{Rep: t.repCount})
			t.transition(StateStanding)
		} else if inSitting {
			t.sitEnteredAt = now
			t.transition(StateHoldingSit)
		}
	}
}

func (t *sitStandTracker) transition(to ExerciseState) {
	from := t.current
	t.current = to
	t.dispatch.Emit(ExerciseChanged{From: from, To: to, Rep: t.repCount})
}

// --- Simple exercises ---

// edgeTracker counts repetitions on the falling edge of a boolean
// posture predicate. No hysteresis, no dwell timers.
type edgeTracker struct {
	dispatch  *Dispatcher
	predicate func(pose.Snapshot) bool

	prev     bool
	repCount int
}

func newEdgeTracker(predicate func(pose.Snapshot) bool, dispatch *Dispatcher) *edgeTracker {
	return &edgeTracker{dispatch: dispatch, predicate: predicate}
}

func (t *edgeTracker) reps() int            { return t.repCount }
func (t *edgeTracker) state() ExerciseState { return StateStanding }

func (t *edgeTracker) reset() {
	t.prev = false
	t.repCount = 0
}

func (t *edgeTracker) observe(snap pose.Snapshot, frame []byte, now time.Time) {
	cur := t.predicate(snap)
	if t.prev && !cur {
		t.repCount++
		t.dispatch.Emit(RepCompleted{Rep: t.repCount})
	}
	t.prev = cur
}

// newTracker selects the implementation for an exercise kind.
func newTracker(kind Kind, cfg Config, record func() calibstore.Record, dispatch *Dispatcher) tracker {
	switch kind {
	case KindSitToStand:
		return newSitStandTracker(cfg, record, dispatch)
	case KindSquats:
		return newEdgeTracker(pose.Snapshot.IsSquatting, dispatch)
	default: // jumping jacks, arm raises
		return newEdgeTracker(pose.Snapshot.ArmsRaised, dispatch)
	}
}
