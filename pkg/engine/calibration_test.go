package engine

import (
	"testing"
	"time"

	"github.com/repcam/go-repcam/pkg/calibstore"
	"github.com/repcam/go-repcam/pkg/pose"
)

// gestureSnap returns a snapshot with hands held together and hips at
// the given height.
func gestureSnap(hipY float64) pose.Snapshot {
	return pose.Snapshot{
		Confidence: 0.9,
		Joints: map[pose.JointName]pose.Point{
			pose.LeftShoulder:  {X: 0.40, Y: 0.30},
			pose.RightShoulder: {X: 0.60, Y: 0.30},
			pose.LeftWrist:     {X: 0.48, Y: 0.50},
			pose.RightWrist:    {X: 0.52, Y: 0.50},
			pose.LeftHip:       {X: 0.45, Y: hipY},
			pose.RightHip:      {X: 0.55, Y: hipY},
		},
	}
}

// idleSnap returns a snapshot with hands apart and hips at the given
// height.
func idleSnap(hipY float64) pose.Snapshot {
	return pose.Snapshot{
		Confidence: 0.9,
		Joints: map[pose.JointName]pose.Point{
			pose.LeftShoulder:  {X: 0.40, Y: 0.30},
			pose.RightShoulder: {X: 0.60, Y: 0.30},
			pose.LeftWrist:     {X: 0.25, Y: 0.55},
			pose.RightWrist:    {X: 0.75, Y: 0.55},
			pose.LeftHip:       {X: 0.45, Y: hipY},
			pose.RightHip:      {X: 0.55, Y: hipY},
		},
	}
}

type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) listen(ev Event) {
	r.events = append(r.events, ev)
}

func (r *eventRecorder) speaks() []string {
	var out []string
	for _, ev := range r.events {
		if s, ok := ev.(Speak); ok {
			out = append(out, s.Text)
		}
	}
	return out
}

func newTestCalibrator(rec calibstore.Record) (*Calibrator, *calibstore.MemoryStore, *eventRecorder) {
	store := calibstore.NewMemoryStore()
	recorder := &eventRecorder{}
	dispatch := &Dispatcher{}
	dispatch.Subscribe(recorder.listen)
	return NewCalibrator(DefaultConfig(), rec, store, dispatch), store, recorder
}

// completeHold drives the gesture from idle through a full hold and
// the release debounce, advancing the returned timestamp.
func completeHold(c *Calibrator, hipY float64, at time.Time) time.Time {
	c.Observe(gestureSnap(hipY), at) // hold starts
	at = at.Add(2 * time.Second)
	c.Observe(gestureSnap(hipY), at) // hold completes, step fires
	at = at.Add(50 * time.Millisecond)
	c.Observe(idleSnap(hipY), at) // release observed
	at = at.Add(600 * time.Millisecond)
	c.Observe(idleSnap(hipY), at) // debounce elapses, re-armed
	return at.Add(50 * time.Millisecond)
}

func TestCalibrator_FullDialogue(t *testing.T) {
	c, store, recorder := newTestCalibrator(calibstore.Record{})

	if c.State() != CalibrationNotCalibrated {
		t.Fatalf("expected not_calibrated, got %s", c.State())
	}

	c.Start()
	if c.State() != CalibrationWaitingForReady {
		t.Fatalf("expected waiting_for_ready, got %s", c.State())
	}

	at := time.Now()
	at = completeHold(c, 0.60, at)
	if c.State() != CalibrationWaitingForSit {
		t.Fatalf("expected waiting_for_sit, got %s", c.State())
	}

	at = completeHold(c, 0.80, at)
	if c.State() != CalibrationWaitingForStand {
		t.Fatalf("expected waiting_for_stand, got %s", c.State())
	}

	completeHold(c, 0.40, at)
	if c.State() != CalibrationCalibrated {
		t.Fatalf("expected calibrated, got %s", c.State())
	}

	rec := c.Record()
	if !rec.IsCalibrated {
		t.Error("expected record calibrated")
	}
	if rec.SittingReferenceY != 0.80 || rec.StandingReferenceY != 0.40 {
		t.Errorf("unexpected references: sit=%v stand=%v",
			rec.SittingReferenceY, rec.StandingReferenceY)
	}

	// Persisted on the terminal transition
	stored, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if stored != rec {
		t.Errorf("stored record %+v differs from engine record %+v", stored, rec)
	}
	if store.SaveCount != 1 {
		t.Errorf("expected exactly 1 save, got %d", store.SaveCount)
	}

	if len(recorder.speaks()) == 0 {
		t.Error("expected spoken prompts during the dialogue")
	}
}

func TestCalibrator_ShortHoldDoesNotFire(t *testing.T) {
	c, _, _ := newTestCalibrator(calibstore.Record{})
	c.Start()

	at := time.Now()
	c.Observe(gestureSnap(0.6), at)
	c.Observe(gestureSnap(0.6), at.Add(1900*time.Millisecond))
	if c.State() != CalibrationWaitingForReady {
		t.Fatalf("1.9s hold must not fire, got %s", c.State())
	}

	// Dropping the gesture resets to idle: a fresh 1.9s hold later
	// still does not fire.
	c.Observe(idleSnap(0.6), at.Add(2*time.Second))
	c.Observe(gestureSnap(0.6), at.Add(3*time.Second))
	c.Observe(gestureSnap(0.6), at.Add(3*time.Second+1900*time.Millisecond))
	if c.State() != CalibrationWaitingForReady {
		t.Fatalf("restarted hold must not fire early, got %s", c.State())
	}
}

func TestCalibrator_LongHoldFiresOnce(t *testing.T) {
	c, _, _ := newTestCalibrator(calibstore.Record{})
	c.Start()

	// Held continuously for 5 seconds: exactly one step fires.
	at := time.Now()
	c.Observe(gestureSnap(0.6), at)
	for ms := 200; ms <= 5000; ms += 200 {
		c.Observe(gestureSnap(0.6), at.Add(time.Duration(ms)*time.Millisecond))
	}
	if c.State() != CalibrationWaitingForSit {
		t.Fatalf("expected waiting_for_sit after long hold, got %s", c.State())
	}
}

func TestCalibrator_ReleaseDebounceRequired(t *testing.T) {
	c, _, _ := newTestCalibrator(calibstore.Record{})
	c.Start()

	at := time.Now()
	c.Observe(gestureSnap(0.6), at)
	at = at.Add(2 * time.Second)
	c.Observe(gestureSnap(0.6), at) // fires -> waiting_for_sit

	// A 0.3s release then re-hold must not re-arm the gesture.
	at = at.Add(50 * time.Millisecond)
	c.Observe(idleSnap(0.8), at)
	at = at.Add(300 * time.Millisecond)
	c.Observe(gestureSnap(0.8), at) // release too short, debounce restarts
	at = at.Add(2 * time.Second)
	c.Observe(gestureSnap(0.8), at)
	if c.State() != CalibrationWaitingForSit {
		t.Fatalf("hold during incomplete release must not fire, got %s", c.State())
	}
}

func TestCalibrator_HoldProgress(t *testing.T) {
	c, _, _ := newTestCalibrator(calibstore.Record{})
	c.Start()

	if c.HoldProgress() != 0 {
		t.Errorf("expected 0 progress before hold, got %v", c.HoldProgress())
	}

	at := time.Now()
	c.Observe(gestureSnap(0.6), at)
	c.Observe(gestureSnap(0.6), at.Add(time.Second))
	if p := c.HoldProgress(); p < 0.45 || p > 0.55 {
		t.Errorf("expected ~0.5 progress at 1s, got %v", p)
	}
}

func TestCalibrator_DegenerateReferencesRejected(t *testing.T) {
	c, store, recorder := newTestCalibrator(calibstore.Record{})
	c.Start()

	at := time.Now()
	at = completeHold(c, 0.60, at) // ready
	at = completeHold(c, 0.60, at) // sit reference = 0.60

	// Standing reference equal to sitting: rejected, re-prompted.
	at = completeHold(c, 0.60, at)
	if c.State() != CalibrationWaitingForStand {
		t.Fatalf("expected rejection to stay in waiting_for_stand, got %s", c.State())
	}
	if store.SaveCount != 0 {
		t.Errorf("degenerate record must not be persisted, saves=%d", store.SaveCount)
	}
	found := false
	for _, s := range recorder.speaks() {
		if s == promptRetryStand {
			found = true
		}
	}
	if !found {
		t.Error("expected a retry prompt after rejection")
	}

	// A distinct reference completes the dialogue.
	completeHold(c, 0.40, at)
	if c.State() != CalibrationCalibrated {
		t.Fatalf("expected calibrated after retry, got %s", c.State())
	}
}

func TestCalibrator_CancelReturnsToNearestStableState(t *testing.T) {
	// Never calibrated: cancel goes to not_calibrated.
	c, _, _ := newTestCalibrator(calibstore.Record{})
	c.Start()
	c.Cancel()
	if c.State() != CalibrationNotCalibrated {
		t.Errorf("expected not_calibrated after cancel, got %s", c.State())
	}

	// Previously calibrated: cancel goes back to calibrated.
	prior := calibstore.Record{SittingReferenceY: 0.8, StandingReferenceY: 0.4, IsCalibrated: true}
	c2, _, _ := newTestCalibrator(prior)
	c2.Start()
	c2.Cancel()
	if c2.State() != CalibrationCalibrated {
		t.Errorf("expected calibrated after cancel, got %s", c2.State())
	}
	if c2.Record() != prior {
		t.Error("cancel must not touch the stored record")
	}
}

func TestCalibrator_MissingHipsDoesNotAdvance(t *testing.T) {
	c, _, _ := newTestCalibrator(calibstore.Record{})
	c.Start()

	at := time.Now()
	at = completeHold(c, 0.60, at) // -> waiting_for_sit

	// Gesture without visible hips: step must not record a reference.
	noHips := pose.Snapshot{
		Confidence: 0.9,
		Joints: map[pose.JointName]pose.Point{
			pose.LeftShoulder:  {X: 0.40, Y: 0.30},
			pose.RightShoulder: {X: 0.60, Y: 0.30},
			pose.LeftWrist:     {X: 0.48, Y: 0.50},
			pose.RightWrist:    {X: 0.52, Y: 0.50},
		},
	}
	c.Observe(noHips, at)
	c.Observe(noHips, at.Add(2*time.Second))
	if c.State() != CalibrationWaitingForSit {
		t.Fatalf("expected to stay in waiting_for_sit, got %s", c.State())
	}
}

func TestCalibrator_ClearResetsState(t *testing.T) {
	prior := calibstore.Record{SittingReferenceY: 0.8, StandingReferenceY: 0.4, IsCalibrated: true}
	c, store, _ := newTestCalibrator(prior)

	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if c.State() != CalibrationNotCalibrated {
		t.Errorf("expected not_calibrated after clear, got %s", c.State())
	}
	if c.Record().IsCalibrated {
		t.Error("expected record cleared")
	}
	rec, _ := store.Load()
	if rec.IsCalibrated {
		t.Error("expected store cleared")
	}
}
