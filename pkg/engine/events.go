package engine

// Position tags a photo-capture request with the body position that
// triggered it.
type Position string

// Photo positions.
const (
	PositionSitting  Position = "sitting"
	PositionStanding Position = "standing"
)

// Event is the typed union of engine notifications. State machines emit
// events at transition points; they never touch audio, storage, or
// networking themselves.
type Event interface {
	isEvent()
}

// Speak requests a spoken line.
type Speak struct {
	Text string `json:"text"`
}

// CapturePhoto requests a photo of the subject. Frame carries the JPEG
// of the frame that triggered the transition, so sinks do not need to
// reach back into the capture pipeline.
type CapturePhoto struct {
	Rep      int      `json:"rep"`
	Position Position `json:"position"`
	Frame    []byte   `json:"-"`
}

// RepCompleted announces a completed repetition.
type RepCompleted struct {
	Rep int `json:"rep"`
}

// CalibrationChanged announces a calibration state transition.
type CalibrationChanged struct {
	State CalibrationState `json:"state"`
}

// ExerciseChanged announces a sit-to-stand state transition.
type ExerciseChanged struct {
	From ExerciseState `json:"from"`
	To   ExerciseState `json:"to"`
	Rep  int           `json:"rep"`
}

func (Speak) isEvent()              {}
func (CapturePhoto) isEvent()       {}
func (RepCompleted) isEvent()       {}
func (CalibrationChanged) isEvent() {}
func (ExerciseChanged) isEvent()    {}

// Listener receives events synchronously at the point of transition.
// Listeners must be fast; anything slow should hand off to a goroutine.
type Listener func(ev Event)

// Dispatcher fans events out to registered listeners, in registration
// order, synchronously and without batching.
type Dispatcher struct {
	listeners []Listener
}

// Subscribe registers a listener. Not safe to call concurrently with
// Emit; subscribe before the engine starts.
func (d *Dispatcher) Subscribe(fn Listener) {
	d.listeners = append(d.listeners, fn)
}

// Emit delivers an event to every listener.
func (d *Dispatcher) Emit(ev Event) {
	for _, fn := range d.listeners {
		fn(ev)
	}
}
