package engine

// FrameDecimator throttles the frame stream ahead of pose inference.
// It admits exactly one frame out of every N, so inference never runs
// more often than once per N input frames. Skipped frames remain
// available to collaborators for raw preview use.
type FrameDecimator struct {
	every int
	count int
}

// NewFrameDecimator creates a decimator admitting every Nth frame.
// Values below 1 are treated as 1 (admit everything).
func NewFrameDecimator(every int) *FrameDecimator {
	if every < 1 {
		every = 1
	}
	return &FrameDecimator{every: every}
}

// Admit counts a frame and reports whether it should be processed.
// The counter resets after each admitted frame.
func (d *FrameDecimator) Admit() bool {
	d.count++
	if d.count >= d.every {
		d.count = 0
		return true
	}
	return false
}

// Reset clears the counter.
func (d *FrameDecimator) Reset() {
	d.count = 0
}
