package engine

import "time"

// Config holds all tunable parameters for the rep-counting engine.
type Config struct {
	// Calibration gesture
	HoldDuration    time.Duration // How long the gesture must be held to confirm a step
	ReleaseDebounce time.Duration // Continuous release required before the gesture re-arms

	// Sit-to-stand
	SitDwell           time.Duration // Minimum time in the sitting zone before a sit counts
	HysteresisFraction float64       // Zone width control; zones overlap by (1 - fraction) of the range

	// Frame intake
	DecimationRatio int // Run pose inference on every Nth frame
	FrameBuffer     int // Intake channel capacity; frames beyond it are dropped
}

// DefaultConfig returns the recommended configuration.
func DefaultConfig() Config {
	return Config{
		HoldDuration:    2 * time.Second,
		ReleaseDebounce: 500 * time.Millisecond,

		SitDwell:           300 * time.Millisecond,
		HysteresisFraction: 0.85,

		DecimationRatio: 3,
		FrameBuffer:     8,
	}
}

// Validate checks the config values are usable.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string
	if c.HoldDuration <= 0 {
		errors = append(errors, "hold_duration must be positive")
	}
	if c.ReleaseDebounce < 0 {
		errors = append(errors, "release_debounce must not be negative")
	}
	if c.SitDwell < 0 {
		errors = append(errors, "sit_dwell must not be negative")
	}
	if c.HysteresisFraction <= 0 || c.HysteresisFraction > 1 {
		errors = append(errors, "hysteresis_fraction must be in (0, 1]")
	}
	if c.DecimationRatio < 1 {
		errors = append(errors, "decimation_ratio must be at least 1")
	}
	if c.FrameBuffer < 1 {
		errors = append(errors, "frame_buffer must be at least 1")
	}
	return errors
}
