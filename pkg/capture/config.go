// Package capture provides the camera frame source: it pumps decoded
// frames from a capture device into the engine at a fixed rate.
// This follows the same pattern as pkg/engine for tunable parameters.
package capture

// Config holds all capture configuration parameters.
type Config struct {
	// DeviceIndex selects the capture device.
	DeviceIndex int `json:"device_index"`

	// Resolution requested from the device.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Framerate is the frame delivery rate in FPS.
	Framerate int `json:"framerate"`

	// Quality is the JPEG encode quality, 1-100.
	Quality int `json:"quality"`
}

// DefaultConfig returns the recommended configuration. 640x480 keeps
// pose inference cheap; the model downscales anyway.
func DefaultConfig() Config {
	return Config{
		DeviceIndex: 0,
		Width:       640,
		Height:      480,
		Framerate:   30,
		Quality:     85,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.DeviceIndex < 0 {
		errors = append(errors, "device_index must not be negative")
	}
	if c.Width < 160 || c.Width > 4096 {
		errors = append(errors, "width must be between 160 and 4096")
	}
	if c.Height < 120 || c.Height > 2160 {
		errors = append(errors, "height must be between 120 and 2160")
	}
	if c.Framerate < 1 || c.Framerate > 120 {
		errors = append(errors, "framerate must be between 1 and 120")
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}

	return errors
}
