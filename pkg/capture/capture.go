package capture

import (
	"context"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/repcam/go-repcam/internal/log"
)

// FrameFunc receives one JPEG-encoded frame and its capture time.
type FrameFunc func(jpeg []byte, at time.Time)

// Capture reads frames from a camera device and delivers them as JPEG.
type Capture struct {
	cfg Config
	cam *gocv.VideoCapture
}

// Open opens the capture device described by the config.
func Open(cfg Config) (*Capture, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("capture: invalid config: %v", errs)
	}

	cam, err := gocv.OpenVideoCapture(cfg.DeviceIndex)
	if err != nil {
		return nil, fmt.Errorf("capture: open device %d: %w", cfg.DeviceIndex, err)
	}

	cam.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	cam.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	cam.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	return &Capture{cfg: cfg, cam: cam}, nil
}

// Run pumps frames to fn until the context is cancelled. Each frame is
// JPEG-encoded once and shared by all consumers downstream.
func (c *Capture) Run(ctx context.Context, fn FrameFunc) error {
	interval := time.Second / time.Duration(c.cfg.Framerate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	img := gocv.NewMat()
	defer img.Close()

	log.Info("capture started",
		"device", c.cfg.DeviceIndex,
		"resolution", fmt.Sprintf("%dx%d", c.cfg.Width, c.cfg.Height),
		"fps", c.cfg.Framerate)

	params := []int{gocv.IMWriteJpegQuality, c.cfg.Quality}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if ok := c.cam.Read(&img); !ok || img.Empty() {
				// Dropped frame from the device; skip, not fatal.
				continue
			}
			buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, params)
			if err != nil {
				log.Warn("frame encode failed", "error", err)
				continue
			}
			jpeg := make([]byte, len(buf.GetBytes()))
			copy(jpeg, buf.GetBytes())
			buf.Close()

			fn(jpeg, time.Now())
		}
	}
}

// Close releases the capture device.
func (c *Capture) Close() error {
	return c.cam.Close()
}
