// Package estimator provides the pose-estimation oracle boundary.
//
// The engine treats pose estimation as a black box: given a JPEG frame
// it either gets back a pose.Snapshot or "no person". Backends include
// an in-process MoveNet model (gocv DNN) and a remote estimation
// service reached over a websocket.
package estimator

import (
	"context"
	"errors"

	"github.com/repcam/go-repcam/pkg/pose"
)

// Common errors returned by estimators.
var (
	ErrClosed       = errors.New("estimator: closed")
	ErrNotConnected = errors.New("estimator: not connected")
)

// Estimator is the interface for pose-estimation backends.
type Estimator interface {
	// Estimate runs pose estimation on one JPEG frame.
	// Returns (nil, nil) when no person is detected; a non-nil snapshot
	// may still carry an empty joint map when nothing cleared the
	// confidence floor.
	Estimate(ctx context.Context, jpeg []byte) (*pose.Snapshot, error)

	// Close releases backend resources.
	Close() error
}

// Config holds estimator configuration.
type Config struct {
	// ModelPath is the ONNX model for the in-process backend.
	ModelPath string

	// ConfidenceFloor is the per-joint score below which a landmark is
	// excluded from the snapshot.
	ConfidenceFloor float64

	// InputSize is the square model input edge in pixels.
	InputSize int
}

// DefaultConfig returns production defaults for MoveNet Lightning.
func DefaultConfig() Config {
	return Config{
		ModelPath:       "models/movenet_singlepose_lightning.onnx",
		ConfidenceFloor: 0.3,
		InputSize:       192,
	}
}
