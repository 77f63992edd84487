package estimator

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/repcam/go-repcam/pkg/debug"
	"github.com/repcam/go-repcam/pkg/pose"
)

// MoveNet keypoint order (COCO-style, 17 keypoints). The model output
// is [1,1,17,3] with rows (y, x, score) in normalized coordinates.
var movenetJoints = [17]pose.JointName{
	pose.Head, // nose
	"",        // left eye (unused)
	"",        // right eye (unused)
	"",        // left ear (unused)
	"",        // right ear (unused)
	pose.LeftShoulder,
	pose.RightShoulder,
	pose.LeftElbow,
	pose.RightElbow,
	pose.LeftWrist,
	pose.RightWrist,
	pose.LeftHip,
	pose.RightHip,
	pose.LeftKnee,
	pose.RightKnee,
	pose.LeftAnkle,
	pose.RightAnkle,
}

// MoveNetEstimator runs a MoveNet single-pose model in process via the
// OpenCV DNN module.
type MoveNetEstimator struct {
	net    gocv.Net
	config Config
	mu     sync.Mutex // Protects inference
	closed bool
}

// NewMoveNet creates an in-process pose estimator from an ONNX model.
func NewMoveNet(cfg Config) (*MoveNetEstimator, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load model: %s", cfg.ModelPath)
	}

	return &MoveNetEstimator{
		net:    net,
		config: cfg,
	}, nil
}

// Estimate runs the model on one JPEG frame.
func (e *MoveNetEstimator) Estimate(ctx context.Context, jpeg []byte) (*pose.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	size := e.config.InputSize
	blob := gocv.BlobFromImage(img, 1.0, image.Pt(size, size),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	e.net.SetInput(blob, "")
	out := e.net.Forward("")
	defer out.Close()

	// Output tensor is [1,1,17,3]; read it as a flat (y, x, score) list.
	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read model output: %w", err)
	}
	if len(data) < len(movenetJoints)*3 {
		return nil, fmt.Errorf("unexpected model output size %d", len(data))
	}

	snap := pose.Snapshot{Joints: make(map[pose.JointName]pose.Point)}
	var scoreSum float64
	var scoreCount int

	for k := 0; k < len(movenetJoints); k++ {
		y := float64(data[k*3])
		x := float64(data[k*3+1])
		score := float64(data[k*3+2])

		scoreSum += score
		scoreCount++

		name := movenetJoints[k]
		if name == "" || score < e.config.ConfidenceFloor {
			continue
		}
		snap.Joints[name] = pose.Point{X: x, Y: y}
	}

	if scoreCount > 0 {
		snap.Confidence = scoreSum / float64(scoreCount)
	}

	// Derived landmarks from the unified vocabulary.
	if lh, ok1 := snap.Joints[pose.LeftHip]; ok1 {
		if rh, ok2 := snap.Joints[pose.RightHip]; ok2 {
			root := pose.Point{X: (lh.X + rh.X) / 2, Y: (lh.Y + rh.Y) / 2}
			snap.Joints[pose.Root] = root
			if ls, ok3 := snap.Joints[pose.LeftShoulder]; ok3 {
				if rs, ok4 := snap.Joints[pose.RightShoulder]; ok4 {
					snap.Joints[pose.Spine] = pose.Point{
						X: (root.X + (ls.X+rs.X)/2) / 2,
						Y: (root.Y + (ls.Y+rs.Y)/2) / 2,
					}
				}
			}
		}
	}

	// Nothing cleared the floor anywhere: treat as no person in frame.
	if len(snap.Joints) == 0 && snap.Confidence < e.config.ConfidenceFloor {
		return nil, nil
	}

	debug.PoseLog("movenet: %d joints, confidence %.2f\n", len(snap.Joints), snap.Confidence)
	return &snap, nil
}

// Close releases the DNN resources.
func (e *MoveNetEstimator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.net.Close()
}

// Verify MoveNetEstimator implements Estimator at compile time.
var _ Estimator = (*MoveNetEstimator)(nil)
