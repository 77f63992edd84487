// Package pose defines the unified skeleton vocabulary and the per-frame
// pose snapshot produced by an estimator, plus geometric predicates used
// by the calibration and exercise state machines.
//
// Coordinates are normalized to the frame: x and y in [0,1] with y
// increasing downward. A joint is present in a snapshot only if the
// estimator detected it above its confidence floor.
package pose

// JointName identifies a skeletal landmark, independent of which
// underlying pose model produced it.
type JointName string

// Unified landmark identifiers.
const (
	Head          JointName = "head"
	LeftShoulder  JointName = "left_shoulder"
	RightShoulder JointName = "right_shoulder"
	LeftElbow     JointName = "left_elbow"
	RightElbow    JointName = "right_elbow"
	LeftWrist     JointName = "left_wrist"
	RightWrist    JointName = "right_wrist"
	LeftHip       JointName = "left_hip"
	RightHip      JointName = "right_hip"
	LeftKnee      JointName = "left_knee"
	RightKnee     JointName = "right_knee"
	LeftAnkle     JointName = "left_ankle"
	RightAnkle    JointName = "right_ankle"
	Spine         JointName = "spine"
	Root          JointName = "root"
)

// Point is a 2D normalized position (0-1, y down).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point3D is a position in meters, available in depth-capable mode.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}
