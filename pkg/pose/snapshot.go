package pose

// Snapshot is an immutable per-frame pose estimate.
//
// A snapshot with an empty Joints map is valid and means "no reliable
// detection this frame". It is distinct from "no person in frame", which
// estimators report by returning no snapshot at all.
type Snapshot struct {
	// Joints maps landmarks to 2D normalized positions. Keys are present
	// only for landmarks detected above the estimator's confidence floor.
	Joints map[JointName]Point `json:"joints"`

	// Joints3D maps landmarks to positions in meters.
	// Only populated when Is3D is true.
	Joints3D map[JointName]Point3D `json:"joints_3d,omitempty"`

	// Confidence is the overall detection confidence (0-1).
	Confidence float64 `json:"confidence"`

	// Is3D reports whether depth data is available.
	Is3D bool `json:"is_3d"`

	// BodyHeight is the estimated subject height in meters.
	// Only meaningful when Is3D is true.
	BodyHeight float64 `json:"body_height,omitempty"`

	// CameraDistance is the estimated subject distance in meters.
	// Only meaningful when Is3D is true.
	CameraDistance float64 `json:"camera_distance,omitempty"`
}

// Joint returns the 2D position of a landmark and whether it was detected.
func (s Snapshot) Joint(name JointName) (Point, bool) {
	p, ok := s.Joints[name]
	return p, ok
}

// Empty reports whether the snapshot carries no detected landmarks.
func (s Snapshot) Empty() bool {
	return len(s.Joints) == 0
}

// midpoint of two joints, if both are present.
func (s Snapshot) midpoint(a, b JointName) (Point, bool) {
	pa, oka := s.Joints[a]
	pb, okb := s.Joints[b]
	if !oka || !okb {
		return Point{}, false
	}
	return Point{X: (pa.X + pb.X) / 2, Y: (pa.Y + pb.Y) / 2}, true
}
