package pose

import "math"

// Tolerances for the geometric predicates, in normalized frame units
// unless stated otherwise.
const (
	// HandsOnHips: vertical band around hip height as a fraction of
	// torso height, and minimum wrist spread as a fraction of shoulder
	// width.
	hipBandFraction   = 0.6
	hipSpreadFraction = 0.4

	// HandsCloseTogether: wrist proximity as fractions of the body
	// reference width, and absolute fallbacks when no torso is visible.
	closeXFraction      = 0.5
	closeYFraction      = 0.4
	closeCenterFraction = 0.5
	hipSpanScale        = 1.2
	absCloseX           = 0.15
	absCloseY           = 0.10

	// IsSquatting: maximum hip-to-knee vertical distance.
	squatHipKneeBand = 0.15
)

// HipY returns the average of the left and right hip heights.
// Absent if either hip is missing. This is the single scalar driving
// calibration and sit/stand tracking.
func (s Snapshot) HipY() (float64, bool) {
	mid, ok := s.midpoint(LeftHip, RightHip)
	if !ok {
		return 0, false
	}
	return mid.Y, true
}

// IsStanding reports whether the hips are above the ankles.
// False if any required joint is missing.
func (s Snapshot) IsStanding() bool {
	hips, ok := s.midpoint(LeftHip, RightHip)
	if !ok {
		return false
	}
	ankles, ok := s.midpoint(LeftAnkle, RightAnkle)
	if !ok {
		return false
	}
	return hips.Y < ankles.Y
}

// ArmsRaised reports whether both wrists are above their shoulders.
func (s Snapshot) ArmsRaised() bool {
	lw, ok1 := s.Joints[LeftWrist]
	rw, ok2 := s.Joints[RightWrist]
	ls, ok3 := s.Joints[LeftShoulder]
	rs, ok4 := s.Joints[RightShoulder]
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	return lw.Y < ls.Y && rw.Y < rs.Y
}

// HandsOnHips reports whether both wrists sit near hip height and are
// spread apart horizontally.
func (s Snapshot) HandsOnHips() bool {
	lw, ok1 := s.Joints[LeftWrist]
	rw, ok2 := s.Joints[RightWrist]
	if !ok1 || !ok2 {
		return false
	}
	hips, ok := s.midpoint(LeftHip, RightHip)
	if !ok {
		return false
	}
	shoulders, ok := s.midpoint(LeftShoulder, RightShoulder)
	if !ok {
		return false
	}
	ls := s.Joints[LeftShoulder]
	rs := s.Joints[RightShoulder]

	torsoHeight := math.Abs(hips.Y - shoulders.Y)
	band := hipBandFraction * torsoHeight
	if math.Abs(lw.Y-hips.Y) > band || math.Abs(rw.Y-hips.Y) > band {
		return false
	}

	shoulderWidth := math.Abs(ls.X - rs.X)
	return math.Abs(lw.X-rw.X) > hipSpreadFraction*shoulderWidth
}

// HandsCloseTogether reports whether the wrists are brought together in
// front of the body. This is the hands-free confirmation gesture used
// during calibration.
//
// The proximity tolerance scales with a body reference width: shoulder
// span when visible, otherwise 1.2x hip span. With no torso joints at
// all, fixed absolute tolerances apply and the centering check is
// skipped.
func (s Snapshot) HandsCloseTogether() bool {
	lw, ok1 := s.Joints[LeftWrist]
	rw, ok2 := s.Joints[RightWrist]
	if !ok1 || !ok2 {
		return false
	}

	dx := math.Abs(lw.X - rw.X)
	dy := math.Abs(lw.Y - rw.Y)

	ref, center, ok := s.referenceWidth()
	if !ok {
		return dx < absCloseX && dy < absCloseY
	}

	if dx >= closeXFraction*ref || dy >= closeYFraction*ref {
		return false
	}
	mid := (lw.X + rw.X) / 2
	return math.Abs(mid-center) < closeCenterFraction*ref
}

// IsSquatting reports whether the hips have dropped to knee height.
func (s Snapshot) IsSquatting() bool {
	hips, ok := s.midpoint(LeftHip, RightHip)
	if !ok {
		return false
	}
	knees, ok := s.midpoint(LeftKnee, RightKnee)
	if !ok {
		return false
	}
	return math.Abs(hips.Y-knees.Y) < squatHipKneeBand
}

// referenceWidth returns the body reference width and horizontal center
// used by the gesture predicate: shoulder span preferred, hip span
// scaled up as a fallback.
func (s Snapshot) referenceWidth() (width, center float64, ok bool) {
	if ls, ok1 := s.Joints[LeftShoulder]; ok1 {
		if rs, ok2 := s.Joints[RightShoulder]; ok2 {
			return math.Abs(ls.X - rs.X), (ls.X + rs.X) / 2, true
		}
	}
	if lh, ok1 := s.Joints[LeftHip]; ok1 {
		if rh, ok2 := s.Joints[RightHip]; ok2 {
			return hipSpanScale * math.Abs(lh.X-rh.X), (lh.X + rh.X) / 2, true
		}
	}
	return 0, 0, false
}
