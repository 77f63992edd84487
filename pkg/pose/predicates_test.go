package pose

import (
	"math"
	"testing"
)

func snapWith(joints map[JointName]Point) Snapshot {
	return Snapshot{Joints: joints, Confidence: 0.9}
}

func TestHipY_AbsentWhenEitherHipMissing(t *testing.T) {
	cases := []map[JointName]Point{
		{},
		{LeftHip: {X: 0.45, Y: 0.6}},
		{RightHip: {X: 0.55, Y: 0.6}},
	}
	for i, joints := range cases {
		if _, ok := snapWith(joints).HipY(); ok {
			t.Errorf("case %d: expected HipY absent, got present", i)
		}
	}
}

func TestHipY_AveragesBothHips(t *testing.T) {
	s := snapWith(map[JointName]Point{
		LeftHip:  {X: 0.45, Y: 0.70},
		RightHip: {X: 0.55, Y: 0.80},
	})
	y, ok := s.HipY()
	if !ok {
		t.Fatal("expected HipY present")
	}
	if math.Abs(y-0.75) > 1e-9 {
		t.Errorf("expected 0.75, got %v", y)
	}
}

func TestIsStanding(t *testing.T) {
	standing := snapWith(map[JointName]Point{
		LeftHip:    {X: 0.45, Y: 0.55},
		RightHip:   {X: 0.55, Y: 0.55},
		LeftAnkle:  {X: 0.45, Y: 0.95},
		RightAnkle: {X: 0.55, Y: 0.95},
	})
	if !standing.IsStanding() {
		t.Error("expected standing with hips above ankles")
	}

	// Missing ankles resolves to false, never an error
	noAnkles := snapWith(map[JointName]Point{
		LeftHip:  {X: 0.45, Y: 0.55},
		RightHip: {X: 0.55, Y: 0.55},
	})
	if noAnkles.IsStanding() {
		t.Error("expected false with missing ankles")
	}
}

func TestArmsRaised(t *testing.T) {
	raised := snapWith(map[JointName]Point{
		LeftShoulder:  {X: 0.40, Y: 0.30},
		RightShoulder: {X: 0.60, Y: 0.30},
		LeftWrist:     {X: 0.40, Y: 0.15},
		RightWrist:    {X: 0.60, Y: 0.15},
	})
	if !raised.ArmsRaised() {
		t.Error("expected arms raised")
	}

	oneDown := snapWith(map[JointName]Point{
		LeftShoulder:  {X: 0.40, Y: 0.30},
		RightShoulder: {X: 0.60, Y: 0.30},
		LeftWrist:     {X: 0.40, Y: 0.15},
		RightWrist:    {X: 0.60, Y: 0.45},
	})
	if oneDown.ArmsRaised() {
		t.Error("expected false with one wrist below shoulder")
	}

	missing := snapWith(map[JointName]Point{
		LeftShoulder: {X: 0.40, Y: 0.30},
		LeftWrist:    {X: 0.40, Y: 0.15},
	})
	if missing.ArmsRaised() {
		t.Error("expected false with missing joints")
	}
}

func TestHandsOnHips(t *testing.T) {
	s := snapWith(map[JointName]Point{
		LeftShoulder:  {X: 0.40, Y: 0.30},
		RightShoulder: {X: 0.60, Y: 0.30},
		LeftHip:       {X: 0.45, Y: 0.60},
		RightHip:      {X: 0.55, Y: 0.60},
		LeftWrist:     {X: 0.38, Y: 0.58},
		RightWrist:    {X: 0.62, Y: 0.62},
	})
	if !s.HandsOnHips() {
		t.Error("expected hands on hips")
	}

	// Wrists together in front fail the spread check
	together := snapWith(map[JointName]Point{
		LeftShoulder:  {X: 0.40, Y: 0.30},
		RightShoulder: {X: 0.60, Y: 0.30},
		LeftHip:       {X: 0.45, Y: 0.60},
		RightHip:      {X: 0.55, Y: 0.60},
		LeftWrist:     {X: 0.49, Y: 0.60},
		RightWrist:    {X: 0.51, Y: 0.60},
	})
	if together.HandsOnHips() {
		t.Error("expected false with wrists together")
	}
}

func TestHandsCloseTogether(t *testing.T) {
	// Shoulder span 0.2 -> dx < 0.1, dy < 0.08, centered within 0.1
	held := snapWith(map[JointName]Point{
		LeftShoulder:  {X: 0.40, Y: 0.30},
		RightShoulder: {X: 0.60, Y: 0.30},
		LeftWrist:     {X: 0.48, Y: 0.50},
		RightWrist:    {X: 0.52, Y: 0.50},
	})
	if !held.HandsCloseTogether() {
		t.Error("expected hands close together")
	}

	apart := snapWith(map[JointName]Point{
		LeftShoulder:  {X: 0.40, Y: 0.30},
		RightShoulder: {X: 0.60, Y: 0.30},
		LeftWrist:     {X: 0.30, Y: 0.50},
		RightWrist:    {X: 0.70, Y: 0.50},
	})
	if apart.HandsCloseTogether() {
		t.Error("expected false with wrists apart")
	}

	offCenter := snapWith(map[JointName]Point{
		LeftShoulder:  {X: 0.40, Y: 0.30},
		RightShoulder: {X: 0.60, Y: 0.30},
		LeftWrist:     {X: 0.70, Y: 0.50},
		RightWrist:    {X: 0.74, Y: 0.50},
	})
	if offCenter.HandsCloseTogether() {
		t.Error("expected false with wrists off body center")
	}
}

func TestHandsCloseTogether_HipFallback(t *testing.T) {
	// No shoulders: reference is 1.2x hip span (0.1 -> 0.12)
	s := snapWith(map[JointName]Point{
		LeftHip:    {X: 0.45, Y: 0.60},
		RightHip:   {X: 0.55, Y: 0.60},
		LeftWrist:  {X: 0.49, Y: 0.50},
		RightWrist: {X: 0.51, Y: 0.50},
	})
	if !s.HandsCloseTogether() {
		t.Error("expected hands close together via hip fallback")
	}
}

func TestHandsCloseTogether_AbsoluteFallback(t *testing.T) {
	// No torso joints at all: absolute tolerances apply
	near := snapWith(map[JointName]Point{
		LeftWrist:  {X: 0.48, Y: 0.50},
		RightWrist: {X: 0.52, Y: 0.55},
	})
	if !near.HandsCloseTogether() {
		t.Error("expected hands close together via absolute fallback")
	}

	far := snapWith(map[JointName]Point{
		LeftWrist:  {X: 0.40, Y: 0.50},
		RightWrist: {X: 0.60, Y: 0.50},
	})
	if far.HandsCloseTogether() {
		t.Error("expected false via absolute fallback")
	}
}

func TestIsSquatting(t *testing.T) {
	squat := snapWith(map[JointName]Point{
		LeftHip:   {X: 0.45, Y: 0.62},
		RightHip:  {X: 0.55, Y: 0.62},
		LeftKnee:  {X: 0.45, Y: 0.70},
		RightKnee: {X: 0.55, Y: 0.70},
	})
	if !squat.IsSquatting() {
		t.Error("expected squatting with hips near knees")
	}

	upright := snapWith(map[JointName]Point{
		LeftHip:   {X: 0.45, Y: 0.50},
		RightHip:  {X: 0.55, Y: 0.50},
		LeftKnee:  {X: 0.45, Y: 0.75},
		RightKnee: {X: 0.55, Y: 0.75},
	})
	if upright.IsSquatting() {
		t.Error("expected false when upright")
	}
}
