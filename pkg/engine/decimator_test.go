package engine

import "testing"

func TestFrameDecimator_EveryThird(t *testing.T) {
	d := NewFrameDecimator(3)

	var admitted []int
	for i := 1; i <= 9; i++ {
		if d.Admit() {
			admitted = append(admitted, i)
		}
	}

	want := []int{3, 6, 9}
	if len(admitted) != len(want) {
		t.Fatalf("expected %v admitted, got %v", want, admitted)
	}
	for i := range want {
		if admitted[i] != want[i] {
			t.Errorf("expected frame %d admitted, got %d", want[i], admitted[i])
		}
	}
}

func TestFrameDecimator_RatioOneAdmitsAll(t *testing.T) {
	d := NewFrameDecimator(1)
	for i := 0; i < 5; i++ {
		if !d.Admit() {
			t.Fatalf("frame %d not admitted with ratio 1", i)
		}
	}
}

func TestFrameDecimator_ClampsBelowOne(t *testing.T) {
	d := NewFrameDecimator(0)
	if !d.Admit() {
		t.Error("expected ratio 0 to behave as 1")
	}
}

func TestFrameDecimator_Reset(t *testing.T) {
	d := NewFrameDecimator(3)
	d.Admit()
	d.Admit()
	d.Reset()

	count := 0
	for i := 0; i < 3; i++ {
		if d.Admit() {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly 1 admission in 3 frames after reset, got %d", count)
	}
}
