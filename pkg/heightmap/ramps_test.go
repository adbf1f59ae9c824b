package heightmap

import (
	"math"
	"testing"
)

func TestCurveFunc_EndpointsAndMonotonic(t *testing.T) {
	curves := []RampCurve{CurveLinear, CurveEaseIn, CurveEaseOut, CurveEaseInOut, CurveExponential}
	for _, c := range curves {
		if got := curveFunc(c, 0); math.Abs(got) > 1e-9 {
			t.Fatalf("%s: curveFunc(0) = %v, want ~0", c, got)
		}
		if got := curveFunc(c, 1); math.Abs(got-1) > 1e-9 {
			t.Fatalf("%s: curveFunc(1) = %v, want ~1", c, got)
		}
		prev := -1.0
		for i := 0; i <= 10; i++ {
			t1 := float64(i) / 10
			v := curveFunc(c, t1)
			if v < prev-1e-9 {
				t.Fatalf("%s: curveFunc not monotonic at t=%v (%v < prev %v)", c, t1, v, prev)
			}
			prev = v
		}
	}
}

// TestRealizeStrip_P2_EndpointsMatchHeightfield asserts spec P2: a ramp
// strip's realized heights run exactly from the strip's start height to
// its end height.
func TestRealizeStrip_P2_EndpointsMatchHeightfield(t *testing.T) {
	cols, rows := 20, 5
	g, err := NewGrid(cols, rows)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	hf := newHeightfield(cols, rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			hf.set(x, y, 0)
		}
	}
	hf.set(0, 2, 0.2)
	hf.set(9, 2, 0.8)

	strip := make([]Point, 0, 10)
	for x := 0; x <= 9; x++ {
		strip = append(strip, Point{x, 2})
	}

	realizeStrip(g, hf, strip, 1, CurveLinear)

	if math.Abs(hf.at(0, 2)-0.2) > 1e-6 {
		t.Fatalf("ramp start height = %v, want 0.2", hf.at(0, 2))
	}
	if math.Abs(hf.at(9, 2)-0.8) > 1e-6 {
		t.Fatalf("ramp end height = %v, want 0.8", hf.at(9, 2))
	}
	// Monotonic along a linear ramp.
	for x := 1; x < 9; x++ {
		if hf.at(x, 2) < hf.at(x-1, 2)-1e-9 {
			t.Fatalf("linear ramp height not monotonic at x=%d", x)
		}
	}
}

func TestRealizeRamps_NoopWhenDisabled(t *testing.T) {
	cfg := minimalConfig()
	cfg.Ramps.Enabled = false
	cols, rows := 10, 10
	g, err := NewGrid(cols, rows)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	hf := newHeightfield(cols, rows)
	seg := RoadSegment{Path: []Point{{0, 0}, {1, 0}, {2, 0}}, RampAt: []int{0}}

	before := append([]float32(nil), hf.Values...)
	RealizeRamps(g, hf, []RoadSegment{seg}, cfg)
	for i := range before {
		if hf.Values[i] != before[i] {
			t.Fatal("RealizeRamps should be a no-op when ramps.enabled=false")
		}
	}
}
