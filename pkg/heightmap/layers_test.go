package heightmap

import "testing"

// TestLayerStack_Composite_S6 exercises spec scenario S6: a constant-100
// base layer plus a constant-50 additive overlay at 0.5 opacity composes
// to a uniform 125.
func TestLayerStack_Composite_S6(t *testing.T) {
	s := NewLayerStack(2, 2)
	base := s.Add("base")
	fill(base.Data, 100)

	overlay := s.Add("overlay")
	fill(overlay.Data, 50)
	overlay.Opacity = 0.5
	overlay.Blend = BlendAdd

	composed := s.Composite()
	for i, v := range composed {
		if v != 125 {
			t.Fatalf("composed[%d] = %d, want 125", i, v)
		}
	}
}

// TestLayerStack_Flatten_R2 asserts spec R2: flatten is idempotent.
func TestLayerStack_Flatten_R2(t *testing.T) {
	s := NewLayerStack(2, 2)
	base := s.Add("base")
	fill(base.Data, 100)
	overlay := s.Add("overlay")
	fill(overlay.Data, 50)
	overlay.Opacity = 0.5
	overlay.Blend = BlendAdd

	first := s.Flatten()
	firstData := append([]uint8(nil), first.Data...)

	second := s.Flatten()
	if len(second.Data) != len(firstData) {
		t.Fatalf("flatten(flatten(S)) length mismatch")
	}
	for i := range firstData {
		if second.Data[i] != firstData[i] {
			t.Fatalf("flatten not idempotent at %d: %d != %d", i, second.Data[i], firstData[i])
		}
	}
}

func TestLayerStack_InvisibleAndLockedExcludedFromComposite(t *testing.T) {
	s := NewLayerStack(1, 1)
	base := s.Add("base")
	fill(base.Data, 10)

	hidden := s.Add("hidden")
	fill(hidden.Data, 200)
	hidden.Visible = false

	locked := s.Add("locked")
	fill(locked.Data, 200)
	locked.Locked = true

	composed := s.Composite()
	if composed[0] != 10 {
		t.Fatalf("composed[0] = %d, want 10 (hidden/locked layers must not contribute)", composed[0])
	}
}

func TestLayerStack_MergeDown(t *testing.T) {
	s := NewLayerStack(1, 1)
	lower := s.Add("lower")
	fill(lower.Data, 10)
	upper := s.Add("upper")
	fill(upper.Data, 20)
	upper.Blend = BlendReplace
	upper.Opacity = 1.0

	if !s.MergeDown(upper.ID) {
		t.Fatal("MergeDown returned false")
	}
	if lower.Data[0] != 20 {
		t.Fatalf("lower.Data[0] = %d, want 20 after replace-merge", lower.Data[0])
	}
	if s.indexOf(upper.ID) != -1 {
		t.Fatal("upper layer should have been removed after merge")
	}
}

func TestLayerStack_MoveUpMoveDown(t *testing.T) {
	s := NewLayerStack(1, 1)
	a := s.Add("a")
	b := s.Add("b")

	if !s.MoveUp(a.ID) {
		t.Fatal("MoveUp(a) should succeed when a is below b")
	}
	if s.indexOf(a.ID) != 1 || s.indexOf(b.ID) != 0 {
		t.Fatal("MoveUp did not swap order")
	}
	if !s.MoveDown(a.ID) {
		t.Fatal("MoveDown(a) should succeed now that a is on top")
	}
	if s.indexOf(a.ID) != 0 {
		t.Fatal("MoveDown did not restore original order")
	}
}

func fill(data []uint8, v uint8) {
	for i := range data {
		data[i] = v
	}
}
