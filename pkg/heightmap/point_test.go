package heightmap

import "testing"

func TestPointDistance(t *testing.T) {
	a := Point{0, 0}
	b := Point{3, 4}
	if d := a.Distance(b); d != 5 {
		t.Errorf("expected distance 5, got %v", d)
	}
}

func TestPointManhattanDistance(t *testing.T) {
	a := Point{1, 1}
	b := Point{4, 5}
	if d := a.ManhattanDistance(b); d != 7 {
		t.Errorf("expected manhattan distance 7, got %d", d)
	}
}

func TestPointChebyshevDistance(t *testing.T) {
	a := Point{0, 0}
	cases := []struct {
		b    Point
		want int
	}{
		{Point{3, 1}, 3},
		{Point{1, 5}, 5},
		{Point{-4, -2}, 4},
	}
	for _, c := range cases {
		if got := a.ChebyshevDistance(c.b); got != c.want {
			t.Errorf("ChebyshevDistance(%v, %v) = %d, want %d", a, c.b, got, c.want)
		}
	}
}

func TestPointInBounds(t *testing.T) {
	if !(Point{0, 0}).InBounds(10, 10) {
		t.Error("expected origin in bounds")
	}
	if (Point{10, 0}).InBounds(10, 10) {
		t.Error("expected x==cols to be out of bounds")
	}
	if (Point{-1, 0}).InBounds(10, 10) {
		t.Error("expected negative x to be out of bounds")
	}
}

func TestPointNeighbors4(t *testing.T) {
	n := (Point{5, 5}).Neighbors4()
	want := [4]Point{{5, 4}, {6, 5}, {5, 6}, {4, 5}}
	if n != want {
		t.Errorf("Neighbors4() = %v, want %v", n, want)
	}
}

func TestPointNeighbors8Length(t *testing.T) {
	n := (Point{5, 5}).Neighbors8()
	seen := make(map[Point]bool)
	for _, p := range n {
		if seen[p] {
			t.Errorf("duplicate neighbor %v", p)
		}
		seen[p] = true
		if p == (Point{5, 5}) {
			t.Error("center point should not be its own neighbor")
		}
	}
	if len(seen) != 8 {
		t.Errorf("expected 8 distinct neighbors, got %d", len(seen))
	}
}
