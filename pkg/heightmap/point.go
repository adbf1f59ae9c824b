package heightmap

import "math"

// Point represents a 2D grid coordinate, origin at the top-left.
//
// Adapted from the teacher's terrain.Point (pkg/procgen/terrain/point.go):
// same shape and helper set, retargeted at the heightmap grid instead of a
// tile dungeon.
type Point struct {
	X, Y int
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(other Point) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// ManhattanDistance returns the taxicab distance between two points.
func (p Point) ManhattanDistance(other Point) int {
	return iabs(p.X-other.X) + iabs(p.Y-other.Y)
}

// ChebyshevDistance returns the Chebyshev (king-move) distance, the
// admissible A* heuristic for 8-connected movement.
func (p Point) ChebyshevDistance(other Point) int {
	dx := iabs(p.X - other.X)
	dy := iabs(p.Y - other.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// InBounds reports whether the point lies within a cols x rows grid.
func (p Point) InBounds(cols, rows int) bool {
	return p.X >= 0 && p.X < cols && p.Y >= 0 && p.Y < rows
}

// Neighbors4 returns the four orthogonal neighbors, in N, E, S, W order.
func (p Point) Neighbors4() [4]Point {
	return [4]Point{
		{p.X, p.Y - 1},
		{p.X + 1, p.Y},
		{p.X, p.Y + 1},
		{p.X - 1, p.Y},
	}
}

// Neighbors8 returns all eight neighbors, orthogonal then diagonal.
func (p Point) Neighbors8() [8]Point {
	return [8]Point{
		{p.X, p.Y - 1}, {p.X + 1, p.Y}, {p.X, p.Y + 1}, {p.X - 1, p.Y},
		{p.X + 1, p.Y - 1}, {p.X + 1, p.Y + 1}, {p.X - 1, p.Y + 1}, {p.X - 1, p.Y - 1},
	}
}

func iabs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
