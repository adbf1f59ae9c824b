package heightmap

// NavMesh is the auxiliary walkable-triangle mesh produced by pipeline
// stage 9 (spec §4.8). It has no invariant tying it back to the grid.
type NavMesh struct {
	Vertices []NavVertex
	Indices  []uint32
}

// NavVertex is a single mesh vertex: X and Z are world units (cell index
// times cell size), Y is the cell's height as stored in the grid.
type NavVertex struct {
	X, Y, Z float32
}

// ExtractNavMesh samples the grid every `resolution` cells along each axis
// and emits two triangles per 2x2 quad whose four corners are all walkable
// and whose height spread does not exceed step_height*2, sharing vertices
// through an index map to avoid duplicates.
func ExtractNavMesh(g *Grid, cellSize float64, resolution int, maxStep float64) *NavMesh {
	if resolution <= 0 {
		resolution = 8
	}
	mesh := &NavMesh{}
	vertexIndex := make(map[Point]uint32)

	emit := func(p Point) uint32 {
		if idx, ok := vertexIndex[p]; ok {
			return idx
		}
		h := g.At(p.X, p.Y).Height()
		v := NavVertex{
			X: float32(float64(p.X) * cellSize),
			Y: h,
			Z: float32(float64(p.Y) * cellSize),
		}
		idx := uint32(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices, v)
		vertexIndex[p] = idx
		return idx
	}

	stepLimit := maxStep * 2
	for y := 0; y+resolution < g.Rows; y += resolution {
		for x := 0; x+resolution < g.Cols; x += resolution {
			c00 := Point{x, y}
			c10 := Point{x + resolution, y}
			c01 := Point{x, y + resolution}
			c11 := Point{x + resolution, y + resolution}

			if !quadWalkable(g, c00, c10, c01, c11) {
				continue
			}
			if !quadWithinStep(g, c00, c10, c01, c11, stepLimit) {
				continue
			}

			i00 := emit(c00)
			i10 := emit(c10)
			i01 := emit(c01)
			i11 := emit(c11)

			mesh.Indices = append(mesh.Indices, i00, i10, i11)
			mesh.Indices = append(mesh.Indices, i00, i11, i01)
		}
	}
	return mesh
}

func quadWalkable(g *Grid, pts ...Point) bool {
	for _, p := range pts {
		if !g.At(p.X, p.Y).IsWalkable() {
			return false
		}
	}
	return true
}

func quadWithinStep(g *Grid, a, b, c, d Point, stepLimit float64) bool {
	lo := g.At(a.X, a.Y).Height()
	hi := lo
	for _, p := range []Point{b, c, d} {
		h := g.At(p.X, p.Y).Height()
		if h < lo {
			lo = h
		}
		if h > hi {
			hi = h
		}
	}
	return float64(hi-lo) <= stepLimit
}
