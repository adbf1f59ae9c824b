package heightmap

import "fmt"

// Flags is a per-cell bitset. Bits are mutually compatible except the
// documented exclusions enforced by the setters below (road xor cliff,
// playable xor visualOnly).
type Flags uint16

const (
	FlagRoad Flags = 1 << iota
	FlagRamp
	FlagWater
	FlagUnderwater
	FlagBlocked
	FlagCliff
	FlagPlayable
	FlagVisualOnly
	FlagBoundary
	FlagBridge // supplemental: road-over-water crossing, see SPEC_FULL §11.2
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// BoundaryType classifies a cell's role in the map perimeter.
type BoundaryType uint8

const (
	BoundaryNone BoundaryType = iota
	BoundaryEdge
	BoundaryInterior
	BoundaryOcean
	BoundaryCustom
)

// Grid is the Structure-of-Arrays cell store described in spec §3.
// Parallel arrays keep per-field access cache-friendly; the grid owns
// every cell exclusively and is mutated in place, stage by stage.
type Grid struct {
	Cols, Rows int

	Height   []float32 // normalized [0,1] elevation copied from the heightfield; not scaled to world units
	LevelID  []int8    // signed quantized level
	Flags    []Flags
	RoadID   []int32 // -1 means "no road"
	Boundary []BoundaryType
}

// NewGrid allocates a Cols x Rows grid with all scalar buffers zeroed and
// RoadID initialized to -1 (no road). This is pipeline stage 1, the grid
// allocator.
func NewGrid(cols, rows int) (*Grid, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("heightmap: invalid grid dimensions %dx%d", cols, rows)
	}
	n := cols * rows
	g := &Grid{
		Cols:     cols,
		Rows:     rows,
		Height:   make([]float32, n),
		LevelID:  make([]int8, n),
		Flags:    make([]Flags, n),
		RoadID:   make([]int32, n),
		Boundary: make([]BoundaryType, n),
	}
	for i := range g.RoadID {
		g.RoadID[i] = -1
	}
	return g, nil
}

// Index converts (x, y) to the row-major offset into the scalar buffers.
func (g *Grid) Index(x, y int) int { return y*g.Cols + x }

// InBounds reports whether (x, y) addresses a real cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Cols && y >= 0 && y < g.Rows
}

// At returns a read/write view of a single cell's scalar values.
func (g *Grid) At(x, y int) Cell {
	i := g.Index(x, y)
	return Cell{grid: g, idx: i, X: x, Y: y}
}

// Cell is a lightweight cursor into one cell of a Grid's SoA buffers. It
// carries no state of its own beyond its index, so copying a Cell is
// cheap and writes through to the owning Grid.
type Cell struct {
	grid *Grid
	idx  int
	X, Y int
}

func (c Cell) Height() float32          { return c.grid.Height[c.idx] }
func (c Cell) SetHeight(h float32)      { c.grid.Height[c.idx] = h }
func (c Cell) LevelID() int8            { return c.grid.LevelID[c.idx] }
func (c Cell) SetLevelID(l int8)        { c.grid.LevelID[c.idx] = l }
func (c Cell) Flags() Flags             { return c.grid.Flags[c.idx] }
func (c Cell) Has(bit Flags) bool       { return c.grid.Flags[c.idx]&bit != 0 }
func (c Cell) Set(bit Flags) {
	f := c.grid.Flags[c.idx] | bit
	if bit.Has(FlagRoad) {
		f &^= FlagCliff
	} else if bit.Has(FlagCliff) {
		f &^= FlagRoad
	}
	if bit.Has(FlagPlayable) {
		f &^= FlagVisualOnly
	} else if bit.Has(FlagVisualOnly) {
		f &^= FlagPlayable
	}
	c.grid.Flags[c.idx] = f
}
func (c Cell) Clear(bit Flags)          { c.grid.Flags[c.idx] &^= bit }
func (c Cell) RoadID() int32            { return c.grid.RoadID[c.idx] }
func (c Cell) SetRoadID(id int32)       { c.grid.RoadID[c.idx] = id }
func (c Cell) Boundary() BoundaryType   { return c.grid.Boundary[c.idx] }
func (c Cell) SetBoundary(b BoundaryType) { c.grid.Boundary[c.idx] = b }
func (c Cell) Point() Point             { return Point{c.X, c.Y} }

// IsWalkable reports whether a cell can be traversed on foot: playable,
// not blocked, not pure water, not a visual-only peak.
func (c Cell) IsWalkable() bool {
	f := c.Flags()
	return f.Has(FlagPlayable) && !f.Has(FlagBlocked) && !f.Has(FlagWater) && !f.Has(FlagVisualOnly)
}

// POIType enumerates point-of-interest categories.
type POIType uint8

const (
	POITown POIType = iota
	POIDungeon
	POIExit
	POIPortal
)

func (t POIType) String() string {
	switch t {
	case POITown:
		return "town"
	case POIDungeon:
		return "dungeon"
	case POIExit:
		return "exit"
	case POIPortal:
		return "portal"
	default:
		return "unknown"
	}
}

// POI is a point-of-interest node the road network connects (spec §3).
type POI struct {
	ID      string
	X, Y    int
	LevelID int8
	Type    POIType
}

func (p POI) Point() Point { return Point{p.X, p.Y} }

// RoadSegment is one MST (or extra) edge rasterized onto the grid.
type RoadSegment struct {
	ID        string
	NumericID int32 // stable per-segment id stamped into each cell's road_id (spec §3)
	FromPOI   string
	ToPOI     string
	Path      []Point
	HasRamp   bool
	Width     int
	RampAt    []int // indices into Path where a ramp strip begins
}
