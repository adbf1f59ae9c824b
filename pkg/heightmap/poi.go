package heightmap

import (
	"math"
	"math/rand"
)

// PlacePOIs implements pipeline stage 6 (spec §4.5): scatter
// cfg.Roads.Count points of interest across walkable cells using Poisson
// disc sampling for natural, evenly-spaced placement, falling back to a
// jittered grid if the disc sampler can't find enough candidates (e.g. a
// small or heavily-blocked map). exitPOIs (from the border builder, spec
// §4.4/§4.5) are always included and count toward the minimum pairwise
// spacing check against freshly-sampled interior points.
//
// Adapted from the teacher's poissonDiscSampling / isValidPoissonPoint
// (pkg/procgen/terrain/forest.go), generalized from forest-tree placement
// to POI placement: the disc radius comes from the map area divided by the
// requested count rather than a fixed tree spacing, and every candidate is
// filtered through Grid.At(x,y).IsWalkable() instead of a terrain-tile
// check.
func PlacePOIs(g *Grid, cfg Config, exitPOIs []POI) []POI {
	count := cfg.Roads.Count - len(exitPOIs)
	if count < 0 {
		count = 0
	}
	if count == 0 && len(exitPOIs) == 0 {
		return nil
	}

	minDist := math.Sqrt(float64(g.Cols*g.Rows)/float64(cfg.Roads.Count+1)) * 0.7
	if minDist < 2 {
		minDist = 2
	}

	rng := stageRand(cfg.Seed, "poi.placement")
	var points []Point
	if count > 0 {
		points = poissonDiscSampling(g, minDist, rng)
		points = filterAwayFrom(points, exitPOIs, minDist)
		if len(points) < count {
			points = append(points, jitteredGridFallback(g, count-len(points), rng)...)
		}
		if len(points) > count {
			shuffleFirstN(points, count, rng)
			points = points[:count]
		}
	}

	pois := make([]POI, 0, len(points)+len(exitPOIs))
	pois = append(pois, exitPOIs...)
	for i, p := range points {
		cell := g.At(p.X, p.Y)
		typ := POITown
		switch {
		case i == 0:
			typ = POITown
		case cell.LevelID() < 0:
			typ = POIPortal
		case cell.LevelID() > 0:
			typ = POIDungeon
		}
		pois = append(pois, POI{
			ID:      poiID(i),
			X:       p.X,
			Y:       p.Y,
			LevelID: cell.LevelID(),
			Type:    typ,
		})
	}
	return pois
}

// filterAwayFrom drops candidate points that fall within minDist of any
// already-placed POI (the border builder's exits), so interior sampling
// respects the same minimum-spacing constraint spec §4.5 requires.
func filterAwayFrom(points []Point, placed []POI, minDist float64) []Point {
	if len(placed) == 0 {
		return points
	}
	out := points[:0:0]
	for _, p := range points {
		ok := true
		for _, e := range placed {
			if p.Distance(e.Point()) < minDist {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, p)
		}
	}
	return out
}

func poiID(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	if i < 26 {
		return "poi-" + string(letters[i])
	}
	return "poi-" + string(letters[i%26]) + itoa(i/26)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// poissonDiscSampling is Bridson's algorithm, bounded to cells the grid
// reports as walkable, matching the teacher's forest.go implementation
// shape (grid-of-cells acceleration structure, 30 attempts per active
// point, annulus sampling between minDist and 2*minDist).
func poissonDiscSampling(g *Grid, minDist float64, rng *rand.Rand) []Point {
	cellSize := minDist / math.Sqrt2
	gridW := int(math.Ceil(float64(g.Cols) / cellSize))
	gridH := int(math.Ceil(float64(g.Rows) / cellSize))

	acc := make([][]int, gridH)
	for i := range acc {
		acc[i] = make([]int, gridW)
		for j := range acc[i] {
			acc[i][j] = -1
		}
	}

	points := make([]Point, 0)
	active := make([]int, 0)

	start, ok := findWalkableSeed(g, rng)
	if !ok {
		return points
	}
	points = append(points, start)
	active = append(active, 0)
	markAccel(acc, cellSize, gridW, gridH, start, 0)

	for len(active) > 0 {
		ai := rng.Intn(len(active))
		pi := active[ai]
		p := points[pi]

		found := false
		for attempt := 0; attempt < 30; attempt++ {
			angle := rng.Float64() * 2 * math.Pi
			radius := minDist * (1 + rng.Float64())
			nx := p.X + int(radius*math.Cos(angle))
			ny := p.Y + int(radius*math.Sin(angle))
			if nx < 0 || nx >= g.Cols || ny < 0 || ny >= g.Rows {
				continue
			}
			np := Point{nx, ny}
			if !g.At(nx, ny).IsWalkable() {
				continue
			}
			if !validPoissonPoint(np, points, acc, cellSize, minDist, gridW, gridH) {
				continue
			}
			points = append(points, np)
			active = append(active, len(points)-1)
			markAccel(acc, cellSize, gridW, gridH, np, len(points)-1)
			found = true
		}
		if !found {
			active = append(active[:ai], active[ai+1:]...)
		}
	}
	return points
}

func findWalkableSeed(g *Grid, rng *rand.Rand) (Point, bool) {
	for attempt := 0; attempt < 256; attempt++ {
		x, y := rng.Intn(g.Cols), rng.Intn(g.Rows)
		if g.At(x, y).IsWalkable() {
			return Point{x, y}, true
		}
	}
	return Point{}, false
}

func markAccel(acc [][]int, cellSize float64, gridW, gridH int, p Point, idx int) {
	gx, gy := int(float64(p.X)/cellSize), int(float64(p.Y)/cellSize)
	if gx >= 0 && gx < gridW && gy >= 0 && gy < gridH {
		acc[gy][gx] = idx
	}
}

func validPoissonPoint(p Point, points []Point, acc [][]int, cellSize, minDist float64, gridW, gridH int) bool {
	gx, gy := int(float64(p.X)/cellSize), int(float64(p.Y)/cellSize)
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			cy, cx := gy+dy, gx+dx
			if cx < 0 || cx >= gridW || cy < 0 || cy >= gridH {
				continue
			}
			idx := acc[cy][cx]
			if idx < 0 {
				continue
			}
			if p.Distance(points[idx]) < minDist {
				return false
			}
		}
	}
	return true
}

// jitteredGridFallback covers the case the disc sampler can't fill: an
// evenly spaced grid of candidate cells with small random jitter, each
// filtered to a walkable cell.
func jitteredGridFallback(g *Grid, need int, rng *rand.Rand) []Point {
	if need <= 0 {
		return nil
	}
	cols := int(math.Ceil(math.Sqrt(float64(need))))
	rows := (need + cols - 1) / cols
	cellW := float64(g.Cols) / float64(cols)
	cellH := float64(g.Rows) / float64(rows)

	out := make([]Point, 0, need)
	for gy := 0; gy < rows && len(out) < need; gy++ {
		for gx := 0; gx < cols && len(out) < need; gx++ {
			jx := (rng.Float64() - 0.5) * cellW * 0.5
			jy := (rng.Float64() - 0.5) * cellH * 0.5
			x := clampInt(int(cellW*(float64(gx)+0.5)+jx), 0, g.Cols-1)
			y := clampInt(int(cellH*(float64(gy)+0.5)+jy), 0, g.Rows-1)
			if g.At(x, y).IsWalkable() {
				out = append(out, Point{x, y})
			}
		}
	}
	return out
}

func shuffleFirstN(points []Point, n int, rng *rand.Rand) {
	for i := len(points) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		points[i], points[j] = points[j], points[i]
	}
}
