package heightmap

// BuildBorder implements pipeline stage 5 (spec §4.4): stamp a perimeter
// band of cfg.Border.Width cells with the configured treatment
// (mountain/cliff/water/none), then carve cfg.Border.ExitCount gaps of
// cfg.Border.ExitWidth cells through it so roads can later exit the map.
// It returns one exit POI pinned to each gap's midpoint, per §4.4's "pin
// an exit POI to each gap's midpoint" and §4.5's "exit POIs are produced
// by the border builder and always included".
//
// Adapted from the teacher's water-feature placement idiom (border water
// uses the same "deep center, shallow edge" falloff GenerateLake uses in
// pkg/procgen/terrain/water.go) generalized from a lake's radial falloff to
// a perimeter band's distance-from-edge falloff.
func BuildBorder(g *Grid, hf *Heightfield, cfg Config) []POI {
	if !cfg.Border.Enabled || cfg.Border.Type == BorderNone {
		return nil
	}

	width := cfg.Border.Width
	if width <= 0 {
		return nil
	}

	exits := borderExitMask(g.Cols, g.Rows, cfg, width)
	midpoints := borderExitMidpoints(g.Cols, g.Rows, cfg, width)

	rng := stageRand(cfg.Seed, "border.noise")
	noiseSrc := stageNoiseIndexed(cfg.Seed, "border.shape", 0)

	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			d := distanceFromEdge(x, y, g.Cols, g.Rows)
			if d >= width {
				continue
			}
			if exits[y*g.Cols+x] {
				// Spec §4.4: exit cells stay boundary_type=edge, blocked=false.
				g.At(x, y).SetBoundary(BoundaryEdge)
				continue
			}
			applyBorderTreatment(g, hf, x, y, d, width, cfg, rng, noiseSrc)
		}
	}

	pois := make([]POI, 0, len(midpoints))
	for i, p := range midpoints {
		if !g.InBounds(p.X, p.Y) {
			continue
		}
		cell := g.At(p.X, p.Y)
		pois = append(pois, POI{
			ID:      "exit-" + itoa(i),
			X:       p.X,
			Y:       p.Y,
			LevelID: cell.LevelID(),
			Type:    POIExit,
		})
	}
	return pois
}

// distanceFromEdge returns the Chebyshev distance to the nearest map edge.
func distanceFromEdge(x, y, cols, rows int) int {
	d := x
	if v := cols - 1 - x; v < d {
		d = v
	}
	if y < d {
		d = y
	}
	if v := rows - 1 - y; v < d {
		d = v
	}
	return d
}

// borderExitMask carves cfg.Border.ExitCount evenly-spaced gaps into the
// perimeter, each cfg.Border.ExitWidth cells wide, alternating among the
// four edges.
func borderExitMask(cols, rows int, cfg Config, width int) []bool {
	mask := make([]bool, cols*rows)
	count := cfg.Border.ExitCount
	if count <= 0 {
		return mask
	}
	ew := cfg.Border.ExitWidth
	if ew <= 0 {
		ew = 1
	}

	for i := 0; i < count; i++ {
		edge := i % 4
		frac := (float64(i/4) + 1) / float64((count+3)/4+1)
		switch edge {
		case 0: // top
			cx := int(frac * float64(cols))
			carveExit(mask, cols, rows, cx, 0, ew, width, true)
		case 1: // bottom
			cx := int(frac * float64(cols))
			carveExit(mask, cols, rows, cx, rows-1, ew, width, true)
		case 2: // left
			cy := int(frac * float64(rows))
			carveExit(mask, cols, rows, 0, cy, ew, width, false)
		case 3: // right
			cy := int(frac * float64(rows))
			carveExit(mask, cols, rows, cols-1, cy, ew, width, false)
		}
	}
	return mask
}

// borderExitMidpoints computes the same evenly-spaced perimeter positions
// as borderExitMask, one midpoint Point per exit, in the same edge/frac
// order so callers can zip them with the carved gaps.
func borderExitMidpoints(cols, rows int, cfg Config, width int) []Point {
	count := cfg.Border.ExitCount
	if count <= 0 {
		return nil
	}
	out := make([]Point, 0, count)
	for i := 0; i < count; i++ {
		edge := i % 4
		frac := (float64(i/4) + 1) / float64((count+3)/4+1)
		switch edge {
		case 0: // top
			out = append(out, Point{int(frac * float64(cols)), 0})
		case 1: // bottom
			out = append(out, Point{int(frac * float64(cols)), rows - 1})
		case 2: // left
			out = append(out, Point{0, int(frac * float64(rows))})
		case 3: // right
			out = append(out, Point{cols - 1, int(frac * float64(rows))})
		}
	}
	return out
}

func carveExit(mask []bool, cols, rows, cx, cy, exitWidth, borderWidth int, horizontal bool) {
	for d := -borderWidth; d <= borderWidth; d++ {
		for w := -exitWidth / 2; w <= exitWidth/2; w++ {
			var x, y int
			if horizontal {
				x, y = cx+w, cy+d
			} else {
				x, y = cx+d, cy+w
			}
			if x >= 0 && x < cols && y >= 0 && y < rows {
				mask[y*cols+x] = true
			}
		}
	}
}

func applyBorderTreatment(g *Grid, hf *Heightfield, x, y, dist, width int, cfg Config, rng interface {
	Float64() float64
}, noiseSrc interface{ Eval2(x, y float64) float64 }) {
	falloff := 1 - float64(dist)/float64(width)
	wobble := 1.0
	if cfg.Border.NoiseAmplitude > 0 {
		n := noiseSrc.Eval2(float64(x)*cfg.Border.NoiseScale, float64(y)*cfg.Border.NoiseScale)
		wobble = 1 + n*cfg.Border.NoiseAmplitude
	}
	falloff = clamp01(falloff * wobble)

	cell := g.At(x, y)
	switch cfg.Border.Type {
	case BorderMountain:
		target := clamp01(hf.at(x, y) + cfg.Border.Height*falloff)
		hf.set(x, y, target)
		if falloff > 0.5 {
			cell.Set(FlagCliff | FlagBlocked)
			cell.Clear(FlagPlayable)
		}
	case BorderCliff:
		if falloff > 0.3 {
			cell.Set(FlagCliff | FlagBlocked)
			cell.Clear(FlagPlayable)
		}
	case BorderWater:
		// Deep center, shallow edge, matching GenerateLake's radial falloff
		// but driven by distance-from-map-edge instead of distance-from-center.
		if falloff > 0.6 {
			hf.set(x, y, clamp01(hf.at(x, y)*0.2))
		} else {
			hf.set(x, y, clamp01(hf.at(x, y)*0.6))
		}
		cell.Set(FlagWater)
		if falloff > 0.6 {
			cell.Set(FlagUnderwater)
		}
		cell.Clear(FlagPlayable)
	}
	cell.SetBoundary(BoundaryEdge)
}
