package heightmap

import (
	"math"
)

// ProtectionMask marks cells where erosion/detail must not significantly
// alter height (spec §4.2): intended ramp paths, cells near a preserved
// level boundary, and border-barrier cells.
type ProtectionMask struct {
	Cols, Rows int
	Protected  []bool
}

func newProtectionMask(cols, rows int) *ProtectionMask {
	return &ProtectionMask{Cols: cols, Rows: rows, Protected: make([]bool, cols*rows)}
}

func (m *ProtectionMask) at(x, y int) bool    { return m.Protected[y*m.Cols+x] }
func (m *ProtectionMask) set(x, y int, v bool) { m.Protected[y*m.Cols+x] = v }

// buildProtectionMask implements spec §4.2's protection-mask construction:
// true for cells within feather of a level boundary, plus any cell a
// caller has already flagged as a border cell. Intended ramp paths are not
// known this early in the pipeline (roads run after erosion), so ramp
// protection is approximated by protecting all level-boundary-adjacent
// cells at the configured feather radius — the same cells a ramp would
// need anyway.
func buildProtectionMask(g *Grid, hf *Heightfield, feather int) *ProtectionMask {
	mask := newProtectionMask(g.Cols, g.Rows)
	if feather < 0 {
		feather = 0
	}
	boundary := make([]bool, g.Cols*g.Rows)
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			h := hf.at(x, y)
			for _, n := range (Point{x, y}).Neighbors4() {
				if !n.InBounds(g.Cols, g.Rows) {
					continue
				}
				if math.Abs(h-hf.at(n.X, n.Y)) > 0.02 {
					boundary[y*g.Cols+x] = true
					break
				}
			}
		}
	}
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			if g.Boundary[y*g.Cols+x] != BoundaryNone {
				mask.set(x, y, true)
			}
			if !boundary[y*g.Cols+x] {
				continue
			}
			for dy := -feather; dy <= feather; dy++ {
				for dx := -feather; dx <= feather; dx++ {
					nx, ny := x+dx, y+dy
					if nx >= 0 && nx < g.Cols && ny >= 0 && ny < g.Rows {
						mask.set(nx, ny, true)
					}
				}
			}
		}
	}
	return mask
}

// ApplyErosion runs pipeline stage 3 (spec §4.2) in order: hydraulic, then
// thermal, then multi-scale detail. Each sub-pass is independently
// disableable and every induced delta on an unprotected cell is capped at
// 0.5% of max_step_height; protected cells receive no delta at all. Never
// fails.
func ApplyErosion(hf *Heightfield, mask *ProtectionMask, cfg Config, maxStepHeight float64) {
	if !cfg.Erosion.Enabled {
		return
	}
	maxDelta := 0.005 * maxStepHeight
	if cfg.Erosion.HydraulicEnabled {
		applyHydraulic(hf, mask, cfg, maxDelta)
	}
	if cfg.Erosion.ThermalEnabled {
		applyThermal(hf, mask, cfg, maxDelta)
	}
	if cfg.Detail.Enabled {
		applyDetail(hf, mask, cfg, maxDelta)
	}
}

func protectedScale(mask *ProtectionMask, x, y int, delta, maxDelta float64) float64 {
	if mask != nil && mask.at(x, y) {
		return 0
	}
	if delta > maxDelta {
		return maxDelta
	}
	if delta < -maxDelta {
		return -maxDelta
	}
	return delta
}

// applyHydraulic simulates N droplet iterations (spec §4.2 "Hydraulic
// erosion"): a droplet starts at a random cell, flows downhill gathering
// sediment, and deposits it as it slows or dies.
func applyHydraulic(hf *Heightfield, mask *ProtectionMask, cfg Config, maxDelta float64) {
	iterations := cfg.Erosion.Iterations
	const lifetime = 32
	rate := cfg.Erosion.HydraulicRate
	if rate <= 0 {
		rate = 0.3
	}
	deposit := cfg.Erosion.DepositionRate
	if deposit <= 0 {
		deposit = 0.3
	}
	evaporation := clampf(cfg.Erosion.Evaporation, 0.001, 0.5)

	for i := 0; i < iterations; i++ {
		rng := stageRandIndexed(cfg.Seed, "erosion.hydraulic", i)
		x := rng.Intn(hf.Cols)
		y := rng.Intn(hf.Rows)
		sediment, water := 0.0, 1.0

		for step := 0; step < lifetime; step++ {
			if !(Point{x, y}).InBounds(hf.Cols, hf.Rows) {
				break
			}
			gx, gy, steepest := gradientDescent(hf, x, y)
			if steepest <= 0 {
				// local minimum: deposit everything here.
				d := protectedScale(mask, x, y, sediment, maxDelta)
				hf.set(x, y, clamp01(hf.at(x, y)+d))
				break
			}

			capacity := steepest * water * rate
			if sediment > capacity {
				dropAmt := (sediment - capacity) * deposit
				d := protectedScale(mask, x, y, dropAmt, maxDelta)
				hf.set(x, y, clamp01(hf.at(x, y)+d))
				sediment -= dropAmt
			} else {
				pickup := (capacity - sediment) * rate
				d := protectedScale(mask, x, y, -pickup, maxDelta)
				hf.set(x, y, clamp01(hf.at(x, y)+d))
				sediment += pickup
			}

			x, y = gx, gy
			water *= 1 - evaporation
			if water < 0.01 {
				break
			}
		}
	}
}

// gradientDescent returns the steepest-descent neighbor of (x,y) and the
// height drop to it.
func gradientDescent(hf *Heightfield, x, y int) (nx, ny int, drop float64) {
	h := hf.at(x, y)
	best := 0.0
	nx, ny = x, y
	for _, n := range (Point{x, y}).Neighbors8() {
		if !n.InBounds(hf.Cols, hf.Rows) {
			continue
		}
		d := h - hf.at(n.X, n.Y)
		if d > best {
			best = d
			nx, ny = n.X, n.Y
		}
	}
	return nx, ny, best
}

// applyThermal implements spec §4.2's thermal erosion: any cell steeper
// than talus_angle relative to a neighbor transfers strength*excess/2 to it.
func applyThermal(hf *Heightfield, mask *ProtectionMask, cfg Config, maxDelta float64) {
	talus := cfg.Erosion.ThermalTalusAngle
	if talus <= 0 {
		talus = 0.6
	}
	strength := cfg.Erosion.ThermalStrength
	if strength <= 0 {
		strength = 0.5
	}
	threshold := math.Tan(talus) * float64(cellSizeOr1(hf))
	iterations := 4
	for it := 0; it < iterations; it++ {
		deltas := make([]float64, len(hf.Values))
		for y := 0; y < hf.Rows; y++ {
			for x := 0; x < hf.Cols; x++ {
				h := hf.at(x, y)
				for _, n := range (Point{x, y}).Neighbors4() {
					if !n.InBounds(hf.Cols, hf.Rows) {
						continue
					}
					excess := h - hf.at(n.X, n.Y) - threshold
					if excess > 0 {
						transfer := strength * excess / 2
						deltas[y*hf.Cols+x] -= transfer
						deltas[n.Y*hf.Cols+n.X] += transfer
					}
				}
			}
		}
		for y := 0; y < hf.Rows; y++ {
			for x := 0; x < hf.Cols; x++ {
				d := protectedScale(mask, x, y, deltas[y*hf.Cols+x], maxDelta)
				hf.set(x, y, clamp01(hf.at(x, y)+d))
			}
		}
	}
}

func cellSizeOr1(hf *Heightfield) float64 { return 1 }

// applyDetail adds three FBM layers at macro/meso/micro frequency (spec
// §4.2 "Multi-scale detail"), each modulated by the protection mask.
func applyDetail(hf *Heightfield, mask *ProtectionMask, cfg Config, maxDelta float64) {
	macro := stageNoiseIndexed(cfg.Seed, "detail.macro", 0)
	meso := stageNoiseIndexed(cfg.Seed, "detail.meso", 0)
	micro := stageNoiseIndexed(cfg.Seed, "detail.micro", 0)

	layers := []struct {
		noise     interface{ Eval2(x, y float64) float64 }
		freq      float64
		strength  float64
	}{
		{macro, 0.01, cfg.Detail.MacroStrength},
		{meso, 0.04, cfg.Detail.MesoStrength},
		{micro, 0.16, cfg.Detail.MicroStrength},
	}

	for y := 0; y < hf.Rows; y++ {
		for x := 0; x < hf.Cols; x++ {
			delta := 0.0
			for _, l := range layers {
				if l.strength <= 0 {
					continue
				}
				delta += l.noise.Eval2(float64(x)*l.freq, float64(y)*l.freq) * l.strength
			}
			d := protectedScale(mask, x, y, delta, maxDelta)
			hf.set(x, y, clamp01(hf.at(x, y)+d))
		}
	}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
