package heightmap

import (
	"math"
	"sync"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Heightfield is the continuous, normalized-to-[0,1] output of the base
// heightfield synthesizer (spec §4.1), stored row-major like Grid.
type Heightfield struct {
	Cols, Rows int
	Values     []float32
}

func newHeightfield(cols, rows int) *Heightfield {
	return &Heightfield{Cols: cols, Rows: rows, Values: make([]float32, cols*rows)}
}

func (h *Heightfield) at(x, y int) float64   { return float64(h.Values[y*h.Cols+x]) }
func (h *Heightfield) set(x, y int, v float64) { h.Values[y*h.Cols+x] = float32(v) }

// noiseSources bundles the independently-seeded simplex fields used by each
// noise variant, so FBM, ridged, billow, and warp never sample the same
// lattice (spec §4.1 treats them as distinct octave families).
type noiseSources struct {
	fbm, ridged, billow, warpX, warpY opensimplex.Noise
	voronoi                           *clusterField
}

func newNoiseSources(seed int64) *noiseSources {
	return &noiseSources{
		fbm:    stageNoiseIndexed(seed, "noise.fbm", 0),
		ridged: stageNoiseIndexed(seed, "noise.ridged", 0),
		billow: stageNoiseIndexed(seed, "noise.billow", 0),
		warpX:  stageNoiseIndexed(seed, "noise.warp", 0),
		warpY:  stageNoiseIndexed(seed, "noise.warp", 1),
	}
}

// SynthesizeHeightfield implements pipeline stage 2 (spec §4.1): a
// weighted sum of FBM, ridged, billow, and domain-warped simplex octaves,
// normalized to [0,1] and compressed at the low end by the biome's
// plains-flatness factor. Never fails: octaves=0 yields a flat zero field.
//
// Parallel across rows (each cell is a pure function of (x, y, seed)), but
// every goroutine writes only to its own row, so the result is independent
// of goroutine scheduling order — required by spec §5's determinism
// guarantee and P5.
func SynthesizeHeightfield(cfg Config, cols, rows int) *Heightfield {
	hf := newHeightfield(cols, rows)
	if cfg.Noise.Octaves <= 0 {
		return hf // degenerate: flat zero field, per spec §4.1 failure clause
	}

	profile := ProfileFor(cfg.Biome)
	src := newNoiseSources(cfg.Seed)
	if cfg.Density.ClusterSize > 0 && profile.MountainDensity > 0 {
		src.voronoi = newClusterField(cols, rows, cfg.Density.ClusterSize, cfg.Seed, profile.MountainDensity)
	}

	var wg sync.WaitGroup
	for y := 0; y < rows; y++ {
		wg.Add(1)
		go func(y int) {
			defer wg.Done()
			for x := 0; x < cols; x++ {
				v := evalCell(cfg, src, float64(x), float64(y))
				hf.set(x, y, v)
			}
		}(y)
	}
	wg.Wait()
	return hf
}

// evalCell computes the raw composed height for one grid cell.
func evalCell(cfg Config, src *noiseSources, x, y float64) float64 {
	n := cfg.Noise
	px, py := x*n.Scale, y*n.Scale

	if n.WarpStrength > 0 {
		wx := src.warpX.Eval2(x/n.WarpScale, y/n.WarpScale)
		wy := src.warpY.Eval2(x/n.WarpScale, y/n.WarpScale)
		px += wx * n.WarpStrength
		py += wy * n.WarpStrength
	}

	var fbmSum, ridgedSum, billowSum, maxAmp float64
	amplitude, freq := 1.0, 1.0
	for i := 0; i < n.Octaves; i++ {
		fx, fy := px*freq, py*freq
		s := src.fbm.Eval2(fx, fy)
		fbmSum += amplitude * s

		if n.RidgeStrength > 0 {
			r := 1 - math.Abs(src.ridged.Eval2(fx, fy))
			ridgedSum += amplitude * r * r
		}
		if n.BillowStrength > 0 {
			billowSum += amplitude * math.Abs(src.billow.Eval2(fx, fy))
		}

		maxAmp += amplitude
		amplitude *= n.Persistence
		freq *= n.Lacunarity
	}
	if maxAmp == 0 {
		return 0
	}

	h := fbmSum / maxAmp
	h = (h + 1) / 2 // simplex range [-1,1] -> [0,1]

	if n.RidgeStrength > 0 {
		h = lerp(h, ridgedSum/maxAmp, n.RidgeStrength)
	}
	if n.BillowStrength > 0 {
		h = lerp(h, billowSum/maxAmp, n.BillowStrength)
	}
	if src.voronoi != nil {
		h = src.voronoi.bias(int(x), int(y), h)
	}

	profile := ProfileFor(cfg.Biome)
	flat := cfg.Density.PlainsFlat
	if flat == 0 {
		flat = profile.PlainsFlat
	}
	if flat > 0 {
		const k = 2.0
		h = lerp(h, math.Pow(clamp01(h), 1+flat*k), flat)
	}

	return clamp01(h)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
