package heightmap

import "math"

// QuantizeLevels implements pipeline stage 4 (spec §4.3): map the
// continuous, eroded heightfield onto discrete level_id bands using the
// biome's base-height table (base_height[level] = level * max_step,
// spec §3) and stamp each cell's initial flag set (water, underwater,
// playable, visual_only) from its resulting band.
//
// The heightfield stays normalized to [0,1] throughout the pipeline (spec
// §4.1's synthesizer contract), so the biome profile's HeightScale is the
// "world units per normalized unit" conversion factor that lets max_step
// (a world-unit quantity derived from DefaultCharacterHeight) carve bands
// in that same normalized space; SeaLevelFrac places the waterline within
// the heightfield's observed [min,max] range. cfg.Levels.BaseHeights can
// still pin an individual level's band-start height, overriding the even
// base-height spacing for that one level.
func QuantizeLevels(g *Grid, hf *Heightfield, cfg Config) {
	profile := ProfileFor(cfg.Biome)
	lo, hi := heightfieldRange(hf)
	seaLevel := lo + profile.SeaLevelFrac*(hi-lo)
	step := normalizedStep(cfg, profile)
	overrides := pinnedBaseHeights(cfg, lo, hi)

	peakLevel := cfg.Levels.MaxWalkableLevel + 1
	peakThreshold := baseHeight(cfg.Levels.MaxWalkableLevel, seaLevel, step, overrides) + step/2

	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			cell := g.At(x, y)
			h := hf.at(x, y)

			level, visualOnly := quantizeHeight(h, seaLevel, step, cfg.Levels.MinLevel, peakThreshold, peakLevel, overrides)
			cell.SetLevelID(level)

			flags := FlagPlayable
			if level < 0 {
				flags |= FlagWater | FlagUnderwater
			}
			if visualOnly || level > cfg.Levels.MaxWalkableLevel {
				flags &^= FlagPlayable
				flags |= FlagVisualOnly
			}
			cell.Set(flags)
		}
	}
}

func heightfieldRange(hf *Heightfield) (lo, hi float64) {
	lo, hi = hf.at(0, 0), hf.at(0, 0)
	for _, v := range hf.Values {
		f := float64(v)
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

// normalizedStep converts max_step_height (spec §4.2/§4.7's world-unit
// "1.5x character height" quantity, see maxStepHeight) into the
// heightfield's normalized [0,1] space via the biome's HeightScale, the
// world-unit-per-normalized-unit factor spec §3's biome table supplies.
func normalizedStep(cfg Config, profile BiomeProfile) float64 {
	scale := profile.HeightScale
	if scale <= 0 {
		scale = 1
	}
	step := maxStepHeight(cfg) / scale
	if step <= 0 {
		step = 0.1
	}
	return step
}

// baseHeight returns base_height[level] in normalized space: level*step
// offset from the waterline, or a pinned override if cfg.Levels.BaseHeights
// configured one for that level.
func baseHeight(level int8, seaLevel, step float64, overrides map[int8]float64) float64 {
	if h, ok := overrides[level]; ok {
		return h
	}
	return seaLevel + float64(level)*step
}

// pinnedBaseHeights resolves cfg.Levels.BaseHeights into the heightfield's
// observed [min,max] range, clamping each pinned height so it can't fall
// outside what the synthesizer actually produced.
func pinnedBaseHeights(cfg Config, lo, hi float64) map[int8]float64 {
	if len(cfg.Levels.BaseHeights) == 0 {
		return nil
	}
	out := make(map[int8]float64, len(cfg.Levels.BaseHeights))
	for level, h := range cfg.Levels.BaseHeights {
		out[level] = clampf(h, lo, hi)
	}
	return out
}

// quantizeHeight implements spec §4.3's quantization rule: a cell's level
// is floor((h-sea_level)/step) in either direction from the waterline,
// clamped to the configured minimum negative level; a pinned level's band
// starts at its pinned height instead, which moves only that level's lower
// edge; a height exceeding base_height[max_walkable_level] + max_step/2 is
// a peak, receiving peakLevel and visual_only=true regardless of the floor
// division.
func quantizeHeight(h, seaLevel, step float64, minLevel int8, peakThreshold float64, peakLevel int8, overrides map[int8]float64) (int8, bool) {
	if h > peakThreshold {
		return peakLevel, true
	}

	level := int8(math.Floor((h - seaLevel) / step))
	if level < minLevel {
		level = minLevel
	}
	for level > minLevel {
		if start, ok := overrides[level]; ok && h < start {
			level--
			continue
		}
		break
	}
	for {
		if start, ok := overrides[level+1]; ok && h >= start {
			level++
			continue
		}
		break
	}
	return level, false
}

// closestOverride reports the pinned level whose base height is the
// highest one still at or below h, if cfg.Levels.BaseHeights pinned any
// levels at all.
func closestOverride(h, seaLevel, step float64, overrides map[int8]float64) (int8, bool) {
	if len(overrides) == 0 {
		return 0, false
	}
	best, found := int8(0), false
	bestHeight := math.Inf(-1)
	for level := range overrides {
		start := baseHeight(level, seaLevel, step, overrides)
		if start <= h && start > bestHeight {
			bestHeight = start
			best, found = level, true
		}
	}
	return best, found
}

// maxStepHeight returns the world-space height delta spec §4.2/§4.7 call
// max_step_height: 1.5x the configured character height, the largest
// single-cell rise a ramp (rather than a cliff) is expected to smooth over.
func maxStepHeight(cfg Config) float64 {
	return cfg.Levels.maxStep()
}
