package heightmap

import "math"

// RealizeRamps implements pipeline stage 8 (spec §4.7): walk every
// contiguous ramp=true strip on the grid and overwrite its heights with a
// progressive slope profile running from the strip's start height to its
// end height, shaped by the configured curve. Every cell within width/2 of
// a ramp spine cell gets that spine cell's height. Road cells outside ramp
// strips are not touched here: their heights are not flattened across the
// road's width.
func RealizeRamps(g *Grid, hf *Heightfield, segments []RoadSegment, cfg Config) {
	if !cfg.Ramps.Enabled {
		return
	}
	for _, seg := range segments {
		for _, startIdx := range seg.RampAt {
			strip := rampStrip(g, seg.Path, startIdx)
			if len(strip) < 2 {
				continue
			}
			realizeStrip(g, hf, strip, seg.Width, cfg.Ramps.Curve)
		}
	}
}

// rampStrip collects the contiguous run of spine cells from startIdx that
// insertRamps flagged ramp=true.
func rampStrip(g *Grid, path []Point, startIdx int) []Point {
	strip := make([]Point, 0)
	for i := startIdx; i < len(path); i++ {
		p := path[i]
		if !g.At(p.X, p.Y).Has(FlagRamp) {
			break
		}
		strip = append(strip, p)
	}
	return strip
}

func realizeStrip(g *Grid, hf *Heightfield, strip []Point, width int, curve RampCurve) {
	n := len(strip) - 1
	if n <= 0 {
		return
	}
	hStart := float64(hf.at(strip[0].X, strip[0].Y))
	hEnd := float64(hf.at(strip[n].X, strip[n].Y))
	radius := width / 2

	for i, p := range strip {
		t := float64(i) / float64(n)
		factor := curveFunc(curve, t)
		h := lerp(hStart, hEnd, factor)

		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if dx*dx+dy*dy > radius*radius+1 {
					continue
				}
				np := Point{p.X + dx, p.Y + dy}
				if !np.InBounds(hf.Cols, hf.Rows) {
					continue
				}
				hf.set(np.X, np.Y, clamp01(h))
				cell := g.At(np.X, np.Y)
				cell.Set(FlagRamp | FlagRoad)
			}
		}
	}
}

// curveFunc maps t in [0,1] to a slope-profile factor in [0,1]. Each curve
// concentrates the steep portion differently: ease-in and exponential
// late, ease-out early, ease-in-out in the middle, linear not at all. The
// grade a strip ends up with depends on its length and height difference;
// no angle limit is checked here or in realizeStrip.
func curveFunc(curve RampCurve, t float64) float64 {
	switch curve {
	case CurveLinear:
		return t
	case CurveEaseIn:
		return t * t
	case CurveEaseOut:
		return 1 - (1-t)*(1-t)
	case CurveExponential:
		if t <= 0 {
			return 0
		}
		return math.Pow(2, 10*(t-1))
	case CurveEaseInOut:
		fallthrough
	default:
		if t < 0.5 {
			return 2 * t * t
		}
		return 1 - math.Pow(-2*t+2, 2)/2
	}
}
