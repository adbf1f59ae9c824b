package heightmap

import "testing"

// TestQuantizeLevels_EveryCellGetsExactlyOneLevel covers spec §4.3's
// post-condition and invariant I4/I6 interplay: every cell ends with a
// single level_id and the water/visual_only flags follow from it.
func TestQuantizeLevels_EveryCellGetsExactlyOneLevel(t *testing.T) {
	cfg := minimalConfig()
	cols, rows := cfg.Cols(), cfg.Rows()
	g, err := NewGrid(cols, rows)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	hf := SynthesizeHeightfield(cfg, cols, rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			g.At(x, y).SetHeight(float32(hf.at(x, y)))
		}
	}

	QuantizeLevels(g, hf, cfg)

	for i, f := range g.Flags {
		level := g.LevelID[i]
		// I6: water implies level <= 0.
		if f.Has(FlagWater) && level > 0 {
			t.Fatalf("cell %d: water=true but level_id=%d > 0", i, level)
		}
		// I4: visual_only implies !playable and level > max walkable.
		if f.Has(FlagVisualOnly) {
			if f.Has(FlagPlayable) {
				t.Fatalf("cell %d: visual_only=true but playable=true", i)
			}
			if level <= cfg.Levels.MaxWalkableLevel {
				t.Fatalf("cell %d: visual_only=true but level_id=%d <= max_walkable (%d)", i, level, cfg.Levels.MaxWalkableLevel)
			}
		}
	}
}

func TestQuantizeLevels_DegenerateFlatField(t *testing.T) {
	cfg := minimalConfig()
	cfg.Noise.Octaves = 0 // degenerate: flat zero field per spec §4.1
	cols, rows := 8, 8
	g, err := NewGrid(cols, rows)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	hf := SynthesizeHeightfield(cfg, cols, rows)
	for _, v := range hf.Values {
		if v != 0 {
			t.Fatalf("expected flat zero field for octaves=0, got %v", v)
		}
	}

	QuantizeLevels(g, hf, cfg)
	first := g.LevelID[0]
	for _, l := range g.LevelID {
		if l != first {
			t.Fatalf("expected uniform level_id across a flat field, got %d and %d", first, l)
		}
	}
}
