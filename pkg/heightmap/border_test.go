package heightmap

import "testing"

func testBorderGrid(t *testing.T, cfg Config) (*Grid, *Heightfield) {
	t.Helper()
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
	return g, hf
}

// TestBuildBorder_MountainBlocksPerimeterExceptExits covers spec I7 and S2:
// the perimeter is closed except at the configured exit gaps.
func TestBuildBorder_MountainBlocksPerimeterExceptExits(t *testing.T) {
	cfg := minimalConfig()
	cfg.Border.Enabled = true
	cfg.Border.Type = BorderMountain
	cfg.Border.Width = 4
	cfg.Border.ExitCount = 4
	cfg.Border.ExitWidth = 4

	g, hf := testBorderGrid(t, cfg)
	exits := BuildBorder(g, hf, cfg)

	if len(exits) != 4 {
		t.Fatalf("expected 4 exit POIs, got %d", len(exits))
	}
	for _, p := range exits {
		if p.Type != POIExit {
			t.Fatalf("exit POI has wrong type %v", p.Type)
		}
		cell := g.At(p.X, p.Y)
		if cell.Has(FlagBlocked) {
			t.Fatalf("exit cell (%d,%d) must not be blocked", p.X, p.Y)
		}
		if cell.Boundary() != BoundaryEdge {
			t.Fatalf("exit cell (%d,%d) must be boundary_type=edge, got %v", p.X, p.Y, cell.Boundary())
		}
	}

	// Some non-exit perimeter cell should be blocked.
	foundBlocked := false
	for y := 0; y < g.Rows && !foundBlocked; y++ {
		for x := 0; x < g.Cols; x++ {
			if distanceFromEdge(x, y, g.Cols, g.Rows) == 0 && g.At(x, y).Has(FlagBlocked) {
				foundBlocked = true
				break
			}
		}
	}
	if !foundBlocked {
		t.Fatal("expected at least one blocked cell on the outer ring")
	}
}

func TestBuildBorder_Disabled_NoBoundaryCells(t *testing.T) {
	cfg := minimalConfig()
	cfg.Border.Enabled = false

	g, hf := testBorderGrid(t, cfg)
	exits := BuildBorder(g, hf, cfg)
	if exits != nil {
		t.Fatalf("expected no exit POIs when border disabled, got %d", len(exits))
	}
	for _, b := range g.Boundary {
		if b != BoundaryNone {
			t.Fatal("expected no boundary cells when border disabled")
		}
	}
}

func TestBuildBorder_WaterIsland(t *testing.T) {
	cfg := minimalConfig()
	cfg.Biome = BiomeIsland
	cfg.Border.Enabled = true
	cfg.Border.Type = BorderWater
	cfg.Border.Width = 5
	cfg.Border.ExitCount = 0
	ApplyBiomeDefaults(&cfg)

	g, hf := testBorderGrid(t, cfg)
	BuildBorder(g, hf, cfg)

	found := false
	for _, f := range g.Flags {
		if f.Has(FlagWater) {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("expected water-flagged cells around a water-type border")
	}
}
