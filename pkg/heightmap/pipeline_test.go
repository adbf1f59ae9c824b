package heightmap

import (
	"context"
	"testing"
)

// minimalConfig builds the S1 scenario from spec §8: a small plains map
// with roads, erosion, and border all disabled so none of those stages
// changes the grid.
func minimalConfig() Config {
	cfg := DefaultConfig()
	cfg.Map.WidthUnits = 256
	cfg.Map.HeightUnits = 256
	cfg.Map.CellSize = 1
	cfg.Biome = BiomePlains
	cfg.Seed = 42
	cfg.Roads.Enabled = false
	cfg.Roads.Count = 0
	cfg.Erosion.Enabled = false
	cfg.Border.Enabled = false
	ApplyBiomeDefaults(&cfg)
	return cfg
}

func TestPipelineRun_MinimalS1(t *testing.T) {
	cfg := minimalConfig()
	p := NewPipeline(cfg, nil)

	res, err := p.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Grid.Cols != 256 || res.Grid.Rows != 256 {
		t.Fatalf("grid dims = %dx%d, want 256x256", res.Grid.Cols, res.Grid.Rows)
	}
	if res.Config.Seed != 42 {
		t.Fatalf("config.seed = %d, want 42", res.Config.Seed)
	}

	// Border disabled: boundary mask must be entirely BoundaryNone.
	for _, b := range res.Grid.Boundary {
		if b != BoundaryNone {
			t.Fatalf("expected no boundary cells with border.enabled=false, found %v", b)
		}
	}
	// Roads disabled: no road cells.
	for _, f := range res.Grid.Flags {
		if f.Has(FlagRoad) {
			t.Fatalf("expected no road cells with roads.enabled=false")
		}
	}
}

// TestPipelineRun_P5Determinism asserts spec P5: two independent runs with
// identical config produce a bit-identical grid.
func TestPipelineRun_P5Determinism(t *testing.T) {
	cfg := minimalConfig()
	cfg.Erosion.Enabled = true
	cfg.Roads.Enabled = true
	cfg.Roads.Count = 5
	cfg.Border.Enabled = true

	r1, err := NewPipeline(cfg, nil).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run 1: %v", err)
	}
	r2, err := NewPipeline(cfg, nil).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run 2: %v", err)
	}

	d1, d2 := GridDigest(r1.Grid), GridDigest(r2.Grid)
	if !CompareDigests(d1, d2) {
		t.Fatalf("grid digests differ across identical runs: %s != %s", d1, d2)
	}
}

// TestPipelineRun_Cancelled asserts spec S5: a tripped context returns a
// Cancelled error and no grid is produced.
func TestPipelineRun_Cancelled(t *testing.T) {
	cfg := minimalConfig()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewPipeline(cfg, nil).Run(ctx, nil)
	if err == nil {
		t.Fatal("expected Cancelled error, got nil")
	}
	if res != nil {
		t.Fatal("expected no result on cancellation")
	}
	ge, ok := err.(*GenerationError)
	if !ok {
		t.Fatalf("expected *GenerationError, got %T", err)
	}
	if ge.Kind != KindCancelled {
		t.Fatalf("expected KindCancelled, got %v", ge.Kind)
	}
}

func TestPipelineRun_ConfigInvalidRejectedBeforeStart(t *testing.T) {
	cfg := minimalConfig()
	cfg.Map.WidthUnits = 0

	_, err := NewPipeline(cfg, nil).Run(context.Background(), nil)
	if err == nil {
		t.Fatal("expected ConfigInvalid error")
	}
	ge, ok := err.(*GenerationError)
	if !ok || ge.Kind != KindConfigInvalid {
		t.Fatalf("expected KindConfigInvalid, got %v (%T)", err, err)
	}
}

// TestPipelineRun_RoadsIncludeExitPOIs asserts spec §4.4/§4.5: exit POIs
// produced by the border builder are always included in the final POI set.
func TestPipelineRun_RoadsIncludeExitPOIs(t *testing.T) {
	cfg := minimalConfig()
	cfg.Border.Enabled = true
	cfg.Border.ExitCount = 4
	cfg.Border.ExitWidth = 4
	cfg.Roads.Enabled = true
	cfg.Roads.Count = 8

	res, err := NewPipeline(cfg, nil).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	exits := 0
	for _, p := range res.POIs {
		if p.Type == POIExit {
			exits++
		}
	}
	if exits != 4 {
		t.Fatalf("expected 4 exit POIs, got %d (total POIs %d)", exits, len(res.POIs))
	}
}
