package heightmap

import (
	"encoding/json"
	"image/png"
	"testing"

	"github.com/spf13/afero"
)

func testExportResult(t *testing.T) (*Grid, ExportResult) {
	t.Helper()
	cfg := minimalConfig()
	cfg.Border.Enabled = true
	cfg.Border.ExitCount = 2
	cfg.Border.ExitWidth = 4
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
	exits := BuildBorder(g, hf, cfg)

	return g, ExportResult{Grid: g, POIs: exits, Cfg: cfg, Biome: cfg.Biome}
}

func TestExporter_WritesEveryOutputFile(t *testing.T) {
	g, result := testExportResult(t)
	_ = g
	fs := afero.NewMemMapFs()
	exp, err := NewExporter(fs, "/out", nil)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	if err := exp.Export(result); err != nil {
		t.Fatalf("Export: %v", err)
	}

	want := []string{
		"heightmap.png", "roads_mask.png", "water_mask.png", "underwater_mask.png",
		"cliffs_mask.png", "level_mask.png", "biome_mask.png", "playable_mask.png",
		"visual_only_mask.png", "navigation_walkable_mask.png", "navigation_swimable_mask.png",
		"navigation_flyable_mask.png", "navigation_combined_mask.png", "collision_map.png",
		"boundary_mask.png", "boundaries.json", "metadata.json",
	}
	for _, name := range want {
		exists, err := afero.Exists(fs, "/out/"+name)
		if err != nil {
			t.Fatalf("checking %s: %v", name, err)
		}
		if !exists {
			t.Fatalf("expected output file %s to exist", name)
		}
		tmpExists, _ := afero.Exists(fs, "/out/"+name+".tmp")
		if tmpExists {
			t.Fatalf("temp file %s.tmp should not survive a successful export", name)
		}
	}
}

func TestExporter_HeightmapIsValid16BitPNG(t *testing.T) {
	_, result := testExportResult(t)
	fs := afero.NewMemMapFs()
	exp, err := NewExporter(fs, "/out", nil)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	if err := exp.Export(result); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := fs.Open("/out/heightmap.png")
	if err != nil {
		t.Fatalf("open heightmap.png: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode heightmap.png: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != result.Grid.Cols || bounds.Dy() != result.Grid.Rows {
		t.Fatalf("heightmap dims = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), result.Grid.Cols, result.Grid.Rows)
	}
}

func TestExporter_BoundariesJSONHasExitTeleportLinks(t *testing.T) {
	_, result := testExportResult(t)
	fs := afero.NewMemMapFs()
	exp, err := NewExporter(fs, "/out", nil)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	if err := exp.Export(result); err != nil {
		t.Fatalf("Export: %v", err)
	}

	data, err := afero.ReadFile(fs, "/out/boundaries.json")
	if err != nil {
		t.Fatalf("read boundaries.json: %v", err)
	}
	var doc boundaryDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal boundaries.json: %v", err)
	}
	if len(doc.TeleportLinks) != len(result.POIs) {
		t.Fatalf("expected %d teleport links, got %d", len(result.POIs), len(doc.TeleportLinks))
	}
	if len(doc.Shapes) == 0 {
		t.Fatal("expected at least one boundary shape with border enabled")
	}
}

func TestExporter_P7_RoadMaskPixelCountMatchesFlagCount(t *testing.T) {
	g, result := testExportResult(t)
	// Stamp a handful of road cells directly to check the mask/count tie.
	roadCells := 0
	for y := 0; y < g.Rows; y += 7 {
		for x := 0; x < g.Cols; x += 7 {
			g.At(x, y).Set(FlagRoad)
			roadCells++
		}
	}

	fs := afero.NewMemMapFs()
	exp, err := NewExporter(fs, "/out", nil)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	if err := exp.Export(result); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := fs.Open("/out/roads_mask.png")
	if err != nil {
		t.Fatalf("open roads_mask.png: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode roads_mask.png: %v", err)
	}
	count := 0
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			if r>>8 == 255 {
				count++
			}
		}
	}
	if count != roadCells {
		t.Fatalf("roads_mask 255-pixel count = %d, want %d", count, roadCells)
	}
}
