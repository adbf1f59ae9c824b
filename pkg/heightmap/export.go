package heightmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Exporter writes the pipeline's output set to disk: the 16-bit
// heightmap, every 8-bit mask, and the metadata JSON. Adapted from the
// teacher's SaveManager (pkg/saveload/manager.go): a directory-scoped
// writer holding a logger, exposing one save-like entry point, with every
// individual file write going through an atomic temp-then-rename path the
// teacher's writeSaveFile lacked.
type Exporter struct {
	fs     afero.Fs
	outDir string
	logger *logrus.Entry
}

// NewExporter creates an exporter rooted at outDir, creating it if
// necessary. A nil logger falls back to a discard entry, matching the
// teacher's optional-logger convention.
func NewExporter(fs afero.Fs, outDir string, logger *logrus.Entry) (*Exporter, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := fs.MkdirAll(outDir, 0o755); err != nil {
		return nil, errIO("export", fmt.Errorf("create output directory: %w", err))
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	return &Exporter{fs: fs, outDir: outDir, logger: logger.WithField("component", "export")}, nil
}

// ExportResult bundles every output artifact pipeline stage 11 produces
// (spec §4.10), ready for Export to serialize.
type ExportResult struct {
	Grid     *Grid
	NavMesh  *NavMesh
	Segments []RoadSegment
	POIs     []POI
	Cfg      Config
	Biome    BiomeType
}

// Export implements pipeline stage 11: derive every mask, write all PNGs
// and the metadata JSON. Every write is write-to-temp-then-rename so a
// failure mid-export leaves no partial file (spec §4.10's failure clause).
func (e *Exporter) Export(result ExportResult) error {
	g := result.Grid
	minH, maxH := heightRange(g)

	e.logger.WithFields(logrus.Fields{"cols": g.Cols, "rows": g.Rows}).Info("exporting heightmap")

	if err := e.writePNG16("heightmap.png", heightmap16(g, minH, maxH)); err != nil {
		return err
	}

	masks := map[string]*image.Gray{
		"roads_mask.png":              flagMask(g, FlagRoad),
		"water_mask.png":              flagMask(g, FlagWater),
		"underwater_mask.png":         flagMask(g, FlagUnderwater),
		"cliffs_mask.png":             flagMask(g, FlagCliff),
		"visual_only_mask.png":        flagMask(g, FlagVisualOnly),
		"playable_mask.png":           flagMask(g, FlagPlayable),
		"level_mask.png":              levelMask(g),
		"boundary_mask.png":           boundaryMask(g),
		"navigation_walkable_mask.png": walkableMask(g),
		"navigation_swimable_mask.png": swimableMask(g),
		"navigation_flyable_mask.png":  flyableMask(g),
		"navigation_combined_mask.png": combinedNavMask(g),
	}
	for name, img := range masks {
		if err := e.writePNG8(name, img); err != nil {
			return err
		}
	}
	if err := e.writePNG8("collision_map.png", collisionMask(g)); err != nil {
		return err
	}
	if err := e.writePNG8("biome_mask.png", biomeMask(g, result.Biome)); err != nil {
		return err
	}

	meta := buildMetadata(result, minH, maxH)
	if err := e.writeJSON("metadata.json", meta); err != nil {
		return err
	}

	boundaries := buildBoundaryDoc(result.Grid, result.POIs)
	if err := e.writeJSON("boundaries.json", boundaries); err != nil {
		return err
	}

	e.logger.Info("export complete")
	return nil
}

// boundaryDoc is the structured sidecar spec §6 asks for: the closed
// perimeter contour as a ring of shapes, plus every exit POI as a
// teleport link a multi-zone host can stitch to a neighboring map.
type boundaryDoc struct {
	Shapes        []boundaryShape `json:"shapes"`
	TeleportLinks []teleportLink  `json:"teleport_links"`
}

// boundaryShape is one run-length span of same-BoundaryType cells along a
// grid scanline; tracing every span row by row reconstructs the full
// contour without emitting one entry per cell.
type boundaryShape struct {
	Type BoundaryType `json:"type"`
	Y    int          `json:"y"`
	X0   int          `json:"x0"`
	X1   int          `json:"x1"`
}

// teleportLink is one exit gap a neighboring zone can stitch a road into.
type teleportLink struct {
	POIID string `json:"poi_id"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Edge  string `json:"edge"`
}

func buildBoundaryDoc(g *Grid, pois []POI) boundaryDoc {
	doc := boundaryDoc{}
	for y := 0; y < g.Rows; y++ {
		x := 0
		for x < g.Cols {
			bt := g.Boundary[g.Index(x, y)]
			if bt == BoundaryNone {
				x++
				continue
			}
			start := x
			for x < g.Cols && g.Boundary[g.Index(x, y)] == bt {
				x++
			}
			doc.Shapes = append(doc.Shapes, boundaryShape{Type: bt, Y: y, X0: start, X1: x - 1})
		}
	}
	for _, p := range pois {
		if p.Type != POIExit {
			continue
		}
		doc.TeleportLinks = append(doc.TeleportLinks, teleportLink{
			POIID: p.ID, X: p.X, Y: p.Y, Edge: edgeName(p.X, p.Y, g.Cols, g.Rows),
		})
	}
	return doc
}

func edgeName(x, y, cols, rows int) string {
	switch {
	case y == 0:
		return "top"
	case y == rows-1:
		return "bottom"
	case x == 0:
		return "left"
	case x == cols-1:
		return "right"
	default:
		return "interior"
	}
}

func heightRange(g *Grid) (min, max float32) {
	if len(g.Height) == 0 {
		return 0, 1
	}
	min, max = g.Height[0], g.Height[0]
	for _, h := range g.Height {
		if h < min {
			min = h
		}
		if h > max {
			max = h
		}
	}
	if max <= min {
		max = min + 1
	}
	return min, max
}

func heightmap16(g *Grid, minH, maxH float32) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, g.Cols, g.Rows))
	span := maxH - minH
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			h := g.Height[g.Index(x, y)]
			v := uint16(math.Round(65535 * float64((h-minH)/span)))
			img.SetGray16(x, y, color.Gray16{Y: v})
		}
	}
	return img
}

func flagMask(g *Grid, flag Flags) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Cols, g.Rows))
	for i, f := range g.Flags {
		if f.Has(flag) {
			img.Pix[i] = 255
		}
	}
	return img
}

// levelMask maps level_id to bands of 32, offset so level 0 sits at band
// index 2 (value 64), matching spec §4.10's worked example (-2 -> 0, -1 ->
// 32, 0 -> 64, 1 -> 96, ...).
func levelMask(g *Grid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Cols, g.Rows))
	for i, l := range g.LevelID {
		band := (int(l) + 2) * 32
		img.Pix[i] = clampU8(float64(band))
	}
	return img
}

func boundaryMask(g *Grid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Cols, g.Rows))
	for i, b := range g.Boundary {
		var v uint8
		switch b {
		case BoundaryEdge:
			v = 255
		case BoundaryInterior:
			v = 200
		case BoundaryOcean:
			v = 150
		case BoundaryCustom:
			v = 100
		}
		img.Pix[i] = v
	}
	return img
}

func walkableMask(g *Grid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Cols, g.Rows))
	for i := range g.Flags {
		if g.At(i%g.Cols, i/g.Cols).IsWalkable() {
			img.Pix[i] = 255
		}
	}
	return img
}

func swimableMask(g *Grid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Cols, g.Rows))
	for i, f := range g.Flags {
		if f.Has(FlagWater) && g.LevelID[i] <= 0 {
			img.Pix[i] = 255
		}
	}
	return img
}

func flyableMask(g *Grid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Cols, g.Rows))
	for i, f := range g.Flags {
		if !f.Has(FlagBlocked) {
			img.Pix[i] = 255
		}
	}
	return img
}

// combinedNavMask selects by priority walkable > swimable > flyable > none.
func combinedNavMask(g *Grid) *image.Gray {
	w := walkableMask(g)
	s := swimableMask(g)
	f := flyableMask(g)
	img := image.NewGray(image.Rect(0, 0, g.Cols, g.Rows))
	for i := range img.Pix {
		switch {
		case w.Pix[i] == 255:
			img.Pix[i] = 255
		case s.Pix[i] == 255:
			img.Pix[i] = 170
		case f.Pix[i] == 255:
			img.Pix[i] = 85
		}
	}
	return img
}

// collisionMask encodes {none, walkable, water, transition, blocked}.
func collisionMask(g *Grid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Cols, g.Rows))
	for i, f := range g.Flags {
		x, y := i%g.Cols, i/g.Cols
		switch {
		case f.Has(FlagBlocked):
			img.Pix[i] = 255
		case f.Has(FlagWater):
			img.Pix[i] = 150
		case f.Has(FlagCliff) || f.Has(FlagRamp):
			img.Pix[i] = 100
		case g.At(x, y).IsWalkable():
			img.Pix[i] = 50
		default:
			img.Pix[i] = 0
		}
	}
	return img
}

func biomeMask(g *Grid, biome BiomeType) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Cols, g.Rows))
	v := biomeBand(biome)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func biomeBand(b BiomeType) uint8 {
	order := []BiomeType{
		BiomePlains, BiomeHills, BiomeMountain, BiomeDesert, BiomeCanyon,
		BiomeIsland, BiomeCoastal, BiomeVolcanic, BiomeTundra, BiomeForest, BiomeCustom,
	}
	for i, t := range order {
		if t == b {
			return clampU8(float64((i + 1) * 23))
		}
	}
	return 0
}

// metadata is the JSON sidecar spec §4.10 asks for: version, timestamp,
// full config, statistics, export parameters, recommended landscape
// component dimensions.
type metadata struct {
	ExportID      string            `json:"export_id"`
	Version       string            `json:"version"`
	Timestamp     string            `json:"timestamp"`
	Config        Config            `json:"config"`
	Stats         metadataStats     `json:"stats"`
	Export        metadataExport    `json:"export"`
	LandscapeDims metadataLandscape `json:"landscape_component_dimensions"`
}

type metadataStats struct {
	CellsPerLevel map[string]int `json:"cells_per_level"`
	CellsPerFlag  map[string]int `json:"cells_per_flag"`
	RoadCount     int            `json:"road_count"`
}

type metadataExport struct {
	MinHeight            float32 `json:"min_height"`
	MaxHeight            float32 `json:"max_height"`
	ScaleFactor          float64 `json:"scale_factor"`
	InaccessibleMetric   string  `json:"inaccessible_metric"`
	InaccessibleFraction float64 `json:"inaccessible_fraction"`
}

type metadataLandscape struct {
	SectionSize     int `json:"section_size"`
	ComponentsX     int `json:"components_x"`
	ComponentsY     int `json:"components_y"`
}

func buildMetadata(result ExportResult, minH, maxH float32) metadata {
	g := result.Grid
	cellsPerLevel := make(map[string]int)
	for _, l := range g.LevelID {
		cellsPerLevel[itoa(int(l))]++
	}
	cellsPerFlag := map[string]int{
		"road": 0, "ramp": 0, "water": 0, "underwater": 0,
		"blocked": 0, "cliff": 0, "playable": 0, "visual_only": 0,
	}
	for _, f := range g.Flags {
		if f.Has(FlagRoad) {
			cellsPerFlag["road"]++
		}
		if f.Has(FlagRamp) {
			cellsPerFlag["ramp"]++
		}
		if f.Has(FlagWater) {
			cellsPerFlag["water"]++
		}
		if f.Has(FlagUnderwater) {
			cellsPerFlag["underwater"]++
		}
		if f.Has(FlagBlocked) {
			cellsPerFlag["blocked"]++
		}
		if f.Has(FlagCliff) {
			cellsPerFlag["cliff"]++
		}
		if f.Has(FlagPlayable) {
			cellsPerFlag["playable"]++
		}
		if f.Has(FlagVisualOnly) {
			cellsPerFlag["visual_only"]++
		}
	}

	return metadata{
		ExportID:  uuid.NewString(),
		Version:   "1",
		Timestamp: exportTimestamp(),
		Config:    result.Cfg,
		Stats: metadataStats{
			CellsPerLevel: cellsPerLevel,
			CellsPerFlag:  cellsPerFlag,
			RoadCount:     len(result.Segments),
		},
		Export: metadataExport{
			MinHeight:            minH,
			MaxHeight:            maxH,
			ScaleFactor:          65535 / float64(maxH-minH),
			InaccessibleMetric:   "cell_count",
			InaccessibleFraction: InaccessibleFraction(g, result.Cfg.Ramps.InaccessibleMinLevel),
		},
		LandscapeDims: metadataLandscape{
			SectionSize: LandscapeSectionSize,
			ComponentsX: (g.Cols + LandscapeSectionSize - 1) / LandscapeSectionSize,
			ComponentsY: (g.Rows + LandscapeSectionSize - 1) / LandscapeSectionSize,
		},
	}
}

// exportTimestamp is a seam so tests can stub the clock; production calls
// time.Now().UTC().Format(time.RFC3339).
var exportTimestamp = func() string { return time.Now().UTC().Format(time.RFC3339) }

func (e *Exporter) writePNG16(name string, img *image.Gray16) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return errIO("export", fmt.Errorf("encode %s: %w", name, err))
	}
	return e.atomicWrite(name, buf.Bytes())
}

func (e *Exporter) writePNG8(name string, img *image.Gray) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return errIO("export", fmt.Errorf("encode %s: %w", name, err))
	}
	return e.atomicWrite(name, buf.Bytes())
}

func (e *Exporter) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errIO("export", fmt.Errorf("marshal %s: %w", name, err))
	}
	return e.atomicWrite(name, data)
}

// atomicWrite implements spec §4.10's "no partial file" failure clause:
// write to a sibling temp file, fsync isn't available through afero's
// abstraction so we rely on rename's atomicity on the underlying
// filesystem, then rename over the destination.
func (e *Exporter) atomicWrite(name string, data []byte) error {
	dst := filepath.Join(e.outDir, name)
	tmp := dst + ".tmp"

	f, err := e.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errIO("export", fmt.Errorf("create temp file for %s: %w", name, err))
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		e.fs.Remove(tmp)
		return errIO("export", fmt.Errorf("write temp file for %s: %w", name, err))
	}
	if err := f.Close(); err != nil {
		e.fs.Remove(tmp)
		return errIO("export", fmt.Errorf("close temp file for %s: %w", name, err))
	}
	if err := e.fs.Rename(tmp, dst); err != nil {
		e.fs.Remove(tmp)
		return errIO("export", fmt.Errorf("rename into place %s: %w", name, err))
	}
	return nil
}
