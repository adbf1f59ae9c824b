package heightmap

import (
	"context"

	"github.com/opd-ai/heightforge/pkg/procgen"
	"github.com/sirupsen/logrus"
)

// StageProgress reports fractional completion of the pipeline, following
// the percentages spec §2 assigns each stage.
type StageProgress struct {
	Stage   string
	Percent float64
}

// ProgressFunc receives a StageProgress once after each stage completes.
// No reports are made from inside a stage (A* and erosion run without
// intermediate checkpoints). A nil func is a valid no-op subscriber.
type ProgressFunc func(StageProgress)

// Result bundles every artifact the pipeline produces, ready for an
// Exporter or for direct inspection in tests.
type Result struct {
	Grid     *Grid
	Heightfield *Heightfield
	POIs     []POI
	Segments []RoadSegment
	NavMesh  *NavMesh
	Config   Config
}

// Pipeline orchestrates the eleven generation stages (spec §2) under a
// single-writer, strictly-sequential discipline: stage N+1 only starts
// after stage N completes. It implements procgen.Generator so it can be
// driven by the same scaffolding the rest of the procgen package uses.
type Pipeline struct {
	cfg    Config
	logger *logrus.Entry
}

// NewPipeline builds a pipeline bound to cfg. A nil logger falls back to
// a default, matching the teacher's optional-logger convention throughout
// pkg/saveload and pkg/procgen.
func NewPipeline(cfg Config, logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.New()
	}
	return &Pipeline{cfg: cfg, logger: logger.WithField("component", "heightmap.pipeline")}
}

var stageWeights = []struct {
	name    string
	percent float64
}{
	{"grid", 5}, {"noise", 15}, {"erosion", 15}, {"levels", 5},
	{"border", 8}, {"poi", 5}, {"roads", 18}, {"ramps", 5},
	{"navmesh", 8}, {"layers", 6}, {"export", 10},
}

// Run executes every stage in order, honoring ctx cancellation at stage
// boundaries only; a stage that has started (including the road
// planner's A* search) runs to completion before ctx is checked again. On
// cancellation the
// partially-mutated grid is discarded and a *GenerationError with
// KindCancelled is returned; no export occurs.
func (p *Pipeline) Run(ctx context.Context, progress ProgressFunc) (*Result, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}

	report := func(i int) {
		if progress != nil {
			done := 0.0
			for _, w := range stageWeights[:i+1] {
				done += w.percent
			}
			progress(StageProgress{Stage: stageWeights[i].name, Percent: done})
		}
	}

	cols, rows := p.cfg.Cols(), p.cfg.Rows()

	// Stage 1: grid allocator.
	if err := checkCancel(ctx, "grid"); err != nil {
		return nil, err
	}
	g, err := NewGrid(cols, rows)
	if err != nil {
		return nil, errGeneration("grid", "allocate grid: %v", err)
	}
	report(0)

	// Stage 2: base heightfield synthesizer.
	if err := checkCancel(ctx, "noise"); err != nil {
		return nil, err
	}
	hf := SynthesizeHeightfield(p.cfg, cols, rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			g.At(x, y).SetHeight(float32(hf.at(x, y)))
		}
	}
	report(1)

	// Stage 3: erosion & detail pass.
	if err := checkCancel(ctx, "erosion"); err != nil {
		return nil, err
	}
	maxStep := maxStepHeight(p.cfg)
	mask := buildProtectionMask(g, hf, p.cfg.Erosion.FeatherCells)
	ApplyErosion(hf, mask, p.cfg, maxStep)
	syncGridHeights(g, hf)
	report(2)

	// Stage 4: level quantizer.
	if err := checkCancel(ctx, "levels"); err != nil {
		return nil, err
	}
	QuantizeLevels(g, hf, p.cfg)
	report(3)

	// Stage 5: border builder.
	if err := checkCancel(ctx, "border"); err != nil {
		return nil, err
	}
	exitPOIs := BuildBorder(g, hf, p.cfg)
	syncGridHeights(g, hf)
	QuantizeLevels(g, hf, p.cfg) // re-stamp levels after border height changes
	report(4)

	// Stage 6: POI selector.
	if err := checkCancel(ctx, "poi"); err != nil {
		return nil, err
	}
	pois := PlacePOIs(g, p.cfg, exitPOIs)
	report(5)

	// Stage 7: road planner.
	if err := checkCancel(ctx, "roads"); err != nil {
		return nil, err
	}
	segments, err := PlanRoads(g, hf, pois, p.cfg)
	if err != nil {
		return nil, err
	}
	syncGridHeights(g, hf)
	report(6)

	// Stage 8: ramp realizer.
	if err := checkCancel(ctx, "ramps"); err != nil {
		return nil, err
	}
	RealizeRamps(g, hf, segments, p.cfg)
	SmoothLandscapeSeams(hf, LandscapeSectionSize, p.cfg.Map.SeamBlendWidth)
	syncGridHeights(g, hf)
	report(7)

	// Stage 9: navmesh extractor.
	if err := checkCancel(ctx, "navmesh"); err != nil {
		return nil, err
	}
	nav := ExtractNavMesh(g, float64(p.cfg.Map.CellSize), 8, maxStep)
	report(8)

	// Stage 10: layer compositor is an authoring-time concern layered on
	// top of the grid by callers (project.go / layers.go); the base
	// pipeline run publishes base heights untouched when no layer stack
	// is supplied, per spec §3 "otherwise base heights pass through".
	report(9)

	if err := checkCancel(ctx, "export"); err != nil {
		return nil, err
	}
	report(10)

	p.logger.WithFields(logrus.Fields{
		"cols": cols, "rows": rows, "pois": len(pois), "roads": len(segments),
	}).Info("pipeline run complete")

	return &Result{
		Grid: g, Heightfield: hf, POIs: pois, Segments: segments, NavMesh: nav, Config: p.cfg,
	}, nil
}

func syncGridHeights(g *Grid, hf *Heightfield) {
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			g.At(x, y).SetHeight(float32(hf.at(x, y)))
		}
	}
}

func checkCancel(ctx context.Context, stage string) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return errCancelled(stage)
	default:
		return nil
	}
}

// Generate implements procgen.Generator: seed overrides the pipeline's
// configured seed (params.Custom["config"] may carry a Config value to replace it
// wholesale, matching the "Custom map[string]interface{}" escape hatch
// the teacher's GenerationParams already exposes).
func (p *Pipeline) Generate(seed int64, params procgen.GenerationParams) (interface{}, error) {
	cfg := p.cfg
	cfg.Seed = seed
	if params.Custom != nil {
		if override, ok := params.Custom["config"].(Config); ok {
			cfg = override
			cfg.Seed = seed
		}
	}
	pl := NewPipeline(cfg, nil)
	pl.logger = p.logger
	return pl.Run(context.Background(), nil)
}

// Validate implements procgen.Generator.
func (p *Pipeline) Validate(result interface{}) error {
	res, ok := result.(*Result)
	if !ok || res == nil {
		return errGeneration("validate", "result is not a *heightmap.Result")
	}
	if res.Grid == nil {
		return errGeneration("validate", "result has no grid")
	}
	return nil
}
