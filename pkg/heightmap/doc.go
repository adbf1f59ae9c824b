// Package heightmap implements the MMORPG heightmap generation pipeline:
// a deterministic, multi-stage engine that turns a Config into a grid of
// cells plus the auxiliary masks a 3D engine's landscape, material, and
// navmesh subsystems expect.
//
// # Pipeline
//
// The generator runs its stages strictly in order, each publishing a fully
// mutated Grid before the next stage starts. Pipeline.Run performs stages
// 1-9; stage 10 is applied by callers through a LayerStack, and stage 11
// runs when the caller hands the Result to an Exporter:
//
//  1. Grid allocation (NewGrid)
//  2. Base heightfield synthesis (noise.go)
//  3. Erosion & detail (erosion.go)
//  4. Level quantization (levels.go)
//  5. Border construction (border.go)
//  6. POI selection (poi.go)
//  7. Road planning (roads.go)
//  8. Ramp realization (ramps.go)
//  9. NavMesh extraction (navmesh.go)
//  10. Layer composition (layers.go)
//  11. Mask generation & export (export.go)
//
// Every stage is a pure function of the grid's current state, the frozen
// Config, and a seed tag mixed from Config.Seed — see stageRand and
// stageNoiseIndexed in prng.go. This is
// what lets toggling one stage (say, erosion) leave every other stage's
// output bit-identical.
//
// # Determinism
//
// Two runs with the same Config must produce a byte-identical
// heightmap.png. This holds because:
//
//   - noise evaluation is a pure function of (x, y, seed) with no
//     order-dependent reduction;
//   - the road planner rasterizes edges in ascending MST-weight order;
//   - POIs are enumerated in ascending ID order;
//   - every sub-stage PRNG is seeded from (seed, tag), never by a
//     shared mutable generator.
//
// # Usage
//
//	cfg := heightmap.DefaultConfig()
//	cfg.Seed = 42
//	cfg.Biome = heightmap.BiomePlains
//	pipeline := heightmap.NewPipeline(cfg, logging.NewLoggerFromEnv())
//	result, err := pipeline.Run(context.Background(), nil)
package heightmap
