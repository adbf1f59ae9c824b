// Package procgen provides the shared procedural-generation scaffolding used
// by github.com/opd-ai/heightforge/pkg/heightmap: the Generator interface and
// a per-stage SeedGenerator so that toggling one pipeline stage never
// perturbs another's deterministic output (spec §5 "shared resources").
//
// All generators use deterministic algorithms based on seed values to ensure
// reproducible content generation.
package procgen
