package heightmap

import (
	"math/rand"

	"github.com/opd-ai/heightforge/pkg/procgen"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// stageRand returns a *rand.Rand seeded from the global seed mixed with a
// stage tag, per spec §5: "The PRNG is keyed per sub-stage by mixing the
// global seed with a stage tag ... so that toggling one stage does not
// perturb the output of others." The mixing itself is the teacher's
// procgen.SeedGenerator (pkg/procgen/generator.go), used unmodified.
func stageRand(seed int64, tag string) *rand.Rand {
	sg := procgen.NewSeedGenerator(seed)
	return rand.New(rand.NewSource(sg.GetSeed(tag, 0)))
}

// stageRandIndexed is stageRand but for per-item sub-streams within a
// stage (e.g. one POI, one droplet) that still need to be independently
// reproducible without perturbing sibling items.
func stageRandIndexed(seed int64, tag string, index int) *rand.Rand {
	sg := procgen.NewSeedGenerator(seed)
	return rand.New(rand.NewSource(sg.GetSeed(tag, index)))
}

// stageNoiseIndexed returns a deterministic simplex-noise source for a
// sub-stream within a stage (e.g. one noise variant: fbm, ridged, billow,
// warp each need independent fields so they don't all sample the same
// simplex lattice).
func stageNoiseIndexed(seed int64, tag string, index int) opensimplex.Noise {
	sg := procgen.NewSeedGenerator(seed)
	return opensimplex.New(sg.GetSeed(tag, index))
}
