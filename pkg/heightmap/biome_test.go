package heightmap

import "testing"

func TestProfileForKnownBiome(t *testing.T) {
	p := ProfileFor(BiomeMountain)
	if p.RidgeStrength != biomeProfiles[BiomeMountain].RidgeStrength {
		t.Errorf("expected mountain profile, got %+v", p)
	}
}

func TestProfileForUnknownBiomeFallsBackToCustom(t *testing.T) {
	p := ProfileFor(BiomeType("nonexistent"))
	if p != biomeProfiles[BiomeCustom] {
		t.Errorf("expected custom fallback, got %+v", p)
	}
}

func TestApplyBiomeDefaultsOnlyFillsZeroFields(t *testing.T) {
	cfg := Config{Biome: BiomeDesert}
	cfg.Noise.Scale = 0.5 // caller-set, must survive

	ApplyBiomeDefaults(&cfg)

	profile := biomeProfiles[BiomeDesert]
	if cfg.Noise.Scale != 0.5 {
		t.Errorf("expected caller-set scale to be preserved, got %v", cfg.Noise.Scale)
	}
	if cfg.Noise.Octaves != profile.Octaves {
		t.Errorf("expected octaves filled from profile, got %d", cfg.Noise.Octaves)
	}
	if cfg.Noise.Persistence != profile.Persistence {
		t.Errorf("expected persistence filled from profile, got %v", cfg.Noise.Persistence)
	}
	if cfg.Density.MountainDensity != profile.MountainDensity {
		t.Errorf("expected mountain density filled from profile, got %v", cfg.Density.MountainDensity)
	}
	if cfg.Noise.Lacunarity != 2.0 {
		t.Errorf("expected default lacunarity 2.0, got %v", cfg.Noise.Lacunarity)
	}
}

func TestAllBiomesHaveProfiles(t *testing.T) {
	biomes := []BiomeType{
		BiomePlains, BiomeHills, BiomeMountain, BiomeDesert, BiomeCanyon,
		BiomeIsland, BiomeCoastal, BiomeVolcanic, BiomeTundra, BiomeForest, BiomeCustom,
	}
	for _, b := range biomes {
		if _, ok := biomeProfiles[b]; !ok {
			t.Errorf("missing profile for biome %q", b)
		}
	}
}
