package heightmap

// BiomeType selects a biome-specific generation profile (spec §3 "Biome
// height table").
//
// Adapted from the teacher's GenreTerrainPreferences table in
// pkg/procgen/terrain/genre_mapping.go: the same "map of enum to tunables
// plus accessor functions" shape, retargeted from tile-theme/generator
// preferences to noise/erosion/level tunables.
type BiomeType string

const (
	BiomePlains   BiomeType = "plains"
	BiomeHills    BiomeType = "hills"
	BiomeMountain BiomeType = "mountain"
	BiomeDesert   BiomeType = "desert"
	BiomeCanyon   BiomeType = "canyon"
	BiomeIsland   BiomeType = "island"
	BiomeCoastal  BiomeType = "coastal"
	BiomeVolcanic BiomeType = "volcanic"
	BiomeTundra   BiomeType = "tundra"
	BiomeForest   BiomeType = "forest"
	BiomeCustom   BiomeType = "custom"
)

// BiomeProfile supplies the noise/erosion/density defaults spec §3
// associates with each biome.
type BiomeProfile struct {
	NoiseScale      float64
	Octaves         int
	Persistence     float64
	RidgeStrength   float64
	WarpStrength    float64
	BillowStrength  float64
	SeaLevelFrac    float64 // fraction of height range treated as sea level
	HeightScale     float64 // world-unit multiplier applied to normalized height
	PlainsFlat      float64
	MountainDensity float64
	ClusterSize     int
}

var biomeProfiles = map[BiomeType]BiomeProfile{
	BiomePlains: {
		NoiseScale: 0.008, Octaves: 4, Persistence: 0.45, RidgeStrength: 0.05,
		WarpStrength: 0.0, BillowStrength: 0.0, SeaLevelFrac: 0.15,
		HeightScale: 8, PlainsFlat: 0.6, MountainDensity: 0.05, ClusterSize: 48,
	},
	BiomeHills: {
		NoiseScale: 0.012, Octaves: 5, Persistence: 0.5, RidgeStrength: 0.2,
		WarpStrength: 0.1, BillowStrength: 0.1, SeaLevelFrac: 0.15,
		HeightScale: 14, PlainsFlat: 0.3, MountainDensity: 0.2, ClusterSize: 40,
	},
	BiomeMountain: {
		NoiseScale: 0.02, Octaves: 6, Persistence: 0.55, RidgeStrength: 0.7,
		WarpStrength: 0.3, BillowStrength: 0.1, SeaLevelFrac: 0.1,
		HeightScale: 30, PlainsFlat: 0.05, MountainDensity: 0.6, ClusterSize: 24,
	},
	BiomeDesert: {
		NoiseScale: 0.01, Octaves: 5, Persistence: 0.4, RidgeStrength: 0.1,
		WarpStrength: 0.4, BillowStrength: 0.3, SeaLevelFrac: 0.0,
		HeightScale: 10, PlainsFlat: 0.4, MountainDensity: 0.1, ClusterSize: 36,
	},
	BiomeCanyon: {
		NoiseScale: 0.015, Octaves: 6, Persistence: 0.5, RidgeStrength: 0.8,
		WarpStrength: 0.5, BillowStrength: 0.0, SeaLevelFrac: 0.0,
		HeightScale: 20, PlainsFlat: 0.1, MountainDensity: 0.3, ClusterSize: 20,
	},
	BiomeIsland: {
		NoiseScale: 0.01, Octaves: 5, Persistence: 0.5, RidgeStrength: 0.3,
		WarpStrength: 0.2, BillowStrength: 0.1, SeaLevelFrac: 0.45,
		HeightScale: 16, PlainsFlat: 0.3, MountainDensity: 0.25, ClusterSize: 32,
	},
	BiomeCoastal: {
		NoiseScale: 0.009, Octaves: 5, Persistence: 0.45, RidgeStrength: 0.15,
		WarpStrength: 0.15, BillowStrength: 0.1, SeaLevelFrac: 0.35,
		HeightScale: 12, PlainsFlat: 0.4, MountainDensity: 0.1, ClusterSize: 40,
	},
	BiomeVolcanic: {
		NoiseScale: 0.018, Octaves: 6, Persistence: 0.55, RidgeStrength: 0.6,
		WarpStrength: 0.2, BillowStrength: 0.2, SeaLevelFrac: 0.1,
		HeightScale: 26, PlainsFlat: 0.15, MountainDensity: 0.5, ClusterSize: 20,
	},
	BiomeTundra: {
		NoiseScale: 0.01, Octaves: 5, Persistence: 0.45, RidgeStrength: 0.2,
		WarpStrength: 0.1, BillowStrength: 0.2, SeaLevelFrac: 0.2,
		HeightScale: 10, PlainsFlat: 0.45, MountainDensity: 0.15, ClusterSize: 44,
	},
	BiomeForest: {
		NoiseScale: 0.011, Octaves: 5, Persistence: 0.5, RidgeStrength: 0.1,
		WarpStrength: 0.2, BillowStrength: 0.15, SeaLevelFrac: 0.15,
		HeightScale: 11, PlainsFlat: 0.35, MountainDensity: 0.1, ClusterSize: 40,
	},
	BiomeCustom: {
		NoiseScale: 0.01, Octaves: 5, Persistence: 0.5, RidgeStrength: 0.3,
		WarpStrength: 0.2, BillowStrength: 0.1, SeaLevelFrac: 0.2,
		HeightScale: 16, PlainsFlat: 0.3, MountainDensity: 0.2, ClusterSize: 32,
	},
}

// ProfileFor returns the BiomeProfile for a biome, falling back to
// BiomeCustom's profile for an unrecognized type (Validate rejects unknown
// biomes at the pipeline boundary, so this fallback only matters for direct
// callers of ProfileFor outside the pipeline).
func ProfileFor(b BiomeType) BiomeProfile {
	if p, ok := biomeProfiles[b]; ok {
		return p
	}
	return biomeProfiles[BiomeCustom]
}

// ApplyBiomeDefaults fills any zero-valued noise/density fields in cfg
// from the biome's profile. Mirrors the teacher's ApplyGenreDefaults
// (pkg/procgen/terrain/genre_mapping.go), which only fills custom params
// that the caller left unset.
func ApplyBiomeDefaults(cfg *Config) {
	p := ProfileFor(cfg.Biome)
	if cfg.Noise.Scale == 0 {
		cfg.Noise.Scale = p.NoiseScale
	}
	if cfg.Noise.Octaves == 0 {
		cfg.Noise.Octaves = p.Octaves
	}
	if cfg.Noise.Persistence == 0 {
		cfg.Noise.Persistence = p.Persistence
	}
	if cfg.Noise.Lacunarity == 0 {
		cfg.Noise.Lacunarity = 2.0
	}
	if cfg.Noise.RidgeStrength == 0 {
		cfg.Noise.RidgeStrength = p.RidgeStrength
	}
	if cfg.Noise.WarpStrength == 0 {
		cfg.Noise.WarpStrength = p.WarpStrength
	}
	if cfg.Noise.BillowStrength == 0 {
		cfg.Noise.BillowStrength = p.BillowStrength
	}
	if cfg.Density.PlainsFlat == 0 {
		cfg.Density.PlainsFlat = p.PlainsFlat
	}
	if cfg.Density.MountainDensity == 0 {
		cfg.Density.MountainDensity = p.MountainDensity
	}
	if cfg.Density.ClusterSize == 0 {
		cfg.Density.ClusterSize = p.ClusterSize
	}
}
