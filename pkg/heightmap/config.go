package heightmap

// LandscapeSectionSize is the recommended quad count (+1 for the shared
// edge vertex row) for one landscape component, matching the engine-side
// tiling convention the export metadata's dimension hints target.
const LandscapeSectionSize = 63

// BorderType selects the perimeter treatment (spec §4.4).
type BorderType string

const (
	BorderMountain BorderType = "mountain"
	BorderCliff    BorderType = "cliff"
	BorderWater    BorderType = "water"
	BorderNone     BorderType = "none"
)

// RampCurve selects the slope profile shape (spec §4.7).
type RampCurve string

const (
	CurveLinear     RampCurve = "linear"
	CurveEaseIn     RampCurve = "ease_in"
	CurveEaseOut    RampCurve = "ease_out"
	CurveEaseInOut  RampCurve = "ease_in_out"
	CurveExponential RampCurve = "exponential"
)

// MapConfig holds world-unit dimensions.
type MapConfig struct {
	WidthUnits, HeightUnits int
	CellSize                int
	// SeamBlendWidth is the supplemental multi-zone stitching parameter
	// from SPEC_FULL §11.2 (Open Question: blend kernel width).
	SeamBlendWidth int
}

// LevelsConfig controls level quantization (spec §4.3).
type LevelsConfig struct {
	Count              int
	MinLevel           int8 // most negative underwater level, e.g. -3
	MaxWalkableLevel    int8 // e.g. 4
	DefaultCharacterHeight float64
	BaseHeights        map[int8]float64 // optional override
}

func (l LevelsConfig) maxStep() float64 { return 1.5 * l.DefaultCharacterHeight }

// RoadsConfig controls the road planner (spec §4.6).
type RoadsConfig struct {
	Enabled        bool
	Count          int // target POI count
	Width          int
	NoiseAmplitude float64
	SmoothingPasses int
	BlurPasses     int
	AllowLoops     bool
	MaxExtraEdges  int
	LevelPenalty   float64 // default 10
	EightConnected bool
	ProgressInterval int // A* expansions between progress callbacks, default 4096; PlanRoads does not read it
}

// NoiseConfig controls the base heightfield synthesizer (spec §4.1).
type NoiseConfig struct {
	Scale           float64
	Octaves         int
	Persistence     float64
	Lacunarity      float64
	RidgeStrength   float64
	WarpStrength    float64
	WarpScale       float64
	BillowStrength  float64
	VoronoiStrength float64
}

// ErosionConfig controls the erosion & detail pass (spec §4.2).
type ErosionConfig struct {
	Enabled            bool
	Iterations         int
	HydraulicEnabled   bool
	HydraulicRate      float64
	DepositionRate     float64
	Evaporation        float64
	Inertia            float64
	ThermalEnabled     bool
	ThermalTalusAngle  float64 // radians
	ThermalStrength    float64
	FeatherCells       int
}

// DetailConfig controls the multi-scale micro-detail overlay (spec §4.2).
type DetailConfig struct {
	Enabled        bool
	MacroStrength  float64
	MesoStrength   float64
	MicroStrength  float64
}

// RampsConfig controls ramp insertion and realization (spec §4.6-4.7).
type RampsConfig struct {
	Enabled               bool
	MaxAngle              float64 // radians, reverse-climb threshold
	MinAngle              float64 // radians, walkable threshold
	Width                 int
	NoiseAmplitude        float64
	NoiseScale            float64
	RampsPerTransition    int
	MinRampLength         int
	Curve                 RampCurve
	EnableInaccessible    bool
	InaccessibleMinLevel  int8
	InaccessiblePercentage float64
}

// BorderConfig controls the perimeter (spec §4.4).
type BorderConfig struct {
	Enabled        bool
	Type           BorderType
	Width          int
	Height         float64
	Smoothness     float64
	ExitCount      int
	ExitWidth      int
	NoiseAmplitude float64
	NoiseScale     float64
}

// DensityConfig controls large-scale feature placement (spec §4).
type DensityConfig struct {
	MountainDensity  float64
	ClusterSize      int
	HeightMultiplier float64
	ValleyDepth      float64
	PlainsFlat       float64
	RangeCount       int
}

// Config is the frozen, nested configuration record of spec §6.
type Config struct {
	Map     MapConfig
	Biome   BiomeType
	Levels  LevelsConfig
	Roads   RoadsConfig
	Noise   NoiseConfig
	Erosion ErosionConfig
	Detail  DetailConfig
	Ramps   RampsConfig
	Border  BorderConfig
	Density DensityConfig
	Seed    int64
}

// DefaultConfig returns a plains-biome config with sane, documented
// defaults — every field a caller doesn't override behaves reasonably.
func DefaultConfig() Config {
	cfg := Config{
		Map:   MapConfig{WidthUnits: 1024, HeightUnits: 1024, CellSize: 4, SeamBlendWidth: 4},
		Biome: BiomePlains,
		Levels: LevelsConfig{
			Count: 6, MinLevel: -3, MaxWalkableLevel: 4, DefaultCharacterHeight: 2.0,
		},
		Roads: RoadsConfig{
			Enabled: true, Count: 6, Width: 3, NoiseAmplitude: 0.1,
			SmoothingPasses: 1, BlurPasses: 1, AllowLoops: true,
			MaxExtraEdges: 2, LevelPenalty: 10, EightConnected: true,
			ProgressInterval: 4096,
		},
		Noise: NoiseConfig{
			Scale: 0.01, Octaves: 6, Persistence: 0.5, Lacunarity: 2.0,
			RidgeStrength: 0.3, WarpStrength: 0.0, WarpScale: 64,
			BillowStrength: 0.0, VoronoiStrength: 0.0,
		},
		Erosion: ErosionConfig{
			Enabled: true, Iterations: 20000, HydraulicEnabled: true,
			HydraulicRate: 0.3, DepositionRate: 0.3, Evaporation: 0.02,
			Inertia: 0.05, ThermalEnabled: true, ThermalTalusAngle: 0.6,
			ThermalStrength: 0.5, FeatherCells: 3,
		},
		Detail: DetailConfig{Enabled: true, MacroStrength: 0.05, MesoStrength: 0.02, MicroStrength: 0.01},
		Ramps: RampsConfig{
			Enabled: true, MaxAngle: 1.2, MinAngle: 0.2, Width: 3,
			NoiseAmplitude: 0, NoiseScale: 16, RampsPerTransition: 1,
			MinRampLength: 4, Curve: CurveEaseInOut,
			InaccessibleMinLevel: 3, InaccessiblePercentage: 0.1,
		},
		Border: BorderConfig{
			Enabled: true, Type: BorderMountain, Width: 6, Height: 3,
			Smoothness: 0.5, ExitCount: 2, ExitWidth: 4,
			NoiseAmplitude: 0.3, NoiseScale: 0.05,
		},
		Density: DensityConfig{
			MountainDensity: 0.3, ClusterSize: 32, HeightMultiplier: 1.0,
			ValleyDepth: 0.3, PlainsFlat: 0.2, RangeCount: 1,
		},
		Seed: 0,
	}
	return cfg
}

// Validate performs the single, total boundary check of spec §7: the
// pipeline does not start unless this returns nil, and no stage repeats
// these checks afterward.
func (c Config) Validate() error {
	if c.Map.WidthUnits <= 0 {
		return errConfigInvalid("map.width", "must be positive, got %d", c.Map.WidthUnits)
	}
	if c.Map.HeightUnits <= 0 {
		return errConfigInvalid("map.height", "must be positive, got %d", c.Map.HeightUnits)
	}
	if c.Map.CellSize <= 0 {
		return errConfigInvalid("map.cell_size", "must be positive, got %d", c.Map.CellSize)
	}
	cols := c.Map.WidthUnits / c.Map.CellSize
	rows := c.Map.HeightUnits / c.Map.CellSize
	if cols <= 0 || rows <= 0 {
		return errConfigInvalid("map.cell_size", "cell_size %d too large for %dx%d map", c.Map.CellSize, c.Map.WidthUnits, c.Map.HeightUnits)
	}
	const maxCells = 16_000_000
	if cols*rows > maxCells {
		return errCapacity("grid of %dx%d (%d cells) exceeds allocation budget of %d cells", cols, rows, cols*rows, maxCells)
	}
	if _, ok := biomeProfiles[c.Biome]; !ok {
		return errConfigInvalid("biome", "unknown biome %q", c.Biome)
	}
	if c.Levels.Count <= 0 {
		return errConfigInvalid("levels.count", "must be positive, got %d", c.Levels.Count)
	}
	if c.Levels.MaxWalkableLevel < 0 {
		return errConfigInvalid("levels.max_walkable_level", "must be >= 0, got %d", c.Levels.MaxWalkableLevel)
	}
	if c.Levels.MinLevel > 0 {
		return errConfigInvalid("levels.min_level", "must be <= 0, got %d", c.Levels.MinLevel)
	}
	if c.Levels.DefaultCharacterHeight <= 0 {
		return errConfigInvalid("levels.default_character_height", "must be positive, got %f", c.Levels.DefaultCharacterHeight)
	}
	if c.Roads.Enabled {
		if c.Roads.Count < 2 {
			return errConfigInvalid("roads.count", "need at least 2 POIs to plan roads, got %d", c.Roads.Count)
		}
		if c.Roads.Width <= 0 {
			return errConfigInvalid("roads.width", "must be positive, got %d", c.Roads.Width)
		}
	}
	if c.Noise.Octaves < 0 {
		return errConfigInvalid("noise.octaves", "must be >= 0, got %d", c.Noise.Octaves)
	}
	if c.Noise.Scale <= 0 {
		return errConfigInvalid("noise.scale", "must be positive, got %f", c.Noise.Scale)
	}
	if c.Border.Enabled {
		switch c.Border.Type {
		case BorderMountain, BorderCliff, BorderWater, BorderNone:
		default:
			return errConfigInvalid("border.type", "unknown border type %q", c.Border.Type)
		}
		if c.Border.Width <= 0 {
			return errConfigInvalid("border.width", "must be positive, got %d", c.Border.Width)
		}
		if c.Border.ExitCount < 0 {
			return errConfigInvalid("border.exit_count", "must be >= 0, got %d", c.Border.ExitCount)
		}
		if c.Border.ExitCount > 0 && c.Border.ExitWidth <= 0 {
			return errConfigInvalid("border.exit_width", "must be positive when exit_count > 0, got %d", c.Border.ExitWidth)
		}
	}
	if c.Ramps.Enabled {
		if c.Ramps.Width <= 0 {
			return errConfigInvalid("ramps.width", "must be positive, got %d", c.Ramps.Width)
		}
		if c.Ramps.MinAngle < 0 || c.Ramps.MaxAngle <= c.Ramps.MinAngle {
			return errConfigInvalid("ramps.max_angle", "must exceed min_angle (%f), got %f", c.Ramps.MinAngle, c.Ramps.MaxAngle)
		}
	}
	return nil
}

// Cols returns the grid column count implied by Map.
func (c Config) Cols() int { return c.Map.WidthUnits / c.Map.CellSize }

// Rows returns the grid row count implied by Map.
func (c Config) Rows() int { return c.Map.HeightUnits / c.Map.CellSize }
