package heightmap

import "testing"

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestConfigColsRows(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Map.WidthUnits = 1024
	cfg.Map.HeightUnits = 512
	cfg.Map.CellSize = 4
	if cfg.Cols() != 256 {
		t.Errorf("expected 256 cols, got %d", cfg.Cols())
	}
	if cfg.Rows() != 128 {
		t.Errorf("expected 128 rows, got %d", cfg.Rows())
	}
}

func TestConfigValidateRejectsBadMap(t *testing.T) {
	cases := []struct {
		name  string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Map.WidthUnits = 0 }},
		{"zero height", func(c *Config) { c.Map.HeightUnits = 0 }},
		{"zero cell size", func(c *Config) { c.Map.CellSize = 0 }},
		{"cell size too large", func(c *Config) { c.Map.CellSize = c.Map.WidthUnits * 2 }},
		{"unknown biome", func(c *Config) { c.Biome = BiomeType("nonexistent") }},
		{"zero level count", func(c *Config) { c.Levels.Count = 0 }},
		{"negative max walkable level", func(c *Config) { c.Levels.MaxWalkableLevel = -1 }},
		{"positive min level", func(c *Config) { c.Levels.MinLevel = 1 }},
		{"zero character height", func(c *Config) { c.Levels.DefaultCharacterHeight = 0 }},
		{"too few road POIs", func(c *Config) { c.Roads.Count = 1 }},
		{"zero road width", func(c *Config) { c.Roads.Width = 0 }},
		{"negative octaves", func(c *Config) { c.Noise.Octaves = -1 }},
		{"zero noise scale", func(c *Config) { c.Noise.Scale = 0 }},
		{"unknown border type", func(c *Config) { c.Border.Type = BorderType("spikes") }},
		{"zero border width", func(c *Config) { c.Border.Width = 0 }},
		{"exit count without exit width", func(c *Config) { c.Border.ExitWidth = 0; c.Border.ExitCount = 2 }},
		{"zero ramp width", func(c *Config) { c.Ramps.Width = 0 }},
		{"inverted ramp angles", func(c *Config) { c.Ramps.MinAngle = 1.0; c.Ramps.MaxAngle = 0.5 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for %s", c.name)
			}
		})
	}
}

func TestConfigValidateRejectsOversizedGrid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Map.WidthUnits = 1_000_000
	cfg.Map.HeightUnits = 1_000_000
	cfg.Map.CellSize = 1
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected capacity error for an oversized grid")
	}
	ge, ok := err.(*GenerationError)
	if !ok || ge.Kind != KindCapacityExceeded {
		t.Errorf("expected KindCapacityExceeded, got %v", err)
	}
}

func TestLevelsConfigMaxStep(t *testing.T) {
	l := LevelsConfig{DefaultCharacterHeight: 2.0}
	if got := l.maxStep(); got != 3.0 {
		t.Errorf("expected max step 3.0, got %v", got)
	}
}
