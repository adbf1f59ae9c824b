// Command heightmapgen drives the heightmap generation pipeline from the
// command line: generate a landscape and export it, validate a config
// file without generating, or round-trip a saved project.
package main

import (
	"fmt"
	"os"

	"github.com/opd-ai/heightforge/pkg/heightmap"
	"github.com/opd-ai/heightforge/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	logger  = logging.NewLoggerFromEnv()
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "heightmapgen",
		Short: "Procedural heightmap and road-network generator",
		Long: `heightmapgen generates layered, multi-level terrain from a config file
or flag-supplied parameters: a base heightfield, erosion and detail
passes, discrete level bands, a perimeter border, points of interest,
an MST road network with ramps, and a walkable navmesh.`,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML/JSON config file (optional)")
	root.AddCommand(generateCmd(), validateConfigCmd(), exportProjectCmd())
	return root
}

func loadConfig() (heightmap.Config, error) {
	cfg := heightmap.DefaultConfig()
	if cfgFile == "" {
		return cfg, nil
	}
	v := viper.New()
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", cfgFile, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

func generateCmd() *cobra.Command {
	var (
		seed    int64
		biome   string
		outDir  string
		width   int
		height  int
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the full pipeline and export masks, heightmap, and metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if seed != 0 {
				cfg.Seed = seed
			}
			if biome != "" {
				cfg.Biome = heightmap.BiomeType(biome)
			}
			if width > 0 {
				cfg.Map.WidthUnits = width
			}
			if height > 0 {
				cfg.Map.HeightUnits = height
			}
			heightmap.ApplyBiomeDefaults(&cfg)

			pipeline := heightmap.NewPipeline(cfg, logger)
			result, err := pipeline.Run(cmd.Context(), func(p heightmap.StageProgress) {
				logger.WithField("stage", p.Stage).Infof("stage complete (%.0f%%)", p.Percent)
			})
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			exporter, err := heightmap.NewExporter(nil, outDir, logger.WithField("component", "cli"))
			if err != nil {
				return err
			}
			exportErr := exporter.Export(heightmap.ExportResult{
				Grid: result.Grid, NavMesh: result.NavMesh,
				Segments: result.Segments, POIs: result.POIs, Cfg: result.Config, Biome: cfg.Biome,
			})
			if exportErr != nil {
				return fmt.Errorf("export failed: %w", exportErr)
			}
			fmt.Printf("generated %dx%d landscape, %d POIs, %d road segments -> %s\n",
				cfg.Cols(), cfg.Rows(), len(result.POIs), len(result.Segments), outDir)
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "generation seed (0 keeps the config's seed)")
	cmd.Flags().StringVar(&biome, "biome", "", "biome preset overriding the config (plains, hills, mountain, desert, canyon, island, coastal, volcanic, tundra, forest, custom)")
	cmd.Flags().StringVar(&outDir, "out", "./output", "directory to write heightmap.png, masks, and metadata.json")
	cmd.Flags().IntVar(&width, "width", 0, "map width in world units, overriding the config")
	cmd.Flags().IntVar(&height, "height", 0, "map height in world units, overriding the config")
	return cmd
}

func validateConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config",
		Short: "Parse and validate a config file without generating anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Println("config is valid")
			return nil
		},
	}
}

func exportProjectCmd() *cobra.Command {
	var (
		name   string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export-project",
		Short: "Re-export masks and heightmap from a previously saved project file",
		RunE: func(cmd *cobra.Command, args []string) error {
			pm, err := heightmap.NewProjectManager(nil, ".", logger.WithField("component", "cli"))
			if err != nil {
				return err
			}
			proj, err := pm.LoadProject(name)
			if err != nil {
				return err
			}
			cfg := proj.Config

			pipeline := heightmap.NewPipeline(cfg, logger)
			result, err := pipeline.Run(cmd.Context(), nil)
			if err != nil {
				return fmt.Errorf("regeneration failed: %w", err)
			}

			exporter, err := heightmap.NewExporter(nil, outDir, logger.WithField("component", "cli"))
			if err != nil {
				return err
			}
			exportResult := heightmap.ExportResult{
				Grid: result.Grid, NavMesh: result.NavMesh,
				Segments: result.Segments, POIs: result.POIs, Cfg: result.Config,
			}
			if proj.Layers != nil {
				exportResult.Biome = cfg.Biome
			}
			if err := exporter.Export(exportResult); err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			fmt.Printf("re-exported project %q -> %s\n", name, outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name to load")
	cmd.Flags().StringVar(&outDir, "out", "./output", "directory to write the re-export")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
