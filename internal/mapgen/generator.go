// Package mapgen generates hex terrain: landmasses raised from random
// growth patches, eroded, watered by a simple climate model, cut by rivers
// and finally classified into biomes.
//
// Generation is deterministic for a given seed and Config. All randomness
// comes from one entropy.Stream created per run.
package mapgen

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/hexterrain/internal/entropy"
	"github.com/talgya/hexterrain/internal/noise"
	"github.com/talgya/hexterrain/internal/world"
)

// Stats reports what each phase of a run achieved.
type Stats struct {
	Regions         int           `json:"regions"`
	LandBudget      int           `json:"land_budget"`
	LandCells       int           `json:"land_cells"`
	LandShortfall   int           `json:"land_shortfall"`
	InitialErodible int           `json:"initial_erodible"`
	FinalErodible   int           `json:"final_erodible"`
	RiverBudget     int           `json:"river_budget"`
	Rivers          int           `json:"rivers"`
	RiverShortfall  int           `json:"river_shortfall"`
	Lakes           int           `json:"lakes"`
	Elapsed         time.Duration `json:"elapsed"`
}

// Result is a generated map.
type Result struct {
	Grid   *world.Grid
	Seed   int64
	Config Config // with Seed resolved and UseFixedSeed set
	Stats  Stats
}

// Generator runs the pipeline. The zero value draws fresh seeds from
// crypto/rand.
type Generator struct {
	Seeds entropy.SeedSource
}

// Generate creates a new grid and fills it. It is shorthand for a zero
// Generator.
func Generate(cfg Config) (*Result, error) {
	return (&Generator{}).Generate(cfg)
}

// Generate creates a grid of the configured size and fills it.
func (g *Generator) Generate(cfg Config) (*Result, error) {
	grid, err := world.NewGrid(cfg.CellCountX, cfg.CellCountZ)
	if err != nil {
		return nil, fmt.Errorf("generate map: %w", err)
	}
	return g.GenerateOn(grid, cfg)
}

// GenerateOn resets grid and regenerates it from cfg. The grid's
// dimensions take precedence over cfg.CellCountX and cfg.CellCountZ.
func (g *Generator) GenerateOn(grid *world.Grid, cfg Config) (*Result, error) {
	start := time.Now()

	field, err := noise.New(cfg.NoiseKind, cfg.NoiseSeed)
	if err != nil {
		return nil, fmt.Errorf("generate map: %w", err)
	}

	cfg.CellCountX, cfg.CellCountZ = grid.CellCountX, grid.CellCountZ
	if !cfg.UseFixedSeed {
		cfg.Seed = entropy.FreshSeed(g.seedSource())
		cfg.UseFixedSeed = true
	}
	rng := entropy.NewStream(cfg.Seed)

	grid.Reset()
	for i := 0; i < grid.Len(); i++ {
		grid.SetWaterLevel(i, cfg.WaterLevel)
	}

	var stats Stats

	regions := partitionRegions(cfg, rng)
	stats.Regions = len(regions)

	land := newSculptor(grid, cfg, rng).createLand(regions)
	stats.LandBudget = land.budget
	stats.LandCells = land.cells
	stats.LandShortfall = land.shortfall

	stats.InitialErodible, stats.FinalErodible = erodeLand(grid, cfg, rng)

	climate := simulateClimate(grid, cfg)

	rivers := carveRivers(grid, cfg, climate, land.cells, rng)
	stats.RiverBudget = rivers.budget
	stats.Rivers = rivers.rivers
	stats.RiverShortfall = rivers.shortfall
	stats.Lakes = rivers.lakes

	classifyBiomes(grid, cfg, climate, field, rng)

	grid.ClearSearch()
	stats.Elapsed = time.Since(start)

	slog.Debug("map generated",
		"seed", cfg.Seed,
		"size", fmt.Sprintf("%dx%d", grid.CellCountX, grid.CellCountZ),
		"regions", stats.Regions,
		"land_cells", stats.LandCells,
		"rivers", stats.Rivers,
		"elapsed", stats.Elapsed,
	)

	return &Result{Grid: grid, Seed: cfg.Seed, Config: cfg, Stats: stats}, nil
}

func (g *Generator) seedSource() entropy.SeedSource {
	if g == nil {
		return nil
	}
	return g.Seeds
}
