package mapgen

import "github.com/talgya/hexterrain/internal/world"

// climateCycles is the number of diffusion passes over the grid.
const climateCycles = 40

// ClimateData is the per-cell cloud and moisture state.
type ClimateData struct {
	Clouds   float64 `json:"clouds"`
	Moisture float64 `json:"moisture"`
}

// simulateClimate runs the double-buffered moisture automaton and returns
// the final per-cell climate. Every cell reads the current buffer and
// writes only into next, so the visiting order within a cycle does not
// matter.
func simulateClimate(grid *world.Grid, cfg Config) []ClimateData {
	current := make([]ClimateData, grid.Len())
	next := make([]ClimateData, grid.Len())
	for i := range current {
		current[i].Moisture = cfg.StartingMoisture
	}

	for cycle := 0; cycle < climateCycles; cycle++ {
		for i := range current {
			evolveClimate(grid, cfg, i, current, next)
		}
		for i := range next {
			next[i].Moisture = clamp01(next[i].Moisture)
		}
		current, next = next, current
	}
	return current
}

func evolveClimate(grid *world.Grid, cfg Config, i int, current, next []ClimateData) {
	cell := grid.Cell(i)
	c := current[i]

	if cell.IsUnderwater() {
		c.Moisture = 1
		c.Clouds += cfg.EvaporationFactor
	} else {
		evaporation := c.Moisture * cfg.EvaporationFactor
		c.Moisture = evaporation
		c.Clouds += evaporation
	}

	precipitation := c.Clouds * cfg.PrecipitationFactor
	c.Clouds -= precipitation
	c.Moisture += precipitation

	cloudMaximum := 1 - float64(cell.ViewElevation())/float64(cfg.ElevationMax+1)
	if c.Clouds > cloudMaximum {
		c.Moisture += c.Clouds - cloudMaximum
		c.Clouds = cloudMaximum
	}

	downwind := cfg.WindDirection.Opposite()
	cloudDispersal := c.Clouds / (5 + cfg.WindStrength)
	runoff := c.Moisture * cfg.RunoffFactor / 6
	seepage := c.Moisture * cfg.SeepageFactor / 6
	view := cell.ViewElevation()

	for d := world.NE; d <= world.NW; d++ {
		n := grid.Neighbor(i, d)
		if n == nil {
			continue
		}
		nc := &next[n.Index]
		if d == downwind {
			nc.Clouds += cloudDispersal * cfg.WindStrength
		} else {
			nc.Clouds += cloudDispersal
		}

		switch delta := n.ViewElevation() - view; {
		case delta < 0:
			c.Moisture -= runoff
			nc.Moisture += runoff
		case delta == 0:
			c.Moisture -= seepage
			nc.Moisture += seepage
		}
	}

	next[i].Moisture += c.Moisture
	current[i] = ClimateData{}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
