package mapgen

import (
	"github.com/talgya/hexterrain/internal/entropy"
	"github.com/talgya/hexterrain/internal/noise"
	"github.com/talgya/hexterrain/internal/world"
)

// Biome is a terrain type and plant density pair.
type Biome struct {
	Terrain int
	Plant   int
}

var (
	temperatureBands = [3]float64{0.1, 0.3, 0.6}
	moistureBands    = [3]float64{0.12, 0.28, 0.85}
)

// biomes is indexed by temperature band * 4 + moisture band.
var biomes = [16]Biome{
	{world.TerrainSand, 0}, {world.TerrainSnow, 0}, {world.TerrainSnow, 0}, {world.TerrainSnow, 0},
	{world.TerrainSand, 0}, {world.TerrainMud, 0}, {world.TerrainMud, 1}, {world.TerrainMud, 2},
	{world.TerrainSand, 0}, {world.TerrainGrass, 0}, {world.TerrainGrass, 1}, {world.TerrainGrass, 2},
	{world.TerrainSand, 0}, {world.TerrainGrass, 1}, {world.TerrainGrass, 2}, {world.TerrainGrass, 3},
}

func band(v float64, bands [3]float64) int {
	b := 0
	for ; b < len(bands); b++ {
		if v < bands[b] {
			break
		}
	}
	return b
}

// classifier assigns terrain, plant level and map data from climate and
// the final heights.
type classifier struct {
	grid    *world.Grid
	cfg     Config
	field   noise.Field
	channel int
}

// classifyBiomes sets terrain, plant level and map data on every cell.
func classifyBiomes(grid *world.Grid, cfg Config, climate []ClimateData, field noise.Field, rng *entropy.Stream) {
	c := &classifier{grid: grid, cfg: cfg, field: field, channel: rng.Range(0, noise.Channels)}
	rockDesert := cfg.ElevationMax - (cfg.ElevationMax-cfg.WaterLevel)/2

	for i := 0; i < grid.Len(); i++ {
		cell := grid.Cell(i)
		moisture := climate[i].Moisture
		temperature := c.temperature(cell)

		if cell.IsUnderwater() {
			cell.TerrainType = c.waterTerrain(i, temperature)
		} else {
			b := biomes[band(temperature, temperatureBands)*4+band(moisture, moistureBands)]
			if b.Terrain == world.TerrainSand {
				if cell.Elevation() >= rockDesert {
					b.Terrain = world.TerrainStone
				}
			} else if cell.Elevation() == cfg.ElevationMax {
				b.Terrain = world.TerrainSnow
			}

			if b.Terrain == world.TerrainSnow {
				b.Plant = 0
			} else if b.Plant < 3 && cell.HasRiver() {
				b.Plant++
			}
			cell.TerrainType = b.Terrain
			cell.PlantLevel = b.Plant
		}

		data := temperature
		if cfg.MapData == MapDataMoisture {
			data = moisture
		}
		cell.MapData = clamp01(data)
	}
}

// temperature derives a cell's temperature from latitude, height above
// water and positional noise jitter.
func (c *classifier) temperature(cell *world.Cell) float64 {
	latitude := float64(cell.Coord.Z) / float64(c.grid.CellCountZ)
	switch c.cfg.Hemisphere {
	case HemisphereBoth:
		latitude *= 2
		if latitude > 1 {
			latitude = 2 - latitude
		}
	case HemisphereNorth:
		latitude = 1 - latitude
	}

	temp := c.cfg.LowTemperature + (c.cfg.HighTemperature-c.cfg.LowTemperature)*latitude
	water := c.cfg.WaterLevel
	temp *= 1 - float64(cell.ViewElevation()-water)/float64(c.cfg.ElevationMax-water+1)

	px, pz := world.Position(cell.OffsetX, cell.OffsetZ)
	jitter := c.field.Sample(px*0.1, pz*0.1)[c.channel]
	return temp + (jitter*2-1)*c.cfg.TemperatureJitter
}

// waterTerrain picks the terrain of an underwater cell. Shore cells just
// below the waterline look at how their neighbors meet the water.
func (c *classifier) waterTerrain(i int, temperature float64) int {
	cell := c.grid.Cell(i)
	water := c.cfg.WaterLevel

	var terrain int
	switch {
	case cell.Elevation() == water-1:
		cliffs, slopes := 0, 0
		for d := world.NE; d <= world.NW; d++ {
			n := c.grid.Neighbor(i, d)
			if n == nil {
				continue
			}
			delta := n.Elevation() - cell.WaterLevel()
			if delta == 0 {
				slopes++
			} else if delta > 0 {
				cliffs++
			}
		}
		switch {
		case cliffs+slopes > 3:
			terrain = world.TerrainGrass
		case cliffs > 0:
			terrain = world.TerrainStone
		case slopes > 0:
			terrain = world.TerrainSand
		default:
			terrain = world.TerrainGrass
		}
	case cell.Elevation() >= water:
		terrain = world.TerrainGrass
	case cell.Elevation() < 0:
		terrain = world.TerrainStone
	default:
		terrain = world.TerrainMud
	}

	if terrain == world.TerrainGrass && temperature < temperatureBands[0] {
		terrain = world.TerrainMud
	}
	return terrain
}
