package mapgen

import (
	"log/slog"
	"math"

	"github.com/talgya/hexterrain/internal/entropy"
	"github.com/talgya/hexterrain/internal/world"
)

// riverResult summarizes the river phase.
type riverResult struct {
	budget    int
	rivers    int
	shortfall int
	lakes     int
}

// carver walks rivers downhill from weighted random origins.
type carver struct {
	grid  *world.Grid
	cfg   Config
	rng   *entropy.Stream
	flow  []world.Direction
	lakes int
}

// carveRivers spends a river budget proportional to the land area.
// Origins are drawn from a list in which wet, high cells appear up to
// four times.
func carveRivers(grid *world.Grid, cfg Config, climate []ClimateData, landCells int, rng *entropy.Stream) riverResult {
	c := &carver{grid: grid, cfg: cfg, rng: rng, flow: make([]world.Direction, 0, 3*world.DirectionCount)}

	origins := c.riverOrigins(climate)
	budget := int(math.Round(float64(landCells*cfg.RiverPercentage) / 100))
	res := riverResult{budget: budget}

	for budget > 0 && len(origins) > 0 {
		k := rng.Range(0, len(origins))
		origin := origins[k]
		last := len(origins) - 1
		origins[k] = origins[last]
		origins = origins[:last]

		if !c.cleanOrigin(origin) {
			continue
		}
		if length := c.createRiver(origin); length > 0 {
			budget -= length
			res.rivers++
		}
	}

	if budget > 0 {
		slog.Warn("river budget not used up", "remaining", budget)
		res.shortfall = budget
	}
	res.lakes = c.lakes
	return res
}

// riverOrigins builds the weighted candidate list from land cells.
func (c *carver) riverOrigins(climate []ClimateData) []int {
	var origins []int
	water := c.cfg.WaterLevel
	span := float64(c.cfg.ElevationMax - water)
	for i := 0; i < c.grid.Len(); i++ {
		cell := c.grid.Cell(i)
		if cell.IsUnderwater() {
			continue
		}
		weight := climate[i].Moisture * float64(cell.Elevation()-water) / span
		if weight > 0.75 {
			origins = append(origins, i, i)
		}
		if weight > 0.5 {
			origins = append(origins, i)
		}
		if weight > 0.25 {
			origins = append(origins, i)
		}
	}
	return origins
}

// cleanOrigin reports whether a river may start at cell i: neither it nor
// any neighbor has a river, and no neighbor is underwater.
func (c *carver) cleanOrigin(i int) bool {
	if c.grid.Cell(i).HasRiver() {
		return false
	}
	for d := world.NE; d <= world.NW; d++ {
		n := c.grid.Neighbor(i, d)
		if n != nil && (n.HasRiver() || n.IsUnderwater()) {
			return false
		}
	}
	return true
}

// createRiver carves one river from origin and returns its length in
// cells. A river that cannot leave its origin has length 0.
func (c *carver) createRiver(origin int) int {
	length := 1
	i := origin
	dir := world.NE

	for !c.grid.Cell(i).IsUnderwater() {
		cell := c.grid.Cell(i)
		minNeighbor := math.MaxInt
		c.flow = c.flow[:0]

		for d := world.NE; d <= world.NW; d++ {
			n := c.grid.Neighbor(i, d)
			if n == nil {
				continue
			}
			minNeighbor = min(minNeighbor, n.Elevation())

			if n.Index == origin || n.HasIncomingRiver() {
				continue
			}
			delta := n.Elevation() - cell.Elevation()
			if delta > 0 {
				continue
			}

			if n.HasOutgoingRiver() {
				c.grid.SetOutgoingRiver(i, d)
				return length
			}

			if delta < 0 {
				c.flow = append(c.flow, d, d, d)
			}
			if length == 1 || (d != dir.Next2() && d != dir.Previous2()) {
				c.flow = append(c.flow, d)
			}
			c.flow = append(c.flow, d)
		}

		if len(c.flow) == 0 {
			if length == 1 {
				return 0
			}
			if minNeighbor >= cell.Elevation() {
				c.grid.SetWaterLevel(i, minNeighbor)
				if minNeighbor == cell.Elevation() {
					c.grid.SetElevation(i, minNeighbor-1)
				}
				c.lakes++
			}
			break
		}

		dir = c.flow[c.rng.Range(0, len(c.flow))]
		c.grid.SetOutgoingRiver(i, dir)
		length++

		if minNeighbor >= cell.Elevation() && c.rng.Chance(c.cfg.ExtraLakeProbability) {
			c.grid.SetWaterLevel(i, cell.Elevation())
			c.grid.SetElevation(i, cell.Elevation()-1)
			c.lakes++
		}

		i = cell.NeighborIndex(dir)
	}
	return length
}
