package mapgen

import (
	"log/slog"
	"math"

	"github.com/talgya/hexterrain/internal/entropy"
	"github.com/talgya/hexterrain/internal/search"
	"github.com/talgya/hexterrain/internal/world"
)

// maxLandPasses bounds the sculpting loop when the budget cannot be met.
const maxLandPasses = 10000

// sculptor grows raised and sunken patches with a jittered flood fill.
// The frontier queue and search phase persist across patches; cells are
// stamped with the phase instead of being cleared between fills.
type sculptor struct {
	grid     *world.Grid
	cfg      Config
	rng      *entropy.Stream
	frontier *search.BucketQueue
	phase    int
}

func newSculptor(grid *world.Grid, cfg Config, rng *entropy.Stream) *sculptor {
	return &sculptor{
		grid: grid,
		cfg:  cfg,
		rng:  rng,
		frontier: search.NewBucketQueue(grid.Len(), func(i int) int {
			return grid.Cell(i).Priority()
		}),
	}
}

// landResult summarizes the sculpting phase.
type landResult struct {
	budget    int // target number of land cells
	cells     int // land cells actually produced, budget minus shortfall
	shortfall int
}

// createLand raises and sinks patches across regions until the land budget
// is spent or the pass limit is reached.
func (s *sculptor) createLand(regions []Region) landResult {
	budget := int(math.Round(float64(s.grid.Len()*s.cfg.LandPercentage) / 100))
	res := landResult{budget: budget, cells: budget}
	if len(regions) == 0 || budget <= 0 {
		if budget > 0 {
			slog.Warn("no regions to sculpt", "land_budget", budget)
			res.shortfall = budget
			res.cells = 0
		}
		return res
	}

	for pass := 0; pass < maxLandPasses; pass++ {
		for _, region := range regions {
			sink := s.rng.Chance(s.cfg.SinkProbability)
			size := s.rng.Range(s.cfg.ChunkSizeMin, s.cfg.ChunkSizeMax+1)
			if sink {
				budget = s.sinkTerrain(size, budget, region)
				continue
			}
			budget = s.raiseTerrain(size, budget, region)
			if budget == 0 {
				return res
			}
		}
	}

	if budget > 0 {
		slog.Warn("land budget not used up", "remaining", budget, "passes", maxLandPasses)
		res.shortfall = budget
		res.cells -= budget
	}
	return res
}

// raiseTerrain lifts up to size cells around a random origin in region and
// returns the remaining budget. Cells that would exceed the elevation
// maximum are left alone but still count toward the patch size.
func (s *sculptor) raiseTerrain(size, budget int, region Region) int {
	center := s.begin(region)
	rise := 1
	if s.rng.Chance(s.cfg.HighriseProbability) {
		rise = 2
	}

	water := s.cfg.WaterLevel
	for n := 0; n < size && s.frontier.Len() > 0; n++ {
		i := s.frontier.Dequeue()
		original := s.grid.Cell(i).Elevation()
		elevation := original + rise
		if elevation > s.cfg.ElevationMax {
			continue
		}
		s.grid.SetElevation(i, elevation)
		if original < water && elevation >= water {
			budget--
			if budget == 0 {
				break
			}
		}
		s.expand(i, center)
	}

	s.frontier.Clear()
	return budget
}

// sinkTerrain lowers up to size cells around a random origin in region.
// Land that drops below water returns its cell to the budget.
func (s *sculptor) sinkTerrain(size, budget int, region Region) int {
	center := s.begin(region)
	drop := 1
	if s.rng.Chance(s.cfg.HighriseProbability) {
		drop = 2
	}

	water := s.cfg.WaterLevel
	for n := 0; n < size && s.frontier.Len() > 0; n++ {
		i := s.frontier.Dequeue()
		original := s.grid.Cell(i).Elevation()
		elevation := original - drop
		if elevation < s.cfg.ElevationMin {
			continue
		}
		s.grid.SetElevation(i, elevation)
		if original >= water && elevation < water {
			budget++
		}
		s.expand(i, center)
	}

	s.frontier.Clear()
	return budget
}

// begin starts a new search phase at a random cell of region and returns
// the origin coordinate.
func (s *sculptor) begin(region Region) world.HexCoord {
	s.phase++
	first := region.RandomCell(s.grid, s.rng)
	first.SearchPhase = s.phase
	first.Distance = 0
	first.SearchHeuristic = 0
	s.frontier.Enqueue(first.Index)
	return first.Coord
}

// expand enqueues the unvisited neighbors of cell i, prioritized by
// distance from center plus random jitter.
func (s *sculptor) expand(i int, center world.HexCoord) {
	for d := world.NE; d <= world.NW; d++ {
		n := s.grid.Neighbor(i, d)
		if n == nil || n.SearchPhase >= s.phase {
			continue
		}
		n.SearchPhase = s.phase
		n.Distance = n.Coord.DistanceTo(center)
		n.SearchHeuristic = 0
		if s.rng.Chance(s.cfg.JitterProbability) {
			n.SearchHeuristic = 1
		}
		s.frontier.Enqueue(n.Index)
	}
}
