package mapgen

import (
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/hexterrain/internal/entropy"
	"github.com/talgya/hexterrain/internal/world"
)

// erodibleSet is the working list of erodible cells. The slice gives
// uniform random picks; the set answers membership.
type erodibleSet struct {
	cells  []int
	member mapset.Set[int]
}

func (s *erodibleSet) add(i int) {
	if s.member.Has(i) {
		return
	}
	s.member.Put(i)
	s.cells = append(s.cells, i)
}

// removeAt swaps the last entry into position k.
func (s *erodibleSet) removeAt(k int) {
	s.member.Remove(s.cells[k])
	last := len(s.cells) - 1
	s.cells[k] = s.cells[last]
	s.cells = s.cells[:last]
}

// remove deletes i keeping the order of the remaining entries.
func (s *erodibleSet) remove(i int) {
	if !s.member.Has(i) {
		return
	}
	s.member.Remove(i)
	if k := slices.Index(s.cells, i); k >= 0 {
		s.cells = slices.Delete(s.cells, k, k+1)
	}
}

// erodeLand moves elevation from steep cells to their low neighbors until
// the erodible count falls to (100-ErosionPercentage)% of its starting
// value. It returns the starting and final erodible counts.
func erodeLand(grid *world.Grid, cfg Config, rng *entropy.Stream) (initial, final int) {
	set := &erodibleSet{member: mapset.New[int]()}
	for i := 0; i < grid.Len(); i++ {
		if isErodible(grid, i) {
			set.add(i)
		}
	}
	initial = len(set.cells)
	target := initial * (100 - cfg.ErosionPercentage) / 100

	for len(set.cells) > target {
		k := rng.Range(0, len(set.cells))
		i := set.cells[k]
		t, ok := erosionTarget(grid, i, rng)
		if !ok {
			set.removeAt(k)
			continue
		}

		grid.SetElevation(i, grid.Cell(i).Elevation()-1)
		grid.SetElevation(t, grid.Cell(t).Elevation()+1)

		if !isErodible(grid, i) {
			set.removeAt(k)
		}

		elevation := grid.Cell(i).Elevation()
		for d := world.NE; d <= world.NW; d++ {
			if n := grid.Neighbor(i, d); n != nil && n.Elevation() == elevation+2 {
				set.add(n.Index)
			}
		}

		if isErodible(grid, t) {
			set.add(t)
		}

		targetElevation := grid.Cell(t).Elevation()
		for d := world.NE; d <= world.NW; d++ {
			n := grid.Neighbor(t, d)
			if n == nil || n.Index == i || n.Elevation() != targetElevation+1 {
				continue
			}
			if !isErodible(grid, n.Index) {
				set.remove(n.Index)
			}
		}
	}
	return initial, len(set.cells)
}

// isErodible reports whether some neighbor of cell i is at least two
// levels lower.
func isErodible(grid *world.Grid, i int) bool {
	limit := grid.Cell(i).Elevation() - 2
	for d := world.NE; d <= world.NW; d++ {
		if n := grid.Neighbor(i, d); n != nil && n.Elevation() <= limit {
			return true
		}
	}
	return false
}

// erosionTarget picks a random neighbor at least two levels below cell i.
func erosionTarget(grid *world.Grid, i int, rng *entropy.Stream) (int, bool) {
	var candidates [world.DirectionCount]int
	count := 0
	limit := grid.Cell(i).Elevation() - 2
	for d := world.NE; d <= world.NW; d++ {
		if n := grid.Neighbor(i, d); n != nil && n.Elevation() <= limit {
			candidates[count] = n.Index
			count++
		}
	}
	if count == 0 {
		return -1, false
	}
	return candidates[rng.Range(0, count)], true
}
