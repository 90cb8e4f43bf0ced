package world

import (
	"errors"
	"fmt"
)

// Grids are built from chunks of this many cells along each axis.
const (
	ChunkSizeX = 5
	ChunkSizeZ = 5
)

// ErrUnsupportedSize is returned when grid dimensions are not positive
// multiples of the chunk size.
var ErrUnsupportedSize = errors.New("unsupported map size")

// Grid holds the fixed-size cell arena in offset coordinates, row-major.
type Grid struct {
	CellCountX int `json:"cell_count_x"`
	CellCountZ int `json:"cell_count_z"`

	cells []Cell
}

// NewGrid allocates a grid of cellCountX by cellCountZ cells with
// symmetric neighbor links.
func NewGrid(cellCountX, cellCountZ int) (*Grid, error) {
	if cellCountX <= 0 || cellCountX%ChunkSizeX != 0 || cellCountZ <= 0 || cellCountZ%ChunkSizeZ != 0 {
		return nil, fmt.Errorf("%w: %dx%d (want positive multiples of %dx%d)",
			ErrUnsupportedSize, cellCountX, cellCountZ, ChunkSizeX, ChunkSizeZ)
	}
	g := &Grid{
		CellCountX: cellCountX,
		CellCountZ: cellCountZ,
		cells:      make([]Cell, cellCountX*cellCountZ),
	}
	g.Reset()
	return g, nil
}

// Reset rebuilds every cell to its freshly created state.
func (g *Grid) Reset() {
	for z, i := 0, 0; z < g.CellCountZ; z++ {
		for x := 0; x < g.CellCountX; x++ {
			g.createCell(x, z, i)
			i++
		}
	}
}

func (g *Grid) createCell(x, z, i int) {
	g.cells[i] = Cell{
		Index:      i,
		OffsetX:    x,
		OffsetZ:    z,
		Coord:      FromOffset(x, z),
		Explorable: x > 0 && z > 0 && x < g.CellCountX-1 && z < g.CellCountZ-1,
		neighbors:  [DirectionCount]int{-1, -1, -1, -1, -1, -1},
	}

	if x > 0 {
		g.link(i, W, i-1)
	}
	if z > 0 {
		if z&1 == 0 {
			g.link(i, SE, i-g.CellCountX)
			if x > 0 {
				g.link(i, SW, i-g.CellCountX-1)
			}
		} else {
			g.link(i, SW, i-g.CellCountX)
			if x < g.CellCountX-1 {
				g.link(i, SE, i-g.CellCountX+1)
			}
		}
	}
}

// link connects cell i to cell j in direction d and j back to i.
func (g *Grid) link(i int, d Direction, j int) {
	g.cells[i].neighbors[d] = j
	g.cells[j].neighbors[d.Opposite()] = i
}

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// Cell returns the cell at arena index i.
func (g *Grid) Cell(i int) *Cell { return &g.cells[i] }

// CellAt returns the cell at offset coordinates (x, z).
func (g *Grid) CellAt(x, z int) *Cell {
	return &g.cells[x+z*g.CellCountX]
}

// CellByCoord returns the cell at the axial coordinate, or nil if out of bounds.
func (g *Grid) CellByCoord(h HexCoord) *Cell {
	x, z := h.Offset()
	if !g.InBounds(x, z) {
		return nil
	}
	return &g.cells[x+z*g.CellCountX]
}

// Neighbor returns the neighbor of cell i in direction d, or nil.
func (g *Grid) Neighbor(i int, d Direction) *Cell {
	j := g.cells[i].neighbors[d]
	if j < 0 {
		return nil
	}
	return &g.cells[j]
}

// InBounds reports whether offset (x, z) lies inside the grid.
func (g *Grid) InBounds(x, z int) bool {
	return x >= 0 && z >= 0 && x < g.CellCountX && z < g.CellCountZ
}

// SetElevation changes a cell's elevation, dropping rivers and roads that
// the new height makes invalid.
func (g *Grid) SetElevation(i, elevation int) {
	c := &g.cells[i]
	if c.elevation == elevation {
		return
	}
	c.elevation = elevation
	g.validateRivers(i)
	for d := NE; d <= NW; d++ {
		if c.roads[d] && g.elevationDifference(i, d) > 1 {
			g.setRoad(i, d, false)
		}
	}
}

// SetWaterLevel changes a cell's water level, dropping rivers it invalidates.
func (g *Grid) SetWaterLevel(i, level int) {
	c := &g.cells[i]
	if c.waterLevel == level {
		return
	}
	c.waterLevel = level
	g.validateRivers(i)
}

// SetSpecialIndex places a special feature. Cells with rivers refuse it,
// and placing one removes all roads.
func (g *Grid) SetSpecialIndex(i, index int) {
	c := &g.cells[i]
	if c.specialIndex == index || c.HasRiver() {
		return
	}
	c.specialIndex = index
	g.RemoveRoads(i)
}

func (g *Grid) elevationDifference(i int, d Direction) int {
	n := g.Neighbor(i, d)
	return abs(g.cells[i].elevation - n.elevation)
}

// ClearSearch resets every cell's search phase.
func (g *Grid) ClearSearch() {
	for i := range g.cells {
		g.cells[i].SearchPhase = 0
	}
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, cells=%d)", g.CellCountX, g.CellCountZ, g.Len())
}
