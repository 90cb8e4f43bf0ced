package world

// A river may flow from a cell into a neighbor that is not higher, or into
// a neighbor whose elevation equals the source's water level (lake outflow).
func (g *Grid) isValidRiverDestination(from *Cell, to *Cell) bool {
	return to != nil && (from.elevation >= to.elevation || from.waterLevel == to.elevation)
}

// SetOutgoingRiver routes a river out of cell i in direction d and into the
// neighbor. It reports false when the neighbor is not a valid destination.
// Conflicting river ends on both cells are removed, and the road across the
// edge is cleared.
func (g *Grid) SetOutgoingRiver(i int, d Direction) bool {
	c := &g.cells[i]
	if c.hasOutgoingRiver && c.outgoingRiver == d {
		return true
	}
	n := g.Neighbor(i, d)
	if !g.isValidRiverDestination(c, n) {
		return false
	}

	g.RemoveOutgoingRiver(i)
	if c.hasIncomingRiver && c.incomingRiver == d {
		g.RemoveIncomingRiver(i)
	}
	c.hasOutgoingRiver = true
	c.outgoingRiver = d
	c.specialIndex = 0

	g.RemoveIncomingRiver(n.Index)
	n.hasIncomingRiver = true
	n.incomingRiver = d.Opposite()
	n.specialIndex = 0

	g.setRoad(i, d, false)
	return true
}

// RemoveOutgoingRiver removes the river leaving cell i and its matching end.
func (g *Grid) RemoveOutgoingRiver(i int) {
	c := &g.cells[i]
	if !c.hasOutgoingRiver {
		return
	}
	c.hasOutgoingRiver = false
	g.Neighbor(i, c.outgoingRiver).hasIncomingRiver = false
}

// RemoveIncomingRiver removes the river entering cell i and its matching end.
func (g *Grid) RemoveIncomingRiver(i int) {
	c := &g.cells[i]
	if !c.hasIncomingRiver {
		return
	}
	c.hasIncomingRiver = false
	g.Neighbor(i, c.incomingRiver).hasOutgoingRiver = false
}

func (g *Grid) validateRivers(i int) {
	c := &g.cells[i]
	if c.hasOutgoingRiver && !g.isValidRiverDestination(c, g.Neighbor(i, c.outgoingRiver)) {
		g.RemoveOutgoingRiver(i)
	}
	if c.hasIncomingRiver && !g.isValidRiverDestination(g.Neighbor(i, c.incomingRiver), c) {
		g.RemoveIncomingRiver(i)
	}
}

// AddRoad adds a road across the edge in direction d when the edge carries
// no river, neither side is special, and the climb is at most one level.
func (g *Grid) AddRoad(i int, d Direction) bool {
	c := &g.cells[i]
	n := g.Neighbor(i, d)
	if n == nil || c.roads[d] || c.HasRiverThroughEdge(d) || c.IsSpecial() || n.IsSpecial() ||
		g.elevationDifference(i, d) > 1 {
		return false
	}
	g.setRoad(i, d, true)
	return true
}

// RemoveRoads clears every road touching cell i.
func (g *Grid) RemoveRoads(i int) {
	for d := NE; d <= NW; d++ {
		if g.cells[i].roads[d] {
			g.setRoad(i, d, false)
		}
	}
}

func (g *Grid) setRoad(i int, d Direction, state bool) {
	n := g.Neighbor(i, d)
	if n == nil {
		return
	}
	g.cells[i].roads[d] = state
	n.roads[d.Opposite()] = state
}

// EncodeRiver packs a river end into one byte: 0 for none, 128+direction otherwise.
func EncodeRiver(has bool, d Direction) uint8 {
	if !has {
		return 0
	}
	return 128 + uint8(d)
}

// DecodeRiver is the inverse of EncodeRiver.
func DecodeRiver(b uint8) (bool, Direction) {
	if b >= 128 {
		return true, Direction(b - 128)
	}
	return false, NE
}

// RestoreRiver re-links an outgoing river without validating elevations.
// It is used when loading stored cells, where elevation and water were
// already consistent when the river was carved.
func (g *Grid) RestoreRiver(i int, d Direction) {
	n := g.Neighbor(i, d)
	if n == nil {
		return
	}
	c := &g.cells[i]
	c.hasOutgoingRiver = true
	c.outgoingRiver = d
	n.hasIncomingRiver = true
	n.incomingRiver = d.Opposite()
}

// Restore sets raw elevation and water level without river validation.
func (g *Grid) Restore(i, elevation, waterLevel int) {
	g.cells[i].elevation = elevation
	g.cells[i].waterLevel = waterLevel
}

// RestoreRoads sets road flags from a bitmask, one bit per direction.
func (g *Grid) RestoreRoads(i int, mask uint8) {
	for d := NE; d <= NW; d++ {
		g.cells[i].roads[d] = mask&(1<<d) != 0
	}
}

// RoadMask packs road flags into one bit per direction.
func (c *Cell) RoadMask() uint8 {
	var mask uint8
	for d := NE; d <= NW; d++ {
		if c.roads[d] {
			mask |= 1 << d
		}
	}
	return mask
}
