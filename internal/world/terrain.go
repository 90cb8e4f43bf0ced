package world

// Terrain type indices stored in Cell.TerrainType.
const (
	TerrainSand  = iota // Deserts, beaches
	TerrainGrass        // Temperate land, flat shore water
	TerrainMud          // Wetlands, cold or shallow water
	TerrainStone        // Rock deserts, cliffs, trenches
	TerrainSnow         // Frozen land and peaks
)

// TerrainTypeCount is the number of terrain indices.
const TerrainTypeCount = 5

// TerrainName returns a human-readable name for a terrain index.
func TerrainName(t int) string {
	switch t {
	case TerrainSand:
		return "Sand"
	case TerrainGrass:
		return "Grass"
	case TerrainMud:
		return "Mud"
	case TerrainStone:
		return "Stone"
	case TerrainSnow:
		return "Snow"
	default:
		return "Unknown"
	}
}

// TerrainCounts returns a summary of terrain type distribution, split into
// land and underwater cells.
func TerrainCounts(g *Grid) (land, water map[int]int) {
	land = make(map[int]int)
	water = make(map[int]int)
	for i := range g.cells {
		c := &g.cells[i]
		if c.IsUnderwater() {
			water[c.TerrainType]++
		} else {
			land[c.TerrainType]++
		}
	}
	return land, water
}

// LandCount returns how many cells are not underwater.
func LandCount(g *Grid) int {
	n := 0
	for i := range g.cells {
		if !g.cells[i].IsUnderwater() {
			n++
		}
	}
	return n
}

// RiverCount returns the number of river sources: cells with an outgoing
// river but no incoming one.
func RiverCount(g *Grid) int {
	n := 0
	for i := range g.cells {
		c := &g.cells[i]
		if c.hasOutgoingRiver && !c.hasIncomingRiver {
			n++
		}
	}
	return n
}
