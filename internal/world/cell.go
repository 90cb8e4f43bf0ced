package world

// Cell is one position of the hex grid. Cells live in the Grid's arena and
// refer to their neighbors by arena index; -1 marks a missing neighbor.
//
// Elevation, water level, rivers, roads and the special index are only
// mutated through Grid methods so the river and road rules stay consistent.
type Cell struct {
	Index   int      `json:"index"`
	OffsetX int      `json:"x"`
	OffsetZ int      `json:"z"`
	Coord   HexCoord `json:"coord"`

	// Border cells are not explorable.
	Explorable bool `json:"explorable"`

	elevation  int
	waterLevel int

	TerrainType int  `json:"terrain"`
	UrbanLevel  int  `json:"urban"`
	FarmLevel   int  `json:"farm"`
	PlantLevel  int  `json:"plant"`
	Walled      bool `json:"walled"`

	specialIndex int

	hasIncomingRiver bool
	hasOutgoingRiver bool
	incomingRiver    Direction
	outgoingRiver    Direction

	roads     [DirectionCount]bool
	neighbors [DirectionCount]int

	// MapData is an auxiliary [0,1] scalar for shading (temperature or moisture).
	MapData float64 `json:"map_data"`

	// Scratch state for flood fills. SearchPhase is compared against a
	// monotonically increasing counter instead of being cleared per search.
	SearchPhase     int `json:"-"`
	Distance        int `json:"-"`
	SearchHeuristic int `json:"-"`
}

// Elevation returns the cell's terrain height.
func (c *Cell) Elevation() int { return c.elevation }

// WaterLevel returns the cell's water surface height.
func (c *Cell) WaterLevel() int { return c.waterLevel }

// IsUnderwater reports whether the water surface is above the terrain.
func (c *Cell) IsUnderwater() bool { return c.waterLevel > c.elevation }

// ViewElevation is the visible surface height: terrain or water, whichever is higher.
func (c *Cell) ViewElevation() int {
	if c.elevation >= c.waterLevel {
		return c.elevation
	}
	return c.waterLevel
}

// Priority is the flood-fill key: distance plus heuristic.
func (c *Cell) Priority() int { return c.Distance + c.SearchHeuristic }

// NeighborIndex returns the arena index of the neighbor in direction d, or -1.
func (c *Cell) NeighborIndex(d Direction) int { return c.neighbors[d] }

func (c *Cell) HasIncomingRiver() bool { return c.hasIncomingRiver }
func (c *Cell) HasOutgoingRiver() bool { return c.hasOutgoingRiver }

// IncomingRiver is only meaningful when HasIncomingRiver is true.
func (c *Cell) IncomingRiver() Direction { return c.incomingRiver }

// OutgoingRiver is only meaningful when HasOutgoingRiver is true.
func (c *Cell) OutgoingRiver() Direction { return c.outgoingRiver }

// HasRiver reports whether any river touches the cell.
func (c *Cell) HasRiver() bool { return c.hasIncomingRiver || c.hasOutgoingRiver }

// HasRiverBeginOrEnd reports whether a river starts or ends here.
func (c *Cell) HasRiverBeginOrEnd() bool { return c.hasIncomingRiver != c.hasOutgoingRiver }

// HasRiverThroughEdge reports whether a river crosses the edge in direction d.
func (c *Cell) HasRiverThroughEdge(d Direction) bool {
	return c.hasIncomingRiver && c.incomingRiver == d ||
		c.hasOutgoingRiver && c.outgoingRiver == d
}

// HasRoadThroughEdge reports whether a road crosses the edge in direction d.
func (c *Cell) HasRoadThroughEdge(d Direction) bool { return c.roads[d] }

// SpecialIndex identifies a special feature placed on the cell; 0 is none.
func (c *Cell) SpecialIndex() int { return c.specialIndex }

// IsSpecial reports whether a special feature occupies the cell.
func (c *Cell) IsSpecial() bool { return c.specialIndex > 0 }
