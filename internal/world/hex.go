// Package world provides the hex grid, cell arena, and spatial primitives
// consumed by the terrain generator.
// Offset coordinates (x, z) address the rectangular cell array; axial
// coordinates (X, Z) are used for distance math.
package world

import (
	"fmt"
	"strings"
)

// Direction is one of the six hex edge directions, clockwise from north-east.
type Direction uint8

const (
	NE Direction = iota
	E
	SE
	SW
	W
	NW
)

// DirectionCount is the number of neighbors a hex cell can have.
const DirectionCount = 6

var directionNames = [DirectionCount]string{"NE", "E", "SE", "SW", "W", "NW"}

// Opposite returns the direction pointing back across the same edge.
func (d Direction) Opposite() Direction {
	if d < 3 {
		return d + 3
	}
	return d - 3
}

// Previous returns the counter-clockwise neighbor direction.
func (d Direction) Previous() Direction {
	if d == NE {
		return NW
	}
	return d - 1
}

// Next returns the clockwise neighbor direction.
func (d Direction) Next() Direction {
	if d == NW {
		return NE
	}
	return d + 1
}

// Previous2 returns the direction two steps counter-clockwise.
func (d Direction) Previous2() Direction {
	if d < 2 {
		return d + 4
	}
	return d - 2
}

// Next2 returns the direction two steps clockwise.
func (d Direction) Next2() Direction {
	if d > 3 {
		return d - 4
	}
	return d + 2
}

func (d Direction) String() string {
	if d < DirectionCount {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// ParseDirection converts a compass name such as "nw" to a Direction.
func ParseDirection(s string) (Direction, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range directionNames {
		if name == upper {
			return Direction(i), nil
		}
	}
	return NE, fmt.Errorf("unknown direction %q", s)
}

// DirectionNames lists the compass names in direction order.
func DirectionNames() []string {
	return directionNames[:]
}

// HexCoord is an axial hex coordinate. The third cube coordinate is
// derived: Y = -X - Z.
type HexCoord struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// FromOffset converts offset (column, row) coordinates to axial.
func FromOffset(x, z int) HexCoord {
	return HexCoord{X: x - z/2, Z: z}
}

// Y returns the implicit third cube coordinate.
func (h HexCoord) Y() int {
	return -h.X - h.Z
}

// Offset converts back to (column, row) offset coordinates.
func (h HexCoord) Offset() (int, int) {
	return h.X + h.Z/2, h.Z
}

// DistanceTo returns the hex distance between two coordinates.
func (h HexCoord) DistanceTo(o HexCoord) int {
	return (abs(h.X-o.X) + abs(h.Y()-o.Y()) + abs(h.Z-o.Z)) / 2
}

func (h HexCoord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", h.X, h.Y(), h.Z)
}

// EdgeType classifies the connection between two cells by elevation.
type EdgeType uint8

const (
	EdgeFlat EdgeType = iota
	EdgeSlope
	EdgeCliff
)

// GetEdgeType returns the edge type between two elevations.
func GetEdgeType(elevation1, elevation2 int) EdgeType {
	if elevation1 == elevation2 {
		return EdgeFlat
	}
	delta := elevation2 - elevation1
	if delta == 1 || delta == -1 {
		return EdgeSlope
	}
	return EdgeCliff
}

// Hex metrics used to place cells in world space.
const (
	OuterToInner = 0.866025404
	OuterRadius  = 10.0
	InnerRadius  = OuterRadius * OuterToInner
)

// Position returns the world-space center of the cell at offset (x, z)
// on the horizontal plane.
func Position(x, z int) (float64, float64) {
	px := (float64(x) + float64(z)*0.5 - float64(z/2)) * (InnerRadius * 2)
	pz := float64(z) * (OuterRadius * 1.5)
	return px, pz
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// MarshalText encodes the direction by compass name.
func (d Direction) MarshalText() ([]byte, error) {
	if d >= DirectionCount {
		return nil, fmt.Errorf("invalid direction %d", uint8(d))
	}
	return []byte(directionNames[d]), nil
}

// UnmarshalText decodes a compass name.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
