package main

import (
	"io"
	"strings"

	"github.com/talgya/hexterrain/internal/world"
)

var landGlyphs = [world.TerrainTypeCount]byte{
	world.TerrainSand:  '.',
	world.TerrainGrass: '"',
	world.TerrainMud:   ',',
	world.TerrainStone: '^',
	world.TerrainSnow:  '*',
}

func glyph(c *world.Cell) byte {
	switch {
	case c.IsUnderwater():
		return '~'
	case c.HasRiverBeginOrEnd():
		return 'o'
	case c.HasRiver():
		return '='
	case c.TerrainType >= 0 && c.TerrainType < world.TerrainTypeCount:
		return landGlyphs[c.TerrainType]
	default:
		return '?'
	}
}

// writePreview draws one glyph per cell, north row first. River sources
// and mouths on land show as 'o'. Odd rows are
// shifted half a cell to match the offset layout.
func writePreview(w io.Writer, g *world.Grid) error {
	var sb strings.Builder
	for z := g.CellCountZ - 1; z >= 0; z-- {
		if z%2 == 1 {
			sb.WriteByte(' ')
		}
		for x := 0; x < g.CellCountX; x++ {
			if x > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteByte(glyph(g.CellAt(x, z)))
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
