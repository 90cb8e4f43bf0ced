package mapgen

import (
	"log/slog"

	"github.com/talgya/hexterrain/internal/entropy"
	"github.com/talgya/hexterrain/internal/world"
)

// Region is a half-open rectangle [XMin,XMax) x [ZMin,ZMax) of offset
// coordinates used to seed growth patches.
type Region struct {
	XMin int `json:"x_min"`
	XMax int `json:"x_max"`
	ZMin int `json:"z_min"`
	ZMax int `json:"z_max"`
}

// Empty reports whether the region contains no cells.
func (r Region) Empty() bool {
	return r.XMin >= r.XMax || r.ZMin >= r.ZMax
}

// RandomCell picks a uniformly random cell inside the region. The region
// must not be empty.
func (r Region) RandomCell(grid *world.Grid, rng *entropy.Stream) *world.Cell {
	x := rng.Range(r.XMin, r.XMax)
	z := rng.Range(r.ZMin, r.ZMax)
	return grid.CellAt(x, z)
}

// partitionRegions splits the playable interior into cfg.RegionCount
// rectangles. Counts outside 2..4 produce a single region. Rectangles that
// end up empty after applying borders are dropped.
func partitionRegions(cfg Config, rng *entropy.Stream) []Region {
	w, h := cfg.CellCountX, cfg.CellCountZ
	bx, bz, rb := cfg.MapBorderX, cfg.MapBorderZ, cfg.RegionBorder

	var regions []Region
	switch cfg.RegionCount {
	case 2:
		if rng.Value() < 0.5 {
			regions = []Region{
				{XMin: bx, XMax: w/2 - rb, ZMin: bz, ZMax: h - bz},
				{XMin: w/2 + rb, XMax: w - bx, ZMin: bz, ZMax: h - bz},
			}
		} else {
			regions = []Region{
				{XMin: bx, XMax: w - bx, ZMin: bz, ZMax: h/2 - rb},
				{XMin: bx, XMax: w - bx, ZMin: h/2 + rb, ZMax: h - bz},
			}
		}
	case 3:
		regions = []Region{
			{XMin: bx, XMax: w/3 - rb, ZMin: bz, ZMax: h - bz},
			{XMin: w/3 + rb, XMax: w*2/3 - rb, ZMin: bz, ZMax: h - bz},
			{XMin: w*2/3 + rb, XMax: w - bx, ZMin: bz, ZMax: h - bz},
		}
	case 4:
		regions = []Region{
			{XMin: bx, XMax: w/2 - rb, ZMin: bz, ZMax: h/2 - rb},
			{XMin: w/2 + rb, XMax: w - bx, ZMin: bz, ZMax: h/2 - rb},
			{XMin: w/2 + rb, XMax: w - bx, ZMin: h/2 + rb, ZMax: h - bz},
			{XMin: bx, XMax: w/2 - rb, ZMin: h/2 + rb, ZMax: h - bz},
		}
	default:
		regions = []Region{{XMin: bx, XMax: w - bx, ZMin: bz, ZMax: h - bz}}
	}

	kept := regions[:0]
	for _, r := range regions {
		r.XMin, r.XMax = max(r.XMin, 0), min(r.XMax, w)
		r.ZMin, r.ZMax = max(r.ZMin, 0), min(r.ZMax, h)
		if r.Empty() {
			slog.Debug("dropping empty region", "region", r)
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
