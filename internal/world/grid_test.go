package world

import (
	"errors"
	"testing"
)

func TestNewGridRejectsUnsupportedSizes(t *testing.T) {
	cases := []struct {
		x, z int
	}{
		{0, 15},
		{20, 0},
		{-5, 10},
		{21, 15},
		{20, 14},
	}
	for _, tc := range cases {
		if _, err := NewGrid(tc.x, tc.z); !errors.Is(err, ErrUnsupportedSize) {
			t.Errorf("NewGrid(%d, %d) err = %v, want ErrUnsupportedSize", tc.x, tc.z, err)
		}
	}
}

func TestNeighborsAreSymmetric(t *testing.T) {
	g, err := NewGrid(20, 15)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	for i := 0; i < g.Len(); i++ {
		for d := NE; d <= NW; d++ {
			n := g.Neighbor(i, d)
			if n == nil {
				continue
			}
			back := g.Neighbor(n.Index, d.Opposite())
			if back == nil || back.Index != i {
				t.Fatalf("cell %d -> %s -> %d does not link back", i, d, n.Index)
			}
		}
	}
}

func TestInteriorCellsHaveSixNeighbors(t *testing.T) {
	g, _ := NewGrid(10, 10)
	for i := 0; i < g.Len(); i++ {
		c := g.Cell(i)
		count := 0
		for d := NE; d <= NW; d++ {
			if g.Neighbor(i, d) != nil {
				count++
			}
		}
		if c.Explorable && count != 6 {
			t.Fatalf("interior cell (%d,%d) has %d neighbors", c.OffsetX, c.OffsetZ, count)
		}
	}
}

func TestNeighborsAreAdjacentInHexSpace(t *testing.T) {
	g, _ := NewGrid(10, 10)
	for i := 0; i < g.Len(); i++ {
		c := g.Cell(i)
		for d := NE; d <= NW; d++ {
			n := g.Neighbor(i, d)
			if n == nil {
				continue
			}
			if dist := c.Coord.DistanceTo(n.Coord); dist != 1 {
				t.Fatalf("neighbor %s of %v is %v at distance %d", d, c.Coord, n.Coord, dist)
			}
		}
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	g, _ := NewGrid(10, 10)
	for z := 0; z < 10; z++ {
		for x := 0; x < 10; x++ {
			h := FromOffset(x, z)
			ox, oz := h.Offset()
			if ox != x || oz != z {
				t.Fatalf("offset (%d,%d) round-trips to (%d,%d)", x, z, ox, oz)
			}
			if c := g.CellByCoord(h); c == nil || c.Index != x+z*10 {
				t.Fatalf("CellByCoord(%v) = %v", h, c)
			}
		}
	}
	for _, h := range []HexCoord{{X: -20, Z: 3}, {X: 0, Z: -1}, {X: 0, Z: 10}, {X: 10, Z: 0}, {X: -1, Z: 1}} {
		if c := g.CellByCoord(h); c != nil {
			t.Errorf("CellByCoord(%v) = cell %d, want nil", h, c.Index)
		}
	}
}

func TestDirectionHelpers(t *testing.T) {
	for d := NE; d <= NW; d++ {
		if d.Opposite().Opposite() != d {
			t.Errorf("%s opposite twice = %s", d, d.Opposite().Opposite())
		}
		if d.Next().Previous() != d {
			t.Errorf("%s next/previous mismatch", d)
		}
		if d.Next2() != d.Next().Next() {
			t.Errorf("%s Next2 = %s", d, d.Next2())
		}
		if d.Previous2() != d.Previous().Previous() {
			t.Errorf("%s Previous2 = %s", d, d.Previous2())
		}
	}
	if got, err := ParseDirection("nw"); err != nil || got != NW {
		t.Fatalf("ParseDirection(nw) = %v, %v", got, err)
	}
	if _, err := ParseDirection("north"); err == nil {
		t.Fatal("expected error for unknown direction")
	}
}

func TestSetOutgoingRiverLinksBothEnds(t *testing.T) {
	g, _ := NewGrid(5, 5)
	src := g.CellAt(2, 2)
	g.SetElevation(src.Index, 3)
	dst := g.Neighbor(src.Index, E)
	g.SetElevation(dst.Index, 2)

	if !g.SetOutgoingRiver(src.Index, E) {
		t.Fatal("expected river to be set")
	}
	if !src.HasOutgoingRiver() || src.OutgoingRiver() != E {
		t.Fatalf("source river = %v %s", src.HasOutgoingRiver(), src.OutgoingRiver())
	}
	if !dst.HasIncomingRiver() || dst.IncomingRiver() != W {
		t.Fatalf("destination river = %v %s", dst.HasIncomingRiver(), dst.IncomingRiver())
	}
	if RiverCount(g) != 1 {
		t.Fatalf("river count = %d", RiverCount(g))
	}

	// Raising the destination above the source invalidates the river.
	g.SetElevation(dst.Index, 5)
	if src.HasRiver() || dst.HasRiver() {
		t.Fatal("uphill river should have been removed")
	}
}

func TestSetOutgoingRiverRejectsUphill(t *testing.T) {
	g, _ := NewGrid(5, 5)
	src := g.CellAt(2, 2)
	dst := g.Neighbor(src.Index, W)
	g.SetElevation(dst.Index, 1)
	if g.SetOutgoingRiver(src.Index, W) {
		t.Fatal("river must not flow uphill")
	}

	// Lake outflow: water level equal to the neighbor elevation is allowed.
	g.SetWaterLevel(src.Index, 1)
	if !g.SetOutgoingRiver(src.Index, W) {
		t.Fatal("lake outflow should be allowed")
	}
}

func TestRiverClearsRoadAndSpecial(t *testing.T) {
	g, _ := NewGrid(5, 5)
	src := g.CellAt(2, 2)
	if !g.AddRoad(src.Index, NE) {
		t.Fatal("expected road to be added")
	}
	g.SetOutgoingRiver(src.Index, NE)
	if src.HasRoadThroughEdge(NE) {
		t.Fatal("river should clear the road across its edge")
	}
	if g.AddRoad(src.Index, NE) {
		t.Fatal("road must not cross a river")
	}
	g.SetSpecialIndex(src.Index, 2)
	if src.IsSpecial() {
		t.Fatal("cells with rivers refuse special features")
	}
}

func TestRiverEncoding(t *testing.T) {
	if EncodeRiver(false, SW) != 0 {
		t.Fatal("no river must encode to 0")
	}
	for d := NE; d <= NW; d++ {
		has, got := DecodeRiver(EncodeRiver(true, d))
		if !has || got != d {
			t.Fatalf("decode(encode(%s)) = %v %s", d, has, got)
		}
	}
}

func TestEdgeType(t *testing.T) {
	if GetEdgeType(2, 2) != EdgeFlat || GetEdgeType(2, 3) != EdgeSlope || GetEdgeType(3, 1) != EdgeCliff {
		t.Fatal("unexpected edge classification")
	}
}
