package windoweffect

import (
	"testing"

	"doombsp/internal/mapdata"
)

// buildWindowMap constructs a small map of three one-sided lines: a
// vertical line V0->V1, a second line V0->V2 sharing V0, and a
// horizontal line V3->V4 at the vertical line's mid-height. V0 is
// touched by two one-sided lines (even) and every other vertex by one
// line alone, so no line trips the window-effect trigger.
func buildWindowMap() *mapdata.Map {
	m := &mapdata.Map{
		Vertices: []mapdata.Vertex{
			{X: 0, Y: 0},   // 0
			{X: 0, Y: 64},  // 1: window line endpoint
			{X: 64, Y: 0},  // 2: extra one-sided neighbor at vertex 0
			{X: -64, Y: 32}, // 3
			{X: 64, Y: 32},  // 4
		},
		Sectors: []mapdata.Sector{
			{FloorHeight: 0, CeilHeight: 128}, // 0: front of window line
			{FloorHeight: 0, CeilHeight: 128}, // 1: front of the horizontal line
		},
	}
	m.Sides = []mapdata.SideDef{
		{Sector: 0}, // 0: front of window line (vertical, V0-V1)
		{Sector: 0}, // 1: front of extra one-sided neighbor (V0-V2)
		{Sector: 1}, // 2: front of the horizontal line (V3-V4)
	}
	m.Lines = []mapdata.LineDef{
		{V1: 0, V2: 1, SideFront: 0, SideBack: mapdata.NoSideDef},
		{V1: 0, V2: 2, SideFront: 1, SideBack: mapdata.NoSideDef},
		{V1: 3, V2: 4, SideFront: 2, SideBack: mapdata.NoSideDef},
	}
	return m
}

func TestPrepassNonWindowLinesAreUntouched(t *testing.T) {
	m := &mapdata.Map{
		Vertices: []mapdata.Vertex{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}},
		Sectors:  []mapdata.Sector{{}},
		Sides:    []mapdata.SideDef{{Sector: 0}, {Sector: 0}},
		Lines: []mapdata.LineDef{
			{V1: 0, V2: 1, SideFront: 0, SideBack: 1},
			{V1: 1, V2: 2, SideFront: 0, SideBack: mapdata.NoSideDef},
		},
	}
	result := Prepass(m)
	if len(result) != len(m.Lines) {
		t.Fatalf("len(result) = %d, want %d", len(result), len(m.Lines))
	}
	for i, target := range result {
		if target != mapdata.NoSector {
			t.Errorf("line %d: target = %d, want NoSector (line 1 trips the trigger, but the probe's only other line is self-referencing)", i, target)
		}
	}
}

func TestPrepassReturnsOneEntryPerLine(t *testing.T) {
	m := buildWindowMap()
	result := Prepass(m)
	if len(result) != len(m.Lines) {
		t.Fatalf("len(result) = %d, want %d", len(result), len(m.Lines))
	}
}
