package initialhedge

import (
	"math"
	"testing"

	"doombsp/internal/halfedge"
	"doombsp/internal/mapdata"
	"doombsp/internal/windoweffect"
)

// buildSquareMap is a 100x100 fully two-sided room: sector 0 inside,
// sector 1 (the void) outside.
func buildSquareMap() *mapdata.Map {
	m := &mapdata.Map{
		Vertices: []mapdata.Vertex{
			{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100},
		},
		Sectors: []mapdata.Sector{{}, {}},
	}
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		m.Sides = append(m.Sides, mapdata.SideDef{Sector: 0}, mapdata.SideDef{Sector: 1})
		m.Lines = append(m.Lines, mapdata.LineDef{
			V1: mapdata.VertexID(i), V2: mapdata.VertexID(j),
			SideFront: mapdata.SideDefID(2 * i), SideBack: mapdata.SideDefID(2*i + 1),
		})
	}
	return m
}

func TestBuildMintsTwinnedPairPerLinedef(t *testing.T) {
	m := buildSquareMap()
	ds := halfedge.New()
	seed, err := Build(ds, m, windoweffect.Prepass(m))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if ds.NumEdges() != 2*len(m.Lines) {
		t.Fatalf("NumEdges = %d, want %d", ds.NumEdges(), 2*len(m.Lines))
	}
	if len(seed) != ds.NumEdges() {
		t.Fatalf("every half-edge of a fully two-sided room should seed the SuperBlock: got %d want %d", len(seed), ds.NumEdges())
	}
	for h := 0; h < ds.NumEdges(); h++ {
		twin := ds.Edge(halfedge.EdgeID(h)).Twin
		if ds.Edge(twin).Twin != halfedge.EdgeID(h) {
			t.Fatalf("edge %d's twin %d does not point back", h, twin)
		}
	}
}

func TestBuildOneSidedLineOmitsVirtualBackFromSeed(t *testing.T) {
	m := &mapdata.Map{
		Vertices: []mapdata.Vertex{{X: 0, Y: 0}, {X: 10, Y: 0}},
		Sectors:  []mapdata.Sector{{}},
		Sides:    []mapdata.SideDef{{Sector: 0}},
		Lines: []mapdata.LineDef{
			{V1: 0, V2: 1, SideFront: 0, SideBack: mapdata.NoSideDef},
		},
	}
	ds := halfedge.New()
	seed, err := Build(ds, m, windoweffect.Prepass(m))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	// A front and a void-facing back half-edge both exist (every edge
	// keeps a twin), but only the front belongs in the seed.
	if ds.NumEdges() != 2 {
		t.Fatalf("NumEdges = %d, want 2", ds.NumEdges())
	}
	if len(seed) != 1 {
		t.Fatalf("len(seed) = %d, want 1 (only the front half-edge)", len(seed))
	}
	backInfo := ds.Info(ds.Edge(seed[0]).Twin)
	if backInfo.Sector != mapdata.NoSector {
		t.Fatalf("virtual back half-edge sector = %d, want NoSector", backInfo.Sector)
	}
}

// TestBuildAppliesWindowEffectTargetToBackHalfEdge covers S4: a
// one-sided linedef whose pre-pass probe found an open sector behind
// it gets a synthesized back half-edge carrying that sector, and that
// half-edge still stays out of the SuperBlock seed (it is a stand-in,
// not a real boundary the divider should ever split).
func TestBuildAppliesWindowEffectTargetToBackHalfEdge(t *testing.T) {
	m := &mapdata.Map{
		Vertices: []mapdata.Vertex{{X: 0, Y: 0}, {X: 10, Y: 0}},
		Sectors:  []mapdata.Sector{{}, {}},
		Sides:    []mapdata.SideDef{{Sector: 0}},
		Lines: []mapdata.LineDef{
			{V1: 0, V2: 1, SideFront: 0, SideBack: mapdata.NoSideDef},
		},
	}
	// A hand-built window target standing in for what
	// windoweffect.Prepass would have found: the back of line 0 should
	// secretly open onto sector 1.
	targets := windoweffect.Result{1}

	ds := halfedge.New()
	seed, err := Build(ds, m, targets)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(seed) != 1 {
		t.Fatalf("len(seed) = %d, want 1 (window-effect back stays out of the seed)", len(seed))
	}

	back := ds.Edge(seed[0]).Twin
	if got := ds.Info(back).Sector; got != 1 {
		t.Fatalf("window-effect back half-edge sector = %d, want 1", got)
	}
}

func TestWeaveRingOrdersTipsAscendingByAngle(t *testing.T) {
	m := buildSquareMap()
	ds := halfedge.New()
	if _, err := Build(ds, m, windoweffect.Prepass(m)); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for v := 0; v < ds.NumVertices(); v++ {
		tips := ds.Tips(halfedge.VertexID(v))
		for i := 1; i < len(tips); i++ {
			if ds.Info(tips[i-1]).AngleDeg > ds.Info(tips[i]).AngleDeg {
				t.Fatalf("vertex %d tips not ascending by angle: %v", v, tips)
			}
		}
	}
}

func TestWeaveRingTwinNextRotatesClockwise(t *testing.T) {
	// A 4-way crossing at the origin: a ring of 8 half-edges (4 pairs)
	// radiating out. Following twin.Next around any of them should
	// visit every outgoing direction exactly once before returning.
	m := &mapdata.Map{
		Vertices: []mapdata.Vertex{
			{X: 0, Y: 0},
			{X: 10, Y: 0}, {X: 0, Y: 10}, {X: -10, Y: 0}, {X: 0, Y: -10},
		},
		Sectors: []mapdata.Sector{{}, {}},
	}
	for i := 1; i <= 4; i++ {
		m.Sides = append(m.Sides, mapdata.SideDef{Sector: 0}, mapdata.SideDef{Sector: 1})
		m.Lines = append(m.Lines, mapdata.LineDef{
			V1: 0, V2: mapdata.VertexID(i),
			SideFront: mapdata.SideDefID(2 * (i - 1)), SideBack: mapdata.SideDefID(2*(i-1) + 1),
		})
	}
	ds := halfedge.New()
	if _, err := Build(ds, m, windoweffect.Prepass(m)); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	start := ds.Tips(0)[0]
	h := start
	visited := map[halfedge.EdgeID]bool{}
	for i := 0; i < 4; i++ {
		if visited[h] {
			t.Fatalf("revisited half-edge %d before completing the ring", h)
		}
		visited[h] = true
		next := ds.Edge(ds.Edge(h).Twin).Next
		// Clockwise: each step turns 90 degrees down the angle order.
		if turn := math.Mod(ds.Info(h).AngleDeg-ds.Info(next).AngleDeg+360, 360); math.Abs(turn-90) > 1e-6 {
			t.Fatalf("step from %d to %d turns %.3f degrees, want 90 clockwise", h, next, turn)
		}
		h = next
	}
	if h != start {
		t.Fatalf("ring did not close: ended at %d, want %d", h, start)
	}
}
