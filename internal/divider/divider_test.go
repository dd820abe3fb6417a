package divider

import (
	"testing"

	"doombsp/internal/geom"
	"doombsp/internal/halfedge"
	"doombsp/internal/intersect"
	"doombsp/internal/mapdata"
	"doombsp/internal/superblock"
)

// buildSquareRoom mirrors the partition package's fixture: a 100x100
// room with one real half-edge pair per wall, inserted into a fresh
// SuperBlock tree.
func buildSquareRoom(t *testing.T) (*halfedge.DS, *superblock.Pool, *superblock.Block) {
	t.Helper()
	ds := halfedge.New()
	corners := []geom.Vec2{{0, 0}, {100, 0}, {100, 100}, {0, 100}}
	verts := make([]halfedge.VertexID, len(corners))
	for i, c := range corners {
		verts[i] = ds.CreateVertex(c)
	}

	pool := superblock.NewPool()
	root := pool.NewRoot(superblock.Box{Left: 0, Bottom: 0, Right: 100, Top: 100})

	for i := 0; i < len(verts); i++ {
		a, b := verts[i], verts[(i+1)%len(verts)]
		fwd, back := ds.NewEdgePair(a, b)
		ds.Info(fwd).LineDef = i
		ds.Info(fwd).SourceLineDef = i
		ds.Info(fwd).Sector = 0
		ds.Info(back).LineDef = i
		ds.Info(back).SourceLineDef = i
		ds.Info(back).Sector = 1
		if err := ds.RecomputeInfo(fwd); err != nil {
			t.Fatal(err)
		}
		if err := ds.RecomputeInfo(back); err != nil {
			t.Fatal(err)
		}
		superblock.Insert(pool, root, ds, fwd, true)
		superblock.Insert(pool, root, ds, back, true)
	}

	return ds, pool, root
}

// countEdges walks a SuperBlock tree, summing the half-edges stacked
// anywhere within it.
func countEdges(b *superblock.Block) int {
	if b == nil {
		return 0
	}
	n := b.Len()
	for _, c := range b.Child {
		n += countEdges(c)
	}
	return n
}

func TestDivideVerticalPartitionSplitsOpposingWalls(t *testing.T) {
	ds, pool, root := buildSquareRoom(t)

	// An explicit vertical partition edge at x=50, not part of the room,
	// cuts through the bottom and top walls, so the left (x=0) wall and
	// the right (x=100) wall end up on opposite sides.
	midA := ds.CreateVertex(geom.Vec2{50, -10})
	midB := ds.CreateVertex(geom.Vec2{50, 10})
	part, partTwin := ds.NewEdgePair(midA, midB)
	ds.Info(part).LineDef = 99
	ds.Info(part).SourceLineDef = 99
	ds.Info(part).Sector = 0
	ds.Info(partTwin).LineDef = 99
	ds.Info(partTwin).SourceLineDef = 99
	ds.Info(partTwin).Sector = 1
	if err := ds.RecomputeInfo(part); err != nil {
		t.Fatal(err)
	}
	if err := ds.RecomputeInfo(partTwin); err != nil {
		t.Fatal(err)
	}

	before := countEdges(root)

	xs := intersect.New()
	right, left, err := Divide(ds, pool, part, root, xs)
	if err != nil {
		t.Fatalf("Divide failed: %v", err)
	}

	after := countEdges(right) + countEdges(left)
	if after < before {
		t.Fatalf("Divide lost edges: before=%d after=%d", before, after)
	}
	if countEdges(right) == 0 || countEdges(left) == 0 {
		t.Fatalf("a vertical partition through a square room must produce edges on both sides: right=%d left=%d",
			countEdges(right), countEdges(left))
	}
}

func TestDivideKeepsTwinsTogether(t *testing.T) {
	ds, pool, root := buildSquareRoom(t)

	midA := ds.CreateVertex(geom.Vec2{50, -10})
	midB := ds.CreateVertex(geom.Vec2{50, 10})
	part, partTwin := ds.NewEdgePair(midA, midB)
	ds.Info(part).LineDef = 99
	ds.Info(part).SourceLineDef = 99
	ds.Info(part).Sector = 0
	ds.Info(partTwin).LineDef = 99
	ds.Info(partTwin).SourceLineDef = 99
	ds.Info(partTwin).Sector = 1
	if err := ds.RecomputeInfo(part); err != nil {
		t.Fatal(err)
	}
	if err := ds.RecomputeInfo(partTwin); err != nil {
		t.Fatal(err)
	}

	xs := intersect.New()
	right, left, err := Divide(ds, pool, part, root, xs)
	if err != nil {
		t.Fatalf("Divide failed: %v", err)
	}

	// Every half-edge now sitting in right or left must find its twin
	// in the SAME tree, since a half-edge and its reverse occupy the
	// identical physical segment.
	location := map[halfedge.EdgeID]string{}
	var mark func(b *superblock.Block, name string)
	mark = func(b *superblock.Block, name string) {
		if b == nil {
			return
		}
		for _, h := range b.Edges() {
			location[h] = name
		}
		for _, c := range b.Child {
			mark(c, name)
		}
	}
	mark(right, "right")
	mark(left, "left")

	for h, side := range location {
		twin := ds.Edge(h).Twin
		twinSide, ok := location[twin]
		if !ok {
			t.Fatalf("edge %d's twin %d was not routed anywhere", h, twin)
		}
		if twinSide != side {
			t.Fatalf("edge %d landed in %s but its twin %d landed in %s", h, side, twin, twinSide)
		}
	}
}

func TestDivideRoutesMiniEdgesRegardlessOfSector(t *testing.T) {
	// A mini-edge (no LineDef) with NoSector should still divide
	// cleanly, since Divide doesn't gate on Sector the way Pick does -
	// it must route every edge regardless.
	ds := halfedge.New()
	a := ds.CreateVertex(geom.Vec2{0, 0})
	b := ds.CreateVertex(geom.Vec2{10, 0})
	fwd, back := ds.NewEdgePair(a, b)
	ds.Info(fwd).Sector = mapdata.NoSector
	ds.Info(back).Sector = mapdata.NoSector
	if err := ds.RecomputeInfo(fwd); err != nil {
		t.Fatal(err)
	}
	if err := ds.RecomputeInfo(back); err != nil {
		t.Fatal(err)
	}

	pool := superblock.NewPool()
	root := pool.NewRoot(superblock.Box{Left: 0, Bottom: 0, Right: 256, Top: 256})
	superblock.Insert(pool, root, ds, fwd, false)
	superblock.Insert(pool, root, ds, back, false)

	midA := ds.CreateVertex(geom.Vec2{5, -10})
	midB := ds.CreateVertex(geom.Vec2{5, 10})
	part, partTwin := ds.NewEdgePair(midA, midB)
	if err := ds.RecomputeInfo(part); err != nil {
		t.Fatal(err)
	}
	if err := ds.RecomputeInfo(partTwin); err != nil {
		t.Fatal(err)
	}

	xs := intersect.New()
	right, left, err := Divide(ds, pool, part, root, xs)
	if err != nil {
		t.Fatalf("Divide failed: %v", err)
	}
	if countEdges(right)+countEdges(left) == 0 {
		t.Fatal("expected the split mini-edge pair to land somewhere")
	}
}
