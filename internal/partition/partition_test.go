package partition

import (
	"testing"

	"doombsp/internal/geom"
	"doombsp/internal/halfedge"
	"doombsp/internal/mapdata"
	"doombsp/internal/superblock"
)

// buildSquareRoom constructs a 100x100 room (one real half-edge pair
// per wall, 8 half-edges in all) and inserts them into a fresh
// SuperBlock tree, which
// is the minimal input a candidate partition can be picked from.
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

func TestPickReturnsACandidate(t *testing.T) {
	ds, _, root := buildSquareRoom(t)
	pass := NewPassCounter()

	h, ok := Pick(ds, root, 7, pass)
	if !ok {
		t.Fatal("Pick found no candidate on a 4-wall room")
	}
	if ds.Info(h).LineDef == halfedge.NoLine {
		t.Fatal("Pick chose a mini-edge, never a valid candidate")
	}
}

func TestPickSkipsEdgesWithoutSector(t *testing.T) {
	ds := halfedge.New()
	a := ds.CreateVertex(geom.Vec2{0, 0})
	b := ds.CreateVertex(geom.Vec2{10, 0})
	fwd, back := ds.NewEdgePair(a, b)
	ds.Info(fwd).LineDef = 0
	ds.Info(fwd).Sector = mapdata.NoSector // no sector: not a valid candidate
	ds.Info(back).LineDef = 0
	ds.Info(back).Sector = mapdata.NoSector
	if err := ds.RecomputeInfo(fwd); err != nil {
		t.Fatal(err)
	}
	if err := ds.RecomputeInfo(back); err != nil {
		t.Fatal(err)
	}

	pool := superblock.NewPool()
	root := pool.NewRoot(superblock.Box{Left: 0, Bottom: 0, Right: 256, Top: 256})
	superblock.Insert(pool, root, ds, fwd, true)
	superblock.Insert(pool, root, ds, back, true)

	pass := NewPassCounter()
	if _, ok := Pick(ds, root, 7, pass); ok {
		t.Fatal("Pick should reject the only candidate: both sides lack a sector")
	}
}

func TestPassCounterDedupesWithinAPass(t *testing.T) {
	pc := NewPassCounter()
	pc.Next()
	if !pc.MarkIfUnseen(3) {
		t.Fatal("first sighting of linedef 3 should be unseen")
	}
	if pc.MarkIfUnseen(3) {
		t.Fatal("second sighting of linedef 3 in the same pass should be seen")
	}
	pc.Next()
	if !pc.MarkIfUnseen(3) {
		t.Fatal("linedef 3 should be unseen again in a new pass")
	}
}

func TestPassCounterNeverDedupesMiniEdges(t *testing.T) {
	pc := NewPassCounter()
	pc.Next()
	if !pc.MarkIfUnseen(-1) || !pc.MarkIfUnseen(-1) {
		t.Fatal("mini-edges (lineDef < 0) must never be deduplicated")
	}
}

func TestBoxSideClassification(t *testing.T) {
	origin := geom.Vec2{0, 50}
	dir := geom.Vec2{1, 0} // horizontal line at y=50
	length := 1.0

	right := superblock.Box{Left: 0, Bottom: 60, Right: 10, Top: 70}
	left := superblock.Box{Left: 0, Bottom: 0, Right: 10, Top: 10}
	straddle := superblock.Box{Left: 0, Bottom: 0, Right: 10, Top: 100}

	if got := boxSide(origin, dir, length, right); got != 1 {
		t.Errorf("boxSide(right) = %d, want 1", got)
	}
	if got := boxSide(origin, dir, length, left); got != -1 {
		t.Errorf("boxSide(left) = %d, want -1", got)
	}
	if got := boxSide(origin, dir, length, straddle); got != 0 {
		t.Errorf("boxSide(straddle) = %d, want 0", got)
	}
}
