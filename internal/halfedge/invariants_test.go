package halfedge

import (
	"testing"

	"doombsp/internal/geom"
)

func checkInvariants(t *testing.T, ds *DS, edges []EdgeID) {
	t.Helper()
	for _, h := range edges {
		e := ds.Edge(h)
		twin := ds.Edge(e.Twin)
		if ds.Edge(twin.Twin) != e {
			t.Errorf("edge %d: twin.twin != self", h)
		}
		next := ds.Edge(e.Next)
		if ds.Edge(next.Prev) != e {
			t.Errorf("edge %d: next.prev != self", h)
		}
		prev := ds.Edge(e.Prev)
		if ds.Edge(prev.Next) != e {
			t.Errorf("edge %d: prev.next != self", h)
		}
		if twin.Origin != next.Origin {
			t.Errorf("edge %d: twin.origin (%d) != next.origin (%d)", h, twin.Origin, next.Origin)
		}
	}
}

func TestNewEdgePairInvariants(t *testing.T) {
	ds := New()
	a := ds.CreateVertex(geom.Vec2{0, 0})
	b := ds.CreateVertex(geom.Vec2{10, 0})
	h, t2 := ds.NewEdgePair(a, b)
	if err := ds.RecomputeInfo(h); err != nil {
		t.Fatal(err)
	}
	if err := ds.RecomputeInfo(t2); err != nil {
		t.Fatal(err)
	}
	checkInvariants(t, ds, []EdgeID{h, t2})

	info := ds.Info(h)
	if info.Length != 10 {
		t.Errorf("length = %v, want 10", info.Length)
	}
	if info.AngleDeg != 0 {
		t.Errorf("angle = %v, want 0", info.AngleDeg)
	}
}

func TestSplitHalfEdge(t *testing.T) {
	ds := New()
	a := ds.CreateVertex(geom.Vec2{0, 0})
	b := ds.CreateVertex(geom.Vec2{10, 0})
	h, t2 := ds.NewEdgePair(a, b)
	ds.Info(h).LineDef = 5
	ds.Info(t2).LineDef = 5
	if err := ds.RecomputeInfo(h); err != nil {
		t.Fatal(err)
	}
	if err := ds.RecomputeInfo(t2); err != nil {
		t.Fatal(err)
	}

	n, err := ds.SplitHalfEdge(h, geom.Vec2{4, 0})
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	checkInvariants(t, ds, []EdgeID{h, t2, n, ds.Edge(n).Twin})

	if got := ds.Info(h).Length; got != 4 {
		t.Errorf("h length after split = %v, want 4", got)
	}
	np := ds.Edge(n).Twin
	if got := ds.Info(n).Length; got != 6 {
		t.Errorf("n length = %v, want 6", got)
	}
	if ds.Info(n).LineDef != 5 {
		t.Errorf("n did not inherit linedef")
	}
	if ds.Info(np).LineDef != 5 {
		t.Errorf("n' did not inherit twin's linedef")
	}

	vID := ds.Edge(t2).Origin
	if got := ds.Vertex(vID).Pos; got != (geom.Vec2{4, 0}) {
		t.Errorf("split vertex at %v, want (4,0)", got)
	}
}

func TestSplitHalfEdgeOutsideSpanFails(t *testing.T) {
	ds := New()
	a := ds.CreateVertex(geom.Vec2{0, 0})
	b := ds.CreateVertex(geom.Vec2{10, 0})
	h, t2 := ds.NewEdgePair(a, b)
	if err := ds.RecomputeInfo(h); err != nil {
		t.Fatal(err)
	}
	if err := ds.RecomputeInfo(t2); err != nil {
		t.Fatal(err)
	}

	if _, err := ds.SplitHalfEdge(h, geom.Vec2{10, 0}); err == nil {
		t.Fatal("expected error splitting at endpoint")
	}
	if _, err := ds.SplitHalfEdge(h, geom.Vec2{20, 0}); err == nil {
		t.Fatal("expected error splitting outside span")
	}
}
