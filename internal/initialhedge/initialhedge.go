// Package initialhedge implements spec §4.7: turning the authored
// linedef list into the half-edge DS's starting state. Every linedef
// mints a front half-edge and, twinned with it, a back half-edge —
// real if the linedef has a back sidedef, a window-effect stand-in if
// the pre-pass found one, or a void-facing placeholder otherwise so
// every half-edge in the DS keeps a valid twin. Each vertex's incident
// half-edges are then woven into a ring ordered by ascending angle, so
// that following twin.Next rotates clockwise around the vertex.
package initialhedge

import (
	"fmt"
	"math"
	"sort"

	"doombsp/internal/bsperrors"
	"doombsp/internal/geom"
	"doombsp/internal/halfedge"
	"doombsp/internal/mapdata"
	"doombsp/internal/windoweffect"
)

// Build mints the initial half-edge mesh from m into ds, applying the
// window-effect targets windoweffect.Prepass already computed, and
// returns the half-edges that belong in the SuperBlock seed (every
// front half-edge, plus every back half-edge backed by a real
// sidedef). Window-effect and void placeholder back half-edges are
// left out of the seed: they exist only so every half-edge keeps a
// twin and so ring closure and sector lookups near them still work.
func Build(ds *halfedge.DS, m *mapdata.Map, windowTargets windoweffect.Result) ([]halfedge.EdgeID, error) {
	verts := make([]halfedge.VertexID, len(m.Vertices))
	for i, v := range m.Vertices {
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
			return nil, fmt.Errorf("%w: vertex %d (%v,%v)", bsperrors.ErrDegenerateVertex, i, v.X, v.Y)
		}
		verts[i] = ds.CreateVertex(geom.Vec2{v.X, v.Y})
	}

	var seed []halfedge.EdgeID
	for i, l := range m.Lines {
		v1, v2 := verts[l.V1], verts[l.V2]
		front, back := ds.NewEdgePair(v1, v2)

		fi := ds.Info(front)
		fi.LineDef, fi.SourceLineDef = i, i
		fi.Sector = m.Sides[l.SideFront].Sector
		fi.Side = halfedge.SideFront

		bi := ds.Info(back)
		bi.LineDef, bi.SourceLineDef = i, i
		bi.Side = halfedge.SideBack
		switch {
		case l.SideBack != mapdata.NoSideDef:
			bi.Sector = m.Sides[l.SideBack].Sector
			seed = append(seed, back)
		case windowTargets[i] != mapdata.NoSector:
			bi.Sector = windowTargets[i]
		default:
			bi.Sector = mapdata.NoSector
		}
		seed = append(seed, front)

		if err := ds.RecomputeInfo(front); err != nil {
			return nil, err
		}
		if err := ds.RecomputeInfo(back); err != nil {
			return nil, err
		}

		ds.AddTip(v1, front)
		ds.AddTip(v2, back)
	}

	for v := 0; v < ds.NumVertices(); v++ {
		weaveRing(ds, halfedge.VertexID(v))
	}

	return seed, nil
}

// weaveRing sorts v's recorded tips ascending by outgoing angle and
// wires each half-edge's twin/next/prev so that following twin.Next
// rotates clockwise around v (spec §4.7.2).
func weaveRing(ds *halfedge.DS, v halfedge.VertexID) {
	tips := append([]halfedge.EdgeID(nil), ds.Tips(v)...)
	if len(tips) == 0 {
		return
	}
	sort.Slice(tips, func(i, j int) bool {
		return ds.Info(tips[i]).AngleDeg < ds.Info(tips[j]).AngleDeg
	})
	ds.SetTips(v, tips)

	n := len(tips)
	for i, h := range tips {
		nextTwin := ds.Edge(tips[(i+1)%n]).Twin
		link(ds, nextTwin, h)

		prevOwner := tips[(i-1+n)%n]
		twin := ds.Edge(h).Twin
		link(ds, twin, prevOwner)
	}
}

// link sets a.Next = b and b.Prev = a.
func link(ds *halfedge.DS, a, b halfedge.EdgeID) {
	ae := ds.Edge(a)
	ae.Next = b
	ds.SetEdge(a, ae)

	be := ds.Edge(b)
	be.Prev = a
	ds.SetEdge(b, be)
}
