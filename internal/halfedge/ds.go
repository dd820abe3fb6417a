// Package halfedge implements the builder's central half-edge data
// structure: an arena of vertices, half-edges and faces addressed by
// index rather than pointer, so that the inherent twin/next/prev
// cycles of a DCEL never require cyclic ownership (spec §9).
package halfedge

import (
	"fmt"

	"doombsp/internal/bsperrors"
	"doombsp/internal/geom"
	"doombsp/internal/mapdata"
)

// DS owns every vertex, half-edge and face created during a single
// build. Nothing it allocates outlives Close (spec §5 "memory
// discipline").
type DS struct {
	vertices []Vertex
	vbuild   []vertexBuild
	edges    []HalfEdge
	einfo    []EdgeInfo
	faces    []Face
}

// New returns an empty half-edge DS.
func New() *DS {
	return &DS{}
}

// Close releases everything the DS owns. No object it allocated
// remains valid afterward.
func (ds *DS) Close() {
	ds.vertices = nil
	ds.vbuild = nil
	ds.edges = nil
	ds.einfo = nil
	ds.faces = nil
}

// CreateVertex allocates a new vertex at pos.
func (ds *DS) CreateVertex(pos geom.Vec2) VertexID {
	id := VertexID(len(ds.vertices))
	ds.vertices = append(ds.vertices, Vertex{Pos: pos, Out: NoEdge})
	ds.vbuild = append(ds.vbuild, vertexBuild{
		index: len(ds.vertices),
		equiv: NoVertex,
	})
	return id
}

// CreateHalfEdge allocates a new, unwired half-edge. Callers are
// responsible for setting Origin/Twin/Next/Prev and the parallel
// EdgeInfo before the edge participates in any traversal.
func (ds *DS) CreateHalfEdge() EdgeID {
	id := EdgeID(len(ds.edges))
	ds.edges = append(ds.edges, HalfEdge{
		Origin: NoVertex,
		Twin:   NoEdge,
		Next:   NoEdge,
		Prev:   NoEdge,
		Face:   NoFace,
	})
	ds.einfo = append(ds.einfo, EdgeInfo{LineDef: NoLine, SourceLineDef: NoLine, Sector: mapdata.NoSector})
	return id
}

// CreateFace allocates a new, empty face.
func (ds *DS) CreateFace() FaceID {
	id := FaceID(len(ds.faces))
	ds.faces = append(ds.faces, Face{Boundary: NoEdge})
	return id
}

// Vertex returns a copy of the vertex at v.
func (ds *DS) Vertex(v VertexID) Vertex { return ds.vertices[v] }

// Edge returns a copy of the half-edge at h.
func (ds *DS) Edge(h EdgeID) HalfEdge { return ds.edges[h] }

// Info returns a pointer to the mutable EdgeInfo of h.
func (ds *DS) Info(h EdgeID) *EdgeInfo { return &ds.einfo[h] }

// Face returns a copy of the face at f.
func (ds *DS) Face(f FaceID) Face { return ds.faces[f] }

// SetFace assigns f's boundary half-edge.
func (ds *DS) SetFace(f FaceID, boundary EdgeID) { ds.faces[f].Boundary = boundary }

// SetEdge overwrites the wiring fields of half-edge h.
func (ds *DS) SetEdge(h EdgeID, e HalfEdge) { ds.edges[h] = e }

// SetOrigin sets h's origin vertex and records h as that vertex's
// outgoing half-edge (Vertex.Out) if none is recorded yet. It does not
// touch the tip list; see AddTip.
func (ds *DS) SetOrigin(h EdgeID, v VertexID) {
	ds.edges[h].Origin = v
	if ds.vertices[v].Out == NoEdge {
		ds.vertices[v].Out = h
	}
}

// AddTip records h as an outgoing half-edge of its origin vertex, for
// the angle-ordered tip list used by vertex-ring weaving (spec §4.7.2)
// and vertex equivalence pruning.
func (ds *DS) AddTip(v VertexID, h EdgeID) {
	b := &ds.vbuild[v]
	b.tips = append(b.tips, h)
	b.refCount++
}

// Tips returns the outgoing half-edges recorded at vertex v.
func (ds *DS) Tips(v VertexID) []EdgeID { return ds.vbuild[v].tips }

// SetTips replaces the outgoing half-edge order recorded at vertex v.
func (ds *DS) SetTips(v VertexID, tips []EdgeID) { ds.vbuild[v].tips = tips }

// SetEquiv records that vertex v is a duplicate of target, found
// during the coincident-vertex pruning phase (spec §3 Vertex
// "equivalence pointer to a previous coincident vertex").
func (ds *DS) SetEquiv(v, target VertexID) { ds.vbuild[v].equiv = target }

// Resolve follows v's equivalence chain (if any) to the canonical
// vertex a caller should use in place of v.
func (ds *DS) Resolve(v VertexID) VertexID {
	for {
		eq := ds.vbuild[v].equiv
		if eq == NoVertex {
			return v
		}
		v = eq
	}
}

// NumVertices, NumEdges and NumFaces report arena sizes.
func (ds *DS) NumVertices() int { return len(ds.vertices) }
func (ds *DS) NumEdges() int    { return len(ds.edges) }
func (ds *DS) NumFaces() int    { return len(ds.faces) }

// NewEdgePair allocates a fresh pair of mutually-twinned half-edges
// running between o and f, wired into an isolated 2-cycle (each is the
// other's Next and Prev). This is the shape a half-edge pair has the
// moment it is minted from a linedef, before vertex-ring weaving
// splices it into the rings of its neighbors (spec §4.7).
func (ds *DS) NewEdgePair(o, f VertexID) (fwd, back EdgeID) {
	fwd = ds.CreateHalfEdge()
	back = ds.CreateHalfEdge()
	ds.edges[fwd] = HalfEdge{Origin: o, Twin: back, Next: back, Prev: back, Face: NoFace}
	ds.edges[back] = HalfEdge{Origin: f, Twin: fwd, Next: fwd, Prev: fwd, Face: NoFace}
	ds.SetOrigin(fwd, o)
	ds.SetOrigin(back, f)
	return fwd, back
}

// RecomputeInfo recomputes the derived geometry of h (Dir, Length,
// AngleDeg, Perp, Parallel) from its current Origin and Twin.Origin.
// Must be called after any change to either endpoint (spec §4.1:
// "Length, angle, perpendicular, parallel distances ... recomputed on
// every split").
func (ds *DS) RecomputeInfo(h EdgeID) error {
	e := ds.edges[h]
	origin := ds.vertices[e.Origin].Pos
	far := ds.vertices[ds.edges[e.Twin].Origin].Pos
	dir := far.Sub(origin)
	length := dir.Len()
	if length <= 0 {
		return fmt.Errorf("%w: edge %d", bsperrors.ErrZeroLengthEdge, h)
	}
	info := &ds.einfo[h]
	info.Dir = dir
	info.Length = length
	info.AngleDeg = geom.Angle(dir)
	info.Perp = geom.EdgePerp(origin, dir)
	info.Parallel = geom.EdgeParallel(origin, dir)
	return nil
}

// SplitHalfEdge inserts a new vertex at `at`, which must lie strictly
// between h's origin and its twin's origin (the far endpoint of h),
// and returns the newly minted continuation half-edge N (spec §4.1).
//
// After the call:
//   - h keeps its origin but now spans origin..at (h.Twin's origin
//     becomes the new vertex)
//   - N spans at..(h's original far endpoint), continuing h's ring
//   - N inherits h's LineDef/SourceLineDef/Sector/Side; N's twin
//     inherits h.Twin's
//   - all four of h, h.Twin, N, N.Twin have their derived geometry
//     recomputed
func (ds *DS) SplitHalfEdge(h EdgeID, at geom.Vec2) (EdgeID, error) {
	he := ds.edges[h]
	twinID := he.Twin
	twin := ds.edges[twinID]

	origin := ds.vertices[he.Origin].Pos
	far := ds.vertices[twin.Origin].Pos
	dir := far.Sub(origin)
	length := dir.Len()
	if length <= 0 {
		return NoEdge, fmt.Errorf("%w: edge %d", bsperrors.ErrZeroLengthEdge, h)
	}

	alongDist := geom.Along(origin, dir, at) / length
	if alongDist <= geom.DistEpsilon || alongDist >= length-geom.DistEpsilon {
		return NoEdge, fmt.Errorf("%w: point (%.6f,%.6f) on edge %d spanning (%.6f,%.6f)-(%.6f,%.6f)",
			bsperrors.ErrSplitOutsideSpan, at.X(), at.Y(), h, origin.X(), origin.Y(), far.X(), far.Y())
	}

	v := ds.CreateVertex(at)

	n := ds.CreateHalfEdge()
	np := ds.CreateHalfEdge() // N's twin

	hNext := he.Next
	tPrev := twin.Prev
	// In an isolated pair h's ring turns straight into its own twin at
	// the far endpoint; after the split that turn is between N and N'.
	if hNext == twinID {
		hNext = np
	}
	if tPrev == h {
		tPrev = n
	}

	// N continues h's ring from V to h's original far endpoint.
	ds.edges[n] = HalfEdge{Origin: v, Twin: np, Next: hNext, Prev: h, Face: he.Face}
	// N' continues the twin's ring, from the far endpoint back to V.
	ds.edges[np] = HalfEdge{Origin: twin.Origin, Twin: n, Next: twinID, Prev: tPrev, Face: twin.Face}

	// h now ends at V: its twin's origin moves from the far point to V.
	ds.edges[twinID].Origin = v
	ds.edges[twinID].Prev = np
	ds.edges[h].Next = n
	if hNext != NoEdge {
		ds.edges[hNext].Prev = n
	}
	if tPrev != NoEdge {
		ds.edges[tPrev].Next = np
	}

	ds.vertices[v].Out = n

	// N inherits h's provenance; N' inherits the (old) twin's.
	hInfo := ds.einfo[h]
	tInfo := ds.einfo[twinID]
	ds.einfo[n] = EdgeInfo{LineDef: hInfo.LineDef, SourceLineDef: hInfo.SourceLineDef, Sector: hInfo.Sector, Side: hInfo.Side}
	ds.einfo[np] = EdgeInfo{LineDef: tInfo.LineDef, SourceLineDef: tInfo.SourceLineDef, Sector: tInfo.Sector, Side: tInfo.Side}

	for _, edge := range []EdgeID{h, twinID, n, np} {
		if err := ds.RecomputeInfo(edge); err != nil {
			return NoEdge, err
		}
	}

	return n, nil
}
