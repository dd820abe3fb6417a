package halfedge

import (
	"doombsp/internal/geom"
	"doombsp/internal/mapdata"
)

// Vertex is a position in the map plane plus a back-pointer to one
// outgoing half-edge. This is the clean, runtime-consumable entity;
// builder-only scratch lives in the parallel vertexBuild side table
// (spec §9 "build-time scratch on model entities").
type Vertex struct {
	Pos geom.Vec2
	Out EdgeID
}

// vertexBuild is the builder-only scratch record for a vertex (spec §3
// Vertex "build data"): a 1-based authoring index, a reference count,
// an optional equivalence pointer set during coincident-vertex pruning,
// and the outgoing edge tips ordered by angle (spec §4.7.2).
type vertexBuild struct {
	index    int
	refCount int
	equiv    VertexID // NoVertex if this vertex was not pruned away
	tips     []EdgeID // outgoing half-edges, sorted ascending by angle
}

// HalfEdge is a directed edge belonging to the boundary of exactly one
// face (spec §3). Invariants 1-5 are enforced by DS's mutating methods.
type HalfEdge struct {
	Origin VertexID
	Twin   EdgeID
	Next   EdgeID
	Prev   EdgeID
	Face   FaceID // NoFace while still owned by a SuperBlock
}

// Side is which side of a linedef a half-edge was minted from.
type Side int

const (
	SideFront Side = iota
	SideBack
)

// EdgeInfo is the build-time derived geometry and provenance of a
// half-edge (spec §4.1 "Half-Edge Info"). It is a side table parallel
// to the half-edge arena, recomputed whenever the edge is split.
type EdgeInfo struct {
	LineDef       int // index into the originating mapdata.Map.Lines, NoLine for mini-edges
	SourceLineDef int // the linedef whose infinite line generated this edge
	Sector        mapdata.SectorID
	Side          Side

	Dir      geom.Vec2 // twin.origin - origin, NOT normalized
	Length   float64
	AngleDeg float64
	Perp     float64
	Parallel float64

	// Block is the SuperBlock currently holding this half-edge, or nil
	// once the edge has been assigned to a Face (spec §3 invariant 5).
	// Typed as `any` to avoid an import cycle with package superblock,
	// which is the Go analogue of the original's untyped back-pointer.
	Block any
}

// Face is a convex leaf: one boundary half-edge, with the rest of the
// boundary reachable via Next (spec §3 "Face").
type Face struct {
	Boundary EdgeID
}
