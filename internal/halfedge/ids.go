package halfedge

// VertexID, EdgeID and FaceID are indices into DS's arenas (spec §9:
// "model with a central owning arena; references between half-edges
// are indices into that arena" rather than pointer cycles).
type (
	VertexID int
	EdgeID   int
	FaceID   int
)

// NoVertex, NoEdge and NoFace are the "absent" sentinels. A half-edge's
// Face is NoFace while it still lives in a SuperBlock (spec §3 invariant
// 5); an EdgeInfo's LineDef is NoLine for mini-edges.
const (
	NoVertex VertexID = -1
	NoEdge   EdgeID   = -1
	NoFace   FaceID   = -1
	NoLine   int      = -1
)
