// Package gapconnect implements spec §4.5: after the divider has
// routed every straddling half-edge to one side of a partition, the
// intersection points it recorded mark where the partition line itself
// crosses open space. Wherever two consecutive intersections bound a
// stretch that is open on both sides, the gap connector mints a
// twinned pair of mini half-edges to close the polygon boundary on
// each side; wherever only one side is open, it flags the open sector
// as unclosed instead of guessing.
package gapconnect

import (
	"math"

	"doombsp/internal/buildlog"
	"doombsp/internal/geom"
	"doombsp/internal/halfedge"
	"doombsp/internal/intersect"
	"doombsp/internal/mapdata"
	"doombsp/internal/superblock"
)

// Diagnostics accumulates the unclosed-sector warnings the gap
// connector raises over the life of a build. A Sector record itself
// carries no build-time scratch (spec §9's "cross-subsystem side
// effect" open question), so this side channel is where that output
// lives instead.
type Diagnostics struct {
	unclosed map[mapdata.SectorID]bool
}

// NewDiagnostics returns an empty accumulator.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{unclosed: make(map[mapdata.SectorID]bool)}
}

func (d *Diagnostics) markUnclosed(s mapdata.SectorID) {
	if s == mapdata.NoSector {
		return
	}
	d.unclosed[s] = true
}

// Unclosed returns every sector flagged unclosed so far, in no
// particular order.
func (d *Diagnostics) Unclosed() []mapdata.SectorID {
	out := make([]mapdata.SectorID, 0, len(d.unclosed))
	for s := range d.unclosed {
		out = append(out, s)
	}
	return out
}

// Connect merges overlapping intersections in xs, then walks the
// result pairwise, closing every gap that is open on both sides and
// flagging every gap that is open on only one (spec §4.5).
func Connect(ds *halfedge.DS, pool *superblock.Pool, m *mapdata.Map, part halfedge.EdgeID, xs *intersect.List, right, left *superblock.Block, diag *Diagnostics, log buildlog.Sink) error {
	if err := xs.MergeOverlapping(geom.MergeEpsilon); err != nil {
		return err
	}

	partInfo := ds.Info(part)
	fwdAngle := geom.Angle(partInfo.Dir)
	backAngle := geom.Angle(partInfo.Dir.Mul(-1))

	for i := 0; i+1 < xs.Len(); i++ {
		cur := xs.At(i)
		next := xs.At(i + 1)

		if vertexHasAlignedEdge(ds, next.Vertex, backAngle) {
			// The partition already continues as a real edge past
			// next: there is no gap here to close.
			continue
		}

		farH, farOK := vertexCheckOpen(ds, next.Vertex, backAngle, false)
		nearH, nearOK := vertexCheckOpen(ds, cur.Vertex, fwdAngle, true)

		nearSector, farSector := mapdata.NoSector, mapdata.NoSector
		if nearOK {
			nearSector = ds.Info(nearH).Sector
		}
		if farOK {
			farSector = ds.Info(farH).Sector
		}

		if nearSector == mapdata.NoSector && farSector == mapdata.NoSector {
			continue
		}

		switch {
		case nearSector != mapdata.NoSector && farSector == mapdata.NoSector:
			if !isLineSelfRef(ds, m, nearH) {
				diag.markUnclosed(nearSector)
				warnUnclosed(ds, log, nearSector, cur.Vertex, next.Vertex)
			}

		case nearSector == mapdata.NoSector && farSector != mapdata.NoSector:
			if !isLineSelfRef(ds, m, farH) {
				diag.markUnclosed(farSector)
				warnUnclosed(ds, log, farSector, cur.Vertex, next.Vertex)
			}

		default:
			nearSelfRef := isLineSelfRef(ds, m, nearH)
			farSelfRef := isLineSelfRef(ds, m, farH)

			if nearSector != farSector && !nearSelfRef && !farSelfRef {
				log.Warnf("gap connector: sector mismatch #%d vs #%d between vertices %d and %d",
					nearSector, farSector, cur.Vertex, next.Vertex)
			}
			// Prefer the non-self-referencing sector when the two
			// disagree and only one side is a self-referencing hack.
			if nearSelfRef && !farSelfRef {
				nearSector = farSector
			}

			rh, lh, err := mintGapPair(ds, part, cur.Vertex, next.Vertex,
				nearSector, farSector, ds.Info(nearH).Side, ds.Info(farH).Side)
			if err != nil {
				return err
			}
			superblock.Insert(pool, right, ds, rh, false)
			superblock.Insert(pool, left, ds, lh, false)
		}
	}
	return nil
}

func warnUnclosed(ds *halfedge.DS, log buildlog.Sink, sector mapdata.SectorID, a, b halfedge.VertexID) {
	pa, pb := ds.Vertex(a).Pos, ds.Vertex(b).Pos
	mx, my := (pa.X()+pb.X())/2, (pa.Y()+pb.Y())/2
	log.Warnf("gap connector: unclosed sector #%d near (%.1f,%.1f)", sector, mx, my)
}

// isLineSelfRef reports whether the linedef that produced h (if any)
// is self-referencing (spec §4.5's "prefer the non-self-referencing
// sector" heuristic).
func isLineSelfRef(ds *halfedge.DS, m *mapdata.Map, h halfedge.EdgeID) bool {
	if h == halfedge.NoEdge {
		return false
	}
	ld := ds.Info(h).LineDef
	if ld == halfedge.NoLine {
		return false
	}
	return m.Lines[ld].IsSelfReferencing(m)
}

// mintGapPair creates a twinned pair of mini half-edges spanning
// origin..far, one carrying rightSector/rightSide for the right
// SuperBlock, the other leftSector/leftSide (reversed) for the left.
func mintGapPair(ds *halfedge.DS, part halfedge.EdgeID, origin, far halfedge.VertexID, rightSector, leftSector mapdata.SectorID, rightSide, leftSide halfedge.Side) (right, left halfedge.EdgeID, err error) {
	partInfo := ds.Info(part)
	right, left = ds.NewEdgePair(origin, far)

	ds.Info(right).SourceLineDef = partInfo.SourceLineDef
	ds.Info(right).Sector = rightSector
	ds.Info(right).Side = rightSide

	ds.Info(left).SourceLineDef = partInfo.SourceLineDef
	ds.Info(left).Sector = leftSector
	ds.Info(left).Side = leftSide

	if err := ds.RecomputeInfo(right); err != nil {
		return halfedge.NoEdge, halfedge.NoEdge, err
	}
	if err := ds.RecomputeInfo(left); err != nil {
		return halfedge.NoEdge, halfedge.NoEdge, err
	}
	return right, left, nil
}

// vertexHasAlignedEdge reports whether v has an outgoing half-edge
// whose angle matches angle within ANG_EPSILON, meaning the partition
// already continues past v as a real edge (spec §4.5 "aligned edge
// check").
func vertexHasAlignedEdge(ds *halfedge.DS, v halfedge.VertexID, angle float64) bool {
	for _, h := range ds.Tips(v) {
		diff := math.Abs(ds.Info(h).AngleDeg - angle)
		if diff < geom.AngEpsilon || diff > 360-geom.AngEpsilon {
			return true
		}
	}
	return false
}

// vertexCheckOpen finds the nearest outgoing half-edge at v when
// sweeping from angle in the requested rotational direction, and
// reports whether the wedge up to it is bounded by a real edge at all
// (spec §4.5's four-way open/closed classification). Built on the
// vertex's angle-ordered tip list (spec §4.7.2) rather than chasing
// twin/next links around the ring by hand.
func vertexCheckOpen(ds *halfedge.DS, v halfedge.VertexID, angle float64, antiClockwise bool) (halfedge.EdgeID, bool) {
	tips := ds.Tips(v)
	if len(tips) == 0 {
		return halfedge.NoEdge, false
	}

	norm := func(a float64) float64 {
		for a < 0 {
			a += 360
		}
		for a >= 360 {
			a -= 360
		}
		return a
	}
	angle = norm(angle)

	best := halfedge.NoEdge
	bestDelta := math.Inf(1)
	for _, h := range tips {
		a := ds.Info(h).AngleDeg
		var delta float64
		if antiClockwise {
			delta = norm(a - angle)
		} else {
			delta = norm(angle - a)
		}
		if delta < bestDelta {
			bestDelta = delta
			best = h
		}
	}
	if best == halfedge.NoEdge {
		return halfedge.NoEdge, false
	}
	if antiClockwise {
		return ds.Edge(best).Twin, true
	}
	return best, true
}
