// Package divider implements spec §4.4: splitting every half-edge in a
// SuperBlock against a chosen partition line, routing each resulting
// piece into one of two fresh SuperBlock trees (right and left of the
// partition), and recording every point where an edge touches the
// partition's infinite line into an intersection list for the gap
// connector to close up afterward.
package divider

import (
	"math"

	"doombsp/internal/geom"
	"doombsp/internal/halfedge"
	"doombsp/internal/intersect"
	"doombsp/internal/superblock"
)

// Divide drains src (and every descendant SuperBlock) of its half-edges,
// classifying each against part's infinite line and routing it to a
// freshly allocated right or left SuperBlock, splitting it first if it
// straddles the line. Every vertex where an edge touches the partition,
// including the new vertices minted by a split, is recorded into xs.
// src is released back to pool once empty.
func Divide(ds *halfedge.DS, pool *superblock.Pool, part halfedge.EdgeID, src *superblock.Block, xs *intersect.List) (right, left *superblock.Block, err error) {
	right = pool.NewRoot(src.Bounds)
	left = pool.NewRoot(src.Bounds)

	partInfo := ds.Info(part)
	partOrigin := ds.Vertex(ds.Edge(part).Origin).Pos

	if err := drainBlock(ds, pool, src, part, partInfo, partOrigin, right, left, xs); err != nil {
		return nil, nil, err
	}
	pool.Release(src)
	return right, left, nil
}

// drainBlock empties block's own stack before descending into its
// children, matching the original drain order (spec §4.4 "LIFO across
// the whole tree").
func drainBlock(ds *halfedge.DS, pool *superblock.Pool, block *superblock.Block, part halfedge.EdgeID, partInfo *halfedge.EdgeInfo, partOrigin geom.Vec2, right, left *superblock.Block, xs *intersect.List) error {
	for {
		h, ok := block.Pop()
		if !ok {
			break
		}
		if ds.Info(h).Block != block {
			// Already pulled out and routed as the twin of an edge
			// this same drain already handled.
			continue
		}
		if err := routePair(ds, pool, part, partInfo, partOrigin, h, right, left, xs); err != nil {
			return err
		}
	}
	for _, child := range block.Child {
		if child != nil {
			if err := drainBlock(ds, pool, child, part, partInfo, partOrigin, right, left, xs); err != nil {
				return err
			}
		}
	}
	return nil
}

// routePair classifies h against the partition and routes it, together
// with its twin pulled out of whatever block it is still waiting in,
// splitting both at once if they straddle the line (spec §4.4's
// resolution: a half-edge and its twin are always split and routed
// together, so neither is ever left behind half-split).
func routePair(ds *halfedge.DS, pool *superblock.Pool, part halfedge.EdgeID, partInfo *halfedge.EdgeInfo, partOrigin geom.Vec2, h halfedge.EdgeID, right, left *superblock.Block, xs *intersect.List) error {
	ds.Info(h).Block = nil

	t := ds.Edge(h).Twin
	if tb, ok := ds.Info(t).Block.(*superblock.Block); ok && tb != nil {
		tb.Remove(t)
	}
	ds.Info(t).Block = nil

	hInfo := ds.Info(h)
	originVert := ds.Edge(h).Origin
	farVert := ds.Edge(t).Origin

	var a, b float64
	if hInfo.SourceLineDef == partInfo.SourceLineDef {
		a, b = 0, 0
	} else {
		origin := ds.Vertex(originVert).Pos
		far := ds.Vertex(farVert).Pos
		a = geom.Cross(partOrigin, partInfo.Dir, origin) / partInfo.Length
		b = geom.Cross(partOrigin, partInfo.Dir, far) / partInfo.Length
	}
	fa, fb := math.Abs(a), math.Abs(b)

	along := func(v halfedge.VertexID) float64 {
		return geom.Along(partOrigin, partInfo.Dir, ds.Vertex(v).Pos) / partInfo.Length
	}

	switch {
	case fa <= geom.DistEpsilon && fb <= geom.DistEpsilon:
		xs.Insert(originVert, along(originVert))
		xs.Insert(farVert, along(farVert))
		if hInfo.Dir.Dot(partInfo.Dir) < 0 {
			routeTo(pool, left, ds, h, t)
		} else {
			routeTo(pool, right, ds, h, t)
		}
		return nil

	case a > -geom.DistEpsilon && b > -geom.DistEpsilon:
		if fa <= geom.DistEpsilon {
			xs.Insert(originVert, along(originVert))
		} else if fb <= geom.DistEpsilon {
			xs.Insert(farVert, along(farVert))
		}
		routeTo(pool, right, ds, h, t)
		return nil

	case a < geom.DistEpsilon && b < geom.DistEpsilon:
		if fa <= geom.DistEpsilon {
			xs.Insert(originVert, along(originVert))
		} else if fb <= geom.DistEpsilon {
			xs.Insert(farVert, along(farVert))
		}
		routeTo(pool, left, ds, h, t)
		return nil
	}

	at := intersectionPoint(ds, partInfo, partOrigin, h, a, b)
	n, err := ds.SplitHalfEdge(h, at)
	if err != nil {
		return err
	}
	splitVert := ds.Edge(n).Origin
	xs.Insert(splitVert, along(splitVert))

	np := ds.Edge(n).Twin
	if a < 0 {
		routeTo(pool, left, ds, h, t)
		routeTo(pool, right, ds, n, np)
	} else {
		routeTo(pool, right, ds, h, t)
		routeTo(pool, left, ds, n, np)
	}
	return nil
}

// routeTo inserts a half-edge and its twin into dest, each counted as
// real or mini independently of the other.
func routeTo(pool *superblock.Pool, dest *superblock.Block, ds *halfedge.DS, h, t halfedge.EdgeID) {
	superblock.Insert(pool, dest, ds, h, ds.Info(h).LineDef != halfedge.NoLine)
	superblock.Insert(pool, dest, ds, t, ds.Info(t).LineDef != halfedge.NoLine)
}

// intersectionPoint computes where h crosses the partition, taking the
// axis-aligned shortcuts the original favors for a 'nicer' split point
// (an exactly horizontal or vertical partition against a perpendicular
// half-edge needs no interpolation at all) before falling back to
// linear interpolation along h itself using the perpendicular distances
// a (at h's origin) and b (at its far end).
func intersectionPoint(ds *halfedge.DS, partInfo *halfedge.EdgeInfo, partOrigin geom.Vec2, h halfedge.EdgeID, a, b float64) geom.Vec2 {
	hInfo := ds.Info(h)
	origin := ds.Vertex(ds.Edge(h).Origin).Pos

	if partInfo.Dir.Y() == 0 && hInfo.Dir.X() == 0 {
		return geom.Vec2{origin.X(), partOrigin.Y()}
	}
	if partInfo.Dir.X() == 0 && hInfo.Dir.Y() == 0 {
		return geom.Vec2{partOrigin.X(), origin.Y()}
	}

	t := a / (a - b)
	x, y := origin.X(), origin.Y()
	if hInfo.Dir.X() != 0 {
		x += hInfo.Dir.X() * t
	}
	if hInfo.Dir.Y() != 0 {
		y += hInfo.Dir.Y() * t
	}
	return geom.Vec2{x, y}
}
