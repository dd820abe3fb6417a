// Package bspbuild implements spec §4.6: the recursive partition/
// divide/gap-connect driver that turns a SuperBlock full of half-edges
// into a binary tree of partition Nodes terminating in convex Faces,
// plus the post-order leaf finalization pass that turns each leaf's
// flat, unordered half-edge set into a proper clockwise boundary ring.
package bspbuild

import (
	"fmt"

	"doombsp/internal/bsperrors"
	"doombsp/internal/buildlog"
	"doombsp/internal/divider"
	"doombsp/internal/gapconnect"
	"doombsp/internal/geom"
	"doombsp/internal/halfedge"
	"doombsp/internal/intersect"
	"doombsp/internal/mapdata"
	"doombsp/internal/partition"
	"doombsp/internal/superblock"
)

// ChildRef is a tagged union: either an interior Node or a leaf Face
// (spec §3 "BSP Node ... Left/Right as a tagged union").
type ChildRef struct {
	Node *Node
	Face halfedge.FaceID
}

// IsLeaf reports whether this reference terminates in a Face rather
// than continuing into another Node.
func (c ChildRef) IsLeaf() bool { return c.Node == nil }

// Node is one partition step: the line it split on (as a point and
// direction, matching the half-edge that was chosen), the bounding box
// each side's geometry actually occupies, and the two subtrees.
type Node struct {
	Partition   geom.Vec2
	Dir         geom.Vec2
	RightBounds superblock.Box
	LeftBounds  superblock.Box
	Right       ChildRef
	Left        ChildRef
}

// Tree is a complete, finalized BSP: every leaf's Face has a correctly
// ordered, closed boundary ring.
type Tree struct {
	Root ChildRef

	// Unclosed lists every sector the gap connector found open on only
	// one side of some partition somewhere in the tree (spec §4.5/§6
	// "flagged UNCLOSED in the output"), in no particular order. A
	// cache writer surfaces this against the matching SectorRec.
	Unclosed []mapdata.SectorID
}

// Build runs spec.md §4.6's pseudocode to exhaustion over root,
// returning the finished tree. factor tunes the partition selector
// (spec §6 "BSP factor"); m supplies the self-referencing-sector check
// the gap connector needs. Fatal conditions (spec §4.8) abort the
// whole build and return an error; authoring oddities are logged to
// log and the build continues.
func Build(ds *halfedge.DS, pool *superblock.Pool, m *mapdata.Map, root *superblock.Block, factor int, log buildlog.Sink) (*Tree, error) {
	pass := partition.NewPassCounter()
	leaves := map[halfedge.FaceID][]halfedge.EdgeID{}
	diag := gapconnect.NewDiagnostics()

	rootRef, err := buildNode(ds, pool, m, root, factor, pass, log, leaves, diag)
	if err != nil {
		return nil, err
	}

	// Leaf finalization happens only after the whole tree exists: a
	// half-edge split while finishing one leaf could otherwise still
	// need to land in a sibling leaf's list (spec §4.6 "after the full
	// tree is built").
	if err := finalizeAll(ds, rootRef, leaves, log); err != nil {
		return nil, err
	}

	return &Tree{Root: rootRef, Unclosed: diag.Unclosed()}, nil
}

func buildNode(ds *halfedge.DS, pool *superblock.Pool, m *mapdata.Map, block *superblock.Block, factor int, pass *partition.PassCounter, log buildlog.Sink, leaves map[halfedge.FaceID][]halfedge.EdgeID, diag *gapconnect.Diagnostics) (ChildRef, error) {
	part, ok := partition.Pick(ds, block, factor, pass)
	if !ok {
		face := ds.CreateFace()
		edges := drainAll(block)
		for _, h := range edges {
			ds.Info(h).Block = nil
			e := ds.Edge(h)
			e.Face = face
			ds.SetEdge(h, e)
		}
		leaves[face] = edges
		pool.Release(block)
		return ChildRef{Face: face}, nil
	}

	partInfo := ds.Info(part)
	partOrigin := ds.Vertex(ds.Edge(part).Origin).Pos
	partDir := partInfo.Dir

	xs := intersect.New()
	right, left, err := divider.Divide(ds, pool, part, block, xs)
	if err != nil {
		return ChildRef{}, err
	}

	if err := gapconnect.Connect(ds, pool, m, part, xs, right, left, diag, log); err != nil {
		return ChildRef{}, err
	}

	node := &Node{
		Partition:   partOrigin,
		Dir:         partDir,
		RightBounds: superblock.AABounds(ds, right),
		LeftBounds:  superblock.AABounds(ds, left),
	}

	rightRef, err := buildNode(ds, pool, m, right, factor, pass, log, leaves, diag)
	if err != nil {
		return ChildRef{}, err
	}
	leftRef, err := buildNode(ds, pool, m, left, factor, pass, log, leaves, diag)
	if err != nil {
		return ChildRef{}, err
	}
	node.Right, node.Left = rightRef, leftRef

	return ChildRef{Node: node}, nil
}

// drainAll collects every half-edge stacked anywhere in block (itself
// and every descendant), in no particular order — spec §4.6's
// "transferAllHalfEdgesFromSuperBlockInto(face)".
func drainAll(block *superblock.Block) []halfedge.EdgeID {
	var out []halfedge.EdgeID
	for {
		h, ok := block.Pop()
		if !ok {
			break
		}
		out = append(out, h)
	}
	for _, c := range block.Child {
		if c != nil {
			out = append(out, drainAll(c)...)
		}
	}
	return out
}

// finalizeAll walks the tree for every leaf recorded in leaves and
// finalizes it (spec §4.6 post-order pass).
func finalizeAll(ds *halfedge.DS, ref ChildRef, leaves map[halfedge.FaceID][]halfedge.EdgeID, log buildlog.Sink) error {
	if ref.IsLeaf() {
		return finalizeLeaf(ds, ref.Face, leaves[ref.Face], log)
	}
	if err := finalizeAll(ds, ref.Node.Right, leaves, log); err != nil {
		return err
	}
	return finalizeAll(ds, ref.Node.Left, leaves, log)
}

// finalizeLeaf performs the five post-order steps of spec §4.6 on one
// leaf: switch from the flat build-time list to a linked boundary
// ring ordered clockwise around the leaf's centroid, verify closure
// and sector uniformity (logged, non-fatal), and fail fatally if the
// leaf has no real half-edge at all.
func finalizeLeaf(ds *halfedge.DS, face halfedge.FaceID, edges []halfedge.EdgeID, log buildlog.Sink) error {
	hasReal := false
	for _, h := range edges {
		if ds.Info(h).LineDef != halfedge.NoLine {
			hasReal = true
			break
		}
	}
	if !hasReal {
		return fmt.Errorf("%w: face %d", bsperrors.ErrLeafWithoutRealEdge, face)
	}

	centroid := leafCentroid(ds, edges)
	orderClockwise(ds, edges, centroid)

	n := len(edges)
	for i, h := range edges {
		next := edges[(i+1)%n]
		e := ds.Edge(h)
		e.Next = next
		ds.SetEdge(h, e)

		ne := ds.Edge(next)
		ne.Prev = h
		ds.SetEdge(next, ne)
	}
	ds.SetFace(face, edges[0])

	verifyClosure(ds, face, edges, log)
	verifySectorUniformity(ds, face, edges, log)
	return nil
}

// leafCentroid averages every boundary half-edge's origin.
func leafCentroid(ds *halfedge.DS, edges []halfedge.EdgeID) geom.Vec2 {
	var sx, sy float64
	for _, h := range edges {
		p := ds.Vertex(ds.Edge(h).Origin).Pos
		sx += p.X()
		sy += p.Y()
	}
	n := float64(len(edges))
	return geom.Vec2{sx / n, sy / n}
}

// orderClockwise sorts edges in place, ascending by the angle from
// centroid to each half-edge's origin — the same "ascending angle
// rotates clockwise" convention internal/initialhedge uses to weave
// vertex rings (spec §4.6 step 2).
func orderClockwise(ds *halfedge.DS, edges []halfedge.EdgeID, centroid geom.Vec2) {
	angle := make(map[halfedge.EdgeID]float64, len(edges))
	for _, h := range edges {
		p := ds.Vertex(ds.Edge(h).Origin).Pos
		angle[h] = geom.Angle(p.Sub(centroid))
	}
	sortEdges(edges, func(a, b halfedge.EdgeID) bool { return angle[a] < angle[b] })
}

func sortEdges(edges []halfedge.EdgeID, less func(a, b halfedge.EdgeID) bool) {
	for i := 1; i < len(edges); i++ {
		for j := i; j > 0 && less(edges[j], edges[j-1]); j-- {
			edges[j], edges[j-1] = edges[j-1], edges[j]
		}
	}
}

// verifyClosure logs a warning for every gap where one boundary
// half-edge's far endpoint doesn't meet the next one's origin (spec
// §4.6 step 3, §4.8 "non-closed leaf boundary").
func verifyClosure(ds *halfedge.DS, face halfedge.FaceID, edges []halfedge.EdgeID, log buildlog.Sink) {
	n := len(edges)
	for i, h := range edges {
		next := edges[(i+1)%n]
		far := ds.Edge(ds.Edge(h).Twin).Origin
		if far != ds.Edge(next).Origin {
			p := ds.Vertex(far).Pos
			log.Warnf("bspbuild: face %d boundary not closed near (%.1f,%.1f)", face, p.X(), p.Y())
		}
	}
}

// verifySectorUniformity logs once per offending sector pair when a
// leaf's real half-edges disagree about which sector bounds it (spec
// §4.6 step 4).
func verifySectorUniformity(ds *halfedge.DS, face halfedge.FaceID, edges []halfedge.EdgeID, log buildlog.Sink) {
	seen := map[mapdata.SectorID]bool{}
	warned := map[[2]mapdata.SectorID]bool{}
	var first mapdata.SectorID = mapdata.NoSector
	haveFirst := false
	for _, h := range edges {
		info := ds.Info(h)
		if info.LineDef == halfedge.NoLine {
			continue
		}
		if !haveFirst {
			first = info.Sector
			haveFirst = true
		}
		seen[info.Sector] = true
		if info.Sector != first {
			key := [2]mapdata.SectorID{first, info.Sector}
			if info.Sector < first {
				key = [2]mapdata.SectorID{info.Sector, first}
			}
			if !warned[key] {
				warned[key] = true
				log.Warnf("bspbuild: face %d has mismatched sectors #%d and #%d", face, key[0], key[1])
			}
		}
	}
}
