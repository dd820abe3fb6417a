// Package superblock implements the recursive axis-aligned spatial
// index that the partition selector and divider walk instead of the
// flat half-edge list (spec §4.2). A Block is a leaf once both of its
// sides are no larger than 256 map units; until then, inserting a
// half-edge descends into whichever child half holds both of its
// endpoints, creating that child lazily on first need, and stops at
// the first block whose midpoint the half-edge straddles.
package superblock

import (
	"doombsp/internal/halfedge"
)

// leafSize is the side length below which a Block stops subdividing
// (spec §4.2 "leaf threshold").
const leafSize = 256

// Box is an integer axis-aligned bounding box in map units.
type Box struct {
	Left, Bottom, Right, Top int
}

// Width and Height report the box's extent along each axis.
func (b Box) Width() int  { return b.Right - b.Left }
func (b Box) Height() int { return b.Top - b.Bottom }

// Block is one node of the spatial index: an AABB, a link to its
// parent, up to two children, and a LIFO stack of the half-edges that
// currently live here (spec §4.2). RealNum and MiniNum are running
// totals accumulated at every ancestor on insertion, so the partition
// selector never has to walk a subtree to count what it contains.
type Block struct {
	Bounds  Box
	Parent  *Block
	Child   [2]*Block
	stack   []halfedge.EdgeID
	RealNum int
	MiniNum int
}

// IsLeaf reports whether b is small enough that it no longer
// subdivides (spec §4.2).
func (b *Block) IsLeaf() bool {
	return b.Bounds.Width() <= leafSize && b.Bounds.Height() <= leafSize
}

// Push links h onto b's half-edge stack, LIFO (spec §4.2 "push/pop").
func (b *Block) Push(h halfedge.EdgeID) {
	b.stack = append(b.stack, h)
}

// Pop removes and returns the most recently pushed half-edge, or
// (NoEdge, false) if the stack is empty.
func (b *Block) Pop() (halfedge.EdgeID, bool) {
	if len(b.stack) == 0 {
		return halfedge.NoEdge, false
	}
	n := len(b.stack) - 1
	h := b.stack[n]
	b.stack = b.stack[:n]
	return h, true
}

// Len reports how many half-edges are currently stacked directly on b
// (not counting descendants).
func (b *Block) Len() int { return len(b.stack) }

// Remove pulls h out of b's stack wherever it sits, not just the top,
// reporting whether it was found. The divider uses this to pull a
// half-edge's twin out of the block it is still waiting in so both
// sides of a pair can be routed together (spec §4.4).
func (b *Block) Remove(h halfedge.EdgeID) bool {
	for i, e := range b.stack {
		if e == h {
			b.stack = append(b.stack[:i], b.stack[i+1:]...)
			return true
		}
	}
	return false
}

// Edges returns the half-edges currently stacked directly on b, for
// read-only scans such as the partition selector's cost evaluation.
// Callers must not mutate the returned slice; use Push/Pop to change
// membership.
func (b *Block) Edges() []halfedge.EdgeID { return b.stack }

// IncrementCounts bumps RealNum or MiniNum on b and every ancestor, to
// account for a half-edge that was just split in two (spec §4.2
// "update counts on split without re-walking the subtree").
func (b *Block) IncrementCounts(real bool) {
	for block := b; block != nil; block = block.Parent {
		if real {
			block.RealNum++
		} else {
			block.MiniNum++
		}
	}
}

// widerOrEqual reports whether b should split along its horizontal
// midpoint (width >= height splits the X axis; ties also split the X
// axis, per spec §4.2's "wider-or-equal" tie-break).
func (b *Block) widerOrEqual() bool {
	return b.Bounds.Width() >= b.Bounds.Height()
}

// Midpoint returns the integer center of b's bounds.
func (b *Block) Midpoint() (mx, my int) {
	return (b.Bounds.Left + b.Bounds.Right) / 2, (b.Bounds.Bottom + b.Bounds.Top) / 2
}
