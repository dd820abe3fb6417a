package superblock

import (
	"doombsp/internal/halfedge"
)

// Insert descends from root into whichever child holds both of h's
// endpoints, creating child blocks as needed, and pushes h onto the
// first block it reaches that is either a leaf or whose midpoint h's
// span straddles (spec §4.2 steps
// 1-4). real marks whether h carries a real linedef (as opposed to a
// mini-edge), for the RealNum/MiniNum bookkeeping.
func Insert(pool *Pool, root *Block, ds *halfedge.DS, h halfedge.EdgeID, real bool) {
	block := root
	for {
		if real {
			block.RealNum++
		} else {
			block.MiniNum++
		}

		if block.IsLeaf() {
			block.Push(h)
			ds.Info(h).Block = block
			return
		}

		edge := ds.Edge(h)
		a := ds.Vertex(edge.Origin).Pos
		b := ds.Vertex(ds.Edge(edge.Twin).Origin).Pos

		mx, my := block.Midpoint()

		var side1, side2 bool
		if block.widerOrEqual() {
			side1 = a.X() >= float64(mx)
			side2 = b.X() >= float64(mx)
		} else {
			side1 = a.Y() >= float64(my)
			side2 = b.Y() >= float64(my)
		}

		var child int
		switch {
		case side1 && side2:
			child = 1
		case !side1 && !side2:
			child = 0
		default:
			// h straddles the midpoint: it belongs to this block, not
			// either child.
			block.Push(h)
			ds.Info(h).Block = block
			return
		}

		if block.Child[child] == nil {
			block.Child[child] = pool.acquire()
			block.Child[child].Parent = block
			block.Child[child].Bounds = childBounds(block.Bounds, block.widerOrEqual(), mx, my, child)
		}
		block = block.Child[child]
	}
}

// childBounds computes the bounds of one half of parent, split along
// its wider axis at the midpoint (mx, my), per spec §4.2.
func childBounds(parent Box, splitX bool, mx, my, child int) Box {
	if splitX {
		if child == 0 {
			return Box{Left: parent.Left, Bottom: parent.Bottom, Right: mx, Top: parent.Top}
		}
		return Box{Left: mx, Bottom: parent.Bottom, Right: parent.Right, Top: parent.Top}
	}
	if child == 0 {
		return Box{Left: parent.Left, Bottom: parent.Bottom, Right: parent.Right, Top: my}
	}
	return Box{Left: parent.Left, Bottom: my, Right: parent.Right, Top: parent.Top}
}

// AABounds computes the smallest Box enclosing every half-edge reachable
// from root, descending through both children (spec §4.2 "map limits").
func AABounds(ds *halfedge.DS, root *Block) Box {
	box := Box{Left: 1 << 30, Bottom: 1 << 30, Right: -(1 << 30), Top: -(1 << 30)}
	var walk func(b *Block)
	walk = func(b *Block) {
		if b == nil {
			return
		}
		for _, h := range b.stack {
			edge := ds.Edge(h)
			a := ds.Vertex(edge.Origin).Pos
			c := ds.Vertex(ds.Edge(edge.Twin).Origin).Pos
			for _, p := range [2][2]float64{{a.X(), a.Y()}, {c.X(), c.Y()}} {
				x, y := int(p[0]), int(p[1])
				if x < box.Left {
					box.Left = x
				}
				if x > box.Right {
					box.Right = x
				}
				if y < box.Bottom {
					box.Bottom = y
				}
				if y > box.Top {
					box.Top = y
				}
			}
		}
		walk(b.Child[0])
		walk(b.Child[1])
	}
	walk(root)
	return box
}
