// Package partition implements the cost-heuristic partition selector
// (spec §4.3): given a SuperBlock, choose the half-edge whose infinite
// line, used as a partitioner, minimizes splits and left/right
// imbalance while penalizing near-misses and slivers.
package partition

import (
	"math"

	"doombsp/internal/geom"
	"doombsp/internal/halfedge"
	"doombsp/internal/mapdata"
	"doombsp/internal/superblock"
)

// evalInfo accumulates the running cost and left/right tallies while
// scanning a candidate partition against a SuperBlock tree (spec §4.3).
type evalInfo struct {
	cost, splits, iffy, nearMiss            int
	realLeft, realRight, miniLeft, miniRight int
}

// Pick scans every real half-edge in root (and its descendants) as a
// candidate partition, returning the lowest-cost choice, or (NoEdge,
// false) if the block is already convex (spec §4.3 "return null").
// factor tunes how strongly near-misses and iffy splits are penalized
// (spec §6 "BSP factor", default 7). pass deduplicates collinear
// candidates sharing a linedef within this one selection.
func Pick(ds *halfedge.DS, root *superblock.Block, factor int, pass *PassCounter) (halfedge.EdgeID, bool) {
	pass.Next()
	best := halfedge.NoEdge
	bestCost := math.MaxInt32
	pickWorker(ds, root, root, factor, &best, &bestCost, pass)
	return best, best != halfedge.NoEdge
}

// pickWorker recurses over partList gathering candidates, evaluating
// each against the full tree (hEdgeList), which stays fixed across the
// recursion (spec §4.3 "whole-block test").
func pickWorker(ds *halfedge.DS, partList, hEdgeList *superblock.Block, factor int, best *halfedge.EdgeID, bestCost *int, pass *PassCounter) {
	for _, h := range partList.Edges() {
		info := ds.Info(h)
		if info.LineDef == halfedge.NoLine {
			continue // mini-edges are never partition candidates
		}
		if info.Sector == mapdata.NoSector {
			continue
		}
		if !pass.MarkIfUnseen(info.LineDef) {
			continue
		}

		cost, ok := evalPartition(ds, hEdgeList, h, factor, *bestCost)
		if !ok || cost >= *bestCost {
			continue
		}
		*bestCost = cost
		*best = h
	}

	for _, child := range partList.Child {
		if child != nil {
			pickWorker(ds, child, hEdgeList, factor, best, bestCost, pass)
		}
	}
}

// evalPartition computes the full spec §4.3 cost of using part as the
// partition against the whole tree rooted at root, or reports ok=false
// if part is unsuitable (cut off early, or leaves one side empty of
// real half-edges).
func evalPartition(ds *halfedge.DS, root *superblock.Block, part halfedge.EdgeID, factor, bestCost int) (int, bool) {
	var info evalInfo
	if evalWorker(ds, root, part, factor, bestCost, &info) {
		return 0, false
	}

	if info.realLeft == 0 || info.realRight == 0 {
		return 0, false
	}

	cost := info.cost
	cost += 100 * absInt(info.realLeft-info.realRight)
	cost += 50 * absInt(info.miniLeft-info.miniRight)

	partInfo := ds.Info(part)
	if partInfo.Dir.X() != 0 && partInfo.Dir.Y() != 0 {
		cost += 25 // neither horizontal nor vertical
	}

	return cost, true
}

// evalWorker walks block (and its descendants), classifying every
// half-edge against part's infinite line and accumulating info. It
// returns true if the running cost has exceeded bestCost, letting the
// caller abandon this candidate early (spec §4.3 "early cutoff").
func evalWorker(ds *halfedge.DS, block *superblock.Block, part halfedge.EdgeID, factor, bestCost int, info *evalInfo) bool {
	partInfo := ds.Info(part)
	partOrigin := ds.Vertex(ds.Edge(part).Origin).Pos

	switch boxSide(partOrigin, partInfo.Dir, partInfo.Length, block.Bounds) {
	case -1:
		info.realLeft += block.RealNum
		info.miniLeft += block.MiniNum
		return false
	case 1:
		info.realRight += block.RealNum
		info.miniRight += block.MiniNum
		return false
	}

	for _, h := range block.Edges() {
		if info.cost > bestCost {
			return true
		}

		other := ds.Info(h)
		real := other.LineDef != halfedge.NoLine

		var a, b float64
		if other.SourceLineDef == partInfo.SourceLineDef {
			a, b = 0, 0
		} else {
			edge := ds.Edge(h)
			p0 := ds.Vertex(edge.Origin).Pos
			p1 := ds.Vertex(ds.Edge(edge.Twin).Origin).Pos
			a = geom.Cross(partOrigin, partInfo.Dir, p0) / partInfo.Length
			b = geom.Cross(partOrigin, partInfo.Dir, p1) / partInfo.Length
		}
		fa, fb := math.Abs(a), math.Abs(b)

		switch {
		case fa <= geom.DistEpsilon && fb <= geom.DistEpsilon:
			// Collinear with the partition.
			if other.Dir.Dot(partInfo.Dir) < 0 {
				addCount(&info.realLeft, &info.miniLeft, real)
			} else {
				addCount(&info.realRight, &info.miniRight, real)
			}

		case a > -geom.DistEpsilon && b > -geom.DistEpsilon:
			addCount(&info.realRight, &info.miniRight, real)
			if isNearMiss(a, b) {
				info.nearMiss++
				info.cost += int(100 * float64(factor) * (nearMissQnty(a, b) - 1.0))
			}

		case a < geom.DistEpsilon && b < geom.DistEpsilon:
			addCount(&info.realLeft, &info.miniLeft, real)
			if isNearMissLeft(a, b) {
				info.nearMiss++
				info.cost += int(70 * float64(factor) * (nearMissQntyLeft(a, b) - 1.0))
			}

		default:
			info.splits++
			info.cost += 100 * factor
			if fa < geom.IffyLen || fb < geom.IffyLen {
				info.iffy++
				qnty := geom.IffyLen / math.Min(fa, fb)
				info.cost += int(140 * float64(factor) * (qnty*qnty - 1.0))
			}
		}
	}

	for _, child := range block.Child {
		if child == nil {
			continue
		}
		if evalWorker(ds, child, part, factor, bestCost, info) {
			return true
		}
	}
	return false
}

// isNearMiss reports whether a right-side classification (a, b both
// non-negative within epsilon) is a near miss rather than a clean
// right-side placement (spec §4.3 "near-miss penalty").
func isNearMiss(a, b float64) bool {
	return !((a >= geom.IffyLen && b >= geom.IffyLen) ||
		(a <= geom.DistEpsilon && b >= geom.IffyLen) ||
		(b <= geom.DistEpsilon && a >= geom.IffyLen))
}

func nearMissQnty(a, b float64) float64 {
	var q float64
	if a <= geom.DistEpsilon || b <= geom.DistEpsilon {
		q = geom.IffyLen / math.Max(a, b)
	} else {
		q = geom.IffyLen / math.Min(a, b)
	}
	return q * q
}

// isNearMissLeft mirrors isNearMiss for the left-side classification.
func isNearMissLeft(a, b float64) bool {
	return !((a <= -geom.IffyLen && b <= -geom.IffyLen) ||
		(a >= -geom.DistEpsilon && b <= -geom.IffyLen) ||
		(b >= -geom.DistEpsilon && a <= -geom.IffyLen))
}

func nearMissQntyLeft(a, b float64) float64 {
	var q float64
	if a >= -geom.DistEpsilon || b >= -geom.DistEpsilon {
		q = geom.IffyLen / -math.Min(a, b)
	} else {
		q = geom.IffyLen / -math.Max(a, b)
	}
	return q * q
}

func addCount(real, mini *int, isReal bool) {
	if isReal {
		*real++
	} else {
		*mini++
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// boxSide reports whether block's bounds lie entirely left (-1) or
// entirely right (+1) of the infinite line through origin with
// direction dir, or straddle it (0) — spec §4.3's "whole-block test",
// the optimization that lets a SuperBlock's precomputed RealNum/
// MiniNum stand in for a full per-edge scan.
func boxSide(origin, dir geom.Vec2, length float64, box superblock.Box) int {
	corners := [4]geom.Vec2{
		{float64(box.Left), float64(box.Bottom)},
		{float64(box.Left), float64(box.Top)},
		{float64(box.Right), float64(box.Bottom)},
		{float64(box.Right), float64(box.Top)},
	}
	allLeft, allRight := true, true
	for _, c := range corners {
		d := geom.Cross(origin, dir, c) / length
		if d >= -geom.DistEpsilon {
			allLeft = false
		}
		if d <= geom.DistEpsilon {
			allRight = false
		}
	}
	switch {
	case allLeft:
		return -1
	case allRight:
		return 1
	default:
		return 0
	}
}
