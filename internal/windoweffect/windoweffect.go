// Package windoweffect implements the one-sided "window" authoring
// trick pre-pass (spec §4.7.3): before half-edges are minted, scan for
// one-sided linedefs with an endpoint touched by an odd number of
// one-sided linedefs (the line itself included) and by more than one
// linedef in all, then probe along the map axis perpendicular to
// the line's dominant direction to find what sector it should
// secretly back onto.
package windoweffect

import (
	"math"

	"doombsp/internal/mapdata"
)

// Result maps a one-sided linedef's index to the sector a window
// effect probe determined should back it, or mapdata.NoSector if the
// linedef is not a window.
type Result []mapdata.SectorID

// vertexOwners counts, for each vertex, how many one-sided and
// two-sided linedefs touch it (spec §4.7.3 "count one-sided neighbors
// at each vertex").
type vertexOwners struct {
	oneSided, twoSided int
}

// Prepass scans m's linedefs for the window-effect pattern and returns
// the probed target sector for each one that qualifies.
func Prepass(m *mapdata.Map) Result {
	owners := make([]vertexOwners, len(m.Vertices))
	for _, l := range m.Lines {
		if l.IsOneSided() {
			owners[l.V1].oneSided++
			owners[l.V2].oneSided++
		} else {
			owners[l.V1].twoSided++
			owners[l.V2].twoSided++
		}
	}

	result := make(Result, len(m.Lines))
	for i := range result {
		result[i] = mapdata.NoSector
	}

	for i, l := range m.Lines {
		if !l.IsOneSided() {
			continue
		}

		from := owners[l.V1]
		if from.oneSided%2 == 1 && from.oneSided+from.twoSided > 1 {
			result[i] = probe(m, i)
			continue
		}

		to := owners[l.V2]
		if to.oneSided%2 == 1 && to.oneSided+to.twoSided > 1 {
			result[i] = probe(m, i)
		}
	}

	return result
}

// probe casts a ray from the midpoint of linedef i, perpendicular to
// the line's dominant axis, and returns the sector a window-effect
// back side should adopt, or mapdata.NoSector if none was found (spec
// §4.7.3, §9 "window effect is axis-aligned only").
func probe(m *mapdata.Map, i int) mapdata.SectorID {
	const distEpsilon = 1.0 / 128.0

	l := m.Lines[i]
	v0, v1 := m.Vertices[l.V1], m.Vertices[l.V2]
	mx, my := (v0.X+v1.X)/2, (v0.Y+v1.Y)/2
	dx, dy := v1.X-v0.X, v1.Y-v0.Y
	castHoriz := math.Abs(dx) < math.Abs(dy)

	frontDist, backDist := math.MaxFloat64, math.MaxFloat64
	frontOpen, backOpen := mapdata.NoSector, mapdata.NoSector

	for j, n := range m.Lines {
		if j == i || n.IsSelfReferencing(m) {
			continue
		}
		nv0, nv1 := m.Vertices[n.V1], m.Vertices[n.V2]
		dx2, dy2 := nv1.X-nv0.X, nv1.Y-nv0.Y

		var dist float64
		var isFront bool
		var hitSide mapdata.SideDefID

		if castHoriz {
			if math.Abs(dy2) < distEpsilon {
				continue
			}
			lo, hi := math.Min(nv0.Y, nv1.Y), math.Max(nv0.Y, nv1.Y)
			if hi < my-distEpsilon || lo > my+distEpsilon {
				continue
			}
			dist = (nv0.X + (my-nv0.Y)*dx2/dy2) - mx
			isFront = (dy > 0) != (dist > 0)
			dist = math.Abs(dist)
			if dist < distEpsilon {
				continue
			}
			if xorThree(dy > 0, dy2 > 0, !isFront) {
				hitSide = n.SideBack
			} else {
				hitSide = n.SideFront
			}
		} else {
			if math.Abs(dx2) < distEpsilon {
				continue
			}
			lo, hi := math.Min(nv0.X, nv1.X), math.Max(nv0.X, nv1.X)
			if hi < mx-distEpsilon || lo > mx+distEpsilon {
				continue
			}
			dist = (nv0.Y + (mx-nv0.X)*dy2/dx2) - my
			isFront = (dx > 0) == (dist > 0)
			dist = math.Abs(dist)
			if xorThree(dx > 0, dx2 > 0, !isFront) {
				hitSide = n.SideBack
			} else {
				hitSide = n.SideFront
			}
		}
		if dist < distEpsilon {
			continue
		}

		var hitSector mapdata.SectorID = mapdata.NoSector
		if hitSide != mapdata.NoSideDef {
			hitSector = m.Sides[hitSide].Sector
		}

		if isFront {
			if dist < frontDist {
				frontDist = dist
				frontOpen = hitSector
			}
		} else if dist < backDist {
			backDist = dist
			backOpen = hitSector
		}
	}

	if backOpen != mapdata.NoSector && frontOpen != mapdata.NoSector {
		frontSector := m.Sides[l.SideFront].Sector
		if frontSector == backOpen {
			return frontOpen
		}
	}
	return mapdata.NoSector
}

func xorThree(a, b, c bool) bool {
	return a != b != c
}
