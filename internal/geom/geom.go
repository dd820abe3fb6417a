// Package geom holds the small set of floating-point primitives the BSP
// builder's geometric tests share: the fixed epsilons of the original
// builder and the vector helpers built on mathgl's double-precision
// vector type.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DistEpsilon is the smallest distance between two points, or a
	// point and a line, treated as "the same" by every partition test.
	DistEpsilon = 1.0 / 128.0

	// IffyLen is the length below which a partition fragment is
	// penalized as a sliver (near-miss / iffy-split cost terms).
	IffyLen = 4.0

	// AngEpsilon is the angular tolerance, in degrees, used when
	// deciding whether a half-edge is aligned with a partition
	// direction during gap detection.
	AngEpsilon = 1.0 / 1024.0

	// MergeEpsilon is the minimum separation between two intersection
	// distances along a partition before the later one is dropped as a
	// duplicate.
	MergeEpsilon = 0.2
)

// Vec2 is a position or direction in the map's 2D plane.
type Vec2 = mgl64.Vec2

// Angle returns the angle of direction d in degrees, measured
// counter-clockwise from east (0 = +X), in the half-open range
// [0, 360).
func Angle(d Vec2) float64 {
	a := math.Atan2(d.Y(), d.X()) * 180.0 / math.Pi
	if a < 0 {
		a += 360
	}
	return a
}

// Cross returns the (length-scaled, not normalized) perpendicular
// offset of point p from the infinite line through o with direction
// dir: positive on one side, negative on the other, zero on the line.
// Dividing by dir.Len() yields an actual distance in map units, which
// is what every DIST_EPSILON comparison in the builder does.
func Cross(o, dir, p Vec2) float64 {
	rx, ry := p.X()-o.X(), p.Y()-o.Y()
	return ry*dir.X() - rx*dir.Y()
}

// Along returns the (length-scaled) projection of point p onto
// direction dir, measured from origin o. Dividing by dir.Len() yields
// an actual distance along the line, in map units.
func Along(o, dir, p Vec2) float64 {
	rx, ry := p.X()-o.X(), p.Y()-o.Y()
	return rx*dir.X() + ry*dir.Y()
}

// EdgePerp computes the spec §3 "perpendicular distance from origin"
// field (p = oy*dx - ox*dy) for a half-edge whose own origin is o and
// whose direction vector is dir.
func EdgePerp(o, dir Vec2) float64 {
	return Cross(Vec2{}, dir, o)
}

// EdgeParallel computes the spec §3 "parallel distance from origin"
// field (q = -ox*dx - oy*dy) for a half-edge whose own origin is o and
// whose direction vector is dir.
func EdgeParallel(o, dir Vec2) float64 {
	return -Along(Vec2{}, dir, o)
}

// NearlyEqual reports whether a and b differ by less than DistEpsilon.
func NearlyEqual(a, b float64) bool {
	d := a - b
	return d > -DistEpsilon && d < DistEpsilon
}
