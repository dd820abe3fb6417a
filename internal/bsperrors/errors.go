// Package bsperrors defines the builder's fatal sentinel errors.
//
// Only sentinels are exported; callers branch with errors.Is. Call
// sites attach coordinates/path context with fmt.Errorf's %w, never by
// stringifying arguments into the sentinel itself — this keeps
// errors.Is matching stable regardless of the offending geometry.
package bsperrors

import "errors"

// ErrDegenerateVertex indicates a vertex with non-finite or otherwise
// invalid coordinates was encountered while constructing the half-edge
// mesh.
var ErrDegenerateVertex = errors.New("bspbuild: degenerate vertex")

// ErrZeroLengthEdge indicates a linedef (or a half-edge derived from
// one) has zero length.
var ErrZeroLengthEdge = errors.New("bspbuild: zero-length edge")

// ErrSplitOutsideSpan indicates SplitHalfEdge was asked to insert a
// vertex that is not strictly between the half-edge's endpoints.
var ErrSplitOutsideSpan = errors.New("bspbuild: split point outside half-edge span")

// ErrIntersectionNonMonotonic indicates the intersection list produced
// during a subdivision step is not sorted by non-decreasing distance,
// which can only mean the partition or the half-edge mesh is malformed.
var ErrIntersectionNonMonotonic = errors.New("bspbuild: intersection list is non-monotonic")

// ErrLeafWithoutRealEdge indicates a SuperBlock reached leaf status
// (or recursion terminated without a partition) while containing no
// linedef-backed half-edge at all.
var ErrLeafWithoutRealEdge = errors.New("bspbuild: leaf contains no real half-edge")
