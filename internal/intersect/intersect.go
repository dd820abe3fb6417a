// Package intersect holds the intersection list the divider builds
// while walking a SuperBlock against a chosen partition line: one
// record per vertex where some half-edge touches the line, kept
// sorted by signed distance along it (spec §4.4, §4.5).
package intersect

import (
	"fmt"
	"sort"

	"doombsp/internal/bsperrors"
	"doombsp/internal/halfedge"
)

// Record is one vertex lying on the current partition line, at the
// given signed distance from the partition's own origin along its
// direction (negative values lie behind the origin).
type Record struct {
	Vertex   halfedge.VertexID
	Distance float64
}

// List is a distance-ordered collection of intersections accumulated
// while dividing a single SuperBlock (spec §4.4 "cutlist").
type List struct {
	records []Record
}

// New returns an empty List.
func New() *List {
	return &List{}
}

// Reset empties the list for reuse on the next partition step.
func (l *List) Reset() {
	l.records = l.records[:0]
}

// Len reports how many intersections are currently recorded.
func (l *List) Len() int { return len(l.records) }

// At returns the i'th record in ascending distance order.
func (l *List) At(i int) Record { return l.records[i] }

// Find reports whether v already has a recorded intersection.
func (l *List) Find(v halfedge.VertexID) bool {
	for _, r := range l.records {
		if r.Vertex == v {
			return true
		}
	}
	return false
}

// Insert adds a new intersection for vertex v at distance, keeping the
// list sorted ascending by distance (spec §4.4: "the intersection list
// is kept sorted by along_dist").
func (l *List) Insert(v halfedge.VertexID, distance float64) {
	i := sort.Search(len(l.records), func(i int) bool {
		return l.records[i].Distance >= distance
	})
	l.records = append(l.records, Record{})
	copy(l.records[i+1:], l.records[i:])
	l.records[i] = Record{Vertex: v, Distance: distance}
}

// MergeOverlapping collapses intersections that lie within MergeEpsilon
// map units of their predecessor, keeping the earlier of each pair
// (spec §4.5 "merge near-duplicate intersections", 0.2 unit threshold).
// It reports ErrIntersectionNonMonotonic if a distance lies more than
// 0.1 units below the last kept one, which would indicate a defect in
// Insert's caller; a smaller backward step is merged like a duplicate.
func (l *List) MergeOverlapping(mergeEpsilon float64) error {
	if len(l.records) < 2 {
		return nil
	}
	out := l.records[:1]
	for i := 1; i < len(l.records); i++ {
		gap := l.records[i].Distance - out[len(out)-1].Distance
		if gap < -0.1 {
			return fmt.Errorf("%w: %.3f > %.3f", bsperrors.ErrIntersectionNonMonotonic,
				out[len(out)-1].Distance, l.records[i].Distance)
		}
		if gap > mergeEpsilon {
			out = append(out, l.records[i])
		}
	}
	l.records = out
	return nil
}
