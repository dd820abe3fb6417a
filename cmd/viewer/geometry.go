package main

import "doombsp/internal/cache"

// wireframe is the flat vertex buffer this demo draws: one NDC-ready
// (x, y) pair per seg endpoint, drawn with gl.LINES. Building it from a
// decoded cache.Doc is this file's only job; everything color/shader
// related lives in shader.go and main.go.
type wireframe struct {
	verts      []float32 // x, y pairs, one per line endpoint
	minX, minY float64
	maxX, maxY float64
}

// buildWireframe turns every archived seg into a line segment between
// its origin and its twin's origin (the seg's far endpoint), per the
// half-edge convention internal/cache.Flatten encodes.
func buildWireframe(doc cache.Doc) wireframe {
	w := wireframe{minX: 1e18, minY: 1e18, maxX: -1e18, maxY: -1e18}
	for _, s := range doc.Segs {
		if s.Twin < 0 || int(s.Twin) >= len(doc.Segs) {
			continue
		}
		a := doc.Vertexes[s.Origin]
		b := doc.Vertexes[doc.Segs[s.Twin].Origin]
		w.verts = append(w.verts, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y))
		w.grow(a.X, a.Y)
		w.grow(b.X, b.Y)
	}
	if len(w.verts) == 0 {
		w.minX, w.minY, w.maxX, w.maxY = -1, -1, 1, 1
	}
	return w
}

func (w *wireframe) grow(x, y float64) {
	if x < w.minX {
		w.minX = x
	}
	if x > w.maxX {
		w.maxX = x
	}
	if y < w.minY {
		w.minY = y
	}
	if y > w.maxY {
		w.maxY = y
	}
}

// lineCount returns the number of 2-vertex line segments in the buffer.
func (w *wireframe) lineCount() int32 {
	return int32(len(w.verts) / 4)
}
