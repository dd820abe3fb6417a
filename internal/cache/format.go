// Package cache implements spec §6's archived-map cache format: a
// segmented little-endian binary stream, grounded directly on
// original_source/doomsday/engine/portable/src/dam_file.c's DAM
// (Doomsday Archived Map) reader/writer — same segment tags, same
// begin/end framing, same header-version validity check, reimplemented
// without the C version's fixed-size material dictionary.
package cache

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// tag identifies a segment. Values mirror dam_file.c's damsegment_t
// exactly so the numbering carries no invented meaning.
type tag int32

const (
	tagEnd tag = -1

	tagHeader           tag = 100
	tagRelocationTables tag = 101
	tagSymbolTables     tag = 102

	tagMap        tag = 200
	tagPolyobjs   tag = 201
	tagVertexes   tag = 202
	tagLines      tag = 203
	tagSides      tag = 204
	tagSectors    tag = 205
	tagSubsectors tag = 206
	tagSegs       tag = 207
	tagNodes      tag = 208
	tagBlockmap   tag = 209
	tagReject     tag = 210
)

// Version is the current archived-map format version (dam_file.c's
// DAM_VERSION). Bump this whenever a segment's record layout changes.
const Version int32 = 1

// writer wraps an io.Writer with little-endian primitive writes and a
// sticky first error, so a long sequence of archiveX calls doesn't need
// an if err != nil after every field (mirrors dam_file.c's writeLong/
// writeFloat/writeByte, which abort the whole process on I/O failure).
type writer struct {
	w   io.Writer
	err error
}

func newWriter(w io.Writer) *writer { return &writer{w: w} }

func (w *writer) putLong(v int32) {
	if w.err != nil {
		return
	}
	w.err = binary.Write(w.w, binary.LittleEndian, v)
}

func (w *writer) putFloat(v float64) {
	// Raw 32-bit IEEE image, per spec §6 — truncates to float32 first.
	w.putLong(int32(math.Float32bits(float32(v))))
}

func (w *writer) putBytes(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

// putName writes s as an 8-byte identifier: truncated if longer than 8
// bytes, null-padded if shorter (spec §6 "8-byte identifier + null
// table", dam_file.c's archiveMaterialDict strncpy(name, 8) convention).
func (w *writer) putName(s string) {
	var buf [8]byte
	copy(buf[:], s)
	w.putBytes(buf[:])
}

func (w *writer) beginSegment(t tag) { w.putLong(int32(t)) }
func (w *writer) endSegment()        { w.putLong(int32(tagEnd)) }

type reader struct {
	r   io.Reader
	err error
}

func newReader(r io.Reader) *reader { return &reader{r: r} }

func (r *reader) getLong() int32 {
	if r.err != nil {
		return 0
	}
	var v int32
	r.err = binary.Read(r.r, binary.LittleEndian, &v)
	return v
}

func (r *reader) getFloat() float64 {
	bits := uint32(r.getLong())
	return float64(math.Float32frombits(bits))
}

func (r *reader) getName() string {
	var buf [8]byte
	if r.err == nil {
		_, r.err = io.ReadFull(r.r, buf[:])
	}
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return string(buf[:n])
}

// assertSegment fails the stream if the next tag isn't want (dam_file.c's
// assertSegment, a Con_Error in the original — here a returned error).
func (r *reader) assertSegment(want tag) {
	if r.err != nil {
		return
	}
	got := tag(r.getLong())
	if r.err != nil {
		return
	}
	if got != want {
		r.err = fmt.Errorf("cache: segment alignment check failed: got tag %d, want %d", got, want)
	}
}
