package cache

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"doombsp/internal/bspbuild"
	"doombsp/internal/halfedge"
	"doombsp/internal/mapdata"
	"doombsp/internal/superblock"
)

// Vertex, LineRec, SideRec, SectorRec, SegRec, SubsectorRec and NodeRec
// are the flat, on-disk record shapes for each Map sub-segment (spec
// §6's "fixed field order"). They carry no behavior of their own; Doc
// is the complete decoded (or pre-encode) document, so Decode(Encode(x))
// round-trips through the same Go values that produced the bytes.
type Vertex struct {
	X, Y float64
}

type LineRec struct {
	Flags               uint32
	SideFront, SideBack  int32 // -1 for absent, matching mapdata.NoSideDef
}

type SideRec struct {
	Sector                       int32
	OffsetX, OffsetY              float64
	UpperTex, LowerTex, MiddleTex int32 // index into Doc.TextureDict, -1 if empty
}

type SectorRec struct {
	FloorHeight, CeilHeight float64
	LightLevel, Special, Tag int32

	// Unclosed is 1 when the gap connector found this sector open on
	// only one side of some partition somewhere in the tree (spec
	// §4.5/§6 "flagged UNCLOSED in the output"), the replacement for
	// the original's sector.unclosed bit.
	Unclosed int32
}

// SegRec is one archived half-edge: spec §6's "origin vertex index,
// twin index, next index, prev index, face index (or -1), sidedef
// index (or -1 for mini-edges), length, offset-along-linedef, angle".
// This builder has no separate sidedef-per-halfedge field, so the
// record carries the linedef index and the sector in its place; the
// half-edge's front/back side bit is not archived.
type SegRec struct {
	Origin, Twin, Next, Prev, Face int32
	LineDef                        int32 // -1 for a mini-edge
	Sector                         int32
	Length, Offset, Angle          float64
}

// SubsectorRec is one archived Face: just its boundary seg index, per
// spec §6 "each referring to one boundary half-edge".
type SubsectorRec struct {
	Boundary int32
}

// NodeRec is one archived BSP node: partition point+direction, both
// children's bounding boxes, and the two child references. A child
// reference >= 0 names another NodeRec index; a negative reference
// names subsector index ^ref (bitwise complement, so subsector 0 still
// encodes as -1, never 0 — this builder's analogue of the classic
// "NF_SUBSECTOR high bit" convention, without a fixed bit width).
type NodeRec struct {
	PartX, PartY   float64
	DirX, DirY     float64
	RightBBox      [4]int32 // left, bottom, right, top
	LeftBBox       [4]int32
	Right, Left    int32
}

// Doc is the complete archived map: the authored input tables plus the
// builder's output tables, exactly as spec §6 lists them (minus
// Polyobjs/Blockmap/Reject, whose producers are external collaborators
// — spec §1 — so Doc has no fields for them and Encode writes each as
// an empty segment).
type Doc struct {
	TextureDict []string

	Lines      []LineRec
	Sides      []SideRec
	Sectors    []SectorRec
	Vertexes   []Vertex
	Subsectors []SubsectorRec
	Segs       []SegRec
	Nodes      []NodeRec

	// RootRef is the tree root, in the same node-index-or-^subsector
	// encoding as a NodeRec's Right/Left field. A tree that is a single
	// leaf (spec §8 scenario S1) has zero Nodes and RootRef < 0.
	RootRef int32
}

// Flatten builds a Doc from the authored map and the finished builder
// output, ready for Encode. The node tree is flattened pre-order: a
// node's own record is appended before either child is visited, giving
// the classic "root is record 0" layout and a deterministic record
// order for a given tree shape.
func Flatten(m *mapdata.Map, ds *halfedge.DS, tree *bspbuild.Tree) Doc {
	doc := Doc{}
	doc.TextureDict = buildTextureDict(m)
	dict := textureIndex(doc.TextureDict)

	doc.Lines = make([]LineRec, len(m.Lines))
	for i, l := range m.Lines {
		doc.Lines[i] = LineRec{
			Flags:     uint32(l.Flags),
			SideFront: sideIndex(l.SideFront),
			SideBack:  sideIndex(l.SideBack),
		}
	}

	doc.Sides = make([]SideRec, len(m.Sides))
	for i, s := range m.Sides {
		doc.Sides[i] = SideRec{
			Sector:    int32(s.Sector),
			OffsetX:   s.OffsetX,
			OffsetY:   s.OffsetY,
			UpperTex:  dict[s.UpperTex],
			LowerTex:  dict[s.LowerTex],
			MiddleTex: dict[s.MiddleTex],
		}
	}

	unclosed := make(map[mapdata.SectorID]bool, len(tree.Unclosed))
	for _, s := range tree.Unclosed {
		unclosed[s] = true
	}

	doc.Sectors = make([]SectorRec, len(m.Sectors))
	for i, s := range m.Sectors {
		var flag int32
		if unclosed[mapdata.SectorID(i)] {
			flag = 1
		}
		doc.Sectors[i] = SectorRec{
			FloorHeight: s.FloorHeight,
			CeilHeight:  s.CeilHeight,
			LightLevel:  int32(s.LightLevel),
			Special:     int32(s.Special),
			Tag:         int32(s.Tag),
			Unclosed:    flag,
		}
	}

	doc.Vertexes = make([]Vertex, ds.NumVertices())
	for v := 0; v < ds.NumVertices(); v++ {
		pos := ds.Vertex(halfedge.VertexID(v)).Pos
		doc.Vertexes[v] = Vertex{X: pos.X(), Y: pos.Y()}
	}

	doc.Segs = make([]SegRec, ds.NumEdges())
	for h := 0; h < ds.NumEdges(); h++ {
		e := ds.Edge(halfedge.EdgeID(h))
		info := ds.Info(halfedge.EdgeID(h))
		doc.Segs[h] = SegRec{
			Origin:  int32(e.Origin),
			Twin:    int32(e.Twin),
			Next:    int32(e.Next),
			Prev:    int32(e.Prev),
			Face:    faceIndex(e.Face),
			LineDef: int32(info.LineDef),
			Sector:  int32(info.Sector),
			Length:  info.Length,
			Offset:  lineDefOffset(ds, m, info, e.Origin),
			Angle:   info.AngleDeg,
		}
	}

	faceToSubsector := make(map[halfedge.FaceID]int32, ds.NumFaces())
	doc.Subsectors = make([]SubsectorRec, 0, ds.NumFaces())
	doc.RootRef = flattenNode(ds, tree.Root, &doc, faceToSubsector)

	return doc
}

// flattenNode appends tree from ref into doc.Nodes pre-order, returning
// a reference usable from a parent NodeRec's Right/Left field (a node
// index if ref is interior, or ^subsector-index if ref is a leaf).
func flattenNode(ds *halfedge.DS, ref bspbuild.ChildRef, doc *Doc, faceToSubsector map[halfedge.FaceID]int32) int32 {
	if ref.IsLeaf() {
		if idx, ok := faceToSubsector[ref.Face]; ok {
			return ^idx
		}
		idx := int32(len(doc.Subsectors))
		doc.Subsectors = append(doc.Subsectors, SubsectorRec{Boundary: int32(ds.Face(ref.Face).Boundary)})
		faceToSubsector[ref.Face] = idx
		return ^idx
	}

	myIdx := int32(len(doc.Nodes))
	doc.Nodes = append(doc.Nodes, NodeRec{}) // reserve the slot
	right := flattenNode(ds, ref.Node.Right, doc, faceToSubsector)
	left := flattenNode(ds, ref.Node.Left, doc, faceToSubsector)

	n := ref.Node
	doc.Nodes[myIdx] = NodeRec{
		PartX: n.Partition.X(), PartY: n.Partition.Y(),
		DirX: n.Dir.X(), DirY: n.Dir.Y(),
		RightBBox: boxArray(n.RightBounds),
		LeftBBox:  boxArray(n.LeftBounds),
		Right:     right,
		Left:      left,
	}
	return myIdx
}

// boxArray flattens a superblock.Box into [left, bottom, right, top],
// the archived record order.
func boxArray(b superblock.Box) [4]int32 {
	return [4]int32{int32(b.Left), int32(b.Bottom), int32(b.Right), int32(b.Top)}
}

// lineDefOffset approximates spec §6's "offset-along-linedef": the
// distance from this half-edge's origin back to its source linedef's
// authored start vertex. Mini-edges (info.LineDef == NoLine) carry 0,
// even though they inherit the partition's SourceLineDef.
func lineDefOffset(ds *halfedge.DS, m *mapdata.Map, info *halfedge.EdgeInfo, origin halfedge.VertexID) float64 {
	if info.LineDef == halfedge.NoLine {
		return 0
	}
	start := ds.Vertex(halfedge.VertexID(m.Lines[info.SourceLineDef].V1)).Pos
	here := ds.Vertex(origin).Pos
	return math.Hypot(here.X()-start.X(), here.Y()-start.Y())
}

func sideIndex(s mapdata.SideDefID) int32 {
	if s == mapdata.NoSideDef {
		return -1
	}
	return int32(s)
}

func faceIndex(f halfedge.FaceID) int32 {
	if f == halfedge.NoFace {
		return -1
	}
	return int32(f)
}

func buildTextureDict(m *mapdata.Map) []string {
	seen := map[string]bool{}
	for _, s := range m.Sides {
		for _, name := range [...]string{s.UpperTex, s.LowerTex, s.MiddleTex} {
			if name != "" {
				seen[name] = true
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func textureIndex(dict []string) map[string]int32 {
	idx := make(map[string]int32, len(dict)+1)
	idx[""] = -1
	for i, name := range dict {
		idx[name] = int32(i)
	}
	return idx
}

// Encode writes doc as a complete archived-map stream (spec §6): a
// Header, empty Relocation Tables, a Symbol Tables segment holding the
// texture dictionary, and the Map segment with its ten nested
// sub-segments in dam_file.c's archiveMap order. Polyobjs, Blockmap and
// Reject are always written as empty (count=0) segments — their
// producers are external collaborators, but the framing itself is part
// of this format, so a consumer can always skip over them uniformly.
func Encode(w io.Writer, doc Doc) error {
	out := newWriter(w)

	out.beginSegment(tagHeader)
	out.putLong(Version)
	out.endSegment()

	out.beginSegment(tagRelocationTables)
	out.endSegment()

	out.beginSegment(tagSymbolTables)
	out.putLong(int32(len(doc.TextureDict)))
	for _, name := range doc.TextureDict {
		out.putName(name)
	}
	out.endSegment()

	out.beginSegment(tagMap)

	out.beginSegment(tagPolyobjs)
	out.putLong(0)
	out.endSegment()

	out.beginSegment(tagVertexes)
	out.putLong(int32(len(doc.Vertexes)))
	for _, v := range doc.Vertexes {
		out.putFloat(v.X)
		out.putFloat(v.Y)
	}
	out.endSegment()

	out.beginSegment(tagLines)
	out.putLong(int32(len(doc.Lines)))
	for _, l := range doc.Lines {
		out.putLong(int32(l.Flags))
		out.putLong(l.SideFront)
		out.putLong(l.SideBack)
	}
	out.endSegment()

	out.beginSegment(tagSides)
	out.putLong(int32(len(doc.Sides)))
	for _, s := range doc.Sides {
		out.putLong(s.Sector)
		out.putFloat(s.OffsetX)
		out.putFloat(s.OffsetY)
		out.putLong(s.UpperTex)
		out.putLong(s.LowerTex)
		out.putLong(s.MiddleTex)
	}
	out.endSegment()

	out.beginSegment(tagSectors)
	out.putLong(int32(len(doc.Sectors)))
	for _, s := range doc.Sectors {
		out.putFloat(s.FloorHeight)
		out.putFloat(s.CeilHeight)
		out.putLong(s.LightLevel)
		out.putLong(s.Special)
		out.putLong(s.Tag)
		out.putLong(s.Unclosed)
	}
	out.endSegment()

	out.beginSegment(tagSubsectors)
	out.putLong(int32(len(doc.Subsectors)))
	for _, s := range doc.Subsectors {
		out.putLong(s.Boundary)
	}
	out.endSegment()

	out.beginSegment(tagSegs)
	out.putLong(int32(len(doc.Segs)))
	for _, s := range doc.Segs {
		out.putLong(s.Origin)
		out.putLong(s.Twin)
		out.putLong(s.Next)
		out.putLong(s.Prev)
		out.putLong(s.Face)
		out.putLong(s.LineDef)
		out.putLong(s.Sector)
		out.putFloat(s.Length)
		out.putFloat(s.Offset)
		out.putFloat(s.Angle)
	}
	out.endSegment()

	out.beginSegment(tagNodes)
	out.putLong(doc.RootRef)
	out.putLong(int32(len(doc.Nodes)))
	for _, n := range doc.Nodes {
		out.putFloat(n.PartX)
		out.putFloat(n.PartY)
		out.putFloat(n.DirX)
		out.putFloat(n.DirY)
		for _, v := range n.RightBBox {
			out.putLong(v)
		}
		for _, v := range n.LeftBBox {
			out.putLong(v)
		}
		out.putLong(n.Right)
		out.putLong(n.Left)
	}
	out.endSegment()

	out.beginSegment(tagBlockmap)
	out.putLong(0)
	out.endSegment()

	out.beginSegment(tagReject)
	out.putLong(0)
	out.endSegment()

	out.endSegment() // ends tagMap

	return out.err
}

// Decode reads back exactly what Encode writes, segment by segment,
// failing on any tag mismatch (dam_file.c's assertSegment).
func Decode(r io.Reader) (Doc, error) {
	in := newReader(r)
	var doc Doc

	in.assertSegment(tagHeader)
	version := in.getLong()
	in.assertSegment(tagEnd)
	if in.err == nil && version != Version {
		return doc, fmt.Errorf("cache: unsupported archive version %d (want %d)", version, Version)
	}

	in.assertSegment(tagRelocationTables)
	in.assertSegment(tagEnd)

	in.assertSegment(tagSymbolTables)
	nNames := in.getLong()
	doc.TextureDict = make([]string, nNames)
	for i := range doc.TextureDict {
		doc.TextureDict[i] = in.getName()
	}
	in.assertSegment(tagEnd)

	in.assertSegment(tagMap)

	in.assertSegment(tagPolyobjs)
	in.getLong()
	in.assertSegment(tagEnd)

	in.assertSegment(tagVertexes)
	n := in.getLong()
	doc.Vertexes = make([]Vertex, n)
	for i := range doc.Vertexes {
		doc.Vertexes[i] = Vertex{X: in.getFloat(), Y: in.getFloat()}
	}
	in.assertSegment(tagEnd)

	in.assertSegment(tagLines)
	n = in.getLong()
	doc.Lines = make([]LineRec, n)
	for i := range doc.Lines {
		doc.Lines[i] = LineRec{
			Flags:     uint32(in.getLong()),
			SideFront: in.getLong(),
			SideBack:  in.getLong(),
		}
	}
	in.assertSegment(tagEnd)

	in.assertSegment(tagSides)
	n = in.getLong()
	doc.Sides = make([]SideRec, n)
	for i := range doc.Sides {
		doc.Sides[i] = SideRec{
			Sector:    in.getLong(),
			OffsetX:   in.getFloat(),
			OffsetY:   in.getFloat(),
			UpperTex:  in.getLong(),
			LowerTex:  in.getLong(),
			MiddleTex: in.getLong(),
		}
	}
	in.assertSegment(tagEnd)

	in.assertSegment(tagSectors)
	n = in.getLong()
	doc.Sectors = make([]SectorRec, n)
	for i := range doc.Sectors {
		doc.Sectors[i] = SectorRec{
			FloorHeight: in.getFloat(),
			CeilHeight:  in.getFloat(),
			LightLevel:  in.getLong(),
			Special:     in.getLong(),
			Tag:         in.getLong(),
			Unclosed:    in.getLong(),
		}
	}
	in.assertSegment(tagEnd)

	in.assertSegment(tagSubsectors)
	n = in.getLong()
	doc.Subsectors = make([]SubsectorRec, n)
	for i := range doc.Subsectors {
		doc.Subsectors[i] = SubsectorRec{Boundary: in.getLong()}
	}
	in.assertSegment(tagEnd)

	in.assertSegment(tagSegs)
	n = in.getLong()
	doc.Segs = make([]SegRec, n)
	for i := range doc.Segs {
		doc.Segs[i] = SegRec{
			Origin: in.getLong(), Twin: in.getLong(), Next: in.getLong(), Prev: in.getLong(),
			Face: in.getLong(), LineDef: in.getLong(), Sector: in.getLong(),
			Length: in.getFloat(), Offset: in.getFloat(), Angle: in.getFloat(),
		}
	}
	in.assertSegment(tagEnd)

	in.assertSegment(tagNodes)
	doc.RootRef = in.getLong()
	n = in.getLong()
	doc.Nodes = make([]NodeRec, n)
	for i := range doc.Nodes {
		rec := NodeRec{PartX: in.getFloat(), PartY: in.getFloat(), DirX: in.getFloat(), DirY: in.getFloat()}
		for j := range rec.RightBBox {
			rec.RightBBox[j] = in.getLong()
		}
		for j := range rec.LeftBBox {
			rec.LeftBBox[j] = in.getLong()
		}
		rec.Right = in.getLong()
		rec.Left = in.getLong()
		doc.Nodes[i] = rec
	}
	in.assertSegment(tagEnd)

	in.assertSegment(tagBlockmap)
	in.getLong()
	in.assertSegment(tagEnd)

	in.assertSegment(tagReject)
	in.getLong()
	in.assertSegment(tagEnd)

	in.assertSegment(tagEnd) // ends tagMap

	return doc, in.err
}

// IsValid reports whether the cache at cachePath is current for
// sourcePath: its modification time must not be older than the
// source's, and its header version must match Version (spec §6,
// dam_file.c's DAM_MapIsValid).
func IsValid(cachePath, sourcePath string) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return false
	}
	if cacheInfo.ModTime().Before(sourceInfo.ModTime()) {
		return false
	}

	f, err := os.Open(cachePath)
	if err != nil {
		return false
	}
	defer f.Close()

	in := newReader(f)
	in.assertSegment(tagHeader)
	version := in.getLong()
	if in.err != nil {
		return false
	}
	return version == Version
}
