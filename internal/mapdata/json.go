package mapdata

import (
	"encoding/json"
	"fmt"
	"io"
)

// jsonDoc, jsonLineDef and jsonSideDef are the plain JSON document
// shapes DecodeJSON accepts (spec.md §6's builder input model: vertex
// pairs, linedefs with optional front/back sidedef indices, sidedefs,
// sectors). Kept separate from LineDef/SideDef themselves because
// LineDef.SideBack uses the -1 sentinel NoSideDef, which a bare `int`
// field can't tell apart from an omitted JSON field; jsonLineDef's
// SideBack is a pointer so an omitted or null back side decodes to
// NoSideDef. SideFront and Sector are plain ints: an omitted one
// decodes as 0.
type jsonDoc struct {
	Vertices []jsonVertex  `json:"vertices"`
	Lines    []jsonLineDef `json:"lines"`
	Sides    []jsonSideDef `json:"sides"`
	Sectors  []jsonSector  `json:"sectors"`
}

type jsonVertex struct {
	X, Y float64
}

type jsonLineDef struct {
	V1, V2    int
	SideFront int
	SideBack  *int // omitted or null means one-sided
	Flags     uint32
}

type jsonSideDef struct {
	Sector                        int
	OffsetX, OffsetY              float64
	UpperTex, LowerTex, MiddleTex string
}

type jsonSector struct {
	FloorHeight, CeilHeight float64
	LightLevel              int
	Special                 int
	Tag                     int
}

// DecodeJSON reads the stand-in map-loader document r (spec §6's
// "plain JSON document shaped exactly like the builder input model";
// the WAD/lump reader itself is an external collaborator, spec.md §1)
// into a Map ready for internal/initialhedge.Build.
func DecodeJSON(r io.Reader) (*Map, error) {
	var doc jsonDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("mapdata: decode JSON: %w", err)
	}

	m := &Map{
		Vertices: make([]Vertex, len(doc.Vertices)),
		Lines:    make([]LineDef, len(doc.Lines)),
		Sides:    make([]SideDef, len(doc.Sides)),
		Sectors:  make([]Sector, len(doc.Sectors)),
	}

	for i, v := range doc.Vertices {
		m.Vertices[i] = Vertex{X: v.X, Y: v.Y}
	}
	for i, s := range doc.Sides {
		m.Sides[i] = SideDef{
			Sector:    SectorID(s.Sector),
			OffsetX:   s.OffsetX,
			OffsetY:   s.OffsetY,
			UpperTex:  s.UpperTex,
			LowerTex:  s.LowerTex,
			MiddleTex: s.MiddleTex,
		}
	}
	for i, s := range doc.Sectors {
		m.Sectors[i] = Sector{
			FloorHeight: s.FloorHeight,
			CeilHeight:  s.CeilHeight,
			LightLevel:  s.LightLevel,
			Special:     s.Special,
			Tag:         s.Tag,
		}
	}
	for i, l := range doc.Lines {
		back := NoSideDef
		if l.SideBack != nil {
			back = SideDefID(*l.SideBack)
		}
		m.Lines[i] = LineDef{
			V1:        VertexID(l.V1),
			V2:        VertexID(l.V2),
			SideFront: SideDefID(l.SideFront),
			SideBack:  back,
			Flags:     LineFlags(l.Flags),
		}
	}

	return m, nil
}
