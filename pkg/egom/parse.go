package egom

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parse errors.
var (
	ErrNotEgom = errors.New("not an EGM document: missing <mesh> root")
)

// Document is one parsed EGM file: vertices plus primitive groups, each
// tagged with the LOD range it applies to.
type Document struct {
	Name   string
	Scale  float32
	MinLOD int
	MaxLOD int

	Vertices  VertexArray
	Triangles []PrimitiveGroup
	Lines     []PrimitiveGroup
}

// VertexArray holds the document's vertex positions, parsed from a
// whitespace-separated float list.
type VertexArray struct {
	Data []Vertex
}

// UnmarshalXML parses the vertex float list.
func (v *VertexArray) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var raw string
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	fields := strings.Fields(raw)
	if len(fields)%3 != 0 {
		return fmt.Errorf("vertex float count %d not divisible by 3", len(fields))
	}
	v.Data = make([]Vertex, 0, len(fields)/3)
	for i := 0; i+2 < len(fields); i += 3 {
		var vert Vertex
		for j := 0; j < 3; j++ {
			f, err := strconv.ParseFloat(fields[i+j], 32)
			if err != nil {
				return fmt.Errorf("vertex component %q: %w", fields[i+j], err)
			}
			vert[j] = float32(f)
		}
		v.Data = append(v.Data, vert)
	}
	return nil
}

// PrimitiveGroup is a list of vertex indices valid for a LOD range.
type PrimitiveGroup struct {
	MinLOD int
	MaxLOD int
	Index  []int
}

func (g *PrimitiveGroup) covers(tier int) bool {
	return tier >= g.MinLOD && tier <= g.MaxLOD
}

// UnmarshalXML parses the lod attribute and the index list.
func (g *PrimitiveGroup) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "lod" {
			min, max, err := parseLODRange(attr.Value)
			if err != nil {
				return err
			}
			g.MinLOD, g.MaxLOD = min, max
		}
	}
	var raw string
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	for _, f := range strings.Fields(raw) {
		n, err := strconv.Atoi(f)
		if err != nil {
			return fmt.Errorf("primitive index %q: %w", f, err)
		}
		g.Index = append(g.Index, n)
	}
	return nil
}

// parseLODRange parses "2" or "0-3" into a min/max pair.
func parseLODRange(s string) (int, int, error) {
	if min, max, ok := strings.Cut(s, "-"); ok {
		lo, err := strconv.Atoi(strings.TrimSpace(min))
		if err != nil {
			return 0, 0, fmt.Errorf("lod range %q: %w", s, err)
		}
		hi, err := strconv.Atoi(strings.TrimSpace(max))
		if err != nil {
			return 0, 0, fmt.Errorf("lod range %q: %w", s, err)
		}
		if hi < lo {
			return 0, 0, fmt.Errorf("lod range %q: max below min", s)
		}
		return lo, hi, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("lod %q: %w", s, err)
	}
	return n, n, nil
}

// xmlDocument mirrors the on-disk element layout.
type xmlDocument struct {
	XMLName   xml.Name         `xml:"mesh"`
	Name      string           `xml:"name,attr"`
	Scale     string           `xml:"scale,attr"`
	LOD       string           `xml:"lod,attr"`
	Vertices  VertexArray      `xml:"vertices"`
	Triangles []PrimitiveGroup `xml:"triangles"`
	Lines     []PrimitiveGroup `xml:"lines"`
}

// Parse parses an EGM document from raw XML bytes.
func Parse(data []byte) (*Document, error) {
	var xd xmlDocument
	if err := xml.Unmarshal(data, &xd); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNotEgom
		}
		return nil, err
	}
	if xd.XMLName.Local != "mesh" {
		return nil, ErrNotEgom
	}

	doc := &Document{
		Name:      xd.Name,
		Scale:     1,
		Vertices:  xd.Vertices,
		Triangles: xd.Triangles,
		Lines:     xd.Lines,
	}

	if xd.Scale != "" {
		f, err := strconv.ParseFloat(xd.Scale, 32)
		if err != nil {
			return nil, fmt.Errorf("scale %q: %w", xd.Scale, err)
		}
		doc.Scale = float32(f)
	}

	if xd.LOD != "" {
		min, max, err := parseLODRange(xd.LOD)
		if err != nil {
			return nil, err
		}
		doc.MinLOD, doc.MaxLOD = min, max
	} else {
		// Without an explicit range the document covers exactly the
		// tiers its primitive groups mention.
		doc.MinLOD, doc.MaxLOD = groupRange(xd.Triangles, xd.Lines)
	}

	return doc, nil
}

// groupRange finds the LOD range spanned by the primitive groups.
func groupRange(groups ...[]PrimitiveGroup) (int, int) {
	min, max := 0, 0
	first := true
	for _, gs := range groups {
		for _, g := range gs {
			if first || g.MinLOD < min {
				min = g.MinLOD
			}
			if first || g.MaxLOD > max {
				max = g.MaxLOD
			}
			first = false
		}
	}
	return min, max
}
