// Package egom implements the EGM mesh format for Voidreach 3D models.
//
// An EGM file carries the geometry of one model for a contiguous range of
// level-of-detail tiers. A Model accumulates meshes per tier as documents
// are merged in; merged geometry is never discarded, so loads are additive.
package egom

import (
	"fmt"
	"sort"
)

// Vertex is a position in model space.
type Vertex [3]float32

// Triangle indexes three vertices of a mesh.
type Triangle [3]int

// Line indexes two vertices of a mesh.
type Line [2]int

// Mesh is the geometry of a model at one level-of-detail tier.
type Mesh struct {
	Vertices  []Vertex
	Triangles []Triangle
	Lines     []Line
}

// Empty reports whether the mesh has no primitives.
func (m *Mesh) Empty() bool {
	return len(m.Triangles) == 0 && len(m.Lines) == 0
}

// Model is a named 3D model holding one mesh per loaded LOD tier.
type Model struct {
	name   string
	scale  float32
	meshes map[int]*Mesh
}

// NewModel creates an empty model. Synthetic models built in code add
// meshes through SetMesh.
func NewModel(name string) *Model {
	return &Model{
		name:   name,
		scale:  1,
		meshes: make(map[int]*Mesh),
	}
}

// Name returns the model name.
func (m *Model) Name() string {
	return m.name
}

// SetName renames the model. Used when registering anonymous synthetic
// models under a generated name.
func (m *Model) SetName(name string) {
	m.name = name
}

// Scale returns the model's uniform scale factor.
func (m *Model) Scale() float32 {
	return m.scale
}

// SetMesh stores the mesh for one LOD tier, replacing any existing mesh
// at that tier.
func (m *Model) SetMesh(lod int, mesh *Mesh) {
	m.meshes[lod] = mesh
}

// LODs returns the tiers with loaded geometry, ascending.
func (m *Model) LODs() []int {
	lods := make([]int, 0, len(m.meshes))
	for lod := range m.meshes {
		lods = append(lods, lod)
	}
	sort.Ints(lods)
	return lods
}

// MaxLOD returns the highest loaded tier, or -1 if no geometry is loaded.
func (m *Model) MaxLOD() int {
	max := -1
	for lod := range m.meshes {
		if lod > max {
			max = lod
		}
	}
	return max
}

// MeshForLOD returns the mesh best matching the requested tier: the
// highest loaded tier not exceeding lod, or failing that the lowest
// loaded tier. Returns nil when no geometry is loaded at all.
func (m *Model) MeshForLOD(lod int) *Mesh {
	best := -1
	for tier := range m.meshes {
		if tier <= lod && tier > best {
			best = tier
		}
	}
	if best >= 0 {
		return m.meshes[best]
	}
	lowest := -1
	for tier := range m.meshes {
		if lowest < 0 || tier < lowest {
			lowest = tier
		}
	}
	if lowest < 0 {
		return nil
	}
	return m.meshes[lowest]
}

// MergeFrom merges a parsed document into the model. Every tier the
// document covers that the model does not already hold gets its mesh
// built from the document's primitive groups. Existing tiers are left
// untouched. Returns the highest tier the document covers.
func (m *Model) MergeFrom(doc *Document) (int, error) {
	if doc.MaxLOD < doc.MinLOD {
		return -1, fmt.Errorf("document %q: invalid LOD range %d-%d", doc.Name, doc.MinLOD, doc.MaxLOD)
	}
	if m.name == "" {
		m.name = doc.Name
	}
	if doc.Scale > 0 {
		m.scale = doc.Scale
	}

	for tier := doc.MinLOD; tier <= doc.MaxLOD; tier++ {
		if _, ok := m.meshes[tier]; ok {
			continue
		}
		mesh, err := doc.meshForTier(tier)
		if err != nil {
			return -1, err
		}
		m.meshes[tier] = mesh
	}
	return doc.MaxLOD, nil
}

// meshForTier extracts the mesh for one tier, keeping only primitive
// groups whose LOD range covers it.
func (d *Document) meshForTier(tier int) (*Mesh, error) {
	mesh := &Mesh{
		Vertices: make([]Vertex, len(d.Vertices.Data)),
	}
	copy(mesh.Vertices, d.Vertices.Data)

	for _, g := range d.Triangles {
		if !g.covers(tier) {
			continue
		}
		if len(g.Index)%3 != 0 {
			return nil, fmt.Errorf("document %q: triangle index count %d not divisible by 3", d.Name, len(g.Index))
		}
		for i := 0; i+2 < len(g.Index); i += 3 {
			t := Triangle{g.Index[i], g.Index[i+1], g.Index[i+2]}
			for _, idx := range t {
				if idx < 0 || idx >= len(mesh.Vertices) {
					return nil, fmt.Errorf("document %q: triangle index %d out of range", d.Name, idx)
				}
			}
			mesh.Triangles = append(mesh.Triangles, t)
		}
	}
	for _, g := range d.Lines {
		if !g.covers(tier) {
			continue
		}
		if len(g.Index)%2 != 0 {
			return nil, fmt.Errorf("document %q: line index count %d not divisible by 2", d.Name, len(g.Index))
		}
		for i := 0; i+1 < len(g.Index); i += 2 {
			l := Line{g.Index[i], g.Index[i+1]}
			for _, idx := range l {
				if idx < 0 || idx >= len(mesh.Vertices) {
					return nil, fmt.Errorf("document %q: line index %d out of range", d.Name, idx)
				}
			}
			mesh.Lines = append(mesh.Lines, l)
		}
	}
	return mesh, nil
}
