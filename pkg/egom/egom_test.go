package egom

import (
	"testing"
)

const sampleEGM = `<?xml version="1.0" encoding="UTF-8"?>
<mesh name="falcon" scale="0.5" lod="0-2">
  <vertices>
    0 0 0
    1 0 0
    0 1 0
    0 0 1
  </vertices>
  <triangles lod="0-2">0 1 2</triangles>
  <triangles lod="1-2">0 1 3</triangles>
  <triangles lod="2">1 2 3</triangles>
  <lines lod="0">0 1</lines>
</mesh>`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sampleEGM))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	if doc.Name != "falcon" {
		t.Errorf("expected name 'falcon', got %q", doc.Name)
	}
	if doc.Scale != 0.5 {
		t.Errorf("expected scale 0.5, got %f", doc.Scale)
	}
	if doc.MinLOD != 0 || doc.MaxLOD != 2 {
		t.Errorf("expected LOD range 0-2, got %d-%d", doc.MinLOD, doc.MaxLOD)
	}
	if len(doc.Vertices.Data) != 4 {
		t.Fatalf("expected 4 vertices, got %d", len(doc.Vertices.Data))
	}
	if doc.Vertices.Data[3] != (Vertex{0, 0, 1}) {
		t.Errorf("unexpected vertex 3: %v", doc.Vertices.Data[3])
	}
	if len(doc.Triangles) != 3 {
		t.Fatalf("expected 3 triangle groups, got %d", len(doc.Triangles))
	}
	if doc.Triangles[1].MinLOD != 1 || doc.Triangles[1].MaxLOD != 2 {
		t.Errorf("unexpected group 1 LOD range: %d-%d", doc.Triangles[1].MinLOD, doc.Triangles[1].MaxLOD)
	}
	if len(doc.Lines) != 1 || len(doc.Lines[0].Index) != 2 {
		t.Errorf("unexpected lines: %+v", doc.Lines)
	}
}

func TestParseImplicitRange(t *testing.T) {
	doc, err := Parse([]byte(`<mesh name="probe">
		<vertices>0 0 0 1 1 1 2 2 2</vertices>
		<triangles lod="1-3">0 1 2</triangles>
	</mesh>`))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if doc.MinLOD != 1 || doc.MaxLOD != 3 {
		t.Errorf("expected implicit range 1-3, got %d-%d", doc.MinLOD, doc.MaxLOD)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"wrong root", `<model name="x"/>`},
		{"bad vertex count", `<mesh name="x"><vertices>0 0</vertices></mesh>`},
		{"bad float", `<mesh name="x"><vertices>a b c</vertices></mesh>`},
		{"bad lod range", `<mesh name="x" lod="3-1"><vertices>0 0 0</vertices></mesh>`},
		{"bad index", `<mesh name="x"><vertices>0 0 0</vertices><triangles lod="0">0 z 0</triangles></mesh>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("expected parse error, got nil")
			}
		})
	}
}

func TestMergeFrom(t *testing.T) {
	doc, err := Parse([]byte(sampleEGM))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	m := NewModel("")
	maxLOD, err := m.MergeFrom(doc)
	if err != nil {
		t.Fatalf("failed to merge: %v", err)
	}
	if maxLOD != 2 {
		t.Errorf("expected merge to report max LOD 2, got %d", maxLOD)
	}
	if m.Name() != "falcon" {
		t.Errorf("expected model to take document name, got %q", m.Name())
	}
	if m.Scale() != 0.5 {
		t.Errorf("expected scale 0.5, got %f", m.Scale())
	}
	if got := m.LODs(); len(got) != 3 {
		t.Fatalf("expected 3 tiers, got %v", got)
	}

	// Tier 0 carries only the group covering LOD 0 plus the line.
	mesh0 := m.MeshForLOD(0)
	if len(mesh0.Triangles) != 1 {
		t.Errorf("tier 0: expected 1 triangle, got %d", len(mesh0.Triangles))
	}
	if len(mesh0.Lines) != 1 {
		t.Errorf("tier 0: expected 1 line, got %d", len(mesh0.Lines))
	}

	// Tier 2 carries everything except the LOD-0-only line.
	mesh2 := m.MeshForLOD(2)
	if len(mesh2.Triangles) != 3 {
		t.Errorf("tier 2: expected 3 triangles, got %d", len(mesh2.Triangles))
	}
	if len(mesh2.Lines) != 0 {
		t.Errorf("tier 2: expected 0 lines, got %d", len(mesh2.Lines))
	}
}

func TestMergeAdditive(t *testing.T) {
	low, err := Parse([]byte(`<mesh name="falcon" lod="0">
		<vertices>0 0 0 1 0 0 0 1 0</vertices>
		<triangles lod="0">0 1 2</triangles>
	</mesh>`))
	if err != nil {
		t.Fatalf("failed to parse low: %v", err)
	}
	high, err := Parse([]byte(`<mesh name="falcon" lod="0-2">
		<vertices>0 0 0 1 0 0 0 1 0 0 0 1</vertices>
		<triangles lod="0-2">0 1 2 0 1 3</triangles>
	</mesh>`))
	if err != nil {
		t.Fatalf("failed to parse high: %v", err)
	}

	m := NewModel("falcon")
	if _, err := m.MergeFrom(low); err != nil {
		t.Fatalf("failed to merge low: %v", err)
	}
	if m.MaxLOD() != 0 {
		t.Errorf("expected max LOD 0 after low merge, got %d", m.MaxLOD())
	}
	tier0 := m.MeshForLOD(0)

	if _, err := m.MergeFrom(high); err != nil {
		t.Fatalf("failed to merge high: %v", err)
	}
	if m.MaxLOD() != 2 {
		t.Errorf("expected max LOD 2 after high merge, got %d", m.MaxLOD())
	}

	// The tier-0 mesh loaded first is kept, not replaced.
	if m.MeshForLOD(0) != tier0 {
		t.Error("expected existing tier 0 mesh to survive the second merge")
	}
	if got := m.MeshForLOD(2); len(got.Triangles) != 2 {
		t.Errorf("tier 2: expected 2 triangles, got %d", len(got.Triangles))
	}
}

func TestMeshForLODFallback(t *testing.T) {
	m := NewModel("x")
	if m.MeshForLOD(3) != nil {
		t.Error("expected nil mesh for empty model")
	}

	mesh := &Mesh{Vertices: []Vertex{{0, 0, 0}}}
	m.SetMesh(2, mesh)

	// Below the lowest tier: the lowest available mesh is returned.
	if m.MeshForLOD(0) != mesh {
		t.Error("expected lowest tier as fallback for too-small request")
	}
	// At or above the tier: exact match.
	if m.MeshForLOD(5) != mesh {
		t.Error("expected highest tier not exceeding request")
	}
}

func TestSyntheticModel(t *testing.T) {
	m := NewModel("debris-field")
	m.SetMesh(0, &Mesh{
		Vertices:  []Vertex{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Triangles: []Triangle{{0, 1, 2}},
	})

	if m.Name() != "debris-field" {
		t.Errorf("unexpected name %q", m.Name())
	}
	if m.MaxLOD() != 0 {
		t.Errorf("expected max LOD 0, got %d", m.MaxLOD())
	}
	if mesh := m.MeshForLOD(0); mesh == nil || len(mesh.Triangles) != 1 {
		t.Error("expected synthetic mesh to be retrievable")
	}
}
