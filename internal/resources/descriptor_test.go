package resources

import (
	"strings"
	"testing"

	"github.com/orialis/voidreach/internal/media"
)

const sampleRegistry = `
textures:
  - name: plating
    format: plating_{type}_{quality}.png
    types: [diffuse, normal]
    qualities: [high, low]
    mipmap: true
cubemaps:
  - name: nebula
    faces:
      posx: nebula_px.png
      negx: nebula_nx.png
      posy: nebula_py.png
      negy: nebula_ny.png
      posz: nebula_pz.png
      negz: nebula_nz.png
shaders:
  - name: hull-pbr
    vertex: pbr.vert
    fragment: pbr.frag
    blend: opaque
    fallback: hull-basic
    attributes:
      position: aPosition
  - name: hull-basic
    vertex: basic.vert
    fragment: basic.frag
models:
  - name: fighter
    format: fighter_{suffix}.egm
    files:
      - suffix: low
        maxlod: 0
      - suffix: high
        maxlod: 2
`

func TestParseRegistry(t *testing.T) {
	reg, err := ParseRegistry([]byte(sampleRegistry))
	if err != nil {
		t.Fatalf("ParseRegistry: %v", err)
	}
	if len(reg.Textures) != 1 || len(reg.Cubemaps) != 1 || len(reg.Shaders) != 2 || len(reg.Models) != 1 {
		t.Fatalf("unexpected registry shape: %+v", reg)
	}
	if reg.Shaders[0].Fallback != "hull-basic" {
		t.Errorf("fallback = %q", reg.Shaders[0].Fallback)
	}
	if reg.Models[0].Files[1].MaxLOD != 2 {
		t.Errorf("maxlod = %d", reg.Models[0].Files[1].MaxLOD)
	}
}

func TestParseRegistryErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "{southern cross"},
		{"texture without format", "textures:\n  - name: x\n    types: [a]\n    qualities: [b]"},
		{"texture without qualities", "textures:\n  - name: x\n    format: x_{type}_{quality}.png\n    types: [a]"},
		{"cubemap missing face", "cubemaps:\n  - name: sky\n    faces:\n      posx: a.png"},
		{"shader without fragment", "shaders:\n  - name: s\n    vertex: s.vert"},
		{"shader bad blend", "shaders:\n  - name: s\n    vertex: s.vert\n    fragment: s.frag\n    blend: screendoor"},
		{"model without format", "models:\n  - name: m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRegistry([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPopulate(t *testing.T) {
	reg, err := ParseRegistry([]byte(sampleRegistry))
	if err != nil {
		t.Fatalf("ParseRegistry: %v", err)
	}

	ff := newFakeFetcher()
	m := NewManager(ff)
	if err := m.Populate(reg); err != nil {
		t.Fatalf("Populate: %v", err)
	}

	tex, err := m.Texture("plating", &Params{Types: []string{"diffuse"}, Qualities: []string{"high"}})
	if err != nil {
		t.Fatalf("Texture: %v", err)
	}
	if tex.State() != Loading {
		t.Errorf("lookup did not schedule a load, state = %s", tex.State())
	}
	if got := ff.fetchCount(media.Textures, "plating_diffuse_high.png"); got != 1 {
		t.Errorf("diffuse/high fetched %d times, want 1", got)
	}

	if _, err := m.Cubemap("nebula"); err != nil {
		t.Fatalf("Cubemap: %v", err)
	}
	if got := ff.fetchCount(media.Cubemaps, "nebula_px.png"); got != 1 {
		t.Errorf("face fetched %d times, want 1", got)
	}

	sh, err := m.Shader("hull-pbr")
	if err != nil {
		t.Fatalf("Shader: %v", err)
	}
	if sh.FallbackShaderName() != "hull-basic" {
		t.Errorf("fallback = %q", sh.FallbackShaderName())
	}

	if _, err := m.Model("fighter", LOD(1)); err != nil {
		t.Fatalf("Model: %v", err)
	}
	if got := ff.fetchCount(media.Models, "fighter_low.egm"); got != 1 {
		t.Errorf("low file fetched %d times, want 1", got)
	}
}

func TestRegistryDuplicateName(t *testing.T) {
	ff := newFakeFetcher()
	m := NewManager(ff)

	first := m.AddShader(NewShader(ff, "hull", "a.vert", "a.frag", 0, nil, ""))
	second := m.AddShader(NewShader(ff, "hull", "b.vert", "b.frag", 0, nil, ""))
	if first != second {
		t.Error("second registration under a taken name must return the original")
	}
}

func TestRegistryParseErrorMentionsShader(t *testing.T) {
	_, err := ParseRegistry([]byte("shaders:\n  - name: warp\n    vertex: w.vert\n    fragment: w.frag\n    blend: nope"))
	if err == nil || !strings.Contains(err.Error(), "warp") {
		t.Errorf("error should name the shader: %v", err)
	}
}
