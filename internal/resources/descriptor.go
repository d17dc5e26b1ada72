package resources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/orialis/voidreach/internal/render"
)

// Registry is the declarative resource catalog, deserialized from
// resources.yaml at registry-population time.
type Registry struct {
	Textures []TextureDescriptor `yaml:"textures"`
	Cubemaps []CubemapDescriptor `yaml:"cubemaps"`
	Shaders  []ShaderDescriptor  `yaml:"shaders"`
	Models   []ModelDescriptor   `yaml:"models"`
}

// TextureDescriptor declares one texture and its variant key space.
type TextureDescriptor struct {
	Name      string   `yaml:"name"`
	Format    string   `yaml:"format"`
	Types     []string `yaml:"types"`
	Qualities []string `yaml:"qualities"`
	Mipmap    bool     `yaml:"mipmap"`
}

// CubemapDescriptor declares one cubemap by its six face files.
type CubemapDescriptor struct {
	Name  string `yaml:"name"`
	Faces struct {
		PosX string `yaml:"posx"`
		NegX string `yaml:"negx"`
		PosY string `yaml:"posy"`
		NegY string `yaml:"negy"`
		PosZ string `yaml:"posz"`
		NegZ string `yaml:"negz"`
	} `yaml:"faces"`
}

// faceList returns the faces in upload order.
func (d *CubemapDescriptor) faceList() [render.FaceCount]string {
	return [render.FaceCount]string{
		d.Faces.PosX, d.Faces.NegX,
		d.Faces.PosY, d.Faces.NegY,
		d.Faces.PosZ, d.Faces.NegZ,
	}
}

// ShaderDescriptor declares one shader program.
type ShaderDescriptor struct {
	Name       string            `yaml:"name"`
	Vertex     string            `yaml:"vertex"`
	Fragment   string            `yaml:"fragment"`
	Blend      string            `yaml:"blend"`
	Attributes map[string]string `yaml:"attributes"`
	Fallback   string            `yaml:"fallback"`
}

// ModelDescriptor declares one model and its detail-tier files.
type ModelDescriptor struct {
	Name   string `yaml:"name"`
	Format string `yaml:"format"`
	Files  []struct {
		Suffix string `yaml:"suffix"`
		MaxLOD int    `yaml:"maxlod"`
	} `yaml:"files"`
}

// ParseRegistry deserializes and validates a resource catalog.
func ParseRegistry(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parsing resource registry: %w", err)
	}
	if err := reg.validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// LoadRegistry reads and parses a resource catalog file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading resource registry: %w", err)
	}
	return ParseRegistry(data)
}

func (r *Registry) validate() error {
	for _, t := range r.Textures {
		if t.Name == "" || t.Format == "" {
			return fmt.Errorf("texture descriptor needs name and format")
		}
		if len(t.Types) == 0 || len(t.Qualities) == 0 {
			return fmt.Errorf("texture %q needs at least one type and one quality", t.Name)
		}
	}
	for _, c := range r.Cubemaps {
		if c.Name == "" {
			return fmt.Errorf("cubemap descriptor needs a name")
		}
		for _, f := range c.faceList() {
			if f == "" {
				return fmt.Errorf("cubemap %q is missing a face file", c.Name)
			}
		}
	}
	for _, s := range r.Shaders {
		if s.Name == "" || s.Vertex == "" || s.Fragment == "" {
			return fmt.Errorf("shader descriptor needs name, vertex and fragment")
		}
		if _, err := render.ParseBlendMode(s.Blend); err != nil {
			return fmt.Errorf("shader %q: %w", s.Name, err)
		}
	}
	for _, m := range r.Models {
		if m.Name == "" || m.Format == "" {
			return fmt.Errorf("model descriptor needs name and format")
		}
	}
	return nil
}

// Populate registers every declared resource with the manager.
func (m *Manager) Populate(reg *Registry) error {
	for _, d := range reg.Textures {
		m.AddTexture(NewTexture(m.fetcher, d.Name, d.Format, d.Types, d.Qualities, d.Mipmap))
	}
	for _, d := range reg.Cubemaps {
		m.AddCubemap(NewCubemap(m.fetcher, d.Name, d.faceList()))
	}
	for _, d := range reg.Shaders {
		blend, err := render.ParseBlendMode(d.Blend)
		if err != nil {
			return fmt.Errorf("shader %q: %w", d.Name, err)
		}
		m.AddShader(NewShader(m.fetcher, d.Name, d.Vertex, d.Fragment, blend, d.Attributes, d.Fallback))
	}
	for _, d := range reg.Models {
		files := make([]ModelFile, len(d.Files))
		for i, f := range d.Files {
			files[i] = ModelFile{Suffix: f.Suffix, MaxLOD: f.MaxLOD}
		}
		m.AddModel(NewModel(m.fetcher, d.Name, d.Format, files))
	}
	return nil
}
