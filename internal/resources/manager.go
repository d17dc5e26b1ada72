package resources

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/orialis/voidreach/internal/media"
	"github.com/orialis/voidreach/pkg/egom"
)

// Manager is the typed facade over the resource registry. It owns one
// named registry per category, schedules loads on lookup and provides
// the whole-registry readiness join used to gate rendering startup.
type Manager struct {
	fetcher Fetcher

	mu       sync.Mutex
	registry map[media.Category]map[string]Resource
	pending  []func()
}

// NewManager creates an empty manager fetching through f.
func NewManager(f Fetcher) *Manager {
	return &Manager{
		fetcher: f,
		registry: map[media.Category]map[string]Resource{
			media.Textures: {},
			media.Cubemaps: {},
			media.Shaders:  {},
			media.Models:   {},
		},
	}
}

// Fetcher returns the fetch capability resources are built around.
func (m *Manager) Fetcher() Fetcher { return m.fetcher }

// add registers a resource and hooks its settlements into the
// whole-registry join. It returns the already registered resource when
// the name is taken.
func (m *Manager) add(r Resource) Resource {
	m.mu.Lock()
	if existing, ok := m.registry[r.Category()][r.Name()]; ok {
		m.mu.Unlock()
		return existing
	}
	m.registry[r.Category()][r.Name()] = r
	m.mu.Unlock()

	r.notifySettle(m.recheck)
	return r
}

// AddTexture registers a texture resource.
func (m *Manager) AddTexture(r *TextureResource) *TextureResource {
	return m.add(r).(*TextureResource)
}

// AddCubemap registers a cubemap resource.
func (m *Manager) AddCubemap(r *CubemapResource) *CubemapResource {
	return m.add(r).(*CubemapResource)
}

// AddShader registers a shader resource.
func (m *Manager) AddShader(r *ShaderResource) *ShaderResource {
	return m.add(r).(*ShaderResource)
}

// AddModel registers a model resource.
func (m *Manager) AddModel(r *ModelResource) *ModelResource {
	return m.add(r).(*ModelResource)
}

// lookup finds a registered resource without scheduling a load.
func (m *Manager) lookup(category media.Category, name string) Resource {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry[category][name]
}

// resolve is the get-or-schedule-load operation: it finds the named
// resource and, when the request is not covered by loaded data or
// in-flight fetches, issues the missing fetches.
func (m *Manager) resolve(category media.Category, name string, params *Params) (Resource, error) {
	r := m.lookup(category, name)
	if r == nil {
		return nil, fmt.Errorf("no %s resource named %q", category, name)
	}
	if r.RequiresReload(params) {
		r.RequestFiles(params)
	}
	return r, nil
}

// Texture returns the named texture, scheduling loads for any
// requested variant cells not yet covered.
func (m *Manager) Texture(name string, params *Params) (*TextureResource, error) {
	r, err := m.resolve(media.Textures, name, params)
	if err != nil {
		return nil, err
	}
	return r.(*TextureResource), nil
}

// Cubemap returns the named cubemap, scheduling its face batch on
// first lookup.
func (m *Manager) Cubemap(name string) (*CubemapResource, error) {
	r, err := m.resolve(media.Cubemaps, name, nil)
	if err != nil {
		return nil, err
	}
	return r.(*CubemapResource), nil
}

// Shader returns the named shader, scheduling its source pair on first
// lookup.
func (m *Manager) Shader(name string) (*ShaderResource, error) {
	r, err := m.resolve(media.Shaders, name, nil)
	if err != nil {
		return nil, err
	}
	return r.(*ShaderResource), nil
}

// Model returns the named model, scheduling a geometry fetch when the
// requested detail tier exceeds what is loaded.
func (m *Manager) Model(name string, params *Params) (*ModelResource, error) {
	r, err := m.resolve(media.Models, name, params)
	if err != nil {
		return nil, err
	}
	return r.(*ModelResource), nil
}

// FallbackShader resolves the shader to substitute for name when the
// primary is unsupported: the shader's declared fallback if it
// resolves, otherwise name's own shader. One level of indirection, not
// a chain.
func (m *Manager) FallbackShader(name string) (*ShaderResource, error) {
	if r, ok := m.lookup(media.Shaders, name).(*ShaderResource); ok {
		if fb := r.FallbackShaderName(); fb != "" {
			if s, err := m.Shader(fb); err == nil {
				return s, nil
			}
		}
	}
	return m.Shader(name)
}

// GetOrAddModel registers a runtime-synthesized model under its own
// name, generating one for anonymous models. Registration is
// idempotent: an already registered name returns the existing
// resource.
func (m *Manager) GetOrAddModel(model *egom.Model) *ModelResource {
	if model.Name() == "" {
		model.SetName(uuid.NewString())
	}
	if r, ok := m.lookup(media.Models, model.Name()).(*ModelResource); ok {
		return r
	}
	return m.AddModel(NewSyntheticModel(model))
}

// ExecuteWhenReady runs fn once every resource that has been requested
// anywhere in the registry has settled. If nothing is outstanding, fn
// runs immediately. Resources requested after registration are folded
// into the join: fn waits for them too.
func (m *Manager) ExecuteWhenReady(fn func()) {
	m.mu.Lock()
	if m.allSettledLocked() {
		m.mu.Unlock()
		fn()
		return
	}
	m.pending = append(m.pending, fn)
	m.mu.Unlock()
}

// Progress reports how many requested resources have settled, for
// loading screens. total counts every resource touched by a request so
// far, done the settled ones.
func (m *Manager) Progress() (done, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, category := range m.registry {
		for _, r := range category {
			switch r.State() {
			case Ready, Failed:
				done++
				total++
			case Requested, Loading:
				total++
			}
		}
	}
	return done, total
}

// allSettledLocked reports whether no requested resource is still
// outstanding. Callers hold m.mu.
func (m *Manager) allSettledLocked() bool {
	for _, category := range m.registry {
		for _, r := range category {
			switch r.State() {
			case Requested, Loading:
				return false
			}
		}
	}
	return true
}

// recheck drains the pending whole-registry joins once nothing is
// outstanding. Every resource settlement lands here.
func (m *Manager) recheck() {
	m.mu.Lock()
	if len(m.pending) == 0 || !m.allSettledLocked() {
		m.mu.Unlock()
		return
	}
	drained := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, fn := range drained {
		fn()
	}
}
