package resources

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/orialis/voidreach/internal/logger"
	"github.com/orialis/voidreach/internal/media"
	"github.com/orialis/voidreach/internal/render"
)

// ShaderResource loads a paired vertex and fragment source text. There
// is no parameterization: shaders are all-or-nothing, single variant.
// Both payloads must be present before the GPU wrapper can be built.
type ShaderResource struct {
	tracker
	fetcher Fetcher

	name         string
	vertexFile   string
	fragmentFile string
	blend        render.BlendMode
	attributes   map[string]string
	fallback     string

	mu          sync.Mutex
	vertexSrc   string
	fragmentSrc string
	managed     *render.ManagedShader
}

// NewShader declares a shader resource. fallback names a simpler
// shader the renderer may substitute when this one cannot be compiled;
// empty means none.
func NewShader(fetcher Fetcher, name, vertexFile, fragmentFile string, blend render.BlendMode, attributes map[string]string, fallback string) *ShaderResource {
	return &ShaderResource{
		fetcher:      fetcher,
		name:         name,
		vertexFile:   vertexFile,
		fragmentFile: fragmentFile,
		blend:        blend,
		attributes:   attributes,
		fallback:     fallback,
	}
}

func (s *ShaderResource) Name() string             { return s.name }
func (s *ShaderResource) Category() media.Category { return media.Shaders }

// FallbackShaderName returns the configured fallback identifier, empty
// when none is declared.
func (s *ShaderResource) FallbackShaderName() string { return s.fallback }

// RequiresReload is true only before the vertex/fragment pair has been
// requested.
func (s *ShaderResource) RequiresReload(_ *Params) bool {
	switch s.State() {
	case Unrequested, Requested:
		return true
	}
	return false
}

// RequestFiles fetches the vertex and fragment sources independently.
// Whichever completes second settles the resource.
func (s *ShaderResource) RequestFiles(_ *Params) {
	s.markRequested()
	s.begin(2)

	s.fetcher.FetchText(media.Shaders, s.vertexFile, func(text string, err error) {
		if err != nil {
			logger.Error("vertex shader fetch failed",
				zap.String("shader", s.name), zap.String("file", s.vertexFile), zap.Error(err))
		} else {
			s.mu.Lock()
			s.vertexSrc = text
			s.mu.Unlock()
		}
		s.fileDone(err)
	})

	s.fetcher.FetchText(media.Shaders, s.fragmentFile, func(text string, err error) {
		if err != nil {
			logger.Error("fragment shader fetch failed",
				zap.String("shader", s.name), zap.String("file", s.fragmentFile), zap.Error(err))
		} else {
			s.mu.Lock()
			s.fragmentSrc = text
			s.mu.Unlock()
		}
		s.fileDone(err)
	})
}

func (s *ShaderResource) WhenReady(fn func()) { s.whenReady(fn) }

// ManagedShader returns the cached GPU wrapper, built once from both
// source texts plus blend mode and attribute-role metadata. It fails
// while the resource is not ready.
func (s *ShaderResource) ManagedShader() (*render.ManagedShader, error) {
	if !s.IsReadyToUse() {
		if err := s.err(); err != nil {
			return nil, fmt.Errorf("shader %q: load failed: %w", s.name, err)
		}
		return nil, fmt.Errorf("shader %q is not ready to use (%s)", s.name, s.State())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.managed == nil {
		s.managed = render.NewManagedShader(s.name, s.vertexSrc, s.fragmentSrc, s.blend, s.attributes)
	}
	return s.managed, nil
}
