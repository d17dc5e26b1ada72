package main

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/orialis/voidreach/internal/config"
	"github.com/orialis/voidreach/internal/engine/camera"
	"github.com/orialis/voidreach/internal/engine/renderer"
	"github.com/orialis/voidreach/internal/logger"
	"github.com/orialis/voidreach/internal/render"
	"github.com/orialis/voidreach/internal/resources"
)

// PreviewScreen renders the mission's ships in an orbiting camera once
// every resource has settled.
type PreviewScreen struct {
	cfg       *config.Config
	mission   *Mission
	resources *resources.Manager
	renderer  *renderer.Renderer
	camera    *camera.OrbitCamera

	// textures holds each ship's hull texture, keyed by texture
	// resource name. Bound at draw time for shaders that sample it.
	textures map[string]*render.ManagedTexture
	// uploaded marks the models Enter placed on the GPU; ships whose
	// model was skipped are not drawn.
	uploaded map[string]bool

	dragging bool
}

// NewPreviewScreen creates the preview screen. Resources must already
// be requested; Enter assumes they settled.
func NewPreviewScreen(cfg *config.Config, mission *Mission, res *resources.Manager, r *renderer.Renderer) *PreviewScreen {
	return &PreviewScreen{
		cfg:       cfg,
		mission:   mission,
		resources: res,
		renderer:  r,
		camera:    camera.NewOrbitCamera(),
		textures:  make(map[string]*render.ManagedTexture),
		uploaded:  make(map[string]bool),
	}
}

// Enter uploads every settled model and compiles the mission shader,
// degrading to the declared fallback and then renderer's builtin.
func (s *PreviewScreen) Enter() error {
	if s.mission.Shader != "" {
		if err := s.useMissionShader(); err != nil {
			logger.Warn("mission shader unavailable, using builtin",
				zap.String("shader", s.mission.Shader), zap.Error(err))
		}
	}

	if s.mission.Skybox != "" {
		s.setSkybox()
	}

	var radius float32
	drawn := 0
	for _, ship := range s.mission.Ships {
		// Resolve with the tier requestMission loaded; anything more
		// would schedule a fresh load on a settled model.
		mr, err := s.resources.Model(ship.Model, resources.LOD(shipTier(s.cfg, ship)))
		if err != nil {
			return err
		}
		model, err := mr.EgomModel()
		if err != nil {
			logger.Error("ship model unavailable, skipping",
				zap.String("model", ship.Model), zap.Error(err))
			continue
		}
		lod := min(ship.LOD, mr.MaxLoadedLOD())
		if err := s.renderer.UploadModel(ship.Model, model, lod); err != nil {
			logger.Error("model upload failed",
				zap.String("model", ship.Model), zap.Error(err))
			continue
		}
		if ship.Texture != "" {
			s.loadShipTexture(ship.Texture)
		}
		if r := s.renderer.Radius(ship.Model); r > radius {
			radius = r
		}
		s.uploaded[ship.Model] = true
		drawn++
	}
	if drawn == 0 {
		return fmt.Errorf("mission %q: no ship model could be uploaded", s.mission.Name)
	}

	s.camera.FitToRadius(radius * float32(len(s.mission.Ships)))
	logger.Info("preview ready",
		zap.String("mission", s.mission.Name), zap.Int("ships", drawn))
	return nil
}

// setSkybox hands the mission's cubemap to the renderer. A missing or
// failed skybox leaves the plain background.
func (s *PreviewScreen) setSkybox() {
	cr, err := s.resources.Cubemap(s.mission.Skybox)
	if err == nil {
		var cm *render.ManagedCubemap
		if cm, err = cr.ManagedCubemap(); err == nil {
			err = s.renderer.SetSkybox(cm)
		}
	}
	if err != nil {
		logger.Error("skybox unavailable",
			zap.String("cubemap", s.mission.Skybox), zap.Error(err))
	}
}

// loadShipTexture caches the ship's hull texture at the quality
// requestMission fetched. Failure just leaves the ship untextured.
func (s *PreviewScreen) loadShipTexture(name string) {
	if _, ok := s.textures[name]; ok {
		return
	}
	tr, err := s.resources.Texture(name, textureParams(s.cfg))
	if err != nil {
		logger.Error("ship texture unavailable",
			zap.String("texture", name), zap.Error(err))
		return
	}
	typ, quality := preferredCell(tr.Types(), tr.Qualities(), s.cfg.Graphics.TextureQualities)
	mt, err := tr.ManagedTexture(typ, quality)
	if err != nil {
		logger.Error("ship texture unavailable",
			zap.String("texture", name), zap.Error(err))
		return
	}
	s.textures[name] = mt
}

// preferredCell picks the texture variant to draw with: the first
// declared type, at the first configured quality the texture declares.
func preferredCell(types, qualities, preferred []string) (string, string) {
	typ := ""
	if len(types) > 0 {
		typ = types[0]
	}
	quality := ""
	if len(qualities) > 0 {
		quality = qualities[0]
	}
	for _, p := range preferred {
		for _, q := range qualities {
			if p == q {
				return typ, q
			}
		}
	}
	return typ, quality
}

// useMissionShader compiles the mission's shader, trying its declared
// fallback when enabled in config.
func (s *PreviewScreen) useMissionShader() error {
	sh, err := s.resources.Shader(s.mission.Shader)
	if err != nil {
		return err
	}
	managed, err := sh.ManagedShader()
	if err == nil {
		if err = s.renderer.UseShader(managed); err == nil {
			return nil
		}
	}
	if !s.cfg.Graphics.ShaderFallback {
		return err
	}

	fb, fbErr := s.resources.FallbackShader(s.mission.Shader)
	if fbErr != nil {
		return err
	}
	managed, fbErr = fb.ManagedShader()
	if fbErr != nil {
		return err
	}
	return s.renderer.UseShader(managed)
}

// Exit is called when leaving this screen.
func (s *PreviewScreen) Exit() error {
	return nil
}

// Update advances the idle orbit while the user is not dragging.
func (s *PreviewScreen) Update(dt float64) error {
	if !s.dragging {
		s.camera.Advance(dt)
	}
	return nil
}

// Render draws the ships in a row along the X axis.
func (s *PreviewScreen) Render() error {
	view := s.camera.ViewMatrix()
	proj := s.camera.ProjectionMatrix(s.renderer.Aspect())

	spacing := s.camera.Distance * 0.4
	offset := -spacing * float32(len(s.mission.Ships)-1) / 2
	for i, ship := range s.mission.Ships {
		if !s.uploaded[ship.Model] {
			continue
		}
		model := mgl32.Translate3D(offset+spacing*float32(i), 0, 0)
		err := s.renderer.DrawModel(ship.Model, proj.Mul4(view).Mul4(model), s.textures[ship.Texture])
		if err != nil {
			return err
		}
	}
	s.renderer.DrawSkybox(view, proj)
	return nil
}

// HandleInput processes SDL events for camera control.
func (s *PreviewScreen) HandleInput(event interface{}) error {
	switch ev := event.(type) {
	case *sdl.MouseButtonEvent:
		if ev.Button == sdl.BUTTON_LEFT {
			s.dragging = ev.State == sdl.PRESSED
		}
	case *sdl.MouseMotionEvent:
		if s.dragging {
			s.camera.HandleDrag(float32(ev.XRel), float32(ev.YRel))
		}
	case *sdl.MouseWheelEvent:
		s.camera.HandleZoom(float32(ev.Y))
	}
	return nil
}
