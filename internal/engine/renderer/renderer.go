// Package renderer provides OpenGL rendering for model previews.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/orialis/voidreach/internal/engine/renderer/shaders"
	"github.com/orialis/voidreach/internal/logger"
	"github.com/orialis/voidreach/internal/render"
	"github.com/orialis/voidreach/pkg/egom"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// meshBuffers is one uploaded mesh: a shared vertex buffer plus
// separate index buffers for filled triangles and outline lines.
type meshBuffers struct {
	vao           uint32
	vbo           uint32
	triangleEBO   uint32
	lineEBO       uint32
	triangleCount int32
	lineCount     int32
	radius        float32
}

// Renderer draws uploaded models with a managed shader, falling back
// to a built-in untextured shader when the configured one cannot be
// compiled.
type Renderer struct {
	config Config

	active   *render.ManagedShader
	fallback *render.ManagedShader

	meshes map[string]*meshBuffers
	sky    *skyboxBuffers
}

// skyboxBuffers is the unit cube and dedicated shader the skybox
// cubemap is drawn with.
type skyboxBuffers struct {
	vao     uint32
	vbo     uint32
	shader  *render.ManagedShader
	cubemap *render.ManagedCubemap
}

// New creates a renderer. Must be called after the OpenGL context
// exists.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		meshes: make(map[string]*meshBuffers),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.02, 0.02, 0.05, 1.0) // deep-space background

	r.fallback = render.NewManagedShader("builtin-basic",
		shaders.BasicVertexShader, shaders.BasicFragmentShader,
		render.BlendOpaque, nil)
	if err := r.fallback.Compile(); err != nil {
		return nil, fmt.Errorf("compiling builtin shader: %w", err)
	}
	r.active = r.fallback

	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

// Close releases all GL objects.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	for name, m := range r.meshes {
		releaseMesh(m)
		delete(r.meshes, name)
	}
	if r.active != nil && r.active != r.fallback {
		r.active.Release()
	}
	if r.fallback != nil {
		r.fallback.Release()
	}
	if r.sky != nil {
		gl.DeleteVertexArrays(1, &r.sky.vao)
		gl.DeleteBuffers(1, &r.sky.vbo)
		r.sky.shader.Release()
		if r.sky.cubemap != nil {
			r.sky.cubemap.Release()
		}
		r.sky = nil
	}
}

func releaseMesh(m *meshBuffers) {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.triangleEBO != 0 {
		gl.DeleteBuffers(1, &m.triangleEBO)
	}
	if m.lineEBO != 0 {
		gl.DeleteBuffers(1, &m.lineEBO)
	}
}

// UseShader makes a managed shader the active program, compiling it on
// first use. A shader that fails to compile is logged and the built-in
// fallback stays active.
func (r *Renderer) UseShader(s *render.ManagedShader) error {
	if err := s.Compile(); err != nil {
		logger.Error("shader compile failed, keeping fallback",
			zap.String("shader", s.Name()), zap.Error(err))
		r.active = r.fallback
		return err
	}
	r.active = s
	return nil
}

// Resize updates the viewport.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Aspect returns the current viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Clear clears the color and depth buffers.
func (r *Renderer) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// UploadModel uploads one detail tier of a model. Re-uploading under
// the same name replaces the previous buffers, which is how a LOD
// upgrade reaches the GPU.
func (r *Renderer) UploadModel(name string, model *egom.Model, lod int) error {
	mesh := model.MeshForLOD(lod)
	if mesh == nil || mesh.Empty() {
		return fmt.Errorf("model %q has no geometry at tier %d", name, lod)
	}

	if old, ok := r.meshes[name]; ok {
		releaseMesh(old)
		delete(r.meshes, name)
	}

	vertices, radius := flattenVertices(mesh.Vertices, model.Scale())

	triangles := make([]uint32, 0, len(mesh.Triangles)*3)
	for _, t := range mesh.Triangles {
		triangles = append(triangles, uint32(t[0]), uint32(t[1]), uint32(t[2]))
	}
	lines := make([]uint32, 0, len(mesh.Lines)*2)
	for _, l := range mesh.Lines {
		lines = append(lines, uint32(l[0]), uint32(l[1]))
	}

	m := &meshBuffers{
		triangleCount: int32(len(triangles)),
		lineCount:     int32(len(lines)),
		radius:        radius,
	}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)

	if len(triangles) > 0 {
		gl.GenBuffers(1, &m.triangleEBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.triangleEBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(triangles)*4, gl.Ptr(triangles), gl.STATIC_DRAW)
	}
	if len(lines) > 0 {
		gl.GenBuffers(1, &m.lineEBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.lineEBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(lines)*4, gl.Ptr(lines), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	r.meshes[name] = m

	logger.Debug("model uploaded",
		zap.String("model", name), zap.Int("lod", lod),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int32("triangles", m.triangleCount/3))
	return nil
}

// flattenVertices scales a mesh's vertices into a flat float slice and
// computes the bounding radius of the result.
func flattenVertices(verts []egom.Vertex, scale float32) ([]float32, float32) {
	flat := make([]float32, 0, len(verts)*3)
	var radius float32
	for _, v := range verts {
		x, y, z := v[0]*scale, v[1]*scale, v[2]*scale
		flat = append(flat, x, y, z)
		if d := (mgl32.Vec3{x, y, z}).Len(); d > radius {
			radius = d
		}
	}
	return flat, radius
}

// Radius returns the bounding radius of an uploaded model, 0 when the
// model is unknown.
func (r *Renderer) Radius(name string) float32 {
	if m, ok := r.meshes[name]; ok {
		return m.radius
	}
	return 0
}

// DrawModel draws an uploaded model with the active shader. A non-nil
// texture is bound to unit 0 for shaders declaring a uTexture sampler;
// the built-in shader ignores it.
func (r *Renderer) DrawModel(name string, mvp mgl32.Mat4, tex *render.ManagedTexture) error {
	m, ok := r.meshes[name]
	if !ok {
		return fmt.Errorf("model %q was never uploaded", name)
	}

	r.active.Use()
	gl.UniformMatrix4fv(r.active.Uniform("uMVP"), 1, false, &mvp[0])
	if tex != nil {
		if err := tex.Upload(); err != nil {
			return err
		}
		tex.Bind(0)
		if loc := r.active.Uniform("uTexture"); loc >= 0 {
			gl.Uniform1i(loc, 0)
		}
	}
	gl.BindVertexArray(m.vao)

	if m.triangleCount > 0 {
		gl.Uniform4f(r.active.Uniform("uColor"), 0.55, 0.62, 0.70, 1.0)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.triangleEBO)
		gl.DrawElements(gl.TRIANGLES, m.triangleCount, gl.UNSIGNED_INT, nil)
	}
	if m.lineCount > 0 {
		gl.Uniform4f(r.active.Uniform("uColor"), 0.95, 0.95, 1.0, 1.0)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.lineEBO)
		gl.DrawElements(gl.LINES, m.lineCount, gl.UNSIGNED_INT, nil)
	}

	gl.BindVertexArray(0)
	return nil
}

// SetSkybox uploads a cubemap and makes it the scene background,
// replacing any previous one. The cube geometry and skybox shader are
// created on first use.
func (r *Renderer) SetSkybox(cm *render.ManagedCubemap) error {
	if err := cm.Upload(); err != nil {
		return err
	}

	if r.sky == nil {
		sh := render.NewManagedShader("builtin-skybox",
			shaders.SkyboxVertexShader, shaders.SkyboxFragmentShader,
			render.BlendOpaque, nil)
		if err := sh.Compile(); err != nil {
			return fmt.Errorf("compiling skybox shader: %w", err)
		}

		s := &skyboxBuffers{shader: sh}
		verts := skyboxCubeVertices()
		gl.GenVertexArrays(1, &s.vao)
		gl.BindVertexArray(s.vao)
		gl.GenBuffers(1, &s.vbo)
		gl.BindBuffer(gl.ARRAY_BUFFER, s.vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)
		gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
		gl.EnableVertexAttribArray(0)
		gl.BindVertexArray(0)
		r.sky = s
	}

	if r.sky.cubemap != nil && r.sky.cubemap != cm {
		r.sky.cubemap.Release()
	}
	r.sky.cubemap = cm

	logger.Debug("skybox set", zap.String("cubemap", cm.Name()))
	return nil
}

// DrawSkybox draws the skybox behind everything rendered so far. A
// no-op until SetSkybox succeeds.
func (r *Renderer) DrawSkybox(view, proj mgl32.Mat4) {
	if r.sky == nil || r.sky.cubemap == nil {
		return
	}

	// LEQUAL lets the cube pass at the far plane where the clear depth sits.
	gl.DepthFunc(gl.LEQUAL)
	s := r.sky
	s.shader.Use()
	vp := proj.Mul4(stripTranslation(view))
	gl.UniformMatrix4fv(s.shader.Uniform("uViewProj"), 1, false, &vp[0])
	s.cubemap.Bind(0)
	gl.Uniform1i(s.shader.Uniform("uSkybox"), 0)
	gl.BindVertexArray(s.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 36)
	gl.BindVertexArray(0)
	gl.DepthFunc(gl.LESS)
}

// stripTranslation zeroes a view matrix's translation so the skybox
// stays centered on the camera.
func stripTranslation(m mgl32.Mat4) mgl32.Mat4 {
	m.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
	return m
}

// skyboxCubeVertices returns the 36 corner positions of a unit cube,
// wound to face inward.
func skyboxCubeVertices() []float32 {
	return []float32{
		-1, 1, -1, -1, -1, -1, 1, -1, -1,
		1, -1, -1, 1, 1, -1, -1, 1, -1,

		-1, -1, 1, -1, -1, -1, -1, 1, -1,
		-1, 1, -1, -1, 1, 1, -1, -1, 1,

		1, -1, -1, 1, -1, 1, 1, 1, 1,
		1, 1, 1, 1, 1, -1, 1, -1, -1,

		-1, -1, 1, -1, 1, 1, 1, 1, 1,
		1, 1, 1, 1, -1, 1, -1, -1, 1,

		-1, 1, -1, 1, 1, -1, 1, 1, 1,
		1, 1, 1, -1, 1, 1, -1, 1, -1,

		-1, -1, -1, -1, -1, 1, 1, -1, -1,
		1, -1, -1, -1, -1, 1, 1, -1, 1,
	}
}
