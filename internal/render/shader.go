package render

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// ManagedShader wraps a vertex/fragment source pair with its blend mode
// and attribute role mapping. The GL program is linked on the first
// Compile call.
type ManagedShader struct {
	name        string
	vertexSrc   string
	fragmentSrc string
	blend       BlendMode
	// attributeRoles maps semantic roles ("position", "normal", "uv") to
	// attribute names in the vertex source.
	attributeRoles map[string]string
	program        uint32
}

// NewManagedShader creates a shader handle from fetched source text.
func NewManagedShader(name, vertexSrc, fragmentSrc string, blend BlendMode, attributeRoles map[string]string) *ManagedShader {
	return &ManagedShader{
		name:           name,
		vertexSrc:      vertexSrc,
		fragmentSrc:    fragmentSrc,
		blend:          blend,
		attributeRoles: attributeRoles,
	}
}

// Name returns the shader name.
func (s *ManagedShader) Name() string {
	return s.name
}

// Blend returns the shader's blend mode.
func (s *ManagedShader) Blend() BlendMode {
	return s.blend
}

// AttributeName resolves a semantic role to the attribute name declared in
// the vertex source. Returns the empty string for unknown roles.
func (s *ManagedShader) AttributeName(role string) string {
	return s.attributeRoles[role]
}

// Program returns the GL program name, or 0 if not yet compiled.
func (s *ManagedShader) Program() uint32 {
	return s.program
}

// Compile compiles both stages and links the program. Must be called on
// the GL thread. Calling it again after success is a no-op.
func (s *ManagedShader) Compile() error {
	if s.program != 0 {
		return nil
	}
	if s.vertexSrc == "" || s.fragmentSrc == "" {
		return fmt.Errorf("shader %s: missing source text", s.name)
	}

	vert, err := compileStage(s.vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return fmt.Errorf("shader %s: %w", s.name, err)
	}
	defer gl.DeleteShader(vert)

	frag, err := compileStage(s.fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return fmt.Errorf("shader %s: %w", s.name, err)
	}
	defer gl.DeleteShader(frag)

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return fmt.Errorf("shader %s: link: %s", s.name, string(log))
	}

	s.program = program
	return nil
}

// Use activates the program and applies the blend mode.
func (s *ManagedShader) Use() {
	gl.UseProgram(s.program)
	switch s.blend {
	case BlendMix:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	case BlendAdd:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	default:
		gl.Disable(gl.BLEND)
	}
}

// Uniform returns the uniform location for the given name, or -1 if the
// uniform is not found or inactive.
func (s *ManagedShader) Uniform(name string) int32 {
	return gl.GetUniformLocation(s.program, gl.Str(name+"\x00"))
}

// Release deletes the GL program. The handle can be re-compiled.
func (s *ManagedShader) Release() {
	if s.program != 0 {
		gl.DeleteProgram(s.program)
		s.program = 0
	}
}

// compileStage compiles a single shader stage.
func compileStage(source string, stageType uint32, name string) (uint32, error) {
	stage := gl.CreateShader(stageType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(stage, 1, csource, nil)
	free()
	gl.CompileShader(stage)

	var status int32
	gl.GetShaderiv(stage, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(stage, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(stage, logLen, nil, &log[0])
		gl.DeleteShader(stage)
		return 0, fmt.Errorf("%s stage: %s", name, string(log))
	}

	return stage, nil
}
