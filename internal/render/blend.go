// Package render provides lightweight handles for GPU-side resources.
//
// Managed objects are built from fetched raw data (decoded images, shader
// source text) and are cheap to construct: all OpenGL work is deferred to
// explicit Upload/Compile calls, which must run on the thread owning the
// GL context.
package render

import "fmt"

// BlendMode determines how a shader's output is blended into the framebuffer.
type BlendMode int

const (
	// BlendOpaque disables blending.
	BlendOpaque BlendMode = iota
	// BlendMix is standard alpha blending.
	BlendMix
	// BlendAdd is additive blending (used for glow, engine trails).
	BlendAdd
)

// String returns the config-file name of the blend mode.
func (b BlendMode) String() string {
	switch b {
	case BlendOpaque:
		return "opaque"
	case BlendMix:
		return "mix"
	case BlendAdd:
		return "add"
	default:
		return fmt.Sprintf("unknown(%d)", int(b))
	}
}

// ParseBlendMode parses a config-file blend mode name. An empty string
// parses as opaque.
func ParseBlendMode(s string) (BlendMode, error) {
	switch s {
	case "", "opaque":
		return BlendOpaque, nil
	case "mix":
		return BlendMix, nil
	case "add":
		return BlendAdd, nil
	default:
		return BlendOpaque, fmt.Errorf("unknown blend mode %q", s)
	}
}
