// Package shaders provides embedded GLSL shader sources: the skybox
// shader and the fallback used when a configured shader cannot be
// fetched or compiled, so a preview is always drawable.
package shaders

import _ "embed"

// BasicVertexShader is the vertex shader for untextured model rendering.
//
//go:embed basic.vert
var BasicVertexShader string

// BasicFragmentShader is the fragment shader for untextured model rendering.
//
//go:embed basic.frag
var BasicFragmentShader string

// SkyboxVertexShader is the vertex shader for the background cubemap.
//
//go:embed skybox.vert
var SkyboxVertexShader string

// SkyboxFragmentShader is the fragment shader for the background cubemap.
//
//go:embed skybox.frag
var SkyboxFragmentShader string
