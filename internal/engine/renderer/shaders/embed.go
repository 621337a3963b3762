// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// LitVertexShader transforms positions and normals by a model matrix.
//
//go:embed lit.vert
var LitVertexShader string

// LitFragmentShader shades with one directional light and a flat colour.
//
//go:embed lit.frag
var LitFragmentShader string
