package shaders

import "embed"

//go:generate ./compile.sh

// FS embeds the compiled default shaders. Run `go generate` in order to
// compile them again after changing the GLSL sources.
//
//go:embed basic.vert.spv
//go:embed basic.frag.spv
var FS embed.FS

// DefaultProgram is the shader program in FS.
const DefaultProgram = "basic"
