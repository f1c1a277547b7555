package shaders

import "embed"

//go:generate ./compile.sh

// FS embeds the compiled vertex and fragment shaders. Run `go generate` in
// order to compile them again after changing the GLSL sources.
//
//go:embed vert.spv
//go:embed frag.spv
var FS embed.FS
