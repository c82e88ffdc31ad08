package textures

import "embed"

// FS contains the textures shipped with the binary so it can be copied to
// another machine on its own.
//
//go:embed checker.png
var FS embed.FS

// DefaultTexture is the texture in FS used when none is given on the command
// line.
const DefaultTexture = "checker.png"
