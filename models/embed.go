package models

import "embed"

// FS contains the models shipped with the binary. The cube is used when no
// other model is given on the command line.
//
//go:embed cube.obj
var FS embed.FS

// DefaultModel is the name of the model in FS loaded by default.
const DefaultModel = "cube.obj"
