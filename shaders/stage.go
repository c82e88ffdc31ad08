// Package shaders finds pre-compiled SPIR-V shaders and works out the program
// and pipeline stage each one belongs to.
//
// A shader file is named <program>.<stage>.spv, for example basic.vert.spv.
// The stage token may be any of vs, vert, fs, frag, gs, geom, tes, tese, tcs
// or tesc.
package shaders

import (
	"errors"
	"fmt"
	"strings"
)

// Stage is the pipeline stage a shader runs in.
type Stage uint8

// Supported stages.
const (
	Vertex Stage = iota
	TessellationControl
	TessellationEvaluation
	Geometry
	Fragment
)

func (s Stage) String() string {
	switch s {
	case Vertex:
		return "vertex"
	case TessellationControl:
		return "tessellation control"
	case TessellationEvaluation:
		return "tessellation evaluation"
	case Geometry:
		return "geometry"
	case Fragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
}

var stageTokens = map[string]Stage{
	"vs":   Vertex,
	"vert": Vertex,
	"fs":   Fragment,
	"frag": Fragment,
	"gs":   Geometry,
	"geom": Geometry,
	"tes":  TessellationEvaluation,
	"tese": TessellationEvaluation,
	"tcs":  TessellationControl,
	"tesc": TessellationControl,
}

// ErrUnknownStage is returned for file names without a recognized stage.
var ErrUnknownStage = errors.New("unknown shader stage")

// ParseFilename splits a shader file name into the program name, which is
// everything before the first dot, and the stage named in the extension.
func ParseFilename(filename string) (name string, stage Stage, err error) {
	name, ext, found := strings.Cut(filename, ".")
	if !found || name == "" {
		return "", 0, fmt.Errorf("%s: %w", filename, ErrUnknownStage)
	}

	for _, token := range strings.Split(ext, ".") {
		if s, ok := stageTokens[strings.ToLower(token)]; ok {
			return name, s, nil
		}
	}

	return "", 0, fmt.Errorf("%s: %w", filename, ErrUnknownStage)
}
