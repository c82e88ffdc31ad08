package backend

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"vulkan-engine/shaders"
	"vulkan-engine/unsafer"
)

// ShaderModule is a compiled shader loaded into a device.
type ShaderModule struct {
	Name  string
	Stage shaders.Stage

	module vk.ShaderModule
	device vk.Device
}

// NewShaderModule creates a shader module from SPIR-V bytecode.
func NewShaderModule(device vk.Device, src shaders.Source) (*ShaderModule, error) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(src.Code)),
		PCode:    unsafer.SliceBytesToUint32(src.Code),
	}

	var shaderModule vk.ShaderModule
	res := vk.CreateShaderModule(device, &createInfo, nil, &shaderModule)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("creating shader module %s: %w", src.Filename, err)
	}

	return &ShaderModule{
		Name:   src.Name,
		Stage:  src.Stage,
		module: shaderModule,
		device: device,
	}, nil
}

// StageInfo describes the module as a pipeline stage with entry point main.
func (m *ShaderModule) StageInfo() vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stageFlag(m.Stage),
		Module: m.module,
		PName:  "main\x00",
	}
}

// Destroy releases the module. Calling it again does nothing.
func (m *ShaderModule) Destroy() {
	if m.module == vk.ShaderModule(vk.NullHandle) {
		return
	}
	vk.DestroyShaderModule(m.device, m.module, nil)
	m.module = vk.ShaderModule(vk.NullHandle)
}

func stageFlag(stage shaders.Stage) vk.ShaderStageFlagBits {
	switch stage {
	case shaders.Vertex:
		return vk.ShaderStageVertexBit
	case shaders.TessellationControl:
		return vk.ShaderStageTessellationControlBit
	case shaders.TessellationEvaluation:
		return vk.ShaderStageTessellationEvaluationBit
	case shaders.Geometry:
		return vk.ShaderStageGeometryBit
	default:
		return vk.ShaderStageFragmentBit
	}
}

// ShaderProgram is the set of stages the graphics pipeline is built from.
type ShaderProgram struct {
	Name string

	// Modules are ordered vertex first.
	Modules []*ShaderModule
}

// NewShaderProgram picks the vertex and fragment modules called name from
// pool. The vertex module is required. Without a fragment module the program
// only writes depth.
func NewShaderProgram(name string, pool []*ShaderModule) (*ShaderProgram, error) {
	var vertex, fragment *ShaderModule

	for _, m := range pool {
		if m.Name != name {
			continue
		}

		switch m.Stage {
		case shaders.Vertex:
			if vertex == nil {
				vertex = m
			}
		case shaders.Fragment:
			if fragment == nil {
				fragment = m
			}
		}
	}

	if vertex == nil {
		return nil, fmt.Errorf("shader program %q has no vertex stage", name)
	}

	program := &ShaderProgram{
		Name:    name,
		Modules: []*ShaderModule{vertex},
	}
	if fragment != nil {
		program.Modules = append(program.Modules, fragment)
	}

	return program, nil
}

// Stages returns the pipeline stage infos of the program.
func (p *ShaderProgram) Stages() []vk.PipelineShaderStageCreateInfo {
	stages := make([]vk.PipelineShaderStageCreateInfo, 0, len(p.Modules))
	for _, m := range p.Modules {
		stages = append(stages, m.StageInfo())
	}
	return stages
}

// createShaderModules loads the whole shader pool into the device.
func (b *Backend) createShaderModules() error {
	modules := make([]*ShaderModule, 0, len(b.shaderPool))
	b.lifetime.Defer("shader modules", func() {
		for _, m := range modules {
			m.Destroy()
		}
		b.shaderModules = nil
		b.program = nil
	})

	for _, src := range b.shaderPool {
		m, err := NewShaderModule(b.device, src)
		if err != nil {
			return err
		}
		modules = append(modules, m)
		b.debugf("loaded %s shader %s (%d bytes)", m.Stage, src.Filename, len(src.Code))
	}

	b.shaderModules = modules
	return nil
}
