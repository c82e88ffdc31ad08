package shaders_test

import (
	"testing"
	"testing/fstest"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"vulkan-engine/shaders"
)

func TestShaders(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Shaders Suite")
}

var spirv = []byte{0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0}

var _ = Describe("ParseFilename", func() {
	expectStage := func(filename, name string, stage shaders.Stage) {
		gotName, gotStage, err := shaders.ParseFilename(filename)
		Expect(err).NotTo(HaveOccurred())
		Expect(gotName).To(Equal(name))
		Expect(gotStage).To(Equal(stage))
	}

	It("recognizes every stage spelling", func() {
		expectStage("basic.vert.spv", "basic", shaders.Vertex)
		expectStage("basic.vs", "basic", shaders.Vertex)
		expectStage("basic.frag.spv", "basic", shaders.Fragment)
		expectStage("basic.fs", "basic", shaders.Fragment)
		expectStage("grass.geom.spv", "grass", shaders.Geometry)
		expectStage("grass.gs", "grass", shaders.Geometry)
		expectStage("terrain.tese.spv", "terrain", shaders.TessellationEvaluation)
		expectStage("terrain.tes", "terrain", shaders.TessellationEvaluation)
		expectStage("terrain.tesc.spv", "terrain", shaders.TessellationControl)
		expectStage("terrain.tcs", "terrain", shaders.TessellationControl)
	})

	It("rejects unknown extensions", func() {
		_, _, err := shaders.ParseFilename("basic.comp.spv")
		Expect(err).To(MatchError(shaders.ErrUnknownStage))

		_, _, err = shaders.ParseFilename("noextension")
		Expect(err).To(MatchError(shaders.ErrUnknownStage))
	})
})

var _ = Describe("Load", func() {
	It("builds an ordered pool from the SPIR-V files", func() {
		fsys := fstest.MapFS{
			"basic.vert.spv": {Data: spirv},
			"basic.frag.spv": {Data: spirv},
			"basic.vert":     {Data: []byte("#version 450")},
			"compile.sh":     {Data: []byte("#!/bin/sh")},
			"sky.vert.spv":   {Data: spirv},
		}

		pool, err := shaders.Load(fsys)
		Expect(err).NotTo(HaveOccurred())
		Expect(pool).To(HaveLen(3))

		Expect(pool[0].Filename).To(Equal("basic.frag.spv"))
		Expect(pool[0].Stage).To(Equal(shaders.Fragment))
		Expect(pool[1].Filename).To(Equal("basic.vert.spv"))
		Expect(pool[1].Name).To(Equal("basic"))
		Expect(pool[2].Name).To(Equal("sky"))
		Expect(pool[2].Code).To(Equal(spirv))
	})

	It("fails on a SPIR-V file with an unknown stage", func() {
		fsys := fstest.MapFS{
			"basic.vert.spv":    {Data: spirv},
			"particle.comp.spv": {Data: spirv},
		}

		_, err := shaders.Load(fsys)
		Expect(err).To(MatchError(shaders.ErrUnknownStage))
	})

	It("fails on truncated byte code", func() {
		fsys := fstest.MapFS{
			"basic.vert.spv": {Data: spirv[:3]},
		}

		_, err := shaders.Load(fsys)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("FS", func() {
	It("holds a complete default program", func() {
		pool, err := shaders.Load(shaders.FS)
		Expect(err).NotTo(HaveOccurred())
		Expect(pool).To(HaveLen(2))

		Expect(pool[0].Name).To(Equal(shaders.DefaultProgram))
		Expect(pool[0].Stage).To(Equal(shaders.Fragment))
		Expect(pool[1].Name).To(Equal(shaders.DefaultProgram))
		Expect(pool[1].Stage).To(Equal(shaders.Vertex))

		for _, src := range pool {
			Expect(src.Code[:4]).To(Equal(spirv[:4]), src.Filename)
		}
	})
})
