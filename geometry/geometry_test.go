package geometry_test

import (
	"strings"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/xlab/linmath"

	"vulkan-engine/geometry"
	"vulkan-engine/models"
)

func TestGeometry(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Geometry Suite")
}

// cubeTriangles returns the 36 corners of a cube with 8 positions and the
// four texture corners repeated on each face.
func cubeTriangles() []geometry.Vertex {
	positions := [8]linmath.Vec3{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
	uvs := [4]linmath.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	faces := [6][4]int{
		{4, 5, 6, 7},
		{1, 0, 3, 2},
		{5, 1, 2, 6},
		{0, 4, 7, 3},
		{7, 6, 2, 3},
		{0, 1, 5, 4},
	}

	var out []geometry.Vertex
	for _, face := range faces {
		var quad [4]geometry.Vertex
		for i, p := range face {
			quad[i] = geometry.Vertex{Pos: positions[p], TexCoord0: uvs[i]}
		}
		out = append(out, quad[0], quad[1], quad[2], quad[0], quad[2], quad[3])
	}
	return out
}

var _ = Describe("Deduplicate", func() {
	It("collapses the corners of a cube", func() {
		mesh := geometry.Deduplicate(cubeTriangles())

		Expect(len(mesh.Vertices)).To(BeNumerically("<=", 24))
		Expect(mesh.Indices).To(HaveLen(36))
		for _, index := range mesh.Indices {
			Expect(index).To(BeNumerically("<", len(mesh.Vertices)))
		}
	})

	It("keeps the geometry intact", func() {
		triangles := cubeTriangles()
		mesh := geometry.Deduplicate(triangles)

		for i, index := range mesh.Indices {
			Expect(mesh.Vertices[index]).To(Equal(triangles[i]))
		}
	})

	It("treats vertices differing in any field as distinct", func() {
		a := geometry.Vertex{Pos: linmath.Vec3{1, 2, 3}}
		b := a
		b.Bitangent = linmath.Vec3{0, 0, 1}

		mesh := geometry.Deduplicate([]geometry.Vertex{a, b, a})
		Expect(mesh.Vertices).To(Equal([]geometry.Vertex{a, b}))
		Expect(mesh.Indices).To(Equal([]uint32{0, 1, 0}))
	})

	It("reports buffer sizes", func() {
		mesh := geometry.Deduplicate(cubeTriangles())
		Expect(mesh.IndexBytes()).To(Equal(uint64(36 * 4)))
		Expect(mesh.VertexBytes()).To(Equal(uint64(len(mesh.Vertices)) * uint64(geometry.VertexSize)))
	})

	It("checks buffer capacity", func() {
		mesh := geometry.Deduplicate(cubeTriangles())
		Expect(mesh.Fits(mesh.VertexBytes(), mesh.IndexBytes())).To(BeTrue())
		Expect(mesh.Fits(mesh.VertexBytes()-1, mesh.IndexBytes())).To(BeFalse())
		Expect(mesh.Fits(mesh.VertexBytes(), 0)).To(BeFalse())
	})
})

var _ = Describe("OBJ loading", func() {
	It("loads the embedded cube", func() {
		mesh, err := geometry.LoadOBJ(models.FS, models.DefaultModel)
		Expect(err).NotTo(HaveOccurred())

		Expect(mesh.Vertices).To(HaveLen(24))
		Expect(mesh.Indices).To(HaveLen(36))
	})

	It("flips texture coordinates and fills in the color", func() {
		mesh, err := geometry.DecodeOBJ(strings.NewReader(`
o Triangle
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
f 1/1 2/2 3/3
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(mesh.Vertices).To(HaveLen(3))
		Expect(mesh.Vertices[0].TexCoord0).To(Equal(linmath.Vec2{0, 1}))
		Expect(mesh.Vertices[2].TexCoord0).To(Equal(linmath.Vec2{0, 0}))
		Expect(mesh.Vertices[1].Color).To(Equal(linmath.Vec3{1, 1, 1}))
	})

	It("splits quads into triangles", func() {
		mesh, err := geometry.DecodeOBJ(strings.NewReader(`
o Quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(mesh.Vertices).To(HaveLen(4))
		Expect(mesh.Indices).To(Equal([]uint32{0, 1, 2, 0, 2, 3}))
	})

	It("refuses a model without faces", func() {
		_, err := geometry.DecodeOBJ(strings.NewReader("v 0 0 0\n"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("vertex input", func() {
	It("describes every field", func() {
		attrs := geometry.AttributeDescriptions()
		Expect(attrs).To(HaveLen(7))
		for i, attr := range attrs {
			Expect(attr.Location).To(Equal(uint32(i)))
			Expect(attr.Offset).To(BeNumerically("<", geometry.VertexSize))
		}
		Expect(geometry.BindingDescription().Stride).To(Equal(geometry.VertexSize))
	})
})
