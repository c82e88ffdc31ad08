// Package geometry defines the vertex format shared by the mesh loaders and
// the graphics pipeline.
package geometry

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/linmath"
)

// Vertex is a single mesh vertex as laid out in the vertex buffer. Two
// vertices are the same vertex only when every field is equal.
type Vertex struct {
	Pos       linmath.Vec3
	Color     linmath.Vec3
	TexCoord0 linmath.Vec2
	TexCoord1 linmath.Vec2
	Normal    linmath.Vec3
	Tangent   linmath.Vec3
	Bitangent linmath.Vec3
}

// VertexSize is the stride of Vertex in bytes.
const VertexSize = uint32(unsafe.Sizeof(Vertex{}))

// IndexSize is the size of one index in bytes. Indices are always uint32.
const IndexSize = uint32(unsafe.Sizeof(uint32(0)))

// BindingDescription describes how vertices are read from binding 0.
func BindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    VertexSize,
		InputRate: vk.VertexInputRateVertex,
	}
}

// AttributeDescriptions returns one attribute per Vertex field. The locations
// follow the field order.
func AttributeDescriptions() []vk.VertexInputAttributeDescription {
	var v Vertex
	attribute := func(location uint32, format vk.Format, offset uintptr) vk.VertexInputAttributeDescription {
		return vk.VertexInputAttributeDescription{
			Binding:  0,
			Location: location,
			Format:   format,
			Offset:   uint32(offset),
		}
	}

	return []vk.VertexInputAttributeDescription{
		attribute(0, vk.FormatR32g32b32Sfloat, unsafe.Offsetof(v.Pos)),
		attribute(1, vk.FormatR32g32b32Sfloat, unsafe.Offsetof(v.Color)),
		attribute(2, vk.FormatR32g32Sfloat, unsafe.Offsetof(v.TexCoord0)),
		attribute(3, vk.FormatR32g32Sfloat, unsafe.Offsetof(v.TexCoord1)),
		attribute(4, vk.FormatR32g32b32Sfloat, unsafe.Offsetof(v.Normal)),
		attribute(5, vk.FormatR32g32b32Sfloat, unsafe.Offsetof(v.Tangent)),
		attribute(6, vk.FormatR32g32b32Sfloat, unsafe.Offsetof(v.Bitangent)),
	}
}
