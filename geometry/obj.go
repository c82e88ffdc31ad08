package geometry

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/mokiat/go-data-front/decoder/obj"
	"github.com/xlab/linmath"
)

var white = linmath.Vec3{1, 1, 1}

// DecodeOBJ reads a Wavefront OBJ model and returns it as a de-duplicated
// mesh. Polygons with more than three corners are split into a triangle fan.
// Texture coordinates are flipped vertically since OBJ puts the origin at the
// bottom left of the image.
func DecodeOBJ(r io.Reader) (Mesh, error) {
	decoder := obj.NewDecoder(obj.DefaultLimits())
	model, err := decoder.Decode(r)
	if err != nil {
		return Mesh{}, fmt.Errorf("decoding obj: %w", err)
	}

	var triangles []Vertex
	for _, object := range model.Objects {
		for _, mesh := range object.Meshes {
			for _, face := range mesh.Faces {
				refs := face.References
				if len(refs) < 3 {
					return Mesh{}, fmt.Errorf("object %q has a face with %d corners",
						object.Name, len(refs))
				}

				corners := make([]Vertex, len(refs))
				for i, ref := range refs {
					corners[i] = objVertex(model, ref)
				}

				for i := 1; i+1 < len(corners); i++ {
					triangles = append(triangles, corners[0], corners[i], corners[i+1])
				}
			}
		}
	}

	if len(triangles) == 0 {
		return Mesh{}, fmt.Errorf("model has no faces")
	}

	return Deduplicate(triangles), nil
}

func objVertex(model *obj.Model, ref obj.Reference) Vertex {
	pos := model.GetVertexFromReference(ref)
	v := Vertex{
		Pos:   linmath.Vec3{float32(pos.X), float32(pos.Y), float32(pos.Z)},
		Color: white,
	}

	if ref.HasTexCoord() {
		tex := model.GetTexCoordFromReference(ref)
		v.TexCoord0 = linmath.Vec2{float32(tex.U), float32(1 - tex.V)}
	}

	if ref.HasNormal() {
		n := model.GetNormalFromReference(ref)
		v.Normal = linmath.Vec3{float32(n.X), float32(n.Y), float32(n.Z)}
	}

	return v
}

// LoadOBJ opens name in fsys and decodes it with DecodeOBJ.
func LoadOBJ(fsys fs.FS, name string) (Mesh, error) {
	fh, err := fsys.Open(name)
	if err != nil {
		return Mesh{}, fmt.Errorf("opening model: %w", err)
	}
	defer fh.Close()

	return DecodeOBJ(fh)
}
