package geometry

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Deduplicate collapses structurally equal vertices of a triangle list. It
// returns the unique vertices in first-seen order and one index per input
// vertex.
func Deduplicate(vertices []Vertex) Mesh {
	seen := make(map[Vertex]uint32, len(vertices))
	mesh := Mesh{
		Indices: make([]uint32, 0, len(vertices)),
	}

	for _, v := range vertices {
		index, ok := seen[v]
		if !ok {
			index = uint32(len(mesh.Vertices))
			seen[v] = index
			mesh.Vertices = append(mesh.Vertices, v)
		}
		mesh.Indices = append(mesh.Indices, index)
	}

	return mesh
}

// VertexBytes is the size of the vertex data in bytes.
func (m Mesh) VertexBytes() uint64 {
	return uint64(len(m.Vertices)) * uint64(VertexSize)
}

// IndexBytes is the size of the index data in bytes.
func (m Mesh) IndexBytes() uint64 {
	return uint64(len(m.Indices)) * uint64(IndexSize)
}

// Fits reports whether the mesh can be stored in vertex and index buffers of
// the given sizes in bytes.
func (m Mesh) Fits(vertexCapacity, indexCapacity uint64) bool {
	return m.VertexBytes() <= vertexCapacity && m.IndexBytes() <= indexCapacity
}
