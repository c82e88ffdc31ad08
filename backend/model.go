package backend

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"vulkan-engine/resources"
	"vulkan-engine/unsafer"
)

// createGeometryBuffers allocates the fixed size vertex and index buffers all
// models are uploaded into.
func (b *Backend) createGeometryBuffers() error {
	vertexBuffer, err := b.CreateBuffer(
		b.cfg.VertexBufferSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)|
			vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit),
		resources.DeviceLocal,
	)
	if err != nil {
		return fmt.Errorf("creating the vertex buffer: %w", err)
	}
	b.vertexBuffer = vertexBuffer
	b.lifetime.Defer("vertex buffer", func() {
		b.vertexBuffer.Destroy(b.device)
	})

	indexBuffer, err := b.CreateBuffer(
		b.cfg.IndexBufferSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)|
			vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit),
		resources.DeviceLocal,
	)
	if err != nil {
		return fmt.Errorf("creating the index buffer: %w", err)
	}
	b.indexBuffer = indexBuffer
	b.lifetime.Defer("index buffer", func() {
		b.indexBuffer.Destroy(b.device)
	})

	return nil
}

// uploadModel copies the current mesh into the geometry buffers.
func (b *Backend) uploadModel() error {
	err := resources.Upload[resources.Buffer](b, b.vertexBuffer,
		unsafer.SliceToBytes(b.mesh.Vertices))
	if err != nil {
		return fmt.Errorf("uploading vertices: %w", err)
	}

	err = resources.Upload[resources.Buffer](b, b.indexBuffer,
		unsafer.SliceToBytes(b.mesh.Indices))
	if err != nil {
		return fmt.Errorf("uploading indices: %w", err)
	}

	b.debugf("model uploaded: %d vertices, %d indices",
		len(b.mesh.Vertices), len(b.mesh.Indices))
	return nil
}
