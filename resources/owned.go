package resources

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Buffer is a buffer together with the memory bound to it.
type Buffer struct {
	Buffer vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
}

// Destroy releases the buffer and then its memory. It is safe to call more
// than once and on the zero value.
func (b *Buffer) Destroy(device vk.Device) {
	if b.Buffer != vk.NullBuffer {
		vk.DestroyBuffer(device, b.Buffer, nil)
	}
	if b.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(device, b.Memory, nil)
	}
	*b = Buffer{}
}

// MappedBuffer is a host visible buffer which stays mapped for its whole
// life.
type MappedBuffer struct {
	Buffer
	Mapped unsafe.Pointer
}

// Destroy unmaps the memory and releases the buffer.
func (b *MappedBuffer) Destroy(device vk.Device) {
	if b.Mapped != nil {
		vk.UnmapMemory(device, b.Memory)
		b.Mapped = nil
	}
	b.Buffer.Destroy(device)
}

// Image is an image with its view and the memory bound to it. The view is
// optional.
type Image struct {
	Image  vk.Image
	View   vk.ImageView
	Memory vk.DeviceMemory
	Format vk.Format
}

// Destroy releases the view, the image and then its memory. It is safe to
// call more than once and on the zero value.
func (img *Image) Destroy(device vk.Device) {
	if img.View != vk.NullImageView {
		vk.DestroyImageView(device, img.View, nil)
	}
	if img.Image != vk.NullImage {
		vk.DestroyImage(device, img.Image, nil)
	}
	if img.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(device, img.Memory, nil)
	}
	*img = Image{}
}
