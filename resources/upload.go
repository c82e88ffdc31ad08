package resources

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Stager is a device which can fill device local buffers through a host
// visible staging buffer. B is the buffer type of the device.
type Stager[B any] interface {

	// CreateStagingBuffer allocates a host visible buffer usable as a transfer
	// source.
	CreateStagingBuffer(size vk.DeviceSize) (B, error)

	// Write maps the buffer memory, copies data into it and unmaps it again.
	Write(buf B, data []byte) error

	// CopyBuffer records a one-shot copy from src to dst, submits it and waits
	// for the transfer queue to become idle.
	CopyBuffer(src, dst B, size vk.DeviceSize) error

	// DestroyBuffer releases the buffer and its memory.
	DestroyBuffer(buf B)
}

// Upload copies data into the device local buffer dst. It blocks until the
// copy has finished on the GPU. The staging buffer is released on every path.
func Upload[B any](s Stager[B], dst B, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	size := vk.DeviceSize(len(data))

	staging, err := s.CreateStagingBuffer(size)
	if err != nil {
		return fmt.Errorf("creating the staging buffer: %w", err)
	}
	defer s.DestroyBuffer(staging)

	if err := s.Write(staging, data); err != nil {
		return fmt.Errorf("writing the staging buffer: %w", err)
	}

	if err := s.CopyBuffer(staging, dst, size); err != nil {
		return fmt.Errorf("copying the staging buffer: %w", err)
	}

	return nil
}
