// Package resources holds the GPU memory helpers of the backend: memory type
// selection, staged uploads and the ownership wrappers which release buffers
// and images in the right order.
package resources

import (
	"errors"
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// ErrNoMemoryType is returned when no memory type of the device satisfies a
// request.
var ErrNoMemoryType = errors.New("failed to find suitable memory type")

// MemoryTable lists the property flags of every memory type of a physical
// device. The index in the table is the memory type index.
type MemoryTable []vk.MemoryPropertyFlags

// MemoryTableOf converts the properties reported by the driver into a table.
func MemoryTableOf(props vk.PhysicalDeviceMemoryProperties) MemoryTable {
	props.Deref()

	table := make(MemoryTable, props.MemoryTypeCount)
	for i := range table {
		memType := props.MemoryTypes[i]
		memType.Deref()
		table[i] = memType.PropertyFlags
	}
	return table
}

// QueryMemoryTable reads the memory types of a physical device.
func QueryMemoryTable(physicalDevice vk.PhysicalDevice) MemoryTable {
	var memProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(physicalDevice, &memProperties)
	return MemoryTableOf(memProperties)
}

// FindMemoryType returns the first memory type which is allowed by typeFilter
// and has all the required properties. Callers get the lowest valid index,
// not necessarily the best one.
func FindMemoryType(
	table MemoryTable,
	typeFilter uint32,
	required vk.MemoryPropertyFlags,
) (uint32, error) {
	for i, flags := range table {
		if i >= 32 {
			break
		}

		if typeFilter&(1<<uint32(i)) == 0 {
			continue
		}

		if flags&required != required {
			continue
		}

		return uint32(i), nil
	}

	return 0, fmt.Errorf("filter %#b, properties %#x: %w", typeFilter, required, ErrNoMemoryType)
}

// HostVisible are the memory properties used for staging and uniform buffers.
const HostVisible = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) |
	vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit)

// DeviceLocal are the memory properties for data only the GPU reads.
const DeviceLocal = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
