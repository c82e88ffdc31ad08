package resources_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	vk "github.com/vulkan-go/vulkan"

	"vulkan-engine/resources"
)

var _ = Describe("FindMemoryType", func() {
	deviceLocal := resources.DeviceLocal
	hostVisible := resources.HostVisible
	hostCached := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) |
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostCachedBit)

	table := resources.MemoryTable{
		deviceLocal,
		hostCached,
		hostVisible,
		deviceLocal | hostVisible,
		hostVisible | vk.MemoryPropertyFlags(vk.MemoryPropertyHostCachedBit),
	}

	It("returns the lowest matching index", func() {
		index, err := resources.FindMemoryType(table, 0b11111, hostVisible)
		Expect(err).NotTo(HaveOccurred())
		Expect(index).To(Equal(uint32(2)))

		index, err = resources.FindMemoryType(table, 0b11111, deviceLocal)
		Expect(err).NotTo(HaveOccurred())
		Expect(index).To(Equal(uint32(0)))
	})

	It("gives the same answer every time", func() {
		first, err := resources.FindMemoryType(table, 0b11010, hostVisible)
		Expect(err).NotTo(HaveOccurred())

		for _i := 0; _i < 10; _i++ {
			index, err := resources.FindMemoryType(table, 0b11010, hostVisible)
			Expect(err).NotTo(HaveOccurred())
			Expect(index).To(Equal(first))
		}
		Expect(first).To(Equal(uint32(3)))
	})

	It("honours the type filter", func() {
		index, err := resources.FindMemoryType(table, 0b01000, deviceLocal)
		Expect(err).NotTo(HaveOccurred())
		Expect(index).To(Equal(uint32(3)))
	})

	It("fails when nothing matches", func() {
		_, err := resources.FindMemoryType(table, 0b00001, hostVisible)
		Expect(err).To(MatchError(resources.ErrNoMemoryType))

		_, err = resources.FindMemoryType(resources.MemoryTable{}, 0xffffffff, 0)
		Expect(err).To(MatchError(resources.ErrNoMemoryType))
	})

	It("accepts any type when no properties are required", func() {
		index, err := resources.FindMemoryType(table, 0b10000, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(index).To(Equal(uint32(4)))
	})
})
