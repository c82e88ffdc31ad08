package backend

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"vulkan-engine/camera"
	"vulkan-engine/resources"
	"vulkan-engine/unsafer"
)

// createUniformBuffers creates one persistently mapped uniform buffer per
// swapchain image.
func (b *Backend) createUniformBuffers() error {
	bufferSize := vk.DeviceSize(unsafe.Sizeof(camera.UniformBufferObject{}))

	b.swapchainScope.Defer("uniform buffers", func() {
		for i := range b.uniformBuffers {
			b.uniformBuffers[i].Destroy(b.device)
		}
		b.uniformBuffers = nil
	})

	for i := range b.swapChainImages {
		buf, err := b.CreateBuffer(
			bufferSize,
			vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
			resources.HostVisible,
		)
		if err != nil {
			return fmt.Errorf("creating buffer[%d]: %w", i, err)
		}

		mapped := resources.MappedBuffer{Buffer: buf}
		res := vk.MapMemory(b.device, buf.Memory, 0, bufferSize, 0, &mapped.Mapped)
		b.uniformBuffers = append(b.uniformBuffers, mapped)
		if err := vk.Error(res); err != nil {
			return fmt.Errorf("mapping buffer[%d]: %w", i, err)
		}
	}

	return nil
}

func (b *Backend) createDescriptorPool() error {
	count := uint32(len(b.swapChainImages))
	poolSizes := []vk.DescriptorPoolSize{
		{
			Type:            vk.DescriptorTypeUniformBuffer,
			DescriptorCount: count,
		},
		{
			Type:            vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: count,
		},
	}

	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
		MaxSets:       count,
	}

	var descriptorPool vk.DescriptorPool
	res := vk.CreateDescriptorPool(b.device, &poolInfo, nil, &descriptorPool)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("failed to create descriptor pool: %w", err)
	}
	b.descriptorPool = descriptorPool
	b.swapchainScope.Defer("descriptor pool", func() {
		vk.DestroyDescriptorPool(b.device, b.descriptorPool, nil)
		b.descriptorPool = vk.NullDescriptorPool
		b.descriptorSets = nil
	})

	return nil
}

// createDescriptorSets binds the uniform buffer of each swapchain image and
// the texture to one descriptor set per image.
func (b *Backend) createDescriptorSets() error {
	count := len(b.swapChainImages)

	layouts := make([]vk.DescriptorSetLayout, count)
	for i := range layouts {
		layouts[i] = b.descriptorSetLayout
	}

	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     b.descriptorPool,
		DescriptorSetCount: uint32(count),
		PSetLayouts:        layouts,
	}

	b.descriptorSets = make([]vk.DescriptorSet, count)

	res := vk.AllocateDescriptorSets(b.device, &allocInfo, &b.descriptorSets[0])
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("failed to allocate descriptor set: %w", err)
	}

	for i := range b.descriptorSets {
		bufferInfo := vk.DescriptorBufferInfo{
			Buffer: b.uniformBuffers[i].Buffer.Buffer,
			Offset: 0,
			Range:  vk.DeviceSize(vk.WholeSize),
		}

		imageInfo := vk.DescriptorImageInfo{
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			ImageView:   b.texture.View,
			Sampler:     b.textureSampler,
		}

		descriptorWrites := []vk.WriteDescriptorSet{
			{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          b.descriptorSets[i],
				DstBinding:      0,
				DstArrayElement: 0,
				DescriptorType:  vk.DescriptorTypeUniformBuffer,
				DescriptorCount: 1,
				PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
			},
			{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          b.descriptorSets[i],
				DstBinding:      1,
				DstArrayElement: 0,
				DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
				DescriptorCount: 1,
				PImageInfo:      []vk.DescriptorImageInfo{imageInfo},
			},
		}

		vk.UpdateDescriptorSets(
			b.device,
			uint32(len(descriptorWrites)),
			descriptorWrites,
			0,
			nil,
		)
	}

	return nil
}

// updateUniformBuffer writes the camera matrices into the uniform buffer of
// a swapchain image.
func (b *Backend) updateUniformBuffer(image uint32) {
	ubo := b.camera.UniformData()
	vk.Memcopy(b.uniformBuffers[image].Mapped, unsafer.StructToBytes(&ubo))
}
