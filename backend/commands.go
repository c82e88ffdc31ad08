package backend

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

func (b *Backend) createCommandPool() error {
	poolInfo := vk.CommandPoolCreateInfo{
		SType: vk.StructureTypeCommandPoolCreateInfo,
		Flags: vk.CommandPoolCreateFlags(
			vk.CommandPoolCreateResetCommandBufferBit,
		),
		QueueFamilyIndex: b.graphics.family,
	}

	var commandPool vk.CommandPool
	res := vk.CreateCommandPool(b.device, &poolInfo, nil, &commandPool)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("failed to create command pool: %w", err)
	}
	b.commandPool = commandPool
	b.swapchainScope.Defer("command pool", func() {
		vk.DestroyCommandPool(b.device, b.commandPool, nil)
		b.commandPool = vk.CommandPool(vk.NullHandle)
		b.commandBuffers = nil
	})

	return nil
}

func (b *Backend) allocateCommandBuffers() error {
	count := uint32(len(b.framebuffers))
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        b.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}

	commandBuffers := make([]vk.CommandBuffer, count)
	res := vk.AllocateCommandBuffers(b.device, &allocInfo, commandBuffers)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("failed to allocate command buffers: %w", err)
	}
	b.commandBuffers = commandBuffers

	return nil
}

// recordRender records the draw commands of every swapchain image. The
// buffers are reused for all frames until something they reference changes.
func (b *Backend) recordRender() error {
	if b.commandBuffers == nil {
		if err := b.allocateCommandBuffers(); err != nil {
			return err
		}
	}

	b.state = Recording
	for i, commandBuffer := range b.commandBuffers {
		if err := b.recordCommandBuffer(commandBuffer, i); err != nil {
			return fmt.Errorf("recording command buffer %d: %w", i, err)
		}
	}
	b.state = Recorded

	return nil
}

func (b *Backend) recordCommandBuffer(commandBuffer vk.CommandBuffer, image int) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit),
	}

	res := vk.BeginCommandBuffer(commandBuffer, &beginInfo)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("cannot add begin command to the buffer: %w", err)
	}

	var clearValues [2]vk.ClearValue

	clearValues[0].SetColor([]float32{0, 0, 0, 1})
	clearValues[1].SetDepthStencil(1, 0)

	renderPassInfo := vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      b.renderPass,
		Framebuffer:     b.framebuffers[image],
		RenderArea:      b.scissor(),
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues[:],
	}

	vk.CmdBeginRenderPass(commandBuffer, &renderPassInfo, vk.SubpassContentsInline)
	vk.CmdBindPipeline(commandBuffer, vk.PipelineBindPointGraphics, b.graphicsPipeline)

	vk.CmdSetViewport(commandBuffer, 0, 1, []vk.Viewport{b.viewport()})
	vk.CmdSetScissor(commandBuffer, 0, 1, []vk.Rect2D{b.scissor()})

	vertexBuffers := []vk.Buffer{b.vertexBuffer.Buffer}
	offsets := []vk.DeviceSize{0}
	vk.CmdBindVertexBuffers(commandBuffer, 0, 1, vertexBuffers, offsets)
	vk.CmdBindIndexBuffer(commandBuffer, b.indexBuffer.Buffer, 0, vk.IndexTypeUint32)

	vk.CmdBindDescriptorSets(
		commandBuffer,
		vk.PipelineBindPointGraphics,
		b.pipelineLayout,
		0,
		1,
		[]vk.DescriptorSet{b.descriptorSets[image]},
		0,
		nil,
	)

	vk.CmdDrawIndexed(commandBuffer, uint32(len(b.mesh.Indices)), 1, 0, 0, 0)
	vk.CmdEndRenderPass(commandBuffer)

	if err := vk.Error(vk.EndCommandBuffer(commandBuffer)); err != nil {
		return fmt.Errorf("recording commands to buffer failed: %w", err)
	}
	return nil
}
