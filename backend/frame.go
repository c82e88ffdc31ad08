package backend

import (
	"fmt"
	"math"

	vk "github.com/vulkan-go/vulkan"

	"vulkan-engine/frames"
)

var _ frames.Target = (*Backend)(nil)

func (b *Backend) createSyncObjects() error {
	semaphoreInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	fenceInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}

	b.lifetime.Defer("sync objects", func() {
		for _, sem := range b.imageAvailableSems {
			vk.DestroySemaphore(b.device, sem, nil)
		}
		for _, sem := range b.renderFinishedSems {
			vk.DestroySemaphore(b.device, sem, nil)
		}
		for _, fence := range b.inFlightFences {
			vk.DestroyFence(b.device, fence, nil)
		}
		b.imageAvailableSems = nil
		b.renderFinishedSems = nil
		b.inFlightFences = nil
	})

	for i := 0; i < b.cfg.FramesInFlight; i++ {
		var imageAvailableSem vk.Semaphore
		if err := vk.Error(
			vk.CreateSemaphore(b.device, &semaphoreInfo, nil, &imageAvailableSem),
		); err != nil {
			return fmt.Errorf("failed to create imageAvailableSem: %w", err)
		}
		b.imageAvailableSems = append(b.imageAvailableSems, imageAvailableSem)

		var renderFinishedSem vk.Semaphore
		if err := vk.Error(
			vk.CreateSemaphore(b.device, &semaphoreInfo, nil, &renderFinishedSem),
		); err != nil {
			return fmt.Errorf("failed to create renderFinishedSem: %w", err)
		}
		b.renderFinishedSems = append(b.renderFinishedSems, renderFinishedSem)

		var fence vk.Fence
		if err := vk.Error(
			vk.CreateFence(b.device, &fenceInfo, nil, &fence),
		); err != nil {
			return fmt.Errorf("failed to create inFlightFence: %w", err)
		}
		b.inFlightFences = append(b.inFlightFences, fence)
	}

	return nil
}

// WaitForFence implements frames.Target.
func (b *Backend) WaitForFence(slot int) error {
	fences := []vk.Fence{b.inFlightFences[slot]}
	res := vk.WaitForFences(b.device, 1, fences, vk.True, math.MaxUint64)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("waiting for fence %d: %w", slot, err)
	}
	return nil
}

// ResetFence implements frames.Target.
func (b *Backend) ResetFence(slot int) error {
	fences := []vk.Fence{b.inFlightFences[slot]}
	if err := vk.Error(vk.ResetFences(b.device, 1, fences)); err != nil {
		return fmt.Errorf("resetting fence %d: %w", slot, err)
	}
	return nil
}

// Acquire implements frames.Target.
func (b *Backend) Acquire(slot int) (uint32, error) {
	var imageIndex uint32
	res := vk.AcquireNextImage(
		b.device,
		b.swapChain,
		math.MaxUint64,
		b.imageAvailableSems[slot],
		vk.NullFence,
		&imageIndex,
	)

	switch res {
	case vk.Success:
		return imageIndex, nil
	case vk.Suboptimal:
		return imageIndex, frames.ErrSuboptimal
	case vk.ErrorOutOfDate:
		return 0, frames.ErrOutOfDate
	default:
		return 0, fmt.Errorf("failed to acquire swap chain image: %w", vk.Error(res))
	}
}

// Update implements frames.Target.
func (b *Backend) Update(image uint32) error {
	if int(image) >= len(b.uniformBuffers) {
		return fmt.Errorf("no uniform buffer for image %d", image)
	}
	b.updateUniformBuffer(image)
	return nil
}

// Submit implements frames.Target.
func (b *Backend) Submit(slot int, image uint32) error {
	signalSemaphores := []vk.Semaphore{
		b.renderFinishedSems[slot],
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{b.imageAvailableSems[slot]},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{b.commandBuffers[image]},
		PSignalSemaphores:    signalSemaphores,
		SignalSemaphoreCount: uint32(len(signalSemaphores)),
	}

	res := vk.QueueSubmit(
		b.graphics.queue,
		1,
		[]vk.SubmitInfo{submitInfo},
		b.inFlightFences[slot],
	)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("queue submit error: %w", err)
	}

	return nil
}

// Present implements frames.Target.
func (b *Backend) Present(slot int, image uint32) error {
	waitSemaphores := []vk.Semaphore{
		b.renderFinishedSems[slot],
	}

	swapChains := []vk.Swapchain{
		b.swapChain,
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: uint32(len(waitSemaphores)),
		PWaitSemaphores:    waitSemaphores,
		SwapchainCount:     uint32(len(swapChains)),
		PSwapchains:        swapChains,
		PImageIndices:      []uint32{image},
	}

	res := vk.QueuePresent(b.graphics.queue, &presentInfo)
	switch res {
	case vk.Success:
		return nil
	case vk.Suboptimal:
		return frames.ErrSuboptimal
	case vk.ErrorOutOfDate:
		return frames.ErrOutOfDate
	default:
		return fmt.Errorf("failed to present swap chain image: %w", vk.Error(res))
	}
}

// RecreateSwapChain implements frames.Target.
func (b *Backend) RecreateSwapChain() error {
	return b.RecreateSwapChains()
}
