package backend

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

type buildStep struct {
	name string
	fn   func() error
}

// swapChainSteps lists, in order, everything which is created for a
// swapchain. Later steps depend on the earlier ones.
func (b *Backend) swapChainSteps(reuseOld bool) []buildStep {
	return []buildStep{
		{"createCommandPool", b.createCommandPool},
		{"createSwapChain", func() error { return b.createSwapChain(reuseOld) }},
		{"createImageViews", b.createImageViews},
		{"createRenderPass", b.createRenderPass},
		{"createDescriptorSetLayout", b.createDescriptorSetLayout},
		{"createDepthResources", b.createDepthResources},
		{"createGraphicsPipeline", b.createGraphicsPipeline},
		{"createFramebuffers", b.createFramebuffers},
		{"createUniformBuffers", b.createUniformBuffers},
		{"createDescriptorPool", b.createDescriptorPool},
		{"createDescriptorSets", b.createDescriptorSets},
		{"uploadModel", b.uploadModel},
		{"recordRender", b.recordRender},
	}
}

func (b *Backend) buildSwapChain(reuseOld bool) error {
	for _, step := range b.swapChainSteps(reuseOld) {
		if err := step.fn(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	b.camera.SetViewport(b.swapChainExtent.Width, b.swapChainExtent.Height)
	return nil
}

// rebuildSequence is the order of a swapchain rebuild: wait until the GPU is
// done with the old objects, wait until the window is visible, tear down, build
// again and only then let frames refer to the new images.
type rebuildSequence struct {
	waitIdle    func() error
	waitVisible func()
	teardown    func()
	build       func() error
	reset       func()
}

func (s rebuildSequence) run() error {
	if err := s.waitIdle(); err != nil {
		return fmt.Errorf("waiting for device idle: %w", err)
	}

	s.waitVisible()
	s.teardown()

	if err := s.build(); err != nil {
		return err
	}

	s.reset()
	return nil
}

// RecreateSwapChains tears down everything which depends on the swapchain and
// builds it again for the current window size. While the window is minimized
// it blocks until it has a visible size again.
func (b *Backend) RecreateSwapChains() error {
	err := rebuildSequence{
		waitIdle: func() error {
			return vk.Error(vk.DeviceWaitIdle(b.device))
		},
		waitVisible: func() {
			waitForFramebuffer(b.window.GetFramebufferSize, b.cfg.WaitEvents,
				framebufferPollInterval)
		},
		teardown: func() {
			b.debugf("releasing %d swap chain resources", b.swapchainScope.Len())
			b.swapchainScope.Release()
			b.state = SurfaceReady
		},
		build: func() error {
			return b.buildSwapChain(true)
		},
		reset: func() {
			if b.scheduler != nil {
				b.scheduler.Reset()
			}
		},
	}.run()
	if err != nil {
		return err
	}

	b.debugf("swap chain recreated at %dx%d",
		b.swapChainExtent.Width, b.swapChainExtent.Height)

	return nil
}
