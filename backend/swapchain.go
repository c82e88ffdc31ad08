package backend

import (
	"cmp"
	"fmt"
	"math"
	"time"

	vk "github.com/vulkan-go/vulkan"

	"vulkan-engine/resources"
)

// swapChainSupportDetails describes a present surface. The type is suitable for
// passing around many details of the service between functions.
type swapChainSupportDetails struct {
	capabilities vk.SurfaceCapabilities
	formats      []vk.SurfaceFormat
	presentModes []vk.PresentMode
}

// swapChainPlan is everything about a swapchain which is decided before
// creating it.
type swapChainPlan struct {
	imageCount  uint32
	format      vk.Format
	colorSpace  vk.ColorSpace
	presentMode vk.PresentMode
	width       uint32
	height      uint32
	transform   vk.SurfaceTransformFlagBits
}

func (p swapChainPlan) extent() vk.Extent2D {
	return vk.Extent2D{Width: p.width, Height: p.height}
}

// planSwapChain picks the swapchain parameters for a surface. The framebuffer
// size is used only when the surface leaves the extent to the application.
func planSwapChain(
	support swapChainSupportDetails,
	fbWidth, fbHeight int,
) (swapChainPlan, error) {
	if len(support.formats) == 0 || len(support.presentModes) == 0 {
		return swapChainPlan{}, fmt.Errorf("surface has no formats or present modes")
	}

	capabilities := support.capabilities
	surfaceFormat := chooseSwapSurfaceFormat(support.formats)
	extent := chooseSwapExtent(capabilities, fbWidth, fbHeight)

	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}

	return swapChainPlan{
		imageCount:  imageCount,
		format:      surfaceFormat.Format,
		colorSpace:  surfaceFormat.ColorSpace,
		presentMode: chooseSwapPresentMode(support.presentModes),
		width:       extent.Width,
		height:      extent.Height,
		transform:   capabilities.CurrentTransform,
	}, nil
}

func chooseSwapSurfaceFormat(availableFormats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range availableFormats {
		if format.Format == vk.FormatB8g8r8a8Srgb &&
			format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}

	return availableFormats[0]
}

func chooseSwapPresentMode(available []vk.PresentMode) vk.PresentMode {
	for _, mode := range available {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}

	return vk.PresentModeFifo
}

func chooseSwapExtent(capabilities vk.SurfaceCapabilities, width, height int) vk.Extent2D {
	if capabilities.CurrentExtent.Width != math.MaxUint32 {
		return vk.Extent2D{
			Width:  capabilities.CurrentExtent.Width,
			Height: capabilities.CurrentExtent.Height,
		}
	}

	return vk.Extent2D{
		Width: clamp(
			uint32(width),
			capabilities.MinImageExtent.Width,
			capabilities.MaxImageExtent.Width,
		),
		Height: clamp(
			uint32(height),
			capabilities.MinImageExtent.Height,
			capabilities.MaxImageExtent.Height,
		),
	}
}

func clamp[T cmp.Ordered](val, min, max T) T {
	if val < min {
		val = min
	}
	if val > max {
		val = max
	}
	return val
}

func (b *Backend) querySwapChainSupport(
	device vk.PhysicalDevice,
) (swapChainSupportDetails, error) {
	details := swapChainSupportDetails{}

	var capabilities vk.SurfaceCapabilities
	res := vk.GetPhysicalDeviceSurfaceCapabilities(device, b.surface, &capabilities)
	if err := vk.Error(res); err != nil {
		return details, fmt.Errorf("failed to query device surface capabilities: %w", err)
	}
	capabilities.Deref()
	capabilities.CurrentExtent.Deref()
	capabilities.MinImageExtent.Deref()
	capabilities.MaxImageExtent.Deref()

	details.capabilities = capabilities

	var formatCount uint32
	res = vk.GetPhysicalDeviceSurfaceFormats(device, b.surface, &formatCount, nil)
	if err := vk.Error(res); err != nil {
		return details, fmt.Errorf("failed to query device surface formats: %w", err)
	}

	if formatCount != 0 {
		formats := make([]vk.SurfaceFormat, formatCount)
		vk.GetPhysicalDeviceSurfaceFormats(device, b.surface, &formatCount, formats)
		for _, format := range formats {
			format.Deref()
			details.formats = append(details.formats, format)
		}
	}

	var presentModeCount uint32
	res = vk.GetPhysicalDeviceSurfacePresentModes(
		device, b.surface, &presentModeCount, nil,
	)
	if err := vk.Error(res); err != nil {
		return details, fmt.Errorf("failed to query device surface present modes: %w", err)
	}

	if presentModeCount != 0 {
		presentModes := make([]vk.PresentMode, presentModeCount)
		vk.GetPhysicalDeviceSurfacePresentModes(
			device, b.surface, &presentModeCount, presentModes,
		)
		details.presentModes = presentModes
	}

	return details, nil
}

// createSwapChain builds a swapchain for the current surface size. With
// reuseOld the previous swapchain is handed to the driver and destroyed once
// the new one exists.
func (b *Backend) createSwapChain(reuseOld bool) error {
	support, err := b.querySwapChainSupport(b.physicalDevice)
	if err != nil {
		return err
	}

	width, height := b.window.GetFramebufferSize()
	plan, err := planSwapChain(support, width, height)
	if err != nil {
		return err
	}

	sharingMode, families := b.sharing()
	createInfo := vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               b.surface,
		MinImageCount:         plan.imageCount,
		ImageColorSpace:       plan.colorSpace,
		ImageFormat:           plan.format,
		ImageExtent:           plan.extent(),
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      sharingMode,
		QueueFamilyIndexCount: uint32(len(families)),
		PQueueFamilyIndices:   families,
		PreTransform:          plan.transform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           plan.presentMode,
		Clipped:               vk.True,
		OldSwapchain:          vk.NullSwapchain,
	}

	swapChain, err := replaceSwapChain(
		b.swapChain,
		vk.NullSwapchain,
		reuseOld,
		func(old vk.Swapchain) (vk.Swapchain, error) {
			createInfo.OldSwapchain = old

			var swapChain vk.Swapchain
			res := vk.CreateSwapchain(b.device, &createInfo, nil, &swapChain)
			if err := vk.Error(res); err != nil {
				return vk.NullSwapchain, fmt.Errorf("failed to create swap chain: %w", err)
			}
			return swapChain, nil
		},
		func(old vk.Swapchain) {
			vk.DestroySwapchain(b.device, old, nil)
		},
	)
	if err != nil {
		return err
	}
	b.swapChain = swapChain

	var imagesCount uint32
	res := vk.GetSwapchainImages(b.device, b.swapChain, &imagesCount, nil)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("failed to get swap chain images count: %w", err)
	}

	images := make([]vk.Image, imagesCount)
	res = vk.GetSwapchainImages(b.device, b.swapChain, &imagesCount, images)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("failed to get swap chain images: %w", err)
	}

	b.swapChainImages = images
	b.swapChainFormat = plan.format
	b.swapChainExtent = plan.extent()
	b.state = SwapchainReady

	b.debugf("swap chain: %d images, %dx%d", imagesCount, plan.width, plan.height)

	return nil
}

// replaceSwapChain creates a swapchain and destroys old only once the new one
// exists. With reuseOld, create is handed old so the driver can recycle its
// images, otherwise it gets null. A failed create leaves old alive.
func replaceSwapChain[H comparable](
	old, null H,
	reuseOld bool,
	create func(old H) (H, error),
	destroy func(H),
) (H, error) {
	handover := null
	if reuseOld {
		handover = old
	}

	return resources.Replace(
		func() (H, error) { return create(handover) },
		func() {
			if old != null {
				destroy(old)
			}
		},
	)
}

// destroySwapChain drops the swapchain itself. It lives outside the swapchain
// scope so a rebuild can pass it on as the old swapchain.
func (b *Backend) destroySwapChain() {
	if b.swapChain != vk.NullSwapchain {
		vk.DestroySwapchain(b.device, b.swapChain, nil)
	}
	b.swapChain = vk.NullSwapchain
	b.swapChainImages = nil
}

func (b *Backend) createImageViews() error {
	b.swapchainScope.Defer("swap chain image views", func() {
		for _, imageView := range b.swapChainViews {
			vk.DestroyImageView(b.device, imageView, nil)
		}
		b.swapChainViews = nil
	})

	for i, swapChainImage := range b.swapChainImages {
		imageView, err := b.createImageView(
			swapChainImage,
			b.swapChainFormat,
			vk.ImageAspectFlags(vk.ImageAspectColorBit),
		)
		if err != nil {
			return fmt.Errorf("failed to create image %d: %w", i, err)
		}

		b.swapChainViews = append(b.swapChainViews, imageView)
	}

	return nil
}

// framebufferPollInterval is how long waitForFramebuffer sleeps between
// checks of a minimized window.
const framebufferPollInterval = 10 * time.Millisecond

// waitForFramebuffer blocks while the window has a zero sized framebuffer,
// which is the case while it is minimized.
func waitForFramebuffer(size func() (int, int), wait func(), interval time.Duration) {
	for {
		width, height := size()
		if width != 0 && height != 0 {
			return
		}

		wait()
		time.Sleep(interval)
	}
}
