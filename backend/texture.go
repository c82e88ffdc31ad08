package backend

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"vulkan-engine/imagefile"
	"vulkan-engine/resources"
)

const textureFormat = vk.FormatR8g8b8a8Srgb

// createTextureImage uploads img into a device local image and creates its
// view. A texture loaded before is destroyed only after the new one is
// complete, so a failed upload keeps the old texture in use.
func (b *Backend) createTextureImage(img *imagefile.Image) error {
	if img.Width == 0 || img.Height == 0 {
		return fmt.Errorf("texture has no pixels")
	}

	first := b.texture.Image == vk.NullImage
	if !first {
		// Frames in flight may still sample the old texture.
		if err := vk.Error(vk.DeviceWaitIdle(b.device)); err != nil {
			return fmt.Errorf("waiting for device idle: %w", err)
		}
	}

	texture, err := resources.Replace(
		func() (resources.Image, error) { return b.uploadTexture(img) },
		func() { b.texture.Destroy(b.device) },
	)
	if err != nil {
		return err
	}
	b.texture = texture

	if first {
		b.lifetime.Defer("texture", func() {
			b.texture.Destroy(b.device)
		})
	}

	b.debugf("texture uploaded: %dx%d", img.Width, img.Height)
	return nil
}

// uploadTexture creates a new texture image with its view. On error nothing
// it created is left behind.
func (b *Backend) uploadTexture(img *imagefile.Image) (resources.Image, error) {
	staging, err := b.CreateStagingBuffer(vk.DeviceSize(img.Size()))
	if err != nil {
		return resources.Image{}, fmt.Errorf("failed to create texture staging buffer: %w", err)
	}
	defer b.DestroyBuffer(staging)

	if err := b.Write(staging, img.Pix); err != nil {
		return resources.Image{}, fmt.Errorf("writing texture staging buffer: %w", err)
	}

	texture, err := b.CreateImage(
		img.Width,
		img.Height,
		textureFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)|
			vk.ImageUsageFlags(vk.ImageUsageSampledBit),
		resources.DeviceLocal,
	)
	if err != nil {
		return resources.Image{}, fmt.Errorf("failed to create Vulkan image: %w", err)
	}

	fail := func(err error) (resources.Image, error) {
		texture.Destroy(b.device)
		return resources.Image{}, err
	}

	err = b.transitionImageLayout(
		texture.Image,
		textureFormat,
		vk.ImageLayoutUndefined,
		vk.ImageLayoutTransferDstOptimal,
	)
	if err != nil {
		return fail(fmt.Errorf("transition image layout: %w", err))
	}

	err = b.copyBufferToImage(staging.Buffer, texture.Image, img.Width, img.Height)
	if err != nil {
		return fail(fmt.Errorf("copying buffer to image: %w", err))
	}

	err = b.transitionImageLayout(
		texture.Image,
		textureFormat,
		vk.ImageLayoutTransferDstOptimal,
		vk.ImageLayoutShaderReadOnlyOptimal,
	)
	if err != nil {
		return fail(fmt.Errorf("transitioning to read only optimal layout: %w", err))
	}

	view, err := b.createImageView(
		texture.Image,
		textureFormat,
		vk.ImageAspectFlags(vk.ImageAspectColorBit),
	)
	if err != nil {
		return fail(err)
	}
	texture.View = view

	return texture, nil
}

func (b *Backend) createTextureSampler() error {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(b.physicalDevice, &properties)
	properties.Deref()
	properties.Limits.Deref()

	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           min(16, properties.Limits.MaxSamplerAnisotropy),
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		MipLodBias:              0,
		MinLod:                  0,
		MaxLod:                  0,
	}

	var sampler vk.Sampler
	res := vk.CreateSampler(b.device, &samplerInfo, nil, &sampler)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("failed to create sampler: %w", err)
	}
	b.textureSampler = sampler
	b.lifetime.Defer("texture sampler", func() {
		vk.DestroySampler(b.device, b.textureSampler, nil)
		b.textureSampler = vk.NullSampler
	})

	return nil
}
