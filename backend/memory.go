package backend

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"vulkan-engine/resources"
)

var _ resources.Stager[resources.Buffer] = (*Backend)(nil)

// sharing returns how resources used from both the present and the transfer
// queue have to be shared. Vulkan does not allow listing a family twice.
func (b *Backend) sharing() (vk.SharingMode, []uint32) {
	if b.families.Shared() {
		return vk.SharingModeExclusive, nil
	}
	return vk.SharingModeConcurrent, b.families.Unique()
}

// CreateBuffer creates a buffer and binds it to newly allocated memory with
// the given properties. On error nothing is left behind.
func (b *Backend) CreateBuffer(
	size vk.DeviceSize,
	usage vk.BufferUsageFlags,
	properties vk.MemoryPropertyFlags,
) (resources.Buffer, error) {
	sharingMode, families := b.sharing()
	bufferInfo := vk.BufferCreateInfo{
		SType:                 vk.StructureTypeBufferCreateInfo,
		Size:                  size,
		Usage:                 usage,
		SharingMode:           sharingMode,
		QueueFamilyIndexCount: uint32(len(families)),
		PQueueFamilyIndices:   families,
	}

	buf := resources.Buffer{Size: size}
	res := vk.CreateBuffer(b.device, &bufferInfo, nil, &buf.Buffer)
	if err := vk.Error(res); err != nil {
		return resources.Buffer{}, fmt.Errorf("failed to create buffer: %w", err)
	}

	var memRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(b.device, buf.Buffer, &memRequirements)
	memRequirements.Deref()

	memory, err := b.allocate(memRequirements, properties)
	if err != nil {
		buf.Destroy(b.device)
		return resources.Buffer{}, err
	}
	buf.Memory = memory

	res = vk.BindBufferMemory(b.device, buf.Buffer, buf.Memory, 0)
	if err := vk.Error(res); err != nil {
		buf.Destroy(b.device)
		return resources.Buffer{}, fmt.Errorf("failed to bind buffer memory: %w", err)
	}

	return buf, nil
}

// CreateImage creates a 2D image with bound memory. The view is not created.
func (b *Backend) CreateImage(
	width, height uint32,
	format vk.Format,
	tiling vk.ImageTiling,
	usage vk.ImageUsageFlags,
	properties vk.MemoryPropertyFlags,
) (resources.Image, error) {
	sharingMode, families := b.sharing()
	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
		MipLevels:             1,
		ArrayLayers:           1,
		Format:                format,
		Tiling:                tiling,
		InitialLayout:         vk.ImageLayoutUndefined,
		Usage:                 usage,
		SharingMode:           sharingMode,
		QueueFamilyIndexCount: uint32(len(families)),
		PQueueFamilyIndices:   families,
		Samples:               vk.SampleCount1Bit,
	}

	img := resources.Image{Format: format}
	res := vk.CreateImage(b.device, &imageInfo, nil, &img.Image)
	if err := vk.Error(res); err != nil {
		return resources.Image{}, fmt.Errorf("failed to create an image: %w", err)
	}

	var memRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(b.device, img.Image, &memRequirements)
	memRequirements.Deref()

	memory, err := b.allocate(memRequirements, properties)
	if err != nil {
		img.Destroy(b.device)
		return resources.Image{}, err
	}
	img.Memory = memory

	res = vk.BindImageMemory(b.device, img.Image, img.Memory, 0)
	if err := vk.Error(res); err != nil {
		img.Destroy(b.device)
		return resources.Image{}, fmt.Errorf("failed to bind image memory: %w", err)
	}

	return img, nil
}

func (b *Backend) allocate(
	req vk.MemoryRequirements,
	properties vk.MemoryPropertyFlags,
) (vk.DeviceMemory, error) {
	memTypeIndex, err := resources.FindMemoryType(b.memoryTable, req.MemoryTypeBits, properties)
	if err != nil {
		return vk.NullDeviceMemory, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: memTypeIndex,
	}

	var memory vk.DeviceMemory
	res := vk.AllocateMemory(b.device, &allocInfo, nil, &memory)
	if err := vk.Error(res); err != nil {
		return vk.NullDeviceMemory, fmt.Errorf("failed to allocate memory: %w", err)
	}

	return memory, nil
}

func (b *Backend) createImageView(
	image vk.Image,
	format vk.Format,
	aspectFlags vk.ImageAspectFlags,
) (vk.ImageView, error) {
	createInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspectFlags,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	var imageView vk.ImageView
	res := vk.CreateImageView(b.device, &createInfo, nil, &imageView)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to create image view: %w", err)
	}

	return imageView, nil
}

// CreateStagingBuffer implements resources.Stager.
func (b *Backend) CreateStagingBuffer(size vk.DeviceSize) (resources.Buffer, error) {
	return b.CreateBuffer(
		size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		resources.HostVisible,
	)
}

// Write implements resources.Stager.
func (b *Backend) Write(buf resources.Buffer, data []byte) error {
	var pData unsafe.Pointer
	res := vk.MapMemory(b.device, buf.Memory, 0, vk.DeviceSize(len(data)), 0, &pData)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("failed to map memory: %w", err)
	}
	defer vk.UnmapMemory(b.device, buf.Memory)

	vk.Memcopy(pData, data)
	return nil
}

// CopyBuffer implements resources.Stager. The copy runs on the transfer queue.
func (b *Backend) CopyBuffer(src, dst resources.Buffer, size vk.DeviceSize) error {
	return b.oneShot(&b.transfer, func(commandBuffer vk.CommandBuffer) {
		copyRegion := vk.BufferCopy{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      size,
		}
		vk.CmdCopyBuffer(commandBuffer, src.Buffer, dst.Buffer, 1, []vk.BufferCopy{copyRegion})
	})
}

// DestroyBuffer implements resources.Stager.
func (b *Backend) DestroyBuffer(buf resources.Buffer) {
	buf.Destroy(b.device)
}

// oneShot records commands into a temporary buffer from the transient pool of
// q, submits it and waits until the queue is idle.
func (b *Backend) oneShot(q *submitQueue, record func(vk.CommandBuffer)) error {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		Level:              vk.CommandBufferLevelPrimary,
		CommandPool:        q.pool,
		CommandBufferCount: 1,
	}

	commandBuffers := make([]vk.CommandBuffer, 1)
	res := vk.AllocateCommandBuffers(b.device, &allocInfo, commandBuffers)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("failed to allocate command buffer: %w", err)
	}
	defer vk.FreeCommandBuffers(b.device, q.pool, 1, commandBuffers)

	commandBuffer := commandBuffers[0]
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}

	if err := vk.Error(vk.BeginCommandBuffer(commandBuffer, &beginInfo)); err != nil {
		return fmt.Errorf("failed to begin command buffer: %w", err)
	}

	record(commandBuffer)

	if err := vk.Error(vk.EndCommandBuffer(commandBuffer)); err != nil {
		return fmt.Errorf("failed end command buffer: %w", err)
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    commandBuffers,
	}

	res = vk.QueueSubmit(q.queue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("failed to submit to queue %d: %w", q.family, err)
	}

	if err := vk.Error(vk.QueueWaitIdle(q.queue)); err != nil {
		return fmt.Errorf("failed to wait on queue %d idle: %w", q.family, err)
	}

	return nil
}

// transitionImageLayout moves image to newLayout. Transitions into a layout
// only graphics stages use run on the graphics queue, the rest on the
// transfer queue.
func (b *Backend) transitionImageLayout(
	image vk.Image,
	format vk.Format,
	oldLayout vk.ImageLayout,
	newLayout vk.ImageLayout,
) error {
	t, err := resources.LayoutTransition(oldLayout, newLayout)
	if err != nil {
		return err
	}

	q := &b.transfer
	if t.Graphics {
		q = &b.graphics
	}

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     resources.AspectMask(format, newLayout),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		SrcAccessMask: t.SrcAccess,
		DstAccessMask: t.DstAccess,
	}

	return b.oneShot(q, func(commandBuffer vk.CommandBuffer) {
		vk.CmdPipelineBarrier(
			commandBuffer,
			t.SrcStage, t.DstStage,
			0,
			0, nil,
			0, nil,
			1, []vk.ImageMemoryBarrier{barrier},
		)
	})
}

func (b *Backend) copyBufferToImage(
	buffer vk.Buffer,
	image vk.Image,
	width, height uint32,
) error {
	region := vk.BufferImageCopy{
		BufferOffset:      0,
		BufferRowLength:   0,
		BufferImageHeight: 0,

		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},

		ImageOffset: vk.Offset3D{X: 0, Y: 0, Z: 0},
		ImageExtent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
	}

	return b.oneShot(&b.transfer, func(commandBuffer vk.CommandBuffer) {
		vk.CmdCopyBufferToImage(
			commandBuffer,
			buffer,
			image,
			vk.ImageLayoutTransferDstOptimal,
			1,
			[]vk.BufferImageCopy{region},
		)
	})
}
