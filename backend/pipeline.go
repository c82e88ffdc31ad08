package backend

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"vulkan-engine/geometry"
	"vulkan-engine/resources"
)

// depthFormatCandidates are tried in order when picking the depth format.
var depthFormatCandidates = []vk.Format{
	vk.FormatD32Sfloat,
	vk.FormatD32SfloatS8Uint,
	vk.FormatD24UnormS8Uint,
}

func (b *Backend) findSupportedFormat(
	candidates []vk.Format,
	tiling vk.ImageTiling,
	features vk.FormatFeatureFlags,
) (vk.Format, error) {
	for _, format := range candidates {
		var props vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(b.physicalDevice, format, &props)
		props.Deref()

		if tiling == vk.ImageTilingLinear &&
			(props.LinearTilingFeatures&features) == features {
			return format, nil
		}

		if tiling == vk.ImageTilingOptimal &&
			(props.OptimalTilingFeatures&features) == features {
			return format, nil
		}
	}

	return 0, fmt.Errorf("could not find suitable format")
}

func (b *Backend) pickDepthFormat() error {
	format, err := b.findSupportedFormat(
		depthFormatCandidates,
		vk.ImageTilingOptimal,
		vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit),
	)
	if err != nil {
		return fmt.Errorf("cannot find suitable depth image format: %w", err)
	}

	b.depthFormat = format
	return nil
}

func (b *Backend) createRenderPass() error {
	depthAttachment := vk.AttachmentDescription{
		Format:         b.depthFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	depthAttachmentRef := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	colorAttachment := vk.AttachmentDescription{
		Format:         b.swapChainFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}

	colorAttachmentRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       []vk.AttachmentReference{colorAttachmentRef},
		PDepthStencilAttachment: &depthAttachmentRef,
	}

	dependency := vk.SubpassDependency{
		SrcSubpass: vk.SubpassExternal,
		DstSubpass: 0,
		SrcStageMask: vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit) |
			vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit),
		SrcAccessMask: 0,
		DstStageMask: vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit) |
			vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit) |
			vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit),
	}

	attachments := []vk.AttachmentDescription{
		colorAttachment,
		depthAttachment,
	}

	renderPassInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var renderPass vk.RenderPass
	res := vk.CreateRenderPass(b.device, &renderPassInfo, nil, &renderPass)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("failed to create render pass: %w", err)
	}
	b.renderPass = renderPass
	b.swapchainScope.Defer("render pass", func() {
		vk.DestroyRenderPass(b.device, b.renderPass, nil)
		b.renderPass = vk.RenderPass(vk.NullHandle)
	})

	return nil
}

func (b *Backend) createDescriptorSetLayout() error {
	bindings := []vk.DescriptorSetLayoutBinding{
		{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
		{
			Binding:         1,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	}

	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var descriptorSetLayout vk.DescriptorSetLayout
	res := vk.CreateDescriptorSetLayout(b.device, &layoutInfo, nil, &descriptorSetLayout)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("creating descriptor set layout: %w", err)
	}
	b.descriptorSetLayout = descriptorSetLayout
	b.swapchainScope.Defer("descriptor set layout", func() {
		vk.DestroyDescriptorSetLayout(b.device, b.descriptorSetLayout, nil)
		b.descriptorSetLayout = vk.NullDescriptorSetLayout
	})

	return nil
}

func (b *Backend) createDepthResources() error {
	depthImage, err := b.CreateImage(
		b.swapChainExtent.Width,
		b.swapChainExtent.Height,
		b.depthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		resources.DeviceLocal,
	)
	if err != nil {
		return fmt.Errorf("could not create depth image: %w", err)
	}
	b.depthImage = depthImage
	b.swapchainScope.Defer("depth image", func() {
		b.depthImage.Destroy(b.device)
	})

	view, err := b.createImageView(
		depthImage.Image,
		b.depthFormat,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit),
	)
	if err != nil {
		return fmt.Errorf("failed to create depth image view: %w", err)
	}
	b.depthImage.View = view

	err = b.transitionImageLayout(
		depthImage.Image,
		b.depthFormat,
		vk.ImageLayoutUndefined,
		vk.ImageLayoutDepthStencilAttachmentOptimal,
	)
	if err != nil {
		return fmt.Errorf("transitioning depth image: %w", err)
	}

	return nil
}

func (b *Backend) createGraphicsPipeline() error {
	shaderStages := b.program.Stages()

	bindingDescription := geometry.BindingDescription()
	attributeDescriptions := geometry.AttributeDescriptions()

	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,

		VertexBindingDescriptionCount: 1,
		PVertexBindingDescriptions:    []vk.VertexInputBindingDescription{bindingDescription},

		VertexAttributeDescriptionCount: uint32(len(attributeDescriptions)),
		PVertexAttributeDescriptions:    attributeDescriptions,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}

	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	}

	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
		PViewports:    []vk.Viewport{b.viewport()},
		PScissors:     []vk.Rect2D{b.scissor()},
	}

	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		LineWidth:               1,
		CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
	}

	multisampling := vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:   vk.False,
		RasterizationSamples:  vk.SampleCount1Bit,
		MinSampleShading:      1,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}

	colorBlendAttachment := vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(
			vk.ColorComponentRBit |
				vk.ColorComponentGBit |
				vk.ColorComponentBBit |
				vk.ColorComponentABit,
		),
		BlendEnable:         vk.False,
		SrcColorBlendFactor: vk.BlendFactorOne,
		DstColorBlendFactor: vk.BlendFactorZero,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOne,
		DstAlphaBlendFactor: vk.BlendFactorZero,
		AlphaBlendOp:        vk.BlendOpAdd,
	}

	colorBlending := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments: []vk.PipelineColorBlendAttachmentState{
			colorBlendAttachment,
		},
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       vk.True,
		DepthWriteEnable:      vk.True,
		DepthCompareOp:        vk.CompareOpLess,
		DepthBoundsTestEnable: vk.False,
		MinDepthBounds:        0,
		MaxDepthBounds:        1,
		StencilTestEnable:     vk.False,
	}

	pipelineLayoutInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{b.descriptorSetLayout},
	}

	var pipelineLayout vk.PipelineLayout
	res := vk.CreatePipelineLayout(b.device, &pipelineLayoutInfo, nil, &pipelineLayout)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("failed to create pipeline layout: %w", err)
	}
	b.pipelineLayout = pipelineLayout
	b.swapchainScope.Defer("pipeline layout", func() {
		vk.DestroyPipelineLayout(b.device, b.pipelineLayout, nil)
		b.pipelineLayout = vk.PipelineLayout(vk.NullHandle)
	})

	pipelineInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(shaderStages)),
		PStages:             shaderStages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisampling,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlending,
		PDynamicState:       &dynamicState,
		Layout:              b.pipelineLayout,
		RenderPass:          b.renderPass,
		Subpass:             0,
		BasePipelineHandle:  vk.Pipeline(vk.NullHandle),
		BasePipelineIndex:   -1,
	}

	pipelines := make([]vk.Pipeline, 1)
	res = vk.CreateGraphicsPipelines(
		b.device,
		vk.PipelineCache(vk.NullHandle),
		1,
		[]vk.GraphicsPipelineCreateInfo{pipelineInfo},
		nil,
		pipelines,
	)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("failed to create graphics pipeline: %w", err)
	}
	b.graphicsPipeline = pipelines[0]
	b.swapchainScope.Defer("graphics pipeline", func() {
		vk.DestroyPipeline(b.device, b.graphicsPipeline, nil)
		b.graphicsPipeline = vk.Pipeline(vk.NullHandle)
	})

	b.state = PipelineReady
	return nil
}

func (b *Backend) viewport() vk.Viewport {
	return vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(b.swapChainExtent.Width),
		Height:   float32(b.swapChainExtent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
}

func (b *Backend) scissor() vk.Rect2D {
	return vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: b.swapChainExtent,
	}
}

func (b *Backend) createFramebuffers() error {
	b.framebuffers = make([]vk.Framebuffer, 0, len(b.swapChainViews))
	b.swapchainScope.Defer("framebuffers", func() {
		for _, frameBuffer := range b.framebuffers {
			vk.DestroyFramebuffer(b.device, frameBuffer, nil)
		}
		b.framebuffers = nil
	})

	for i, swapChainView := range b.swapChainViews {
		attachments := []vk.ImageView{
			swapChainView,
			b.depthImage.View,
		}

		frameBufferInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      b.renderPass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           b.swapChainExtent.Width,
			Height:          b.swapChainExtent.Height,
			Layers:          1,
		}

		var frameBuffer vk.Framebuffer
		res := vk.CreateFramebuffer(b.device, &frameBufferInfo, nil, &frameBuffer)
		if err := vk.Error(res); err != nil {
			return fmt.Errorf("failed to create frame buffer %d: %w", i, err)
		}

		b.framebuffers = append(b.framebuffers, frameBuffer)
	}

	return nil
}
