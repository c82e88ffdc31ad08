package resources_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	vk "github.com/vulkan-go/vulkan"

	"vulkan-engine/resources"
)

var _ = Describe("LayoutTransition", func() {
	It("prepares images for a transfer on any queue", func() {
		t, err := resources.LayoutTransition(
			vk.ImageLayoutUndefined,
			vk.ImageLayoutTransferDstOptimal,
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(t.DstAccess).To(Equal(vk.AccessFlags(vk.AccessTransferWriteBit)))
		Expect(t.Graphics).To(BeFalse())
	})

	It("makes textures readable from the fragment shader", func() {
		t, err := resources.LayoutTransition(
			vk.ImageLayoutTransferDstOptimal,
			vk.ImageLayoutShaderReadOnlyOptimal,
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(t.DstStage).To(Equal(vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)))
		Expect(t.Graphics).To(BeTrue())
	})

	It("prepares depth attachments", func() {
		t, err := resources.LayoutTransition(
			vk.ImageLayoutUndefined,
			vk.ImageLayoutDepthStencilAttachmentOptimal,
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Graphics).To(BeTrue())
	})

	It("refuses anything else", func() {
		_, err := resources.LayoutTransition(
			vk.ImageLayoutShaderReadOnlyOptimal,
			vk.ImageLayoutTransferDstOptimal,
		)
		Expect(err).To(MatchError(resources.ErrUnsupportedTransition))
	})
})

var _ = Describe("AspectMask", func() {
	It("adds the stencil aspect for stencil formats", func() {
		depth := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
		stencil := vk.ImageAspectFlags(vk.ImageAspectStencilBit)

		Expect(resources.AspectMask(vk.FormatD32Sfloat,
			vk.ImageLayoutDepthStencilAttachmentOptimal)).To(Equal(depth))
		Expect(resources.AspectMask(vk.FormatD32SfloatS8Uint,
			vk.ImageLayoutDepthStencilAttachmentOptimal)).To(Equal(depth | stencil))
		Expect(resources.AspectMask(vk.FormatR8g8b8a8Srgb,
			vk.ImageLayoutShaderReadOnlyOptimal)).To(Equal(vk.ImageAspectFlags(vk.ImageAspectColorBit)))
	})
})
