package resources

import (
	"errors"
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// ErrUnsupportedTransition is returned for image layout changes the backend
// does not know how to synchronize.
var ErrUnsupportedTransition = errors.New("unsupported layout transition")

// Transition is the barrier needed to move an image between two layouts.
type Transition struct {
	SrcAccess vk.AccessFlags
	DstAccess vk.AccessFlags
	SrcStage  vk.PipelineStageFlags
	DstStage  vk.PipelineStageFlags

	// Graphics is true when the destination stage only exists on graphics
	// queues, so the barrier cannot be recorded on a transfer-only queue.
	Graphics bool
}

// LayoutTransition returns the barrier parameters for changing an image from
// oldLayout to newLayout.
func LayoutTransition(oldLayout, newLayout vk.ImageLayout) (Transition, error) {
	switch {
	case oldLayout == vk.ImageLayoutUndefined &&
		newLayout == vk.ImageLayoutTransferDstOptimal:
		return Transition{
			DstAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			SrcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			DstStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		}, nil

	case oldLayout == vk.ImageLayoutTransferDstOptimal &&
		newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		return Transition{
			SrcAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			DstAccess: vk.AccessFlags(vk.AccessShaderReadBit),
			SrcStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			DstStage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
			Graphics:  true,
		}, nil

	case oldLayout == vk.ImageLayoutUndefined &&
		newLayout == vk.ImageLayoutDepthStencilAttachmentOptimal:
		return Transition{
			DstAccess: vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit) |
				vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit),
			SrcStage: vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			DstStage: vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit),
			Graphics: true,
		}, nil
	}

	return Transition{}, fmt.Errorf("%d to %d: %w", oldLayout, newLayout, ErrUnsupportedTransition)
}

// AspectMask returns the image aspects touched when an image of format is
// moved to newLayout.
func AspectMask(format vk.Format, newLayout vk.ImageLayout) vk.ImageAspectFlags {
	if newLayout != vk.ImageLayoutDepthStencilAttachmentOptimal {
		return vk.ImageAspectFlags(vk.ImageAspectColorBit)
	}

	mask := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	if HasStencilComponent(format) {
		mask |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
	}
	return mask
}

// HasStencilComponent reports whether a depth format also stores stencil.
func HasStencilComponent(format vk.Format) bool {
	return format == vk.FormatD32SfloatS8Uint || format == vk.FormatD24UnormS8Uint
}
