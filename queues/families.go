package queues

import (
	"vulkan-engine/optional"
)

// FamilyIndices holds the indexes of the Vulkan queue families used by the
// backend.
type FamilyIndices struct {

	// Present is the index of a graphics capable queue family which can also
	// present to the drawing surface. Draw commands are submitted here.
	Present optional.Optional[uint32]

	// Transfer is the index of the queue family used for copying data into
	// device local memory. It is a dedicated transfer family when the device
	// has one and the present family otherwise.
	Transfer optional.Optional[uint32]
}

// IsComplete returns true if all families have been set.
func (f *FamilyIndices) IsComplete() bool {
	return f.Present.HasValue() && f.Transfer.HasValue()
}

// Shared reports whether the present and transfer work go to the same family.
func (f *FamilyIndices) Shared() bool {
	return f.Present.Get() == f.Transfer.Get()
}

// Unique returns the distinct family indexes, present first. Resources which
// are accessed from both queues list these in their sharing info.
func (f *FamilyIndices) Unique() []uint32 {
	if f.Shared() {
		return []uint32{f.Present.Get()}
	}
	return []uint32{f.Present.Get(), f.Transfer.Get()}
}
