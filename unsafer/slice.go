package unsafer

import (
	"unsafe"
)

// SliceToBytes interprets an arbitrary input slice as a byte slice.
//
// Note that the returned slice points to the same underlying data in memory. It
// does not make a copy.
func SliceToBytes[T any](input []T) []byte {
	if len(input) == 0 {
		return nil
	}
	size := int(unsafe.Sizeof(input[0])) * len(input)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(input))), size)
}

// StructToBytes returns the memory of the value pointed by ptr as a byte slice.
// As with SliceToBytes no copy is made.
func StructToBytes[T any](ptr *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(ptr)), unsafe.Sizeof(*ptr))
}

// SliceBytesToUint32 converts SPIR-V byte code into the uint32 words Vulkan
// expects. The input length must be a multiple of four. A copy is made so the
// result is correctly aligned.
func SliceBytesToUint32(code []byte) []uint32 {
	words := make([]uint32, len(code)/4)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), len(words)*4), code)
	return words
}
