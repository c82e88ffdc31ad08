package unsafer_test

import (
	"encoding/binary"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"vulkan-engine/unsafer"
)

var _ = Describe("byte views", func() {
	It("exposes the memory of a slice without copying", func() {
		words := []uint32{1, 2, 3}
		bytes := unsafer.SliceToBytes(words)

		Expect(bytes).To(HaveLen(12))
		Expect(binary.NativeEndian.Uint32(bytes[4:8])).To(Equal(uint32(2)))

		words[1] = 42
		Expect(binary.NativeEndian.Uint32(bytes[4:8])).To(Equal(uint32(42)))
	})

	It("returns nil for an empty slice", func() {
		Expect(unsafer.SliceToBytes([]float32{})).To(BeNil())
	})

	It("exposes the memory of a struct", func() {
		type pair struct {
			A, B uint16
		}
		p := pair{A: 1, B: 2}
		Expect(unsafer.StructToBytes(&p)).To(HaveLen(4))
	})

	It("turns SPIR-V bytes into words", func() {
		code := make([]byte, 8)
		binary.NativeEndian.PutUint32(code[0:4], 0x07230203)
		binary.NativeEndian.PutUint32(code[4:8], 0x00010000)

		Expect(unsafer.SliceBytesToUint32(code)).To(Equal([]uint32{0x07230203, 0x00010000}))
	})
})
