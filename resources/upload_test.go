package resources_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	vk "github.com/vulkan-go/vulkan"

	"vulkan-engine/resources"
)

// hostBuffer is a buffer kept in host memory.
type hostBuffer struct {
	id      int
	staging bool
	data    []byte
}

// hostStager implements resources.Stager on top of plain byte slices.
type hostStager struct {
	nextID    int
	live      map[int]*hostBuffer
	copies    int
	failWrite bool
	failCopy  bool
}

func newHostStager() *hostStager {
	return &hostStager{live: make(map[int]*hostBuffer)}
}

func (s *hostStager) deviceBuffer(size int) *hostBuffer {
	s.nextID++
	buf := &hostBuffer{id: s.nextID, data: make([]byte, size)}
	s.live[buf.id] = buf
	return buf
}

func (s *hostStager) CreateStagingBuffer(size vk.DeviceSize) (*hostBuffer, error) {
	buf := s.deviceBuffer(int(size))
	buf.staging = true
	return buf, nil
}

func (s *hostStager) Write(buf *hostBuffer, data []byte) error {
	if s.failWrite {
		return errors.New("map failed")
	}
	if !buf.staging {
		return errors.New("device local memory cannot be mapped")
	}
	copy(buf.data, data)
	return nil
}

func (s *hostStager) CopyBuffer(src, dst *hostBuffer, size vk.DeviceSize) error {
	if s.failCopy {
		return errors.New("queue submit failed")
	}
	if int(size) > len(dst.data) {
		return fmt.Errorf("copy of %d bytes into %d", size, len(dst.data))
	}
	s.copies++
	copy(dst.data, src.data[:size])
	return nil
}

func (s *hostStager) DestroyBuffer(buf *hostBuffer) {
	delete(s.live, buf.id)
}

var _ = Describe("Upload", func() {
	var (
		stager *hostStager
		dst    *hostBuffer
	)

	BeforeEach(func() {
		stager = newHostStager()
		dst = stager.deviceBuffer(64)
	})

	It("copies the data byte for byte", func() {
		data := make([]byte, 64)
		for i := range data {
			data[i] = byte(i * 7)
		}

		Expect(resources.Upload(stager, dst, data)).To(Succeed())
		Expect(dst.data).To(Equal(data))
		Expect(stager.copies).To(Equal(1))
	})

	It("releases the staging buffer", func() {
		Expect(resources.Upload(stager, dst, []byte{1, 2, 3})).To(Succeed())
		Expect(stager.live).To(HaveLen(1))
		Expect(stager.live).To(HaveKey(dst.id))
	})

	It("releases the staging buffer when the copy fails", func() {
		stager.failCopy = true
		Expect(resources.Upload(stager, dst, []byte{1, 2, 3})).NotTo(Succeed())
		Expect(stager.live).To(HaveLen(1))
	})

	It("releases the staging buffer when writing fails", func() {
		stager.failWrite = true
		Expect(resources.Upload(stager, dst, []byte{1})).NotTo(Succeed())
		Expect(stager.live).To(HaveLen(1))
		Expect(stager.copies).To(BeZero())
	})

	It("does nothing for empty data", func() {
		Expect(resources.Upload(stager, dst, nil)).To(Succeed())
		Expect(stager.copies).To(BeZero())
	})
})
