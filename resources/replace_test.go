package resources_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"vulkan-engine/resources"
)

var _ = Describe("Replace", func() {
	var calls []string

	BeforeEach(func() {
		calls = nil
	})

	retire := func() { calls = append(calls, "retire") }

	It("retires the old resource after building the new one", func() {
		next, err := resources.Replace(func() (int, error) {
			calls = append(calls, "build")
			return 2, nil
		}, retire)

		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal(2))
		Expect(calls).To(Equal([]string{"build", "retire"}))
	})

	It("keeps the old resource when building fails", func() {
		failed := errors.New("out of device memory")

		next, err := resources.Replace(func() (int, error) {
			calls = append(calls, "build")
			return 7, failed
		}, retire)

		Expect(err).To(MatchError(failed))
		Expect(next).To(BeZero())
		Expect(calls).To(Equal([]string{"build"}))
	})

	It("works without anything to retire", func() {
		next, err := resources.Replace(func() (string, error) {
			return "first", nil
		}, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal("first"))
	})
})
