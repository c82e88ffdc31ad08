package resources_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"vulkan-engine/resources"
)

var _ = Describe("Lifetime", func() {
	It("releases in reverse order of creation", func() {
		var (
			lt       resources.Lifetime
			released []string
		)

		for _, name := range []string{"instance", "surface", "device", "sampler"} {
			name := name
			lt.Defer(name, func() { released = append(released, name) })
		}
		Expect(lt.Names()).To(Equal([]string{"instance", "surface", "device", "sampler"}))

		lt.Release()
		Expect(released).To(Equal([]string{"sampler", "device", "surface", "instance"}))
		Expect(lt.Len()).To(BeZero())
	})

	It("releases only what was created before a failure", func() {
		var (
			lt       resources.Lifetime
			released []string
		)

		create := func(name string, fail bool) bool {
			if fail {
				return false
			}
			lt.Defer(name, func() { released = append(released, name) })
			return true
		}

		Expect(create("instance", false)).To(BeTrue())
		Expect(create("surface", false)).To(BeTrue())
		Expect(create("device", true)).To(BeFalse())

		lt.Release()
		Expect(released).To(Equal([]string{"surface", "instance"}))
	})

	It("does nothing on a second release", func() {
		var (
			lt    resources.Lifetime
			calls int
		)
		lt.Defer("buffer", func() { calls++ })

		lt.Release()
		lt.Release()
		Expect(calls).To(Equal(1))
	})

	It("reports every release", func() {
		var (
			lt       resources.Lifetime
			reported []string
		)
		lt.OnRelease = func(name string) { reported = append(reported, name) }
		lt.Defer("a", func() {})
		lt.Defer("b", func() {})

		lt.Release()
		Expect(reported).To(Equal([]string{"b", "a"}))
	})
})
