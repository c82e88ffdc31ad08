package main

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"vulkan-engine/shaders"
)

func TestApp(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Main Suite")
}

var _ = Describe("run", func() {
	It("exits with an error status when the log file cannot be created", func() {
		saved := args.logFile
		defer func() { args.logFile = saved }()

		parent, err := os.CreateTemp("", "engine")
		Expect(err).NotTo(HaveOccurred())
		parent.Close()
		defer os.Remove(parent.Name())

		args.logFile = filepath.Join(parent.Name(), "engine.log")
		Expect(run()).To(Equal(1))
	})
})

var _ = Describe("loadShaders", func() {
	It("uses the built-in shaders without a directory", func() {
		pool, err := loadShaders("")
		Expect(err).NotTo(HaveOccurred())
		Expect(pool).To(HaveLen(2))
		Expect(pool[0].Name).To(Equal(shaders.DefaultProgram))
	})
})
