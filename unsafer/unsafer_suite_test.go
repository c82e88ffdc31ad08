package unsafer_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestUnsafer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Unsafer Suite")
}
