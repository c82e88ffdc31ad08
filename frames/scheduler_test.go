package frames_test

import (
	"errors"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"vulkan-engine/frames"
)

func TestFrames(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Frames Suite")
}

// fakeGPU implements frames.Target. Submitted work is retired only when the
// CPU waits on its fence, which is the slowest GPU the protocol allows.
type fakeGPU struct {
	images int
	next   uint32

	signaled []bool
	pending  []bool

	maxPending int
	submits    int
	presents   int
	updates    []uint32
	recreates  int

	acquireErrs []error
	presentErrs []error

	violations []string
}

func newFakeGPU(slots, images int) *fakeGPU {
	gpu := &fakeGPU{
		images:   images,
		signaled: make([]bool, slots),
		pending:  make([]bool, slots),
	}
	for i := range gpu.signaled {
		gpu.signaled[i] = true
	}
	return gpu
}

func (g *fakeGPU) inFlight() int {
	n := 0
	for _, p := range g.pending {
		if p {
			n++
		}
	}
	return n
}

func (g *fakeGPU) WaitForFence(slot int) error {
	g.pending[slot] = false
	g.signaled[slot] = true
	return nil
}

func (g *fakeGPU) ResetFence(slot int) error {
	if !g.signaled[slot] {
		g.violations = append(g.violations, "reset of an unsignaled fence")
	}
	g.signaled[slot] = false
	return nil
}

func (g *fakeGPU) Acquire(slot int) (uint32, error) {
	if len(g.acquireErrs) > 0 {
		err := g.acquireErrs[0]
		g.acquireErrs = g.acquireErrs[1:]
		if err != nil {
			return 0, err
		}
	}
	image := g.next
	g.next = (g.next + 1) % uint32(g.images)
	return image, nil
}

func (g *fakeGPU) Update(image uint32) error {
	g.updates = append(g.updates, image)
	return nil
}

func (g *fakeGPU) Submit(slot int, image uint32) error {
	if g.signaled[slot] {
		g.violations = append(g.violations, "submit with a signaled fence")
	}
	if g.pending[slot] {
		g.violations = append(g.violations, "submit into a busy slot")
	}
	g.pending[slot] = true
	g.submits++
	if n := g.inFlight(); n > g.maxPending {
		g.maxPending = n
	}
	return nil
}

func (g *fakeGPU) Present(slot int, image uint32) error {
	g.presents++
	if len(g.presentErrs) > 0 {
		err := g.presentErrs[0]
		g.presentErrs = g.presentErrs[1:]
		return err
	}
	return nil
}

func (g *fakeGPU) RecreateSwapChain() error {
	g.recreates++
	return nil
}

var _ = Describe("Scheduler", func() {
	var (
		gpu       *fakeGPU
		scheduler *frames.Scheduler
	)

	BeforeEach(func() {
		gpu = newFakeGPU(frames.DefaultInFlight, 3)
		scheduler = frames.NewScheduler(gpu, 0)
	})

	It("defaults to two frames in flight", func() {
		Expect(scheduler.InFlight()).To(Equal(2))
	})

	It("never has more than two frames in flight", func() {
		for _i := 0; _i < 100; _i++ {
			Expect(scheduler.DrawFrame()).To(Succeed())
			Expect(gpu.inFlight()).To(BeNumerically("<=", 2))
		}

		Expect(gpu.submits).To(Equal(100))
		Expect(gpu.presents).To(Equal(100))
		Expect(gpu.maxPending).To(Equal(2))
		Expect(gpu.violations).To(BeEmpty())
	})

	It("cycles through the frame slots", func() {
		Expect(scheduler.Slot()).To(Equal(0))
		Expect(scheduler.DrawFrame()).To(Succeed())
		Expect(scheduler.Slot()).To(Equal(1))
		Expect(scheduler.DrawFrame()).To(Succeed())
		Expect(scheduler.Slot()).To(Equal(0))
	})

	It("updates the acquired image", func() {
		for _i := 0; _i < 4; _i++ {
			Expect(scheduler.DrawFrame()).To(Succeed())
		}
		Expect(gpu.updates).To(Equal([]uint32{0, 1, 2, 0}))
	})

	It("drops the frame when the swapchain is out of date", func() {
		Expect(scheduler.DrawFrame()).To(Succeed())
		gpu.acquireErrs = []error{frames.ErrOutOfDate}

		Expect(scheduler.DrawFrame()).To(Succeed())

		Expect(gpu.recreates).To(Equal(1))
		Expect(gpu.submits).To(Equal(1))
		Expect(gpu.presents).To(Equal(1))
		Expect(scheduler.Slot()).To(Equal(1))
		Expect(gpu.violations).To(BeEmpty())
	})

	It("keeps drawing after a dropped frame", func() {
		gpu.acquireErrs = []error{frames.ErrOutOfDate}
		Expect(scheduler.DrawFrame()).To(Succeed())
		Expect(scheduler.DrawFrame()).To(Succeed())

		Expect(gpu.recreates).To(Equal(1))
		Expect(gpu.submits).To(Equal(1))
		Expect(gpu.violations).To(BeEmpty())
	})

	It("draws with a suboptimal image", func() {
		gpu.acquireErrs = []error{frames.ErrSuboptimal}
		Expect(scheduler.DrawFrame()).To(Succeed())
		Expect(gpu.submits).To(Equal(1))
		Expect(gpu.recreates).To(BeZero())
	})

	It("recreates after presenting to an outdated swapchain", func() {
		gpu.presentErrs = []error{frames.ErrOutOfDate}
		Expect(scheduler.DrawFrame()).To(Succeed())

		Expect(gpu.presents).To(Equal(1))
		Expect(gpu.recreates).To(Equal(1))
	})

	It("recreates after a resize", func() {
		scheduler.NotifyResized()
		Expect(scheduler.DrawFrame()).To(Succeed())
		Expect(gpu.recreates).To(Equal(1))

		Expect(scheduler.DrawFrame()).To(Succeed())
		Expect(gpu.recreates).To(Equal(1))
	})

	It("fails on other acquire errors", func() {
		lost := errors.New("device lost")
		gpu.acquireErrs = []error{lost}

		Expect(scheduler.DrawFrame()).To(MatchError(lost))
		Expect(gpu.recreates).To(BeZero())
		Expect(gpu.submits).To(BeZero())
	})

	It("fails on other present errors", func() {
		lost := errors.New("surface lost")
		gpu.presentErrs = []error{lost}

		Expect(scheduler.DrawFrame()).To(MatchError(lost))
		Expect(gpu.recreates).To(BeZero())
	})

	It("fails on other present errors while a resize is pending", func() {
		lost := errors.New("device lost")
		gpu.presentErrs = []error{lost}
		scheduler.NotifyResized()

		Expect(scheduler.DrawFrame()).To(MatchError(lost))
		Expect(gpu.recreates).To(BeZero())
	})

	It("recreates once for a suboptimal present during a resize", func() {
		gpu.presentErrs = []error{frames.ErrSuboptimal}
		scheduler.NotifyResized()

		Expect(scheduler.DrawFrame()).To(Succeed())
		Expect(gpu.recreates).To(Equal(1))
	})
})

var _ = Describe("Scheduler with few images", func() {
	It("waits for the slot which still renders to the acquired image", func() {
		gpu := newFakeGPU(2, 1)
		scheduler := frames.NewScheduler(gpu, 2)

		for _i := 0; _i < 10; _i++ {
			Expect(scheduler.DrawFrame()).To(Succeed())
			Expect(gpu.inFlight()).To(Equal(1))
		}
		Expect(gpu.violations).To(BeEmpty())
	})
})
