// Package frames implements the per-frame protocol of the renderer: wait for
// a free frame slot, acquire a swapchain image, update it, submit and present.
//
// The protocol is written against the Target interface so it does not depend
// on a particular GPU API.
package frames

import (
	"errors"
	"fmt"
)

// DefaultInFlight is the number of frames which may be processed by the GPU
// at the same time.
const DefaultInFlight = 2

var (
	// ErrOutOfDate is returned by Target.Acquire and Target.Present when the
	// swapchain no longer matches the surface.
	ErrOutOfDate = errors.New("swapchain out of date")

	// ErrSuboptimal is returned by Target.Present when the image was shown but
	// the swapchain should be recreated.
	ErrSuboptimal = errors.New("swapchain suboptimal")
)

// Target is the device side of the frame protocol. A slot is the index of a
// frame in flight and owns a fence and two semaphores.
type Target interface {

	// WaitForFence blocks until the fence of slot is signaled.
	WaitForFence(slot int) error

	// ResetFence returns the fence of slot to the unsignaled state.
	ResetFence(slot int) error

	// Acquire gets the next swapchain image. The image-available semaphore of
	// slot is signaled when it is ready.
	Acquire(slot int) (image uint32, err error)

	// Update writes the per frame data of image.
	Update(image uint32) error

	// Submit queues the recorded commands of image. They wait on the
	// image-available semaphore of slot and signal its render-finished
	// semaphore and fence.
	Submit(slot int, image uint32) error

	// Present queues image for presentation after the render-finished
	// semaphore of slot is signaled.
	Present(slot int, image uint32) error

	// RecreateSwapChain rebuilds everything which depends on the swapchain.
	RecreateSwapChain() error
}

// Scheduler drives a Target one frame at a time. It is not safe for
// concurrent use.
type Scheduler struct {
	target   Target
	inFlight int
	slot     int
	resized  bool

	// imageSlots remembers which slot last submitted work for each swapchain
	// image, so an image is not reused while its commands are still running.
	imageSlots map[uint32]int
}

// NewScheduler returns a scheduler with inFlight frame slots. Values below one
// select DefaultInFlight.
func NewScheduler(target Target, inFlight int) *Scheduler {
	if inFlight < 1 {
		inFlight = DefaultInFlight
	}

	return &Scheduler{
		target:     target,
		inFlight:   inFlight,
		imageSlots: make(map[uint32]int),
	}
}

// InFlight returns the number of frame slots.
func (s *Scheduler) InFlight() int {
	return s.inFlight
}

// Slot returns the frame slot the next DrawFrame will use.
func (s *Scheduler) Slot() int {
	return s.slot
}

// NotifyResized makes the next successful present recreate the swapchain.
func (s *Scheduler) NotifyResized() {
	s.resized = true
}

// Reset forgets which slot rendered to which image. It must be called after
// the swapchain was recreated because image indices then refer to new images.
func (s *Scheduler) Reset() {
	clear(s.imageSlots)
}

// DrawFrame renders and presents one frame. When the swapchain is out of date
// at acquire time the frame is dropped: the swapchain is recreated once and
// nothing is submitted or presented.
func (s *Scheduler) DrawFrame() error {
	slot := s.slot

	if err := s.target.WaitForFence(slot); err != nil {
		return fmt.Errorf("waiting for frame %d: %w", slot, err)
	}

	image, err := s.target.Acquire(slot)
	if errors.Is(err, ErrOutOfDate) {
		return s.recreate()
	} else if err != nil && !errors.Is(err, ErrSuboptimal) {
		return fmt.Errorf("failed to acquire swap chain image: %w", err)
	}

	if owner, ok := s.imageSlots[image]; ok && owner != slot {
		if err := s.target.WaitForFence(owner); err != nil {
			return fmt.Errorf("waiting for image %d: %w", image, err)
		}
	}
	s.imageSlots[image] = slot

	if err := s.target.Update(image); err != nil {
		return fmt.Errorf("updating image %d: %w", image, err)
	}

	// Only reset the fence if we are submitting work.
	if err := s.target.ResetFence(slot); err != nil {
		return fmt.Errorf("resetting frame %d: %w", slot, err)
	}

	if err := s.target.Submit(slot, image); err != nil {
		return fmt.Errorf("queue submit error: %w", err)
	}

	err = s.target.Present(slot, image)
	s.slot = (s.slot + 1) % s.inFlight

	if err != nil && !errors.Is(err, ErrOutOfDate) && !errors.Is(err, ErrSuboptimal) {
		return fmt.Errorf("failed to present swap chain image: %w", err)
	}
	if err != nil || s.resized {
		return s.recreate()
	}

	return nil
}

func (s *Scheduler) recreate() error {
	s.resized = false
	if err := s.target.RecreateSwapChain(); err != nil {
		return fmt.Errorf("recreating swap chain: %w", err)
	}
	s.Reset()
	return nil
}
