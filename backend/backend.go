// Package backend is the Vulkan renderer. It owns the instance, the device and
// every GPU resource, keeps the swapchain dependent objects in sync with the
// window and draws the loaded model with the camera's view.
//
// A Backend is used from the thread which created the window:
//
//	BeginInit -> LoadProgram, LoadTexture -> EndInit -> LoadModel -> DrawFrame... -> Cleanup
package backend

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"vulkan-engine/camera"
	"vulkan-engine/events"
	"vulkan-engine/frames"
	"vulkan-engine/geometry"
	"vulkan-engine/imagefile"
	"vulkan-engine/queues"
	"vulkan-engine/resources"
	"vulkan-engine/shaders"
)

// ErrNotReady is returned when an operation is called before the backend has
// reached the state it needs.
var ErrNotReady = errors.New("backend not ready")

// Window is the part of a window the backend talks to. *glfw.Window
// implements it.
type Window interface {
	GetRequiredInstanceExtensions() []string
	CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (uintptr, error)
	GetFramebufferSize() (width, height int)
	SetCursorPos(x, y float64)
}

// State is how far the backend got in setting itself up.
type State uint8

// States of the presentation pipeline in the order they are reached.
const (
	Uninitialized State = iota
	SurfaceReady
	SwapchainReady
	PipelineReady
	Recording
	Recorded
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case SurfaceReady:
		return "surface ready"
	case SwapchainReady:
		return "swapchain ready"
	case PipelineReady:
		return "pipeline ready"
	case Recording:
		return "recording"
	case Recorded:
		return "recorded"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// submitQueue is a device queue with the transient command pool used for
// one-shot work on it.
type submitQueue struct {
	family uint32
	queue  vk.Queue
	pool   vk.CommandPool
}

// Backend renders a single textured model into a window.
type Backend struct {
	cfg    Config
	log    *log.Logger
	window Window
	state  State

	// lifetime holds everything created once. swapchainScope holds what is
	// rebuilt together with the swapchain.
	lifetime       resources.Lifetime
	swapchainScope resources.Lifetime

	instance       vk.Instance
	debugCallback  vk.DebugReportCallback
	surface        vk.Surface
	physicalDevice vk.PhysicalDevice
	memoryTable    resources.MemoryTable
	device         vk.Device

	families queues.FamilyIndices
	graphics submitQueue
	transfer submitQueue

	depthFormat vk.Format

	shaderPool    []shaders.Source
	shaderModules []*ShaderModule
	program       *ShaderProgram

	texture        resources.Image
	textureSampler vk.Sampler

	vertexBuffer resources.Buffer
	indexBuffer  resources.Buffer
	mesh         geometry.Mesh

	swapChain       vk.Swapchain
	swapChainImages []vk.Image
	swapChainViews  []vk.ImageView
	swapChainFormat vk.Format
	swapChainExtent vk.Extent2D

	renderPass          vk.RenderPass
	descriptorSetLayout vk.DescriptorSetLayout
	pipelineLayout      vk.PipelineLayout
	graphicsPipeline    vk.Pipeline
	depthImage          resources.Image
	framebuffers        []vk.Framebuffer

	commandPool    vk.CommandPool
	commandBuffers []vk.CommandBuffer

	uniformBuffers []resources.MappedBuffer
	descriptorPool vk.DescriptorPool
	descriptorSets []vk.DescriptorSet

	imageAvailableSems []vk.Semaphore
	renderFinishedSems []vk.Semaphore
	inFlightFences     []vk.Fence

	camera    *camera.Camera
	scheduler *frames.Scheduler
}

// New returns a backend drawing into window. The shader pool is the set of
// compiled shaders programs are picked from. Nothing is created on the GPU
// until BeginInit.
func New(window Window, pool []shaders.Source, cfg Config) *Backend {
	cfg.setDefaults()

	width, height := window.GetFramebufferSize()

	b := &Backend{
		cfg:            cfg,
		log:            cfg.Logger,
		window:         window,
		shaderPool:     pool,
		physicalDevice: vk.PhysicalDevice(vk.NullHandle),
		device:         vk.Device(vk.NullHandle),
		surface:        vk.NullSurface,
		swapChain:      vk.NullSwapchain,
		textureSampler: vk.NullSampler,
		camera:         camera.New(uint32(width), uint32(height)),
	}

	if cfg.Debug {
		b.lifetime.OnRelease = b.debugRelease
		b.swapchainScope.OnRelease = b.debugRelease
	}

	return b
}

// State returns how far the backend has been set up.
func (b *Backend) State() State {
	return b.state
}

// Camera returns the camera the view is rendered from.
func (b *Backend) Camera() *camera.Camera {
	return b.camera
}

// BeginInit creates the instance, the window surface and the logical device.
// On failure everything created so far is released again.
func (b *Backend) BeginInit(title string) error {
	if b.state != Uninitialized {
		return fmt.Errorf("BeginInit in state %s: %w", b.state, ErrNotReady)
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"createInstance", func() error { return b.createInstance(title) }},
		{"setupDebugCallback", b.setupDebugCallback},
		{"createSurface", b.createSurface},
		{"pickPhysicalDevice", b.pickPhysicalDevice},
		{"createLogicalDevice", b.createLogicalDevice},
		{"createTransientPools", b.createTransientPools},
		{"findDepthFormat", b.pickDepthFormat},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			b.lifetime.Release()
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	b.state = SurfaceReady
	return nil
}

// LoadProgram selects the shader program called name. The first call creates
// the modules for the whole shader pool. When the pipeline already exists it
// is rebuilt with the new program.
func (b *Backend) LoadProgram(name string) error {
	if b.state < SurfaceReady {
		return fmt.Errorf("LoadProgram in state %s: %w", b.state, ErrNotReady)
	}

	if b.shaderModules == nil {
		if err := b.createShaderModules(); err != nil {
			return fmt.Errorf("createShaderModules: %w", err)
		}
	}

	program, err := NewShaderProgram(name, b.shaderModules)
	if err != nil {
		return err
	}
	b.program = program
	b.debugf("using shader program %s with %d stages", name, len(program.Modules))

	if b.state >= PipelineReady {
		if err := b.RecreateSwapChains(); err != nil {
			return fmt.Errorf("RecreateSwapChains: %w", err)
		}
	}

	return nil
}

// LoadTexture decodes the image file at path and uploads it as the texture of
// the model. See LoadTextureImage.
func (b *Backend) LoadTexture(path string) error {
	img, err := imagefile.Open(path)
	if err != nil {
		return err
	}
	return b.LoadTextureImage(img)
}

// LoadTextureImage uploads img as the texture of the model, replacing the
// previous one.
func (b *Backend) LoadTextureImage(img *imagefile.Image) error {
	if b.state < SurfaceReady {
		return fmt.Errorf("LoadTexture in state %s: %w", b.state, ErrNotReady)
	}

	if err := b.createTextureImage(img); err != nil {
		return fmt.Errorf("createTextureImage: %w", err)
	}

	if b.state >= PipelineReady {
		if err := b.RecreateSwapChains(); err != nil {
			return fmt.Errorf("RecreateSwapChains: %w", err)
		}
	}

	return nil
}

// EndInit creates the remaining long lived objects and builds the swapchain
// and everything depending on it. A program and a texture must have been
// loaded.
func (b *Backend) EndInit() error {
	if b.state != SurfaceReady {
		return fmt.Errorf("EndInit in state %s: %w", b.state, ErrNotReady)
	}
	if b.program == nil {
		return fmt.Errorf("no shader program loaded: %w", ErrNotReady)
	}
	if b.texture.Image == vk.NullImage {
		return fmt.Errorf("no texture loaded: %w", ErrNotReady)
	}

	if err := b.createTextureSampler(); err != nil {
		return fmt.Errorf("createTextureSampler: %w", err)
	}

	if err := b.createGeometryBuffers(); err != nil {
		return fmt.Errorf("createGeometryBuffers: %w", err)
	}

	if err := b.createSyncObjects(); err != nil {
		return fmt.Errorf("createSyncObjects: %w", err)
	}

	b.scheduler = frames.NewScheduler(b, b.cfg.FramesInFlight)

	if err := b.buildSwapChain(false); err != nil {
		return err
	}

	return nil
}

// LoadModel replaces the drawn geometry. The data is uploaded synchronously
// and the command buffers are recorded again.
func (b *Backend) LoadModel(vertices []geometry.Vertex, indices []uint32) error {
	return b.LoadMesh(geometry.Mesh{Vertices: vertices, Indices: indices})
}

// LoadMesh is LoadModel for a geometry.Mesh.
func (b *Backend) LoadMesh(mesh geometry.Mesh) error {
	if b.state < PipelineReady {
		return fmt.Errorf("LoadModel in state %s: %w", b.state, ErrNotReady)
	}

	if !mesh.Fits(uint64(b.vertexBuffer.Size), uint64(b.indexBuffer.Size)) {
		return fmt.Errorf(
			"model with %d vertices and %d indices does not fit into %d/%d bytes",
			len(mesh.Vertices), len(mesh.Indices),
			b.vertexBuffer.Size, b.indexBuffer.Size,
		)
	}

	if err := vk.Error(vk.DeviceWaitIdle(b.device)); err != nil {
		return fmt.Errorf("waiting for device idle: %w", err)
	}

	b.mesh = mesh
	if err := b.uploadModel(); err != nil {
		return fmt.Errorf("uploadModel: %w", err)
	}

	if err := b.recordRender(); err != nil {
		return fmt.Errorf("recordRender: %w", err)
	}

	return nil
}

// DrawFrame renders and presents one frame.
func (b *Backend) DrawFrame() error {
	if b.state != Recorded {
		return fmt.Errorf("DrawFrame in state %s: %w", b.state, ErrNotReady)
	}
	return b.scheduler.DrawFrame()
}

// HandleEvent moves the camera. After every mouse move the cursor is put back
// in the middle of the window.
func (b *Backend) HandleEvent(evt events.Event) {
	b.camera.HandleEvent(evt)

	if _, ok := evt.(events.MouseMoveEvent); ok {
		b.window.SetCursorPos(b.camera.Center())
	}
}

// NotifyResized tells the backend the window framebuffer changed size. The
// swapchain is rebuilt after the next present.
func (b *Backend) NotifyResized() {
	if b.scheduler != nil {
		b.scheduler.NotifyResized()
	}
}

// Cleanup waits for the GPU and destroys everything the backend created, in
// reverse creation order. It may be called after a failed initialization.
func (b *Backend) Cleanup() {
	if b.device != vk.Device(vk.NullHandle) {
		vk.DeviceWaitIdle(b.device)
	}

	if names := b.lifetime.Names(); len(names) > 0 {
		b.debugf("cleaning up %s", strings.Join(names, ", "))
	}

	b.swapchainScope.Release()
	b.destroySwapChain()
	b.lifetime.Release()

	b.scheduler = nil
	b.state = Uninitialized
}

func (b *Backend) debugf(format string, args ...any) {
	if b.cfg.Debug {
		b.log.Printf(format, args...)
	}
}

func (b *Backend) debugRelease(name string) {
	b.log.Printf("destroying %s", name)
}
