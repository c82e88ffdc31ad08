package backend

import (
	"log"

	vk "github.com/vulkan-go/vulkan"

	"vulkan-engine/frames"
)

// Default capacities of the vertex and index buffers. A model which does not
// fit is refused by LoadModel.
const (
	DefaultVertexBufferSize = 4 << 20
	DefaultIndexBufferSize  = 1 << 20
)

// Config is everything the backend needs to know up front.
type Config struct {

	// Debug enables the validation layers, routes their reports to Logger and
	// turns on verbose logging.
	Debug bool

	// ValidationLayers are enabled when Debug is set. Names must end with a
	// NUL byte.
	ValidationLayers []string

	// DeviceExtensions must be supported by the chosen physical device. Names
	// must end with a NUL byte.
	DeviceExtensions []string

	// FramesInFlight is the number of frames the GPU may work on at once.
	FramesInFlight int

	// VertexBufferSize and IndexBufferSize are the fixed capacities in bytes
	// of the geometry buffers.
	VertexBufferSize vk.DeviceSize
	IndexBufferSize  vk.DeviceSize

	// Logger receives all output of the backend.
	Logger *log.Logger

	// WaitEvents blocks until the window system has events to process. It is
	// used while the window is minimized. Usually glfw.WaitEvents.
	WaitEvents func()
}

// DefaultConfig returns a configuration suitable for most programs.
func DefaultConfig() Config {
	return Config{
		ValidationLayers: []string{
			"VK_LAYER_KHRONOS_validation\x00",
		},
		DeviceExtensions: []string{
			vk.KhrSwapchainExtensionName + "\x00",
		},
		FramesInFlight:   frames.DefaultInFlight,
		VertexBufferSize: DefaultVertexBufferSize,
		IndexBufferSize:  DefaultIndexBufferSize,
		Logger:           log.Default(),
	}
}

func (c *Config) setDefaults() {
	def := DefaultConfig()
	if c.DeviceExtensions == nil {
		c.DeviceExtensions = def.DeviceExtensions
	}
	if c.Debug && c.ValidationLayers == nil {
		c.ValidationLayers = def.ValidationLayers
	}
	if c.FramesInFlight < 1 {
		c.FramesInFlight = def.FramesInFlight
	}
	if c.VertexBufferSize == 0 {
		c.VertexBufferSize = def.VertexBufferSize
	}
	if c.IndexBufferSize == 0 {
		c.IndexBufferSize = def.IndexBufferSize
	}
	if c.Logger == nil {
		c.Logger = def.Logger
	}
	if c.WaitEvents == nil {
		c.WaitEvents = func() {}
	}
}
