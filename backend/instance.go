package backend

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

func (b *Backend) createInstance(title string) error {
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())

	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to init Vulkan Go: %w", err)
	}

	if b.cfg.Debug && !b.checkValidationSupport() {
		return fmt.Errorf("validation layers requested but not available")
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   title + "\x00",
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        "vulkan-engine\x00",
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.ApiVersion10,
	}

	extensions := b.window.GetRequiredInstanceExtensions()
	if b.cfg.Debug {
		extensions = append(extensions, vk.ExtDebugReportExtensionName+"\x00")
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	if b.cfg.Debug {
		createInfo.EnabledLayerCount = uint32(len(b.cfg.ValidationLayers))
		createInfo.PpEnabledLayerNames = b.cfg.ValidationLayers
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&createInfo, nil, &instance)); err != nil {
		return fmt.Errorf("failed to create Vulkan instance: %w", err)
	}
	b.instance = instance
	b.lifetime.Defer("instance", func() {
		vk.DestroyInstance(b.instance, nil)
		b.instance = nil
	})

	if err := vk.InitInstance(instance); err != nil {
		return fmt.Errorf("failed to load instance functions: %w", err)
	}

	return nil
}

func (b *Backend) checkValidationSupport() bool {
	var count uint32
	if vk.EnumerateInstanceLayerProperties(&count, nil) != vk.Success {
		return false
	}
	availableLayers := make([]vk.LayerProperties, count)

	if vk.EnumerateInstanceLayerProperties(&count, availableLayers) != vk.Success {
		return false
	}

	available := make(map[string]struct{}, count)
	for _, layer := range availableLayers {
		layer.Deref()
		available[vk.ToString(layer.LayerName[:])+"\x00"] = struct{}{}
	}

	for _, validationLayer := range b.cfg.ValidationLayers {
		if _, ok := available[validationLayer]; !ok {
			b.log.Printf("validation layer %q is not available", validationLayer)
			return false
		}
	}

	return true
}

// setupDebugCallback routes validation errors and warnings to the logger.
func (b *Backend) setupDebugCallback() error {
	if !b.cfg.Debug {
		return nil
	}

	createInfo := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
			vk.DebugReportPerformanceWarningBit),
		PfnCallback: b.debugReport,
	}

	var callback vk.DebugReportCallback
	res := vk.CreateDebugReportCallback(b.instance, &createInfo, nil, &callback)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("failed to create debug report callback: %w", err)
	}
	b.debugCallback = callback
	b.lifetime.Defer("debug report callback", func() {
		vk.DestroyDebugReportCallback(b.instance, b.debugCallback, nil)
		b.debugCallback = vk.NullDebugReportCallback
	})

	return nil
}

func (b *Backend) debugReport(
	flags vk.DebugReportFlags,
	objectType vk.DebugReportObjectType,
	object uint64,
	location uint,
	messageCode int32,
	pLayerPrefix string,
	pMessage string,
	pUserData unsafe.Pointer,
) vk.Bool32 {
	severity := "INFO"
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		severity = "ERROR"
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		severity = "WARNING"
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		severity = "PERFORMANCE"
	}

	b.log.Printf("[%s] %s (%d): %s", severity, pLayerPrefix, messageCode, pMessage)
	return vk.False
}

func (b *Backend) createSurface() error {
	surfacePtr, err := b.window.CreateWindowSurface(b.instance, nil)
	if err != nil {
		return fmt.Errorf("cannot create surface within GLFW window: %w", err)
	}

	b.surface = vk.SurfaceFromPointer(surfacePtr)
	b.lifetime.Defer("surface", func() {
		vk.DestroySurface(b.instance, b.surface, nil)
		b.surface = vk.NullSurface
	})

	return nil
}
