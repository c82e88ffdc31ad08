package backend

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"vulkan-engine/queues"
	"vulkan-engine/resources"
)

func (b *Backend) pickPhysicalDevice() error {
	var deviceCount uint32
	err := vk.Error(vk.EnumeratePhysicalDevices(b.instance, &deviceCount, nil))
	if err != nil {
		return fmt.Errorf("failed to get the number of physical devices: %w", err)
	}
	if deviceCount == 0 {
		return fmt.Errorf("failed to find GPUs with Vulkan support")
	}

	pDevices := make([]vk.PhysicalDevice, deviceCount)
	err = vk.Error(vk.EnumeratePhysicalDevices(b.instance, &deviceCount, pDevices))
	if err != nil {
		return fmt.Errorf("failed to enumerate the physical devices: %w", err)
	}

	var (
		selectedDevice vk.PhysicalDevice
		score          uint32
	)

	for _, device := range pDevices {
		deviceScore := b.getDeviceScore(device)

		if deviceScore > score {
			selectedDevice = device
			score = deviceScore
		}
	}

	if selectedDevice == vk.PhysicalDevice(vk.NullHandle) {
		return fmt.Errorf("failed to find suitable physical devices")
	}

	b.physicalDevice = selectedDevice
	b.families = b.findQueueFamilies(selectedDevice)
	b.memoryTable = resources.QueryMemoryTable(selectedDevice)

	return nil
}

// getDeviceScore returns how suitable is this device for the backend. Bigger
// score means better. Zero means the device cannot be used.
func (b *Backend) getDeviceScore(device vk.PhysicalDevice) uint32 {
	var (
		deviceScore uint32
		properties  vk.PhysicalDeviceProperties
	)

	vk.GetPhysicalDeviceProperties(device, &properties)
	properties.Deref()

	if properties.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu {
		deviceScore += 1000
	} else {
		deviceScore++
	}

	if !b.isDeviceSuitable(device) {
		deviceScore = 0
	}

	b.debugf(
		"available device: %s (score: %d)",
		vk.ToString(properties.DeviceName[:]),
		deviceScore,
	)

	return deviceScore
}

func (b *Backend) isDeviceSuitable(device vk.PhysicalDevice) bool {
	indices := b.findQueueFamilies(device)
	extensionsSupported := b.checkDeviceExtensionSupport(device)

	swapChainAdequate := false
	if extensionsSupported {
		support, err := b.querySwapChainSupport(device)
		if err != nil {
			b.log.Printf("WARNING: %s", err)
			return false
		}
		swapChainAdequate = len(support.formats) > 0 && len(support.presentModes) > 0
	}

	var supportedFeatures vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(device, &supportedFeatures)
	supportedFeatures.Deref()

	return indices.IsComplete() && extensionsSupported && swapChainAdequate &&
		supportedFeatures.SamplerAnisotropy.B()
}

// findQueueFamilies looks for a graphics family which can present to the
// surface and for a transfer-only family. Without the latter, transfers go to
// the present family.
func (b *Backend) findQueueFamilies(device vk.PhysicalDevice) queues.FamilyIndices {
	indices := queues.FamilyIndices{}

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)

	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	var transferOnly queues.FamilyIndices
	for i, family := range queueFamilies {
		family.Deref()

		graphics := family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0
		transfer := family.QueueFlags&vk.QueueFlags(vk.QueueTransferBit) != 0

		if transfer && !graphics && !transferOnly.Transfer.HasValue() {
			transferOnly.Transfer.Set(uint32(i))
		}

		if !graphics || indices.Present.HasValue() {
			continue
		}

		var hasPresent vk.Bool32
		err := vk.Error(
			vk.GetPhysicalDeviceSurfaceSupport(device, uint32(i), b.surface, &hasPresent),
		)
		if err != nil {
			b.log.Printf("error querying surface support for queue family %d: %s", i, err)
		} else if hasPresent.B() {
			indices.Present.Set(uint32(i))
		}
	}

	switch {
	case transferOnly.Transfer.HasValue():
		indices.Transfer = transferOnly.Transfer
	case indices.Present.HasValue():
		indices.Transfer = indices.Present
	}

	return indices
}

func (b *Backend) checkDeviceExtensionSupport(device vk.PhysicalDevice) bool {
	var extensionsCount uint32
	res := vk.EnumerateDeviceExtensionProperties(device, "", &extensionsCount, nil)
	if err := vk.Error(res); err != nil {
		b.log.Printf("WARNING: enumerating device extension properties count: %s", err)
		return false
	}

	availableExtensions := make([]vk.ExtensionProperties, extensionsCount)
	res = vk.EnumerateDeviceExtensionProperties(device, "", &extensionsCount,
		availableExtensions)
	if err := vk.Error(res); err != nil {
		b.log.Printf("WARNING: getting device extension properties: %s", err)
		return false
	}

	requiredExtensions := make(map[string]struct{})
	for _, extensionName := range b.cfg.DeviceExtensions {
		requiredExtensions[extensionName] = struct{}{}
	}

	for _, extension := range availableExtensions {
		extension.Deref()
		extensionName := vk.ToString(extension.ExtensionName[:])

		delete(requiredExtensions, extensionName+"\x00")
	}

	return len(requiredExtensions) == 0
}

func (b *Backend) createLogicalDevice() error {
	if !b.families.IsComplete() {
		return fmt.Errorf("createLogicalDevice called for physical device which does " +
			"not have all the queues required by the program")
	}

	queueCreateInfos := []vk.DeviceQueueCreateInfo{}
	for _, familyIndex := range b.families.Unique() {
		queueCreateInfos = append(
			queueCreateInfos,
			vk.DeviceQueueCreateInfo{
				SType:            vk.StructureTypeDeviceQueueCreateInfo,
				QueueFamilyIndex: familyIndex,
				QueueCount:       1,
				PQueuePriorities: []float32{1.0},
			},
		)
	}

	deviceFeatures := []vk.PhysicalDeviceFeatures{{
		SamplerAnisotropy: vk.True,
	}}

	createInfo := vk.DeviceCreateInfo{
		SType:            vk.StructureTypeDeviceCreateInfo,
		PEnabledFeatures: deviceFeatures,

		PQueueCreateInfos:    queueCreateInfos,
		QueueCreateInfoCount: uint32(len(queueCreateInfos)),

		EnabledExtensionCount:   uint32(len(b.cfg.DeviceExtensions)),
		PpEnabledExtensionNames: b.cfg.DeviceExtensions,
	}

	if b.cfg.Debug {
		createInfo.PpEnabledLayerNames = b.cfg.ValidationLayers
		createInfo.EnabledLayerCount = uint32(len(b.cfg.ValidationLayers))
	}

	var device vk.Device
	err := vk.Error(vk.CreateDevice(b.physicalDevice, &createInfo, nil, &device))
	if err != nil {
		return fmt.Errorf("failed to create logical device: %w", err)
	}
	b.device = device
	b.lifetime.Defer("device", func() {
		vk.DestroyDevice(b.device, nil)
		b.device = vk.Device(vk.NullHandle)
	})

	b.graphics.family = b.families.Present.Get()
	vk.GetDeviceQueue(b.device, b.graphics.family, 0, &b.graphics.queue)

	b.transfer.family = b.families.Transfer.Get()
	vk.GetDeviceQueue(b.device, b.transfer.family, 0, &b.transfer.queue)

	b.debugf("present family %d, transfer family %d", b.graphics.family, b.transfer.family)

	return nil
}

// createTransientPools creates the pools for one-shot command buffers, one
// per queue.
func (b *Backend) createTransientPools() error {
	for _, q := range []*submitQueue{&b.graphics, &b.transfer} {
		q := q
		poolInfo := vk.CommandPoolCreateInfo{
			SType:            vk.StructureTypeCommandPoolCreateInfo,
			Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit),
			QueueFamilyIndex: q.family,
		}

		var pool vk.CommandPool
		res := vk.CreateCommandPool(b.device, &poolInfo, nil, &pool)
		if err := vk.Error(res); err != nil {
			return fmt.Errorf("failed to create transient command pool: %w", err)
		}
		q.pool = pool
		b.lifetime.Defer("transient command pool", func() {
			vk.DestroyCommandPool(b.device, q.pool, nil)
			q.pool = vk.CommandPool(vk.NullHandle)
		})
	}

	return nil
}
