package vkbackend

import (
	"errors"
	"fmt"

	vk "github.com/goki/vulkan"
)

// gpuInfo is what selection needs to know about one physical device.
type gpuInfo struct {
	handle vk.PhysicalDevice
	name   string
	kind   vk.PhysicalDeviceType

	// queueFamily supports both graphics and presentation when hasQueue.
	queueFamily  uint32
	hasQueue     bool
	hasSwapchain bool
	portability  bool
	formats      int
	presentModes int
	maxPush      uint32
}

func (g gpuInfo) suitable() bool {
	return g.hasQueue && g.hasSwapchain && g.formats > 0 && g.presentModes > 0
}

func typeRank(t vk.PhysicalDeviceType) int {
	switch t {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return 4
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return 3
	case vk.PhysicalDeviceTypeVirtualGpu:
		return 2
	case vk.PhysicalDeviceTypeCpu:
		return 1
	}
	return 0
}

func typeName(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	}
	return "other"
}

var errNoSuitableGPU = errors.New("vulkan: no GPU with a graphics+present queue, swapchain support and surface formats")

// selectGPU returns the index of the best suitable candidate. Ties keep
// enumeration order.
func selectGPU(gpus []gpuInfo) (int, error) {
	best, bestRank := -1, -1
	for i, g := range gpus {
		if !g.suitable() {
			continue
		}
		if r := typeRank(g.kind); r > bestRank {
			best, bestRank = i, r
		}
	}
	if best < 0 {
		return -1, errNoSuitableGPU
	}
	return best, nil
}

func (c *Context) selectPhysicalDevice() error {
	var n uint32
	if err := check("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(c.instance, &n, nil)); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("vulkan: no physical devices")
	}
	handles := make([]vk.PhysicalDevice, n)
	if err := check("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(c.instance, &n, handles)); err != nil {
		return err
	}

	c.gpus = make([]gpuInfo, 0, n)
	for i, h := range handles[:n] {
		g, err := c.describeGPU(h)
		if err != nil {
			return fmt.Errorf("query gpu %d: %w", i, err)
		}
		c.log.Info("vulkan gpu", "index", i, "name", g.name, "type", typeName(g.kind), "suitable", g.suitable())
		c.gpus = append(c.gpus, g)
	}

	idx, err := selectGPU(c.gpus)
	if err != nil {
		return err
	}
	c.gpu = idx
	c.maxPush = c.gpus[idx].maxPush
	c.log.Info("vulkan gpu selected", "index", idx, "name", c.gpus[idx].name, "queue_family", c.gpus[idx].queueFamily)
	return nil
}

func (c *Context) describeGPU(h vk.PhysicalDevice) (gpuInfo, error) {
	g := gpuInfo{handle: h}

	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(h, &props)
	props.Deref()
	props.Limits.Deref()
	g.name = vk.ToString(props.DeviceName[:])
	g.kind = props.DeviceType
	g.maxPush = props.Limits.MaxPushConstantsSize

	var nq uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(h, &nq, nil)
	families := make([]vk.QueueFamilyProperties, nq)
	vk.GetPhysicalDeviceQueueFamilyProperties(h, &nq, families)
	for i, f := range families[:nq] {
		f.Deref()
		if f.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) == 0 {
			continue
		}
		var present vk.Bool32
		if err := check("vkGetPhysicalDeviceSurfaceSupportKHR",
			vk.GetPhysicalDeviceSurfaceSupport(h, uint32(i), c.surface, &present)); err != nil {
			return g, err
		}
		if present.B() {
			g.queueFamily, g.hasQueue = uint32(i), true
			break
		}
	}

	exts, err := deviceExtensions(h)
	if err != nil {
		return g, err
	}
	g.hasSwapchain = contains(exts, vk.KhrSwapchainExtensionName)
	g.portability = contains(exts, portabilitySubset)

	var nf, nm uint32
	if err := check("vkGetPhysicalDeviceSurfaceFormatsKHR",
		vk.GetPhysicalDeviceSurfaceFormats(h, c.surface, &nf, nil)); err != nil {
		return g, err
	}
	if err := check("vkGetPhysicalDeviceSurfacePresentModesKHR",
		vk.GetPhysicalDeviceSurfacePresentModes(h, c.surface, &nm, nil)); err != nil {
		return g, err
	}
	g.formats, g.presentModes = int(nf), int(nm)
	return g, nil
}

func deviceExtensions(h vk.PhysicalDevice) ([]string, error) {
	var n uint32
	if err := check("vkEnumerateDeviceExtensionProperties", vk.EnumerateDeviceExtensionProperties(h, "", &n, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.ExtensionProperties, n)
	if err := check("vkEnumerateDeviceExtensionProperties", vk.EnumerateDeviceExtensionProperties(h, "", &n, props)); err != nil {
		return nil, err
	}
	names := make([]string, 0, n)
	for _, p := range props[:n] {
		p.Deref()
		names = append(names, vk.ToString(p.ExtensionName[:]))
	}
	return names, nil
}

func (c *Context) createDevice() error {
	g := c.gpus[c.gpu]
	exts := []string{vk.KhrSwapchainExtensionName}
	if g.portability {
		exts = append(exts, portabilitySubset)
	}
	info := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos: []vk.DeviceQueueCreateInfo{{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: g.queueFamily,
			QueueCount:       1,
			PQueuePriorities: []float32{1},
		}},
		EnabledExtensionCount:   uint32(len(exts)),
		PpEnabledExtensionNames: safeStrings(exts),
	}
	var dev vk.Device
	if err := check("vkCreateDevice", vk.CreateDevice(g.handle, &info, nil, &dev)); err != nil {
		return err
	}
	c.device = dev

	var q vk.Queue
	vk.GetDeviceQueue(dev, g.queueFamily, 0, &q)
	c.queue = q
	return nil
}
