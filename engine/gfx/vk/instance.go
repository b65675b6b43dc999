package vkbackend

import (
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"
)

const (
	validationLayer            = "VK_LAYER_KHRONOS_validation"
	portabilityEnumeration     = "VK_KHR_portability_enumeration"
	portabilitySubset          = "VK_KHR_portability_subset"
	createEnumeratePortability = vk.InstanceCreateFlags(0x00000001)
)

// safeStrings returns list with every entry NUL terminated.
func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		if !strings.HasSuffix(s, "\x00") {
			s += "\x00"
		}
		out[i] = s
	}
	return out
}

func contains(list []string, name string) bool {
	name = strings.TrimSuffix(name, "\x00")
	for _, s := range list {
		if strings.TrimSuffix(s, "\x00") == name {
			return true
		}
	}
	return false
}

func instanceExtensions() ([]string, error) {
	var n uint32
	if err := check("vkEnumerateInstanceExtensionProperties", vk.EnumerateInstanceExtensionProperties("", &n, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.ExtensionProperties, n)
	if err := check("vkEnumerateInstanceExtensionProperties", vk.EnumerateInstanceExtensionProperties("", &n, props)); err != nil {
		return nil, err
	}
	names := make([]string, 0, n)
	for _, p := range props[:n] {
		p.Deref()
		names = append(names, vk.ToString(p.ExtensionName[:]))
	}
	return names, nil
}

func instanceLayers() ([]string, error) {
	var n uint32
	if err := check("vkEnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties(&n, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.LayerProperties, n)
	if err := check("vkEnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties(&n, props)); err != nil {
		return nil, err
	}
	names := make([]string, 0, n)
	for _, p := range props[:n] {
		p.Deref()
		names = append(names, vk.ToString(p.LayerName[:]))
	}
	return names, nil
}

func (c *Context) createInstance() error {
	vk.SetGetInstanceProcAddr(c.win.InstanceProcAddr())
	if err := vk.Init(); err != nil {
		return fmt.Errorf("vulkan loader: %w", err)
	}

	available, err := instanceExtensions()
	if err != nil {
		return err
	}
	exts := append([]string(nil), c.win.RequiredInstanceExtensions()...)
	for _, e := range exts {
		if !contains(available, e) {
			return fmt.Errorf("vulkan: required instance extension %s missing", strings.TrimSuffix(e, "\x00"))
		}
	}
	var flags vk.InstanceCreateFlags
	if contains(available, portabilityEnumeration) {
		exts = append(exts, portabilityEnumeration)
		flags |= createEnumeratePortability
	}

	var layers []string
	if c.opts.Validation {
		have, err := instanceLayers()
		if err != nil {
			return err
		}
		if contains(have, validationLayer) {
			layers = append(layers, validationLayer)
			if contains(available, debugReportExt) {
				exts = append(exts, debugReportExt)
			}
		} else {
			c.log.Warn("vulkan validation requested but layer not installed", "layer", validationLayer)
		}
	}

	title := c.opts.Title
	if title == "" {
		title = "grove"
	}
	info := vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		Flags: flags,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			PApplicationName:   title + "\x00",
			ApplicationVersion: vk.MakeVersion(1, 0, 0),
			PEngineName:        "grove\x00",
			EngineVersion:      vk.MakeVersion(1, 0, 0),
			ApiVersion:         vk.MakeVersion(1, 0, 0),
		},
		EnabledExtensionCount:   uint32(len(exts)),
		PpEnabledExtensionNames: safeStrings(exts),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}
	var inst vk.Instance
	if err := check("vkCreateInstance", vk.CreateInstance(&info, nil, &inst)); err != nil {
		return err
	}
	c.instance = inst
	if err := vk.InitInstance(inst); err != nil {
		return fmt.Errorf("vulkan instance functions: %w", err)
	}
	if contains(exts, debugReportExt) {
		if err := c.createDebugReport(); err != nil {
			return err
		}
	}
	c.log.Info("vulkan instance created", "extensions", len(exts), "layers", layers)
	return nil
}

func (c *Context) createSurface() error {
	ptr, err := c.win.CreateWindowSurface(c.instance)
	if err != nil {
		return fmt.Errorf("create window surface: %w", err)
	}
	c.surface = vk.SurfaceFromPointer(ptr)
	return nil
}
