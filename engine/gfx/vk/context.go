// Package vkbackend implements the gfx device contracts on Vulkan.
package vkbackend

import (
	"log/slog"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/hubastard/grove-vk/engine/gfx"
)

// Window is what the context needs from the windowing layer.
type Window interface {
	// InstanceProcAddr returns the loader's vkGetInstanceProcAddr.
	InstanceProcAddr() unsafe.Pointer
	RequiredInstanceExtensions() []string
	// CreateWindowSurface returns a VkSurfaceKHR for instance.
	CreateWindowSurface(instance interface{}) (uintptr, error)
	FramebufferSize() (width, height int)
}

type Options struct {
	Title string
	// VSync selects FIFO presentation, otherwise MAILBOX when available.
	VSync bool
	// Validation enables VK_LAYER_KHRONOS_validation when installed.
	Validation bool
	Logger     *slog.Logger
}

// Context owns every Vulkan object of the renderer: one device, one queue,
// one swapchain with its views and framebuffers, one render pass, one
// command buffer and one set of frame sync objects.
type Context struct {
	opts Options
	log  *slog.Logger
	win  Window

	instance      vk.Instance
	debugCallback vk.DebugReportCallback
	surface       vk.Surface

	gpus    []gpuInfo
	gpu     int
	device  vk.Device
	queue   vk.Queue
	maxPush uint32

	renderPass   vk.RenderPass
	swapchain    vk.Swapchain
	format       vk.SurfaceFormat
	extent       vk.Extent2D
	images       []vk.Image
	views        []vk.ImageView
	framebuffers []vk.Framebuffer

	cmdPool vk.CommandPool
	cmd     vk.CommandBuffer
	rec     recorder

	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
	inFlight       vk.Fence
}

var (
	_ gfx.Device          = (*Context)(nil)
	_ gfx.PipelineBuilder = (*Context)(nil)
)

// New creates the full context for win. Any failure releases what was
// already created and is returned; the context is unusable in that case.
func New(win Window, opts Options) (*Context, error) {
	c := &Context{opts: opts, win: win, log: opts.Logger}
	if c.log == nil {
		c.log = slog.Default()
	}
	steps := []func() error{
		c.createInstance,
		c.createSurface,
		c.selectPhysicalDevice,
		c.createDevice,
		c.createSwapchain,
		c.createRenderPass,
		c.createImageViews,
		c.createFramebuffers,
		c.createCommands,
		c.createSyncObjects,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			c.Destroy()
			return nil, err
		}
	}
	c.log.Info("vulkan context ready",
		"gpu", c.gpus[c.gpu].name,
		"format", int32(c.format.Format),
		"extent", [2]uint32{c.extent.Width, c.extent.Height},
		"images", len(c.images))
	return c, nil
}

// GPUName is the name of the selected physical device.
func (c *Context) GPUName() string { return c.gpus[c.gpu].name }

// WaitIdle blocks until the device finished all submitted work.
func (c *Context) WaitIdle() error {
	if c.device == vk.Device(vk.NullHandle) {
		return nil
	}
	return check("device wait idle", vk.DeviceWaitIdle(c.device))
}

// Destroy waits for the device to go idle and releases everything in
// reverse creation order. Pipelines must already be destroyed.
func (c *Context) Destroy() {
	if c.device != vk.Device(vk.NullHandle) {
		vk.DeviceWaitIdle(c.device)
		c.destroySyncObjects()
		if c.cmdPool != vk.CommandPool(vk.NullHandle) {
			vk.DestroyCommandPool(c.device, c.cmdPool, nil)
			c.cmdPool = vk.CommandPool(vk.NullHandle)
		}
		c.destroySwapchainResources()
		if c.swapchain != vk.Swapchain(vk.NullHandle) {
			vk.DestroySwapchain(c.device, c.swapchain, nil)
			c.swapchain = vk.Swapchain(vk.NullHandle)
		}
		if c.renderPass != vk.RenderPass(vk.NullHandle) {
			vk.DestroyRenderPass(c.device, c.renderPass, nil)
			c.renderPass = vk.RenderPass(vk.NullHandle)
		}
		vk.DestroyDevice(c.device, nil)
		c.device = vk.Device(vk.NullHandle)
	}
	if c.surface != vk.Surface(vk.NullHandle) {
		vk.DestroySurface(c.instance, c.surface, nil)
		c.surface = vk.Surface(vk.NullHandle)
	}
	if c.instance != vk.Instance(vk.NullHandle) {
		c.destroyDebugReport()
		vk.DestroyInstance(c.instance, nil)
		c.instance = vk.Instance(vk.NullHandle)
	}
}
