package vkbackend

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"

	"github.com/hubastard/grove-vk/engine/gfx"
)

func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	return formats[0]
}

// choosePresentMode returns FIFO, which every implementation supports,
// unless vsync is off and MAILBOX is available.
func choosePresentMode(modes []vk.PresentMode, vsync bool) vk.PresentMode {
	if !vsync {
		for _, m := range modes {
			if m == vk.PresentModeMailbox {
				return m
			}
		}
	}
	return vk.PresentModeFifo
}

// chooseExtent uses the surface's current extent unless it is undefined,
// in which case the framebuffer size is clamped to the supported range.
func chooseExtent(current, min, max vk.Extent2D, fbWidth, fbHeight int) vk.Extent2D {
	if current.Width != math.MaxUint32 {
		return current
	}
	return vk.Extent2D{
		Width:  clamp(uint32(fbWidth), min.Width, max.Width),
		Height: clamp(uint32(fbHeight), min.Height, max.Height),
	}
}

// chooseImageCount asks for one image more than the minimum. A max of
// zero means unbounded.
func chooseImageCount(min, max uint32) uint32 {
	n := min + 1
	if max > 0 && n > max {
		n = max
	}
	return n
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type surfaceSupport struct {
	caps  vk.SurfaceCapabilities
	forms []vk.SurfaceFormat
	modes []vk.PresentMode
}

func (c *Context) querySurface() (surfaceSupport, error) {
	var s surfaceSupport
	h := c.gpus[c.gpu].handle
	if err := check("vkGetPhysicalDeviceSurfaceCapabilitiesKHR",
		vk.GetPhysicalDeviceSurfaceCapabilities(h, c.surface, &s.caps)); err != nil {
		return s, err
	}
	s.caps.Deref()
	s.caps.CurrentExtent.Deref()
	s.caps.MinImageExtent.Deref()
	s.caps.MaxImageExtent.Deref()

	var nf uint32
	if err := check("vkGetPhysicalDeviceSurfaceFormatsKHR",
		vk.GetPhysicalDeviceSurfaceFormats(h, c.surface, &nf, nil)); err != nil {
		return s, err
	}
	forms := make([]vk.SurfaceFormat, nf)
	if err := check("vkGetPhysicalDeviceSurfaceFormatsKHR",
		vk.GetPhysicalDeviceSurfaceFormats(h, c.surface, &nf, forms)); err != nil {
		return s, err
	}
	for _, f := range forms[:nf] {
		f.Deref()
		s.forms = append(s.forms, f)
	}
	if len(s.forms) == 0 {
		return s, fmt.Errorf("vulkan: surface reports no formats")
	}

	var nm uint32
	if err := check("vkGetPhysicalDeviceSurfacePresentModesKHR",
		vk.GetPhysicalDeviceSurfacePresentModes(h, c.surface, &nm, nil)); err != nil {
		return s, err
	}
	s.modes = make([]vk.PresentMode, nm)
	if err := check("vkGetPhysicalDeviceSurfacePresentModesKHR",
		vk.GetPhysicalDeviceSurfacePresentModes(h, c.surface, &nm, s.modes)); err != nil {
		return s, err
	}
	s.modes = s.modes[:nm]
	return s, nil
}

// createSwapchain builds the swapchain, passing the current one (if any)
// as the old swapchain. The old swapchain is destroyed on success.
func (c *Context) createSwapchain() error {
	s, err := c.querySurface()
	if err != nil {
		return err
	}
	format := chooseSurfaceFormat(s.forms)
	if c.renderPass != vk.RenderPass(vk.NullHandle) && format.Format != c.format.Format {
		return fmt.Errorf("vulkan: surface format changed from %d to %d", c.format.Format, format.Format)
	}
	w, h := c.win.FramebufferSize()
	extent := chooseExtent(s.caps.CurrentExtent, s.caps.MinImageExtent, s.caps.MaxImageExtent, w, h)
	mode := choosePresentMode(s.modes, c.opts.VSync)

	old := c.swapchain
	info := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          c.surface,
		MinImageCount:    chooseImageCount(s.caps.MinImageCount, s.caps.MaxImageCount),
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     s.caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      mode,
		Clipped:          vk.True,
		OldSwapchain:     old,
	}
	var sc vk.Swapchain
	if err := check("vkCreateSwapchainKHR", vk.CreateSwapchain(c.device, &info, nil, &sc)); err != nil {
		return err
	}
	if old != vk.Swapchain(vk.NullHandle) {
		vk.DestroySwapchain(c.device, old, nil)
	}
	c.swapchain = sc
	c.format = format
	c.extent = extent

	var n uint32
	if err := check("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(c.device, sc, &n, nil)); err != nil {
		return err
	}
	c.images = make([]vk.Image, n)
	if err := check("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(c.device, sc, &n, c.images)); err != nil {
		return err
	}
	c.images = c.images[:n]
	c.log.Info("vulkan swapchain",
		"extent", [2]uint32{extent.Width, extent.Height},
		"images", n, "present_mode", int32(mode))
	return nil
}

func (c *Context) createImageViews() error {
	c.views = make([]vk.ImageView, 0, len(c.images))
	for i, img := range c.images {
		info := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    img,
			ViewType: vk.ImageViewType2d,
			Format:   c.format.Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
		var view vk.ImageView
		if err := check("vkCreateImageView", vk.CreateImageView(c.device, &info, nil, &view)); err != nil {
			return fmt.Errorf("image view %d: %w", i, err)
		}
		c.views = append(c.views, view)
	}
	return nil
}

func (c *Context) createFramebuffers() error {
	c.framebuffers = make([]vk.Framebuffer, 0, len(c.views))
	for i, view := range c.views {
		info := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      c.renderPass,
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{view},
			Width:           c.extent.Width,
			Height:          c.extent.Height,
			Layers:          1,
		}
		var fb vk.Framebuffer
		if err := check("vkCreateFramebuffer", vk.CreateFramebuffer(c.device, &info, nil, &fb)); err != nil {
			return fmt.Errorf("framebuffer %d: %w", i, err)
		}
		c.framebuffers = append(c.framebuffers, fb)
	}
	return nil
}

// destroySwapchainResources releases framebuffers then image views.
func (c *Context) destroySwapchainResources() {
	for _, fb := range c.framebuffers {
		vk.DestroyFramebuffer(c.device, fb, nil)
	}
	c.framebuffers = nil
	for _, v := range c.views {
		vk.DestroyImageView(c.device, v, nil)
	}
	c.views = nil
}

// RecreateSwapchain rebuilds the swapchain with its views and
// framebuffers. The render pass and pipelines are kept.
func (c *Context) RecreateSwapchain() error {
	if err := check("vkDeviceWaitIdle", vk.DeviceWaitIdle(c.device)); err != nil {
		return err
	}
	c.destroySwapchainResources()
	if err := c.createSwapchain(); err != nil {
		return err
	}
	if err := c.createImageViews(); err != nil {
		return err
	}
	return c.createFramebuffers()
}

func (c *Context) Extent() gfx.Extent {
	return gfx.Extent{Width: c.extent.Width, Height: c.extent.Height}
}

func (c *Context) ImageCount() int { return len(c.images) }
