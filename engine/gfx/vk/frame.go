package vkbackend

import (
	"fmt"
	"time"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/hubastard/grove-vk/engine/colors"
	"github.com/hubastard/grove-vk/engine/gfx"
)

func timeoutNS(d time.Duration) uint64 {
	if d < 0 {
		return 0
	}
	return uint64(d.Nanoseconds())
}

func (c *Context) WaitFrameFence(timeout time.Duration) error {
	return check("vkWaitForFences",
		vk.WaitForFences(c.device, 1, []vk.Fence{c.inFlight}, vk.True, timeoutNS(timeout)))
}

func (c *Context) ResetFrameFence() error {
	return check("vkResetFences", vk.ResetFences(c.device, 1, []vk.Fence{c.inFlight}))
}

func (c *Context) AcquireImage(timeout time.Duration) (uint32, bool, error) {
	var idx uint32
	r := vk.AcquireNextImage(c.device, c.swapchain, timeoutNS(timeout),
		c.imageAvailable, vk.Fence(vk.NullHandle), &idx)
	switch classify(r) {
	case resultOK:
		return idx, false, nil
	case resultSuboptimal:
		return idx, true, nil
	}
	return 0, false, check("vkAcquireNextImageKHR", r)
}

// BeginRecording resets the frame command buffer, opens the render pass on
// image's framebuffer and sets the dynamic viewport and scissor.
func (c *Context) BeginRecording(image uint32, clearColor colors.Color) (gfx.Recorder, error) {
	if int(image) >= len(c.framebuffers) {
		return nil, fmt.Errorf("vulkan: image index %d out of range [0,%d)", image, len(c.framebuffers))
	}
	if err := check("vkResetCommandBuffer", vk.ResetCommandBuffer(c.cmd, 0)); err != nil {
		return nil, err
	}
	begin := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit),
	}
	if err := check("vkBeginCommandBuffer", vk.BeginCommandBuffer(c.cmd, &begin)); err != nil {
		return nil, err
	}

	clearValues := make([]vk.ClearValue, 1)
	clearValues[0].SetColor(clearColor[:])
	area := vk.Rect2D{Extent: c.extent}
	vk.CmdBeginRenderPass(c.cmd, &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      c.renderPass,
		Framebuffer:     c.framebuffers[image],
		RenderArea:      area,
		ClearValueCount: 1,
		PClearValues:    clearValues,
	}, vk.SubpassContentsInline)

	vk.CmdSetViewport(c.cmd, 0, 1, []vk.Viewport{{
		Width:    float32(c.extent.Width),
		Height:   float32(c.extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}})
	vk.CmdSetScissor(c.cmd, 0, 1, []vk.Rect2D{area})

	c.rec = recorder{cmd: c.cmd}
	return &c.rec, nil
}

func (c *Context) EndRecording() error {
	vk.CmdEndRenderPass(c.cmd)
	return check("vkEndCommandBuffer", vk.EndCommandBuffer(c.cmd))
}

func (c *Context) Submit() error {
	info := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{c.imageAvailable},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{c.cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{c.renderFinished},
	}
	return check("vkQueueSubmit", vk.QueueSubmit(c.queue, 1, []vk.SubmitInfo{info}, c.inFlight))
}

func (c *Context) Present(image uint32) (bool, error) {
	r := vk.QueuePresent(c.queue, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{c.renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{c.swapchain},
		PImageIndices:      []uint32{image},
	})
	switch classify(r) {
	case resultOK:
		return false, nil
	case resultSuboptimal:
		return true, nil
	}
	return false, check("vkQueuePresentKHR", r)
}

// recorder writes into the context's single command buffer.
type recorder struct {
	cmd   vk.CommandBuffer
	bound *pipeline
}

func asPipeline(p gfx.Pipeline) *pipeline {
	vp, ok := p.(*pipeline)
	if !ok {
		panic(fmt.Sprintf("vkbackend: pipeline %T was not built by this context", p))
	}
	return vp
}

func (r *recorder) BindPipeline(p gfx.Pipeline) {
	vp := asPipeline(p)
	if r.bound == vp {
		return
	}
	vk.CmdBindPipeline(r.cmd, vk.PipelineBindPointGraphics, vp.handle)
	r.bound = vp
}

func (r *recorder) PushConstants(p gfx.Pipeline, data []byte) {
	if len(data) == 0 {
		return
	}
	vp := asPipeline(p)
	vk.CmdPushConstants(r.cmd, vp.layout, vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		0, uint32(len(data)), unsafe.Pointer(&data[0]))
}

func (r *recorder) Draw(vertexCount uint32) {
	vk.CmdDraw(r.cmd, vertexCount, 1, 0, 0)
}
