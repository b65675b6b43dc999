package gfx

import (
	"time"

	"github.com/hubastard/grove-vk/engine/colors"
)

// Extent is a swapchain size in pixels.
type Extent struct {
	Width, Height uint32
}

// Device is the per-frame surface of a graphics context: one fence, two
// semaphores, one command buffer and a swapchain. Implementations return
// errors that wrap ErrFrameTimeout, ErrSwapchainOutOfDate or ErrDeviceLost
// where those conditions apply.
type Device interface {
	// WaitFrameFence blocks until the previous submission completed or
	// timeout elapsed.
	WaitFrameFence(timeout time.Duration) error
	ResetFrameFence() error
	// AcquireImage signals the image-available semaphore when the image is ready.
	AcquireImage(timeout time.Duration) (image uint32, suboptimal bool, err error)
	// BeginRecording resets the command buffer, begins it and opens the
	// render pass on image's framebuffer with one clear value.
	BeginRecording(image uint32, clearColor colors.Color) (Recorder, error)
	// EndRecording closes the render pass and the command buffer.
	EndRecording() error
	// Submit waits on image-available, signals render-finished and the fence.
	Submit() error
	// Present waits on render-finished.
	Present(image uint32) (suboptimal bool, err error)
	// RecreateSwapchain rebuilds the swapchain and the image views and
	// framebuffers that depend on it.
	RecreateSwapchain() error
	Extent() Extent
	ImageCount() int
}

// Recorder records draw commands into the active command buffer.
type Recorder interface {
	BindPipeline(p Pipeline)
	PushConstants(p Pipeline, data []byte)
	Draw(vertexCount uint32)
}
