package gfx

import "errors"

// Per-frame conditions a caller may recover from by skipping the frame.
var (
	// ErrFrameTimeout reports that a bounded wait (fence or image
	// acquisition) expired. Nothing was recorded; retry next iteration.
	ErrFrameTimeout = errors.New("gfx: frame wait timed out")
	// ErrSwapchainOutOfDate reports a stale swapchain. The synchronizer has
	// already recreated it by the time the error is returned.
	ErrSwapchainOutOfDate = errors.New("gfx: swapchain out of date")
)

// ErrDeviceLost is fatal: the context must be rebuilt or the process exit.
var ErrDeviceLost = errors.New("gfx: device lost")

// Protocol misuse.
var (
	ErrFrameInProgress = errors.New("gfx: frame already recording")
	ErrNoActiveFrame   = errors.New("gfx: no frame recording")
	ErrStaleFrame      = errors.New("gfx: frame token is stale")
)

var (
	ErrInvalidHandle     = errors.New("gfx: invalid pipeline handle")
	ErrInvalidDescriptor = errors.New("gfx: invalid pipeline descriptor")
	ErrPushConstantSize  = errors.New("gfx: push constant size mismatch")
)

// Retryable reports whether err only costs the current frame.
func Retryable(err error) bool {
	return errors.Is(err, ErrFrameTimeout) || errors.Is(err, ErrSwapchainOutOfDate)
}
