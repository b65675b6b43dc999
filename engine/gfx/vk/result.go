package vkbackend

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/hubastard/grove-vk/engine/gfx"
)

// ResultError names the Vulkan call that failed and the result it returned.
type ResultError struct {
	Op     string
	Result vk.Result
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("vulkan: %s: %s (%d)", e.Op, resultName(e.Result), int32(e.Result))
}

// Unwrap maps the result onto the gfx error taxonomy.
func (e *ResultError) Unwrap() error {
	switch classify(e.Result) {
	case resultTimeout:
		return gfx.ErrFrameTimeout
	case resultOutOfDate:
		return gfx.ErrSwapchainOutOfDate
	case resultDeviceLost:
		return gfx.ErrDeviceLost
	}
	return nil
}

func check(op string, r vk.Result) error {
	if r == vk.Success {
		return nil
	}
	return &ResultError{Op: op, Result: r}
}

type resultClass uint8

const (
	resultOK resultClass = iota
	resultSuboptimal
	resultTimeout
	resultOutOfDate
	resultDeviceLost
	resultFatal
)

func classify(r vk.Result) resultClass {
	switch r {
	case vk.Success:
		return resultOK
	case vk.Suboptimal:
		return resultSuboptimal
	case vk.Timeout, vk.NotReady:
		return resultTimeout
	case vk.ErrorOutOfDate:
		return resultOutOfDate
	case vk.ErrorDeviceLost:
		return resultDeviceLost
	}
	return resultFatal
}

var resultNames = map[vk.Result]string{
	vk.Success:                   "VK_SUCCESS",
	vk.NotReady:                  "VK_NOT_READY",
	vk.Timeout:                   "VK_TIMEOUT",
	vk.Incomplete:                "VK_INCOMPLETE",
	vk.Suboptimal:                "VK_SUBOPTIMAL_KHR",
	vk.ErrorOutOfHostMemory:      "VK_ERROR_OUT_OF_HOST_MEMORY",
	vk.ErrorOutOfDeviceMemory:    "VK_ERROR_OUT_OF_DEVICE_MEMORY",
	vk.ErrorInitializationFailed: "VK_ERROR_INITIALIZATION_FAILED",
	vk.ErrorDeviceLost:           "VK_ERROR_DEVICE_LOST",
	vk.ErrorLayerNotPresent:      "VK_ERROR_LAYER_NOT_PRESENT",
	vk.ErrorExtensionNotPresent:  "VK_ERROR_EXTENSION_NOT_PRESENT",
	vk.ErrorFeatureNotPresent:    "VK_ERROR_FEATURE_NOT_PRESENT",
	vk.ErrorIncompatibleDriver:   "VK_ERROR_INCOMPATIBLE_DRIVER",
	vk.ErrorSurfaceLost:          "VK_ERROR_SURFACE_LOST_KHR",
	vk.ErrorOutOfDate:            "VK_ERROR_OUT_OF_DATE_KHR",
}

func resultName(r vk.Result) string {
	if n, ok := resultNames[r]; ok {
		return n
	}
	return "VkResult"
}
