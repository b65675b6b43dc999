package vkbackend

import (
	"fmt"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubastard/grove-vk/engine/gfx"
)

func TestClassify(t *testing.T) {
	cases := map[vk.Result]resultClass{
		vk.Success:              resultOK,
		vk.Suboptimal:           resultSuboptimal,
		vk.Timeout:              resultTimeout,
		vk.NotReady:             resultTimeout,
		vk.ErrorOutOfDate:       resultOutOfDate,
		vk.ErrorDeviceLost:      resultDeviceLost,
		vk.ErrorSurfaceLost:     resultFatal,
		vk.ErrorOutOfHostMemory: resultFatal,
	}
	for r, want := range cases {
		assert.Equal(t, want, classify(r), resultName(r))
	}
}

func TestResultErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("frame: %w", check("vkWaitForFences", vk.Timeout))
	assert.ErrorIs(t, err, gfx.ErrFrameTimeout)
	assert.True(t, gfx.Retryable(err))

	assert.ErrorIs(t, check("vkAcquireNextImageKHR", vk.ErrorOutOfDate), gfx.ErrSwapchainOutOfDate)
	assert.ErrorIs(t, check("vkQueueSubmit", vk.ErrorDeviceLost), gfx.ErrDeviceLost)

	err = check("vkCreateRenderPass", vk.ErrorOutOfDeviceMemory)
	require.Error(t, err)
	assert.False(t, gfx.Retryable(err))
	assert.Contains(t, err.Error(), "vkCreateRenderPass")
	assert.Contains(t, err.Error(), "VK_ERROR_OUT_OF_DEVICE_MEMORY")
}

func TestCheckSuccess(t *testing.T) {
	assert.NoError(t, check("vkCreateFence", vk.Success))
}
