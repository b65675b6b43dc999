package vkbackend

import (
	"math"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestChooseExtentUsesCurrent(t *testing.T) {
	cur := vk.Extent2D{Width: 1280, Height: 720}
	got := chooseExtent(cur, vk.Extent2D{Width: 1, Height: 1}, vk.Extent2D{Width: 4096, Height: 4096}, 10, 10)
	assert.Equal(t, cur, got)
}

func TestChooseExtentClampsUndefined(t *testing.T) {
	undefined := vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32}
	min := vk.Extent2D{Width: 64, Height: 64}
	max := vk.Extent2D{Width: 1920, Height: 1080}

	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, chooseExtent(undefined, min, max, 800, 600))
	assert.Equal(t, vk.Extent2D{Width: 1920, Height: 64}, chooseExtent(undefined, min, max, 5000, 10))
}

func TestChooseImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), chooseImageCount(2, 8))
	assert.Equal(t, uint32(3), chooseImageCount(2, 0))
	assert.Equal(t, uint32(2), chooseImageCount(2, 2))
}

func TestChooseSurfaceFormat(t *testing.T) {
	unorm := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	srgb := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	assert.Equal(t, srgb, chooseSurfaceFormat([]vk.SurfaceFormat{unorm, srgb}))
	assert.Equal(t, unorm, chooseSurfaceFormat([]vk.SurfaceFormat{unorm}))
}

func TestChoosePresentMode(t *testing.T) {
	modes := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeMailbox, vk.PresentModeFifo}
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode(modes, true))
	assert.Equal(t, vk.PresentModeMailbox, choosePresentMode(modes, false))
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode([]vk.PresentMode{vk.PresentModeFifo}, false))
}
