package vkbackend

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubastard/grove-vk/engine/gfx"
)

func TestBlendAttachmentAlpha(t *testing.T) {
	s := blendAttachment(gfx.BlendAlpha)
	assert.Equal(t, vk.Bool32(vk.True), s.BlendEnable)
	assert.Equal(t, vk.BlendFactorSrcAlpha, s.SrcColorBlendFactor)
	assert.Equal(t, vk.BlendFactorOneMinusSrcAlpha, s.DstColorBlendFactor)
	assert.Equal(t, vk.BlendFactorOne, s.SrcAlphaBlendFactor)
	assert.Equal(t, vk.BlendFactorOneMinusSrcAlpha, s.DstAlphaBlendFactor)
	assert.Equal(t, vk.BlendOpAdd, s.ColorBlendOp)
}

func TestBlendAttachmentAdditive(t *testing.T) {
	s := blendAttachment(gfx.BlendAdditive)
	assert.Equal(t, vk.BlendFactorSrcAlpha, s.SrcColorBlendFactor)
	assert.Equal(t, vk.BlendFactorOne, s.DstColorBlendFactor)
	assert.Equal(t, vk.BlendFactorZero, s.SrcAlphaBlendFactor)
	assert.Equal(t, vk.BlendFactorOne, s.DstAlphaBlendFactor)
}

func TestBuildPipelineRejectsOversizedPush(t *testing.T) {
	c := &Context{maxPush: 128}
	_, err := c.BuildPipeline(gfx.PipelineDescriptor{
		Name: "big", VertexShader: "v.spv", FragmentShader: "f.spv", PushConstantSize: 256,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, gfx.ErrInvalidDescriptor)
}

func TestBuildPipelineMissingShader(t *testing.T) {
	c := &Context{maxPush: 128}
	_, err := c.BuildPipeline(gfx.PipelineDescriptor{
		Name: "missing", VertexShader: "does/not/exist.spv", FragmentShader: "f.spv", PushConstantSize: 96,
	})
	require.Error(t, err)
}
