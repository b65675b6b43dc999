package vkbackend

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/hubastard/grove-vk/engine/assets"
	"github.com/hubastard/grove-vk/engine/gfx"
)

type pipeline struct {
	ctx    *Context
	desc   gfx.PipelineDescriptor
	layout vk.PipelineLayout
	handle vk.Pipeline
}

func (p *pipeline) Descriptor() gfx.PipelineDescriptor { return p.desc }

func (p *pipeline) Destroy() {
	if p.handle != vk.Pipeline(vk.NullHandle) {
		vk.DestroyPipeline(p.ctx.device, p.handle, nil)
		p.handle = vk.Pipeline(vk.NullHandle)
	}
	if p.layout != vk.PipelineLayout(vk.NullHandle) {
		vk.DestroyPipelineLayout(p.ctx.device, p.layout, nil)
		p.layout = vk.PipelineLayout(vk.NullHandle)
	}
}

func blendFactor(f gfx.BlendFactor) vk.BlendFactor {
	switch f {
	case gfx.FactorOne:
		return vk.BlendFactorOne
	case gfx.FactorSrcAlpha:
		return vk.BlendFactorSrcAlpha
	case gfx.FactorOneMinusSrcAlpha:
		return vk.BlendFactorOneMinusSrcAlpha
	}
	return vk.BlendFactorZero
}

func blendAttachment(mode gfx.BlendMode) vk.PipelineColorBlendAttachmentState {
	s := mode.State()
	return vk.PipelineColorBlendAttachmentState{
		BlendEnable:         vk.True,
		SrcColorBlendFactor: blendFactor(s.SrcColor),
		DstColorBlendFactor: blendFactor(s.DstColor),
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: blendFactor(s.SrcAlpha),
		DstAlphaBlendFactor: blendFactor(s.DstAlpha),
		AlphaBlendOp:        vk.BlendOpAdd,
		ColorWriteMask: vk.ColorComponentFlags(
			vk.ColorComponentRBit | vk.ColorComponentGBit |
				vk.ColorComponentBBit | vk.ColorComponentABit),
	}
}

func (c *Context) createShaderModule(path string) (vk.ShaderModule, error) {
	code, err := assets.LoadShader(path)
	if err != nil {
		return vk.ShaderModule(vk.NullHandle), err
	}
	info := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    assets.Words(code),
	}
	var mod vk.ShaderModule
	if err := check("vkCreateShaderModule", vk.CreateShaderModule(c.device, &info, nil, &mod)); err != nil {
		return vk.ShaderModule(vk.NullHandle), fmt.Errorf("shader %q: %w", path, err)
	}
	return mod, nil
}

// BuildPipeline creates a triangle-list pipeline against the context's
// render pass. Geometry comes only from push constants, so there is no
// vertex input. Viewport and scissor are dynamic.
func (c *Context) BuildPipeline(desc gfx.PipelineDescriptor) (gfx.Pipeline, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if desc.PushConstantSize > c.maxPush {
		return nil, fmt.Errorf("%w %q: push constant size %d exceeds device limit %d",
			gfx.ErrInvalidDescriptor, desc.Name, desc.PushConstantSize, c.maxPush)
	}

	vert, err := c.createShaderModule(desc.VertexShader)
	if err != nil {
		return nil, err
	}
	defer vk.DestroyShaderModule(c.device, vert, nil)
	frag, err := c.createShaderModule(desc.FragmentShader)
	if err != nil {
		return nil, err
	}
	defer vk.DestroyShaderModule(c.device, frag, nil)

	p := &pipeline{ctx: c, desc: desc}
	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		PushConstantRangeCount: 1,
		PPushConstantRanges: []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			Offset:     0,
			Size:       desc.PushConstantSize,
		}},
	}
	if err := check("vkCreatePipelineLayout", vk.CreatePipelineLayout(c.device, &layoutInfo, nil, &p.layout)); err != nil {
		return nil, err
	}

	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: vert,
			PName:  "main\x00",
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: frag,
			PName:  "main\x00",
		},
	}
	dynamic := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	info := vk.GraphicsPipelineCreateInfo{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(stages)),
		PStages:    stages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: vk.PrimitiveTopologyTriangleList,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    vk.CullModeFlags(vk.CullModeNone),
			FrontFace:   vk.FrontFaceClockwise,
			LineWidth:   1,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
			MinSampleShading:     1,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			LogicOp:         vk.LogicOpCopy,
			AttachmentCount: 1,
			PAttachments:    []vk.PipelineColorBlendAttachmentState{blendAttachment(desc.Blend)},
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: uint32(len(dynamic)),
			PDynamicStates:    dynamic,
		},
		Layout:             p.layout,
		RenderPass:         c.renderPass,
		Subpass:            0,
		BasePipelineHandle: vk.Pipeline(vk.NullHandle),
		BasePipelineIndex:  -1,
	}
	out := make([]vk.Pipeline, 1)
	if err := check("vkCreateGraphicsPipelines", vk.CreateGraphicsPipelines(c.device,
		vk.PipelineCache(vk.NullHandle), 1, []vk.GraphicsPipelineCreateInfo{info}, nil, out)); err != nil {
		p.Destroy()
		return nil, err
	}
	p.handle = out[0]
	c.log.Info("vulkan pipeline built", "name", desc.Name, "blend", desc.Blend.String(), "push_constants", desc.PushConstantSize)
	return p, nil
}
