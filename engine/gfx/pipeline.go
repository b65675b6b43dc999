package gfx

import (
	"fmt"
	"strings"
)

// BlendMode selects the color blend equation of a pipeline.
type BlendMode uint8

const (
	// BlendAlpha: color = src*srcA + dst*(1-srcA).
	BlendAlpha BlendMode = iota
	// BlendAdditive: color = src*srcA + dst, alpha keeps dst.
	BlendAdditive
)

func (b BlendMode) String() string {
	switch b {
	case BlendAlpha:
		return "alpha"
	case BlendAdditive:
		return "additive"
	default:
		return fmt.Sprintf("BlendMode(%d)", uint8(b))
	}
}

func (b BlendMode) Valid() bool { return b <= BlendAdditive }

func (b BlendMode) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("gfx: unknown blend mode %d", uint8(b))
	}
	return []byte(b.String()), nil
}

func (b *BlendMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "alpha", "":
		*b = BlendAlpha
	case "additive", "add":
		*b = BlendAdditive
	default:
		return fmt.Errorf("gfx: unknown blend mode %q", text)
	}
	return nil
}

// BlendFactor is a backend-neutral blend factor.
type BlendFactor uint8

const (
	FactorZero BlendFactor = iota
	FactorOne
	FactorSrcAlpha
	FactorOneMinusSrcAlpha
)

// BlendState is the fixed-function blend configuration of one color attachment.
// Both equations use the ADD operator.
type BlendState struct {
	SrcColor, DstColor BlendFactor
	SrcAlpha, DstAlpha BlendFactor
}

// State returns the factors for b.
func (b BlendMode) State() BlendState {
	if b == BlendAdditive {
		return BlendState{
			SrcColor: FactorSrcAlpha, DstColor: FactorOne,
			SrcAlpha: FactorZero, DstAlpha: FactorOne,
		}
	}
	return BlendState{
		SrcColor: FactorSrcAlpha, DstColor: FactorOneMinusSrcAlpha,
		SrcAlpha: FactorOne, DstAlpha: FactorOneMinusSrcAlpha,
	}
}

// PipelineDescriptor fully describes a graphics pipeline. Everything else
// (render pass, topology, rasterization) is fixed by the backend.
type PipelineDescriptor struct {
	Name             string    `toml:"name"`
	VertexShader     string    `toml:"vertex"`
	FragmentShader   string    `toml:"fragment"`
	Blend            BlendMode `toml:"blend"`
	PushConstantSize uint32    `toml:"push_constant_size"`
}

// Validate checks the backend-independent constraints of d.
func (d PipelineDescriptor) Validate() error {
	switch {
	case d.VertexShader == "" || d.FragmentShader == "":
		return fmt.Errorf("%w %q: vertex and fragment shaders are required", ErrInvalidDescriptor, d.Name)
	case !d.Blend.Valid():
		return fmt.Errorf("%w %q: blend mode %d", ErrInvalidDescriptor, d.Name, uint8(d.Blend))
	case d.PushConstantSize == 0 || d.PushConstantSize%4 != 0:
		return fmt.Errorf("%w %q: push constant size %d must be a positive multiple of 4",
			ErrInvalidDescriptor, d.Name, d.PushConstantSize)
	}
	return nil
}

// Pipeline is an immutable, built graphics pipeline.
type Pipeline interface {
	Descriptor() PipelineDescriptor
	Destroy()
}

// PipelineBuilder turns descriptors into pipelines against a shared render pass.
type PipelineBuilder interface {
	BuildPipeline(desc PipelineDescriptor) (Pipeline, error)
}
