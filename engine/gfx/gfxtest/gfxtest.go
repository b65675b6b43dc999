// Package gfxtest provides scripted in-memory implementations of the gfx
// device contracts for tests that run without a GPU.
package gfxtest

import (
	"fmt"
	"time"

	"github.com/hubastard/grove-vk/engine/colors"
	"github.com/hubastard/grove-vk/engine/gfx"
)

// Acquire scripts one AcquireImage result.
type Acquire struct {
	Image      uint32
	Suboptimal bool
	Err        error
}

// PresentResult scripts one Present result.
type PresentResult struct {
	Suboptimal bool
	Err        error
}

// Device is a fake gfx.Device. Scripted results are consumed in order;
// once a script runs out the call succeeds. The fence completes as soon
// as a frame is submitted, so waiting on an unsignaled fence without a
// submit in between reports a timeout.
type Device struct {
	Images int
	Size   gfx.Extent

	WaitErrs       []error
	Acquires       []Acquire
	Presents       []PresentResult
	ResetErr       error
	BeginErr       error
	EndErr         error
	SubmitErr      error
	RecreateErr    error
	FenceSignaled  bool
	Recreations    int
	Recorder       *Recorder
	LastClear      colors.Color
	Calls          []string
	nextImage      uint32
	LastWaitBudget time.Duration
}

// NewDevice returns a device with n swapchain images of the given size and
// a signaled fence.
func NewDevice(n int, w, h uint32) *Device {
	return &Device{
		Images:        n,
		Size:          gfx.Extent{Width: w, Height: h},
		FenceSignaled: true,
		Recorder:      &Recorder{},
	}
}

func (d *Device) call(name string) { d.Calls = append(d.Calls, name) }

func (d *Device) WaitFrameFence(timeout time.Duration) error {
	d.call("wait")
	d.LastWaitBudget = timeout
	if len(d.WaitErrs) > 0 {
		err := d.WaitErrs[0]
		d.WaitErrs = d.WaitErrs[1:]
		if err != nil {
			return err
		}
	}
	if !d.FenceSignaled {
		return fmt.Errorf("wait for fences: %w", gfx.ErrFrameTimeout)
	}
	return nil
}

func (d *Device) ResetFrameFence() error {
	d.call("reset")
	if d.ResetErr != nil {
		return d.ResetErr
	}
	d.FenceSignaled = false
	return nil
}

func (d *Device) AcquireImage(timeout time.Duration) (uint32, bool, error) {
	d.call("acquire")
	if len(d.Acquires) > 0 {
		a := d.Acquires[0]
		d.Acquires = d.Acquires[1:]
		return a.Image, a.Suboptimal, a.Err
	}
	img := d.nextImage
	if d.Images > 0 {
		d.nextImage = (d.nextImage + 1) % uint32(d.Images)
	}
	return img, false, nil
}

func (d *Device) BeginRecording(image uint32, clearColor colors.Color) (gfx.Recorder, error) {
	d.call("begin")
	if d.BeginErr != nil {
		return nil, d.BeginErr
	}
	d.LastClear = clearColor
	d.Recorder.Reset()
	return d.Recorder, nil
}

func (d *Device) EndRecording() error {
	d.call("end")
	return d.EndErr
}

func (d *Device) Submit() error {
	d.call("submit")
	if d.SubmitErr != nil {
		return d.SubmitErr
	}
	d.FenceSignaled = true
	return nil
}

func (d *Device) Present(image uint32) (bool, error) {
	d.call("present")
	if len(d.Presents) > 0 {
		p := d.Presents[0]
		d.Presents = d.Presents[1:]
		return p.Suboptimal, p.Err
	}
	return false, nil
}

func (d *Device) RecreateSwapchain() error {
	d.call("recreate")
	if d.RecreateErr != nil {
		return d.RecreateErr
	}
	d.Recreations++
	return nil
}

func (d *Device) Extent() gfx.Extent { return d.Size }

func (d *Device) ImageCount() int { return d.Images }

// Op is one recorded command.
type Op struct {
	Kind     string // "bind", "push" or "draw"
	Pipeline gfx.Pipeline
	Data     []byte
	Vertices uint32
}

// Recorder captures recorded commands.
type Recorder struct {
	Ops []Op
}

func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }

func (r *Recorder) BindPipeline(p gfx.Pipeline) {
	r.Ops = append(r.Ops, Op{Kind: "bind", Pipeline: p})
}

func (r *Recorder) PushConstants(p gfx.Pipeline, data []byte) {
	r.Ops = append(r.Ops, Op{Kind: "push", Pipeline: p, Data: append([]byte(nil), data...)})
}

func (r *Recorder) Draw(vertexCount uint32) {
	r.Ops = append(r.Ops, Op{Kind: "draw", Vertices: vertexCount})
}

// Draws returns the number of recorded draw commands.
func (r *Recorder) Draws() int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == "draw" {
			n++
		}
	}
	return n
}

// Pushes returns the payloads of every recorded push in order.
func (r *Recorder) Pushes() [][]byte {
	var out [][]byte
	for _, op := range r.Ops {
		if op.Kind == "push" {
			out = append(out, op.Data)
		}
	}
	return out
}

// Pipeline is a fake gfx.Pipeline.
type Pipeline struct {
	Desc      gfx.PipelineDescriptor
	Destroyed bool
	log       *[]string
}

func (p *Pipeline) Descriptor() gfx.PipelineDescriptor { return p.Desc }

func (p *Pipeline) Destroy() {
	p.Destroyed = true
	if p.log != nil {
		*p.log = append(*p.log, p.Desc.Name)
	}
}

// Builder is a fake gfx.PipelineBuilder.
type Builder struct {
	Err error
	// Built holds every pipeline in build order.
	Built []*Pipeline
	// Destroyed holds pipeline names in destruction order.
	Destroyed []string
}

func (b *Builder) BuildPipeline(desc gfx.PipelineDescriptor) (gfx.Pipeline, error) {
	if b.Err != nil {
		return nil, b.Err
	}
	p := &Pipeline{Desc: desc, log: &b.Destroyed}
	b.Built = append(b.Built, p)
	return p, nil
}

// Graphics combines Device and Builder into a full graphics context.
type Graphics struct {
	*Device
	*Builder
	WaitIdleErr error
	Destroyed   bool
	// LiveAtDestroy is the number of pipelines not yet destroyed when the
	// context itself was destroyed.
	LiveAtDestroy int
}

// NewGraphics returns a context over NewDevice(n, w, h).
func NewGraphics(n int, w, h uint32) *Graphics {
	return &Graphics{Device: NewDevice(n, w, h), Builder: &Builder{}}
}

func (g *Graphics) WaitIdle() error {
	g.call("waitidle")
	return g.WaitIdleErr
}

func (g *Graphics) Destroy() {
	g.call("destroy")
	g.Destroyed = true
	g.LiveAtDestroy = len(g.Built) - len(g.Builder.Destroyed)
}
