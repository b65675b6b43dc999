package renderer2d

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/hubastard/grove-vk/engine/colors"
	"github.com/hubastard/grove-vk/engine/gfx"
)

const vertsPerTriangle = 3

// DrawRequest is one triangle in pixel space.
type DrawRequest struct {
	Points   [3]mgl32.Vec2
	Colors   [3]colors.Color
	Rotation float32
	// Pivot defaults to the centroid of Points.
	Pivot *mgl32.Vec2
}

// Block transforms the request into the push block for a viewport.
func (d DrawRequest) Block(vp Viewport) PushBlock {
	pivot := Centroid(d.Points)
	if d.Pivot != nil {
		pivot = *d.Pivot
	}
	pts := Rotate(d.Points, pivot, d.Rotation)
	for i := range pts {
		pts[i] = vp.Norm(pts[i])
	}
	return Pack(pts, d.Colors)
}

// Statistics captures the counts generated during a renderer frame.
type Statistics struct {
	DrawCalls int
	Triangles int
	PushBytes int
}

// TotalVertexCount reports vertices submitted this frame.
func (s Statistics) TotalVertexCount() int { return s.Triangles * vertsPerTriangle }

// Renderer issues one draw per triangle with its geometry in push constants.
type Renderer struct {
	pipelines *gfx.PipelineRegistry

	gen   uint64
	stats Statistics
}

func New(pipelines *gfx.PipelineRegistry) *Renderer {
	return &Renderer{pipelines: pipelines}
}

// Stats returns the statistics of the current frame.
func (r *Renderer) Stats() Statistics { return r.stats }

// BeginFrame starts counting for the frame tok refers to, so a frame without
// draws reports zero.
func (r *Renderer) BeginFrame(tok gfx.FrameToken) {
	if tok.Generation() != r.gen {
		r.gen = tok.Generation()
		r.stats = Statistics{}
	}
}

// Draw records req into the frame tok refers to using pipeline h.
func (r *Renderer) Draw(tok gfx.FrameToken, h gfx.PipelineHandle, req DrawRequest) error {
	rec, err := tok.Recorder()
	if err != nil {
		return err
	}
	p, err := r.pipelines.Get(h)
	if err != nil {
		return err
	}
	if size := p.Descriptor().PushConstantSize; size != PushBlockSize {
		return fmt.Errorf("%w: pipeline %q declares %d bytes, block is %d",
			gfx.ErrPushConstantSize, p.Descriptor().Name, size, PushBlockSize)
	}

	ext := tok.Extent()
	block := req.Block(Viewport{Width: float32(ext.Width), Height: float32(ext.Height)})
	data := block.Bytes()

	rec.BindPipeline(p)
	rec.PushConstants(p, data[:])
	rec.Draw(vertsPerTriangle)

	r.BeginFrame(tok)
	r.stats.DrawCalls++
	r.stats.Triangles++
	r.stats.PushBytes += len(data)
	return nil
}

// RenderTriangle draws a per-vertex colored triangle rotated about its centroid.
func (r *Renderer) RenderTriangle(tok gfx.FrameToken, h gfx.PipelineHandle,
	p0, p1, p2 mgl32.Vec2, c0, c1, c2 colors.Color, rotation float32) error {
	return r.Draw(tok, h, DrawRequest{
		Points:   [3]mgl32.Vec2{p0, p1, p2},
		Colors:   [3]colors.Color{c0, c1, c2},
		Rotation: rotation,
	})
}

// RenderTriangleUniform draws a single-color triangle. A nil pivot rotates
// about the centroid.
func (r *Renderer) RenderTriangleUniform(tok gfx.FrameToken, h gfx.PipelineHandle,
	p0, p1, p2 mgl32.Vec2, color colors.Color, rotation float32, pivot *mgl32.Vec2) error {
	return r.Draw(tok, h, DrawRequest{
		Points:   [3]mgl32.Vec2{p0, p1, p2},
		Colors:   [3]colors.Color{color, color, color},
		Rotation: rotation,
		Pivot:    pivot,
	})
}

// RenderRectangle draws an axis-aligned rectangle at origin as two
// triangles rotated about the rectangle's center.
func (r *Renderer) RenderRectangle(tok gfx.FrameToken, h gfx.PipelineHandle,
	origin, size mgl32.Vec2, color colors.Color, rotation float32) error {
	pivot := origin.Add(size.Mul(0.5))
	right := origin.Add(mgl32.Vec2{size.X(), 0})
	down := origin.Add(mgl32.Vec2{0, size.Y()})

	if err := r.RenderTriangleUniform(tok, h, origin, right, down, color, rotation, &pivot); err != nil {
		return err
	}
	return r.RenderTriangleUniform(tok, h, right, down, origin.Add(size), color, rotation, &pivot)
}
