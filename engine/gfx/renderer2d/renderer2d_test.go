package renderer2d_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubastard/grove-vk/engine/colors"
	"github.com/hubastard/grove-vk/engine/gfx"
	"github.com/hubastard/grove-vk/engine/gfx/gfxtest"
	"github.com/hubastard/grove-vk/engine/gfx/renderer2d"
)

type fixture struct {
	dev    *gfxtest.Device
	frames *gfx.FrameSynchronizer
	reg    *gfx.PipelineRegistry
	r2d    *renderer2d.Renderer
	alpha  gfx.PipelineHandle
}

func newFixture(t *testing.T, w, h uint32) *fixture {
	t.Helper()
	f := &fixture{dev: gfxtest.NewDevice(2, w, h)}
	f.frames = gfx.NewFrameSynchronizer(f.dev, 0)
	f.reg = gfx.NewPipelineRegistry(&gfxtest.Builder{})
	var err error
	f.alpha, err = f.reg.Add(gfx.PipelineDescriptor{
		Name: "alpha", VertexShader: "v.spv", FragmentShader: "f.spv",
		Blend: gfx.BlendAlpha, PushConstantSize: renderer2d.PushBlockSize,
	})
	require.NoError(t, err)
	f.r2d = renderer2d.New(f.reg)
	return f
}

func floats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

func TestRenderTriangleScenario(t *testing.T) {
	f := newFixture(t, 800, 600)
	tok, err := f.frames.Begin(colors.Black)
	require.NoError(t, err)

	require.NoError(t, f.r2d.RenderTriangleUniform(tok, f.alpha,
		mgl32.Vec2{0, 0}, mgl32.Vec2{100, 0}, mgl32.Vec2{0, 100}, colors.Red, 0, nil))

	ops := f.dev.Recorder.Ops
	require.Len(t, ops, 3)
	assert.Equal(t, "bind", ops[0].Kind)
	assert.Equal(t, "push", ops[1].Kind)
	assert.Equal(t, "draw", ops[2].Kind)
	assert.Equal(t, uint32(3), ops[2].Vertices)

	got := floats(ops[1].Data)
	require.Len(t, got, 24)
	wantPos := []float32{
		-1, -1, 0, 1,
		-0.75, -1, 0, 1,
		-1, 2*100.0/600 - 1, 0, 1,
	}
	assert.InDeltaSlice(t, wantPos, got[:12], 1e-6)
	assert.Equal(t, []float32{1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1}, got[12:])

	require.NoError(t, f.frames.Present(tok))
}

func TestRenderTrianglePerVertexColors(t *testing.T) {
	f := newFixture(t, 100, 100)
	tok, err := f.frames.Begin(colors.Black)
	require.NoError(t, err)

	c1 := colors.Green.WithAlpha(0.3)
	require.NoError(t, f.r2d.RenderTriangle(tok, f.alpha,
		mgl32.Vec2{0, 0}, mgl32.Vec2{10, 0}, mgl32.Vec2{0, 10},
		colors.Red, c1, colors.Blue, 0))

	got := floats(f.dev.Recorder.Pushes()[0])
	assert.Equal(t, []float32{1, 0, 0, 1}, got[12:16])
	assert.Equal(t, []float32{0, 1, 0, 0.3}, got[16:20])
	assert.Equal(t, []float32{0, 0, 1, 1}, got[20:24])
}

func TestRenderRectangleCorners(t *testing.T) {
	f := newFixture(t, 800, 600)
	tok, err := f.frames.Begin(colors.Black)
	require.NoError(t, err)

	origin, size := mgl32.Vec2{100, 200}, mgl32.Vec2{200, 50}
	require.NoError(t, f.r2d.RenderRectangle(tok, f.alpha, origin, size, colors.White, 0))

	pushes := f.dev.Recorder.Pushes()
	require.Len(t, pushes, 2)
	assert.Equal(t, 2, f.dev.Recorder.Draws())

	vp := renderer2d.Viewport{Width: 800, Height: 600}
	want := map[mgl32.Vec2]bool{
		vp.Norm(origin): true,
		vp.Norm(origin.Add(mgl32.Vec2{size.X(), 0})): true,
		vp.Norm(origin.Add(mgl32.Vec2{0, size.Y()})): true,
		vp.Norm(origin.Add(size)):                    true,
	}
	seen := map[mgl32.Vec2]bool{}
	for _, p := range pushes {
		fl := floats(p)
		for i := 0; i < 3; i++ {
			seen[mgl32.Vec2{fl[i*4], fl[i*4+1]}] = true
		}
	}
	assert.Equal(t, want, seen)
}

func TestRenderRectangleRotatesAboutCenter(t *testing.T) {
	f := newFixture(t, 2, 2)
	tok, err := f.frames.Begin(colors.Black)
	require.NoError(t, err)

	// a centered square rotated by pi maps onto itself
	require.NoError(t, f.r2d.RenderRectangle(tok, f.alpha,
		mgl32.Vec2{0.5, 0.5}, mgl32.Vec2{1, 1}, colors.White, math.Pi))
	got := floats(f.dev.Recorder.Pushes()[0])
	// origin (0.5,0.5) -> (1.5,1.5) -> NDC (0.5,0.5)
	assert.InDelta(t, 0.5, got[0], 1e-5)
	assert.InDelta(t, 0.5, got[1], 1e-5)
}

func TestDrawRejectsMismatchedPushSize(t *testing.T) {
	f := newFixture(t, 64, 64)
	small, err := f.reg.Add(gfx.PipelineDescriptor{
		Name: "small", VertexShader: "v.spv", FragmentShader: "f.spv", PushConstantSize: 64,
	})
	require.NoError(t, err)
	tok, err := f.frames.Begin(colors.Black)
	require.NoError(t, err)

	err = f.r2d.RenderTriangleUniform(tok, small, mgl32.Vec2{}, mgl32.Vec2{1, 0}, mgl32.Vec2{0, 1}, colors.Red, 0, nil)
	assert.ErrorIs(t, err, gfx.ErrPushConstantSize)
	assert.Empty(t, f.dev.Recorder.Ops)
}

func TestDrawRejectsInvalidHandleAndStaleToken(t *testing.T) {
	f := newFixture(t, 64, 64)
	tok, err := f.frames.Begin(colors.Black)
	require.NoError(t, err)

	err = f.r2d.RenderTriangleUniform(tok, 7, mgl32.Vec2{}, mgl32.Vec2{1, 0}, mgl32.Vec2{0, 1}, colors.Red, 0, nil)
	assert.ErrorIs(t, err, gfx.ErrInvalidHandle)

	require.NoError(t, f.frames.Present(tok))
	err = f.r2d.RenderTriangleUniform(tok, f.alpha, mgl32.Vec2{}, mgl32.Vec2{1, 0}, mgl32.Vec2{0, 1}, colors.Red, 0, nil)
	assert.ErrorIs(t, err, gfx.ErrStaleFrame)
}

func TestStatisticsResetPerFrame(t *testing.T) {
	f := newFixture(t, 64, 64)
	for frame := 0; frame < 2; frame++ {
		tok, err := f.frames.Begin(colors.Black)
		require.NoError(t, err)
		require.NoError(t, f.r2d.RenderRectangle(tok, f.alpha, mgl32.Vec2{}, mgl32.Vec2{10, 10}, colors.Red, 0))
		require.NoError(t, f.r2d.RenderTriangleUniform(tok, f.alpha, mgl32.Vec2{}, mgl32.Vec2{1, 0}, mgl32.Vec2{0, 1}, colors.Red, 0, nil))
		require.NoError(t, f.frames.Present(tok))

		st := f.r2d.Stats()
		assert.Equal(t, 3, st.DrawCalls)
		assert.Equal(t, 3, st.Triangles)
		assert.Equal(t, 9, st.TotalVertexCount())
		assert.Equal(t, 3*renderer2d.PushBlockSize, st.PushBytes)
	}
}

func TestStatisticsEmptyFrame(t *testing.T) {
	f := newFixture(t, 64, 64)
	tok, err := f.frames.Begin(colors.Black)
	require.NoError(t, err)
	require.NoError(t, f.r2d.RenderRectangle(tok, f.alpha, mgl32.Vec2{}, mgl32.Vec2{10, 10}, colors.Red, 0))
	require.NoError(t, f.frames.Present(tok))
	assert.Equal(t, 2, f.r2d.Stats().DrawCalls)

	tok, err = f.frames.Begin(colors.Black)
	require.NoError(t, err)
	f.r2d.BeginFrame(tok)
	require.NoError(t, f.frames.Present(tok))
	assert.Equal(t, renderer2d.Statistics{}, f.r2d.Stats())

	// repeated calls within one frame keep the counts
	tok, err = f.frames.Begin(colors.Black)
	require.NoError(t, err)
	f.r2d.BeginFrame(tok)
	require.NoError(t, f.r2d.RenderTriangleUniform(tok, f.alpha, mgl32.Vec2{}, mgl32.Vec2{1, 0}, mgl32.Vec2{0, 1}, colors.Red, 0, nil))
	f.r2d.BeginFrame(tok)
	assert.Equal(t, 1, f.r2d.Stats().DrawCalls)
}
