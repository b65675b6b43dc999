package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubastard/grove-vk/engine/colors"
	"github.com/hubastard/grove-vk/engine/gfx"
	"github.com/hubastard/grove-vk/engine/gfx/gfxtest"
	"github.com/hubastard/grove-vk/engine/gfx/renderer2d"
)

type fakeWindow struct {
	frames    int // loop iterations before ShouldClose reports true
	polls     int
	pending   map[int][]Event // events delivered on the nth poll
	cb        func(Event)
	closed    bool
	destroyed bool
}

func (w *fakeWindow) PollEvents() {
	w.polls++
	for _, ev := range w.pending[w.polls] {
		w.cb(ev)
	}
}
func (w *fakeWindow) ShouldClose() bool               { return w.closed || w.polls >= w.frames }
func (w *fakeWindow) RequestClose()                   { w.closed = true }
func (w *fakeWindow) FramebufferSize() (int, int)     { return 800, 600 }
func (w *fakeWindow) CursorPos() (float64, float64)   { return 400, 300 }
func (w *fakeWindow) SetTitle(string)                 {}
func (w *fakeWindow) SetEventCallback(cb func(Event)) { w.cb = cb }
func (w *fakeWindow) Destroy()                        { w.destroyed = true }

type testApp struct {
	renderErr  error
	drawFrames int // frames that draw; 0 draws in every frame
	renders    int
	events     []Event
	shutdown   bool
	stats      renderer2d.Statistics
	layers     []Layer
}

func (a *testApp) OnStart(e *Engine) error {
	for _, l := range a.layers {
		e.PushLayer(l)
	}
	return nil
}
func (a *testApp) OnUpdate(e *Engine, dt float64) {}
func (a *testApp) OnRender(e *Engine, alpha float64) error {
	a.renders++
	if a.renderErr != nil {
		return a.renderErr
	}
	if a.drawFrames > 0 && a.renders > a.drawFrames {
		a.stats = e.R2D.Stats()
		return nil
	}
	h, ok := e.Pipeline("alpha")
	if !ok {
		return errors.New("no alpha pipeline")
	}
	err := e.R2D.RenderTriangleUniform(e.Frame(), h,
		mgl32.Vec2{0, 0}, mgl32.Vec2{800, 0}, mgl32.Vec2{400, 600},
		colors.Red, 0, nil)
	a.stats = e.R2D.Stats()
	return err
}
func (a *testApp) OnEvent(e *Engine, ev Event) { a.events = append(a.events, ev) }
func (a *testApp) OnShutdown(e *Engine)        { a.shutdown = true }

type keyLayer struct {
	attached, detached bool
	keys               []Key
}

func (l *keyLayer) OnAttach(e *Engine)                      { l.attached = true }
func (l *keyLayer) OnDetach(e *Engine)                      { l.detached = true }
func (l *keyLayer) OnUpdate(e *Engine, dt float64)          {}
func (l *keyLayer) OnRender(e *Engine, alpha float64) error { return nil }
func (l *keyLayer) OnEvent(e *Engine, ev Event) bool {
	if k, ok := ev.(EventKey); ok {
		l.keys = append(l.keys, k.Key)
		if k.Key == KeyEscape {
			e.Window.RequestClose()
		}
		return true
	}
	return false
}

func run(t *testing.T, app App, win *fakeWindow, g *gfxtest.Graphics) error {
	t.Helper()
	return Run(app, DefaultConfig(),
		func(Config) (Window, error) { return win, nil },
		func(Window, Config) (Graphics, error) { return g, nil })
}

func TestRunPresentsAndTearsDown(t *testing.T) {
	win := &fakeWindow{frames: 3}
	g := gfxtest.NewGraphics(2, 800, 600)
	app := &testApp{}

	require.NoError(t, run(t, app, win, g))

	assert.Equal(t, 3, app.renders)
	assert.Equal(t, 1, app.stats.DrawCalls)
	assert.Equal(t, 1, g.Recorder.Draws())
	assert.True(t, app.shutdown)
	assert.True(t, win.destroyed)

	// pipelines are built from the config with resolved shader paths
	require.Len(t, g.Built, 2)
	assert.Equal(t, filepath.Join("assets", "shaders", "immediate.vert.spv"), g.Built[0].Desc.VertexShader)

	// the device drains, then pipelines go in reverse, then the context
	n := len(g.Calls)
	assert.Equal(t, []string{"waitidle", "destroy"}, g.Calls[n-2:])
	assert.Equal(t, []string{"additive", "alpha"}, g.Builder.Destroyed)
	assert.Zero(t, g.LiveAtDestroy)
}

func TestRunSkipsRetryableFrames(t *testing.T) {
	win := &fakeWindow{frames: 3}
	g := gfxtest.NewGraphics(2, 800, 600)
	g.WaitErrs = []error{fmt.Errorf("fence: %w", gfx.ErrFrameTimeout)}
	g.Acquires = []gfxtest.Acquire{{}, {Err: gfx.ErrSwapchainOutOfDate}}
	app := &testApp{}

	require.NoError(t, run(t, app, win, g))
	assert.Equal(t, 1, app.renders)
	assert.Equal(t, 1, g.Recreations)
}

func TestRunStopsOnDeviceLost(t *testing.T) {
	win := &fakeWindow{frames: 5}
	g := gfxtest.NewGraphics(2, 800, 600)
	g.Acquires = []gfxtest.Acquire{{Err: gfx.ErrDeviceLost}}
	app := &testApp{}

	err := run(t, app, win, g)
	require.ErrorIs(t, err, gfx.ErrDeviceLost)
	assert.Zero(t, app.renders)
	assert.True(t, app.shutdown)
	assert.True(t, g.Destroyed)
	assert.True(t, win.destroyed)
}

func TestRunRenderErrorStillSubmits(t *testing.T) {
	win := &fakeWindow{frames: 5}
	g := gfxtest.NewGraphics(2, 800, 600)
	boom := errors.New("boom")
	app := &testApp{renderErr: boom}

	err := run(t, app, win, g)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, app.renders)
	assert.Contains(t, g.Calls, "submit")
	assert.True(t, g.FenceSignaled)
}

func TestRunPipelineBuildFailure(t *testing.T) {
	win := &fakeWindow{frames: 1}
	g := gfxtest.NewGraphics(2, 800, 600)
	g.Builder.Err = errors.New("no shader")

	err := run(t, newTestApp(), win, g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `build pipeline "alpha"`)
	assert.True(t, g.Destroyed)
	assert.True(t, win.destroyed)
}

func newTestApp() *testApp { return &testApp{} }

func TestRunFactoryErrors(t *testing.T) {
	boom := errors.New("boom")
	win := &fakeWindow{}
	err := Run(newTestApp(), DefaultConfig(),
		func(Config) (Window, error) { return nil, boom },
		func(Window, Config) (Graphics, error) { return nil, nil })
	assert.ErrorIs(t, err, boom)

	err = Run(newTestApp(), DefaultConfig(),
		func(Config) (Window, error) { return win, nil },
		func(Window, Config) (Graphics, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.True(t, win.destroyed)

	bad := DefaultConfig()
	bad.Width = 0
	err = Run(newTestApp(), bad, nil, nil)
	assert.Error(t, err)
}

func TestRunDispatchesEventsTopDown(t *testing.T) {
	layer := &keyLayer{}
	win := &fakeWindow{frames: 10, pending: map[int][]Event{
		1: {EventMouseMove{X: 5, Y: 6}},
		2: {EventKey{Key: KeyEscape, Down: true}},
	}}
	g := gfxtest.NewGraphics(2, 800, 600)
	a := &testApp{layers: []Layer{layer}}

	require.NoError(t, run(t, a, win, g))
	assert.True(t, layer.attached)
	assert.True(t, layer.detached)
	assert.Equal(t, []Key{KeyEscape}, layer.keys)
	// the layer consumed the key; the app only sees the mouse move
	assert.Equal(t, []Event{EventMouseMove{X: 5, Y: 6}}, a.events)
	assert.Equal(t, 2, a.renders)
}

func TestRunStatsCoverOnlyCurrentFrame(t *testing.T) {
	win := &fakeWindow{frames: 2}
	g := gfxtest.NewGraphics(2, 800, 600)
	a := &testApp{drawFrames: 1}

	require.NoError(t, run(t, a, win, g))
	assert.Equal(t, 2, a.renders)
	assert.Equal(t, renderer2d.Statistics{}, a.stats)
}
