package core

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/hubastard/grove-vk/engine/gfx"
	"github.com/hubastard/grove-vk/engine/gfx/renderer2d"
	"github.com/hubastard/grove-vk/engine/profiler"
)

// Run wires the platform window and graphics context and executes the main
// loop until the window closes or a frame fails for good.
func Run(app App, cfg Config, newWindow func(Config) (Window, error), newGraphics func(Window, Config) (Graphics, error)) error {
	// Vulkan surfaces and GLFW need the main OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := cfg.Validate(); err != nil {
		return err
	}
	log := slog.Default().With("component", "engine")

	win, err := newWindow(cfg)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer win.Destroy()

	g, err := newGraphics(win, cfg)
	if err != nil {
		return fmt.Errorf("create graphics: %w", err)
	}
	pipelines := gfx.NewPipelineRegistry(g)
	defer func() {
		// GPU work must drain before any pipeline goes away.
		if werr := g.WaitIdle(); werr != nil {
			log.Warn("wait idle", "err", werr)
		}
		pipelines.Destroy()
		g.Destroy()
	}()

	for _, desc := range cfg.Pipelines {
		desc.VertexShader = cfg.ShaderPath(desc.VertexShader)
		desc.FragmentShader = cfg.ShaderPath(desc.FragmentShader)
		if _, err := pipelines.Add(desc); err != nil {
			return err
		}
	}

	eng := &Engine{
		Window:    win,
		Graphics:  g,
		Frames:    gfx.NewFrameSynchronizer(g, cfg.FrameTimeout.Std()),
		Pipelines: pipelines,
		R2D:       renderer2d.New(pipelines),
		Input:     NewInput(),
		Layers:    &LayerStack{},
		Config:    cfg,
		Log:       log,
		start:     time.Now(),
	}
	eng.Input.SetMouse(win.CursorPos())

	win.SetEventCallback(func(ev Event) {
		eng.Input.Handle(ev)
		handled := false
		eng.Layers.ForEachReverse(func(l Layer) bool {
			handled = l.OnEvent(eng, ev)
			return handled
		})
		if !handled {
			app.OnEvent(eng, ev)
		}
	})

	if err := app.OnStart(eng); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() {
		app.OnShutdown(eng)
		for eng.Layers.Len() > 0 {
			eng.PopLayer()
		}
	}()

	// Fixed-timestep (60 Hz) with interpolation
	const tick = time.Second / 60
	var (
		accum   time.Duration
		prev    = time.Now()
		maxStep = 10 // prevent spiral of death
	)

	for !win.ShouldClose() {
		now := time.Now()
		accum += now.Sub(prev)
		prev = now

		win.PollEvents()

		steps := 0
		for accum >= tick && steps < maxStep {
			dt := float64(tick) / float64(time.Second)
			app.OnUpdate(eng, dt)
			eng.Layers.ForEach(func(l Layer) { l.OnUpdate(eng, dt) })
			eng.Input.EndTick()
			accum -= tick
			steps++
		}
		alpha := float64(accum) / float64(tick)

		if err := eng.renderFrame(app, alpha); err != nil {
			if gfx.Retryable(err) {
				eng.skipped++
				log.Debug("frame skipped", "err", err)
				continue
			}
			return err
		}
	}

	log.Info("engine exit", "uptime", eng.Uptime().Round(time.Millisecond),
		"frames", eng.Frames.Stats().Presented, "skipped", eng.skipped)
	return nil
}

func (e *Engine) renderFrame(app App, alpha float64) error {
	end := profiler.Start("Engine.Frame")
	defer end()

	tok, err := e.Frames.Begin(e.Config.ClearColor)
	if err != nil {
		return err
	}
	e.frame = tok
	e.R2D.BeginFrame(tok)
	defer func() { e.frame = gfx.FrameToken{} }()

	rerr := app.OnRender(e, alpha)
	if rerr == nil {
		rerr = e.Layers.ForEachErr(func(l Layer) error { return l.OnRender(e, alpha) })
	}
	// The frame is always submitted once begun, so the fence gets signaled
	// even when recording reported an error.
	perr := e.Frames.Present(tok)
	if rerr != nil {
		return errors.Join(fmt.Errorf("render: %w", rerr), perr)
	}
	return perr
}
