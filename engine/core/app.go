package core

import (
	"log/slog"
	"time"

	"github.com/hubastard/grove-vk/engine/gfx"
	"github.com/hubastard/grove-vk/engine/gfx/renderer2d"
)

// App defines the game/application hooks.
type App interface {
	OnStart(e *Engine) error                 // called once after window/graphics init
	OnUpdate(e *Engine, dt float64)          // called at a fixed tick (60Hz by default)
	OnRender(e *Engine, alpha float64) error // record draws into e.Frame()
	OnEvent(e *Engine, ev Event)             // input/window events
	OnShutdown(e *Engine)                    // before exit
}

// Engine exposes core services to the App.
type Engine struct {
	Window    Window
	Graphics  Graphics
	Frames    *gfx.FrameSynchronizer
	Pipelines *gfx.PipelineRegistry
	R2D       *renderer2d.Renderer
	Input     *Input
	Layers    *LayerStack
	Config    Config
	Log       *slog.Logger

	frame   gfx.FrameToken
	skipped uint64
	start   time.Time
}

func (e *Engine) Uptime() time.Duration { return time.Since(e.start) }

// Frame is the token of the frame being recorded. It is only valid inside
// OnRender.
func (e *Engine) Frame() gfx.FrameToken { return e.frame }

// SkippedFrames counts frames dropped on a timeout or a stale swapchain.
func (e *Engine) SkippedFrames() uint64 { return e.skipped }

// Pipeline looks up a pipeline registered from the config by name.
func (e *Engine) Pipeline(name string) (gfx.PipelineHandle, bool) {
	return e.Pipelines.Lookup(name)
}

// Window abstraction.
type Window interface {
	PollEvents()
	ShouldClose() bool
	RequestClose()
	FramebufferSize() (int, int)
	CursorPos() (float64, float64)
	SetTitle(title string)
	SetEventCallback(cb func(Event))
	Destroy()
}

// Graphics is a device context able to run frames and build pipelines.
type Graphics interface {
	gfx.Device
	gfx.PipelineBuilder
	// WaitIdle blocks until the GPU finished all submitted work.
	WaitIdle() error
	Destroy()
}

// Event model (can expand over time).
type Event interface{ isEvent() }

type EventCloseRequested struct{}

func (EventCloseRequested) isEvent() {}

type EventResize struct{ W, H int }

func (EventResize) isEvent() {}

type EventKey struct {
	Key  Key
	Down bool
	Mods Mod
}

func (EventKey) isEvent() {}

type EventMouseMove struct{ X, Y float64 }

func (EventMouseMove) isEvent() {}

type EventScroll struct{ Xoff, Yoff float64 }

func (EventScroll) isEvent() {}

// Key/mod enums (subset; add as needed).
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeySpace
	KeyW
	KeyA
	KeyS
	KeyD
	KeyP
	KeyQ
)

type Mod int

const (
	ModNone  Mod = 0
	ModShift Mod = 1 << 0
	ModCtrl  Mod = 1 << 1
	ModAlt   Mod = 1 << 2
	ModSuper Mod = 1 << 3
)
