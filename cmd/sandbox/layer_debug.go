package main

import (
	"log/slog"
	"time"

	"github.com/hubastard/grove-vk/engine/core"
	"github.com/hubastard/grove-vk/engine/gfx/renderer2d"
	"github.com/hubastard/grove-vk/engine/profiler"
)

// LayerDebug logs renderer, frame and runtime statistics once per second.
type LayerDebug struct {
	stats     renderer2d.Statistics
	frames    int
	lastFrame time.Time
	frameTime time.Duration
	since     time.Duration
	Interval  time.Duration
}

func (l *LayerDebug) OnAttach(e *core.Engine) {
	if l.Interval <= 0 {
		l.Interval = time.Second
	}
}

func (l *LayerDebug) OnDetach(e *core.Engine) {}

func (l *LayerDebug) OnUpdate(e *core.Engine, dt float64) {
	l.since += time.Duration(dt * float64(time.Second))
	if l.since < l.Interval {
		return
	}
	l.since = 0

	fs := e.Frames.Stats()
	rs := profiler.Runtime()
	slog.Debug("stats",
		"frame_ms", float64(l.frameTime.Microseconds())/1000,
		"fps", l.frames,
		"draw_calls", l.stats.DrawCalls,
		"triangles", l.stats.Triangles,
		"vertices", l.stats.TotalVertexCount(),
		"push_bytes", l.stats.PushBytes,
		"presented", fs.Presented,
		"timeouts", fs.Timeouts,
		"recreations", fs.Recreations,
		"skipped", e.SkippedFrames(),
		"heap_mb", float64(rs.HeapAlloc)/(1<<20),
		"goroutines", rs.Goroutines)
	l.frames = 0
}

// OnRender runs after the scene layer, so the renderer stats cover the
// whole frame.
func (l *LayerDebug) OnRender(e *core.Engine, alpha float64) error {
	now := time.Now()
	if !l.lastFrame.IsZero() {
		l.frameTime = now.Sub(l.lastFrame)
	}
	l.lastFrame = now
	l.frames++
	l.stats = e.R2D.Stats()
	return nil
}

func (l *LayerDebug) OnEvent(e *core.Engine, ev core.Event) bool { return false }
