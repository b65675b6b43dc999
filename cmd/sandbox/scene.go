package main

import (
	"fmt"
	"log/slog"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/hubastard/grove-vk/engine/colors"
	"github.com/hubastard/grove-vk/engine/core"
	"github.com/hubastard/grove-vk/engine/gfx"
	"github.com/hubastard/grove-vk/engine/gfx/renderer2d"
	"github.com/hubastard/grove-vk/engine/profiler"
)

const spin = math32.Pi / 4 // rad/s

// cursorSquare is the size of the additive square that follows the cursor.
var cursorSquare = mgl32.Vec2{720, 720}

// SceneLayer draws four rotating triangles and a square under the cursor.
type SceneLayer struct {
	alpha, additive gfx.PipelineHandle
	angle           float32
}

func (l *SceneLayer) OnAttach(e *core.Engine) {
	var ok bool
	if l.alpha, ok = e.Pipeline("alpha"); !ok {
		slog.Warn("scene: no alpha pipeline configured")
	}
	if l.additive, ok = e.Pipeline("additive"); !ok {
		slog.Warn("scene: no additive pipeline configured, using alpha")
		l.additive = l.alpha
	}
}

func (l *SceneLayer) OnDetach(e *core.Engine) {}

func (l *SceneLayer) OnUpdate(e *core.Engine, dt float64) { l.advance(float32(dt)) }

// advance turns the scene by spin*dt, keeping the angle in [0, 2π).
func (l *SceneLayer) advance(dt float32) {
	l.angle += spin * dt
	if l.angle >= 2*math32.Pi {
		l.angle = math32.Mod(l.angle, 2*math32.Pi)
	}
}

func (l *SceneLayer) OnRender(e *core.Engine, alpha float64) error {
	end := profiler.Start("SceneLayer.OnRender")
	defer end()

	x, y := e.Input.Mouse()
	return l.draw(e.R2D, e.Frame(), mgl32.Vec2{float32(x), float32(y)})
}

func (l *SceneLayer) draw(r *renderer2d.Renderer, tok gfx.FrameToken, cursor mgl32.Vec2) error {
	steps := []func() error{
		func() error {
			return r.RenderTriangleUniform(tok, l.alpha,
				mgl32.Vec2{500, 0}, mgl32.Vec2{10, 100}, mgl32.Vec2{510, 80},
				colors.White, l.angle, nil)
		},
		func() error {
			return r.RenderTriangle(tok, l.alpha,
				mgl32.Vec2{500, 300}, mgl32.Vec2{400, 450}, mgl32.Vec2{575, 400},
				colors.Magenta, colors.Cyan, colors.Yellow, l.angle)
		},
		func() error {
			return r.RenderTriangleUniform(tok, l.alpha,
				mgl32.Vec2{510, 300}, mgl32.Vec2{600, 600}, mgl32.Vec2{550, 400},
				colors.Blue, l.angle, nil)
		},
		func() error {
			return r.RenderTriangleUniform(tok, l.additive,
				mgl32.Vec2{550, 300}, mgl32.Vec2{650, 600}, mgl32.Vec2{580, 350},
				colors.Red, l.angle, nil)
		},
		func() error {
			return r.RenderRectangle(tok, l.additive, cursor.Sub(cursorSquare.Mul(0.5)), cursorSquare, colors.Green, 0)
		},
	}
	for i, draw := range steps {
		if err := draw(); err != nil {
			return fmt.Errorf("scene draw %d: %w", i, err)
		}
	}
	return nil
}

func (l *SceneLayer) OnEvent(e *core.Engine, ev core.Event) bool {
	if k, ok := ev.(core.EventKey); ok && k.Down && k.Key == core.KeyP && k.Mods&core.ModCtrl != 0 {
		if path, err := profiler.Dump(); err == nil {
			slog.Info("speedscope dump", "path", path)
		} else {
			slog.Warn("profiler dump", "err", err)
		}
		return true
	}
	return false
}
