// Command sandbox opens a window and draws the rotating-triangle demo scene
// through the Vulkan backend.
//
// The pipelines load precompiled SPIR-V. Only the GLSL sources are kept in
// assets/shaders; compile them once with glslc (from the Vulkan SDK) before
// the first run:
//
//	go generate ./cmd/sandbox
//	go run ./cmd/sandbox -config cmd/sandbox/sandbox.toml
package main

//go:generate glslc ../../assets/shaders/immediate.vert -o ../../assets/shaders/immediate.vert.spv
//go:generate glslc ../../assets/shaders/color.frag -o ../../assets/shaders/color.frag.spv

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hubastard/grove-vk/engine/core"
	vkbackend "github.com/hubastard/grove-vk/engine/gfx/vk"
	"github.com/hubastard/grove-vk/engine/platform"
	"github.com/hubastard/grove-vk/engine/profiler"
)

type App struct {
	scene      *SceneLayer
	debugLayer *LayerDebug
}

func (a *App) OnStart(e *core.Engine) error {
	profiler.Init(1 << 16)

	a.scene = &SceneLayer{}
	e.PushLayer(a.scene)

	a.debugLayer = &LayerDebug{}
	e.PushLayer(a.debugLayer)
	return nil
}

func (a *App) OnUpdate(e *core.Engine, dt float64) {
	if e.Input.IsKeyDown(core.KeyEscape) {
		e.Window.RequestClose()
	}
}

func (a *App) OnRender(e *core.Engine, alpha float64) error { return nil }

func (a *App) OnEvent(e *core.Engine, ev core.Event) {
	if _, ok := ev.(core.EventCloseRequested); ok {
		e.Window.RequestClose()
	}
}

func (a *App) OnShutdown(e *core.Engine) {}

var errNotVulkanWindow = errors.New("window cannot host a vulkan surface")

// checkShaders reports every configured shader binary that is missing.
func checkShaders(cfg core.Config) error {
	var errs []error
	seen := map[string]bool{}
	for _, p := range cfg.Pipelines {
		for _, name := range []string{p.VertexShader, p.FragmentShader} {
			path := cfg.ShaderPath(name)
			if seen[path] {
				continue
			}
			seen[path] = true
			if _, err := os.Stat(path); err != nil {
				errs = append(errs, fmt.Errorf("shader %s: %w (run go generate ./cmd/sandbox)", path, err))
			}
		}
	}
	return errors.Join(errs...)
}

func main() {
	configPath := flag.String("config", "", "TOML config file (defaults built in)")
	debug := flag.Bool("debug", false, "debug logging and validation layers")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := core.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = core.LoadConfig(*configPath); err != nil {
			slog.Error("load config", "err", err)
			os.Exit(1)
		}
	}
	cfg.Validation = cfg.Validation || *debug
	if err := checkShaders(cfg); err != nil {
		slog.Error("missing shaders", "err", err)
		os.Exit(1)
	}

	newWindow := func(cfg core.Config) (core.Window, error) {
		return platform.NewGLFWWindow(cfg, nil)
	}
	newGraphics := func(win core.Window, cfg core.Config) (core.Graphics, error) {
		vw, ok := win.(vkbackend.Window)
		if !ok {
			return nil, errNotVulkanWindow
		}
		return vkbackend.New(vw, vkbackend.Options{
			Title:      cfg.Title,
			VSync:      cfg.VSync,
			Validation: cfg.Validation,
			Logger:     slog.Default().With("component", "vulkan"),
		})
	}

	if err := core.Run(&App{}, cfg, newWindow, newGraphics); err != nil {
		slog.Error("engine stopped", "err", err)
		os.Exit(1)
	}
}
