package core

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/hubastard/grove-vk/engine/colors"
	"github.com/hubastard/grove-vk/engine/gfx"
	"github.com/hubastard/grove-vk/engine/gfx/renderer2d"
)

// Duration reads Go duration strings ("50ms") from TOML.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config for the engine run.
type Config struct {
	Title        string                   `toml:"title"`
	Width        int                      `toml:"width"`
	Height       int                      `toml:"height"`
	VSync        bool                     `toml:"vsync"`
	ClearColor   colors.Color             `toml:"clear_color"`
	FrameTimeout Duration                 `toml:"frame_timeout"`
	Validation   bool                     `toml:"validation"`
	Icon         string                   `toml:"icon"`
	ShaderDir    string                   `toml:"shader_dir"`
	Pipelines    []gfx.PipelineDescriptor `toml:"pipeline"`
}

// DefaultConfig is a 1280x720 window with an alpha and an additive
// pipeline over the immediate shaders.
func DefaultConfig() Config {
	return Config{
		Title:        "vulkan test",
		Width:        1280,
		Height:       720,
		VSync:        true,
		ClearColor:   colors.Black,
		FrameTimeout: Duration(gfx.DefaultFrameTimeout),
		ShaderDir:    "assets/shaders",
		Pipelines: []gfx.PipelineDescriptor{
			{
				Name:             "alpha",
				VertexShader:     "immediate.vert.spv",
				FragmentShader:   "color.frag.spv",
				Blend:            gfx.BlendAlpha,
				PushConstantSize: renderer2d.PushBlockSize,
			},
			{
				Name:             "additive",
				VertexShader:     "immediate.vert.spv",
				FragmentShader:   "color.frag.spv",
				Blend:            gfx.BlendAdditive,
				PushConstantSize: renderer2d.PushBlockSize,
			},
		},
	}
}

// LoadConfig reads a TOML file over DefaultConfig. A file without any
// [[pipeline]] table keeps the default pipelines.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	defaults := cfg.Pipelines
	cfg.Pipelines = nil

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("config %d:%d: %w", row, col, err)
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if len(cfg.Pipelines) == 0 {
		cfg.Pipelines = defaults
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: window size %dx%d must be positive", c.Width, c.Height)
	}
	if c.FrameTimeout <= 0 {
		return fmt.Errorf("config: frame_timeout must be positive")
	}
	seen := map[string]bool{}
	for i, p := range c.Pipelines {
		if p.Name == "" {
			return fmt.Errorf("config: pipeline %d has no name", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("config: pipeline %q defined twice", p.Name)
		}
		seen[p.Name] = true
		if err := p.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

// ShaderPath resolves a shader file against ShaderDir.
func (c Config) ShaderPath(name string) string {
	if c.ShaderDir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.ShaderDir, name)
}
