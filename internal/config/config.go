// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/marionette/internal/host"
)

// Window backends.
const (
	BackendSDL      = "sdl"
	BackendGLFW     = "glfw"
	BackendHeadless = "headless"
)

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Render  RenderConfig  `yaml:"render"`
	Model   ModelConfig   `yaml:"model"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPS        int    `yaml:"fps"` // 0 uses the display refresh rate
	Backend    string `yaml:"backend"`
}

// RenderConfig holds frame loop settings.
type RenderConfig struct {
	Fit        string     `yaml:"fit"`
	ClearColor [4]float32 `yaml:"clear_color"`
	// Paced sleeps between frames instead of relying on vsync.
	Paced bool `yaml:"paced"`
	// Frames stops the loop after this many ticks. Zero runs until quit.
	Frames uint64 `yaml:"frames"`
}

// ModelConfig holds how the model is placed and driven.
type ModelConfig struct {
	Origin   [2]float32 `yaml:"origin"`
	Scale    float32    `yaml:"scale"`
	Tracking bool       `yaml:"tracking"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:   "Marionette",
			Width:   1280,
			Height:  720,
			VSync:   true,
			Backend: BackendSDL,
		},
		Render: RenderConfig{
			Fit:        host.FitContain.String(),
			ClearColor: [4]float32{0, 0, 0, 0},
		},
		Model: ModelConfig{
			Scale:    1,
			Tracking: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports every setting that cannot be used.
func (c *Config) Validate() error {
	var err error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.FPS < 0 {
		err = multierr.Append(err, fmt.Errorf("fps %d must not be negative", c.Window.FPS))
	}
	switch c.Window.Backend {
	case BackendSDL, BackendGLFW, BackendHeadless:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown backend %q", c.Window.Backend))
	}
	if _, ferr := host.ParseFit(c.Render.Fit); ferr != nil {
		err = multierr.Append(err, ferr)
	}
	if c.Model.Scale <= 0 {
		err = multierr.Append(err, fmt.Errorf("model scale %v must be positive", c.Model.Scale))
	}
	return err
}

// Headless reports whether the configured backend has no window.
func (c *Config) Headless() bool {
	return c.Window.Backend == BackendHeadless
}
