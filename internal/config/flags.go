package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagWidth    = flag.Int("width", 0, "Window width")
	flagHeight   = flag.Int("height", 0, "Window height")
	flagFPS      = flag.Int("fps", -1, "Frame rate (0 = display refresh rate)")
	flagBackend  = flag.String("backend", "", "Window backend: sdl, glfw or headless")
	flagHeadless = flag.Bool("headless", false, "Render without a window")
	flagFrames   = flag.Uint64("frames", 0, "Stop after this many frames")
	flagFit      = flag.String("fit", "", "Viewport fit: contain or cover")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagFPS >= 0 {
		cfg.Window.FPS = *flagFPS
	}
	if *flagBackend != "" {
		cfg.Window.Backend = *flagBackend
	}
	if *flagHeadless {
		cfg.Window.Backend = BackendHeadless
	}
	if *flagFrames > 0 {
		cfg.Render.Frames = *flagFrames
	}
	if *flagFit != "" {
		cfg.Render.Fit = *flagFit
	}
}
