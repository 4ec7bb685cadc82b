package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Window.Backend != BackendSDL {
		t.Errorf("expected backend sdl, got %s", cfg.Window.Backend)
	}
	if cfg.Render.Fit != "contain" {
		t.Errorf("expected fit contain, got %s", cfg.Render.Fit)
	}
	if cfg.Render.Frames != 0 {
		t.Errorf("expected unlimited frames, got %d", cfg.Render.Frames)
	}
	if cfg.Model.Scale != 1 {
		t.Errorf("expected scale 1, got %v", cfg.Model.Scale)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  fps: 144
  backend: glfw

render:
  fit: cover
  clear_color: [0.1, 0.2, 0.3, 1]
  paced: true
  frames: 600

model:
  origin: [0.25, -0.5]
  scale: 1.5
  tracking: false

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen || cfg.Window.VSync {
		t.Errorf("fullscreen/vsync: got %v/%v", cfg.Window.Fullscreen, cfg.Window.VSync)
	}
	if cfg.Window.FPS != 144 {
		t.Errorf("expected fps 144, got %d", cfg.Window.FPS)
	}
	if cfg.Window.Backend != BackendGLFW {
		t.Errorf("expected backend glfw, got %s", cfg.Window.Backend)
	}
	if cfg.Window.Title != "Marionette" {
		t.Errorf("title should keep its default, got %q", cfg.Window.Title)
	}
	if cfg.Render.Fit != "cover" || !cfg.Render.Paced || cfg.Render.Frames != 600 {
		t.Errorf("render: got %+v", cfg.Render)
	}
	if cfg.Render.ClearColor != [4]float32{0.1, 0.2, 0.3, 1} {
		t.Errorf("clear color: got %v", cfg.Render.ClearColor)
	}
	if cfg.Model.Origin != [2]float32{0.25, -0.5} || cfg.Model.Scale != 1.5 || cfg.Model.Tracking {
		t.Errorf("model: got %+v", cfg.Model)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("logging: got %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }, "window size"},
		{"negative fps", func(c *Config) { c.Window.FPS = -1 }, "fps"},
		{"unknown backend", func(c *Config) { c.Window.Backend = "vulkan" }, "backend"},
		{"unknown fit", func(c *Config) { c.Render.Fit = "stretch" }, "fit"},
		{"zero scale", func(c *Config) { c.Model.Scale = 0 }, "scale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Window.Height = -5
	cfg.Window.Backend = "x"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "window size") || !strings.Contains(err.Error(), "backend") {
		t.Errorf("expected both problems, got %q", err)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile("marionette.yaml", []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find marionette.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "fps flag zero means display rate",
			setup: func() { *flagFPS = 0 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.FPS != 0 {
					t.Errorf("expected fps 0, got %d", cfg.Window.FPS)
				}
			},
			teardown: func() { *flagFPS = -1 },
		},
		{
			name: "headless overrides backend",
			setup: func() {
				*flagBackend = BackendGLFW
				*flagHeadless = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Headless() {
					t.Errorf("expected headless backend, got %s", cfg.Window.Backend)
				}
			},
			teardown: func() {
				*flagBackend = ""
				*flagHeadless = false
			},
		},
		{
			name: "frames and fit",
			setup: func() {
				*flagFrames = 120
				*flagFit = "cover"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Render.Frames != 120 || cfg.Render.Fit != "cover" {
					t.Errorf("render: got %+v", cfg.Render)
				}
			},
			teardown: func() {
				*flagFrames = 0
				*flagFit = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("render:\n  fit: stretch\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected invalid fit to fail Load")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Window.Backend = BackendHeadless
	cfg.Model.Origin = [2]float32{0.5, 0.5}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Window.Backend != BackendHeadless || loaded.Model.Origin != cfg.Model.Origin {
		t.Errorf("round trip: got %+v", loaded)
	}
}
