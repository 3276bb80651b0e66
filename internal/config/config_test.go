package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Asset.Path != "" {
		t.Errorf("expected the built-in sample by default, got %s", cfg.Asset.Path)
	}
	if cfg.Asset.Animation != "Stand" {
		t.Errorf("expected animation Stand, got %s", cfg.Asset.Animation)
	}

	if cfg.Playback.Speed != 25 {
		t.Errorf("expected speed 25, got %f", cfg.Playback.Speed)
	}
	if !cfg.Playback.Loop {
		t.Error("expected looping by default")
	}
	if !cfg.Playback.SortSubmeshes {
		t.Error("expected submesh sorting by default")
	}
	if cfg.Playback.Transition != 150*time.Millisecond {
		t.Errorf("expected transition 150ms, got %v", cfg.Playback.Transition)
	}

	if cfg.Preview.Size != 256 || cfg.Preview.Supersample != 2 {
		t.Errorf("expected 256px x2 preview, got %dpx x%d", cfg.Preview.Size, cfg.Preview.Supersample)
	}
	if cfg.Crowd.Instances != 0 {
		t.Errorf("expected no crowd, got %d", cfg.Crowd.Instances)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
asset:
  path: "models/knight.glb"
  animation: "Walk"
  scale: 0.5

playback:
  speed: -12.5
  loop: false
  transition: 250ms
  sort_submeshes: false
  all_geosets: true
  skin: 1

camera:
  position: [1, 2, -6]
  target: [0, 1.5, 0]

preview:
  output: "out/knight.tga"
  frames: 10
  step: 20ms

crowd:
  instances: 64
  workers: 8

logging:
  level: "debug"
  log_file: "m2view.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Asset.Path != "models/knight.glb" || cfg.Asset.Animation != "Walk" || cfg.Asset.Scale != 0.5 {
		t.Errorf("asset: got %+v", cfg.Asset)
	}
	if cfg.Playback.Speed != -12.5 || cfg.Playback.Loop {
		t.Errorf("playback: got %+v", cfg.Playback)
	}
	if cfg.Playback.Transition != 250*time.Millisecond {
		t.Errorf("expected transition 250ms, got %v", cfg.Playback.Transition)
	}
	if cfg.Playback.SortSubmeshes || !cfg.Playback.AllGeosets || cfg.Playback.Skin != 1 {
		t.Errorf("playback flags: got %+v", cfg.Playback)
	}
	if cfg.Camera.Position != [3]float32{1, 2, -6} {
		t.Errorf("camera position: got %v", cfg.Camera.Position)
	}
	if cfg.Camera.FOV != 60 {
		t.Errorf("unset fov should keep its default, got %v", cfg.Camera.FOV)
	}
	if cfg.Preview.Output != "out/knight.tga" || cfg.Preview.Frames != 10 || cfg.Preview.Step != 20*time.Millisecond {
		t.Errorf("preview: got %+v", cfg.Preview)
	}
	if cfg.Preview.Size != 256 {
		t.Errorf("unset size should keep its default, got %d", cfg.Preview.Size)
	}
	if cfg.Crowd.Instances != 64 || cfg.Crowd.Workers != 8 {
		t.Errorf("crowd: got %+v", cfg.Crowd)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "m2view.log" {
		t.Errorf("logging: got %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
preview:
  size: not a number
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
		mutate func(*Config)
	}{
		{"zero size", func(c *Config) { c.Preview.Size = 0 }},
		{"no supersample", func(c *Config) { c.Preview.Supersample = 0 }},
		{"negative frames", func(c *Config) { c.Preview.Frames = -1 }},
		{"zero step", func(c *Config) { c.Preview.Step = 0 }},
		{"no workers", func(c *Config) { c.Crowd.Workers = 0 }},
		{"negative crowd", func(c *Config) { c.Crowd.Instances = -3 }},
		{"zero scale", func(c *Config) { c.Asset.Scale = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("got %v, want ErrInvalid", err)
			}
		})
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
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("preview:\n  size: 128\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
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
			name: "asset and animation flags",
			setup: func() {
				*flagAsset = "hero.glb"
				*flagAnimation = "Run"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Asset.Path != "hero.glb" || cfg.Asset.Animation != "Run" {
					t.Errorf("asset: got %+v", cfg.Asset)
				}
			},
			teardown: func() {
				*flagAsset = ""
				*flagAnimation = ""
			},
		},
		{
			name: "preview flags",
			setup: func() {
				*flagOutput = "a.tga"
				*flagFrames = 5
				*flagSize = 64
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Preview.Output != "a.tga" || cfg.Preview.Frames != 5 || cfg.Preview.Size != 64 {
					t.Errorf("preview: got %+v", cfg.Preview)
				}
			},
			teardown: func() {
				*flagOutput = ""
				*flagFrames = 0
				*flagSize = 0
			},
		},
		{
			name: "playback flags",
			setup: func() {
				*flagNoSort = true
				*flagOnce = true
				*flagInstances = 16
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Playback.SortSubmeshes || cfg.Playback.Loop {
					t.Errorf("playback: got %+v", cfg.Playback)
				}
				if cfg.Crowd.Instances != 16 {
					t.Errorf("expected 16 instances, got %d", cfg.Crowd.Instances)
				}
			},
			teardown: func() {
				*flagNoSort = false
				*flagOnce = false
				*flagInstances = 0
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
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
preview:
  size: 512
  frames: 20
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagSize = 128
	defer func() {
		*flagConfig = ""
		*flagSize = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Preview.Size != 128 {
		t.Errorf("expected size 128 from flag, got %d", cfg.Preview.Size)
	}
	if cfg.Preview.Frames != 20 {
		t.Errorf("expected frames 20 from file, got %d", cfg.Preview.Frames)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Asset.Path = "rig.glb"
	cfg.Playback.Transition = 80 * time.Millisecond
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	got := Default()
	if err := loadFromFile(got, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Asset.Path != "rig.glb" || got.Playback.Transition != 80*time.Millisecond {
		t.Errorf("round trip lost values: %+v %+v", got.Asset, got.Playback)
	}
}
