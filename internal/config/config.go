// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Asset    AssetConfig    `yaml:"asset"`
	Playback PlaybackConfig `yaml:"playback"`
	Camera   CameraConfig   `yaml:"camera"`
	Preview  PreviewConfig  `yaml:"preview"`
	Crowd    CrowdConfig    `yaml:"crowd"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// AssetConfig selects the model to load.
type AssetConfig struct {
	Path      string  `yaml:"path"`      // glTF/GLB file; empty uses the built-in sample
	Animation string  `yaml:"animation"` // name ("Walk") or numeric id
	Scale     float32 `yaml:"scale"`
}

// PlaybackConfig holds per-instance playback settings.
type PlaybackConfig struct {
	Speed         float32       `yaml:"speed"` // frames per second, negative plays backwards
	Loop          bool          `yaml:"loop"`
	Transition    time.Duration `yaml:"transition"`
	SortSubmeshes bool          `yaml:"sort_submeshes"`
	AllGeosets    bool          `yaml:"all_geosets"`
	Skin          int           `yaml:"skin"`
}

// CameraConfig places the viewer.
type CameraConfig struct {
	Position [3]float32 `yaml:"position,flow"`
	Target   [3]float32 `yaml:"target,flow"`
	FOV      float32    `yaml:"fov"` // vertical, degrees
}

// PreviewConfig controls the rendered output.
type PreviewConfig struct {
	Output      string        `yaml:"output"` // .webp or .tga; empty disables
	Size        int           `yaml:"size"`
	Supersample int           `yaml:"supersample"`
	Frames      int           `yaml:"frames"`
	Step        time.Duration `yaml:"step"`
}

// CrowdConfig animates many instances of one mesh in parallel.
type CrowdConfig struct {
	Instances int `yaml:"instances"`
	Workers   int `yaml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Asset: AssetConfig{
			Animation: "Stand",
			Scale:     1,
		},
		Playback: PlaybackConfig{
			Speed:         25,
			Loop:          true,
			Transition:    150 * time.Millisecond,
			SortSubmeshes: true,
		},
		Camera: CameraConfig{
			Position: [3]float32{0, 1, -4},
			Target:   [3]float32{0, 1, 0},
			FOV:      60,
		},
		Preview: PreviewConfig{
			Output:      "preview.webp",
			Size:        256,
			Supersample: 2,
			Frames:      50,
			Step:        40 * time.Millisecond,
		},
		Crowd: CrowdConfig{
			Instances: 0,
			Workers:   4,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
