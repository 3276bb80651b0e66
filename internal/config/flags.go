package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagAsset     = flag.String("asset", "", "glTF/GLB model to load")
	flagAnimation = flag.String("anim", "", "Animation name or id")
	flagOutput    = flag.String("out", "", "Preview output (.webp or .tga)")
	flagFrames    = flag.Int("frames", 0, "Number of frames to play")
	flagSize      = flag.Int("size", 0, "Preview size in pixels")
	flagInstances = flag.Int("crowd", 0, "Animate this many extra instances")
	flagNoSort    = flag.Bool("no-sort", false, "Disable submesh sorting")
	flagOnce      = flag.Bool("once", false, "Play the animation once instead of looping")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagAsset != "" {
		cfg.Asset.Path = *flagAsset
	}
	if *flagAnimation != "" {
		cfg.Asset.Animation = *flagAnimation
	}
	if *flagOutput != "" {
		cfg.Preview.Output = *flagOutput
	}
	if *flagFrames > 0 {
		cfg.Preview.Frames = *flagFrames
	}
	if *flagSize > 0 {
		cfg.Preview.Size = *flagSize
	}
	if *flagInstances > 0 {
		cfg.Crowd.Instances = *flagInstances
	}
	if *flagNoSort {
		cfg.Playback.SortSubmeshes = false
	}
	if *flagOnce {
		cfg.Playback.Loop = false
	}
}
