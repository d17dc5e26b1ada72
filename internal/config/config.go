// Package config handles client configuration loading and management.
package config

// Config holds all client settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Assets   AssetsConfig   `yaml:"assets"`
	Audio    AudioConfig    `yaml:"audio"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and asset-detail settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`

	// TextureQualities lists the quality variants to load, best first.
	TextureQualities []string `yaml:"texture_qualities"`
	// MaxLOD caps the model level of detail requested from the resource manager.
	MaxLOD int `yaml:"max_lod"`
	// ShaderFallback enables substituting a shader's declared fallback
	// when the primary variant is not supported.
	ShaderFallback bool `yaml:"shader_fallback"`
}

// AssetsConfig holds asset location settings.
type AssetsConfig struct {
	// Root is the base directory for loose asset files.
	Root string `yaml:"root"`
	// Archives lists pak archives mounted before loose files.
	Archives []string `yaml:"archives"`
	// Registry is the resource registry file, relative to Root.
	Registry string `yaml:"registry"`
	// Watch enables cache invalidation on file changes (dev mode).
	Watch bool `yaml:"watch"`
}

// AudioConfig holds audio settings.
type AudioConfig struct {
	Enabled      bool    `yaml:"enabled"`
	MasterVolume float64 `yaml:"master_volume"`
	MusicVolume  float64 `yaml:"music_volume"`
	EffectVolume float64 `yaml:"effect_volume"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:            1280,
			Height:           720,
			Fullscreen:       false,
			VSync:            true,
			FPSLimit:         0,
			TextureQualities: []string{"high", "medium", "low"},
			MaxLOD:           4,
			ShaderFallback:   true,
		},
		Assets: AssetsConfig{
			Root:     "assets",
			Registry: "resources.yaml",
			Watch:    false,
		},
		Audio: AudioConfig{
			Enabled:      true,
			MasterVolume: 0.8,
			MusicVolume:  0.7,
			EffectVolume: 0.8,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
