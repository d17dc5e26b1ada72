package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}
	if len(cfg.Graphics.TextureQualities) != 3 || cfg.Graphics.TextureQualities[0] != "high" {
		t.Errorf("unexpected default texture qualities: %v", cfg.Graphics.TextureQualities)
	}
	if cfg.Graphics.MaxLOD != 4 {
		t.Errorf("expected max_lod 4, got %d", cfg.Graphics.MaxLOD)
	}
	if !cfg.Graphics.ShaderFallback {
		t.Error("expected shader_fallback to be true by default")
	}

	if cfg.Assets.Root != "assets" {
		t.Errorf("expected asset root 'assets', got %s", cfg.Assets.Root)
	}
	if cfg.Assets.Registry != "resources.yaml" {
		t.Errorf("expected registry 'resources.yaml', got %s", cfg.Assets.Registry)
	}
	if cfg.Assets.Watch {
		t.Error("expected watch to be false by default")
	}

	if !cfg.Audio.Enabled {
		t.Error("expected audio to be enabled by default")
	}
	if cfg.Audio.MusicVolume != 0.7 {
		t.Errorf("expected music volume 0.7, got %v", cfg.Audio.MusicVolume)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  texture_qualities: [medium, low]
  max_lod: 2

assets:
  root: /srv/voidreach/assets
  archives: [base.vpk, missions.vpk]
  watch: true

logging:
  level: debug
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync false")
	}
	if len(cfg.Graphics.TextureQualities) != 2 || cfg.Graphics.TextureQualities[0] != "medium" {
		t.Errorf("unexpected texture qualities: %v", cfg.Graphics.TextureQualities)
	}
	if cfg.Graphics.MaxLOD != 2 {
		t.Errorf("expected max_lod 2, got %d", cfg.Graphics.MaxLOD)
	}
	if cfg.Assets.Root != "/srv/voidreach/assets" {
		t.Errorf("unexpected asset root: %s", cfg.Assets.Root)
	}
	if len(cfg.Assets.Archives) != 2 || cfg.Assets.Archives[1] != "missions.vpk" {
		t.Errorf("unexpected archives: %v", cfg.Assets.Archives)
	}
	if !cfg.Assets.Watch {
		t.Error("expected watch true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}

	// Fields absent from the file keep their defaults.
	if cfg.Assets.Registry != "resources.yaml" {
		t.Errorf("expected registry default to survive partial file, got %s", cfg.Assets.Registry)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidYAML := `
graphics:
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

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "assets flag",
			setup: func() { *flagAssets = "/data/assets" },
			verify: func(cfg *Config) {
				if cfg.Assets.Root != "/data/assets" {
					t.Errorf("expected asset root /data/assets, got %s", cfg.Assets.Root)
				}
			},
			teardown: func() { *flagAssets = "" },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "quality flag",
			setup: func() { *flagQuality = "low" },
			verify: func(cfg *Config) {
				if len(cfg.Graphics.TextureQualities) != 1 || cfg.Graphics.TextureQualities[0] != "low" {
					t.Errorf("expected single 'low' quality, got %v", cfg.Graphics.TextureQualities)
				}
			},
			teardown: func() { *flagQuality = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
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

	// Width comes from the flag (1920), not the file (1600).
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	// Height comes from the file since there is no flag override.
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := Default()
	cfg.Graphics.Width = 3440
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if loaded.Graphics.Width != 3440 {
		t.Errorf("expected width 3440 after roundtrip, got %d", loaded.Graphics.Width)
	}
}
