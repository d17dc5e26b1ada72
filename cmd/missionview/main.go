// Package main is the mission preview tool: it loads a mission's
// graphics resources through the resource manager, waits for them to
// settle and renders the ships in an orbiting camera.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/orialis/voidreach/internal/config"
	"github.com/orialis/voidreach/internal/engine/audio"
	"github.com/orialis/voidreach/internal/engine/renderer"
	"github.com/orialis/voidreach/internal/engine/window"
	"github.com/orialis/voidreach/internal/game/screens"
	"github.com/orialis/voidreach/internal/logger"
	"github.com/orialis/voidreach/internal/media"
	"github.com/orialis/voidreach/internal/resources"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	missionFile := "demo.yaml"
	if flag.NArg() > 0 {
		missionFile = flag.Arg(0)
	}

	if err := run(cfg, missionFile); err != nil {
		logger.Error("missionview failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, missionFile string) error {
	store, err := media.NewStore(media.Config{
		Root:     cfg.Assets.Root,
		Archives: cfg.Assets.Archives,
		Watch:    cfg.Assets.Watch,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	reg, err := resources.LoadRegistry(filepath.Join(cfg.Assets.Root, cfg.Assets.Registry))
	if err != nil {
		return err
	}
	manager := resources.NewManager(store)
	if err := manager.Populate(reg); err != nil {
		return err
	}

	missionText, err := store.ReadText(media.Missions, missionFile)
	if err != nil {
		return err
	}
	mission, err := ParseMission([]byte(missionText))
	if err != nil {
		return err
	}
	logger.Info("mission loaded",
		zap.String("mission", mission.Name), zap.Int("ships", len(mission.Ships)))

	if err := requestMission(cfg, manager, mission); err != nil {
		return err
	}

	if mission.Music != "" && cfg.Audio.Enabled {
		snd := audio.New()
		snd.SetMasterVolume(cfg.Audio.MasterVolume)
		snd.SetAmbientVolume(cfg.Audio.MusicVolume)
		snd.SetEffectVolume(cfg.Audio.EffectVolume)
		if err := playMissionMusic(snd, store, mission.Music); err != nil {
			logger.Warn("mission music unavailable",
				zap.String("track", mission.Music), zap.Error(err))
		} else {
			defer snd.Close()
		}
	}

	win, err := window.New(window.Config{
		Title:      "Voidreach - " + mission.Name,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	r, err := renderer.New(renderer.Config{
		Width:  cfg.Graphics.Width,
		Height: cfg.Graphics.Height,
	})
	if err != nil {
		return err
	}
	defer r.Close()

	sm := screens.NewManager()
	preview := NewPreviewScreen(cfg, mission, manager, r)
	sm.Change(screens.NewLoadingScreen(manager, sm, preview))

	return loop(win, r, sm, cfg.Graphics.FPSLimit)
}

// playMissionMusic starts the mission's ambient track on loop. Audio
// problems never stop the preview.
func playMissionMusic(snd *audio.Manager, store *media.Store, track string) error {
	data, err := store.ReadBytes(media.Music, track)
	if err != nil {
		return err
	}
	if err := snd.Init(); err != nil {
		return err
	}
	return snd.PlayAmbient(data, track, true)
}

// shipTier is the detail tier loaded and drawn for a ship: its mission
// LOD capped by config. Enter resolves with the same tier so the
// settled model is never asked to load more.
func shipTier(cfg *config.Config, ship Ship) int {
	return min(ship.LOD, cfg.Graphics.MaxLOD)
}

// textureParams restricts texture fetches to the preferred quality
// from config, nil when no preference is set.
func textureParams(cfg *config.Config) *resources.Params {
	if len(cfg.Graphics.TextureQualities) == 0 {
		return nil
	}
	return &resources.Params{Qualities: cfg.Graphics.TextureQualities[:1]}
}

// requestMission schedules every fetch the mission needs.
func requestMission(cfg *config.Config, manager *resources.Manager, mission *Mission) error {
	for _, ship := range mission.Ships {
		if _, err := manager.Model(ship.Model, resources.LOD(shipTier(cfg, ship))); err != nil {
			return err
		}
		if ship.Texture == "" {
			continue
		}
		if _, err := manager.Texture(ship.Texture, textureParams(cfg)); err != nil {
			return err
		}
	}
	if mission.Skybox != "" {
		if _, err := manager.Cubemap(mission.Skybox); err != nil {
			return err
		}
	}
	if mission.Shader != "" {
		if _, err := manager.Shader(mission.Shader); err != nil {
			return err
		}
	}
	return nil
}

func loop(win *window.Window, r *renderer.Renderer, sm *screens.Manager, fpsLimit int) error {
	var frameBudget time.Duration
	if fpsLimit > 0 {
		frameBudget = time.Second / time.Duration(fpsLimit)
	}

	last := time.Now()
	for {
		frameStart := time.Now()
		dt := frameStart.Sub(last).Seconds()
		last = frameStart

		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch ev := event.(type) {
			case *sdl.QuitEvent:
				return nil
			case *sdl.KeyboardEvent:
				if ev.Keysym.Sym == sdl.K_ESCAPE {
					return nil
				}
				if err := sm.HandleInput(event); err != nil {
					return err
				}
			case *sdl.WindowEvent:
				if ev.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
					r.Resize(win.DrawableSize())
				}
			default:
				if err := sm.HandleInput(event); err != nil {
					return err
				}
			}
		}

		if err := sm.Update(dt); err != nil {
			return err
		}
		r.Clear()
		if err := sm.Render(); err != nil {
			return err
		}
		win.SwapBuffers()

		if frameBudget > 0 {
			if elapsed := time.Since(frameStart); elapsed < frameBudget {
				time.Sleep(frameBudget - elapsed)
			}
		}
	}
}
