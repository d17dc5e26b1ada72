package screens

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/orialis/voidreach/internal/logger"
	"github.com/orialis/voidreach/internal/resources"
)

// LoadingScreen waits for every requested graphics resource to settle
// before handing off to the next screen.
type LoadingScreen struct {
	manager   *Manager
	resources *resources.Manager
	next      Screen

	allReady atomic.Bool

	status   string
	progress float32 // 0.0 to 1.0

	startTime time.Time
}

// NewLoadingScreen creates a loading screen that transitions to next
// once every resource requested from res has settled.
func NewLoadingScreen(res *resources.Manager, manager *Manager, next Screen) *LoadingScreen {
	return &LoadingScreen{
		manager:   manager,
		resources: res,
		next:      next,
		status:    "Loading resources...",
	}
}

// Enter is called when entering this screen.
func (s *LoadingScreen) Enter() error {
	s.startTime = time.Now()
	s.progress = 0

	logger.Info("entering loading screen")

	// The continuation may fire on a fetch goroutine; the transition
	// itself happens on the frame loop in Update.
	s.resources.ExecuteWhenReady(func() {
		s.allReady.Store(true)
	})
	return nil
}

// Exit is called when leaving this screen.
func (s *LoadingScreen) Exit() error {
	logger.Info("resources loaded", zap.Duration("took", time.Since(s.startTime)))
	return nil
}

// Update is called every frame.
func (s *LoadingScreen) Update(dt float64) error {
	done, total := s.resources.Progress()
	if total > 0 {
		s.progress = float32(done) / float32(total)
	}

	if s.allReady.Load() {
		s.progress = 1.0
		s.manager.Change(s.next)
	}
	return nil
}

// Render is called every frame to draw the screen.
func (s *LoadingScreen) Render() error {
	// Drawing is handled by the active renderer.
	return nil
}

// HandleInput processes input events.
func (s *LoadingScreen) HandleInput(event interface{}) error {
	return nil
}

// Status returns the current status message.
func (s *LoadingScreen) Status() string {
	return s.status
}

// Progress returns the loading progress (0.0 to 1.0).
func (s *LoadingScreen) Progress() float32 {
	return s.progress
}
