// Package audio provides playback for ambient mission music and
// one-shot effects.
package audio

import (
	"bytes"
	"fmt"
	"io"
	gomath "math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// DefaultSampleRate is the playback sample rate.
const DefaultSampleRate = beep.SampleRate(44100)

// Manager owns the speaker and the currently playing ambient track.
type Manager struct {
	mu sync.RWMutex

	initialized bool
	sampleRate  beep.SampleRate

	ambientStreamer beep.StreamSeekCloser
	ambientCtrl     *beep.Ctrl
	ambientVolume   *effects.Volume
	ambientPlaying  bool
	ambientName     string

	// Volume settings (0.0 to 1.0)
	masterVolume float64
	ambientGain  float64
	effectGain   float64

	// Mixer for concurrent one-shot effects
	effectMixer *beep.Mixer
}

// New creates an audio manager with default volumes.
func New() *Manager {
	return &Manager{
		masterVolume: 1.0,
		ambientGain:  0.7,
		effectGain:   1.0,
		effectMixer:  &beep.Mixer{},
	}
}

// Init initializes the speaker. Safe to call more than once.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	m.sampleRate = DefaultSampleRate
	if err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(m.effectMixer)

	m.initialized = true
	return nil
}

// Close stops playback and shuts the audio system down.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopAmbientLocked()
	speaker.Clear()
	m.initialized = false
}

// SetMasterVolume sets the master volume (0.0 to 1.0).
func (m *Manager) SetMasterVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterVolume = clamp(vol, 0, 1)
	m.applyAmbientVolume()
}

// SetAmbientVolume sets the ambient music volume (0.0 to 1.0).
func (m *Manager) SetAmbientVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ambientGain = clamp(vol, 0, 1)
	m.applyAmbientVolume()
}

// SetEffectVolume sets the effect volume (0.0 to 1.0).
func (m *Manager) SetEffectVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.effectGain = clamp(vol, 0, 1)
}

func (m *Manager) applyAmbientVolume() {
	if m.ambientVolume == nil {
		return
	}
	vol := m.masterVolume * m.ambientGain
	if vol <= 0 {
		m.ambientVolume.Silent = true
		return
	}
	m.ambientVolume.Silent = false
	m.ambientVolume.Volume = volumeToDb(vol)
}

// volumeToDb converts a 0-1 volume to the decibel scale beep's Volume
// effect expects with Base 2.
func volumeToDb(vol float64) float64 {
	if vol <= 0 {
		return -100
	}
	return 20 * gomath.Log10(vol)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PlayAmbient plays an ambient track from WAV data, replacing whatever
// is playing. When loop is true the track repeats indefinitely.
func (m *Manager) PlayAmbient(data []byte, name string, loop bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return fmt.Errorf("audio not initialized")
	}
	m.stopAmbientLocked()

	streamer, format, err := wav.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return fmt.Errorf("decode wav: %w", err)
	}

	var resampled beep.Streamer = streamer
	if format.SampleRate != m.sampleRate {
		resampled = beep.Resample(4, format.SampleRate, m.sampleRate, streamer)
	}

	var final beep.Streamer = resampled
	if loop {
		final = &loopStreamer{streamer: streamer, resampled: resampled}
	}

	m.ambientCtrl = &beep.Ctrl{Streamer: final}
	m.ambientVolume = &effects.Volume{
		Streamer: m.ambientCtrl,
		Base:     2,
	}
	m.applyAmbientVolume()

	m.ambientStreamer = streamer
	m.ambientName = name
	m.ambientPlaying = true

	speaker.Play(beep.Seq(m.ambientVolume, beep.Callback(func() {
		m.mu.Lock()
		m.ambientPlaying = false
		m.mu.Unlock()
	})))

	return nil
}

// StopAmbient stops the current ambient track.
func (m *Manager) StopAmbient() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopAmbientLocked()
}

func (m *Manager) stopAmbientLocked() {
	if m.ambientCtrl != nil {
		m.ambientCtrl.Paused = true
	}
	speaker.Clear()
	if m.initialized {
		speaker.Play(m.effectMixer)
	}
	m.ambientPlaying = false
	if m.ambientStreamer != nil {
		m.ambientStreamer.Close()
		m.ambientStreamer = nil
	}
	m.ambientCtrl = nil
	m.ambientVolume = nil
	m.ambientName = ""
}

// Pause pauses the ambient track.
func (m *Manager) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ambientCtrl != nil {
		m.ambientCtrl.Paused = true
		m.ambientPlaying = false
	}
}

// Resume resumes a paused ambient track.
func (m *Manager) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ambientCtrl != nil {
		m.ambientCtrl.Paused = false
		m.ambientPlaying = true
	}
}

// IsPlaying reports whether an ambient track is playing.
func (m *Manager) IsPlaying() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ambientPlaying
}

// CurrentTrack returns the name of the playing ambient track.
func (m *Manager) CurrentTrack() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ambientName
}

// PlayEffect plays a one-shot effect from WAV data, mixed over
// whatever else is playing.
func (m *Manager) PlayEffect(data []byte) error {
	m.mu.RLock()
	initialized := m.initialized
	vol := m.masterVolume * m.effectGain
	m.mu.RUnlock()

	if !initialized {
		return fmt.Errorf("audio not initialized")
	}

	streamer, format, err := wav.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return fmt.Errorf("decode wav: %w", err)
	}

	var resampled beep.Streamer = streamer
	if format.SampleRate != m.sampleRate {
		resampled = beep.Resample(4, format.SampleRate, m.sampleRate, streamer)
	}

	m.effectMixer.Add(&effects.Volume{
		Streamer: resampled,
		Base:     2,
		Volume:   volumeToDb(vol),
		Silent:   vol <= 0,
	})
	return nil
}

// loopStreamer restarts its source whenever it runs dry.
type loopStreamer struct {
	streamer  beep.StreamSeekCloser
	resampled beep.Streamer
}

func (l *loopStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	filled := 0
	for filled < len(samples) {
		n, ok := l.resampled.Stream(samples[filled:])
		filled += n
		if !ok {
			if err := l.streamer.Seek(0); err != nil {
				return filled, false
			}
		}
	}
	return filled, true
}

func (l *loopStreamer) Err() error {
	return l.streamer.Err()
}
