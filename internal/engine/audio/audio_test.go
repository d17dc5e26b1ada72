package audio

import (
	"math"
	"testing"
)

func TestVolumeToDb(t *testing.T) {
	tests := []struct {
		vol  float64
		want float64
	}{
		{1.0, 0},
		{0.5, 20 * math.Log10(0.5)},
		{0.1, -20},
		{0, -100},
		{-1, -100},
	}
	for _, tt := range tests {
		got := volumeToDb(tt.vol)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("volumeToDb(%v) = %v, want %v", tt.vol, got, tt.want)
		}
	}
}

func TestVolumeClamping(t *testing.T) {
	m := New()

	m.SetMasterVolume(1.5)
	if m.masterVolume != 1.0 {
		t.Errorf("master volume = %v, want 1.0", m.masterVolume)
	}

	m.SetAmbientVolume(-0.5)
	if m.ambientGain != 0 {
		t.Errorf("ambient volume = %v, want 0", m.ambientGain)
	}

	m.SetEffectVolume(0.3)
	if m.effectGain != 0.3 {
		t.Errorf("effect volume = %v, want 0.3", m.effectGain)
	}
}

func TestPlayRequiresInit(t *testing.T) {
	m := New()

	if err := m.PlayAmbient([]byte("not wav"), "test", true); err == nil {
		t.Error("PlayAmbient on uninitialized manager should fail")
	}
	if err := m.PlayEffect([]byte("not wav")); err == nil {
		t.Error("PlayEffect on uninitialized manager should fail")
	}
}

func TestIdleState(t *testing.T) {
	m := New()

	if m.IsPlaying() {
		t.Error("new manager should not be playing")
	}
	if m.CurrentTrack() != "" {
		t.Errorf("current track = %q, want empty", m.CurrentTrack())
	}

	m.StopAmbient()
	m.Pause()
	m.Resume()
	if m.IsPlaying() {
		t.Error("manager with no track should not report playing after resume")
	}
}
