package resources

import (
	"errors"
	"image"
	"os"
	"sync"
	"testing"

	"github.com/orialis/voidreach/internal/logger"
	"github.com/orialis/voidreach/internal/media"
)

func TestMain(m *testing.M) {
	logger.InitWithRotation("error", logger.RotationConfig{}, false)
	os.Exit(m.Run())
}

// fakeFetcher records fetches and lets the test complete them by hand,
// in any order, so completion interleavings are fully deterministic.
type fakeFetcher struct {
	mu     sync.Mutex
	images map[string][]func(image.Image, error)
	texts  map[string][]func(string, error)
	issued map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		images: make(map[string][]func(image.Image, error)),
		texts:  make(map[string][]func(string, error)),
		issued: make(map[string]int),
	}
}

func key(category media.Category, name string) string {
	return string(category) + "/" + name
}

func (f *fakeFetcher) FetchImage(category media.Category, name string, done func(image.Image, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(category, name)
	f.images[k] = append(f.images[k], done)
	f.issued[k]++
}

func (f *fakeFetcher) FetchText(category media.Category, name string, done func(string, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(category, name)
	f.texts[k] = append(f.texts[k], done)
	f.issued[k]++
}

// fetchCount returns how many fetches have been issued for one file.
func (f *fakeFetcher) fetchCount(category media.Category, name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issued[key(category, name)]
}

// pending returns how many fetches are awaiting completion.
func (f *fakeFetcher) pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, cbs := range f.images {
		n += len(cbs)
	}
	for _, cbs := range f.texts {
		n += len(cbs)
	}
	return n
}

func (f *fakeFetcher) completeImage(t *testing.T, category media.Category, name string, err error) {
	t.Helper()
	k := key(category, name)
	f.mu.Lock()
	cbs := f.images[k]
	if len(cbs) == 0 {
		f.mu.Unlock()
		t.Fatalf("no pending image fetch for %s", k)
	}
	done := cbs[0]
	f.images[k] = cbs[1:]
	f.mu.Unlock()

	if err != nil {
		done(nil, err)
		return
	}
	done(image.NewRGBA(image.Rect(0, 0, 2, 2)), nil)
}

func (f *fakeFetcher) completeText(t *testing.T, category media.Category, name, text string, err error) {
	t.Helper()
	k := key(category, name)
	f.mu.Lock()
	cbs := f.texts[k]
	if len(cbs) == 0 {
		f.mu.Unlock()
		t.Fatalf("no pending text fetch for %s", k)
	}
	done := cbs[0]
	f.texts[k] = cbs[1:]
	f.mu.Unlock()

	done(text, err)
}

func TestExecuteWhenReadyImmediate(t *testing.T) {
	m := NewManager(newFakeFetcher())

	fired := false
	m.ExecuteWhenReady(func() { fired = true })
	if !fired {
		t.Error("continuation should run immediately with nothing outstanding")
	}
}

func TestExecuteWhenReadyWaitsForAll(t *testing.T) {
	ff := newFakeFetcher()
	m := NewManager(ff)
	m.AddShader(NewShader(ff, "hull", "hull.vert", "hull.frag", 0, nil, ""))
	m.AddTexture(NewTexture(ff, "plating", "plating_{type}_{quality}.png",
		[]string{"diffuse"}, []string{"high"}, true))

	if _, err := m.Shader("hull"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Texture("plating", nil); err != nil {
		t.Fatal(err)
	}

	fired := false
	m.ExecuteWhenReady(func() { fired = true })

	ff.completeText(t, media.Shaders, "hull.vert", "v", nil)
	ff.completeText(t, media.Shaders, "hull.frag", "f", nil)
	if fired {
		t.Fatal("continuation ran with the texture still loading")
	}

	ff.completeImage(t, media.Textures, "plating_diffuse_high.png", nil)
	if !fired {
		t.Error("continuation did not run after the last resource settled")
	}
}

func TestExecuteWhenReadyFiresOnFailure(t *testing.T) {
	ff := newFakeFetcher()
	m := NewManager(ff)
	m.AddShader(NewShader(ff, "hull", "hull.vert", "hull.frag", 0, nil, ""))

	s, err := m.Shader("hull")
	if err != nil {
		t.Fatal(err)
	}

	fired := false
	m.ExecuteWhenReady(func() { fired = true })

	ff.completeText(t, media.Shaders, "hull.vert", "v", nil)
	ff.completeText(t, media.Shaders, "hull.frag", "", errors.New("not found"))

	if !fired {
		t.Error("join must not deadlock on a failed resource")
	}
	if s.State() != Failed {
		t.Errorf("state = %s, want failed", s.State())
	}
	if _, err := s.ManagedShader(); err == nil {
		t.Error("ManagedShader should fail for a failed resource")
	}
}

func TestProgress(t *testing.T) {
	ff := newFakeFetcher()
	m := NewManager(ff)
	m.AddShader(NewShader(ff, "hull", "hull.vert", "hull.frag", 0, nil, ""))
	m.AddCubemap(NewCubemap(ff, "nebula", [6]string{"px", "nx", "py", "ny", "pz", "nz"}))

	if done, total := m.Progress(); done != 0 || total != 0 {
		t.Fatalf("untouched registry: done=%d total=%d", done, total)
	}

	if _, err := m.Shader("hull"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Cubemap("nebula"); err != nil {
		t.Fatal(err)
	}
	if done, total := m.Progress(); done != 0 || total != 2 {
		t.Fatalf("after requests: done=%d total=%d", done, total)
	}

	ff.completeText(t, media.Shaders, "hull.vert", "v", nil)
	ff.completeText(t, media.Shaders, "hull.frag", "f", nil)
	if done, total := m.Progress(); done != 1 || total != 2 {
		t.Fatalf("after shader settles: done=%d total=%d", done, total)
	}
}

func TestUnknownResource(t *testing.T) {
	m := NewManager(newFakeFetcher())
	if _, err := m.Texture("ghost", nil); err == nil {
		t.Error("expected error for unknown texture")
	}
	if _, err := m.Model("ghost", nil); err == nil {
		t.Error("expected error for unknown model")
	}
}
