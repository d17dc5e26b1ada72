package media

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/orialis/voidreach/internal/logger"
	"github.com/orialis/voidreach/pkg/pak"
)

func TestMain(m *testing.M) {
	logger.InitWithRotation("error", logger.RotationConfig{}, false)
	os.Exit(m.Run())
}

// buildStore sets up a store with one archive and a loose-file root.
func buildStore(t *testing.T, watch bool) *Store {
	t.Helper()
	dir := t.TempDir()

	archivePath := filepath.Join(dir, "base.vpak")
	w, err := pak.NewWriter(archivePath)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Add("shaders/hull.vert", []byte("void main() {}")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := w.Add("textures/hull_diffuse.png", encodePNG(t, 4, 4)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	root := filepath.Join(dir, "assets")
	if err := os.MkdirAll(filepath.Join(root, "missions"), 0o755); err != nil {
		t.Fatal(err)
	}
	loose := filepath.Join(root, "missions", "patrol.yaml")
	if err := os.WriteFile(loose, []byte("name: patrol"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewStore(Config{
		Root:     root,
		Archives: []string{archivePath},
		Watch:    watch,
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestReadFromArchive(t *testing.T) {
	s := buildStore(t, false)

	text, err := s.ReadText(Shaders, "hull.vert")
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	if text != "void main() {}" {
		t.Errorf("got %q", text)
	}
}

func TestReadLooseFile(t *testing.T) {
	s := buildStore(t, false)

	text, err := s.ReadText(Missions, "patrol.yaml")
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	if text != "name: patrol" {
		t.Errorf("got %q", text)
	}
}

func TestReadMissing(t *testing.T) {
	s := buildStore(t, false)

	if _, err := s.ReadText(Shaders, "nope.vert"); err == nil {
		t.Error("expected error for missing asset")
	}
}

func TestCacheHit(t *testing.T) {
	s := buildStore(t, false)

	if _, err := s.ReadText(Shaders, "hull.vert"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ReadText(Shaders, "hull.vert"); err != nil {
		t.Fatal(err)
	}

	hits, _ := s.Stats()
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
}

func TestFetchText(t *testing.T) {
	s := buildStore(t, false)

	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	s.FetchText(Shaders, "hull.vert", func(text string, err error) {
		ch <- result{text, err}
	})

	select {
	case r := <-ch:
		if r.err != nil {
			t.Fatalf("FetchText: %v", r.err)
		}
		if r.text != "void main() {}" {
			t.Errorf("got %q", r.text)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("callback never fired")
	}
}

func TestFetchImage(t *testing.T) {
	s := buildStore(t, false)

	type result struct {
		img image.Image
		err error
	}
	ch := make(chan result, 1)
	s.FetchImage(Textures, "hull_diffuse.png", func(img image.Image, err error) {
		ch <- result{img, err}
	})

	select {
	case r := <-ch:
		if r.err != nil {
			t.Fatalf("FetchImage: %v", r.err)
		}
		if b := r.img.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
			t.Errorf("bounds = %v", b)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("callback never fired")
	}
}

func TestFetchImageMissing(t *testing.T) {
	s := buildStore(t, false)

	ch := make(chan error, 1)
	s.FetchImage(Textures, "ghost.png", func(img image.Image, err error) {
		ch <- err
	})

	select {
	case err := <-ch:
		if err == nil {
			t.Error("expected error for missing image")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("callback never fired")
	}
}

func TestDecodeTGA(t *testing.T) {
	// 2x2 uncompressed 24bpp, bottom-to-top. Rows in file order:
	// bottom row red, top row blue (BGR byte order).
	data := []byte{
		0, 0, 2, // no ID, no color map, type 2
		0, 0, 0, 0, 0, // color map spec
		0, 0, 0, 0, // origin
		2, 0, 2, 0, // 2x2
		24, 0, // bpp, descriptor
		0, 0, 255, 0, 0, 255, // bottom row: red, red
		255, 0, 0, 255, 0, 0, // top row: blue, blue
	}

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("bounds = %v", b)
	}

	r, _, b, a := img.At(0, 0).RGBA()
	if r>>8 != 0 || b>>8 != 255 || a>>8 != 255 {
		t.Errorf("top-left = %v, want blue", img.At(0, 0))
	}
	r, _, b, _ = img.At(0, 1).RGBA()
	if r>>8 != 255 || b>>8 != 0 {
		t.Errorf("bottom-left = %v, want red", img.At(0, 1))
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"too short", []byte{0, 0, 2}},
		{"color mapped", []byte{0, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0, 24, 0}},
		{"grayscale", []byte{0, 0, 3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0, 8, 0}},
		{"bad depth", []byte{0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0, 16, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTGA(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWatcherInvalidates(t *testing.T) {
	s := buildStore(t, true)
	if s.watcher == nil {
		t.Skip("watcher unavailable on this platform")
	}

	if _, err := s.ReadText(Missions, "patrol.yaml"); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(s.root, "missions", "patrol.yaml")
	if err := os.WriteFile(path, []byte("name: patrol-v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		text, err := s.ReadText(Missions, "patrol.yaml")
		if err != nil {
			t.Fatal(err)
		}
		if text == "name: patrol-v2" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("cache was never invalidated after file change")
}
