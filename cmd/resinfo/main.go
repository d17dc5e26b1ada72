// resinfo is an offline inspector for the resource registry: it
// prints every declared resource and verifies that the files it names
// exist, either loose under the asset root or in a mounted archive.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/orialis/voidreach/internal/config"
	"github.com/orialis/voidreach/internal/resources"
	"github.com/orialis/voidreach/pkg/pak"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	reg, err := resources.LoadRegistry(filepath.Join(cfg.Assets.Root, cfg.Assets.Registry))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Registry error: %v\n", err)
		os.Exit(1)
	}

	checker, err := newChecker(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer checker.close()

	missing := report(reg, checker)
	if missing > 0 {
		fmt.Fprintf(os.Stderr, "\n%d missing files\n", missing)
		os.Exit(1)
	}
}

// checker resolves declared files the way the media store does:
// archives first, loose files second.
type checker struct {
	root     string
	archives []*pak.Archive
}

func newChecker(cfg *config.Config) (*checker, error) {
	c := &checker{root: cfg.Assets.Root}
	for _, path := range cfg.Assets.Archives {
		a, err := pak.Open(path)
		if err != nil {
			c.close()
			return nil, fmt.Errorf("mounting archive %s: %w", path, err)
		}
		c.archives = append(c.archives, a)
	}
	return c, nil
}

func (c *checker) close() {
	for _, a := range c.archives {
		a.Close()
	}
}

func (c *checker) exists(category, name string) bool {
	key := category + "/" + name
	for _, a := range c.archives {
		if a.Contains(key) {
			return true
		}
	}
	_, err := os.Stat(filepath.Join(c.root, category, name))
	return err == nil
}

// mark returns a check result column for one file.
func (c *checker) mark(category, name string) string {
	if c.exists(category, name) {
		return "ok"
	}
	return "MISSING"
}

func report(reg *resources.Registry, c *checker) int {
	missing := 0
	count := func(category, name string) string {
		m := c.mark(category, name)
		if m != "ok" {
			missing++
		}
		return m
	}

	fmt.Printf("Textures (%d)\n", len(reg.Textures))
	for _, t := range reg.Textures {
		fmt.Printf("  %-20s %dx%d variants, mipmap=%v\n",
			t.Name, len(t.Types), len(t.Qualities), t.Mipmap)
		for _, typ := range t.Types {
			for _, q := range t.Qualities {
				file := strings.ReplaceAll(t.Format, "{type}", typ)
				file = strings.ReplaceAll(file, "{quality}", q)
				fmt.Printf("    %-40s %s\n", file, count("textures", file))
			}
		}
	}

	fmt.Printf("\nCubemaps (%d)\n", len(reg.Cubemaps))
	for _, cm := range reg.Cubemaps {
		fmt.Printf("  %s\n", cm.Name)
		for _, face := range []string{
			cm.Faces.PosX, cm.Faces.NegX, cm.Faces.PosY,
			cm.Faces.NegY, cm.Faces.PosZ, cm.Faces.NegZ,
		} {
			fmt.Printf("    %-40s %s\n", face, count("cubemaps", face))
		}
	}

	fmt.Printf("\nShaders (%d)\n", len(reg.Shaders))
	for _, s := range reg.Shaders {
		extra := ""
		if s.Fallback != "" {
			extra = " fallback=" + s.Fallback
		}
		fmt.Printf("  %-20s blend=%s%s\n", s.Name, orDefault(s.Blend, "opaque"), extra)
		fmt.Printf("    %-40s %s\n", s.Vertex, count("shaders", s.Vertex))
		fmt.Printf("    %-40s %s\n", s.Fragment, count("shaders", s.Fragment))
	}

	fmt.Printf("\nModels (%d)\n", len(reg.Models))
	for _, m := range reg.Models {
		fmt.Printf("  %s\n", m.Name)
		for _, f := range m.Files {
			file := strings.ReplaceAll(m.Format, "{suffix}", f.Suffix)
			fmt.Printf("    %-40s maxlod=%d %s\n", file, f.MaxLOD, count("models", file))
		}
	}

	return missing
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
