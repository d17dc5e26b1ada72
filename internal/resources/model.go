package resources

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/orialis/voidreach/internal/logger"
	"github.com/orialis/voidreach/internal/media"
	"github.com/orialis/voidreach/pkg/egom"
)

// ModelFile describes one geometry file of a model: the filename
// suffix and the highest detail tier the file supplies.
type ModelFile struct {
	Suffix string
	MaxLOD int
}

// ModelResource loads one or more level-of-detail geometry files into
// a single cumulative model. LOD upgrades are incremental and
// monotonic: fetching a higher tier merges into what is already loaded
// and a later request for a lower tier never rewinds progress.
//
// A model may also be constructed directly from an in-memory geometry
// object. Such a synthetic resource owns no files, is immediately
// ready and never requires a reload.
type ModelResource struct {
	tracker
	fetcher Fetcher

	name   string
	format string // filename format with a {suffix} placeholder
	files  []ModelFile

	mu           sync.Mutex
	model        *egom.Model
	maxLoadedLOD int
}

// NewModel declares a file-backed model resource. format names the
// geometry files with a {suffix} placeholder, e.g. "fighter_{suffix}.egm".
func NewModel(fetcher Fetcher, name, format string, files []ModelFile) *ModelResource {
	return &ModelResource{
		fetcher:      fetcher,
		name:         name,
		format:       format,
		files:        files,
		model:        egom.NewModel(name),
		maxLoadedLOD: -1,
	}
}

// NewSyntheticModel wraps an in-memory model as an immediately ready
// resource.
func NewSyntheticModel(model *egom.Model) *ModelResource {
	r := &ModelResource{
		name:         model.Name(),
		model:        model,
		maxLoadedLOD: model.MaxLOD(),
	}
	r.setReady()
	return r
}

func (m *ModelResource) Name() string             { return m.name }
func (m *ModelResource) Category() media.Category { return media.Models }

// MaxLOD returns the highest declared detail tier, -1 when the
// resource owns no files.
func (m *ModelResource) MaxLOD() int {
	max := -1
	for _, f := range m.files {
		if f.MaxLOD > max {
			max = f.MaxLOD
		}
	}
	return max
}

// MaxLoadedLOD returns the highest tier merged into the live model so
// far, -1 meaning none.
func (m *ModelResource) MaxLoadedLOD() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxLoadedLOD
}

// RequiresReload reports whether the caller is asking for more detail
// than is loaded or in flight. Without an explicit tier the highest
// declared tier is the target. Synthetic resources never reload.
func (m *ModelResource) RequiresReload(params *Params) bool {
	if len(m.files) == 0 {
		return false
	}
	if m.inFlight() {
		return false
	}
	target := m.MaxLOD()
	if params != nil && params.MaxLOD != nil {
		target = *params.MaxLOD
	}
	return target > m.MaxLoadedLOD()
}

// resolveFile picks the geometry file for a target tier: the best
// declared file at or below the target, or failing that the cheapest
// one above it, so some model is always obtainable.
func (m *ModelResource) resolveFile(target int) *ModelFile {
	for tier := target; tier >= 0; tier-- {
		for i := range m.files {
			if m.files[i].MaxLOD == tier {
				return &m.files[i]
			}
		}
	}
	for tier := target + 1; tier <= m.MaxLOD(); tier++ {
		for i := range m.files {
			if m.files[i].MaxLOD == tier {
				return &m.files[i]
			}
		}
	}
	return nil
}

// RequestFiles fetches the single file resolved for the requested
// tier. A declared file list that resolves to nothing is a
// configuration error: it is logged and no fetch is issued, leaving
// the resource permanently non-ready.
func (m *ModelResource) RequestFiles(params *Params) {
	if len(m.files) == 0 {
		return
	}
	target := m.MaxLOD()
	if params != nil && params.MaxLOD != nil {
		target = *params.MaxLOD
	}

	m.markRequested()
	file := m.resolveFile(target)
	if file == nil {
		// No fetch is issued: the resource stays non-ready and any
		// continuation blocked on it stays deferred.
		logger.Error("no geometry file satisfies requested detail tier",
			zap.String("model", m.name), zap.Int("maxLOD", target))
		return
	}

	m.begin(1)
	name := m.filename(file.Suffix)
	tier := file.MaxLOD
	m.fetcher.FetchText(media.Models, name, func(text string, err error) {
		if err == nil {
			err = m.merge([]byte(text), tier)
		}
		if err != nil {
			logger.Error("model fetch failed",
				zap.String("model", m.name), zap.String("file", name), zap.Error(err))
		}
		m.fileDone(err)
	})
}

// merge parses fetched geometry and folds it into the cumulative
// model, advancing maxLoadedLOD to the fetched tier.
func (m *ModelResource) merge(data []byte, tier int) error {
	doc, err := egom.Parse(data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.model.MergeFrom(doc); err != nil {
		return err
	}
	if tier > m.maxLoadedLOD {
		m.maxLoadedLOD = tier
	}
	return nil
}

func (m *ModelResource) filename(suffix string) string {
	return strings.ReplaceAll(m.format, "{suffix}", suffix)
}

func (m *ModelResource) WhenReady(fn func()) { m.whenReady(fn) }

// EgomModel returns the live model object, possibly still being
// progressively enriched by later detail tiers. It fails while the
// resource is not ready.
func (m *ModelResource) EgomModel() (*egom.Model, error) {
	if !m.IsReadyToUse() {
		if err := m.err(); err != nil {
			return nil, fmt.Errorf("model %q: load failed: %w", m.name, err)
		}
		return nil, fmt.Errorf("model %q is not ready to use (%s)", m.name, m.State())
	}
	return m.model, nil
}
