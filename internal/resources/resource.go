// Package resources implements asynchronous loading and readiness
// tracking for graphics assets.
//
// Each resource kind (texture, cubemap, shader, model) is identified
// by a unique name within its category and moves through the states
// Unrequested, Requested, Loading and finally Ready or Failed. Loads
// are additive: data that has been fetched is never discarded, even
// when a later request asks for less.
//
// Settlement is decided by completion counting, never by completion
// order. File fetches complete on arbitrary goroutines and in
// arbitrary order; a batch is settled when the number of completions
// matches the number of fetches issued over the resource's lifetime.
package resources

import (
	"image"
	"sync"

	"github.com/orialis/voidreach/internal/media"
)

// State describes a resource's position in the loading lifecycle.
type State int

const (
	Unrequested State = iota
	Requested
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Unrequested:
		return "unrequested"
	case Requested:
		return "requested"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Params constrains a resource request. Each field applies only to the
// resource kinds that understand it; a nil Params, or a nil field,
// means "everything declared".
type Params struct {
	// Types restricts a texture request to these type suffixes.
	Types []string
	// Qualities restricts a texture request to these quality suffixes.
	Qualities []string
	// MaxLOD asks a model for geometry up to this detail tier.
	MaxLOD *int
}

// LOD returns a Params asking a model for detail up to the given tier.
func LOD(tier int) *Params {
	return &Params{MaxLOD: &tier}
}

// Fetcher retrieves asset files asynchronously. Every fetch invokes
// its callback exactly once, from a separate goroutine, with either
// the payload or an error. media.Store satisfies this.
type Fetcher interface {
	FetchImage(category media.Category, name string, done func(image.Image, error))
	FetchText(category media.Category, name string, done func(string, error))
}

// Resource is the common surface of all resource kinds.
type Resource interface {
	Name() string
	Category() media.Category
	State() State

	// RequiresReload reports whether the given request is not covered
	// by data already loaded or by fetches already in flight.
	RequiresReload(params *Params) bool
	// RequestFiles issues the fetches needed to satisfy the request.
	// Callers must only invoke it when RequiresReload returned true.
	RequestFiles(params *Params)

	IsReadyToUse() bool
	// WhenReady queues fn to run once the resource settles. If the
	// resource is already settled, fn runs immediately. fn fires on
	// Failed as well as Ready so that joins never stall.
	WhenReady(fn func())

	// notifySettle hooks the registry's join re-evaluation into every
	// settlement. Satisfied through the embedded tracker.
	notifySettle(fn func())
}

// tracker is the readiness bookkeeping shared by every resource kind:
// a state flag, cumulative file counters and a deferred-callback
// queue. Counters span the resource's whole lifetime, not one request,
// so a completion from an early batch cannot prematurely settle a
// resource that grew a second batch in the meantime.
type tracker struct {
	mu        sync.Mutex
	state     State
	requested int
	completed int
	failures  int
	firstErr  error
	onReady   []func()
	onSettle  func()
}

func (t *tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *tracker) IsReadyToUse() bool {
	return t.State() == Ready
}

// markRequested moves a fresh resource to Requested. Later states are
// left alone.
func (t *tracker) markRequested() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Unrequested {
		t.state = Requested
	}
}

// settled reports whether the resource has reached a terminal state
// for all fetches issued so far.
func (t *tracker) settled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settledLocked()
}

func (t *tracker) settledLocked() bool {
	return t.state == Ready || t.state == Failed
}

// inFlight reports whether any issued fetch has not yet completed.
func (t *tracker) inFlight() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed < t.requested
}

// begin records a batch of n fetches about to be issued. It must be
// called before the first fetch of the batch so that an early
// completion cannot observe requested == completed and settle while
// later fetches of the same batch are still being issued.
func (t *tracker) begin(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requested += n
	t.state = Loading
}

// fileDone records one fetch completion. When the cumulative
// completion count catches up with the cumulative request count the
// resource settles and the deferred callbacks drain.
func (t *tracker) fileDone(err error) {
	t.mu.Lock()
	t.completed++
	if err != nil {
		t.failures++
		if t.firstErr == nil {
			t.firstErr = err
		}
	}
	var drained []func()
	settledNow := t.completed == t.requested
	if settledNow {
		if t.failures > 0 {
			t.state = Failed
		} else {
			t.state = Ready
		}
		drained = t.onReady
		t.onReady = nil
	}
	settle := t.onSettle
	t.mu.Unlock()

	for _, fn := range drained {
		fn()
	}
	if settledNow && settle != nil {
		settle()
	}
}

// setReady settles the resource immediately. Used by resources that
// are constructed already populated and own no files.
func (t *tracker) setReady() {
	t.mu.Lock()
	t.state = Ready
	drained := t.onReady
	t.onReady = nil
	settle := t.onSettle
	t.mu.Unlock()

	for _, fn := range drained {
		fn()
	}
	if settle != nil {
		settle()
	}
}

func (t *tracker) whenReady(fn func()) {
	t.mu.Lock()
	if t.settledLocked() {
		t.mu.Unlock()
		fn()
		return
	}
	t.onReady = append(t.onReady, fn)
	t.mu.Unlock()
}

// err returns the first fetch error recorded, if any.
func (t *tracker) err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.firstErr
}

// notifySettle registers a hook invoked after every settlement. The
// registry uses it to re-evaluate whole-registry joins.
func (t *tracker) notifySettle(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettle = fn
}
