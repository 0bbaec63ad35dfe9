// Package girder provides the building blocks for declarative GPU resource
// lifecycles on top of an entity-component world: lazily created resource
// cells, change tracking, compile-time usage tags, indirect component
// references, deferred world mutations, and a frame-staged scheduler.
//
// The girder/gpu package builds the actual resource pipelines out of these
// primitives; girder/wgpu_engine binds them to a real WebGPU device.
package girder

import "sync"

type lazyState uint8

const (
	statePending lazyState = iota
	stateReady
	stateDropped
)

// Lazy is a three-state cell for a resource that is created some time after
// the component referring to it was assembled. It starts out Pending, becomes
// Ready once a producer stores a value, and becomes Dropped when an external
// event invalidates the value.
//
// Ready is reachable from Pending and from Dropped; Dropped is reachable only
// from Ready. Nothing transitions back to Pending: an invalidated resource is
// revived by storing a fresh value, never by re-entering the created-but-empty
// state.
//
// A Lazy cell is safe for concurrent use. Components should hold a *Lazy so
// that archetype moves in the world never copy the cell.
type Lazy[T any] struct {
	mu    sync.Mutex
	state lazyState
	value T
}

// NewLazy returns a cell in the Pending state.
func NewLazy[T any]() *Lazy[T] {
	return &Lazy[T]{}
}

// Pending reports whether no value has been stored yet.
func (l *Lazy[T]) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == statePending
}

// Ready reports whether a value is available.
func (l *Lazy[T]) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == stateReady
}

// Dropped reports whether a previously stored value has been invalidated.
func (l *Lazy[T]) Dropped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == stateDropped
}

// Get returns the stored value. The boolean is false while the cell is
// Pending or Dropped; callers branch on it instead of reading a default.
func (l *Lazy[T]) Get() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != stateReady {
		var zero T
		return zero, false
	}
	return l.value, true
}

// MustGet returns the stored value and panics unless the cell is Ready. It is
// for call sites where pipeline ordering already guarantees readiness.
func (l *Lazy[T]) MustGet() T {
	v, ok := l.Get()
	if !ok {
		panic("girder: reading a resource cell that is not ready")
	}
	return v
}

// SetReady stores value, replacing any previous one. The old value, if any,
// is released to normal destruction.
func (l *Lazy[T]) SetReady(value T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = stateReady
	l.value = value
}

// SetDropped invalidates the stored value. Dropping a cell that never held a
// value is a wiring bug and panics; dropping an already dropped cell is a
// no-op.
func (l *Lazy[T]) SetDropped() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == statePending {
		panic("girder: dropping a resource that was never created")
	}
	l.state = stateDropped
	var zero T
	l.value = zero
}
