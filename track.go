package girder

import (
	"sync"
	"sync/atomic"
)

// Tracked pairs a value with a changed flag. Producers store new values,
// which sets the flag; the consumer that acts on the change clears it. The
// flag is the sole trigger for expensive recreation or upload work, so a
// consumer must clear it in the same logical step that performs the work.
type Tracked[T any] struct {
	mu      sync.RWMutex
	value   T
	changed bool
}

// NewTracked returns a clean tracked value, for descriptors whose consumer is
// driven by a Pending resource cell rather than by the flag.
func NewTracked[T any](value T) *Tracked[T] {
	return &Tracked[T]{value: value}
}

// NewDirty returns a tracked value with the flag already set, for freshly
// supplied CPU data that must be consumed on the next pass.
func NewDirty[T any](value T) *Tracked[T] {
	return &Tracked[T]{value: value, changed: true}
}

// Get returns a copy of the tracked value.
func (t *Tracked[T]) Get() T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value
}

// Set stores value and sets the changed flag.
func (t *Tracked[T]) Set(value T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.value = value
	t.changed = true
}

// Update mutates the value in place and sets the changed flag.
func (t *Tracked[T]) Update(fn func(*T)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.value)
	t.changed = true
}

// Changed reports whether the value has been updated since the flag was last
// cleared.
func (t *Tracked[T]) Changed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.changed
}

// SetChanged overrides the changed flag.
func (t *Tracked[T]) SetChanged(changed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.changed = changed
}

// Flag is a standalone dirty flag typed by the value it watches. When several
// consumers must each acknowledge a change independently, each holds its own
// Flag component; the type parameter keeps them distinct component types in
// the world. The zero Flag is unusable; assemble with NewFlag.
type Flag[C any] struct {
	b *atomic.Bool
}

// NewFlag returns a flag in the given state.
func NewFlag[C any](set bool) Flag[C] {
	b := new(atomic.Bool)
	b.Store(set)
	return Flag[C]{b: b}
}

// Get returns the flag state.
func (f Flag[C]) Get() bool { return f.b.Load() }

// Set overrides the flag state.
func (f Flag[C]) Set(v bool) { f.b.Store(v) }
