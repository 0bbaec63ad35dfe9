package girder

import (
	"sync"

	"github.com/edwinsyarief/teishoku"
)

// Commands queues world mutations for application after the current pass.
// Systems may record mutations while other systems are still iterating the
// world; nothing structural happens until Flush.
type Commands struct {
	mu  sync.Mutex
	ops []func(*teishoku.World)
}

// Add records an arbitrary deferred mutation.
func (c *Commands) Add(op func(*teishoku.World)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = append(c.ops, op)
}

// Flush applies all recorded mutations in order and clears the queue.
func (c *Commands) Flush(w *teishoku.World) {
	c.mu.Lock()
	ops := c.ops
	c.ops = nil
	c.mu.Unlock()
	for _, op := range ops {
		op(w)
	}
}

// AddComponent defers attaching value to e.
func AddComponent[T any](c *Commands, e teishoku.Entity, value T) {
	c.Add(func(w *teishoku.World) {
		teishoku.SetComponent(w, e, value)
	})
}

// RemoveComponent defers removing the T component from e.
func RemoveComponent[T any](c *Commands, e teishoku.Entity) {
	c.Add(func(w *teishoku.World) {
		teishoku.RemoveComponent[T](w, e)
	})
}
