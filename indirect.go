package girder

import (
	"fmt"

	"github.com/edwinsyarief/teishoku"
)

// Indirect states that the component of type C relevant to this entity
// actually lives on another entity. It carries only the target's identity;
// resolution happens by world lookup at every use, since component storage
// may relocate between frames and a cached pointer would go stale.
type Indirect[C any] struct {
	Target teishoku.Entity
}

// On returns a reference to the C instance owned by e. Pass the holding
// entity itself for the common self-reference case.
func On[C any](e teishoku.Entity) Indirect[C] {
	return Indirect[C]{Target: e}
}

// Resolve looks up the referenced component. The reader only observes the
// target; it never takes ownership. A reference that does not resolve is a
// wiring bug in assembly, not a transient condition, so Resolve panics rather
// than returning a recoverable error.
func Resolve[C any](w *teishoku.World, ref Indirect[C]) *C {
	c := teishoku.GetComponent[C](w, ref.Target)
	if c == nil {
		panic(fmt.Sprintf("girder: indirect %T does not resolve on entity %d", ref, ref.Target.ID))
	}
	return c
}
