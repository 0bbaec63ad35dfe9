package gpu

import (
	"testing"

	"github.com/edwinsyarief/teishoku"
)

func TestSubmitCommandBuffers(t *testing.T) {
	cx, _, q := newTestContext()
	w := teishoku.NewWorld(8)
	e := w.CreateEntity()
	teishoku.SetComponent(&w, e, NewCommandBuffers())

	cmds := teishoku.GetComponent[CommandBuffers](&w, e)
	cmds.Push(fakeCommandBuffer{label: "a"})
	cmds.Push(fakeCommandBuffer{label: "b"})

	sys := SubmitCommandBuffers(&w, cx)
	sys(&w)

	if len(q.submits) != 1 {
		t.Fatalf("queue saw %d submissions, want 1", len(q.submits))
	}
	if len(q.submits[0]) != 2 {
		t.Fatalf("submission carried %d command buffers, want 2", len(q.submits[0]))
	}
	if q.submits[0][0].(fakeCommandBuffer).label != "a" {
		t.Error("command buffers should be submitted in push order")
	}

	// Drained; the next frame has nothing to submit.
	sys(&w)
	if len(q.submits) != 1 {
		t.Error("an empty queue must not be submitted")
	}
}

func TestSubmitMultipleEntities(t *testing.T) {
	cx, _, q := newTestContext()
	w := teishoku.NewWorld(8)
	for i := range 3 {
		e := w.CreateEntity()
		teishoku.SetComponent(&w, e, NewCommandBuffers())
		if i != 1 {
			cmds := teishoku.GetComponent[CommandBuffers](&w, e)
			cmds.Push(fakeCommandBuffer{})
		}
	}

	SubmitCommandBuffers(&w, cx)(&w)
	if len(q.submits) != 2 {
		t.Errorf("queue saw %d submissions, want 2: one per non-empty entity", len(q.submits))
	}
}

func TestFromWorld(t *testing.T) {
	cx, _, _ := newTestContext()
	w := teishoku.NewWorld(8)
	cx.Attach(&w)
	if got := FromWorld(&w); got != cx {
		t.Error("FromWorld should return the attached context")
	}
}

func TestFromWorldMissingPanics(t *testing.T) {
	w := teishoku.NewWorld(8)
	defer func() {
		if recover() == nil {
			t.Error("FromWorld without an attached context should panic")
		}
	}()
	FromWorld(&w)
}
