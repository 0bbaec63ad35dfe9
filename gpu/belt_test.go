package gpu

import (
	"bytes"
	"testing"

	"github.com/edwinsyarief/teishoku"
	"github.com/girder-gfx/girder"
)

type upload struct{}

func TestManagerWrite(t *testing.T) {
	m := NewManager(nil)
	id := m.Create(256)
	dev := &fakeDevice{}
	enc := &fakeEncoder{}
	target := &fakeBuffer{size: 1024, data: make([]byte, 1024)}

	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	m.Write(dev, enc, target, 64, 8, id, payload)

	if dev.buffers != 1 {
		t.Fatalf("belt created %d chunks, want 1", dev.buffers)
	}
	if !dev.lastBuffer.MappedAtCreation {
		t.Error("belt chunks must be mapped at creation")
	}
	if dev.lastBuffer.Usage != BufferUsageMapWrite|BufferUsageCopySrc {
		t.Errorf("chunk usage = %v, want MapWrite|CopySrc", dev.lastBuffer.Usage)
	}
	if len(enc.copies) != 1 {
		t.Fatalf("encoder recorded %d copies, want 1", len(enc.copies))
	}
	cp := enc.copies[0]
	if cp.dst != Buffer(target) || cp.dstOffset != 64 || cp.size != 8 {
		t.Errorf("copy = dst offset %d size %d, want offset 64 size 8", cp.dstOffset, cp.size)
	}
	chunk := cp.src.(*fakeBuffer)
	if !bytes.Equal(chunk.data[cp.srcOffset:cp.srcOffset+8], payload) {
		t.Error("payload was not copied into the chunk's mapped range")
	}
}

func TestManagerWriteOffsetsAligned(t *testing.T) {
	m := NewManager(nil)
	id := m.Create(256)
	dev := &fakeDevice{}
	enc := &fakeEncoder{}
	target := &fakeBuffer{size: 1024, data: make([]byte, 1024)}

	m.Write(dev, enc, target, 0, 3, id, []byte{1, 2, 3})
	m.Write(dev, enc, target, 100, 3, id, []byte{4, 5, 6})

	if dev.buffers != 1 {
		t.Fatalf("two small writes used %d chunks, want 1", dev.buffers)
	}
	if enc.copies[1].srcOffset%mapAlignment != 0 {
		t.Errorf("second write starts at unaligned chunk offset %d", enc.copies[1].srcOffset)
	}
}

// One full write/finish/recall cycle per frame; with an immediately resolving
// remap the belt must reuse its single chunk forever.
func TestBeltCycleNoGrowth(t *testing.T) {
	m := NewManager(nil)
	id := m.Create(256)
	dev := &fakeDevice{}
	target := &fakeBuffer{size: 256, data: make([]byte, 256)}
	payload := make([]byte, 256)

	for range 10 {
		enc := &fakeEncoder{}
		m.Write(dev, enc, target, 0, 256, id, payload)
		m.Finish(id)
		m.Recall(id)
	}

	if dev.buffers != 1 {
		t.Errorf("10 cycles allocated %d chunks, want 1", dev.buffers)
	}
	b := m.belts[id]
	if len(b.active)+len(b.closed)+len(b.free) != 1 {
		t.Errorf("belt tracks %d+%d+%d chunks, want 1 total",
			len(b.active), len(b.closed), len(b.free))
	}
}

// A chunk whose remap has not resolved yet is not reused; the belt allocates
// a fresh one instead of blocking.
func TestBeltUnresolvedRemapNotReused(t *testing.T) {
	m := NewManager(nil)
	id := m.Create(256)
	dev := &fakeDevice{}
	target := &fakeBuffer{size: 256, data: make([]byte, 256)}
	payload := make([]byte, 16)

	m.Write(dev, &fakeEncoder{}, target, 0, 16, id, payload)
	chunk := m.belts[id].active[0].buf.(*fakeBuffer)
	chunk.mapDelay = true
	m.Finish(id)
	m.Recall(id)

	m.Write(dev, &fakeEncoder{}, target, 0, 16, id, payload)
	if dev.buffers != 2 {
		t.Errorf("belt used %d chunks, want 2: the unresolved one must not be reused", dev.buffers)
	}
}

func TestBeltFinishRecallIdleNoop(t *testing.T) {
	m := NewManager(nil)
	id := m.Create(64)
	m.Finish(id)
	m.Recall(id)
	if len(m.belts[id].free) != 0 {
		t.Error("an idle belt should have nothing to recall")
	}
}

func TestManagerWriteShortDataPanics(t *testing.T) {
	m := NewManager(nil)
	id := m.Create(64)
	target := &fakeBuffer{size: 64, data: make([]byte, 64)}
	defer func() {
		if recover() == nil {
			t.Error("staging more bytes than the caller supplied should panic")
		}
	}()
	m.Write(&fakeDevice{}, &fakeEncoder{}, target, 0, 32, id, []byte{1, 2})
}

func TestManagerUnknownBeltPanics(t *testing.T) {
	m := NewManager(nil)
	defer func() {
		if recover() == nil {
			t.Error("operating on an unknown belt id should panic")
		}
	}()
	m.Finish(BeltID(99))
}

func TestSizeClass(t *testing.T) {
	cases := []struct{ in, want uint64 }{
		{1, 2},
		{2, 2},
		{256, 256},
		{300, 384},
		{1 << 20, 1 << 20},
	}
	for _, c := range cases {
		if got := sizeClass(c.in); got != c.want {
			t.Errorf("sizeClass(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

// Two values of different types multiplexed through one shared belt in the
// same frame: both stage into the same chunk and a single finish/recall cycle,
// driven by the belt's own flag, serves them both.
func TestStagingBeltSharedByTwoWrites(t *testing.T) {
	cx, dev, q := newTestContext()
	m := NewManager(nil)
	w := teishoku.NewWorld(8)

	belt := w.CreateEntity()
	a := w.CreateEntity()
	b := w.CreateEntity()

	var cmd girder.Commands
	AssembleBuffer[upload](&cmd, belt, BufferDescriptor{Size: 256, Usage: BufferUsageStorage | BufferUsageCopyDst})
	AssembleCommandBuffers(&cmd, belt)
	AssembleStagingBelt[upload](&cmd, belt, 256)
	AssembleStagingBeltData[upload](&cmd, a, Slice[float32]{1, 2, 3, 4}, 0, 16, belt)
	AssembleStagingBeltData[upload](&cmd, b, Slice[byte]{9, 9, 9, 9}, 64, 4, belt)
	cmd.Flush(&w)

	CreateBuffers[upload](&w, cx)(&w)
	CreateStagingBelts[upload](&w, cx, m)(&w)
	StagingBeltWrites[upload, Slice[float32]](&w, cx, m)(&w)
	StagingBeltWrites[upload, Slice[byte]](&w, cx, m)(&w)
	FinishStagingBelts[upload](&w, m)(&w)
	SubmitCommandBuffers(&w, cx)(&w)
	RecallStagingBelts[upload](&w, m)(&w)

	if len(q.submits) != 1 {
		t.Fatalf("frame submitted %d batches, want 1", len(q.submits))
	}
	if len(q.submits[0]) != 2 {
		t.Fatalf("submission carried %d command buffers, want one per staged write", len(q.submits[0]))
	}
	if dev.buffers != 2 {
		// The target plus a single chunk shared by both writes.
		t.Errorf("device holds %d buffers, want 2", dev.buffers)
	}
	if teishoku.GetComponent[Data[Slice[float32]]](&w, a).Changed() {
		t.Error("first value's flag should be consumed by its staged write")
	}
	if teishoku.GetComponent[Data[Slice[byte]]](&w, b).Changed() {
		t.Error("second value's flag should be consumed by its staged write")
	}
	flag := teishoku.GetComponent[girder.Flag[girder.Usage[upload, StagingBelt]]](&w, belt)
	if flag.Get() {
		t.Error("the shared belt's flag should be cleared by the single recall")
	}
}

// Frame-level run of the whole belt path: assembly, belt and buffer creation,
// staged write, finish, submit, recall.
func TestStagingBeltFrame(t *testing.T) {
	cx, dev, q := newTestContext()
	m := NewManager(nil)
	w := teishoku.NewWorld(8)
	e := w.CreateEntity()

	var cmd girder.Commands
	AssembleBuffer[upload](&cmd, e, BufferDescriptor{Size: 256, Usage: BufferUsageStorage | BufferUsageCopyDst})
	AssembleCommandBuffers(&cmd, e)
	AssembleStagingBelt[upload](&cmd, e, 256)
	AssembleStagingBeltData[upload](&cmd, e, Slice[byte](make([]byte, 256)), 0, 256, e)
	cmd.Flush(&w)

	systems := []girder.System{
		CreateBuffers[upload](&w, cx),
		CreateStagingBelts[upload](&w, cx, m),
		StagingBeltWrites[upload, Slice[byte]](&w, cx, m),
		FinishStagingBelts[upload](&w, m),
		SubmitCommandBuffers(&w, cx),
		RecallStagingBelts[upload](&w, m),
	}
	frame := func() {
		for _, sys := range systems {
			sys(&w)
		}
	}
	frame()

	if len(q.submits) != 1 || len(q.submits[0]) != 1 {
		t.Fatalf("first frame submitted %d batches, want 1 batch of 1", len(q.submits))
	}
	data := teishoku.GetComponent[Data[Slice[byte]]](&w, e)
	if data.Changed() {
		t.Error("data flag should be consumed by the staged write")
	}
	flag := teishoku.GetComponent[girder.Flag[girder.Usage[upload, StagingBelt]]](&w, e)
	if flag.Get() {
		t.Error("belt flag should be cleared after recall")
	}

	// A quiet frame does nothing.
	frame()
	if len(q.submits) != 1 {
		t.Error("a frame without changed data should submit nothing")
	}

	// Sustained per-frame traffic reuses the same chunk.
	for range 10 {
		data.Set(Slice[byte](make([]byte, 256)))
		frame()
	}
	if dev.buffers != 2 {
		// One target buffer, one belt chunk.
		t.Errorf("device holds %d buffers after 10 busy frames, want 2", dev.buffers)
	}
}
