package gpu

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/edwinsyarief/teishoku"
	"github.com/girder-gfx/girder"
	"go.uber.org/zap"
)

// BeltID names one staging belt in a Manager's pool. IDs are unique for the
// lifetime of the manager and never reused.
type BeltID uint64

// Manager owns the process's staging belts: pooled, reusable upload
// allocators that amortize mapping overhead across many small, frequent
// writes. It is not safe for concurrent use; belt work runs in a Serial
// schedule phase, since belt writes mutate shared allocator state and recall
// is tied to the one externally polled device timeline.
type Manager struct {
	belts  map[BeltID]*belt
	nextID BeltID
	log    *zap.Logger
}

// NewManager returns an empty belt pool. A nil logger is replaced with a
// no-op one.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		belts: make(map[BeltID]*belt),
		log:   log,
	}
}

// Create allocates a new belt whose chunks hold at least chunkSize bytes and
// returns its id.
func (m *Manager) Create(chunkSize uint64) BeltID {
	id := m.nextID
	m.nextID++
	m.belts[id] = &belt{chunkSize: chunkSize}
	m.log.Debug("created staging belt",
		zap.Uint64("belt", uint64(id)),
		zap.Uint64("chunkSize", chunkSize))
	return id
}

func (m *Manager) belt(id BeltID) *belt {
	b, ok := m.belts[id]
	if !ok {
		panic(fmt.Sprintf("gpu: unknown staging belt %d", id))
	}
	return b
}

// Write stages data into target at offset through the given belt: it carves a
// host-visible region of the given size out of a belt chunk, copies data into
// it and records the device-side copy on enc. The bytes reach the target once
// enc's command buffer is submitted.
func (m *Manager) Write(dev Device, enc CommandEncoder, target Buffer, offset, size uint64, id BeltID, data []byte) {
	b := m.belt(id)
	if uint64(len(data)) < size {
		panic(fmt.Sprintf("gpu: staging belt %d write of %d bytes with only %d supplied", id, size, len(data)))
	}
	c := b.allocate(dev, size)
	copy(c.buf.MappedRange(c.offset, size), data[:size])
	enc.CopyBufferToBuffer(c.buf, c.offset, target, offset, size)
	c.offset = alignUp(c.offset+size, mapAlignment)
}

// Finish closes the belt's active chunks so their staged writes can be
// submitted. Call once per frame per belt that had writes, before submission.
// A belt with no active chunks is a no-op.
func (m *Manager) Finish(id BeltID) {
	b := m.belt(id)
	for _, c := range b.active {
		c.buf.Unmap()
		b.closed = append(b.closed, c)
	}
	b.active = b.active[:0]
}

// Recall starts reclaiming the belt's submitted chunks. Remapping completes
// asynchronously on the device timeline; the completion signal is kept with
// the chunk and checked before reuse, so Recall itself never blocks. This
// relies on the device being polled elsewhere.
func (m *Manager) Recall(id BeltID) {
	b := m.belt(id)
	for _, c := range b.closed {
		c.offset = 0
		c.mapped = c.buf.Map(b.dev, MapModeWrite, 0, c.size)
		b.free = append(b.free, c)
	}
	b.closed = b.closed[:0]
}

// mapAlignment is the offset granularity for host-visible buffer regions.
const mapAlignment = 8

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

type belt struct {
	chunkSize uint64
	dev       Device
	// active chunks are mapped and receiving writes; closed chunks are
	// unmapped, their copies recorded in encoders; free chunks have been
	// recalled and wait for their remap to resolve.
	active []*chunk
	closed []*chunk
	free   []*chunk
}

type chunk struct {
	buf    Buffer
	size   uint64
	offset uint64
	// mapped is non-nil while a recall remap is outstanding.
	mapped <-chan error
}

// allocate returns a chunk with at least size bytes of mapped space
// remaining, preferring active chunks, then recalled ones whose remap has
// resolved, creating a new chunk only as a last resort.
func (b *belt) allocate(dev Device, size uint64) *chunk {
	b.dev = dev
	for _, c := range b.active {
		if c.size-c.offset >= size {
			return c
		}
	}
	for i, c := range b.free {
		if c.size < size || !c.ready() {
			continue
		}
		b.free = append(b.free[:i], b.free[i+1:]...)
		b.active = append(b.active, c)
		return c
	}
	n := sizeClass(max(size, b.chunkSize))
	c := &chunk{
		buf: dev.CreateBuffer(&BufferDescriptor{
			Label:            "staging belt chunk",
			Size:             n,
			Usage:            BufferUsageMapWrite | BufferUsageCopySrc,
			MappedAtCreation: true,
		}),
		size: n,
	}
	b.active = append(b.active, c)
	return c
}

// ready reports whether the chunk is mapped and writable, consuming the
// recall signal if it has resolved. A failed remap is fatal; the chunk's
// memory is gone.
func (c *chunk) ready() bool {
	if c.mapped == nil {
		return true
	}
	select {
	case err := <-c.mapped:
		if err != nil {
			panic(fmt.Sprintf("gpu: remapping staging belt chunk: %s", err))
		}
		c.mapped = nil
		return true
	default:
		return false
	}
}

// sizeClass rounds x up so chunks fall into a small number of size buckets
// and stay reusable across differently sized writes.
func sizeClass(x uint64) uint64 {
	const numBits = 1
	if x > 1<<numBits {
		a := bits.LeadingZeros64(x - 1)
		b := (x - 1) | (((math.MaxUint64 / 2) >> numBits) >> a)
		return b + 1
	}
	return 1 << numBits
}

// CreateStagingBelts creates belts for pending U-tagged belt components, on
// first encounter, exactly like GPU objects.
func CreateStagingBelts[U any](w *teishoku.World, cx *Context, m *Manager) girder.System {
	f := teishoku.NewFilter[girder.Usage[U, StagingBelt]](w)
	return func(w *teishoku.World) {
		f.Reset()
		for f.Next() {
			sb := f.Get()
			if !sb.Value.ID.Pending() {
				continue
			}
			sb.Value.ID.SetReady(m.Create(sb.Value.ChunkSize))
		}
	}
}

// StagingBeltWrites stages changed T values into their U-tagged target buffer
// through the entity's belt. Each write records a finished command buffer
// into the target's queue, clears the data flag and sets the belt's own flag,
// which drives finish and recall bookkeeping independently of per-value
// writes that share the belt.
func StagingBeltWrites[U any, T ToBytes](w *teishoku.World, cx *Context, m *Manager) girder.System {
	f := teishoku.NewFilter2[girder.Usage[U, StagingBeltWrite[T]], Data[T]](w)
	return func(w *teishoku.World) {
		f.Reset()
		for f.Next() {
			wr, data := f.Get()
			if !data.Changed() {
				continue
			}
			e := f.Entity()
			beltC := girder.Resolve(w, indirectOn[girder.Usage[U, StagingBelt]](w, e))
			beltFlag := girder.Resolve(w, indirectOn[girder.Flag[girder.Usage[U, StagingBelt]]](w, e))
			bufC := girder.Resolve(w, indirectOn[girder.Usage[U, BufferCell]](w, e))
			cmds := girder.Resolve(w, indirectOn[CommandBuffers](w, e))

			id, ok := beltC.Value.ID.Get()
			if !ok {
				continue
			}
			buf, ok := bufC.Value.Get()
			if !ok {
				continue
			}
			bytes := data.Get().Bytes()
			enc := cx.Device.CreateCommandEncoder("staging belt write")
			m.Write(cx.Device, enc, buf, wr.Value.Offset, wr.Value.Size, id, bytes)
			cmds.Push(enc.Finish())
			data.SetChanged(false)
			beltFlag.Set(true)
			cx.Log.Debug("staged buffer write",
				zap.String("usage", girder.UsageName[U]()),
				zap.Uint64("belt", uint64(id)),
				zap.Uint64("offset", wr.Value.Offset),
				zap.Int("bytes", len(bytes)))
		}
	}
}

// FinishStagingBelts finishes every U-tagged belt whose flag is set. The flag
// stays set so the recall pass can see it.
func FinishStagingBelts[U any](w *teishoku.World, m *Manager) girder.System {
	f := teishoku.NewFilter2[girder.Usage[U, StagingBelt], girder.Flag[girder.Usage[U, StagingBelt]]](w)
	return func(w *teishoku.World) {
		f.Reset()
		for f.Next() {
			sb, flag := f.Get()
			if !flag.Get() {
				continue
			}
			id, ok := sb.Value.ID.Get()
			if !ok {
				continue
			}
			m.Finish(id)
		}
	}
}

// RecallStagingBelts recalls every U-tagged belt whose flag is set and clears
// the flag, completing the belt's write/finish/recall cycle for this frame.
func RecallStagingBelts[U any](w *teishoku.World, m *Manager) girder.System {
	f := teishoku.NewFilter2[girder.Usage[U, StagingBelt], girder.Flag[girder.Usage[U, StagingBelt]]](w)
	return func(w *teishoku.World) {
		f.Reset()
		for f.Next() {
			sb, flag := f.Get()
			if !flag.Get() {
				continue
			}
			id, ok := sb.Value.ID.Get()
			if !ok {
				continue
			}
			m.Recall(id)
			flag.Set(false)
		}
	}
}

// indirectOn fetches the indirect reference component of type C that
// assembly attached to e. Its absence is a wiring bug.
func indirectOn[C any](w *teishoku.World, e teishoku.Entity) girder.Indirect[C] {
	ref := teishoku.GetComponent[girder.Indirect[C]](w, e)
	if ref == nil {
		panic(fmt.Sprintf("gpu: entity %d has no indirect reference for %s", e.ID, girder.UsageName[C]()))
	}
	return *ref
}
