package gpu

import (
	"sync"

	"github.com/girder-gfx/girder"
	"golang.org/x/exp/constraints"
	"honnef.co/go/safeish"
)

// ToBytes is implemented by CPU-side values that can be serialized for
// upload. Implementations must return bytes whose lifetime covers the
// enclosing queue or belt write.
type ToBytes interface {
	Bytes() []byte
}

// Scalar is the element constraint for Slice.
type Scalar interface {
	constraints.Integer | constraints.Float
}

// Slice adapts a slice of scalars for upload without copying.
type Slice[E Scalar] []E

func (s Slice[E]) Bytes() []byte {
	return safeish.SliceCast[[]byte]([]E(s))
}

// Resource cells. Each wraps a lazily created GPU object; the embedded
// *girder.Lazy carries the Pending/Ready/Dropped state machine.

type BufferCell struct{ *girder.Lazy[Buffer] }

func NewBufferCell() BufferCell { return BufferCell{girder.NewLazy[Buffer]()} }

type TextureCell struct{ *girder.Lazy[Texture] }

func NewTextureCell() TextureCell { return TextureCell{girder.NewLazy[Texture]()} }

type TextureViewCell struct{ *girder.Lazy[TextureView] }

func NewTextureViewCell() TextureViewCell { return TextureViewCell{girder.NewLazy[TextureView]()} }

type SamplerCell struct{ *girder.Lazy[Sampler] }

func NewSamplerCell() SamplerCell { return SamplerCell{girder.NewLazy[Sampler]()} }

type ShaderModuleCell struct{ *girder.Lazy[ShaderModule] }

func NewShaderModuleCell() ShaderModuleCell { return ShaderModuleCell{girder.NewLazy[ShaderModule]()} }

type SurfaceCell struct{ *girder.Lazy[Surface] }

func NewSurfaceCell() SurfaceCell { return SurfaceCell{girder.NewLazy[Surface]()} }

type SurfaceTextureCell struct{ *girder.Lazy[SurfaceTexture] }

func NewSurfaceTextureCell() SurfaceTextureCell {
	return SurfaceTextureCell{girder.NewLazy[SurfaceTexture]()}
}

// Descriptor components. Each wraps its descriptor in change tracking; the
// creation pipelines recreate the resource when the flag is set and clear it
// in the same step.

type BufferDesc struct{ *girder.Tracked[BufferDescriptor] }

func NewBufferDesc(d BufferDescriptor) BufferDesc { return BufferDesc{girder.NewTracked(d)} }

type BufferInitDesc struct{ *girder.Tracked[BufferInitDescriptor] }

func NewBufferInitDesc(d BufferInitDescriptor) BufferInitDesc {
	return BufferInitDesc{girder.NewTracked(d)}
}

type TextureDesc struct{ *girder.Tracked[TextureDescriptor] }

func NewTextureDesc(d TextureDescriptor) TextureDesc { return TextureDesc{girder.NewTracked(d)} }

type TextureViewDesc struct{ *girder.Tracked[TextureViewDescriptor] }

func NewTextureViewDesc(d TextureViewDescriptor) TextureViewDesc {
	return TextureViewDesc{girder.NewTracked(d)}
}

type SamplerDesc struct{ *girder.Tracked[SamplerDescriptor] }

func NewSamplerDesc(d SamplerDescriptor) SamplerDesc { return SamplerDesc{girder.NewTracked(d)} }

type ShaderModuleDesc struct{ *girder.Tracked[ShaderModuleDescriptor] }

func NewShaderModuleDesc(d ShaderModuleDescriptor) ShaderModuleDesc {
	return ShaderModuleDesc{girder.NewTracked(d)}
}

type ShaderModuleSPIRVDesc struct{ *girder.Tracked[ShaderModuleSPIRVDescriptor] }

func NewShaderModuleSPIRVDesc(d ShaderModuleSPIRVDescriptor) ShaderModuleSPIRVDesc {
	return ShaderModuleSPIRVDesc{girder.NewTracked(d)}
}

type SurfaceConfig struct{ *girder.Tracked[SurfaceConfiguration] }

func NewSurfaceConfig(c SurfaceConfiguration) SurfaceConfig {
	return SurfaceConfig{girder.NewTracked(c)}
}

// Data is tracked CPU-side data of type T awaiting upload. It is assembled
// dirty so the first frame writes it.
type Data[T any] struct{ *girder.Tracked[T] }

func NewData[T any](value T) Data[T] { return Data[T]{girder.NewDirty(value)} }

// BufferWrite configures the direct-write pipeline for values of type T: the
// byte offset within the target buffer where serialized data lands. The
// owning logic may rewrite it between frames.
type BufferWrite[T any] struct {
	Offset uint64
}

// TextureWrite configures the direct texture write pipeline for values of
// type T.
type TextureWrite[T any] struct {
	Copy   ImageCopy
	Layout ImageDataLayout
}

// StagingBeltWrite configures the belt-mediated write pipeline for values of
// type T: where, within the target buffer, the next staged transfer lands.
type StagingBeltWrite[T any] struct {
	Offset uint64
	Size   uint64
}

// StagingBelt names a pooled upload allocator. The belt itself is created
// lazily by the belt pipeline, exactly like a GPU object.
type StagingBelt struct {
	ChunkSize uint64
	ID        *girder.Lazy[BeltID]
}

func NewStagingBelt(chunkSize uint64) StagingBelt {
	return StagingBelt{ChunkSize: chunkSize, ID: girder.NewLazy[BeltID]()}
}

// Window attaches a native window handle to a surface entity.
type Window struct {
	Handle WindowHandle
}

// RenderAttachment is the usage tag for texture views derived from surface
// textures.
type RenderAttachment struct{}

// CommandBuffers accumulates the command buffers an entity finished during a
// frame, in order, until submission drains them.
type CommandBuffers struct {
	q *cmdQueue
}

type cmdQueue struct {
	mu   sync.Mutex
	bufs []CommandBuffer
}

func NewCommandBuffers() CommandBuffers {
	return CommandBuffers{q: &cmdQueue{}}
}

// Push appends a finished command buffer.
func (c CommandBuffers) Push(buf CommandBuffer) {
	c.q.mu.Lock()
	defer c.q.mu.Unlock()
	c.q.bufs = append(c.q.bufs, buf)
}

// Drain returns and clears the accumulated command buffers.
func (c CommandBuffers) Drain() []CommandBuffer {
	c.q.mu.Lock()
	defer c.q.mu.Unlock()
	bufs := c.q.bufs
	c.q.bufs = nil
	return bufs
}
