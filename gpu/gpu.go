// Package gpu manages the existence and freshness of GPU-side objects for
// entities in a teishoku world: it decides each frame which buffers,
// textures, views, samplers, shader modules and surfaces must be (re)created
// because their descriptors changed, moves bytes into them either directly or
// through pooled staging belts, and tracks readiness so dependent systems
// never touch a resource before it exists.
//
// The package talks to the GPU through small capability interfaces so that
// the pipelines can be exercised against fakes; girder/wgpu_engine implements
// them on top of honnef.co/go/wgpu.
package gpu

import (
	"github.com/edwinsyarief/teishoku"
	"go.uber.org/zap"
)

// Device creates GPU objects. All creation calls either succeed or abort the
// process; there is no retry at this layer.
type Device interface {
	CreateBuffer(desc *BufferDescriptor) Buffer
	CreateBufferInit(desc *BufferInitDescriptor) Buffer
	CreateTexture(desc *TextureDescriptor) Texture
	CreateSampler(desc *SamplerDescriptor) Sampler
	CreateShaderModule(desc *ShaderModuleDescriptor) ShaderModule
	CreateShaderModuleSPIRV(desc *ShaderModuleSPIRVDescriptor) ShaderModule
	CreateCommandEncoder(label string) CommandEncoder
}

// Queue accepts byte writes and finished command buffers. Individual calls
// are synchronized by the underlying API.
type Queue interface {
	WriteBuffer(buf Buffer, offset uint64, data []byte)
	WriteTexture(dst ImageCopyTexture, data []byte, layout ImageDataLayout, size Extent3D)
	Submit(bufs ...CommandBuffer)
}

// Buffer is a GPU-side byte buffer.
type Buffer interface {
	Size() uint64
	// MappedRange returns the host-visible window of a currently mapped
	// buffer. Writing outside a mapped state is undefined.
	MappedRange(offset, size uint64) []byte
	Unmap()
	// Map asynchronously maps the buffer. The returned channel delivers the
	// outcome once the device has been polled far enough; callers may discard
	// or defer reading it.
	Map(dev Device, mode MapMode, offset, size uint64) <-chan error
}

// Texture is a GPU-side image.
type Texture interface {
	CreateView(desc *TextureViewDescriptor) TextureView
}

// TextureView is a shader-visible view over a texture.
type TextureView interface{}

// Sampler describes texture filtering for shaders.
type Sampler interface{}

// ShaderModule is a compiled shader.
type ShaderModule interface{}

// CommandBuffer is a finished, submittable sequence of GPU commands.
type CommandBuffer interface{}

// CommandEncoder records GPU commands.
type CommandEncoder interface {
	CopyBufferToBuffer(src Buffer, srcOffset uint64, dst Buffer, dstOffset uint64, size uint64)
	Finish() CommandBuffer
}

// Surface is a presentable window target.
type Surface interface {
	Configure(dev Device, config *SurfaceConfiguration)
	// CurrentTexture acquires the texture to render the next frame into. An
	// error means the current frame was lost; this is an expected lifecycle
	// event, not a fatal one.
	CurrentTexture() (SurfaceTexture, error)
}

// SurfaceTexture is one acquired frame of a surface.
type SurfaceTexture interface {
	Texture() Texture
	Present()
}

// WindowHandle is an opaque handle to a native window, supplied by the
// windowing collaborator.
type WindowHandle any

// Instance is the GPU API entry point.
type Instance interface {
	CreateSurface(window WindowHandle) Surface
}

// Adapter describes the physical device backing an Instance.
type Adapter interface {
	PreferredFormat(s Surface) TextureFormat
}

// Context carries the process-wide GPU singletons and the diagnostics logger.
// It is read-only from the pipelines' perspective; they only invoke it.
// Pipelines receive it explicitly at construction, and it is additionally
// registered as a world resource for consumers such as render passes.
type Context struct {
	Instance Instance
	Adapter  Adapter
	Device   Device
	Queue    Queue
	Log      *zap.Logger
}

// NewContext bundles the GPU singletons. A nil logger is replaced with a
// no-op one.
func NewContext(instance Instance, adapter Adapter, dev Device, queue Queue, log *zap.Logger) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	return &Context{
		Instance: instance,
		Adapter:  adapter,
		Device:   dev,
		Queue:    queue,
		Log:      log,
	}
}

// Attach registers the context as the world's GPU singleton.
func (cx *Context) Attach(w *teishoku.World) {
	w.Resources().Add(cx)
}

// FromWorld fetches the GPU context singleton. A world without one violates a
// startup invariant, so absence panics.
func FromWorld(w *teishoku.World) *Context {
	cx, _ := teishoku.GetResource[Context](w.Resources())
	if cx == nil {
		panic("gpu: world has no gpu.Context resource")
	}
	return cx
}
