package gpu

// Descriptor types mirror the WebGPU shapes the backend maps them onto. They
// are plain data: the pipelines compare and copy them freely.

// BufferUsage is a bit set of allowed buffer operations.
type BufferUsage uint32

const (
	BufferUsageMapRead BufferUsage = 1 << iota
	BufferUsageMapWrite
	BufferUsageCopySrc
	BufferUsageCopyDst
	BufferUsageIndex
	BufferUsageVertex
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageIndirect
)

// TextureUsage is a bit set of allowed texture operations.
type TextureUsage uint32

const (
	TextureUsageCopySrc TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageTextureBinding
	TextureUsageStorageBinding
	TextureUsageRenderAttachment
)

// TextureFormat identifies a texel layout.
type TextureFormat uint32

const (
	TextureFormatUndefined TextureFormat = iota
	TextureFormatR8Unorm
	TextureFormatRG8Unorm
	TextureFormatRGBA8Unorm
	TextureFormatRGBA8UnormSrgb
	TextureFormatBGRA8Unorm
	TextureFormatBGRA8UnormSrgb
	TextureFormatR32Float
	TextureFormatRGBA32Float
	TextureFormatDepth32Float
)

// TextureDimension distinguishes 1D, 2D and 3D textures.
type TextureDimension uint8

const (
	TextureDimension1D TextureDimension = iota
	TextureDimension2D
	TextureDimension3D
)

// TextureAspect selects depth, stencil or all aspects of a texture.
type TextureAspect uint8

const (
	TextureAspectAll TextureAspect = iota
	TextureAspectStencilOnly
	TextureAspectDepthOnly
)

// MapMode selects the direction of a buffer mapping.
type MapMode uint8

const (
	MapModeRead MapMode = 1 << iota
	MapModeWrite
)

// PresentMode selects how surface presentation is paced.
type PresentMode uint8

const (
	PresentModeFifo PresentMode = iota
	PresentModeMailbox
	PresentModeImmediate
)

// AddressMode selects sampler behavior outside [0, 1].
type AddressMode uint8

const (
	AddressModeClampToEdge AddressMode = iota
	AddressModeRepeat
	AddressModeMirrorRepeat
)

// FilterMode selects sampler interpolation.
type FilterMode uint8

const (
	FilterModeNearest FilterMode = iota
	FilterModeLinear
)

// Extent3D is a texture size in texels and layers.
type Extent3D struct {
	Width              uint32
	Height             uint32
	DepthOrArrayLayers uint32
}

// Degenerate reports whether any dimension is zero. Creating a texture with a
// degenerate extent is deferred, not attempted.
func (e Extent3D) Degenerate() bool {
	return e.Width == 0 || e.Height == 0 || e.DepthOrArrayLayers == 0
}

// Origin3D is a texel offset into a texture.
type Origin3D struct {
	X, Y, Z uint32
}

type BufferDescriptor struct {
	Label            string
	Size             uint64
	Usage            BufferUsage
	MappedAtCreation bool
}

type BufferInitDescriptor struct {
	Label    string
	Contents []byte
	Usage    BufferUsage
}

type TextureDescriptor struct {
	Label         string
	Size          Extent3D
	MipLevelCount uint32
	SampleCount   uint32
	Dimension     TextureDimension
	Format        TextureFormat
	Usage         TextureUsage
}

type TextureViewDescriptor struct {
	Label           string
	Format          TextureFormat
	Aspect          TextureAspect
	BaseMipLevel    uint32
	MipLevelCount   uint32
	BaseArrayLayer  uint32
	ArrayLayerCount uint32
}

type SamplerDescriptor struct {
	Label        string
	AddressModeU AddressMode
	AddressModeV AddressMode
	AddressModeW AddressMode
	MagFilter    FilterMode
	MinFilter    FilterMode
	MipmapFilter FilterMode
}

type ShaderModuleDescriptor struct {
	Label string
	WGSL  []byte
}

type ShaderModuleSPIRVDescriptor struct {
	Label string
	SPIRV []uint32
}

type SurfaceConfiguration struct {
	Usage       TextureUsage
	Format      TextureFormat
	Width       uint32
	Height      uint32
	PresentMode PresentMode
}

// ImageCopy locates a write destination within a texture, without naming the
// texture itself; the pipeline resolves that separately.
type ImageCopy struct {
	MipLevel uint32
	Origin   Origin3D
	Aspect   TextureAspect
}

// ImageCopyTexture is an ImageCopy bound to a concrete texture.
type ImageCopyTexture struct {
	Texture  Texture
	MipLevel uint32
	Origin   Origin3D
	Aspect   TextureAspect
}

// ImageDataLayout describes the memory layout of texel data being written.
type ImageDataLayout struct {
	Offset       uint64
	BytesPerRow  uint32
	RowsPerImage uint32
}
