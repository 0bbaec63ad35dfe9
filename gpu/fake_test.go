package gpu

import "errors"

// Call-counting fakes for the capability interfaces. The pipelines are
// exercised entirely against these; no GPU is involved.

type fakeDevice struct {
	buffers     int
	buffersInit int
	textures    int
	samplers    int
	shaders     int
	spirv       int
	encoders    int

	lastBuffer  BufferDescriptor
	lastTexture TextureDescriptor
}

func (d *fakeDevice) CreateBuffer(desc *BufferDescriptor) Buffer {
	d.buffers++
	d.lastBuffer = *desc
	return &fakeBuffer{
		size:   desc.Size,
		data:   make([]byte, desc.Size),
		mapped: desc.MappedAtCreation,
	}
}

func (d *fakeDevice) CreateBufferInit(desc *BufferInitDescriptor) Buffer {
	d.buffersInit++
	data := make([]byte, len(desc.Contents))
	copy(data, desc.Contents)
	return &fakeBuffer{size: uint64(len(data)), data: data}
}

func (d *fakeDevice) CreateTexture(desc *TextureDescriptor) Texture {
	d.textures++
	d.lastTexture = *desc
	return &fakeTexture{}
}

func (d *fakeDevice) CreateSampler(*SamplerDescriptor) Sampler {
	d.samplers++
	return fakeSampler{}
}

func (d *fakeDevice) CreateShaderModule(*ShaderModuleDescriptor) ShaderModule {
	d.shaders++
	return fakeShaderModule{}
}

func (d *fakeDevice) CreateShaderModuleSPIRV(*ShaderModuleSPIRVDescriptor) ShaderModule {
	d.spirv++
	return fakeShaderModule{}
}

func (d *fakeDevice) CreateCommandEncoder(label string) CommandEncoder {
	d.encoders++
	return &fakeEncoder{label: label}
}

type bufferWrite struct {
	buf    Buffer
	offset uint64
	data   []byte
}

type textureWrite struct {
	dst    ImageCopyTexture
	data   []byte
	layout ImageDataLayout
	size   Extent3D
}

type fakeQueue struct {
	bufferWrites  []bufferWrite
	textureWrites []textureWrite
	submits       [][]CommandBuffer
}

func (q *fakeQueue) WriteBuffer(buf Buffer, offset uint64, data []byte) {
	d := make([]byte, len(data))
	copy(d, data)
	q.bufferWrites = append(q.bufferWrites, bufferWrite{buf: buf, offset: offset, data: d})
}

func (q *fakeQueue) WriteTexture(dst ImageCopyTexture, data []byte, layout ImageDataLayout, size Extent3D) {
	d := make([]byte, len(data))
	copy(d, data)
	q.textureWrites = append(q.textureWrites, textureWrite{dst: dst, data: d, layout: layout, size: size})
}

func (q *fakeQueue) Submit(bufs ...CommandBuffer) {
	q.submits = append(q.submits, bufs)
}

type fakeBuffer struct {
	size   uint64
	data   []byte
	mapped bool
	unmaps int
	maps   int

	// mapDelay leaves the next Map's channel unresolved when set, simulating
	// a device that has not been polled yet.
	mapDelay bool
	mapErr   error
}

func (b *fakeBuffer) Size() uint64 { return b.size }

func (b *fakeBuffer) MappedRange(offset, size uint64) []byte {
	if !b.mapped {
		panic("fake buffer: MappedRange while unmapped")
	}
	return b.data[offset : offset+size]
}

func (b *fakeBuffer) Unmap() {
	b.mapped = false
	b.unmaps++
}

func (b *fakeBuffer) Map(_ Device, _ MapMode, _, _ uint64) <-chan error {
	b.maps++
	ch := make(chan error, 1)
	if !b.mapDelay {
		b.mapped = true
		ch <- b.mapErr
	}
	return ch
}

type fakeTexture struct {
	views int
}

func (t *fakeTexture) CreateView(*TextureViewDescriptor) TextureView {
	t.views++
	return fakeTextureView{}
}

type fakeTextureView struct{}
type fakeSampler struct{}
type fakeShaderModule struct{}
type fakeCommandBuffer struct{ label string }

type bufferCopy struct {
	src       Buffer
	srcOffset uint64
	dst       Buffer
	dstOffset uint64
	size      uint64
}

type fakeEncoder struct {
	label    string
	copies   []bufferCopy
	finished int
}

func (e *fakeEncoder) CopyBufferToBuffer(src Buffer, srcOffset uint64, dst Buffer, dstOffset uint64, size uint64) {
	e.copies = append(e.copies, bufferCopy{src, srcOffset, dst, dstOffset, size})
}

func (e *fakeEncoder) Finish() CommandBuffer {
	e.finished++
	return fakeCommandBuffer{label: e.label}
}

var errFrameLost = errors.New("frame lost")

type fakeSurface struct {
	configures int
	lastConfig SurfaceConfiguration
	// lost makes CurrentTexture fail until cleared.
	lost     bool
	acquires int
	tex      *fakeTexture
	presents int
}

func (s *fakeSurface) Configure(_ Device, config *SurfaceConfiguration) {
	s.configures++
	s.lastConfig = *config
}

func (s *fakeSurface) CurrentTexture() (SurfaceTexture, error) {
	s.acquires++
	if s.lost {
		return nil, errFrameLost
	}
	if s.tex == nil {
		s.tex = &fakeTexture{}
	}
	return fakeSurfaceTexture{surf: s}, nil
}

type fakeSurfaceTexture struct {
	surf *fakeSurface
}

func (s fakeSurfaceTexture) Texture() Texture { return s.surf.tex }
func (s fakeSurfaceTexture) Present()         { s.surf.presents++ }

type fakeInstance struct {
	surf     *fakeSurface
	surfaces int
}

func (i *fakeInstance) CreateSurface(WindowHandle) Surface {
	i.surfaces++
	if i.surf == nil {
		i.surf = &fakeSurface{}
	}
	return i.surf
}

type fakeAdapter struct{}

func (fakeAdapter) PreferredFormat(Surface) TextureFormat { return TextureFormatBGRA8Unorm }

func newTestContext() (*Context, *fakeDevice, *fakeQueue) {
	dev := &fakeDevice{}
	q := &fakeQueue{}
	cx := NewContext(&fakeInstance{}, fakeAdapter{}, dev, q, nil)
	return cx, dev, q
}
