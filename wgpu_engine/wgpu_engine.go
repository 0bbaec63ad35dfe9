// Package wgpu_engine implements the gpu capability interfaces on top of
// honnef.co/go/wgpu. The caller owns instance, adapter, device and queue
// acquisition; this package only wraps them and translates descriptors.
package wgpu_engine

import (
	"fmt"

	"go.uber.org/zap"
	"honnef.co/go/wgpu"

	"github.com/girder-gfx/girder/gpu"
)

// NewContext wraps the given wgpu objects in a gpu.Context, ready to be
// handed to the pipelines and attached to a world.
func NewContext(inst *wgpu.Instance, adp *wgpu.Adapter, dev *wgpu.Device, q *wgpu.Queue, log *zap.Logger) *gpu.Context {
	return gpu.NewContext(
		instance{inst},
		adapter{adp},
		device{dev},
		queue{q},
		log,
	)
}

type device struct {
	dev *wgpu.Device
}

func (d device) CreateBuffer(desc *gpu.BufferDescriptor) gpu.Buffer {
	return buffer{d.dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.Label,
		Size:             desc.Size,
		Usage:            bufferUsage(desc.Usage),
		MappedAtCreation: desc.MappedAtCreation,
	})}
}

func (d device) CreateBufferInit(desc *gpu.BufferInitDescriptor) gpu.Buffer {
	// wgpu has no create-with-data call; mapped-at-creation plus an immediate
	// unmap is the canonical equivalent.
	buf := d.dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.Label,
		Size:             uint64(len(desc.Contents)),
		Usage:            bufferUsage(desc.Usage),
		MappedAtCreation: true,
	})
	copy(buf.MappedRange(0, len(desc.Contents)), desc.Contents)
	buf.Unmap()
	return buffer{buf}
}

func (d device) CreateTexture(desc *gpu.TextureDescriptor) gpu.Texture {
	return texture{d.dev.CreateTexture(&wgpu.TextureDescriptor{
		Label:         desc.Label,
		Size:          extent(desc.Size),
		MipLevelCount: desc.MipLevelCount,
		SampleCount:   desc.SampleCount,
		Dimension:     textureDimension(desc.Dimension),
		Format:        textureFormat(desc.Format),
		Usage:         textureUsage(desc.Usage),
	})}
}

func (d device) CreateSampler(desc *gpu.SamplerDescriptor) gpu.Sampler {
	return sampler{d.dev.CreateSampler(&wgpu.SamplerDescriptor{
		Label:        desc.Label,
		AddressModeU: addressMode(desc.AddressModeU),
		AddressModeV: addressMode(desc.AddressModeV),
		AddressModeW: addressMode(desc.AddressModeW),
		MagFilter:    filterMode(desc.MagFilter),
		MinFilter:    filterMode(desc.MinFilter),
		MipmapFilter: mipmapFilterMode(desc.MipmapFilter),
	})}
}

func (d device) CreateShaderModule(desc *gpu.ShaderModuleDescriptor) gpu.ShaderModule {
	return shaderModule{d.dev.CreateShaderModule(wgpu.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: wgpu.ShaderSourceWGSL(desc.WGSL),
	})}
}

func (d device) CreateShaderModuleSPIRV(desc *gpu.ShaderModuleSPIRVDescriptor) gpu.ShaderModule {
	return shaderModule{d.dev.CreateShaderModule(wgpu.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: wgpu.ShaderSourceSPIRV(desc.SPIRV),
	})}
}

func (d device) CreateCommandEncoder(label string) gpu.CommandEncoder {
	return encoder{d.dev.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})}
}

type queue struct {
	q *wgpu.Queue
}

func (q queue) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) {
	q.q.WriteBuffer(buf.(buffer).buf, offset, data)
}

func (q queue) WriteTexture(dst gpu.ImageCopyTexture, data []byte, layout gpu.ImageDataLayout, size gpu.Extent3D) {
	q.q.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  dst.Texture.(texture).tex,
			MipLevel: dst.MipLevel,
			Origin:   wgpu.Origin3D{X: dst.Origin.X, Y: dst.Origin.Y, Z: dst.Origin.Z},
			Aspect:   textureAspect(dst.Aspect),
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       layout.Offset,
			BytesPerRow:  layout.BytesPerRow,
			RowsPerImage: layout.RowsPerImage,
		},
		&wgpu.Extent3D{
			Width:              size.Width,
			Height:             size.Height,
			DepthOrArrayLayers: size.DepthOrArrayLayers,
		},
	)
}

func (q queue) Submit(bufs ...gpu.CommandBuffer) {
	cmds := make([]*wgpu.CommandBuffer, len(bufs))
	for i, b := range bufs {
		cmds[i] = b.(commandBuffer).cmd
	}
	q.q.Submit(cmds...)
}

type buffer struct {
	buf *wgpu.Buffer
}

func (b buffer) Size() uint64 {
	return b.buf.Size()
}

func (b buffer) MappedRange(offset, size uint64) []byte {
	return b.buf.MappedRange(int(offset), int(size))
}

func (b buffer) Unmap() {
	b.buf.Unmap()
}

func (b buffer) Map(dev gpu.Device, mode gpu.MapMode, offset, size uint64) <-chan error {
	return b.buf.Map(dev.(device).dev, mapMode(mode), int(offset), int(size))
}

type texture struct {
	tex *wgpu.Texture
}

func (t texture) CreateView(desc *gpu.TextureViewDescriptor) gpu.TextureView {
	d := &wgpu.TextureViewDescriptor{
		Label:           desc.Label,
		Aspect:          textureAspect(desc.Aspect),
		BaseMipLevel:    desc.BaseMipLevel,
		MipLevelCount:   desc.MipLevelCount,
		BaseArrayLayer:  desc.BaseArrayLayer,
		ArrayLayerCount: desc.ArrayLayerCount,
	}
	if desc.Format != gpu.TextureFormatUndefined {
		d.Format = textureFormat(desc.Format)
	}
	if d.MipLevelCount == 0 {
		d.MipLevelCount = ^uint32(0)
	}
	if d.ArrayLayerCount == 0 {
		d.ArrayLayerCount = ^uint32(0)
	}
	return textureView{t.tex.CreateView(d)}
}

type textureView struct {
	view *wgpu.TextureView
}

type sampler struct {
	smp *wgpu.Sampler
}

type shaderModule struct {
	mod *wgpu.ShaderModule
}

type commandBuffer struct {
	cmd *wgpu.CommandBuffer
}

type encoder struct {
	enc *wgpu.CommandEncoder
}

func (e encoder) CopyBufferToBuffer(src gpu.Buffer, srcOffset uint64, dst gpu.Buffer, dstOffset uint64, size uint64) {
	e.enc.CopyBufferToBuffer(src.(buffer).buf, srcOffset, dst.(buffer).buf, dstOffset, size)
}

func (e encoder) Finish() gpu.CommandBuffer {
	return commandBuffer{e.enc.Finish(nil)}
}

type instance struct {
	inst *wgpu.Instance
}

// CreateSurface accepts either an already created *wgpu.Surface or a
// *wgpu.SurfaceDescriptor carrying the platform window source. Windowing
// integrations produce one of the two.
func (i instance) CreateSurface(window gpu.WindowHandle) gpu.Surface {
	switch h := window.(type) {
	case *wgpu.Surface:
		return surface{h}
	case *wgpu.SurfaceDescriptor:
		return surface{i.inst.CreateSurface(*h)}
	default:
		panic(fmt.Sprintf("wgpu_engine: unsupported window handle type %T", window))
	}
}

type adapter struct {
	adp *wgpu.Adapter
}

func (a adapter) PreferredFormat(s gpu.Surface) gpu.TextureFormat {
	return fromTextureFormat(s.(surface).surf.PreferredFormat(a.adp))
}

type surface struct {
	surf *wgpu.Surface
}

func (s surface) Configure(dev gpu.Device, config *gpu.SurfaceConfiguration) {
	s.surf.Configure(dev.(device).dev, &wgpu.SurfaceConfiguration{
		Usage:       textureUsage(config.Usage),
		Format:      textureFormat(config.Format),
		Width:       config.Width,
		Height:      config.Height,
		PresentMode: presentMode(config.PresentMode),
	})
}

func (s surface) CurrentTexture() (gpu.SurfaceTexture, error) {
	st, err := s.surf.CurrentTexture()
	if err != nil {
		return nil, err
	}
	return surfaceTexture{surf: s.surf, st: &st}, nil
}

type surfaceTexture struct {
	surf *wgpu.Surface
	st   *wgpu.SurfaceTexture
}

func (s surfaceTexture) Texture() gpu.Texture {
	return texture{s.st.Texture}
}

func (s surfaceTexture) Present() {
	s.surf.Present()
}

func bufferUsage(u gpu.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	for _, m := range []struct {
		in  gpu.BufferUsage
		out wgpu.BufferUsage
	}{
		{gpu.BufferUsageMapRead, wgpu.BufferUsageMapRead},
		{gpu.BufferUsageMapWrite, wgpu.BufferUsageMapWrite},
		{gpu.BufferUsageCopySrc, wgpu.BufferUsageCopySrc},
		{gpu.BufferUsageCopyDst, wgpu.BufferUsageCopyDst},
		{gpu.BufferUsageIndex, wgpu.BufferUsageIndex},
		{gpu.BufferUsageVertex, wgpu.BufferUsageVertex},
		{gpu.BufferUsageUniform, wgpu.BufferUsageUniform},
		{gpu.BufferUsageStorage, wgpu.BufferUsageStorage},
		{gpu.BufferUsageIndirect, wgpu.BufferUsageIndirect},
	} {
		if u&m.in != 0 {
			out |= m.out
		}
	}
	return out
}

func textureUsage(u gpu.TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	for _, m := range []struct {
		in  gpu.TextureUsage
		out wgpu.TextureUsage
	}{
		{gpu.TextureUsageCopySrc, wgpu.TextureUsageCopySrc},
		{gpu.TextureUsageCopyDst, wgpu.TextureUsageCopyDst},
		{gpu.TextureUsageTextureBinding, wgpu.TextureUsageTextureBinding},
		{gpu.TextureUsageStorageBinding, wgpu.TextureUsageStorageBinding},
		{gpu.TextureUsageRenderAttachment, wgpu.TextureUsageRenderAttachment},
	} {
		if u&m.in != 0 {
			out |= m.out
		}
	}
	return out
}

var textureFormats = map[gpu.TextureFormat]wgpu.TextureFormat{
	gpu.TextureFormatR8Unorm:        wgpu.TextureFormatR8Unorm,
	gpu.TextureFormatRG8Unorm:       wgpu.TextureFormatRG8Unorm,
	gpu.TextureFormatRGBA8Unorm:     wgpu.TextureFormatRGBA8Unorm,
	gpu.TextureFormatRGBA8UnormSrgb: wgpu.TextureFormatRGBA8UnormSrgb,
	gpu.TextureFormatBGRA8Unorm:     wgpu.TextureFormatBGRA8Unorm,
	gpu.TextureFormatBGRA8UnormSrgb: wgpu.TextureFormatBGRA8UnormSrgb,
	gpu.TextureFormatR32Float:       wgpu.TextureFormatR32Float,
	gpu.TextureFormatRGBA32Float:    wgpu.TextureFormatRGBA32Float,
	gpu.TextureFormatDepth32Float:   wgpu.TextureFormatDepth32Float,
}

func textureFormat(f gpu.TextureFormat) wgpu.TextureFormat {
	out, ok := textureFormats[f]
	if !ok {
		panic(fmt.Sprintf("wgpu_engine: unsupported texture format %d", f))
	}
	return out
}

func fromTextureFormat(f wgpu.TextureFormat) gpu.TextureFormat {
	for in, out := range textureFormats {
		if out == f {
			return in
		}
	}
	panic(fmt.Sprintf("wgpu_engine: unsupported wgpu texture format %d", f))
}

func textureDimension(d gpu.TextureDimension) wgpu.TextureDimension {
	switch d {
	case gpu.TextureDimension1D:
		return wgpu.TextureDimension1D
	case gpu.TextureDimension2D:
		return wgpu.TextureDimension2D
	case gpu.TextureDimension3D:
		return wgpu.TextureDimension3D
	default:
		panic(fmt.Sprintf("wgpu_engine: unsupported texture dimension %d", d))
	}
}

func textureAspect(a gpu.TextureAspect) wgpu.TextureAspect {
	switch a {
	case gpu.TextureAspectAll:
		return wgpu.TextureAspectAll
	case gpu.TextureAspectStencilOnly:
		return wgpu.TextureAspectStencilOnly
	case gpu.TextureAspectDepthOnly:
		return wgpu.TextureAspectDepthOnly
	default:
		panic(fmt.Sprintf("wgpu_engine: unsupported texture aspect %d", a))
	}
}

func mapMode(m gpu.MapMode) wgpu.MapMode {
	var out wgpu.MapMode
	if m&gpu.MapModeRead != 0 {
		out |= wgpu.MapModeRead
	}
	if m&gpu.MapModeWrite != 0 {
		out |= wgpu.MapModeWrite
	}
	return out
}

func presentMode(m gpu.PresentMode) wgpu.PresentMode {
	switch m {
	case gpu.PresentModeFifo:
		return wgpu.PresentModeFifo
	case gpu.PresentModeMailbox:
		return wgpu.PresentModeMailbox
	case gpu.PresentModeImmediate:
		return wgpu.PresentModeImmediate
	default:
		panic(fmt.Sprintf("wgpu_engine: unsupported present mode %d", m))
	}
}

func addressMode(m gpu.AddressMode) wgpu.AddressMode {
	switch m {
	case gpu.AddressModeClampToEdge:
		return wgpu.AddressModeClampToEdge
	case gpu.AddressModeRepeat:
		return wgpu.AddressModeRepeat
	case gpu.AddressModeMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		panic(fmt.Sprintf("wgpu_engine: unsupported address mode %d", m))
	}
}

func filterMode(m gpu.FilterMode) wgpu.FilterMode {
	switch m {
	case gpu.FilterModeNearest:
		return wgpu.FilterModeNearest
	case gpu.FilterModeLinear:
		return wgpu.FilterModeLinear
	default:
		panic(fmt.Sprintf("wgpu_engine: unsupported filter mode %d", m))
	}
}

func mipmapFilterMode(m gpu.FilterMode) wgpu.MipmapFilterMode {
	switch m {
	case gpu.FilterModeNearest:
		return wgpu.MipmapFilterModeNearest
	case gpu.FilterModeLinear:
		return wgpu.MipmapFilterModeLinear
	default:
		panic(fmt.Sprintf("wgpu_engine: unsupported mipmap filter mode %d", m))
	}
}

func extent(e gpu.Extent3D) wgpu.Extent3D {
	return wgpu.Extent3D{
		Width:              e.Width,
		Height:             e.Height,
		DepthOrArrayLayers: e.DepthOrArrayLayers,
	}
}
