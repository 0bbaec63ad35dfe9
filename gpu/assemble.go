package gpu

import (
	"github.com/edwinsyarief/teishoku"
	"github.com/girder-gfx/girder"
)

// Assembly helpers attach the components a pipeline needs in one call:
// descriptor, pending cell and, for data, the indirect references the write
// pipelines resolve. All mutations go through cmd and take effect at the next
// flush. The target parameters name the entity owning the referenced
// resource; pass the holding entity itself for self-references.

// AssembleBuffer sets up a U-tagged buffer to be created by CreateBuffers.
func AssembleBuffer[U any](cmd *girder.Commands, e teishoku.Entity, desc BufferDescriptor) {
	girder.AddComponent(cmd, e, girder.Tag[U](NewBufferDesc(desc)))
	girder.AddComponent(cmd, e, girder.Tag[U](NewBufferCell()))
}

// AssembleBufferInit sets up a U-tagged buffer created with initial contents.
func AssembleBufferInit[U any](cmd *girder.Commands, e teishoku.Entity, desc BufferInitDescriptor) {
	girder.AddComponent(cmd, e, girder.Tag[U](NewBufferInitDesc(desc)))
	girder.AddComponent(cmd, e, girder.Tag[U](NewBufferCell()))
}

// AssembleBufferData attaches CPU data, dirty, to be direct-written at offset
// into the U-tagged buffer owned by target.
func AssembleBufferData[U any, T ToBytes](cmd *girder.Commands, e teishoku.Entity, data T, offset uint64, target teishoku.Entity) {
	girder.AddComponent(cmd, e, NewData(data))
	girder.AddComponent(cmd, e, girder.Tag[U](BufferWrite[T]{Offset: offset}))
	girder.AddComponent(cmd, e, girder.On[girder.Usage[U, BufferCell]](target))
}

// AssembleTexture sets up a U-tagged texture to be created by CreateTextures.
func AssembleTexture[U any](cmd *girder.Commands, e teishoku.Entity, desc TextureDescriptor) {
	girder.AddComponent(cmd, e, girder.Tag[U](NewTextureDesc(desc)))
	girder.AddComponent(cmd, e, girder.Tag[U](NewTextureCell()))
}

// AssembleTextureData attaches texel data, dirty, to be direct-written into
// the U-tagged texture owned by target. The copy extent is read from
// target's texture descriptor at write time.
func AssembleTextureData[U any, T ToBytes](cmd *girder.Commands, e teishoku.Entity, data T, cp ImageCopy, layout ImageDataLayout, target teishoku.Entity) {
	girder.AddComponent(cmd, e, NewData(data))
	girder.AddComponent(cmd, e, girder.Tag[U](TextureWrite[T]{Copy: cp, Layout: layout}))
	girder.AddComponent(cmd, e, girder.On[girder.Usage[U, TextureDesc]](target))
	girder.AddComponent(cmd, e, girder.On[girder.Usage[U, TextureCell]](target))
}

// AssembleTextureView sets up a U-tagged view over the U-tagged texture owned
// by texture.
func AssembleTextureView[U any](cmd *girder.Commands, e teishoku.Entity, desc TextureViewDescriptor, texture teishoku.Entity) {
	girder.AddComponent(cmd, e, girder.Tag[U](NewTextureViewDesc(desc)))
	girder.AddComponent(cmd, e, girder.Tag[U](NewTextureViewCell()))
	girder.AddComponent(cmd, e, girder.On[girder.Usage[U, TextureCell]](texture))
}

// AssembleSampler sets up a U-tagged sampler.
func AssembleSampler[U any](cmd *girder.Commands, e teishoku.Entity, desc SamplerDescriptor) {
	girder.AddComponent(cmd, e, girder.Tag[U](NewSamplerDesc(desc)))
	girder.AddComponent(cmd, e, girder.Tag[U](NewSamplerCell()))
}

// AssembleShader sets up a U-tagged WGSL shader module.
func AssembleShader[U any](cmd *girder.Commands, e teishoku.Entity, desc ShaderModuleDescriptor) {
	girder.AddComponent(cmd, e, girder.Tag[U](NewShaderModuleDesc(desc)))
	girder.AddComponent(cmd, e, girder.Tag[U](NewShaderModuleCell()))
}

// AssembleShaderSPIRV sets up a U-tagged shader module from precompiled
// SPIR-V.
func AssembleShaderSPIRV[U any](cmd *girder.Commands, e teishoku.Entity, desc ShaderModuleSPIRVDescriptor) {
	girder.AddComponent(cmd, e, girder.Tag[U](NewShaderModuleSPIRVDesc(desc)))
	girder.AddComponent(cmd, e, girder.Tag[U](NewShaderModuleCell()))
}

// AssembleSurface extends a window entity with everything needed to render
// to it: the surface and per-frame texture cells and the render-attachment
// view derived from the current texture. The configuration's format is
// filled in from the adapter when the surface is created.
func AssembleSurface(cmd *girder.Commands, e teishoku.Entity, window WindowHandle, config SurfaceConfiguration) {
	girder.AddComponent(cmd, e, Window{Handle: window})
	girder.AddComponent(cmd, e, NewSurfaceConfig(config))
	girder.AddComponent(cmd, e, NewSurfaceCell())
	girder.AddComponent(cmd, e, NewSurfaceTextureCell())
	girder.AddComponent(cmd, e, girder.NewFlag[SurfaceTextureCell](false))
	girder.AddComponent(cmd, e, girder.Tag[RenderAttachment](NewTextureViewDesc(TextureViewDescriptor{})))
	girder.AddComponent(cmd, e, girder.Tag[RenderAttachment](NewTextureViewCell()))
}

// AssembleCommandBuffers gives e a per-frame command buffer queue.
func AssembleCommandBuffers(cmd *girder.Commands, e teishoku.Entity) {
	girder.AddComponent(cmd, e, NewCommandBuffers())
}

// AssembleStagingBelt sets up a U-tagged belt, created lazily on first
// encounter, plus the flag that drives its finish/recall bookkeeping.
func AssembleStagingBelt[U any](cmd *girder.Commands, e teishoku.Entity, chunkSize uint64) {
	girder.AddComponent(cmd, e, girder.Tag[U](NewStagingBelt(chunkSize)))
	girder.AddComponent(cmd, e, girder.NewFlag[girder.Usage[U, StagingBelt]](false))
}

// AssembleStagingBeltData attaches CPU data, dirty, to be staged through the
// U-tagged belt owned by target into the U-tagged buffer owned by target,
// recording command buffers on target's queue.
func AssembleStagingBeltData[U any, T ToBytes](cmd *girder.Commands, e teishoku.Entity, data T, offset, size uint64, target teishoku.Entity) {
	girder.AddComponent(cmd, e, NewData(data))
	girder.AddComponent(cmd, e, girder.Tag[U](StagingBeltWrite[T]{Offset: offset, Size: size}))
	girder.AddComponent(cmd, e, girder.On[girder.Usage[U, StagingBelt]](target))
	girder.AddComponent(cmd, e, girder.On[girder.Flag[girder.Usage[U, StagingBelt]]](target))
	girder.AddComponent(cmd, e, girder.On[girder.Usage[U, BufferCell]](target))
	girder.AddComponent(cmd, e, girder.On[CommandBuffers](target))
}
