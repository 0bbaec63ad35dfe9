package gpu

import (
	"github.com/edwinsyarief/teishoku"
	"github.com/girder-gfx/girder"
	"go.uber.org/zap"
)

// Creation pipelines. Every resource kind follows the same decision rule: do
// the work if the cell is still pending or the descriptor changed, clear the
// descriptor flag in the same step, otherwise no-op. Pipelines for distinct
// kinds and distinct usage tags touch disjoint components and may run in the
// same parallel phase.
//
// Each constructor builds its world filter up front, on the composing
// goroutine: the first filter over a component type registers that type in
// the world, which is not synchronized. A system must be run against the
// world it was composed for.

// CreateBuffers creates pending U-tagged buffers, recreating them when their
// descriptor has changed.
func CreateBuffers[U any](w *teishoku.World, cx *Context) girder.System {
	f := teishoku.NewFilter2[girder.Usage[U, BufferDesc], girder.Usage[U, BufferCell]](w)
	return func(w *teishoku.World) {
		f.Reset()
		for f.Next() {
			desc, cell := f.Get()
			if !cell.Value.Pending() && !desc.Value.Changed() {
				continue
			}
			d := desc.Value.Get()
			cell.Value.SetReady(cx.Device.CreateBuffer(&d))
			desc.Value.SetChanged(false)
			cx.Log.Debug("created buffer",
				zap.String("usage", girder.UsageName[U]()),
				zap.String("label", d.Label),
				zap.Uint64("size", d.Size))
		}
	}
}

// CreateBuffersInit creates pending U-tagged buffers holding their initial
// contents.
func CreateBuffersInit[U any](w *teishoku.World, cx *Context) girder.System {
	f := teishoku.NewFilter2[girder.Usage[U, BufferInitDesc], girder.Usage[U, BufferCell]](w)
	return func(w *teishoku.World) {
		f.Reset()
		for f.Next() {
			desc, cell := f.Get()
			if !cell.Value.Pending() && !desc.Value.Changed() {
				continue
			}
			d := desc.Value.Get()
			cell.Value.SetReady(cx.Device.CreateBufferInit(&d))
			desc.Value.SetChanged(false)
			cx.Log.Debug("create-initialized buffer",
				zap.String("usage", girder.UsageName[U]()),
				zap.String("label", d.Label),
				zap.Int("size", len(d.Contents)))
		}
	}
}

// CreateTextures creates pending U-tagged textures. A descriptor with a zero
// dimension defers creation to a later frame without clearing the changed
// flag; that is a policy guard, not an error.
func CreateTextures[U any](w *teishoku.World, cx *Context) girder.System {
	f := teishoku.NewFilter2[girder.Usage[U, TextureDesc], girder.Usage[U, TextureCell]](w)
	return func(w *teishoku.World) {
		f.Reset()
		for f.Next() {
			desc, cell := f.Get()
			if !cell.Value.Pending() && !desc.Value.Changed() {
				continue
			}
			d := desc.Value.Get()
			if d.Size.Degenerate() {
				continue
			}
			cell.Value.SetReady(cx.Device.CreateTexture(&d))
			desc.Value.SetChanged(false)
			cx.Log.Debug("created texture",
				zap.String("usage", girder.UsageName[U]()),
				zap.String("label", d.Label),
				zap.Uint32("width", d.Size.Width),
				zap.Uint32("height", d.Size.Height))
		}
	}
}

// CreateTextureViews creates pending U-tagged texture views. The source
// texture is resolved through an indirect reference and the view waits, as a
// no-op, until that texture's cell is ready.
func CreateTextureViews[U any](w *teishoku.World, cx *Context) girder.System {
	f := teishoku.NewFilter3[girder.Indirect[girder.Usage[U, TextureCell]], girder.Usage[U, TextureViewDesc], girder.Usage[U, TextureViewCell]](w)
	return func(w *teishoku.World) {
		f.Reset()
		for f.Next() {
			texRef, desc, cell := f.Get()
			if !cell.Value.Pending() && !desc.Value.Changed() {
				continue
			}
			tex := girder.Resolve(w, *texRef)
			t, ok := tex.Value.Get()
			if !ok {
				continue
			}
			d := desc.Value.Get()
			cell.Value.SetReady(t.CreateView(&d))
			desc.Value.SetChanged(false)
			cx.Log.Debug("created texture view",
				zap.String("usage", girder.UsageName[U]()),
				zap.String("label", d.Label))
		}
	}
}

// CreateSamplers creates pending U-tagged samplers.
func CreateSamplers[U any](w *teishoku.World, cx *Context) girder.System {
	f := teishoku.NewFilter2[girder.Usage[U, SamplerDesc], girder.Usage[U, SamplerCell]](w)
	return func(w *teishoku.World) {
		f.Reset()
		for f.Next() {
			desc, cell := f.Get()
			if !cell.Value.Pending() && !desc.Value.Changed() {
				continue
			}
			d := desc.Value.Get()
			cell.Value.SetReady(cx.Device.CreateSampler(&d))
			desc.Value.SetChanged(false)
			cx.Log.Debug("created sampler",
				zap.String("usage", girder.UsageName[U]()),
				zap.String("label", d.Label))
		}
	}
}

// CreateShaderModules compiles pending U-tagged WGSL shader modules.
func CreateShaderModules[U any](w *teishoku.World, cx *Context) girder.System {
	f := teishoku.NewFilter2[girder.Usage[U, ShaderModuleDesc], girder.Usage[U, ShaderModuleCell]](w)
	return func(w *teishoku.World) {
		f.Reset()
		for f.Next() {
			desc, cell := f.Get()
			if !cell.Value.Pending() && !desc.Value.Changed() {
				continue
			}
			d := desc.Value.Get()
			cell.Value.SetReady(cx.Device.CreateShaderModule(&d))
			desc.Value.SetChanged(false)
			cx.Log.Debug("created shader module",
				zap.String("usage", girder.UsageName[U]()),
				zap.String("label", d.Label))
		}
	}
}

// CreateShaderModulesSPIRV creates pending U-tagged shader modules from
// precompiled SPIR-V.
func CreateShaderModulesSPIRV[U any](w *teishoku.World, cx *Context) girder.System {
	f := teishoku.NewFilter2[girder.Usage[U, ShaderModuleSPIRVDesc], girder.Usage[U, ShaderModuleCell]](w)
	return func(w *teishoku.World) {
		f.Reset()
		for f.Next() {
			desc, cell := f.Get()
			if !cell.Value.Pending() && !desc.Value.Changed() {
				continue
			}
			d := desc.Value.Get()
			cell.Value.SetReady(cx.Device.CreateShaderModuleSPIRV(&d))
			desc.Value.SetChanged(false)
			cx.Log.Debug("created SPIR-V shader module",
				zap.String("usage", girder.UsageName[U]()),
				zap.String("label", d.Label))
		}
	}
}
