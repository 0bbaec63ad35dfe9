package gpu

import (
	"github.com/edwinsyarief/teishoku"
	"github.com/girder-gfx/girder"
	"go.uber.org/zap"
)

// Write pipelines move changed CPU-side data into ready GPU objects. A write
// whose target cell is not ready yet is deferred: the data's changed flag
// stays set and the write is retried on a later frame.

// WriteBuffers writes changed T values into their U-tagged target buffer via
// an immediate queue write. Preferred for large or infrequent transfers.
func WriteBuffers[U any, T ToBytes](w *teishoku.World, cx *Context) girder.System {
	f := teishoku.NewFilter3[girder.Usage[U, BufferWrite[T]], Data[T], girder.Indirect[girder.Usage[U, BufferCell]]](w)
	return func(w *teishoku.World) {
		f.Reset()
		for f.Next() {
			wr, data, bufRef := f.Get()
			if !data.Changed() {
				continue
			}
			buf := girder.Resolve(w, *bufRef)
			b, ok := buf.Value.Get()
			if !ok {
				continue
			}
			bytes := data.Get().Bytes()
			cx.Queue.WriteBuffer(b, wr.Value.Offset, bytes)
			data.SetChanged(false)
			cx.Log.Debug("wrote buffer",
				zap.String("usage", girder.UsageName[U]()),
				zap.Uint64("offset", wr.Value.Offset),
				zap.Int("bytes", len(bytes)))
		}
	}
}

// WriteTextures writes changed T values into their U-tagged target texture
// via an immediate queue write. The copy extent comes from the texture's
// descriptor, resolved through a second indirect reference; a descriptor that
// is still flagged changed at write time has diverged from the live texture,
// which the creation phase ordering is supposed to prevent, so that case
// panics.
func WriteTextures[U any, T ToBytes](w *teishoku.World, cx *Context) girder.System {
	f := teishoku.NewFilter4[girder.Usage[U, TextureWrite[T]], Data[T], girder.Indirect[girder.Usage[U, TextureDesc]], girder.Indirect[girder.Usage[U, TextureCell]]](w)
	return func(w *teishoku.World) {
		f.Reset()
		for f.Next() {
			wr, data, descRef, texRef := f.Get()
			if !data.Changed() {
				continue
			}
			tex := girder.Resolve(w, *texRef)
			t, ok := tex.Value.Get()
			if !ok {
				continue
			}
			desc := girder.Resolve(w, *descRef)
			if desc.Value.Changed() {
				panic("gpu: texture descriptor changed without recreation before write")
			}
			d := desc.Value.Get()
			bytes := data.Get().Bytes()
			cp := wr.Value.Copy
			cx.Queue.WriteTexture(ImageCopyTexture{
				Texture:  t,
				MipLevel: cp.MipLevel,
				Origin:   cp.Origin,
				Aspect:   cp.Aspect,
			}, bytes, wr.Value.Layout, d.Size)
			data.SetChanged(false)
			cx.Log.Debug("wrote texture",
				zap.String("usage", girder.UsageName[U]()),
				zap.Uint64("offset", wr.Value.Layout.Offset),
				zap.Int("bytes", len(bytes)))
		}
	}
}
