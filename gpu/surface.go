package gpu

import (
	"github.com/edwinsyarief/teishoku"
	"github.com/girder-gfx/girder"
	"go.uber.org/zap"
)

// Surface pipelines. A surface entity carries a window handle, a surface
// configuration and cells for the surface, its per-frame texture and the
// render-attachment view derived from that texture. Losing the current frame
// is a normal lifecycle event: the texture cell drops and the flag tells the
// view pipeline to release its derived view.

// ConfigureSurfaces creates pending surfaces for entities that carry a window
// handle, and reconfigures ready ones whose configuration changed. On first
// creation the format is filled in from the adapter's preference. A changed
// configuration with a zero extent defers reconfiguration, like a degenerate
// texture descriptor.
func ConfigureSurfaces(w *teishoku.World, cx *Context) girder.System {
	f := teishoku.NewFilter3[Window, SurfaceConfig, SurfaceCell](w)
	return func(w *teishoku.World) {
		f.Reset()
		for f.Next() {
			win, config, cell := f.Get()
			if cell.Pending() {
				s := cx.Instance.CreateSurface(win.Handle)
				config.Update(func(c *SurfaceConfiguration) {
					c.Format = cx.Adapter.PreferredFormat(s)
				})
				c := config.Get()
				s.Configure(cx.Device, &c)
				cell.SetReady(s)
				config.SetChanged(false)
				cx.Log.Debug("created surface",
					zap.Uint32("width", c.Width),
					zap.Uint32("height", c.Height))
				continue
			}
			if !config.Changed() {
				continue
			}
			s, ok := cell.Get()
			if !ok {
				continue
			}
			c := config.Get()
			if c.Width == 0 || c.Height == 0 {
				continue
			}
			s.Configure(cx.Device, &c)
			config.SetChanged(false)
			cx.Log.Debug("reconfigured surface",
				zap.Uint32("width", c.Width),
				zap.Uint32("height", c.Height))
		}
	}
}

// AcquireSurfaceTextures fetches the current texture for every ready
// surface, flagging the change for the view pipeline. A failed acquisition
// drops the texture cell instead; dependents release their derived state on
// the same flag.
func AcquireSurfaceTextures(w *teishoku.World, cx *Context) girder.System {
	f := teishoku.NewFilter3[SurfaceCell, SurfaceTextureCell, girder.Flag[SurfaceTextureCell]](w)
	return func(w *teishoku.World) {
		f.Reset()
		for f.Next() {
			surf, texCell, flag := f.Get()
			s, ok := surf.Get()
			if !ok {
				continue
			}
			st, err := s.CurrentTexture()
			if err != nil {
				if texCell.Ready() {
					texCell.SetDropped()
					flag.Set(true)
					cx.Log.Debug("lost surface texture", zap.Error(err))
				}
				continue
			}
			texCell.SetReady(st)
			flag.Set(true)
		}
	}
}

// CreateSurfaceTextureViews keeps the render-attachment view in step with the
// surface texture: a freshly acquired texture gets a new view, a dropped one
// drops the view. Either way the flag is consumed exactly once.
func CreateSurfaceTextureViews(w *teishoku.World, cx *Context) girder.System {
	f := teishoku.NewFilter4[SurfaceTextureCell, girder.Flag[SurfaceTextureCell], girder.Usage[RenderAttachment, TextureViewDesc], girder.Usage[RenderAttachment, TextureViewCell]](w)
	return func(w *teishoku.World) {
		f.Reset()
		for f.Next() {
			texCell, flag, desc, viewCell := f.Get()
			if !flag.Get() {
				continue
			}
			st, ok := texCell.Get()
			if !ok {
				if viewCell.Value.Ready() {
					viewCell.Value.SetDropped()
					cx.Log.Debug("dropped render attachment view")
				}
				flag.Set(false)
				continue
			}
			d := desc.Value.Get()
			viewCell.Value.SetReady(st.Texture().CreateView(&d))
			flag.Set(false)
		}
	}
}

// PresentSurfaceTextures presents every ready surface texture. Presentation
// consumes the frame, so the cell drops and the flag is set; the next
// acquisition revives it.
func PresentSurfaceTextures(w *teishoku.World, cx *Context) girder.System {
	f := teishoku.NewFilter2[SurfaceTextureCell, girder.Flag[SurfaceTextureCell]](w)
	return func(w *teishoku.World) {
		f.Reset()
		for f.Next() {
			texCell, flag := f.Get()
			st, ok := texCell.Get()
			if !ok {
				continue
			}
			st.Present()
			texCell.SetDropped()
			flag.Set(true)
		}
	}
}
