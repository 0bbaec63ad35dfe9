package gpu

import (
	"github.com/edwinsyarief/teishoku"
	"github.com/girder-gfx/girder"
	"go.uber.org/zap"
)

// SubmitCommandBuffers drains every entity's accumulated command buffers into
// the GPU queue. It runs once per frame, after all writes have been issued
// and all belts finished; that ordering is the caller's schedule contract,
// not something checked here.
func SubmitCommandBuffers(w *teishoku.World, cx *Context) girder.System {
	f := teishoku.NewFilter[CommandBuffers](w)
	return func(w *teishoku.World) {
		f.Reset()
		for f.Next() {
			bufs := f.Get().Drain()
			if len(bufs) == 0 {
				continue
			}
			cx.Queue.Submit(bufs...)
			cx.Log.Debug("submitted command buffers", zap.Int("count", len(bufs)))
		}
	}
}
