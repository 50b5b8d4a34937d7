package viewer

import (
	gomath "math"
	"time"

	"github.com/Faultbox/meshvault/pkg/math"
)

// tick is the per-frame callback. It runs cooperatively on the surface's
// frame scheduler and re-requests itself while the session is running.
// A tick already queued when Dispose lands must observe the stopped flag
// and do nothing rather than touch torn-down state.
func (s *Session) tick(now time.Time) {
	if !s.running {
		return
	}

	var dt float32
	if !s.lastTick.IsZero() {
		dt = float32(now.Sub(s.lastTick).Seconds())
	}
	s.lastTick = now

	s.drainCompletions()
	if !s.running {
		// A completion handler cannot dispose the session today, but the
		// loop must not render after any transition out of Active.
		return
	}

	s.cam.Update(dt)
	s.renderer.Render(Frame{
		Root:       s.root,
		View:       s.cam.ViewMatrix(),
		Projection: math.Perspective(s.opts.FOVDegrees*degToRad, s.aspect, s.opts.Near, s.opts.Far),
		CameraPos:  s.cam.Position(),
	})

	s.surface.RequestFrame(s.tick)
}

const degToRad = float32(gomath.Pi / 180)
