package viewer

import (
	"github.com/Faultbox/meshvault/internal/scene"
	"github.com/Faultbox/meshvault/pkg/math"
)

// frameDirection is the fixed oblique offset giving a 3/4 inspection view.
// It is applied unnormalized: position components are exact multiples of
// the framing distance.
var frameDirection = math.Vec3{X: 0.7, Y: 0.5, Z: 0.7}

// Framing is a camera pose: where the eye sits and what it looks at.
type Framing struct {
	Position math.Vec3
	Target   math.Vec3
}

// defaultFraming is the pose used when no model is displayed, looking at
// the world origin from the standard direction.
func defaultFraming(opts Options) Framing {
	d := opts.TargetSize * opts.DistanceFactor
	return Framing{Position: frameDirection.Scale(d)}
}

// frameBounds computes the pose framing the given bounds: target at the
// bounds center, eye offset by maxDimension times the distance factor.
func frameBounds(b scene.Bounds, opts Options) Framing {
	d := b.MaxDimension() * opts.DistanceFactor
	if d <= 0 || !b.IsFinite() {
		return defaultFraming(opts)
	}
	c := b.Center()
	return Framing{
		Target:   c,
		Position: c.Add(frameDirection.Scale(d)),
	}
}
