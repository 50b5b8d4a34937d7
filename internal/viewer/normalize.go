package viewer

import (
	"github.com/Faultbox/meshvault/internal/scene"
	"github.com/Faultbox/meshvault/pkg/math"
)

// Placement is the root transform that makes a model viewable: uniform
// scale to a canonical size, centered on the vertical axis, resting on the
// ground plane.
type Placement struct {
	Translation math.Vec3
	Scale       float32
}

func identityPlacement() Placement {
	return Placement{Scale: 1}
}

// normalizePlacement maps raw model bounds to a canonical placement.
//
// The model is scaled so its largest dimension equals targetSize, centered
// over the origin, and translated so its post-scale minimum y is zero.
// The returned frame bounds are the scaled bounds re-centered on the
// origin; camera framing works against those, so the framing target is the
// model's visual center regardless of the grounding offset.
//
// Empty or non-finite bounds are degenerate: the placement is identity and
// the frame bounds are zero, leaving framing to its default pose.
func normalizePlacement(b scene.Bounds, targetSize float32) (Placement, scene.Bounds, bool) {
	if b.IsEmpty() || !b.IsFinite() {
		return identityPlacement(), scene.Bounds{}, true
	}

	maxDim := b.MaxDimension()
	scale := float32(1)
	if maxDim > 0 && targetSize > 0 {
		scale = targetSize / maxDim
	}

	c := b.Center()
	p := Placement{
		Scale: scale,
		Translation: math.Vec3{
			X: -c.X * scale,
			Y: -b.Min.Y * scale,
			Z: -c.Z * scale,
		},
	}

	frame := scene.Bounds{
		Min: b.Min.Sub(c).Scale(scale),
		Max: b.Max.Sub(c).Scale(scale),
	}
	return p, frame, false
}
