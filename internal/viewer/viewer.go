// Package viewer implements the model viewing session: one episode of
// decoding a catalog model into drawable geometry, normalizing and framing
// it for inspection, running the render loop, and tearing down GPU
// resources deterministically across repeated load/replace/close cycles.
package viewer

import (
	"time"

	"github.com/Faultbox/meshvault/pkg/math"

	"github.com/Faultbox/meshvault/internal/scene"
)

// Surface is the render target binding supplied by the hosting UI. Frame
// callbacks and resize notifications run on the UI's main thread, the same
// execution context the session mutates its scene on.
type Surface interface {
	// Size reports the current drawable size in pixels.
	Size() (w, h int)
	// RequestFrame schedules fn for the next display frame. Each request
	// runs fn at most once; the render loop re-requests every tick.
	RequestFrame(fn func(now time.Time))
	// OnResize subscribes to drawable size changes. The returned cancel
	// detaches the subscription.
	OnResize(fn func(w, h int)) (cancel func())
}

// Frame is everything the renderer needs to draw one tick.
type Frame struct {
	Root       *scene.Node
	View       math.Mat4
	Projection math.Mat4
	CameraPos  math.Vec3
}

// Renderer owns the GPU side of a session: uploading decoded meshes into
// Geometry/Texture handles and drawing the scene.
type Renderer interface {
	// Upload creates GPU resources for every drawable in the subtree,
	// filling in Geometry and material texture handles. On error it
	// releases anything it created, leaving the subtree handle-free.
	Upload(root *scene.Node) error
	Render(f Frame)
	Resize(w, h int)
	Release()
}

// Options are the fixed numeric constants of a session.
type Options struct {
	FOVDegrees     float32
	Near, Far      float32
	TargetSize     float32 // normalized model max dimension, world units
	DistanceFactor float32 // camera distance as a multiple of max dimension
	Background     [3]float32
}

// DefaultOptions returns the viewer defaults.
func DefaultOptions() Options {
	return Options{
		FOVDegrees:     45,
		Near:           0.1,
		Far:            1000,
		TargetSize:     4,
		DistanceFactor: 1.8,
		Background:     [3]float32{0.15, 0.15, 0.2},
	}
}
