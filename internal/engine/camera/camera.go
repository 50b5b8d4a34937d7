// Package camera provides the orbit camera the viewing session drives.
package camera

import (
	gomath "math"

	"github.com/Faultbox/meshvault/pkg/math"
)

// Orbit orbits around a target point. Drag and zoom input adjusts goal
// values; Update eases the visible state toward them so camera motion stays
// smooth at any input rate.
type Orbit struct {
	Target math.Vec3

	// Visible spherical coordinates
	Yaw      float32 // horizontal angle, radians
	Pitch    float32 // vertical angle, radians
	Distance float32

	// Goal values the visible state eases toward
	GoalYaw      float32
	GoalPitch    float32
	GoalDistance float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
	Damping         float32 // easing rate, 1/seconds
}

// NewOrbit creates an orbit camera with viewer defaults.
func NewOrbit() *Orbit {
	return &Orbit{
		Yaw:             0.0,
		Pitch:           0.5,
		Distance:        10.0,
		GoalPitch:       0.5,
		GoalDistance:    10.0,
		MinDistance:     0.1,
		MaxDistance:     1000.0,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		Damping:         8.0,
	}
}

// Position returns the camera position in world space.
func (c *Orbit) Position() math.Vec3 {
	x := c.Distance * float32(gomath.Cos(float64(c.Pitch))*gomath.Sin(float64(c.Yaw)))
	y := c.Distance * float32(gomath.Sin(float64(c.Pitch)))
	z := c.Distance * float32(gomath.Cos(float64(c.Pitch))*gomath.Cos(float64(c.Yaw)))

	return math.Vec3{
		X: c.Target.X + x,
		Y: c.Target.Y + y,
		Z: c.Target.Z + z,
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *Orbit) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Target, math.Vec3{X: 0, Y: 1, Z: 0})
}

// HandleDrag updates goal rotation based on mouse drag delta.
func (c *Orbit) HandleDrag(deltaX, deltaY float32) {
	c.GoalYaw -= deltaX * c.DragSensitivity
	c.GoalPitch += deltaY * c.DragSensitivity

	if c.GoalPitch < c.MinPitch {
		c.GoalPitch = c.MinPitch
	}
	if c.GoalPitch > c.MaxPitch {
		c.GoalPitch = c.MaxPitch
	}
}

// HandleZoom updates goal distance based on scroll wheel delta.
func (c *Orbit) HandleZoom(delta float32) {
	c.GoalDistance -= delta * c.GoalDistance * c.ZoomSensitivity
	if c.GoalDistance < c.MinDistance {
		c.GoalDistance = c.MinDistance
	}
	if c.GoalDistance > c.MaxDistance {
		c.GoalDistance = c.MaxDistance
	}
}

// Update eases the visible state toward the goal values. dt is in seconds.
func (c *Orbit) Update(dt float32) {
	t := c.Damping * dt
	if t > 1 {
		t = 1
	}
	c.Yaw += (c.GoalYaw - c.Yaw) * t
	c.Pitch += (c.GoalPitch - c.Pitch) * t
	c.Distance += (c.GoalDistance - c.Distance) * t
}

// LookFrom places the camera at position looking at target, snapping both
// the visible and goal state so there is no easing toward the new pose.
func (c *Orbit) LookFrom(position, target math.Vec3) {
	c.Target = target
	off := position.Sub(target)
	dist := off.Length()
	if dist == 0 {
		dist = c.MinDistance
	}

	c.Distance = dist
	c.Pitch = float32(gomath.Asin(float64(off.Y / dist)))
	c.Yaw = float32(gomath.Atan2(float64(off.X), float64(off.Z)))

	c.GoalDistance = c.Distance
	c.GoalPitch = c.Pitch
	c.GoalYaw = c.Yaw
}
