package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/meshvault/pkg/math"
)

func almostEqual(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func TestLookFromRoundTrip(t *testing.T) {
	c := NewOrbit()
	want := math.Vec3{X: 5.04, Y: 3.6, Z: 5.04}
	c.LookFrom(want, math.Vec3{})

	got := c.Position()
	if !almostEqual(got.X, want.X) || !almostEqual(got.Y, want.Y) || !almostEqual(got.Z, want.Z) {
		t.Errorf("Position() = %v, want %v", got, want)
	}

	// Goal state snaps with the visible state, so Update does not drift.
	c.Update(0.016)
	got = c.Position()
	if !almostEqual(got.X, want.X) || !almostEqual(got.Y, want.Y) || !almostEqual(got.Z, want.Z) {
		t.Errorf("Position() after Update = %v, want %v", got, want)
	}
}

func TestLookFromOffsetTarget(t *testing.T) {
	c := NewOrbit()
	target := math.Vec3{X: 1, Y: 2, Z: 3}
	pos := math.Vec3{X: 1, Y: 2, Z: 10}
	c.LookFrom(pos, target)

	if !almostEqual(c.Distance, 7) {
		t.Errorf("Distance = %v, want 7", c.Distance)
	}
	got := c.Position()
	if !almostEqual(got.X, pos.X) || !almostEqual(got.Y, pos.Y) || !almostEqual(got.Z, pos.Z) {
		t.Errorf("Position() = %v, want %v", got, pos)
	}
}

func TestHandleDragClampsPitch(t *testing.T) {
	c := NewOrbit()
	c.HandleDrag(0, 1e6)
	if c.GoalPitch != c.MaxPitch {
		t.Errorf("GoalPitch = %v, want clamp at %v", c.GoalPitch, c.MaxPitch)
	}
	c.HandleDrag(0, -1e7)
	if c.GoalPitch != c.MinPitch {
		t.Errorf("GoalPitch = %v, want clamp at %v", c.GoalPitch, c.MinPitch)
	}
}

func TestHandleZoomClampsDistance(t *testing.T) {
	c := NewOrbit()
	for i := 0; i < 500; i++ {
		c.HandleZoom(10)
	}
	if c.GoalDistance != c.MinDistance {
		t.Errorf("GoalDistance = %v, want clamp at %v", c.GoalDistance, c.MinDistance)
	}
	for i := 0; i < 500; i++ {
		c.HandleZoom(-10)
	}
	if c.GoalDistance != c.MaxDistance {
		t.Errorf("GoalDistance = %v, want clamp at %v", c.GoalDistance, c.MaxDistance)
	}
}

func TestUpdateEasesTowardGoal(t *testing.T) {
	c := NewOrbit()
	start := c.Distance
	c.HandleZoom(5)
	goal := c.GoalDistance

	c.Update(0.016)
	if c.Distance == start {
		t.Error("Update did not move distance toward goal")
	}
	if c.Distance == goal {
		t.Error("Update snapped instead of easing")
	}

	// A large step clamps the easing factor and lands exactly on the goal.
	c.Update(10)
	if !almostEqual(c.Distance, goal) {
		t.Errorf("Distance = %v, want %v after full step", c.Distance, goal)
	}
}

func TestViewMatrixLooksAtTarget(t *testing.T) {
	c := NewOrbit()
	c.LookFrom(math.Vec3{Z: 5}, math.Vec3{})

	v := c.ViewMatrix()
	p := v.TransformPoint(math.Vec3{})
	// The target should land on the -Z axis in view space.
	if !almostEqual(p.X, 0) || !almostEqual(p.Y, 0) || !almostEqual(p.Z, -5) {
		t.Errorf("view-space target = %v, want (0,0,-5)", p)
	}
}
