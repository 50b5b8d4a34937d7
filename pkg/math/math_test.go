package math

import (
	gomath "math"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 0}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}

	// Zero vector stays zero instead of producing NaN.
	if z := (Vec3{}).Normalize(); z != (Vec3{}) {
		t.Errorf("zero Normalize() = %v, want zero", z)
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, 2, -4}
	if got := a.Min(b); got != (Vec3{1, 2, -4}) {
		t.Errorf("Min = %v", got)
	}
	if got := a.Max(b); got != (Vec3{3, 5, -2}) {
		t.Errorf("Max = %v", got)
	}
}

func TestVec3IsFinite(t *testing.T) {
	nan := float32(gomath.NaN())
	inf := float32(gomath.Inf(1))

	cases := []struct {
		name string
		v    Vec3
		want bool
	}{
		{"finite", Vec3{1, 2, 3}, true},
		{"nan", Vec3{nan, 0, 0}, false},
		{"inf", Vec3{0, inf, 0}, false},
		{"neg inf", Vec3{0, 0, -inf}, false},
	}
	for _, tc := range cases {
		if got := tc.v.IsFinite(); got != tc.want {
			t.Errorf("%s: IsFinite() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMat4TranslateScale(t *testing.T) {
	m := Translate(1, 2, 3).Mul(Scale(2))
	got := m.TransformPoint(Vec3{1, 1, 1})
	want := Vec3{3, 4, 5}
	if got != want {
		t.Errorf("TransformPoint = %v, want %v", got, want)
	}
}

func TestLookAtEyeMapsToOrigin(t *testing.T) {
	eye := Vec3{5, 3, 5}
	view := LookAt(eye, Vec3{}, Vec3{Y: 1})
	got := view.TransformPoint(eye)
	if got.Length() > 1e-5 {
		t.Errorf("eye transformed to %v, want origin", got)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	proj := Perspective(0.785398, 16.0/9.0, 0.1, 1000)

	// A point on the near plane maps to NDC z = -1.
	near := proj.TransformPoint(Vec3{0, 0, -0.1})
	if near.Z < -1.001 || near.Z > -0.999 {
		t.Errorf("near plane z = %v, want -1", near.Z)
	}

	// A point on the far plane maps to NDC z = +1.
	far := proj.TransformPoint(Vec3{0, 0, -1000})
	if far.Z < 0.999 || far.Z > 1.001 {
		t.Errorf("far plane z = %v, want 1", far.Z)
	}
}
