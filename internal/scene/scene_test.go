package scene

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/meshvault/pkg/math"
)

func cubeMesh(size float32) *MeshData {
	h := size / 2
	m := &MeshData{
		Positions: []math.Vec3{
			{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h},
			{X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h},
			{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h},
			{X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3, 4, 6, 5, 4, 7, 6},
	}
	return m
}

func TestMeshBounds(t *testing.T) {
	b := cubeMesh(10).Bounds()
	if b.IsEmpty() {
		t.Fatal("cube bounds reported empty")
	}
	if b.Min != (math.Vec3{X: -5, Y: -5, Z: -5}) || b.Max != (math.Vec3{X: 5, Y: 5, Z: 5}) {
		t.Errorf("bounds = %v..%v", b.Min, b.Max)
	}
	if b.Center() != (math.Vec3{}) {
		t.Errorf("center = %v, want origin", b.Center())
	}
	if b.MaxDimension() != 10 {
		t.Errorf("max dimension = %v, want 10", b.MaxDimension())
	}
}

func TestEmptyBounds(t *testing.T) {
	b := EmptyBounds()
	if !b.IsEmpty() {
		t.Error("EmptyBounds not empty")
	}
	if b.IsFinite() {
		t.Error("empty bounds reported finite")
	}

	b.Extend(math.Vec3{X: 1, Y: 2, Z: 3})
	if b.IsEmpty() {
		t.Error("bounds still empty after Extend")
	}
	if !b.IsFinite() {
		t.Error("single-point bounds not finite")
	}
}

func TestBoundsNonFinite(t *testing.T) {
	b := EmptyBounds()
	b.Extend(math.Vec3{X: float32(gomath.NaN())})
	if b.IsFinite() {
		t.Error("NaN bounds reported finite")
	}
}

func TestTreeBounds(t *testing.T) {
	root := NewGroup("model")
	left := cubeMesh(2)
	for i := range left.Positions {
		left.Positions[i].X -= 4
	}
	root.Attach(NewDrawable("left", left, DefaultMaterial()))
	root.Attach(NewDrawable("right", cubeMesh(2), DefaultMaterial()))
	root.Attach(NewLight("ambient", Light{Kind: LightAmbient, Intensity: 1}))

	b := TreeBounds(root)
	if b.Min.X != -5 || b.Max.X != 1 {
		t.Errorf("tree bounds X = %v..%v, want -5..1", b.Min.X, b.Max.X)
	}
}

func TestAttachDetach(t *testing.T) {
	root := NewGroup("root")
	a := NewGroup("a")
	b := NewGroup("b")
	root.Attach(a)
	root.Attach(b)

	root.Detach(a)
	if len(root.Children) != 1 || root.Children[0] != b {
		t.Errorf("children after detach = %v", root.Children)
	}

	// Detaching an absent child is a no-op.
	root.Detach(a)
	if len(root.Children) != 1 {
		t.Errorf("children = %d after double detach", len(root.Children))
	}
}

func TestComputeFlatNormals(t *testing.T) {
	m := &MeshData{
		Positions: []math.Vec3{{}, {X: 1}, {Y: 1}},
		Indices:   []uint32{0, 1, 2},
	}
	m.ComputeFlatNormals()
	want := math.Vec3{Z: 1}
	for i, n := range m.Normals {
		if n != want {
			t.Errorf("normal[%d] = %v, want %v", i, n, want)
		}
	}
}

func TestTextureSetSlots(t *testing.T) {
	var ts TextureSet
	if got := ts.Slots(); len(got) != 0 {
		t.Errorf("empty set slots = %d", len(got))
	}
	ts.Diffuse = fakeTexture{}
	ts.Emissive = fakeTexture{}
	if got := ts.Slots(); len(got) != 2 {
		t.Errorf("slots = %d, want 2", len(got))
	}
}

type fakeTexture struct{}

func (fakeTexture) Release() {}
