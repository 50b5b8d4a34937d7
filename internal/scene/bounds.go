package scene

import (
	gomath "math"

	"github.com/Faultbox/meshvault/pkg/math"
)

// Bounds is an axis-aligned min/max extent in a given coordinate space.
type Bounds struct {
	Min, Max math.Vec3
}

// EmptyBounds returns an inverted extent that any Extend call will replace.
func EmptyBounds() Bounds {
	inf := float32(gomath.Inf(1))
	return Bounds{
		Min: math.Vec3{X: inf, Y: inf, Z: inf},
		Max: math.Vec3{X: -inf, Y: -inf, Z: -inf},
	}
}

// Extend grows the bounds to include p.
func (b *Bounds) Extend(p math.Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Union grows the bounds to include other.
func (b *Bounds) Union(other Bounds) {
	if other.IsEmpty() {
		return
	}
	b.Min = b.Min.Min(other.Min)
	b.Max = b.Max.Max(other.Max)
}

// IsEmpty reports whether the bounds contain no points.
func (b Bounds) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// IsFinite reports whether every coordinate is finite. Empty bounds are not
// finite (the sentinel extremes are infinities).
func (b Bounds) IsFinite() bool {
	return b.Min.IsFinite() && b.Max.IsFinite()
}

// Center returns the midpoint.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extent along each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// MaxDimension returns the largest axis extent.
func (b Bounds) MaxDimension() float32 {
	s := b.Size()
	return max(s.X, max(s.Y, s.Z))
}

// TreeBounds unions the mesh bounds of every drawable in the subtree.
// Decoders bake node transforms into vertex data, so no placement is applied.
func TreeBounds(n *Node) Bounds {
	b := EmptyBounds()
	n.Walk(func(node *Node) {
		if node.Kind == KindDrawable && node.Mesh != nil {
			b.Union(node.Mesh.Bounds())
		}
	})
	return b
}
