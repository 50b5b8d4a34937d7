// Package scene defines the renderable node tree a viewing session displays.
//
// Nodes form a tagged variant over a small set of kinds rather than a
// general-purpose scene graph: groups carry children and a placement,
// drawables carry mesh data plus GPU resource handles, lights and helpers
// carry render hints. Disposal walks this structure explicitly instead of
// shape-sniffing node contents.
package scene

import (
	"image"

	"github.com/Faultbox/meshvault/pkg/math"
)

// Kind identifies what a node is.
type Kind int

const (
	// KindGroup is an interior node holding children and a placement.
	KindGroup Kind = iota
	// KindDrawable holds mesh geometry and materials.
	KindDrawable
	// KindLight contributes to scene lighting.
	KindLight
	// KindHelper is a non-model visual aid (ground grid).
	KindHelper
)

// Node is one entry in the scene tree.
type Node struct {
	Kind Kind
	Name string

	// Placement: uniform scale applied before translation.
	Translation math.Vec3
	Scale       float32

	// KindGroup
	Children []*Node

	// KindDrawable
	Mesh      *MeshData
	Materials []*Material
	Geometry  Geometry // GPU handle, nil until uploaded

	// KindLight
	Light *Light
}

// NewGroup returns an empty group node with identity placement.
func NewGroup(name string) *Node {
	return &Node{Kind: KindGroup, Name: name, Scale: 1}
}

// NewDrawable returns a drawable node for the given mesh and materials.
func NewDrawable(name string, mesh *MeshData, materials ...*Material) *Node {
	return &Node{Kind: KindDrawable, Name: name, Scale: 1, Mesh: mesh, Materials: materials}
}

// NewLight returns a light node.
func NewLight(name string, l Light) *Node {
	return &Node{Kind: KindLight, Name: name, Scale: 1, Light: &l}
}

// NewHelper returns a helper node.
func NewHelper(name string) *Node {
	return &Node{Kind: KindHelper, Name: name, Scale: 1}
}

// Attach appends child to the group.
func (n *Node) Attach(child *Node) {
	n.Children = append(n.Children, child)
}

// Detach removes child from the group. It is a no-op if child is absent.
func (n *Node) Detach(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return
		}
	}
}

// Walk calls fn for n and every descendant, depth first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// LightKind distinguishes light behavior.
type LightKind int

const (
	LightAmbient LightKind = iota
	LightDirectional
)

// Light describes a scene light.
type Light struct {
	Kind      LightKind
	Color     [3]float32
	Intensity float32
	Direction math.Vec3 // directional only, points toward the scene
}

// MeshData is CPU-side triangle geometry produced by a decoder.
type MeshData struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       []math.Vec2
	Indices   []uint32
}

// Bounds returns the axis-aligned extent of the mesh positions.
func (m *MeshData) Bounds() Bounds {
	b := EmptyBounds()
	for _, p := range m.Positions {
		b.Extend(p)
	}
	return b
}

// ComputeFlatNormals fills Normals with per-face normals when the source
// format carries none.
func (m *MeshData) ComputeFlatNormals() {
	m.Normals = make([]math.Vec3, len(m.Positions))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if int(a) >= len(m.Positions) || int(b) >= len(m.Positions) || int(c) >= len(m.Positions) {
			continue
		}
		e1 := m.Positions[b].Sub(m.Positions[a])
		e2 := m.Positions[c].Sub(m.Positions[a])
		n := e1.Cross(e2).Normalize()
		m.Normals[a] = n
		m.Normals[b] = n
		m.Normals[c] = n
	}
}

// Geometry is a GPU-resident buffer set backing a drawable.
type Geometry interface {
	Release()
}

// Texture is a GPU-resident texture.
type Texture interface {
	Release()
}

// TextureSet holds the GPU texture slots a material may occupy. Every
// non-nil slot must be released individually; a single retained slot keeps
// the whole texture resident.
type TextureSet struct {
	Diffuse   Texture
	Normal    Texture
	Roughness Texture
	Emissive  Texture
}

// Slots returns the occupied texture slots.
func (t TextureSet) Slots() []Texture {
	var out []Texture
	for _, tex := range []Texture{t.Diffuse, t.Normal, t.Roughness, t.Emissive} {
		if tex != nil {
			out = append(out, tex)
		}
	}
	return out
}

// Material describes surface appearance for one face group.
type Material struct {
	Name  string
	Color [4]float32

	// Decoded source images, nil for untextured slots.
	DiffuseImage   *image.RGBA
	NormalImage    *image.RGBA
	RoughnessImage *image.RGBA
	EmissiveImage  *image.RGBA

	// GPU handles, populated at upload.
	Textures TextureSet
}

// DefaultMaterial returns a neutral gray material.
func DefaultMaterial() *Material {
	return &Material{Name: "default", Color: [4]float32{0.78, 0.78, 0.78, 1}}
}
