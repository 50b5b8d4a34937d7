package decode

import (
	"bytes"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/meshvault/internal/scene"
	"github.com/Faultbox/meshvault/pkg/math"
)

// gltfDecoder handles both the JSON (.gltf) and binary (.glb) containers.
// Node transforms are baked into vertex positions while walking the scene
// graph, so the resulting drawables need no per-node matrices.
type gltfDecoder struct{}

func (gltfDecoder) Decode(src *Source) (*scene.Node, error) {
	var doc *gltf.Document
	var err error
	if src.Path != "" {
		// Open resolves external buffers and images next to the file.
		doc, err = gltf.Open(src.Path)
	} else {
		doc = new(gltf.Document)
		err = gltf.NewDecoder(bytes.NewReader(src.Data)).Decode(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("gltf: %w", err)
	}

	root := scene.NewGroup(src.Locator)
	for _, idx := range gltfSceneRoots(doc) {
		if err := walkGLTFNode(doc, idx, gltfIdentity, root); err != nil {
			return nil, err
		}
	}

	if len(root.Children) == 0 {
		return nil, fmt.Errorf("gltf: no mesh geometry in %s", src.Locator)
	}
	return root, nil
}

func gltfSceneRoots(doc *gltf.Document) []int {
	scn := -1
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		scn = int(*doc.Scene)
	} else if len(doc.Scenes) > 0 {
		scn = 0
	}
	if scn >= 0 {
		roots := make([]int, 0, len(doc.Scenes[scn].Nodes))
		for _, n := range doc.Scenes[scn].Nodes {
			roots = append(roots, int(n))
		}
		return roots
	}
	// No scene declared: treat every node as a root. Child nodes get visited
	// twice in pathological files, which is harmless for viewing.
	roots := make([]int, len(doc.Nodes))
	for i := range doc.Nodes {
		roots[i] = i
	}
	return roots
}

func walkGLTFNode(doc *gltf.Document, idx int, parent gltfMat, root *scene.Node) error {
	if idx < 0 || idx >= len(doc.Nodes) {
		return nil
	}
	n := doc.Nodes[idx]
	world := parent.mul(gltfLocalMatrix(n))

	if n.Mesh != nil && int(*n.Mesh) < len(doc.Meshes) {
		if err := appendGLTFMesh(doc, doc.Meshes[int(*n.Mesh)], world, root); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := walkGLTFNode(doc, int(c), world, root); err != nil {
			return err
		}
	}
	return nil
}

func appendGLTFMesh(doc *gltf.Document, mh *gltf.Mesh, world gltfMat, root *scene.Node) error {
	for _, prim := range mh.Primitives {
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("gltf: reading positions: %w", err)
		}

		var normals [][3]float32
		if nIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = modeler.ReadNormal(doc, doc.Accessors[nIdx], nil)
			if err != nil {
				normals = nil
			}
		}
		var uvs [][2]float32
		if tIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[tIdx], nil)
			if err != nil {
				uvs = nil
			}
		}

		mesh := &scene.MeshData{
			Positions: make([]math.Vec3, len(positions)),
		}
		for i, p := range positions {
			mesh.Positions[i] = world.transformPoint(p)
		}
		if normals != nil {
			mesh.Normals = make([]math.Vec3, len(positions))
			for i := range positions {
				if i < len(normals) {
					mesh.Normals[i] = world.transformDir(normals[i])
				}
			}
		}
		if uvs != nil {
			mesh.UVs = make([]math.Vec2, len(positions))
			for i := range positions {
				if i < len(uvs) {
					mesh.UVs[i] = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
				}
			}
		}

		if prim.Indices != nil {
			indices, err := modeler.ReadIndices(doc, doc.Accessors[int(*prim.Indices)], nil)
			if err != nil {
				return fmt.Errorf("gltf: reading indices: %w", err)
			}
			mesh.Indices = indices
		} else {
			mesh.Indices = make([]uint32, len(positions))
			for i := range mesh.Indices {
				mesh.Indices[i] = uint32(i)
			}
		}
		if mesh.Normals == nil {
			mesh.ComputeFlatNormals()
		}

		name := mh.Name
		if name == "" {
			name = "mesh"
		}
		root.Attach(scene.NewDrawable(name, mesh, gltfMaterial(doc, prim)))
	}
	return nil
}

func gltfMaterial(doc *gltf.Document, prim *gltf.Primitive) *scene.Material {
	mat := scene.DefaultMaterial()
	if prim.Material == nil || int(*prim.Material) >= len(doc.Materials) {
		return mat
	}
	mt := doc.Materials[int(*prim.Material)]
	if mt.Name != "" {
		mat.Name = mt.Name
	}
	if mt.PBRMetallicRoughness != nil && mt.PBRMetallicRoughness.BaseColorFactor != nil {
		f := mt.PBRMetallicRoughness.BaseColorFactor
		mat.Color = [4]float32{float32(f[0]), float32(f[1]), float32(f[2]), float32(f[3])}
	}
	return mat
}

// gltfMat is a column-major 4x4 matrix matching the glTF layout. Kept local
// and in float64 so accumulated node transforms do not lose precision before
// they are baked into float32 positions.
type gltfMat [16]float64

var gltfIdentity = gltfMat{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// gltfLocalMatrix returns the node's local transform. A node carries either
// an explicit matrix or a TRS triple; zero-valued TRS fields read as their
// glTF defaults. Node fields are float32 arrays and are widened per
// component here.
func gltfLocalMatrix(n *gltf.Node) gltfMat {
	var m gltfMat
	for i, v := range n.Matrix {
		m[i] = float64(v)
	}
	if m != (gltfMat{}) && m != gltfIdentity {
		return m
	}

	var t [3]float64
	for i, v := range n.Translation {
		t[i] = float64(v)
	}
	var r [4]float64
	for i, v := range n.Rotation {
		r[i] = float64(v)
	}
	var s [3]float64
	for i, v := range n.Scale {
		s[i] = float64(v)
	}
	if r == ([4]float64{}) {
		r = [4]float64{0, 0, 0, 1}
	}
	if s == ([3]float64{}) {
		s = [3]float64{1, 1, 1}
	}

	x, y, z, w := r[0], r[1], r[2], r[3]
	// M = T * R * S, column-major.
	return gltfMat{
		(1 - 2*(y*y+z*z)) * s[0], (2 * (x*y + z*w)) * s[0], (2 * (x*z - y*w)) * s[0], 0,
		(2 * (x*y - z*w)) * s[1], (1 - 2*(x*x+z*z)) * s[1], (2 * (y*z + x*w)) * s[1], 0,
		(2 * (x*z + y*w)) * s[2], (2 * (y*z - x*w)) * s[2], (1 - 2*(x*x+y*y)) * s[2], 0,
		t[0], t[1], t[2], 1,
	}
}

func (m gltfMat) mul(o gltfMat) gltfMat {
	var out gltfMat
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += m[k*4+r] * o[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}

func (m gltfMat) transformPoint(v [3]float32) math.Vec3 {
	x, y, z := float64(v[0]), float64(v[1]), float64(v[2])
	return math.Vec3{
		X: float32(m[0]*x + m[4]*y + m[8]*z + m[12]),
		Y: float32(m[1]*x + m[5]*y + m[9]*z + m[13]),
		Z: float32(m[2]*x + m[6]*y + m[10]*z + m[14]),
	}
}

func (m gltfMat) transformDir(v [3]float32) math.Vec3 {
	x, y, z := float64(v[0]), float64(v[1]), float64(v[2])
	d := math.Vec3{
		X: float32(m[0]*x + m[4]*y + m[8]*z),
		Y: float32(m[1]*x + m[5]*y + m[9]*z),
		Z: float32(m[2]*x + m[6]*y + m[10]*z),
	}
	return d.Normalize()
}
