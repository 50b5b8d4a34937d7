package decode

import (
	"bytes"
	"fmt"

	stl "github.com/flywave/go-stl"
	"github.com/flywave/go3d/vec3"

	"github.com/Faultbox/meshvault/internal/scene"
	"github.com/Faultbox/meshvault/pkg/math"
)

// stlDecoder parses ascii and binary STL. STL carries no materials and no
// shared vertices, so the mesh is expanded triangle soup with facet normals.
type stlDecoder struct{}

func (stlDecoder) Decode(src *Source) (*scene.Node, error) {
	solid, err := stl.ReadAll(bytes.NewReader(src.Data))
	if err != nil {
		return nil, fmt.Errorf("stl: %w", err)
	}
	if len(solid.Triangles) == 0 {
		return nil, fmt.Errorf("stl: no triangles in %s", src.Locator)
	}

	mesh := &scene.MeshData{
		Positions: make([]math.Vec3, 0, len(solid.Triangles)*3),
		Normals:   make([]math.Vec3, 0, len(solid.Triangles)*3),
		Indices:   make([]uint32, 0, len(solid.Triangles)*3),
	}
	for _, tri := range solid.Triangles {
		n := math.Vec3{X: tri.Normal[0], Y: tri.Normal[1], Z: tri.Normal[2]}
		a := vec3FromSTL(tri.Vertices[0])
		b := vec3FromSTL(tri.Vertices[1])
		c := vec3FromSTL(tri.Vertices[2])
		if n.Length() == 0 {
			// Exporters sometimes leave the facet normal zeroed.
			n = b.Sub(a).Cross(c.Sub(a)).Normalize()
		}
		base := uint32(len(mesh.Positions))
		mesh.Positions = append(mesh.Positions, a, b, c)
		mesh.Normals = append(mesh.Normals, n, n, n)
		mesh.Indices = append(mesh.Indices, base, base+1, base+2)
	}

	root := scene.NewGroup(solid.Name)
	root.Attach(scene.NewDrawable("mesh", mesh, scene.DefaultMaterial()))
	return root, nil
}

func vec3FromSTL(v vec3.T) math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}
