package decode

import (
	"fmt"
	"path/filepath"

	"github.com/Faultbox/meshvault/internal/scene"
	"github.com/Faultbox/meshvault/pkg/formats"
	"github.com/Faultbox/meshvault/pkg/math"
)

// plyDecoder wraps the formats PLY parser. Polygon faces are
// fan-triangulated; files without normals get flat ones.
type plyDecoder struct{}

func (plyDecoder) Decode(src *Source) (*scene.Node, error) {
	ply, err := formats.ParsePLY(src.Data)
	if err != nil {
		return nil, err
	}
	if len(ply.Vertices) == 0 {
		return nil, fmt.Errorf("ply: no vertices in %s", src.Locator)
	}

	mesh := &scene.MeshData{
		Positions: make([]math.Vec3, len(ply.Vertices)),
	}
	for i, v := range ply.Vertices {
		mesh.Positions[i] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	}
	if len(ply.Normals) == len(ply.Vertices) {
		mesh.Normals = make([]math.Vec3, len(ply.Normals))
		for i, n := range ply.Normals {
			mesh.Normals[i] = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
	}

	nv := uint32(len(ply.Vertices))
	for _, face := range ply.Faces {
		if len(face) < 3 {
			continue
		}
		for i := 1; i < len(face)-1; i++ {
			a, b, c := face[0], face[i], face[i+1]
			if a >= nv || b >= nv || c >= nv {
				continue
			}
			mesh.Indices = append(mesh.Indices, a, b, c)
		}
	}
	if len(mesh.Indices) == 0 {
		return nil, fmt.Errorf("ply: no faces in %s", src.Locator)
	}
	if mesh.Normals == nil {
		mesh.ComputeFlatNormals()
	}

	root := scene.NewGroup(filepath.Base(src.Locator))
	root.Attach(scene.NewDrawable("mesh", mesh, scene.DefaultMaterial()))
	return root, nil
}
