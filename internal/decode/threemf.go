package decode

import (
	"path/filepath"

	"github.com/Faultbox/meshvault/internal/scene"
	"github.com/Faultbox/meshvault/pkg/formats"
	"github.com/Faultbox/meshvault/pkg/math"
)

// threeMFDecoder wraps the formats 3MF parser. 3MF never carries vertex
// normals, so they are always computed flat.
type threeMFDecoder struct{}

func (threeMFDecoder) Decode(src *Source) (*scene.Node, error) {
	model, err := formats.Parse3MF(src.Data)
	if err != nil {
		return nil, err
	}

	mesh := &scene.MeshData{
		Positions: make([]math.Vec3, len(model.Vertices)),
		Indices:   make([]uint32, 0, len(model.Triangles)*3),
	}
	for i, v := range model.Vertices {
		mesh.Positions[i] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	}
	nv := uint32(len(model.Vertices))
	for _, t := range model.Triangles {
		if t[0] >= nv || t[1] >= nv || t[2] >= nv {
			continue
		}
		mesh.Indices = append(mesh.Indices, t[0], t[1], t[2])
	}
	mesh.ComputeFlatNormals()

	root := scene.NewGroup(filepath.Base(src.Locator))
	root.Attach(scene.NewDrawable("mesh", mesh, scene.DefaultMaterial()))
	return root, nil
}
