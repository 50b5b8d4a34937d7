package decode

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"

	gobj "github.com/flywave/go-obj"

	"github.com/Faultbox/meshvault/internal/scene"
	"github.com/Faultbox/meshvault/pkg/math"
)

// objDecoder parses Wavefront OBJ with optional MTL materials. Faces are
// grouped by material into one drawable each; polygons are fan-triangulated.
type objDecoder struct{}

func (objDecoder) Decode(src *Source) (*scene.Node, error) {
	reader := &gobj.ObjReader{}
	if err := reader.Read(bytes.NewReader(src.Data)); err != nil {
		return nil, fmt.Errorf("obj: %w", err)
	}
	if len(reader.F) == 0 {
		return nil, fmt.Errorf("obj: no faces in %s", src.Locator)
	}

	groups := make(map[string]*scene.MeshData)
	for _, face := range reader.F {
		if len(face.Corners) < 3 {
			continue
		}
		name := face.Material
		mesh, ok := groups[name]
		if !ok {
			mesh = &scene.MeshData{}
			groups[name] = mesh
		}
		for i := 1; i < len(face.Corners)-1; i++ {
			appendOBJTriangle(mesh, reader,
				face.Corners[0], face.Corners[i], face.Corners[i+1])
		}
	}

	materials := objMaterials(reader, src)

	root := scene.NewGroup(filepath.Base(src.Locator))
	for _, name := range sortedGroupNames(groups) {
		mat, ok := materials[name]
		if !ok {
			mat = scene.DefaultMaterial()
		}
		label := name
		if label == "" {
			label = "mesh"
		}
		root.Attach(scene.NewDrawable(label, groups[name], mat))
	}
	return root, nil
}

// appendOBJTriangle expands one triangle into the mesh, resolving corner
// indices against the reader's vertex/texcoord/normal pools. Corners with a
// missing normal index get a flat normal computed from the triangle.
func appendOBJTriangle(mesh *scene.MeshData, reader *gobj.ObjReader, corners ...gobj.FaceCorner) {
	var pos [3]math.Vec3
	for i, c := range corners {
		if c.VertexIndex >= 0 && c.VertexIndex < len(reader.V) {
			v := reader.V[c.VertexIndex]
			pos[i] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
		}
	}
	flat := pos[1].Sub(pos[0]).Cross(pos[2].Sub(pos[0])).Normalize()

	base := uint32(len(mesh.Positions))
	for i, c := range corners {
		mesh.Positions = append(mesh.Positions, pos[i])

		n := flat
		if c.NormalIndex >= 0 && c.NormalIndex < len(reader.VN) {
			vn := reader.VN[c.NormalIndex]
			n = math.Vec3{X: vn[0], Y: vn[1], Z: vn[2]}
		}
		mesh.Normals = append(mesh.Normals, n)

		var uv math.Vec2
		if c.TexCoordIndex >= 0 && c.TexCoordIndex < len(reader.VT) {
			vt := reader.VT[c.TexCoordIndex]
			uv = math.Vec2{X: vt[0], Y: vt[1]}
		}
		mesh.UVs = append(mesh.UVs, uv)

		mesh.Indices = append(mesh.Indices, base+uint32(i))
	}
}

// objMaterials loads the MTL library referenced by the file, when the source
// lives on the filesystem. Remote sources fall back to default materials.
func objMaterials(reader *gobj.ObjReader, src *Source) map[string]*scene.Material {
	out := make(map[string]*scene.Material)
	if reader.MTL == "" || src.Path == "" {
		return out
	}

	mtlPath := reader.MTL
	if !filepath.IsAbs(mtlPath) {
		mtlPath = filepath.Join(filepath.Dir(src.Path), reader.MTL)
	}
	loaded, err := gobj.ReadMaterials(mtlPath)
	if err != nil {
		return out
	}

	baseDir := filepath.Dir(src.Path)
	for name, m := range loaded {
		mat := &scene.Material{Name: name, Color: [4]float32{0.78, 0.78, 0.78, 1}}
		if len(m.Diffuse) >= 3 {
			alpha := float32(m.Opacity)
			if alpha <= 0 {
				alpha = 1
			}
			mat.Color = [4]float32{m.Diffuse[0], m.Diffuse[1], m.Diffuse[2], alpha}
		}
		if m.DiffuseTexture != "" {
			mat.DiffuseImage = loadImageRGBA(filepath.Join(baseDir, m.DiffuseTexture))
		}
		if m.BumpTexture != "" {
			mat.NormalImage = loadImageRGBA(filepath.Join(baseDir, m.BumpTexture))
		}
		out[name] = mat
	}
	return out
}

func sortedGroupNames(groups map[string]*scene.MeshData) []string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// loadImageRGBA reads a texture image from disk. Missing or undecodable
// textures degrade to the material color instead of failing the load.
func loadImageRGBA(path string) *image.RGBA {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}
