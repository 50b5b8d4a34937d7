package formats

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ThreeMF holds the merged mesh geometry of a parsed 3MF package.
type ThreeMF struct {
	Vertices  [][3]float32
	Triangles [][3]uint32
}

// threeMFModel mirrors the subset of the 3MF model XML the viewer needs.
// Component references and build transforms are not resolved; object meshes
// are merged as-is since the viewer normalizes placement anyway.
type threeMFModel struct {
	XMLName   xml.Name `xml:"model"`
	Resources struct {
		Objects []struct {
			ID   string `xml:"id,attr"`
			Type string `xml:"type,attr"`
			Mesh *struct {
				Vertices struct {
					Vertex []struct {
						X float32 `xml:"x,attr"`
						Y float32 `xml:"y,attr"`
						Z float32 `xml:"z,attr"`
					} `xml:"vertex"`
				} `xml:"vertices"`
				Triangles struct {
					Triangle []struct {
						V1 uint32 `xml:"v1,attr"`
						V2 uint32 `xml:"v2,attr"`
						V3 uint32 `xml:"v3,attr"`
					} `xml:"triangle"`
				} `xml:"triangles"`
			} `xml:"mesh"`
		} `xml:"object"`
	} `xml:"resources"`
}

// Parse3MF parses a 3MF package (a zip archive holding a model XML part).
func Parse3MF(data []byte) (*ThreeMF, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("3mf: not a zip archive: %w", err)
	}

	part := findModelPart(zr)
	if part == nil {
		return nil, fmt.Errorf("3mf: no model part in archive")
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("3mf: opening %s: %w", part.Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("3mf: reading %s: %w", part.Name, err)
	}

	var model threeMFModel
	if err := xml.Unmarshal(raw, &model); err != nil {
		return nil, fmt.Errorf("3mf: parsing %s: %w", part.Name, err)
	}

	out := &ThreeMF{}
	for _, obj := range model.Resources.Objects {
		if obj.Mesh == nil {
			continue
		}
		// "other" objects are support/slice data, not printable geometry.
		if obj.Type == "other" {
			continue
		}
		base := uint32(len(out.Vertices))
		for _, v := range obj.Mesh.Vertices.Vertex {
			out.Vertices = append(out.Vertices, [3]float32{v.X, v.Y, v.Z})
		}
		for _, t := range obj.Mesh.Triangles.Triangle {
			out.Triangles = append(out.Triangles, [3]uint32{base + t.V1, base + t.V2, base + t.V3})
		}
	}

	if len(out.Vertices) == 0 {
		return nil, fmt.Errorf("3mf: model contains no mesh geometry")
	}
	return out, nil
}

// findModelPart locates the model XML inside the archive, preferring the
// conventional 3D/3dmodel.model path.
func findModelPart(zr *zip.Reader) *zip.File {
	var fallback *zip.File
	for _, f := range zr.File {
		if f.Name == "3D/3dmodel.model" {
			return f
		}
		if fallback == nil && strings.HasSuffix(f.Name, ".model") {
			fallback = f
		}
	}
	return fallback
}
