package formats

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

const asciiPLY = `ply
format ascii 1.0
comment exported for testing
element vertex 3
property float x
property float y
property float z
property float nx
property float ny
property float nz
element face 1
property list uchar int vertex_indices
end_header
0 0 0 0 0 1
1 0 0 0 0 1
0 1 0 0 0 1
3 0 1 2
`

func TestParsePLYAscii(t *testing.T) {
	p, err := ParsePLY([]byte(asciiPLY))
	if err != nil {
		t.Fatalf("ParsePLY: %v", err)
	}

	if len(p.Vertices) != 3 {
		t.Fatalf("vertices = %d, want 3", len(p.Vertices))
	}
	if p.Vertices[1] != [3]float32{1, 0, 0} {
		t.Errorf("vertex[1] = %v", p.Vertices[1])
	}
	if len(p.Normals) != 3 || p.Normals[0] != [3]float32{0, 0, 1} {
		t.Errorf("normals = %v", p.Normals)
	}
	if len(p.Faces) != 1 || len(p.Faces[0]) != 3 {
		t.Fatalf("faces = %v", p.Faces)
	}
	if p.Faces[0][2] != 2 {
		t.Errorf("face indices = %v", p.Faces[0])
	}
}

func TestParsePLYBinary(t *testing.T) {
	header := "ply\n" +
		"format binary_little_endian 1.0\n" +
		"element vertex 3\n" +
		"property float x\n" +
		"property float y\n" +
		"property float z\n" +
		"element face 1\n" +
		"property list uchar uint vertex_indices\n" +
		"end_header\n"

	var body bytes.Buffer
	verts := [][3]float32{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}}
	for _, v := range verts {
		for _, f := range v {
			binary.Write(&body, binary.LittleEndian, math.Float32bits(f))
		}
	}
	body.WriteByte(3)
	for _, idx := range []uint32{0, 1, 2} {
		binary.Write(&body, binary.LittleEndian, idx)
	}

	p, err := ParsePLY(append([]byte(header), body.Bytes()...))
	if err != nil {
		t.Fatalf("ParsePLY: %v", err)
	}
	if len(p.Vertices) != 3 || p.Vertices[1] != [3]float32{2, 0, 0} {
		t.Errorf("vertices = %v", p.Vertices)
	}
	if len(p.Normals) != 0 {
		t.Errorf("unexpected normals: %v", p.Normals)
	}
	if len(p.Faces) != 1 || p.Faces[0][1] != 1 {
		t.Errorf("faces = %v", p.Faces)
	}
}

func TestParsePLYQuadFace(t *testing.T) {
	src := `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
1 1 0
0 1 0
4 0 1 2 3
`
	p, err := ParsePLY([]byte(src))
	if err != nil {
		t.Fatalf("ParsePLY: %v", err)
	}
	if len(p.Faces) != 1 || len(p.Faces[0]) != 4 {
		t.Errorf("faces = %v, want one quad", p.Faces)
	}
}

func TestParsePLYErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"no magic", "solid x\nendsolid x\n"},
		{"no end_header", "ply\nformat ascii 1.0\nelement vertex 1\n"},
		{"bad format", "ply\nformat binary_vax 1.0\nelement vertex 0\nend_header\n"},
		{"truncated ascii", "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n"},
		{"bad element count", "ply\nformat ascii 1.0\nelement vertex many\nend_header\n"},
	}
	for _, tc := range cases {
		if _, err := ParsePLY([]byte(tc.data)); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestParsePLYSkipsUnknownElements(t *testing.T) {
	src := `ply
format ascii 1.0
element edge 1
property int vertex1
property int vertex2
element vertex 1
property float x
property float y
property float z
end_header
0 1
5 6 7
`
	p, err := ParsePLY([]byte(src))
	if err != nil {
		t.Fatalf("ParsePLY: %v", err)
	}
	if len(p.Vertices) != 1 || p.Vertices[0] != [3]float32{5, 6, 7} {
		t.Errorf("vertices = %v", p.Vertices)
	}
}
