package formats

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PLY holds the geometry of a parsed Stanford polygon file.
type PLY struct {
	Vertices [][3]float32
	Normals  [][3]float32 // empty when the file carries no normals
	Faces    [][]uint32   // polygon vertex indices, not yet triangulated
}

// plyProperty is one declared property of an element.
type plyProperty struct {
	name      string
	typ       string // scalar type, or the index type for lists
	list      bool
	countType string // list count type
}

// plyElement is one declared element with its property layout.
type plyElement struct {
	name  string
	count int
	props []plyProperty
}

var plyTypeSize = map[string]int{
	"char": 1, "int8": 1,
	"uchar": 1, "uint8": 1,
	"short": 2, "int16": 2,
	"ushort": 2, "uint16": 2,
	"int": 4, "int32": 4,
	"uint": 4, "uint32": 4,
	"float": 4, "float32": 4,
	"double": 8, "float64": 8,
}

// ParsePLY parses an ascii or binary PLY file.
func ParsePLY(data []byte) (*PLY, error) {
	headerEnd := bytes.Index(data, []byte("end_header"))
	if headerEnd < 0 {
		return nil, fmt.Errorf("ply: missing end_header")
	}
	// Body starts after the end_header line's newline.
	bodyStart := headerEnd + len("end_header")
	for bodyStart < len(data) && data[bodyStart] != '\n' {
		bodyStart++
	}
	bodyStart++

	header := string(data[:headerEnd])
	lines := strings.Split(strings.ReplaceAll(header, "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "ply" {
		return nil, fmt.Errorf("ply: bad magic")
	}

	format := ""
	var elements []*plyElement
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "comment", "obj_info":
			continue
		case "format":
			if len(fields) < 2 {
				return nil, fmt.Errorf("ply: malformed format line %q", line)
			}
			format = fields[1]
		case "element":
			if len(fields) < 3 {
				return nil, fmt.Errorf("ply: malformed element line %q", line)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("ply: bad element count in %q", line)
			}
			elements = append(elements, &plyElement{name: fields[1], count: n})
		case "property":
			if len(elements) == 0 {
				return nil, fmt.Errorf("ply: property before element")
			}
			el := elements[len(elements)-1]
			if len(fields) >= 5 && fields[1] == "list" {
				el.props = append(el.props, plyProperty{
					name: fields[4], typ: fields[3], list: true, countType: fields[2],
				})
			} else if len(fields) >= 3 {
				el.props = append(el.props, plyProperty{name: fields[2], typ: fields[1]})
			} else {
				return nil, fmt.Errorf("ply: malformed property line %q", line)
			}
		}
	}

	switch format {
	case "ascii":
		return parsePLYAscii(data[bodyStart:], elements)
	case "binary_little_endian":
		return parsePLYBinary(data[bodyStart:], elements, binary.LittleEndian)
	case "binary_big_endian":
		return parsePLYBinary(data[bodyStart:], elements, binary.BigEndian)
	default:
		return nil, fmt.Errorf("ply: unsupported format %q", format)
	}
}

func parsePLYAscii(body []byte, elements []*plyElement) (*PLY, error) {
	out := &PLY{}
	fields := strings.Fields(string(body))
	pos := 0

	next := func() (string, error) {
		if pos >= len(fields) {
			return "", fmt.Errorf("ply: unexpected end of data")
		}
		f := fields[pos]
		pos++
		return f, nil
	}

	for _, el := range elements {
		for i := 0; i < el.count; i++ {
			var vert, norm [3]float32
			hasNorm := false
			for _, p := range el.props {
				if p.list {
					cf, err := next()
					if err != nil {
						return nil, err
					}
					n, err := strconv.Atoi(cf)
					if err != nil || n < 0 {
						return nil, fmt.Errorf("ply: bad list count %q", cf)
					}
					idx := make([]uint32, n)
					for j := 0; j < n; j++ {
						vf, err := next()
						if err != nil {
							return nil, err
						}
						v, err := strconv.ParseUint(vf, 10, 32)
						if err != nil {
							return nil, fmt.Errorf("ply: bad index %q", vf)
						}
						idx[j] = uint32(v)
					}
					if el.name == "face" && (p.name == "vertex_indices" || p.name == "vertex_index") {
						out.Faces = append(out.Faces, idx)
					}
					continue
				}

				sf, err := next()
				if err != nil {
					return nil, err
				}
				v, err := strconv.ParseFloat(sf, 64)
				if err != nil {
					return nil, fmt.Errorf("ply: bad scalar %q", sf)
				}
				storePLYScalar(el.name, p.name, float32(v), &vert, &norm, &hasNorm)
			}
			if el.name == "vertex" {
				out.Vertices = append(out.Vertices, vert)
				if hasNorm {
					out.Normals = append(out.Normals, norm)
				}
			}
		}
	}
	return out, nil
}

func parsePLYBinary(body []byte, elements []*plyElement, order binary.ByteOrder) (*PLY, error) {
	out := &PLY{}
	pos := 0

	readScalar := func(typ string) (float64, error) {
		size, ok := plyTypeSize[typ]
		if !ok {
			return 0, fmt.Errorf("ply: unknown type %q", typ)
		}
		if pos+size > len(body) {
			return 0, fmt.Errorf("ply: truncated data")
		}
		raw := body[pos : pos+size]
		pos += size
		switch typ {
		case "char", "int8":
			return float64(int8(raw[0])), nil
		case "uchar", "uint8":
			return float64(raw[0]), nil
		case "short", "int16":
			return float64(int16(order.Uint16(raw))), nil
		case "ushort", "uint16":
			return float64(order.Uint16(raw)), nil
		case "int", "int32":
			return float64(int32(order.Uint32(raw))), nil
		case "uint", "uint32":
			return float64(order.Uint32(raw)), nil
		case "float", "float32":
			return float64(math.Float32frombits(order.Uint32(raw))), nil
		default: // double, float64
			return math.Float64frombits(order.Uint64(raw)), nil
		}
	}

	for _, el := range elements {
		for i := 0; i < el.count; i++ {
			var vert, norm [3]float32
			hasNorm := false
			for _, p := range el.props {
				if p.list {
					cv, err := readScalar(p.countType)
					if err != nil {
						return nil, err
					}
					n := int(cv)
					if n < 0 {
						return nil, fmt.Errorf("ply: negative list count")
					}
					idx := make([]uint32, n)
					for j := 0; j < n; j++ {
						v, err := readScalar(p.typ)
						if err != nil {
							return nil, err
						}
						idx[j] = uint32(v)
					}
					if el.name == "face" && (p.name == "vertex_indices" || p.name == "vertex_index") {
						out.Faces = append(out.Faces, idx)
					}
					continue
				}

				v, err := readScalar(p.typ)
				if err != nil {
					return nil, err
				}
				storePLYScalar(el.name, p.name, float32(v), &vert, &norm, &hasNorm)
			}
			if el.name == "vertex" {
				out.Vertices = append(out.Vertices, vert)
				if hasNorm {
					out.Normals = append(out.Normals, norm)
				}
			}
		}
	}
	return out, nil
}

// storePLYScalar routes a vertex-element scalar into position or normal slots.
func storePLYScalar(element, prop string, v float32, vert, norm *[3]float32, hasNorm *bool) {
	if element != "vertex" {
		return
	}
	switch prop {
	case "x":
		vert[0] = v
	case "y":
		vert[1] = v
	case "z":
		vert[2] = v
	case "nx":
		norm[0] = v
		*hasNorm = true
	case "ny":
		norm[1] = v
		*hasNorm = true
	case "nz":
		norm[2] = v
		*hasNorm = true
	}
}
