// Package formats provides parsers for mesh file formats that have no
// maintained Go library: PLY (Stanford polygon) and 3MF (3D manufacturing
// format). The parsers return plain geometry slices; scene assembly lives
// in the decode layer.
package formats
