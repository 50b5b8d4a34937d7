package render

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/meshvault/internal/scene"
	"github.com/Faultbox/meshvault/internal/viewer"
)

const (
	gridHalfExtent = 10
	gridStep       = 1
)

// gridMesh is the ground-plane line grid drawn under every model.
type gridMesh struct {
	vao   uint32
	vbo   uint32
	count int32
}

func (g *gridMesh) build() {
	var verts []float32
	h := float32(gridHalfExtent)
	for i := -gridHalfExtent; i <= gridHalfExtent; i += gridStep {
		v := float32(i)
		verts = append(verts,
			v, 0, -h, v, 0, h, // line along z
			-h, 0, v, h, 0, v, // line along x
		)
	}
	g.count = int32(len(verts) / 3)

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)
	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, unsafe.Pointer(&verts[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)
}

func (g *gridMesh) release() {
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
		g.vao = 0
	}
	if g.vbo != 0 {
		gl.DeleteBuffers(1, &g.vbo)
		g.vbo = 0
	}
}

// drawGrid draws the helper grid when the scene carries a helper node.
func (r *Renderer) drawGrid(f viewer.Frame) {
	if r.grid.vao == 0 || !hasHelper(f) {
		return
	}
	gl.UseProgram(r.lineProgram)
	gl.UniformMatrix4fv(r.lineView, 1, false, f.View.Ptr())
	gl.UniformMatrix4fv(r.lineProjection, 1, false, f.Projection.Ptr())
	gl.Uniform4f(r.lineColor, 0.35, 0.35, 0.4, 1.0)

	gl.BindVertexArray(r.grid.vao)
	gl.DrawArrays(gl.LINES, 0, r.grid.count)
	gl.BindVertexArray(0)
}

func hasHelper(f viewer.Frame) bool {
	for _, c := range f.Root.Children {
		if c.Kind == scene.KindHelper {
			return true
		}
	}
	return false
}
