// Package render draws scene trees with OpenGL 4.1 core. It owns the GPU
// handles decoded meshes are uploaded into and the fixed helper geometry
// (ground grid) every session shows.
package render

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/meshvault/internal/engine/shader"
	"github.com/Faultbox/meshvault/internal/scene"
	"github.com/Faultbox/meshvault/internal/viewer"
	"github.com/Faultbox/meshvault/pkg/math"
)

const meshVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoord;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vNormal;
out vec2 vTexCoord;

void main() {
    vNormal = mat3(uModel) * aNormal;
    vTexCoord = aTexCoord;
    gl_Position = uProjection * uView * uModel * vec4(aPosition, 1.0);
}
`

const meshFragmentShader = `#version 410 core
in vec3 vNormal;
in vec2 vTexCoord;

uniform sampler2D uTexture;
uniform vec4 uColor;
uniform vec3 uAmbient;
uniform vec3 uLightDir;
uniform vec3 uDiffuse;
uniform vec3 uLightDir2;
uniform vec3 uDiffuse2;

out vec4 FragColor;

void main() {
    vec3 normal = normalize(vNormal);
    float d1 = max(dot(normal, normalize(uLightDir)), 0.0);
    float d2 = max(dot(normal, normalize(uLightDir2)), 0.0);
    vec4 tex = texture(uTexture, vTexCoord);
    vec3 lit = uAmbient + d1 * uDiffuse + d2 * uDiffuse2;
    FragColor = vec4(lit, 1.0) * tex * uColor;
}
`

const lineVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;

uniform mat4 uView;
uniform mat4 uProjection;

void main() {
    gl_Position = uProjection * uView * vec4(aPosition, 1.0);
}
`

const lineFragmentShader = `#version 410 core
uniform vec4 uColor;
out vec4 FragColor;

void main() {
    FragColor = uColor;
}
`

// meshVertex is the interleaved vertex format uploaded meshes use.
type meshVertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Renderer is the OpenGL implementation of the viewer's renderer.
type Renderer struct {
	background [3]float32

	meshProgram   uint32
	locModel      int32
	locView       int32
	locProjection int32
	locTexture    int32
	locColor      int32
	locAmbient    int32
	locLightDir   int32
	locDiffuse    int32
	locLightDir2  int32
	locDiffuse2   int32

	lineProgram    uint32
	lineView       int32
	lineProjection int32
	lineColor      int32

	fallbackTexture uint32
	grid            gridMesh
}

// New initializes OpenGL and compiles the render programs. Must run on the
// thread owning the GL context.
func New(background [3]float32) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	r := &Renderer{background: background}

	var err error
	r.meshProgram, err = shader.CompileProgram(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh program: %w", err)
	}
	r.locModel = shader.GetUniform(r.meshProgram, "uModel")
	r.locView = shader.GetUniform(r.meshProgram, "uView")
	r.locProjection = shader.GetUniform(r.meshProgram, "uProjection")
	r.locTexture = shader.GetUniform(r.meshProgram, "uTexture")
	r.locColor = shader.GetUniform(r.meshProgram, "uColor")
	r.locAmbient = shader.GetUniform(r.meshProgram, "uAmbient")
	r.locLightDir = shader.GetUniform(r.meshProgram, "uLightDir")
	r.locDiffuse = shader.GetUniform(r.meshProgram, "uDiffuse")
	r.locLightDir2 = shader.GetUniform(r.meshProgram, "uLightDir2")
	r.locDiffuse2 = shader.GetUniform(r.meshProgram, "uDiffuse2")

	r.lineProgram, err = shader.CompileProgram(lineVertexShader, lineFragmentShader)
	if err != nil {
		gl.DeleteProgram(r.meshProgram)
		return nil, fmt.Errorf("line program: %w", err)
	}
	r.lineView = shader.GetUniform(r.lineProgram, "uView")
	r.lineProjection = shader.GetUniform(r.lineProgram, "uProjection")
	r.lineColor = shader.GetUniform(r.lineProgram, "uColor")

	r.createFallbackTexture()
	r.grid.build()

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	return r, nil
}

func (r *Renderer) createFallbackTexture() {
	// 1x1 white so untextured materials sample neutrally.
	gl.GenTextures(1, &r.fallbackTexture)
	gl.BindTexture(gl.TEXTURE_2D, r.fallbackTexture)
	white := []uint8{255, 255, 255, 255}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&white[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
}

// Resize sets the GL viewport to the new drawable size.
func (r *Renderer) Resize(w, h int) {
	gl.Viewport(0, 0, int32(w), int32(h))
}

// Release frees every resource the renderer itself owns. Model resources
// are released through their scene handles, not here.
func (r *Renderer) Release() {
	r.grid.release()
	if r.fallbackTexture != 0 {
		gl.DeleteTextures(1, &r.fallbackTexture)
		r.fallbackTexture = 0
	}
	if r.meshProgram != 0 {
		gl.DeleteProgram(r.meshProgram)
		r.meshProgram = 0
	}
	if r.lineProgram != 0 {
		gl.DeleteProgram(r.lineProgram)
		r.lineProgram = 0
	}
}

var _ viewer.Renderer = (*Renderer)(nil)

// geometry is a GPU-resident buffer set for one drawable.
type geometry struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
}

func (g *geometry) Release() {
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
		g.vao = 0
	}
	if g.vbo != 0 {
		gl.DeleteBuffers(1, &g.vbo)
		g.vbo = 0
	}
	if g.ebo != 0 {
		gl.DeleteBuffers(1, &g.ebo)
		g.ebo = 0
	}
	g.indexCount = 0
}

// texture is a GPU-resident texture handle.
type texture struct {
	id uint32
}

func (t *texture) Release() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

// Upload creates GPU buffers for every drawable in the subtree and uploads
// material images into texture handles. On error everything created so far
// is released, leaving the subtree handle-free.
func (r *Renderer) Upload(root *scene.Node) error {
	var uploaded []*scene.Node
	var failed error
	root.Walk(func(n *scene.Node) {
		if failed != nil || n.Kind != scene.KindDrawable || n.Mesh == nil {
			return
		}
		if err := uploadDrawable(n); err != nil {
			failed = err
			return
		}
		uploaded = append(uploaded, n)
	})
	if failed != nil {
		for _, n := range uploaded {
			if n.Geometry != nil {
				n.Geometry.Release()
				n.Geometry = nil
			}
			for _, mat := range n.Materials {
				for _, tex := range mat.Textures.Slots() {
					tex.Release()
				}
				mat.Textures = scene.TextureSet{}
			}
		}
		return failed
	}
	return nil
}

func uploadDrawable(n *scene.Node) error {
	mesh := n.Mesh
	if len(mesh.Positions) == 0 || len(mesh.Indices) == 0 {
		return fmt.Errorf("drawable %q has no geometry", n.Name)
	}

	vertices := make([]meshVertex, len(mesh.Positions))
	for i, p := range mesh.Positions {
		vertices[i].Position = [3]float32{p.X, p.Y, p.Z}
		if i < len(mesh.Normals) {
			nrm := mesh.Normals[i]
			vertices[i].Normal = [3]float32{nrm.X, nrm.Y, nrm.Z}
		} else {
			vertices[i].Normal = [3]float32{0, 1, 0}
		}
		if i < len(mesh.UVs) {
			vertices[i].TexCoord = [2]float32{mesh.UVs[i].X, mesh.UVs[i].Y}
		}
	}

	g := &geometry{indexCount: int32(len(mesh.Indices))}
	stride := int32(unsafe.Sizeof(meshVertex{}))

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(stride), unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, unsafe.Pointer(&mesh.Indices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 12)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 24)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	n.Geometry = g

	for _, mat := range n.Materials {
		mat.Textures = scene.TextureSet{
			Diffuse:   uploadImage(mat.DiffuseImage),
			Normal:    uploadImage(mat.NormalImage),
			Roughness: uploadImage(mat.RoughnessImage),
			Emissive:  uploadImage(mat.EmissiveImage),
		}
	}
	return nil
}

// uploadImage creates a texture from a decoded image, nil in nil out.
func uploadImage(img *image.RGBA) scene.Texture {
	if img == nil || len(img.Pix) == 0 {
		return nil
	}
	t := &texture{}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(img.Bounds().Dx()), int32(img.Bounds().Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	return t
}

// Render draws one frame: clear, grid, then every drawable with lighting
// gathered from the scene's light nodes.
func (r *Renderer) Render(f viewer.Frame) {
	gl.ClearColor(r.background[0], r.background[1], r.background[2], 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if f.Root == nil {
		return
	}

	r.drawGrid(f)

	gl.UseProgram(r.meshProgram)
	gl.UniformMatrix4fv(r.locView, 1, false, f.View.Ptr())
	gl.UniformMatrix4fv(r.locProjection, 1, false, f.Projection.Ptr())
	r.applyLights(f.Root)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.Uniform1i(r.locTexture, 0)

	r.drawSubtree(f.Root, math.Identity())
}

// applyLights folds the scene's light nodes into the fixed uniform slots:
// summed ambient plus the first two directional lights.
func (r *Renderer) applyLights(root *scene.Node) {
	var ambient [3]float32
	var dirs []*scene.Light
	root.Walk(func(n *scene.Node) {
		if n.Kind != scene.KindLight || n.Light == nil {
			return
		}
		l := n.Light
		switch l.Kind {
		case scene.LightAmbient:
			ambient[0] += l.Color[0] * l.Intensity
			ambient[1] += l.Color[1] * l.Intensity
			ambient[2] += l.Color[2] * l.Intensity
		case scene.LightDirectional:
			if len(dirs) < 2 {
				dirs = append(dirs, l)
			}
		}
	})

	gl.Uniform3f(r.locAmbient, ambient[0], ambient[1], ambient[2])
	setDir := func(locDir, locCol int32, l *scene.Light) {
		if l == nil {
			gl.Uniform3f(locDir, 0, 1, 0)
			gl.Uniform3f(locCol, 0, 0, 0)
			return
		}
		gl.Uniform3f(locDir, l.Direction.X, l.Direction.Y, l.Direction.Z)
		gl.Uniform3f(locCol, l.Color[0]*l.Intensity, l.Color[1]*l.Intensity, l.Color[2]*l.Intensity)
	}
	var d0, d1 *scene.Light
	if len(dirs) > 0 {
		d0 = dirs[0]
	}
	if len(dirs) > 1 {
		d1 = dirs[1]
	}
	setDir(r.locLightDir, r.locDiffuse, d0)
	setDir(r.locLightDir2, r.locDiffuse2, d1)
}

func (r *Renderer) drawSubtree(n *scene.Node, parent math.Mat4) {
	local := math.Translate(n.Translation.X, n.Translation.Y, n.Translation.Z).Mul(math.Scale(n.Scale))
	world := parent.Mul(local)

	if n.Kind == scene.KindDrawable && n.Geometry != nil {
		r.drawMesh(n, world)
	}
	for _, c := range n.Children {
		r.drawSubtree(c, world)
	}
}

func (r *Renderer) drawMesh(n *scene.Node, model math.Mat4) {
	g, ok := n.Geometry.(*geometry)
	if !ok || g.vao == 0 {
		return
	}

	gl.UniformMatrix4fv(r.locModel, 1, false, model.Ptr())

	color := [4]float32{1, 1, 1, 1}
	texID := r.fallbackTexture
	if len(n.Materials) > 0 {
		mat := n.Materials[0]
		color = mat.Color
		if t, ok := mat.Textures.Diffuse.(*texture); ok && t.id != 0 {
			texID = t.id
		}
	}
	gl.Uniform4f(r.locColor, color[0], color[1], color[2], color[3])
	gl.BindTexture(gl.TEXTURE_2D, texID)

	gl.BindVertexArray(g.vao)
	gl.DrawElements(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}
