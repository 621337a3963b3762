// Package renderer draws the landscape and the vehicle with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/torus-drive/internal/engine/renderer/shaders"
	"github.com/Faultbox/torus-drive/internal/engine/shader"
	"github.com/Faultbox/torus-drive/internal/logger"
	"github.com/Faultbox/torus-drive/internal/sim"
	"github.com/Faultbox/torus-drive/pkg/surface"
)

var (
	landColor   = mgl32.Vec3{0.45, 0.55, 0.3}
	bodyColor   = mgl32.Vec3{0.8, 0.15, 0.1}
	wheelColor  = mgl32.Vec3{0.1, 0.1, 0.1}
	markerColor = mgl32.Vec3{0.1, 0.2, 0.9}
)

// Vehicle dimensions in world units, local axes forward (+X), up (+Y), right (+Z).
var (
	bodySize    = mgl32.Vec3{4, 1.2, 2}
	wheelSize   = mgl32.Vec3{1, 1, 0.4}
	wheelOffset = []mgl32.Vec3{
		{1.3, -0.6, 1.1}, {1.3, -0.6, -1.1},
		{-1.3, -0.6, 1.1}, {-1.3, -0.6, -1.1},
	}
)

type gpuMesh struct {
	vao   uint32
	vbos  [2]uint32
	ebo   uint32
	count int32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	log     *zap.Logger
	program *shader.Program

	width, height int

	landscape *gpuMesh
	box       *gpuMesh

	LightDir mgl32.Vec3
	Ambient  mgl32.Vec3
}

// New initializes OpenGL and builds the shared resources.
// It must be called after the GL context exists.
func New(width, height int) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r := &Renderer{
		log:      logger.Named("renderer"),
		width:    width,
		height:   height,
		LightDir: mgl32.Vec3{-0.4, -1, -0.3}.Normalize(),
		Ambient:  mgl32.Vec3{0.3, 0.3, 0.35},
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.Enable(gl.MULTISAMPLE)
	gl.ClearColor(0.53, 0.7, 0.9, 1)
	gl.Viewport(0, 0, int32(width), int32(height))

	var err error
	r.program, err = shader.New(shaders.LitVertexShader, shaders.LitFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("lit shader: %w", err)
	}

	positions, normals, indices := cube()
	r.box = upload(positions, normals, indices)
	return r, nil
}

// UploadLandscape copies the torus mesh to the GPU, replacing any previous one.
func (r *Renderer) UploadLandscape(m surface.Mesh) {
	if r.landscape != nil {
		r.landscape.delete()
	}
	r.landscape = upload(m.Positions, m.Normals, m.Indices)
	r.log.Info("landscape uploaded",
		zap.Int("vertices", len(m.Positions)/3),
		zap.Int("triangles", len(m.Indices)/3))
}

// HasLandscape reports whether UploadLandscape has run.
func (r *Renderer) HasLandscape() bool { return r.landscape != nil }

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.height == 0 {
		return 1
	}
	return float32(r.width) / float32(r.height)
}

// Begin clears the frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// DrawScene draws the landscape, the vehicle and the look-ahead marker.
func (r *Renderer) DrawScene(viewProj mgl32.Mat4, snap sim.Snapshot) {
	r.program.Use()
	r.program.SetMat4("uViewProj", viewProj)
	r.program.SetVec3("uLightDir", r.LightDir)
	r.program.SetVec3("uAmbient", r.Ambient)

	if r.landscape != nil {
		r.draw(r.landscape, mgl32.Ident4(), landColor)
	}
	if !snap.Ready {
		return
	}

	model := Mat4(snap.Pose.Matrix())
	r.draw(r.box, model.Mul4(scale(bodySize)), bodyColor)

	spin := mgl32.HomogRotate3DZ(-float32(snap.WheelAngle))
	for _, off := range wheelOffset {
		m := model.Mul4(mgl32.Translate3D(off[0], off[1], off[2])).Mul4(spin).Mul4(scale(wheelSize))
		r.draw(r.box, m, wheelColor)
	}

	la := snap.LookAhead
	marker := mgl32.Translate3D(float32(la[0]), float32(la[1]), float32(la[2])).Mul4(mgl32.Scale3D(0.5, 0.5, 0.5))
	r.draw(r.box, marker, markerColor)
}

func (r *Renderer) draw(m *gpuMesh, model mgl32.Mat4, color mgl32.Vec3) {
	r.program.SetMat4("uModel", model)
	r.program.SetVec3("uColor", color)
	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	pixels := make([]byte, r.width*r.height*4)
	if len(pixels) == 0 {
		return nil, 0, 0
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(r.width), int32(r.height), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, r.width, r.height
}

// Close releases GPU resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	if r.landscape != nil {
		r.landscape.delete()
	}
	if r.box != nil {
		r.box.delete()
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Mat4 narrows a double-precision matrix for the GPU.
func Mat4(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

// Vec3 narrows a double-precision vector for the GPU.
func Vec3(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

func scale(s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Scale3D(s[0], s[1], s[2])
}

func upload(positions, normals []float32, indices []uint32) *gpuMesh {
	m := &gpuMesh{count: int32(len(indices))}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(2, &m.vbos[0])
	for loc, data := range [][]float32{positions, normals} {
		gl.BindBuffer(gl.ARRAY_BUFFER, m.vbos[loc])
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
		gl.VertexAttribPointer(uint32(loc), 3, gl.FLOAT, false, 3*4, nil)
		gl.EnableVertexAttribArray(uint32(loc))
	}

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return m
}

func (m *gpuMesh) delete() {
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(2, &m.vbos[0])
	gl.DeleteBuffers(1, &m.ebo)
}

// cube returns a unit cube centred on the origin with per-face normals.
func cube() (positions, normals []float32, indices []uint32) {
	faces := []struct{ n, u, v mgl32.Vec3 }{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}},
	}
	for _, f := range faces {
		base := uint32(len(positions) / 3)
		center := f.n.Mul(0.5)
		for _, c := range [4][2]float32{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}} {
			p := center.Add(f.u.Mul(c[0])).Add(f.v.Mul(c[1]))
			positions = append(positions, p[0], p[1], p[2])
			normals = append(normals, f.n[0], f.n[1], f.n[2])
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return positions, normals, indices
}
