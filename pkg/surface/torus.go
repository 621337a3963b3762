// Package surface builds a height-displaced torus mesh and keeps objects
// oriented on it.
package surface

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/torus-drive/pkg/heightfield"
)

// ErrRadius is returned when the torus radii do not describe a tube.
var ErrRadius = errors.New("surface: outer radius must exceed inner radius")

// Torus is a W x H torus mesh displaced along its radial direction by a
// height field. Vertex (x, y) lives at index y*W + x.
//
// The u axis (x) runs around the tube, the v axis (y) runs around the ring.
type Torus struct {
	field *heightfield.Field

	width  int
	height int

	ringRadius float64 // R
	tubeRadius float64 // r

	vertices []mgl64.Vec3
	normals  []mgl64.Vec3
	indices  []uint32
}

// Build generates the displaced torus for a height field. The ring radius
// is (inner+outer)/2 and the tube radius (outer-inner)/2.
func Build(field *heightfield.Field, innerRadius, outerRadius float64) (*Torus, error) {
	if field == nil {
		return nil, errors.New("surface: nil height field")
	}
	if outerRadius <= innerRadius {
		return nil, fmt.Errorf("%w: inner=%g outer=%g", ErrRadius, innerRadius, outerRadius)
	}

	w, h := field.Width(), field.Height()
	if w < 2 || h < 2 {
		return nil, fmt.Errorf("%w: %dx%d", heightfield.ErrDimensions, w, h)
	}

	t := &Torus{
		field:      field,
		width:      w,
		height:     h,
		ringRadius: (outerRadius + innerRadius) / 2,
		tubeRadius: (outerRadius - innerRadius) / 2,
		vertices:   make([]mgl64.Vec3, w*h),
		indices:    make([]uint32, 0, w*h*6),
	}

	for y := 0; y < h; y++ {
		phi := 2 * math.Pi * float64(y) / float64(h)
		sinPhi, cosPhi := math.Sincos(phi)

		for x := 0; x < w; x++ {
			theta := 2 * math.Pi * float64(x) / float64(w)
			sinTheta, cosTheta := math.Sincos(theta)

			ring := t.ringRadius + t.tubeRadius*cosTheta
			base := mgl64.Vec3{ring * cosPhi, t.tubeRadius * sinTheta, ring * sinPhi}
			radial := mgl64.Vec3{cosTheta * cosPhi, sinTheta, cosTheta * sinPhi}

			t.vertices[y*w+x] = base.Add(radial.Mul(field.At(x, y)))

			// Two triangles per cell, wrapping on both axes.
			i00 := uint32(y*w + x)
			i10 := uint32(y*w + (x+1)%w)
			i01 := uint32(((y+1)%h)*w + x)
			i11 := uint32(((y+1)%h)*w + (x+1)%w)
			t.indices = append(t.indices,
				i00, i11, i10,
				i00, i01, i11,
			)
		}
	}

	t.computeNormals()
	return t, nil
}

// computeNormals sums area-weighted face normals into each vertex and
// normalizes. With the winding used by Build these point into the tube.
func (t *Torus) computeNormals() {
	normals := make([]mgl64.Vec3, len(t.vertices))

	for i := 0; i < len(t.indices); i += 3 {
		a, b, c := t.indices[i], t.indices[i+1], t.indices[i+2]
		pa := t.vertices[a]
		face := t.vertices[b].Sub(pa).Cross(t.vertices[c].Sub(pa))

		normals[a] = normals[a].Add(face)
		normals[b] = normals[b].Add(face)
		normals[c] = normals[c].Add(face)
	}

	for i, n := range normals {
		if l := n.Len(); l > 0 {
			normals[i] = n.Mul(1 / l)
		}
	}
	t.normals = normals
}

// Scale stretches the mesh along each axis and recomputes normals.
// Height-field values are not affected.
func (t *Torus) Scale(sx, sy, sz float64) {
	for i, v := range t.vertices {
		t.vertices[i] = mgl64.Vec3{v[0] * sx, v[1] * sy, v[2] * sz}
	}
	t.computeNormals()
}

// Size returns the grid dimensions: vertices around the tube (u) and
// around the ring (v).
func (t *Torus) Size() (width, height int) { return t.width, t.height }

// RingRadius returns R, the distance from the torus center to the tube center.
func (t *Torus) RingRadius() float64 { return t.ringRadius }

// TubeRadius returns r, the radius of the tube.
func (t *Torus) TubeRadius() float64 { return t.tubeRadius }

// Field returns the height field the torus was built from.
func (t *Torus) Field() *heightfield.Field { return t.field }

// Vertices returns the vertex buffer. Callers must not modify it.
func (t *Torus) Vertices() []mgl64.Vec3 { return t.vertices }

// Normals returns the smoothed per-vertex normals as stored (inward facing).
func (t *Torus) Normals() []mgl64.Vec3 { return t.normals }

// Indices returns the triangle index buffer, three indices per face.
func (t *Torus) Indices() []uint32 { return t.indices }

// Vertex returns the stored vertex at a lattice point. Indices wrap.
func (t *Torus) Vertex(x, y int) mgl64.Vec3 {
	c := heightfield.Locate(float64(x), float64(y), t.width, t.height)
	return t.vertices[c.Y0*t.width+c.X0]
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (t *Torus) Bounds() (lo, hi mgl64.Vec3) {
	lo, hi = t.vertices[0], t.vertices[0]
	for _, v := range t.vertices[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], v[k])
			hi[k] = math.Max(hi[k], v[k])
		}
	}
	return lo, hi
}

// Point returns the mesh position at fractional (u, v), bilinearly blended
// from the four surrounding stored vertices.
func (t *Torus) Point(u, v float64) mgl64.Vec3 {
	return t.blend(t.vertices, u, v)
}

// Normal returns the outward unit normal at (u, v): the blended vertex
// normals, negated and renormalized.
func (t *Torus) Normal(u, v float64) mgl64.Vec3 {
	n := t.blend(t.normals, u, v).Mul(-1)
	l := n.Len()
	if l == 0 {
		// Opposing corner normals cancelled; fall back to the nearest corner.
		c := heightfield.Locate(u, v, t.width, t.height)
		return t.normals[c.Y0*t.width+c.X0].Mul(-1)
	}
	return n.Mul(1 / l)
}

// Height returns the bilinearly sampled height-field value at (u, v).
func (t *Torus) Height(u, v float64) float64 {
	return t.field.Sample(u, v)
}

func (t *Torus) blend(buf []mgl64.Vec3, u, v float64) mgl64.Vec3 {
	c := heightfield.Locate(u, v, t.width, t.height)
	w := c.Weights()

	p00 := buf[c.Y0*t.width+c.X0]
	p10 := buf[c.Y0*t.width+c.X1]
	p01 := buf[c.Y1*t.width+c.X0]
	p11 := buf[c.Y1*t.width+c.X1]

	return p00.Mul(w[0]).Add(p10.Mul(w[1])).Add(p01.Mul(w[2])).Add(p11.Mul(w[3]))
}
