package surface

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultEpsilon is the UV step used for finite-difference tangents.
const DefaultEpsilon = 0.01

// Surface is a parametric surface queried in UV space.
type Surface interface {
	Point(u, v float64) mgl64.Vec3
	Normal(u, v float64) mgl64.Vec3
}

// Sample is the local frame of a surface point for a given heading.
// Tangent, Normal and Bitangent form a right-handed orthonormal basis
// (Tangent x Normal = Bitangent).
type Sample struct {
	Position  mgl64.Vec3
	Normal    mgl64.Vec3
	Tangent   mgl64.Vec3
	Bitangent mgl64.Vec3
}

// Basis returns the frame as a rotation matrix with columns
// {tangent, normal, bitangent}: local +X forward, +Y up, +Z right.
func (s Sample) Basis() mgl64.Mat3 {
	return mgl64.Mat3FromCols(s.Tangent, s.Normal, s.Bitangent)
}

// SampleSurface builds the frame at (u, v). The tangent is the finite
// difference of Point along heading, projected into the tangent plane.
// It reports false when heading is zero, the surface does not move along
// the heading, or the result is not finite.
func SampleSurface(s Surface, u, v float64, heading mgl64.Vec2, eps float64) (Sample, bool) {
	hl := heading.Len()
	if hl == 0 || eps <= 0 {
		return Sample{}, false
	}
	h := heading.Mul(eps / hl)

	p := s.Point(u, v)
	n := s.Normal(u, v)
	d := s.Point(u+h[0], v+h[1]).Sub(p)

	tangent := d.Sub(n.Mul(d.Dot(n)))
	tl := tangent.Len()
	if tl <= d.Len()*1e-9 || tl == 0 {
		return Sample{}, false
	}
	tangent = tangent.Mul(1 / tl)

	out := Sample{
		Position:  p,
		Normal:    n,
		Tangent:   tangent,
		Bitangent: tangent.Cross(n),
	}
	if !finite(out.Position) || !finite(out.Normal) || !finite(out.Tangent) || !finite(out.Bitangent) {
		return Sample{}, false
	}
	return out, true
}

// Sample returns the frame at (u, v) for a heading in UV space.
func (t *Torus) Sample(u, v float64, heading mgl64.Vec2, eps float64) (Sample, bool) {
	return SampleSurface(t, u, v, heading, eps)
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
