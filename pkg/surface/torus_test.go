package surface

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/torus-drive/pkg/heightfield"
)

// flatTorus builds the W=H=4 torus with inner radius 0.3 and outer radius 1.
func flatTorus(t *testing.T) *Torus {
	t.Helper()
	field, err := heightfield.Flat(4, 4)
	if err != nil {
		t.Fatalf("Flat: %v", err)
	}
	torus, err := Build(field, 0.3, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return torus
}

// bumpyTorus builds a 16x12 torus with smooth periodic hills.
func bumpyTorus(t *testing.T) *Torus {
	t.Helper()
	w, h := 16, 12
	values := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := 2 * math.Pi * float64(x) / float64(w)
			b := 2 * math.Pi * float64(y) / float64(h)
			values[y*w+x] = 0.04 * (1 + math.Sin(2*a)*math.Cos(3*b))
		}
	}
	field, err := heightfield.New(w, h, values)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	torus, err := Build(field, 0.3, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return torus
}

func approxVec(a, b mgl64.Vec3, tol float64) bool {
	return a.Sub(b).Len() <= tol
}

// radial is the analytic outward direction of the tube at lattice (x, y).
func radial(x, y float64, w, h int) mgl64.Vec3 {
	theta := 2 * math.Pi * x / float64(w)
	phi := 2 * math.Pi * y / float64(h)
	return mgl64.Vec3{math.Cos(theta) * math.Cos(phi), math.Sin(theta), math.Cos(theta) * math.Sin(phi)}
}

func TestBuild_Radii(t *testing.T) {
	torus := flatTorus(t)
	if math.Abs(torus.RingRadius()-0.65) > 1e-12 {
		t.Errorf("expected ring radius 0.65, got %v", torus.RingRadius())
	}
	if math.Abs(torus.TubeRadius()-0.35) > 1e-12 {
		t.Errorf("expected tube radius 0.35, got %v", torus.TubeRadius())
	}
}

func TestBuild_Errors(t *testing.T) {
	field, _ := heightfield.Flat(4, 4)

	if _, err := Build(field, 1, 1); !errors.Is(err, ErrRadius) {
		t.Errorf("expected ErrRadius for equal radii, got %v", err)
	}
	if _, err := Build(field, 2, 1); !errors.Is(err, ErrRadius) {
		t.Errorf("expected ErrRadius for inverted radii, got %v", err)
	}
	if _, err := Build(nil, 0.3, 1); err == nil {
		t.Error("expected error for nil field")
	}
}

func TestBuild_Mesh(t *testing.T) {
	torus := bumpyTorus(t)
	w, h := torus.Size()

	if got := len(torus.Vertices()); got != w*h {
		t.Errorf("expected %d vertices, got %d", w*h, got)
	}
	if got := len(torus.Normals()); got != w*h {
		t.Errorf("expected %d normals, got %d", w*h, got)
	}
	if got := len(torus.Indices()); got != w*h*6 {
		t.Errorf("expected %d indices, got %d", w*h*6, got)
	}
	for i, idx := range torus.Indices() {
		if int(idx) >= w*h {
			t.Fatalf("index %d out of range: %d", i, idx)
		}
	}
}

func TestBuild_DisplacesAlongRadial(t *testing.T) {
	w, h := 6, 5
	values := make([]float64, w*h)
	values[2*w+1] = 0.5
	field, _ := heightfield.New(w, h, values)
	torus, err := Build(field, 0.3, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	theta := 2 * math.Pi * 1 / float64(w)
	phi := 2 * math.Pi * 2 / float64(h)
	R, r := 0.65, 0.35
	base := mgl64.Vec3{
		(R + r*math.Cos(theta)) * math.Cos(phi),
		r * math.Sin(theta),
		(R + r*math.Cos(theta)) * math.Sin(phi),
	}
	want := base.Add(radial(1, 2, w, h).Mul(0.5))

	if got := torus.Vertex(1, 2); !approxVec(got, want, 1e-12) {
		t.Errorf("Vertex(1,2) = %v, want %v", got, want)
	}
	if got := torus.Vertex(0, 0); !approxVec(got, mgl64.Vec3{1, 0, 0}, 1e-12) {
		t.Errorf("Vertex(0,0) = %v, want undisplaced (1,0,0)", got)
	}
}

func TestPoint_FlatOrigin(t *testing.T) {
	torus := flatTorus(t)
	got := torus.Point(0, 0)
	if !approxVec(got, mgl64.Vec3{1, 0, 0}, 1e-12) {
		t.Errorf("Point(0,0) = %v, want (1,0,0)", got)
	}
}

func TestPoint_LatticeExact(t *testing.T) {
	torus := bumpyTorus(t)
	w, h := torus.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			want := torus.Vertices()[y*w+x]
			if got := torus.Point(float64(x), float64(y)); got != want {
				t.Errorf("Point(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestPoint_Wraps(t *testing.T) {
	torus := bumpyTorus(t)
	w, h := torus.Size()

	for _, p := range [][2]float64{{0.5, 0.25}, {7.75, 3.5}, {15.5, 11.5}} {
		base := torus.Point(p[0], p[1])
		if got := torus.Point(p[0]-float64(3*w), p[1]+float64(h)); !approxVec(got, base, 1e-12) {
			t.Errorf("Point(%v) not periodic: %v vs %v", p, got, base)
		}
	}
}

func TestPoint_BilinearMidpoint(t *testing.T) {
	torus := bumpyTorus(t)
	v := torus.Vertices()
	w, _ := torus.Size()

	want := v[0].Add(v[1]).Add(v[w]).Add(v[w+1]).Mul(0.25)
	if got := torus.Point(0.5, 0.5); !approxVec(got, want, 1e-12) {
		t.Errorf("Point(0.5,0.5) = %v, want %v", got, want)
	}
}

func TestNormal_UnitLength(t *testing.T) {
	torus := bumpyTorus(t)
	w, h := torus.Size()

	for y := 0.0; y < float64(h); y += 0.37 {
		for x := -float64(w); x < float64(w); x += 0.29 {
			n := torus.Normal(x, y)
			if math.Abs(n.Len()-1) > 1e-6 {
				t.Fatalf("Normal(%v,%v) length = %v", x, y, n.Len())
			}
		}
	}
}

func TestNormal_PointsOutward(t *testing.T) {
	torus := flatTorus(t)
	if got := torus.Normal(0, 0); got.Dot(mgl64.Vec3{1, 0, 0}) < 0.9 {
		t.Errorf("Normal(0,0) = %v, expected close to (1,0,0)", got)
	}

	bumpy := bumpyTorus(t)
	w, h := bumpy.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := bumpy.Normal(float64(x)+0.5, float64(y)+0.5)
			out := radial(float64(x)+0.5, float64(y)+0.5, w, h)
			if n.Dot(out) < 0.5 {
				t.Errorf("Normal at (%d.5,%d.5) = %v points away from %v", x, y, n, out)
			}
		}
	}
}

func TestHeight_MatchesField(t *testing.T) {
	torus := bumpyTorus(t)
	for _, p := range [][2]float64{{0, 0}, {1.5, 2.25}, {-3.75, 14.5}} {
		if got, want := torus.Height(p[0], p[1]), torus.Field().Sample(p[0], p[1]); got != want {
			t.Errorf("Height(%v) = %v, want %v", p, got, want)
		}
	}
}

func TestScale(t *testing.T) {
	torus := flatTorus(t)
	torus.Scale(100, 100, 100)

	if got := torus.Point(0, 0); !approxVec(got, mgl64.Vec3{100, 0, 0}, 1e-9) {
		t.Errorf("scaled Point(0,0) = %v, want (100,0,0)", got)
	}
	n := torus.Normal(0.3, 0.7)
	if math.Abs(n.Len()-1) > 1e-9 {
		t.Errorf("scaled normal length = %v", n.Len())
	}

	lo, hi := torus.Bounds()
	if hi[0] < 99.9 || lo[0] > -99.9 {
		t.Errorf("unexpected bounds %v..%v", lo, hi)
	}
}

func TestSample_Orthonormal(t *testing.T) {
	torus := bumpyTorus(t)
	headings := []mgl64.Vec2{{1, 0}, {0, 1}, {-1, 0.5}, {0.3, -0.8}}

	for _, hd := range headings {
		s, ok := torus.Sample(3.3, 7.1, hd, DefaultEpsilon)
		if !ok {
			t.Fatalf("Sample with heading %v not ok", hd)
		}
		if math.Abs(s.Tangent.Dot(s.Normal)) > 1e-9 {
			t.Errorf("tangent not perpendicular to normal: %v", s.Tangent.Dot(s.Normal))
		}
		if math.Abs(s.Bitangent.Dot(s.Tangent)) > 1e-9 || math.Abs(s.Bitangent.Dot(s.Normal)) > 1e-9 {
			t.Errorf("bitangent not perpendicular for heading %v", hd)
		}
		if math.Abs(s.Basis().Det()-1) > 1e-9 {
			t.Errorf("basis determinant = %v, want 1", s.Basis().Det())
		}
	}
}

func TestSample_ZeroHeading(t *testing.T) {
	torus := flatTorus(t)
	if _, ok := torus.Sample(0, 0, mgl64.Vec2{}, DefaultEpsilon); ok {
		t.Error("expected zero heading to be rejected")
	}
}

func TestMesh_OutwardAndCounterClockwise(t *testing.T) {
	torus := bumpyTorus(t)
	m := torus.Mesh()

	w, h := torus.Size()
	if m.Width != w || m.Height != h {
		t.Errorf("expected %dx%d, got %dx%d", w, h, m.Width, m.Height)
	}
	if len(m.Positions) != w*h*3 || len(m.Normals) != w*h*3 {
		t.Fatalf("expected %d floats, got %d positions and %d normals", w*h*3, len(m.Positions), len(m.Normals))
	}
	if len(m.Indices) != len(torus.Indices()) {
		t.Fatalf("expected %d indices, got %d", len(torus.Indices()), len(m.Indices))
	}

	vec := func(buf []float32, i uint32) mgl64.Vec3 {
		return mgl64.Vec3{float64(buf[i*3]), float64(buf[i*3+1]), float64(buf[i*3+2])}
	}

	for i := 0; i < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		face := vec(m.Positions, b).Sub(vec(m.Positions, a)).Cross(vec(m.Positions, c).Sub(vec(m.Positions, a)))
		if face.Dot(vec(m.Normals, a)) <= 0 {
			t.Fatalf("face %d winds against its outward normal", i/3)
		}
	}
}
