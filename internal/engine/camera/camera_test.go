package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestOrbitCamera_Position(t *testing.T) {
	c := NewOrbitCamera(10)
	c.Target = mgl32.Vec3{1, 2, 3}
	c.Pitch = 0
	c.Yaw = 0

	if got := c.Position(); !got.ApproxEqualThreshold(mgl32.Vec3{1, 2, 13}, 1e-5) {
		t.Errorf("expected (1, 2, 13), got %v", got)
	}

	// Distance is preserved for any angle
	c.Pitch, c.Yaw = 0.7, 2.1
	if d := c.Position().Sub(c.Target).Len(); mgl32.Abs(d-10) > 1e-4 {
		t.Errorf("expected distance 10, got %f", d)
	}
}

func TestOrbitCamera_Clamps(t *testing.T) {
	c := NewOrbitCamera(10)

	c.HandleDrag(0, 1e6)
	if c.Pitch != c.MaxPitch {
		t.Errorf("expected pitch clamped to %f, got %f", c.MaxPitch, c.Pitch)
	}

	c.HandleZoom(100)
	if c.Distance != c.MinDistance {
		t.Errorf("expected distance clamped to %f, got %f", c.MinDistance, c.Distance)
	}

	for i := 0; i < 200; i++ {
		c.HandleZoom(-1)
	}
	if c.Distance != c.MaxDistance {
		t.Errorf("expected distance clamped to %f, got %f", c.MaxDistance, c.Distance)
	}
}

func TestOrbitCamera_ViewLooksAtTarget(t *testing.T) {
	c := NewOrbitCamera(5)
	c.Target = mgl32.Vec3{4, 0, 0}

	// The target sits on the view axis, 5 units in front of the eye
	p := c.ViewMatrix().Mul4x1(c.Target.Vec4(1))
	if !p.Vec3().ApproxEqualThreshold(mgl32.Vec3{0, 0, -5}, 1e-4) {
		t.Errorf("expected target at (0, 0, -5) in view space, got %v", p.Vec3())
	}
}

func TestChaseCamera_Follow(t *testing.T) {
	c := NewChaseCamera(20, 8)

	// Vehicle on the outer equator facing +Y with the normal along +X
	c.Follow(mgl32.Vec3{100, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0})

	if got := c.Position(); !got.ApproxEqualThreshold(mgl32.Vec3{108, -20, 0}, 1e-5) {
		t.Errorf("expected (108, -20, 0), got %v", got)
	}

	// Screen up follows the surface normal
	up := c.ViewMatrix().Inv().Mul4x1(mgl32.Vec4{0, 1, 0, 0}).Vec3().Normalize()
	if up.Dot(mgl32.Vec3{1, 0, 0}) <= 0 {
		t.Errorf("expected view up to lean along the normal, got %v", up)
	}
}
