// Package camera provides the orbit and chase cameras that frame the vehicle.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera orbits around a target point that follows the vehicle.
type OrbitCamera struct {
	Target mgl32.Vec3

	// Spherical coordinates around Target
	Distance float32
	Pitch    float32 // radians above the XZ plane
	Yaw      float32 // radians around +Y

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates an orbit camera at distance from its target.
func NewOrbitCamera(distance float32) *OrbitCamera {
	return &OrbitCamera{
		Distance:        distance,
		Pitch:           0.6,
		Yaw:             0,
		MinDistance:     distance / 10,
		MaxDistance:     distance * 20,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	sp, cp := sincos(c.Pitch)
	sy, cy := sincos(c.Yaw)
	return c.Target.Add(mgl32.Vec3{cp * sy, sp, cp * cy}.Mul(c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = mgl32.Clamp(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = mgl32.Clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// ChaseCamera sits behind and above the vehicle in the vehicle's own frame,
// so "up" on screen is the surface normal under the vehicle.
type ChaseCamera struct {
	Behind float32
	Height float32

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3
}

// NewChaseCamera creates a chase camera.
func NewChaseCamera(behind, height float32) *ChaseCamera {
	return &ChaseCamera{Behind: behind, Height: height, up: mgl32.Vec3{0, 1, 0}}
}

// Follow places the camera relative to a vehicle at position with the
// given forward and up axes.
func (c *ChaseCamera) Follow(position, forward, up mgl32.Vec3) {
	c.position = position.Sub(forward.Mul(c.Behind)).Add(up.Mul(c.Height))
	c.target = position.Add(forward.Mul(c.Behind / 2))
	c.up = up
}

// Position returns the camera position from the last Follow.
func (c *ChaseCamera) Position() mgl32.Vec3 { return c.position }

// ViewMatrix returns the view matrix from the last Follow.
func (c *ChaseCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.position, c.target, c.up)
}

// Projection returns a perspective matrix for a vertical field of view in
// degrees.
func Projection(fovDegrees, aspect, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(fovDegrees), aspect, near, far)
}

func sincos(a float32) (float32, float32) {
	s, c := math.Sincos(float64(a))
	return float32(s), float32(c)
}
