package surface

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/torus-drive/pkg/heightfield"
)

var (
	// ErrNotPlaced is returned when a follower is stepped before Place.
	ErrNotPlaced = errors.New("surface: follower not placed")

	// ErrDegenerate is returned when no frame can be built at the
	// requested placement.
	ErrDegenerate = errors.New("surface: degenerate frame")
)

// Pose is a world position plus orientation. Rotation columns are the
// object's forward (+X), up (+Y) and right (+Z) axes in world space.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Mat3
}

// Forward returns the local +X axis in world space.
func (p Pose) Forward() mgl64.Vec3 { return p.Rotation.Col(0) }

// Up returns the local +Y axis in world space.
func (p Pose) Up() mgl64.Vec3 { return p.Rotation.Col(1) }

// Right returns the local +Z axis in world space.
func (p Pose) Right() mgl64.Vec3 { return p.Rotation.Col(2) }

// Matrix returns the model matrix: translation * rotation.
func (p Pose) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(p.Position[0], p.Position[1], p.Position[2]).Mul4(p.Rotation.Mat4())
}

// Quat returns the orientation as a unit quaternion.
func (p Pose) Quat() mgl64.Quat {
	return mgl64.Mat4ToQuat(p.Rotation.Mat4()).Normalize()
}

// Finite reports whether every component of the pose is a finite number.
func (p Pose) Finite() bool {
	for _, c := range p.Position {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	for _, c := range p.Rotation {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Update is the outcome of one follower update.
type Update struct {
	Pose Pose

	// Delta rotates the previous orientation onto the new one:
	// destination * inverse(current). Identity when skipped.
	Delta mgl64.Mat3

	// Skipped is set when the destination frame was degenerate and the
	// previous pose was kept.
	Skipped bool
}

// FollowerConfig tunes a Follower. Zero values select defaults.
type FollowerConfig struct {
	// Clearance is the distance kept above the surface along the normal.
	// Defaults to 1. Use a negative value to sit exactly on the surface.
	Clearance float64

	// Epsilon is the UV step for tangent estimation. Defaults to DefaultEpsilon.
	Epsilon float64
}

// dimensioned surfaces wrap follower coordinates into their UV domain.
type dimensioned interface {
	Size() (width, height int)
}

// Follower keeps an object tangent to a surface as it moves in UV space.
//
// Orientation is rebuilt from the destination frame on every step rather
// than accumulated, so visiting the same (u, v) with the same heading
// always yields the same pose.
type Follower struct {
	surface   Surface
	clearance float64
	epsilon   float64

	coords  mgl64.Vec2
	heading mgl64.Vec2
	pose    Pose
	placed  bool
}

// NewFollower creates a follower for s. Call Place before stepping.
func NewFollower(s Surface, cfg FollowerConfig) *Follower {
	f := &Follower{
		surface:   s,
		clearance: cfg.Clearance,
		epsilon:   cfg.Epsilon,
		heading:   mgl64.Vec2{1, 0},
	}
	if f.clearance == 0 {
		f.clearance = 1
	} else if f.clearance < 0 {
		f.clearance = 0
	}
	if f.epsilon <= 0 {
		f.epsilon = DefaultEpsilon
	}
	return f
}

// Place puts the object at coords facing heading (a UV direction).
func (f *Follower) Place(coords, heading mgl64.Vec2) error {
	coords = f.wrap(coords)
	s, ok := SampleSurface(f.surface, coords[0], coords[1], heading, f.epsilon)
	if !ok {
		return ErrDegenerate
	}

	f.coords = coords
	f.heading = heading
	f.pose = f.poseFrom(s)
	f.placed = true
	return nil
}

// Placed reports whether Place has succeeded.
func (f *Follower) Placed() bool { return f.placed }

// Coords returns the current UV position, wrapped into the surface domain.
func (f *Follower) Coords() mgl64.Vec2 { return f.coords }

// Heading returns the current UV heading.
func (f *Follower) Heading() mgl64.Vec2 { return f.heading }

// Pose returns the current pose.
func (f *Follower) Pose() Pose { return f.pose }

// Step moves the object to target, keeping the current heading.
//
// If the destination frame is degenerate the coordinates still advance but
// the previous pose is kept, so the object can drive out of the bad spot.
func (f *Follower) Step(target mgl64.Vec2) (Update, error) {
	if !f.placed {
		return Update{}, ErrNotPlaced
	}
	f.coords = f.wrap(target)
	return f.reorient(), nil
}

// Move steps by an offset along the heading (negative distance reverses).
func (f *Follower) Move(distance float64) (Update, error) {
	if !f.placed {
		return Update{}, ErrNotPlaced
	}
	if hl := f.heading.Len(); hl > 0 {
		return f.Step(f.coords.Add(f.heading.Mul(distance / hl)))
	}
	return f.Step(f.coords)
}

// Turn rotates the heading counter-clockwise in UV space by angle radians
// and re-derives the frame at the current position.
func (f *Follower) Turn(angle float64) (Update, error) {
	if !f.placed {
		return Update{}, ErrNotPlaced
	}
	sin, cos := math.Sincos(angle)
	h := f.heading
	f.heading = mgl64.Vec2{h[0]*cos - h[1]*sin, h[0]*sin + h[1]*cos}
	return f.reorient(), nil
}

// LookAhead returns the surface point distance cells ahead along the heading.
func (f *Follower) LookAhead(distance float64) mgl64.Vec3 {
	hl := f.heading.Len()
	if hl == 0 {
		return f.surface.Point(f.coords[0], f.coords[1])
	}
	p := f.coords.Add(f.heading.Mul(distance / hl))
	return f.surface.Point(p[0], p[1])
}

func (f *Follower) reorient() Update {
	s, ok := SampleSurface(f.surface, f.coords[0], f.coords[1], f.heading, f.epsilon)
	if !ok {
		return Update{Pose: f.pose, Delta: mgl64.Ident3(), Skipped: true}
	}

	next := f.poseFrom(s)
	if !next.Finite() {
		return Update{Pose: f.pose, Delta: mgl64.Ident3(), Skipped: true}
	}

	// Bases are orthonormal, so the inverse is the transpose.
	delta := next.Rotation.Mul3(f.pose.Rotation.Transpose())
	f.pose = next
	return Update{Pose: next, Delta: delta}
}

func (f *Follower) poseFrom(s Sample) Pose {
	return Pose{
		Position: s.Position.Add(s.Normal.Mul(f.clearance)),
		Rotation: s.Basis(),
	}
}

func (f *Follower) wrap(c mgl64.Vec2) mgl64.Vec2 {
	if d, ok := f.surface.(dimensioned); ok {
		w, h := d.Size()
		return mgl64.Vec2{heightfield.Wrap(c[0], w), heightfield.Wrap(c[1], h)}
	}
	return c
}
