// Package vehicle turns driving actions into follower steps on the landscape.
package vehicle

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/torus-drive/internal/config"
	"github.com/Faultbox/torus-drive/internal/input"
	"github.com/Faultbox/torus-drive/pkg/surface"
)

// Config holds the driving rates.
type Config struct {
	Speed     float64 // grid cells per second
	TurnRate  float64 // radians per second
	WheelSpin float64 // wheel radians per cell travelled
}

// ConfigFrom extracts the driving rates from the application config.
func ConfigFrom(c config.VehicleConfig) Config {
	return Config{Speed: c.Speed, TurnRate: c.TurnRate, WheelSpin: c.WheelSpin}
}

// Vehicle is a surface follower driven by actions.
type Vehicle struct {
	cfg      Config
	follower *surface.Follower

	wheelAngle float64
	odometer   float64
}

// New creates a vehicle on s. It must be placed before driving.
func New(s surface.Surface, cfg Config, fcfg surface.FollowerConfig) *Vehicle {
	return &Vehicle{
		cfg:      cfg,
		follower: surface.NewFollower(s, fcfg),
	}
}

// Place puts the vehicle at coords facing heading in UV space.
func (v *Vehicle) Place(coords, heading mgl64.Vec2) error {
	return v.follower.Place(coords, heading)
}

// Advance applies one frame of held actions over dt seconds.
//
// Turning is applied before moving. Forward and Back together cancel. The
// returned Delta covers both the turn and the move.
func (v *Vehicle) Advance(dt float64, actions input.ActionSet) (surface.Update, error) {
	if !v.follower.Placed() {
		return surface.Update{}, surface.ErrNotPlaced
	}

	out := surface.Update{Pose: v.follower.Pose(), Delta: mgl64.Ident3()}
	if dt <= 0 {
		return out, nil
	}

	steer := 0.0
	if actions.Has(input.TurnLeft) {
		steer++
	}
	if actions.Has(input.TurnRight) {
		steer--
	}
	drive := 0.0
	if actions.Has(input.Forward) {
		drive++
	}
	if actions.Has(input.Back) {
		drive--
	}

	if steer != 0 {
		u, err := v.follower.Turn(steer * v.cfg.TurnRate * dt)
		if err != nil {
			return out, err
		}
		out = merge(out, u)
	}

	if drive != 0 {
		distance := drive * v.cfg.Speed * dt
		u, err := v.follower.Move(distance)
		if err != nil {
			return out, err
		}
		out = merge(out, u)
		v.odometer += math.Abs(distance)
		v.wheelAngle = math.Mod(v.wheelAngle+distance*v.cfg.WheelSpin, 2*math.Pi)
	}

	return out, nil
}

func merge(prev, next surface.Update) surface.Update {
	return surface.Update{
		Pose:    next.Pose,
		Delta:   next.Delta.Mul3(prev.Delta),
		Skipped: prev.Skipped || next.Skipped,
	}
}

// Placed reports whether the vehicle is on the landscape.
func (v *Vehicle) Placed() bool { return v.follower.Placed() }

// Pose returns the current world pose.
func (v *Vehicle) Pose() surface.Pose { return v.follower.Pose() }

// Coords returns the UV position.
func (v *Vehicle) Coords() mgl64.Vec2 { return v.follower.Coords() }

// Heading returns the UV heading.
func (v *Vehicle) Heading() mgl64.Vec2 { return v.follower.Heading() }

// WheelAngle is the accumulated wheel rotation in (-2pi, 2pi). It runs
// backwards while reversing.
func (v *Vehicle) WheelAngle() float64 { return v.wheelAngle }

// Odometer is the total distance driven in grid cells.
func (v *Vehicle) Odometer() float64 { return v.odometer }

// LookAhead returns the surface point distance cells ahead of the vehicle.
func (v *Vehicle) LookAhead(distance float64) mgl64.Vec3 {
	return v.follower.LookAhead(distance)
}
