// Package sim owns the per-frame simulation state: the landscape, the
// vehicle, the clock and the camera mode.
//
// A Simulation is not safe for concurrent use. One goroutine (the desktop
// render loop or the server tick loop) calls Advance; everything else reads
// Snapshots.
package sim

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/torus-drive/internal/config"
	"github.com/Faultbox/torus-drive/internal/input"
	"github.com/Faultbox/torus-drive/internal/landscape"
	"github.com/Faultbox/torus-drive/internal/logger"
	"github.com/Faultbox/torus-drive/internal/vehicle"
	"github.com/Faultbox/torus-drive/pkg/surface"
)

// LookAheadCells is how far ahead of the vehicle the marker point sits.
const LookAheadCells = 3

// CameraMode selects how viewers frame the vehicle.
type CameraMode int

const (
	CameraOrbit CameraMode = iota
	CameraChase
)

// String returns the wire name of the mode.
func (m CameraMode) String() string {
	if m == CameraChase {
		return "chase"
	}
	return "orbit"
}

// Snapshot is a read-only view of one simulation frame.
type Snapshot struct {
	Frame      uint64
	Time       float64
	Ready      bool
	Paused     bool
	Coords     mgl64.Vec2
	Heading    mgl64.Vec2
	Pose       surface.Pose
	Delta      mgl64.Mat3
	Skipped    bool
	WheelAngle float64
	Odometer   float64
	Camera     CameraMode
	LookAhead  mgl64.Vec3
}

// Simulation advances the vehicle over the landscape one frame at a time.
type Simulation struct {
	cfg     *config.Config
	loader  *landscape.Loader
	log     *zap.Logger
	vehicle *vehicle.Vehicle

	clock       Clock
	camera      CameraMode
	placeFailed bool
	prev        input.ActionSet
	last        surface.Update
}

// New creates a simulation that drives on whatever loader produces.
// The loader must already be started.
func New(cfg *config.Config, loader *landscape.Loader) *Simulation {
	return &Simulation{
		cfg:    cfg,
		loader: loader,
		log:    logger.Named("sim"),
		last:   surface.Update{Delta: mgl64.Ident3()},
	}
}

// Advance runs one frame of dt seconds with the currently held actions.
//
// Until the landscape is ready the frame only ticks the clock. The first
// ready frame places the vehicle at the configured start, facing +u.
func (s *Simulation) Advance(dt float64, actions input.ActionSet) Snapshot {
	pressed := actions.Pressed(s.prev)
	s.prev = actions
	if pressed.Has(input.ToggleCameraMode) {
		s.camera = 1 - s.camera
		s.log.Debug("camera mode", zap.Stringer("mode", s.camera))
	}

	step := s.clock.Tick(dt)
	s.last = surface.Update{Pose: s.last.Pose, Delta: mgl64.Ident3()}

	if s.vehicle == nil && !s.place() {
		return s.Snapshot()
	}

	up, err := s.vehicle.Advance(step, actions)
	if err != nil {
		s.log.Warn("vehicle step failed", zap.Error(err))
		return s.Snapshot()
	}
	if up.Skipped {
		c := s.vehicle.Coords()
		s.log.Debug("degenerate frame, pose kept", zap.Float64("u", c[0]), zap.Float64("v", c[1]))
	}
	s.last = up
	return s.Snapshot()
}

func (s *Simulation) place() bool {
	if s.placeFailed || !s.loader.Poll() {
		return false
	}

	l := s.cfg.Landscape
	v := vehicle.New(s.loader.Surface(), vehicle.ConfigFrom(s.cfg.Vehicle), surface.FollowerConfig{
		Clearance: l.Clearance,
		Epsilon:   l.Epsilon,
	})
	start := mgl64.Vec2{s.cfg.Vehicle.StartU, s.cfg.Vehicle.StartV}
	if err := v.Place(start, mgl64.Vec2{1, 0}); err != nil {
		s.log.Error("cannot place vehicle", zap.Float64("u", start[0]), zap.Float64("v", start[1]), zap.Error(err))
		s.placeFailed = true
		return false
	}

	s.vehicle = v
	s.last = surface.Update{Pose: v.Pose(), Delta: mgl64.Ident3()}
	s.log.Info("vehicle placed", zap.Float64("u", start[0]), zap.Float64("v", start[1]))
	return true
}

// Snapshot returns the state after the most recent Advance.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Frame:  s.clock.Frames(),
		Time:   s.clock.Elapsed(),
		Paused: s.clock.Paused(),
		Camera: s.camera,
		Delta:  s.last.Delta,
	}
	if s.vehicle == nil {
		return snap
	}

	snap.Ready = true
	snap.Coords = s.vehicle.Coords()
	snap.Heading = s.vehicle.Heading()
	snap.Pose = s.vehicle.Pose()
	snap.Skipped = s.last.Skipped
	snap.WheelAngle = s.vehicle.WheelAngle()
	snap.Odometer = s.vehicle.Odometer()
	snap.LookAhead = s.vehicle.LookAhead(LookAheadCells)
	return snap
}

// Ready reports whether the vehicle is on the landscape.
func (s *Simulation) Ready() bool { return s.vehicle != nil }

// Landscape returns the torus. It panics before the landscape is ready.
func (s *Simulation) Landscape() *surface.Torus { return s.loader.Surface() }

// Camera returns the current camera mode.
func (s *Simulation) Camera() CameraMode { return s.camera }

// SetPaused freezes or resumes the simulation clock. A paused simulation
// still accepts camera toggles but the vehicle does not move.
func (s *Simulation) SetPaused(paused bool) { s.clock.SetPaused(paused) }
