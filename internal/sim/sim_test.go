package sim

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/torus-drive/internal/config"
	"github.com/Faultbox/torus-drive/internal/input"
	"github.com/Faultbox/torus-drive/internal/landscape"
)

const frame = 1.0 / 60

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Landscape.FlatSize = 16
	cfg.Landscape.Scale = 1
	return cfg
}

func readySim(t *testing.T, cfg *config.Config) *Simulation {
	t.Helper()
	loader := landscape.NewLoader(cfg.Landscape)
	loader.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := loader.Wait(ctx); err != nil {
		t.Fatalf("landscape: %v", err)
	}
	return New(cfg, loader)
}

func TestAdvance_NotReady(t *testing.T) {
	cfg := testConfig()
	s := New(cfg, landscape.NewLoader(cfg.Landscape))

	snap := s.Advance(frame, input.NewActionSet(input.Forward))
	if snap.Ready {
		t.Error("expected not ready without a landscape")
	}
	if snap.Time != frame {
		t.Errorf("expected clock to run while loading, got %f", snap.Time)
	}
	if s.Ready() {
		t.Error("expected Ready false")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected Landscape to panic before ready")
		}
	}()
	s.Landscape()
}

func TestAdvance_PlacesAtStart(t *testing.T) {
	s := readySim(t, testConfig())

	snap := s.Advance(frame, 0)
	if !snap.Ready {
		t.Fatal("expected ready after landscape loaded")
	}
	if snap.Coords != (mgl64.Vec2{0, 0}) {
		t.Errorf("expected start (0, 0), got %v", snap.Coords)
	}
	if snap.Heading != (mgl64.Vec2{1, 0}) {
		t.Errorf("expected heading +u, got %v", snap.Heading)
	}

	// Flat torus, outer equator at 1, clearance 1 along +X
	if !snap.Pose.Position.ApproxEqualThreshold(mgl64.Vec3{2, 0, 0}, 1e-9) {
		t.Errorf("expected position (2, 0, 0), got %v", snap.Pose.Position)
	}
	if !snap.Pose.Up().ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("expected up (1, 0, 0), got %v", snap.Pose.Up())
	}

	want := s.Landscape().Point(LookAheadCells, 0)
	if !snap.LookAhead.ApproxEqualThreshold(want, 1e-12) {
		t.Errorf("expected look-ahead %v, got %v", want, snap.LookAhead)
	}
}

func TestAdvance_DrivesForward(t *testing.T) {
	s := readySim(t, testConfig())

	var snap Snapshot
	for i := 0; i < 60; i++ {
		snap = s.Advance(frame, input.NewActionSet(input.Forward))
	}

	// 60 frames at half a cell is 30 cells, which wraps to 14 on a 16-wide field
	if math.Abs(snap.Coords[0]-14) > 1e-6 {
		t.Errorf("expected u 14, got %f", snap.Coords[0])
	}
	if snap.WheelAngle == 0 {
		t.Error("expected wheels to turn")
	}
	if math.Abs(snap.Odometer-30) > 1e-6 {
		t.Errorf("expected odometer 30, got %f", snap.Odometer)
	}
	if snap.Frame != 60 {
		t.Errorf("expected frame 60, got %d", snap.Frame)
	}
}

func TestAdvance_CameraToggleEdgeTriggered(t *testing.T) {
	s := readySim(t, testConfig())
	toggle := input.NewActionSet(input.ToggleCameraMode)

	steps := []struct {
		actions input.ActionSet
		want    CameraMode
	}{
		{toggle, CameraChase},
		{toggle, CameraChase},
		{toggle, CameraChase},
		{0, CameraChase},
		{toggle.With(input.Forward), CameraOrbit},
		{input.NewActionSet(input.Forward), CameraOrbit},
	}

	for i, st := range steps {
		snap := s.Advance(frame, st.actions)
		if snap.Camera != st.want {
			t.Errorf("frame %d: expected %s, got %s", i, st.want, snap.Camera)
		}
	}
}

func TestAdvance_Paused(t *testing.T) {
	s := readySim(t, testConfig())
	first := s.Advance(frame, 0)

	s.SetPaused(true)
	snap := s.Advance(frame, input.NewActionSet(input.Forward, input.TurnLeft))
	if snap.Time != first.Time {
		t.Errorf("expected time frozen at %f, got %f", first.Time, snap.Time)
	}
	if snap.Coords != first.Coords || snap.Heading != first.Heading {
		t.Error("expected vehicle frozen while paused")
	}
	if !snap.Paused {
		t.Error("expected snapshot to report paused")
	}

	s.SetPaused(false)
	snap = s.Advance(frame, input.NewActionSet(input.Forward))
	if snap.Coords == first.Coords {
		t.Error("expected vehicle to move after resume")
	}
}

func TestAdvance_FailedLandscape(t *testing.T) {
	cfg := testConfig()
	cfg.Landscape.HeightMap = filepath.Join(t.TempDir(), "missing.png")

	loader := landscape.NewLoader(cfg.Landscape)
	loader.Start(context.Background())
	s := New(cfg, loader)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Advance(frame, 0).Ready {
			t.Fatal("expected never ready with a broken height map")
		}
		if loader.Err() != nil {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if loader.Err() == nil {
		t.Error("expected load error to surface")
	}
}

func TestCameraMode_String(t *testing.T) {
	if CameraOrbit.String() != "orbit" || CameraChase.String() != "chase" {
		t.Errorf("unexpected names %s, %s", CameraOrbit, CameraChase)
	}
}
