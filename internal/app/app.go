// Package app wires the desktop viewer: window, input, simulation and renderer.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/torus-drive/internal/config"
	"github.com/Faultbox/torus-drive/internal/engine/camera"
	"github.com/Faultbox/torus-drive/internal/engine/debug"
	"github.com/Faultbox/torus-drive/internal/engine/input"
	"github.com/Faultbox/torus-drive/internal/engine/renderer"
	"github.com/Faultbox/torus-drive/internal/engine/window"
	"github.com/Faultbox/torus-drive/internal/landscape"
	"github.com/Faultbox/torus-drive/internal/logger"
	"github.com/Faultbox/torus-drive/internal/sim"
)

// maxFrameTime caps dt after stalls (window drags, breakpoints).
const maxFrameTime = 0.1

// App is the desktop client.
type App struct {
	cfg    *config.Config
	log    *zap.Logger
	cancel context.CancelFunc

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input

	loader *landscape.Loader
	sim    *sim.Simulation
	orbit  *camera.OrbitCamera
	chase  *camera.ChaseCamera
	shots  debug.Screenshots
	paused bool
}

// New opens the window and starts loading the landscape in the background.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg: cfg,
		log: logger.Named("app"),
	}

	var err error
	a.window, err = window.New(cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	w, h := a.window.DrawableSize()
	a.renderer, err = renderer.New(w, h)
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.input = input.New(input.DefaultBindings())
	a.orbit = camera.NewOrbitCamera(cfg.Camera.Distance)
	a.chase = camera.NewChaseCamera(cfg.Camera.ChaseBehind, cfg.Camera.ChaseHeight)
	a.shots = debug.Screenshots{Dir: cfg.Window.ScreenshotDir, Prefix: "torus-drive"}

	var ctx context.Context
	ctx, a.cancel = context.WithCancel(context.Background())
	a.loader = landscape.NewLoader(cfg.Landscape)
	a.loader.Start(ctx)
	a.sim = sim.New(cfg, a.loader)

	a.log.Info("app initialized")
	return a, nil
}

// Run drives the frame loop until the window closes.
func (a *App) Run() error {
	last := time.Now()
	frames := 0
	fpsTimer := last

	a.log.Info("starting frame loop")
	for {
		now := time.Now()
		dt := min(now.Sub(last).Seconds(), maxFrameTime)
		last = now

		if a.input.Update() {
			return nil
		}
		if w, h, ok := a.input.Resized(); ok {
			a.renderer.Resize(a.window.DrawableSize())
			a.log.Debug("window resized", zap.Int("width", w), zap.Int("height", h))
		}
		if a.input.PausePressed() {
			a.paused = !a.paused
			a.sim.SetPaused(a.paused)
		}
		if z := a.input.Zoom(); z != 0 {
			a.orbit.HandleZoom(z)
		}
		if dx, dy := a.input.Drag(); dx != 0 || dy != 0 {
			a.orbit.HandleDrag(dx, dy)
		}

		snap := a.sim.Advance(dt, a.input.Actions())
		if snap.Ready && !a.renderer.HasLandscape() {
			a.renderer.UploadLandscape(a.sim.Landscape().Mesh())
		}

		a.renderer.Begin()
		a.renderer.DrawScene(a.viewProj(snap), snap)
		if a.input.ScreenshotPressed() {
			a.screenshot()
		}
		a.window.SwapBuffers()

		frames++
		if time.Since(fpsTimer) >= time.Second {
			a.window.SetTitle(fmt.Sprintf("%s  %d fps  %s", a.cfg.Window.Title, frames, snap.Camera))
			a.log.Debug("fps", zap.Int("count", frames), zap.Float64("u", snap.Coords[0]), zap.Float64("v", snap.Coords[1]))
			frames = 0
			fpsTimer = time.Now()
		}
	}
}

func (a *App) screenshot() {
	pixels, w, h := a.renderer.ReadPixels()
	path, err := a.shots.Save(pixels, w, h, time.Now())
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

func (a *App) viewProj(snap sim.Snapshot) mgl32.Mat4 {
	c := a.cfg.Camera
	proj := camera.Projection(c.FOV, a.renderer.Aspect(), c.Near, c.Far)
	if !snap.Ready {
		a.orbit.Target = mgl32.Vec3{}
		return proj.Mul4(a.orbit.ViewMatrix())
	}

	pos := renderer.Vec3(snap.Pose.Position)
	if snap.Camera == sim.CameraChase {
		a.chase.Follow(pos, renderer.Vec3(snap.Pose.Forward()), renderer.Vec3(snap.Pose.Up()))
		return proj.Mul4(a.chase.ViewMatrix())
	}
	a.orbit.Target = pos
	return proj.Mul4(a.orbit.ViewMatrix())
}

// Close releases everything New acquired.
func (a *App) Close() {
	a.log.Info("closing app")
	a.cancel()
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
