// Package input turns SDL2 events and keyboard state into driving actions.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/torus-drive/internal/input"
)

// Bindings maps physical key positions to actions. Scancodes do not depend
// on the active keyboard layout, so W drives forward on QWERTY and on the
// Russian layout alike.
type Bindings map[sdl.Scancode]input.Action

// DefaultBindings returns WASD, the arrow keys and C for the camera.
func DefaultBindings() Bindings {
	return Bindings{
		sdl.SCANCODE_W:     input.Forward,
		sdl.SCANCODE_UP:    input.Forward,
		sdl.SCANCODE_S:     input.Back,
		sdl.SCANCODE_DOWN:  input.Back,
		sdl.SCANCODE_A:     input.TurnLeft,
		sdl.SCANCODE_LEFT:  input.TurnLeft,
		sdl.SCANCODE_D:     input.TurnRight,
		sdl.SCANCODE_RIGHT: input.TurnRight,
		sdl.SCANCODE_C:     input.ToggleCameraMode,
	}
}

// Input polls SDL once per frame.
type Input struct {
	bindings Bindings

	resized       bool
	width, height int
	pause         bool
	screenshot    bool
	zoom          float32
	dragX, dragY  float32
}

// New creates an input handler with the given bindings.
func New(b Bindings) *Input {
	return &Input{bindings: b}
}

// Update drains the SDL event queue. It returns true when the user asked
// to quit (window close or Escape).
func (i *Input) Update() bool {
	i.reset()
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if i.handle(event) {
			return true
		}
	}
	return false
}

func (i *Input) reset() {
	i.resized = false
	i.pause = false
	i.screenshot = false
	i.zoom = 0
	i.dragX, i.dragY = 0, 0
}

// handle records one event and reports whether it asks to quit.
func (i *Input) handle(event sdl.Event) bool {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			i.resized = true
			i.width, i.height = int(e.Data1), int(e.Data2)
		}

	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
			return false
		}
		switch e.Keysym.Scancode {
		case sdl.SCANCODE_ESCAPE:
			return true
		case sdl.SCANCODE_P:
			i.pause = true
		case sdl.SCANCODE_F12:
			i.screenshot = true
		}

	case *sdl.MouseMotionEvent:
		// Orbit while the left button is held.
		if e.State&sdl.ButtonLMask() != 0 {
			i.dragX += float32(e.XRel)
			i.dragY += float32(e.YRel)
		}

	case *sdl.MouseWheelEvent:
		i.zoom += e.PreciseY
	}
	return false
}

// Actions returns the actions whose keys are held right now.
func (i *Input) Actions() input.ActionSet {
	state := sdl.GetKeyboardState()
	var held input.ActionSet
	for code, action := range i.bindings {
		if int(code) < len(state) && state[code] != 0 {
			held = held.With(action)
		}
	}
	return held
}

// Resized reports a window size change seen by the last Update.
func (i *Input) Resized() (width, height int, ok bool) {
	return i.width, i.height, i.resized
}

// PausePressed reports whether P went down during the last Update.
func (i *Input) PausePressed() bool { return i.pause }

// ScreenshotPressed reports whether F12 went down during the last Update.
func (i *Input) ScreenshotPressed() bool { return i.screenshot }

// Zoom returns the mouse wheel movement seen by the last Update.
func (i *Input) Zoom() float32 { return i.zoom }

// Drag returns the mouse movement with the left button held seen by the
// last Update.
func (i *Input) Drag() (dx, dy float32) { return i.dragX, i.dragY }
