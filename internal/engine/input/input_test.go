package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestHandle_Drag(t *testing.T) {
	tests := []struct {
		name   string
		events []sdl.Event
		dx, dy float32
	}{
		{
			name:   "no button",
			events: []sdl.Event{&sdl.MouseMotionEvent{XRel: 5, YRel: 3}},
		},
		{
			name:   "right button only",
			events: []sdl.Event{&sdl.MouseMotionEvent{State: sdl.ButtonRMask(), XRel: 5, YRel: 3}},
		},
		{
			name:   "left button",
			events: []sdl.Event{&sdl.MouseMotionEvent{State: sdl.ButtonLMask(), XRel: 5, YRel: -3}},
			dx:     5,
			dy:     -3,
		},
		{
			name: "accumulates",
			events: []sdl.Event{
				&sdl.MouseMotionEvent{State: sdl.ButtonLMask(), XRel: 2, YRel: 1},
				&sdl.MouseMotionEvent{XRel: 100, YRel: 100},
				&sdl.MouseMotionEvent{State: sdl.ButtonLMask() | sdl.ButtonRMask(), XRel: 3, YRel: 4},
			},
			dx: 5,
			dy: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := New(DefaultBindings())
			for _, e := range tt.events {
				if in.handle(e) {
					t.Fatal("expected motion not to quit")
				}
			}
			dx, dy := in.Drag()
			if dx != tt.dx || dy != tt.dy {
				t.Errorf("expected drag (%v, %v), got (%v, %v)", tt.dx, tt.dy, dx, dy)
			}
		})
	}
}

func TestReset_ClearsFrameState(t *testing.T) {
	in := New(DefaultBindings())
	in.handle(&sdl.MouseMotionEvent{State: sdl.ButtonLMask(), XRel: 4, YRel: 4})
	in.handle(&sdl.MouseWheelEvent{PreciseY: 1.5})
	in.handle(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_P}})

	in.reset()

	if dx, dy := in.Drag(); dx != 0 || dy != 0 {
		t.Errorf("expected no drag after reset, got (%v, %v)", dx, dy)
	}
	if in.Zoom() != 0 {
		t.Errorf("expected no zoom after reset, got %v", in.Zoom())
	}
	if in.PausePressed() {
		t.Error("expected pause cleared after reset")
	}
}

func TestHandle_Keys(t *testing.T) {
	tests := []struct {
		name       string
		event      sdl.Event
		quit       bool
		pause      bool
		screenshot bool
	}{
		{"quit event", &sdl.QuitEvent{}, true, false, false},
		{"escape", &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_ESCAPE}}, true, false, false},
		{"pause", &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_P}}, false, true, false},
		{"pause repeat", &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_P}}, false, false, false},
		{"pause release", &sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_P}}, false, false, false},
		{"screenshot", &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_F12}}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := New(DefaultBindings())
			if got := in.handle(tt.event); got != tt.quit {
				t.Errorf("expected quit %v, got %v", tt.quit, got)
			}
			if in.PausePressed() != tt.pause {
				t.Errorf("expected pause %v, got %v", tt.pause, in.PausePressed())
			}
			if in.ScreenshotPressed() != tt.screenshot {
				t.Errorf("expected screenshot %v, got %v", tt.screenshot, in.ScreenshotPressed())
			}
		})
	}
}

func TestHandle_Resize(t *testing.T) {
	in := New(DefaultBindings())
	in.handle(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 800, Data2: 600})

	w, h, ok := in.Resized()
	if !ok || w != 800 || h != 600 {
		t.Errorf("expected resize to 800x600, got %dx%d (ok=%v)", w, h, ok)
	}
}
