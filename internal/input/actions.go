// Package input defines the driving actions and decodes raw keys into them.
//
// Key handling happens once, at the boundary: adapters (SDL scancodes,
// websocket key names) produce an ActionSet and the simulation only ever
// sees actions.
package input

import (
	"fmt"
	"strings"
)

// Action is a single driving command.
type Action uint8

const (
	Forward Action = iota
	Back
	TurnLeft
	TurnRight
	ToggleCameraMode

	actionCount
)

var actionNames = [actionCount]string{
	Forward:          "forward",
	Back:             "back",
	TurnLeft:         "turn_left",
	TurnRight:        "turn_right",
	ToggleCameraMode: "toggle_camera",
}

// String returns the wire name of the action.
func (a Action) String() string {
	if a < actionCount {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", a)
}

// ParseAction converts a wire name back into an Action.
func ParseAction(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for a, n := range actionNames {
		if n == name {
			return Action(a), nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", name)
}

// ActionSet is a bitmask of held actions.
type ActionSet uint8

// NewActionSet builds a set from the given actions.
func NewActionSet(actions ...Action) ActionSet {
	var s ActionSet
	for _, a := range actions {
		s = s.With(a)
	}
	return s
}

// Has reports whether a is in the set.
func (s ActionSet) Has(a Action) bool { return s&(1<<a) != 0 }

// With returns the set plus a.
func (s ActionSet) With(a Action) ActionSet { return s | 1<<a }

// Without returns the set minus a.
func (s ActionSet) Without(a Action) ActionSet { return s &^ (1 << a) }

// Pressed returns the actions held now that were not held in prev.
func (s ActionSet) Pressed(prev ActionSet) ActionSet { return s &^ prev }

// Actions lists the members in declaration order.
func (s ActionSet) Actions() []Action {
	var out []Action
	for a := Action(0); a < actionCount; a++ {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

// Names lists the wire names of the members.
func (s ActionSet) Names() []string {
	actions := s.Actions()
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.String()
	}
	return names
}

// ParseActionSet builds a set from wire names.
func ParseActionSet(names []string) (ActionSet, error) {
	var s ActionSet
	for _, n := range names {
		a, err := ParseAction(n)
		if err != nil {
			return 0, err
		}
		s = s.With(a)
	}
	return s, nil
}
