package input

// Keymap maps key names (as reported by a keyboard layout) to actions.
// Several keys may map to the same action.
type Keymap map[string]Action

// DefaultKeymap covers WASD plus the keys sharing those positions on a
// Russian layout, in both cases, and C for the camera.
func DefaultKeymap() Keymap {
	km := Keymap{}
	km.bind(Forward, "w", "W", "ц", "Ц", "ArrowUp")
	km.bind(Back, "s", "S", "ы", "Ы", "ArrowDown")
	km.bind(TurnLeft, "a", "A", "ф", "Ф", "ArrowLeft")
	km.bind(TurnRight, "d", "D", "в", "В", "ArrowRight")
	km.bind(ToggleCameraMode, "c", "C", "с", "С")
	return km
}

func (km Keymap) bind(a Action, keys ...string) {
	for _, k := range keys {
		km[k] = a
	}
}

// Lookup returns the action bound to key.
func (km Keymap) Lookup(key string) (Action, bool) {
	a, ok := km[key]
	return a, ok
}

// KeyState tracks which keys are held and folds them into actions.
type KeyState struct {
	keymap Keymap
	held   map[string]bool
}

// NewKeyState creates a key tracker using km.
func NewKeyState(km Keymap) *KeyState {
	return &KeyState{
		keymap: km,
		held:   make(map[string]bool),
	}
}

// Set records a key press or release. Unmapped keys are ignored and
// reported as false.
func (ks *KeyState) Set(key string, down bool) bool {
	if _, ok := ks.keymap[key]; !ok {
		return false
	}
	if down {
		ks.held[key] = true
	} else {
		delete(ks.held, key)
	}
	return true
}

// Reset releases every key.
func (ks *KeyState) Reset() {
	clear(ks.held)
}

// Actions returns the set of actions for the currently held keys.
func (ks *KeyState) Actions() ActionSet {
	var s ActionSet
	for k := range ks.held {
		s = s.With(ks.keymap[k])
	}
	return s
}
