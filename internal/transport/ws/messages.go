package ws

import (
	"encoding/json"
	"fmt"

	"github.com/Faultbox/torus-drive/internal/sim"
	"github.com/Faultbox/torus-drive/pkg/surface"
)

// Message types.
const (
	MessageTypeLandscape = "landscape"
	MessageTypeState     = "state"
	MessageTypeError     = "error"
	MessageTypeKey       = "key"
	MessageTypeActions   = "actions"
)

// ClientMessage is anything a viewer may send. Key messages carry Key and
// Down; actions messages carry the complete held set.
type ClientMessage struct {
	Type    string   `json:"type"`
	Key     string   `json:"key,omitempty"`
	Down    bool     `json:"down,omitempty"`
	Actions []string `json:"actions,omitempty"`
}

// ParseClientMessage decodes and checks a viewer message.
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("parsing message: %w", err)
	}
	switch msg.Type {
	case MessageTypeKey:
		if msg.Key == "" {
			return nil, fmt.Errorf("key message without key")
		}
	case MessageTypeActions:
	default:
		return nil, fmt.Errorf("unknown message type %q", msg.Type)
	}
	return &msg, nil
}

// LandscapeMessage carries the mesh once the landscape is ready.
type LandscapeMessage struct {
	Type      string    `json:"type"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Positions []float32 `json:"positions"`
	Normals   []float32 `json:"normals"`
	Indices   []uint32  `json:"indices"`
}

// NewLandscapeMessage wraps a flattened mesh.
func NewLandscapeMessage(m surface.Mesh) *LandscapeMessage {
	return &LandscapeMessage{
		Type:      MessageTypeLandscape,
		Width:     m.Width,
		Height:    m.Height,
		Positions: m.Positions,
		Normals:   m.Normals,
		Indices:   m.Indices,
	}
}

// StateMessage is sent every tick.
type StateMessage struct {
	Type       string     `json:"type"`
	Frame      uint64     `json:"frame"`
	Time       float64    `json:"time"`
	Ready      bool       `json:"ready"`
	Paused     bool       `json:"paused,omitempty"`
	Coords     [2]float64 `json:"coords"`
	Heading    [2]float64 `json:"heading"`
	Position   [3]float64 `json:"position"`
	Rotation   [4]float64 `json:"rotation"` // quaternion x, y, z, w
	Skipped    bool       `json:"skipped,omitempty"`
	WheelAngle float64    `json:"wheel_angle"`
	Odometer   float64    `json:"odometer"`
	Camera     string     `json:"camera"`
	LookAhead  [3]float64 `json:"look_ahead"`
}

// NewStateMessage converts a simulation snapshot.
func NewStateMessage(s sim.Snapshot) *StateMessage {
	msg := &StateMessage{
		Type:       MessageTypeState,
		Frame:      s.Frame,
		Time:       s.Time,
		Ready:      s.Ready,
		Paused:     s.Paused,
		Skipped:    s.Skipped,
		WheelAngle: s.WheelAngle,
		Odometer:   s.Odometer,
		Camera:     s.Camera.String(),
	}
	if !s.Ready {
		msg.Rotation = [4]float64{0, 0, 0, 1}
		return msg
	}

	q := s.Pose.Quat()
	msg.Coords = s.Coords
	msg.Heading = s.Heading
	msg.Position = s.Pose.Position
	msg.Rotation = [4]float64{q.V[0], q.V[1], q.V[2], q.W}
	msg.LookAhead = s.LookAhead
	return msg
}

// ErrorMessage reports a rejected client message.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewErrorMessage builds an error reply.
func NewErrorMessage(err error) *ErrorMessage {
	return &ErrorMessage{Type: MessageTypeError, Message: err.Error()}
}
