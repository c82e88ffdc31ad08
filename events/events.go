// Package events defines the input events delivered to the renderer and the
// pump which fans them out to registered handlers.
package events

// Action is what happened to a key or a mouse button.
type Action uint8

// Actions shared by keys and mouse buttons.
const (
	Press Action = iota
	Release
	Hold
)

func (a Action) String() string {
	switch a {
	case Press:
		return "press"
	case Release:
		return "release"
	case Hold:
		return "hold"
	default:
		return "unknown"
	}
}

// Key identifies the keyboard keys the application reacts to.
type Key uint8

// Recognized keys. KeyNone is the "no active key" marker and is never carried
// by a KeyEvent.
const (
	KeyNone Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyEscape
)

func (k Key) String() string {
	switch k {
	case KeyW:
		return "W"
	case KeyA:
		return "A"
	case KeyS:
		return "S"
	case KeyD:
		return "D"
	case KeyEscape:
		return "Escape"
	default:
		return "none"
	}
}

// Button identifies a mouse button.
type Button uint8

// Mouse buttons.
const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Event is one of KeyEvent, MouseMoveEvent or MouseButtonEvent. The set is
// closed: only types in this package implement it, so handlers switch on the
// concrete type.
type Event interface {
	event()
}

// KeyEvent reports a key press, release or hold.
type KeyEvent struct {
	Action Action
	Key    Key
}

// MouseMoveEvent reports the absolute cursor position in window coordinates.
type MouseMoveEvent struct {
	X, Y float64
}

// MouseButtonEvent reports a mouse button press, release or hold.
type MouseButtonEvent struct {
	Action Action
	Button Button
}

func (KeyEvent) event()         {}
func (MouseMoveEvent) event()   {}
func (MouseButtonEvent) event() {}
