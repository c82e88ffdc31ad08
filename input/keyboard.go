// Package input turns GLFW window callbacks into events fired on a pump.
package input

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"vulkan-engine/events"
)

// Keyboard translates GLFW key callbacks into events.KeyEvent values.
type Keyboard struct {
	pump *events.Pump
}

// NewKeyboard returns a keyboard firing its events on pump.
func NewKeyboard(pump *events.Pump) *Keyboard {
	return &Keyboard{pump: pump}
}

// Attach installs the keyboard as the key callback of w.
func (k *Keyboard) Attach(w *glfw.Window) {
	w.SetKeyCallback(k.HandleKey)
}

// HandleKey has the glfw.KeyCallback signature. Keys the application does not
// use are dropped.
func (k *Keyboard) HandleKey(
	_ *glfw.Window,
	key glfw.Key,
	_ int,
	action glfw.Action,
	_ glfw.ModifierKey,
) {
	translated := TranslateKey(key)
	if translated == events.KeyNone {
		return
	}

	k.pump.Fire(events.KeyEvent{
		Action: TranslateAction(action),
		Key:    translated,
	})
}

// TranslateKey maps a GLFW key to the keys known to the application.
func TranslateKey(key glfw.Key) events.Key {
	switch key {
	case glfw.KeyW:
		return events.KeyW
	case glfw.KeyA:
		return events.KeyA
	case glfw.KeyS:
		return events.KeyS
	case glfw.KeyD:
		return events.KeyD
	case glfw.KeyEscape:
		return events.KeyEscape
	default:
		return events.KeyNone
	}
}

// TranslateAction maps a GLFW action. Repeat becomes events.Hold.
func TranslateAction(action glfw.Action) events.Action {
	switch action {
	case glfw.Release:
		return events.Release
	case glfw.Repeat:
		return events.Hold
	default:
		return events.Press
	}
}
