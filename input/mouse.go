package input

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"vulkan-engine/events"
)

// Mouse translates GLFW cursor and button callbacks into mouse events.
type Mouse struct {
	pump *events.Pump
}

// NewMouse returns a mouse firing its events on pump.
func NewMouse(pump *events.Pump) *Mouse {
	return &Mouse{pump: pump}
}

// Attach installs the mouse callbacks on w.
func (m *Mouse) Attach(w *glfw.Window) {
	w.SetCursorPosCallback(m.HandleMove)
	w.SetMouseButtonCallback(m.HandleButton)
}

// HandleMove has the glfw.CursorPosCallback signature.
func (m *Mouse) HandleMove(_ *glfw.Window, x, y float64) {
	m.pump.Fire(events.MouseMoveEvent{X: x, Y: y})
}

// HandleButton has the glfw.MouseButtonCallback signature. Only the left,
// right and middle buttons are reported.
func (m *Mouse) HandleButton(
	_ *glfw.Window,
	button glfw.MouseButton,
	action glfw.Action,
	_ glfw.ModifierKey,
) {
	var translated events.Button
	switch button {
	case glfw.MouseButtonLeft:
		translated = events.ButtonLeft
	case glfw.MouseButtonRight:
		translated = events.ButtonRight
	case glfw.MouseButtonMiddle:
		translated = events.ButtonMiddle
	default:
		return
	}

	m.pump.Fire(events.MouseButtonEvent{
		Action: TranslateAction(action),
		Button: translated,
	})
}
