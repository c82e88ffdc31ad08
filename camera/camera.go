// Package camera implements the first person camera driven by keyboard and
// mouse events.
package camera

import (
	"math"

	"github.com/xlab/linmath"

	"vulkan-engine/events"
)

// Defaults for a freshly constructed camera.
const (
	DefaultFOV        = 30.0
	DefaultNear       = 0.001
	DefaultFar        = 100.0
	DefaultMouseSpeed = 0.005
	DefaultMoveSpeed  = 0.25
)

var (
	startPosition = linmath.Vec3{0.2, 0.005, 4.0}
	startHAngle   = -3.119592
	startVAngle   = 0.0
)

// UniformBufferObject is the layout of the uniform buffer read by the vertex
// shader at binding 0.
type UniformBufferObject struct {
	Model linmath.Mat4x4
	View  linmath.Mat4x4
	Proj  linmath.Mat4x4
}

// Camera keeps position and orientation. It is mutated by HandleEvent and read
// once per frame through UniformData. It is not safe for concurrent use.
type Camera struct {
	Position  linmath.Vec3
	Direction linmath.Vec3
	Right     linmath.Vec3

	HorizontalAngle float64
	VerticalAngle   float64

	FOV        float32
	Near, Far  float32
	MouseSpeed float64
	MoveSpeed  float32

	width, height uint32
	activeKey     events.Key
}

// New returns a camera at the starting position looking into a viewport with
// the given size in pixels.
func New(width, height uint32) *Camera {
	c := &Camera{
		Position:        startPosition,
		HorizontalAngle: startHAngle,
		VerticalAngle:   startVAngle,
		FOV:             DefaultFOV,
		Near:            DefaultNear,
		Far:             DefaultFar,
		MouseSpeed:      DefaultMouseSpeed,
		MoveSpeed:       DefaultMoveSpeed,
	}
	c.SetViewport(width, height)
	c.updateVectors()
	return c
}

// SetViewport changes the size used for the aspect ratio and the center
// towards which mouse movement is measured.
func (c *Camera) SetViewport(width, height uint32) {
	c.width = width
	c.height = height
}

// Center returns the middle of the viewport. The cursor is warped there after
// every mouse move.
func (c *Camera) Center() (x, y float64) {
	return float64(c.width / 2), float64(c.height / 2)
}

// ActiveKey returns the movement key which was pressed or held last. It is
// events.KeyNone after a release.
func (c *Camera) ActiveKey() events.Key {
	return c.activeKey
}

// HandleEvent updates the camera. Mouse movement turns it and key presses or
// holds move it. Only the most recent key has an effect, so holding two keys
// does not move diagonally.
func (c *Camera) HandleEvent(evt events.Event) {
	switch evt := evt.(type) {
	case events.MouseMoveEvent:
		c.look(evt.X, evt.Y)
	case events.KeyEvent:
		switch evt.Action {
		case events.Press, events.Hold:
			c.activeKey = evt.Key
			c.move()
		case events.Release:
			c.activeKey = events.KeyNone
		}
	}
}

func (c *Camera) look(x, y float64) {
	cx, cy := c.Center()
	c.VerticalAngle += c.MouseSpeed * 0.1 * (cy - y)
	c.HorizontalAngle += c.MouseSpeed * 0.1 * (cx - x)
	c.updateVectors()
}

func (c *Camera) move() {
	var step linmath.Vec3
	switch c.activeKey {
	case events.KeyW:
		step.Scale(&c.Direction, c.MoveSpeed)
	case events.KeyS:
		step.Scale(&c.Direction, -c.MoveSpeed)
	case events.KeyD:
		step.Scale(&c.Right, c.MoveSpeed)
	case events.KeyA:
		step.Scale(&c.Right, -c.MoveSpeed)
	default:
		return
	}
	pos := c.Position
	c.Position.Add(&pos, &step)
}

func (c *Camera) updateVectors() {
	v, h := c.VerticalAngle, c.HorizontalAngle
	c.Direction = linmath.Vec3{
		float32(math.Cos(v) * math.Sin(h)),
		float32(math.Sin(v)),
		float32(math.Cos(v) * math.Cos(h)),
	}
	c.Right = linmath.Vec3{
		float32(math.Sin(h - math.Pi/2)),
		0,
		float32(math.Cos(h - math.Pi/2)),
	}
}

// UniformData computes the matrices for the current frame. The view is
// rebuilt every call even when nothing moved.
func (c *Camera) UniformData() UniformBufferObject {
	var ubo UniformBufferObject
	ubo.Model.Identity()

	var center, up linmath.Vec3
	center.Add(&c.Position, &c.Direction)
	up.MultCross(&c.Right, &c.Direction)
	ubo.View.LookAt(&c.Position, &center, &up)

	ubo.Proj = c.Projection()
	return ubo
}

// Projection returns a perspective projection for Vulkan clip space: depth in
// [0, 1] and Y pointing down.
func (c *Camera) Projection() linmath.Mat4x4 {
	aspect := float32(1)
	if c.height != 0 {
		aspect = float32(c.width) / float32(c.height)
	}

	var proj linmath.Mat4x4
	proj.Perspective(linmath.DegreesToRadians(c.FOV), aspect, c.Near, c.Far)
	proj[2][2] = c.Far / (c.Near - c.Far)
	proj[3][2] = -(c.Far * c.Near) / (c.Far - c.Near)
	proj[1][1] *= -1
	return proj
}
