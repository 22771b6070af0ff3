package app

import (
	"github.com/philipparndt/gosplat/internal/bridge"
	"github.com/philipparndt/gosplat/pkg/viewer"
)

// CameraTarget adapts the viewer's camera controller to the bridge's
// forward-target contract: forwarded drags orbit or pan depending on the
// button that started the gesture.
type CameraTarget struct {
	controller *viewer.Controller

	active map[int]bridge.Event // last event per forwarding pointer
}

func NewCameraTarget(controller *viewer.Controller) *CameraTarget {
	return &CameraTarget{
		controller: controller,
		active:     make(map[int]bridge.Event),
	}
}

// PointerDown starts a camera gesture for the pointer
func (c *CameraTarget) PointerDown(ev bridge.Event) {
	c.active[ev.Pointer] = ev
}

// PointerMove applies the drag delta: secondary and middle buttons pan,
// everything else orbits.
func (c *CameraTarget) PointerMove(ev bridge.Event) {
	last, ok := c.active[ev.Pointer]
	if !ok {
		return
	}
	dx, dy := ev.X-last.X, ev.Y-last.Y
	switch last.Button {
	case bridge.ButtonSecondary, bridge.ButtonMiddle:
		c.controller.Pan(dx, dy)
	default:
		c.controller.Orbit(dx, dy)
	}
	ev.Button = last.Button
	c.active[ev.Pointer] = ev
}

// PointerUp ends the gesture
func (c *CameraTarget) PointerUp(ev bridge.Event) {
	delete(c.active, ev.Pointer)
}

// Scroll zooms; wheel events bypass the bridge entirely
func (c *CameraTarget) Scroll(steps float64) {
	c.controller.Zoom(steps)
}
