// Package bridge disambiguates pointer input between the editing engines and
// the camera controls underneath the overlay. A plain primary press is held
// pending: a small drag reclassifies it as camera motion and forwards it,
// release below the threshold commits it as the mode-specific click action.
package bridge

import "math"

// DefaultDragThreshold is the cumulative pixel movement at which a pending
// primary press is reclassified as a camera gesture.
const DefaultDragThreshold = 5.0

// Button identifies the pressed pointer button
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

// Mods carries the modifier keys held during an event
type Mods struct {
	Shift bool
	Ctrl  bool
	Alt   bool
}

// Event is a raw pointer event on the overlay surface
type Event struct {
	Pointer int // pointer id
	X, Y    float64
	Button  Button
	Mods    Mods
	Mouse   bool // mouse-type input, mirrored as legacy mouse events
}

// Target receives forwarded camera events. The implementation dispatches
// them to the render surface beneath the overlay.
type Target interface {
	PointerDown(Event)
	PointerMove(Event)
	PointerUp(Event)
}

// Handler receives the events the bridge classifies as editing input.
type Handler interface {
	// SecondaryDown reports whether the press was consumed (area-mode
	// finish/cancel); consumed presses are never forwarded.
	SecondaryDown(Event) bool
	// PrimaryDown starts a pending gesture. Returning true claims the drag
	// (rectangle selection, endpoint drag): a claimed gesture is never
	// reclassified as camera motion.
	PrimaryDown(Event) bool
	// PrimaryMove is a below-threshold or claimed-drag move.
	PrimaryMove(Event)
	// PrimaryUp finalizes a gesture that never escalated to forwarding.
	PrimaryUp(Event)
	// Hover is a move with no pending gesture and no active forwarding.
	Hover(Event)
}

type pending struct {
	origin  Event
	claimed bool
	moved   float64
}

// Bridge routes pointer events between a Handler and a camera Target,
// keyed by pointer id.
type Bridge struct {
	handler Handler
	target  Target

	threshold float64

	pending map[int]*pending
	forward map[int]bool
}

// New creates a bridge with the default drag threshold
func New(handler Handler, target Target) *Bridge {
	return &Bridge{
		handler:   handler,
		target:    target,
		threshold: DefaultDragThreshold,
		pending:   make(map[int]*pending),
		forward:   make(map[int]bool),
	}
}

// SetDragThreshold overrides the reclassification threshold
func (b *Bridge) SetDragThreshold(pixels float64) {
	if pixels >= 0 {
		b.threshold = pixels
	}
}

// Forwarding reports whether the pointer id is currently relaying camera
// events.
func (b *Bridge) Forwarding(pointer int) bool {
	return b.forward[pointer]
}

// PointerDown classifies a press. Secondary presses go to the handler
// first; middle, unconsumed secondary and alt-primary presses establish a
// forward target immediately; a plain primary press is held pending.
func (b *Bridge) PointerDown(ev Event) {
	switch ev.Button {
	case ButtonSecondary:
		if b.handler.SecondaryDown(ev) {
			return
		}
		b.beginForward(ev)
	case ButtonMiddle:
		b.beginForward(ev)
	case ButtonPrimary:
		if ev.Mods.Alt {
			b.beginForward(ev)
			return
		}
		p := &pending{origin: ev}
		p.claimed = b.handler.PrimaryDown(ev)
		b.pending[ev.Pointer] = p
	}
}

func (b *Bridge) beginForward(ev Event) {
	b.forward[ev.Pointer] = true
	b.target.PointerDown(ev)
}

// PointerMove relays to the active forward target, advances a pending
// gesture, or reports a hover.
func (b *Bridge) PointerMove(ev Event) {
	if b.forward[ev.Pointer] {
		b.target.PointerMove(ev)
		return
	}

	p, ok := b.pending[ev.Pointer]
	if !ok {
		b.handler.Hover(ev)
		return
	}

	if p.claimed {
		b.handler.PrimaryMove(ev)
		return
	}

	dx, dy := ev.X-p.origin.X, ev.Y-p.origin.Y
	p.moved = math.Max(p.moved, math.Sqrt(dx*dx+dy*dy))
	if p.moved > b.threshold {
		// Drag-to-orbit must not be eaten by a click action: replay the
		// press at its origin and forward from here on.
		delete(b.pending, ev.Pointer)
		b.beginForward(p.origin)
		b.target.PointerMove(ev)
		return
	}

	b.handler.PrimaryMove(ev)
}

// PointerUp releases the forward target or finalizes a pending gesture.
// Listened at the document level so a release outside the overlay is still
// caught.
func (b *Bridge) PointerUp(ev Event) {
	if b.forward[ev.Pointer] {
		delete(b.forward, ev.Pointer)
		b.target.PointerUp(ev)
		return
	}

	p, ok := b.pending[ev.Pointer]
	if !ok {
		return
	}
	delete(b.pending, ev.Pointer)
	if p.origin.Button == ButtonPrimary {
		b.handler.PrimaryUp(ev)
	}
}

// PointerCancel drops all gesture state for the pointer without committing
func (b *Bridge) PointerCancel(ev Event) {
	if b.forward[ev.Pointer] {
		delete(b.forward, ev.Pointer)
		b.target.PointerUp(ev)
		return
	}
	delete(b.pending, ev.Pointer)
}

// Reset discards every pending gesture and forward target, releasing any
// still-forwarding pointer. Used when the owning mode exits.
func (b *Bridge) Reset() {
	for id := range b.forward {
		b.target.PointerUp(Event{Pointer: id})
	}
	b.forward = make(map[int]bool)
	b.pending = make(map[int]*pending)
}
