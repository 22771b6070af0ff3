// Package app wires the editing engines together: pointer input flows
// through the disambiguation bridge into the selection and measurement
// engines, every measurement change mirrors into the state store, and
// external sidecar edits reload automatically.
package app

import (
	"errors"
	"fmt"

	"github.com/philipparndt/gosplat/internal/bridge"
	"github.com/philipparndt/gosplat/internal/measure"
	"github.com/philipparndt/gosplat/internal/selection"
	"github.com/philipparndt/gosplat/pkg/scene"
	"github.com/philipparndt/gosplat/pkg/store"
)

// EndpointHitRadius is the pixel tolerance for grabbing a committed segment
// endpoint or area vertex.
const EndpointHitRadius = 10.0

type dragKind int

const (
	dragNone dragKind = iota
	dragRect
	dragEndpoint
	dragVertex
)

// Editor owns the interactive editing state for one loaded point cloud.
type Editor struct {
	scene scene.Adapter

	Selection *selection.Engine
	Measure   *measure.Engine
	Bridge    *bridge.Bridge

	store    store.Store
	stateKey string

	status Status

	drag        dragKind
	dragID      string
	dragEnd     int
	lastPreview *measure.Preview

	selectedSegmentID string
	selectedAreaID    string
}

// NewEditor creates an editor over the given scene, persisting measurement
// state into st. target receives the camera events the bridge forwards.
func NewEditor(sc scene.Adapter, st store.Store, target bridge.Target) *Editor {
	e := &Editor{
		scene:     sc,
		Selection: selection.NewEngine(sc),
		Measure:   measure.NewEngine(sc),
		store:     st,
	}
	e.Bridge = bridge.New(e, target)
	e.Measure.SetOnChange(e.autoSave)
	return e
}

// LoadSource rehydrates persisted measurement state for a new source key,
// e.g. when switching models. Called once per source change.
func (e *Editor) LoadSource(key string) {
	e.stateKey = key
	e.selectedSegmentID = ""
	e.selectedAreaID = ""
	if e.store != nil && key != "" {
		e.Measure.LoadFrom(e.store, key)
	}
}

// StateKey returns the active persistence key
func (e *Editor) StateKey() string {
	return e.stateKey
}

// Reload re-reads persisted state for the current source, for sidecar
// watcher callbacks.
func (e *Editor) Reload() {
	if e.store == nil || e.stateKey == "" {
		return
	}
	e.Measure.LoadFrom(e.store, e.stateKey)
	e.setTransient("measurements reloaded")
}

func (e *Editor) autoSave() {
	if e.store == nil || e.stateKey == "" {
		return
	}
	if err := e.Measure.SaveTo(e.store, e.stateKey); err != nil {
		e.setTransient(fmt.Sprintf("failed to save measurements: %v", err))
	}
}

// LastPreview returns the live measurement preview for overlay rendering
func (e *Editor) LastPreview() (measure.Preview, bool) {
	if e.lastPreview == nil {
		return measure.Preview{}, false
	}
	return *e.lastPreview, true
}

// SelectedSegmentID returns the segment the user last clicked, if any
func (e *Editor) SelectedSegmentID() string {
	return e.selectedSegmentID
}

// SelectedAreaID returns the area the user last clicked, if any
func (e *Editor) SelectedAreaID() string {
	return e.selectedAreaID
}

func combineFromMods(mods bridge.Mods) selection.Combine {
	switch {
	case mods.Shift:
		return selection.CombineAdd
	case mods.Ctrl:
		return selection.CombineToggle
	}
	return selection.CombineReplace
}

// SecondaryDown implements bridge.Handler. In area mode the secondary
// button finishes or cancels the polygon; with a pending anchor or
// in-progress selection ring it cancels those. Anything else is left for
// camera forwarding.
func (e *Editor) SecondaryDown(ev bridge.Event) bool {
	switch e.Measure.Mode() {
	case measure.ModeArea:
		switch len(e.Measure.PendingVertices()) {
		case 0:
			e.Measure.SetMode(measure.ModeNone)
			e.setPersistent("")
		case 1, 2:
			e.setTransient("polygon needs at least 3 vertices")
		default:
			if err := e.Measure.FinishArea(); err != nil {
				e.setTransient(err.Error())
			}
		}
		return true
	case measure.ModeDistance:
		if e.Measure.AnchorID() != "" {
			e.Measure.CancelPending()
			return true
		}
	}

	if e.Selection.Mode() == selection.ModePolygon && len(e.Selection.PolygonVertices()) > 0 {
		e.Selection.CancelPolygon()
		return true
	}
	return false
}

// PrimaryDown implements bridge.Handler. Claims the gesture when it starts
// a drag the engines own: a selection rectangle, a segment endpoint drag or
// an area vertex drag.
func (e *Editor) PrimaryDown(ev bridge.Event) bool {
	e.drag = dragNone

	if e.Measure.Mode() != measure.ModeNone {
		if id, end, ok := e.Measure.HitTestSegmentEndpoint(ev.X, ev.Y, EndpointHitRadius); ok {
			e.drag = dragEndpoint
			e.dragID = id
			e.dragEnd = end
			return true
		}
		if id, vertex, ok := e.Measure.HitTestAreaVertex(ev.X, ev.Y, EndpointHitRadius); ok {
			e.drag = dragVertex
			e.dragID = id
			e.dragEnd = vertex
			return true
		}
		return false
	}

	if e.Selection.Mode() == selection.ModeRectangle {
		e.drag = dragRect
		e.Selection.BeginRect(ev.X, ev.Y, combineFromMods(ev.Mods))
		return true
	}
	return false
}

// PrimaryMove implements bridge.Handler: advances a claimed drag or
// refreshes the live preview.
func (e *Editor) PrimaryMove(ev bridge.Event) {
	switch e.drag {
	case dragRect:
		e.Selection.UpdateRect(ev.X, ev.Y)
	case dragEndpoint:
		e.reportMeasureErr(e.Measure.DragSegmentEndpoint(e.dragID, e.dragEnd, ev.X, ev.Y))
	case dragVertex:
		e.reportMeasureErr(e.Measure.DragAreaVertex(e.dragID, e.dragEnd, ev.X, ev.Y))
	default:
		e.updatePreview(ev.X, ev.Y)
	}
}

// PrimaryUp implements bridge.Handler: completes a claimed drag or commits
// the mode-specific click action.
func (e *Editor) PrimaryUp(ev bridge.Event) {
	drag := e.drag
	e.drag = dragNone

	switch drag {
	case dragRect:
		e.Selection.CompleteRect()
		return
	case dragEndpoint, dragVertex:
		return
	}

	switch e.Measure.Mode() {
	case measure.ModeDistance:
		e.reportMeasureErr(e.Measure.PlaceDistancePoint(ev.X, ev.Y))
		e.lastPreview = nil
		return
	case measure.ModeArea:
		e.reportMeasureErr(e.Measure.AddAreaVertex(ev.X, ev.Y))
		e.lastPreview = nil
		return
	}

	if e.Selection.Mode() == selection.ModePolygon {
		e.Selection.AddPolygonVertex(ev.X, ev.Y, combineFromMods(ev.Mods))
		return
	}
	e.Selection.Click(ev.X, ev.Y, combineFromMods(ev.Mods))
}

// Hover implements bridge.Handler: keeps the measurement preview live while
// no button is down.
func (e *Editor) Hover(ev bridge.Event) {
	e.updatePreview(ev.X, ev.Y)
}

func (e *Editor) updatePreview(x, y float64) {
	if preview, ok := e.Measure.PreviewAt(x, y); ok {
		e.lastPreview = &preview
	} else {
		e.lastPreview = nil
	}
}

func (e *Editor) reportMeasureErr(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, measure.ErrNoPoint) {
		e.setTransient("no point found here")
		return
	}
	e.setTransient(err.Error())
}

// SelectMeasurementAt picks a segment or area whose endpoint/vertex lies
// under the cursor, for the delete commands.
func (e *Editor) SelectMeasurementAt(x, y float64) bool {
	if id, _, ok := e.Measure.HitTestSegmentEndpoint(x, y, EndpointHitRadius); ok {
		e.selectedSegmentID = id
		e.selectedAreaID = ""
		return true
	}
	if id, _, ok := e.Measure.HitTestAreaVertex(x, y, EndpointHitRadius); ok {
		e.selectedAreaID = id
		e.selectedSegmentID = ""
		return true
	}
	e.selectedSegmentID = ""
	e.selectedAreaID = ""
	return false
}
