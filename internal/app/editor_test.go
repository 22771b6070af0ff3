package app

import (
	"math"
	"testing"

	"github.com/philipparndt/gosplat/internal/bridge"
	"github.com/philipparndt/gosplat/internal/measure"
	"github.com/philipparndt/gosplat/pkg/geometry"
	"github.com/philipparndt/gosplat/pkg/scene/scenetest"
	"github.com/philipparndt/gosplat/pkg/store"
)

type nullTarget struct {
	downs int
}

func (t *nullTarget) PointerDown(bridge.Event) { t.downs++ }
func (t *nullTarget) PointerMove(bridge.Event) {}
func (t *nullTarget) PointerUp(bridge.Event)   {}

func newTestEditor() (*Editor, *scenetest.Scene, *store.MemoryStore, *nullTarget) {
	sc := scenetest.New(
		geometry.NewVector3(20, 20, 0),
		geometry.NewVector3(120, 20, 0),
		geometry.NewVector3(120, 100, 0),
	)
	st := store.NewMemoryStore()
	target := &nullTarget{}
	e := NewEditor(sc, st, target)
	e.LoadSource("cloud-1")
	return e, sc, st, target
}

func click(e *Editor, x, y float64, mods bridge.Mods) {
	e.Bridge.PointerDown(bridge.Event{Pointer: 1, X: x, Y: y, Button: bridge.ButtonPrimary, Mods: mods})
	e.Bridge.PointerUp(bridge.Event{Pointer: 1, X: x, Y: y, Button: bridge.ButtonPrimary, Mods: mods})
}

func TestClickThroughBridgeSelects(t *testing.T) {
	e, _, _, _ := newTestEditor()

	click(e, 20, 20, bridge.Mods{})
	if sel := e.Selection.Selected(); len(sel) != 1 || sel[0] != 0 {
		t.Errorf("click failed: expected [0], got %v", sel)
	}

	click(e, 120, 20, bridge.Mods{Shift: true})
	if sel := e.Selection.Selected(); len(sel) != 2 {
		t.Errorf("shift-click failed: expected 2 selected, got %v", sel)
	}
}

func TestMeasureThroughBridge(t *testing.T) {
	e, _, _, _ := newTestEditor()
	e.Execute(CommandToggleDistanceMode)

	click(e, 20, 20, bridge.Mods{})
	click(e, 120, 20, bridge.Mods{})

	segments := e.Measure.Segments()
	if len(segments) != 1 {
		t.Fatalf("measure failed: expected 1 segment, got %d", len(segments))
	}
	length, _ := e.Measure.SegmentLength(segments[0].ID)
	if math.Abs(length-100) > 1e-9 {
		t.Errorf("measure failed: expected length 100, got %v", length)
	}
}

func TestDragOrbitsInsteadOfMeasuring(t *testing.T) {
	e, _, _, target := newTestEditor()
	e.Execute(CommandToggleDistanceMode)

	e.Bridge.PointerDown(bridge.Event{Pointer: 1, X: 20, Y: 20, Button: bridge.ButtonPrimary})
	e.Bridge.PointerMove(bridge.Event{Pointer: 1, X: 80, Y: 60, Button: bridge.ButtonPrimary})
	e.Bridge.PointerUp(bridge.Event{Pointer: 1, X: 80, Y: 60, Button: bridge.ButtonPrimary})

	if e.Measure.AnchorID() != "" {
		t.Error("drag failed: expected no measurement anchor from a camera drag")
	}
	if target.downs != 1 {
		t.Errorf("drag failed: expected press forwarded to camera, got %d", target.downs)
	}
}

func TestRectangleDragClaimed(t *testing.T) {
	e, _, _, target := newTestEditor()
	e.Execute(CommandSelectRectangle)

	e.Bridge.PointerDown(bridge.Event{Pointer: 1, X: 10, Y: 10, Button: bridge.ButtonPrimary})
	e.Bridge.PointerMove(bridge.Event{Pointer: 1, X: 130, Y: 60, Button: bridge.ButtonPrimary})
	e.Bridge.PointerUp(bridge.Event{Pointer: 1, X: 130, Y: 60, Button: bridge.ButtonPrimary})

	if sel := e.Selection.Selected(); len(sel) != 2 {
		t.Errorf("rect drag failed: expected [0 1], got %v", sel)
	}
	if target.downs != 0 {
		t.Error("rect drag failed: expected nothing forwarded to camera")
	}
}

func TestEndpointDragClaimed(t *testing.T) {
	e, _, _, target := newTestEditor()
	e.Execute(CommandToggleDistanceMode)
	click(e, 20, 20, bridge.Mods{})
	click(e, 120, 20, bridge.Mods{})
	id := e.Measure.Segments()[0].ID

	// Grab the far endpoint and drag it well past the camera threshold.
	e.Bridge.PointerDown(bridge.Event{Pointer: 1, X: 120, Y: 20, Button: bridge.ButtonPrimary})
	e.Bridge.PointerMove(bridge.Event{Pointer: 1, X: 300, Y: 220, Button: bridge.ButtonPrimary})
	e.Bridge.PointerUp(bridge.Event{Pointer: 1, X: 300, Y: 220, Button: bridge.ButtonPrimary})

	if target.downs != 0 {
		t.Error("endpoint drag failed: expected the drag claimed, not forwarded")
	}
	length, _ := e.Measure.SegmentLength(id)
	expected := math.Sqrt(280*280 + 200*200)
	if math.Abs(length-expected) > 1e-9 {
		t.Errorf("endpoint drag failed: expected length %v, got %v", expected, length)
	}
}

func TestSecondaryFinishesArea(t *testing.T) {
	e, _, _, target := newTestEditor()
	e.Execute(CommandToggleAreaMode)

	click(e, 20, 20, bridge.Mods{})
	click(e, 120, 20, bridge.Mods{})
	click(e, 120, 100, bridge.Mods{})
	e.Bridge.PointerDown(bridge.Event{Pointer: 1, Button: bridge.ButtonSecondary})

	if len(e.Measure.Areas()) != 1 {
		t.Fatalf("area finish failed: expected 1 area, got %d", len(e.Measure.Areas()))
	}
	if target.downs != 0 {
		t.Error("area finish failed: expected secondary press consumed")
	}
}

func TestSecondaryWarnsBelowThreeVertices(t *testing.T) {
	e, _, _, _ := newTestEditor()
	e.Execute(CommandToggleAreaMode)

	click(e, 20, 20, bridge.Mods{})
	e.Bridge.PointerDown(bridge.Event{Pointer: 1, Button: bridge.ButtonSecondary})

	if len(e.Measure.Areas()) != 0 {
		t.Error("area warn failed: expected no area committed")
	}
	if e.StatusText() == "" {
		t.Error("area warn failed: expected a transient warning")
	}
}

func TestSecondaryExitsEmptyAreaMode(t *testing.T) {
	e, _, _, _ := newTestEditor()
	e.Execute(CommandToggleAreaMode)

	e.Bridge.PointerDown(bridge.Event{Pointer: 1, Button: bridge.ButtonSecondary})
	if e.Measure.Mode() != measure.ModeNone {
		t.Error("area exit failed: expected mode cleared by secondary with no vertices")
	}
}

func TestAutoSaveOnCommit(t *testing.T) {
	e, _, st, _ := newTestEditor()
	e.Execute(CommandToggleDistanceMode)

	click(e, 20, 20, bridge.Mods{})
	click(e, 120, 20, bridge.Mods{})

	if _, ok := st.Get("cloud-1"); !ok {
		t.Fatal("auto-save failed: expected state stored after commit")
	}

	// A fresh editor over the same store sees the measurement.
	sc := scenetest.New(
		geometry.NewVector3(20, 20, 0),
		geometry.NewVector3(120, 20, 0),
		geometry.NewVector3(120, 100, 0),
	)
	e2 := NewEditor(sc, st, &nullTarget{})
	e2.LoadSource("cloud-1")
	if len(e2.Measure.Segments()) != 1 {
		t.Errorf("auto-save failed: expected rehydrated segment, got %d", len(e2.Measure.Segments()))
	}
}

func TestSelectAndDeleteMeasurement(t *testing.T) {
	e, _, _, _ := newTestEditor()
	e.Execute(CommandToggleDistanceMode)
	click(e, 20, 20, bridge.Mods{})
	click(e, 120, 20, bridge.Mods{})
	e.Execute(CommandToggleDistanceMode) // leave mode

	if !e.SelectMeasurementAt(120, 20) {
		t.Fatal("SelectMeasurementAt failed: expected a hit on the endpoint")
	}
	e.Execute(CommandDeleteMeasurement)
	if len(e.Measure.Segments()) != 0 {
		t.Errorf("delete failed: expected no segments, got %d", len(e.Measure.Segments()))
	}
}

func TestPolygonSelectionThroughCommands(t *testing.T) {
	e, _, _, _ := newTestEditor()
	e.Execute(CommandSelectPolygon)

	click(e, 0, 0, bridge.Mods{})
	click(e, 200, 0, bridge.Mods{})
	click(e, 200, 60, bridge.Mods{})
	click(e, 0, 60, bridge.Mods{})
	e.Execute(CommandCompletePolygon)

	if sel := e.Selection.Selected(); len(sel) != 2 {
		t.Errorf("polygon failed: expected points 0 and 1 inside, got %v", sel)
	}
}

func TestCancelCommandClearsEverything(t *testing.T) {
	e, _, _, _ := newTestEditor()
	e.Execute(CommandToggleDistanceMode)
	click(e, 20, 20, bridge.Mods{})
	e.Execute(CommandCancel)
	if e.Measure.AnchorID() != "" {
		t.Error("cancel failed: expected anchor discarded")
	}

	e.Execute(CommandToggleDistanceMode)
	e.Execute(CommandSelectPolygon)
	click(e, 0, 0, bridge.Mods{})
	e.Execute(CommandCancel)
	if len(e.Selection.PolygonVertices()) != 0 {
		t.Error("cancel failed: expected polygon ring discarded")
	}
}

func TestHideAndRestoreCommands(t *testing.T) {
	e, sc, _, _ := newTestEditor()

	click(e, 20, 20, bridge.Mods{})
	e.Execute(CommandHideSelection)
	if !sc.Hidden[0] {
		t.Error("hide failed: expected point 0 hidden")
	}
	e.Execute(CommandRestoreHidden)
	if len(sc.Hidden) != 0 {
		t.Error("restore failed: expected hidden set cleared")
	}
}

func TestReloadPicksUpExternalEdit(t *testing.T) {
	e, _, st, _ := newTestEditor()
	e.Execute(CommandToggleDistanceMode)
	click(e, 20, 20, bridge.Mods{})
	click(e, 120, 20, bridge.Mods{})

	serialized, _ := st.Get("cloud-1")

	e.Execute(CommandClearMeasurements)
	if len(e.Measure.Segments()) != 0 {
		t.Fatal("setup failed: expected cleared engine")
	}

	// External tool writes the old state back; the watcher callback reloads.
	st.Set("cloud-1", serialized)
	e.Reload()
	if len(e.Measure.Segments()) != 1 {
		t.Errorf("Reload failed: expected 1 segment after external edit, got %d", len(e.Measure.Segments()))
	}
}

func TestModeAwarePreview(t *testing.T) {
	e, _, _, _ := newTestEditor()
	e.Execute(CommandToggleDistanceMode)
	click(e, 20, 20, bridge.Mods{})

	e.Bridge.PointerMove(bridge.Event{Pointer: 1, X: 120, Y: 20})
	preview, ok := e.LastPreview()
	if !ok {
		t.Fatal("preview failed: expected a live preview after hover")
	}
	if math.Abs(preview.Length-100) > 1e-9 {
		t.Errorf("preview failed: expected length 100, got %v", preview.Length)
	}
	if preview.Axis != geometry.AxisX {
		t.Errorf("preview failed: expected axis X, got %d", preview.Axis)
	}
}
