package app

import (
	"github.com/philipparndt/gosplat/internal/measure"
	"github.com/philipparndt/gosplat/internal/selection"
)

// Command is a keyboard-level editor action. Key bindings are the
// frontend's concern; the editor only executes.
type Command int

const (
	CommandToggleDistanceMode Command = iota
	CommandToggleAreaMode
	CommandCompletePolygon
	CommandCancel
	CommandDeleteMeasurement
	CommandDeleteArea
	CommandClearMeasurements
	CommandSelectPicker
	CommandSelectRectangle
	CommandSelectPolygon
	CommandHideSelection
	CommandRestoreHidden
)

// Execute runs a keyboard command against the engines
func (e *Editor) Execute(cmd Command) {
	switch cmd {
	case CommandToggleDistanceMode:
		if e.Measure.Mode() == measure.ModeDistance {
			e.Measure.SetMode(measure.ModeNone)
			e.setPersistent("")
		} else {
			e.Measure.SetMode(measure.ModeDistance)
			e.setPersistent("distance mode: click two points to measure")
		}

	case CommandToggleAreaMode:
		if e.Measure.Mode() == measure.ModeArea {
			e.Measure.SetMode(measure.ModeNone)
			e.setPersistent("")
		} else {
			e.Measure.SetMode(measure.ModeArea)
			e.setPersistent("area mode: click vertices, right-click to close")
		}

	case CommandCompletePolygon:
		if e.Measure.Mode() == measure.ModeArea {
			if err := e.Measure.FinishArea(); err != nil {
				e.setTransient(err.Error())
			}
			return
		}
		e.Selection.CompletePolygon()

	case CommandCancel:
		e.Measure.CancelPending()
		e.Selection.CancelPolygon()
		e.Selection.CancelRect()
		e.lastPreview = nil
		e.drag = dragNone

	case CommandDeleteMeasurement:
		if e.selectedSegmentID != "" {
			e.Measure.DeleteSegment(e.selectedSegmentID)
			e.selectedSegmentID = ""
		}

	case CommandDeleteArea:
		if e.selectedAreaID != "" {
			e.Measure.DeleteArea(e.selectedAreaID)
			e.selectedAreaID = ""
		}

	case CommandClearMeasurements:
		e.Measure.ClearAll()

	case CommandSelectPicker:
		e.Selection.SetMode(selection.ModePicker)
	case CommandSelectRectangle:
		e.Selection.SetMode(selection.ModeRectangle)
	case CommandSelectPolygon:
		e.Selection.SetMode(selection.ModePolygon)

	case CommandHideSelection:
		e.Selection.Hide()
	case CommandRestoreHidden:
		e.Selection.RestoreAll()
	}
}
