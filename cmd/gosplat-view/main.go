package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/philipparndt/gosplat/internal/app"
	"github.com/philipparndt/gosplat/pkg/cloud"
	"github.com/philipparndt/gosplat/pkg/geometry"
	"github.com/philipparndt/gosplat/pkg/store"
	"github.com/philipparndt/gosplat/pkg/viewer"
	"github.com/philipparndt/gosplat/pkg/watcher"
)

// App holds the window and the wiring for the currently loaded cloud
type App struct {
	window  fyne.Window
	cloud   *cloud.Cloud
	view    *viewer.View
	editor  *app.Editor
	camera  *app.CameraTarget
	watcher *watcher.StateWatcher
	render  *CloudView

	statusLabel    *widget.Label
	selectionLabel *widget.Label
	measureList    *widget.Label
	cloudInfoLabel *widget.Label
}

func main() {
	a := fyneapp.New()
	w := a.NewWindow("GoSplat - Point Cloud Inspector")

	appInstance := &App{
		window: w,
	}

	if len(os.Args) > 1 {
		appInstance.loadFile(os.Args[1])
	} else {
		appInstance.showWelcomeScreen()
	}

	w.Resize(fyne.NewSize(1200, 800))
	w.ShowAndRun()
}

func (a *App) showWelcomeScreen() {
	welcomeLabel := widget.NewLabel("Welcome to GoSplat")
	welcomeLabel.TextStyle = fyne.TextStyle{Bold: true}

	instructionLabel := widget.NewLabel("Click 'Open PLY File' to load a point cloud")

	openButton := widget.NewButton("Open PLY File", func() {
		a.showFileDialog()
	})

	content := container.NewVBox(
		layout.NewSpacer(),
		container.NewCenter(welcomeLabel),
		container.NewCenter(instructionLabel),
		layout.NewSpacer(),
		container.NewCenter(openButton),
		layout.NewSpacer(),
	)

	a.window.SetContent(content)
}

func (a *App) showFileDialog() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		a.loadFile(reader.URI().Path())
	}, a.window)
}

func (a *App) loadFile(filename string) {
	absPath, err := filepath.Abs(filename)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}

	c, err := cloud.Parse(absPath)
	if err != nil {
		dialog.ShowError(fmt.Errorf("failed to load PLY file: %w", err), a.window)
		return
	}

	if a.watcher != nil {
		a.watcher.Close()
		a.watcher = nil
	}

	a.cloud = c
	a.view = viewer.NewView(c)

	st := a.openStore()
	a.camera = app.NewCameraTarget(viewer.NewController(a.view))
	a.editor = app.NewEditor(a.view, st, a.camera)
	a.editor.LoadSource(absPath)

	a.setupMainUI()
	a.watchState(st, absPath)
}

// openStore opens the per-user sidecar store; on failure the session simply
// runs without persistence.
func (a *App) openStore() *store.FileStore {
	dir, err := store.DefaultDir()
	if err != nil {
		return nil
	}
	st, err := store.NewFileStore(dir)
	if err != nil {
		return nil
	}
	return st
}

// watchState reloads measurements when the sidecar file changes on disk,
// so external edits show up live.
func (a *App) watchState(st *store.FileStore, key string) {
	if st == nil {
		return
	}
	sw, err := watcher.NewStateWatcher(250 * time.Millisecond)
	if err != nil {
		return
	}
	err = sw.Watch(st.Path(key), func(string) {
		fyne.Do(func() {
			a.editor.Reload()
			a.refreshPanel()
			a.render.Refresh()
		})
	})
	if err != nil {
		sw.Close()
		return
	}
	sw.Start()
	a.watcher = sw
}

func (a *App) setupMainUI() {
	a.statusLabel = widget.NewLabel("")
	a.statusLabel.TextStyle = fyne.TextStyle{Bold: true}
	a.selectionLabel = widget.NewLabel("Selection: none")
	a.measureList = widget.NewLabel("No measurements")
	a.measureList.Wrapping = fyne.TextWrapWord
	a.cloudInfoLabel = widget.NewLabel("")

	a.render = NewCloudView(a.view, a.editor, a.camera)
	a.render.SetOnChanged(a.refreshPanel)

	openButton := widget.NewButton("Open File", func() {
		a.showFileDialog()
	})

	distanceButton := widget.NewButton("Distance (D)", func() {
		a.exec(app.CommandToggleDistanceMode)
	})
	areaButton := widget.NewButton("Area (A)", func() {
		a.exec(app.CommandToggleAreaMode)
	})
	calibrateButton := widget.NewButton("Calibrate...", func() {
		a.showCalibrateDialog()
	})
	clearButton := widget.NewButton("Clear Measurements", func() {
		dialog.ShowConfirm("Clear Measurements", "Remove all measurements for this cloud?",
			func(confirmed bool) {
				if confirmed {
					a.exec(app.CommandClearMeasurements)
				}
			}, a.window)
	})

	pickerButton := widget.NewButton("Picker (1)", func() {
		a.exec(app.CommandSelectPicker)
	})
	rectButton := widget.NewButton("Rectangle (2)", func() {
		a.exec(app.CommandSelectRectangle)
	})
	polygonButton := widget.NewButton("Polygon (3)", func() {
		a.exec(app.CommandSelectPolygon)
	})
	fitCircleButton := widget.NewButton("Fit Circle", func() {
		a.showFitCircleDialog()
	})
	hideButton := widget.NewButton("Hide Selected (H)", func() {
		a.exec(app.CommandHideSelection)
	})
	restoreButton := widget.NewButton("Restore Hidden (U)", func() {
		a.exec(app.CommandRestoreHidden)
	})

	a.cloudInfoLabel.SetText(fmt.Sprintf(
		"Cloud: %s\nPoints: %d\nDimensions:\n  X: %.2f\n  Y: %.2f\n  Z: %.2f",
		a.cloud.Name,
		a.cloud.Count(),
		a.cloud.BoundingBox().Size().X,
		a.cloud.BoundingBox().Size().Y,
		a.cloud.BoundingBox().Size().Z,
	))

	instructions := widget.NewLabel(
		"Instructions:\n" +
			"• Click points to select, drag to rotate\n" +
			"• Shift-click adds, Ctrl-click toggles\n" +
			"• In distance mode, click two points\n" +
			"• In area mode, right-click to finish\n" +
			"• Scroll to zoom, Alt-drag to rotate while editing",
	)
	instructions.Wrapping = fyne.TextWrapWord

	infoPanel := container.NewVBox(
		a.statusLabel,
		widget.NewSeparator(),
		widget.NewLabel("Cloud Information:"),
		a.cloudInfoLabel,
		widget.NewSeparator(),
		widget.NewLabel("Selection:"),
		a.selectionLabel,
		pickerButton,
		rectButton,
		polygonButton,
		fitCircleButton,
		hideButton,
		restoreButton,
		widget.NewSeparator(),
		widget.NewLabel("Measurements:"),
		a.measureList,
		distanceButton,
		areaButton,
		calibrateButton,
		clearButton,
		widget.NewSeparator(),
		instructions,
		widget.NewSeparator(),
		openButton,
	)

	infoScroll := container.NewVScroll(infoPanel)
	infoScroll.SetMinSize(fyne.NewSize(300, 0))

	content := container.NewBorder(
		nil,        // top
		nil,        // bottom
		nil,        // left
		infoScroll, // right
		a.render,   // center
	)

	a.window.SetContent(content)
	a.window.Canvas().SetOnTypedKey(a.typedKey)
	a.refreshPanel()
}

func (a *App) exec(cmd app.Command) {
	a.editor.Execute(cmd)
	a.render.Refresh()
	a.refreshPanel()
}

func (a *App) typedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyD:
		a.exec(app.CommandToggleDistanceMode)
	case fyne.KeyA:
		a.exec(app.CommandToggleAreaMode)
	case fyne.KeyEscape:
		a.exec(app.CommandCancel)
	case fyne.KeyReturn, fyne.KeyEnter:
		a.exec(app.CommandCompletePolygon)
	case fyne.KeyDelete, fyne.KeyBackspace:
		if a.editor.SelectedAreaID() != "" {
			a.exec(app.CommandDeleteArea)
		} else {
			a.exec(app.CommandDeleteMeasurement)
		}
	case fyne.Key1:
		a.exec(app.CommandSelectPicker)
	case fyne.Key2:
		a.exec(app.CommandSelectRectangle)
	case fyne.Key3:
		a.exec(app.CommandSelectPolygon)
	case fyne.KeyH:
		a.exec(app.CommandHideSelection)
	case fyne.KeyU:
		a.exec(app.CommandRestoreHidden)
	case fyne.KeyLeft:
		a.nudge(0, -1)
	case fyne.KeyRight:
		a.nudge(0, 1)
	case fyne.KeyUp:
		a.nudge(1, 1)
	case fyne.KeyDown:
		a.nudge(1, -1)
	case fyne.KeyPageUp:
		a.nudge(2, 1)
	case fyne.KeyPageDown:
		a.nudge(2, -1)
	case fyne.KeyR:
		a.rotateSelection(5)
	case fyne.KeyT:
		a.rotateSelection(-5)
	}
}

// nudge moves the selection along a world axis by 0.5% of the cloud diagonal
func (a *App) nudge(axis int, direction float64) {
	step := a.cloud.BoundingBox().Diagonal() * 0.005
	if a.editor.Selection.Nudge(axis, direction*step) {
		a.render.Refresh()
		a.refreshPanel()
	}
}

func (a *App) rotateSelection(degrees float64) {
	if a.editor.Selection.Rotate(2, degrees) {
		a.render.Refresh()
		a.refreshPanel()
	}
}

// showFitCircleDialog fits a circle through the selected points, useful for
// sizing pipes and columns in scans. The fit plane is the current top-down
// plane (constant Z).
func (a *App) showFitCircleDialog() {
	fit, err := a.editor.Selection.FitCircle(2)
	if err != nil {
		dialog.ShowInformation("Fit Circle", fmt.Sprintf("Cannot fit circle: %v", err), a.window)
		return
	}
	dialog.ShowInformation("Fit Circle", fmt.Sprintf(
		"Center: %s\nRadius: %s\nDiameter: %s\nFit stddev: %.4f",
		geometry.FormatVector(fit.Center),
		geometry.FormatLength(fit.Radius),
		geometry.FormatLength(fit.Radius*2),
		fit.StdDev,
	), a.window)
}

// showCalibrateDialog rescales all measurements so the selected segment
// reads the entered real-world length.
func (a *App) showCalibrateDialog() {
	segmentID := a.editor.SelectedSegmentID()
	if segmentID == "" {
		dialog.ShowInformation("Calibrate", "Select a measurement first (click near its endpoint).", a.window)
		return
	}
	current, _ := a.editor.Measure.SegmentLength(segmentID)

	entry := widget.NewEntry()
	entry.SetPlaceHolder(fmt.Sprintf("current: %s", geometry.FormatLength(current)))

	dialog.ShowForm("Calibrate", "Apply", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Real length (m)", entry)},
		func(confirmed bool) {
			if !confirmed {
				return
			}
			desired, err := strconv.ParseFloat(entry.Text, 64)
			if err != nil {
				dialog.ShowError(fmt.Errorf("invalid length: %w", err), a.window)
				return
			}
			if err := a.editor.Measure.Rescale(segmentID, desired); err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.render.Refresh()
			a.refreshPanel()
		}, a.window)
}

func (a *App) refreshPanel() {
	if a.statusLabel == nil {
		return
	}

	a.statusLabel.SetText(a.editor.StatusText())

	selected := a.editor.Selection.Selected()
	hidden := len(a.view.Hidden())
	if len(selected) == 0 && hidden == 0 {
		a.selectionLabel.SetText("Selection: none")
	} else {
		a.selectionLabel.SetText(fmt.Sprintf("Selection: %d points (%d hidden)", len(selected), hidden))
	}

	segments := a.editor.Measure.Segments()
	areas := a.editor.Measure.Areas()
	if len(segments) == 0 && len(areas) == 0 {
		a.measureList.SetText("No measurements")
		return
	}

	text := ""
	for _, s := range segments {
		if length, ok := a.editor.Measure.SegmentLength(s.ID); ok {
			text += fmt.Sprintf("%s: %s\n", s.Name, geometry.FormatLength(length))
		}
	}
	for _, area := range areas {
		if value, ok := a.editor.Measure.AreaValue(area.ID); ok {
			text += fmt.Sprintf("%s: %s\n", area.Name, geometry.FormatArea(value))
		}
	}
	a.measureList.SetText(text)
}
