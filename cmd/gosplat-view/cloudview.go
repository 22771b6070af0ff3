package main

import (
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/philipparndt/gosplat/internal/app"
	"github.com/philipparndt/gosplat/internal/bridge"
	"github.com/philipparndt/gosplat/pkg/geometry"
	"github.com/philipparndt/gosplat/pkg/viewer"
)

var (
	backgroundColor = color.RGBA{18, 18, 24, 255}
	selectionColor  = color.RGBA{255, 170, 0, 255}
	segmentColor    = color.RGBA{0, 200, 255, 255}
	selectedSegment = color.RGBA{255, 80, 80, 255}
	areaColor       = color.RGBA{120, 255, 120, 255}
	pendingColor    = color.RGBA{255, 255, 0, 255}
	rubberBandColor = color.RGBA{200, 200, 200, 255}
)

// CloudView renders the point cloud and feeds raw pointer events to the
// editor's disambiguation bridge.
type CloudView struct {
	widget.BaseWidget
	view      *viewer.View
	editor    *app.Editor
	camera    *app.CameraTarget
	raster    *canvas.Raster
	down      bool
	button    bridge.Button
	onChanged func()
}

// NewCloudView creates the render widget for a loaded cloud
func NewCloudView(view *viewer.View, editor *app.Editor, camera *app.CameraTarget) *CloudView {
	c := &CloudView{
		view:   view,
		editor: editor,
		camera: camera,
	}
	c.raster = canvas.NewRaster(c.drawCloud)
	c.ExtendBaseWidget(c)
	return c
}

// SetOnChanged sets the callback invoked after every handled input event
func (c *CloudView) SetOnChanged(callback func()) {
	c.onChanged = callback
}

func (c *CloudView) changed() {
	c.Refresh()
	if c.onChanged != nil {
		c.onChanged()
	}
}

func buttonFor(b desktop.MouseButton) bridge.Button {
	switch b {
	case desktop.MouseButtonSecondary:
		return bridge.ButtonSecondary
	case desktop.MouseButtonTertiary:
		return bridge.ButtonMiddle
	default:
		return bridge.ButtonPrimary
	}
}

func modsFor(m fyne.KeyModifier) bridge.Mods {
	return bridge.Mods{
		Shift: m&fyne.KeyModifierShift != 0,
		Ctrl:  m&fyne.KeyModifierControl != 0,
		Alt:   m&fyne.KeyModifierAlt != 0,
	}
}

func (c *CloudView) eventAt(pos fyne.Position, button bridge.Button, m fyne.KeyModifier) bridge.Event {
	return bridge.Event{
		Pointer: 0,
		X:       float64(pos.X),
		Y:       float64(pos.Y),
		Button:  button,
		Mods:    modsFor(m),
		Mouse:   true,
	}
}

// MouseDown implements desktop.Mouseable
func (c *CloudView) MouseDown(ev *desktop.MouseEvent) {
	c.down = true
	c.button = buttonFor(ev.Button)
	c.editor.SelectMeasurementAt(float64(ev.Position.X), float64(ev.Position.Y))
	c.editor.Bridge.PointerDown(c.eventAt(ev.Position, c.button, ev.Modifier))
	c.changed()
}

// MouseUp implements desktop.Mouseable
func (c *CloudView) MouseUp(ev *desktop.MouseEvent) {
	c.editor.Bridge.PointerUp(c.eventAt(ev.Position, buttonFor(ev.Button), ev.Modifier))
	c.down = false
	c.changed()
}

// MouseIn implements desktop.Hoverable
func (c *CloudView) MouseIn(ev *desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable
func (c *CloudView) MouseMoved(ev *desktop.MouseEvent) {
	button := bridge.ButtonPrimary
	if c.down {
		button = c.button
	}
	c.editor.Bridge.PointerMove(c.eventAt(ev.Position, button, ev.Modifier))
	c.changed()
}

// MouseOut implements desktop.Hoverable
func (c *CloudView) MouseOut() {
	if c.down {
		c.editor.Bridge.PointerCancel(bridge.Event{Pointer: 0, Button: c.button, Mouse: true})
		c.down = false
		c.changed()
	}
}

// Scrolled handles scroll events for zooming
func (c *CloudView) Scrolled(ev *fyne.ScrollEvent) {
	c.camera.Scroll(float64(ev.Scrolled.DY) / 40)
	c.changed()
}

// drawCloud rasterizes every visible point with depth shading, selected
// points highlighted.
func (c *CloudView) drawCloud(w, h int) image.Image {
	c.view.SetSize(float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		switch i % 4 {
		case 0:
			img.Pix[i] = backgroundColor.R
		case 1:
			img.Pix[i] = backgroundColor.G
		case 2:
			img.Pix[i] = backgroundColor.B
		case 3:
			img.Pix[i] = 255
		}
	}

	selected := make(map[int]bool)
	for _, idx := range c.view.Selected() {
		selected[idx] = true
	}

	cl := c.view.Cloud()
	c.view.ForEachVisiblePoint(func(index int, local, world geometry.Vector3) {
		proj, ok := c.view.ProjectWorldToScreen(world)
		if !ok || !proj.Visible {
			return
		}

		var col color.RGBA
		if cl.HasColors() {
			rgb := cl.Colors[index]
			col = color.RGBA{rgb.R, rgb.G, rgb.B, 255}
		} else {
			brightness := uint8(math.Max(60, math.Min(255, 255-proj.Depth*2)))
			col = color.RGBA{brightness, brightness, brightness, 255}
		}

		size := 1
		if selected[index] {
			col = selectionColor
			size = 2
		}

		px, py := int(proj.X), int(proj.Y)
		for dy := -size; dy <= size; dy++ {
			for dx := -size; dx <= size; dx++ {
				x, y := px+dx, py+dy
				if x >= 0 && x < w && y >= 0 && y < h {
					img.SetRGBA(x, y, col)
				}
			}
		}
	})

	return img
}

// CreateRenderer creates the renderer for the widget
func (c *CloudView) CreateRenderer() fyne.WidgetRenderer {
	return &cloudViewRenderer{
		widget:  c,
		objects: []fyne.CanvasObject{c.raster},
	}
}

// cloudViewRenderer implements fyne.WidgetRenderer. The raster holds the
// point cloud; measurement and selection overlays are rebuilt as canvas
// objects on every refresh.
type cloudViewRenderer struct {
	widget  *CloudView
	objects []fyne.CanvasObject
}

func (r *cloudViewRenderer) Layout(size fyne.Size) {
	r.widget.raster.Resize(size)
	r.widget.view.SetSize(float64(size.Width), float64(size.Height))
}

func (r *cloudViewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 400)
}

func line(x1, y1, x2, y2 float64, col color.Color, width float32) *canvas.Line {
	l := canvas.NewLine(col)
	l.StrokeWidth = width
	l.Position1 = fyne.NewPos(float32(x1), float32(y1))
	l.Position2 = fyne.NewPos(float32(x2), float32(y2))
	return l
}

func marker(x, y float64, col color.Color, size float32) *canvas.Circle {
	m := canvas.NewCircle(col)
	m.StrokeColor = color.White
	m.StrokeWidth = 1
	m.Resize(fyne.NewSize(size, size))
	m.Move(fyne.NewPos(float32(x)-size/2, float32(y)-size/2))
	return m
}

func label(x, y float64, text string, col color.Color) *canvas.Text {
	t := canvas.NewText(text, col)
	t.TextSize = 12
	t.Move(fyne.NewPos(float32(x)+6, float32(y)-14))
	return t
}

func (r *cloudViewRenderer) Refresh() {
	editor := r.widget.editor
	objects := []fyne.CanvasObject{r.widget.raster}

	for _, overlay := range editor.Measure.SegmentOverlays() {
		if !overlay.Visible {
			continue
		}
		col := segmentColor
		if overlay.ID == editor.SelectedSegmentID() {
			col = selectedSegment
		}
		objects = append(objects,
			line(overlay.Start.X, overlay.Start.Y, overlay.End.X, overlay.End.Y, col, 2),
			marker(overlay.Start.X, overlay.Start.Y, col, 8),
			marker(overlay.End.X, overlay.End.Y, col, 8),
			label(overlay.LabelX, overlay.LabelY, overlay.Label, col),
		)
	}

	for _, overlay := range editor.Measure.AreaOverlays() {
		if !overlay.Visible || len(overlay.Vertices) < 2 {
			continue
		}
		col := areaColor
		if overlay.ID == editor.SelectedAreaID() {
			col = selectedSegment
		}
		var cx, cy float64
		for i, v := range overlay.Vertices {
			next := overlay.Vertices[(i+1)%len(overlay.Vertices)]
			objects = append(objects,
				line(v.X, v.Y, next.X, next.Y, col, 2),
				marker(v.X, v.Y, col, 7),
			)
			cx += v.X
			cy += v.Y
		}
		n := float64(len(overlay.Vertices))
		objects = append(objects, label(cx/n, cy/n, overlay.Label, col))
	}

	pending := editor.Measure.PendingOverlay()
	for i, proj := range pending {
		if !proj.Visible {
			continue
		}
		objects = append(objects, marker(proj.X, proj.Y, pendingColor, 8))
		if i > 0 && pending[i-1].Visible {
			objects = append(objects, line(pending[i-1].X, pending[i-1].Y, proj.X, proj.Y, pendingColor, 1))
		}
	}

	if preview, ok := editor.LastPreview(); ok {
		startProj, startOK := r.widget.view.ProjectWorldToScreen(preview.Start)
		endProj, endOK := r.widget.view.ProjectWorldToScreen(preview.End)
		if startOK && endOK && startProj.Visible && endProj.Visible {
			col := pendingColor
			if preview.Axis >= 0 {
				col = segmentColor
			}
			objects = append(objects,
				line(startProj.X, startProj.Y, endProj.X, endProj.Y, col, 1),
				label((startProj.X+endProj.X)/2, (startProj.Y+endProj.Y)/2,
					geometry.FormatLength(preview.Length), col),
			)
		}
	}

	if rect, ok := editor.Selection.ActiveRect(); ok {
		minX, minY, maxX, maxY := rect.Normalized()
		objects = append(objects,
			line(minX, minY, maxX, minY, rubberBandColor, 1),
			line(maxX, minY, maxX, maxY, rubberBandColor, 1),
			line(maxX, maxY, minX, maxY, rubberBandColor, 1),
			line(minX, maxY, minX, minY, rubberBandColor, 1),
		)
	}

	verts := editor.Selection.PolygonVertices()
	for i, v := range verts {
		objects = append(objects, marker(v.X(), v.Y(), rubberBandColor, 6))
		if i > 0 {
			objects = append(objects, line(verts[i-1].X(), verts[i-1].Y(), v.X(), v.Y(), rubberBandColor, 1))
		}
	}

	r.objects = objects
	canvas.Refresh(r.widget)
}

func (r *cloudViewRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *cloudViewRenderer) Destroy() {}
