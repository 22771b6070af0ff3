package selection

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/philipparndt/gosplat/pkg/geometry"
	"github.com/philipparndt/gosplat/pkg/scene"
)

// Mode selects the active selection strategy
type Mode int

const (
	ModePicker Mode = iota
	ModeRectangle
	ModePolygon
)

// Combine is how a new pick result merges into the current selection
type Combine int

const (
	CombineReplace Combine = iota
	CombineAdd
	CombineToggle
)

// Rect is a screen-space selection box; Start is the drag origin
type Rect struct {
	StartX, StartY float64
	EndX, EndY     float64
}

// Normalized returns the rectangle with min/max corners regardless of drag
// direction.
func (r Rect) Normalized() (minX, minY, maxX, maxY float64) {
	return math.Min(r.StartX, r.EndX), math.Min(r.StartY, r.EndY),
		math.Max(r.StartX, r.EndX), math.Max(r.StartY, r.EndY)
}

// Engine maintains the active selection of point indices, always
// deduplicated and in ascending order. All mutation operations are no-ops
// on invalid input.
type Engine struct {
	scene scene.Adapter

	mode     Mode
	selected []int

	rectActive  bool
	rect        Rect
	rectCombine Combine

	polyVerts   []orb.Point
	polyCombine Combine
}

// NewEngine creates an empty selection over the given scene
func NewEngine(sc scene.Adapter) *Engine {
	return &Engine{scene: sc, mode: ModePicker}
}

// Mode returns the active selection strategy
func (e *Engine) Mode() Mode {
	return e.mode
}

// SetMode switches strategies, discarding any in-progress rectangle or
// polygon drag.
func (e *Engine) SetMode(mode Mode) {
	e.mode = mode
	e.rectActive = false
	e.polyVerts = nil
}

// Selected returns the current selection in ascending index order
func (e *Engine) Selected() []int {
	return e.selected
}

// Clear empties the selection
func (e *Engine) Clear() {
	e.setSelection(nil)
}

// setSelection dedups, sorts and publishes the selection to the renderer
func (e *Engine) setSelection(indices []int) {
	seen := make(map[int]bool, len(indices))
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	sort.Ints(out)
	e.selected = out
	e.scene.SetSelectedPoints(out)
}

// apply merges newly picked indices into the selection
func (e *Engine) apply(picked []int, combine Combine) {
	switch combine {
	case CombineReplace:
		e.setSelection(picked)
	case CombineAdd:
		e.setSelection(append(append([]int(nil), e.selected...), picked...))
	case CombineToggle:
		current := make(map[int]bool, len(e.selected))
		for _, i := range e.selected {
			current[i] = true
		}
		for _, i := range picked {
			current[i] = !current[i]
		}
		next := make([]int, 0, len(current))
		for i, in := range current {
			if in {
				next = append(next, i)
			}
		}
		e.setSelection(next)
	}
}

// Click applies picker semantics at a screen position: replace, add or
// toggle the point under the cursor. A plain click with no hit clears the
// selection; modified clicks with no hit do nothing.
func (e *Engine) Click(x, y float64, combine Combine) {
	if e.mode != ModePicker {
		return
	}
	hit, ok := e.scene.PickPoint(x, y)
	if !ok {
		if combine == CombineReplace {
			e.Clear()
		}
		return
	}
	e.apply([]int{hit.Index}, combine)
}

// BeginRect starts a rectangle drag, capturing the combine semantics for
// the whole gesture.
func (e *Engine) BeginRect(x, y float64, combine Combine) {
	if e.mode != ModeRectangle {
		return
	}
	e.rectActive = true
	e.rect = Rect{StartX: x, StartY: y, EndX: x, EndY: y}
	e.rectCombine = combine
}

// UpdateRect moves the far corner of an active rectangle drag
func (e *Engine) UpdateRect(x, y float64) {
	if !e.rectActive {
		return
	}
	e.rect.EndX = x
	e.rect.EndY = y
}

// ActiveRect returns the in-progress rectangle for overlay rendering
func (e *Engine) ActiveRect() (Rect, bool) {
	return e.rect, e.rectActive
}

// CompleteRect selects every visible point whose projection falls inside
// the box, bounds inclusive.
func (e *Engine) CompleteRect() {
	if !e.rectActive {
		return
	}
	e.rectActive = false

	minX, minY, maxX, maxY := e.rect.Normalized()
	var picked []int
	e.scene.ForEachVisiblePoint(func(index int, local, world geometry.Vector3) {
		proj, ok := e.scene.ProjectWorldToScreen(world)
		if !ok || !proj.Visible {
			return
		}
		if proj.X >= minX && proj.X <= maxX && proj.Y >= minY && proj.Y <= maxY {
			picked = append(picked, index)
		}
	})
	e.apply(picked, e.rectCombine)
}

// CancelRect discards an in-progress rectangle drag
func (e *Engine) CancelRect() {
	e.rectActive = false
}

// AddPolygonVertex appends a screen-space vertex to the in-progress ring.
// The combine semantics of the first vertex apply to the whole polygon.
func (e *Engine) AddPolygonVertex(x, y float64, combine Combine) {
	if e.mode != ModePolygon {
		return
	}
	if len(e.polyVerts) == 0 {
		e.polyCombine = combine
	}
	e.polyVerts = append(e.polyVerts, orb.Point{x, y})
}

// PolygonVertices returns the in-progress ring for overlay rendering
func (e *Engine) PolygonVertices() []orb.Point {
	return e.polyVerts
}

// CompletePolygon closes the ring and selects every visible point whose
// projection lies inside it. Fewer than 3 vertices discards the ring
// without selecting.
func (e *Engine) CompletePolygon() {
	verts := e.polyVerts
	e.polyVerts = nil
	if len(verts) < 3 {
		return
	}

	ring := orb.Ring(append(append(orb.Ring(nil), verts...), verts[0]))

	var picked []int
	e.scene.ForEachVisiblePoint(func(index int, local, world geometry.Vector3) {
		proj, ok := e.scene.ProjectWorldToScreen(world)
		if !ok || !proj.Visible {
			return
		}
		if planar.RingContains(ring, orb.Point{proj.X, proj.Y}) {
			picked = append(picked, index)
		}
	})
	e.apply(picked, e.polyCombine)
}

// CancelPolygon discards the in-progress ring without selecting
func (e *Engine) CancelPolygon() {
	e.polyVerts = nil
}

// Nudge translates every selected point's world position by delta along
// the given cardinal axis. No-op on zero or non-finite delta, invalid
// axis, or empty selection.
func (e *Engine) Nudge(axis int, delta float64) bool {
	if delta == 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return false
	}
	if axis < geometry.AxisX || axis > geometry.AxisZ || len(e.selected) == 0 {
		return false
	}

	return e.scene.MutatePointPositions(e.selected, func(local geometry.Vector3, index int) (geometry.Vector3, bool) {
		world, ok := e.scene.ModelToWorld(local)
		if !ok {
			return geometry.Vector3{}, false
		}
		moved := world.WithComponent(axis, world.Component(axis)+delta)
		return e.scene.WorldToModel(moved)
	})
}

// Rotate spins the selected points about their world-space centroid in the
// plane perpendicular to the given cardinal axis. No-op on zero or
// non-finite degrees or empty selection.
func (e *Engine) Rotate(axis int, degrees float64) bool {
	if degrees == 0 || math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return false
	}
	if axis < geometry.AxisX || axis > geometry.AxisZ || len(e.selected) == 0 {
		return false
	}

	centroid, ok := e.worldCentroid()
	if !ok {
		return false
	}

	axisVec := [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}[axis]
	rotation := mgl64.HomogRotate3D(mgl64.DegToRad(degrees), axisVec)

	return e.scene.MutatePointPositions(e.selected, func(local geometry.Vector3, index int) (geometry.Vector3, bool) {
		world, ok := e.scene.ModelToWorld(local)
		if !ok {
			return geometry.Vector3{}, false
		}
		rel := world.Sub(centroid)
		rotated := mgl64.TransformCoordinate(mgl64.Vec3{rel.X, rel.Y, rel.Z}, rotation)
		moved := centroid.Add(geometry.NewVector3(rotated.X(), rotated.Y(), rotated.Z()))
		return e.scene.WorldToModel(moved)
	})
}

// worldCentroid averages the selected points' current world positions
func (e *Engine) worldCentroid() (geometry.Vector3, bool) {
	sum := geometry.Vector3{}
	count := 0
	for _, i := range e.selected {
		world, ok := e.scene.PointWorldPosition(i)
		if !ok {
			continue
		}
		sum = sum.Add(world)
		count++
	}
	if count == 0 {
		return geometry.Vector3{}, false
	}
	return sum.Mul(1.0 / float64(count)), true
}

// FitCircle fits a circle through the selected points in world space,
// constrained to the plane of the given axis. Needs at least three
// selected points that are not collinear.
func (e *Engine) FitCircle(constraintAxis int) (*geometry.CircleFit, error) {
	points := make([]geometry.Vector3, 0, len(e.selected))
	for _, i := range e.selected {
		world, ok := e.scene.PointWorldPosition(i)
		if !ok {
			continue
		}
		points = append(points, world)
	}
	return geometry.FitCircleToPoints3D(points, constraintAxis)
}

// Hide soft-deletes the selected points and empties the selection
func (e *Engine) Hide() {
	if len(e.selected) == 0 {
		return
	}
	e.scene.SetPointsHidden(e.selected, true)
	e.Clear()
}

// RestoreAll unhides every hidden point. Idempotent.
func (e *Engine) RestoreAll() {
	e.scene.ClearHiddenPoints()
}
