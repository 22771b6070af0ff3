package viewer

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/gosplat/pkg/cloud"
	"github.com/philipparndt/gosplat/pkg/geometry"
	"github.com/philipparndt/gosplat/pkg/scene"
)

// DefaultPickRadius is the screen-space hit-test tolerance in pixels
const DefaultPickRadius = 12.0

// View is the rendering-side state of a loaded point cloud: camera, viewport,
// the object's live model→world transform, hidden points and the current
// selection. It implements scene.Adapter for the editing engines.
type View struct {
	cloud  *cloud.Cloud
	camera *Camera

	width, height float64

	transform mgl64.Mat4 // model → world
	inverse   mgl64.Mat4 // world → model
	singular  bool

	hidden     map[int]bool
	selected   []int
	pickRadius float64
}

var _ scene.Adapter = (*View)(nil)

// NewView creates a view of the given cloud with an identity transform
func NewView(c *cloud.Cloud) *View {
	return &View{
		cloud:      c,
		camera:     NewCamera(c.BoundingBox()),
		width:      800,
		height:     600,
		transform:  mgl64.Ident4(),
		inverse:    mgl64.Ident4(),
		hidden:     make(map[int]bool),
		pickRadius: DefaultPickRadius,
	}
}

// Cloud returns the underlying point cloud
func (v *View) Cloud() *cloud.Cloud {
	return v.cloud
}

// Camera returns the view camera
func (v *View) Camera() *Camera {
	return v.camera
}

// SetSize updates the viewport dimensions in pixels
func (v *View) SetSize(width, height float64) {
	if width > 0 {
		v.width = width
	}
	if height > 0 {
		v.height = height
	}
}

// Size returns the viewport dimensions
func (v *View) Size() (float64, float64) {
	return v.width, v.height
}

// SetPickRadius overrides the hit-test tolerance
func (v *View) SetPickRadius(radius float64) {
	if radius > 0 {
		v.pickRadius = radius
	}
}

// SetTransform replaces the object's model→world transform
func (v *View) SetTransform(m mgl64.Mat4) {
	v.transform = m
	if math.Abs(m.Det()) < 1e-12 {
		v.singular = true
		return
	}
	v.singular = false
	v.inverse = m.Inv()
}

// Transform returns the current model→world transform
func (v *View) Transform() mgl64.Mat4 {
	return v.transform
}

// Hidden returns the indices of all hidden points in ascending order
func (v *View) Hidden() []int {
	out := make([]int, 0, len(v.hidden))
	for i := range v.hidden {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Selected returns the selection as last set by the engines
func (v *View) Selected() []int {
	return v.selected
}

func toMgl(p geometry.Vector3) mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

func fromMgl(p mgl64.Vec3) geometry.Vector3 {
	return geometry.NewVector3(p.X(), p.Y(), p.Z())
}

// ModelToWorld converts a model point to world space
func (v *View) ModelToWorld(local geometry.Vector3) (geometry.Vector3, bool) {
	return fromMgl(mgl64.TransformCoordinate(toMgl(local), v.transform)), true
}

// WorldToModel converts a world point to model space
func (v *View) WorldToModel(world geometry.Vector3) (geometry.Vector3, bool) {
	if v.singular {
		return geometry.Vector3{}, false
	}
	return fromMgl(mgl64.TransformCoordinate(toMgl(world), v.inverse)), true
}

// ProjectWorldToScreen projects a world point onto the viewport
func (v *View) ProjectWorldToScreen(world geometry.Vector3) (scene.Projection, bool) {
	x, y, depth := v.camera.Project(world, v.width, v.height)
	visible := depth > 0.01 &&
		x >= 0 && x <= v.width &&
		y >= 0 && y <= v.height
	return scene.Projection{
		X:       x,
		Y:       y,
		NX:      x / v.width,
		NY:      y / v.height,
		Depth:   depth,
		Visible: visible,
	}, true
}

// PointWorldPosition returns the current world position of a point
func (v *View) PointWorldPosition(index int) (geometry.Vector3, bool) {
	if index < 0 || index >= len(v.cloud.Points) {
		return geometry.Vector3{}, false
	}
	return v.ModelToWorld(v.cloud.Points[index])
}

// ForEachVisiblePoint iterates every non-hidden point
func (v *View) ForEachVisiblePoint(fn func(index int, local, world geometry.Vector3)) {
	for i, p := range v.cloud.Points {
		if v.hidden[i] {
			continue
		}
		world, _ := v.ModelToWorld(p)
		fn(i, p, world)
	}
}

// PickPoint returns the visible point nearest to the screen position within
// the pick radius, preferring the closest-to-camera point on near ties.
func (v *View) PickPoint(x, y float64) (scene.PointHit, bool) {
	best := scene.PointHit{Index: -1}
	bestDistSq := v.pickRadius * v.pickRadius
	bestDepth := math.MaxFloat64

	v.ForEachVisiblePoint(func(index int, local, world geometry.Vector3) {
		proj, _ := v.ProjectWorldToScreen(world)
		if !proj.Visible {
			return
		}
		dx, dy := proj.X-x, proj.Y-y
		distSq := dx*dx + dy*dy
		if distSq > bestDistSq {
			return
		}
		// Within one pixel of the current best, take the nearer point.
		if distSq < bestDistSq-1 || proj.Depth < bestDepth {
			best = scene.PointHit{Index: index, World: world, Local: local}
			bestDistSq = distSq
			bestDepth = proj.Depth
		}
	})

	if best.Index < 0 {
		return scene.PointHit{}, false
	}
	return best, true
}

// PickWorldPoint resolves a screen position to a freehand world point. The
// depth is taken from the nearest picked point when one is under the cursor,
// otherwise from the cloud's center so freehand vertices land on a sensible
// plane.
func (v *View) PickWorldPoint(x, y float64) (geometry.Vector3, bool) {
	origin, dir := v.camera.Unproject(x, y, v.width, v.height)

	if hit, ok := v.PickPoint(x, y); ok {
		t := hit.World.Sub(origin).Dot(dir)
		if t > 0 {
			return origin.Add(dir.Mul(t)), true
		}
	}

	center, ok := v.ModelToWorld(v.cloud.BoundingBox().Center())
	if !ok {
		return geometry.Vector3{}, false
	}
	t := center.Sub(origin).Dot(dir)
	if t <= 0 {
		return geometry.Vector3{}, false
	}
	return origin.Add(dir.Mul(t)), true
}

// MutatePointPositions applies mutate to the model-space positions of the
// listed points, all-or-nothing over the index list.
func (v *View) MutatePointPositions(indices []int, mutate func(local geometry.Vector3, index int) (geometry.Vector3, bool)) bool {
	type change struct {
		index int
		pos   geometry.Vector3
	}
	changes := make([]change, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(v.cloud.Points) {
			return false
		}
		p, ok := mutate(v.cloud.Points[i], i)
		if !ok || !p.IsFinite() {
			return false
		}
		changes = append(changes, change{index: i, pos: p})
	}
	if len(changes) == 0 {
		return false
	}
	for _, ch := range changes {
		v.cloud.Points[ch.index] = ch.pos
	}
	return true
}

// SetPointsHidden soft-deletes or restores the listed points
func (v *View) SetPointsHidden(indices []int, hidden bool) {
	for _, i := range indices {
		if i < 0 || i >= len(v.cloud.Points) {
			continue
		}
		if hidden {
			v.hidden[i] = true
		} else {
			delete(v.hidden, i)
		}
	}
}

// ClearHiddenPoints restores every hidden point
func (v *View) ClearHiddenPoints() {
	v.hidden = make(map[int]bool)
}

// SetSelectedPoints stores the selection for highlighting
func (v *View) SetSelectedPoints(indices []int) {
	v.selected = append(v.selected[:0], indices...)
}

// IsHidden reports whether a point is soft-deleted
func (v *View) IsHidden(index int) bool {
	return v.hidden[index]
}
